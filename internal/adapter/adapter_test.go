package adapter_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmate/ats-ingest/internal/adapter"
	"jobmate/ats-ingest/internal/model"
)

func decode(t *testing.T, doc string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(doc), &v))
	return v
}

// ── Registry ───────────────────────────────────────────────────────────────

func TestDefaultRegistry(t *testing.T) {
	reg := adapter.Default()
	assert.Equal(t, []string{
		"ashby", "bamboohr", "breezy", "dover", "freshteam", "greenhouse", "lever",
		"personio", "pinpoint", "recruitee", "rippling", "smartrecruiters", "teamtailor", "workable",
	}, reg.SourceTypes())

	a, ok := reg.Lookup(" Greenhouse ")
	require.True(t, ok)
	assert.Equal(t, "greenhouse", a.SourceType())

	_, ok = reg.Lookup("taleo")
	assert.False(t, ok)
}

func TestEndpoints(t *testing.T) {
	want := map[string]string{
		"ashby":           "https://api.ashbyhq.com/posting-api/job-board/acme",
		"bamboohr":        "https://acme.bamboohr.com/careers/list",
		"breezy":          "https://acme.breezy.hr/json",
		"dover":           "https://app.dover.com/api/careers-page/acme/jobs",
		"freshteam":       "https://acme.freshteam.com/api/job_postings",
		"greenhouse":      "https://boards-api.greenhouse.io/v1/boards/acme/jobs?content=true",
		"lever":           "https://api.lever.co/v0/postings/acme?mode=json",
		"personio":        "https://acme.jobs.personio.de/search.json",
		"pinpoint":        "https://acme.pinpointhq.com/postings.json",
		"recruitee":       "https://acme.recruitee.com/api/offers",
		"rippling":        "https://ats.rippling.com/api/acme/jobs",
		"smartrecruiters": "https://api.smartrecruiters.com/v1/companies/acme/postings",
		"teamtailor":      "https://acme.teamtailor.com/api/v1/jobs",
		"workable":        "https://apply.workable.com/api/v3/accounts/acme/jobs",
	}
	reg := adapter.Default()
	require.Len(t, reg.SourceTypes(), len(want))
	for name, endpoint := range want {
		a, ok := reg.Lookup(name)
		require.True(t, ok, name)
		assert.Equal(t, endpoint, a.Endpoint("acme"), name)
	}
}

func TestEndpoints_EscapeSlug(t *testing.T) {
	reg := adapter.Default()
	for _, name := range reg.SourceTypes() {
		a, _ := reg.Lookup(name)
		endpoint := a.Endpoint("acme/../x?y z")
		assert.Contains(t, endpoint, "acme%2F..%2Fx%3Fy%20z", name)
		assert.NotContains(t, endpoint, "/../", name)
		assert.NotContains(t, endpoint, " ", name)
	}
}

func TestAdapters_MalformedPayloadsNeverPanic(t *testing.T) {
	payloads := []any{nil, "oops", 42.0, true, map[string]any{}, []any{1.0, "x", nil}, map[string]any{"jobs": "nope"}}
	for _, name := range adapter.Default().SourceTypes() {
		a, _ := adapter.Default().Lookup(name)
		for _, p := range payloads {
			assert.NotPanics(t, func() {
				assert.Empty(t, a.Adapt(p, "acme"), name)
			})
		}
	}
}

// ── Per-source mapping ─────────────────────────────────────────────────────

func TestGreenhouse(t *testing.T) {
	payload := decode(t, `{"jobs": [
		{"id": 1, "title": "Backend Engineer", "absolute_url": "https://boards.greenhouse.io/acme/jobs/1",
		 "location": {"name": "Remote - US"}, "updated_at": "2026-02-20T10:00:00-05:00",
		 "content": "&lt;p&gt;Ship &lt;b&gt;Go&lt;/b&gt;&lt;/p&gt;",
		 "metadata": [{"name": "Team", "value": "Core"}, {"name": "Salary Range", "value": "$120K - $180K"}],
		 "departments": [{"name": "Engineering"}]},
		{"id": 2, "title": "No URL"},
		{"id": 3, "absolute_url": "https://boards.greenhouse.io/acme/jobs/3"},
		"garbage"
	], "meta": {"total": 4}}`)

	recs := adapter.Greenhouse{}.Adapt(payload, "acme")
	require.Len(t, recs, 1)
	r := recs[0]
	assert.Equal(t, "https://boards.greenhouse.io/acme/jobs/1", r.URL)
	assert.Equal(t, "Remote - US", r.Location)
	assert.Equal(t, "Ship Go", r.Description)
	assert.Equal(t, 120000, *r.SalaryMin)
	assert.Equal(t, 180000, *r.SalaryMax)
	assert.Equal(t, "USD", r.SalaryCurrency)
	assert.Equal(t, model.RemoteRemote, r.RemoteType)
	assert.Equal(t, "Engineering", r.Category)
	assert.Equal(t, model.SeniorityMid, r.Seniority)
	require.NotNil(t, r.PostedAt)
	assert.True(t, time.Date(2026, 2, 20, 15, 0, 0, 0, time.UTC).Equal(*r.PostedAt))
	assert.JSONEq(t, `1`, string(mustField(t, r.Raw, "id")))
}

func TestLever(t *testing.T) {
	payload := decode(t, `[
		{"id": "abc", "text": "Senior Data Engineer", "hostedUrl": "https://jobs.lever.co/acme/abc",
		 "categories": {"commitment": "Full-time", "department": "Data", "location": "Berlin", "team": "Platform"},
		 "descriptionPlain": "Build pipelines", "workplaceType": "hybrid",
		 "salaryRange": {"min": 90000, "max": 110000, "currency": "EUR"}, "createdAt": 1708000000000}
	]`)

	recs := adapter.Lever{}.Adapt(payload, "acme")
	require.Len(t, recs, 1)
	r := recs[0]
	assert.Equal(t, model.RemoteHybrid, r.RemoteType)
	assert.Equal(t, model.SenioritySenior, r.Seniority)
	assert.Equal(t, "Data", r.Category)
	assert.Equal(t, []string{"Full-time", "Platform"}, r.Tags)
	assert.Equal(t, 90000, *r.SalaryMin)
	assert.Equal(t, "EUR", r.SalaryCurrency)
	require.NotNil(t, r.PostedAt)
	assert.Equal(t, int64(1708000000000), r.PostedAt.UnixMilli())
}

func TestAshby(t *testing.T) {
	payload := decode(t, `{"jobs": [
		{"title": "Hidden", "jobUrl": "https://jobs.ashbyhq.com/acme/1", "isListed": false},
		{"title": "Product Designer", "applyUrl": "https://jobs.ashbyhq.com/acme/2/apply", "isRemote": true,
		 "location": "Lisbon", "compensationTierSummary": "€60K – €80K", "employmentType": "FullTime",
		 "department": "Design", "publishedAt": "2026-01-05T08:30:00.000+00:00"}
	]}`)

	recs := adapter.Ashby{}.Adapt(payload, "acme")
	require.Len(t, recs, 1)
	r := recs[0]
	assert.Equal(t, "https://jobs.ashbyhq.com/acme/2/apply", r.URL)
	assert.Equal(t, model.RemoteRemote, r.RemoteType)
	assert.Equal(t, 60000, *r.SalaryMin)
	assert.Equal(t, 80000, *r.SalaryMax)
	assert.Equal(t, "EUR", r.SalaryCurrency)
	assert.Equal(t, []string{"FullTime"}, r.Tags)
	require.NotNil(t, r.PostedAt)
}

func TestWorkable(t *testing.T) {
	payload := decode(t, `{"results": [
		{"title": "Support Agent", "shortcode": "AB12", "url": "/acme/j/AB12",
		 "location": {"city": "Austin", "region": "Texas", "country": "United States", "telecommuting": false},
		 "workplace": "on_site", "department": "Support", "published": "2026-02-20"},
		{"title": "Remote Recruiter", "shortlink": "https://apply.workable.com/acme/j/CD34/",
		 "location": {"country": "Spain", "telecommuting": true}}
	]}`)

	recs := adapter.Workable{}.Adapt(payload, "acme")
	require.Len(t, recs, 2)
	assert.Equal(t, "https://apply.workable.com/acme/j/AB12/", recs[0].URL)
	assert.Equal(t, "Austin, Texas", recs[0].Location)
	require.NotNil(t, recs[0].PostedAt)
	assert.Equal(t, "2026-02-20", recs[0].PostedAt.Format("2006-01-02"))
	assert.Equal(t, "Spain", recs[1].Location)
	assert.Equal(t, model.RemoteRemote, recs[1].RemoteType)
}

func TestRecruitee(t *testing.T) {
	payload := decode(t, `{"offers": [
		{"title": "Draft", "careers_url": "https://acme.recruitee.com/o/draft", "status": "draft"},
		{"title": "Account Executive", "slug": "account-executive", "status": "published",
		 "city": "Amsterdam", "country": "Netherlands", "description": "<p>Sell</p>",
		 "salary_min": "50000", "salary_max": 70000, "salary_currency": "EUR",
		 "experience_code": "mid_senior", "tags": ["sales"], "employment_type_code": "fulltime",
		 "published_at": "2026-03-01 10:00:00 UTC"}
	]}`)

	recs := adapter.Recruitee{}.Adapt(payload, "acme")
	require.Len(t, recs, 1)
	r := recs[0]
	assert.Equal(t, "https://acme.recruitee.com/o/account-executive", r.URL)
	assert.Equal(t, "Amsterdam, Netherlands", r.Location)
	assert.Equal(t, "Sell", r.Description)
	assert.Equal(t, 50000, *r.SalaryMin)
	assert.Equal(t, 70000, *r.SalaryMax)
	assert.Equal(t, model.SenioritySenior, r.Seniority)
	assert.Equal(t, []string{"sales", "fulltime"}, r.Tags)
	require.NotNil(t, r.PostedAt)
	assert.True(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC).Equal(*r.PostedAt))
}

func TestSmartRecruiters(t *testing.T) {
	payload := decode(t, `{"content": [
		{"id": "744", "name": "QA Analyst", "location": {"city": "Kraków", "country": "pl", "remote": false},
		 "department": {"label": "Quality"}, "experienceLevel": {"label": "Mid-Senior level"},
		 "typeOfEmployment": {"label": "Full-time"}, "releasedDate": "2026-02-20T10:00:00.000Z"},
		{"name": "No id"}
	]}`)

	recs := adapter.SmartRecruiters{}.Adapt(payload, "Acme")
	require.Len(t, recs, 1)
	r := recs[0]
	assert.Equal(t, "https://jobs.smartrecruiters.com/Acme/744", r.URL)
	assert.Equal(t, "Kraków", r.Location)
	assert.Equal(t, "Quality", r.Category)
	assert.Equal(t, model.SeniorityMid, r.Seniority)
	assert.Equal(t, []string{"Full-time"}, r.Tags)
}

func TestDover(t *testing.T) {
	payload := decode(t, `[
		{"id": "abc-123", "title": "Software Engineer", "location": "San Francisco, CA", "department": "Engineering",
		 "is_remote": true, "employment_type": "Full-time", "url": "https://app.dover.com/apply/acme/abc-123",
		 "description": "<p>Build <b>things</b></p>", "published_date": "2026-02-20T10:00:00Z",
		 "salary": {"min": 120000, "max": 180000, "currency": "USD"}},
		{"id": "def-456", "title": "Office Manager", "salary": "€40k - €50k", "created_at": "2026-02-21"},
		{"title": "No id or url"},
		{"id": "ghi-789"}
	]`)

	recs := adapter.Dover{}.Adapt(payload, "acme")
	require.Len(t, recs, 2)
	r := recs[0]
	assert.Equal(t, "https://app.dover.com/apply/acme/abc-123", r.URL)
	assert.Equal(t, "San Francisco, CA", r.Location)
	assert.Equal(t, "Build things", r.Description)
	assert.Equal(t, 120000, *r.SalaryMin)
	assert.Equal(t, 180000, *r.SalaryMax)
	assert.Equal(t, model.RemoteRemote, r.RemoteType)
	assert.Equal(t, "Engineering", r.Category)
	assert.Equal(t, []string{"Full-time"}, r.Tags)
	require.NotNil(t, r.PostedAt)
	assert.True(t, time.Date(2026, 2, 20, 10, 0, 0, 0, time.UTC).Equal(*r.PostedAt))

	r = recs[1]
	assert.Equal(t, "https://app.dover.com/apply/acme/def-456", r.URL)
	assert.Equal(t, 40000, *r.SalaryMin)
	assert.Equal(t, 50000, *r.SalaryMax)
	assert.Equal(t, "EUR", r.SalaryCurrency)
	assert.Equal(t, model.SeniorityManager, r.Seniority)
	require.NotNil(t, r.PostedAt)
	assert.Equal(t, "2026-02-21", r.PostedAt.Format("2006-01-02"))
}

func TestBreezy(t *testing.T) {
	payload := decode(t, `{"positions": [
		{"id": "abc123", "name": "Software Engineer", "friendly_id": "software-engineer",
		 "location": {"city": "San Francisco", "state": {"name": "California", "id": "CA"},
		              "country": {"name": "United States", "id": "US"}, "is_remote": true},
		 "department": "Eng", "category": {"name": "Engineering", "id": "engineering"},
		 "type": {"name": "Full-Time", "id": "fullTime"}, "experience": {"name": "Senior", "id": "seniorLevel"},
		 "description": "<p>Hi</p>", "published_date": "2026-02-20T10:00:00.000Z"},
		{"name": "Operations Assistant", "url": "https://acme.breezy.hr/p/x", "location": "Porto",
		 "experience": "intern", "department": "Ops"},
		{"name": "No url or id"}
	]}`)

	recs := adapter.Breezy{}.Adapt(payload, "acme")
	require.Len(t, recs, 2)
	r := recs[0]
	assert.Equal(t, "https://acme.breezy.hr/p/abc123/software-engineer", r.URL)
	assert.Equal(t, "San Francisco, California", r.Location)
	assert.Equal(t, model.RemoteRemote, r.RemoteType)
	assert.Equal(t, model.SenioritySenior, r.Seniority)
	assert.Equal(t, "Engineering", r.Category)
	assert.Equal(t, []string{"Full-Time"}, r.Tags)
	require.NotNil(t, r.PostedAt)

	r = recs[1]
	assert.Equal(t, "Porto", r.Location)
	assert.Equal(t, model.SeniorityIntern, r.Seniority)
	assert.Equal(t, "Ops", r.Category)
}

func TestBambooHR(t *testing.T) {
	payload := decode(t, `{"result": [
		{"id": "123", "jobOpeningName": "Software Engineer", "departmentLabel": "Engineering",
		 "locationLabel": "San Francisco, CA", "employmentStatusLabel": "Full-Time",
		 "jobOpeningUrl": "/careers/123", "isRemote": "yes"},
		{"id": 7, "title": "Account Manager", "location": "Denver"},
		{"jobOpeningName": "No id"}
	]}`)

	recs := adapter.BambooHR{}.Adapt(payload, "acme")
	require.Len(t, recs, 2)
	r := recs[0]
	assert.Equal(t, "https://acme.bamboohr.com/careers/123", r.URL)
	assert.Equal(t, "San Francisco, CA", r.Location)
	assert.Equal(t, model.RemoteRemote, r.RemoteType)
	assert.Equal(t, "Engineering", r.Category)
	assert.Equal(t, []string{"Full-Time"}, r.Tags)
	assert.Nil(t, r.PostedAt)

	r = recs[1]
	assert.Equal(t, "https://acme.bamboohr.com/careers/7", r.URL)
	assert.Equal(t, "Denver", r.Location)
	assert.Equal(t, model.SeniorityManager, r.Seniority)

	nested := decode(t, `{"result": {"jobOpenings": [
		{"id": "9", "jobOpeningName": "Designer", "jobOpeningUrl": "https://acme.bamboohr.com/careers/9"}
	]}}`)
	recs = adapter.BambooHR{}.Adapt(nested, "acme")
	require.Len(t, recs, 1)
	assert.Equal(t, "https://acme.bamboohr.com/careers/9", recs[0].URL)
}

func TestTeamtailor(t *testing.T) {
	payload := decode(t, `{
		"data": [
			{"id": "123456", "type": "jobs",
			 "links": {"careersite-job-url": "https://acme.teamtailor.com/jobs/123-engineer"},
			 "attributes": {"title": "Software Engineer", "body": "<p>HTML description</p>", "status": "open",
			                "remote-status": "hybrid", "employment-type": "fulltime",
			                "salary": {"min": "120000", "max": "180000", "currency": "SEK"},
			                "created-at": "2026-02-20T10:00:00.000+00:00", "tags": ["engineering"]},
			 "relationships": {"department": {"data": {"id": "1", "type": "departments"}},
			                   "locations": {"data": [{"id": "1", "type": "locations"}, {"id": 2, "type": "locations"}]}}},
			{"id": "2", "type": "jobs", "attributes": {"title": "Closed", "status": "unlisted"}},
			{"id": "3", "type": "jobs", "attributes": {"title": "Store Clerk", "remote-status": "none"}}
		],
		"included": [
			{"id": "1", "type": "departments", "attributes": {"name": "Engineering"}},
			{"id": "1", "type": "locations", "attributes": {"name": "Stockholm"}},
			{"id": "2", "type": "locations", "attributes": {"name": "Gothenburg"}}
		]
	}`)

	recs := adapter.Teamtailor{}.Adapt(payload, "acme")
	require.Len(t, recs, 2)
	r := recs[0]
	assert.Equal(t, "https://acme.teamtailor.com/jobs/123-engineer", r.URL)
	assert.Equal(t, "Stockholm, Gothenburg", r.Location)
	assert.Equal(t, "Engineering", r.Category)
	assert.Equal(t, "HTML description", r.Description)
	assert.Equal(t, 120000, *r.SalaryMin)
	assert.Equal(t, 180000, *r.SalaryMax)
	assert.Equal(t, "SEK", r.SalaryCurrency)
	assert.Equal(t, model.RemoteHybrid, r.RemoteType)
	assert.Equal(t, []string{"engineering", "fulltime"}, r.Tags)
	require.NotNil(t, r.PostedAt)
	assert.True(t, time.Date(2026, 2, 20, 10, 0, 0, 0, time.UTC).Equal(*r.PostedAt))

	assert.Equal(t, "https://acme.teamtailor.com/jobs/3", recs[1].URL)
	assert.Equal(t, model.RemoteOnsite, recs[1].RemoteType)

	// JSON:API documents are objects; a bare array is not a feed.
	assert.Empty(t, adapter.Teamtailor{}.Adapt(decode(t, `[{"attributes": {"title": "x"}}]`), "acme"))
}

func TestPinpoint(t *testing.T) {
	payload := decode(t, `{"data": [
		{"id": "123456", "type": "postings",
		 "attributes": {"title": "Software Engineer", "description": "<p>HTML</p>", "slug": "software-engineer-123",
		                "location_name": "London", "department_name": "Engineering", "employment_type": "full_time",
		                "remote": true, "published_at": "2026-02-20T10:00:00Z"}},
		{"id": "9", "title": "Lead Chef", "location": "Leeds", "department": "Kitchen",
		 "url": "https://acme.pinpointhq.com/postings/lead-chef"}
	]}`)

	recs := adapter.Pinpoint{}.Adapt(payload, "acme")
	require.Len(t, recs, 2)
	r := recs[0]
	assert.Equal(t, "https://acme.pinpointhq.com/postings/software-engineer-123", r.URL)
	assert.Equal(t, "London", r.Location)
	assert.Equal(t, "HTML", r.Description)
	assert.Equal(t, model.RemoteRemote, r.RemoteType)
	assert.Equal(t, "Engineering", r.Category)
	assert.Equal(t, []string{"full time"}, r.Tags)
	require.NotNil(t, r.PostedAt)

	r = recs[1]
	assert.Equal(t, "https://acme.pinpointhq.com/postings/lead-chef", r.URL)
	assert.Equal(t, "Leeds", r.Location)
	assert.Equal(t, "Kitchen", r.Category)
	assert.Equal(t, model.SenioritySenior, r.Seniority)
}

func TestRippling(t *testing.T) {
	payload := decode(t, `[
		{"id": "abc-123", "title": "Software Engineer", "department": "Engineering", "location": "San Francisco, CA",
		 "workplaceType": "REMOTE", "employmentType": "FULL_TIME", "description": "<p>HTML</p>",
		 "compensationRange": {"min": 120000, "max": 180000, "currency": "USD", "interval": "ANNUAL"},
		 "publishedAt": "2026-02-20T10:00:00Z", "url": "https://ats.rippling.com/acme/jobs/abc-123"},
		{"id": "def", "title": "Warehouse Associate", "workplaceType": "ON_SITE", "employmentType": "PART_TIME"}
	]`)

	recs := adapter.Rippling{}.Adapt(payload, "acme")
	require.Len(t, recs, 2)
	r := recs[0]
	assert.Equal(t, "https://ats.rippling.com/acme/jobs/abc-123", r.URL)
	assert.Equal(t, model.RemoteRemote, r.RemoteType)
	assert.Equal(t, 120000, *r.SalaryMin)
	assert.Equal(t, 180000, *r.SalaryMax)
	assert.Equal(t, "Engineering", r.Category)
	assert.Equal(t, []string{"Full Time"}, r.Tags)
	require.NotNil(t, r.PostedAt)

	r = recs[1]
	assert.Equal(t, "https://ats.rippling.com/acme/jobs/def", r.URL)
	assert.Equal(t, model.RemoteOnsite, r.RemoteType)
	assert.Equal(t, []string{"Part Time"}, r.Tags)
}

func TestPersonio(t *testing.T) {
	payload := decode(t, `[
		{"id": 123456, "name": "Software Engineer", "slug": "software-engineer-123", "office": "Munich",
		 "department": "Engineering", "recruitingCategory": "Tech", "employmentType": "permanent",
		 "seniority": "experienced", "schedule": "full-time", "description": "<p>HTML</p>",
		 "createdAt": "2026-02-20T10:00:00+00:00", "tags": ["engineering"]},
		{"id": 42, "name": "Werkstudent Marketing", "seniority": "student", "recruitingCategory": "Marketing"},
		{"name": "No id"}
	]`)

	recs := adapter.Personio{}.Adapt(payload, "acme")
	require.Len(t, recs, 2)
	r := recs[0]
	assert.Equal(t, "https://acme.jobs.personio.de/job/software-engineer-123", r.URL)
	assert.Equal(t, "Munich", r.Location)
	assert.Equal(t, model.SeniorityMid, r.Seniority)
	assert.Equal(t, "Engineering", r.Category)
	assert.Equal(t, []string{"engineering", "full-time", "permanent"}, r.Tags)
	require.NotNil(t, r.PostedAt)
	assert.True(t, time.Date(2026, 2, 20, 10, 0, 0, 0, time.UTC).Equal(*r.PostedAt))

	r = recs[1]
	assert.Equal(t, "https://acme.jobs.personio.de/job/42", r.URL)
	assert.Equal(t, model.SeniorityIntern, r.Seniority)
	assert.Equal(t, "Marketing", r.Category)
}

func TestFreshteam(t *testing.T) {
	payload := decode(t, `{"job_postings": [
		{"id": 123456, "title": "Software Engineer", "description": "<p>HTML</p>", "status": "published",
		 "remote": true, "branch": {"name": "SF Office", "city": "San Francisco"}, "department": {"name": "Engineering"},
		 "type": "full_time", "salary": {"min": 120000, "max": 180000, "currency": "USD"},
		 "created_at": "2026-02-20T10:00:00Z"},
		{"id": 2, "title": "Draft", "status": "draft"},
		{"id": 3, "title": "Senior Accountant", "branch": {"city": "Chennai", "state": "TN", "country": "IN"}, "type": "contract"}
	]}`)

	recs := adapter.Freshteam{}.Adapt(payload, "acme")
	require.Len(t, recs, 2)
	r := recs[0]
	assert.Equal(t, "https://acme.freshteam.com/jobs/123456", r.URL)
	assert.Equal(t, "SF Office", r.Location)
	assert.Equal(t, model.RemoteRemote, r.RemoteType)
	assert.Equal(t, "Engineering", r.Category)
	assert.Equal(t, 120000, *r.SalaryMin)
	assert.Equal(t, []string{"Full Time"}, r.Tags)
	require.NotNil(t, r.PostedAt)

	r = recs[1]
	assert.Equal(t, "https://acme.freshteam.com/jobs/3", r.URL)
	assert.Equal(t, "Chennai, TN", r.Location)
	assert.Equal(t, model.SenioritySenior, r.Seniority)
	assert.Equal(t, []string{"Contract"}, r.Tags)
}

func mustField(t *testing.T, raw json.RawMessage, key string) json.RawMessage {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &m))
	return m[key]
}
