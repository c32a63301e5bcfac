package adapter

import "jobmate/ats-ingest/internal/model"

// Ashby reads the public posting API of jobs.ashbyhq.com boards.
type Ashby struct{}

func (Ashby) SourceType() string { return "ashby" }

func (Ashby) Endpoint(slug string) string {
	return "https://api.ashbyhq.com/posting-api/job-board/" + pathSlug(slug)
}

func (Ashby) Adapt(payload any, _ string) []model.JobRecord {
	var out []model.JobRecord
	for _, raw := range entries(payload, "jobs") {
		if listed, ok := flag(raw, "isListed"); ok && !listed {
			continue
		}
		title := str(raw, "title")
		url := str(raw, "jobUrl")
		if url == "" {
			url = str(raw, "applyUrl")
		}
		if title == "" || url == "" {
			continue
		}
		rec := newRecord(url, title, raw)
		rec.Location = str(raw, "location")
		rec.Description = str(raw, "descriptionPlain")
		rec.Category = str(raw, "department")
		if comp := str(raw, "compensationTierSummary"); comp != "" {
			rec.SalaryMin, rec.SalaryMax, rec.SalaryCurrency = ParseSalary(comp)
		}
		if remote, ok := flag(raw, "isRemote"); ok && remote {
			rec.RemoteType = model.RemoteRemote
		} else {
			rec.RemoteType = DetectRemoteType(title, rec.Location, raw)
		}
		for _, k := range []string{"employmentType", "team"} {
			if v := str(raw, k); v != "" {
				rec.Tags = append(rec.Tags, v)
			}
		}
		rec.PostedAt = parseTime(str(raw, "publishedAt"))
		out = append(out, rec)
	}
	return out
}
