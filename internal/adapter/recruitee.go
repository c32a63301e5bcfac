package adapter

import (
	"strings"

	"jobmate/ats-ingest/internal/model"
)

// Recruitee reads <slug>.recruitee.com offer lists.
type Recruitee struct{}

func (Recruitee) SourceType() string { return "recruitee" }

func (Recruitee) Endpoint(slug string) string {
	return "https://" + pathSlug(slug) + ".recruitee.com/api/offers"
}

var recruiteeExperience = map[string]string{
	"intern":     model.SeniorityIntern,
	"internship": model.SeniorityIntern,
	"junior":     model.SeniorityJunior,
	"entry":      model.SeniorityJunior,
	"mid":        model.SeniorityMid,
	"mid_senior": model.SenioritySenior,
	"senior":     model.SenioritySenior,
	"lead":       model.SenioritySenior,
	"executive":  model.SeniorityDirector,
	"director":   model.SeniorityDirector,
	"manager":    model.SeniorityManager,
}

func (Recruitee) Adapt(payload any, slug string) []model.JobRecord {
	var out []model.JobRecord
	for _, raw := range entries(payload, "offers") {
		if status := str(raw, "status"); status != "" && status != "published" {
			continue
		}
		title := str(raw, "title")
		url := str(raw, "careers_url")
		if url == "" {
			url = str(raw, "url")
		}
		if title == "" || url == "" {
			continue
		}
		if !strings.HasPrefix(url, "http") {
			url = "https://" + slug + ".recruitee.com/o/" + str(raw, "slug")
		}

		rec := newRecord(url, title, raw)
		rec.Location = str(raw, "location")
		if rec.Location == "" {
			rec.Location = joinNonEmpty(", ", str(raw, "city"), str(raw, "country"))
		}
		rec.Description = CleanHTML(str(raw, "description"))
		rec.SalaryMin = positiveInt(raw["salary_min"])
		rec.SalaryMax = positiveInt(raw["salary_max"])
		if c := str(raw, "salary_currency"); c != "" {
			rec.SalaryCurrency = c
		}
		if remote, ok := flag(raw, "remote"); ok && remote {
			rec.RemoteType = model.RemoteRemote
		} else {
			rec.RemoteType = DetectRemoteType(title, rec.Location, raw)
		}
		if s, ok := recruiteeExperience[strings.ToLower(str(raw, "experience_code"))]; ok {
			rec.Seniority = s
		}
		rec.Tags = append(rec.Tags, stringList(raw["tags"])...)
		if emp := str(raw, "employment_type_code"); emp != "" {
			rec.Tags = append(rec.Tags, emp)
		}
		rec.Category = str(raw, "department")

		posted := str(raw, "published_at")
		if posted == "" {
			posted = str(raw, "created_at")
		}
		rec.PostedAt = parseTime(posted)
		out = append(out, rec)
	}
	return out
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
