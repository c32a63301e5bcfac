package adapter

import (
	"strings"

	"jobmate/ats-ingest/internal/model"
)

// Personio reads the search.json feed of <slug>.jobs.personio.de.
type Personio struct{}

func (Personio) SourceType() string { return "personio" }

func (Personio) Endpoint(slug string) string {
	return "https://" + pathSlug(slug) + ".jobs.personio.de/search.json"
}

var personioSeniority = map[string]string{
	"student":     model.SeniorityIntern,
	"entry-level": model.SeniorityJunior,
	"junior":      model.SeniorityJunior,
	"experienced": model.SeniorityMid,
	"senior":      model.SenioritySenior,
	"lead":        model.SenioritySenior,
	"executive":   model.SeniorityDirector,
	"manager":     model.SeniorityManager,
}

func (Personio) Adapt(payload any, slug string) []model.JobRecord {
	var out []model.JobRecord
	for _, raw := range entries(payload, "positions", "jobs", "data") {
		title := str(raw, "name")
		if title == "" {
			title = str(raw, "title")
		}
		ref := str(raw, "slug")
		if ref == "" {
			ref = scalar(raw, "id")
		}
		if title == "" || ref == "" {
			continue
		}

		rec := newRecord("https://"+slug+".jobs.personio.de/job/"+ref, title, raw)
		rec.Location = str(raw, "office")
		if rec.Location == "" {
			rec.Location = str(raw, "location")
		}
		rec.Description = CleanHTML(str(raw, "description"))
		rec.RemoteType = DetectRemoteType(title, rec.Location, raw)
		if s, ok := personioSeniority[strings.ToLower(str(raw, "seniority"))]; ok {
			rec.Seniority = s
		}
		rec.Category = str(raw, "department")
		if rec.Category == "" {
			rec.Category = str(raw, "recruitingCategory")
		}

		rec.Tags = stringList(raw["tags"])
		for _, k := range []string{"schedule", "employmentType"} {
			if v := str(raw, k); v != "" {
				rec.Tags = append(rec.Tags, v)
			}
		}
		rec.PostedAt = parseTime(str(raw, "createdAt"))
		out = append(out, rec)
	}
	return out
}
