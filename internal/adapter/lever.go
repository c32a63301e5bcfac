package adapter

import (
	"strings"

	"jobmate/ats-ingest/internal/model"
)

// Lever reads api.lever.co postings.
type Lever struct{}

func (Lever) SourceType() string { return "lever" }

func (Lever) Endpoint(slug string) string {
	return "https://api.lever.co/v0/postings/" + pathSlug(slug) + "?mode=json"
}

func (Lever) Adapt(payload any, _ string) []model.JobRecord {
	var out []model.JobRecord
	for _, raw := range entries(payload, "postings", "results") {
		title, url := str(raw, "text"), str(raw, "hostedUrl")
		if title == "" || url == "" {
			continue
		}
		cats := obj(raw, "categories")
		rec := newRecord(url, title, raw)
		rec.Location = str(cats, "location")
		rec.Category = str(cats, "department")
		rec.Description = strings.TrimSpace(str(raw, "descriptionPlain"))

		salaryObject(&rec, obj(raw, "salaryRange"))

		if rt, ok := workplaceType(str(raw, "workplaceType")); ok {
			rec.RemoteType = rt
		} else {
			rec.RemoteType = DetectRemoteType(title, rec.Location, raw)
		}

		for _, k := range []string{"commitment", "team"} {
			if v := str(cats, k); v != "" {
				rec.Tags = append(rec.Tags, v)
			}
		}
		rec.PostedAt = millisTime(raw["createdAt"])
		out = append(out, rec)
	}
	return out
}
