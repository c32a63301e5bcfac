package adapter

import "jobmate/ats-ingest/internal/model"

// Rippling reads ats.rippling.com job boards.
type Rippling struct{}

func (Rippling) SourceType() string { return "rippling" }

func (Rippling) Endpoint(slug string) string {
	return "https://ats.rippling.com/api/" + pathSlug(slug) + "/jobs"
}

func (Rippling) Adapt(payload any, slug string) []model.JobRecord {
	var out []model.JobRecord
	for _, raw := range entries(payload, "jobs", "data", "results") {
		title := str(raw, "title")
		url := str(raw, "url")
		if url == "" {
			id := scalar(raw, "id")
			if id == "" {
				id = str(raw, "slug")
			}
			if id != "" {
				url = "https://ats.rippling.com/" + slug + "/jobs/" + id
			}
		}
		if title == "" || url == "" {
			continue
		}

		rec := newRecord(url, title, raw)
		rec.Location = str(raw, "location")
		rec.Description = CleanHTML(str(raw, "description"))
		rec.Category = str(raw, "department")
		salaryObject(&rec, obj(raw, "compensationRange"))

		if rt, ok := workplaceType(str(raw, "workplaceType")); ok {
			rec.RemoteType = rt
		} else {
			rec.RemoteType = DetectRemoteType(title, rec.Location, raw)
		}
		if emp := str(raw, "employmentType"); emp != "" {
			rec.Tags = append(rec.Tags, titleWords(emp))
		}

		posted := str(raw, "publishedAt")
		if posted == "" {
			posted = str(raw, "created_at")
		}
		rec.PostedAt = parseTime(posted)
		out = append(out, rec)
	}
	return out
}
