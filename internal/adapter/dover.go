package adapter

import "jobmate/ats-ingest/internal/model"

// Dover reads app.dover.com careers pages.
type Dover struct{}

func (Dover) SourceType() string { return "dover" }

func (Dover) Endpoint(slug string) string {
	return "https://app.dover.com/api/careers-page/" + pathSlug(slug) + "/jobs"
}

func (Dover) Adapt(payload any, slug string) []model.JobRecord {
	var out []model.JobRecord
	for _, raw := range entries(payload, "jobs", "results") {
		title := str(raw, "title")
		url := str(raw, "url")
		if url == "" {
			if id := scalar(raw, "id"); id != "" {
				url = "https://app.dover.com/apply/" + slug + "/" + id
			}
		}
		if title == "" || url == "" {
			continue
		}
		rec := newRecord(url, title, raw)
		rec.Location = str(raw, "location")
		rec.Description = CleanHTML(str(raw, "description"))
		rec.Category = str(raw, "department")

		// Some boards publish the salary as free text.
		switch s := raw["salary"].(type) {
		case map[string]any:
			salaryObject(&rec, s)
		case string:
			rec.SalaryMin, rec.SalaryMax, rec.SalaryCurrency = ParseSalary(s)
		}

		if remote, _ := flag(raw, "is_remote"); remote {
			rec.RemoteType = model.RemoteRemote
		} else {
			rec.RemoteType = DetectRemoteType(title, rec.Location, raw)
		}
		if emp := str(raw, "employment_type"); emp != "" {
			rec.Tags = append(rec.Tags, emp)
		}

		posted := str(raw, "published_date")
		if posted == "" {
			posted = str(raw, "created_at")
		}
		rec.PostedAt = parseTime(posted)
		out = append(out, rec)
	}
	return out
}
