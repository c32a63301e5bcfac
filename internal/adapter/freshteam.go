package adapter

import "jobmate/ats-ingest/internal/model"

// Freshteam reads <slug>.freshteam.com job postings.
type Freshteam struct{}

func (Freshteam) SourceType() string { return "freshteam" }

func (Freshteam) Endpoint(slug string) string {
	return "https://" + pathSlug(slug) + ".freshteam.com/api/job_postings"
}

func (Freshteam) Adapt(payload any, slug string) []model.JobRecord {
	var out []model.JobRecord
	for _, raw := range entries(payload, "job_postings", "jobs", "data") {
		if status := str(raw, "status"); status != "" && status != "published" {
			continue
		}
		title, id := str(raw, "title"), scalar(raw, "id")
		if title == "" || id == "" {
			continue
		}

		rec := newRecord("https://"+slug+".freshteam.com/jobs/"+id, title, raw)
		rec.Location = placeName(obj(raw, "branch"))
		rec.Description = CleanHTML(str(raw, "description"))
		rec.Category = str(obj(raw, "department"), "name")
		salaryObject(&rec, obj(raw, "salary"))

		if remote, _ := flag(raw, "remote"); remote {
			rec.RemoteType = model.RemoteRemote
		} else {
			rec.RemoteType = DetectRemoteType(title, rec.Location, raw)
		}
		if kind := str(raw, "type"); kind != "" {
			rec.Tags = append(rec.Tags, titleWords(kind))
		}
		rec.PostedAt = parseTime(str(raw, "created_at"))
		out = append(out, rec)
	}
	return out
}
