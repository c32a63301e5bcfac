package adapter

import (
	"strings"

	"jobmate/ats-ingest/internal/model"
)

// Pinpoint reads <slug>.pinpointhq.com postings, in JSON:API or flat form.
type Pinpoint struct{}

func (Pinpoint) SourceType() string { return "pinpoint" }

func (Pinpoint) Endpoint(slug string) string {
	return "https://" + pathSlug(slug) + ".pinpointhq.com/postings.json"
}

func (Pinpoint) Adapt(payload any, slug string) []model.JobRecord {
	var out []model.JobRecord
	for _, raw := range entries(payload, "data", "postings") {
		attrs := obj(raw, "attributes")
		if attrs == nil {
			attrs = raw
		}
		title := str(attrs, "title")
		url := str(attrs, "url")
		if url == "" {
			posting := str(attrs, "slug")
			if posting == "" {
				posting = scalar(raw, "id")
			}
			if posting != "" {
				url = "https://" + slug + ".pinpointhq.com/postings/" + posting
			}
		}
		if title == "" || url == "" {
			continue
		}

		rec := newRecord(url, title, raw)
		rec.Location = str(attrs, "location_name")
		if rec.Location == "" {
			rec.Location = str(attrs, "location")
		}
		rec.Description = CleanHTML(str(attrs, "description"))
		if remote, _ := flag(attrs, "remote"); remote {
			rec.RemoteType = model.RemoteRemote
		} else {
			rec.RemoteType = DetectRemoteType(title, rec.Location, attrs)
		}
		rec.Category = str(attrs, "department_name")
		if rec.Category == "" {
			rec.Category = str(attrs, "department")
		}
		if emp := str(attrs, "employment_type"); emp != "" {
			rec.Tags = append(rec.Tags, strings.ReplaceAll(emp, "_", " "))
		}

		posted := str(attrs, "published_at")
		if posted == "" {
			posted = str(attrs, "created_at")
		}
		rec.PostedAt = parseTime(posted)
		out = append(out, rec)
	}
	return out
}
