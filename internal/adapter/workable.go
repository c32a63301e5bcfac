package adapter

import (
	"strings"

	"jobmate/ats-ingest/internal/model"
)

// Workable reads apply.workable.com account job lists.
type Workable struct{}

func (Workable) SourceType() string { return "workable" }

func (Workable) Endpoint(slug string) string {
	return "https://apply.workable.com/api/v3/accounts/" + pathSlug(slug) + "/jobs"
}

func (Workable) Adapt(payload any, slug string) []model.JobRecord {
	var out []model.JobRecord
	for _, raw := range entries(payload, "results", "jobs") {
		title := str(raw, "title")
		url := str(raw, "url")
		if url == "" {
			url = str(raw, "shortlink")
		}
		if title == "" || url == "" {
			continue
		}
		if !strings.HasPrefix(url, "http") {
			url = "https://apply.workable.com/" + slug + "/j/" + str(raw, "shortcode") + "/"
		}
		loc := obj(raw, "location")
		rec := newRecord(url, title, raw)
		rec.Location = locationParts(loc)
		rec.Category = str(raw, "department")

		telecommuting, _ := flag(loc, "telecommuting")
		if telecommuting {
			rec.RemoteType = model.RemoteRemote
		} else if rt, ok := workplaceType(str(raw, "workplace")); ok {
			rec.RemoteType = rt
		} else {
			rec.RemoteType = DetectRemoteType(title, rec.Location, raw)
		}

		posted := str(raw, "published")
		if posted == "" {
			posted = str(raw, "created")
		}
		rec.PostedAt = parseTime(posted)
		out = append(out, rec)
	}
	return out
}
