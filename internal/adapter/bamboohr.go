package adapter

import (
	"strings"

	"jobmate/ats-ingest/internal/model"
)

// BambooHR reads <slug>.bamboohr.com career lists. The listing carries no
// description or posting date.
type BambooHR struct{}

func (BambooHR) SourceType() string { return "bamboohr" }

func (BambooHR) Endpoint(slug string) string {
	return "https://" + pathSlug(slug) + ".bamboohr.com/careers/list"
}

func (BambooHR) Adapt(payload any, slug string) []model.JobRecord {
	// {"result": [...]} or {"result": {"jobOpenings": [...]}}
	if m, ok := payload.(map[string]any); ok {
		if res, ok := m["result"]; ok {
			payload = res
		}
	}

	var out []model.JobRecord
	for _, raw := range entries(payload, "jobOpenings", "jobs") {
		title := str(raw, "jobOpeningName")
		if title == "" {
			title = str(raw, "title")
		}
		id := scalar(raw, "id")
		if title == "" || id == "" {
			continue
		}

		url := str(raw, "jobOpeningUrl")
		switch {
		case strings.HasPrefix(url, "http"):
		case url != "":
			url = "https://" + slug + ".bamboohr.com" + url
		default:
			url = "https://" + slug + ".bamboohr.com/careers/" + id
		}

		rec := newRecord(url, title, raw)
		rec.Location = str(raw, "locationLabel")
		if rec.Location == "" {
			rec.Location = str(raw, "location")
		}
		if bamboohrRemote(raw["isRemote"]) {
			rec.RemoteType = model.RemoteRemote
		} else {
			rec.RemoteType = DetectRemoteType(title, rec.Location, raw)
		}
		rec.Category = str(raw, "departmentLabel")
		if rec.Category == "" {
			rec.Category = str(raw, "department")
		}
		if emp := str(raw, "employmentStatusLabel"); emp != "" {
			rec.Tags = append(rec.Tags, emp)
		}
		out = append(out, rec)
	}
	return out
}

// bamboohrRemote accepts "yes", "true", "1" or a JSON boolean.
func bamboohrRemote(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "yes", "true", "1":
			return true
		}
	}
	return false
}
