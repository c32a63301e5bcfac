package adapter

import (
	"strings"

	"jobmate/ats-ingest/internal/model"
)

// Teamtailor reads the public JSON:API job feed of <slug>.teamtailor.com.
// Departments and locations are resolved through the "included" resources.
type Teamtailor struct{}

func (Teamtailor) SourceType() string { return "teamtailor" }

func (Teamtailor) Endpoint(slug string) string {
	return "https://" + pathSlug(slug) + ".teamtailor.com/api/v1/jobs"
}

func (Teamtailor) Adapt(payload any, slug string) []model.JobRecord {
	doc, ok := payload.(map[string]any)
	if !ok {
		return nil
	}
	included := make(map[string]map[string]any)
	for _, inc := range entries(doc["included"]) {
		included[resourceKey(inc)] = obj(inc, "attributes")
	}

	var out []model.JobRecord
	for _, raw := range entries(doc, "data") {
		attrs := obj(raw, "attributes")
		title := str(attrs, "title")
		if title == "" {
			continue
		}
		if status := str(attrs, "status"); status != "" && status != "open" {
			continue
		}
		url := str(obj(raw, "links"), "careersite-job-url")
		if url == "" {
			id := scalar(raw, "id")
			if id == "" {
				continue
			}
			url = "https://" + slug + ".teamtailor.com/jobs/" + id
		}

		rels := obj(raw, "relationships")
		rec := newRecord(url, title, raw)
		rec.Description = CleanHTML(str(attrs, "body"))

		var places []string
		for _, ref := range entries(obj(rels, "locations")["data"]) {
			if name := str(included[resourceKey(ref)], "name"); name != "" {
				places = append(places, name)
			}
		}
		rec.Location = strings.Join(places, ", ")
		if ref := obj(obj(rels, "department"), "data"); ref != nil {
			rec.Category = str(included[resourceKey(ref)], "name")
		}

		salaryObject(&rec, obj(attrs, "salary"))

		switch strings.ToLower(str(attrs, "remote-status")) {
		case "fully":
			rec.RemoteType = model.RemoteRemote
		case "hybrid":
			rec.RemoteType = model.RemoteHybrid
		case "none", "onsite":
			rec.RemoteType = model.RemoteOnsite
		default:
			rec.RemoteType = DetectRemoteType(title, rec.Location, attrs)
		}

		rec.Tags = stringList(attrs["tags"])
		if emp := str(attrs, "employment-type"); emp != "" {
			rec.Tags = append(rec.Tags, emp)
		}
		rec.PostedAt = parseTime(str(attrs, "created-at"))
		out = append(out, rec)
	}
	return out
}

// resourceKey identifies a JSON:API resource or reference as "type:id".
func resourceKey(m map[string]any) string {
	return str(m, "type") + ":" + scalar(m, "id")
}
