package adapter

import (
	"fmt"
	"strings"

	"jobmate/ats-ingest/internal/model"
)

// Greenhouse reads boards-api.greenhouse.io job boards.
type Greenhouse struct{}

func (Greenhouse) SourceType() string { return "greenhouse" }

func (Greenhouse) Endpoint(slug string) string {
	return "https://boards-api.greenhouse.io/v1/boards/" + pathSlug(slug) + "/jobs?content=true"
}

func (Greenhouse) Adapt(payload any, _ string) []model.JobRecord {
	var out []model.JobRecord
	for _, raw := range entries(payload, "jobs") {
		title, url := str(raw, "title"), str(raw, "absolute_url")
		if title == "" || url == "" {
			continue
		}
		rec := newRecord(url, title, raw)
		rec.Location = str(obj(raw, "location"), "name")
		rec.Description = CleanHTML(str(raw, "content"))
		rec.SalaryMin, rec.SalaryMax, rec.SalaryCurrency = greenhouseSalary(raw["metadata"])
		rec.RemoteType = DetectRemoteType(title, rec.Location, raw)
		if depts, ok := raw["departments"].([]any); ok && len(depts) > 0 {
			if d, ok := depts[0].(map[string]any); ok {
				rec.Category = str(d, "name")
			}
		}
		rec.PostedAt = parseTime(str(raw, "updated_at"))
		out = append(out, rec)
	}
	return out
}

// greenhouseSalary scans custom metadata fields for a salary or
// compensation entry.
func greenhouseSalary(v any) (minimum, maximum *int, currency string) {
	items, _ := v.([]any)
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		name := strings.ToLower(str(m, "name"))
		if !strings.Contains(name, "salary") && !strings.Contains(name, "compensation") {
			continue
		}
		if m["value"] == nil {
			return nil, nil, "USD"
		}
		return ParseSalary(fmt.Sprint(m["value"]))
	}
	return nil, nil, "USD"
}
