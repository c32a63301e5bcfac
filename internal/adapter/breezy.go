package adapter

import (
	"strings"

	"jobmate/ats-ingest/internal/model"
)

// Breezy reads <slug>.breezy.hr position lists.
type Breezy struct{}

func (Breezy) SourceType() string { return "breezy" }

func (Breezy) Endpoint(slug string) string {
	return "https://" + pathSlug(slug) + ".breezy.hr/json"
}

var breezyExperience = map[string]string{
	"intern":       model.SeniorityIntern,
	"entrylevel":   model.SeniorityJunior,
	"entry_level":  model.SeniorityJunior,
	"junior":       model.SeniorityJunior,
	"midlevel":     model.SeniorityMid,
	"mid_level":    model.SeniorityMid,
	"mid":          model.SeniorityMid,
	"seniorlevel":  model.SenioritySenior,
	"senior_level": model.SenioritySenior,
	"senior":       model.SenioritySenior,
	"lead":         model.SenioritySenior,
	"director":     model.SeniorityDirector,
	"executive":    model.SeniorityDirector,
	"manager":      model.SeniorityManager,
}

func (Breezy) Adapt(payload any, slug string) []model.JobRecord {
	var out []model.JobRecord
	for _, raw := range entries(payload, "positions", "jobs", "results") {
		title := str(raw, "name")
		url := str(raw, "url")
		if url == "" {
			if id := scalar(raw, "id"); id != "" {
				url = "https://" + slug + ".breezy.hr/p/" + id + "/" + str(raw, "friendly_id")
			}
		}
		if title == "" || url == "" {
			continue
		}
		rec := newRecord(url, title, raw)
		rec.Location = placeName(raw["location"])
		rec.Description = CleanHTML(str(raw, "description"))

		if remote, _ := flag(obj(raw, "location"), "is_remote"); remote {
			rec.RemoteType = model.RemoteRemote
		} else {
			rec.RemoteType = DetectRemoteType(title, rec.Location, raw)
		}

		exp := scalar(raw, "experience")
		if e := obj(raw, "experience"); e != nil {
			exp = str(e, "id")
		}
		if s, ok := breezyExperience[strings.ToLower(exp)]; ok {
			rec.Seniority = s
		}

		if cat := obj(raw, "category"); cat != nil {
			rec.Category = str(cat, "name")
		} else {
			rec.Category = str(raw, "department")
		}
		if kind := str(obj(raw, "type"), "name"); kind != "" {
			rec.Tags = append(rec.Tags, kind)
		}
		rec.PostedAt = parseTime(str(raw, "published_date"))
		out = append(out, rec)
	}
	return out
}
