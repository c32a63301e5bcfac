package adapter

import (
	"strings"

	"jobmate/ats-ingest/internal/model"
)

// SmartRecruiters reads api.smartrecruiters.com company postings.
type SmartRecruiters struct{}

func (SmartRecruiters) SourceType() string { return "smartrecruiters" }

func (SmartRecruiters) Endpoint(slug string) string {
	return "https://api.smartrecruiters.com/v1/companies/" + pathSlug(slug) + "/postings"
}

func (SmartRecruiters) Adapt(payload any, slug string) []model.JobRecord {
	var out []model.JobRecord
	for _, raw := range entries(payload, "content") {
		title := str(raw, "name")
		id := str(raw, "id")
		if id == "" {
			id = str(raw, "uuid")
		}
		if title == "" || id == "" {
			continue
		}
		loc := obj(raw, "location")
		rec := newRecord("https://jobs.smartrecruiters.com/"+slug+"/"+id, title, raw)
		rec.Location = locationParts(loc)

		if remote, _ := flag(loc, "remote"); remote {
			rec.RemoteType = model.RemoteRemote
		} else {
			rec.RemoteType = DetectRemoteType(title, rec.Location, raw)
		}
		rec.Category = str(obj(raw, "department"), "label")
		if s := experienceSeniority(str(obj(raw, "experienceLevel"), "label")); s != "" {
			rec.Seniority = s
		}
		if emp := str(obj(raw, "typeOfEmployment"), "label"); emp != "" {
			rec.Tags = append(rec.Tags, emp)
		}
		rec.PostedAt = parseTime(str(raw, "releasedDate"))
		out = append(out, rec)
	}
	return out
}

func experienceSeniority(label string) string {
	l := strings.ToLower(label)
	switch {
	case l == "":
		return ""
	case strings.Contains(l, "intern"):
		return model.SeniorityIntern
	case containsAny(l, "entry", "junior"):
		return model.SeniorityJunior
	case strings.Contains(l, "mid"):
		return model.SeniorityMid
	case containsAny(l, "senior", "lead"):
		return model.SenioritySenior
	case containsAny(l, "director", "executive", "vp"):
		return model.SeniorityDirector
	case strings.Contains(l, "manager"):
		return model.SeniorityManager
	}
	return ""
}
