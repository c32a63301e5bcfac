package store

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"jobmate/ats-ingest/internal/model"
)

// targetsFile is the on-disk layout read by LoadTargetsFile:
//
//	targets:
//	  - slug: stripe
//	    ats: greenhouse
//	    name: Stripe
//	    api_url: https://boards-api.greenhouse.io/v1/boards/stripe/jobs?content=true
type targetsFile struct {
	Targets []fileTarget `yaml:"targets"`
}

type fileTarget struct {
	ID       string `yaml:"id"`
	Slug     string `yaml:"slug"`
	ATS      string `yaml:"ats"`
	Name     string `yaml:"name"`
	APIURL   string `yaml:"api_url"`
	Verified *bool  `yaml:"verified"` // defaults to true
}

// LoadTargetsFile reads targets from a YAML file. Entries without an id get
// "<ats>:<slug>".
func LoadTargetsFile(path string) ([]model.Target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read targets file %s", path)
	}
	var doc targetsFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, "parse targets file %s", path)
	}

	targets := make([]model.Target, 0, len(doc.Targets))
	seen := make(map[string]bool, len(doc.Targets))
	for i, ft := range doc.Targets {
		slug := strings.ToLower(strings.TrimSpace(ft.Slug))
		ats := strings.ToLower(strings.TrimSpace(ft.ATS))
		if slug == "" || ats == "" {
			return nil, errors.Newf("%s: entry %d needs both slug and ats", path, i+1)
		}
		id := strings.TrimSpace(ft.ID)
		if id == "" {
			id = ats + ":" + slug
		}
		if seen[id] {
			return nil, errors.Newf("%s: duplicate target %s", path, id)
		}
		seen[id] = true

		verified := true
		if ft.Verified != nil {
			verified = *ft.Verified
		}
		targets = append(targets, model.Target{
			ID:         id,
			Slug:       slug,
			SourceType: ats,
			Name:       strings.TrimSpace(ft.Name),
			Endpoint:   strings.TrimSpace(ft.APIURL),
			Verified:   verified,
		})
	}
	return targets, nil
}
