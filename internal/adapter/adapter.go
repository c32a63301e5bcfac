// Package adapter maps source-specific board payloads to model.JobRecord.
//
// Adapters are pure: no I/O, no panics on malformed input. Entries missing a
// URL or title are dropped; everything else is best effort.
package adapter

import (
	"encoding/json"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"jobmate/ats-ingest/internal/model"
)

// Adapter normalises one source type.
type Adapter interface {
	// SourceType is the tag stored on targets ("greenhouse", "lever", …).
	SourceType() string
	// Endpoint is the public API URL of the board identified by slug.
	Endpoint(slug string) string
	// Adapt converts a decoded JSON payload.
	Adapt(payload any, slug string) []model.JobRecord
}

// Registry is the source-type dispatch table, built once at startup.
type Registry struct {
	byType map[string]Adapter
}

// NewRegistry indexes adapters by lower-cased source type. Later entries win.
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{byType: make(map[string]Adapter, len(adapters))}
	for _, a := range adapters {
		r.byType[strings.ToLower(a.SourceType())] = a
	}
	return r
}

// Default returns the registry of every shipped adapter.
func Default() *Registry {
	return NewRegistry(
		Greenhouse{},
		Lever{},
		Ashby{},
		Workable{},
		Recruitee{},
		SmartRecruiters{},
		Dover{},
		Breezy{},
		BambooHR{},
		Teamtailor{},
		Pinpoint{},
		Rippling{},
		Personio{},
		Freshteam{},
	)
}

// Lookup finds the adapter for sourceType, case-insensitively.
func (r *Registry) Lookup(sourceType string) (Adapter, bool) {
	a, ok := r.byType[strings.ToLower(strings.TrimSpace(sourceType))]
	return a, ok
}

// SourceTypes lists the registered tags in order.
func (r *Registry) SourceTypes() []string {
	out := make([]string, 0, len(r.byType))
	for k := range r.byType {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ── payload access ─────────────────────────────────────────────────────────

// entries returns the list of job objects held by payload: either the
// payload itself when it is an array, or the first listed key holding one.
func entries(payload any, keys ...string) []map[string]any {
	var list []any
	switch v := payload.(type) {
	case []any:
		list = v
	case map[string]any:
		for _, k := range keys {
			if l, ok := v[k].([]any); ok {
				list = l
				break
			}
		}
	}
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func str(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}

func obj(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	o, _ := m[key].(map[string]any)
	return o
}

// flag distinguishes an explicit false from a missing key.
func flag(m map[string]any, key string) (value, present bool) {
	b, ok := m[key].(bool)
	return b, ok
}

// positiveInt accepts JSON numbers and numeric strings; zero and negatives
// count as absent.
func positiveInt(v any) *int {
	var n int
	switch x := v.(type) {
	case float64:
		n = int(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return nil
		}
		n = int(f)
	case string:
		f, ok := parseAmount(strings.TrimSpace(x))
		if !ok {
			return nil
		}
		n = f
	default:
		return nil
	}
	if n <= 0 {
		return nil
	}
	return &n
}

// scalar reads a string or numeric field as text. Ids arrive as either.
func scalar(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	}
	return ""
}

// named reads v as a plain string or as an object's "name".
func named(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case map[string]any:
		return str(x, "name")
	}
	return ""
}

func stringList(v any) []string {
	items, _ := v.([]any)
	var out []string
	for _, it := range items {
		if s, ok := it.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

// titleWords turns enum values like "FULL_TIME" into "Full Time".
func titleWords(s string) string {
	return cases.Title(language.Und).String(strings.ReplaceAll(s, "_", " "))
}

// pathSlug escapes a board slug before it is spliced into an endpoint.
func pathSlug(slug string) string {
	return url.PathEscape(slug)
}

// newRecord fills the defaults shared by every adapter.
func newRecord(link, title string, raw map[string]any) model.JobRecord {
	rec := model.JobRecord{
		URL:            link,
		Title:          title,
		SalaryCurrency: "USD",
		RemoteType:     model.RemoteUnknown,
		Seniority:      DetectSeniority(title),
	}
	if b, err := json.Marshal(raw); err == nil {
		rec.Raw = b
	}
	return rec
}

func locationParts(loc map[string]any) string {
	if loc == nil {
		return ""
	}
	var parts []string
	for _, k := range []string{"city", "region"} {
		if v := str(loc, k); v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		if c := str(loc, "country"); c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, ", ")
}

// placeName prefers an explicit name, then "city, state", then the country.
// state and country may be plain strings or {"name": …} objects.
func placeName(v any) string {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	loc, _ := v.(map[string]any)
	if name := str(loc, "name"); name != "" {
		return name
	}
	var parts []string
	for _, k := range []string{"city", "state"} {
		if s := named(loc[k]); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		if c := named(loc["country"]); c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, ", ")
}

// salaryObject copies a {"min", "max", "currency"} object onto rec.
func salaryObject(rec *model.JobRecord, sr map[string]any) {
	if sr == nil {
		return
	}
	rec.SalaryMin = positiveInt(sr["min"])
	rec.SalaryMax = positiveInt(sr["max"])
	if c := str(sr, "currency"); c != "" {
		rec.SalaryCurrency = c
	}
}

func workplaceType(value string) (model.RemoteType, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "remote":
		return model.RemoteRemote, true
	case "hybrid":
		return model.RemoteHybrid, true
	case "onsite", "on-site", "on_site", "in_office":
		return model.RemoteOnsite, true
	}
	return "", false
}
