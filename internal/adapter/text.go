package adapter

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"jobmate/ats-ingest/internal/model"
)

// CleanHTML reduces an HTML fragment to single-spaced plain text. Entity-
// escaped markup (Greenhouse "content") is unescaped first.
func CleanHTML(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	if strings.Contains(fragment, "&lt;") {
		fragment = html.UnescapeString(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.Join(strings.Fields(fragment), " ")
	}
	doc.Find("script, style").Remove()

	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			parts = append(parts, n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range doc.Nodes {
		walk(n)
	}
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

// DetectRemoteType infers the work arrangement from title, location and the
// raw entry. Hybrid wins over remote, remote over onsite.
func DetectRemoteType(title, location string, raw map[string]any) model.RemoteType {
	text := strings.ToLower(title + " " + location)
	meta := ""
	if raw != nil {
		if b, err := json.Marshal(raw); err == nil {
			meta = strings.ToLower(string(b))
		}
	}
	switch {
	case strings.Contains(text, "hybrid"), strings.Contains(meta, "hybrid"):
		return model.RemoteHybrid
	case strings.Contains(text, "remote"), strings.Contains(meta, "remote"):
		return model.RemoteRemote
	case containsAny(text, "on-site", "onsite", "in-office"), containsAny(meta, "on-site", "onsite"):
		return model.RemoteOnsite
	}
	return model.RemoteUnknown
}

// DetectSeniority infers the level from a job title; "mid" when nothing
// matches.
func DetectSeniority(title string) string {
	t := strings.ToLower(title)
	switch {
	case containsAny(t, "intern ", "internship"):
		return model.SeniorityIntern
	case containsAny(t, "junior", "jr.", "jr ", "entry level", "entry-level", "new grad"):
		return model.SeniorityJunior
	case containsAny(t, "senior", "sr.", "sr ", "lead", "principal", "staff"):
		return model.SenioritySenior
	case containsAny(t, "director", "vp ", "vice president", "head of", "chief"):
		return model.SeniorityDirector
	case containsAny(t, "manager"):
		return model.SeniorityManager
	}
	return model.SeniorityMid
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

var amountRe = regexp.MustCompile(`[\d,]+\.?\d*[kK]?`)

// ParseSalary reads ranges like "$120,000 - $180,000" or "€60K–€80K".
// A single amount yields only a minimum. Currency defaults to USD.
func ParseSalary(s string) (minimum, maximum *int, currency string) {
	currency = "USD"
	lower := strings.ToLower(s)
	switch {
	case strings.Contains(s, "€") || strings.Contains(lower, "eur"):
		currency = "EUR"
	case strings.Contains(s, "£") || strings.Contains(lower, "gbp"):
		currency = "GBP"
	}

	var amounts []int
	for _, m := range amountRe.FindAllString(s, -1) {
		if n, ok := parseAmount(m); ok && n > 0 {
			amounts = append(amounts, n)
		}
	}
	switch len(amounts) {
	case 0:
		return nil, nil, currency
	case 1:
		return &amounts[0], nil, currency
	}
	lo, hi := amounts[0], amounts[0]
	for _, a := range amounts[1:] {
		lo = min(lo, a)
		hi = max(hi, a)
	}
	return &lo, &hi, currency
}

// parseAmount handles thousands separators and a trailing k.
func parseAmount(s string) (int, bool) {
	s = strings.ReplaceAll(s, ",", "")
	mult := 1.0
	if strings.HasSuffix(strings.ToLower(s), "k") {
		s = s[:len(s)-1]
		mult = 1000
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return int(f * mult), true
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05 MST",
	"2006-01-02",
}

// parseTime accepts the ISO-8601 variants seen across boards.
func parseTime(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// millisTime converts an epoch-milliseconds JSON number.
func millisTime(v any) *time.Time {
	f, ok := v.(float64)
	if !ok || f <= 0 {
		return nil
	}
	t := time.UnixMilli(int64(f)).UTC()
	return &t
}
