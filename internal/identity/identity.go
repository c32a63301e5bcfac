// Package identity derives the deduplication key of a job offer from its URL.
//
// Two offers whose URLs differ only by scheme/host case, a leading "www.",
// query string, fragment, port or trailing slash share the same key.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
)

const defaultScheme = "https"

// NormalizeURL canonicalises raw for deduplication:
// lowercase scheme and host, strip "www.", drop port, query and fragment,
// strip trailing slashes. NormalizeURL(NormalizeURL(u)) == NormalizeURL(u).
//
// Strings url.Parse rejects (an invalid percent-escape, say) get the same
// treatment by hand.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		n := normalizeUnparsed(raw)
		if _, err := url.Parse(n); err == nil {
			return NormalizeURL(n)
		}
		return n
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme == "" {
		scheme = defaultScheme
	}

	if u.Opaque != "" {
		return scheme + ":" + strings.TrimRight(u.Opaque, "/")
	}

	host := strings.ToLower(u.Hostname())
	for strings.HasPrefix(host, "www.") {
		host = host[len("www."):]
	}

	path := strings.TrimRight(u.EscapedPath(), "/")
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return scheme + "://" + host + path
}

// normalizeUnparsed splits raw textually: fragment and query go, then
// scheme and host are lowercased with userinfo, port and "www." removed.
// The path is kept as written minus trailing slashes.
func normalizeUnparsed(raw string) string {
	raw, _, _ = strings.Cut(raw, "#")
	raw, _, _ = strings.Cut(raw, "?")

	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		if !strings.HasPrefix(raw, "//") {
			return strings.TrimRight(raw, "/")
		}
		rest = raw[len("//"):]
	}
	scheme = strings.ToLower(scheme)
	if scheme == "" {
		scheme = defaultScheme
	}

	host, path, _ := strings.Cut(rest, "/")
	if i := strings.LastIndex(host, "@"); i >= 0 {
		host = host[i+1:]
	}
	if strings.HasPrefix(host, "[") {
		if i := strings.Index(host, "]"); i >= 0 {
			host = host[:i+1]
		}
	} else if i := strings.Index(host, ":"); i >= 0 {
		host = host[:i]
	}
	host = strings.ToLower(host)
	for strings.HasPrefix(host, "www.") {
		host = host[len("www."):]
	}

	if path = strings.TrimRight(path, "/"); path != "" {
		path = "/" + path
	}
	return scheme + "://" + host + path
}

// Key is the hex SHA-256 of the normalised URL. It is the only uniqueness
// constraint of stored jobs (jobs.url_hash).
func Key(rawURL string) string {
	sum := sha256.Sum256([]byte(NormalizeURL(rawURL)))
	return hex.EncodeToString(sum[:])
}
