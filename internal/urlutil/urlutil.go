// Package urlutil provides URL helpers shared by filters, handlers and the
// HTTP client.
package urlutil

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]+`)
	multiWS  = regexp.MustCompile(`\s\s+`)
)

// Filename extracts the file name (last path segment) from a URL.
func Filename(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	p := strings.Trim(u.Path, "/")
	if p == "" {
		return ""
	}
	parts := strings.Split(p, "/")
	return parts[len(parts)-1]
}

// Ext extracts the file extension (including the dot) from a URL path.
func Ext(rawURL string) string {
	return path.Ext(Filename(rawURL))
}

// Join resolves ref (possibly several path segments) against base, producing
// an absolute URL.
func Join(base string, ref ...string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	r, err := url.Parse(strings.Join(ref, "/"))
	if err != nil {
		return "", fmt.Errorf("parse ref url: %w", err)
	}
	return b.ResolveReference(r).String(), nil
}

// Replace parses rawURL, applies mutate to the parsed form and returns the
// reassembled URL. Useful for swapping a single component, e.g. forcing a
// scheme or rewriting the path.
func Replace(rawURL string, mutate func(*url.URL)) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	mutate(u)
	return u.String(), nil
}

// Sanitize reduces a string to `a-z0-9` and dashes so it can be used as a
// file or directory name. Unicode letters are decomposed to their ASCII base
// form first. Set keepCase to preserve the original casing.
func Sanitize(s string, keepCase bool) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	asciized, _, err := transform.String(t, s)
	if err != nil {
		asciized = s
	}
	var b strings.Builder
	for _, r := range asciized {
		if r < 128 {
			b.WriteRune(r)
		}
	}
	out := strings.Trim(nonAlnum.ReplaceAllString(b.String(), "-"), "-")
	if keepCase {
		return out
	}
	return strings.ToLower(out)
}

// StripWhite collapses runs of whitespace into single spaces and trims the
// ends.
func StripWhite(s string) string {
	return multiWS.ReplaceAllString(strings.TrimSpace(s), " ")
}

// Normalize standardizes a URL so equivalent spellings deduplicate to the
// same key. It lowercases the scheme and host, removes default ports and the
// fragment, and sorts query parameters.
func Normalize(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)

	if u.Scheme == "http" && strings.HasSuffix(u.Host, ":80") {
		u.Host = strings.TrimSuffix(u.Host, ":80")
	}
	if u.Scheme == "https" && strings.HasSuffix(u.Host, ":443") {
		u.Host = strings.TrimSuffix(u.Host, ":443")
	}

	u.Fragment = ""

	q := u.Query()
	u.RawQuery = q.Encode()

	return u.String(), nil
}
