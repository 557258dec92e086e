package crawl

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spinneret/spinneret/internal/urlutil"
)

// SeenFilter rejects URLs that have already been admitted once, keyed by
// normalized URL so trivially different spellings deduplicate together.
// It relies on the chain's lock for concurrency safety.
type SeenFilter struct {
	seen map[string]struct{}
}

// NewSeenFilter constructs an empty dedup filter.
func NewSeenFilter() *SeenFilter {
	return &SeenFilter{seen: make(map[string]struct{})}
}

// Admit implements Filter. A URL that fails normalization is rejected with
// the error rather than admitted unchecked.
func (f *SeenFilter) Admit(rawURL string) (bool, error) {
	key, err := urlutil.Normalize(rawURL)
	if err != nil {
		return false, fmt.Errorf("normalize for dedup: %w", err)
	}
	if _, ok := f.seen[key]; ok {
		return false, nil
	}
	f.seen[key] = struct{}{}
	return true, nil
}

// Size returns how many distinct URLs have been seen.
func (f *SeenFilter) Size() int {
	return len(f.seen)
}

// AllowHosts builds a filter admitting only URLs whose host equals one of
// the given hosts or is a subdomain of one. An empty list admits everything.
func AllowHosts(hosts ...string) Filter {
	allowed := make([]string, 0, len(hosts))
	for _, h := range hosts {
		allowed = append(allowed, strings.ToLower(h))
	}
	return FilterFunc(func(rawURL string) bool {
		if len(allowed) == 0 {
			return true
		}
		u, err := url.Parse(rawURL)
		if err != nil {
			return false
		}
		host := strings.ToLower(u.Hostname())
		for _, a := range allowed {
			if host == a || strings.HasSuffix(host, "."+a) {
				return true
			}
		}
		return false
	})
}

// SchemeFilter admits only http and https URLs, dropping mailto, javascript
// and similar link schemes handlers commonly scrape up.
func SchemeFilter() Filter {
	return FilterFunc(func(rawURL string) bool {
		u, err := url.Parse(rawURL)
		if err != nil {
			return false
		}
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return true
		default:
			return false
		}
	})
}
