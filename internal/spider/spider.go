// Package spider provides the stock link-walking handler used by the CLI: it
// fetches a page, extracts anchor targets and yields them as follow-up tasks.
package spider

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/spinneret/spinneret/internal/crawl"
	"github.com/spinneret/spinneret/internal/urlutil"
)

// NewLinkHandler builds a handler that follows every <a href> on the page.
// Pair it with a dedup filter and a host allow-list; on its own it will walk
// the entire reachable web.
func NewLinkHandler(logger *zap.Logger) crawl.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, req *crawl.Request) ([]*crawl.Task, error) {
		resp, doc, err := req.Client.FetchPage(ctx, req.URL)
		if err != nil {
			return nil, err
		}
		if doc == nil {
			logger.Warn("page fetch failed, no follow-ups",
				zap.String("url", req.URL),
				zap.Int("status", resp.StatusCode),
			)
			return nil, nil
		}
		return crawl.URLTasks(Links(doc, req.URL)...), nil
	}
}

// Links extracts all anchor targets from doc, resolved against base.
// Fragment-only links and unresolvable hrefs are skipped.
func Links(doc *goquery.Document, base string) []string {
	var links []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}
		abs, err := urlutil.Join(base, href)
		if err != nil {
			return
		}
		links = append(links, abs)
	})
	return links
}
