package crawl

import (
	"context"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Client is the network surface the engine hands to every handler. The
// engine never calls it itself and never mutates its configuration; it is
// shared read-mostly across all workers.
type Client interface {
	// Fetch performs an HTTP request. A positive delay pauses before the
	// request when it exceeds the client's own configured pacing.
	Fetch(ctx context.Context, method, url string, delay time.Duration) (*http.Response, error)
	// FetchPage GETs url and parses the body. The document is nil exactly
	// when the response status is not a success.
	FetchPage(ctx context.Context, url string) (*http.Response, *goquery.Document, error)
	// Download GETs url and streams the body to a file under the client's
	// working directory, deriving the name from the URL when filename is
	// empty. It returns the file name used and the byte size written.
	Download(ctx context.Context, url, filename string) (string, int64, error)
}
