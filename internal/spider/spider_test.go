package spider

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/spinneret/spinneret/internal/crawl"
)

type fakeClient struct {
	html   string
	status int
}

func (f *fakeClient) Fetch(_ context.Context, _, _ string, _ time.Duration) (*http.Response, error) {
	return &http.Response{StatusCode: f.status}, nil
}

func (f *fakeClient) FetchPage(_ context.Context, _ string) (*http.Response, *goquery.Document, error) {
	resp := &http.Response{StatusCode: f.status}
	if f.status < 200 || f.status > 299 {
		return resp, nil, nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(f.html))
	if err != nil {
		return resp, nil, err
	}
	return resp, doc, nil
}

func (f *fakeClient) Download(_ context.Context, _, _ string) (string, int64, error) {
	return "", 0, nil
}

func TestLinks(t *testing.T) {
	t.Parallel()

	html := `<html><body>
		<a href="/about">About</a>
		<a href="https://other.example.org/page">Other</a>
		<a href="#section">Fragment</a>
		<a href="  ">Blank</a>
		<a>No href</a>
	</body></html>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	links := Links(doc, "https://example.com/index.html")
	require.Equal(t, []string{
		"https://example.com/about",
		"https://other.example.org/page",
	}, links)
}

func TestLinkHandlerYieldsFollowUps(t *testing.T) {
	t.Parallel()

	cli := &fakeClient{
		html:   `<a href="/a">a</a><a href="/b">b</a>`,
		status: http.StatusOK,
	}
	fn := NewLinkHandler(nil)

	tasks, err := fn(context.Background(), &crawl.Request{
		Client: cli,
		URL:    "https://example.com/",
	})
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	require.Equal(t, "https://example.com/a", tasks[0].URL)
	require.Equal(t, "https://example.com/b", tasks[1].URL)
}

func TestLinkHandlerSkipsFailedFetch(t *testing.T) {
	t.Parallel()

	cli := &fakeClient{status: http.StatusNotFound}
	fn := NewLinkHandler(nil)

	tasks, err := fn(context.Background(), &crawl.Request{
		Client: cli,
		URL:    "https://example.com/missing",
	})
	require.NoError(t, err)
	require.Empty(t, tasks)
}
