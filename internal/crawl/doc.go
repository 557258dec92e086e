// Package crawl implements the scheduling and dispatch engine: a priority
// task queue drained by a pool of concurrent workers, pattern-based handler
// selection, an admission filter chain that deduplicates candidate URLs, and
// cooperative stop/abort control tasks.
//
// A minimal crawl:
//
//	c := crawl.New(crawl.Config{Workers: 4, Client: client})
//	c.Filter(crawl.NewSeenFilter())
//	c.Handle(`example\.com/`, 0, func(ctx context.Context, req *crawl.Request) ([]*crawl.Task, error) {
//		_, doc, err := req.Client.FetchPage(ctx, req.URL)
//		if err != nil || doc == nil {
//			return nil, err
//		}
//		return crawl.URLTasks(links(doc)...), nil
//	})
//	status := c.Start(ctx, "https://example.com/")
package crawl
