package crawl

import (
	"context"
	"fmt"
)

// downloadHandler saves the response body through the shared client. The
// target file name may be supplied under the "filename" data key; otherwise
// the client derives it from the URL.
var downloadHandler = mustHandler(`.*`, 0, func(ctx context.Context, req *Request) ([]*Task, error) {
	if req.Client == nil {
		return nil, fmt.Errorf("download task for %s: no client configured", req.URL)
	}
	filename, _ := req.Data["filename"].(string)
	if _, _, err := req.Client.Download(ctx, req.URL, filename); err != nil {
		return nil, fmt.Errorf("download %s: %w", req.URL, err)
	}
	return nil, nil
})

// NewDownloadTask builds a task that downloads url to a file instead of
// routing through the handler table. Attach a "filename" data key to control
// the file name.
func NewDownloadTask(url string) *Task {
	return NewTask(url).WithHandler(downloadHandler)
}

func mustHandler(pattern string, priority int, fn HandlerFunc) *Handler {
	h, err := NewHandler(pattern, priority, fn)
	if err != nil {
		panic(err)
	}
	return h
}
