package crawl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewTaskDefaults(t *testing.T) {
	t.Parallel()

	task := NewTask("http://example.com/")
	require.NotEmpty(t, task.ID)
	require.Equal(t, KindNormal, task.Kind)
	require.Equal(t, 0, task.Priority)
	require.NotNil(t, task.Data)
	require.Nil(t, task.Handler)
}

func TestTaskChaining(t *testing.T) {
	t.Parallel()

	h := mustHandler(`.*`, 0, noopHandler)
	task := NewTask("http://example.com/").
		WithPriority(7).
		WithData(map[string]any{"depth": 2}).
		WithHandler(h)

	require.Equal(t, 7, task.Priority)
	require.Equal(t, 2, task.Data["depth"])
	require.Same(t, h, task.Handler)
}

func TestControlTaskPriorities(t *testing.T) {
	t.Parallel()

	require.Equal(t, StopPriority, StopTask().Priority)
	require.Equal(t, AbortPriority, AbortTask().Priority)
	require.Equal(t, KindStop, StopTask().Kind)
	require.Equal(t, KindAbort, AbortTask().Kind)
}

func TestURLTasks(t *testing.T) {
	t.Parallel()

	tasks := URLTasks("http://e.com/a", "http://e.com/b")
	require.Len(t, tasks, 2)
	require.Equal(t, "http://e.com/a", tasks[0].URL)
	require.Equal(t, "http://e.com/b", tasks[1].URL)
}

func TestTaskString(t *testing.T) {
	t.Parallel()

	require.Equal(t, `<task "http://e.com/a">`, NewTask("http://e.com/a").String())
	require.Equal(t, "<task stop>", StopTask().String())
	require.Equal(t, "<task abort>", AbortTask().String())
}

func TestNewDownloadTaskRequiresClient(t *testing.T) {
	t.Parallel()

	task := NewDownloadTask("http://example.com/file.zip")
	require.NotNil(t, task.Handler)

	_, err := task.Handler.invoke(context.Background(), &Request{URL: task.URL, Data: task.Data})
	require.Error(t, err, "download without a configured client must fail, not panic")
}
