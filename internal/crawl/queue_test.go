package crawl

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestQueuePriorityOrdering(t *testing.T) {
	t.Parallel()

	q := NewTaskQueue()
	q.Push(NewTask("http://example.com/low").WithPriority(-5))
	q.Push(NewTask("http://example.com/high").WithPriority(10))
	q.Push(NewTask("http://example.com/mid"))

	require.Equal(t, "http://example.com/high", q.Pop().URL)
	require.Equal(t, "http://example.com/mid", q.Pop().URL)
	require.Equal(t, "http://example.com/low", q.Pop().URL)
}

func TestQueueFIFOAmongEqualPriorities(t *testing.T) {
	t.Parallel()

	q := NewTaskQueue()
	urls := []string{"http://e.com/a", "http://e.com/b", "http://e.com/c", "http://e.com/d"}
	for _, u := range urls {
		q.Push(NewTask(u).WithPriority(3))
	}
	for _, want := range urls {
		require.Equal(t, want, q.Pop().URL)
	}
}

func TestQueuePendingCounting(t *testing.T) {
	t.Parallel()

	q := NewTaskQueue()
	q.Push(NewTask("http://e.com/a"))
	q.Push(NewTask("http://e.com/b"))
	require.Equal(t, 2, q.Pending())

	q.Pop()
	require.Equal(t, 2, q.Pending(), "in-flight tasks still count as pending")
	q.MarkDone()
	require.Equal(t, 1, q.Pending())
	q.Pop()
	q.MarkDone()
	require.Equal(t, 0, q.Pending())
}

func TestQueueControlTasksDoNotCountPending(t *testing.T) {
	t.Parallel()

	q := NewTaskQueue()
	q.Push(StopTask())
	q.Push(AbortTask())
	require.Equal(t, 0, q.Pending())
}

func TestQueueSynthesizesStopOnQuiescence(t *testing.T) {
	t.Parallel()

	q := NewTaskQueue()
	task := q.Pop()
	require.Equal(t, KindStop, task.Kind, "empty idle queue must hand out a stop task")
}

func TestQueueBlockedPopWakesOnQuiescence(t *testing.T) {
	t.Parallel()

	q := NewTaskQueue()
	q.Push(NewTask("http://e.com/only"))
	require.Equal(t, KindNormal, q.Pop().Kind)

	got := make(chan Kind, 1)
	go func() {
		got <- q.Pop().Kind
	}()

	time.Sleep(20 * time.Millisecond) // let the goroutine block
	q.MarkDone()

	select {
	case kind := <-got:
		require.Equal(t, KindStop, kind)
	case <-time.After(time.Second):
		t.Fatal("blocked pop did not wake after pending reached zero")
	}
}

func TestQueueAbortPreemptsPendingWork(t *testing.T) {
	t.Parallel()

	q := NewTaskQueue()
	q.Push(NewTask("http://e.com/a").WithPriority(100))
	q.Push(AbortTask())

	require.Equal(t, KindAbort, q.Pop().Kind, "abort must pop before any normal task")
	require.Equal(t, KindAbort, q.Pop().Kind, "once aborted every pop yields abort")
	require.True(t, q.Aborted())
}

func TestQueueAbortWakesBlockedWorkers(t *testing.T) {
	t.Parallel()

	q := NewTaskQueue()
	q.Push(NewTask("http://e.com/a"))
	require.Equal(t, KindNormal, q.Pop().Kind)

	const blocked = 3
	var wg sync.WaitGroup
	kinds := make(chan Kind, blocked)
	for i := 0; i < blocked; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			kinds <- q.Pop().Kind
		}()
	}

	time.Sleep(20 * time.Millisecond)
	q.Abort()
	wg.Wait()
	close(kinds)
	for kind := range kinds {
		require.Equal(t, KindAbort, kind)
	}
}

func TestQueueStopSortsBelowNormalWork(t *testing.T) {
	t.Parallel()

	q := NewTaskQueue()
	q.Push(StopTask())
	q.Push(NewTask("http://e.com/a").WithPriority(-999))

	require.Equal(t, KindNormal, q.Pop().Kind, "stop must only be drawn once normal work is gone")
	require.Equal(t, KindStop, q.Pop().Kind)
}

func TestQueuePushAfterCloseIsDropped(t *testing.T) {
	t.Parallel()

	q := NewTaskQueue()
	q.Close()
	require.False(t, q.Push(NewTask("http://e.com/late")))
	require.Equal(t, 0, q.Len())
	require.Equal(t, 0, q.Pending())
}

func TestQueueMarkDoneWithoutPushPanics(t *testing.T) {
	t.Parallel()

	q := NewTaskQueue()
	require.Panics(t, func() { q.MarkDone() })
}
