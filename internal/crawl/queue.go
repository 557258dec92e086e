package crawl

import (
	"container/heap"
	"sync"
)

// TaskQueue is a thread-safe priority queue of tasks. Higher priority pops
// first; equal priorities pop in insertion order. The queue tracks how many
// normal tasks have been admitted but not yet finished so workers can detect
// quiescence, and it carries the pool-wide abort flag.
type TaskQueue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	items   taskHeap
	seq     uint64
	pending int
	aborted bool
	closed  bool
}

// NewTaskQueue constructs an empty queue.
func NewTaskQueue() *TaskQueue {
	q := &TaskQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push adds a task to the queue. It reports false when the queue has been
// closed, in which case the task is silently dropped so late yields during
// teardown cannot resurrect a finished crawl. Only normal tasks count toward
// the pending total.
func (q *TaskQueue) Push(task *Task) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	heap.Push(&q.items, &queuedTask{task: task, seq: q.seq})
	q.seq++
	if task.Kind == KindNormal {
		q.pending++
	}
	if task.Kind == KindAbort {
		q.cond.Broadcast()
	} else {
		q.cond.Signal()
	}
	return true
}

// Pop blocks until a task is available or a termination condition fires.
// Once an abort has been observed every call returns an abort task; when no
// normal work remains anywhere (queue empty and nothing in flight) a stop
// task is synthesized so blocked workers wake and exit cleanly.
func (q *TaskQueue) Pop() *Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	for {
		if q.aborted {
			return AbortTask()
		}
		if q.items.Len() > 0 {
			qt := heap.Pop(&q.items).(*queuedTask)
			if qt.task.Kind == KindAbort {
				q.aborted = true
				q.cond.Broadcast()
			}
			return qt.task
		}
		if q.pending == 0 {
			return StopTask()
		}
		q.cond.Wait()
	}
}

// MarkDone records that a worker finished handling a popped normal task. It
// must be called exactly once per popped normal task, success or failure.
// When the pending total reaches zero all blocked workers are woken so they
// can observe quiescence.
func (q *TaskQueue) MarkDone() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.pending <= 0 {
		panic("crawl: MarkDone without matching Push")
	}
	q.pending--
	if q.pending == 0 {
		q.cond.Broadcast()
	}
}

// Abort flips the queue into aborted mode: every subsequent or blocked Pop
// returns an abort task.
func (q *TaskQueue) Abort() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.aborted = true
	q.cond.Broadcast()
}

// Aborted reports whether an abort has been observed.
func (q *TaskQueue) Aborted() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.aborted
}

// Close marks the queue as shut down; subsequent pushes are dropped.
func (q *TaskQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
}

// Len returns the number of queued (not in-flight) tasks.
func (q *TaskQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Len()
}

// Pending returns the number of normal tasks admitted but not yet finished,
// counting both queued and in-flight work.
func (q *TaskQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pending
}

// queuedTask pairs a task with its insertion sequence for FIFO tie-breaking.
type queuedTask struct {
	task *Task
	seq  uint64
}

type taskHeap []*queuedTask

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	if h[i].task.Priority != h[j].task.Priority {
		return h[i].task.Priority > h[j].task.Priority
	}
	return h[i].seq < h[j].seq
}

func (h taskHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *taskHeap) Push(x any) { *h = append(*h, x.(*queuedTask)) }

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}
