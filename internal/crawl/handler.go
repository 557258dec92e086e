package crawl

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"sync"
)

// Request carries everything a handler may need for one task: the shared
// network client, the task URL and payload, and the pattern match groups.
type Request struct {
	// Client is the shared network client. Read-only during a run.
	Client Client
	// URL is the task URL being processed.
	URL string
	// Data is the opaque payload carried by the task.
	Data map[string]any
	// Groups holds the regex match groups for the selected handler's
	// pattern: "0" is the full match, "1".."n" the numbered groups, and
	// named groups appear under their names. Nil when the handler's
	// pattern does not match the URL (possible for forced handlers).
	Groups map[string]string
}

// HandlerFunc processes one matched URL and returns follow-up tasks. The
// engine pushes every returned task through the filter chain before marking
// the parent done. Returning an empty slice (terminal page) is valid.
type HandlerFunc func(ctx context.Context, req *Request) ([]*Task, error)

// Handler couples a compiled URL pattern with the function that processes
// matching URLs. Patterns use regexp search semantics: a match anywhere in
// the URL selects the handler.
type Handler struct {
	pattern  *regexp.Regexp
	priority int
	fn       HandlerFunc
}

// NewHandler compiles pattern and wraps fn. Regex flags are expressed inline
// in the pattern source, e.g. `(?i)` for case-insensitive matching.
func NewHandler(pattern string, priority int, fn HandlerFunc) (*Handler, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile handler pattern %q: %w", pattern, err)
	}
	if fn == nil {
		return nil, fmt.Errorf("handler for pattern %q has nil func", pattern)
	}
	return &Handler{pattern: re, priority: priority, fn: fn}, nil
}

// Match reports whether the handler's pattern matches anywhere in url.
func (h *Handler) Match(url string) bool {
	return h.pattern.MatchString(url)
}

// Groups returns all match groups for url: the full match under "0",
// numbered groups under "1".."n", and named groups under their names. It
// returns nil when the pattern does not match.
func (h *Handler) Groups(url string) map[string]string {
	m := h.pattern.FindStringSubmatch(url)
	if m == nil {
		return nil
	}
	groups := make(map[string]string, len(m))
	for i, val := range m {
		groups[strconv.Itoa(i)] = val
	}
	for i, name := range h.pattern.SubexpNames() {
		if name != "" && i < len(m) {
			groups[name] = m[i]
		}
	}
	return groups
}

// Pattern returns the source of the compiled pattern, for logging.
func (h *Handler) Pattern() string {
	return h.pattern.String()
}

// invoke runs the handler function, converting a panic in user code into an
// error so one misbehaving handler cannot take down the pool.
func (h *Handler) invoke(ctx context.Context, req *Request) (tasks []*Task, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h.fn(ctx, req)
}

// HandlerTable is an ordered registry of handlers. Entries stay sorted by
// descending priority with registration order preserved among equals, and
// lookup returns the first entry whose pattern matches. Registration happens
// before the crawl starts; lookups during a run are read-only.
type HandlerTable struct {
	mu       sync.RWMutex
	handlers []*Handler
}

// NewHandlerTable constructs an empty table.
func NewHandlerTable() *HandlerTable {
	return &HandlerTable{}
}

// Register inserts the handler at the position its priority dictates.
// Specific-before-generic ordering is the selection policy: give narrow
// patterns a higher priority than catch-alls.
func (t *HandlerTable) Register(h *Handler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	idx := len(t.handlers)
	for i, existing := range t.handlers {
		if existing.priority < h.priority {
			idx = i
			break
		}
	}
	t.handlers = append(t.handlers, nil)
	copy(t.handlers[idx+1:], t.handlers[idx:])
	t.handlers[idx] = h
}

// Select returns the highest-priority handler whose pattern matches url, or
// nil when no handler matches.
func (t *HandlerTable) Select(url string) *Handler {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, h := range t.handlers {
		if h.Match(url) {
			return h
		}
	}
	return nil
}

// Len returns the number of registered handlers.
func (t *HandlerTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.handlers)
}
