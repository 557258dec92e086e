package crawl

import "sync"

// Filter gates whether a candidate URL is admitted to the queue. A filter
// may be stateful (the dedup seen-set is the canonical example); the chain
// serializes calls so implementations need no locking of their own.
type Filter interface {
	Admit(url string) (bool, error)
}

// FilterFunc adapts a plain predicate to the Filter interface.
type FilterFunc func(url string) bool

// Admit implements Filter.
func (f FilterFunc) Admit(url string) (bool, error) {
	return f(url), nil
}

// FilterChain runs registered filters in order under one lock. The first
// filter to reject or fail short-circuits the chain; an empty chain admits
// everything.
type FilterChain struct {
	mu      sync.Mutex
	filters []Filter
}

// NewFilterChain constructs a chain from the given filters.
func NewFilterChain(filters ...Filter) *FilterChain {
	c := &FilterChain{}
	for _, f := range filters {
		c.Append(f)
	}
	return c
}

// Append adds a filter to the end of the chain.
func (c *FilterChain) Append(f Filter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters = append(c.filters, f)
}

// Admit consults every filter in registration order. It returns false as
// soon as any filter rejects, and false plus the error if a filter fails —
// a failing filter rejects defensively rather than admitting blindly.
func (c *FilterChain) Admit(url string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, f := range c.filters {
		ok, err := f.Admit(url)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// Len returns the number of registered filters.
func (c *FilterChain) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.filters)
}
