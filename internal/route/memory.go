// Package route provides Router implementations for the search session: an
// in-process router and one that persists the active route between runs.
package route

import (
	"strings"
	"sync"

	"github.com/mrz1836/scout/internal/search"
)

// Listener is called after the route changes.
type Listener func(search.Route)

// MemoryRouter keeps the active route in memory and notifies listeners
// synchronously, outside its lock.
type MemoryRouter struct {
	mu        sync.Mutex
	current   search.Route
	listeners map[int]Listener
	nextID    int
	history   []string
}

// Compile-time interface check
var _ search.Router = (*MemoryRouter)(nil)

// NewMemoryRouter creates a router positioned at initial, which may carry a query.
func NewMemoryRouter(initial string) *MemoryRouter {
	return &MemoryRouter{
		current:   Parse(initial),
		listeners: make(map[int]Listener),
	}
}

// Parse splits "path?query" into a Route.
func Parse(location string) search.Route {
	path, query, _ := strings.Cut(location, "?")
	return search.Route{Path: path, Query: query}
}

// NavigateTo changes the active route and notifies listeners when it differs.
func (r *MemoryRouter) NavigateTo(location string) {
	next := Parse(location)

	r.mu.Lock()
	if next == r.current {
		r.mu.Unlock()
		return
	}
	r.current = next
	r.history = append(r.history, location)
	listeners := r.snapshotListeners()
	r.mu.Unlock()

	for _, l := range listeners {
		l(next)
	}
}

// Current returns the active route.
func (r *MemoryRouter) Current() search.Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Subscribe registers l and returns a function that removes it. Listeners
// run in subscription order.
func (r *MemoryRouter) Subscribe(l Listener) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++
	r.listeners[id] = l

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.listeners, id)
	}
}

// History returns every location navigated to, oldest first.
func (r *MemoryRouter) History() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.history...)
}

func (r *MemoryRouter) snapshotListeners() []Listener {
	out := make([]Listener, 0, len(r.listeners))
	for id := 0; id < r.nextID; id++ {
		if l, ok := r.listeners[id]; ok {
			out = append(out, l)
		}
	}
	return out
}
