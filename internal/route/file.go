package route

import (
	"fmt"
	"sync"
	"time"

	"github.com/mrz1836/scout/internal/fileutil"
	"github.com/mrz1836/scout/internal/search"
)

// state is the on-disk form of the active route.
type state struct {
	Path      string    `json:"path"`
	Query     string    `json:"query,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FileRouter is a MemoryRouter whose active route is saved to a JSON file on
// every change, so a later run starts where the previous one stopped.
type FileRouter struct {
	*MemoryRouter

	path    string
	mu      sync.Mutex
	lastErr error
}

// NewFileRouter loads the route saved at path, or starts at fallback when
// there is none.
func NewFileRouter(path, fallback string) (*FileRouter, error) {
	var saved state
	found, err := fileutil.ReadJSON(path, &saved)
	if err != nil {
		return nil, fmt.Errorf("loading route: %w", err)
	}

	initial := fallback
	if found && saved.Path != "" {
		initial = saved.Path
		if saved.Query != "" {
			initial += "?" + saved.Query
		}
	}

	r := &FileRouter{
		MemoryRouter: NewMemoryRouter(initial),
		path:         path,
	}
	// Registered first so the file is written before other listeners run.
	r.Subscribe(r.persist)
	return r, nil
}

// Path returns the route file path.
func (r *FileRouter) Path() string {
	return r.path
}

// Err returns the error from the most recent save, if any.
func (r *FileRouter) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}

// Reset moves to location and saves it even when it is already current.
func (r *FileRouter) Reset(location string) error {
	r.NavigateTo(location)
	r.persist(r.Current())
	return r.Err()
}

func (r *FileRouter) persist(route search.Route) {
	err := fileutil.WriteJSON(r.path, state{
		Path:      route.Path,
		Query:     route.Query,
		UpdatedAt: time.Now().UTC(),
	})

	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastErr = err
}
