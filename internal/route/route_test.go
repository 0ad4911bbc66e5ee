package route

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/scout/internal/search"
)

const addressPage = "/explorer/address/0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"

func TestParse(t *testing.T) {
	t.Parallel()

	assert.Equal(t, search.Route{Path: "/explorer/"}, Parse("/explorer/"))
	assert.Equal(t, search.Route{Path: "/explorer/tx/0x1", Query: "tab=logs"}, Parse("/explorer/tx/0x1?tab=logs"))
}

func TestMemoryRouter_Navigate(t *testing.T) {
	t.Parallel()

	r := NewMemoryRouter("/explorer/")
	var seen []search.Route
	r.Subscribe(func(route search.Route) { seen = append(seen, route) })

	r.NavigateTo(addressPage)
	r.NavigateTo(addressPage)
	r.NavigateTo(addressPage + "?tab=tokens")

	assert.Equal(t, search.Route{Path: addressPage, Query: "tab=tokens"}, r.Current())
	assert.Equal(t, []string{addressPage, addressPage + "?tab=tokens"}, r.History())
	require.Len(t, seen, 2, "navigating to the current route is not a change")
}

func TestMemoryRouter_Unsubscribe(t *testing.T) {
	t.Parallel()

	r := NewMemoryRouter("/explorer/")
	calls := 0
	unsubscribe := r.Subscribe(func(search.Route) { calls++ })

	r.NavigateTo("/explorer/a")
	unsubscribe()
	r.NavigateTo("/explorer/b")

	assert.Equal(t, 1, calls)
}

func TestMemoryRouter_ListenersRunInOrder(t *testing.T) {
	t.Parallel()

	r := NewMemoryRouter("/")
	var order []int
	for i := range 5 {
		r.Subscribe(func(search.Route) { order = append(order, i) })
	}
	r.NavigateTo("/explorer/")

	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestMemoryRouter_ListenerMayReadRoute(t *testing.T) {
	t.Parallel()

	r := NewMemoryRouter("/")
	var got search.Route
	r.Subscribe(func(search.Route) { got = r.Current() })
	r.NavigateTo(addressPage)

	assert.Equal(t, addressPage, got.Path)
}

func TestMemoryRouter_Concurrent(t *testing.T) {
	t.Parallel()

	r := NewMemoryRouter("/")
	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.NavigateTo("/explorer/" + string(rune('a'+i)))
			_ = r.Current()
		}()
	}
	wg.Wait()

	assert.Len(t, r.History(), 20)
}

func TestMemoryRouter_DrivesSession(t *testing.T) {
	t.Parallel()

	r := NewMemoryRouter("/explorer/")
	s := search.NewSession(nil, r, search.Options{})
	r.Subscribe(s.RouteChanged)

	result := s.SubmitSearch(context.Background(), "0x"+strings.Repeat("ab", 32))
	require.NoError(t, result.Err)
	assert.Equal(t, search.OutcomeNavigated, result.Outcome)
	assert.False(t, s.IsLoading())
	assert.Equal(t, result.Path, r.Current().Path)
}

func TestFileRouter_PersistsRoute(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "route.json")

	r, err := NewFileRouter(path, "/explorer/")
	require.NoError(t, err)
	assert.Equal(t, "/explorer/", r.Current().Path)
	assert.Equal(t, path, r.Path())

	r.NavigateTo(addressPage)
	require.NoError(t, r.Err())

	reopened, err := NewFileRouter(path, "/explorer/")
	require.NoError(t, err)
	assert.Equal(t, addressPage, reopened.Current().Path)
}

func TestFileRouter_Reset(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "route.json")
	r, err := NewFileRouter(path, "/explorer/")
	require.NoError(t, err)

	r.NavigateTo(addressPage + "?tab=tokens")
	require.NoError(t, r.Reset("/explorer/"))

	reopened, err := NewFileRouter(path, "/elsewhere/")
	require.NoError(t, err)
	assert.Equal(t, search.Route{Path: "/explorer/"}, reopened.Current())
}

func TestFileRouter_SaveError(t *testing.T) {
	t.Parallel()

	home := filepath.Join(t.TempDir(), "home")
	r, err := NewFileRouter(filepath.Join(home, "route.json"), "/explorer/")
	require.NoError(t, err)

	// The home directory is replaced by a regular file, so saving fails.
	require.NoError(t, os.WriteFile(home, []byte("x"), 0o600))

	r.NavigateTo(addressPage)
	require.Error(t, r.Err())
	assert.Equal(t, addressPage, r.Current().Path)
}

func TestNewFileRouter_Malformed(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "route.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))

	_, err := NewFileRouter(path, "/explorer/")
	require.Error(t, err)
}
