package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errLookup = errors.New("lookup failed")

type countingNames struct {
	mu      sync.Mutex
	calls   map[Method]int
	forward map[string]string
	err     error
}

func newCountingNames() *countingNames {
	return &countingNames{
		calls:   make(map[Method]int),
		forward: map[string]string{"vitalik.eth": vitalik},
	}
}

func (n *countingNames) record(m Method) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls[m]++
	return n.err
}

func (n *countingNames) ForwardResolve(_ context.Context, name string) (string, error) {
	if err := n.record(MethodForward); err != nil {
		return "", err
	}
	return n.forward[name], nil
}

func (n *countingNames) ReverseResolve(context.Context, string) (string, error) {
	if err := n.record(MethodReverse); err != nil {
		return "", err
	}
	return "vitalik.eth", nil
}

func (n *countingNames) ResolveAvatar(context.Context, string) (string, error) {
	if err := n.record(MethodAvatar); err != nil {
		return "", err
	}
	return "", nil
}

func (n *countingNames) count(m Method) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls[m]
}

type countingRecorder struct {
	hits, misses int
}

func (r *countingRecorder) RecordCacheHit()  { r.hits++ }
func (r *countingRecorder) RecordCacheMiss() { r.misses++ }

func TestCachedNameService_Hits(t *testing.T) {
	t.Parallel()

	names := newCountingNames()
	recorder := &countingRecorder{}
	svc := NewCachedNameService(names, NewLookupCache(), time.Minute, recorder)
	ctx := context.Background()

	for range 3 {
		addr, err := svc.ForwardResolve(ctx, "vitalik.eth")
		require.NoError(t, err)
		assert.Equal(t, vitalik, addr)
	}
	assert.Equal(t, 1, names.count(MethodForward))
	assert.Equal(t, 2, recorder.hits)
	assert.Equal(t, 1, recorder.misses)

	name, err := svc.ReverseResolve(ctx, vitalik)
	require.NoError(t, err)
	assert.Equal(t, "vitalik.eth", name)
	_, _ = svc.ReverseResolve(ctx, vitalik)
	assert.Equal(t, 1, names.count(MethodReverse))
}

func TestCachedNameService_CachesEmptyAnswers(t *testing.T) {
	t.Parallel()

	names := newCountingNames()
	svc := NewCachedNameService(names, NewLookupCache(), time.Minute, nil)

	for range 2 {
		avatar, err := svc.ResolveAvatar(context.Background(), "vitalik.eth")
		require.NoError(t, err)
		assert.Empty(t, avatar)
	}
	assert.Equal(t, 1, names.count(MethodAvatar))
}

func TestCachedNameService_ErrorsNotCached(t *testing.T) {
	t.Parallel()

	names := newCountingNames()
	names.err = errLookup
	cache := NewLookupCache()
	svc := NewCachedNameService(names, cache, time.Minute, nil)

	_, err := svc.ForwardResolve(context.Background(), "vitalik.eth")
	require.ErrorIs(t, err, errLookup)
	assert.Equal(t, 0, cache.Size())

	names.mu.Lock()
	names.err = nil
	names.mu.Unlock()

	addr, err := svc.ForwardResolve(context.Background(), "vitalik.eth")
	require.NoError(t, err)
	assert.Equal(t, vitalik, addr)
	assert.Equal(t, 2, names.count(MethodForward))
}

func TestCachedNameService_StaleEntriesRefresh(t *testing.T) {
	t.Parallel()

	names := newCountingNames()
	cache := NewLookupCache()
	cache.Entries[Key(MethodForward, "vitalik.eth")] = Entry{
		Method:    MethodForward,
		Key:       "vitalik.eth",
		Value:     "0x0000000000000000000000000000000000000001",
		UpdatedAt: time.Now().Add(-time.Hour),
	}
	svc := NewCachedNameService(names, cache, time.Minute, nil)

	addr, err := svc.ForwardResolve(context.Background(), "vitalik.eth")
	require.NoError(t, err)
	assert.Equal(t, vitalik, addr)
	assert.Equal(t, 1, names.count(MethodForward))
}
