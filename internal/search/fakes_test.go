package search_test

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mrz1836/scout/internal/search"
)

type fakeRouter struct {
	mu          sync.Mutex
	path        string
	navigations []string
	onNavigate  func(search.Route)
}

func newFakeRouter(path string) *fakeRouter {
	return &fakeRouter{path: path}
}

func (r *fakeRouter) NavigateTo(path string) {
	r.mu.Lock()
	r.path = path
	r.navigations = append(r.navigations, path)
	notify := r.onNavigate
	r.mu.Unlock()

	if notify != nil {
		notify(search.Route{Path: path})
	}
}

func (r *fakeRouter) Current() search.Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return search.Route{Path: r.path}
}

func (r *fakeRouter) Navigations() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.navigations...)
}

// fakeNames is an in-memory NameService. A gate registered for an argument
// blocks that lookup until the gate is closed.
type fakeNames struct {
	mu           sync.Mutex
	forward      map[string]string
	reverse      map[string]string
	avatars      map[string]string
	forwardErr   error
	reverseErr   error
	gates        map[string]chan struct{}
	ignoreCancel bool
	started      chan string
	calls        []string
	canceled     []string
}

func newFakeNames() *fakeNames {
	return &fakeNames{
		forward: make(map[string]string),
		reverse: make(map[string]string),
		avatars: make(map[string]string),
		gates:   make(map[string]chan struct{}),
		started: make(chan string, 64),
	}
}

func (f *fakeNames) gate(arg string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	g := make(chan struct{})
	f.gates[arg] = g
	return g
}

func (f *fakeNames) enter(ctx context.Context, method, arg string) error {
	f.mu.Lock()
	f.calls = append(f.calls, method+":"+arg)
	g := f.gates[arg]
	ignore := f.ignoreCancel
	f.mu.Unlock()

	select {
	case f.started <- arg:
	default:
	}
	if g == nil {
		return nil
	}

	if ignore {
		<-g
		return nil
	}
	select {
	case <-g:
		return nil
	case <-ctx.Done():
		f.mu.Lock()
		f.canceled = append(f.canceled, arg)
		f.mu.Unlock()
		return ctx.Err()
	}
}

func (f *fakeNames) ForwardResolve(ctx context.Context, name string) (string, error) {
	if err := f.enter(ctx, search.MethodForward, name); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.forwardErr != nil {
		return "", f.forwardErr
	}
	return f.forward[name], nil
}

func (f *fakeNames) ReverseResolve(ctx context.Context, address string) (string, error) {
	if err := f.enter(ctx, search.MethodReverse, address); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reverseErr != nil {
		return "", f.reverseErr
	}
	return f.reverse[address], nil
}

func (f *fakeNames) ResolveAvatar(ctx context.Context, name string) (string, error) {
	if err := f.enter(ctx, search.MethodAvatar, "avatar:"+name); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.avatars[name], nil
}

// waitStarted blocks until a lookup for arg has begun.
func (f *fakeNames) waitStarted(t *testing.T, arg string) {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case got := <-f.started:
			if got == arg {
				return
			}
		case <-timeout:
			t.Fatalf("lookup for %s never started", arg)
		}
	}
}

func (f *fakeNames) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeNames) Canceled() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.canceled...)
}

func (f *fakeNames) countCalls(method string) int {
	n := 0
	for _, c := range f.Calls() {
		if strings.HasPrefix(c, method+":") {
			n++
		}
	}
	return n
}

type lookupRecord struct {
	method   string
	duration time.Duration
	err      error
}

type fakeRecorder struct {
	mu       sync.Mutex
	searches []string
	outcomes []string
	lookups  []lookupRecord
}

func (r *fakeRecorder) RecordSearch(kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.searches = append(r.searches, kind)
}

func (r *fakeRecorder) RecordOutcome(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

func (r *fakeRecorder) RecordLookup(method string, d time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups = append(r.lookups, lookupRecord{method: method, duration: d, err: err})
}

// newTestSession wires the router's navigation notifications back into the session.
func newTestSession(names search.NameService, router *fakeRouter, opts search.Options) *search.Session {
	s := search.NewSession(names, router, opts)
	router.onNavigate = s.RouteChanged
	return s
}

type logRecord struct {
	level string
	msg   string
	attrs map[string]string
}

// recordingLogger captures structured records and printf lines.
type recordingLogger struct {
	mu      sync.Mutex
	records []logRecord
}

func (l *recordingLogger) Debug(format string, args ...any) {
	l.add("debug", fmt.Sprintf(format, args...), nil)
}

func (l *recordingLogger) Error(format string, args ...any) {
	l.add("error", fmt.Sprintf(format, args...), nil)
}

func (l *recordingLogger) DebugAttrs(msg string, attrs ...slog.Attr) {
	l.add("debug", msg, attrs)
}

func (l *recordingLogger) ErrorAttrs(msg string, attrs ...slog.Attr) {
	l.add("error", msg, attrs)
}

func (l *recordingLogger) add(level, msg string, attrs []slog.Attr) {
	m := make(map[string]string, len(attrs))
	for _, a := range attrs {
		m[a.Key] = a.Value.String()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, logRecord{level: level, msg: msg, attrs: m})
}

func (l *recordingLogger) find(msg string) (logRecord, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, r := range l.records {
		if r.msg == msg {
			return r, true
		}
	}
	return logRecord{}, false
}
