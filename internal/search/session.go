package search

import (
	"context"
	"log/slog"
	"sync"
	"time"

	scouterr "github.com/mrz1836/scout/pkg/errors"
)

// Defaults used when options are left empty.
const (
	DefaultRoutePrefix = "/explorer/"
	DefaultSettleDelay = 300 * time.Millisecond
)

// Phase is where the session is within a search cycle.
type Phase int

// Session phases. Every phase but PhaseIdle counts as loading.
const (
	PhaseIdle Phase = iota
	PhaseSearching
	PhaseNavigating
	PhaseSettling
)

// String returns the lowercase name of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseSearching:
		return "searching"
	case PhaseNavigating:
		return "navigating"
	case PhaseSettling:
		return "settling"
	default:
		return "idle"
	}
}

// MarshalText renders the phase by name in JSON output.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Recorder receives search activity for metrics.
type Recorder interface {
	LookupRecorder
	RecordSearch(kind string)
	RecordOutcome(outcome string)
}

// Options configures a Session.
type Options struct {
	// RoutePrefix is prepended to every explorer path. Defaults to DefaultRoutePrefix.
	RoutePrefix string

	// SettleDelay keeps the session loading briefly when a search lands on the
	// page already shown. Zero ends loading immediately.
	SettleDelay time.Duration

	// LookupTimeout bounds each name service call. Zero means no bound.
	LookupTimeout time.Duration

	Logger   LogWriter
	Recorder Recorder
}

// State is a snapshot of the session.
type State struct {
	Seq             uint64   `json:"seq"`
	Phase           Phase    `json:"phase"`
	Outcome         Outcome  `json:"outcome"`
	RawInput        string   `json:"raw_input"`
	Kind            Kind     `json:"kind"`
	Identity        Identity `json:"identity"`
	Target          string   `json:"target,omitempty"`
	Route           Route    `json:"route"`
	Loading         bool     `json:"loading"`
	Invalid         bool     `json:"invalid"`
	ShowAddressBook bool     `json:"show_address_book"`
	Err             error    `json:"-"`
}

// Result describes how one SubmitSearch call ended. Err is ErrSuperseded
// when a newer search replaced this one before it finished.
type Result struct {
	Seq      uint64   `json:"seq"`
	Kind     Kind     `json:"kind"`
	Outcome  Outcome  `json:"outcome"`
	Path     string   `json:"path,omitempty"`
	Identity Identity `json:"identity"`
	Err      error    `json:"-"`
}

// Session drives search cycles for one search bar. It is safe for concurrent
// use; only the most recently submitted cycle may change the state.
type Session struct {
	nav      *Navigator
	resolver *IdentityResolver
	router   Router
	logger   LogWriter
	recorder Recorder
	settle   time.Duration

	// navMu orders the staleness check and NavigateTo across cycles so an
	// older cycle can never navigate after a newer one.
	navMu sync.Mutex

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	timer  *time.Timer
}

// NewSession creates a session reading and changing routes through router.
func NewSession(names NameService, router Router, opts Options) *Session {
	prefix := opts.RoutePrefix
	if prefix == "" {
		prefix = DefaultRoutePrefix
	}
	logger := opts.Logger
	if logger == nil {
		logger = nopLogger{}
	}
	var lookups LookupRecorder
	if opts.Recorder != nil {
		lookups = opts.Recorder
	}

	s := &Session{
		nav:      NewNavigator(prefix, router),
		resolver: NewIdentityResolver(names, logger, lookups, opts.LookupTimeout),
		router:   router,
		logger:   logger,
		recorder: opts.Recorder,
		settle:   opts.SettleDelay,
	}
	s.state.Route = router.Current()
	s.state.ShowAddressBook = IsAddressPage(s.state.Route.Path)
	return s
}

// Navigator returns the navigator used for paths.
func (s *Session) Navigator() *Navigator {
	return s.nav
}

// RawInput returns the current input text.
func (s *Session) RawInput() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.RawInput
}

// Kind returns the classification of the last submitted input.
func (s *Session) Kind() Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Kind
}

// Identity returns the identity resolved so far.
func (s *Session) Identity() Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Identity
}

// IsLoading reports whether a cycle is still in progress.
func (s *Session) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Phase != PhaseIdle
}

// IsInvalid reports whether the last cycle ended Invalid.
func (s *Session) IsInvalid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Invalid
}

// State returns a snapshot of the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Loading = st.Phase != PhaseIdle
	return st
}

// EditInput replaces the input text without searching. It clears the invalid
// flag and the resolved address.
func (s *Session) EditInput(raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.RawInput = raw
	s.state.Invalid = false
	s.state.Err = nil
	s.state.Identity.Address = ""
}

// RouteChanged reports that the active route changed. Any loading ends,
// whichever cycle caused the change.
func (s *Session) RouteChanged(route Route) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if route == s.state.Route {
		return
	}
	s.state.Route = route
	s.state.ShowAddressBook = IsAddressPage(route.Path)
	if s.state.Phase != PhaseIdle {
		debugAttrs(s.logger, "route changed, loading done",
			slog.Uint64("seq", s.state.Seq), slog.String("path", route.Path), slog.String("query", route.Query))
		s.state.Phase = PhaseIdle
		s.stopTimerLocked()
	}
}

// Resume searches for the identifier encoded in the current route, if any.
func (s *Session) Resume(ctx context.Context) (Result, bool) {
	id := s.nav.Identifier(s.router.Current().Path)
	if id == "" {
		return Result{}, false
	}
	debugAttrs(s.logger, "resuming search", slog.String("input", id))
	return s.SubmitSearch(ctx, id), true
}

// SubmitSearch starts a new cycle and returns once its lookups finish. With an
// argument, the input is replaced first; without one, the current input is
// searched. Any cycle still running is canceled.
func (s *Session) SubmitSearch(ctx context.Context, raw ...string) Result {
	ctx, cancel, seq, c := s.begin(ctx, raw)
	defer cancel()

	if s.recorder != nil {
		s.recorder.RecordSearch(c.Kind.String())
	}
	debugAttrs(s.logger, "search started",
		slog.Uint64("seq", seq), slog.String("kind", c.Kind.String()), slog.String("input", c.Value))

	switch c.Kind {
	case KindTransaction:
		s.navigate(seq, KindTransaction, c.Value)
	case KindAddress:
		s.searchAddress(ctx, seq, c.Value)
	case KindName:
		s.searchName(ctx, seq, c.Value)
	default:
		s.fail(seq, c.Kind, scouterr.ErrEmptyInput)
	}

	return s.result(seq, c.Kind)
}

// Close cancels the running cycle and any pending settle timer.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.stopTimerLocked()
}

func (s *Session) begin(parent context.Context, raw []string) (context.Context, context.CancelFunc, uint64, Classified) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	s.stopTimerLocked()

	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel

	if len(raw) > 0 {
		s.state.RawInput = raw[0]
	}
	c := Classify(s.state.RawInput)

	s.state.Seq++
	s.state.Kind = c.Kind
	s.state.Phase = PhaseSearching
	s.state.Outcome = OutcomeNone
	s.state.Identity = Identity{}
	s.state.Target = ""
	s.state.Invalid = false
	s.state.Err = nil

	return ctx, cancel, s.state.Seq, c
}

// update applies fn if seq is still the latest cycle.
func (s *Session) update(seq uint64, fn func(*State)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.state.Seq {
		return false
	}
	fn(&s.state)
	return true
}

func (s *Session) searchAddress(ctx context.Context, seq uint64, address string) {
	if !s.navigate(seq, KindAddress, address) {
		return
	}
	name := s.resolver.Reverse(ctx, address)
	if name == "" {
		return
	}
	if !s.update(seq, func(st *State) { st.Identity.Name = name }) {
		return
	}
	s.resolveAvatar(ctx, seq, name)
}

func (s *Session) searchName(ctx context.Context, seq uint64, name string) {
	address, err := s.resolver.Forward(ctx, name)
	if err != nil {
		if ctx.Err() != nil {
			s.abort(seq, ctx.Err())
			return
		}
		s.fail(seq, KindName, err)
		return
	}
	if !s.update(seq, func(st *State) {
		st.Identity.Address = address
		st.Identity.Name = name
	}) {
		return
	}
	if !s.navigate(seq, KindAddress, address) {
		return
	}
	s.resolveAvatar(ctx, seq, name)
}

func (s *Session) resolveAvatar(ctx context.Context, seq uint64, name string) {
	avatar := s.resolver.Avatar(ctx, name)
	if avatar == "" {
		return
	}
	s.update(seq, func(st *State) {
		if st.Identity.Name == name {
			st.Identity.Avatar = avatar
		}
	})
}

// navigate moves to the canonical page for the cycle. It reports false when
// the cycle has been superseded.
func (s *Session) navigate(seq uint64, kind Kind, identifier string) bool {
	s.navMu.Lock()
	defer s.navMu.Unlock()

	outcome, target := s.nav.Plan(kind, identifier)
	current := s.update(seq, func(st *State) {
		st.Outcome = outcome
		st.Target = target
		if outcome == OutcomeNavigated {
			st.Phase = PhaseNavigating
		} else {
			st.Phase = PhaseSettling
		}
	})
	if !current {
		return false
	}
	if s.recorder != nil {
		s.recorder.RecordOutcome(outcome.String())
	}

	debugAttrs(s.logger, "search navigated",
		slog.Uint64("seq", seq), slog.String("kind", kind.String()),
		slog.String("outcome", outcome.String()), slog.String("path", target))

	if outcome == OutcomeNavigated {
		s.router.NavigateTo(target)
		return true
	}
	s.scheduleSettle(seq)
	return true
}

func (s *Session) scheduleSettle(seq uint64) {
	if s.settle <= 0 {
		s.settleDone(seq)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.state.Seq {
		return
	}
	s.timer = time.AfterFunc(s.settle, func() { s.settleDone(seq) })
}

func (s *Session) settleDone(seq uint64) {
	s.update(seq, func(st *State) {
		if st.Phase == PhaseSettling {
			st.Phase = PhaseIdle
		}
	})
}

func (s *Session) fail(seq uint64, kind Kind, err error) {
	if !s.update(seq, func(st *State) {
		st.Phase = PhaseIdle
		st.Outcome = OutcomeInvalid
		st.Invalid = true
		st.Err = err
	}) {
		return
	}
	debugAttrs(s.logger, "search invalid",
		slog.Uint64("seq", seq), slog.String("kind", kind.String()),
		slog.String("outcome", OutcomeInvalid.String()), slog.String("code", scouterr.Code(err)))
	if s.recorder != nil {
		s.recorder.RecordOutcome(OutcomeInvalid.String())
	}
}

// abort ends a cycle whose caller gave up, without marking the input invalid.
func (s *Session) abort(seq uint64, err error) {
	s.update(seq, func(st *State) {
		st.Phase = PhaseIdle
		st.Err = err
	})
}

func (s *Session) result(seq uint64, kind Kind) Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.state.Seq {
		return Result{Seq: seq, Kind: kind, Err: scouterr.ErrSuperseded}
	}
	return Result{
		Seq:      seq,
		Kind:     kind,
		Outcome:  s.state.Outcome,
		Path:     s.state.Target,
		Identity: s.state.Identity,
		Err:      s.state.Err,
	}
}

func (s *Session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
