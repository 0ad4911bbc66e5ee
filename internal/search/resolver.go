package search

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	scouterr "github.com/mrz1836/scout/pkg/errors"
)

// NameService resolves names and addresses. Empty results mean "no record"
// and are not errors.
type NameService interface {
	ReverseResolve(ctx context.Context, address string) (string, error)
	ForwardResolve(ctx context.Context, name string) (string, error)
	ResolveAvatar(ctx context.Context, name string) (string, error)
}

// LogWriter is the logging surface used by the search package.
type LogWriter interface {
	Debug(format string, args ...any)
	Error(format string, args ...any)
}

// AttrLogger is implemented by loggers that accept structured records.
// Loggers without it get the attributes appended as key=value text.
type AttrLogger interface {
	DebugAttrs(msg string, attrs ...slog.Attr)
	ErrorAttrs(msg string, attrs ...slog.Attr)
}

func debugAttrs(l LogWriter, msg string, attrs ...slog.Attr) {
	if al, ok := l.(AttrLogger); ok {
		al.DebugAttrs(msg, attrs...)
		return
	}
	l.Debug("%s", attrText(msg, attrs))
}

func errorAttrs(l LogWriter, msg string, attrs ...slog.Attr) {
	if al, ok := l.(AttrLogger); ok {
		al.ErrorAttrs(msg, attrs...)
		return
	}
	l.Error("%s", attrText(msg, attrs))
}

func attrText(msg string, attrs []slog.Attr) string {
	var b strings.Builder
	b.WriteString(msg)
	for _, a := range attrs {
		b.WriteByte(' ')
		b.WriteString(a.String())
	}
	return b.String()
}

// LookupRecorder receives lookup timings.
type LookupRecorder interface {
	RecordLookup(method string, duration time.Duration, err error)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Error(string, ...any) {}

// Lookup method names reported to the recorder.
const (
	MethodForward = "forward"
	MethodReverse = "reverse"
	MethodAvatar  = "avatar"
)

// IdentityResolver runs the lookups that turn a classified input into an Identity.
type IdentityResolver struct {
	names    NameService
	logger   LogWriter
	recorder LookupRecorder
	timeout  time.Duration
}

// NewIdentityResolver creates a resolver. A zero timeout leaves lookups bounded
// only by the caller's context.
func NewIdentityResolver(names NameService, logger LogWriter, recorder LookupRecorder, timeout time.Duration) *IdentityResolver {
	if logger == nil {
		logger = nopLogger{}
	}
	return &IdentityResolver{
		names:    names,
		logger:   logger,
		recorder: recorder,
		timeout:  timeout,
	}
}

// Forward resolves a name to an address. A missing record yields
// ErrNameNotResolved; a failed lookup yields ErrResolverUnavailable.
// Cancellation is returned unchanged.
func (r *IdentityResolver) Forward(ctx context.Context, name string) (string, error) {
	address, err := lookup(ctx, r, MethodForward, name, r.names.ForwardResolve)
	switch {
	case err != nil && ctx.Err() != nil:
		return "", ctx.Err()
	case err != nil:
		errorAttrs(r.logger, "forward resolution failed",
			slog.String("method", MethodForward), slog.String("name", name), slog.Any("error", err))
		if errors.Is(err, scouterr.ErrNameNotResolved) || errors.Is(err, scouterr.ErrInvalidName) {
			return "", scouterr.WithDetails(scouterr.WithCause(scouterr.ErrNameNotResolved, err),
				map[string]string{"name": name})
		}
		return "", scouterr.WithDetails(scouterr.WithCause(scouterr.ErrResolverUnavailable, err),
			map[string]string{"name": name})
	case address == "":
		debugAttrs(r.logger, "no address record",
			slog.String("method", MethodForward), slog.String("name", name))
		return "", scouterr.WithDetails(scouterr.ErrNameNotResolved, map[string]string{"name": name})
	}
	debugAttrs(r.logger, "name resolved",
		slog.String("method", MethodForward), slog.String("name", name), slog.String("address", address))
	return address, nil
}

// Reverse returns the primary name of an address, or "" when there is none
// or the lookup failed.
func (r *IdentityResolver) Reverse(ctx context.Context, address string) string {
	name, err := lookup(ctx, r, MethodReverse, address, r.names.ReverseResolve)
	if err != nil {
		if ctx.Err() == nil {
			errorAttrs(r.logger, "reverse resolution failed",
				slog.String("method", MethodReverse), slog.String("address", address), slog.Any("error", err))
		}
		return ""
	}
	return name
}

// Avatar returns the avatar URI of a name, or "" when there is none or the
// lookup failed.
func (r *IdentityResolver) Avatar(ctx context.Context, name string) string {
	if name == "" {
		return ""
	}
	avatar, err := lookup(ctx, r, MethodAvatar, name, r.names.ResolveAvatar)
	if err != nil {
		if ctx.Err() == nil {
			errorAttrs(r.logger, "avatar lookup failed",
				slog.String("method", MethodAvatar), slog.String("name", name), slog.Any("error", err))
		}
		return ""
	}
	return avatar
}

// Resolve runs every lookup for c without navigating. Each partial identity
// is passed to apply as soon as it is known; apply may be nil.
func (r *IdentityResolver) Resolve(ctx context.Context, c Classified, apply func(Identity)) (Identity, error) {
	var id Identity
	publish := func() {
		if apply != nil {
			apply(id)
		}
	}

	switch c.Kind {
	case KindTransaction:
		return id, nil
	case KindAddress:
		id.Name = r.Reverse(ctx, c.Value)
		if id.Name == "" {
			return id, ctx.Err()
		}
		publish()
	case KindName:
		address, err := r.Forward(ctx, c.Value)
		if err != nil {
			return id, err
		}
		id.Address = address
		id.Name = c.Value
		publish()
	default:
		return id, scouterr.ErrEmptyInput
	}

	if id.Avatar = r.Avatar(ctx, id.Name); id.Avatar != "" {
		publish()
	}
	return id, ctx.Err()
}

func lookup(ctx context.Context, r *IdentityResolver, method, arg string,
	fn func(context.Context, string) (string, error),
) (string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := fn(ctx, arg)
	if r.recorder != nil {
		r.recorder.RecordLookup(method, time.Since(start), err)
	}
	return result, err
}
