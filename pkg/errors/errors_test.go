package errors_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scouterr "github.com/mrz1836/scout/pkg/errors"
)

var (
	errInner = errors.New("inner")
	errPlain = errors.New("plain error")
)

func TestExitCodes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"success", nil, scouterr.ExitSuccess},
		{"general error", scouterr.ErrGeneral, scouterr.ExitGeneral},
		{"input error", scouterr.ErrInvalidInput, scouterr.ExitInput},
		{"invalid format", scouterr.ErrInvalidFormat, scouterr.ExitInput},
		{"name not resolved", scouterr.ErrNameNotResolved, scouterr.ExitNotFound},
		{"resolver unavailable", scouterr.ErrResolverUnavailable, scouterr.ExitUnavailable},
		{"config invalid", scouterr.ErrConfigInvalid, scouterr.ExitConfig},
		{"plain error", errPlain, scouterr.ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, scouterr.ExitCode(tt.err))
		})
	}
}

func TestWrapPreservesIdentity(t *testing.T) {
	t.Parallel()

	wrapped := scouterr.Wrap(scouterr.ErrNameNotResolved, "vitalik.eth")
	require.ErrorIs(t, wrapped, scouterr.ErrNameNotResolved)
	assert.Equal(t, scouterr.ExitNotFound, scouterr.ExitCode(wrapped))
	assert.Contains(t, wrapped.Error(), "vitalik.eth")

	assert.NoError(t, scouterr.Wrap(nil, "nothing"))
}

func TestWrapPlainError(t *testing.T) {
	t.Parallel()

	wrapped := scouterr.Wrap(errInner, "context %d", 7)
	assert.Equal(t, "GENERAL_ERROR", scouterr.Code(wrapped))
	assert.Equal(t, "context 7: inner", wrapped.Error())
	require.ErrorIs(t, wrapped, errInner)
}

func TestWithCause(t *testing.T) {
	t.Parallel()

	err := scouterr.WithCause(scouterr.ErrResolverUnavailable, errInner)
	require.ErrorIs(t, err, scouterr.ErrResolverUnavailable)
	require.ErrorIs(t, err, errInner)
	assert.Equal(t, "RESOLVER_UNAVAILABLE", scouterr.Code(err))
}

func TestWithDetailsAndSuggestion(t *testing.T) {
	t.Parallel()

	err := scouterr.WithDetails(scouterr.ErrInvalidFormat, map[string]string{
		"input": "vitalik.et",
		"kind":  "name",
	})
	err = scouterr.WithSuggestion(err, "did you mean vitalik.eth?")

	var se *scouterr.ScoutError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "did you mean vitalik.eth?", se.Suggestion)
	assert.Equal(t, "vitalik.et", se.Details["input"])
	// Details are rendered in sorted key order.
	assert.Equal(t,
		"input is not a transaction hash, address, or resolvable name (input: vitalik.et) (kind: name)",
		se.Error())
}

func TestWithHelpersOnPlainErrors(t *testing.T) {
	t.Parallel()

	err := scouterr.WithDetails(errPlain, map[string]string{"k": "v"})
	assert.Equal(t, "GENERAL_ERROR", scouterr.Code(err))
	require.ErrorIs(t, err, errPlain)

	err = scouterr.WithSuggestion(errPlain, "try again")
	assert.Equal(t, "GENERAL_ERROR", scouterr.Code(err))

	assert.NoError(t, scouterr.WithDetails(nil, nil))
	assert.NoError(t, scouterr.WithSuggestion(nil, "x"))
}

func TestScoutErrorIs(t *testing.T) {
	t.Parallel()

	a := scouterr.New("SAME", "first")
	b := scouterr.New("SAME", "second")
	c := scouterr.New("OTHER", "third")

	assert.True(t, scouterr.Is(a, b))
	assert.False(t, scouterr.Is(a, c))
	assert.False(t, scouterr.Is(a, errPlain))
}

func TestAs(t *testing.T) {
	t.Parallel()

	var se *scouterr.ScoutError
	assert.True(t, scouterr.As(scouterr.Wrap(scouterr.ErrEmptyInput, "search"), &se))
	assert.Equal(t, "EMPTY_INPUT", se.Code)
	assert.False(t, scouterr.As(errPlain, &se))
}
