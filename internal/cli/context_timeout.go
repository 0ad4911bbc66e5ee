package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"
)

// contextWithTimeout returns a timeout context rooted in the command context.
// A non-positive duration only inherits cancellation.
func contextWithTimeout(cmd *cobra.Command, d time.Duration) (context.Context, context.CancelFunc) {
	base := cmd.Context()
	if base == nil {
		base = context.Background()
	}
	if d <= 0 {
		return context.WithCancel(base)
	}
	return context.WithTimeout(base, d)
}

// commandTimeout bounds a whole command: every lookup a search may issue,
// each of which may be retried.
func commandTimeout(c ConfigProvider) time.Duration {
	perRequest := c.RequestTimeout()
	if perRequest <= 0 {
		return 0
	}
	attempts := max(c.GetNetwork().RetryAttempts, 1)
	// forward or reverse, verification, avatar: each needs a registry and a resolver call.
	const callsPerSearch = 6
	return perRequest * time.Duration(attempts*callsPerSearch)
}
