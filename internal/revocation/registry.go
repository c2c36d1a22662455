// Package revocation keeps the set of access tokens that were invalidated
// before their natural expiry (logout).  Entries only need to live as long
// as the token itself would have been accepted.
package revocation

import (
	"context"
	"time"
)

// Registry records revoked access tokens.  Implementations must be safe for
// concurrent use.  A Blacklist racing with IsBlacklisted for the same token
// may be observed in either order.
type Registry interface {
	// Blacklist marks token revoked until expiresAt.  Repeated calls are no-ops
	// apart from possibly extending the retention.
	Blacklist(ctx context.Context, token string, expiresAt time.Time) error
	// IsBlacklisted reports whether token was revoked and is still retained.
	IsBlacklisted(ctx context.Context, token string) (bool, error)
}
