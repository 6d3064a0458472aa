package broker

import "context"

// InboxBroker keeps a per-user change counter so polling clients can tell when
// their conversation list needs refetching.
type InboxBroker interface {
	// Bump advances the inbox version of every given user.
	Bump(ctx context.Context, userIDs ...string) error
	// Version returns the user's current inbox version, 0 if nothing happened yet.
	Version(ctx context.Context, userID string) (int64, error)

	Close() error
}
