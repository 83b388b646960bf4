package model

import "context"

// Store groups the repositories that must change together.
type Store interface {
	Users() UserStore
	RefreshTokens() RefreshTokenStore
	// WithinTx runs fn in a single transaction. The transaction commits when fn
	// returns nil and rolls back otherwise. Calling WithinTx on a store passed
	// to fn reuses the running transaction.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}
