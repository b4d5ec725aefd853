package session

import "context"

// User is the store-facing user record.
type User struct {
	ID           string
	Username     string
	PasswordHash string
}

// TokenRecord is the persisted counterpart of an issued refresh token. The
// plaintext token is never stored; HashedSecret holds a one-way hash of it.
type TokenRecord struct {
	ID           string
	HashedSecret string
	UserID       string
	Revoked      bool
}

// UserStore is the persistence contract for users. Lookups return (nil, nil)
// when no row matches; errors are reserved for store failures.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	// Create persists a new user and returns it with its assigned id. A
	// username collision returns ErrAlreadyExists.
	Create(ctx context.Context, username, passwordHash string) (*User, error)
}

// TokenStore is the persistence contract for refresh-token records.
type TokenStore interface {
	Create(ctx context.Context, rec TokenRecord) error
	// FindByID returns (nil, nil) when the record does not exist.
	FindByID(ctx context.Context, id string) (*TokenRecord, error)
	// DeleteByID removes the record in a single conditional operation and
	// reports whether a row was actually deleted. Two concurrent deletes of
	// the same id must observe exactly one true.
	DeleteByID(ctx context.Context, id string) (bool, error)
	// DeleteAllByUser removes every record owned by the user and returns
	// how many were deleted.
	DeleteAllByUser(ctx context.Context, userID string) (int64, error)
}
