package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AuthResult is the success payload of every issuing operation.
type AuthResult struct {
	UserID       string
	AccessToken  string
	RefreshToken string
}

// Manager orchestrates issuance, rotation and revocation of token pairs.
// Each operation is a short sequence of dependent store calls; the manager
// itself holds no mutable state, so it is safe for concurrent use.
type Manager struct {
	users  UserStore
	tokens TokenStore
	hasher Hasher
	codec  *Codec
	log    zerolog.Logger
}

func NewManager(users UserStore, tokens TokenStore, hasher Hasher, codec *Codec, log zerolog.Logger) *Manager {
	return &Manager{users: users, tokens: tokens, hasher: hasher, codec: codec, log: log}
}

// Register creates a new user and issues its first token pair.
func (m *Manager) Register(ctx context.Context, username, password string) (AuthResult, error) {
	if err := ValidateCredentials(username, password); err != nil {
		return AuthResult{}, err
	}
	existing, err := m.users.FindByUsername(ctx, username)
	if err != nil {
		return AuthResult{}, fmt.Errorf("find user: %w", err)
	}
	if existing != nil {
		return AuthResult{}, fmt.Errorf("username: %w", ErrAlreadyExists)
	}
	hash, err := m.hasher.Hash(password)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}
	user, err := m.users.Create(ctx, username, hash)
	if err != nil {
		return AuthResult{}, fmt.Errorf("create user: %w", err)
	}
	return m.issuePair(ctx, user.ID)
}

// Login verifies credentials, invalidates every refresh token from earlier
// logins, and issues a fresh pair. Only the most recent login's tokens stay
// valid; other devices are silently logged out.
func (m *Manager) Login(ctx context.Context, username, password string) (AuthResult, error) {
	if err := ValidateCredentials(username, password); err != nil {
		return AuthResult{}, err
	}
	user, err := m.users.FindByUsername(ctx, username)
	if err != nil {
		return AuthResult{}, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		// Same error as a wrong password, so usernames cannot be probed.
		return AuthResult{}, ErrInvalidCredentials
	}
	if !m.hasher.Compare(password, user.PasswordHash) {
		return AuthResult{}, ErrInvalidCredentials
	}
	if _, err := m.tokens.DeleteAllByUser(ctx, user.ID); err != nil {
		return AuthResult{}, fmt.Errorf("clear sessions: %w", err)
	}
	return m.issuePair(ctx, user.ID)
}

// Rotate consumes a refresh token and mints a replacement pair. The consumed
// record is removed with a conditional delete, so of two concurrent rotations
// of the same token exactly one wins; the loser observes a missing record and
// fails like any other replay.
func (m *Manager) Rotate(ctx context.Context, refreshToken string) (AuthResult, error) {
	claims, err := m.codec.VerifyRefreshToken(refreshToken)
	if err != nil {
		return AuthResult{}, m.unauthorized("refresh: token verification failed")
	}
	rec, err := m.tokens.FindByID(ctx, claims.TokenID)
	if err != nil {
		return AuthResult{}, fmt.Errorf("find token record: %w", err)
	}
	if rec == nil {
		return AuthResult{}, m.unauthorized("refresh: no record for token id")
	}
	if rec.Revoked {
		return AuthResult{}, m.unauthorized("refresh: record revoked")
	}
	if !m.hasher.Compare(refreshToken, rec.HashedSecret) {
		return AuthResult{}, m.unauthorized("refresh: presented token does not match stored hash")
	}
	user, err := m.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return AuthResult{}, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return AuthResult{}, m.unauthorized("refresh: user no longer exists")
	}
	deleted, err := m.tokens.DeleteByID(ctx, rec.ID)
	if err != nil {
		return AuthResult{}, fmt.Errorf("consume token record: %w", err)
	}
	if !deleted {
		return AuthResult{}, m.unauthorized("refresh: record consumed concurrently")
	}
	return m.issuePair(ctx, user.ID)
}

// RevokeAll deletes every refresh-token record owned by the user. Zero
// deleted rows means the caller had no active session and is reported as
// ErrUnauthorized rather than idempotent success.
func (m *Manager) RevokeAll(ctx context.Context, userID string) (int64, error) {
	n, err := m.tokens.DeleteAllByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("revoke all: %w", err)
	}
	if n == 0 {
		return 0, m.unauthorized("logout: nothing to revoke")
	}
	return n, nil
}

// issuePair mints both tokens against a fresh record id, stores the hashed
// refresh secret, and returns the signed strings.
func (m *Manager) issuePair(ctx context.Context, userID string) (AuthResult, error) {
	tokenID := uuid.NewString()
	access, err := m.codec.IssueAccessToken(userID)
	if err != nil {
		return AuthResult{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := m.codec.IssueRefreshToken(userID, tokenID)
	if err != nil {
		return AuthResult{}, fmt.Errorf("sign refresh token: %w", err)
	}
	hashed, err := m.hasher.Hash(refresh)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash refresh token: %w", err)
	}
	rec := TokenRecord{ID: tokenID, HashedSecret: hashed, UserID: userID}
	if err := m.tokens.Create(ctx, rec); err != nil {
		return AuthResult{}, fmt.Errorf("store token record: %w", err)
	}
	return AuthResult{UserID: userID, AccessToken: access, RefreshToken: refresh}, nil
}

// unauthorized logs the internal cause and returns the collapsed external error.
func (m *Manager) unauthorized(cause string) error {
	m.log.Debug().Str("cause", cause).Msg("request rejected")
	return ErrUnauthorized
}
