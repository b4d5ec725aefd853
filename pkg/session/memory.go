package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is a mutex-guarded in-memory implementation of both store
// contracts. It backs the unit tests and the development mode of the server
// when no database DSN is configured. Token deletes hold the lock for the
// whole lookup+delete, which gives the conditional-delete guarantee the
// TokenStore contract requires.
//
// UserStore and TokenStore both declare Create, so the two contracts are
// exposed through the Users() and Tokens() views.
type MemoryStore struct {
	mu         sync.Mutex
	users      map[string]User        // by id
	byUsername map[string]string      // username -> id
	tokens     map[string]TokenRecord // by record id
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:      map[string]User{},
		byUsername: map[string]string{},
		tokens:     map[string]TokenRecord{},
	}
}

// Users returns the store viewed through the UserStore contract.
func (m *MemoryStore) Users() UserStore { return memoryUserStore{m} }

// Tokens returns the store viewed through the TokenStore contract.
func (m *MemoryStore) Tokens() TokenStore { return memoryTokenStore{m} }

type memoryUserStore struct{ s *MemoryStore }

func (v memoryUserStore) FindByUsername(_ context.Context, username string) (*User, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	id, ok := v.s.byUsername[username]
	if !ok {
		return nil, nil
	}
	u := v.s.users[id]
	return &u, nil
}

func (v memoryUserStore) FindByID(_ context.Context, id string) (*User, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	u, ok := v.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (v memoryUserStore) Create(_ context.Context, username, passwordHash string) (*User, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if _, ok := v.s.byUsername[username]; ok {
		return nil, ErrAlreadyExists
	}
	u := User{ID: uuid.NewString(), Username: username, PasswordHash: passwordHash}
	v.s.users[u.ID] = u
	v.s.byUsername[username] = u.ID
	return &u, nil
}

type memoryTokenStore struct{ s *MemoryStore }

func (v memoryTokenStore) Create(_ context.Context, rec TokenRecord) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	v.s.tokens[rec.ID] = rec
	return nil
}

func (v memoryTokenStore) FindByID(_ context.Context, id string) (*TokenRecord, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	rec, ok := v.s.tokens[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (v memoryTokenStore) DeleteByID(_ context.Context, id string) (bool, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if _, ok := v.s.tokens[id]; !ok {
		return false, nil
	}
	delete(v.s.tokens, id)
	return true, nil
}

func (v memoryTokenStore) DeleteAllByUser(_ context.Context, userID string) (int64, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	var n int64
	for id, rec := range v.s.tokens {
		if rec.UserID == userID {
			delete(v.s.tokens, id)
			n++
		}
	}
	return n, nil
}
