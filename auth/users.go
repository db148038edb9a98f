package auth

import (
	"context"
	"crypto/subtle"
)

// UserRecord is a credential entry.
// Passwords are stored and compared in plaintext.
type UserRecord struct {
	Username string
	Password string
	Role     Role
}

// UserStore looks up credential records.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Lookups are exact and case-sensitive.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*UserRecord, bool)
}

// DefaultUsers returns the built-in sample accounts.
func DefaultUsers() []UserRecord {
	return []UserRecord{
		{Username: "admin", Password: "admin123", Role: RoleAdmin},
		{Username: "moderator", Password: "mod123", Role: RoleModerator},
		{Username: "user", Password: "user123", Role: RoleUser},
	}
}

// StaticUserStore is an immutable in-memory UserStore.
type StaticUserStore struct {
	users []UserRecord
}

// NewStaticUserStore creates a store over a copy of users.
func NewStaticUserStore(users ...UserRecord) *StaticUserStore {
	return &StaticUserStore{users: append([]UserRecord(nil), users...)}
}

// FindByUsername scans the records for an exact username match.
func (s *StaticUserStore) FindByUsername(_ context.Context, username string) (*UserRecord, bool) {
	for i := range s.users {
		if s.users[i].Username == username {
			rec := s.users[i]
			return &rec, true
		}
	}
	return nil, false
}

// Len returns the number of records.
func (s *StaticUserStore) Len() int {
	return len(s.users)
}

// Users returns a copy of the records.
func (s *StaticUserStore) Users() []UserRecord {
	return append([]UserRecord(nil), s.users...)
}

// CheckCredentials returns the record matching both username and password.
// Empty fields yield ErrBadRequest; any mismatch yields ErrInvalidCredentials
// without saying which field was wrong.
func CheckCredentials(ctx context.Context, store UserStore, username, password string) (*UserRecord, error) {
	if username == "" || password == "" {
		return nil, ErrBadRequest
	}

	rec, ok := store.FindByUsername(ctx, username)
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if subtle.ConstantTimeCompare([]byte(rec.Password), []byte(password)) != 1 {
		return nil, ErrInvalidCredentials
	}
	return rec, nil
}

// Ensure StaticUserStore implements UserStore
var _ UserStore = (*StaticUserStore)(nil)
