package models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/handoff-labs/handoff/internal/store"
)

// Token resolution failures. Handlers map all of these to 401 responses with
// distinct machine-readable codes.
var (
	// ErrBadToken means no user currently holds the token.
	ErrBadToken = errors.New("bad token")

	// ErrTokenCollision means more than one user matched the token. The
	// request fails without retrying; the users must log in again.
	ErrTokenCollision = errors.New("token collision")

	// ErrExpiredToken means the matching login is older than the token TTL.
	ErrExpiredToken = errors.New("expired token")
)

// Login records the current session of a user: the opaque token issued at
// login and the Unix time it was issued. Each login overwrites the previous
// record, so at most one token is valid per user.
type Login struct {
	Token string `json:"token"`
	Time  int64  `json:"time"`
}

// User is an account record stored at /users/{login}. The login name doubles
// as the storage key. Password holds an argon2id PHC string, never cleartext.
type User struct {
	ID       string `json:"id"`
	Password string `json:"password"`
	Logins   Login  `json:"logins"`
}

func userPath(login string) string {
	return "users/" + login
}

// Get retrieves the user with the given login. Returns store.ErrNotFound if
// no such user exists.
func (u *User) Get(ctx context.Context, s store.Store, login string) error {
	return s.Get(ctx, userPath(login), u)
}

// Create persists a new user record.
func (u *User) Create(ctx context.Context, s store.Store) error {
	return s.Set(ctx, userPath(u.ID), u)
}

// ErrUserExists is returned by CreateIfAbsent when the login is taken.
var ErrUserExists = errors.New("user exists")

// CreateIfAbsent persists the user unless the login is already taken. The
// existence check and the write run in one store transaction so two
// concurrent registrations of the same login can't both succeed.
func (u *User) CreateIfAbsent(ctx context.Context, s store.Store) error {
	return s.Transact(ctx, userPath(u.ID),
		func(current json.RawMessage) (interface{}, error) {
			if !store.IsNull(current) {
				return nil, ErrUserExists
			}
			return u, nil
		})
}

// RecordLogin overwrites the user's session with a fresh token issued at now,
// invalidating any prior token.
func (u *User) RecordLogin(ctx context.Context, s store.Store, token string, now time.Time) error {
	u.Logins = Login{Token: token, Time: now.Unix()}
	return s.Set(ctx, userPath(u.ID)+"/logins", u.Logins)
}

// UserFromToken resolves a login token to its user by querying all users on
// the logins/token field. It fails with ErrBadToken, ErrTokenCollision, or
// ErrExpiredToken per the checks described on the error values.
func UserFromToken(
	ctx context.Context, s store.Store, token string, now time.Time, ttl time.Duration,
) (*User, error) {
	matches, err := s.Query(ctx, "users", "logins/token", token)
	if err != nil {
		return nil, fmt.Errorf("error querying users by token: %w", err)
	}

	if len(matches) == 0 {
		return nil, ErrBadToken
	}
	if len(matches) > 1 {
		return nil, ErrTokenCollision
	}

	var user User
	for _, raw := range matches {
		if err := json.Unmarshal(raw, &user); err != nil {
			return nil, fmt.Errorf("error unmarshaling user: %w", err)
		}
	}

	if now.Unix()-user.Logins.Time > int64(ttl.Seconds()) {
		return nil, ErrExpiredToken
	}
	return &user, nil
}
