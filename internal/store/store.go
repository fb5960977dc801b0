// Package store abstracts the hierarchical document store that holds all
// service state. Values are addressed by slash-separated paths
// ("users/alice", "items/<key>/send/<token>") and the store supports point
// reads/writes, equality queries on a child field, push-style inserts with
// generated keys, and per-path atomic read-modify-write.
package store

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrNotFound is returned by Get when the path holds no value.
var ErrNotFound = errors.New("store: not found")

// IsNull reports whether raw JSON represents an absent value.
func IsNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

// TransactFn receives the current raw JSON value at a path ("null" when the
// path is empty) and returns the replacement value. Returning an error aborts
// the transaction without writing.
type TransactFn func(current json.RawMessage) (interface{}, error)

// Store is the document store used by the API service. Implementations must
// be safe for concurrent use.
type Store interface {
	// Get unmarshals the value at path into v. Returns ErrNotFound when the
	// path is empty.
	Get(ctx context.Context, path string, v interface{}) error

	// Set writes v at path, replacing any existing value.
	Set(ctx context.Context, path string, v interface{}) error

	// Update merges the given fields into the object at path.
	Update(ctx context.Context, path string, fields map[string]interface{}) error

	// Delete removes the value at path and everything beneath it.
	Delete(ctx context.Context, path string) error

	// Push stores v under a new generated key beneath path and returns the
	// key.
	Push(ctx context.Context, path string, v interface{}) (string, error)

	// Query returns the children of path whose child field (a slash-separated
	// sub-path such as "logins/token") equals value, keyed by child key.
	Query(ctx context.Context, path, child, value string) (map[string]json.RawMessage, error)

	// Transact atomically applies fn to the value at path.
	Transact(ctx context.Context, path string, fn TransactFn) error

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error
}
