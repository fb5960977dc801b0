package store

import (
	"context"
	"encoding/json"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/db"
	"google.golang.org/api/option"
)

// Firebase is a Store backed by the Firebase Realtime Database.
type Firebase struct {
	client *db.Client
}

// NewFirebase initializes a Realtime Database client from a service account
// credentials file and the database URL.
func NewFirebase(ctx context.Context, credentialsFile, databaseURL string) (*Firebase, error) {
	app, err := firebase.NewApp(ctx,
		&firebase.Config{DatabaseURL: databaseURL},
		option.WithCredentialsFile(credentialsFile),
	)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	client, err := app.Database(ctx)
	if err != nil {
		return nil, fmt.Errorf("error initializing database client: %w", err)
	}

	return &Firebase{client: client}, nil
}

func (f *Firebase) Get(ctx context.Context, path string, v interface{}) error {
	var raw json.RawMessage
	if err := f.client.NewRef(path).Get(ctx, &raw); err != nil {
		return fmt.Errorf("error reading %q: %w", path, err)
	}
	if IsNull(raw) {
		return ErrNotFound
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("error unmarshaling %q: %w", path, err)
	}
	return nil
}

func (f *Firebase) Set(ctx context.Context, path string, v interface{}) error {
	if err := f.client.NewRef(path).Set(ctx, v); err != nil {
		return fmt.Errorf("error writing %q: %w", path, err)
	}
	return nil
}

func (f *Firebase) Update(ctx context.Context, path string, fields map[string]interface{}) error {
	if err := f.client.NewRef(path).Update(ctx, fields); err != nil {
		return fmt.Errorf("error updating %q: %w", path, err)
	}
	return nil
}

func (f *Firebase) Delete(ctx context.Context, path string) error {
	if err := f.client.NewRef(path).Delete(ctx); err != nil {
		return fmt.Errorf("error deleting %q: %w", path, err)
	}
	return nil
}

func (f *Firebase) Push(ctx context.Context, path string, v interface{}) (string, error) {
	ref, err := f.client.NewRef(path).Push(ctx, v)
	if err != nil {
		return "", fmt.Errorf("error pushing to %q: %w", path, err)
	}
	return ref.Key, nil
}

func (f *Firebase) Query(
	ctx context.Context, path, child, value string,
) (map[string]json.RawMessage, error) {
	nodes, err := f.client.NewRef(path).
		OrderByChild(child).
		EqualTo(value).
		GetOrdered(ctx)
	if err != nil {
		return nil, fmt.Errorf("error querying %q by %q: %w", path, child, err)
	}

	results := make(map[string]json.RawMessage, len(nodes))
	for _, n := range nodes {
		var raw json.RawMessage
		if err := n.Unmarshal(&raw); err != nil {
			return nil, fmt.Errorf("error unmarshaling query result %q: %w", n.Key(), err)
		}
		results[n.Key()] = raw
	}
	return results, nil
}

func (f *Firebase) Transact(ctx context.Context, path string, fn TransactFn) error {
	err := f.client.NewRef(path).Transaction(ctx,
		func(tn db.TransactionNode) (interface{}, error) {
			var raw json.RawMessage
			if err := tn.Unmarshal(&raw); err != nil {
				return nil, err
			}
			return fn(raw)
		})
	if err != nil {
		return fmt.Errorf("error in transaction on %q: %w", path, err)
	}
	return nil
}

// Ping performs a shallow read of the database root to verify connectivity.
func (f *Firebase) Ping(ctx context.Context) error {
	var raw json.RawMessage
	if err := f.client.NewRef("/").GetShallow(ctx, &raw); err != nil {
		return fmt.Errorf("error reaching database: %w", err)
	}
	return nil
}
