package models

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/handoff-labs/handoff/internal/store"
)

// Transfer statuses. A transfer starts as sent and transitions exactly once
// to received (successful pickup) or late for delivery (pickup attempted
// after expiry). Both end states are terminal; re-attempts re-assert the same
// state rather than being rejected.
const (
	TransferSent     = "sent"
	TransferReceived = "received"
	TransferLate     = "late for delivery"
)

// Transfer is a pending handoff of an item, stored at
// /items/{id}/send/{sendToken}. Possession of the send token is the only
// authorization needed to receive. Transfers are never deleted.
type Transfer struct {
	Receiver string `json:"receiver"`
	Time     int64  `json:"time"`
	Expires  int64  `json:"expires"`
	Status   string `json:"status"`
}

// Expired reports whether the transfer can no longer be received at now.
func (t *Transfer) Expired(now time.Time) bool {
	return now.Unix() > t.Expires
}

// Item is an inventory entry stored at /items/{key} under a store-generated
// key. Send maps outstanding send tokens to their transfers; one item can
// have several concurrent transfers, one per token.
type Item struct {
	User string              `json:"user"`
	Item string              `json:"item"`
	Send map[string]Transfer `json:"send,omitempty"`
}

// ItemSummary is the listing shape returned by the items endpoint.
type ItemSummary struct {
	ID   string `json:"id"`
	Item string `json:"item"`
}

func itemPath(id string) string {
	return "items/" + id
}

// TransferPath returns the storage path of a transfer record.
func TransferPath(itemID, sendToken string) string {
	return itemPath(itemID) + "/send/" + sendToken
}

// Get retrieves the item with the given key. Returns store.ErrNotFound if
// absent.
func (i *Item) Get(ctx context.Context, s store.Store, id string) error {
	return s.Get(ctx, itemPath(id), i)
}

// Create appends the item under a store-generated key and returns the key.
func (i *Item) Create(ctx context.Context, s store.Store) (string, error) {
	return s.Push(ctx, "items", i)
}

// DeleteItem removes an item and all its nested transfers.
func DeleteItem(ctx context.Context, s store.Store, id string) error {
	return s.Delete(ctx, itemPath(id))
}

// ItemsByOwner returns summaries of all items owned by login, sorted by key
// for stable output (the store itself guarantees no ordering).
func ItemsByOwner(ctx context.Context, s store.Store, login string) ([]ItemSummary, error) {
	matches, err := s.Query(ctx, "items", "user", login)
	if err != nil {
		return nil, fmt.Errorf("error querying items by owner: %w", err)
	}

	summaries := make([]ItemSummary, 0, len(matches))
	for key, raw := range matches {
		var item Item
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, fmt.Errorf("error unmarshaling item %q: %w", key, err)
		}
		summaries = append(summaries, ItemSummary{ID: key, Item: item.Item})
	}
	sort.Slice(summaries, func(a, b int) bool {
		return summaries[a].ID < summaries[b].ID
	})
	return summaries, nil
}

// CreateTransfer records a new outstanding transfer of the item to receiver,
// keyed by sendToken, valid for ttl from now.
func CreateTransfer(
	ctx context.Context, s store.Store,
	itemID, sendToken, receiver string, now time.Time, ttl time.Duration,
) error {
	transfer := Transfer{
		Receiver: receiver,
		Time:     now.Unix(),
		Expires:  now.Add(ttl).Unix(),
		Status:   TransferSent,
	}
	return s.Set(ctx, TransferPath(itemID, sendToken), transfer)
}
