package models

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handoff-labs/handoff/internal/store"
)

func TestItemsByOwner(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()

	book := Item{User: "alice", Item: "book"}
	bookID, err := book.Create(ctx, s)
	require.NoError(t, err)

	lamp := Item{User: "alice", Item: "lamp"}
	_, err = lamp.Create(ctx, s)
	require.NoError(t, err)

	pen := Item{User: "bob", Item: "pen"}
	_, err = pen.Create(ctx, s)
	require.NoError(t, err)

	summaries, err := ItemsByOwner(ctx, s, "alice")
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	payloads := []string{}
	for _, summary := range summaries {
		payloads = append(payloads, summary.Item)
	}
	assert.ElementsMatch(t, []string{"book", "lamp"}, payloads)

	none, err := ItemsByOwner(ctx, s, "carol")
	require.NoError(t, err)
	assert.Empty(t, none)

	// Deleting removes the item from the listing.
	require.NoError(t, DeleteItem(ctx, s, bookID))
	summaries, err = ItemsByOwner(ctx, s, "alice")
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "lamp", summaries[0].Item)
}

func TestCreateTransfer(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	now := time.Now()

	item := Item{User: "alice", Item: "book"}
	itemID, err := item.Create(ctx, s)
	require.NoError(t, err)

	require.NoError(t, CreateTransfer(
		ctx, s, itemID, "deadbeefdeadbeefdead", "bob", now, 86400*time.Second))

	var transfer Transfer
	require.NoError(t, s.Get(ctx,
		TransferPath(itemID, "deadbeefdeadbeefdead"), &transfer))
	assert.Equal(t, "bob", transfer.Receiver)
	assert.Equal(t, TransferSent, transfer.Status)
	assert.Equal(t, now.Unix(), transfer.Time)
	assert.Equal(t, now.Unix()+86400, transfer.Expires)

	assert.False(t, transfer.Expired(now))
	assert.False(t, transfer.Expired(now.Add(86400*time.Second)))
	assert.True(t, transfer.Expired(now.Add(86401*time.Second)))
}
