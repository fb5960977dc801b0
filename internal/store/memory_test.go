package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestMemoryPointOperations(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	t.Run("GetMissingReturnsErrNotFound", func(t *testing.T) {
		var out record
		err := m.Get(ctx, "records/none", &out)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("SetGetRoundTrip", func(t *testing.T) {
		in := record{Name: "a", Count: 3}
		require.NoError(t, m.Set(ctx, "records/a", in))

		var out record
		require.NoError(t, m.Get(ctx, "records/a", &out))
		assert.Equal(t, in, out)
	})

	t.Run("NestedPathGet", func(t *testing.T) {
		var name string
		require.NoError(t, m.Get(ctx, "records/a/name", &name))
		assert.Equal(t, "a", name)
	})

	t.Run("UpdateMergesFields", func(t *testing.T) {
		require.NoError(t, m.Update(ctx, "records/a",
			map[string]interface{}{"count": 7}))

		var out record
		require.NoError(t, m.Get(ctx, "records/a", &out))
		assert.Equal(t, record{Name: "a", Count: 7}, out)
	})

	t.Run("DeleteRemovesSubtree", func(t *testing.T) {
		require.NoError(t, m.Set(ctx, "records/b/nested/deep", "x"))
		require.NoError(t, m.Delete(ctx, "records/b"))

		var out interface{}
		assert.ErrorIs(t, m.Get(ctx, "records/b/nested/deep", &out), ErrNotFound)
		assert.ErrorIs(t, m.Get(ctx, "records/b", &out), ErrNotFound)
	})
}

func TestMemoryPush(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	key1, err := m.Push(ctx, "records", record{Name: "x"})
	require.NoError(t, err)
	key2, err := m.Push(ctx, "records", record{Name: "y"})
	require.NoError(t, err)
	assert.NotEqual(t, key1, key2)

	var out record
	require.NoError(t, m.Get(ctx, "records/"+key1, &out))
	assert.Equal(t, "x", out.Name)
}

func TestMemoryQuery(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Set(ctx, "users/alice",
		map[string]interface{}{"id": "alice", "logins": map[string]interface{}{"token": "t1"}}))
	require.NoError(t, m.Set(ctx, "users/bob",
		map[string]interface{}{"id": "bob", "logins": map[string]interface{}{"token": "t2"}}))

	t.Run("MatchOnNestedChild", func(t *testing.T) {
		results, err := m.Query(ctx, "users", "logins/token", "t1")
		require.NoError(t, err)
		require.Len(t, results, 1)

		var user struct {
			ID string `json:"id"`
		}
		require.NoError(t, json.Unmarshal(results["alice"], &user))
		assert.Equal(t, "alice", user.ID)
	})

	t.Run("NoMatches", func(t *testing.T) {
		results, err := m.Query(ctx, "users", "logins/token", "nope")
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("MissingPath", func(t *testing.T) {
		results, err := m.Query(ctx, "void", "field", "v")
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestMemoryTransact(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Set(ctx, "counters/a", record{Name: "a", Count: 1}))

	t.Run("AppliesReplacement", func(t *testing.T) {
		err := m.Transact(ctx, "counters/a",
			func(current json.RawMessage) (interface{}, error) {
				var r record
				require.NoError(t, json.Unmarshal(current, &r))
				r.Count++
				return r, nil
			})
		require.NoError(t, err)

		var out record
		require.NoError(t, m.Get(ctx, "counters/a", &out))
		assert.Equal(t, 2, out.Count)
	})

	t.Run("AbortLeavesValueUntouched", func(t *testing.T) {
		boom := errors.New("boom")
		err := m.Transact(ctx, "counters/a",
			func(json.RawMessage) (interface{}, error) { return nil, boom })
		assert.ErrorIs(t, err, boom)

		var out record
		require.NoError(t, m.Get(ctx, "counters/a", &out))
		assert.Equal(t, 2, out.Count)
	})

	t.Run("AbsentPathSeesNull", func(t *testing.T) {
		err := m.Transact(ctx, "counters/new",
			func(current json.RawMessage) (interface{}, error) {
				assert.Equal(t, "null", string(current))
				return record{Name: "new", Count: 1}, nil
			})
		require.NoError(t, err)

		var out record
		require.NoError(t, m.Get(ctx, "counters/new", &out))
		assert.Equal(t, 1, out.Count)
	})
}
