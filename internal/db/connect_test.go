package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect(t *testing.T) {
	ctx := context.Background()

	t.Run("should refuse an empty data directory", func(t *testing.T) {
		_, err := Connect(ctx, "")
		require.Error(t, err)
	})

	t.Run("should migrate and reopen", func(t *testing.T) {
		dir := t.TempDir()
		conn, err := Connect(ctx, dir)
		require.NoError(t, err)
		q := New(conn)
		_, err = q.UpsertEntry(ctx, UpsertEntryParams{ID: "a", Title: "A", Unread: true})
		require.NoError(t, err)
		require.NoError(t, conn.Close())

		conn, err = Connect(ctx, dir)
		require.NoError(t, err)
		defer conn.Close()
		entries, err := New(conn).ListEntries(ctx)
		require.NoError(t, err)
		require.Len(t, entries, 1)
	})
}

func TestQueries(t *testing.T) {
	ctx := context.Background()
	conn, err := Connect(ctx, t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	q := New(conn)

	t.Run("should keep local state when an entry is imported again", func(t *testing.T) {
		_, err := q.UpsertEntry(ctx, UpsertEntryParams{ID: "e1", Title: "First", PublishedAt: 100, Unread: true})
		require.NoError(t, err)
		n, err := q.SetEntryUnread(ctx, SetEntryUnreadParams{ID: "e1", Unread: false})
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)
		n, err = q.SetEntryPinned(ctx, SetEntryPinnedParams{ID: "e1", Pinned: true})
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)

		e, err := q.UpsertEntry(ctx, UpsertEntryParams{ID: "e1", Title: "First, edited", PublishedAt: 100, Unread: true})
		require.NoError(t, err)
		assert.Equal(t, "First, edited", e.Title)
		assert.False(t, e.Unread)
		assert.True(t, e.Pinned)
	})

	t.Run("should list newest first", func(t *testing.T) {
		_, err := q.UpsertEntry(ctx, UpsertEntryParams{ID: "e2", Title: "Second", PublishedAt: 300, Unread: true})
		require.NoError(t, err)
		_, err = q.UpsertEntry(ctx, UpsertEntryParams{ID: "e3", Title: "Third", PublishedAt: 200, Unread: true})
		require.NoError(t, err)

		entries, err := q.ListEntries(ctx)
		require.NoError(t, err)
		ids := make([]string, len(entries))
		for i, e := range entries {
			ids[i] = e.ID
		}
		assert.Equal(t, []string{"e2", "e3", "e1"}, ids)
	})

	t.Run("should report missing entries", func(t *testing.T) {
		_, err := q.GetEntry(ctx, "nope")
		assert.True(t, errors.Is(err, sql.ErrNoRows))

		n, err := q.SetEntryUnread(ctx, SetEntryUnreadParams{ID: "nope"})
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("should store heights per width", func(t *testing.T) {
		require.NoError(t, q.UpsertItemHeight(ctx, UpsertItemHeightParams{Width: 80, ItemID: "e1", Height: 4}))
		require.NoError(t, q.UpsertItemHeight(ctx, UpsertItemHeightParams{Width: 80, ItemID: "e1", Height: 7.5}))
		require.NoError(t, q.UpsertItemHeight(ctx, UpsertItemHeightParams{Width: 120, ItemID: "e1", Height: 3}))

		heights, err := q.ListItemHeights(ctx, 80)
		require.NoError(t, err)
		require.Len(t, heights, 1)
		assert.Equal(t, 7.5, heights[0].Height)

		require.NoError(t, q.DeleteItemHeights(ctx, 80))
		heights, err = q.ListItemHeights(ctx, 80)
		require.NoError(t, err)
		assert.Empty(t, heights)

		heights, err = q.ListItemHeights(ctx, 120)
		require.NoError(t, err)
		assert.Len(t, heights, 1)
	})
}
