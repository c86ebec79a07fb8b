package entry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lazyfeed/lazyfeed/internal/db"
	"github.com/lazyfeed/lazyfeed/internal/feed"
	"github.com/lazyfeed/lazyfeed/internal/pubsub"
	"github.com/samber/lo"
)

var ErrEntryNotFound = errors.New("entry not found")

type ListOptions struct {
	UnreadOnly bool
	PinnedOnly bool
}

type Service interface {
	pubsub.Suscriber[feed.Entry]
	Import(ctx context.Context, stream feed.Stream) ([]feed.Entry, error)
	List(ctx context.Context, opts ListOptions) ([]feed.Entry, error)
	Get(ctx context.Context, id string) (feed.Entry, error)
	MarkRead(ctx context.Context, id string, read bool) (feed.Entry, error)
	TogglePin(ctx context.Context, id string) (feed.Entry, error)
	LoadHeights(ctx context.Context, width int) (map[string]float64, error)
	SaveHeights(ctx context.Context, width int, heights map[string]float64) error
}

type service struct {
	*pubsub.Broker[feed.Entry]
	conn *sql.DB
	q    db.Querier
}

// NewService returns a service over q. conn may be nil; writes that touch
// many rows then run without a transaction.
func NewService(conn *sql.DB, q *db.Queries) Service {
	return &service{
		Broker: pubsub.NewBroker[feed.Entry](),
		conn:   conn,
		q:      q,
	}
}

// withTx runs fn inside a transaction when a connection is available.
func (s *service) withTx(ctx context.Context, fn func(q db.Querier) error) error {
	queries, ok := s.q.(*db.Queries)
	if s.conn == nil || !ok {
		return fn(s.q)
	}
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(queries.WithTx(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *service) Import(ctx context.Context, stream feed.Stream) ([]feed.Entry, error) {
	imported := make([]feed.Entry, 0, len(stream.Entries))
	err := s.withTx(ctx, func(q db.Querier) error {
		for _, e := range stream.Entries {
			var published int64
			if !e.Published.IsZero() {
				published = e.Published.UnixMilli()
			}
			dbEntry, err := q.UpsertEntry(ctx, db.UpsertEntryParams{
				ID:          e.ID,
				StreamID:    e.StreamID,
				Title:       e.Title,
				Author:      e.Author,
				Origin:      e.Origin,
				Url:         e.URL,
				Summary:     e.Summary,
				Content:     e.Content,
				PublishedAt: published,
				Unread:      e.Unread,
			})
			if err != nil {
				return fmt.Errorf("failed to import entry %s: %w", e.ID, err)
			}
			imported = append(imported, s.fromDBItem(dbEntry))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, e := range imported {
		s.Publish(pubsub.CreatedEvent, e)
	}
	return imported, nil
}

func (s *service) List(ctx context.Context, opts ListOptions) ([]feed.Entry, error) {
	dbEntries, err := s.q.ListEntries(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]feed.Entry, 0, len(dbEntries))
	for _, dbEntry := range dbEntries {
		if opts.UnreadOnly && !dbEntry.Unread {
			continue
		}
		if opts.PinnedOnly && !dbEntry.Pinned {
			continue
		}
		entries = append(entries, s.fromDBItem(dbEntry))
	}
	return entries, nil
}

func (s *service) Get(ctx context.Context, id string) (feed.Entry, error) {
	dbEntry, err := s.q.GetEntry(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return feed.Entry{}, fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}
	if err != nil {
		return feed.Entry{}, err
	}
	return s.fromDBItem(dbEntry), nil
}

func (s *service) MarkRead(ctx context.Context, id string, read bool) (feed.Entry, error) {
	n, err := s.q.SetEntryUnread(ctx, db.SetEntryUnreadParams{
		ID:     id,
		Unread: !read,
	})
	if err != nil {
		return feed.Entry{}, err
	}
	if n == 0 {
		return feed.Entry{}, fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}
	return s.updated(ctx, id)
}

func (s *service) TogglePin(ctx context.Context, id string) (feed.Entry, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return feed.Entry{}, err
	}
	if _, err := s.q.SetEntryPinned(ctx, db.SetEntryPinnedParams{
		ID:     id,
		Pinned: !current.Pinned,
	}); err != nil {
		return feed.Entry{}, err
	}
	return s.updated(ctx, id)
}

func (s *service) updated(ctx context.Context, id string) (feed.Entry, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return feed.Entry{}, err
	}
	s.Publish(pubsub.UpdatedEvent, e)
	return e, nil
}

func (s *service) LoadHeights(ctx context.Context, width int) (map[string]float64, error) {
	rows, err := s.q.ListItemHeights(ctx, int64(width))
	if err != nil {
		return nil, fmt.Errorf("failed to load heights for width %d: %w", width, err)
	}
	return lo.SliceToMap(rows, func(r db.ItemHeight) (string, float64) {
		return r.ItemID, r.Height
	}), nil
}

// SaveHeights replaces the stored heights of width.
func (s *service) SaveHeights(ctx context.Context, width int, heights map[string]float64) error {
	return s.withTx(ctx, func(q db.Querier) error {
		if err := q.DeleteItemHeights(ctx, int64(width)); err != nil {
			return fmt.Errorf("failed to clear heights for width %d: %w", width, err)
		}
		for id, h := range heights {
			if h <= 0 {
				continue
			}
			if err := q.UpsertItemHeight(ctx, db.UpsertItemHeightParams{
				Width:  int64(width),
				ItemID: id,
				Height: h,
			}); err != nil {
				return fmt.Errorf("failed to save height of %s: %w", id, err)
			}
		}
		return nil
	})
}

func (s service) fromDBItem(item db.Entry) feed.Entry {
	e := feed.Entry{
		ID:       item.ID,
		StreamID: item.StreamID,
		Title:    item.Title,
		Author:   item.Author,
		Origin:   item.Origin,
		URL:      item.Url,
		Summary:  item.Summary,
		Content:  item.Content,
		Unread:   item.Unread,
		Pinned:   item.Pinned,
	}
	if item.PublishedAt > 0 {
		e.Published = time.UnixMilli(item.PublishedAt).UTC()
	}
	return e
}
