// Package store publishes the documents table as a live sequence of snapshots.
//
// Every committed write re-reads the whole table and hands the resulting snapshot
// to each subscriber. Writes are serialized, so subscribers observe snapshots in
// commit order. Delivery never blocks a writer: each subscription keeps its own
// queue and drains it on a dedicated goroutine.
package store

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"docscan/internal/model"
	"docscan/internal/repository"
)

// DocumentStore wraps a repository with change notification.
type DocumentStore struct {
	repo   repository.DocumentRepository
	logger *zap.Logger

	mu   sync.Mutex // held across write, re-read and fan-out
	subs map[*subscription]struct{}
}

// New creates a DocumentStore over repo. A nil logger disables logging.
func New(repo repository.DocumentRepository, logger *zap.Logger) *DocumentStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentStore{
		repo:   repo,
		logger: logger.With(zap.String("component", "store")),
		subs:   make(map[*subscription]struct{}),
	}
}

// InsertOrUpdate persists doc and notifies subscribers with the new table contents.
// It is safe for concurrent use.
func (s *DocumentStore) InsertOrUpdate(ctx context.Context, doc model.Document) (*model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.repo.Upsert(ctx, &doc)
	if err != nil {
		return nil, fmt.Errorf("upsert document: %w", err)
	}

	if len(s.subs) == 0 {
		return stored, nil
	}

	snapshot, err := s.repo.ListAll(ctx)
	if err != nil {
		// the write is committed; only this emission is lost
		s.logger.Error("snapshot read failed", zap.Int64("document_id", stored.ID), zap.Error(err))
		return stored, nil
	}
	for sub := range s.subs {
		sub.push(snapshot)
	}
	return stored, nil
}

// ObserveAll subscribes to the table. The current snapshot is delivered first,
// followed by one snapshot per committed write. The channel is closed once ctx is done.
// Snapshots are shared between subscribers and must not be modified.
func (s *DocumentStore) ObserveAll(ctx context.Context) (<-chan []model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	initial, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	sub := newSubscription()
	sub.push(initial)
	s.subs[sub] = struct{}{}

	go func() {
		sub.run(ctx)
		s.mu.Lock()
		delete(s.subs, sub)
		s.mu.Unlock()
	}()

	return sub.out, nil
}

// Subscribers returns the number of live subscriptions.
func (s *DocumentStore) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

type subscription struct {
	out    chan []model.Document
	notify chan struct{}

	mu    sync.Mutex
	queue [][]model.Document
}

func newSubscription() *subscription {
	return &subscription{
		out:    make(chan []model.Document),
		notify: make(chan struct{}, 1),
	}
}

func (s *subscription) push(snapshot []model.Document) {
	s.mu.Lock()
	s.queue = append(s.queue, snapshot)
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *subscription) run(ctx context.Context) {
	defer close(s.out)
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			select {
			case <-ctx.Done():
				return
			case <-s.notify:
				continue
			}
		}
		next := s.queue[0]
		s.queue[0] = nil
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case <-ctx.Done():
			return
		case s.out <- next:
		}
	}
}
