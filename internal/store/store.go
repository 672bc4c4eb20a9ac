// Package store holds each user's boards collection and serialises the
// mutations applied to it.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"kanban-board/internal/board"
	"kanban-board/internal/events"
	"kanban-board/internal/model"
)

type Repository interface {
	LoadBoards(ctx context.Context, ownerID uuid.UUID) ([]model.Board, error)
	SaveBoards(ctx context.Context, ownerID uuid.UUID, boards []model.Board) error
}

type Publisher interface {
	Publish(ctx context.Context, e events.Event) error
}

type Recorder interface {
	RecordMutation(operation string, err error)
	SetWorkspacesResident(n int)
	AddWorkspacesEvicted(n int)
}

type workspace struct {
	mu       sync.Mutex
	boards   []model.Board
	loaded   bool
	evicted  bool
	lastUsed time.Time
}

// Store is the single source of truth for every user's boards. Each
// workspace has one writer at a time; readers receive copies.
type Store struct {
	repo      Repository
	publisher Publisher
	recorder  Recorder
	logger    *zap.Logger
	now       func() time.Time

	mu         sync.Mutex
	workspaces map[uuid.UUID]*workspace
}

type Option func(*Store)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(repo Repository, publisher Publisher, recorder Recorder, logger *zap.Logger, opts ...Option) *Store {
	s := &Store{
		repo:       repo,
		publisher:  publisher,
		recorder:   recorder,
		logger:     logger,
		now:        time.Now,
		workspaces: make(map[uuid.UUID]*workspace),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Boards returns a copy of the user's boards collection.
func (s *Store) Boards(ctx context.Context, userID uuid.UUID) ([]model.Board, error) {
	ws, err := s.acquire(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer ws.mu.Unlock()
	return model.CloneBoards(ws.boards), nil
}

// acquire returns the user's workspace locked and loaded.
func (s *Store) acquire(ctx context.Context, userID uuid.UUID) (*workspace, error) {
	for {
		s.mu.Lock()
		ws, ok := s.workspaces[userID]
		if !ok {
			ws = &workspace{}
			s.workspaces[userID] = ws
			s.recorder.SetWorkspacesResident(len(s.workspaces))
		}
		s.mu.Unlock()

		ws.mu.Lock()
		if ws.evicted {
			ws.mu.Unlock()
			continue
		}
		if !ws.loaded {
			boards, err := s.repo.LoadBoards(ctx, userID)
			if err != nil {
				ws.mu.Unlock()
				return nil, fmt.Errorf("load boards: %w", err)
			}
			ws.boards = board.EnsureActive(boards)
			ws.loaded = true
		}
		ws.lastUsed = s.now()
		return ws, nil
	}
}

// mutation is one guarded state transition. Its event is built from the
// resulting snapshot so that indices address the changed item there.
type mutation struct {
	op    string
	event func(next []model.Board) events.Event
	check func(boards []model.Board) error
	apply func(boards []model.Board) []model.Board
}

// mutate applies m to the user's workspace. The new snapshot becomes
// visible only after it has been persisted.
func (s *Store) mutate(ctx context.Context, userID uuid.UUID, m mutation) (result []model.Board, err error) {
	defer func() { s.recorder.RecordMutation(m.op, err) }()

	ws, err := s.acquire(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer ws.mu.Unlock()

	if m.check != nil {
		if err := m.check(ws.boards); err != nil {
			return nil, err
		}
	}

	next := m.apply(ws.boards)
	if err := s.repo.SaveBoards(ctx, userID, next); err != nil {
		return nil, fmt.Errorf("save boards: %w", err)
	}
	ws.boards = next

	e := m.event(next)
	e.UserID = userID
	e.At = s.now()
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Warn("Failed to publish board event",
			zap.String("type", e.Type),
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
	}

	return model.CloneBoards(next), nil
}

// EvictIdle drops workspaces unused for longer than maxIdle. Workspaces
// busy with a mutation are skipped. It returns the number evicted.
func (s *Store) EvictIdle(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, ws := range s.workspaces {
		if !ws.mu.TryLock() {
			continue
		}
		if ws.lastUsed.Before(cutoff) {
			ws.evicted = true
			delete(s.workspaces, id)
			evicted++
		}
		ws.mu.Unlock()
	}

	s.recorder.SetWorkspacesResident(len(s.workspaces))
	s.recorder.AddWorkspacesEvicted(evicted)
	return evicted
}

// Resident returns the number of workspaces held in memory.
func (s *Store) Resident() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.workspaces)
}
