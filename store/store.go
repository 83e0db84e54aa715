// Package store owns the live board value. Mutations serialize behind the
// store's lock, each one replaces the immutable snapshot, and every new
// snapshot is handed to a single-writer pipeline that persists boards in
// mutation order. The in-memory board is the source of truth; storage is a
// downstream mirror.
package store

import (
	"context"
	"errors"
	"sync"

	log "github.com/sirupsen/logrus"

	"agwakwagan/domain"
	"agwakwagan/storage"
)

// ErrClosed is returned by mutations attempted after Close.
var ErrClosed = errors.New("board store is closed")

// Store holds the current board for one board identifier.
type Store struct {
	logger *log.Logger
	saver  *saver

	mu       sync.Mutex
	board    domain.Board
	revision uint64
	closed   bool
}

// Open loads the board from the adapter and starts the persistence
// pipeline. A board id the adapter has never seen yields an empty board.
func Open(ctx context.Context, boardID string, opts Options) (*Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New()
	}
	adapter := opts.Adapter
	if adapter == nil {
		adapter = storage.NewMemory()
	}
	cfg := opts.Config.withDefaults()

	board, err := adapter.Load(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if err := domain.CheckInvariants(board); err != nil {
		return nil, err
	}

	return &Store{
		logger: logger,
		saver:  newSaver(cfg, adapter, logger, opts.OnSaveFailure),
		board:  board,
	}, nil
}

// Snapshot returns the current board. Boards are immutable values, so the
// caller may hold on to it indefinitely.
func (s *Store) Snapshot() domain.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board
}

// Revision returns the number of mutations applied since Open.
func (s *Store) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// Stats reports the persistence pipeline's progress.
func (s *Store) Stats() Stats {
	return s.saver.stats()
}

// Close drains pending saves and stops the pipeline. Mutations after Close
// fail with ErrClosed.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()
	s.saver.close()
}

// apply runs one mutation to completion under the store lock. A domain
// failure leaves the snapshot untouched and enqueues nothing. A mutation
// that resolves to a no-op returns the current snapshot without touching
// the pipeline, so no-ops never reach the adapter.
func (s *Store) apply(m *mutationMetrics, fn func(domain.Board) (domain.Board, error)) (domain.Board, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		err := ErrClosed
		m.Finish(err)
		return domain.Board{}, err
	}

	next, err := fn(s.board)
	if err != nil {
		m.Finish(err)
		return domain.Board{}, err
	}
	if next.UpdatedAt == s.board.UpdatedAt {
		m.SetNoOp()
		m.Finish(nil)
		return s.board, nil
	}

	s.board = next
	s.revision++
	m.SetRevision(s.revision)
	s.saver.enqueue(saveJob{board: next, revision: s.revision})
	m.Finish(nil)
	return next, nil
}

// MoveCard moves a card to targetIndex within the target column.
func (s *Store) MoveCard(cardID, targetColumnID string, targetIndex int) (domain.Board, error) {
	m := s.metrics(opMoveCard)
	m.SetCard(cardID)
	m.SetColumn(targetColumnID)
	m.SetIndex(targetIndex)
	return s.apply(m, func(b domain.Board) (domain.Board, error) {
		return domain.MoveCard(b, cardID, targetColumnID, targetIndex)
	})
}

// AddCard appends a new card at the end of the given column.
func (s *Store) AddCard(columnID, title, description string) (domain.Board, domain.Card, error) {
	var card domain.Card
	m := s.metrics(opAddCard)
	m.SetColumn(columnID)
	board, err := s.apply(m, func(b domain.Board) (domain.Board, error) {
		nb, c, err := domain.AddCard(b, columnID, title, description)
		card = c
		return nb, err
	})
	return board, card, err
}

// UpdateCard patches a card's title and description.
func (s *Store) UpdateCard(cardID string, upd domain.CardUpdate) (domain.Board, error) {
	m := s.metrics(opUpdateCard)
	m.SetCard(cardID)
	return s.apply(m, func(b domain.Board) (domain.Board, error) {
		return domain.UpdateCard(b, cardID, upd)
	})
}

// AddCardNote appends a note to a card.
func (s *Store) AddCardNote(cardID, text string) (domain.Board, error) {
	m := s.metrics(opAddCardNote)
	m.SetCard(cardID)
	return s.apply(m, func(b domain.Board) (domain.Board, error) {
		return domain.AddCardNote(b, cardID, text)
	})
}

// DeleteCard removes a card and renumbers its column.
func (s *Store) DeleteCard(cardID string) (domain.Board, error) {
	m := s.metrics(opDeleteCard)
	m.SetCard(cardID)
	return s.apply(m, func(b domain.Board) (domain.Board, error) {
		return domain.DeleteCard(b, cardID)
	})
}

// AddColumn appends a new column at the end of the board.
func (s *Store) AddColumn(title string) (domain.Board, domain.Column, error) {
	var col domain.Column
	m := s.metrics(opAddColumn)
	board, err := s.apply(m, func(b domain.Board) (domain.Board, error) {
		nb, c, err := domain.AddColumn(b, title)
		col = c
		return nb, err
	})
	return board, col, err
}

// RenameColumn sets a column's title.
func (s *Store) RenameColumn(columnID, title string) (domain.Board, error) {
	m := s.metrics(opRenameColumn)
	m.SetColumn(columnID)
	return s.apply(m, func(b domain.Board) (domain.Board, error) {
		return domain.RenameColumn(b, columnID, title)
	})
}

// SetColumnLimit sets a column's card limit.
func (s *Store) SetColumnLimit(columnID string, limit int) (domain.Board, error) {
	m := s.metrics(opSetColumnLimit)
	m.SetColumn(columnID)
	return s.apply(m, func(b domain.Board) (domain.Board, error) {
		return domain.SetColumnLimit(b, columnID, limit)
	})
}

// RemoveColumn deletes a column and the cards it holds.
func (s *Store) RemoveColumn(columnID string) (domain.Board, error) {
	m := s.metrics(opRemoveColumn)
	m.SetColumn(columnID)
	return s.apply(m, func(b domain.Board) (domain.Board, error) {
		return domain.RemoveColumn(b, columnID)
	})
}

// MoveColumn moves a column to targetIndex within the board's sequence.
func (s *Store) MoveColumn(columnID string, targetIndex int) (domain.Board, error) {
	m := s.metrics(opMoveColumn)
	m.SetColumn(columnID)
	m.SetIndex(targetIndex)
	return s.apply(m, func(b domain.Board) (domain.Board, error) {
		return domain.MoveColumn(b, columnID, targetIndex)
	})
}

func (s *Store) metrics(op string) *mutationMetrics {
	s.mu.Lock()
	boardID := s.board.ID
	s.mu.Unlock()
	return newMutationMetrics(context.Background(), s.logger, op, boardID)
}
