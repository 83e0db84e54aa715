package storage

import (
	"context"
	"sync"

	"agwakwagan/domain"
)

// Memory is an in-process adapter holding serialized boards by id. It is
// the default adapter and the one tests run against.
type Memory struct {
	mu     sync.RWMutex
	boards map[string][]byte
}

// NewMemory creates an empty in-memory adapter.
func NewMemory() *Memory {
	return &Memory{boards: map[string][]byte{}}
}

func (m *Memory) Load(ctx context.Context, boardID string) (domain.Board, error) {
	m.mu.RLock()
	data, ok := m.boards[boardID]
	m.mu.RUnlock()
	if !ok {
		return domain.NewBoard(boardID), nil
	}
	return DecodeBoard(data)
}

func (m *Memory) Save(ctx context.Context, board domain.Board) error {
	data, err := EncodeBoard(board)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.boards[board.ID] = data
	m.mu.Unlock()
	return nil
}
