package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"agwakwagan/domain"
)

// File persists one JSON document per board under a root directory. Writes
// go through a temp file and rename so a crash mid-save never leaves a
// partially written board behind.
type File struct {
	dir string
}

// NewFile creates a file adapter rooted at dir, creating it if needed.
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create board dir: %w", err)
	}
	return &File{dir: dir}, nil
}

func (f *File) path(boardID string) string {
	return filepath.Join(f.dir, boardID+".json")
}

func (f *File) Load(ctx context.Context, boardID string) (domain.Board, error) {
	data, err := os.ReadFile(f.path(boardID))
	if err != nil {
		if os.IsNotExist(err) {
			return domain.NewBoard(boardID), nil
		}
		return domain.Board{}, fmt.Errorf("read board %s: %w", boardID, err)
	}
	b, err := DecodeBoard(data)
	if err != nil {
		return domain.Board{}, fmt.Errorf("decode board %s: %w", boardID, err)
	}
	return b, nil
}

func (f *File) Save(ctx context.Context, board domain.Board) error {
	data, err := EncodeBoard(board)
	if err != nil {
		return fmt.Errorf("encode board %s: %w", board.ID, err)
	}

	tmp, err := os.CreateTemp(f.dir, ".board-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path(board.ID)); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
