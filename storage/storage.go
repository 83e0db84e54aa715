package storage

import (
	"context"

	"github.com/bytedance/sonic"

	"agwakwagan/domain"
)

// Adapter is the persistence boundary the board core depends on. Load
// returns a default empty board when nothing is stored under the identifier.
// Save must be idempotent: it is keyed by the board's id and replaces
// whatever was stored before.
type Adapter interface {
	Load(ctx context.Context, boardID string) (domain.Board, error)
	Save(ctx context.Context, board domain.Board) error
}

// EncodeBoard serializes a board to the document form shared by adapters.
func EncodeBoard(b domain.Board) ([]byte, error) {
	return sonic.ConfigStd.Marshal(b)
}

// DecodeBoard parses a board document produced by EncodeBoard.
func DecodeBoard(data []byte) (domain.Board, error) {
	var b domain.Board
	if err := sonic.ConfigStd.Unmarshal(data, &b); err != nil {
		return domain.Board{}, err
	}
	if b.Cards == nil {
		b.Cards = map[string]domain.Card{}
	}
	if b.Columns == nil {
		b.Columns = map[string]domain.Column{}
	}
	if b.ColumnOrder == nil {
		b.ColumnOrder = []string{}
	}
	return b, nil
}
