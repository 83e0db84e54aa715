package domain

import "sort"

// SchemaVersion is the board schema adapters persist alongside the data.
const SchemaVersion = 1

// Note is a single dated annotation on a card.
type Note struct {
	Text      string `json:"text"`
	CreatedAt int64  `json:"createdAt"`
}

// Card represents a single board item. A card belongs to exactly one column
// and occupies a dense zero-based position within it.
//
// Card deliberately carries no claiming/assignment fields; an agent-claiming
// capability is an extension to be introduced as its own type when it lands,
// not reserved here.
type Card struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	ColumnID    string `json:"columnId"`
	Order       int    `json:"order"`
	Notes       []Note `json:"notes,omitempty"`
	CreatedAt   int64  `json:"createdAt"`
	UpdatedAt   int64  `json:"updatedAt"`
}

// Column is an ordered stage holding cards. CardLimit of zero means the
// column is unbounded.
type Column struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Order     int    `json:"order"`
	CardLimit int    `json:"cardLimit,omitempty"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

// Board is the full state of one kanban instance. Boards are immutable
// values: every operation returns a new Board and never mutates its input.
//
// ColumnOrder is the authoritative column sequence. Each Column.Order is
// denormalized from it on every mutation so adapters that list columns
// row-by-row can still sort them.
type Board struct {
	ID            string            `json:"id"`
	SchemaVersion int               `json:"schemaVersion"`
	Cards         map[string]Card   `json:"cards"`
	Columns       map[string]Column `json:"columns"`
	ColumnOrder   []string          `json:"columnOrder"`
	CreatedAt     int64             `json:"createdAt"`
	UpdatedAt     int64             `json:"updatedAt"`
}

// NewBoard returns an empty board for the given identifier.
func NewBoard(id string) Board {
	ts := Now()
	return Board{
		ID:            id,
		SchemaVersion: SchemaVersion,
		Cards:         map[string]Card{},
		Columns:       map[string]Column{},
		ColumnOrder:   []string{},
		CreatedAt:     ts,
		UpdatedAt:     ts,
	}
}

// ColumnCards returns the cards of the given column sorted by order.
func (b Board) ColumnCards(columnID string) []Card {
	cards := make([]Card, 0, 8)
	for _, c := range b.Cards {
		if c.ColumnID == columnID {
			cards = append(cards, c)
		}
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].Order < cards[j].Order })
	return cards
}

// clone copies the board's entity maps and column list. Card and Column are
// plain values; operations that touch a card's note list replace the slice
// rather than appending in place, so sharing the backing arrays is safe.
func (b Board) clone() Board {
	nb := b
	nb.Cards = make(map[string]Card, len(b.Cards))
	for id, c := range b.Cards {
		nb.Cards[id] = c
	}
	nb.Columns = make(map[string]Column, len(b.Columns))
	for id, c := range b.Columns {
		nb.Columns[id] = c
	}
	nb.ColumnOrder = append([]string(nil), b.ColumnOrder...)
	return nb
}
