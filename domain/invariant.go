package domain

import "fmt"

// CheckInvariants validates the board's normalized graph: every card points
// at an existing column, every column's order values are exactly 0..n-1,
// and ColumnOrder lists each column exactly once with Column.Order in sync.
// A non-nil result means the board was produced by a bug, not by bad input.
func CheckInvariants(b Board) error {
	if len(b.ColumnOrder) != len(b.Columns) {
		return InvariantError{BoardID: b.ID, Detail: fmt.Sprintf("column order lists %d of %d columns", len(b.ColumnOrder), len(b.Columns))}
	}
	for i, id := range b.ColumnOrder {
		col, ok := b.Columns[id]
		if !ok {
			return InvariantError{BoardID: b.ID, Detail: fmt.Sprintf("column order references missing column %s", id)}
		}
		if col.Order != i {
			return InvariantError{BoardID: b.ID, Detail: fmt.Sprintf("column %s order %d, position %d", id, col.Order, i)}
		}
	}
	counts := make(map[string]int, len(b.Columns))
	seen := make(map[string]map[int]bool, len(b.Columns))
	for id, card := range b.Cards {
		if card.ID != id {
			return InvariantError{BoardID: b.ID, Detail: fmt.Sprintf("card keyed %s carries id %s", id, card.ID)}
		}
		if _, ok := b.Columns[card.ColumnID]; !ok {
			return InvariantError{BoardID: b.ID, Detail: fmt.Sprintf("card %s references missing column %s", id, card.ColumnID)}
		}
		counts[card.ColumnID]++
		if seen[card.ColumnID] == nil {
			seen[card.ColumnID] = map[int]bool{}
		}
		if seen[card.ColumnID][card.Order] {
			return InvariantError{BoardID: b.ID, Detail: fmt.Sprintf("column %s has duplicate order %d", card.ColumnID, card.Order)}
		}
		seen[card.ColumnID][card.Order] = true
	}
	for colID, n := range counts {
		for i := 0; i < n; i++ {
			if !seen[colID][i] {
				return InvariantError{BoardID: b.ID, Detail: fmt.Sprintf("column %s missing order %d of %d", colID, i, n)}
			}
		}
	}
	return nil
}
