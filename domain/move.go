package domain

import "fmt"

// MoveCard returns a new board in which the card occupies targetIndex within
// the target column, with every column's order values renumbered to stay
// dense. An out-of-range index clamps to the nearest end of the target
// sequence.
//
// For a same-column move the target index arrives in the original sequence's
// index space. Removing the card shifts every later slot down by one, so a
// downward move resolves to targetIndex-1 before inserting; inserting at the
// raw index lands the card one slot too far. The no-op check compares the
// resolved index, not the raw one, and a resolved no-op returns the board
// unchanged without refreshing any timestamp.
func MoveCard(b Board, cardID, targetColumnID string, targetIndex int) (Board, error) {
	card, ok := b.Cards[cardID]
	if !ok {
		return Board{}, NotFoundError{Kind: KindCard, ID: cardID}
	}
	if _, ok := b.Columns[targetColumnID]; !ok {
		return Board{}, NotFoundError{Kind: KindColumn, ID: targetColumnID}
	}

	source := b.ColumnCards(card.ColumnID)
	rest := removeCard(source, cardID)
	if len(rest) == len(source) {
		return Board{}, fmt.Errorf("card %s missing from column %s sequence: %w", cardID, card.ColumnID, ErrInvalidPosition)
	}

	if card.ColumnID == targetColumnID {
		raw, err := clampIndex(targetIndex, len(source))
		if err != nil {
			return Board{}, err
		}
		idx := raw
		if raw > card.Order {
			idx = raw - 1
		}
		if idx == card.Order {
			return b, nil
		}
		ts := Now()
		nb := b.clone()
		for i, c := range insertCard(rest, card, idx) {
			cc := nb.Cards[c.ID]
			cc.Order = i
			if c.ID == cardID {
				cc.UpdatedAt = ts
			}
			nb.Cards[c.ID] = cc
		}
		nb.UpdatedAt = ts
		return nb, nil
	}

	target := b.ColumnCards(targetColumnID)
	idx, err := clampIndex(targetIndex, len(target))
	if err != nil {
		return Board{}, err
	}

	ts := Now()
	nb := b.clone()
	for i, c := range rest {
		cc := nb.Cards[c.ID]
		cc.Order = i
		nb.Cards[c.ID] = cc
	}
	moved := card
	moved.ColumnID = targetColumnID
	moved.UpdatedAt = ts
	for i, c := range insertCard(target, moved, idx) {
		cc := nb.Cards[c.ID]
		if c.ID == cardID {
			cc = moved
		}
		cc.Order = i
		nb.Cards[c.ID] = cc
	}
	nb.UpdatedAt = ts
	return nb, nil
}

// clampIndex clamps idx to [0, length]. A negative length cannot occur on a
// consistent board and fails loudly instead of corrupting order values.
func clampIndex(idx, length int) (int, error) {
	if length < 0 {
		return 0, fmt.Errorf("sequence length %d: %w", length, ErrInvalidPosition)
	}
	if idx < 0 {
		return 0, nil
	}
	if idx > length {
		return length, nil
	}
	return idx, nil
}

func removeCard(seq []Card, id string) []Card {
	out := make([]Card, 0, len(seq))
	for _, c := range seq {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}

func insertCard(seq []Card, card Card, idx int) []Card {
	out := make([]Card, 0, len(seq)+1)
	out = append(out, seq[:idx]...)
	out = append(out, card)
	out = append(out, seq[idx:]...)
	return out
}
