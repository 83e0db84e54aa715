package domain

// CardUpdate carries the card fields an update may patch. Nil fields are
// left untouched.
type CardUpdate struct {
	Title       *string
	Description *string
}

// AddColumn appends a new column at the end of the board's column sequence
// and returns it alongside the new board.
func AddColumn(b Board, title string) (Board, Column, error) {
	ts := Now()
	col := Column{
		ID:        NewID(),
		Title:     title,
		Order:     len(b.ColumnOrder),
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	nb := b.clone()
	nb.Columns[col.ID] = col
	nb.ColumnOrder = append(nb.ColumnOrder, col.ID)
	nb.UpdatedAt = ts
	return nb, col, nil
}

// RenameColumn sets a column's title.
func RenameColumn(b Board, columnID, title string) (Board, error) {
	col, ok := b.Columns[columnID]
	if !ok {
		return Board{}, NotFoundError{Kind: KindColumn, ID: columnID}
	}
	ts := Now()
	nb := b.clone()
	col.Title = title
	col.UpdatedAt = ts
	nb.Columns[columnID] = col
	nb.UpdatedAt = ts
	return nb, nil
}

// SetColumnLimit sets a column's card limit. Zero removes the limit. The
// limit is display metadata and is not enforced by card operations.
func SetColumnLimit(b Board, columnID string, limit int) (Board, error) {
	col, ok := b.Columns[columnID]
	if !ok {
		return Board{}, NotFoundError{Kind: KindColumn, ID: columnID}
	}
	if limit < 0 {
		limit = 0
	}
	ts := Now()
	nb := b.clone()
	col.CardLimit = limit
	col.UpdatedAt = ts
	nb.Columns[columnID] = col
	nb.UpdatedAt = ts
	return nb, nil
}

// RemoveColumn deletes a column together with the cards it holds and
// renumbers the surviving columns.
func RemoveColumn(b Board, columnID string) (Board, error) {
	if _, ok := b.Columns[columnID]; !ok {
		return Board{}, NotFoundError{Kind: KindColumn, ID: columnID}
	}
	ts := Now()
	nb := b.clone()
	delete(nb.Columns, columnID)
	for _, c := range b.ColumnCards(columnID) {
		delete(nb.Cards, c.ID)
	}
	order := make([]string, 0, len(b.ColumnOrder)-1)
	for _, id := range b.ColumnOrder {
		if id != columnID {
			order = append(order, id)
		}
	}
	nb.ColumnOrder = order
	renumberColumns(&nb)
	nb.UpdatedAt = ts
	return nb, nil
}

// MoveColumn moves a column to targetIndex within the board's column
// sequence. The raw index follows MoveCard's semantics: it addresses the
// original sequence and shifts down by one when the column moves past its
// own prior slot. A resolved no-op returns the board unchanged.
func MoveColumn(b Board, columnID string, targetIndex int) (Board, error) {
	col, ok := b.Columns[columnID]
	if !ok {
		return Board{}, NotFoundError{Kind: KindColumn, ID: columnID}
	}
	rest := make([]string, 0, len(b.ColumnOrder))
	for _, id := range b.ColumnOrder {
		if id != columnID {
			rest = append(rest, id)
		}
	}
	raw, err := clampIndex(targetIndex, len(b.ColumnOrder))
	if err != nil {
		return Board{}, err
	}
	idx := raw
	if raw > col.Order {
		idx = raw - 1
	}
	if idx == col.Order {
		return b, nil
	}
	order := make([]string, 0, len(b.ColumnOrder))
	order = append(order, rest[:idx]...)
	order = append(order, columnID)
	order = append(order, rest[idx:]...)

	ts := Now()
	nb := b.clone()
	nb.ColumnOrder = order
	renumberColumns(&nb)
	moved := nb.Columns[columnID]
	moved.UpdatedAt = ts
	nb.Columns[columnID] = moved
	nb.UpdatedAt = ts
	return nb, nil
}

// AddCard appends a new card at the end of the given column and returns it
// alongside the new board.
func AddCard(b Board, columnID, title, description string) (Board, Card, error) {
	if _, ok := b.Columns[columnID]; !ok {
		return Board{}, Card{}, NotFoundError{Kind: KindColumn, ID: columnID}
	}
	ts := Now()
	card := Card{
		ID:          NewID(),
		Title:       title,
		Description: description,
		ColumnID:    columnID,
		Order:       len(b.ColumnCards(columnID)),
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	nb := b.clone()
	nb.Cards[card.ID] = card
	nb.UpdatedAt = ts
	return nb, card, nil
}

// UpdateCard patches a card's title and description.
func UpdateCard(b Board, cardID string, upd CardUpdate) (Board, error) {
	card, ok := b.Cards[cardID]
	if !ok {
		return Board{}, NotFoundError{Kind: KindCard, ID: cardID}
	}
	if upd.Title == nil && upd.Description == nil {
		return Board{}, ErrEmptyUpdate
	}
	if upd.Title != nil {
		card.Title = *upd.Title
	}
	if upd.Description != nil {
		card.Description = *upd.Description
	}
	ts := Now()
	card.UpdatedAt = ts
	nb := b.clone()
	nb.Cards[cardID] = card
	nb.UpdatedAt = ts
	return nb, nil
}

// AddCardNote appends a note to the card's ordered note list.
func AddCardNote(b Board, cardID, text string) (Board, error) {
	card, ok := b.Cards[cardID]
	if !ok {
		return Board{}, NotFoundError{Kind: KindCard, ID: cardID}
	}
	ts := Now()
	notes := make([]Note, 0, len(card.Notes)+1)
	notes = append(notes, card.Notes...)
	notes = append(notes, Note{Text: text, CreatedAt: ts})
	card.Notes = notes
	card.UpdatedAt = ts
	nb := b.clone()
	nb.Cards[cardID] = card
	nb.UpdatedAt = ts
	return nb, nil
}

// DeleteCard removes a card and renumbers its surviving column siblings.
func DeleteCard(b Board, cardID string) (Board, error) {
	card, ok := b.Cards[cardID]
	if !ok {
		return Board{}, NotFoundError{Kind: KindCard, ID: cardID}
	}
	ts := Now()
	nb := b.clone()
	delete(nb.Cards, cardID)
	for i, c := range removeCard(b.ColumnCards(card.ColumnID), cardID) {
		cc := nb.Cards[c.ID]
		cc.Order = i
		nb.Cards[c.ID] = cc
	}
	nb.UpdatedAt = ts
	return nb, nil
}

// renumberColumns syncs each Column.Order with its position in ColumnOrder.
func renumberColumns(b *Board) {
	for i, id := range b.ColumnOrder {
		col := b.Columns[id]
		col.Order = i
		b.Columns[id] = col
	}
}
