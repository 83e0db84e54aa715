package domain

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"
)

type testColumn struct {
	id    string
	cards []string
}

func testBoard(cols ...testColumn) Board {
	b := Board{
		ID:            "board-1",
		SchemaVersion: SchemaVersion,
		Cards:         map[string]Card{},
		Columns:       map[string]Column{},
		ColumnOrder:   []string{},
		CreatedAt:     1,
		UpdatedAt:     1,
	}
	for i, col := range cols {
		b.Columns[col.id] = Column{ID: col.id, Title: col.id, Order: i, CreatedAt: 1, UpdatedAt: 1}
		b.ColumnOrder = append(b.ColumnOrder, col.id)
		for j, cardID := range col.cards {
			b.Cards[cardID] = Card{ID: cardID, Title: cardID, ColumnID: col.id, Order: j, CreatedAt: 1, UpdatedAt: 1}
		}
	}
	return b
}

func cardIDs(t *testing.T, b Board, columnID string) []string {
	t.Helper()
	cards := b.ColumnCards(columnID)
	ids := make([]string, len(cards))
	for i, c := range cards {
		if c.Order != i {
			t.Fatalf("column %s not densely ordered: card %s has order %d at position %d", columnID, c.ID, c.Order, i)
		}
		ids[i] = c.ID
	}
	return ids
}

func TestMoveCardDownwardResolvesIndexAfterRemoval(t *testing.T) {
	b := testBoard(testColumn{id: "todo", cards: []string{"A", "B", "C"}})

	nb, err := MoveCard(b, "A", "todo", 2)
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	// A naive implementation that resolves index 2 against the original
	// sequence lands A at the end instead.
	want := []string{"B", "A", "C"}
	if got := cardIDs(t, nb, "todo"); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected order: got %v, want %v", got, want)
	}
	if err := CheckInvariants(nb); err != nil {
		t.Fatalf("invariants: %v", err)
	}
}

func TestMoveCardClampsToEnd(t *testing.T) {
	b := testBoard(testColumn{id: "todo", cards: []string{"A", "B", "C"}})

	nb, err := MoveCard(b, "A", "todo", 99)
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	want := []string{"B", "C", "A"}
	if got := cardIDs(t, nb, "todo"); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected order: got %v, want %v", got, want)
	}
}

func TestMoveCardClampsNegativeToStart(t *testing.T) {
	b := testBoard(testColumn{id: "todo", cards: []string{"A", "B", "C"}})

	nb, err := MoveCard(b, "C", "todo", -7)
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	want := []string{"C", "A", "B"}
	if got := cardIDs(t, nb, "todo"); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected order: got %v, want %v", got, want)
	}
}

func TestMoveCardNoOpLeavesBoardUntouched(t *testing.T) {
	b := testBoard(testColumn{id: "todo", cards: []string{"A", "B", "C"}})

	// Index 1 resolves against [A C] and equals B's current position.
	nb, err := MoveCard(b, "B", "todo", 1)
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if !reflect.DeepEqual(nb, b) {
		t.Fatalf("no-op move altered the board: %#v", nb)
	}
	if nb.UpdatedAt != b.UpdatedAt {
		t.Fatalf("no-op move refreshed board timestamp")
	}
	if nb.Cards["B"].UpdatedAt != b.Cards["B"].UpdatedAt {
		t.Fatalf("no-op move refreshed card timestamp")
	}
}

func TestMoveCardDropOnOwnShiftedSlotIsNoOp(t *testing.T) {
	b := testBoard(testColumn{id: "todo", cards: []string{"A", "B", "C"}})

	// Raw index 1 differs from A's position, but removing A shifts the
	// sequence left and the drop resolves back to slot 0. Comparing raw
	// indexes would treat this as a real move and refresh timestamps.
	nb, err := MoveCard(b, "A", "todo", 1)
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if !reflect.DeepEqual(nb, b) {
		t.Fatalf("resolved no-op altered the board: got %v", cardIDs(t, nb, "todo"))
	}

	// The same raw index is a real move for a card coming from below.
	nb, err = MoveCard(b, "C", "todo", 1)
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	want := []string{"A", "C", "B"}
	if got := cardIDs(t, nb, "todo"); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected order: got %v, want %v", got, want)
	}
}

func TestMoveCardCrossColumnPreservesCounts(t *testing.T) {
	b := testBoard(
		testColumn{id: "todo", cards: []string{"A", "B", "C"}},
		testColumn{id: "doing", cards: []string{"X", "Y"}},
	)

	nb, err := MoveCard(b, "B", "doing", 1)
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if got, want := cardIDs(t, nb, "todo"), []string{"A", "C"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("source order: got %v, want %v", got, want)
	}
	if got, want := cardIDs(t, nb, "doing"), []string{"X", "B", "Y"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("target order: got %v, want %v", got, want)
	}
	if nb.Cards["B"].ColumnID != "doing" {
		t.Fatalf("moved card still references column %s", nb.Cards["B"].ColumnID)
	}
	if err := CheckInvariants(nb); err != nil {
		t.Fatalf("invariants: %v", err)
	}
}

func TestMoveCardOnlyRefreshesMovedCardTimestamp(t *testing.T) {
	b := testBoard(
		testColumn{id: "todo", cards: []string{"A", "B"}},
		testColumn{id: "done", cards: []string{"Z"}},
	)

	nb, err := MoveCard(b, "A", "done", 0)
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if nb.Cards["A"].UpdatedAt <= b.Cards["A"].UpdatedAt {
		t.Fatalf("moved card timestamp not refreshed")
	}
	if nb.UpdatedAt <= b.UpdatedAt {
		t.Fatalf("board timestamp not refreshed")
	}
	for _, id := range []string{"B", "Z"} {
		if nb.Cards[id].UpdatedAt != b.Cards[id].UpdatedAt {
			t.Fatalf("bystander card %s timestamp changed", id)
		}
	}
}

func TestMoveCardDoesNotMutateInput(t *testing.T) {
	b := testBoard(
		testColumn{id: "todo", cards: []string{"A", "B", "C"}},
		testColumn{id: "done", cards: nil},
	)
	snapshot := testBoard(
		testColumn{id: "todo", cards: []string{"A", "B", "C"}},
		testColumn{id: "done", cards: nil},
	)

	if _, err := MoveCard(b, "A", "done", 0); err != nil {
		t.Fatalf("move: %v", err)
	}
	if !reflect.DeepEqual(b, snapshot) {
		t.Fatalf("input board mutated: %#v", b)
	}
}

func TestMoveCardUnknownCard(t *testing.T) {
	b := testBoard(testColumn{id: "todo", cards: []string{"A"}})

	_, err := MoveCard(b, "nope", "todo", 0)
	var nf NotFoundError
	if !errors.As(err, &nf) || nf.Kind != KindCard {
		t.Fatalf("expected card NotFoundError, got %v", err)
	}
}

func TestMoveCardUnknownTargetColumn(t *testing.T) {
	b := testBoard(testColumn{id: "todo", cards: []string{"A"}})

	_, err := MoveCard(b, "A", "nope", 0)
	var nf NotFoundError
	if !errors.As(err, &nf) || nf.Kind != KindColumn {
		t.Fatalf("expected column NotFoundError, got %v", err)
	}
}

func TestMoveCardScenarioTodoDone(t *testing.T) {
	b := testBoard(
		testColumn{id: "todo", cards: []string{"Task1", "Task2", "Task3"}},
		testColumn{id: "done", cards: nil},
	)

	b1, err := MoveCard(b, "Task3", "todo", 0)
	if err != nil {
		t.Fatalf("move within todo: %v", err)
	}
	if got, want := cardIDs(t, b1, "todo"), []string{"Task3", "Task1", "Task2"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("after first move: got %v, want %v", got, want)
	}

	b2, err := MoveCard(b1, "Task1", "done", 0)
	if err != nil {
		t.Fatalf("move to done: %v", err)
	}
	if got, want := cardIDs(t, b2, "todo"), []string{"Task3", "Task2"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("todo after second move: got %v, want %v", got, want)
	}
	if got, want := cardIDs(t, b2, "done"), []string{"Task1"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("done after second move: got %v, want %v", got, want)
	}
}

func TestMoveCardRandomSequenceKeepsOrderDense(t *testing.T) {
	b := testBoard(
		testColumn{id: "todo", cards: []string{"c0", "c1", "c2", "c3", "c4"}},
		testColumn{id: "doing", cards: []string{"c5", "c6"}},
		testColumn{id: "done", cards: nil},
	)
	cards := []string{"c0", "c1", "c2", "c3", "c4", "c5", "c6"}
	columns := []string{"todo", "doing", "done"}

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		card := cards[rng.Intn(len(cards))]
		col := columns[rng.Intn(len(columns))]
		idx := rng.Intn(10) - 2
		nb, err := MoveCard(b, card, col, idx)
		if err != nil {
			t.Fatalf("step %d: move %s to %s[%d]: %v", i, card, col, idx, err)
		}
		if err := CheckInvariants(nb); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		b = nb
	}
	if len(b.Cards) != len(cards) {
		t.Fatalf("card count drifted: %d", len(b.Cards))
	}
}

func BenchmarkMoveCardSameColumn(b *testing.B) {
	cards := make([]string, 200)
	for i := range cards {
		cards[i] = "card-" + string(rune('a'+i%26)) + string(rune('0'+i/26))
	}
	board := testBoard(testColumn{id: "todo", cards: cards})

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := MoveCard(board, cards[0], "todo", len(cards)-1); err != nil {
			b.Fatal(err)
		}
	}
}
