package storage

import (
	"encoding/json"
	"reflect"
	"testing"

	"agwakwagan/domain"
)

func TestBoardRowsCoverEveryEntity(t *testing.T) {
	b := sampleBoard()

	rows, err := boardRows(b)
	if err != nil {
		t.Fatalf("board rows: %v", err)
	}
	if want := len(b.Cards) + len(b.Columns) + 1; len(rows) != want {
		t.Fatalf("row count: got %d, want %d", len(rows), want)
	}

	keys := map[string]bool{}
	for _, row := range rows {
		keys[row.key] = true
	}
	for id := range b.Cards {
		if !keys[cardRowPrefix+id] {
			t.Fatalf("missing card row for %s", id)
		}
	}
	for id := range b.Columns {
		if !keys[columnRowPrefix+id] {
			t.Fatalf("missing column row for %s", id)
		}
	}
	if !keys[metaRowKey] {
		t.Fatalf("missing meta row")
	}
}

func TestCardRowEncodesInt64Timestamps(t *testing.T) {
	b := sampleBoard()

	rows, err := boardRows(b)
	if err != nil {
		t.Fatalf("board rows: %v", err)
	}
	var row cardRow
	for _, r := range rows {
		if r.key == cardRowPrefix+"c1" {
			if err := json.Unmarshal(r.payload, &row); err != nil {
				t.Fatalf("decode payload: %v", err)
			}
		}
	}
	if row.RowKey == "" {
		t.Fatalf("card row c1 not found")
	}
	if row.CreatedAtType != edmInt64 || row.UpdatedAtType != edmInt64 {
		t.Fatalf("timestamps not annotated as Edm.Int64: %#v", row)
	}
	if row.CreatedAt != b.Cards["c1"].CreatedAt {
		t.Fatalf("created at: got %d, want %d", row.CreatedAt, b.Cards["c1"].CreatedAt)
	}
	var notes []domain.Note
	if err := json.Unmarshal([]byte(row.Notes), &notes); err != nil {
		t.Fatalf("decode notes: %v", err)
	}
	if !reflect.DeepEqual(notes, b.Cards["c1"].Notes) {
		t.Fatalf("notes mismatch: %#v", notes)
	}
}

func TestColumnOrderFromColumnsSortsByOrder(t *testing.T) {
	columns := map[string]domain.Column{
		"c": {ID: "c", Order: 2},
		"a": {ID: "a", Order: 0},
		"b": {ID: "b", Order: 1},
	}

	got := columnOrderFromColumns(columns)
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("column order: got %v, want %v", got, want)
	}
}
