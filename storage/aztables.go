package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"

	"agwakwagan/domain"
)

const (
	metaRowKey      = "meta"
	cardRowPrefix   = "card:"
	columnRowPrefix = "column:"

	edmInt64 = "Edm.Int64"
)

// Tables persists boards in an Azure Storage table. Each board occupies one
// partition: a row per card, a row per column, and a meta row carrying the
// column order and board timestamps. Save replaces the partition's rows and
// deletes rows for entities that no longer exist, which keeps it idempotent.
type Tables struct {
	table *aztables.Client
}

// NewTables creates a Tables adapter from the given connection string.
func NewTables(connStr, table string) (*Tables, error) {
	opts := aztables.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{
				MaxRetries:    3,
				TryTimeout:    time.Minute * 3,
				RetryDelay:    time.Second * 1,
				MaxRetryDelay: time.Second * 15,
				StatusCodes:   []int{408, 429, 500, 502, 503, 504},
			},
		},
	}
	svc, err := aztables.NewServiceClientFromConnectionString(connStr, &opts)
	if err != nil {
		return nil, err
	}
	return &Tables{table: svc.NewClient(table)}, nil
}

type tableEntity struct {
	PartitionKey string `json:"PartitionKey"`
	RowKey       string `json:"RowKey"`
}

type metaRow struct {
	tableEntity
	SchemaVersion int    `json:"SchemaVersion"`
	ColumnOrder   string `json:"ColumnOrder"`
	CreatedAt     int64  `json:"CreatedAt,string"`
	CreatedAtType string `json:"CreatedAt@odata.type"`
	UpdatedAt     int64  `json:"UpdatedAt,string"`
	UpdatedAtType string `json:"UpdatedAt@odata.type"`
}

type cardRow struct {
	tableEntity
	Title         string `json:"Title"`
	Description   string `json:"Description,omitempty"`
	ColumnID      string `json:"ColumnId"`
	Order         int    `json:"Order"`
	Notes         string `json:"Notes,omitempty"`
	CreatedAt     int64  `json:"CreatedAt,string"`
	CreatedAtType string `json:"CreatedAt@odata.type"`
	UpdatedAt     int64  `json:"UpdatedAt,string"`
	UpdatedAtType string `json:"UpdatedAt@odata.type"`
}

type columnRow struct {
	tableEntity
	Title         string `json:"Title"`
	Order         int    `json:"Order"`
	CardLimit     int    `json:"CardLimit"`
	CreatedAt     int64  `json:"CreatedAt,string"`
	CreatedAtType string `json:"CreatedAt@odata.type"`
	UpdatedAt     int64  `json:"UpdatedAt,string"`
	UpdatedAtType string `json:"UpdatedAt@odata.type"`
}

func (t *Tables) Load(ctx context.Context, boardID string) (domain.Board, error) {
	filter := "PartitionKey eq '" + boardID + "'"
	pager := t.table.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})

	board := domain.NewBoard(boardID)
	board.ColumnOrder = nil
	found := false
	metaSeen := false

	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return domain.Board{}, fmt.Errorf("list board %s: %w", boardID, err)
		}
		for _, raw := range resp.Entities {
			var probe tableEntity
			if err := json.Unmarshal(raw, &probe); err != nil {
				return domain.Board{}, fmt.Errorf("decode row: %w", err)
			}
			found = true
			switch {
			case probe.RowKey == metaRowKey:
				var row metaRow
				if err := json.Unmarshal(raw, &row); err != nil {
					return domain.Board{}, fmt.Errorf("decode meta row: %w", err)
				}
				var order []string
				if row.ColumnOrder != "" {
					if err := json.Unmarshal([]byte(row.ColumnOrder), &order); err != nil {
						return domain.Board{}, fmt.Errorf("decode column order: %w", err)
					}
				}
				board.SchemaVersion = row.SchemaVersion
				board.ColumnOrder = order
				board.CreatedAt = row.CreatedAt
				board.UpdatedAt = row.UpdatedAt
				metaSeen = true
			case strings.HasPrefix(probe.RowKey, cardRowPrefix):
				var row cardRow
				if err := json.Unmarshal(raw, &row); err != nil {
					return domain.Board{}, fmt.Errorf("decode card row %s: %w", probe.RowKey, err)
				}
				card := domain.Card{
					ID:          strings.TrimPrefix(row.RowKey, cardRowPrefix),
					Title:       row.Title,
					Description: row.Description,
					ColumnID:    row.ColumnID,
					Order:       row.Order,
					CreatedAt:   row.CreatedAt,
					UpdatedAt:   row.UpdatedAt,
				}
				if row.Notes != "" {
					if err := json.Unmarshal([]byte(row.Notes), &card.Notes); err != nil {
						return domain.Board{}, fmt.Errorf("decode notes for card %s: %w", card.ID, err)
					}
				}
				board.Cards[card.ID] = card
			case strings.HasPrefix(probe.RowKey, columnRowPrefix):
				var row columnRow
				if err := json.Unmarshal(raw, &row); err != nil {
					return domain.Board{}, fmt.Errorf("decode column row %s: %w", probe.RowKey, err)
				}
				col := domain.Column{
					ID:        strings.TrimPrefix(row.RowKey, columnRowPrefix),
					Title:     row.Title,
					Order:     row.Order,
					CardLimit: row.CardLimit,
					CreatedAt: row.CreatedAt,
					UpdatedAt: row.UpdatedAt,
				}
				board.Columns[col.ID] = col
			}
		}
	}

	if !found {
		return domain.NewBoard(boardID), nil
	}
	if !metaSeen {
		// Older partitions may lack a meta row; rebuild the authoritative
		// list from the denormalized per-column order.
		board.ColumnOrder = columnOrderFromColumns(board.Columns)
	}
	if board.ColumnOrder == nil {
		board.ColumnOrder = []string{}
	}
	return board, nil
}

func (t *Tables) Save(ctx context.Context, board domain.Board) error {
	rows, err := boardRows(board)
	if err != nil {
		return err
	}

	keep := make(map[string]bool, len(rows))
	for _, row := range rows {
		keep[row.key] = true
		if _, err := t.table.UpsertEntity(ctx, row.payload, nil); err != nil {
			return fmt.Errorf("upsert row %s: %w", row.key, err)
		}
	}

	filter := "PartitionKey eq '" + board.ID + "'"
	pager := t.table.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("list stale rows for board %s: %w", board.ID, err)
		}
		for _, raw := range resp.Entities {
			var probe tableEntity
			if err := json.Unmarshal(raw, &probe); err != nil {
				return fmt.Errorf("decode row: %w", err)
			}
			if keep[probe.RowKey] {
				continue
			}
			if _, err := t.table.DeleteEntity(ctx, board.ID, probe.RowKey, nil); err != nil {
				return fmt.Errorf("delete stale row %s: %w", probe.RowKey, err)
			}
		}
	}
	return nil
}

type tableRow struct {
	key     string
	payload []byte
}

func boardRows(board domain.Board) ([]tableRow, error) {
	rows := make([]tableRow, 0, len(board.Cards)+len(board.Columns)+1)

	order, err := json.Marshal(board.ColumnOrder)
	if err != nil {
		return nil, fmt.Errorf("encode column order: %w", err)
	}
	meta := metaRow{
		tableEntity:   tableEntity{PartitionKey: board.ID, RowKey: metaRowKey},
		SchemaVersion: board.SchemaVersion,
		ColumnOrder:   string(order),
		CreatedAt:     board.CreatedAt,
		CreatedAtType: edmInt64,
		UpdatedAt:     board.UpdatedAt,
		UpdatedAtType: edmInt64,
	}
	payload, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("encode meta row: %w", err)
	}
	rows = append(rows, tableRow{key: metaRowKey, payload: payload})

	for id, card := range board.Cards {
		row := cardRow{
			tableEntity:   tableEntity{PartitionKey: board.ID, RowKey: cardRowPrefix + id},
			Title:         card.Title,
			Description:   card.Description,
			ColumnID:      card.ColumnID,
			Order:         card.Order,
			CreatedAt:     card.CreatedAt,
			CreatedAtType: edmInt64,
			UpdatedAt:     card.UpdatedAt,
			UpdatedAtType: edmInt64,
		}
		if len(card.Notes) > 0 {
			notes, err := json.Marshal(card.Notes)
			if err != nil {
				return nil, fmt.Errorf("encode notes for card %s: %w", id, err)
			}
			row.Notes = string(notes)
		}
		payload, err := json.Marshal(row)
		if err != nil {
			return nil, fmt.Errorf("encode card row %s: %w", id, err)
		}
		rows = append(rows, tableRow{key: row.RowKey, payload: payload})
	}

	for id, col := range board.Columns {
		row := columnRow{
			tableEntity:   tableEntity{PartitionKey: board.ID, RowKey: columnRowPrefix + id},
			Title:         col.Title,
			Order:         col.Order,
			CardLimit:     col.CardLimit,
			CreatedAt:     col.CreatedAt,
			CreatedAtType: edmInt64,
			UpdatedAt:     col.UpdatedAt,
			UpdatedAtType: edmInt64,
		}
		payload, err := json.Marshal(row)
		if err != nil {
			return nil, fmt.Errorf("encode column row %s: %w", id, err)
		}
		rows = append(rows, tableRow{key: row.RowKey, payload: payload})
	}

	return rows, nil
}

func columnOrderFromColumns(columns map[string]domain.Column) []string {
	cols := make([]domain.Column, 0, len(columns))
	for _, c := range columns {
		cols = append(cols, c)
	}
	sort.Slice(cols, func(i, j int) bool { return cols[i].Order < cols[j].Order })
	order := make([]string, len(cols))
	for i, c := range cols {
		order[i] = c.ID
	}
	return order
}
