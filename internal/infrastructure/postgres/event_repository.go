package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-ticket-sales/internal/domain/event"
)

type eventRow struct {
	ID          string         `db:"id"`
	Name        string         `db:"name"`
	Description string         `db:"description"`
	VenueID     string         `db:"venue_id"`
	StartAt     time.Time      `db:"start_at"`
	EndAt       time.Time      `db:"end_at"`
	Status      string         `db:"status"`
	Type        string         `db:"type"`
	Artists     pq.StringArray `db:"artists"`
	Athletes    pq.StringArray `db:"athletes"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
	Version     int            `db:"version"`
}

func (r *eventRow) toEntity() *event.Event {
	return &event.Event{
		ID: r.ID, Name: r.Name, Description: r.Description, VenueID: r.VenueID,
		StartAt: r.StartAt, EndAt: r.EndAt,
		Status: event.Status(r.Status), Type: event.Type(r.Type),
		Artists: []string(r.Artists), Athletes: []string(r.Athletes),
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt, Version: r.Version,
	}
}

// EventRepository はイベントのPostgreSQLリポジトリ
type EventRepository struct{ db *sqlx.DB }

// NewEventRepository は新しいイベントリポジトリを作成する
func NewEventRepository(db *sqlx.DB) *EventRepository { return &EventRepository{db: db} }

func (r *EventRepository) Create(ctx context.Context, e *event.Event) error {
	query := `INSERT INTO events (name, description, venue_id, start_at, end_at, status, type, artists, athletes, created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id`
	return r.db.QueryRowContext(ctx, query,
		e.Name, e.Description, e.VenueID, e.StartAt, e.EndAt,
		string(e.Status), string(e.Type), pq.Array(e.Artists), pq.Array(e.Athletes),
		e.CreatedAt, e.UpdatedAt, e.Version,
	).Scan(&e.ID)
}

func (r *EventRepository) GetByID(ctx context.Context, id string) (*event.Event, error) {
	query := `SELECT id, name, description, venue_id, start_at, end_at, status, type, artists, athletes, created_at, updated_at, version FROM events WHERE id = $1`
	var row eventRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, event.ErrEventNotFound
		}
		return nil, fmt.Errorf("イベント取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *EventRepository) List(ctx context.Context, limit, offset int) ([]*event.Event, error) {
	query := `SELECT id, name, description, venue_id, start_at, end_at, status, type, artists, athletes, created_at, updated_at, version FROM events ORDER BY start_at LIMIT $1 OFFSET $2`
	var rows []eventRow
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, err
	}
	events := make([]*event.Event, len(rows))
	for i, row := range rows {
		events[i] = row.toEntity()
	}
	return events, nil
}

func (r *EventRepository) Update(ctx context.Context, e *event.Event) error {
	query := `UPDATE events SET name = $1, description = $2, venue_id = $3, start_at = $4, end_at = $5, status = $6, artists = $7, athletes = $8, updated_at = NOW(), version = version + 1
		WHERE id = $9 AND version = $10`
	result, err := r.db.ExecContext(ctx, query,
		e.Name, e.Description, e.VenueID, e.StartAt, e.EndAt, string(e.Status),
		pq.Array(e.Artists), pq.Array(e.Athletes), e.ID, e.Version,
	)
	if err != nil {
		return fmt.Errorf("イベント更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		if _, err := r.GetByID(ctx, e.ID); err != nil {
			return err
		}
		return event.ErrOptimisticLockConflict
	}
	e.Version++
	return nil
}

func (r *EventRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("イベント削除に失敗: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return event.ErrEventNotFound
	}
	return nil
}

var _ event.Repository = (*EventRepository)(nil)
