package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/sanosuguru/go-ticket-sales/internal/domain/cart"
)

type cartRow struct {
	ID               string          `db:"id"`
	CustomerID       string          `db:"customer_id"`
	EventID          string          `db:"event_id"`
	TicketIDs        pq.StringArray  `db:"ticket_ids"`
	Total            decimal.Decimal `db:"total"`
	PaymentProcessed bool            `db:"payment_processed"`
	CreatedAt        time.Time       `db:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"`
}

func (r *cartRow) toEntity() *cart.Cart {
	return &cart.Cart{
		ID: r.ID, CustomerID: r.CustomerID, EventID: r.EventID,
		TicketIDs: []string(r.TicketIDs), Total: r.Total,
		PaymentProcessed: r.PaymentProcessed,
		CreatedAt:        r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

// CartRepository はカートのPostgreSQLリポジトリ
type CartRepository struct{ db *sqlx.DB }

// NewCartRepository は新しいカートリポジトリを作成する
func NewCartRepository(db *sqlx.DB) *CartRepository { return &CartRepository{db: db} }

func (r *CartRepository) Create(ctx context.Context, c *cart.Cart) error {
	query := `INSERT INTO carts (customer_id, event_id, ticket_ids, total, payment_processed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	return r.db.QueryRowContext(ctx, query,
		c.CustomerID, c.EventID, pq.Array(c.TicketIDs), c.Total, c.PaymentProcessed,
		c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
}

func (r *CartRepository) GetByID(ctx context.Context, id string) (*cart.Cart, error) {
	query := `SELECT id, customer_id, event_id, ticket_ids, total, payment_processed, created_at, updated_at FROM carts WHERE id = $1`
	var row cartRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, cart.ErrCartNotFound
		}
		return nil, fmt.Errorf("カート取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *CartRepository) GetUnprocessedOlderThan(ctx context.Context, cutoff time.Time) ([]*cart.Cart, error) {
	query := `SELECT id, customer_id, event_id, ticket_ids, total, payment_processed, created_at, updated_at FROM carts
		WHERE payment_processed = FALSE AND cardinality(ticket_ids) > 0 AND updated_at < $1 ORDER BY updated_at`
	var rows []cartRow
	if err := r.db.SelectContext(ctx, &rows, query, cutoff); err != nil {
		return nil, err
	}
	carts := make([]*cart.Cart, len(rows))
	for i, row := range rows {
		carts[i] = row.toEntity()
	}
	return carts, nil
}

func (r *CartRepository) Update(ctx context.Context, c *cart.Cart) error {
	query := `UPDATE carts SET ticket_ids = $1, total = $2, payment_processed = $3, updated_at = NOW() WHERE id = $4`
	result, err := r.db.ExecContext(ctx, query, pq.Array(c.TicketIDs), c.Total, c.PaymentProcessed, c.ID)
	if err != nil {
		return fmt.Errorf("カート更新に失敗: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return cart.ErrCartNotFound
	}
	return nil
}

func (r *CartRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM carts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("カート削除に失敗: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return cart.ErrCartNotFound
	}
	return nil
}

var _ cart.Repository = (*CartRepository)(nil)
