package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/sanosuguru/go-ticket-sales/internal/domain/ticket"
	"github.com/sanosuguru/go-ticket-sales/internal/domain/transaction"
)

type ticketRow struct {
	ID          string          `db:"id"`
	EventID     string          `db:"event_id"`
	SectionID   string          `db:"section_id"`
	SeatID      *string         `db:"seat_id"`
	Price       decimal.Decimal `db:"price"`
	Type        string          `db:"type"`
	Sold        bool            `db:"sold"`
	PurchaserID *string         `db:"purchaser_id"`
	PurchasedAt *time.Time      `db:"purchased_at"`
	CartID      *string         `db:"cart_id"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
	Version     int             `db:"version"`
}

func (r *ticketRow) toEntity() *ticket.Ticket {
	return &ticket.Ticket{
		ID: r.ID, EventID: r.EventID, SectionID: r.SectionID, SeatID: r.SeatID,
		Price: r.Price, Type: ticket.Type(r.Type), Sold: r.Sold,
		PurchaserID: r.PurchaserID, PurchasedAt: r.PurchasedAt, CartID: r.CartID,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt, Version: r.Version,
	}
}

const ticketColumns = `id, event_id, section_id, seat_id, price, type, sold, purchaser_id, purchased_at, cart_id, created_at, updated_at, version`

// TicketRepository はチケットのPostgreSQLリポジトリ
type TicketRepository struct{ db *sqlx.DB }

// NewTicketRepository は新しいチケットリポジトリを作成する
func NewTicketRepository(db *sqlx.DB) *TicketRepository { return &TicketRepository{db: db} }

func (r *TicketRepository) Create(ctx context.Context, t *ticket.Ticket) error {
	query := `INSERT INTO tickets (event_id, section_id, seat_id, price, type, sold, created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	return r.db.QueryRowContext(ctx, query,
		t.EventID, t.SectionID, t.SeatID, t.Price, string(t.Type), t.Sold,
		t.CreatedAt, t.UpdatedAt, t.Version,
	).Scan(&t.ID)
}

func (r *TicketRepository) CreateBulk(ctx context.Context, tickets []*ticket.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}

	const batchSize = 500
	for i := 0; i < len(tickets); i += batchSize {
		end := i + batchSize
		if end > len(tickets) {
			end = len(tickets)
		}
		if err := r.createBulkBatch(ctx, tickets[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (r *TicketRepository) createBulkBatch(ctx context.Context, tickets []*ticket.Ticket) error {
	query := `INSERT INTO tickets (event_id, section_id, seat_id, price, type, sold, created_at, updated_at, version) VALUES `
	args := make([]interface{}, 0, len(tickets)*9)
	placeholders := make([]string, 0, len(tickets))

	for i, t := range tickets {
		base := i * 9
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9))
		args = append(args, t.EventID, t.SectionID, t.SeatID, t.Price, string(t.Type), t.Sold, t.CreatedAt, t.UpdatedAt, t.Version)
	}

	query += strings.Join(placeholders, ", ")
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("チケット一括作成に失敗: %w", err)
	}
	return nil
}

func (r *TicketRepository) GetByID(ctx context.Context, id string) (*ticket.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`
	var row ticketRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ticket.ErrTicketNotFound
		}
		return nil, fmt.Errorf("チケット取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *TicketRepository) GetByEventID(ctx context.Context, eventID string) ([]*ticket.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE event_id = $1 ORDER BY created_at, id`
	return r.selectTickets(ctx, query, eventID)
}

func (r *TicketRepository) GetAvailableByEventID(ctx context.Context, eventID string) ([]*ticket.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE event_id = $1 AND sold = FALSE AND cart_id IS NULL ORDER BY created_at, id`
	return r.selectTickets(ctx, query, eventID)
}

func (r *TicketRepository) GetHeldByCartID(ctx context.Context, cartID string) ([]*ticket.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE cart_id = $1 ORDER BY created_at, id`
	return r.selectTickets(ctx, query, cartID)
}

func (r *TicketRepository) selectTickets(ctx context.Context, query string, args ...interface{}) ([]*ticket.Ticket, error) {
	var rows []ticketRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	tickets := make([]*ticket.Ticket, len(rows))
	for i, row := range rows {
		tickets[i] = row.toEntity()
	}
	return tickets, nil
}

const ticketUpdateQuery = `UPDATE tickets SET price = $1, sold = $2, purchaser_id = $3, purchased_at = $4, cart_id = $5, updated_at = NOW(), version = version + 1
	WHERE id = $6 AND version = $7`

func (r *TicketRepository) Update(ctx context.Context, t *ticket.Ticket) error {
	result, err := r.db.ExecContext(ctx, ticketUpdateQuery,
		t.Price, t.Sold, t.PurchaserID, t.PurchasedAt, t.CartID, t.ID, t.Version)
	if err != nil {
		return fmt.Errorf("チケット更新に失敗: %w", err)
	}
	return r.checkUpdateResult(ctx, result, t)
}

// UpdateInTx はトランザクション内でチケットを更新する
func (r *TicketRepository) UpdateInTx(ctx context.Context, tx transaction.Tx, t *ticket.Ticket) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return r.Update(ctx, t)
	}
	result, err := sqlxTx.ExecContext(ctx, ticketUpdateQuery,
		t.Price, t.Sold, t.PurchaserID, t.PurchasedAt, t.CartID, t.ID, t.Version)
	if err != nil {
		return fmt.Errorf("チケット更新に失敗: %w", err)
	}
	return r.checkUpdateResult(ctx, result, t)
}

func (r *TicketRepository) checkUpdateResult(ctx context.Context, result sql.Result, t *ticket.Ticket) error {
	rows, _ := result.RowsAffected()
	if rows == 0 {
		if _, err := r.GetByID(ctx, t.ID); err != nil {
			return err
		}
		return ticket.ErrOptimisticLockConflict
	}
	t.Version++
	return nil
}

func (r *TicketRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tickets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("チケット削除に失敗: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ticket.ErrTicketNotFound
	}
	return nil
}

func (r *TicketRepository) DeleteByEventID(ctx context.Context, eventID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM tickets WHERE event_id = $1`, eventID); err != nil {
		return fmt.Errorf("イベントのチケット削除に失敗: %w", err)
	}
	return nil
}

func (r *TicketRepository) DeleteBySeatIDs(ctx context.Context, seatIDs []string) error {
	if len(seatIDs) == 0 {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM tickets WHERE seat_id = ANY($1)`, pq.Array(seatIDs)); err != nil {
		return fmt.Errorf("座席のチケット削除に失敗: %w", err)
	}
	return nil
}

var _ ticket.Repository = (*TicketRepository)(nil)
