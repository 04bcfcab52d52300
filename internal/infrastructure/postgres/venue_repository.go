package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-ticket-sales/internal/domain/venue"
)

type venueRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Location  string    `db:"location"`
	Capacity  int       `db:"capacity"`
	HasSeats  bool      `db:"has_seats"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r *venueRow) toEntity() *venue.Venue {
	return &venue.Venue{
		ID: r.ID, Name: r.Name, Location: r.Location,
		Capacity: r.Capacity, HasSeats: r.HasSeats,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

// VenueRepository は会場のPostgreSQLリポジトリ
type VenueRepository struct{ db *sqlx.DB }

// NewVenueRepository は新しい会場リポジトリを作成する
func NewVenueRepository(db *sqlx.DB) *VenueRepository { return &VenueRepository{db: db} }

func (r *VenueRepository) Create(ctx context.Context, v *venue.Venue) error {
	query := `INSERT INTO venues (name, location, capacity, has_seats, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	return r.db.QueryRowContext(ctx, query, v.Name, v.Location, v.Capacity, v.HasSeats, v.CreatedAt, v.UpdatedAt).Scan(&v.ID)
}

func (r *VenueRepository) GetByID(ctx context.Context, id string) (*venue.Venue, error) {
	query := `SELECT id, name, location, capacity, has_seats, created_at, updated_at FROM venues WHERE id = $1`
	var row venueRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, venue.ErrVenueNotFound
		}
		return nil, fmt.Errorf("会場取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *VenueRepository) List(ctx context.Context) ([]*venue.Venue, error) {
	query := `SELECT id, name, location, capacity, has_seats, created_at, updated_at FROM venues ORDER BY created_at`
	var rows []venueRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}
	venues := make([]*venue.Venue, len(rows))
	for i, row := range rows {
		venues[i] = row.toEntity()
	}
	return venues, nil
}

func (r *VenueRepository) SearchByNameOrLocation(ctx context.Context, keyword string) ([]*venue.Venue, error) {
	query := `SELECT id, name, location, capacity, has_seats, created_at, updated_at FROM venues WHERE name ILIKE $1 OR location ILIKE $1 ORDER BY created_at`
	pattern := "%" + strings.ReplaceAll(keyword, "%", "\\%") + "%"
	var rows []venueRow
	if err := r.db.SelectContext(ctx, &rows, query, pattern); err != nil {
		return nil, err
	}
	venues := make([]*venue.Venue, len(rows))
	for i, row := range rows {
		venues[i] = row.toEntity()
	}
	return venues, nil
}

func (r *VenueRepository) Update(ctx context.Context, v *venue.Venue) error {
	query := `UPDATE venues SET name = $1, location = $2, capacity = $3, has_seats = $4, updated_at = NOW() WHERE id = $5`
	result, err := r.db.ExecContext(ctx, query, v.Name, v.Location, v.Capacity, v.HasSeats, v.ID)
	if err != nil {
		return fmt.Errorf("会場更新に失敗: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return venue.ErrVenueNotFound
	}
	return nil
}

func (r *VenueRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM venues WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("会場削除に失敗: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return venue.ErrVenueNotFound
	}
	return nil
}

type sectionRow struct {
	ID        string    `db:"id"`
	VenueID   string    `db:"venue_id"`
	Name      string    `db:"name"`
	Capacity  int       `db:"capacity"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r *sectionRow) toEntity() *venue.Section {
	return &venue.Section{
		ID: r.ID, VenueID: r.VenueID, Name: r.Name, Capacity: r.Capacity,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

// SectionRepository はセクションのPostgreSQLリポジトリ
type SectionRepository struct{ db *sqlx.DB }

// NewSectionRepository は新しいセクションリポジトリを作成する
func NewSectionRepository(db *sqlx.DB) *SectionRepository { return &SectionRepository{db: db} }

func (r *SectionRepository) Create(ctx context.Context, s *venue.Section) error {
	query := `INSERT INTO sections (venue_id, name, capacity, created_at, updated_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err := r.db.QueryRowContext(ctx, query, s.VenueID, s.Name, s.Capacity, s.CreatedAt, s.UpdatedAt).Scan(&s.ID)
	if err != nil && strings.Contains(err.Error(), "sections_venue_name_key") {
		return venue.ErrSectionNameTaken
	}
	return err
}

func (r *SectionRepository) GetByID(ctx context.Context, id string) (*venue.Section, error) {
	query := `SELECT id, venue_id, name, capacity, created_at, updated_at FROM sections WHERE id = $1`
	var row sectionRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, venue.ErrSectionNotFound
		}
		return nil, fmt.Errorf("セクション取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *SectionRepository) GetByVenueID(ctx context.Context, venueID string) ([]*venue.Section, error) {
	query := `SELECT id, venue_id, name, capacity, created_at, updated_at FROM sections WHERE venue_id = $1 ORDER BY created_at`
	var rows []sectionRow
	if err := r.db.SelectContext(ctx, &rows, query, venueID); err != nil {
		return nil, err
	}
	sections := make([]*venue.Section, len(rows))
	for i, row := range rows {
		sections[i] = row.toEntity()
	}
	return sections, nil
}

func (r *SectionRepository) Update(ctx context.Context, s *venue.Section) error {
	query := `UPDATE sections SET name = $1, capacity = $2, updated_at = NOW() WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, s.Name, s.Capacity, s.ID)
	if err != nil {
		return fmt.Errorf("セクション更新に失敗: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return venue.ErrSectionNotFound
	}
	return nil
}

func (r *SectionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sections WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("セクション削除に失敗: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return venue.ErrSectionNotFound
	}
	return nil
}

type rowRow struct {
	ID        string    `db:"id"`
	SectionID string    `db:"section_id"`
	Capacity  int       `db:"capacity"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r *rowRow) toEntity() *venue.Row {
	return &venue.Row{
		ID: r.ID, SectionID: r.SectionID, Capacity: r.Capacity,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

// RowRepository は列のPostgreSQLリポジトリ
type RowRepository struct{ db *sqlx.DB }

// NewRowRepository は新しい列リポジトリを作成する
func NewRowRepository(db *sqlx.DB) *RowRepository { return &RowRepository{db: db} }

func (r *RowRepository) Create(ctx context.Context, row *venue.Row) error {
	query := `INSERT INTO venue_rows (section_id, capacity, created_at, updated_at) VALUES ($1, $2, $3, $4) RETURNING id`
	return r.db.QueryRowContext(ctx, query, row.SectionID, row.Capacity, row.CreatedAt, row.UpdatedAt).Scan(&row.ID)
}

func (r *RowRepository) GetByID(ctx context.Context, id string) (*venue.Row, error) {
	query := `SELECT id, section_id, capacity, created_at, updated_at FROM venue_rows WHERE id = $1`
	var row rowRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, venue.ErrRowNotFound
		}
		return nil, fmt.Errorf("列取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *RowRepository) GetBySectionID(ctx context.Context, sectionID string) ([]*venue.Row, error) {
	query := `SELECT id, section_id, capacity, created_at, updated_at FROM venue_rows WHERE section_id = $1 ORDER BY created_at`
	var rows []rowRow
	if err := r.db.SelectContext(ctx, &rows, query, sectionID); err != nil {
		return nil, err
	}
	out := make([]*venue.Row, len(rows))
	for i, row := range rows {
		out[i] = row.toEntity()
	}
	return out, nil
}

func (r *RowRepository) Update(ctx context.Context, row *venue.Row) error {
	query := `UPDATE venue_rows SET capacity = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, row.Capacity, row.ID)
	if err != nil {
		return fmt.Errorf("列更新に失敗: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return venue.ErrRowNotFound
	}
	return nil
}

func (r *RowRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM venue_rows WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("列削除に失敗: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return venue.ErrRowNotFound
	}
	return nil
}

type seatRow struct {
	ID        string    `db:"id"`
	RowID     string    `db:"row_id"`
	Number    int       `db:"number"`
	Reserved  bool      `db:"reserved"`
	TicketID  *string   `db:"ticket_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r *seatRow) toEntity() *venue.Seat {
	return &venue.Seat{
		ID: r.ID, RowID: r.RowID, Number: r.Number,
		Reserved: r.Reserved, TicketID: r.TicketID,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

// SeatRepository は座席のPostgreSQLリポジトリ
// ReserveIfFree は条件付きUPDATEで座席クレームを直列化する
type SeatRepository struct{ db *sqlx.DB }

// NewSeatRepository は新しい座席リポジトリを作成する
func NewSeatRepository(db *sqlx.DB) *SeatRepository { return &SeatRepository{db: db} }

func (r *SeatRepository) Create(ctx context.Context, s *venue.Seat) error {
	query := `INSERT INTO seats (row_id, number, reserved, created_at, updated_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	return r.db.QueryRowContext(ctx, query, s.RowID, s.Number, s.Reserved, s.CreatedAt, s.UpdatedAt).Scan(&s.ID)
}

func (r *SeatRepository) CreateBulk(ctx context.Context, seats []*venue.Seat) error {
	if len(seats) == 0 {
		return nil
	}

	// バッチサイズごとに分割してマルチバリューINSERTを実行
	const batchSize = 1000
	for i := 0; i < len(seats); i += batchSize {
		end := i + batchSize
		if end > len(seats) {
			end = len(seats)
		}
		if err := r.createBulkBatch(ctx, seats[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (r *SeatRepository) createBulkBatch(ctx context.Context, seats []*venue.Seat) error {
	query := `INSERT INTO seats (row_id, number, reserved, created_at, updated_at) VALUES `
	args := make([]interface{}, 0, len(seats)*5)
	placeholders := make([]string, 0, len(seats))

	for i, s := range seats {
		base := i * 5
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5))
		args = append(args, s.RowID, s.Number, s.Reserved, s.CreatedAt, s.UpdatedAt)
	}

	query += strings.Join(placeholders, ", ")
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("座席一括作成に失敗: %w", err)
	}
	return nil
}

func (r *SeatRepository) GetByID(ctx context.Context, id string) (*venue.Seat, error) {
	query := `SELECT id, row_id, number, reserved, ticket_id, created_at, updated_at FROM seats WHERE id = $1`
	var row seatRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, venue.ErrSeatNotFound
		}
		return nil, fmt.Errorf("座席取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *SeatRepository) GetByRowID(ctx context.Context, rowID string) ([]*venue.Seat, error) {
	query := `SELECT id, row_id, number, reserved, ticket_id, created_at, updated_at FROM seats WHERE row_id = $1 ORDER BY number`
	var rows []seatRow
	if err := r.db.SelectContext(ctx, &rows, query, rowID); err != nil {
		return nil, err
	}
	seats := make([]*venue.Seat, len(rows))
	for i, row := range rows {
		seats[i] = row.toEntity()
	}
	return seats, nil
}

func (r *SeatRepository) ReserveIfFree(ctx context.Context, seatID, ticketID string) error {
	query := `UPDATE seats SET reserved = TRUE, ticket_id = $1, updated_at = NOW() WHERE id = $2 AND reserved = FALSE`
	result, err := r.db.ExecContext(ctx, query, ticketID, seatID)
	if err != nil {
		return fmt.Errorf("座席予約に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		// 未予約の行が無かった: 存在しないのか予約済みなのかを区別する
		if _, err := r.GetByID(ctx, seatID); err != nil {
			return err
		}
		return venue.ErrSeatAlreadyReserved
	}
	return nil
}

func (r *SeatRepository) Release(ctx context.Context, seatID string) error {
	query := `UPDATE seats SET reserved = FALSE, ticket_id = NULL, updated_at = NOW() WHERE id = $1 AND reserved = TRUE`
	result, err := r.db.ExecContext(ctx, query, seatID)
	if err != nil {
		return fmt.Errorf("座席解放に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		if _, err := r.GetByID(ctx, seatID); err != nil {
			return err
		}
		return venue.ErrSeatNotReserved
	}
	return nil
}

func (r *SeatRepository) Update(ctx context.Context, s *venue.Seat) error {
	query := `UPDATE seats SET number = $1, reserved = $2, ticket_id = $3, updated_at = NOW() WHERE id = $4`
	result, err := r.db.ExecContext(ctx, query, s.Number, s.Reserved, s.TicketID, s.ID)
	if err != nil {
		return fmt.Errorf("座席更新に失敗: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return venue.ErrSeatNotFound
	}
	return nil
}

func (r *SeatRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM seats WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("座席削除に失敗: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return venue.ErrSeatNotFound
	}
	return nil
}

var (
	_ venue.Repository        = (*VenueRepository)(nil)
	_ venue.SectionRepository = (*SectionRepository)(nil)
	_ venue.RowRepository     = (*RowRepository)(nil)
	_ venue.SeatRepository    = (*SeatRepository)(nil)
)
