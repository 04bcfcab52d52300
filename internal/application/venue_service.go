package application

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-ticket-sales/internal/domain/ticket"
	"github.com/sanosuguru/go-ticket-sales/internal/domain/venue"
	"github.com/sanosuguru/go-ticket-sales/internal/pkg/logger"
)

// VenueService は会場階層（会場・セクション・列・座席）を管理する
type VenueService struct {
	venueRepo   venue.Repository
	sectionRepo venue.SectionRepository
	rowRepo     venue.RowRepository
	seatRepo    venue.SeatRepository
	ticketRepo  ticket.Repository
}

// NewVenueService は新しい VenueService を作成する
func NewVenueService(vr venue.Repository, sr venue.SectionRepository, rr venue.RowRepository, seatRepo venue.SeatRepository, tr ticket.Repository) *VenueService {
	return &VenueService{
		venueRepo:   vr,
		sectionRepo: sr,
		rowRepo:     rr,
		seatRepo:    seatRepo,
		ticketRepo:  tr,
	}
}

type CreateVenueInput struct {
	Name     string
	Location string
	Capacity int
	HasSeats bool
}

// CreateVenue は新しい会場を作成する
// 自由席会場（HasSeats = false）にはデフォルトセクションを自動作成する
func (s *VenueService) CreateVenue(ctx context.Context, input CreateVenueInput) (*venue.Venue, error) {
	v := venue.NewVenue(input.Name, input.Location, input.Capacity, input.HasSeats)
	if err := v.Validate(); err != nil {
		return nil, err
	}
	if err := s.venueRepo.Create(ctx, v); err != nil {
		return nil, fmt.Errorf("会場作成に失敗: %w", err)
	}

	if !v.HasSeats {
		sec := venue.NewSection(v.ID, venue.DefaultSectionName, v.Capacity)
		if err := s.sectionRepo.Create(ctx, sec); err != nil {
			return nil, fmt.Errorf("デフォルトセクション作成に失敗: %w", err)
		}
	}
	return v, nil
}

type CreateSectionInput struct {
	VenueID  string
	Name     string
	Capacity int
}

// CreateSection は会場に新しいセクションを追加する
// セクション名は会場内で一意（大文字小文字を区別しない）
func (s *VenueService) CreateSection(ctx context.Context, input CreateSectionInput) (*venue.Section, error) {
	if _, err := s.venueRepo.GetByID(ctx, input.VenueID); err != nil {
		return nil, err
	}

	sec := venue.NewSection(input.VenueID, input.Name, input.Capacity)
	if err := sec.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.sectionRepo.GetByVenueID(ctx, input.VenueID)
	if err != nil {
		return nil, fmt.Errorf("セクション一覧取得に失敗: %w", err)
	}
	for _, e := range existing {
		if strings.EqualFold(e.Name, input.Name) {
			return nil, venue.ErrSectionNameTaken
		}
	}

	if err := s.sectionRepo.Create(ctx, sec); err != nil {
		return nil, fmt.Errorf("セクション作成に失敗: %w", err)
	}
	return sec, nil
}

// CreateRow はセクションに新しい列を追加する
// セクション収容人数を超える列の追加は許可するが警告ログを出す
func (s *VenueService) CreateRow(ctx context.Context, sectionID string, capacity int) (*venue.Row, error) {
	sec, err := s.sectionRepo.GetByID(ctx, sectionID)
	if err != nil {
		return nil, err
	}

	r := venue.NewRow(sectionID, capacity)
	if err := r.Validate(); err != nil {
		return nil, err
	}

	rows, err := s.rowRepo.GetBySectionID(ctx, sectionID)
	if err != nil {
		return nil, fmt.Errorf("列一覧取得に失敗: %w", err)
	}
	total := capacity
	for _, existing := range rows {
		total += existing.Capacity
	}
	if total > sec.Capacity {
		logger.Warn("列の合計収容数がセクションの収容人数を超えています",
			zap.String("section_id", sectionID),
			zap.Int("section_capacity", sec.Capacity),
			zap.Int("rows_total", total),
		)
	}

	if err := s.rowRepo.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("列作成に失敗: %w", err)
	}
	return r, nil
}

// AddSeatsToRow は列に座席を追加する
// 座席番号は既存の最大番号の次から連番で振られる（初回は1から）
func (s *VenueService) AddSeatsToRow(ctx context.Context, rowID string, count int) ([]*venue.Seat, error) {
	if count <= 0 {
		return nil, venue.ErrInvalidCapacity
	}
	row, err := s.rowRepo.GetByID(ctx, rowID)
	if err != nil {
		return nil, err
	}

	existing, err := s.seatRepo.GetByRowID(ctx, rowID)
	if err != nil {
		return nil, fmt.Errorf("座席一覧取得に失敗: %w", err)
	}
	next := 1
	for _, seat := range existing {
		if seat.Number >= next {
			next = seat.Number + 1
		}
	}

	if len(existing)+count > row.Capacity {
		logger.Warn("座席数が列の収容数を超えています",
			zap.String("row_id", rowID),
			zap.Int("row_capacity", row.Capacity),
			zap.Int("seat_count", len(existing)+count),
		)
	}

	seats := make([]*venue.Seat, 0, count)
	for i := 0; i < count; i++ {
		seat := venue.NewSeat(rowID, next+i)
		if err := seat.Validate(); err != nil {
			return nil, err
		}
		seats = append(seats, seat)
	}
	if err := s.seatRepo.CreateBulk(ctx, seats); err != nil {
		return nil, fmt.Errorf("座席一括作成に失敗: %w", err)
	}
	return seats, nil
}

// DeleteVenue は会場を配下のセクション・列・座席ごと削除する
func (s *VenueService) DeleteVenue(ctx context.Context, venueID string) error {
	if _, err := s.venueRepo.GetByID(ctx, venueID); err != nil {
		return err
	}
	sections, err := s.sectionRepo.GetByVenueID(ctx, venueID)
	if err != nil {
		return fmt.Errorf("セクション一覧取得に失敗: %w", err)
	}
	for _, sec := range sections {
		if err := s.DeleteSection(ctx, sec.ID); err != nil {
			return err
		}
	}
	return s.venueRepo.Delete(ctx, venueID)
}

// DeleteSection はセクションを配下の列・座席ごと削除する
func (s *VenueService) DeleteSection(ctx context.Context, sectionID string) error {
	if _, err := s.sectionRepo.GetByID(ctx, sectionID); err != nil {
		return err
	}
	rows, err := s.rowRepo.GetBySectionID(ctx, sectionID)
	if err != nil {
		return fmt.Errorf("列一覧取得に失敗: %w", err)
	}
	for _, row := range rows {
		if err := s.DeleteRow(ctx, row.ID); err != nil {
			return err
		}
	}
	return s.sectionRepo.Delete(ctx, sectionID)
}

// DeleteRow は列を配下の座席ごと削除する
// 削除される座席に紐付くチケットも合わせて削除する
func (s *VenueService) DeleteRow(ctx context.Context, rowID string) error {
	if _, err := s.rowRepo.GetByID(ctx, rowID); err != nil {
		return err
	}
	seats, err := s.seatRepo.GetByRowID(ctx, rowID)
	if err != nil {
		return fmt.Errorf("座席一覧取得に失敗: %w", err)
	}

	seatIDs := make([]string, 0, len(seats))
	for _, seat := range seats {
		seatIDs = append(seatIDs, seat.ID)
	}
	if err := s.ticketRepo.DeleteBySeatIDs(ctx, seatIDs); err != nil {
		return fmt.Errorf("座席に紐付くチケット削除に失敗: %w", err)
	}
	for _, seat := range seats {
		if err := s.seatRepo.Delete(ctx, seat.ID); err != nil {
			return err
		}
	}
	return s.rowRepo.Delete(ctx, rowID)
}

// GetAllVenues は会場一覧を取得する
func (s *VenueService) GetAllVenues(ctx context.Context) ([]*venue.Venue, error) {
	return s.venueRepo.List(ctx)
}

// FindVenueByID はIDから会場を取得する
func (s *VenueService) FindVenueByID(ctx context.Context, id string) (*venue.Venue, error) {
	return s.venueRepo.GetByID(ctx, id)
}

// FindVenuesByNameOrLocation は名前または所在地にキーワードを含む会場を検索する
func (s *VenueService) FindVenuesByNameOrLocation(ctx context.Context, keyword string) ([]*venue.Venue, error) {
	return s.venueRepo.SearchByNameOrLocation(ctx, keyword)
}

// FindSectionsByVenue は会場のセクション一覧を取得する
func (s *VenueService) FindSectionsByVenue(ctx context.Context, venueID string) ([]*venue.Section, error) {
	if _, err := s.venueRepo.GetByID(ctx, venueID); err != nil {
		return nil, err
	}
	return s.sectionRepo.GetByVenueID(ctx, venueID)
}

// FindRowsBySection はセクションの列一覧を取得する
func (s *VenueService) FindRowsBySection(ctx context.Context, sectionID string) ([]*venue.Row, error) {
	if _, err := s.sectionRepo.GetByID(ctx, sectionID); err != nil {
		return nil, err
	}
	return s.rowRepo.GetBySectionID(ctx, sectionID)
}

// GetSeatsByRow は列の座席一覧を座席番号順で取得する
func (s *VenueService) GetSeatsByRow(ctx context.Context, rowID string) ([]*venue.Seat, error) {
	if _, err := s.rowRepo.GetByID(ctx, rowID); err != nil {
		return nil, err
	}
	return s.seatRepo.GetByRowID(ctx, rowID)
}
