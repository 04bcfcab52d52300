package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-ticket-sales/internal/domain/event"
	"github.com/sanosuguru/go-ticket-sales/internal/domain/ticket"
	"github.com/sanosuguru/go-ticket-sales/internal/domain/venue"
	redisinfra "github.com/sanosuguru/go-ticket-sales/internal/infrastructure/redis"
	"github.com/sanosuguru/go-ticket-sales/internal/pkg/logger"
	"github.com/sanosuguru/go-ticket-sales/internal/pkg/metrics"
)

const (
	seatLockTTL        = 10 * time.Second
	seatLockMaxRetries = 3
	seatLockRetryDelay = 100 * time.Millisecond

	availabilityCacheTTL = 30 * time.Second
)

// SeatService は座席の予約・空席照会・座席推薦を担当する
// 座席クレームの直列化点はストアの条件付き更新で、複数プロセス構成では
// Redis 分散ロックを重ねて競合を減らす
type SeatService struct {
	sectionRepo venue.SectionRepository
	rowRepo     venue.RowRepository
	seatRepo    venue.SeatRepository
	ticketRepo  ticket.Repository
	eventRepo   event.Repository
	lockManager *redisinfra.LockManager       // nil の場合はロックなしで動作する
	cache       *redisinfra.AvailabilityCache // nil の場合はキャッシュなしで動作する
}

// NewSeatService は新しい SeatService を作成する
func NewSeatService(sr venue.SectionRepository, rr venue.RowRepository, seatRepo venue.SeatRepository, tr ticket.Repository, er event.Repository, lm *redisinfra.LockManager, cache *redisinfra.AvailabilityCache) *SeatService {
	return &SeatService{
		sectionRepo: sr,
		rowRepo:     rr,
		seatRepo:    seatRepo,
		ticketRepo:  tr,
		eventRepo:   er,
		lockManager: lm,
		cache:       cache,
	}
}

type ReserveSeatInput struct {
	SeatID     string
	EventID    string
	CustomerID string
	Price      decimal.Decimal
	Type       ticket.Type
}

// ReserveSeat は座席を予約し、座席・イベント・顧客に紐付くチケットを作成する
// 既に予約済みの座席に対しては ErrSeatAlreadyReserved を返す
func (s *SeatService) ReserveSeat(ctx context.Context, input ReserveSeatInput) (*ticket.Ticket, error) {
	if input.CustomerID == "" {
		s.countReservation("error")
		return nil, ticket.ErrPurchaserRequired
	}

	seat, err := s.seatRepo.GetByID(ctx, input.SeatID)
	if err != nil {
		s.countReservation("not_found")
		return nil, err
	}
	if seat.Reserved {
		s.countReservation("conflict")
		return nil, venue.ErrSeatAlreadyReserved
	}

	ev, err := s.eventRepo.GetByID(ctx, input.EventID)
	if err != nil {
		s.countReservation("not_found")
		return nil, err
	}
	if !ev.IsLive() {
		s.countReservation("error")
		return nil, event.ErrEventNotLive
	}

	row, err := s.rowRepo.GetByID(ctx, seat.RowID)
	if err != nil {
		return nil, fmt.Errorf("列取得に失敗: %w", err)
	}

	// 分散ロックで同一座席への並行クレームを直列化する
	if s.lockManager != nil {
		lock, err := s.lockManager.AcquireLockWithRetry(ctx, redisinfra.SeatLockKey(input.SeatID), seatLockTTL, seatLockMaxRetries, seatLockRetryDelay)
		if err != nil {
			if errors.Is(err, redisinfra.ErrLockNotAcquired) {
				s.countReservation("conflict")
				return nil, venue.ErrSeatAlreadyReserved
			}
			s.countReservation("error")
			return nil, fmt.Errorf("ロック取得に失敗: %w", err)
		}
		defer lock.Release(ctx)
	}

	// この座席向けに発券済みの在庫チケットがあれば置き換える
	// 保留中・売約済みの在庫が付いている座席は予約できない
	existing, err := s.ticketRepo.GetByEventID(ctx, input.EventID)
	if err != nil {
		return nil, fmt.Errorf("チケット取得に失敗: %w", err)
	}
	for _, t := range existing {
		if t.SeatID == nil || *t.SeatID != input.SeatID {
			continue
		}
		if t.Sold || t.IsHeld() {
			s.countReservation("conflict")
			return nil, venue.ErrSeatAlreadyReserved
		}
		if err := s.ticketRepo.Delete(ctx, t.ID); err != nil && !errors.Is(err, ticket.ErrTicketNotFound) {
			return nil, fmt.Errorf("在庫チケット削除に失敗: %w", err)
		}
	}

	// 予約時点で購入者を記録する（売約フラグは決済時まで立てない）
	t := ticket.NewTicket(input.EventID, row.SectionID, input.SeatID, input.Price, input.Type)
	t.PurchaserID = &input.CustomerID
	if err := t.Validate(); err != nil {
		s.countReservation("error")
		return nil, err
	}
	if err := s.ticketRepo.Create(ctx, t); err != nil {
		s.countReservation("error")
		return nil, fmt.Errorf("チケット作成に失敗: %w", err)
	}

	if err := s.seatRepo.ReserveIfFree(ctx, input.SeatID, t.ID); err != nil {
		// 座席を取れなかった場合は作成したチケットを残さない
		if delErr := s.ticketRepo.Delete(ctx, t.ID); delErr != nil {
			logger.Error("予約失敗後のチケット削除に失敗",
				zap.String("ticket_id", t.ID), zap.Error(delErr))
		}
		if errors.Is(err, venue.ErrSeatAlreadyReserved) {
			s.countReservation("conflict")
		} else {
			s.countReservation("error")
		}
		return nil, err
	}

	s.invalidateAvailability(ctx, row.SectionID, input.EventID)
	s.countReservation("success")
	return t, nil
}

// UnreserveSeat は座席の予約を解除し、紐付くチケットを削除する
func (s *SeatService) UnreserveSeat(ctx context.Context, seatID string) error {
	seat, err := s.seatRepo.GetByID(ctx, seatID)
	if err != nil {
		return err
	}
	if !seat.Reserved {
		return venue.ErrSeatNotReserved
	}

	var eventID string
	if seat.TicketID != nil {
		if t, err := s.ticketRepo.GetByID(ctx, *seat.TicketID); err == nil {
			eventID = t.EventID
		}
	}

	if err := s.seatRepo.Release(ctx, seatID); err != nil {
		return err
	}
	if seat.TicketID != nil {
		if err := s.ticketRepo.Delete(ctx, *seat.TicketID); err != nil && !errors.Is(err, ticket.ErrTicketNotFound) {
			return fmt.Errorf("チケット削除に失敗: %w", err)
		}
	}

	if eventID != "" {
		if row, err := s.rowRepo.GetByID(ctx, seat.RowID); err == nil {
			s.invalidateAvailability(ctx, row.SectionID, eventID)
		}
	}
	return nil
}

// IsSeatReservedForEvent は座席が指定イベントのチケットで予約済みかを返す
func (s *SeatService) IsSeatReservedForEvent(ctx context.Context, seatID, eventID string) (bool, error) {
	seat, err := s.seatRepo.GetByID(ctx, seatID)
	if err != nil {
		return false, err
	}
	if !seat.Reserved || seat.TicketID == nil {
		return false, nil
	}
	t, err := s.ticketRepo.GetByID(ctx, *seat.TicketID)
	if err != nil {
		if errors.Is(err, ticket.ErrTicketNotFound) {
			return false, nil
		}
		return false, err
	}
	return t.EventID == eventID, nil
}

// GetAvailableSeatsInRow は列の空席一覧を取得する
// eventID を指定した場合はそのイベント向けに発券済みで未販売の座席に絞る
func (s *SeatService) GetAvailableSeatsInRow(ctx context.Context, rowID, eventID string) ([]*venue.Seat, error) {
	if _, err := s.rowRepo.GetByID(ctx, rowID); err != nil {
		return nil, err
	}
	seats, err := s.seatRepo.GetByRowID(ctx, rowID)
	if err != nil {
		return nil, fmt.Errorf("座席取得に失敗: %w", err)
	}
	return s.filterAvailable(ctx, seats, eventID)
}

// GetAvailableSeatsInSection はセクションの空席一覧を取得する
func (s *SeatService) GetAvailableSeatsInSection(ctx context.Context, sectionID, eventID string) ([]*venue.Seat, error) {
	if _, err := s.sectionRepo.GetByID(ctx, sectionID); err != nil {
		return nil, err
	}
	seats, err := s.seatsInSection(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	return s.filterAvailable(ctx, seats, eventID)
}

// GetAvailableSeatsInVenue は会場全体の空席一覧を取得する
func (s *SeatService) GetAvailableSeatsInVenue(ctx context.Context, venueID, eventID string) ([]*venue.Seat, error) {
	sections, err := s.sectionRepo.GetByVenueID(ctx, venueID)
	if err != nil {
		return nil, fmt.Errorf("セクション取得に失敗: %w", err)
	}
	var seats []*venue.Seat
	for _, sec := range sections {
		inSection, err := s.seatsInSection(ctx, sec.ID)
		if err != nil {
			return nil, err
		}
		seats = append(seats, inSection...)
	}
	return s.filterAvailable(ctx, seats, eventID)
}

// CountAvailableSeatsInVenue は会場×イベントの空席数を返す
// 結果は短時間 Redis にキャッシュされ、予約・解除で無効化される
func (s *SeatService) CountAvailableSeatsInVenue(ctx context.Context, venueID, eventID string) (int, error) {
	if s.cache != nil {
		count, err := s.cache.GetAvailableCount(ctx, venueID, eventID)
		if err == nil {
			return count, nil
		}
		if !errors.Is(err, redisinfra.ErrCacheMiss) {
			logger.Warn("空席数キャッシュ取得に失敗", zap.Error(err))
		}
	}

	seats, err := s.GetAvailableSeatsInVenue(ctx, venueID, eventID)
	if err != nil {
		return 0, err
	}
	count := len(seats)

	if s.cache != nil {
		if err := s.cache.SetAvailableCount(ctx, venueID, eventID, count, availabilityCacheTTL); err != nil {
			logger.Warn("空席数キャッシュ保存に失敗", zap.Error(err))
		}
	}
	return count, nil
}

// RecommendClosestSeat は選択済み座席に最も近い空席を推薦する
// 列がセクション内に見つからない場合や候補がない場合は nil を返す（エラーにしない）
func (s *SeatService) RecommendClosestSeat(ctx context.Context, sectionID, rowID string, selectedSeatNumbers []int) (*venue.Seat, error) {
	if len(selectedSeatNumbers) == 0 {
		return nil, nil
	}

	rows, err := s.rowRepo.GetBySectionID(ctx, sectionID)
	if err != nil {
		if errors.Is(err, venue.ErrSectionNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("列取得に失敗: %w", err)
	}
	var row *venue.Row
	for _, r := range rows {
		if r.ID == rowID {
			row = r
			break
		}
	}
	if row == nil {
		return nil, nil
	}

	seats, err := s.seatRepo.GetByRowID(ctx, row.ID)
	if err != nil {
		return nil, fmt.Errorf("座席取得に失敗: %w", err)
	}

	selected := make(map[int]struct{}, len(selectedSeatNumbers))
	for _, n := range selectedSeatNumbers {
		selected[n] = struct{}{}
	}

	// GetByRowID は座席番号順で返すため、安定ソートで距離が同じなら番号の小さい席が先に残る
	var candidates []*venue.Seat
	for _, seat := range seats {
		if !seat.IsAvailable() {
			continue
		}
		if _, ok := selected[seat.Number]; ok {
			continue
		}
		candidates = append(candidates, seat)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return distanceToSelection(candidates[i].Number, selectedSeatNumbers) < distanceToSelection(candidates[j].Number, selectedSeatNumbers)
	})
	return candidates[0], nil
}

// distanceToSelection は座席番号と選択済み座席番号群との最小距離を返す
func distanceToSelection(number int, selected []int) int {
	best := -1
	for _, n := range selected {
		d := number - n
		if d < 0 {
			d = -d
		}
		if best < 0 || d < best {
			best = d
		}
	}
	return best
}

// seatsInSection はセクション配下の全座席を列の作成順・座席番号順で返す
func (s *SeatService) seatsInSection(ctx context.Context, sectionID string) ([]*venue.Seat, error) {
	rows, err := s.rowRepo.GetBySectionID(ctx, sectionID)
	if err != nil {
		return nil, fmt.Errorf("列取得に失敗: %w", err)
	}
	var seats []*venue.Seat
	for _, row := range rows {
		inRow, err := s.seatRepo.GetByRowID(ctx, row.ID)
		if err != nil {
			return nil, fmt.Errorf("座席取得に失敗: %w", err)
		}
		seats = append(seats, inRow...)
	}
	return seats, nil
}

// filterAvailable は未予約の座席に絞り込む
// eventID 指定時はそのイベントの販売可能チケット（未売約・未保留）が付いた座席のみを返す
func (s *SeatService) filterAvailable(ctx context.Context, seats []*venue.Seat, eventID string) ([]*venue.Seat, error) {
	var forSale map[string]struct{}
	if eventID != "" {
		tickets, err := s.ticketRepo.GetAvailableByEventID(ctx, eventID)
		if err != nil {
			return nil, fmt.Errorf("チケット取得に失敗: %w", err)
		}
		forSale = make(map[string]struct{}, len(tickets))
		for _, t := range tickets {
			if t.SeatID != nil {
				forSale[*t.SeatID] = struct{}{}
			}
		}
	}

	available := make([]*venue.Seat, 0, len(seats))
	for _, seat := range seats {
		if !seat.IsAvailable() {
			continue
		}
		if forSale != nil {
			if _, ok := forSale[seat.ID]; !ok {
				continue
			}
		}
		available = append(available, seat)
	}
	return available, nil
}

// invalidateAvailability は座席の属する会場×イベントの空席数キャッシュを無効化する
func (s *SeatService) invalidateAvailability(ctx context.Context, sectionID, eventID string) {
	if s.cache == nil {
		return
	}
	sec, err := s.sectionRepo.GetByID(ctx, sectionID)
	if err != nil {
		return
	}
	if err := s.cache.Invalidate(ctx, sec.VenueID, eventID); err != nil {
		logger.Warn("空席数キャッシュ無効化に失敗", zap.Error(err))
	}
}

func (s *SeatService) countReservation(status string) {
	if m := metrics.Get(); m != nil {
		m.SeatReservationsTotal.WithLabelValues(status).Inc()
	}
}
