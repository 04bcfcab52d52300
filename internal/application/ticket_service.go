package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sanosuguru/go-ticket-sales/internal/domain/event"
	"github.com/sanosuguru/go-ticket-sales/internal/domain/ticket"
	"github.com/sanosuguru/go-ticket-sales/internal/domain/venue"
	"github.com/sanosuguru/go-ticket-sales/internal/pkg/apperror"
	"github.com/sanosuguru/go-ticket-sales/internal/pkg/metrics"
)

// 価格係数
var (
	vipMultiplier = decimal.NewFromFloat(1.5)

	// 開催日までの残日数に応じたスタンダード券の係数
	standardFarMultiplier  = decimal.NewFromFloat(1.1) // 31日以上前
	standardMidMultiplier  = decimal.NewFromFloat(1.2) // 8〜30日前
	standardNearMultiplier = decimal.NewFromFloat(1.5) // 2〜7日前
	standardLastMultiplier = decimal.NewFromFloat(0.8) // 前日・当日
)

// TicketService はチケット在庫の発券・照会・削除を担当する
type TicketService struct {
	ticketRepo  ticket.Repository
	eventRepo   event.Repository
	venueRepo   venue.Repository
	sectionRepo venue.SectionRepository
	rowRepo     venue.RowRepository
	seatRepo    venue.SeatRepository

	now func() time.Time
}

// NewTicketService は新しい TicketService を作成する
func NewTicketService(tr ticket.Repository, er event.Repository, vr venue.Repository, sr venue.SectionRepository, rr venue.RowRepository, seatRepo venue.SeatRepository) *TicketService {
	return &TicketService{
		ticketRepo:  tr,
		eventRepo:   er,
		venueRepo:   vr,
		sectionRepo: sr,
		rowRepo:     rr,
		seatRepo:    seatRepo,
		now:         time.Now,
	}
}

type GenerateTicketsInput struct {
	EventID        string
	BasePrice      decimal.Decimal
	EarlyBirdCount int
	VIPCount       int
	StandardCount  int
}

// GenerateTicketsForEvent はイベントのチケットを一括発券する
// 座席あり会場では空席を列・座席番号順に先着で割り当て、
// 自由席会場では座席なしチケットを残り収容数まで作成する
// 要求数を満たせない場合は1枚も発券しない
func (s *TicketService) GenerateTicketsForEvent(ctx context.Context, input GenerateTicketsInput) ([]*ticket.Ticket, error) {
	if input.EarlyBirdCount < 0 || input.VIPCount < 0 || input.StandardCount < 0 {
		return nil, apperror.Validation("発券数は0以上である必要があります")
	}
	total := input.EarlyBirdCount + input.VIPCount + input.StandardCount
	if total == 0 {
		return nil, apperror.Validation("発券数の合計は1以上である必要があります")
	}
	if input.BasePrice.IsNegative() {
		return nil, ticket.ErrInvalidPrice
	}

	ev, err := s.eventRepo.GetByID(ctx, input.EventID)
	if err != nil {
		return nil, err
	}
	if !ev.IsLive() {
		return nil, event.ErrEventNotLive
	}
	v, err := s.venueRepo.GetByID(ctx, ev.VenueID)
	if err != nil {
		return nil, err
	}

	prices := map[ticket.Type]decimal.Decimal{
		ticket.TypeEarlyBird: input.BasePrice,
		ticket.TypeVIP:       input.BasePrice.Mul(vipMultiplier),
		ticket.TypeStandard:  standardPrice(input.BasePrice, ev.StartAt, s.now()),
	}

	var tickets []*ticket.Ticket
	if v.HasSeats {
		tickets, err = s.buildSeatedTickets(ctx, ev, total, input, prices)
	} else {
		tickets, err = s.buildGeneralAdmissionTickets(ctx, ev, v, total, input, prices)
	}
	if err != nil {
		return nil, err
	}

	for _, t := range tickets {
		if err := t.Validate(); err != nil {
			return nil, err
		}
	}
	if err := s.ticketRepo.CreateBulk(ctx, tickets); err != nil {
		return nil, fmt.Errorf("チケット一括作成に失敗: %w", err)
	}

	if m := metrics.Get(); m != nil {
		m.TicketsGeneratedTotal.WithLabelValues(string(ticket.TypeEarlyBird)).Add(float64(input.EarlyBirdCount))
		m.TicketsGeneratedTotal.WithLabelValues(string(ticket.TypeVIP)).Add(float64(input.VIPCount))
		m.TicketsGeneratedTotal.WithLabelValues(string(ticket.TypeStandard)).Add(float64(input.StandardCount))
	}
	return tickets, nil
}

// buildSeatedTickets は空席を先着順に種別へ割り当てたチケット群を組み立てる
func (s *TicketService) buildSeatedTickets(ctx context.Context, ev *event.Event, total int, input GenerateTicketsInput, prices map[ticket.Type]decimal.Decimal) ([]*ticket.Ticket, error) {
	// 既にこのイベント向けに発券済みの座席は割り当て対象から外す
	existing, err := s.ticketRepo.GetByEventID(ctx, ev.ID)
	if err != nil {
		return nil, fmt.Errorf("チケット取得に失敗: %w", err)
	}
	taken := make(map[string]struct{}, len(existing))
	for _, t := range existing {
		if t.SeatID != nil {
			taken[*t.SeatID] = struct{}{}
		}
	}

	type seatSlot struct {
		seatID    string
		sectionID string
	}
	var slots []seatSlot

	sections, err := s.sectionRepo.GetByVenueID(ctx, ev.VenueID)
	if err != nil {
		return nil, fmt.Errorf("セクション取得に失敗: %w", err)
	}
	for _, sec := range sections {
		rows, err := s.rowRepo.GetBySectionID(ctx, sec.ID)
		if err != nil {
			return nil, fmt.Errorf("列取得に失敗: %w", err)
		}
		for _, row := range rows {
			seats, err := s.seatRepo.GetByRowID(ctx, row.ID)
			if err != nil {
				return nil, fmt.Errorf("座席取得に失敗: %w", err)
			}
			for _, seat := range seats {
				if !seat.IsAvailable() {
					continue
				}
				if _, ok := taken[seat.ID]; ok {
					continue
				}
				slots = append(slots, seatSlot{seatID: seat.ID, sectionID: sec.ID})
			}
		}
	}

	if len(slots) < total {
		return nil, ticket.ErrNotEnoughSeats
	}

	tickets := make([]*ticket.Ticket, 0, total)
	for i, typ := range tierAssignment(input) {
		slot := slots[i]
		tickets = append(tickets, ticket.NewTicket(ev.ID, slot.sectionID, slot.seatID, prices[typ], typ))
	}
	return tickets, nil
}

// buildGeneralAdmissionTickets は自由席チケット群を組み立てる
func (s *TicketService) buildGeneralAdmissionTickets(ctx context.Context, ev *event.Event, v *venue.Venue, total int, input GenerateTicketsInput, prices map[ticket.Type]decimal.Decimal) ([]*ticket.Ticket, error) {
	existing, err := s.ticketRepo.GetByEventID(ctx, ev.ID)
	if err != nil {
		return nil, fmt.Errorf("チケット取得に失敗: %w", err)
	}
	if len(existing)+total > v.Capacity {
		return nil, ticket.ErrNotEnoughCapacity
	}

	section, err := s.defaultSection(ctx, v.ID)
	if err != nil {
		return nil, err
	}

	tickets := make([]*ticket.Ticket, 0, total)
	for _, typ := range tierAssignment(input) {
		tickets = append(tickets, ticket.NewGeneralAdmissionTicket(ev.ID, section.ID, prices[typ], typ))
	}
	return tickets, nil
}

// tierAssignment は発券順のチケット種別列を返す
// 先頭から早割・VIP・スタンダードの順で座席の良い方から割り当てる
func tierAssignment(input GenerateTicketsInput) []ticket.Type {
	types := make([]ticket.Type, 0, input.EarlyBirdCount+input.VIPCount+input.StandardCount)
	for i := 0; i < input.EarlyBirdCount; i++ {
		types = append(types, ticket.TypeEarlyBird)
	}
	for i := 0; i < input.VIPCount; i++ {
		types = append(types, ticket.TypeVIP)
	}
	for i := 0; i < input.StandardCount; i++ {
		types = append(types, ticket.TypeStandard)
	}
	return types
}

// standardPrice は開催日までの残日数からスタンダード券の価格を算出する
func standardPrice(base decimal.Decimal, startAt, now time.Time) decimal.Decimal {
	days := int(startAt.Sub(now).Hours() / 24)
	switch {
	case days > 30:
		return base.Mul(standardFarMultiplier)
	case days > 7:
		return base.Mul(standardMidMultiplier)
	case days > 1:
		return base.Mul(standardNearMultiplier)
	default:
		return base.Mul(standardLastMultiplier)
	}
}

// defaultSection は自由席会場のデフォルトセクションを返す
func (s *TicketService) defaultSection(ctx context.Context, venueID string) (*venue.Section, error) {
	sections, err := s.sectionRepo.GetByVenueID(ctx, venueID)
	if err != nil {
		return nil, fmt.Errorf("セクション取得に失敗: %w", err)
	}
	for _, sec := range sections {
		if sec.Name == venue.DefaultSectionName {
			return sec, nil
		}
	}
	if len(sections) > 0 {
		return sections[0], nil
	}
	return nil, venue.ErrSectionNotFound
}

// DeleteTicket はチケットを削除し、座席が紐付いていれば解放する
func (s *TicketService) DeleteTicket(ctx context.Context, id string) error {
	t, err := s.ticketRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if t.SeatID != nil {
		seat, err := s.seatRepo.GetByID(ctx, *t.SeatID)
		if err == nil && seat.Reserved && seat.TicketID != nil && *seat.TicketID == t.ID {
			if err := s.seatRepo.Release(ctx, seat.ID); err != nil && !errors.Is(err, venue.ErrSeatNotReserved) {
				return fmt.Errorf("座席解放に失敗: %w", err)
			}
		}
	}
	return s.ticketRepo.Delete(ctx, id)
}

// GetTicket はIDからチケットを取得する
func (s *TicketService) GetTicket(ctx context.Context, id string) (*ticket.Ticket, error) {
	return s.ticketRepo.GetByID(ctx, id)
}

// GetTicketsByEvent はイベントの全チケットを取得する
func (s *TicketService) GetTicketsByEvent(ctx context.Context, eventID string) ([]*ticket.Ticket, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	return s.ticketRepo.GetByEventID(ctx, eventID)
}

// GetAvailableTicketsByEvent はイベントの販売可能チケット（未売約・未保留）を取得する
func (s *TicketService) GetAvailableTicketsByEvent(ctx context.Context, eventID string) ([]*ticket.Ticket, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	return s.ticketRepo.GetAvailableByEventID(ctx, eventID)
}
