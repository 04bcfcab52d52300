package application

import (
	"context"
	"fmt"
	"time"

	"github.com/sanosuguru/go-ticket-sales/internal/domain/event"
	"github.com/sanosuguru/go-ticket-sales/internal/domain/ticket"
	"github.com/sanosuguru/go-ticket-sales/internal/domain/venue"
)

// EventService はイベントのライフサイクル（作成・出演者管理・状態遷移・削除）を担当する
type EventService struct {
	eventRepo  event.Repository
	venueRepo  venue.Repository
	ticketRepo ticket.Repository
	seatRepo   venue.SeatRepository
}

// NewEventService は新しい EventService を作成する
func NewEventService(er event.Repository, vr venue.Repository, tr ticket.Repository, seatRepo venue.SeatRepository) *EventService {
	return &EventService{
		eventRepo:  er,
		venueRepo:  vr,
		ticketRepo: tr,
		seatRepo:   seatRepo,
	}
}

type CreateEventInput struct {
	Name        string
	Description string
	VenueID     string
	StartAt     time.Time
	EndAt       time.Time
	Performers  []string
}

// CreateConcert は新しいコンサートイベントを作成する
func (s *EventService) CreateConcert(ctx context.Context, input CreateEventInput) (*event.Event, error) {
	e := event.NewConcert(input.Name, input.Description, input.VenueID, input.StartAt, input.EndAt, input.Performers)
	return s.createEvent(ctx, e)
}

// CreateSportsEvent は新しいスポーツイベントを作成する
func (s *EventService) CreateSportsEvent(ctx context.Context, input CreateEventInput) (*event.Event, error) {
	e := event.NewSportsEvent(input.Name, input.Description, input.VenueID, input.StartAt, input.EndAt, input.Performers)
	return s.createEvent(ctx, e)
}

func (s *EventService) createEvent(ctx context.Context, e *event.Event) (*event.Event, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.venueRepo.GetByID(ctx, e.VenueID); err != nil {
		return nil, err
	}
	if err := s.eventRepo.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("イベント作成に失敗: %w", err)
	}
	return e, nil
}

// GetEvent はIDからイベントを取得する
func (s *EventService) GetEvent(ctx context.Context, id string) (*event.Event, error) {
	return s.eventRepo.GetByID(ctx, id)
}

// ListEvents はイベント一覧を取得する
func (s *EventService) ListEvents(ctx context.Context, limit, offset int) ([]*event.Event, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.eventRepo.List(ctx, limit, offset)
}

type UpdateEventInput struct {
	ID          string
	Name        string
	Description string
	StartAt     time.Time
	EndAt       time.Time
}

// UpdateEvent はイベントの基本情報を更新する
func (s *EventService) UpdateEvent(ctx context.Context, input UpdateEventInput) (*event.Event, error) {
	e, err := s.eventRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	e.Name = input.Name
	e.Description = input.Description
	e.StartAt = input.StartAt
	e.EndAt = input.EndAt
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if err := s.eventRepo.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// AddPerformer はイベント種別に応じた出演者リストへ名前を追加する
func (s *EventService) AddPerformer(ctx context.Context, eventID, name string) (*event.Event, error) {
	e, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := e.AddPerformer(name); err != nil {
		return nil, err
	}
	if err := s.eventRepo.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// CancelEvent はイベントを中止状態にする
func (s *EventService) CancelEvent(ctx context.Context, eventID string) (*event.Event, error) {
	return s.transition(ctx, eventID, (*event.Event).Cancel)
}

// CompleteEvent はイベントを終了状態にする
func (s *EventService) CompleteEvent(ctx context.Context, eventID string) (*event.Event, error) {
	return s.transition(ctx, eventID, (*event.Event).Complete)
}

func (s *EventService) transition(ctx context.Context, eventID string, fn func(*event.Event) error) (*event.Event, error) {
	e, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := fn(e); err != nil {
		return nil, err
	}
	if err := s.eventRepo.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// DeleteEvent はイベントを削除し、発券済みチケットと座席の紐付けを解放する
func (s *EventService) DeleteEvent(ctx context.Context, eventID string) error {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return err
	}

	tickets, err := s.ticketRepo.GetByEventID(ctx, eventID)
	if err != nil {
		return fmt.Errorf("チケット取得に失敗: %w", err)
	}
	for _, t := range tickets {
		if t.SeatID == nil {
			continue
		}
		seat, err := s.seatRepo.GetByID(ctx, *t.SeatID)
		if err != nil {
			continue
		}
		if seat.Reserved && seat.TicketID != nil && *seat.TicketID == t.ID {
			if err := s.seatRepo.Release(ctx, seat.ID); err != nil {
				return fmt.Errorf("座席解放に失敗: %w", err)
			}
		}
	}

	if err := s.ticketRepo.DeleteByEventID(ctx, eventID); err != nil {
		return fmt.Errorf("チケット削除に失敗: %w", err)
	}
	return s.eventRepo.Delete(ctx, eventID)
}
