package memory

import (
	"context"
	"sort"
	"time"

	"github.com/sanosuguru/go-ticket-sales/internal/domain/event"
)

func cloneEvent(e *event.Event) *event.Event {
	c := *e
	c.Artists = append([]string(nil), e.Artists...)
	c.Athletes = append([]string(nil), e.Athletes...)
	return &c
}

// EventRepository はイベントのインメモリリポジトリ
type EventRepository struct {
	store *Store[event.Event]
}

// NewEventRepository は新しいイベントリポジトリを作成する
func NewEventRepository() *EventRepository {
	return &EventRepository{store: NewStore(cloneEvent)}
}

func (r *EventRepository) Create(_ context.Context, e *event.Event) error {
	if e.ID == "" {
		e.ID = NewID()
	}
	r.store.Put(e.ID, e)
	return nil
}

func (r *EventRepository) GetByID(_ context.Context, id string) (*event.Event, error) {
	e, ok := r.store.Get(id)
	if !ok {
		return nil, event.ErrEventNotFound
	}
	return e, nil
}

func (r *EventRepository) List(_ context.Context, limit, offset int) ([]*event.Event, error) {
	events := r.store.List()
	sort.Slice(events, func(i, j int) bool { return events[i].CreatedAt.Before(events[j].CreatedAt) })
	if offset >= len(events) {
		return []*event.Event{}, nil
	}
	events = events[offset:]
	if limit > 0 && limit < len(events) {
		events = events[:limit]
	}
	return events, nil
}

func (r *EventRepository) Update(_ context.Context, e *event.Event) error {
	e.UpdatedAt = time.Now()
	e.Version++
	if !r.store.Replace(e.ID, e) {
		return event.ErrEventNotFound
	}
	return nil
}

func (r *EventRepository) Delete(_ context.Context, id string) error {
	if !r.store.Delete(id) {
		return event.ErrEventNotFound
	}
	return nil
}

var _ event.Repository = (*EventRepository)(nil)
