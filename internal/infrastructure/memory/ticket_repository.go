package memory

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/sanosuguru/go-ticket-sales/internal/domain/ticket"
	"github.com/sanosuguru/go-ticket-sales/internal/domain/transaction"
)

func cloneTicket(t *ticket.Ticket) *ticket.Ticket {
	c := *t
	if t.SeatID != nil {
		id := *t.SeatID
		c.SeatID = &id
	}
	if t.PurchaserID != nil {
		id := *t.PurchaserID
		c.PurchaserID = &id
	}
	if t.PurchasedAt != nil {
		at := *t.PurchasedAt
		c.PurchasedAt = &at
	}
	if t.CartID != nil {
		id := *t.CartID
		c.CartID = &id
	}
	return &c
}

// TicketRepository はチケットのインメモリリポジトリ
type TicketRepository struct {
	store *Store[ticket.Ticket]
}

// NewTicketRepository は新しいチケットリポジトリを作成する
func NewTicketRepository() *TicketRepository {
	return &TicketRepository{store: NewStore(cloneTicket)}
}

func (r *TicketRepository) Create(_ context.Context, t *ticket.Ticket) error {
	if t.ID == "" {
		t.ID = NewID()
	}
	r.store.Put(t.ID, t)
	return nil
}

func (r *TicketRepository) CreateBulk(ctx context.Context, tickets []*ticket.Ticket) error {
	for _, t := range tickets {
		if err := r.Create(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

func (r *TicketRepository) GetByID(_ context.Context, id string) (*ticket.Ticket, error) {
	t, ok := r.store.Get(id)
	if !ok {
		return nil, ticket.ErrTicketNotFound
	}
	return t, nil
}

func (r *TicketRepository) GetByEventID(_ context.Context, eventID string) ([]*ticket.Ticket, error) {
	var out []*ticket.Ticket
	for _, t := range r.store.List() {
		if t.EventID == eventID {
			out = append(out, t)
		}
	}
	sortTickets(out)
	return out, nil
}

func (r *TicketRepository) GetAvailableByEventID(_ context.Context, eventID string) ([]*ticket.Ticket, error) {
	var out []*ticket.Ticket
	for _, t := range r.store.List() {
		if t.EventID == eventID && !t.Sold && !t.IsHeld() {
			out = append(out, t)
		}
	}
	sortTickets(out)
	return out, nil
}

func (r *TicketRepository) GetHeldByCartID(_ context.Context, cartID string) ([]*ticket.Ticket, error) {
	var out []*ticket.Ticket
	for _, t := range r.store.List() {
		if t.CartID != nil && *t.CartID == cartID {
			out = append(out, t)
		}
	}
	sortTickets(out)
	return out, nil
}

func (r *TicketRepository) Update(_ context.Context, t *ticket.Ticket) error {
	err := r.store.Mutate(t.ID, func(cur *ticket.Ticket) error {
		if cur.Version != t.Version {
			return ticket.ErrOptimisticLockConflict
		}
		t.Version++
		t.UpdatedAt = time.Now()
		*cur = *cloneTicket(t)
		return nil
	})
	if errors.Is(err, errNotFound) {
		return ticket.ErrTicketNotFound
	}
	return err
}

// UpdateInTx はインメモリバックエンドではトランザクションを持たないため Update に委譲する
func (r *TicketRepository) UpdateInTx(ctx context.Context, _ transaction.Tx, t *ticket.Ticket) error {
	return r.Update(ctx, t)
}

func (r *TicketRepository) Delete(_ context.Context, id string) error {
	if !r.store.Delete(id) {
		return ticket.ErrTicketNotFound
	}
	return nil
}

func (r *TicketRepository) DeleteByEventID(_ context.Context, eventID string) error {
	for _, t := range r.store.List() {
		if t.EventID == eventID {
			r.store.Delete(t.ID)
		}
	}
	return nil
}

func (r *TicketRepository) DeleteBySeatIDs(_ context.Context, seatIDs []string) error {
	ids := make(map[string]struct{}, len(seatIDs))
	for _, id := range seatIDs {
		ids[id] = struct{}{}
	}
	for _, t := range r.store.List() {
		if t.SeatID == nil {
			continue
		}
		if _, ok := ids[*t.SeatID]; ok {
			r.store.Delete(t.ID)
		}
	}
	return nil
}

func sortTickets(tickets []*ticket.Ticket) {
	sort.Slice(tickets, func(i, j int) bool {
		if !tickets[i].CreatedAt.Equal(tickets[j].CreatedAt) {
			return tickets[i].CreatedAt.Before(tickets[j].CreatedAt)
		}
		return tickets[i].ID < tickets[j].ID
	})
}

var _ ticket.Repository = (*TicketRepository)(nil)
