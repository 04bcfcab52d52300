package memory

import (
	"context"
	"sort"
	"time"

	"github.com/sanosuguru/go-ticket-sales/internal/domain/cart"
)

func cloneCart(c *cart.Cart) *cart.Cart {
	cp := *c
	cp.TicketIDs = append([]string(nil), c.TicketIDs...)
	return &cp
}

// CartRepository はカートのインメモリリポジトリ
type CartRepository struct {
	store *Store[cart.Cart]
}

// NewCartRepository は新しいカートリポジトリを作成する
func NewCartRepository() *CartRepository {
	return &CartRepository{store: NewStore(cloneCart)}
}

func (r *CartRepository) Create(_ context.Context, c *cart.Cart) error {
	if c.ID == "" {
		c.ID = NewID()
	}
	r.store.Put(c.ID, c)
	return nil
}

func (r *CartRepository) GetByID(_ context.Context, id string) (*cart.Cart, error) {
	c, ok := r.store.Get(id)
	if !ok {
		return nil, cart.ErrCartNotFound
	}
	return c, nil
}

func (r *CartRepository) GetUnprocessedOlderThan(_ context.Context, cutoff time.Time) ([]*cart.Cart, error) {
	var out []*cart.Cart
	for _, c := range r.store.List() {
		if !c.PaymentProcessed && !c.IsEmpty() && c.UpdatedAt.Before(cutoff) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	return out, nil
}

func (r *CartRepository) Update(_ context.Context, c *cart.Cart) error {
	c.UpdatedAt = time.Now()
	if !r.store.Replace(c.ID, c) {
		return cart.ErrCartNotFound
	}
	return nil
}

func (r *CartRepository) Delete(_ context.Context, id string) error {
	if !r.store.Delete(id) {
		return cart.ErrCartNotFound
	}
	return nil
}

var _ cart.Repository = (*CartRepository)(nil)
