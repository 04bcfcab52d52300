package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-ticket-sales/internal/domain/cart"
	"github.com/sanosuguru/go-ticket-sales/internal/domain/event"
	"github.com/sanosuguru/go-ticket-sales/internal/domain/ticket"
	"github.com/sanosuguru/go-ticket-sales/internal/domain/transaction"
	"github.com/sanosuguru/go-ticket-sales/internal/domain/venue"
	"github.com/sanosuguru/go-ticket-sales/internal/pkg/logger"
	"github.com/sanosuguru/go-ticket-sales/internal/pkg/metrics"
)

// CartService はカートの組み立てと決済を担当する
// 同一カートへの操作はカート単位のミューテックスで直列化する
type CartService struct {
	cartRepo   cart.Repository
	ticketRepo ticket.Repository
	eventRepo  event.Repository
	seatRepo   venue.SeatRepository
	txManager  transaction.Manager

	locks sync.Map // cartID -> *sync.Mutex
}

// NewCartService は新しい CartService を作成する
func NewCartService(cr cart.Repository, tr ticket.Repository, er event.Repository, seatRepo venue.SeatRepository, tm transaction.Manager) *CartService {
	return &CartService{
		cartRepo:   cr,
		ticketRepo: tr,
		eventRepo:  er,
		seatRepo:   seatRepo,
		txManager:  tm,
	}
}

// CreateCart は顧客とイベントに紐付く新しいカートを作成する
func (s *CartService) CreateCart(ctx context.Context, customerID, eventID string) (*cart.Cart, error) {
	c := cart.NewCart(customerID, eventID)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	if err := s.cartRepo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("カート作成に失敗: %w", err)
	}
	return c, nil
}

// GetCart はIDからカートを取得する
func (s *CartService) GetCart(ctx context.Context, cartID string) (*cart.Cart, error) {
	return s.cartRepo.GetByID(ctx, cartID)
}

// AddTicketToCart はチケットをカートに保留する
// カートと異なるイベントのチケットは追加できない
func (s *CartService) AddTicketToCart(ctx context.Context, cartID, ticketID string) (*cart.Cart, error) {
	unlock := s.lockCart(cartID)
	defer unlock()

	c, err := s.cartRepo.GetByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if c.PaymentProcessed {
		return nil, cart.ErrCartAlreadyProcessed
	}

	t, err := s.ticketRepo.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if t.Sold {
		return nil, ticket.ErrTicketAlreadySold
	}
	if t.EventID != c.EventID {
		return nil, cart.ErrEventMismatch
	}
	if c.Contains(ticketID) {
		return nil, cart.ErrTicketAlreadyInCart
	}

	// 保留は楽観的ロック付き更新で確定する。他カートとの競合は Conflict になる
	if err := t.Hold(cartID); err != nil {
		return nil, err
	}
	if err := s.ticketRepo.Update(ctx, t); err != nil {
		if errors.Is(err, ticket.ErrOptimisticLockConflict) {
			return nil, ticket.ErrTicketAlreadyHeld
		}
		return nil, fmt.Errorf("チケット保留に失敗: %w", err)
	}

	if err := c.AddTicket(ticketID); err != nil {
		s.releaseHold(ctx, t)
		return nil, err
	}
	if err := s.recalculateAndSave(ctx, c); err != nil {
		s.releaseHold(ctx, t)
		return nil, err
	}

	if m := metrics.Get(); m != nil {
		m.HeldTickets.Inc()
	}
	return c, nil
}

// RemoveTicketFromCart はカートからチケットを取り除き、保留を解除する
func (s *CartService) RemoveTicketFromCart(ctx context.Context, cartID, ticketID string) (*cart.Cart, error) {
	unlock := s.lockCart(cartID)
	defer unlock()

	c, err := s.cartRepo.GetByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if c.PaymentProcessed {
		return nil, cart.ErrCartAlreadyProcessed
	}
	if err := c.RemoveTicket(ticketID); err != nil {
		return nil, err
	}

	t, err := s.ticketRepo.GetByID(ctx, ticketID)
	if err == nil && t.IsHeld() && *t.CartID == cartID {
		s.releaseHold(ctx, t)
	}

	if err := s.recalculateAndSave(ctx, c); err != nil {
		return nil, err
	}
	if m := metrics.Get(); m != nil {
		m.HeldTickets.Dec()
	}
	return c, nil
}

// ClearCart はカート内の全チケットの保留を解除し、合計額をゼロに戻す
func (s *CartService) ClearCart(ctx context.Context, cartID string) (*cart.Cart, error) {
	unlock := s.lockCart(cartID)
	defer unlock()

	c, err := s.cartRepo.GetByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if c.PaymentProcessed {
		return nil, cart.ErrCartAlreadyProcessed
	}

	released, err := s.releaseAllHolds(ctx, cartID)
	if err != nil {
		return nil, err
	}
	c.Clear()
	if err := s.cartRepo.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("カート更新に失敗: %w", err)
	}
	if m := metrics.Get(); m != nil {
		m.HeldTickets.Sub(float64(released))
	}
	return c, nil
}

// ProcessPayment はカード情報を検証し、カート内の全チケットを売約済みにする
// 成功するとカートの決済済みフラグが立ち、以後の変更はできない
func (s *CartService) ProcessPayment(ctx context.Context, cartID string, card cart.CardDetails) (*cart.Cart, error) {
	if err := card.Validate(time.Now()); err != nil {
		s.countCheckout("validation_failed")
		return nil, err
	}

	unlock := s.lockCart(cartID)
	defer unlock()

	c, err := s.cartRepo.GetByID(ctx, cartID)
	if err != nil {
		s.countCheckout("error")
		return nil, err
	}
	if c.PaymentProcessed {
		s.countCheckout("error")
		return nil, cart.ErrCartAlreadyProcessed
	}

	held, err := s.ticketRepo.GetHeldByCartID(ctx, cartID)
	if err != nil {
		s.countCheckout("error")
		return nil, fmt.Errorf("保留チケット取得に失敗: %w", err)
	}
	total := decimal.Zero
	for _, t := range held {
		total = total.Add(t.Price)
	}
	if !total.IsPositive() {
		s.countCheckout("empty_total")
		return nil, cart.ErrEmptyCartTotal
	}

	// 座席付きチケットはまず座席をクレームする。取れなければ決済全体を中止する
	claimed, err := s.claimSeats(ctx, held)
	if err != nil {
		s.releaseSeats(ctx, claimed)
		s.countCheckout("error")
		return nil, err
	}

	now := time.Now()
	err = transaction.Within(ctx, s.txManager, func(tx transaction.Tx) error {
		for _, t := range held {
			if err := t.MarkSold(c.CustomerID, now); err != nil {
				return err
			}
			if err := s.ticketRepo.UpdateInTx(ctx, tx, t); err != nil {
				return fmt.Errorf("チケット売約に失敗: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		s.releaseSeats(ctx, claimed)
		s.countCheckout("error")
		return nil, err
	}

	c.Total = total
	if err := c.MarkProcessed(); err != nil {
		s.countCheckout("error")
		return nil, err
	}
	if err := s.cartRepo.Update(ctx, c); err != nil {
		// チケットは売約済みのため、カート更新失敗は記録して調査に回す
		logger.Error("決済後のカート更新に失敗",
			zap.String("cart_id", cartID), zap.Error(err))
		s.countCheckout("error")
		return nil, fmt.Errorf("カート更新に失敗: %w", err)
	}

	if m := metrics.Get(); m != nil {
		m.CartCheckoutsTotal.WithLabelValues("success").Inc()
		m.HeldTickets.Sub(float64(len(held)))
	}
	return c, nil
}

// FinalizeCart は決済済みフラグを立て、カート内の保留をすべて解放する
// 既に決済済みのカートには使えない
func (s *CartService) FinalizeCart(ctx context.Context, cartID string) (*cart.Cart, error) {
	unlock := s.lockCart(cartID)
	defer unlock()

	c, err := s.cartRepo.GetByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if err := c.MarkProcessed(); err != nil {
		return nil, err
	}

	released, err := s.releaseAllHolds(ctx, cartID)
	if err != nil {
		return nil, err
	}
	c.Clear()
	if err := s.cartRepo.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("カート更新に失敗: %w", err)
	}
	if m := metrics.Get(); m != nil {
		m.HeldTickets.Sub(float64(released))
	}
	return c, nil
}

// ReleaseAbandonedCarts は一定時間更新のない未決済カートの保留を解放する
// 解放したカート数を返す
func (s *CartService) ReleaseAbandonedCarts(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)
	carts, err := s.cartRepo.GetUnprocessedOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("放置カート取得に失敗: %w", err)
	}

	released := 0
	for _, stale := range carts {
		if err := s.releaseAbandonedCart(ctx, stale.ID); err != nil {
			logger.Warn("放置カートの解放に失敗",
				zap.String("cart_id", stale.ID), zap.Error(err))
			continue
		}
		released++
	}
	return released, nil
}

func (s *CartService) releaseAbandonedCart(ctx context.Context, cartID string) error {
	unlock := s.lockCart(cartID)
	defer unlock()

	c, err := s.cartRepo.GetByID(ctx, cartID)
	if err != nil {
		return err
	}
	if c.PaymentProcessed || c.IsEmpty() {
		return nil
	}

	count, err := s.releaseAllHolds(ctx, cartID)
	if err != nil {
		return err
	}
	c.Clear()
	if err := s.cartRepo.Update(ctx, c); err != nil {
		return fmt.Errorf("カート更新に失敗: %w", err)
	}
	if m := metrics.Get(); m != nil {
		m.HeldTickets.Sub(float64(count))
	}
	return nil
}

// claimSeats は保留チケットの座席を順にクレームする
// 途中で失敗した場合、そこまでにクレームした座席IDを返して呼び出し側が巻き戻す
func (s *CartService) claimSeats(ctx context.Context, held []*ticket.Ticket) ([]string, error) {
	var claimed []string
	for _, t := range held {
		if t.SeatID == nil {
			continue
		}
		seat, err := s.seatRepo.GetByID(ctx, *t.SeatID)
		if err != nil {
			return claimed, err
		}
		// 予約経由で既にこのチケットが座席を押さえているケース
		if seat.Reserved && seat.TicketID != nil && *seat.TicketID == t.ID {
			continue
		}
		if err := s.seatRepo.ReserveIfFree(ctx, *t.SeatID, t.ID); err != nil {
			return claimed, err
		}
		claimed = append(claimed, *t.SeatID)
	}
	return claimed, nil
}

func (s *CartService) releaseSeats(ctx context.Context, seatIDs []string) {
	for _, id := range seatIDs {
		if err := s.seatRepo.Release(ctx, id); err != nil {
			logger.Error("座席の巻き戻しに失敗", zap.String("seat_id", id), zap.Error(err))
		}
	}
}

// releaseAllHolds はカートに保留されている全チケットの保留を解除する
func (s *CartService) releaseAllHolds(ctx context.Context, cartID string) (int, error) {
	held, err := s.ticketRepo.GetHeldByCartID(ctx, cartID)
	if err != nil {
		return 0, fmt.Errorf("保留チケット取得に失敗: %w", err)
	}
	for _, t := range held {
		s.releaseHold(ctx, t)
	}
	return len(held), nil
}

func (s *CartService) releaseHold(ctx context.Context, t *ticket.Ticket) {
	if err := t.ReleaseHold(); err != nil {
		return
	}
	if err := s.ticketRepo.Update(ctx, t); err != nil {
		logger.Error("チケット保留解除に失敗", zap.String("ticket_id", t.ID), zap.Error(err))
	}
}

// recalculateAndSave は保留中チケットの合計額を計算し直してカートを保存する
func (s *CartService) recalculateAndSave(ctx context.Context, c *cart.Cart) error {
	held, err := s.ticketRepo.GetHeldByCartID(ctx, c.ID)
	if err != nil {
		return fmt.Errorf("保留チケット取得に失敗: %w", err)
	}
	total := decimal.Zero
	for _, t := range held {
		total = total.Add(t.Price)
	}
	c.Total = total
	if err := s.cartRepo.Update(ctx, c); err != nil {
		return fmt.Errorf("カート更新に失敗: %w", err)
	}
	return nil
}

func (s *CartService) lockCart(cartID string) func() {
	v, _ := s.locks.LoadOrStore(cartID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *CartService) countCheckout(status string) {
	if m := metrics.Get(); m != nil {
		m.CartCheckoutsTotal.WithLabelValues(status).Inc()
	}
}
