package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart は1人の顧客・1つのイベントに紐付く買い物カートを表す
// 保留中のチケットはすべて同一イベントのものでなければならない
type Cart struct {
	ID               string
	CustomerID       string
	EventID          string
	TicketIDs        []string
	Total            decimal.Decimal
	PaymentProcessed bool // 一方向ラッチ。trueに戻すことはできない
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewCart は新しいカートを作成する
func NewCart(customerID, eventID string) *Cart {
	now := time.Now()
	return &Cart{
		CustomerID: customerID,
		EventID:    eventID,
		TicketIDs:  []string{},
		Total:      decimal.Zero,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Validate はカートの検証を行う
func (c *Cart) Validate() error {
	if c.CustomerID == "" {
		return ErrCustomerRequired
	}
	if c.EventID == "" {
		return ErrEventRequired
	}
	return nil
}

// Contains はチケットがカートに入っているかを返す
func (c *Cart) Contains(ticketID string) bool {
	for _, id := range c.TicketIDs {
		if id == ticketID {
			return true
		}
	}
	return false
}

// AddTicket はチケットIDをカートに追加する
// イベント整合性と売約チェックは呼び出し側（CartService）が行う
func (c *Cart) AddTicket(ticketID string) error {
	if c.PaymentProcessed {
		return ErrCartAlreadyProcessed
	}
	if c.Contains(ticketID) {
		return ErrTicketAlreadyInCart
	}
	c.TicketIDs = append(c.TicketIDs, ticketID)
	c.UpdatedAt = time.Now()
	return nil
}

// RemoveTicket はチケットIDをカートから取り除く
func (c *Cart) RemoveTicket(ticketID string) error {
	for i, id := range c.TicketIDs {
		if id == ticketID {
			c.TicketIDs = append(c.TicketIDs[:i], c.TicketIDs[i+1:]...)
			c.UpdatedAt = time.Now()
			return nil
		}
	}
	return ErrTicketNotInCart
}

// Clear は保留中のチケットをすべて取り除き合計額をゼロに戻す
func (c *Cart) Clear() {
	c.TicketIDs = []string{}
	c.Total = decimal.Zero
	c.UpdatedAt = time.Now()
}

// IsEmpty はカートが空かを返す
func (c *Cart) IsEmpty() bool {
	return len(c.TicketIDs) == 0
}

// MarkProcessed は決済済みフラグを立てる
// フラグは一方向ラッチで、二度目の呼び出しはエラーになる
func (c *Cart) MarkProcessed() error {
	if c.PaymentProcessed {
		return ErrCartAlreadyProcessed
	}
	c.PaymentProcessed = true
	c.UpdatedAt = time.Now()
	return nil
}
