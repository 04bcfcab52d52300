package ticket

import (
	"time"

	"github.com/shopspring/decimal"
)

// Type はチケットの料金区分を表す
type Type string

const (
	TypeEarlyBird Type = "early_bird"
	TypeVIP       Type = "vip"
	TypeStandard  Type = "standard"
)

// Ticket はチケットエンティティを表す
// SeatID が nil のチケットは自由席（座席割り当てなし）
type Ticket struct {
	ID          string
	EventID     string
	SectionID   string
	SeatID      *string
	Price       decimal.Decimal
	Type        Type
	Sold        bool
	PurchaserID *string
	PurchasedAt *time.Time
	CartID      *string // カートに保留されている間のみ設定される
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Version     int // 楽観的ロック用
}

// NewTicket は座席付きの新しいチケットを作成する
func NewTicket(eventID, sectionID, seatID string, price decimal.Decimal, typ Type) *Ticket {
	t := newTicket(eventID, sectionID, price, typ)
	t.SeatID = &seatID
	return t
}

// NewGeneralAdmissionTicket は座席割り当てのない自由席チケットを作成する
func NewGeneralAdmissionTicket(eventID, sectionID string, price decimal.Decimal, typ Type) *Ticket {
	return newTicket(eventID, sectionID, price, typ)
}

func newTicket(eventID, sectionID string, price decimal.Decimal, typ Type) *Ticket {
	now := time.Now()
	return &Ticket{
		EventID:   eventID,
		SectionID: sectionID,
		Price:     price,
		Type:      typ,
		CreatedAt: now,
		UpdatedAt: now,
		Version:   0,
	}
}

// IsGeneralAdmission は自由席チケットかを返す
func (t *Ticket) IsGeneralAdmission() bool {
	return t.SeatID == nil
}

// IsHeld はカートに保留中かを返す
func (t *Ticket) IsHeld() bool {
	return t.CartID != nil
}

// Hold はチケットをカートに保留する（販売保留状態）
// free → held のみ有効。売約済み・保留済みのチケットは保留できない
func (t *Ticket) Hold(cartID string) error {
	if t.Sold {
		return ErrTicketAlreadySold
	}
	if t.CartID != nil {
		return ErrTicketAlreadyHeld
	}
	t.CartID = &cartID
	t.UpdatedAt = time.Now()
	return nil
}

// ReleaseHold はカートへの保留を解除する（held → free）
func (t *Ticket) ReleaseHold() error {
	if t.CartID == nil {
		return ErrTicketNotHeld
	}
	t.CartID = nil
	t.UpdatedAt = time.Now()
	return nil
}

// MarkSold はチケットを売約済みにする
// 売約フラグは購入者と購入時刻が揃っている場合のみ立つ
func (t *Ticket) MarkSold(purchaserID string, at time.Time) error {
	if t.Sold {
		return ErrTicketAlreadySold
	}
	if purchaserID == "" {
		return ErrPurchaserRequired
	}
	t.Sold = true
	t.PurchaserID = &purchaserID
	t.PurchasedAt = &at
	t.CartID = nil
	t.UpdatedAt = time.Now()
	return nil
}

// Refund は売約済みチケットを未販売に戻す（sold → free）
func (t *Ticket) Refund() error {
	if !t.Sold {
		return ErrTicketNotSold
	}
	t.Sold = false
	t.PurchaserID = nil
	t.PurchasedAt = nil
	t.UpdatedAt = time.Now()
	return nil
}

// Validate はチケットの検証を行う
func (t *Ticket) Validate() error {
	if t.EventID == "" {
		return ErrEventIDRequired
	}
	if t.SectionID == "" {
		return ErrSectionIDRequired
	}
	if t.Price.IsNegative() {
		return ErrInvalidPrice
	}
	switch t.Type {
	case TypeEarlyBird, TypeVIP, TypeStandard:
	default:
		return ErrInvalidTicketType
	}
	return nil
}
