package venue

import "time"

// Venue は会場エンティティを表す
type Venue struct {
	ID        string
	Name      string
	Location  string
	Capacity  int
	HasSeats  bool // false の場合は自由席（座席割り当てなし）
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewVenue は新しい会場を作成する
func NewVenue(name, location string, capacity int, hasSeats bool) *Venue {
	now := time.Now()
	return &Venue{
		Name:      name,
		Location:  location,
		Capacity:  capacity,
		HasSeats:  hasSeats,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate は会場の検証を行う
func (v *Venue) Validate() error {
	if v.Name == "" {
		return ErrVenueNameRequired
	}
	if v.Location == "" {
		return ErrVenueLocationRequired
	}
	if v.Capacity <= 0 {
		return ErrInvalidCapacity
	}
	return nil
}

// Section は会場内のセクションを表す
// セクション名は会場内で一意（大文字小文字を区別しない）
type Section struct {
	ID        string
	VenueID   string
	Name      string
	Capacity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DefaultSectionName は自由席会場に自動作成されるセクション名
const DefaultSectionName = "Default Section"

// NewSection は新しいセクションを作成する
func NewSection(venueID, name string, capacity int) *Section {
	now := time.Now()
	return &Section{
		VenueID:   venueID,
		Name:      name,
		Capacity:  capacity,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate はセクションの検証を行う
func (s *Section) Validate() error {
	if s.VenueID == "" {
		return ErrVenueIDRequired
	}
	if s.Name == "" {
		return ErrSectionNameRequired
	}
	if s.Capacity <= 0 {
		return ErrInvalidCapacity
	}
	return nil
}

// Row はセクション内の座席列を表す
type Row struct {
	ID        string
	SectionID string
	Capacity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewRow は新しい列を作成する
func NewRow(sectionID string, capacity int) *Row {
	now := time.Now()
	return &Row{
		SectionID: sectionID,
		Capacity:  capacity,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate は列の検証を行う
func (r *Row) Validate() error {
	if r.SectionID == "" {
		return ErrSectionIDRequired
	}
	if r.Capacity <= 0 {
		return ErrInvalidCapacity
	}
	return nil
}

// Seat は座席エンティティを表す
// Number は列内で一意
type Seat struct {
	ID        string
	RowID     string
	Number    int
	Reserved  bool
	TicketID  *string // 現在この座席を占有しているチケット
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSeat は新しい座席を作成する
func NewSeat(rowID string, number int) *Seat {
	now := time.Now()
	return &Seat{
		RowID:     rowID,
		Number:    number,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsAvailable は座席が予約可能かを返す
func (s *Seat) IsAvailable() bool {
	return !s.Reserved
}

// Reserve は座席をチケットに紐付けて予約状態にする
func (s *Seat) Reserve(ticketID string) error {
	if s.Reserved {
		return ErrSeatAlreadyReserved
	}
	s.Reserved = true
	s.TicketID = &ticketID
	s.UpdatedAt = time.Now()
	return nil
}

// Release は座席の予約を解除しチケットとの紐付けを外す
func (s *Seat) Release() error {
	if !s.Reserved {
		return ErrSeatNotReserved
	}
	s.Reserved = false
	s.TicketID = nil
	s.UpdatedAt = time.Now()
	return nil
}

// Validate は座席の検証を行う
func (s *Seat) Validate() error {
	if s.RowID == "" {
		return ErrRowIDRequired
	}
	if s.Number <= 0 {
		return ErrInvalidSeatNumber
	}
	return nil
}
