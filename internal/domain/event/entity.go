package event

import "time"

// Status はイベントの状態を表す
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// Type はイベントの種別タグを表す
// 種別ごとの差分は出演者リストのみで、継承ではなくタグで分岐する
type Type string

const (
	TypeConcert Type = "concert"
	TypeSports  Type = "sports"
)

// Event はイベントエンティティを表す
type Event struct {
	ID          string
	Name        string
	Description string
	VenueID     string
	StartAt     time.Time
	EndAt       time.Time
	Status      Status
	Type        Type
	Artists     []string // Type == concert の出演アーティスト
	Athletes    []string // Type == sports の出場選手
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Version     int // 楽観的ロック用
}

// NewConcert は新しいコンサートイベントを作成する
func NewConcert(name, description, venueID string, startAt, endAt time.Time, artists []string) *Event {
	e := newEvent(name, description, venueID, startAt, endAt, TypeConcert)
	e.Artists = artists
	return e
}

// NewSportsEvent は新しいスポーツイベントを作成する
func NewSportsEvent(name, description, venueID string, startAt, endAt time.Time, athletes []string) *Event {
	e := newEvent(name, description, venueID, startAt, endAt, TypeSports)
	e.Athletes = athletes
	return e
}

func newEvent(name, description, venueID string, startAt, endAt time.Time, typ Type) *Event {
	now := time.Now()
	return &Event{
		Name:        name,
		Description: description,
		VenueID:     venueID,
		StartAt:     startAt,
		EndAt:       endAt,
		Status:      StatusScheduled,
		Type:        typ,
		CreatedAt:   now,
		UpdatedAt:   now,
		Version:     0,
	}
}

// Lineup は種別タグに応じた出演者リストを返す
func (e *Event) Lineup() []string {
	switch e.Type {
	case TypeConcert:
		return e.Artists
	case TypeSports:
		return e.Athletes
	default:
		return nil
	}
}

// AddPerformer は種別タグに応じた出演者リストへ名前を追加する
func (e *Event) AddPerformer(name string) error {
	if name == "" {
		return ErrPerformerNameRequired
	}
	switch e.Type {
	case TypeConcert:
		e.Artists = append(e.Artists, name)
	case TypeSports:
		e.Athletes = append(e.Athletes, name)
	default:
		return ErrUnknownEventType
	}
	e.UpdatedAt = time.Now()
	return nil
}

// IsLive はチケット操作の対象にできる状態かを返す
func (e *Event) IsLive() bool {
	return e.Status == StatusScheduled
}

// Cancel はイベントを中止状態にする
func (e *Event) Cancel() error {
	if e.Status != StatusScheduled {
		return ErrEventNotScheduled
	}
	e.Status = StatusCancelled
	e.UpdatedAt = time.Now()
	return nil
}

// Complete はイベントを終了状態にする
func (e *Event) Complete() error {
	if e.Status != StatusScheduled {
		return ErrEventNotScheduled
	}
	e.Status = StatusCompleted
	e.UpdatedAt = time.Now()
	return nil
}

// Validate はイベントの検証を行う
func (e *Event) Validate() error {
	if e.Name == "" {
		return ErrEventNameRequired
	}
	if e.VenueID == "" {
		return ErrVenueIDRequired
	}
	if e.EndAt.Before(e.StartAt) {
		return ErrInvalidEventTime
	}
	if e.Type != TypeConcert && e.Type != TypeSports {
		return ErrUnknownEventType
	}
	return nil
}
