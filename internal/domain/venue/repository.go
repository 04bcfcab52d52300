package venue

import "context"

// Repository は会場リポジトリのインターフェース
type Repository interface {
	// Create は新しい会場を作成する
	Create(ctx context.Context, v *Venue) error

	// GetByID はIDから会場を取得する
	GetByID(ctx context.Context, id string) (*Venue, error)

	// List は会場一覧を取得する
	List(ctx context.Context) ([]*Venue, error)

	// SearchByNameOrLocation は名前または所在地にキーワードを含む会場を取得する
	SearchByNameOrLocation(ctx context.Context, keyword string) ([]*Venue, error)

	// Update は会場を更新する
	Update(ctx context.Context, v *Venue) error

	// Delete は会場を削除する
	Delete(ctx context.Context, id string) error
}

// SectionRepository はセクションリポジトリのインターフェース
type SectionRepository interface {
	// Create は新しいセクションを作成する
	Create(ctx context.Context, s *Section) error

	// GetByID はIDからセクションを取得する
	GetByID(ctx context.Context, id string) (*Section, error)

	// GetByVenueID は会場IDからセクション一覧を取得する
	GetByVenueID(ctx context.Context, venueID string) ([]*Section, error)

	// Update はセクションを更新する
	Update(ctx context.Context, s *Section) error

	// Delete はセクションを削除する
	Delete(ctx context.Context, id string) error
}

// RowRepository は列リポジトリのインターフェース
type RowRepository interface {
	// Create は新しい列を作成する
	Create(ctx context.Context, r *Row) error

	// GetByID はIDから列を取得する
	GetByID(ctx context.Context, id string) (*Row, error)

	// GetBySectionID はセクションIDから列一覧を取得する
	GetBySectionID(ctx context.Context, sectionID string) ([]*Row, error)

	// Update は列を更新する
	Update(ctx context.Context, r *Row) error

	// Delete は列を削除する
	Delete(ctx context.Context, id string) error
}

// SeatRepository は座席リポジトリのインターフェース
type SeatRepository interface {
	// Create は新しい座席を作成する
	Create(ctx context.Context, s *Seat) error

	// CreateBulk は複数の座席を一括作成する
	CreateBulk(ctx context.Context, seats []*Seat) error

	// GetByID はIDから座席を取得する
	GetByID(ctx context.Context, id string) (*Seat, error)

	// GetByRowID は列IDから座席一覧を座席番号順で取得する
	GetByRowID(ctx context.Context, rowID string) ([]*Seat, error)

	// ReserveIfFree は座席が未予約の場合のみチケットに紐付けて予約する
	// 条件付き更新で実行され、既に予約済みの場合は ErrSeatAlreadyReserved を返す
	ReserveIfFree(ctx context.Context, seatID, ticketID string) error

	// Release は座席の予約を解除する
	Release(ctx context.Context, seatID string) error

	// Update は座席を更新する
	Update(ctx context.Context, s *Seat) error

	// Delete は座席を削除する
	Delete(ctx context.Context, id string) error
}
