package ticket

import (
	"context"

	"github.com/sanosuguru/go-ticket-sales/internal/domain/transaction"
)

// Repository はチケットリポジトリのインターフェース
type Repository interface {
	// Create は新しいチケットを作成する
	Create(ctx context.Context, t *Ticket) error

	// CreateBulk は複数のチケットを一括作成する
	CreateBulk(ctx context.Context, tickets []*Ticket) error

	// GetByID はIDからチケットを取得する
	GetByID(ctx context.Context, id string) (*Ticket, error)

	// GetByEventID はイベントIDからチケット一覧を取得する
	GetByEventID(ctx context.Context, eventID string) ([]*Ticket, error)

	// GetAvailableByEventID はイベントIDから未売約・未保留のチケット一覧を取得する
	GetAvailableByEventID(ctx context.Context, eventID string) ([]*Ticket, error)

	// GetHeldByCartID はカートに保留中のチケット一覧を取得する
	GetHeldByCartID(ctx context.Context, cartID string) ([]*Ticket, error)

	// Update はチケットを更新する（楽観的ロック）
	Update(ctx context.Context, t *Ticket) error

	// UpdateInTx はトランザクション内でチケットを更新する
	UpdateInTx(ctx context.Context, tx transaction.Tx, t *Ticket) error

	// Delete はチケットを削除する
	Delete(ctx context.Context, id string) error

	// DeleteByEventID はイベントに属する全チケットを削除する
	DeleteByEventID(ctx context.Context, eventID string) error

	// DeleteBySeatIDs は指定座席に紐付く全チケットを削除する
	// 座席のカスケード削除で使用する
	DeleteBySeatIDs(ctx context.Context, seatIDs []string) error
}
