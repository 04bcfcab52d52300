package cart

import (
	"context"
	"time"
)

// Repository はカートリポジトリのインターフェース
type Repository interface {
	// Create は新しいカートを作成する
	Create(ctx context.Context, c *Cart) error

	// GetByID はIDからカートを取得する
	GetByID(ctx context.Context, id string) (*Cart, error)

	// GetUnprocessedOlderThan は未決済のまま指定時刻より前に更新されたカート一覧を取得する
	GetUnprocessedOlderThan(ctx context.Context, cutoff time.Time) ([]*Cart, error)

	// Update はカートを更新する
	Update(ctx context.Context, c *Cart) error

	// Delete はカートを削除する
	Delete(ctx context.Context, id string) error
}
