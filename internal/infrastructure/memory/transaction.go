package memory

import (
	"context"

	"github.com/sanosuguru/go-ticket-sales/internal/domain/transaction"
)

// TxManager はインメモリバックエンド用のトランザクションマネージャ
// ストア自体がミューテックスで直列化されるため、コミット・ロールバックは何もしない
type TxManager struct{}

// NewTxManager は新しい TxManager を作成する
func NewTxManager() *TxManager { return &TxManager{} }

func (*TxManager) Begin(_ context.Context) (transaction.Tx, error) {
	return noopTx{}, nil
}

type noopTx struct{}

func (noopTx) Commit() error   { return nil }
func (noopTx) Rollback() error { return nil }

var _ transaction.Manager = (*TxManager)(nil)
