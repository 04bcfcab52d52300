package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-ticket-sales/internal/pkg/logger"
)

// CartReleaser は放置カートの保留を解放するインターフェース
type CartReleaser interface {
	ReleaseAbandonedCarts(ctx context.Context, olderThan time.Duration) (int, error)
}

// AbandonedCartCleaner は未決済のまま放置されたカートを解放するワーカー
// 保留されたままのチケットを定期的に販売在庫へ戻す
type AbandonedCartCleaner struct {
	cartService CartReleaser
	interval    time.Duration
	abandonTTL  time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
}

// NewAbandonedCartCleaner は新しいクリーナーを作成
func NewAbandonedCartCleaner(
	cs CartReleaser,
	interval time.Duration,
	abandonTTL time.Duration,
) *AbandonedCartCleaner {
	return &AbandonedCartCleaner{
		cartService: cs,
		interval:    interval,
		abandonTTL:  abandonTTL,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// Start はクリーナーを開始
func (c *AbandonedCartCleaner) Start(ctx context.Context) {
	logger.Info("放置カートクリーナー開始",
		zap.Duration("interval", c.interval),
		zap.Duration("abandon_ttl", c.abandonTTL),
	)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	defer close(c.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("放置カートクリーナー停止（コンテキストキャンセル）")
			return
		case <-c.stopCh:
			logger.Info("放置カートクリーナー停止（シグナル受信）")
			return
		case <-ticker.C:
			c.cleanup(ctx)
		}
	}
}

// Stop はクリーナーを停止
func (c *AbandonedCartCleaner) Stop() {
	close(c.stopCh)
	<-c.doneCh
}

// cleanup は放置カートの保留を解放する
func (c *AbandonedCartCleaner) cleanup(ctx context.Context) {
	log := logger.Get()
	log.Debug("放置カートのクリーンアップ開始")

	count, err := c.cartService.ReleaseAbandonedCarts(ctx, c.abandonTTL)
	if err != nil {
		log.Error("放置カートのクリーンアップ失敗", zap.Error(err))
		return
	}

	if count > 0 {
		log.Info("放置カートを解放", zap.Int("count", count))
	} else {
		log.Debug("放置カートなし")
	}
}
