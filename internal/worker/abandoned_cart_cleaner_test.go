package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockCartReleaser はCartReleaserのモック
type MockCartReleaser struct {
	mock.Mock
}

func (m *MockCartReleaser) ReleaseAbandonedCarts(ctx context.Context, olderThan time.Duration) (int, error) {
	args := m.Called(ctx, olderThan)
	return args.Int(0), args.Error(1)
}

func TestNewAbandonedCartCleaner(t *testing.T) {
	mockService := new(MockCartReleaser)
	interval := 1 * time.Minute
	abandonTTL := 15 * time.Minute

	cleaner := NewAbandonedCartCleaner(mockService, interval, abandonTTL)

	assert.NotNil(t, cleaner)
	assert.Equal(t, interval, cleaner.interval)
	assert.Equal(t, abandonTTL, cleaner.abandonTTL)
	assert.NotNil(t, cleaner.stopCh)
	assert.NotNil(t, cleaner.doneCh)
}

func TestAbandonedCartCleaner_Cleanup(t *testing.T) {
	t.Run("正常にクリーンアップが実行される", func(t *testing.T) {
		mockService := new(MockCartReleaser)
		mockService.On("ReleaseAbandonedCarts", mock.Anything, 15*time.Minute).Return(3, nil)

		cleaner := &AbandonedCartCleaner{
			cartService: mockService,
			interval:    1 * time.Minute,
			abandonTTL:  15 * time.Minute,
			stopCh:      make(chan struct{}),
			doneCh:      make(chan struct{}),
		}

		cleaner.cleanup(context.Background())

		mockService.AssertExpectations(t)
	})

	t.Run("解放対象がない場合も正常に動作する", func(t *testing.T) {
		mockService := new(MockCartReleaser)
		mockService.On("ReleaseAbandonedCarts", mock.Anything, 15*time.Minute).Return(0, nil)

		cleaner := &AbandonedCartCleaner{
			cartService: mockService,
			interval:    1 * time.Minute,
			abandonTTL:  15 * time.Minute,
			stopCh:      make(chan struct{}),
			doneCh:      make(chan struct{}),
		}

		cleaner.cleanup(context.Background())

		mockService.AssertExpectations(t)
	})

	t.Run("エラーが発生しても継続する", func(t *testing.T) {
		mockService := new(MockCartReleaser)
		mockService.On("ReleaseAbandonedCarts", mock.Anything, 15*time.Minute).Return(0, assert.AnError)

		cleaner := &AbandonedCartCleaner{
			cartService: mockService,
			interval:    1 * time.Minute,
			abandonTTL:  15 * time.Minute,
			stopCh:      make(chan struct{}),
			doneCh:      make(chan struct{}),
		}

		// パニックしないことを確認
		cleaner.cleanup(context.Background())

		mockService.AssertExpectations(t)
	})
}

func TestAbandonedCartCleaner_StartStop(t *testing.T) {
	t.Run("開始と停止が正常に動作する", func(t *testing.T) {
		mockService := new(MockCartReleaser)
		// cleanup が呼ばれる可能性があるので、任意回数マッチさせる
		mockService.On("ReleaseAbandonedCarts", mock.Anything, 100*time.Millisecond).Return(0, nil).Maybe()

		cleaner := NewAbandonedCartCleaner(mockService, 50*time.Millisecond, 100*time.Millisecond)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// バックグラウンドで開始
		go cleaner.Start(ctx)

		// 少し待機
		time.Sleep(120 * time.Millisecond)

		// 停止
		cleaner.Stop()

		// Stop後はdoneChがcloseされている
		select {
		case <-cleaner.doneCh:
			// 正常に終了
		case <-time.After(1 * time.Second):
			t.Error("cleaner did not stop in time")
		}
	})

	t.Run("コンテキストキャンセルで停止する", func(t *testing.T) {
		mockService := new(MockCartReleaser)
		mockService.On("ReleaseAbandonedCarts", mock.Anything, 100*time.Millisecond).Return(0, nil).Maybe()

		cleaner := NewAbandonedCartCleaner(mockService, 50*time.Millisecond, 100*time.Millisecond)

		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan struct{})
		go func() {
			cleaner.Start(ctx)
			close(done)
		}()

		// 少し待機してからコンテキストをキャンセル
		time.Sleep(80 * time.Millisecond)
		cancel()

		// 終了を待機
		select {
		case <-done:
			// 正常に終了
		case <-time.After(1 * time.Second):
			t.Error("cleaner did not stop after context cancel")
		}
	})
}
