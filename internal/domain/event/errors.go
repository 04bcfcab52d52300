package event

import "github.com/sanosuguru/go-ticket-sales/internal/pkg/apperror"

// Event ドメインのエラー定義
var (
	ErrEventNotFound          = apperror.NotFound("イベントが見つかりません")
	ErrEventNameRequired      = apperror.Validation("イベント名は必須です")
	ErrVenueIDRequired        = apperror.Validation("会場IDは必須です")
	ErrInvalidEventTime       = apperror.Validation("終了時刻は開始時刻より後である必要があります")
	ErrPerformerNameRequired  = apperror.Validation("出演者名は必須です")
	ErrUnknownEventType       = apperror.Validation("不明なイベント種別です")
	ErrEventNotScheduled      = apperror.BusinessLogic("開催予定のイベントではありません")
	ErrEventNotLive           = apperror.BusinessLogic("イベントはチケット操作を受け付けていません")
	ErrOptimisticLockConflict = apperror.Conflict("楽観的ロックの競合が発生しました")
)
