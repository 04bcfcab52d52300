package ticket

import "github.com/sanosuguru/go-ticket-sales/internal/pkg/apperror"

// Ticket ドメインのエラー定義
var (
	ErrTicketNotFound         = apperror.NotFound("チケットが見つかりません")
	ErrTicketAlreadySold      = apperror.Conflict("チケットは既に売約済みです")
	ErrTicketAlreadyHeld      = apperror.Conflict("チケットは既にカートに保留されています")
	ErrTicketNotHeld          = apperror.Validation("チケットはカートに保留されていません")
	ErrTicketNotSold          = apperror.Validation("チケットは売約されていません")
	ErrEventIDRequired        = apperror.Validation("イベントIDは必須です")
	ErrSectionIDRequired      = apperror.Validation("セクションIDは必須です")
	ErrPurchaserRequired      = apperror.Validation("購入者は必須です")
	ErrInvalidPrice           = apperror.Validation("価格は0以上である必要があります")
	ErrInvalidTicketType      = apperror.Validation("不明なチケット種別です")
	ErrNotEnoughSeats         = apperror.Validation("発券数に対して利用可能な座席が不足しています")
	ErrNotEnoughCapacity      = apperror.Validation("発券数が会場の収容人数を超えています")
	ErrOptimisticLockConflict = apperror.Conflict("楽観的ロックの競合が発生しました")
)
