package venue

import "github.com/sanosuguru/go-ticket-sales/internal/pkg/apperror"

// Venue 階層ドメインのエラー定義
var (
	ErrVenueNotFound         = apperror.NotFound("会場が見つかりません")
	ErrSectionNotFound       = apperror.NotFound("セクションが見つかりません")
	ErrRowNotFound           = apperror.NotFound("列が見つかりません")
	ErrSeatNotFound          = apperror.NotFound("座席が見つかりません")
	ErrVenueNameRequired     = apperror.Validation("会場名は必須です")
	ErrVenueLocationRequired = apperror.Validation("会場の所在地は必須です")
	ErrVenueIDRequired       = apperror.Validation("会場IDは必須です")
	ErrSectionNameRequired   = apperror.Validation("セクション名は必須です")
	ErrSectionIDRequired     = apperror.Validation("セクションIDは必須です")
	ErrRowIDRequired         = apperror.Validation("列IDは必須です")
	ErrInvalidCapacity       = apperror.Validation("収容人数は1以上である必要があります")
	ErrInvalidSeatNumber     = apperror.Validation("座席番号は1以上である必要があります")
	ErrSectionNameTaken      = apperror.Conflict("同名のセクションが既に存在します")
	ErrSeatAlreadyReserved   = apperror.Conflict("座席は既に予約されています")
	ErrSeatNotReserved       = apperror.Validation("座席は予約されていません")
)
