package cart

import "github.com/sanosuguru/go-ticket-sales/internal/pkg/apperror"

// Cart ドメインのエラー定義
var (
	ErrCartNotFound         = apperror.NotFound("カートが見つかりません")
	ErrCustomerRequired     = apperror.Validation("顧客は必須です")
	ErrEventRequired        = apperror.Validation("イベントは必須です")
	ErrTicketAlreadyInCart  = apperror.Conflict("チケットは既にカートに入っています")
	ErrTicketNotInCart      = apperror.Validation("チケットはカートに入っていません")
	ErrEventMismatch        = apperror.BusinessLogic("カートには同一イベントのチケットのみ追加できます")
	ErrCartAlreadyProcessed = apperror.BusinessLogic("このカートの決済は既に完了しています")
	ErrEmptyCartTotal       = apperror.BusinessLogic("決済できません。合計金額が不正です")

	// カード検証エラー
	ErrInvalidCardNumber  = apperror.Validation("カード番号が不正です。16桁の数字で入力してください")
	ErrCardHolderRequired = apperror.Validation("カード名義は必須です")
	ErrInvalidExpiryMonth = apperror.Validation("有効期限の月が不正です。1〜12で入力してください")
	ErrCardExpired        = apperror.Validation("カードの有効期限が切れています")
	ErrInvalidCVV         = apperror.Validation("CVVが不正です。3〜4桁の数字で入力してください")
)
