package apperror

import (
	"errors"
	"fmt"
)

// Kind はエラーの分類を表す
type Kind int

const (
	// KindValidation は入力不備（呼び出し側が入力を修正して再試行できる）
	KindValidation Kind = iota + 1
	// KindNotFound は参照先エンティティが存在しない
	KindNotFound
	// KindConflict は一意性・予約不変条件に違反する変更
	KindConflict
	// KindBusinessLogic は構造的には正しいが業務ルールに違反する操作
	KindBusinessLogic
)

// Error は分類付きのアプリケーションエラー
type Error struct {
	kind Kind
	msg  string
}

func (e *Error) Error() string { return e.msg }

// Kind はエラーの分類を返す
func (e *Error) Kind() Kind { return e.kind }

// New は指定した分類のエラーを作成する
func New(kind Kind, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

// Validation は入力エラーを作成する
func Validation(msg string) *Error { return New(KindValidation, msg) }

// NotFound は未検出エラーを作成する
func NotFound(msg string) *Error { return New(KindNotFound, msg) }

// Conflict は競合エラーを作成する
func Conflict(msg string) *Error { return New(KindConflict, msg) }

// BusinessLogic は業務ルール違反エラーを作成する
func BusinessLogic(msg string) *Error { return New(KindBusinessLogic, msg) }

// Validationf は書式付きの入力エラーを作成する
func Validationf(format string, args ...any) *Error {
	return Validation(fmt.Sprintf(format, args...))
}

// KindOf はエラーチェーンから分類を取り出す
// 分類付きエラーが含まれない場合は 0 を返す
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.kind
	}
	return 0
}
