package cart

import (
	"regexp"
	"time"
)

var (
	cardNumberPattern = regexp.MustCompile(`^\d{16}$`)
	cvvPattern        = regexp.MustCompile(`^\d{3,4}$`)
)

// CardDetails は決済に使用するカード情報を表す
type CardDetails struct {
	Number      string
	HolderName  string
	ExpiryMonth int
	ExpiryYear  int
	CVV         string
}

// Validate はカード情報の検証を行う
// 最初に違反した規則のエラーを返す純粋な検証で、状態は変更しない
func (d CardDetails) Validate(now time.Time) error {
	if !cardNumberPattern.MatchString(d.Number) {
		return ErrInvalidCardNumber
	}
	if isBlank(d.HolderName) {
		return ErrCardHolderRequired
	}
	if d.ExpiryMonth < 1 || d.ExpiryMonth > 12 {
		return ErrInvalidExpiryMonth
	}
	// 有効期限は年月単位で比較する（当月までは有効）
	expiry := time.Date(d.ExpiryYear, time.Month(d.ExpiryMonth), 1, 0, 0, 0, 0, time.UTC)
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	if expiry.Before(current) {
		return ErrCardExpired
	}
	if !cvvPattern.MatchString(d.CVV) {
		return ErrInvalidCVV
	}
	return nil
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' {
			return false
		}
	}
	return true
}
