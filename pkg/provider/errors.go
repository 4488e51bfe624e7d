package provider

import (
	"errors"
	"fmt"
	"time"
)

// プロバイダ境界のエラー分類です。リトライ可否はこの型で判定され、
// 生のプロバイダエラーが呼び出し側へそのまま漏れることはありません。

// AuthError は認証情報が不正または欠落していることを示します。リトライ不可。
type AuthError struct {
	Provider string
	Err      error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: authentication failed: %v", e.Provider, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// RateLimitedError はレート制限を示します。リトライ可。
// RetryAfter はプロバイダが提示した待機時間で、0 の場合はヒントなしです。
type RateLimitedError struct {
	Provider   string
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("%s: rate limited: %v", e.Provider, e.Err)
}

func (e *RateLimitedError) Unwrap() error { return e.Err }

// InvalidRequestError は入力不正を示します。リトライしても結果は変わりません。
type InvalidRequestError struct {
	Provider string
	Err      error
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("%s: invalid request: %v", e.Provider, e.Err)
}

func (e *InvalidRequestError) Unwrap() error { return e.Err }

// UnavailableError はネットワーク障害・タイムアウト等の一時的失敗を示します。リトライ可。
type UnavailableError struct {
	Provider string
	Err      error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s: provider unavailable: %v", e.Provider, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// UnsupportedCapabilityError は、プロバイダが対応していない種別の要求を
// ネットワーク呼び出し前に拒否したことを示します。リトライ不可。
type UnsupportedCapabilityError struct {
	Provider   string
	Capability Capability
}

func (e *UnsupportedCapabilityError) Error() string {
	return fmt.Sprintf("%s: capability %q not supported", e.Provider, e.Capability)
}

// IsRetryable はリトライで結果が変わり得るエラーかどうかを返します。
func IsRetryable(err error) bool {
	var rl *RateLimitedError
	var ua *UnavailableError
	return errors.As(err, &rl) || errors.As(err, &ua)
}

// RetryAfterHint はプロバイダ提示の待機時間を取り出します。ヒントがない場合は 0 です。
func RetryAfterHint(err error) time.Duration {
	var rl *RateLimitedError
	if errors.As(err, &rl) {
		return rl.RetryAfter
	}
	return 0
}
