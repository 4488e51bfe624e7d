package session

import "time"

// RetryPolicy はリトライ可能エラーに対する指数バックオフの設定です。
// MaxAttempts は初回呼び出しを含む総試行回数の上限です。
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryPolicy は画像生成 API 向けの既定ポリシーを返します。
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    30 * time.Second,
	}
}

// Backoff は attempt 回目（1始まり）の失敗後に待つ時間を返します。
// プロバイダ提示のヒントがあればそちらを優先し、いずれも MaxDelay で
// 頭打ちにします。基本遅延は試行ごとに倍加します。
func (p RetryPolicy) Backoff(attempt int, hint time.Duration) time.Duration {
	if hint > 0 {
		return min(hint, p.MaxDelay)
	}
	d := p.BaseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	return min(d, p.MaxDelay)
}
