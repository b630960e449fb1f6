package github

import (
	"math/rand"
	"time"
)

// RetryStrategy はGitHub API操作のリトライ回数と待機時間を定義する
type RetryStrategy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Factor      float64
	Jitter      bool
}

// DefaultRetryStrategy は標準のリトライ戦略を返す
// 1秒開始で倍々に伸び、30秒で頭打ちになる
func DefaultRetryStrategy() RetryStrategy {
	return RetryStrategy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		MaxDelay:    30 * time.Second,
		Factor:      2.0,
		Jitter:      true,
	}
}

// GetRetryDelay は指定した試行回数の後に待つ時間を計算する
// Jitterが有効な場合は最大25%の揺らぎを加えて同時リトライの集中を避ける
func (rs *RetryStrategy) GetRetryDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}

	delay := float64(rs.BaseDelay)
	limit := float64(rs.MaxDelay)
	for i := 1; i < attempt && delay < limit; i++ {
		delay *= rs.Factor
	}
	if delay > limit {
		delay = limit
	}

	if rs.Jitter && delay > 0 {
		delay += rand.Float64() * 0.25 * delay
	}

	return time.Duration(delay)
}
