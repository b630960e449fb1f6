package github

import (
	"net/http"
	"strconv"
	"sync"
)

// headerRateLimitRemaining はGitHub APIが全レスポンスに付与するレート制限残数ヘッダー
const headerRateLimitRemaining = "X-RateLimit-Remaining"

// rateTracker は各レスポンスのレート制限ヘッダーを記録するラウンドトリッパー
// 追加のAPI呼び出しをせず、通常のリクエストに相乗りして残数を追跡する
type rateTracker struct {
	base http.RoundTripper

	mu        sync.Mutex
	remaining int
}

func newRateTracker(base http.RoundTripper) *rateTracker {
	if base == nil {
		base = http.DefaultTransport
	}
	return &rateTracker{base: base}
}

// RoundTrip はリクエストを実行し、X-RateLimit-Remainingヘッダーを記録する
func (rt *rateTracker) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := rt.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if v := resp.Header.Get(headerRateLimitRemaining); v != "" {
		if remaining, convErr := strconv.Atoi(v); convErr == nil {
			rt.mu.Lock()
			rt.remaining = remaining
			rt.mu.Unlock()
		}
	}

	return resp, nil
}

// Remaining は直近のレスポンスで通知された残りリクエスト数を返す
// まだレスポンスを受け取っていない場合は0を返す
func (rt *rateTracker) Remaining() int {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	return rt.remaining
}
