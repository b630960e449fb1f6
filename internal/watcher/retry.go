package watcher

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	gogithub "github.com/google/go-github/v67/github"

	"github.com/douhashi/fuda/internal/github"
	"github.com/douhashi/fuda/internal/logger"
)

// RetryWithBackoff は指数バックオフでリトライしながら操作を実行する
// logはnilでもよく、その場合リトライの経過は記録されない
func RetryWithBackoff(ctx context.Context, log logger.Logger, maxRetries int, baseDelay time.Duration, operation func() error) error {
	if maxRetries <= 0 {
		maxRetries = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return fmt.Errorf("operation cancelled: %w", ctx.Err())
		default:
		}

		lastErr = operation()
		if lastErr == nil {
			return nil
		}
		if !IsRetryableError(lastErr) {
			return lastErr
		}
		if attempt == maxRetries {
			break
		}

		backoff := CalculateBackoff(attempt, baseDelay)

		// レート制限エラーが待機時間を指定している場合はそちらを優先する
		if wait, ok := HandleRateLimitError(lastErr); ok && wait > 0 {
			backoff = wait
		}

		if log != nil {
			log.Warn("Retrying operation",
				"attempt", attempt,
				"max_retries", maxRetries,
				"backoff", backoff.String(),
				"error", lastErr,
			)
		}

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return fmt.Errorf("operation cancelled during backoff: %w", ctx.Err())
		}
	}

	return fmt.Errorf("max retries (%d) exceeded: %w", maxRetries, lastErr)
}

// retryableResponseMessages はリトライに値するAPIエラーメッセージの部分文字列
var retryableResponseMessages = []string{
	"server error",
	"service unavailable",
	"bad gateway",
	"rate limit",
	"too many requests",
}

// retryableNetworkMessages は一時的なネットワーク障害を示す部分文字列
var retryableNetworkMessages = []string{
	"timeout",
	"Client.Timeout exceeded",
	"connection refused",
	"no such host",
}

// IsRetryableError はエラーがリトライに値するかを判定する
// 分類済みエラーは種別に従い、それ以外はgo-githubの型とメッセージで判定する
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var ghErr *github.GitHubError
	if errors.As(err, &ghErr) {
		return ghErr.IsRetryable()
	}

	var rateLimitErr *gogithub.RateLimitError
	var abuseErr *gogithub.AbuseRateLimitError
	if errors.As(err, &rateLimitErr) || errors.As(err, &abuseErr) {
		return true
	}

	var respErr *gogithub.ErrorResponse
	if errors.As(err, &respErr) {
		if containsAny(strings.ToLower(respErr.Message), retryableResponseMessages) {
			return true
		}
		return respErr.Response != nil && respErr.Response.StatusCode >= 500
	}

	return containsAny(err.Error(), retryableNetworkMessages)
}

func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// CalculateBackoff は指数バックオフの遅延時間を計算する
// baseDelay * 2^(attempt-1) に±20%のジッターを加え、1分を上限とする
func CalculateBackoff(attempt int, baseDelay time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	delay := float64(baseDelay) * math.Pow(2, float64(attempt-1))
	delay += delay * 0.2 * (rand.Float64()*2 - 1)

	if limit := float64(time.Minute); delay > limit {
		delay = limit
	}
	return time.Duration(delay)
}

// HandleRateLimitError はレート制限エラーから待機すべき時間を取り出す
// レート制限エラーでない場合や待機時間が決められない場合はfalseを返す
func HandleRateLimitError(err error) (time.Duration, bool) {
	// 分類済みエラーが待機時間を持っている場合はそれをそのまま使う
	var ghErr *github.GitHubError
	if errors.As(err, &ghErr) && ghErr.Type == github.ErrorTypeRateLimit && ghErr.RetryAfter > 0 {
		return ghErr.RetryAfter, true
	}

	var rateLimitErr *gogithub.RateLimitError
	if errors.As(err, &rateLimitErr) {
		reset := rateLimitErr.Rate.Reset.Time
		if !reset.IsZero() {
			// リセット時刻ちょうどの再発を避けるため1秒足す
			if wait := time.Until(reset); wait > 0 {
				return wait + time.Second, true
			}
		}
	}

	return 0, false
}
