package github

import (
	"net/http"
	"strconv"
	"time"

	"github.com/douhashi/fuda/internal/logger"
)

// lowRateWarnThreshold を下回る残数を観測したら警告ログを出す
const lowRateWarnThreshold = 100

// apiTransport はGitHub API呼び出しの概要をデバッグログに出力するラウンドトリッパー
// Authorizationヘッダーの値はどのログにも含めない
type apiTransport struct {
	base http.RoundTripper
	log  logger.Logger
}

func newAPITransport(base http.RoundTripper, log logger.Logger) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &apiTransport{base: base, log: log}
}

// RoundTrip はリクエストを実行し、メソッド・パス・ステータス・所要時間を記録する
func (t *apiTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	t.log.Debug("GitHub API request",
		"method", req.Method,
		"path", req.URL.Path,
	)

	resp, err := t.base.RoundTrip(req)
	elapsed := time.Since(start)

	if err != nil {
		t.log.Error("GitHub API request failed",
			"method", req.Method,
			"path", req.URL.Path,
			"elapsed_ms", elapsed.Milliseconds(),
			"error", err,
		)
		return nil, err
	}

	fields := []interface{}{
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"elapsed_ms", elapsed.Milliseconds(),
	}

	if v := resp.Header.Get(headerRateLimitRemaining); v != "" {
		fields = append(fields, "rate_remaining", v)
		if remaining, convErr := strconv.Atoi(v); convErr == nil && remaining < lowRateWarnThreshold {
			t.log.Warn("GitHub API rate limit running low",
				"remaining", remaining,
				"path", req.URL.Path,
			)
		}
	}

	t.log.Debug("GitHub API response", fields...)

	return resp, nil
}
