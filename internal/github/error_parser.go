package github

import (
	"context"
	"errors"
	"net"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-github/v67/github"
)

var (
	// Regular expressions for classifying API errors by message
	rateLimitRegex   = regexp.MustCompile(`(?i)(rate limit|API rate limit exceeded|You have exceeded a secondary rate limit)`)
	notFoundRegex    = regexp.MustCompile(`(?i)(not found|could not resolve to|does not have the label)`)
	authRegex        = regexp.MustCompile(`(?i)(authentication|unauthorized|bad credentials|requires authentication)`)
	networkRegex     = regexp.MustCompile(`(?i)(timeout|connection refused|network|dial tcp)`)
	serverErrorRegex = regexp.MustCompile(`(?i)(internal server error|server error|502|503|504)`)
	httpStatusRegex  = regexp.MustCompile(`(?i)(?:http\s+|:\s*)(\d{3})\b`)
	retryAfterRegex  = regexp.MustCompile(`(?i)retry.?after:\s*(\d+)`)
)

// ClassifyError はAPIエラーを構造化されたGitHubErrorに分類する
// go-githubの型付きエラーを優先し、判別できない場合はメッセージから推測する
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}

	// 既に分類済みの場合はそのまま返す
	var ghErr *GitHubError
	if errors.As(err, &ghErr) {
		return err
	}

	// コンテキストのキャンセルは分類しない
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	// go-githubの型付きエラー
	var rateLimitErr *github.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return &GitHubError{
			Type:        ErrorTypeRateLimit,
			StatusCode:  http.StatusForbidden,
			Message:     rateLimitErr.Message,
			RetryAfter:  time.Until(rateLimitErr.Rate.Reset.Time),
			OriginalErr: err,
		}
	}

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		classified := &GitHubError{
			Type:        ErrorTypeRateLimit,
			StatusCode:  http.StatusForbidden,
			Message:     abuseErr.Message,
			OriginalErr: err,
		}
		if abuseErr.RetryAfter != nil {
			classified.RetryAfter = *abuseErr.RetryAfter
		}
		return classified
	}

	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		return classifyByStatusCode(respErr.Response.StatusCode, respErr.Message, err)
	}

	// ネットワークエラー
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &GitHubError{
			Type:        ErrorTypeNetworkTimeout,
			Message:     err.Error(),
			OriginalErr: err,
		}
	}

	// メッセージからの推測
	return ParseAPIError(err.Error(), err)
}

// classifyByStatusCode はHTTPステータスコードからエラー種別を決定する
func classifyByStatusCode(statusCode int, message string, err error) *GitHubError {
	classified := &GitHubError{
		StatusCode:  statusCode,
		Message:     message,
		OriginalErr: err,
	}

	switch {
	case statusCode == http.StatusUnauthorized:
		classified.Type = ErrorTypeAuthentication
	case statusCode == http.StatusForbidden:
		// 403はレート制限の可能性もある
		if rateLimitRegex.MatchString(message) {
			classified.Type = ErrorTypeRateLimit
		} else {
			classified.Type = ErrorTypeAuthentication
		}
	case statusCode == http.StatusNotFound || statusCode == http.StatusGone:
		classified.Type = ErrorTypeNotFound
	case statusCode == http.StatusTooManyRequests:
		classified.Type = ErrorTypeRateLimit
	case statusCode >= 500 && statusCode < 600:
		classified.Type = ErrorTypeServerError
	default:
		classified.Type = ErrorTypeUnknown
	}

	return classified
}

// ParseAPIError はエラーメッセージを解析して構造化されたGitHubErrorを返す
func ParseAPIError(errOutput string, err error) *GitHubError {
	ghErr := &GitHubError{
		Message:     strings.TrimSpace(errOutput),
		OriginalErr: err,
	}

	// ステータスコードを抽出
	if matches := httpStatusRegex.FindStringSubmatch(errOutput); len(matches) > 1 {
		if statusCode, convErr := strconv.Atoi(matches[1]); convErr == nil && statusCode >= 100 && statusCode < 600 {
			ghErr.StatusCode = statusCode
		}
	}

	// メッセージの内容からエラー種別を決定
	switch {
	case rateLimitRegex.MatchString(errOutput):
		ghErr.Type = ErrorTypeRateLimit
		if ghErr.StatusCode == 0 {
			ghErr.StatusCode = http.StatusTooManyRequests
		}
		// retry-afterの値を抽出
		if matches := retryAfterRegex.FindStringSubmatch(errOutput); len(matches) > 1 {
			if seconds, convErr := strconv.Atoi(matches[1]); convErr == nil {
				ghErr.RetryAfter = time.Duration(seconds) * time.Second
			}
		}

	case authRegex.MatchString(errOutput):
		ghErr.Type = ErrorTypeAuthentication
		if ghErr.StatusCode == 0 {
			ghErr.StatusCode = http.StatusUnauthorized
		}

	case notFoundRegex.MatchString(errOutput):
		ghErr.Type = ErrorTypeNotFound
		if ghErr.StatusCode == 0 {
			ghErr.StatusCode = http.StatusNotFound
		}

	case networkRegex.MatchString(errOutput):
		ghErr.Type = ErrorTypeNetworkTimeout

	case serverErrorRegex.MatchString(errOutput):
		ghErr.Type = ErrorTypeServerError
		if ghErr.StatusCode == 0 {
			ghErr.StatusCode = http.StatusInternalServerError
		}

	default:
		ghErr.Type = ErrorTypeUnknown
		if ghErr.StatusCode >= 500 && ghErr.StatusCode < 600 {
			ghErr.Type = ErrorTypeServerError
		}
	}

	return ghErr
}
