package github

import (
	"errors"
	"fmt"
	"time"
)

// GitHubErrorType はGitHub APIエラーの分類
// 文字列型なのでログや集計キーにそのまま使える
type GitHubErrorType string

const (
	ErrorTypeRateLimit      GitHubErrorType = "rate_limit"
	ErrorTypeNetworkTimeout GitHubErrorType = "network_timeout"
	ErrorTypeAuthentication GitHubErrorType = "authentication"
	ErrorTypeNotFound       GitHubErrorType = "not_found"
	ErrorTypeServerError    GitHubErrorType = "server_error"
	ErrorTypeUnknown        GitHubErrorType = "unknown"
)

func (t GitHubErrorType) String() string {
	return string(t)
}

// GitHubError は分類済みのGitHub APIエラー
// ClassifyErrorが生成し、リトライ判定や失敗理由の集計に使われる
type GitHubError struct {
	Type        GitHubErrorType
	StatusCode  int
	Message     string
	RetryAfter  time.Duration
	OriginalErr error
}

// Error はerrorインターフェースを実装する
// Messageには元エラーの内容が含まれるため、OriginalErrは重複して出力しない
func (e *GitHubError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("github: %s (%s, status %d)", e.Message, e.Type, e.StatusCode)
	}
	return fmt.Sprintf("github: %s (%s)", e.Message, e.Type)
}

// Unwrap は分類前の元エラーを返す
func (e *GitHubError) Unwrap() error {
	return e.OriginalErr
}

// IsRetryable はリトライで解決しうるエラーかどうかを返す
func (e *GitHubError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeRateLimit, ErrorTypeNetworkTimeout, ErrorTypeServerError:
		return true
	default:
		return false
	}
}

// IsRateLimitError はレート制限エラーかどうかを判定する
func IsRateLimitError(err error) bool {
	var ghErr *GitHubError
	return errors.As(err, &ghErr) && ghErr.Type == ErrorTypeRateLimit
}

// IsNotFoundError は404エラーかどうかを判定する
func IsNotFoundError(err error) bool {
	var ghErr *GitHubError
	return errors.As(err, &ghErr) && ghErr.Type == ErrorTypeNotFound
}

// IsAuthenticationError は認証エラーかどうかを判定する
func IsAuthenticationError(err error) bool {
	var ghErr *GitHubError
	return errors.As(err, &ghErr) && ghErr.Type == ErrorTypeAuthentication
}

// IsRetryableError はリトライで解決しうるエラーかどうかを判定する
// GitHubError以外のエラーはリトライ対象外とみなす
func IsRetryableError(err error) bool {
	var ghErr *GitHubError
	return errors.As(err, &ghErr) && ghErr.IsRetryable()
}
