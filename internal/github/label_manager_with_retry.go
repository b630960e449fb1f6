package github

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// LabelManagerWithRetry はLabelManagerの各操作にリトライを付加する
type LabelManagerWithRetry struct {
	*LabelManager
	strategy RetryStrategy
}

// NewLabelManagerWithRetry は新しいLabelManagerWithRetryを作成する
// maxRetriesは総試行回数、retryDelayは初回リトライまでの待機時間
func NewLabelManagerWithRetry(client LabelService, maxRetries int, retryDelay time.Duration, opts ...LabelManagerOption) *LabelManagerWithRetry {
	strategy := DefaultRetryStrategy()
	strategy.BaseDelay = retryDelay
	strategy.MaxAttempts = maxRetries
	if strategy.MaxAttempts < 1 {
		strategy.MaxAttempts = 1
	}

	return &LabelManagerWithRetry{
		LabelManager: NewLabelManager(client, opts...),
		strategy:     strategy,
	}
}

// TransitionLabelWithRetry はリトライ付きでラベル遷移を実行する
func (lm *LabelManagerWithRetry) TransitionLabelWithRetry(ctx context.Context, owner, repo string, issueNumber int) (bool, error) {
	transitioned, _, err := lm.TransitionLabelWithInfoWithRetry(ctx, owner, repo, issueNumber)
	return transitioned, err
}

// TransitionLabelWithInfoWithRetry はリトライ付きでラベル遷移を実行し、遷移内容も返す
func (lm *LabelManagerWithRetry) TransitionLabelWithInfoWithRetry(ctx context.Context, owner, repo string, issueNumber int) (bool, *TransitionInfo, error) {
	var (
		transitioned bool
		info         *TransitionInfo
	)

	err := lm.retry(ctx, func() error {
		var opErr error
		transitioned, info, opErr = lm.TransitionLabelWithInfo(ctx, owner, repo, issueNumber)
		return opErr
	})
	if err != nil {
		return false, info, err
	}

	return transitioned, info, nil
}

// SetStatusWithRetry はリトライ付きでステータスラベルを付け替える
func (lm *LabelManagerWithRetry) SetStatusWithRetry(ctx context.Context, owner, repo string, issueNumber int, status string) (*StatusChange, error) {
	var change *StatusChange

	err := lm.retry(ctx, func() error {
		var opErr error
		change, opErr = lm.SetStatus(ctx, owner, repo, issueNumber, status)
		return opErr
	})
	if err != nil {
		return nil, err
	}

	return change, nil
}

// EnsureLabelsExistWithRetry はリトライ付きでステータスラベル一式を作成する
func (lm *LabelManagerWithRetry) EnsureLabelsExistWithRetry(ctx context.Context, owner, repo string) error {
	return lm.retry(ctx, func() error {
		return lm.EnsureLabelsExist(ctx, owner, repo)
	})
}

// retry は操作をリトライ戦略に従って実行する
// 待機時間は指数バックオフで計算し、エラーがRetryAfterを持つ場合はそちらを優先する
func (lm *LabelManagerWithRetry) retry(ctx context.Context, operation func() error) error {
	var lastErr error

	for attempt := 1; attempt <= lm.strategy.MaxAttempts; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}

		lastErr = err

		if !isRetryableOperationError(err) {
			return err
		}

		if attempt == lm.strategy.MaxAttempts {
			break
		}

		delay := lm.strategy.GetRetryDelay(attempt)
		var ghErr *GitHubError
		if errors.As(err, &ghErr) && ghErr.RetryAfter > 0 {
			delay = ghErr.RetryAfter
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return fmt.Errorf("failed after %d attempts: %w", lm.strategy.MaxAttempts, lastErr)
}

// isRetryableOperationError はリトライで解決しうるエラーかを判定する
// 分類済みエラーは種別に従い、種別が不明な場合はメッセージから推測する
func isRetryableOperationError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var ghErr *GitHubError
	if errors.As(err, &ghErr) && ghErr.Type != ErrorTypeUnknown {
		return ghErr.IsRetryable()
	}

	errMsg := strings.ToLower(err.Error())
	nonRetryableMessages := []string{
		"not found",
		"permission denied",
		"unauthorized",
		"forbidden",
		"invalid",
		"unknown status",
	}

	for _, msg := range nonRetryableMessages {
		if strings.Contains(errMsg, msg) {
			return false
		}
	}

	return true
}
