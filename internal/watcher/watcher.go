package watcher

import (
	"context"
	"errors"
	"sync"
	"time"

	gogithub "github.com/google/go-github/v67/github"

	"github.com/douhashi/fuda/internal/github"
	"github.com/douhashi/fuda/internal/logger"
	"github.com/douhashi/fuda/internal/metrics"
)

var _ metrics.PollSource = (*IssueWatcher)(nil)

// defaultPollInterval はポーリング間隔の未指定時の値
const defaultPollInterval = 10 * time.Second

// IssueWatcher は指定されたラベルを持つオープンなIssueをポーリングで監視する
type IssueWatcher struct {
	client          github.GitHubClient
	manager         github.LabelManagerInterface
	transitionRules map[string]string
	owner           string
	repo            string
	labels          []string
	statusPrefix    string
	pollInterval    time.Duration
	logger          logger.Logger

	mu            sync.RWMutex
	seenIssues    map[int]bool
	issueLabels   map[int][]string
	trackChanges  bool
	eventNotifier func(event IssueEvent)

	pollErrors int64
	lastPoll   time.Time

	metrics *TransitionMetrics
}

// NewIssueWatcher は新しいIssueWatcherを作成する
// pollIntervalが0の場合はデフォルトの10秒を使用する
func NewIssueWatcher(client github.GitHubClient, owner, repo string, labels []string, pollInterval time.Duration, log logger.Logger) (*IssueWatcher, error) {
	if client == nil {
		return nil, errors.New("client is required")
	}
	if owner == "" {
		return nil, errors.New("owner is required")
	}
	if repo == "" {
		return nil, errors.New("repo is required")
	}
	if len(labels) == 0 {
		return nil, errors.New("at least one label is required")
	}
	if log == nil {
		return nil, errors.New("logger is required")
	}
	if pollInterval == 0 {
		pollInterval = defaultPollInterval
	}
	if pollInterval < time.Second {
		return nil, errors.New("poll interval must be at least 1 second")
	}

	return &IssueWatcher{
		client:       client,
		owner:        owner,
		repo:         repo,
		labels:       labels,
		statusPrefix: "status:",
		pollInterval: pollInterval,
		logger:       log,
		seenIssues:   make(map[int]bool),
		issueLabels:  make(map[int][]string),
		metrics:      NewTransitionMetrics(),
	}, nil
}

// SetPollInterval はポーリング間隔を変更する
// Startの前に呼び出すこと
func (w *IssueWatcher) SetPollInterval(interval time.Duration) error {
	if interval < time.Second {
		return errors.New("poll interval must be at least 1 second")
	}
	w.pollInterval = interval
	return nil
}

// SetLabelManager はトリガーラベルの遷移を行うLabelManagerを設定する
// rulesはトリガーラベルと遷移先ラベルの対応で、ログとメトリクスの記録に使用する
func (w *IssueWatcher) SetLabelManager(manager github.LabelManagerInterface, rules map[string]string) {
	w.manager = manager
	w.transitionRules = rules
}

// SetStatusPrefix はラベル変更検出で遷移とみなすプレフィックスを設定する
func (w *IssueWatcher) SetStatusPrefix(prefix string) {
	if prefix != "" {
		w.statusPrefix = prefix
	}
}

// SetEventNotifier はラベル変更イベントの通知先を設定する
func (w *IssueWatcher) SetEventNotifier(notifier func(event IssueEvent)) {
	w.eventNotifier = notifier
}

// EnableLabelChangeTracking はポーリング間のラベル変更検出を有効にする
func (w *IssueWatcher) EnableLabelChangeTracking() {
	w.trackChanges = true
}

// Metrics はラベル遷移メトリクスを返す
func (w *IssueWatcher) Metrics() *TransitionMetrics {
	return w.metrics
}

// Start はIssueの監視を開始し、コンテキストがキャンセルされるまでブロックする
// callbackは初めて検出されたIssueごとに一度だけ呼ばれる
func (w *IssueWatcher) Start(ctx context.Context, callback func(issue *gogithub.Issue)) {
	w.logger.Info("Starting issue watcher",
		"owner", w.owner,
		"repo", w.repo,
		"labels", w.labels,
		"poll_interval", w.pollInterval.String(),
	)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	// 起動直後に一度チェックする
	w.checkIssues(ctx, callback)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Issue watcher stopped", "reason", ctx.Err())
			return
		case <-ticker.C:
			w.checkIssues(ctx, callback)
		}
	}
}

// checkIssues は監視対象のIssueを一覧取得して1件ずつ処理する
func (w *IssueWatcher) checkIssues(ctx context.Context, callback func(issue *gogithub.Issue)) {
	var issues []*gogithub.Issue
	err := RetryWithBackoff(ctx, w.logger, 3, time.Second, func() error {
		var listErr error
		issues, listErr = w.client.ListIssuesByAnyLabel(ctx, w.owner, w.repo, w.labels)
		return listErr
	})
	if err != nil {
		w.recordPollError()
		w.logger.Error("Failed to list issues",
			"owner", w.owner,
			"repo", w.repo,
			"labels", w.labels,
			"error", err,
		)
		return
	}

	w.recordPoll()

	for _, issue := range issues {
		if issue == nil || issue.Number == nil {
			continue
		}
		w.processIssue(ctx, issue, callback)
	}
}

// processIssue は1件のIssueに対してラベル変更検出、ラベル遷移、コールバックを行う
func (w *IssueWatcher) processIssue(ctx context.Context, issue *gogithub.Issue, callback func(issue *gogithub.Issue)) {
	number := issue.GetNumber()
	currentLabels := labelNames(issue)

	if w.trackChanges {
		w.mu.Lock()
		previousLabels, known := w.issueLabels[number]
		w.issueLabels[number] = currentLabels
		w.mu.Unlock()

		if known {
			events := DetectLabelChanges(previousLabels, currentLabels, number, issue.GetTitle(), w.owner, w.repo, w.statusPrefix)
			for _, event := range events {
				w.logger.Info("Label change detected", "event", event.String())
				if w.eventNotifier != nil {
					w.eventNotifier(event)
				}
			}
		}
	}

	if w.manager != nil {
		w.pickupIssue(ctx, issue)
	}

	w.mu.Lock()
	seen := w.seenIssues[number]
	w.seenIssues[number] = true
	w.mu.Unlock()

	if !seen && callback != nil {
		callback(issue)
	}
}

// pickupIssue はトリガーラベルを持つIssueを処理中ラベルに遷移させる
func (w *IssueWatcher) pickupIssue(ctx context.Context, issue *gogithub.Issue) {
	number := issue.GetNumber()

	trigger := ""
	for _, name := range labelNames(issue) {
		if _, ok := w.transitionRules[name]; ok {
			trigger = name
			break
		}
	}
	// 一覧取得後にラベルが変わった場合はトリガーラベルを持たないことがある
	if trigger == "" && len(w.transitionRules) > 0 {
		w.logger.Debug("No trigger label on issue, skipping pickup",
			"issue", number,
			"labels", labelNames(issue),
		)
		return
	}

	transitioned, info, err := w.manager.TransitionLabelWithInfoWithRetry(ctx, w.owner, w.repo, number)
	if err != nil {
		w.metrics.RecordFailure(trigger, w.transitionRules[trigger], failureReason(err))
		w.logger.Error("Failed to transition label",
			"issue", number,
			"from", trigger,
			"error", err,
		)
		return
	}
	if !transitioned {
		return
	}

	from, to := trigger, w.transitionRules[trigger]
	if info != nil {
		from, to = info.From, info.To
	}
	w.metrics.RecordSuccess(from, to)
	w.logger.Info("Label transitioned",
		"issue", number,
		"from", from,
		"to", to,
	)
}

// failureReason は集計用の失敗理由キーを返す
// 未分類のエラーはメッセージがばらつくため、unknownに集約してキーを有限に保つ
func failureReason(err error) string {
	var ghErr *github.GitHubError
	if errors.As(err, &ghErr) {
		return ghErr.Type.String()
	}
	return github.ErrorTypeUnknown.String()
}

func (w *IssueWatcher) recordPoll() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.lastPoll = time.Now()
}

func (w *IssueWatcher) recordPollError() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pollErrors++
}

// IssuesSeen はこれまでに検出した個別Issueの数を返す
func (w *IssueWatcher) IssuesSeen() int64 {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return int64(len(w.seenIssues))
}

// PollErrors は失敗したポーリングの回数を返す
func (w *IssueWatcher) PollErrors() int64 {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.pollErrors
}

// LastPollTime は最後に完了したポーリングの時刻を返す
func (w *IssueWatcher) LastPollTime() time.Time {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.lastPoll
}

// GetRateLimit は現在のAPIレート制限情報を取得する
func (w *IssueWatcher) GetRateLimit(ctx context.Context) (*gogithub.RateLimits, error) {
	return w.client.GetRateLimit(ctx)
}

// labelNames はIssueに付いているラベル名をスライスで返す
func labelNames(issue *gogithub.Issue) []string {
	names := make([]string, 0, len(issue.Labels))
	for _, label := range issue.Labels {
		if label == nil || label.Name == nil {
			continue
		}
		names = append(names, label.GetName())
	}
	return names
}
