package github

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/go-github/v67/github"
)

// LabelService defines the interface for GitHub label operations
type LabelService interface {
	ListLabelsByIssue(ctx context.Context, owner, repo string, number int, opts *github.ListOptions) ([]*github.Label, *github.Response, error)
	AddLabelsToIssue(ctx context.Context, owner, repo string, number int, labels []string) ([]*github.Label, *github.Response, error)
	RemoveLabelForIssue(ctx context.Context, owner, repo string, number int, label string) (*github.Response, error)
	ListLabels(ctx context.Context, owner, repo string, opts *github.ListOptions) ([]*github.Label, *github.Response, error)
	CreateLabel(ctx context.Context, owner, repo string, label *github.Label) (*github.Label, *github.Response, error)
}

// LabelDefinition defines a GitHub label with its properties
type LabelDefinition struct {
	Name        string
	Color       string
	Description string
}

// StatusChange represents the result of a status reconciliation
type StatusChange struct {
	Target  string   // The status label that should be present
	Added   bool     // Whether the target label was newly added
	Removed []string // Stale status labels that were removed
}

// Changed returns true if any label was actually modified
func (c *StatusChange) Changed() bool {
	return c.Added || len(c.Removed) > 0
}

// LabelNames overrides the label name used for each status.
// Empty fields fall back to the status prefix plus the status name.
type LabelNames struct {
	Queued  string
	Retry   string
	Running string
	Passed  string
	Failed  string
	Blocked string
}

// LabelManager manages status label operations and transitions
type LabelManager struct {
	client           LabelService
	prefix           string
	names            LabelNames
	statusNames      map[string]string
	labelDefinitions map[string]LabelDefinition
	transitionRules  map[string]string
}

// LabelManagerOption はLabelManagerの設定オプション
type LabelManagerOption func(*LabelManager)

// WithStatusPrefix はステータスラベルのプレフィックスを設定するオプション
func WithStatusPrefix(prefix string) LabelManagerOption {
	return func(lm *LabelManager) {
		lm.prefix = prefix
	}
}

// WithLabelNames は各ステータスに使うラベル名を上書きするオプション
// ラベル定義と遷移ルールの両方が上書き後の名前で構築される
func WithLabelNames(names LabelNames) LabelManagerOption {
	return func(lm *LabelManager) {
		lm.names = names
	}
}

// NewLabelManager creates a new LabelManager instance
func NewLabelManager(client LabelService, opts ...LabelManagerOption) *LabelManager {
	lm := &LabelManager{
		client:           client,
		prefix:           "status:",
		statusNames:      make(map[string]string),
		labelDefinitions: make(map[string]LabelDefinition),
		transitionRules:  make(map[string]string),
	}

	for _, opt := range opts {
		opt(lm)
	}

	// Initialize label definitions
	lm.initializeLabelDefinitions()

	// Initialize transition rules
	lm.initializeTransitionRules()

	return lm
}

// defineLabel registers one status label, using the override name when set
func (lm *LabelManager) defineLabel(status, override, color, description string) {
	name := override
	if name == "" {
		name = lm.prefix + status
	}
	lm.statusNames[status] = name
	lm.labelDefinitions[name] = LabelDefinition{
		Name:        name,
		Color:       color,
		Description: description,
	}
}

// initializeLabelDefinitions sets up the label definitions
func (lm *LabelManager) initializeLabelDefinitions() {
	// Trigger labels
	lm.defineLabel("queued", lm.names.Queued, "0052cc", "Waiting for a pipeline run")
	lm.defineLabel("retry", lm.names.Retry, "c5def5", "Queued again after a failed run")

	// In-progress labels
	lm.defineLabel("running", lm.names.Running, "fbca04", "Pipeline run in progress")

	// Terminal labels
	lm.defineLabel("passed", lm.names.Passed, "0e8a16", "Pipeline run succeeded")
	lm.defineLabel("failed", lm.names.Failed, "d93f0b", "Pipeline run failed")
	lm.defineLabel("blocked", lm.names.Blocked, "b60205", "Waiting on an external dependency")
}

// initializeTransitionRules sets up the label transition rules
func (lm *LabelManager) initializeTransitionRules() {
	lm.transitionRules[lm.statusNames["queued"]] = lm.statusNames["running"]
	lm.transitionRules[lm.statusNames["retry"]] = lm.statusNames["running"]
}

// GetLabelDefinitions returns all label definitions
func (lm *LabelManager) GetLabelDefinitions() map[string]LabelDefinition {
	return lm.labelDefinitions
}

// GetTransitionRules returns all transition rules
func (lm *LabelManager) GetTransitionRules() map[string]string {
	return lm.transitionRules
}

// ResolveStatusLabel はステータス名を完全なラベル名に解決する
// "passed" のような短縮形と、定義済みの完全なラベル名のどちらも受け付ける
func (lm *LabelManager) ResolveStatusLabel(status string) (string, error) {
	if status == "" {
		return "", fmt.Errorf("status is required")
	}

	if name, ok := lm.statusNames[status]; ok {
		return name, nil
	}
	if _, ok := lm.labelDefinitions[status]; ok {
		return status, nil
	}

	return "", fmt.Errorf("unknown status %q (known: %s)", status, strings.Join(lm.knownStatuses(), ", "))
}

// knownStatuses returns the known status names without the prefix, sorted by lifecycle
func (lm *LabelManager) knownStatuses() []string {
	ordered := []string{"queued", "retry", "running", "passed", "failed", "blocked"}
	statuses := make([]string, 0, len(ordered))
	for _, s := range ordered {
		if _, ok := lm.statusNames[s]; ok {
			statuses = append(statuses, s)
		}
	}
	return statuses
}

// isStatusLabel checks if a label carries the status prefix
func (lm *LabelManager) isStatusLabel(labelName string) bool {
	return strings.HasPrefix(labelName, lm.prefix)
}

// isInProgressLabel checks if a label is an in-progress label
func (lm *LabelManager) isInProgressLabel(labelName string) bool {
	return labelName == lm.statusNames["running"]
}

// EnsureLabelsExist ensures all required labels exist in the repository.
// Already existing labels are left untouched, so the operation is idempotent.
func (lm *LabelManager) EnsureLabelsExist(ctx context.Context, owner, repo string) error {
	// Get existing labels (paginated)
	existingLabelMap := make(map[string]bool)
	opts := &github.ListOptions{PerPage: 100}
	for {
		existingLabels, resp, err := lm.client.ListLabels(ctx, owner, repo, opts)
		if err != nil {
			return fmt.Errorf("failed to list repository labels: %w", ClassifyError(err))
		}
		for _, label := range existingLabels {
			existingLabelMap[label.GetName()] = true
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	// Create missing labels
	for _, labelDef := range lm.labelDefinitions {
		if existingLabelMap[labelDef.Name] {
			continue
		}

		newLabel := &github.Label{
			Name:        github.String(labelDef.Name),
			Color:       github.String(labelDef.Color),
			Description: github.String(labelDef.Description),
		}

		_, _, err := lm.client.CreateLabel(ctx, owner, repo, newLabel)
		if err != nil {
			// 他のプロセスが先に作成した場合は成功として扱う
			if isAlreadyExistsError(err) {
				continue
			}
			return fmt.Errorf("failed to create label %s: %w", labelDef.Name, ClassifyError(err))
		}
	}

	return nil
}

// isAlreadyExistsError checks if the error is a 422 already_exists validation error
func isAlreadyExistsError(err error) bool {
	var respErr *github.ErrorResponse
	if !errors.As(err, &respErr) {
		return false
	}
	for _, e := range respErr.Errors {
		if e.Code == "already_exists" {
			return true
		}
	}
	return false
}

// TransitionLabel transitions an issue from a trigger label to an in-progress label
func (lm *LabelManager) TransitionLabel(ctx context.Context, owner, repo string, issueNumber int) (bool, error) {
	transitioned, _, err := lm.TransitionLabelWithInfo(ctx, owner, repo, issueNumber)
	return transitioned, err
}

// TransitionLabelWithInfo transitions an issue from a trigger label to an
// in-progress label and returns transition info
func (lm *LabelManager) TransitionLabelWithInfo(ctx context.Context, owner, repo string, issueNumber int) (bool, *TransitionInfo, error) {
	// Get current labels
	labels, err := lm.listIssueLabels(ctx, owner, repo, issueNumber)
	if err != nil {
		return false, nil, fmt.Errorf("failed to list labels: %w", err)
	}

	// Check if already has an in-progress label
	for _, labelName := range labels {
		if lm.isInProgressLabel(labelName) {
			// Already in progress, skip transition
			return false, nil, nil
		}
	}

	// Find trigger label and perform transition
	for _, labelName := range labels {
		targetLabel, exists := lm.transitionRules[labelName]
		if !exists {
			continue
		}

		// Remove trigger label
		if _, err := lm.client.RemoveLabelForIssue(ctx, owner, repo, issueNumber, labelName); err != nil {
			classified := ClassifyError(err)
			// 既に削除済みの場合は遷移を続行する
			if !IsNotFoundError(classified) {
				return false, nil, fmt.Errorf("failed to remove label %s: %w", labelName, classified)
			}
		}

		// Add in-progress label
		if _, _, err := lm.client.AddLabelsToIssue(ctx, owner, repo, issueNumber, []string{targetLabel}); err != nil {
			// Try to restore the original label
			lm.client.AddLabelsToIssue(ctx, owner, repo, issueNumber, []string{labelName})
			return false, nil, fmt.Errorf("failed to add label %s: %w", targetLabel, ClassifyError(err))
		}

		return true, &TransitionInfo{
			From: labelName,
			To:   targetLabel,
		}, nil
	}

	// No trigger label found
	return false, nil, nil
}

// SetStatus はIssueのステータスラベルを宣言的に設定する
// 対象のラベルを追加してから、プレフィックスを共有する他のステータスラベルを削除する
// 追加を先に行うことで、処理中もIssueがステータスラベルを失わないようにする
func (lm *LabelManager) SetStatus(ctx context.Context, owner, repo string, issueNumber int, status string) (*StatusChange, error) {
	target, err := lm.ResolveStatusLabel(status)
	if err != nil {
		return nil, err
	}

	// Get current labels
	labels, err := lm.listIssueLabels(ctx, owner, repo, issueNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}

	change := &StatusChange{Target: target}

	hasTarget := false
	var stale []string
	for _, labelName := range labels {
		if labelName == target {
			hasTarget = true
			continue
		}
		if lm.isStatusLabel(labelName) {
			stale = append(stale, labelName)
		}
	}

	// 既に目的の状態なら何もしない
	if hasTarget && len(stale) == 0 {
		return change, nil
	}

	if !hasTarget {
		if _, _, err := lm.client.AddLabelsToIssue(ctx, owner, repo, issueNumber, []string{target}); err != nil {
			return nil, fmt.Errorf("failed to add label %s: %w", target, ClassifyError(err))
		}
		change.Added = true
	}

	for _, labelName := range stale {
		if _, err := lm.client.RemoveLabelForIssue(ctx, owner, repo, issueNumber, labelName); err != nil {
			classified := ClassifyError(err)
			// 既に削除されている場合は冪等に成功とする
			if IsNotFoundError(classified) {
				continue
			}
			return change, fmt.Errorf("failed to remove label %s: %w", labelName, classified)
		}
		change.Removed = append(change.Removed, labelName)
	}

	return change, nil
}

// listIssueLabels retrieves all label names on an issue (paginated)
func (lm *LabelManager) listIssueLabels(ctx context.Context, owner, repo string, issueNumber int) ([]string, error) {
	var names []string
	opts := &github.ListOptions{PerPage: 100}
	for {
		labels, resp, err := lm.client.ListLabelsByIssue(ctx, owner, repo, issueNumber, opts)
		if err != nil {
			return nil, ClassifyError(err)
		}
		for _, label := range labels {
			names = append(names, label.GetName())
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return names, nil
}
