package github

import (
	"context"

	"github.com/google/go-github/v67/github"
)

// GitHubClient はGitHub APIクライアントのインターフェース
type GitHubClient interface {
	GetRepository(ctx context.Context, owner, repo string) (*github.Repository, error)
	ListIssuesByLabels(ctx context.Context, owner, repo string, labels []string) ([]*github.Issue, error)
	ListIssuesByAnyLabel(ctx context.Context, owner, repo string, labels []string) ([]*github.Issue, error)
	GetIssue(ctx context.Context, owner, repo string, issueNumber int) (*github.Issue, error)
	ListLabels(ctx context.Context, owner, repo string) ([]*github.Label, error)
	ListLabelsByIssue(ctx context.Context, owner, repo string, issueNumber int) ([]*github.Label, error)
	CreateLabel(ctx context.Context, owner, repo string, label *github.Label) (*github.Label, error)
	AddLabel(ctx context.Context, owner, repo string, issueNumber int, label string) error
	RemoveLabel(ctx context.Context, owner, repo string, issueNumber int, label string) error
	GetRateLimit(ctx context.Context) (*github.RateLimits, error)
}

// LabelManagerInterface はリトライ付きラベル操作のインターフェース
type LabelManagerInterface interface {
	EnsureLabelsExistWithRetry(ctx context.Context, owner, repo string) error
	TransitionLabelWithRetry(ctx context.Context, owner, repo string, issueNumber int) (bool, error)
	TransitionLabelWithInfoWithRetry(ctx context.Context, owner, repo string, issueNumber int) (bool, *TransitionInfo, error)
	SetStatusWithRetry(ctx context.Context, owner, repo string, issueNumber int, status string) (*StatusChange, error)
}
