package github

import (
	"context"
	"errors"

	"github.com/google/go-github/v67/github"
)

// ListLabels はリポジトリの全ラベルを取得する
func (c *Client) ListLabels(ctx context.Context, owner, repo string) ([]*github.Label, error) {
	if owner == "" {
		return nil, errors.New("owner is required")
	}
	if repo == "" {
		return nil, errors.New("repo is required")
	}

	opts := &github.ListOptions{
		PerPage: 100,
	}

	var allLabels []*github.Label
	for {
		labels, resp, err := c.github.Issues.ListLabels(ctx, owner, repo, opts)
		if err != nil {
			return nil, ClassifyError(err)
		}
		allLabels = append(allLabels, labels...)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allLabels, nil
}

// ListLabelsByIssue は指定されたIssueのラベルを取得する
func (c *Client) ListLabelsByIssue(ctx context.Context, owner, repo string, issueNumber int) ([]*github.Label, error) {
	if owner == "" {
		return nil, errors.New("owner is required")
	}
	if repo == "" {
		return nil, errors.New("repo is required")
	}
	if issueNumber <= 0 {
		return nil, errors.New("issue number must be positive")
	}

	opts := &github.ListOptions{
		PerPage: 100,
	}

	var allLabels []*github.Label
	for {
		labels, resp, err := c.github.Issues.ListLabelsByIssue(ctx, owner, repo, issueNumber, opts)
		if err != nil {
			return nil, ClassifyError(err)
		}
		allLabels = append(allLabels, labels...)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allLabels, nil
}

// CreateLabel はリポジトリにラベルを作成する
func (c *Client) CreateLabel(ctx context.Context, owner, repo string, label *github.Label) (*github.Label, error) {
	if owner == "" {
		return nil, errors.New("owner is required")
	}
	if repo == "" {
		return nil, errors.New("repo is required")
	}
	if label == nil || label.GetName() == "" {
		return nil, errors.New("label name is required")
	}

	created, _, err := c.github.Issues.CreateLabel(ctx, owner, repo, label)
	if err != nil {
		return nil, ClassifyError(err)
	}

	return created, nil
}

// AddLabel はIssueにラベルを追加する
func (c *Client) AddLabel(ctx context.Context, owner, repo string, issueNumber int, label string) error {
	if owner == "" {
		return errors.New("owner is required")
	}
	if repo == "" {
		return errors.New("repo is required")
	}
	if issueNumber <= 0 {
		return errors.New("issue number must be positive")
	}
	if label == "" {
		return errors.New("label is required")
	}

	_, _, err := c.github.Issues.AddLabelsToIssue(ctx, owner, repo, issueNumber, []string{label})
	if err != nil {
		return ClassifyError(err)
	}

	return nil
}

// RemoveLabel はIssueからラベルを削除する
// ラベルが付与されていない場合（404）は成功として扱う
func (c *Client) RemoveLabel(ctx context.Context, owner, repo string, issueNumber int, label string) error {
	if owner == "" {
		return errors.New("owner is required")
	}
	if repo == "" {
		return errors.New("repo is required")
	}
	if issueNumber <= 0 {
		return errors.New("issue number must be positive")
	}
	if label == "" {
		return errors.New("label is required")
	}

	_, err := c.github.Issues.RemoveLabelForIssue(ctx, owner, repo, issueNumber, label)
	if err != nil {
		classified := ClassifyError(err)
		// 既に削除されている場合は冪等に成功とする
		if IsNotFoundError(classified) {
			if c.logger != nil {
				c.logger.Debug("Label already absent",
					"issue_number", issueNumber,
					"label", label,
				)
			}
			return nil
		}
		return classified
	}

	return nil
}
