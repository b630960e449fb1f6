package github

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/go-github/v67/github"
)

// ListIssuesByLabels は指定されたすべてのラベルを持つオープンなIssueを取得する
// ラベルはAND条件で評価される
func (c *Client) ListIssuesByLabels(ctx context.Context, owner, repo string, labels []string) ([]*github.Issue, error) {
	if owner == "" {
		return nil, errors.New("owner is required")
	}
	if repo == "" {
		return nil, errors.New("repo is required")
	}

	opts := &github.IssueListByRepoOptions{
		Labels: labels,
		State:  "open",
		ListOptions: github.ListOptions{
			PerPage: 100,
		},
	}

	var allIssues []*github.Issue
	for {
		issues, resp, err := c.github.Issues.ListByRepo(ctx, owner, repo, opts)
		if err != nil {
			return nil, ClassifyError(err)
		}
		allIssues = append(allIssues, issues...)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allIssues, nil
}

// ListIssuesByAnyLabel は指定されたラベルのいずれかを持つオープンなIssueを取得する
// ラベルごとに取得し、Issue番号で重複を除去する
func (c *Client) ListIssuesByAnyLabel(ctx context.Context, owner, repo string, labels []string) ([]*github.Issue, error) {
	if owner == "" {
		return nil, errors.New("owner is required")
	}
	if repo == "" {
		return nil, errors.New("repo is required")
	}
	if len(labels) == 0 {
		return nil, errors.New("at least one label is required")
	}

	seen := make(map[int]bool)
	var allIssues []*github.Issue

	for _, label := range labels {
		issues, err := c.ListIssuesByLabels(ctx, owner, repo, []string{label})
		if err != nil {
			return nil, fmt.Errorf("failed to list issues with label %s: %w", label, err)
		}

		for _, issue := range issues {
			number := issue.GetNumber()
			if seen[number] {
				continue
			}
			seen[number] = true
			allIssues = append(allIssues, issue)
		}
	}

	return allIssues, nil
}

// GetIssue は指定された番号のIssueを取得する
func (c *Client) GetIssue(ctx context.Context, owner, repo string, issueNumber int) (*github.Issue, error) {
	if owner == "" {
		return nil, errors.New("owner is required")
	}
	if repo == "" {
		return nil, errors.New("repo is required")
	}
	if issueNumber <= 0 {
		return nil, errors.New("issue number must be positive")
	}

	issue, _, err := c.github.Issues.Get(ctx, owner, repo, issueNumber)
	if err != nil {
		return nil, ClassifyError(err)
	}

	return issue, nil
}
