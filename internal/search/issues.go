package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shurcooL/githubv4"
)

// 検索APIが返す結果は最大1000件（100件 x 10ページ）
const maxSearchPages = 10

// Issue は検索結果のIssueを表す
type Issue struct {
	Number    int
	Title     string
	State     string
	URL       string
	Labels    []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasLabel はIssueが指定したラベルを持つかを返す
func (i Issue) HasLabel(name string) bool {
	for _, label := range i.Labels {
		if label == name {
			return true
		}
	}
	return false
}

type graphqlIssue struct {
	Number    int
	Title     string
	State     githubv4.IssueState
	URL       githubv4.URI
	CreatedAt time.Time
	UpdatedAt time.Time

	Labels struct {
		Nodes []struct {
			Name string
		}
	} `graphql:"labels(first: 50)"`
}

func convertIssue(api graphqlIssue) Issue {
	issue := Issue{
		Number:    api.Number,
		Title:     api.Title,
		State:     string(api.State),
		CreatedAt: api.CreatedAt,
		UpdatedAt: api.UpdatedAt,
		Labels:    []string{},
	}

	if api.URL.URL != nil {
		issue.URL = api.URL.String()
	}

	for _, label := range api.Labels.Nodes {
		issue.Labels = append(issue.Labels, label.Name)
	}

	return issue
}

type searchIssuesQuery struct {
	RateLimit rateLimit
	Search    struct {
		IssueCount int
		Nodes      []struct {
			Issue graphqlIssue `graphql:"... on Issue"`
		}
		PageInfo struct {
			EndCursor   githubv4.String
			HasNextPage bool
		}
	} `graphql:"search(query: $query, type: ISSUE, first: 100, after: $cursor)"`
}

// SearchIssues はGitHubの検索構文でIssueを検索する
// 例: repo:douhashi/fuda is:issue is:open label:"status:queued"
// カーソルページネーションで全ページを取得する
func (c *Client) SearchIssues(ctx context.Context, query string) ([]Issue, error) {
	if query == "" {
		return nil, errors.New("search query is required")
	}

	variables := map[string]interface{}{
		"query":  githubv4.String(query),
		"cursor": (*githubv4.String)(nil),
	}

	issues := []Issue{}

	for page := 1; page <= maxSearchPages; page++ {
		var q searchIssuesQuery
		if err := c.graphql.Query(ctx, &q, variables); err != nil {
			return nil, fmt.Errorf("search issues: %w", err)
		}

		c.countRequest(query, q.RateLimit)

		if c.logger != nil {
			c.logger.Debug("GraphQL search page",
				"query", query,
				"page", page,
				"count", len(q.Search.Nodes),
				"cost", q.RateLimit.Cost,
				"remaining", q.RateLimit.Remaining,
			)
		}

		for _, node := range q.Search.Nodes {
			issues = append(issues, convertIssue(node.Issue))
		}

		if !q.Search.PageInfo.HasNextPage {
			break
		}
		variables["cursor"] = q.Search.PageInfo.EndCursor
	}

	return issues, nil
}

// IssuesByLabel は指定したラベルを持つオープンなIssueを検索する
func (c *Client) IssuesByLabel(ctx context.Context, owner, repo, label string) ([]Issue, error) {
	if owner == "" {
		return nil, errors.New("owner is required")
	}
	if repo == "" {
		return nil, errors.New("repo is required")
	}
	if label == "" {
		return nil, errors.New("label is required")
	}

	query := fmt.Sprintf("repo:%s/%s is:issue is:open label:%q", owner, repo, label)
	return c.SearchIssues(ctx, query)
}
