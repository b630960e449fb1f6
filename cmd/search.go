package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/douhashi/fuda/internal/config"
	"github.com/douhashi/fuda/internal/search"
)

// issueSearcher はsearchコマンドが使うGraphQL検索操作
type issueSearcher interface {
	SearchIssues(ctx context.Context, query string) ([]search.Issue, error)
	IssuesByLabel(ctx context.Context, owner, repo, label string) ([]search.Issue, error)
}

// モック用の関数変数
var createIssueSearcherFunc = func(cfg *config.Config) (issueSearcher, error) {
	opts := []search.Option{search.WithLogger(appLog)}
	if cfg.GitHub.APIBaseURL != "" {
		opts = append(opts, search.WithEndpoint(graphqlEndpoint(cfg.GitHub.APIBaseURL)))
	}
	return search.NewClient(cfg.GitHub.Token, opts...)
}

func newSearchCmd() *cobra.Command {
	var (
		label   string
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "GitHubの検索構文でIssueを検索",
		Long: `GitHubの検索構文、または--labelで指定したラベルでIssueを検索します。
クエリを指定する場合は、リポジトリの指定もクエリに含めてください。

例:
  fuda search 'repo:douhashi/fuda is:issue is:open label:"status:failed"'
  fuda search --label status:queued`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 && label != "" {
				return errors.New("検索クエリと--labelは同時に指定できません")
			}
			if len(args) == 0 && label == "" {
				return errors.New("検索クエリまたは--labelを指定してください")
			}

			cfg, err := requireGitHubConfig()
			if err != nil {
				return err
			}

			client, err := createIssueSearcherFunc(cfg)
			if err != nil {
				return fmt.Errorf("検索クライアントの作成に失敗しました: %w", err)
			}

			ctx := cmd.Context()

			var issues []search.Issue
			if label != "" {
				repoInfo, repoErr := resolveRepoFunc(ctx)
				if repoErr != nil {
					return fmt.Errorf("リポジトリ情報の取得に失敗しました: %w", repoErr)
				}
				issues, err = client.IssuesByLabel(ctx, repoInfo.Owner, repoInfo.Repo, label)
			} else {
				issues, err = client.SearchIssues(ctx, args[0])
			}
			if err != nil {
				return fmt.Errorf("Issueの検索に失敗しました: %w", err)
			}

			rows := make([]issueRow, 0, len(issues))
			for _, issue := range issues {
				rows = append(rows, issueRow{
					Number: issue.Number,
					Title:  issue.Title,
					State:  strings.ToLower(issue.State),
					Labels: issue.Labels,
					URL:    issue.URL,
				})
			}

			return printIssueRows(cmd.OutOrStdout(), rows, jsonOut)
		},
	}

	cmd.Flags().StringVarP(&label, "label", "l", "", "ラベルでオープンなIssueを検索")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "JSON形式で出力")

	return cmd
}

// graphqlEndpoint はREST APIのベースURLからGraphQLエンドポイントを導出する
// GitHub Enterpriseでは /api/v3 がREST、/api/graphql がGraphQLのパスになる
func graphqlEndpoint(apiBaseURL string) string {
	base := strings.TrimSuffix(apiBaseURL, "/")
	if strings.HasSuffix(base, "/api/v3") {
		return strings.TrimSuffix(base, "/v3") + "/graphql"
	}
	return base + "/graphql"
}
