package cmd

import (
	"context"
	"errors"
	"fmt"

	gogithub "github.com/google/go-github/v67/github"
	"github.com/spf13/cobra"

	"github.com/douhashi/fuda/internal/config"
)

// issueLister はlistコマンドが使うIssue一覧取得操作
type issueLister interface {
	ListIssuesByLabels(ctx context.Context, owner, repo string, labels []string) ([]*gogithub.Issue, error)
	ListIssuesByAnyLabel(ctx context.Context, owner, repo string, labels []string) ([]*gogithub.Issue, error)
}

// モック用の関数変数
var createIssueListerFunc = func(cfg *config.Config) (issueLister, error) {
	return newAPIClient(cfg)
}

func newListCmd() *cobra.Command {
	var (
		labels  []string
		anyFlag bool
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "ラベルでオープンなIssueを一覧表示",
		Long: `指定したラベルを持つオープンなIssueを一覧表示します。
複数の--labelを指定した場合は、すべてのラベルを持つIssueが対象です。
--anyを指定すると、いずれかのラベルを持つIssueが対象になります。`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(labels) == 0 {
				return errors.New("ラベルを1つ以上指定してください (--label)")
			}

			cfg, err := requireGitHubConfig()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			repoInfo, err := resolveRepoFunc(ctx)
			if err != nil {
				return fmt.Errorf("リポジトリ情報の取得に失敗しました: %w", err)
			}

			client, err := createIssueListerFunc(cfg)
			if err != nil {
				return fmt.Errorf("GitHubクライアントの作成に失敗しました: %w", err)
			}

			var issues []*gogithub.Issue
			if anyFlag {
				issues, err = client.ListIssuesByAnyLabel(ctx, repoInfo.Owner, repoInfo.Repo, labels)
			} else {
				issues, err = client.ListIssuesByLabels(ctx, repoInfo.Owner, repoInfo.Repo, labels)
			}
			if err != nil {
				return fmt.Errorf("Issueの一覧取得に失敗しました: %w", err)
			}

			rows := make([]issueRow, 0, len(issues))
			for _, issue := range issues {
				rows = append(rows, issueRowFromIssue(issue))
			}

			return printIssueRows(cmd.OutOrStdout(), rows, jsonOut)
		},
	}

	cmd.Flags().StringArrayVarP(&labels, "label", "l", nil, "対象のラベル (複数指定可)")
	cmd.Flags().BoolVar(&anyFlag, "any", false, "いずれかのラベルを持つIssueを対象にする")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "JSON形式で出力")

	return cmd
}

// issueRowFromIssue はgo-githubのIssueを出力用の行に変換する
func issueRowFromIssue(issue *gogithub.Issue) issueRow {
	row := issueRow{
		Number: issue.GetNumber(),
		Title:  issue.GetTitle(),
		State:  issue.GetState(),
		URL:    issue.GetHTMLURL(),
		Labels: []string{},
	}
	for _, label := range issue.Labels {
		if label == nil || label.Name == nil {
			continue
		}
		row.Labels = append(row.Labels, label.GetName())
	}
	return row
}
