package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/douhashi/fuda/internal/config"
)

// labelEditor はadd/removeコマンドが使うラベル操作
type labelEditor interface {
	AddLabel(ctx context.Context, owner, repo string, issueNumber int, label string) error
	RemoveLabel(ctx context.Context, owner, repo string, issueNumber int, label string) error
}

// モック用の関数変数
var createLabelEditorFunc = func(cfg *config.Config) (labelEditor, error) {
	return newAPIClient(cfg)
}

func newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <issue> <label>",
		Short: "Issueにラベルを追加",
		Long:  `指定したIssueにラベルを追加します。`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			issueNumber, err := parseIssueNumber(args[0])
			if err != nil {
				return err
			}
			label := args[1]

			cfg, err := requireGitHubConfig()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			repoInfo, err := resolveRepoFunc(ctx)
			if err != nil {
				return fmt.Errorf("リポジトリ情報の取得に失敗しました: %w", err)
			}

			client, err := createLabelEditorFunc(cfg)
			if err != nil {
				return fmt.Errorf("GitHubクライアントの作成に失敗しました: %w", err)
			}

			if err := client.AddLabel(ctx, repoInfo.Owner, repoInfo.Repo, issueNumber, label); err != nil {
				return fmt.Errorf("ラベルの追加に失敗しました: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Issue #%d にラベル '%s' を追加しました\n", issueNumber, label)
			return nil
		},
	}
	return cmd
}
