package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/douhashi/fuda/internal/config"
	"github.com/douhashi/fuda/internal/github"
)

// statusSetter はsetコマンドが使うステータス整合操作
type statusSetter interface {
	SetStatusWithRetry(ctx context.Context, owner, repo string, issueNumber int, status string) (*github.StatusChange, error)
}

// モック用の関数変数
var createStatusSetterFunc = func(cfg *config.Config) (statusSetter, error) {
	client, err := newAPIClient(cfg)
	if err != nil {
		return nil, err
	}
	return newLabelManager(client, cfg), nil
}

func newSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <issue> <status>",
		Short: "Issueのステータスラベルを設定",
		Long: `指定したIssueのステータスラベルを設定します。
対象のラベルを追加した上で、プレフィックスを共有する他のステータスラベルを削除します。
ステータスは "passed" と "status:passed" のどちらの形式でも指定できます。

例:
  fuda set 12 running
  fuda set 12 status:passed`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			issueNumber, err := parseIssueNumber(args[0])
			if err != nil {
				return err
			}
			status := args[1]

			cfg, err := requireGitHubConfig()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			repoInfo, err := resolveRepoFunc(ctx)
			if err != nil {
				return fmt.Errorf("リポジトリ情報の取得に失敗しました: %w", err)
			}

			manager, err := createStatusSetterFunc(cfg)
			if err != nil {
				return fmt.Errorf("GitHubクライアントの作成に失敗しました: %w", err)
			}

			change, err := manager.SetStatusWithRetry(ctx, repoInfo.Owner, repoInfo.Repo, issueNumber, status)
			if err != nil {
				return fmt.Errorf("ステータスの設定に失敗しました: %w", err)
			}

			out := cmd.OutOrStdout()
			switch {
			case !change.Changed():
				fmt.Fprintf(out, "Issue #%d は既に %s です\n", issueNumber, change.Target)
			case len(change.Removed) > 0:
				fmt.Fprintf(out, "Issue #%d: %s -> %s\n", issueNumber, strings.Join(change.Removed, ", "), change.Target)
			default:
				fmt.Fprintf(out, "Issue #%d に %s を設定しました\n", issueNumber, change.Target)
			}
			return nil
		},
	}
	return cmd
}
