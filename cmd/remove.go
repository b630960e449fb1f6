package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <issue> <label>",
		Short: "Issueからラベルを削除",
		Long: `指定したIssueからラベルを削除します。
ラベルが付与されていない場合も成功として扱います。`,
		Args: cobra.ExactArgs(2),
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

			if err := client.RemoveLabel(ctx, repoInfo.Owner, repoInfo.Repo, issueNumber, label); err != nil {
				return fmt.Errorf("ラベルの削除に失敗しました: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Issue #%d からラベル '%s' を削除しました\n", issueNumber, label)
			return nil
		},
	}
	return cmd
}
