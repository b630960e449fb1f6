package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/douhashi/fuda/internal/config"
	"github.com/douhashi/fuda/internal/utils"
)

// labelEnsurer はinitコマンドが使うラベル作成操作
type labelEnsurer interface {
	EnsureLabelsExistWithRetry(ctx context.Context, owner, repo string) error
}

// モック用の関数変数
var (
	isGitRepositoryFunc    = isGitRepository
	writeFileFunc          = os.WriteFile
	statFunc               = os.Stat
	getGitHubTokenFunc     = config.GetGitHubToken
	createLabelEnsurerFunc = func(cfg *config.Config) (labelEnsurer, error) {
		client, err := newAPIClient(cfg)
		if err != nil {
			return nil, err
		}
		return newLabelManager(client, cfg), nil
	}
)

// isGitRepository は指定されたパスがgitリポジトリかを確認する
// worktreeでは.gitが通常ファイルになるため、存在すれば種別は問わない
func isGitRepository(path string) (bool, error) {
	if _, err := os.Stat(filepath.Join(path, ".git")); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "リポジトリを初期化",
		Long:  `設定ファイルの作成とステータスラベルの作成を行います。`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			errOut := cmd.ErrOrStderr()

			fmt.Fprintln(out, "🚀 fudaの初期化を開始します...")
			fmt.Fprintln(out, "")

			// 1. Gitリポジトリの確認
			fmt.Fprint(out, "[1/4] Gitリポジトリの確認       ")
			if err := checkGitRepository(out); err != nil {
				fmt.Fprintln(out, "❌")
				return err
			}

			// 2. GitHubトークンの確認（エラーは警告）
			fmt.Fprint(out, "[2/4] GitHubトークンの確認      ")
			checkGitHubToken(out, errOut)

			// 3. 設定ファイルの作成
			fmt.Fprint(out, "[3/4] 設定ファイルの作成        ")
			if err := setupConfigFile(out); err != nil {
				fmt.Fprintln(out, "❌")
				return err
			}

			// 4. GitHubラベルの作成（エラーは警告）
			fmt.Fprint(out, "[4/4] GitHubラベルの作成        ")
			setupGitHubLabels(cmd)

			fmt.Fprintln(out, "")
			showCompletionMessage(out)

			return nil
		},
	}
	return cmd
}

func checkGitRepository(out io.Writer) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("現在のディレクトリを取得できません: %w", err)
	}

	isRepo, err := isGitRepositoryFunc(cwd)
	if err != nil {
		return fmt.Errorf("Gitリポジトリの確認に失敗しました: %w", err)
	}
	if !isRepo {
		return fmt.Errorf("Gitリポジトリのルートディレクトリで実行してください")
	}

	fmt.Fprintln(out, "✅")
	return nil
}

// checkGitHubToken はGitHubトークンの設定状況を確認する
func checkGitHubToken(out, errOut io.Writer) {
	token, source := getGitHubTokenFunc(appCfg)
	if token == "" {
		fmt.Fprintln(out, "⚠️")
		fmt.Fprintln(errOut, "⚠️  GitHubトークンが設定されていません")
		fmt.Fprintln(errOut, "   以下のいずれかの方法で設定してください:")
		fmt.Fprintln(errOut, "   1. export GITHUB_TOKEN=your_token_here")
		fmt.Fprintln(errOut, "   2. .fuda.yml の github.token に記載")
		return
	}
	fmt.Fprintf(out, "✅ (取得元: %s)\n", source)
}

func setupConfigFile(out io.Writer) error {
	configPath := ".fuda.yml"

	// 既存ファイルの確認
	if _, err := statFunc(configPath); err == nil {
		fmt.Fprintln(out, "✅ (既存)")
		return nil
	}

	defaultConfig := `# fuda 設定ファイル

github:
  # トークンは GITHUB_TOKEN 環境変数からも読み込まれます
  # token: your_token_here
  poll_interval: 10s

labels:
  prefix: "status:"

watch:
  # メトリクスエンドポイントのアドレス (空の場合は無効)
  # listen: ":9112"
`

	if err := writeFileFunc(configPath, []byte(defaultConfig), 0644); err != nil {
		return fmt.Errorf("設定ファイルの作成に失敗しました: %w", err)
	}

	fmt.Fprintln(out, "✅")
	return nil
}

// setupGitHubLabels はステータスラベルをリポジトリに作成する
// トークンやリポジトリ情報が取得できない場合は警告を出して続行する
func setupGitHubLabels(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	token, _ := getGitHubTokenFunc(appCfg)
	if token == "" {
		fmt.Fprintln(out, "⚠️  (トークンなし)")
		return
	}

	ctx := cmd.Context()
	repoInfo, err := resolveRepoFunc(ctx)
	if err != nil {
		fmt.Fprintln(out, "⚠️")
		var repoErr *utils.ResolveRepoError
		if errors.As(err, &repoErr) {
			switch repoErr.Step {
			case "flag":
				fmt.Fprintf(errOut, "⚠️  --repoフラグの値を解析できません: %v\n", repoErr.Cause)
			case "env":
				fmt.Fprintf(errOut, "⚠️  GITHUB_REPOSITORY環境変数の値を解析できません: %v\n", repoErr.Cause)
			case "remote_url":
				fmt.Fprintf(errOut, "⚠️  リモートURLの取得に失敗しました: %v\n", repoErr.Cause)
				fmt.Fprintln(errOut, "   'git remote add origin <URL>' でリモートを設定してください")
			case "url_parsing":
				fmt.Fprintf(errOut, "⚠️  GitHubリポジトリ情報の解析に失敗しました: %v\n", repoErr.Cause)
			default:
				fmt.Fprintf(errOut, "⚠️  リポジトリ情報の取得に失敗しました: %v\n", err)
			}
		} else {
			fmt.Fprintf(errOut, "⚠️  リポジトリ情報の取得に失敗しました: %v\n", err)
		}
		return
	}

	cfg := appCfg
	if cfg == nil {
		cfg = config.NewConfig()
	}
	cfg.GitHub.Token = token

	ensurer, err := createLabelEnsurerFunc(cfg)
	if err != nil {
		fmt.Fprintln(out, "⚠️")
		fmt.Fprintf(errOut, "⚠️  GitHubクライアントの作成に失敗しました: %v\n", err)
		return
	}

	if err := ensurer.EnsureLabelsExistWithRetry(ctx, repoInfo.Owner, repoInfo.Repo); err != nil {
		fmt.Fprintln(out, "⚠️")
		fmt.Fprintf(errOut, "⚠️  GitHubラベルの作成に失敗しました: %v\n", err)
		fmt.Fprintln(errOut, "   手動でラベルを作成してください")
		return
	}

	fmt.Fprintln(out, "✅")
}

// showCompletionMessage は初期化完了メッセージを表示する
func showCompletionMessage(out io.Writer) {
	fmt.Fprintln(out, "✅ 初期化が完了しました！")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "次のステップ:")
	fmt.Fprintln(out, "1. GitHubでIssueを作成し、'status:queued'ラベルを付ける")
	fmt.Fprintln(out, "2. fuda watch - 監視モードでトリガーラベルの遷移を自動化")
	fmt.Fprintln(out, "3. fuda set <issue> <status> - CIジョブからステータスを更新")
}
