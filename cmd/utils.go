package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/douhashi/fuda/internal/config"
	"github.com/douhashi/fuda/internal/github"
	"github.com/douhashi/fuda/internal/utils"
)

const (
	labelManagerMaxRetries = 3
	labelManagerRetryDelay = time.Second
)

// テスト用にモック可能な関数変数
var resolveRepoFunc = func(ctx context.Context) (*utils.GitHubRepoInfo, error) {
	return utils.ResolveRepoInfo(ctx, appLog, repoSpec)
}

// requireGitHubConfig はGitHub APIを使うコマンドのための設定を検証して返す
// 設定ファイルを読み込んでいない場合でも環境変数からトークンを解決する
func requireGitHubConfig() (*config.Config, error) {
	cfg := appCfg
	if cfg == nil {
		cfg = config.NewConfig()
	}

	token, source := config.GetGitHubToken(cfg)
	if token == "" {
		return nil, errors.New("GitHubトークンが設定されていません。GITHUB_TOKEN環境変数または設定ファイルで指定してください")
	}
	cfg.GitHub.Token = token
	if appLog != nil {
		appLog.Debug("Resolved GitHub token", "source", source)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// newAPIClient は設定からGitHub APIクライアントを作成する
func newAPIClient(cfg *config.Config) (*github.Client, error) {
	opts := []github.ClientOption{github.WithLogger(appLog)}
	if cfg.GitHub.APIBaseURL != "" {
		opts = append(opts, github.WithBaseURL(cfg.GitHub.APIBaseURL))
	}
	return github.NewClient(cfg.GitHub.Token, opts...)
}

// newLabelManager は設定からリトライ付きのLabelManagerを作成する
// 設定で上書きされたラベル名がラベル定義と遷移ルールに反映される
func newLabelManager(client *github.Client, cfg *config.Config) *github.LabelManagerWithRetry {
	return github.NewLabelManagerWithRetry(
		client.LabelService(),
		labelManagerMaxRetries,
		labelManagerRetryDelay,
		github.WithStatusPrefix(cfg.Labels.Prefix),
		github.WithLabelNames(github.LabelNames{
			Queued:  cfg.Labels.Queued,
			Retry:   cfg.Labels.Retry,
			Running: cfg.Labels.Running,
			Passed:  cfg.Labels.Passed,
			Failed:  cfg.Labels.Failed,
			Blocked: cfg.Labels.Blocked,
		}),
	)
}

// parseIssueNumber はコマンド引数のIssue番号を解析する
func parseIssueNumber(arg string) (int, error) {
	number, err := strconv.Atoi(arg)
	if err != nil || number <= 0 {
		return 0, fmt.Errorf("不正なIssue番号です: %s", arg)
	}
	return number, nil
}

// issueRow はlist/searchコマンドの出力1行分
type issueRow struct {
	Number int      `json:"number"`
	Title  string   `json:"title"`
	State  string   `json:"state,omitempty"`
	Labels []string `json:"labels"`
	URL    string   `json:"url,omitempty"`
}

// printIssueRows はIssueの一覧をテキストまたはJSONで出力する
func printIssueRows(out io.Writer, rows []issueRow, asJSON bool) error {
	if asJSON {
		data, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal issues: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	if len(rows) == 0 {
		fmt.Fprintln(out, "該当するIssueはありません")
		return nil
	}

	for _, row := range rows {
		fmt.Fprintf(out, "#%d %s (%s)\n", row.Number, row.Title, strings.Join(row.Labels, ", "))
	}
	fmt.Fprintf(out, "\n%d件のIssueが見つかりました\n", len(rows))
	return nil
}
