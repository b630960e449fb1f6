package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gogithub "github.com/google/go-github/v67/github"
	"github.com/spf13/cobra"

	"github.com/douhashi/fuda/internal/config"
	"github.com/douhashi/fuda/internal/metrics"
	"github.com/douhashi/fuda/internal/watcher"
)

func newWatchCmd() *cobra.Command {
	var (
		intervalFlag string
		listenFlag   string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "トリガーラベルの付いたIssueを監視",
		Long: `トリガーラベル（status:queued、status:retry）の付いたオープンなIssueを
ポーリングで監視し、検出したIssueを処理中ラベル（status:running）に遷移させます。
--listenを指定するとPrometheusメトリクスを公開します。`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatchFunc(cmd, intervalFlag, listenFlag)
		},
	}

	cmd.Flags().StringVarP(&intervalFlag, "interval", "i", "", "ポーリング間隔 (例: 10s)")
	cmd.Flags().StringVar(&listenFlag, "listen", "", "メトリクスエンドポイントのアドレス (例: :9112)")

	return cmd
}

// テスト用にモック可能な関数変数
var runWatchFunc = runWatch

// applyWatchFlags はフラグの値で設定を上書きして検証する
func applyWatchFlags(cfg *config.Config, intervalFlag, listenFlag string) error {
	if intervalFlag != "" {
		interval, err := time.ParseDuration(intervalFlag)
		if err != nil {
			return fmt.Errorf("不正なポーリング間隔です: %s", intervalFlag)
		}
		cfg.GitHub.PollInterval = interval
	}
	if listenFlag != "" {
		cfg.Watch.Listen = listenFlag
	}
	return cfg.Validate()
}

func runWatch(cmd *cobra.Command, intervalFlag, listenFlag string) error {
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	cfg, err := requireGitHubConfig()
	if err != nil {
		return err
	}
	if err := applyWatchFlags(cfg, intervalFlag, listenFlag); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	repoInfo, err := resolveRepoFunc(ctx)
	if err != nil {
		return fmt.Errorf("リポジトリ情報の取得に失敗しました: %w", err)
	}

	client, err := newAPIClient(cfg)
	if err != nil {
		return fmt.Errorf("GitHubクライアントの作成に失敗しました: %w", err)
	}
	manager := newLabelManager(client, cfg)

	// 必要なラベルが存在することを確認（エラーでも続行する）
	fmt.Fprintln(out, "必要なラベルを確認中...")
	if err := manager.EnsureLabelsExistWithRetry(ctx, repoInfo.Owner, repoInfo.Repo); err != nil {
		fmt.Fprintf(errOut, "警告: ラベルの確認/作成に失敗しました: %v\n", err)
	} else {
		fmt.Fprintln(out, "ラベルの確認が完了しました")
	}

	w, err := watcher.NewIssueWatcher(client, repoInfo.Owner, repoInfo.Repo, cfg.TriggerLabels(), cfg.GitHub.PollInterval, appLog)
	if err != nil {
		return fmt.Errorf("Issue監視の作成に失敗しました: %w", err)
	}
	w.SetLabelManager(manager, manager.GetTransitionRules())
	w.SetStatusPrefix(cfg.Labels.Prefix)
	w.EnableLabelChangeTracking()
	w.SetEventNotifier(func(event watcher.IssueEvent) {
		fmt.Fprintln(out, event.String())
	})

	// メトリクスエンドポイント
	var srv *http.Server
	if cfg.Watch.Listen != "" {
		collector := metrics.NewCollector(w.Metrics(), w, client)
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler(collector))
		srv = &http.Server{Addr: cfg.Watch.Listen, Handler: mux}
		go func() {
			appLog.Info("Starting metrics endpoint", "addr", cfg.Watch.Listen)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				appLog.Error("Metrics endpoint failed", "error", err)
			}
		}()
	}

	// シグナルハンドリング
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		sig := <-sigCh
		appLog.Info("Received signal, shutting down", "signal", sig.String())
		cancel()
	}()

	fmt.Fprintf(out, "Issue監視を開始します (repo: %s, interval: %s)\n", repoInfo.String(), cfg.GitHub.PollInterval)

	w.Start(ctx, func(issue *gogithub.Issue) {
		appLog.Info("Issue detected",
			"issue", issue.GetNumber(),
			"title", issue.GetTitle(),
		)
	})

	snap := w.Metrics().Snapshot()
	fmt.Fprintf(out, "Issue監視を終了しました (遷移: %d, 成功: %d, 失敗: %d, 成功率: %s)\n",
		snap.Total, snap.Succeeded, snap.Failed, snap.SuccessRateFormatted())

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			appLog.Error("Failed to shut down metrics endpoint", "error", err)
		}
	}

	return nil
}
