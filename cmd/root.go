package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/douhashi/fuda/internal/config"
	"github.com/douhashi/fuda/internal/logger"
	"github.com/douhashi/fuda/internal/version"
)

var (
	cfgFile  string
	verbose  bool
	repoSpec string
	rootCmd  *cobra.Command
	appLog   logger.Logger
	appCfg   *config.Config
)

func init() {
	rootCmd = newRootCmd()
	addCommands(rootCmd)
}

func addCommands(cmd *cobra.Command) {
	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newAddCmd())
	cmd.AddCommand(newRemoveCmd())
	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newWatchCmd())
}

// NewRootCmd は全サブコマンドを追加した新しいルートコマンドを作成する
func NewRootCmd() *cobra.Command {
	cmd := newRootCmd()
	addCommands(cmd)
	return cmd
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fuda",
		Short: "GitHub IssueのCIステータスラベルを管理",
		Long: `fudaは、CIパイプラインからGitHub Issueのステータスラベルを操作するCLIツールです。
ラベルセットの作成、付け外し、ステータスの整合、ラベルによるIssue検索を行います。`,
		Version: version.Get().String(),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initLogger(); err != nil {
				return err
			}
			return initConfig()
		},
	}

	cmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "設定ファイルのパス")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "詳細出力")
	cmd.PersistentFlags().StringVarP(&repoSpec, "repo", "R", "", "対象リポジトリ (owner/repo形式)")

	viper.BindPFlag("config", cmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("verbose", cmd.PersistentFlags().Lookup("verbose"))

	return cmd
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initLogger は環境変数からappLogを初期化する
// --verboseフラグはDEBUG環境変数と同じ扱いになる
func initLogger() error {
	if verbose {
		os.Setenv("DEBUG", "true")
	}
	log, err := logger.NewFromEnv()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	appLog = log
	return nil
}

// initConfig は設定ファイルを読み込んでappCfgを初期化する
// --configが未指定の場合はカレントディレクトリの.fuda.ymlを探し、
// 見つからなければデフォルト値と環境変数だけで動作する
func initConfig() error {
	appCfg = config.NewConfig()

	if path := appCfg.LoadOrDefault(cfgFile); path != "" {
		appLog.Debug("Loaded config file", "path", path)
	}

	return nil
}
