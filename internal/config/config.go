package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config はアプリケーション全体の設定
type Config struct {
	GitHub GitHubConfig `mapstructure:"github"`
	Labels LabelsConfig `mapstructure:"labels"`
	Watch  WatchConfig  `mapstructure:"watch"`
}

// GitHubConfig はGitHub関連の設定
type GitHubConfig struct {
	Token        string        `mapstructure:"token"`
	APIBaseURL   string        `mapstructure:"api_base_url"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// LabelsConfig はステータスラベルの設定
type LabelsConfig struct {
	Prefix  string `mapstructure:"prefix"`
	Queued  string `mapstructure:"queued"`
	Retry   string `mapstructure:"retry"`
	Running string `mapstructure:"running"`
	Passed  string `mapstructure:"passed"`
	Failed  string `mapstructure:"failed"`
	Blocked string `mapstructure:"blocked"`
}

// WatchConfig はwatchコマンドの設定
type WatchConfig struct {
	// Listen はメトリクスエンドポイントのアドレス（空の場合は無効）
	Listen string `mapstructure:"listen"`
}

// NewConfig は新しいConfigを作成する
func NewConfig() *Config {
	return &Config{
		GitHub: GitHubConfig{
			PollInterval: 10 * time.Second,
		},
		Labels: LabelsConfig{
			Prefix:  "status:",
			Queued:  "status:queued",
			Retry:   "status:retry",
			Running: "status:running",
			Passed:  "status:passed",
			Failed:  "status:failed",
			Blocked: "status:blocked",
		},
	}
}

// Load は設定ファイルから設定を読み込む
func (c *Config) Load(configPath string) error {
	v := viper.New()

	// 設定ファイルのパスを設定
	v.SetConfigFile(configPath)

	// 環境変数の設定
	v.SetEnvPrefix("FUDA")
	v.AutomaticEnv()

	// GITHUB_TOKENもサポート
	v.BindEnv("github.token", "GITHUB_TOKEN", "FUDA_GITHUB_TOKEN")
	v.BindEnv("github.api_base_url", "GITHUB_API_URL", "FUDA_GITHUB_API_BASE_URL")

	// デフォルト値の設定
	v.SetDefault("github.poll_interval", 10*time.Second)
	v.SetDefault("labels.prefix", "status:")
	v.SetDefault("labels.queued", "status:queued")
	v.SetDefault("labels.retry", "status:retry")
	v.SetDefault("labels.running", "status:running")
	v.SetDefault("labels.passed", "status:passed")
	v.SetDefault("labels.failed", "status:failed")
	v.SetDefault("labels.blocked", "status:blocked")

	// 設定ファイルを読み込む
	if err := v.ReadInConfig(); err != nil {
		return err
	}

	// 設定を構造体にマッピング
	if err := v.Unmarshal(c); err != nil {
		return err
	}

	return nil
}

// LoadOrDefault は設定ファイルを読み込み、失敗した場合はデフォルト値を使用する
// configPathが空の場合はカレントディレクトリの.fuda.yml、.fuda.yamlを順に探す
// 実際に読み込んだファイルのパスを返す（読み込まなかった場合は空文字列）
func (c *Config) LoadOrDefault(configPath string) string {
	if configPath == "" {
		for _, candidate := range []string{".fuda.yml", ".fuda.yaml"} {
			if _, err := os.Stat(candidate); err == nil {
				_ = c.Load(candidate)
				return candidate
			}
		}
		return ""
	}

	// ファイルが存在しない場合はデフォルト値を使用
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return ""
	}

	// 設定ファイルを読み込む（エラーは無視）
	_ = c.Load(configPath)
	return configPath
}

// Validate は設定の妥当性を検証する
func (c *Config) Validate() error {
	if c.GitHub.Token == "" {
		return errors.New("GitHub token is required")
	}

	if c.GitHub.PollInterval < 1*time.Second {
		return errors.New("poll interval must be at least 1 second")
	}

	if c.Labels.Prefix == "" {
		c.Labels.Prefix = "status:"
	}

	// ラベルが空の場合はデフォルト値を設定
	if c.Labels.Queued == "" {
		c.Labels.Queued = "status:queued"
	}
	if c.Labels.Retry == "" {
		c.Labels.Retry = "status:retry"
	}
	if c.Labels.Running == "" {
		c.Labels.Running = "status:running"
	}
	if c.Labels.Passed == "" {
		c.Labels.Passed = "status:passed"
	}
	if c.Labels.Failed == "" {
		c.Labels.Failed = "status:failed"
	}
	if c.Labels.Blocked == "" {
		c.Labels.Blocked = "status:blocked"
	}

	// すべてのステータスラベルはプレフィックスを共有する必要がある
	for _, label := range c.StatusLabels() {
		if !strings.HasPrefix(label, c.Labels.Prefix) {
			return fmt.Errorf("label %q does not have prefix %q", label, c.Labels.Prefix)
		}
	}

	return nil
}

// GetGitHubToken は設定と環境変数からGitHubトークンを解決し、取得元とともに返す
// 優先順位: 設定ファイル > GITHUB_TOKEN > FUDA_GITHUB_TOKEN
// 設定ファイルを読み込んでいない場合でも環境変数からトークンを取得できる
func GetGitHubToken(cfg *Config) (token, source string) {
	if cfg != nil && cfg.GitHub.Token != "" {
		return cfg.GitHub.Token, "config"
	}
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		return token, "GITHUB_TOKEN"
	}
	if token := os.Getenv("FUDA_GITHUB_TOKEN"); token != "" {
		return token, "FUDA_GITHUB_TOKEN"
	}
	return "", ""
}

// TriggerLabels は監視対象（処理待ち）のラベルをスライスで返す
func (c *Config) TriggerLabels() []string {
	return []string{
		c.Labels.Queued,
		c.Labels.Retry,
	}
}

// StatusLabels はすべてのステータスラベルをスライスで返す
func (c *Config) StatusLabels() []string {
	return []string{
		c.Labels.Queued,
		c.Labels.Retry,
		c.Labels.Running,
		c.Labels.Passed,
		c.Labels.Failed,
		c.Labels.Blocked,
	}
}
