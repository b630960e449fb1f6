package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/douhashi/fuda/internal/config"
	"github.com/douhashi/fuda/internal/github"
)

func TestParseIssueNumber(t *testing.T) {
	tests := []struct {
		name    string
		arg     string
		want    int
		wantErr bool
	}{
		{
			name: "正常系: 数値を解析できる",
			arg:  "12",
			want: 12,
		},
		{
			name: "正常系: 大きな番号",
			arg:  "10394",
			want: 10394,
		},
		{
			name:    "異常系: 数値でない",
			arg:     "abc",
			wantErr: true,
		},
		{
			name:    "異常系: ゼロ",
			arg:     "0",
			wantErr: true,
		},
		{
			name:    "異常系: 負数",
			arg:     "-5",
			wantErr: true,
		},
		{
			name:    "異常系: 空文字列",
			arg:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseIssueNumber(tt.arg)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "不正なIssue番号です")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrintIssueRows(t *testing.T) {
	rows := []issueRow{
		{Number: 12, Title: "Fix flaky test", State: "open", Labels: []string{"status:queued", "bug"}},
		{Number: 34, Title: "Nightly build is red", State: "open", Labels: []string{"status:retry"}},
	}

	t.Run("正常系: テキスト形式で出力する", func(t *testing.T) {
		buf := new(bytes.Buffer)
		require.NoError(t, printIssueRows(buf, rows, false))

		out := buf.String()
		assert.Contains(t, out, "#12 Fix flaky test (status:queued, bug)")
		assert.Contains(t, out, "#34 Nightly build is red (status:retry)")
		assert.Contains(t, out, "2件のIssueが見つかりました")
	})

	t.Run("正常系: JSON形式で出力する", func(t *testing.T) {
		buf := new(bytes.Buffer)
		require.NoError(t, printIssueRows(buf, rows, true))

		var decoded []issueRow
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, rows, decoded)
	})

	t.Run("正常系: 0件のテキスト出力", func(t *testing.T) {
		buf := new(bytes.Buffer)
		require.NoError(t, printIssueRows(buf, nil, false))

		assert.Contains(t, buf.String(), "該当するIssueはありません")
	})

	t.Run("正常系: 0件のJSON出力は空配列になる", func(t *testing.T) {
		buf := new(bytes.Buffer)
		require.NoError(t, printIssueRows(buf, []issueRow{}, true))

		assert.Equal(t, "[]", strings.TrimSpace(buf.String()))
	})
}

func TestNewLabelManager(t *testing.T) {
	newManager := func(t *testing.T, cfg *config.Config) *github.LabelManagerWithRetry {
		t.Helper()
		cfg.GitHub.Token = "test-token"
		require.NoError(t, cfg.Validate())

		client, err := github.NewClient(cfg.GitHub.Token)
		require.NoError(t, err)
		return newLabelManager(client, cfg)
	}

	t.Run("正常系: すべてのトリガーラベルに遷移ルールがある", func(t *testing.T) {
		cfg := config.NewConfig()
		manager := newManager(t, cfg)

		rules := manager.GetTransitionRules()
		for _, trigger := range cfg.TriggerLabels() {
			assert.Equal(t, cfg.Labels.Running, rules[trigger])
		}
	})

	t.Run("正常系: 設定で上書きされたラベル名が遷移ルールに反映される", func(t *testing.T) {
		cfg := config.NewConfig()
		cfg.Labels.Queued = "status:waiting"
		cfg.Labels.Running = "status:active"
		manager := newManager(t, cfg)

		// 監視対象のラベルが遷移ルールから漏れるとwatchが何も遷移させなくなる
		rules := manager.GetTransitionRules()
		for _, trigger := range cfg.TriggerLabels() {
			assert.Equal(t, cfg.Labels.Running, rules[trigger])
		}

		definitions := manager.GetLabelDefinitions()
		assert.Contains(t, definitions, "status:waiting")
		assert.NotContains(t, definitions, "status:queued")
	})
}

func TestRequireGitHubConfig(t *testing.T) {
	origCfg := appCfg
	origLog := appLog
	t.Cleanup(func() {
		appCfg = origCfg
		appLog = origLog
	})

	t.Run("正常系: 環境変数のトークンで設定を解決する", func(t *testing.T) {
		t.Setenv("GITHUB_TOKEN", "env-token")
		t.Setenv("FUDA_GITHUB_TOKEN", "")
		appCfg = nil
		appLog = nil

		cfg, err := requireGitHubConfig()
		require.NoError(t, err)
		assert.Equal(t, "env-token", cfg.GitHub.Token)
	})

	t.Run("異常系: トークンがない場合はエラーになる", func(t *testing.T) {
		t.Setenv("GITHUB_TOKEN", "")
		t.Setenv("FUDA_GITHUB_TOKEN", "")
		appCfg = nil
		appLog = nil

		_, err := requireGitHubConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "GitHubトークンが設定されていません")
	})
}
