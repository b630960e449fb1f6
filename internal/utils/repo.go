package utils

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/douhashi/fuda/internal/logger"
)

// ResolveRepoError は詳細なエラー情報を持つエラー型
type ResolveRepoError struct {
	Step    string // どの段階で失敗したか
	Cause   error  // 根本的な原因
	Message string // ユーザー向けメッセージ
}

func (e *ResolveRepoError) Error() string {
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *ResolveRepoError) Unwrap() error {
	return e.Cause
}

// ResolveRepoInfo は対象リポジトリを解決する
// 優先順位:
//  1. explicit（--repoフラグの値）
//  2. GITHUB_REPOSITORY環境変数（GitHub Actionsが設定する）
//  3. カレントディレクトリのgitリモート（origin）
func ResolveRepoInfo(ctx context.Context, log logger.Logger, explicit string) (*GitHubRepoInfo, error) {
	if explicit != "" {
		info, err := ParseRepoSpec(explicit)
		if err != nil {
			return nil, &ResolveRepoError{
				Step:    "flag",
				Cause:   err,
				Message: "リポジトリ指定の解析に失敗しました",
			}
		}
		return info, nil
	}

	if env := os.Getenv("GITHUB_REPOSITORY"); env != "" {
		info, err := ParseRepoSpec(env)
		if err != nil {
			return nil, &ResolveRepoError{
				Step:    "env",
				Cause:   err,
				Message: "GITHUB_REPOSITORY環境変数の解析に失敗しました",
			}
		}
		log.Debug("Resolved repository from environment", "repo", info.String())
		return info, nil
	}

	remoteURL, err := gitRemoteURL(ctx, log, "origin")
	if err != nil {
		return nil, &ResolveRepoError{
			Step:    "remote_url",
			Cause:   err,
			Message: "リモートURL取得に失敗しました。--repoフラグまたはGITHUB_REPOSITORY環境変数で指定してください",
		}
	}

	info, err := ParseGitHubURL(remoteURL)
	if err != nil {
		return nil, &ResolveRepoError{
			Step:    "url_parsing",
			Cause:   err,
			Message: fmt.Sprintf("GitHub URL解析に失敗しました。URL: %s", remoteURL),
		}
	}

	log.Debug("Resolved repository from git remote", "repo", info.String())
	return info, nil
}

// gitRemoteURL はgitコマンドを実行してリモートURLを取得する
func gitRemoteURL(ctx context.Context, log logger.Logger, remoteName string) (string, error) {
	log.Debug("Executing git command", "command", "git", "args", []string{"remote", "get-url", remoteName})

	cmd := exec.CommandContext(ctx, "git", "remote", "get-url", remoteName)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		stderrStr := strings.TrimSpace(stderr.String())
		if stderrStr != "" {
			return "", fmt.Errorf("git command failed: %w\nstderr: %s", err, stderrStr)
		}
		return "", fmt.Errorf("git command failed: %w", err)
	}

	return strings.TrimSpace(stdout.String()), nil
}
