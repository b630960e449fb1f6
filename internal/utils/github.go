package utils

import (
	"fmt"
	"regexp"
	"strings"
)

// GitHubRepoInfo はGitHubリポジトリの情報を保持する構造体
type GitHubRepoInfo struct {
	Owner string
	Repo  string
}

// String は owner/repo 形式の文字列を返す
func (i *GitHubRepoInfo) String() string {
	return i.Owner + "/" + i.Repo
}

var (
	// httpsURLPattern はHTTPS形式のリポジトリURLにマッチする
	httpsURLPattern = regexp.MustCompile(`^https://github\.com/([^/]+)/([^/]+?)(?:\.git)?$`)
	// sshURLPattern はSSH形式のリポジトリURLにマッチする (ssh://プレフィックス付きも可)
	sshURLPattern = regexp.MustCompile(`^(?:ssh://)?git@github\.com[:/]([^/]+)/([^/]+?)(?:\.git)?$`)
	// repoSpecPattern は owner/repo 形式の検証パターン
	repoSpecPattern = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9\-]*)/([A-Za-z0-9._\-]+)$`)
)

// ParseGitHubURL はGitHubのリポジトリURLからowner/repo情報を抽出する
// 以下の形式に対応:
// - https://github.com/owner/repo[.git]
// - git@github.com:owner/repo[.git]
func ParseGitHubURL(url string) (*GitHubRepoInfo, error) {
	for _, pattern := range []*regexp.Regexp{httpsURLPattern, sshURLPattern} {
		if m := pattern.FindStringSubmatch(url); len(m) == 3 {
			return &GitHubRepoInfo{
				Owner: m[1],
				Repo:  strings.TrimSuffix(m[2], ".git"),
			}, nil
		}
	}
	return nil, fmt.Errorf("invalid GitHub URL format: %s", url)
}

// ParseRepoSpec は owner/repo 形式の文字列からリポジトリ情報を抽出する
// --repoフラグやGITHUB_REPOSITORY環境変数の値を解析するために使用する
func ParseRepoSpec(spec string) (*GitHubRepoInfo, error) {
	m := repoSpecPattern.FindStringSubmatch(strings.TrimSpace(spec))
	if len(m) != 3 {
		return nil, fmt.Errorf("invalid repository format (expected owner/repo): %s", spec)
	}
	return &GitHubRepoInfo{
		Owner: m[1],
		Repo:  strings.TrimSuffix(m[2], ".git"),
	}, nil
}
