package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/douhashi/fuda/internal/utils"
)

// executeCommand はテスト用のルートコマンドを組み立てて実行し、
// 標準出力と標準エラー出力の内容を返す
func executeCommand(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	outBuf := new(bytes.Buffer)
	errBuf := new(bytes.Buffer)

	cmd := NewRootCmd()
	cmd.SetOut(outBuf)
	cmd.SetErr(errBuf)
	cmd.SetArgs(args)

	err = cmd.Execute()
	return outBuf.String(), errBuf.String(), err
}

// stubRepoResolver はリポジトリ解決を固定値に差し替える
func stubRepoResolver(t *testing.T, info *utils.GitHubRepoInfo, err error) {
	t.Helper()

	orig := resolveRepoFunc
	t.Cleanup(func() { resolveRepoFunc = orig })
	resolveRepoFunc = func(ctx context.Context) (*utils.GitHubRepoInfo, error) {
		return info, err
	}
}
