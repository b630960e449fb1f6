package version

import (
	"fmt"
	"runtime"
)

var (
	// Version はビルド時に-ldflagsで設定されるバージョン番号
	Version = "dev"
	// Commit はビルド時に設定されるGitコミットハッシュ
	Commit = "none"
	// Date はビルド時に設定されるビルド日時
	Date = "unknown"
)

// Info はバージョン情報を保持する構造体
type Info struct {
	Version   string
	Commit    string
	Date      string
	GoVersion string
	Platform  string
}

// Get は現在のバージョン情報を返す
// ビルド時に埋め込まれた値と実行環境の情報をまとめる
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String はバージョン情報を1行の文字列として返す
func (i Info) String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s, %s %s)",
		i.Version, i.Commit, i.Date, i.GoVersion, i.Platform)
}
