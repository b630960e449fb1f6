package logger

import (
	"os"
	"strconv"
	"strings"
)

// NewFromEnv は環境変数の設定でロガーを作成する
//
//	DEBUG, RUNNER_DEBUG: 真値でデバッグレベル（RUNNER_DEBUGはGitHub Actionsの
//	                     デバッグ実行時に設定される）
//	LOG_LEVEL:           レベルの明示指定（DEBUGより優先）
//	LOG_FORMAT:          text または json
//	CI:                  真値のとき既定フォーマットをjsonにする
func NewFromEnv() (Logger, error) {
	return New(
		WithLevel(levelFromEnv()),
		WithFormat(formatFromEnv()),
	)
}

func levelFromEnv() string {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		return strings.ToLower(v)
	}
	if envBool("DEBUG") || envBool("RUNNER_DEBUG") {
		return "debug"
	}
	return "info"
}

func formatFromEnv() string {
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		return strings.ToLower(v)
	}
	if envBool("CI") {
		return "json"
	}
	return "text"
}

func envBool(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}
