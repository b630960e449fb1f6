package logger

import (
	"regexp"
	"strings"
)

const masked = "***MASKED***"

// GitHubのトークン形式の値
// プレフィックス: ghp(クラシックPAT), gho(OAuth), ghu(user-to-server),
// ghs(server-to-server), ghi(installation), ghr(リフレッシュ),
// github_pat(fine-grained PAT)
var tokenPattern = regexp.MustCompile(`^(?:gh[opusir]_[A-Za-z0-9]{36,}|github_pat_[A-Za-z0-9_]{22,})$`)

// Authorizationヘッダー形式の値
var authHeaderPattern = regexp.MustCompile(`(?i)^(?:bearer|token)\s+\S{20,}$`)

// 値のマスクを強制するキー名の構成語
var secretKeyWords = map[string]struct{}{
	"token":         {},
	"password":      {},
	"secret":        {},
	"credential":    {},
	"credentials":   {},
	"auth":          {},
	"authorization": {},
	"apikey":        {},
	"key":           {},
}

// Redact はトークン形式の文字列を種別プレフィックスを残してマスクする
// トークンに見えない文字列はそのまま返す
func Redact(s string) string {
	switch {
	case tokenPattern.MatchString(s):
		if strings.HasPrefix(s, "github_pat_") {
			return "github_pat_" + masked
		}
		return s[:4] + masked
	case authHeaderPattern.MatchString(s):
		scheme, _, _ := strings.Cut(s, " ")
		return scheme + " " + masked
	}
	return s
}

// redactPairs はkey-value列のシークレットをマスクする
// キー名がシークレットを示す場合は値を全面的に、値がトークン形式の場合は
// プレフィックスを残してマスクする
func redactPairs(args []interface{}) []interface{} {
	if len(args) == 0 {
		return args
	}

	out := make([]interface{}, len(args))
	copy(out, args)

	for i := 0; i+1 < len(out); i += 2 {
		key, ok := out[i].(string)
		if !ok {
			continue
		}
		if isSecretKey(key) {
			out[i+1] = masked
			continue
		}
		if s, ok := out[i+1].(string); ok {
			out[i+1] = Redact(s)
		}
	}
	return out
}

// isSecretKey はキー名がシークレットを示すかを判定する
// キーを区切り文字（_ - .）で分割し、構成語単位で照合する
func isSecretKey(key string) bool {
	lower := strings.ToLower(key)
	if _, ok := secretKeyWords[lower]; ok {
		return true
	}
	words := strings.FieldsFunc(lower, func(r rune) bool {
		return r == '_' || r == '-' || r == '.'
	})
	for _, word := range words {
		if _, ok := secretKeyWords[word]; ok {
			return true
		}
	}
	return false
}
