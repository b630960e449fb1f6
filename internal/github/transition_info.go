package github

// TransitionInfo はラベル遷移の内容を表す
type TransitionInfo struct {
	From string // 削除したトリガーラベル
	To   string // 追加したステータスラベル
}
