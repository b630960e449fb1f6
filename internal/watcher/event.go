package watcher

import (
	"fmt"
	"strings"
	"time"
)

// EventType はIssueイベントの種類を表す
type EventType string

// Issueのラベル変更で発生するイベント種別
// 同じプレフィックスを持つラベルの入れ替わりはLabelChangedにまとめられる
const (
	LabelAdded   EventType = "label_added"
	LabelRemoved EventType = "label_removed"
	LabelChanged EventType = "label_changed"
)

// IssueEvent はIssueのラベル変更イベントを表す
type IssueEvent struct {
	Type        EventType
	IssueNumber int
	IssueTitle  string
	Owner       string
	Repo        string
	FromLabel   string // LabelRemoved、LabelChangedで使用
	ToLabel     string // LabelAdded、LabelChangedで使用
	Timestamp   time.Time
}

// String はイベントの文字列表現を返す
func (e IssueEvent) String() string {
	ref := fmt.Sprintf("%s/%s#%d", e.Owner, e.Repo, e.IssueNumber)
	ts := e.Timestamp.Format(time.RFC3339)

	switch e.Type {
	case LabelAdded:
		return fmt.Sprintf("[%s] %s '%s': added '%s' at %s", e.Type, ref, e.IssueTitle, e.ToLabel, ts)
	case LabelRemoved:
		return fmt.Sprintf("[%s] %s '%s': removed '%s' at %s", e.Type, ref, e.IssueTitle, e.FromLabel, ts)
	case LabelChanged:
		return fmt.Sprintf("[%s] %s '%s': '%s' -> '%s' at %s", e.Type, ref, e.IssueTitle, e.FromLabel, e.ToLabel, ts)
	default:
		return fmt.Sprintf("[%s] %s '%s' at %s", e.Type, ref, e.IssueTitle, ts)
	}
}

// DetectLabelChanges は新旧のラベルリストを比較してイベントを生成する
// statusPrefixを共有するラベルの入れ替わりは1つのLabelChangedイベントにまとめ、
// それ以外は削除、追加の順でイベントを生成する
func DetectLabelChanges(oldLabels, newLabels []string, issueNumber int, issueTitle, owner, repo, statusPrefix string) []IssueEvent {
	events := []IssueEvent{}
	now := time.Now()

	oldSet := make(map[string]bool, len(oldLabels))
	for _, label := range oldLabels {
		oldSet[label] = true
	}
	newSet := make(map[string]bool, len(newLabels))
	for _, label := range newLabels {
		newSet[label] = true
	}

	// ステータスラベルの入れ替わりを検出する
	// 実際に削除されたラベルと実際に追加されたラベルのみを対象にする
	if statusPrefix != "" {
		var oldStatus, newStatus string
		for _, label := range oldLabels {
			if strings.HasPrefix(label, statusPrefix) && !newSet[label] {
				oldStatus = label
				break
			}
		}
		for _, label := range newLabels {
			if strings.HasPrefix(label, statusPrefix) && !oldSet[label] {
				newStatus = label
				break
			}
		}

		if oldStatus != "" && newStatus != "" {
			events = append(events, IssueEvent{
				Type:        LabelChanged,
				IssueNumber: issueNumber,
				IssueTitle:  issueTitle,
				Owner:       owner,
				Repo:        repo,
				FromLabel:   oldStatus,
				ToLabel:     newStatus,
				Timestamp:   now,
			})
			// 変更イベントにまとめたラベルは個別の追加/削除イベントにしない
			delete(oldSet, oldStatus)
			delete(newSet, newStatus)
		}
	}

	// 削除されたラベル
	for _, label := range oldLabels {
		if !oldSet[label] || newSet[label] {
			continue
		}
		delete(oldSet, label)
		events = append(events, IssueEvent{
			Type:        LabelRemoved,
			IssueNumber: issueNumber,
			IssueTitle:  issueTitle,
			Owner:       owner,
			Repo:        repo,
			FromLabel:   label,
			Timestamp:   now,
		})
	}

	// 追加されたラベル
	for _, label := range newLabels {
		if !newSet[label] || oldSet[label] {
			continue
		}
		delete(newSet, label)
		events = append(events, IssueEvent{
			Type:        LabelAdded,
			IssueNumber: issueNumber,
			IssueTitle:  issueTitle,
			Owner:       owner,
			Repo:        repo,
			ToLabel:     label,
			Timestamp:   now,
		})
	}

	return events
}
