package watcher

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/douhashi/fuda/internal/metrics"
)

var _ metrics.TransitionSource = (*TransitionMetrics)(nil)

// 遷移結果を表すメトリクスラベル値
const (
	resultSuccess = "success"
	resultFailure = "failure"
)

// TransitionMetrics はラベル遷移の試行結果を集計する構造体
type TransitionMetrics struct {
	mu             sync.RWMutex
	total          int64
	succeeded      int64
	failed         int64
	failureReasons map[string]int64
	patterns       map[transitionKey]int64
	startTime      time.Time
	lastTransition time.Time
}

// transitionKey は遷移パターンの集計キー
type transitionKey struct {
	from   string
	to     string
	result string
}

// FailureReason は失敗理由とその発生回数を表す構造体
type FailureReason struct {
	Reason string
	Count  int64
}

// NewTransitionMetrics は新しいTransitionMetricsを作成する
func NewTransitionMetrics() *TransitionMetrics {
	return &TransitionMetrics{
		failureReasons: make(map[string]int64),
		patterns:       make(map[transitionKey]int64),
		startTime:      time.Now(),
	}
}

// RecordSuccess は成功したラベル遷移を記録する
func (m *TransitionMetrics) RecordSuccess(from, to string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.total++
	m.succeeded++
	m.patterns[transitionKey{from: from, to: to, result: resultSuccess}]++
	m.lastTransition = time.Now()
}

// RecordFailure は失敗したラベル遷移を理由とともに記録する
func (m *TransitionMetrics) RecordFailure(from, to, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.total++
	m.failed++
	m.failureReasons[reason]++
	m.patterns[transitionKey{from: from, to: to, result: resultFailure}]++
	m.lastTransition = time.Now()
}

// TransitionCounts は遷移パターンごとの集計値を返す
// 返り値はfrom、to、resultの昇順で整列される
func (m *TransitionMetrics) TransitionCounts() []metrics.TransitionCount {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make([]metrics.TransitionCount, 0, len(m.patterns))
	for key, count := range m.patterns {
		counts = append(counts, metrics.TransitionCount{
			From:   key.from,
			To:     key.to,
			Result: key.result,
			Count:  count,
		})
	}

	sort.Slice(counts, func(i, j int) bool {
		if counts[i].From != counts[j].From {
			return counts[i].From < counts[j].From
		}
		if counts[i].To != counts[j].To {
			return counts[i].To < counts[j].To
		}
		return counts[i].Result < counts[j].Result
	})

	return counts
}

// SuccessRate は成功率を百分率で返す
func (m *TransitionMetrics) SuccessRate() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.successRateLocked()
}

func (m *TransitionMetrics) successRateLocked() float64 {
	if m.total == 0 {
		return 0.0
	}
	return float64(m.succeeded) / float64(m.total) * 100.0
}

// SuccessRateFormatted はフォーマット済みの成功率文字列を返す
func (m *TransitionMetrics) SuccessRateFormatted() string {
	return fmt.Sprintf("%.2f%%", m.SuccessRate())
}

// TopFailureReasons は発生回数の多い順に失敗理由を最大limit件返す
// 同数の場合は理由の昇順で並ぶ
func (m *TransitionMetrics) TopFailureReasons(limit int) []FailureReason {
	m.mu.RLock()
	defer m.mu.RUnlock()

	reasons := make([]FailureReason, 0, len(m.failureReasons))
	for reason, count := range m.failureReasons {
		reasons = append(reasons, FailureReason{Reason: reason, Count: count})
	}

	sort.Slice(reasons, func(i, j int) bool {
		if reasons[i].Count != reasons[j].Count {
			return reasons[i].Count > reasons[j].Count
		}
		return reasons[i].Reason < reasons[j].Reason
	})

	if limit >= 0 && limit < len(reasons) {
		reasons = reasons[:limit]
	}

	return reasons
}

// Snapshot はメトリクスの読み取り専用コピーを返す
func (m *TransitionMetrics) Snapshot() TransitionMetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	failureReasons := make(map[string]int64, len(m.failureReasons))
	for reason, count := range m.failureReasons {
		failureReasons[reason] = count
	}

	return TransitionMetricsSnapshot{
		Total:          m.total,
		Succeeded:      m.succeeded,
		Failed:         m.failed,
		FailureReasons: failureReasons,
		SuccessRate:    m.successRateLocked(),
		StartTime:      m.startTime,
		LastTransition: m.lastTransition,
		Uptime:         time.Since(m.startTime),
	}
}

// Reset はすべての集計値をゼロに戻す
func (m *TransitionMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.total = 0
	m.succeeded = 0
	m.failed = 0
	m.failureReasons = make(map[string]int64)
	m.patterns = make(map[transitionKey]int64)
	m.startTime = time.Now()
	m.lastTransition = time.Time{}
}

// TransitionMetricsSnapshot はTransitionMetricsの読み取り専用スナップショット
type TransitionMetricsSnapshot struct {
	Total          int64
	Succeeded      int64
	Failed         int64
	FailureReasons map[string]int64
	SuccessRate    float64
	StartTime      time.Time
	LastTransition time.Time
	Uptime         time.Duration
}

// SuccessRateFormatted はフォーマット済みの成功率文字列を返す
func (s TransitionMetricsSnapshot) SuccessRateFormatted() string {
	return fmt.Sprintf("%.2f%%", s.SuccessRate)
}
