package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// TransitionCount は1つの遷移パターンの観測数
type TransitionCount struct {
	From   string
	To     string
	Result string
	Count  int64
}

// TransitionSource はラベル遷移カウントのスナップショットを提供する
type TransitionSource interface {
	TransitionCounts() []TransitionCount
}

// PollSource はポーリングループの統計を提供する
type PollSource interface {
	IssuesSeen() int64
	PollErrors() int64
	LastPollTime() time.Time
}

// PointsSource は残りAPIポイント数を提供する
type PointsSource interface {
	GetRemainingPoints() int
}

// Collector はwatchループの状態をPrometheusメトリクスとして公開する
// ソースがnilの場合、対応するメトリクスは出力されない
type Collector struct {
	transitions TransitionSource
	poll        PollSource
	points      PointsSource
}

// NewCollector は新しいコレクターを作成する
func NewCollector(transitions TransitionSource, poll PollSource, points PointsSource) *Collector {
	return &Collector{
		transitions: transitions,
		poll:        poll,
		points:      points,
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	prometheus.DescribeByCollect(c, ch)
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	if c.transitions != nil {
		for _, tc := range c.transitions.TransitionCounts() {
			ch <- prometheus.MustNewConstMetric(transitionsTotal, prometheus.CounterValue, float64(tc.Count), tc.From, tc.To, tc.Result)
		}
	}

	if c.poll != nil {
		ch <- prometheus.MustNewConstMetric(issuesSeenTotal, prometheus.CounterValue, float64(c.poll.IssuesSeen()))
		ch <- prometheus.MustNewConstMetric(pollErrorsTotal, prometheus.CounterValue, float64(c.poll.PollErrors()))

		if last := c.poll.LastPollTime(); !last.IsZero() {
			ch <- prometheus.MustNewConstMetric(lastPollTimestamp, prometheus.GaugeValue, float64(last.Unix()))
		}
	}

	if c.points != nil {
		ch <- prometheus.MustNewConstMetric(apiPointsRemaining, prometheus.GaugeValue, float64(c.points.GetRemainingPoints()))
	}
}

// Handler はコレクターを登録した/metricsエンドポイントのハンドラーを返す
func Handler(collectors ...prometheus.Collector) http.Handler {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors...)
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
