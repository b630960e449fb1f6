package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	transitionsTotal = prometheus.NewDesc(
		"fuda_transitions_total",
		"Total number of status label transitions by result",
		[]string{"from", "to", "result"},
		nil,
	)

	issuesSeenTotal = prometheus.NewDesc(
		"fuda_issues_seen_total",
		"Total number of distinct issues seen by the watch loop",
		nil,
		nil,
	)

	pollErrorsTotal = prometheus.NewDesc(
		"fuda_poll_errors_total",
		"Total number of failed poll cycles",
		nil,
		nil,
	)

	apiPointsRemaining = prometheus.NewDesc(
		"fuda_api_points_remaining",
		"Number of currently remaining GitHub API points",
		nil,
		nil,
	)

	lastPollTimestamp = prometheus.NewDesc(
		"fuda_last_poll_timestamp_seconds",
		"UNIX timestamp of the last completed poll in seconds",
		nil,
		nil,
	)
)
