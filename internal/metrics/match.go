package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	matchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_requests_total",
			Help: "Total match submissions by result and verdict",
		},
		[]string{"result", "verdict"},
	)

	matchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "match_request_duration_ms",
			Help:    "Match settlement duration in milliseconds",
			Buckets: prometheus.ExponentialBuckets(5, 2, 10),
		},
		[]string{"result", "verdict"},
	)
)

// RecordMatch 记录比赛结算的业务指标
// result: "success" | "fail"
// verdict: "gov" | "opp" | "unknown"
func RecordMatch(result, verdict string, started time.Time) {
	res := result
	if res != "success" {
		res = "fail"
	}
	v := strings.ToLower(strings.TrimSpace(verdict))
	if v != "gov" && v != "opp" {
		v = "unknown"
	}
	matchTotal.WithLabelValues(res, v).Inc()
	durMs := float64(time.Since(started).Milliseconds())
	matchDuration.WithLabelValues(res, v).Observe(durMs)
}
