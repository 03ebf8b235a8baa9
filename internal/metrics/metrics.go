// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 投票・ユーザー登録の結果ラベル
const (
	ResultInserted = "inserted"
	ResultUpdated  = "updated"
	ResultCreated  = "created"
	ResultExisting = "existing"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層とHTTPミドルウェアから利用する。
type MetricsCollector interface {
	RecordVoteSubmitted(result string)
	RecordStatsLatency(duration time.Duration)
	RecordUserCreated(result string)
	RecordEntityCreated(votableCount int)
	RecordVotablesCreated(count int)
	RecordHTTPStatus(statusCode int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	votesSubmitted  *prometheus.CounterVec
	statsLatency    prometheus.Histogram
	usersCreated    *prometheus.CounterVec
	entitiesCreated prometheus.Counter
	votablesCreated prometheus.Counter
	httpStatus      *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		votesSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "votable_votes_submitted_total",
			Help: "投票の合計数（新規作成・上書き別）",
		}, []string{"result"}),
		statsLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "votable_stats_computation_seconds",
			Help:    "統計集計のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		usersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "votable_users_registered_total",
			Help: "ユーザー登録リクエストの合計数（新規・既存別）",
		}, []string{"result"}),
		entitiesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "votable_entities_created_total",
			Help: "作成されたエンティティの合計数",
		}),
		votablesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "votable_votables_created_total",
			Help: "作成された投票項目の合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "votable_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.votesSubmitted,
		c.statsLatency,
		c.usersCreated,
		c.entitiesCreated,
		c.votablesCreated,
		c.httpStatus,
	)

	return c
}

// RecordVoteSubmitted は投票を記録する。resultはinsertedまたはupdated。
func (c *Collector) RecordVoteSubmitted(result string) {
	c.votesSubmitted.WithLabelValues(result).Inc()
}

// RecordStatsLatency は統計集計のレイテンシを記録する。
func (c *Collector) RecordStatsLatency(duration time.Duration) {
	c.statsLatency.Observe(duration.Seconds())
}

// RecordUserCreated はユーザー登録を記録する。resultはcreatedまたはexisting。
func (c *Collector) RecordUserCreated(result string) {
	c.usersCreated.WithLabelValues(result).Inc()
}

// RecordEntityCreated はエンティティ作成と同時に作成された投票項目数を記録する。
func (c *Collector) RecordEntityCreated(votableCount int) {
	c.entitiesCreated.Inc()
	c.votablesCreated.Add(float64(votableCount))
}

// RecordVotablesCreated は既存エンティティへの投票項目追加を記録する。
func (c *Collector) RecordVotablesCreated(count int) {
	c.votablesCreated.Add(float64(count))
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// NopCollector は何も記録しないMetricsCollector。
// メトリクスが不要なテストやツールで使用する。
type NopCollector struct{}

func (NopCollector) RecordVoteSubmitted(string) {}
func (NopCollector) RecordStatsLatency(time.Duration) {}
func (NopCollector) RecordUserCreated(string) {}
func (NopCollector) RecordEntityCreated(int) {}
func (NopCollector) RecordVotablesCreated(int) {}
func (NopCollector) RecordHTTPStatus(int) {}
