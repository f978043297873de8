// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// APIクライアント、一覧ストア、ブートストラップから利用する。
type MetricsCollector interface {
	RecordAPIRequest(path, outcome string, duration time.Duration)
	RecordPageLoad(list, kind string, items int, err error)
	RecordSessionExpired()
	RecordBootstrapTask(task string, err error)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	apiRequests    *prometheus.CounterVec
	apiLatency     *prometheus.HistogramVec
	pageLoads      *prometheus.CounterVec
	pageItems      *prometheus.CounterVec
	sessionExpired prometheus.Counter
	bootstrapTasks *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "giftdesk_api_requests_total",
			Help: "バックエンドAPI呼び出しの合計数（パス・結果別）",
		}, []string{"path", "outcome"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "giftdesk_api_request_duration_seconds",
			Help:    "バックエンドAPI呼び出しのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"path"}),
		pageLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "giftdesk_page_loads_total",
			Help: "一覧ストアのページ読み込み数（一覧・種別・結果別）",
		}, []string{"list", "kind", "result"}),
		pageItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "giftdesk_page_items_total",
			Help: "一覧ストアが受信した件数の合計",
		}, []string{"list"}),
		sessionExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "giftdesk_session_expired_total",
			Help: "セッション期限切れを検出した回数",
		}),
		bootstrapTasks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "giftdesk_bootstrap_tasks_total",
			Help: "起動時の補助タスクの実行数（タスク・結果別）",
		}, []string{"task", "result"}),
	}

	reg.MustRegister(
		c.apiRequests,
		c.apiLatency,
		c.pageLoads,
		c.pageItems,
		c.sessionExpired,
		c.bootstrapTasks,
	)

	return c
}

// RecordAPIRequest はAPI呼び出し1回分の結果とレイテンシを記録する。
func (c *Collector) RecordAPIRequest(path, outcome string, duration time.Duration) {
	c.apiRequests.WithLabelValues(path, outcome).Inc()
	c.apiLatency.WithLabelValues(path).Observe(duration.Seconds())
}

// RecordPageLoad はページ読み込み1回分を記録する。
func (c *Collector) RecordPageLoad(list, kind string, items int, err error) {
	c.pageLoads.WithLabelValues(list, kind, result(err)).Inc()
	if err == nil {
		c.pageItems.WithLabelValues(list).Add(float64(items))
	}
}

// RecordSessionExpired はセッション期限切れの検出を記録する。
func (c *Collector) RecordSessionExpired() {
	c.sessionExpired.Inc()
}

// RecordBootstrapTask は補助タスクの結果を記録する。
func (c *Collector) RecordBootstrapTask(task string, err error) {
	c.bootstrapTasks.WithLabelValues(task, result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

var _ MetricsCollector = (*Collector)(nil)
