// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// レジストリやミドルウェアから利用する。
type MetricsCollector interface {
	RecordSignup(activity string)
	RecordSignupRejected(reason string)
	RecordUnregister(activity string)
	RecordUnregisterRejected(reason string)
	SetParticipants(activity string, count int)
	RecordHTTPStatus(statusCode int)
	RecordRequestDuration(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	signupTotal        prometheus.Counter
	signupRejected     *prometheus.CounterVec
	unregisterTotal    prometheus.Counter
	unregisterRejected *prometheus.CounterVec
	participants       *prometheus.GaugeVec
	httpStatus         *prometheus.CounterVec
	requestDuration    prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		signupTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bukatsu_signup_total",
			Help: "参加登録成功の合計数",
		}),
		signupRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bukatsu_signup_rejected_total",
			Help: "拒否された参加登録の理由別合計数",
		}, []string{"reason"}),
		unregisterTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bukatsu_unregister_total",
			Help: "登録解除成功の合計数",
		}),
		unregisterRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bukatsu_unregister_rejected_total",
			Help: "拒否された登録解除の理由別合計数",
		}, []string{"reason"}),
		participants: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "bukatsu_activity_participants",
			Help: "活動別の現在の参加者数",
		}, []string{"activity"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bukatsu_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bukatsu_request_duration_seconds",
			Help:    "HTTPリクエスト処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.signupTotal,
		c.signupRejected,
		c.unregisterTotal,
		c.unregisterRejected,
		c.participants,
		c.httpStatus,
		c.requestDuration,
	)

	return c
}

// RecordSignup は参加登録成功を記録する。
func (c *Collector) RecordSignup(activity string) {
	c.signupTotal.Inc()
}

// RecordSignupRejected は参加登録の拒否を理由付きで記録する。
func (c *Collector) RecordSignupRejected(reason string) {
	c.signupRejected.WithLabelValues(reason).Inc()
}

// RecordUnregister は登録解除成功を記録する。
func (c *Collector) RecordUnregister(activity string) {
	c.unregisterTotal.Inc()
}

// RecordUnregisterRejected は登録解除の拒否を理由付きで記録する。
func (c *Collector) RecordUnregisterRejected(reason string) {
	c.unregisterRejected.WithLabelValues(reason).Inc()
}

// SetParticipants は活動の現在参加者数を記録する。
func (c *Collector) SetParticipants(activity string, count int) {
	c.participants.WithLabelValues(activity).Set(float64(count))
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestDuration はリクエスト処理時間を記録する。
func (c *Collector) RecordRequestDuration(duration time.Duration) {
	c.requestDuration.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
// ルーターが/metricsパスにマウントして使用する。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
