// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層とハンドラーから利用する。
type MetricsCollector interface {
	RecordDetailView(kind string)
	RecordViewIncrementFailure(kind string)
	RecordPolicyDenial(action string)
	RecordUpload(bucket string)
	RecordContactSubmission()
	RecordLoginSuccess()
	RecordLoginFailure()
	RecordHTTPStatus(statusCode int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	detailViews      *prometheus.CounterVec
	viewIncFailures  *prometheus.CounterVec
	policyDenials    *prometheus.CounterVec
	uploads          *prometheus.CounterVec
	contactSubmitted prometheus.Counter
	loginSuccess     prometheus.Counter
	loginFailure     prometheus.Counter
	httpStatus       *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		detailViews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agora_detail_views_total",
			Help: "公開詳細ページ閲覧の合計数（種別: news, article）",
		}, []string{"kind"}),
		viewIncFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agora_view_increment_failures_total",
			Help: "閲覧数加算の失敗合計数（種別: news, article）",
		}, []string{"kind"}),
		policyDenials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agora_policy_denials_total",
			Help: "アクセスポリシーによる拒否の合計数（操作別）",
		}, []string{"action"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agora_uploads_total",
			Help: "画像アップロード成功の合計数（バケット別）",
		}, []string{"bucket"}),
		contactSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "agora_contact_submissions_total",
			Help: "問い合わせ送信の合計数",
		}),
		loginSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "agora_login_success_total",
			Help: "ログイン成功の合計数",
		}),
		loginFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "agora_login_failure_total",
			Help: "ログイン失敗の合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agora_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.detailViews,
		c.viewIncFailures,
		c.policyDenials,
		c.uploads,
		c.contactSubmitted,
		c.loginSuccess,
		c.loginFailure,
		c.httpStatus,
	)

	return c
}

// RecordDetailView は公開詳細ページの閲覧を記録する。
func (c *Collector) RecordDetailView(kind string) {
	c.detailViews.WithLabelValues(kind).Inc()
}

// RecordViewIncrementFailure は閲覧数加算の失敗を記録する。
func (c *Collector) RecordViewIncrementFailure(kind string) {
	c.viewIncFailures.WithLabelValues(kind).Inc()
}

// RecordPolicyDenial はポリシーによる操作拒否を記録する。
func (c *Collector) RecordPolicyDenial(action string) {
	c.policyDenials.WithLabelValues(action).Inc()
}

// RecordUpload は画像アップロード成功を記録する。
func (c *Collector) RecordUpload(bucket string) {
	c.uploads.WithLabelValues(bucket).Inc()
}

// RecordContactSubmission は問い合わせ送信を記録する。
func (c *Collector) RecordContactSubmission() {
	c.contactSubmitted.Inc()
}

// RecordLoginSuccess はログイン成功を記録する。
func (c *Collector) RecordLoginSuccess() {
	c.loginSuccess.Inc()
}

// RecordLoginFailure はログイン失敗を記録する。
func (c *Collector) RecordLoginFailure() {
	c.loginFailure.Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
