// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はPrometheusメトリクスを収集する実装。
// HTTPミドルウェアとファイルストアの両方から利用される。
type Collector struct {
	httpStatus      *prometheus.CounterVec
	requestDuration prometheus.Histogram
	uploadsSaved    prometheus.Counter
	uploadBytes     prometheus.Counter
	fileDeletes     *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskbackend_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "taskbackend_http_request_duration_seconds",
			Help:    "HTTPリクエスト処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		uploadsSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskbackend_uploads_total",
			Help: "保存されたアップロードファイルの合計数",
		}),
		uploadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskbackend_upload_bytes_total",
			Help: "保存されたアップロードファイルの合計バイト数",
		}),
		fileDeletes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskbackend_file_deletes_total",
			Help: "添付ファイル削除の試行数（結果別）",
		}, []string{"result"}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.requestDuration,
		c.uploadsSaved,
		c.uploadBytes,
		c.fileDeletes,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestDuration はHTTPリクエストの処理時間を記録する。
func (c *Collector) RecordRequestDuration(d time.Duration) {
	c.requestDuration.Observe(d.Seconds())
}

// RecordUploadSaved はアップロードファイルの保存を記録する。
func (c *Collector) RecordUploadSaved(bytes int64) {
	c.uploadsSaved.Inc()
	c.uploadBytes.Add(float64(bytes))
}

// RecordFileDelete は添付ファイル削除の試行結果を記録する。
func (c *Collector) RecordFileDelete(ok bool) {
	result := "success"
	if !ok {
		result = "failure"
	}
	c.fileDeletes.WithLabelValues(result).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
