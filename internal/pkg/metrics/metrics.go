package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics はアプリケーションのメトリクスを管理する
type Metrics struct {
	// HTTPリクエストの総数（method, path, status_code）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPリクエストのレイテンシ（method, path）
	HTTPRequestDuration *prometheus.HistogramVec

	// 座席予約の総数（status: success, conflict, not_found, error）
	SeatReservationsTotal *prometheus.CounterVec

	// 発券されたチケットの総数（type: early_bird, vip, standard）
	TicketsGeneratedTotal *prometheus.CounterVec

	// チェックアウトの総数（status: success, validation_failed, empty_total, error）
	CartCheckoutsTotal *prometheus.CounterVec

	// 分散ロックの操作時間（operation: acquire/release, status: success/failed）
	DistributedLockDuration *prometheus.HistogramVec

	// カートに保留中のチケット数
	HeldTickets prometheus.Gauge
}

// New は新しいMetricsインスタンスを作成し、デフォルトレジストリに登録する
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry は指定したレジストリにメトリクスを登録する
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		SeatReservationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seat_reservations_total",
				Help: "Total number of seat reservation attempts",
			},
			[]string{"status"},
		),
		TicketsGeneratedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tickets_generated_total",
				Help: "Total number of tickets generated per tier",
			},
			[]string{"type"},
		),
		CartCheckoutsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cart_checkouts_total",
				Help: "Total number of cart checkout attempts",
			},
			[]string{"status"},
		),
		DistributedLockDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "distributed_lock_duration_seconds",
				Help:    "Time spent on distributed lock operations",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"operation", "status"},
		),
		HeldTickets: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "held_tickets",
				Help: "Current number of tickets held in carts",
			},
		),
	}

	// レジストリに登録
	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.SeatReservationsTotal,
		m.TicketsGeneratedTotal,
		m.CartCheckoutsTotal,
		m.DistributedLockDuration,
		m.HeldTickets,
	)

	return m
}

// デフォルトのメトリクスインスタンス
var defaultMetrics *Metrics

// Init はデフォルトのメトリクスインスタンスを初期化する
func Init() *Metrics {
	defaultMetrics = New()
	return defaultMetrics
}

// Get はデフォルトのメトリクスインスタンスを返す
func Get() *Metrics {
	return defaultMetrics
}
