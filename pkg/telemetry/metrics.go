// Package telemetry provides the Prometheus metrics of the bot.
package telemetry

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	TicksTotal        *prometheus.CounterVec
	TickFailuresTotal *prometheus.CounterVec
	OvertakesTotal    prometheus.Counter
	FetchDuration     *prometheus.HistogramVec
	DriversGauge      prometheus.Gauge
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		TicksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "f1livebot_ticks_total",
			Help: "Number of scheduled ticks run, by kind",
		}, []string{"kind"})
		TickFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "f1livebot_tick_failures_total",
			Help: "Number of ticks skipped because of an error, by tick kind and error kind",
		}, []string{"kind", "error"})
		OvertakesTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "f1livebot_overtakes_total",
			Help: "Number of overtakes detected",
		})
		FetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "f1livebot_fetch_duration_seconds",
			Help:    "OpenF1 request duration seconds, by endpoint",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"})
		DriversGauge = promauto.NewGauge(prometheus.GaugeOpts{
			Name: "f1livebot_drivers",
			Help: "Drivers in the current position snapshot",
		})
	})
}

func Tick(kind string) {
	if TicksTotal != nil {
		TicksTotal.WithLabelValues(kind).Inc()
	}
}

func TickFailed(kind, errorKind string) {
	if TickFailuresTotal != nil {
		TickFailuresTotal.WithLabelValues(kind, errorKind).Inc()
	}
}

func Overtakes(n int) {
	if OvertakesTotal != nil && n > 0 {
		OvertakesTotal.Add(float64(n))
	}
}

func ObserveFetch(endpoint string, d time.Duration) {
	if FetchDuration != nil {
		FetchDuration.WithLabelValues(endpoint).Observe(d.Seconds())
	}
}

func SetDrivers(n int) {
	if DriversGauge != nil {
		DriversGauge.Set(float64(n))
	}
}
