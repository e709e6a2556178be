package rdb

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

type poolMetrics struct {
	checkedOut      prometheus.Gauge
	acquireDuration prometheus.Observer
}

func newPoolMetrics(name string) *poolMetrics {
	return &poolMetrics{
		checkedOut: register(prometheus.NewGauge(prometheus.GaugeOpts{
			Name: name + "_pool_checked_out_connections",
			Help: "Number of connections currently checked out of the pool",
		})),
		acquireDuration: register(prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    name + "_pool_acquire_duration_seconds",
			Help:    "Time spent waiting for a pooled connection",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 0.5, 1.0, 5.0},
		})),
	}
}

type executorMetrics struct {
	statementCounter  *prometheus.CounterVec
	statementDuration *prometheus.HistogramVec
	rowsCounter       *prometheus.CounterVec
}

func newExecutorMetrics(name string) *executorMetrics {
	return &executorMetrics{
		statementCounter: register(prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: name + "_statements_total",
				Help: "Total number of executed statements",
			},
			[]string{"operation", "status"},
		)),
		statementDuration: register(prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    name + "_statement_duration_seconds",
				Help:    "Duration of statements in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
			},
			[]string{"operation"},
		)),
		rowsCounter: register(prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: name + "_rows_total",
				Help: "Total number of rows returned or affected",
			},
			[]string{"operation"},
		)),
	}
}

// register 同名指标已注册时复用已有的收集器
func register[T prometheus.Collector](c T) T {
	if err := prometheus.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}
