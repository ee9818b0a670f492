package knngo

import (
	"log/slog"
	"runtime"

	"github.com/hupe1980/knngo/metric"
	"github.com/hupe1980/knngo/tree"
)

type options struct {
	metric           metric.Metric
	leafSize         int
	parallelism      int
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures KNNGo constructor/load behavior.
type Option func(*options)

// WithMetric configures the distance metric. The default is Euclidean.
// Load ignores this option: a snapshot carries its own metric.
func WithMetric(m metric.Metric) Option {
	return func(o *options) {
		if m == nil {
			m = metric.Euclidean{}
		}
		o.metric = m
	}
}

// WithLeafSize configures the maximum number of points per tree leaf.
// Smaller leaves prune harder but cost more node visits.
func WithLeafSize(leafSize int) Option {
	return func(o *options) {
		o.leafSize = leafSize
	}
}

// WithParallelism bounds the number of concurrent queries a batch search
// runs. Defaults to GOMAXPROCS.
func WithParallelism(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.parallelism = n
		}
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &knngo.BasicMetricsCollector{}
//	kg, _ := knngo.New(points, knngo.WithMetricsCollector(metrics))
//	// ... run queries ...
//	stats := metrics.GetStats()
//	fmt.Printf("Searches: %d, Avg latency: %dns\n", stats.SearchCount, stats.SearchAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := knngo.NewJSONLogger(slog.LevelInfo)
//	kg, _ := knngo.New(points, knngo.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metric:           metric.Euclidean{},
		leafSize:         tree.DefaultOptions.LeafSize,
		parallelism:      runtime.GOMAXPROCS(0),
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
