package brickstream

import "log/slog"

const (
	// LegacyMemoryLimit is the implicit 10MB budget older renderers ran
	// with. It is far too small for real pyramids and is only exported
	// for hosts that need to reproduce that behavior.
	LegacyMemoryLimit int64 = 10_000_000

	// MinRecommendedMemoryLimit is the smallest budget New accepts
	// without logging a warning.
	MinRecommendedMemoryLimit int64 = 64 << 20

	// DefaultMaxEvictionRounds bounds the eviction rounds attempted to
	// admit one brick.
	DefaultMaxEvictionRounds = 4
)

type options struct {
	memoryLimit       int64
	maxEvictionRounds int
	metricsCollector  MetricsCollector
	logger            *Logger
}

// Option configures a Loader.
type Option func(*options)

// WithMemoryLimit sets the CPU memory budget in bytes. It is required.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithMaxEvictionRounds bounds the eviction rounds attempted before a
// load is dropped as budget exhaustion. Values < 1 keep the default.
func WithMaxEvictionRounds(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxEvictionRounds = n
		}
	}
}

// WithMetricsCollector sets a metrics collector.
//
// If nil is passed, NoopMetricsCollector is used.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger sets the logger.
//
// If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithSlogHandler builds the logger from a slog handler.
func WithSlogHandler(h slog.Handler) Option {
	return func(o *options) {
		o.logger = NewLogger(h)
	}
}

func defaultOptions() options {
	return options{
		maxEvictionRounds: DefaultMaxEvictionRounds,
		metricsCollector:  NoopMetricsCollector{},
		logger:            NoopLogger(),
	}
}
