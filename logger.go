package brickstream

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/hupe1980/brickstream/brick"
)

// Logger wraps slog.Logger with loader-specific helpers.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	}))
}

// WithBrick adds a brick field to the logger.
func (l *Logger) WithBrick(id brick.ID) *Logger {
	return &Logger{
		Logger: l.Logger.With("brick", uint64(id)),
	}
}

// WithDataset adds a dataset field to the logger.
func (l *Logger) WithDataset(id brick.DatasetID) *Logger {
	return &Logger{
		Logger: l.Logger.With("dataset", uint64(id)),
	}
}

// LogLoad logs a brick read.
func (l *Logger) LogLoad(ctx context.Context, id brick.ID, file brick.FileInfo, bytes int64, err error) {
	if err != nil {
		l.WarnContext(ctx, "brick load dropped",
			"brick", uint64(id),
			"file", file.String(),
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "brick loaded",
			"brick", uint64(id),
			"file", file.String(),
			"bytes", bytes,
		)
	}
}

// LogEviction logs one evicted brick.
func (l *Logger) LogEviction(ctx context.Context, id brick.ID, tier Tier, bytes int64) {
	l.WithBrick(id).DebugContext(ctx, "brick evicted",
		"tier", tier.String(),
		"bytes", bytes,
	)
}

// LogStalled logs a resident entry dropped because its load never finished.
func (l *Logger) LogStalled(ctx context.Context, id brick.ID, bytes int64) {
	l.WithBrick(id).DebugContext(ctx, "stalled load healed",
		"bytes", bytes,
	)
}

// LogDatasetRemoved logs the teardown of one dataset's resident bricks.
func (l *Logger) LogDatasetRemoved(id brick.DatasetID, bricks int, bytes int64) {
	l.WithDataset(id).Debug("dataset bricks removed",
		"bricks", bricks,
		"bytes", bytes,
	)
}

// LogRun logs the outcome of one Run.
func (l *Logger) LogRun(ctx context.Context, stats Stats, processed, loaded int, duration time.Duration, err error) {
	if err != nil {
		l.WarnContext(ctx, "run completed with errors",
			"processed", processed,
			"loaded", loaded,
			"used", stats.Used,
			"limit", stats.Limit,
			"duration", duration,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "run completed",
			"processed", processed,
			"loaded", loaded,
			"used", stats.Used,
			"limit", stats.Limit,
			"duration", duration,
		)
	}
}
