package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger wraps slog.Logger with additional functionality
type Logger struct {
	*slog.Logger
}

// New creates a new logger instance
func New() *Logger {
	level := getLogLevel(os.Getenv("LOG_LEVEL"))

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	// Text handler for development, JSON for production
	var handler slog.Handler
	if gin.Mode() == gin.DebugMode {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// getLogLevel converts string to slog.Level
func getLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithError adds error to logger context
func (l *Logger) WithError(err error) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("error", err.Error())),
	}
}

// WithFields adds multiple fields to logger context
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	return &Logger{
		Logger: l.Logger.With(args...),
	}
}

// LogHTTPRequest logs an HTTP request
func (l *Logger) LogHTTPRequest(c *gin.Context, duration time.Duration) {
	l.Logger.InfoContext(c.Request.Context(),
		"HTTP Request",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("query", c.Request.URL.RawQuery),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", duration),
		slog.String("ip", c.ClientIP()),
		slog.Int("size", c.Writer.Size()),
	)
}

// LogBookingCreated logs when a pending booking is created
func (l *Logger) LogBookingCreated(ctx context.Context, orderID, eventID string) {
	l.Logger.InfoContext(ctx,
		"Booking Created",
		slog.String("order_id", orderID),
		slog.String("event_id", eventID),
	)
}

// LogBookingConfirmed logs a successful reconciliation
func (l *Logger) LogBookingConfirmed(ctx context.Context, orderID, providerTxnID, source string) {
	l.Logger.InfoContext(ctx,
		"Booking Confirmed",
		slog.String("order_id", orderID),
		slog.String("provider_txn_id", providerTxnID),
		slog.String("source", source),
	)
}

// LogBookingFailed logs a terminal booking failure
func (l *Logger) LogBookingFailed(ctx context.Context, orderID, reason string) {
	l.Logger.WarnContext(ctx,
		"Booking Failed",
		slog.String("order_id", orderID),
		slog.String("reason", reason),
	)
}

// LogAmountMismatch logs a paid/expected amount divergence. Treated as a
// potential tampering attempt, hence error level.
func (l *Logger) LogAmountMismatch(ctx context.Context, orderID string, expected, paid float64) {
	l.Logger.ErrorContext(ctx,
		"Payment Amount Mismatch",
		slog.String("order_id", orderID),
		slog.Float64("expected", expected),
		slog.Float64("paid", paid),
	)
}

// LogGatewayError logs failures talking to the payment provider
func (l *Logger) LogGatewayError(ctx context.Context, orderID string, err error) {
	l.Logger.WarnContext(ctx,
		"Payment Gateway Error",
		slog.String("order_id", orderID),
		slog.String("error", err.Error()),
	)
}

// InfoWithContext logs an info message with context
func (l *Logger) InfoWithContext(ctx context.Context, msg string, fields map[string]interface{}) {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	l.Logger.InfoContext(ctx, msg, args...)
}

// ErrorWithContext logs an error message with context
func (l *Logger) ErrorWithContext(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	args := make([]interface{}, 0, len(fields)*2+2)
	args = append(args, slog.String("error", err.Error()))
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	l.Logger.ErrorContext(ctx, msg, args...)
}

// Global logger instance (can be replaced with dependency injection)
var defaultLogger = New()

// GetDefault returns the default logger instance
func GetDefault() *Logger {
	return defaultLogger
}

// SetDefault sets the default logger instance
func SetDefault(logger *Logger) {
	defaultLogger = logger
}
