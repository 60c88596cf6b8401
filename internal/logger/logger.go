package logger

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/TheZeroSlave/zapsentry"
	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// global is a no-op logger until Initialize is called
	global atomic.Pointer[zap.Logger]

	// sentryClient is set when errors are reported to sentry
	sentryClient atomic.Pointer[sentry.Client]
)

func init() {
	global.Store(zap.NewNop())
}

// Config holds logger configuration
type Config struct {
	Debug           bool
	Service         string // attached to every entry and sent to sentry as a tag
	SentryDSN       string
	SentryClient    *sentry.Client
	BreadcrumbLevel zapcore.Level
	Tags            map[string]string
}

// Initialize builds the global logger. Errors are also reported to sentry when a DSN or
// client is configured, with entries at BreadcrumbLevel and above kept as breadcrumbs.
func Initialize(cfg Config) error {
	base, err := build(cfg.Debug)
	if err != nil {
		return err
	}
	if cfg.Service != "" {
		base = base.With(zap.String("service", cfg.Service))
	}

	if cfg.SentryDSN == "" && cfg.SentryClient == nil {
		global.Store(base)
		return nil
	}

	client := cfg.SentryClient
	if client == nil {
		client, err = sentry.NewClient(sentry.ClientOptions{
			Dsn:   cfg.SentryDSN,
			Debug: cfg.Debug,
		})
		if err != nil {
			return err
		}
	}

	withSentry, err := attachSentry(base, client, cfg)
	if err != nil {
		return err
	}
	sentryClient.Store(client)
	global.Store(withSentry)
	return nil
}

func build(debug bool) (*zap.Logger, error) {
	zapConfig := zap.NewProductionConfig()
	if debug {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		zapConfig.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	return zapConfig.Build()
}

func attachSentry(base *zap.Logger, client *sentry.Client, cfg Config) (*zap.Logger, error) {
	breadcrumbLevel := cfg.BreadcrumbLevel
	if breadcrumbLevel == zapcore.InvalidLevel {
		breadcrumbLevel = zapcore.InfoLevel
	}

	tags := make(map[string]string, len(cfg.Tags)+1)
	for k, v := range cfg.Tags {
		tags[k] = v
	}
	if cfg.Service != "" {
		tags["service"] = cfg.Service
	}

	core, err := zapsentry.NewCore(zapsentry.Configuration{
		Level:             zapcore.ErrorLevel,
		EnableBreadcrumbs: true,
		BreadcrumbLevel:   breadcrumbLevel,
		Tags:              tags,
	}, zapsentry.NewSentryClientFromClient(client))
	if err != nil {
		return nil, err
	}

	return zapsentry.AttachCoreToLogger(core, base), nil
}

// Flush waits up to timeout for buffered sentry events to be sent
func Flush(timeout time.Duration) {
	if client := sentryClient.Load(); client != nil {
		client.Flush(timeout)
	}
	_ = global.Load().Sync()
}

// FromContext returns the global logger carrying the sentry scope of ctx
func FromContext(ctx context.Context) *zap.Logger {
	l := global.Load()
	if ctx == nil {
		return l
	}
	return l.With(zapsentry.Context(ctx))
}

// Default returns the global logger
func Default() *zap.Logger {
	return global.Load()
}

// Named returns a child of the global logger tagged with a component name
func Named(component string) *zap.Logger {
	return global.Load().With(zap.String("component", component))
}

// Replace swaps the global logger and returns a func restoring the previous one.
// Tests use it with zaptest/observer to assert on emitted entries.
func Replace(l *zap.Logger) func() {
	prev := global.Swap(l)
	return func() { global.Store(prev) }
}

func Info(msg string, fields ...zap.Field) {
	global.Load().Info(msg, fields...)
}

func InfoCtx(ctx context.Context, msg string, fields ...zap.Field) {
	FromContext(ctx).Info(msg, fields...)
}

// Error logs err as the message. A nil err is still logged so the fields are not lost.
func Error(err error, fields ...zap.Field) {
	global.Load().Error(errorMessage(err), fields...)
}

func ErrorCtx(ctx context.Context, err error, fields ...zap.Field) {
	FromContext(ctx).Error(errorMessage(err), fields...)
}

func errorMessage(err error) string {
	if err == nil {
		return "error occurred"
	}
	return err.Error()
}

func Warn(msg string, fields ...zap.Field) {
	global.Load().Warn(msg, fields...)
}

func WarnCtx(ctx context.Context, msg string, fields ...zap.Field) {
	FromContext(ctx).Warn(msg, fields...)
}

func Debug(msg string, fields ...zap.Field) {
	global.Load().Debug(msg, fields...)
}

func DebugCtx(ctx context.Context, msg string, fields ...zap.Field) {
	FromContext(ctx).Debug(msg, fields...)
}

// Fatal logs and exits the process
func Fatal(msg string, fields ...zap.Field) {
	global.Load().Fatal(msg, fields...)
}

func FatalCtx(ctx context.Context, msg string, fields ...zap.Field) {
	FromContext(ctx).Fatal(msg, fields...)
}
