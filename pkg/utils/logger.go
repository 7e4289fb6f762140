package utils

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newSyncWriter opens path for appending and falls back to stderr when it
// cannot be opened, so a bad LOG_OUTPUT path never aborts startup.
func newSyncWriter(path string) zapcore.WriteSyncer {
	if path == "" {
		return zapcore.AddSync(os.Stderr)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return zapcore.AddSync(os.Stderr)
	}
	return zapcore.AddSync(f)
}

// LogConfig controls the structured logger built by InitLogger. Every field
// has a documented default so a zero-value LogConfig still produces a usable
// logger.
type LogConfig struct {
	Level       string // debug, info, warn, error, fatal (default info)
	Format      string // json or text (default json)
	Development bool   // enables zap's development encoder defaults
	Output      string // file path; empty means stderr
}

// Logger wraps zap.Logger with a pre-built sugared logger and the domain
// field helpers below. Every component in this module takes a
// *zap.SugaredLogger directly; Logger exists for process startup, where
// InitLogger(cfg).Sugar() hands that out.
type Logger struct {
	*zap.Logger
	sugar *zap.SugaredLogger
}

// InitLogger builds a Logger from cfg. An invalid Output path falls back to
// stderr rather than failing startup — logging configuration is never fatal.
func InitLogger(cfg LogConfig) *Logger {
	level := parseLevel(cfg.Level)

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	if cfg.Development {
		encoderCfg = zap.NewDevelopmentEncoderConfig()
	}

	var encoder zapcore.Encoder
	if strings.EqualFold(cfg.Format, "text") {
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	sink := zapcore.AddSync(newSyncWriter(cfg.Output))
	core := zapcore.NewCore(encoder, sink, level)

	opts := []zap.Option{zap.AddCaller()}
	if cfg.Development {
		opts = append(opts, zap.Development())
	}

	zl := zap.New(core, opts...)
	return &Logger{Logger: zl, sugar: zl.Sugar()}
}

// Sugar returns the printf-style logger backing this Logger.
func (l *Logger) Sugar() *zap.SugaredLogger {
	return l.sugar
}

// With returns a child Logger carrying the given structured fields.
func (l *Logger) With(fields ...zap.Field) *Logger {
	zl := l.Logger.With(fields...)
	return &Logger{Logger: zl, sugar: zl.Sugar()}
}

// WithComponent tags log lines with the subsystem that produced them.
func (l *Logger) WithComponent(component string) *Logger {
	return l.With(Component(component))
}

// WithExchange tags log lines with the venue they pertain to.
func (l *Logger) WithExchange(exchange string) *Logger {
	return l.With(Exchange(exchange))
}

// WithSymbol tags log lines with the canonical symbol they pertain to.
func (l *Logger) WithSymbol(symbol string) *Logger {
	return l.With(Symbol(symbol))
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// ============ Global logger ============

var (
	globalMu     sync.Mutex
	globalLogger *Logger
)

// GetGlobalLogger returns the process-wide logger, building a default one
// on first use.
func GetGlobalLogger() *Logger {
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLogger == nil {
		globalLogger = InitLogger(LogConfig{})
	}
	return globalLogger
}

// InitGlobalLogger builds a Logger from cfg and installs it as the
// process-wide logger.
func InitGlobalLogger(cfg LogConfig) *Logger {
	l := InitLogger(cfg)
	SetGlobalLogger(l)
	return l
}

// SetGlobalLogger installs l as the process-wide logger.
func SetGlobalLogger(l *Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = l
}

// L returns the process-wide logger.
func L() *Logger {
	return GetGlobalLogger()
}

func Debug(msg string, fields ...zap.Field) { L().Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { L().Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { L().Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { L().Error(msg, fields...) }

func Debugf(format string, args ...interface{}) { L().sugar.Debugf(format, args...) }
func Infof(format string, args ...interface{})  { L().sugar.Infof(format, args...) }
func Warnf(format string, args ...interface{})  { L().sugar.Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { L().sugar.Errorf(format, args...) }

// ============ Domain field constructors ============

func Exchange(value string) zap.Field  { return zap.String("exchange", value) }
func Symbol(value string) zap.Field    { return zap.String("symbol", value) }
func GroupKey(value string) zap.Field  { return zap.String("group_key", value) }
func Price(value float64) zap.Field    { return zap.Float64("price", value) }
func Spread(value float64) zap.Field   { return zap.Float64("spread", value) }
func Notional(value float64) zap.Field { return zap.Float64("notional_usdt", value) }
func Latency(value float64) zap.Field  { return zap.Float64("latency_ms", value) }
func RequestID(value string) zap.Field { return zap.String("request_id", value) }
func Component(value string) zap.Field { return zap.String("component", value) }
func QuoteCount(value int) zap.Field   { return zap.Int("quote_count", value) }

// Reexported general-purpose constructors, so callers only need this
// package's import for both domain and generic fields.
func String(key, value string) zap.Field          { return zap.String(key, value) }
func Int(key string, value int) zap.Field         { return zap.Int(key, value) }
func Int64(key string, value int64) zap.Field     { return zap.Int64(key, value) }
func Float64(key string, value float64) zap.Field { return zap.Float64(key, value) }
func Bool(key string, value bool) zap.Field       { return zap.Bool(key, value) }
func Err(err error) zap.Field                     { return zap.Error(err) }
func Any(key string, value interface{}) zap.Field { return zap.Any(key, value) }
