package obslog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultLogFile is used when LOG_FILE is unset.
var DefaultLogFile = filepath.Join("logs", "arena.log")

var global atomic.Pointer[zap.Logger]

func init() { global.Store(zap.NewNop()) }

// L returns the process logger. It is a no-op logger until Init runs.
func L() *zap.Logger { return global.Load() }

// Set replaces the process logger; nil restores the no-op logger.
func Set(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	global.Store(l)
}

// Options selects sinks and encoding.
type Options struct {
	Level   zapcore.Level
	Format  string // legacy | console | json
	Console bool
	File    string // empty disables the file sink
	Caller  bool
}

// OptionsFromEnv reads LOG_LEVEL, LOG_FORMAT, LOG_TO_CONSOLE, LOG_TO_FILE,
// LOG_FILE and LOG_CALLER.
func OptionsFromEnv() Options {
	o := Options{
		Level:   parseLevel(getenvDefault("LOG_LEVEL", "info")),
		Format:  normalizeFormat(getenvDefault("LOG_FORMAT", "legacy")),
		Console: isTrue(getenvDefault("LOG_TO_CONSOLE", "true")),
		Caller:  isTrue(getenvDefault("LOG_CALLER", "false")),
	}
	if isTrue(getenvDefault("LOG_TO_FILE", "true")) {
		o.File = strings.TrimSpace(getenvDefault("LOG_FILE", DefaultLogFile))
	}
	return o
}

// InitFromEnv builds the process logger from the environment.
func InitFromEnv() (*zap.Logger, error) {
	l, err := New(OptionsFromEnv())
	if err != nil {
		return nil, err
	}
	Set(l)
	return l, nil
}

// New builds a logger that tees to every enabled sink. With no sink enabled
// it falls back to a development console on stdout.
func New(o Options) (*zap.Logger, error) {
	o.Format = normalizeFormat(o.Format)
	var cores []zapcore.Core
	if o.Console {
		cores = append(cores, zapcore.NewCore(encoder(o.Format), zapcore.AddSync(os.Stdout), o.Level))
	}
	if o.File != "" {
		if err := ensureDir(filepath.Dir(o.File)); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(o.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		cores = append(cores, zapcore.NewCore(encoder(o.Format), zapcore.AddSync(f), o.Level))
	}
	if len(cores) == 0 {
		enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(os.Stdout), o.Level))
	}

	l := zap.New(zapcore.NewTee(cores...))
	if o.Caller || o.Format == "legacy" {
		l = l.WithOptions(zap.AddCaller())
	}
	return l.WithOptions(zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

func encoder(format string) zapcore.Encoder {
	switch format {
	case "json":
		return zapcore.NewJSONEncoder(jsonEncoderConfig())
	case "console":
		return zapcore.NewConsoleEncoder(consoleEncoderConfig())
	default:
		return zapcore.NewConsoleEncoder(legacyEncoderConfig())
	}
}

func normalizeFormat(s string) string {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case "json", "console", "legacy":
		return f
	default:
		return "legacy"
	}
}

func ensureDir(dir string) error {
	if strings.TrimSpace(dir) == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func parseLevel(s string) zapcore.Level {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(s)))); err != nil {
		if strings.EqualFold(strings.TrimSpace(s), "warning") {
			return zapcore.WarnLevel
		}
		return zapcore.InfoLevel
	}
	return lvl
}

func isTrue(s string) bool { return strings.EqualFold(strings.TrimSpace(s), "true") }

func getenvDefault(k, def string) string {
	v := os.Getenv(k)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func legacyEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.ConsoleSeparator = " | "
	return cfg
}

func consoleEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return cfg
}

func jsonEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	return cfg
}
