package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects the level and encoding of log output.
type Config struct {
	Level    string   `yaml:"level" json:"level"`
	Encoding string   `yaml:"encoding" json:"encoding"`
	Outputs  []string `yaml:"outputs" json:"outputs"`
}

const (
	DefaultLevel    = "info"
	DefaultEncoding = "console"
)

// Logger writes leveled, structured log lines. Records go to stdout, so log
// output defaults to stderr.
type Logger struct {
	z *zap.SugaredLogger
}

func New(cfg Config) (*Logger, error) {
	if cfg.Level == "" {
		cfg.Level = DefaultLevel
	}
	if cfg.Encoding == "" {
		cfg.Encoding = DefaultEncoding
	}
	if len(cfg.Outputs) == 0 {
		cfg.Outputs = []string{"stderr"}
	}
	level, err := zapcore.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Encoding = cfg.Encoding
	zc.OutputPaths = cfg.Outputs
	zc.ErrorOutputPaths = []string{"stderr"}
	zc.Sampling = nil
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if cfg.Encoding == "console" {
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	z, err := zc.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return &Logger{z: z.Sugar()}, nil
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger { return &Logger{z: zap.NewNop().Sugar()} }

// With returns a logger that adds the key/value pairs to every line.
func (l *Logger) With(kv ...any) *Logger { return &Logger{z: l.z.With(kv...)} }

func (l *Logger) Debug(msg string, kv ...any) { l.z.Debugw(msg, kv...) }
func (l *Logger) Info(msg string, kv ...any)  { l.z.Infow(msg, kv...) }
func (l *Logger) Warn(msg string, kv ...any)  { l.z.Warnw(msg, kv...) }
func (l *Logger) Error(msg string, kv ...any) { l.z.Errorw(msg, kv...) }

func (l *Logger) Debugf(format string, args ...any) { l.z.Debugf(format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.z.Infof(format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.z.Warnf(format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.z.Errorf(format, args...) }

// Sync flushes buffered entries.
func (l *Logger) Sync() error { return l.z.Sync() }
