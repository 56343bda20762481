// Package logging provides structured logging backed by zap.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Fields holds structured log attributes.
type Fields map[string]interface{}

// Logger is a named structured logger.
type Logger struct {
	zl *zap.Logger
}

var base *zap.Logger

func init() {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if os.Getenv("LOG_PRETTY") != "" {
		cfg = zap.NewDevelopmentConfig()
	}
	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		panic("cannot initialize zap: " + err.Error())
	}
	base = l
}

// NewLogger returns a logger named after the owning component.
func NewLogger(component string) *Logger {
	return &Logger{zl: base.Named(component)}
}

func (l *Logger) Debug(msg string, fields ...Fields) { l.zl.Debug(msg, zapFields(fields)...) }
func (l *Logger) Info(msg string, fields ...Fields)  { l.zl.Info(msg, zapFields(fields)...) }
func (l *Logger) Warn(msg string, fields ...Fields)  { l.zl.Warn(msg, zapFields(fields)...) }
func (l *Logger) Error(msg string, fields ...Fields) { l.zl.Error(msg, zapFields(fields)...) }
func (l *Logger) Fatal(msg string, fields ...Fields) { l.zl.Fatal(msg, zapFields(fields)...) }

// Sync flushes buffered log entries.
func (l *Logger) Sync() {
	_ = l.zl.Sync()
}

func zapFields(fields []Fields) []zap.Field {
	var out []zap.Field
	for _, f := range fields {
		for k, v := range f {
			out = append(out, zap.Any(k, v))
		}
	}
	return out
}
