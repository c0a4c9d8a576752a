// Package logsvc provides the core.Logger implementations used by the apps.
package logsvc

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/trezcool/masomo-client/core"
	"github.com/trezcool/masomo-client/core/user"
)

type ZapLogger struct {
	l *zap.Logger
}

var _ core.Logger = (*ZapLogger)(nil)

// NewZapLogger builds a colored console logger in debug mode and a JSON one otherwise.
func NewZapLogger(conf *core.Config) *ZapLogger {
	level := ParseLevel(conf.LogLevel)

	var (
		l   *zap.Logger
		err error
	)
	if conf.Debug {
		l, err = buildDev(level)
	} else {
		l, err = buildProd(level)
	}
	if err != nil {
		l, _ = zap.NewProduction()
	}

	if conf.AppName != "" {
		l = l.With(zap.String("app", conf.AppName))
	}
	if conf.Build != "" {
		l = l.With(zap.String("build", conf.Build))
	}
	return &ZapLogger{l: l}
}

// WrapZap adapts an existing zap logger (tests use an observer core).
func WrapZap(l *zap.Logger) *ZapLogger {
	return &ZapLogger{l: l.WithOptions(zap.AddCallerSkip(1))}
}

func buildDev(level zapcore.Level) (*zap.Logger, error) {
	zcfg := zap.NewDevelopmentConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	zcfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	zcfg.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	zcfg.DisableStacktrace = true
	return zcfg.Build(zap.AddCaller(), zap.AddCallerSkip(1))
}

func buildProd(level zapcore.Level) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zcfg.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	return zcfg.Build(zap.AddCaller(), zap.AddCallerSkip(1), zap.AddStacktrace(zapcore.ErrorLevel))
}

// ParseLevel defaults to info.
func ParseLevel(lvl string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// fields maps the loosely typed logger args to zap fields.
func fields(args []interface{}) []zap.Field {
	flds := make([]zap.Field, 0, len(args))
	for i, arg := range args {
		switch a := arg.(type) {
		case nil:
		case error:
			flds = append(flds, zap.Error(a))
		case map[string]interface{}:
			for k, v := range a {
				flds = append(flds, zap.Any(k, v))
			}
		case user.Profile:
			flds = append(flds, zap.Int("user_id", a.ID), zap.String("user_email", a.Email))
		case *user.Profile:
			if a != nil {
				flds = append(flds, zap.Int("user_id", a.ID), zap.String("user_email", a.Email))
			}
		default:
			flds = append(flds, zap.Any(fmt.Sprintf("arg%d", i), a))
		}
	}
	return flds
}

func (z *ZapLogger) Debug(msg string, args ...interface{}) { z.l.Debug(msg, fields(args)...) }
func (z *ZapLogger) Info(msg string, args ...interface{})  { z.l.Info(msg, fields(args)...) }
func (z *ZapLogger) Warn(msg string, args ...interface{})  { z.l.Warn(msg, fields(args)...) }
func (z *ZapLogger) Error(msg string, args ...interface{}) { z.l.Error(msg, fields(args)...) }
func (z *ZapLogger) Fatal(msg string, args ...interface{}) { z.l.Fatal(msg, fields(args)...) }

// Sync flushes buffered entries.
func (z *ZapLogger) Sync() error {
	return z.l.Sync()
}
