package logsvc

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

// ZapLogger writes structured entries with zap.
type ZapLogger struct {
	z *zap.Logger
}

var _ core.Logger = (*ZapLogger)(nil)

// NewZapLogger builds a console logger; debug enables the debug level.
func NewZapLogger(conf *core.Config) (*ZapLogger, error) {
	zconf := zap.NewProductionConfig()
	if conf.Debug {
		zconf = zap.NewDevelopmentConfig()
		zconf.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	zconf.InitialFields = map[string]interface{}{"app": conf.AppName, "env": conf.Env}
	z, err := zconf.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return &ZapLogger{z: z}, nil
}

// NewNopLogger discards everything; used by tests.
func NewNopLogger() *ZapLogger {
	return &ZapLogger{z: zap.NewNop()}
}

func (l *ZapLogger) Sync() error {
	return l.z.Sync()
}

// fields converts the args accepted by core.Logger to zap fields.
func (l *ZapLogger) fields(args []interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(args))
	for i, arg := range args {
		switch v := arg.(type) {
		case error:
			fields = append(fields, zap.Error(v))
		case user.User:
			fields = append(fields, zap.String("user_id", v.ID), zap.String("username", v.Username))
		case map[string]interface{}:
			for k, val := range v {
				fields = append(fields, zap.Any(k, val))
			}
		default:
			fields = append(fields, zap.Any(fmt.Sprintf("arg%d", i), v))
		}
	}
	return fields
}

func (l *ZapLogger) Debug(msg string, args ...interface{}) {
	l.z.Debug(msg, l.fields(args)...)
}

func (l *ZapLogger) Info(msg string, args ...interface{}) {
	l.z.Info(msg, l.fields(args)...)
}

func (l *ZapLogger) Warn(msg string, args ...interface{}) {
	l.z.Warn(msg, l.fields(args)...)
}

func (l *ZapLogger) Error(msg string, args ...interface{}) {
	l.z.Error(msg, l.fields(args)...)
}

func (l *ZapLogger) Fatal(msg string, args ...interface{}) {
	l.z.Fatal(msg, l.fields(args)...)
}
