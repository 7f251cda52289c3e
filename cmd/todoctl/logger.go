package main

import (
	"os"

	"github.com/go-monolith/mono/pkg/types"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// newLogger builds a console logger on stderr, teed with a rotating JSON
// file when logFile is set. The console shows warnings only unless verbose.
func newLogger(logFile string, verbose bool) *zap.Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	consoleLevel := zap.WarnLevel
	if verbose {
		consoleLevel = zap.DebugLevel
	}
	cores := []zapcore.Core{
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig),
			zapcore.AddSync(os.Stderr),
			consoleLevel,
		),
	}

	if logFile != "" {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderConfig),
			zapcore.AddSync(&lumberjack.Logger{
				Filename:   logFile,
				MaxSize:    10, // MB
				MaxBackups: 3,
				MaxAge:     30, // days
			}),
			zap.DebugLevel,
		))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller())
}

// zapLogger adapts a sugared zap logger to types.Logger.
type zapLogger struct {
	s *zap.SugaredLogger
}

var _ types.Logger = zapLogger{}

func newZapLogger(l *zap.Logger) types.Logger {
	return zapLogger{s: l.Sugar()}
}

func (l zapLogger) Debug(msg string, args ...any) { l.s.Debugw(msg, args...) }
func (l zapLogger) Info(msg string, args ...any)  { l.s.Infow(msg, args...) }
func (l zapLogger) Warn(msg string, args ...any)  { l.s.Warnw(msg, args...) }
func (l zapLogger) Error(msg string, args ...any) { l.s.Errorw(msg, args...) }

func (l zapLogger) With(args ...any) types.Logger {
	return zapLogger{s: l.s.With(args...)}
}

func (l zapLogger) WithModule(name string) types.Logger {
	return zapLogger{s: l.s.With("module", name)}
}

func (l zapLogger) WithError(err error) types.Logger {
	return zapLogger{s: l.s.With(zap.Error(err))}
}
