package logger

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger はアプリケーション全体で使うログインターフェース
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	WithFields(keysAndValues ...interface{}) Logger
}

type options struct {
	level  string
	format string
	out    io.Writer
}

// Option はロガー構築時の設定オプション
type Option func(*options)

// WithLevel はログレベル（debug/info/warn/error）を設定する
func WithLevel(level string) Option {
	return func(o *options) { o.level = level }
}

// WithFormat は出力フォーマット（text/json）を設定する
func WithFormat(format string) Option {
	return func(o *options) { o.format = format }
}

// WithOutput はログの書き込み先を設定する
// 省略時は標準エラー出力（標準出力はコマンドの結果表示用に空けておく）
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.out = w }
}

// zapLogger はzapのSugaredLoggerによるLogger実装
type zapLogger struct {
	sugar *zap.SugaredLogger
}

// New は新しいロガーを作成する
func New(opts ...Option) (Logger, error) {
	o := options{
		level:  "info",
		format: "text",
		out:    os.Stderr,
	}
	for _, opt := range opts {
		opt(&o)
	}

	level, err := zapcore.ParseLevel(o.level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", o.level, err)
	}

	encoder, err := newEncoder(o.format)
	if err != nil {
		return nil, err
	}

	sink := zapcore.Lock(zapcore.AddSync(o.out))
	core := zapcore.NewCore(encoder, sink, level)
	sugar := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Sugar()

	return &zapLogger{sugar: sugar}, nil
}

func newEncoder(format string) (zapcore.Encoder, error) {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "time"
	cfg.MessageKey = "msg"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	cfg.EncodeDuration = zapcore.SecondsDurationEncoder

	switch format {
	case "json":
		return zapcore.NewJSONEncoder(cfg), nil
	case "text":
		return zapcore.NewConsoleEncoder(cfg), nil
	}
	return nil, fmt.Errorf("invalid log format: %s", format)
}

// Debug はデバッグレベルのログを出力する
func (l *zapLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, redactPairs(keysAndValues)...)
}

// Info は情報レベルのログを出力する
func (l *zapLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, redactPairs(keysAndValues)...)
}

// Warn は警告レベルのログを出力する
func (l *zapLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.sugar.Warnw(msg, redactPairs(keysAndValues)...)
}

// Error はエラーレベルのログを出力する
func (l *zapLogger) Error(msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, redactPairs(keysAndValues)...)
}

// WithFields はフィールドを追加した新しいロガーを返す
func (l *zapLogger) WithFields(keysAndValues ...interface{}) Logger {
	return &zapLogger{sugar: l.sugar.With(redactPairs(keysAndValues)...)}
}
