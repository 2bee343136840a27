package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const AppName = "presta-matcher"

// Options controls the process logger.
type Options struct {
	JSON  bool
	Debug bool
	// Output defaults to stdout. The server logs requests there too.
	Output string
}

// FromFlags maps the global --json and --debug flags to Options.
func FromFlags(json, debug bool) Options {
	return Options{JSON: json, Debug: debug}
}

func (o Options) level() zapcore.Level {
	if o.Debug {
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}

func (o Options) encoding() string {
	if o.JSON {
		return "json"
	}
	return "console"
}

func (o Options) output() string {
	if o.Output == "" {
		return "stdout"
	}
	return o.Output
}

// Config renders the zap configuration for o. Every entry carries the app name.
func (o Options) Config() zap.Config {
	return zap.Config{
		Encoding:         o.encoding(),
		Level:            zap.NewAtomicLevelAt(o.level()),
		OutputPaths:      []string{o.output()},
		ErrorOutputPaths: []string{"stderr"},
		InitialFields:    map[string]interface{}{FieldApp: AppName},
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey: "msg",

			LevelKey:    "level",
			EncodeLevel: zapcore.LowercaseLevelEncoder,

			TimeKey:    "time",
			EncodeTime: zapcore.RFC3339TimeEncoder,

			CallerKey:    "caller",
			EncodeCaller: zapcore.ShortCallerEncoder,

			EncodeDuration: zapcore.MillisDurationEncoder,
		},
	}
}

// New builds the process logger.
func New(opts Options) (*zap.Logger, error) {
	return opts.Config().Build()
}
