package applog

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log 是全局可用的 SugaredLogger；Init 之前为 no-op，避免库代码与测试中空指针
var Log = zap.NewNop().Sugar()

// Option 调整日志初始化行为
type Option func(*options)

type options struct {
	console bool
	level   zapcore.Level
}

// WithConsole 同时输出到 stderr（中继服务前台运行时更方便观察）
func WithConsole() Option {
	return func(o *options) { o.console = true }
}

// WithLevel 设置最低日志级别，默认 Debug
func WithLevel(l zapcore.Level) Option {
	return func(o *options) { o.level = l }
}

// Init 初始化 zap 日志到本地文件（支持滚动）
// filePath: 日志文件路径，如 "relay.log"
func Init(filePath string, opts ...Option) error {
	o := options{level: zapcore.DebugLevel}
	for _, opt := range opts {
		opt(&o)
	}

	// 文件滚动策略：10MB 每文件，保留3个备份
	lj := &lumberjack.Logger{
		Filename:   filePath,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     7, // days
		Compress:   false,
	}

	encCfg := zapcore.EncoderConfig{
		TimeKey:       "ts",
		LevelKey:      "level",
		NameKey:       "logger",
		CallerKey:     "caller",
		MessageKey:    "msg",
		StacktraceKey: "stack",
		LineEnding:    zapcore.DefaultLineEnding,
		EncodeLevel:   zapcore.CapitalLevelEncoder,
		EncodeTime:    zapcore.ISO8601TimeEncoder,
		EncodeCaller:  zapcore.ShortCallerEncoder,
	}
	encoder := zapcore.NewConsoleEncoder(encCfg)

	ws := zapcore.AddSync(lj)
	if o.console {
		ws = zapcore.NewMultiWriteSyncer(ws, zapcore.Lock(os.Stderr))
	}
	core := zapcore.NewCore(encoder, ws, o.level)

	logger := zap.New(core, zap.AddCaller())
	Log = logger.Sugar()
	return nil
}

// Sync 清理和同步缓冲
func Sync() {
	if Log != nil {
		_ = Log.Sync()
	}
}
