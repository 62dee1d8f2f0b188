package util

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger 全局日志对象
var Logger = zerolog.Nop()

// InitLogger 初始化日志系统
// level 为空时默认 info；debug 为 true 时强制 debug
func InitLogger(level string, debug bool) {
	InitLoggerTo(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}, level, debug)
}

// InitLoggerTo 输出到指定 writer（测试时使用）
func InitLoggerTo(out io.Writer, level string, debug bool) {
	lvl := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level))); err == nil && level != "" {
		lvl = parsed
	}
	if debug {
		lvl = zerolog.DebugLevel
	}

	Logger = zerolog.New(out).
		With().
		Timestamp().
		Caller().
		Logger().
		Level(lvl)

	Logger.Debug().Str("level", lvl.String()).Msg("日志系统初始化完成")
}
