// Package logger 提供结构化日志
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New 创建 zerolog 日志器，开发模式使用 ConsoleWriter
func New(level string, development bool) zerolog.Logger {
	return NewWithWriter(os.Stderr, level, development)
}

// NewWithWriter 输出到指定 writer
func NewWithWriter(w io.Writer, level string, development bool) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	if development {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(w).With().Timestamp().Logger().Level(lvl)
}

// Nop 丢弃所有日志
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
