package utils

import (
	"log"
	"strings"
	"unicode"

	"github.com/anoixa/image-craft/config"
)

// LogIfDev 仅在开发版本输出日志
func LogIfDev(msg string) {
	if config.IsDevelopment() {
		log.Println(msg)
	}
}

// LogIfDevf 仅在开发版本输出格式化日志
func LogIfDevf(format string, args ...interface{}) {
	if config.IsDevelopment() {
		log.Printf(format, args...)
	}
}

func SanitizeLogMessage(msg string) string {
	var sb strings.Builder
	for _, r := range msg {
		if r == 10 || r == 9 {
			sb.WriteRune(r)
		} else if unicode.IsPrint(r) || unicode.IsGraphic(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// SanitizeLogTitle 截断并清理用户提交的标题，避免污染日志
func SanitizeLogTitle(title string) string {
	if len(title) > 50 {
		title = title[:50] + "..."
	}
	return SanitizeLogMessage(title)
}
