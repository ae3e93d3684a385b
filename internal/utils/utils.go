// Package utils содержит утилитарные функции, используемые в разных частях приложения
package utils

import (
	"fmt"
	"strings"
	"time"
)

// FormatDuration форматирует time.Duration как M:SS или H:MM:SS
func FormatDuration(d time.Duration) string {
	return FormatLength(int(d.Seconds()))
}

// FormatLength форматирует длину песни в секундах
func FormatLength(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}

// FormatDifficulty форматирует OD с одним знаком и шкалой из звезд
func FormatDifficulty(od float64) string {
	stars := int(od + 0.5)
	if stars > 10 {
		stars = 10
	}
	if stars < 0 {
		stars = 0
	}
	return fmt.Sprintf("%4.1f %s", od, strings.Repeat("★", stars))
}

// TruncateString обрезает строку до maxLen символов, добавляя "..." если строка длиннее
func TruncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
