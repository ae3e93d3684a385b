package utils

import (
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		duration time.Duration
		expected string
	}{
		{0, "0:00"},
		{59 * time.Second, "0:59"},
		{60 * time.Second, "1:00"},
		{61*time.Minute + 1*time.Second, "1:01:01"},
		{25*time.Hour + 45*time.Minute + 30*time.Second, "25:45:30"},
	}

	for _, test := range tests {
		result := FormatDuration(test.duration)
		if result != test.expected {
			t.Errorf("FormatDuration(%v) = %s; expected %s", test.duration, result, test.expected)
		}
	}
}

func TestFormatLength(t *testing.T) {
	tests := []struct {
		seconds  int
		expected string
	}{
		{-5, "0:00"},
		{0, "0:00"},
		{200, "3:20"},
		{7381, "2:03:01"},
	}

	for _, test := range tests {
		result := FormatLength(test.seconds)
		if result != test.expected {
			t.Errorf("FormatLength(%d) = %s; expected %s", test.seconds, result, test.expected)
		}
	}
}

func TestFormatDifficulty(t *testing.T) {
	tests := []struct {
		od       float64
		expected string
	}{
		{0, " 0.0 "},
		{3.5, " 3.5 ★★★★"},
		{7, " 7.0 ★★★★★★★"},
		{12, "12.0 ★★★★★★★★★★"},
	}

	for _, test := range tests {
		result := FormatDifficulty(test.od)
		if result != test.expected {
			t.Errorf("FormatDifficulty(%v) = %q; expected %q", test.od, result, test.expected)
		}
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly10", 10, "exactly10"},
		{"this is a very long string", 10, "this is..."},
		{"abcd", 3, "abc"},
		{"abcde", 4, "a..."},
		{"ブラックソング", 5, "ブラ..."},
	}

	for _, test := range tests {
		result := TruncateString(test.input, test.maxLen)
		if result != test.expected {
			t.Errorf("TruncateString(%s, %d) = %s; expected %s", test.input, test.maxLen, result, test.expected)
		}
	}
}
