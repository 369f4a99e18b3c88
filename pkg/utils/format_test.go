package utils

import (
	"strings"
	"testing"
	"time"
)

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{1.5, "+1.50%"},
		{-2.25, "-2.25%"},
		{0, "0.00%"},
	}
	for _, tt := range tests {
		if got := FormatPercent(tt.value); got != tt.want {
			t.Errorf("FormatPercent(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestFormatScore(t *testing.T) {
	full := FormatScore(100)
	if !strings.HasSuffix(full, " 100") || strings.Contains(full, "░") {
		t.Errorf("FormatScore(100) = %q, want a full bar", full)
	}
	empty := FormatScore(0)
	if strings.Contains(empty, "█") {
		t.Errorf("FormatScore(0) = %q, want an empty bar", empty)
	}
	// Out-of-range input must not panic or overflow the bar.
	if got := FormatScore(150); !strings.HasSuffix(got, " 150") {
		t.Errorf("FormatScore(150) = %q", got)
	}
}

func TestFormatGap(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{15 * time.Minute, "15m"},
		{time.Hour, "1h"},
		{90 * time.Minute, "1h30m"},
		{2*time.Hour + 5*time.Minute, "2h05m"},
	}
	for _, tt := range tests {
		if got := FormatGap(tt.d); got != tt.want {
			t.Errorf("FormatGap(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("Truncate(short, 10) = %q", got)
	}
	got := Truncate("a very long trading note", 10)
	if len([]rune(got)) != 10 || !strings.HasSuffix(got, "…") {
		t.Errorf("Truncate = %q, want 10 runes ending in ellipsis", got)
	}
}
