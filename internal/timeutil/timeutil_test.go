package timeutil

import "testing"

func TestFormatSeconds(t *testing.T) {
	tests := []struct {
		name    string
		seconds int
		want    string
	}{
		{"ゼロ", 0, "00:00"},
		{"秒のみ", 45, "00:45"},
		{"分と秒", 90, "01:30"},
		{"1時間未満の最大", 3599, "59:59"},
		{"ちょうど1時間", 3600, "01:00:00"},
		{"1時間超", 3725, "01:02:05"},
		{"負の値はゼロ扱い", -10, "00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatSeconds(tt.seconds); got != tt.want {
				t.Errorf("FormatSeconds(%d) = %q, want %q", tt.seconds, got, tt.want)
			}
		})
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		name  string
		clock string
		want  int
	}{
		{"分と秒", "01:30", 90},
		{"時分秒", "01:02:05", 3725},
		{"ゼロ", "00:00", 0},
		{"桁区切りなし", "90", 0},
		{"空文字", "", 0},
		{"数値以外", "ab:cd", 0},
		{"区切りが多すぎる", "1:2:3:4", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseClock(tt.clock); got != tt.want {
				t.Errorf("ParseClock(%q) = %d, want %d", tt.clock, got, tt.want)
			}
		})
	}
}

func TestProgressPercent(t *testing.T) {
	tests := []struct {
		name      string
		remaining int
		total     int
		want      float64
	}{
		{"開始直後", 600, 600, 0},
		{"半分経過", 300, 600, 50},
		{"完了", 0, 600, 100},
		{"totalゼロ", 0, 0, 0},
		{"remainingが超過していても100以下", 700, 600, 0},
		{"負のremainingは100", -5, 600, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ProgressPercent(tt.remaining, tt.total); got != tt.want {
				t.Errorf("ProgressPercent(%d, %d) = %v, want %v", tt.remaining, tt.total, got, tt.want)
			}
		})
	}
}
