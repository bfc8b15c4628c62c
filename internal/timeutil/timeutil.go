// Package timeutil は秒数と表示文字列の相互変換ヘルパーを提供する。
// 状態を持たない純粋関数のみで構成される。
package timeutil

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatSeconds は秒数を MM:SS 形式（1時間以上は HH:MM:SS 形式）に整形する。
// 負の値は0として扱う。
func FormatSeconds(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}

	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}

// ParseClock は MM:SS または HH:MM:SS 形式の文字列を秒数に変換する。
// 解釈できない形式の場合は0を返す。
func ParseClock(clock string) int {
	parts := strings.Split(clock, ":")
	nums := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0
		}
		nums = append(nums, n)
	}

	switch len(nums) {
	case 3:
		return nums[0]*3600 + nums[1]*60 + nums[2]
	case 2:
		return nums[0]*60 + nums[1]
	}
	return 0
}

// ProgressPercent は経過割合をパーセント（0〜100）で返す。
// totalが0の場合は0を返す。
func ProgressPercent(remaining, total int) float64 {
	if total == 0 {
		return 0
	}
	ratio := float64(remaining) / float64(total)
	if ratio > 1 {
		ratio = 1
	}
	if ratio < 0 {
		ratio = 0
	}
	return (1 - ratio) * 100
}
