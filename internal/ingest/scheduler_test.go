package ingest

import (
	"testing"
	"time"
)

// TestParseRunTime 运行时刻解析
func TestParseRunTime(t *testing.T) {
	hour, minute, err := parseRunTime("18:30")
	if err != nil || hour != 18 || minute != 30 {
		t.Fatalf("解析不符: %d:%d (%v)", hour, minute, err)
	}

	for _, bad := range []string{"", "18", "25:00", "18:70", "ab:cd"} {
		if _, _, err := parseRunTime(bad); err == nil {
			t.Errorf("%q 应解析失败", bad)
		}
	}
}

// TestNextRun 当日未到取今天，已过取明天
func TestNextRun(t *testing.T) {
	loc, _ := time.LoadLocation("Asia/Seoul")
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, loc)

	next := nextRun(now, 18, 30)
	if next.Day() != 31 || next.Hour() != 18 || next.Minute() != 30 {
		t.Fatalf("未到时刻应取今天: %v", next)
	}

	next = nextRun(now, 9, 0)
	if next.Day() != 1 || next.Month() != 9 {
		t.Fatalf("已过时刻应取明天: %v", next)
	}
}
