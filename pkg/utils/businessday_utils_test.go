package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusinessDay(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	// 2024-06-15 is summer time in Berlin (UTC+2).
	tests := []struct {
		name    string
		instant time.Time
		want    time.Time
	}{
		{
			name:    "just before cutoff belongs to previous day",
			instant: time.Date(2024, 6, 15, 7, 59, 0, 0, berlin),
			want:    time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "at cutoff belongs to current day",
			instant: time.Date(2024, 6, 15, 8, 0, 0, 0, berlin),
			want:    time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "after midnight still previous day",
			instant: time.Date(2024, 6, 15, 2, 30, 0, 0, berlin),
			want:    time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "evening is current day",
			instant: time.Date(2024, 6, 15, 22, 15, 0, 0, berlin),
			want:    time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "UTC instant is converted to local time first",
			instant: time.Date(2024, 6, 15, 5, 30, 0, 0, time.UTC), // 07:30 Berlin
			want:    time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BusinessDay(tt.instant, berlin, DefaultDayCutoffHour)
			assert.True(t, got.Equal(tt.want), "got %v, want %v", got, tt.want)
		})
	}
}

func TestBusinessDayCrossesMonthBoundary(t *testing.T) {
	got := BusinessDay(time.Date(2024, 7, 1, 1, 0, 0, 0, time.UTC), time.UTC, DefaultDayCutoffHour)
	assert.Equal(t, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), got)
}

func TestBusinessDayNilLocationFallsBackToUTC(t *testing.T) {
	got := BusinessDay(time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC), nil, DefaultDayCutoffHour)
	assert.Equal(t, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), got)
}
