package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telegram-pill-reminder/internal/models"
)

func TestParseClock(t *testing.T) {
	cases := []struct {
		in     string
		hour   int
		minute int
		ok     bool
	}{
		{"09:30", 9, 30, true},
		{"9:30", 9, 30, true},
		{"23:59", 23, 59, true},
		{"00:00", 0, 0, true},
		{" 14:05 ", 14, 5, true},
		{"24:00", 0, 0, false},
		{"12:60", 0, 0, false},
		{"12.30", 0, 0, false},
		{"завтра", 0, 0, false},
		{"", 0, 0, false},
	}
	for _, tc := range cases {
		h, m, ok := parseClock(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		if tc.ok {
			assert.Equal(t, tc.hour, h, "input %q", tc.in)
			assert.Equal(t, tc.minute, m, "input %q", tc.in)
		}
	}
}

func TestParseTimingsFull(t *testing.T) {
	got, err := parseTimings("НП=1800, НПР=300, НПН=1800")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"np": 1800, "npr": 300, "npn": 1800}, got)
}

func TestParseTimingsPartialAndCase(t *testing.T) {
	got, err := parseTimings("нпр = 600")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"npr": 600}, got)
}

func TestParseTimingsRejectsNegativeValues(t *testing.T) {
	_, err := parseTimings("НП=-5")
	require.Error(t, err)

	// a bad value anywhere rejects the whole input, so a partial apply
	// can never happen
	got, err := parseTimings("НП=100, НПР=-5")
	require.Error(t, err)
	assert.Nil(t, got)
}

func TestParseTimingsRejectsGarbage(t *testing.T) {
	_, err := parseTimings("ПН=1800")
	require.Error(t, err)

	_, err = parseTimings("НП=полчаса")
	require.Error(t, err)

	_, err = parseTimings("ничего")
	require.Error(t, err)
}

func TestParseMonth(t *testing.T) {
	ym, display, ok := parseMonth("Расписание 10.25")
	require.True(t, ok)
	assert.Equal(t, "2025-10", ym)
	assert.Equal(t, "10.25", display)

	_, _, ok = parseMonth("Расписание 13.25")
	assert.False(t, ok, "month 13 is invalid")

	_, _, ok = parseMonth("Расписание октябрь")
	assert.False(t, ok)
}

func TestRenderMonth(t *testing.T) {
	at := "09:35"
	entries := []models.LogEntry{
		{Day: "2025-10-01", Status: models.StatusTaken, TimeTaken: &at},
		{Day: "2025-10-02", Status: models.StatusNotNeeded},
		{Day: "2025-10-03", Status: "что-то ещё"},
	}
	got := renderMonth("10.25", entries)
	assert.Contains(t, got, "Расписание за 10.25:")
	assert.Contains(t, got, "✅ 01.10.25 — выпила в 09:35")
	assert.Contains(t, got, "⏸ 02.10.25 — пить не нужно")
	assert.Contains(t, got, "❌ 03.10.25 — пропущено")
}

func TestDisplayDay(t *testing.T) {
	assert.Equal(t, "07.10.25", displayDay("2025-10-07"))
	assert.Equal(t, "garbage", displayDay("garbage"))
}
