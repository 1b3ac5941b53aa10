package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseDateLabelFormats(t *testing.T) {
	want := date(2025, time.December, 15)

	for _, label := range []string{
		"2025-12-15",
		"15 Desember 2025",
		"15/12/2025",
		"15-12-2025",
	} {
		d, ok := ParseDateLabel(label)
		require.True(t, ok, "label %q", label)
		require.Equal(t, want, d, "label %q", label)
	}
}

func TestParseDateLabelSeparatorIsolation(t *testing.T) {
	want := date(2025, time.December, 15)

	for _, label := range []string{
		"2025-12-15 • 18:00",
		"2025-12-15, 18:00",
		"2025-12-15 18:00",
		"15 Desember 2025 • 18:00",
		"15 Desember 2025, 18:00",
	} {
		d, ok := ParseDateLabel(label)
		require.True(t, ok, "label %q", label)
		require.Equal(t, want, d, "label %q", label)
	}
}

func TestParseDateLabelStrict(t *testing.T) {
	for _, label := range []string{
		"",
		"   ",
		"not a date",
		"31 Februari 2025",
		"2025-02-31",
		"32/01/2025",
		"15 Decemberr 2025",
		"15 Desember 25",
		"2025/12/15",
	} {
		_, ok := ParseDateLabel(label)
		require.False(t, ok, "label %q", label)
	}
}

func TestClassifyBoundaries(t *testing.T) {
	now := date(2025, time.December, 15)

	require.Equal(t, ClassUpcoming, Classify("2025-12-16", now))
	require.Equal(t, ClassPast, Classify("2025-12-14", now))
	// same day is not upcoming
	require.Equal(t, ClassPast, Classify("2025-12-15", now))
}

func TestClassifyIgnoresTimeOfDay(t *testing.T) {
	now := time.Date(2025, time.December, 15, 23, 59, 59, 0, time.UTC)
	require.Equal(t, ClassPast, Classify("2025-12-15 • 00:30", now))

	earlyNow := time.Date(2025, time.December, 15, 0, 0, 1, 0, time.UTC)
	require.Equal(t, ClassPast, Classify("2025-12-15 • 23:00", earlyNow))
	require.Equal(t, ClassUpcoming, Classify("2025-12-16 • 00:00", now))
}

func TestClassifyUnparseableFailsClosed(t *testing.T) {
	now := date(2025, time.June, 1)

	require.Equal(t, ClassUnparseable, Classify("not a date", now))
	require.False(t, IsUpcoming("not a date", now))
	require.False(t, IsJoinable(&Schedule{DateTime: "???"}, now))
	require.False(t, IsCancelable(&Schedule{DateTime: ""}, now))
}

func TestClassifyPure(t *testing.T) {
	now := date(2025, time.June, 1)
	first := Classify("15 Desember 2025 • 18:00", now)
	second := Classify("15 Desember 2025 • 18:00", now)
	require.Equal(t, first, second)
	require.Equal(t, ClassUpcoming, first)
}

func TestFilterByTabPartition(t *testing.T) {
	now := date(2025, time.June, 1)
	schedules := []*Schedule{
		{ID: 1, DateTime: "2025-01-10"},
		{ID: 2, DateTime: "2025-06-01"},
		{ID: 3, DateTime: "2099-01-01"},
		{ID: 4, DateTime: "garbage"},
	}

	all := FilterByTab(schedules, TabAll, now)
	require.Equal(t, schedules, all)

	upcoming := FilterByTab(schedules, TabUpcoming, now)
	require.Len(t, upcoming, 1)
	require.Equal(t, int64(3), upcoming[0].ID)

	completed := FilterByTab(schedules, TabCompleted, now)
	require.Len(t, completed, 3)
	// original relative order preserved
	require.Equal(t, int64(1), completed[0].ID)
	require.Equal(t, int64(2), completed[1].ID)
	require.Equal(t, int64(4), completed[2].ID)

	require.Equal(t, len(schedules), len(upcoming)+len(completed))
}

func TestSplitLabelPriority(t *testing.T) {
	// bullet wins over comma and space
	d, tm := SplitLabel("2025-12-15, pagi • 18:00")
	require.Equal(t, "2025-12-15, pagi", d)
	require.Equal(t, "18:00", tm)

	d, tm = SplitLabel("2025-12-15, 18:00")
	require.Equal(t, "2025-12-15", d)
	require.Equal(t, "18:00", tm)

	d, tm = SplitLabel("2025-12-15")
	require.Equal(t, "2025-12-15", d)
	require.Equal(t, "", tm)
}

func TestScheduleHelpers(t *testing.T) {
	s := &Schedule{
		Title:        "Latihan Rutin",
		DateTime:     "15 Desember 2025 • 18:00",
		ActivityType: "LATIHAN",
	}
	require.Equal(t, "15 Desember 2025", s.DateLabel())
	require.Equal(t, "18:00", s.TimeLabel())
	require.Equal(t, "Latihan", s.TypeLabel())

	open := &Schedule{ActivityType: "SPARRING"}
	require.Equal(t, "SPARRING", open.TypeLabel())
	require.True(t, open.Unlimited())
	require.False(t, (&Schedule{MaxParticipants: 20}).Unlimited())
}
