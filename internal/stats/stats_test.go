package stats

import (
	"alcyxob/sets-tracker/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func set(id, typ string, weight float64, reps int, performed string) domain.LoggedSet {
	return domain.LoggedSet{
		ID:             id,
		WorkoutType:    ptr(domain.WorkoutType(typ)),
		WeightLb:       ptr(weight),
		Reps:           ptr(reps),
		PerformedAtISO: ptr(performed),
		CreatedAtISO:   performed,
		UpdatedAtISO:   performed,
	}
}

func TestSortSetsNewestFirst(t *testing.T) {
	older := set("a", "squat", 100, 5, "2026-01-01T18:00:00.000Z")
	newer := set("b", "squat", 100, 5, "2026-01-02T18:00:00.000Z")
	logged := domain.LoggedSet{ID: "c", CreatedAtISO: "2026-01-03T18:00:00.000Z"}

	sorted := SortSets([]domain.LoggedSet{older, newer, logged})
	assert.Equal(t, []string{"c", "b", "a"}, []string{sorted[0].ID, sorted[1].ID, sorted[2].ID})
}

func TestFilterByRangeUsesPacificDay(t *testing.T) {
	// 03:00Z on Jan 9 is Jan 8 in Pacific time.
	late := set("late", "squat", 100, 5, "2026-01-09T03:00:00.000Z")
	next := set("next", "squat", 100, 5, "2026-01-09T20:00:00.000Z")
	undated := domain.LoggedSet{ID: "undated", CreatedAtISO: "2026-01-08T20:00:00.000Z"}

	got := FilterByRange([]domain.LoggedSet{late, next, undated}, Range{From: "2026-01-08"})
	require.Len(t, got, 1)
	assert.Equal(t, "late", got[0].ID)

	all := FilterByRange([]domain.LoggedSet{late, next}, Range{})
	assert.Len(t, all, 2)
}

func TestDailyCountsIncludesEmptyDays(t *testing.T) {
	sets := []domain.LoggedSet{
		set("a", "squat", 100, 5, "2026-01-08T18:00:00.000Z"),
		set("b", "squat", 100, 5, "2026-01-08T19:00:00.000Z"),
		set("c", "squat", 100, 5, "2026-01-10T19:00:00.000Z"),
	}
	counts := DailyCounts(sets, Range{From: "2026-01-08", To: "2026-01-10"})

	assert.Equal(t, []DailyCount{
		{Date: "Jan 8", DayKey: "2026-01-08", Count: 2},
		{Date: "Jan 9", DayKey: "2026-01-09", Count: 0},
		{Date: "Jan 10", DayKey: "2026-01-10", Count: 1},
	}, counts)
	assert.Empty(t, DailyCounts(sets, Range{}))
}

func TestVolumeByWorkoutType(t *testing.T) {
	bw := set("bw", "pull up", 35, 10, "2026-01-08T18:00:00.000Z")
	bw.WeightIsBodyweight = ptr(true)
	sets := []domain.LoggedSet{
		set("a", "squat", 200, 5, "2026-01-08T18:00:00.000Z"),
		set("b", "squat", 100, 3, "2026-01-08T18:00:00.000Z"),
		set("c", "bench press", 135, 8, "2026-01-08T18:00:00.000Z"),
		bw,
		{ID: "untitled", WeightLb: ptr(50.0), Reps: ptr(5)},
	}

	assert.Equal(t, []WorkoutVolume{
		{WorkoutType: "bench press", Volume: 1080},
		{WorkoutType: "squat", Volume: 1300},
	}, VolumeByWorkoutType(sets))
}

func TestMaxWeightTrend(t *testing.T) {
	sets := []domain.LoggedSet{
		set("a", "squat", 200, 5, "2026-01-08T18:00:00.000Z"),
		set("b", "squat", 225, 3, "2026-01-08T19:00:00.000Z"),
		set("c", "bench press", 300, 1, "2026-01-09T19:00:00.000Z"),
	}
	trend := MaxWeightTrend(sets, Range{From: "2026-01-08", To: "2026-01-09"}, "squat")

	require.Len(t, trend, 2)
	require.NotNil(t, trend[0].MaxWeight)
	assert.Equal(t, 225.0, *trend[0].MaxWeight)
	assert.Nil(t, trend[1].MaxWeight)
}

func TestFormatWorkoutLabel(t *testing.T) {
	assert.Equal(t, "Bench Press", FormatWorkoutLabel("bench press"))
	assert.Equal(t, "Calf Raises (seated)", FormatWorkoutLabel("calf raises (seated)"))
}
