package repository

import (
	"alcyxob/sets-tracker/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func baseValues() map[string]any {
	return map[string]any{
		ColID:              "row-1",
		ColDeviceID:        "shared",
		ColWorkoutType:     "bench press",
		ColWeightLb:        185.0,
		ColReps:            int64(5),
		ColRestSeconds:     int64(120),
		ColDurationSeconds: int32(45),
		ColPerformedAt:     "2025-01-01T02:00:00.000Z",
		ColCreatedAt:       "2025-01-01T02:00:00.000Z",
		ColUpdatedAt:       "2025-01-01T03:00:00.000Z",
	}
}

func TestSetFromValuesMapsKnownWorkoutTypes(t *testing.T) {
	s := SetFromValues(baseValues())

	require.NotNil(t, s.WorkoutType)
	assert.Equal(t, domain.WorkoutType("bench press"), *s.WorkoutType)
	assert.Equal(t, 185.0, *s.WeightLb)
	assert.Equal(t, 5, *s.Reps)
	assert.Equal(t, 45, *s.DurationSeconds)
	assert.Equal(t, "2025-01-01T03:00:00.000Z", s.UpdatedAtISO)
	assert.Nil(t, s.WeightIsBodyweight, "column absent on older tables")
}

func TestSetFromValuesDropsUnknownWorkoutTypes(t *testing.T) {
	values := baseValues()
	values[ColWorkoutType] = "unknown"
	assert.Nil(t, SetFromValues(values).WorkoutType)
}

func TestSetFromValuesDecodesDriverText(t *testing.T) {
	values := baseValues()
	values[ColWeightLb] = []byte("182.5")
	values[ColWeightIsBodyweight] = []byte("true")
	values[ColPerformedAt] = nil

	s := SetFromValues(values)
	assert.Equal(t, 182.5, *s.WeightLb)
	require.NotNil(t, s.WeightIsBodyweight)
	assert.True(t, *s.WeightIsBodyweight)
	assert.Nil(t, s.PerformedAtISO)
}

func TestRowFromSet(t *testing.T) {
	s := domain.LoggedSet{
		ID:              "set-1",
		WorkoutType:     ptr(domain.WorkoutType("squat")),
		WeightLb:        ptr(225.0),
		Reps:            ptr(3),
		RestSeconds:     ptr(180),
		DurationSeconds: ptr(90),
		PerformedAtISO:  ptr("2025-02-01T02:00:00.000Z"),
		CreatedAtISO:    "2025-02-01T02:00:00.000Z",
		UpdatedAtISO:    "2025-02-01T02:00:00.000Z",
	}
	row := RowFromSet(s)

	v, ok := row.Get(ColWorkoutType)
	require.True(t, ok)
	assert.Equal(t, "squat", v)
	v, _ = row.Get(ColReps)
	assert.Equal(t, int64(3), v)
	v, _ = row.Get(ColDurationSeconds)
	assert.Equal(t, int64(90), v)
	assert.False(t, row.Has(ColDeviceID))

	stripped := row.Without(ColDurationSeconds)
	assert.False(t, stripped.Has(ColDurationSeconds))
	assert.Len(t, stripped, len(row)-1)
	assert.True(t, row.Has(ColDurationSeconds), "Without does not mutate the receiver")
}

func TestRowFromPatchOnlyPresentFields(t *testing.T) {
	patch := domain.SetPatch{Reps: domain.Some(8), WeightLb: domain.Null[float64]()}
	row := RowFromPatch(patch, "2025-02-02T00:00:00.000Z")

	assert.Equal(t, []string{ColWeightLb, ColReps, ColUpdatedAt}, row.Names())
	assert.Equal(t, []any{nil, int64(8), "2025-02-02T00:00:00.000Z"}, row.Values())
}

func TestRowFromPatchBodyweightClearsWeight(t *testing.T) {
	patch := domain.SetPatch{WeightIsBodyweight: domain.Some(true)}
	row := RowFromPatch(patch, "2025-02-02T00:00:00.000Z")

	v, ok := row.Get(ColWeightLb)
	require.True(t, ok)
	assert.Nil(t, v)
}
