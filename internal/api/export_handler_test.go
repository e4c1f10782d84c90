package api

import (
	"alcyxob/sets-tracker/internal/export"
	"alcyxob/sets-tracker/internal/service"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetWorkoutsIncludesFieldVisibility(t *testing.T) {
	router := newTestRouter(newFakeRepo())

	w := doJSON(t, router, http.MethodGet, "/api/workouts", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var groups []WorkoutGroupResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &groups))
	require.NotEmpty(t, groups)

	found := false
	for _, g := range groups {
		for _, item := range g.Items {
			if item.WorkoutType == "plank" {
				found = true
				assert.True(t, item.Fields.ShowDuration)
				assert.False(t, item.Fields.ShowReps)
			}
		}
	}
	assert.True(t, found)
}

func TestGetExport(t *testing.T) {
	router := newTestRouter(newFakeRepo())
	doJSON(t, router, http.MethodPost, "/api/sets", map[string]any{"workoutType": "squat", "weightLb": 200, "reps": 5, "performedAtISO": "2025-03-01T18:00:00.000Z"})

	w := doJSON(t, router, http.MethodGet, "/api/sets/export", nil)
	require.Equal(t, http.StatusOK, w.Code)

	doc, err := export.Parse(w.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, export.SchemaVersion, doc.SchemaVersion)
	assert.Equal(t, 1, doc.Count)
	assert.Equal(t, "2025-03-01", doc.Sets[0].DatePT)
}

func TestUploadExportWithoutBucket(t *testing.T) {
	router := newTestRouter(newFakeRepo())

	w := doJSON(t, router, http.MethodPost, "/api/sets/export", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Export storage is not configured.")
}

func TestGetStats(t *testing.T) {
	router := newTestRouter(newFakeRepo())
	doJSON(t, router, http.MethodPost, "/api/sets", map[string]any{"workoutType": "squat", "weightLb": 200, "reps": 5, "performedAtISO": "2025-03-01T18:00:00.000Z"})

	w := doJSON(t, router, http.MethodGet, "/api/sets/stats?from=2025-03-01&to=2025-03-02&workoutType=squat", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var trends service.Trends
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &trends))
	require.Len(t, trends.DailyCounts, 2)
	assert.Equal(t, 1, trends.DailyCounts[0].Count)
	require.Len(t, trends.Volume, 1)
	assert.Equal(t, 1000.0, trends.Volume[0].Volume)
	require.Len(t, trends.MaxWeight, 2)
	assert.Equal(t, 200.0, *trends.MaxWeight[0].MaxWeight)

	w = doJSON(t, router, http.MethodGet, "/api/sets/stats?from=March", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
