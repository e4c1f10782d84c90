package domain

import (
	"fmt"
	"strconv"
)

var durationWorkouts = map[WorkoutType]bool{
	"plank": true,
	"sauna": true,
}

var weightlessWorkouts = map[WorkoutType]bool{
	"leg lifts":     true,
	"toe touches":   true,
	"bicycles":      true,
	"true bubka":    true,
	"wipers":        true,
	"down pressure": true,
}

// FieldVisibility says which measurements apply to a workout type.
type FieldVisibility struct {
	ShowWeight   bool `json:"showWeight"`
	ShowReps     bool `json:"showReps"`
	ShowDuration bool `json:"showDuration"`
	ShowRest     bool `json:"showRest"`
}

// VisibilityFor returns the applicable fields for t. An empty type means an untitled set.
func VisibilityFor(t WorkoutType) FieldVisibility {
	if t == "" {
		return FieldVisibility{ShowWeight: true, ShowReps: true, ShowRest: true}
	}
	if IsSupplementWorkout(t) {
		return FieldVisibility{}
	}
	showDuration := durationWorkouts[t]
	return FieldVisibility{
		ShowWeight:   !showDuration && !weightlessWorkouts[t],
		ShowReps:     !showDuration,
		ShowDuration: showDuration,
		ShowRest:     !IsRecoveryWorkout(t),
	}
}

// FormatRestSeconds renders whole minutes as "N min" and anything else in seconds.
func FormatRestSeconds(seconds int) string {
	return formatSeconds(seconds)
}

// FormatDurationSeconds uses the same rules as rest.
func FormatDurationSeconds(seconds int) string {
	return formatSeconds(seconds)
}

func formatSeconds(seconds int) string {
	if seconds >= 60 && seconds%60 == 0 {
		return fmt.Sprintf("%d min", seconds/60)
	}
	return strconv.Itoa(seconds) + "s"
}

// BuildSetStats returns short display labels for the measurements that apply to s.
func BuildSetStats(s LoggedSet) []string {
	var t WorkoutType
	if s.WorkoutType != nil {
		t = *s.WorkoutType
	}
	v := VisibilityFor(t)
	stats := []string{}

	if v.ShowWeight {
		if s.IsBodyweight() {
			stats = append(stats, "BW")
		} else if s.WeightLb != nil {
			stats = append(stats, strconv.FormatFloat(*s.WeightLb, 'f', -1, 64)+" lb")
		}
	}
	if v.ShowReps && s.Reps != nil {
		stats = append(stats, fmt.Sprintf("%d reps", *s.Reps))
	}
	if v.ShowDuration && s.DurationSeconds != nil {
		stats = append(stats, FormatDurationSeconds(*s.DurationSeconds)+" duration")
	}
	if v.ShowRest && s.RestSeconds != nil {
		stats = append(stats, FormatRestSeconds(*s.RestSeconds)+" rest")
	}
	return stats
}
