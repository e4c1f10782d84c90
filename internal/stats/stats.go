// Package stats aggregates logged sets into the trend series shown on the trends screen.
package stats

import (
	"alcyxob/sets-tracker/internal/domain"
	"alcyxob/sets-tracker/internal/pacific"
	"sort"
	"strings"
)

// Range is an inclusive span of Pacific day keys. An empty To means a single day.
type Range struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (r Range) bounds() (string, string, bool) {
	to := r.To
	if to == "" {
		to = r.From
	}
	if r.From == "" || to == "" {
		return "", "", false
	}
	return r.From, to, true
}

// LastDays is the range ending today covering n days.
func LastDays(n int) Range {
	today := pacific.TodayKey()
	return Range{From: pacific.AddDays(today, -(n - 1)), To: today}
}

// DailyCount is the number of sets performed on one day.
type DailyCount struct {
	Date   string `json:"date"`
	DayKey string `json:"dayKey"`
	Count  int    `json:"count"`
}

// WorkoutVolume is total weight × reps for one workout type.
type WorkoutVolume struct {
	WorkoutType domain.WorkoutType `json:"workoutType"`
	Volume      float64            `json:"volume"`
}

// MaxWeightPoint is the heaviest set of a day, nil when nothing was lifted.
type MaxWeightPoint struct {
	Date      string   `json:"date"`
	DayKey    string   `json:"dayKey"`
	MaxWeight *float64 `json:"maxWeight"`
}

// SortSets returns a copy ordered newest first by performed (or created) time.
func SortSets(sets []domain.LoggedSet) []domain.LoggedSet {
	out := make([]domain.LoggedSet, len(sets))
	copy(out, sets)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SourceISO() > out[j].SourceISO()
	})
	return out
}

// FilterByRange keeps sets whose performed day falls in r. Sets without a
// performed time are excluded. A zero range returns the input.
func FilterByRange(sets []domain.LoggedSet, r Range) []domain.LoggedSet {
	from, to, ok := r.bounds()
	if !ok {
		return sets
	}
	out := make([]domain.LoggedSet, 0, len(sets))
	for _, s := range sets {
		key, ok := performedDay(s)
		if !ok {
			continue
		}
		if key >= from && key <= to {
			out = append(out, s)
		}
	}
	return out
}

// DailyCounts counts sets per performed day over r, including empty days.
func DailyCounts(sets []domain.LoggedSet, r Range) []DailyCount {
	from, to, ok := r.bounds()
	if !ok {
		return []DailyCount{}
	}
	counts := map[string]int{}
	for _, s := range sets {
		if key, ok := performedDay(s); ok {
			counts[key]++
		}
	}
	out := []DailyCount{}
	for _, day := range pacific.Days(from, to) {
		out = append(out, DailyCount{Date: pacific.DayLabel(day), DayKey: day, Count: counts[day]})
	}
	return out
}

// VolumeByWorkoutType sums weight × reps per type in catalog order, skipping
// bodyweight and incomplete sets and dropping types with no volume.
func VolumeByWorkoutType(sets []domain.LoggedSet) []WorkoutVolume {
	totals := map[domain.WorkoutType]float64{}
	for _, s := range sets {
		if s.WorkoutType == nil || s.IsBodyweight() || s.WeightLb == nil || s.Reps == nil {
			continue
		}
		totals[*s.WorkoutType] += *s.WeightLb * float64(*s.Reps)
	}
	out := []WorkoutVolume{}
	for _, t := range domain.WorkoutTypes() {
		if v := totals[t]; v > 0 {
			out = append(out, WorkoutVolume{WorkoutType: t, Volume: v})
		}
	}
	return out
}

// MaxWeightTrend returns the per-day maximum load for one workout type across r.
func MaxWeightTrend(sets []domain.LoggedSet, r Range, t domain.WorkoutType) []MaxWeightPoint {
	from, to, ok := r.bounds()
	if !ok {
		return []MaxWeightPoint{}
	}
	maxByDay := map[string]float64{}
	for _, s := range sets {
		if s.WorkoutType == nil || *s.WorkoutType != t {
			continue
		}
		if s.IsBodyweight() || s.WeightLb == nil {
			continue
		}
		key, ok := performedDay(s)
		if !ok {
			continue
		}
		if current, seen := maxByDay[key]; !seen || *s.WeightLb > current {
			maxByDay[key] = *s.WeightLb
		}
	}
	out := []MaxWeightPoint{}
	for _, day := range pacific.Days(from, to) {
		point := MaxWeightPoint{Date: pacific.DayLabel(day), DayKey: day}
		if v, ok := maxByDay[day]; ok {
			v := v
			point.MaxWeight = &v
		}
		out = append(out, point)
	}
	return out
}

// FormatWorkoutLabel title-cases each word, e.g. "bench press" → "Bench Press".
func FormatWorkoutLabel(value string) string {
	words := strings.Split(value, " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func performedDay(s domain.LoggedSet) (string, bool) {
	if s.PerformedAtISO == nil {
		return "", false
	}
	return pacific.DayKey(*s.PerformedAtISO)
}
