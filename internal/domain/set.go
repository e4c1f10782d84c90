// internal/domain/set.go
package domain

import (
	"time"
)

// ISOLayout is the fixed-width UTC layout used for every stored timestamp.
// Zero padding and a constant offset keep string comparison chronological.
const ISOLayout = "2006-01-02T15:04:05.000Z"

// LoggedSet represents one workout set performed by the user.
type LoggedSet struct {
	ID                 string       `json:"id"`
	WorkoutType        *WorkoutType `json:"workoutType"`
	WeightLb           *float64     `json:"weightLb"`
	WeightIsBodyweight *bool        `json:"weightIsBodyweight,omitempty"`
	Reps               *int         `json:"reps"`
	RestSeconds        *int         `json:"restSeconds"`
	DurationSeconds    *int         `json:"durationSeconds"`
	PerformedAtISO     *string      `json:"performedAtISO"`
	CreatedAtISO       string       `json:"createdAtISO"`
	UpdatedAtISO       string       `json:"updatedAtISO"`
}

// LastModified is the timestamp used to order competing copies of a set.
func (s LoggedSet) LastModified() string {
	if s.UpdatedAtISO != "" {
		return s.UpdatedAtISO
	}
	return s.CreatedAtISO
}

// SourceISO is the timestamp a set is filed under: when it was performed,
// or when it was logged if no performed time was recorded.
func (s LoggedSet) SourceISO() string {
	if s.PerformedAtISO != nil && *s.PerformedAtISO != "" {
		return *s.PerformedAtISO
	}
	return s.CreatedAtISO
}

// IsBodyweight reports whether the set was logged as a bodyweight set.
func (s LoggedSet) IsBodyweight() bool {
	return s.WeightIsBodyweight != nil && *s.WeightIsBodyweight
}

// Normalize enforces the bodyweight/weight exclusivity: bodyweight sets carry no numeric load.
func (s *LoggedSet) Normalize() {
	if s.IsBodyweight() {
		s.WeightLb = nil
	}
	if s.WorkoutType != nil && *s.WorkoutType == "" {
		s.WorkoutType = nil
	}
}

// SetInput is the user-editable part of a set, used for creation.
type SetInput struct {
	WorkoutType        *WorkoutType `json:"workoutType"`
	WeightLb           *float64     `json:"weightLb"`
	WeightIsBodyweight *bool        `json:"weightIsBodyweight"`
	Reps               *int         `json:"reps"`
	RestSeconds        *int         `json:"restSeconds"`
	DurationSeconds    *int         `json:"durationSeconds"`
	PerformedAtISO     *string      `json:"performedAtISO"`
}

// NewLoggedSet builds a fresh set from input. Created and updated timestamps are equal.
func NewLoggedSet(id string, in SetInput, now time.Time) LoggedSet {
	stamp := FormatISO(now)
	set := LoggedSet{
		ID:                 id,
		WorkoutType:        in.WorkoutType,
		WeightLb:           in.WeightLb,
		WeightIsBodyweight: in.WeightIsBodyweight,
		Reps:               in.Reps,
		RestSeconds:        in.RestSeconds,
		DurationSeconds:    in.DurationSeconds,
		PerformedAtISO:     in.PerformedAtISO,
		CreatedAtISO:       stamp,
		UpdatedAtISO:       stamp,
	}
	set.Normalize()
	return set
}

// FormatISO renders t in ISOLayout (UTC, millisecond precision).
func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

// ParseISO parses any RFC 3339 timestamp, with or without fractional seconds.
func ParseISO(value string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, value)
}

// CanonicalISO rewrites any RFC 3339 value into ISOLayout. Empty stays empty.
func CanonicalISO(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	t, err := ParseISO(value)
	if err != nil {
		return "", err
	}
	return FormatISO(t), nil
}

// NowISO returns the current time in ISOLayout.
func NowISO() string {
	return FormatISO(time.Now())
}
