package domain

import (
	"bytes"
	"encoding/json"
)

// Optional is a tri-state JSON field: absent, explicit null, or a value.
type Optional[T any] struct {
	Set   bool
	Value *T
}

// Some returns a present, non-null Optional.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: &v}
}

// Null returns a present Optional that clears the field.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

// UnmarshalJSON is only invoked when the key is present in the payload.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// MarshalJSON writes null for absent or cleared values; pair with omitempty-aware callers.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}

// SetPatch is a partial update of a set. Only fields that are Set are applied.
type SetPatch struct {
	WorkoutType        Optional[WorkoutType] `json:"workoutType"`
	WeightLb           Optional[float64]     `json:"weightLb"`
	WeightIsBodyweight Optional[bool]        `json:"weightIsBodyweight"`
	Reps               Optional[int]         `json:"reps"`
	RestSeconds        Optional[int]         `json:"restSeconds"`
	DurationSeconds    Optional[int]         `json:"durationSeconds"`
	PerformedAtISO     Optional[string]      `json:"performedAtISO"`
	// UpdatedAtISO lets a client carry its own edit time; empty means "now".
	UpdatedAtISO string `json:"updatedAtISO,omitempty"`
}

// MarshalJSON writes only the fields that are present, so absent stays absent on the wire.
func (p SetPatch) MarshalJSON() ([]byte, error) {
	out := map[string]any{}
	if p.WorkoutType.Set {
		out["workoutType"] = p.WorkoutType
	}
	if p.WeightLb.Set {
		out["weightLb"] = p.WeightLb
	}
	if p.WeightIsBodyweight.Set {
		out["weightIsBodyweight"] = p.WeightIsBodyweight
	}
	if p.Reps.Set {
		out["reps"] = p.Reps
	}
	if p.RestSeconds.Set {
		out["restSeconds"] = p.RestSeconds
	}
	if p.DurationSeconds.Set {
		out["durationSeconds"] = p.DurationSeconds
	}
	if p.PerformedAtISO.Set {
		out["performedAtISO"] = p.PerformedAtISO
	}
	if p.UpdatedAtISO != "" {
		out["updatedAtISO"] = p.UpdatedAtISO
	}
	return json.Marshal(out)
}

// IsEmpty reports whether the patch changes no user field.
func (p SetPatch) IsEmpty() bool {
	return !p.WorkoutType.Set && !p.WeightLb.Set && !p.WeightIsBodyweight.Set &&
		!p.Reps.Set && !p.RestSeconds.Set && !p.DurationSeconds.Set && !p.PerformedAtISO.Set
}

// Input returns the present values as a SetInput, for validation.
func (p SetPatch) Input() SetInput {
	return SetInput{
		WorkoutType:        p.WorkoutType.Value,
		WeightLb:           p.WeightLb.Value,
		WeightIsBodyweight: p.WeightIsBodyweight.Value,
		Reps:               p.Reps.Value,
		RestSeconds:        p.RestSeconds.Value,
		DurationSeconds:    p.DurationSeconds.Value,
		PerformedAtISO:     p.PerformedAtISO.Value,
	}
}

// Apply mutates s in place and bumps UpdatedAtISO.
func (p SetPatch) Apply(s *LoggedSet, nowISO string) {
	if p.WorkoutType.Set {
		s.WorkoutType = p.WorkoutType.Value
	}
	if p.WeightLb.Set {
		s.WeightLb = p.WeightLb.Value
	}
	if p.WeightIsBodyweight.Set {
		s.WeightIsBodyweight = p.WeightIsBodyweight.Value
	}
	if p.Reps.Set {
		s.Reps = p.Reps.Value
	}
	if p.RestSeconds.Set {
		s.RestSeconds = p.RestSeconds.Value
	}
	if p.DurationSeconds.Set {
		s.DurationSeconds = p.DurationSeconds.Value
	}
	if p.PerformedAtISO.Set {
		s.PerformedAtISO = p.PerformedAtISO.Value
	}
	if p.UpdatedAtISO != "" {
		s.UpdatedAtISO = p.UpdatedAtISO
	} else {
		s.UpdatedAtISO = nowISO
	}
	s.Normalize()
}
