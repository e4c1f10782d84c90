package repository

import (
	"alcyxob/sets-tracker/internal/domain"
	"fmt"
	"strconv"
	"time"
)

// Table and column names of the backing store. Collections use the same field names.
const (
	TableSets = "sets"

	ColID                 = "id"
	ColDeviceID           = "device_id"
	ColWorkoutType        = "workout_type"
	ColWeightLb           = "weight_lb"
	ColWeightIsBodyweight = "weight_is_bodyweight"
	ColReps               = "reps"
	ColRestSeconds        = "rest_seconds"
	ColDurationSeconds    = "duration_seconds"
	ColPerformedAt        = "performed_at_iso"
	ColCreatedAt          = "created_at_iso"
	ColUpdatedAt          = "updated_at_iso"
)

// OptionalColumns were added after the first table revision. A store that has
// not been migrated yet may reject writes that mention them.
var OptionalColumns = []string{ColDurationSeconds, ColWeightIsBodyweight}

// Column is a single column/value pair. A nil Value writes NULL.
type Column struct {
	Name  string
	Value any
}

// Row is an ordered list of columns to write.
type Row []Column

// Has reports whether the row writes column name.
func (r Row) Has(name string) bool {
	for _, c := range r {
		if c.Name == name {
			return true
		}
	}
	return false
}

// Get returns the value of column name.
func (r Row) Get(name string) (any, bool) {
	for _, c := range r {
		if c.Name == name {
			return c.Value, true
		}
	}
	return nil, false
}

// Without returns a copy of the row minus column name.
func (r Row) Without(name string) Row {
	out := make(Row, 0, len(r))
	for _, c := range r {
		if c.Name != name {
			out = append(out, c)
		}
	}
	return out
}

// Names lists the column names in order.
func (r Row) Names() []string {
	names := make([]string, len(r))
	for i, c := range r {
		names[i] = c.Name
	}
	return names
}

// Values lists the column values in order.
func (r Row) Values() []any {
	values := make([]any, len(r))
	for i, c := range r {
		values[i] = c.Value
	}
	return values
}

// RowFromSet maps every column of s. The tenant column is added by the repository.
func RowFromSet(s domain.LoggedSet) Row {
	var workoutType any
	if s.WorkoutType != nil {
		workoutType = string(*s.WorkoutType)
	}
	return Row{
		{ColID, s.ID},
		{ColWorkoutType, workoutType},
		{ColWeightLb, deref(s.WeightLb)},
		{ColWeightIsBodyweight, s.IsBodyweight()},
		{ColReps, derefInt(s.Reps)},
		{ColRestSeconds, derefInt(s.RestSeconds)},
		{ColDurationSeconds, derefInt(s.DurationSeconds)},
		{ColPerformedAt, deref(s.PerformedAtISO)},
		{ColCreatedAt, s.CreatedAtISO},
		{ColUpdatedAt, s.UpdatedAtISO},
	}
}

// RowFromPatch maps only the fields present in p, plus updated_at_iso.
func RowFromPatch(p domain.SetPatch, updatedAtISO string) Row {
	row := Row{}
	if p.WorkoutType.Set {
		var v any
		if p.WorkoutType.Value != nil {
			v = string(*p.WorkoutType.Value)
		}
		row = append(row, Column{ColWorkoutType, v})
	}
	if p.WeightLb.Set {
		row = append(row, Column{ColWeightLb, deref(p.WeightLb.Value)})
	}
	if p.WeightIsBodyweight.Set {
		bodyweight := p.WeightIsBodyweight.Value != nil && *p.WeightIsBodyweight.Value
		row = append(row, Column{ColWeightIsBodyweight, bodyweight})
		if bodyweight && !p.WeightLb.Set {
			row = append(row, Column{ColWeightLb, nil})
		}
	}
	if p.Reps.Set {
		row = append(row, Column{ColReps, derefInt(p.Reps.Value)})
	}
	if p.RestSeconds.Set {
		row = append(row, Column{ColRestSeconds, derefInt(p.RestSeconds.Value)})
	}
	if p.DurationSeconds.Set {
		row = append(row, Column{ColDurationSeconds, derefInt(p.DurationSeconds.Value)})
	}
	if p.PerformedAtISO.Set {
		row = append(row, Column{ColPerformedAt, deref(p.PerformedAtISO.Value)})
	}
	row = append(row, Column{ColUpdatedAt, updatedAtISO})
	return row
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// derefInt widens to int64 so every driver sees the same integer type.
func derefInt(p *int) any {
	if p == nil {
		return nil
	}
	return int64(*p)
}

// SetFromValues maps a scanned row or document back to a set. Missing columns
// read as null; workout types outside the catalog are dropped.
func SetFromValues(values map[string]any) domain.LoggedSet {
	s := domain.LoggedSet{
		ID:              asString(values[ColID]),
		WeightLb:        asFloat(values[ColWeightLb]),
		Reps:            asInt(values[ColReps]),
		RestSeconds:     asInt(values[ColRestSeconds]),
		DurationSeconds: asInt(values[ColDurationSeconds]),
		CreatedAtISO:    asString(values[ColCreatedAt]),
		UpdatedAtISO:    asString(values[ColUpdatedAt]),
	}
	if raw := asString(values[ColWorkoutType]); raw != "" {
		t := domain.WorkoutType(raw)
		if domain.IsKnownWorkoutType(t) {
			s.WorkoutType = &t
		}
	}
	if performed := asString(values[ColPerformedAt]); performed != "" {
		s.PerformedAtISO = &performed
	}
	if bw := asBool(values[ColWeightIsBodyweight]); bw != nil {
		s.WeightIsBodyweight = bw
	}
	return s
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case time.Time:
		return domain.FormatISO(t)
	default:
		return fmt.Sprint(t)
	}
}

func asFloat(v any) *float64 {
	var f float64
	switch t := v.(type) {
	case nil:
		return nil
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int32:
		f = float64(t)
	case int64:
		f = float64(t)
	case []byte:
		parsed, err := strconv.ParseFloat(string(t), 64)
		if err != nil {
			return nil
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	return &f
}

func asInt(v any) *int {
	f := asFloat(v)
	if f == nil {
		return nil
	}
	i := int(*f)
	return &i
}

func asBool(v any) *bool {
	var b bool
	switch t := v.(type) {
	case bool:
		b = t
	case int64:
		b = t != 0
	case int32:
		b = t != 0
	case []byte:
		parsed, err := strconv.ParseBool(string(t))
		if err != nil {
			return nil
		}
		b = parsed
	case string:
		parsed, err := strconv.ParseBool(t)
		if err != nil {
			return nil
		}
		b = parsed
	default:
		return nil
	}
	return &b
}
