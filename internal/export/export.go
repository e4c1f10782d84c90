// Package export renders logged sets as the sets_export_v1 clipboard document.
package export

import (
	"alcyxob/sets-tracker/internal/domain"
	"alcyxob/sets-tracker/internal/pacific"
	"encoding/json"
	"fmt"
)

const (
	SchemaVersion = "sets_export_v1"
	DateFormat    = "YYYY-MM-DD"
	TimeFormat    = "HH:mm"
)

// Values of Entry.DateSource.
const (
	SourcePerformed = "performed"
	SourceCreated   = "created"
)

// Document is the top-level export payload.
type Document struct {
	SchemaVersion string  `json:"schema_version"`
	Timezone      string  `json:"timezone"`
	DateFormat    string  `json:"date_format"`
	TimeFormat    string  `json:"time_format"`
	Count         int     `json:"count"`
	Sets          []Entry `json:"sets"`
}

// Entry is one exported set with its Pacific date and time resolved.
type Entry struct {
	ID                 string   `json:"id"`
	WorkoutType        *string  `json:"workout_type"`
	WeightLb           *float64 `json:"weight_lb"`
	WeightIsBodyweight bool     `json:"weight_is_bodyweight"`
	Reps               *int     `json:"reps"`
	RestSeconds        *int     `json:"rest_seconds"`
	DurationSeconds    *int     `json:"duration_seconds"`
	DatePT             string   `json:"date_pt"`
	TimePT             string   `json:"time_pt"`
	DateSource         string   `json:"date_source"`
	PerformedISO       *string  `json:"performed_iso"`
	CreatedISO         string   `json:"created_iso"`
}

// Build converts sets into an export document, preserving input order.
func Build(sets []domain.LoggedSet) Document {
	doc := Document{
		SchemaVersion: SchemaVersion,
		Timezone:      pacific.TimeZone,
		DateFormat:    DateFormat,
		TimeFormat:    TimeFormat,
		Count:         len(sets),
		Sets:          make([]Entry, 0, len(sets)),
	}
	for _, s := range sets {
		doc.Sets = append(doc.Sets, entryFor(s))
	}
	return doc
}

func entryFor(s domain.LoggedSet) Entry {
	source := SourceCreated
	var performed *string
	if s.PerformedAtISO != nil && *s.PerformedAtISO != "" {
		source = SourcePerformed
		performed = s.PerformedAtISO
	}
	sourceISO := s.SourceISO()

	e := Entry{
		ID:                 s.ID,
		WeightIsBodyweight: s.IsBodyweight(),
		Reps:               s.Reps,
		RestSeconds:        s.RestSeconds,
		DurationSeconds:    s.DurationSeconds,
		DatePT:             pacific.DateInput(sourceISO),
		TimePT:             pacific.TimeInput(sourceISO),
		DateSource:         source,
		PerformedISO:       performed,
		CreatedISO:         s.CreatedAtISO,
	}
	if s.WorkoutType != nil {
		t := string(*s.WorkoutType)
		e.WorkoutType = &t
	}
	if !s.IsBodyweight() {
		e.WeightLb = s.WeightLb
	}
	return e
}

// Format returns the clipboard JSON for sets.
func Format(sets []domain.LoggedSet) ([]byte, error) {
	return json.Marshal(Build(sets))
}

// Parse reads an export document back, rejecting other schema versions.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode export: %w", err)
	}
	if doc.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("unsupported export schema %q", doc.SchemaVersion)
	}
	if doc.Count != len(doc.Sets) {
		return nil, fmt.Errorf("export count %d does not match %d sets", doc.Count, len(doc.Sets))
	}
	return &doc, nil
}

// PacificISO reconstructs the instant named by DatePT and TimePT (minute precision).
func (e Entry) PacificISO() string {
	return pacific.ToISO(e.DatePT, e.TimePT)
}
