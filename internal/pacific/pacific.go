// Package pacific renders and parses timestamps on the Pacific-time calendar
// the app files sets under.
package pacific

import (
	"alcyxob/sets-tracker/internal/domain"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // the zone must resolve on hosts without a zoneinfo database
)

// TimeZone is the IANA name written into exports.
const TimeZone = "America/Los_Angeles"

const (
	dayLayout  = "2006-01-02"
	timeLayout = "15:04"
)

var location = mustLoad(TimeZone)

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(fmt.Sprintf("pacific: load %s: %v", name, err))
	}
	return loc
}

// Location returns the Pacific time zone.
func Location() *time.Location { return location }

// Now returns the current time in Pacific time.
func Now() time.Time { return time.Now().In(location) }

// In parses an ISO timestamp and returns it in Pacific time.
func In(iso string) (time.Time, bool) {
	if iso == "" {
		return time.Time{}, false
	}
	t, err := domain.ParseISO(iso)
	if err != nil {
		return time.Time{}, false
	}
	return t.In(location), true
}

// DateInput returns the Pacific calendar date of iso as YYYY-MM-DD, or "".
func DateInput(iso string) string {
	t, ok := In(iso)
	if !ok {
		return ""
	}
	return t.Format(dayLayout)
}

// TimeInput returns the Pacific time of day of iso as HH:mm, or "".
func TimeInput(iso string) string {
	t, ok := In(iso)
	if !ok {
		return ""
	}
	return t.Format(timeLayout)
}

// DayKey is DateInput with an explicit presence flag.
func DayKey(iso string) (string, bool) {
	key := DateInput(iso)
	return key, key != ""
}

// ToISO converts a Pacific wall-clock date (YYYY-MM-DD) and time (H:MM or H:MM:SS)
// to a UTC ISO timestamp. It returns "" for unparseable input.
func ToISO(date, clock string) string {
	if date == "" || clock == "" {
		return ""
	}
	parts := strings.Split(clock, ":")
	if len(parts) < 2 {
		return ""
	}
	seconds := "00"
	if len(parts) > 2 {
		seconds = parts[2]
	}
	normalized := fmt.Sprintf("%s:%s:%s", pad2(parts[0]), pad2(parts[1]), pad2(seconds))
	t, err := time.ParseInLocation(dayLayout+"T15:04:05", date+"T"+normalized, location)
	if err != nil {
		return ""
	}
	return domain.FormatISO(t)
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

// Format renders iso for display, e.g. "January 8, 2026 · 12:35 PM PT".
func Format(iso string) string {
	t, ok := In(iso)
	if !ok {
		return "No performed time"
	}
	return t.Format("January 2, 2006 · 3:04 PM") + " PT"
}

// ParseDay parses a YYYY-MM-DD day key as Pacific midnight.
func ParseDay(key string) (time.Time, error) {
	return time.ParseInLocation(dayLayout, key, location)
}

// DayLabel renders a day key as a short chart label, e.g. "Jan 8".
func DayLabel(key string) string {
	t, err := ParseDay(key)
	if err != nil {
		return key
	}
	return t.Format("Jan 2")
}

// Days lists every day key from from to to inclusive. It returns nil if either
// bound is invalid or to precedes from.
func Days(from, to string) []string {
	start, err := ParseDay(from)
	if err != nil {
		return nil
	}
	end, err := ParseDay(to)
	if err != nil || end.Before(start) {
		return nil
	}
	var days []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(dayLayout))
	}
	return days
}

// TodayKey returns today's Pacific day key.
func TodayKey() string {
	return Now().Format(dayLayout)
}

// AddDays shifts a day key by n days.
func AddDays(key string, n int) string {
	t, err := ParseDay(key)
	if err != nil {
		return key
	}
	return t.AddDate(0, 0, n).Format(dayLayout)
}
