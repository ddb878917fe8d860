package util

import (
    "strconv"
    "time"
)

// DateOnly is the wire format for calendar days.
const DateOnly = "2006-01-02"

// Day truncates t to its calendar day in UTC.
func Day(t time.Time) time.Time {
    y, m, d := t.UTC().Date()
    return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole days from a to b (negative if b < a).
func DaysBetween(a, b time.Time) int {
    return int(Day(b).Sub(Day(a)) / (24 * time.Hour))
}

// ParseDate tries YYYY-MM-DD, RFC3339, and unix seconds. Returns (day, true) if any worked.
// The result is always truncated to a UTC calendar day.
func ParseDate(s string) (time.Time, bool) {
    if s == "" {
        return time.Time{}, false
    }
    if t, err := time.Parse(DateOnly, s); err == nil {
        return Day(t), true
    }
    if t, err := time.Parse(time.RFC3339, s); err == nil {
        return Day(t), true
    }
    if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
        return Day(time.Unix(ts, 0)), true
    }
    return time.Time{}, false
}

// ParseDateDefault parses a date or returns default if empty/invalid.
func ParseDateDefault(s string, def time.Time) time.Time {
    if t, ok := ParseDate(s); ok {
        return t
    }
    return def
}

// ParseIntDefault parses string to int or returns default if empty/invalid.
func ParseIntDefault(s string, def int) int {
    if s == "" {
        return def
    }
    if n, err := strconv.Atoi(s); err == nil {
        return n
    }
    return def
}

// ParseBoolDefault parses "true"/"1" style flags or returns default.
func ParseBoolDefault(s string, def bool) bool {
    if s == "" {
        return def
    }
    if b, err := strconv.ParseBool(s); err == nil {
        return b
    }
    return def
}
