package records

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"
)

// NewDate returns the calendar date as a UTC midnight time.
func NewDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ParseDate accepts "2006-01-02" and tolerates a trailing time component.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

func truncateDate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// Value returns the value of a stat column, treating minutes_played as a
// column like any other.
func (r MatchRecord) Value(stat string) (int, bool) {
	if stat == ColumnMinutesPlayed {
		return r.MinutesPlayed, true
	}
	v, ok := r.Stats[stat]
	return v, ok
}

func (r MatchRecord) Clone() MatchRecord {
	r.Stats = maps.Clone(r.Stats)
	return r
}

type recordJSON struct {
	Date          string         `json:"date"`
	Opponent      string         `json:"opponent"`
	MinutesPlayed int            `json:"minutes_played"`
	Position      string         `json:"position,omitempty"`
	Stats         map[string]int `json:"stats"`
}

func (r MatchRecord) MarshalJSON() ([]byte, error) {
	out := recordJSON{
		Opponent:      r.Opponent,
		MinutesPlayed: r.MinutesPlayed,
		Position:      r.Position,
		Stats:         r.Stats,
	}
	if !r.Date.IsZero() {
		out.Date = r.Date.Format(DateLayout)
	}
	if out.Stats == nil {
		out.Stats = map[string]int{}
	}
	return json.Marshal(out)
}

func (r *MatchRecord) UnmarshalJSON(data []byte) error {
	var in recordJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*r = MatchRecord{
		Opponent:      in.Opponent,
		MinutesPlayed: in.MinutesPlayed,
		Position:      in.Position,
		Stats:         in.Stats,
	}
	if in.Date != "" {
		d, err := ParseDate(in.Date)
		if err != nil {
			return err
		}
		r.Date = d
	}
	return nil
}

func isSharedColumn(name string) bool {
	switch name {
	case ColumnDate, ColumnOpponent, ColumnMinutesPlayed, ColumnPosition:
		return true
	}
	return false
}

// Validate checks a submitted record and returns a *ValidationError listing
// every violated field, or nil.
func Validate(r MatchRecord) error {
	var fields []FieldError
	if r.Date.IsZero() {
		fields = append(fields, FieldError{Field: ColumnDate, Reason: "is required"})
	}
	if strings.TrimSpace(r.Opponent) == "" {
		fields = append(fields, FieldError{Field: ColumnOpponent, Reason: "is required"})
	}
	switch {
	case r.MinutesPlayed <= 0:
		fields = append(fields, FieldError{Field: ColumnMinutesPlayed, Reason: "must be greater than 0"})
	case r.MinutesPlayed > MaxMinutes:
		fields = append(fields, FieldError{Field: ColumnMinutesPlayed, Reason: fmt.Sprintf("must be at most %d", MaxMinutes)})
	}
	for _, name := range slices.Sorted(maps.Keys(r.Stats)) {
		v := r.Stats[name]
		switch {
		case strings.TrimSpace(name) == "":
			fields = append(fields, FieldError{Field: "stats", Reason: "stat name must not be empty"})
		case isSharedColumn(name):
			fields = append(fields, FieldError{Field: name, Reason: "is not a stat column"})
		case v < 0 || v > MaxStatValue:
			fields = append(fields, FieldError{Field: name, Reason: fmt.Sprintf("must be between 0 and %d", MaxStatValue)})
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func normalize(r MatchRecord) MatchRecord {
	r = r.Clone()
	r.Date = truncateDate(r.Date)
	r.Opponent = strings.TrimSpace(r.Opponent)
	if r.Stats == nil {
		r.Stats = map[string]int{}
	}
	return r
}
