package records

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the on-disk and wire format of match dates.
const DateLayout = "2006-01-02"

// Shared columns that precede the dynamic stat columns.
const (
	ColumnDate          = "date"
	ColumnOpponent      = "opponent"
	ColumnMinutesPlayed = "minutes_played"
	ColumnPosition      = "position"
)

// Input bounds carried over from the entry form.
const (
	MaxMinutes   = 120
	MaxStatValue = 200
)

// MatchRecord is one match row for one player. Stats is sparse: a stat that
// was not tracked for the match is absent, not zero.
type MatchRecord struct {
	Date          time.Time
	Opponent      string
	MinutesPlayed int
	Position      string
	Stats         map[string]int
}

// Key identifies a player's collection. Team is empty in single-team mode.
type Key struct {
	Player string `json:"player"`
	Team   string `json:"team,omitempty"`
}

// Collection is the ordered set of match records for one key. Columns holds
// the stat columns accumulated over time, in first-seen order.
type Collection struct {
	Key     Key           `json:"key"`
	Columns []string      `json:"columns"`
	Records []MatchRecord `json:"records"`
}

// Backend persists whole collections.
type Backend interface {
	Read(ctx context.Context, key Key) (*Collection, bool, error)
	Write(ctx context.Context, c *Collection) error
	List(ctx context.Context, team string) ([]Key, error)
}

// Cache is a short-lived read cache in front of Backend.Read.
type Cache interface {
	Get(ctx context.Context, key Key) (*Collection, bool)
	Set(ctx context.Context, c *Collection)
	Invalidate(ctx context.Context, key Key)
}

var (
	ErrValidation      = errors.New("invalid match record")
	ErrIndexOutOfRange = errors.New("record no longer exists, please refresh")
	ErrStorage         = errors.New("storage failure")
	ErrUnknownTeam     = errors.New("unknown team")
	ErrInvalidPlayer   = errors.New("player name must be non-empty and free of path characters")
)

// FieldError names one violated field of a submitted record.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError lists every violated field of a rejected record.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Reason)
	}
	return "invalid match record: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// StorageError wraps a backend read or write failure.
type StorageError struct {
	Op  string
	Key Key
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() []error {
	return []error{ErrStorage, e.Err}
}
