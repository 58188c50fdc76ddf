package catalog

import (
	"errors"
	"fmt"
)

// Position is a named player role and the statistics tracked for it, in
// display order.
type Position struct {
	Name  string   `json:"position"`
	Stats []string `json:"stats"`
}

// Catalog is the ordered mapping from position name to its statistic names.
// The first entry is the fallback position.
type Catalog struct {
	Positions []Position `json:"positions"`
}

// Persister loads and saves the whole catalog document.
type Persister interface {
	// Load returns found=false when nothing has ever been saved.
	Load() (Catalog, bool, error)
	Save(c Catalog) error
}

var (
	ErrUnknownPosition = errors.New("unknown position")
	ErrInvalidName     = errors.New("name must not be empty")
)

// UnknownPositionError reports a lookup of a position missing from the catalog.
type UnknownPositionError struct {
	Position string
}

func (e *UnknownPositionError) Error() string {
	return fmt.Sprintf("unknown position %q", e.Position)
}

func (e *UnknownPositionError) Unwrap() error {
	return ErrUnknownPosition
}
