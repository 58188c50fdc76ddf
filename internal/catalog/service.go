package catalog

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// Service owns the catalog in effect for the process. Every mutation writes
// the whole document through the persister before it becomes visible.
type Service struct {
	mu        sync.RWMutex
	current   Catalog
	persister Persister
}

// NewService loads the persisted catalog, falling back to Default when
// nothing has been saved yet.
func NewService(persister Persister) (*Service, error) {
	s := &Service{persister: persister}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload replaces the in-memory catalog with the persisted one.
func (s *Service) Reload() error {
	c, found, err := s.persister.Load()
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	if !found {
		log.Info("No saved position catalog, using built-in default")
		c = Default()
	}

	s.mu.Lock()
	s.current = c.normalize()
	s.mu.Unlock()
	return nil
}

// Snapshot returns a copy of the catalog in effect.
func (s *Service) Snapshot() Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

func (s *Service) Positions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Names()
}

// Stats returns the stat names for position, or an *UnknownPositionError.
func (s *Service) Stats(position string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Stats(position)
}

// Resolve applies the fallback policy: unknown positions resolve to the first
// catalog entry.
func (s *Service) Resolve(position string) (string, []string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Resolve(position)
}

func (s *Service) AddPosition(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidName
	}
	return s.mutate(func(c *Catalog) (bool, error) {
		return c.addPosition(name), nil
	}, "Added position", "position", name)
}

// RemovePosition deletes the position and its stats. Stored match records
// that reference it are not touched.
func (s *Service) RemovePosition(name string) error {
	return s.mutate(func(c *Catalog) (bool, error) {
		return c.removePosition(name), nil
	}, "Removed position", "position", name)
}

func (s *Service) AddStat(position, stat string) error {
	stat = strings.TrimSpace(stat)
	if stat == "" {
		return ErrInvalidName
	}
	return s.mutate(func(c *Catalog) (bool, error) {
		return c.addStat(position, stat)
	}, "Added stat", "position", position, "stat", stat)
}

func (s *Service) RemoveStat(position, stat string) error {
	return s.mutate(func(c *Catalog) (bool, error) {
		return c.removeStat(position, stat)
	}, "Removed stat", "position", position, "stat", stat)
}

func (s *Service) mutate(apply func(c *Catalog) (bool, error), msg string, keyvals ...any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current.Clone()
	changed, err := apply(&next)
	if err != nil {
		return err
	}
	if !changed {
		log.Debug("Catalog unchanged", keyvals...)
		return nil
	}
	if err := s.persister.Save(next); err != nil {
		return fmt.Errorf("failed to persist catalog: %w", err)
	}
	s.current = next
	log.Info(msg, keyvals...)
	return nil
}
