package records

import (
	"context"

	"github.com/charmbracelet/log"
)

// Observer receives cache and mutation signals. metrics.Metrics satisfies it.
type Observer interface {
	IncCacheHits()
	IncCacheMisses()
	IncRecordsAppended()
	IncRecordsUpdated()
	IncRecordsDeleted()
	IncValidationFailures()
	IncStorageErrors()
}

// Store is the match record store. Persistence is load snapshot, mutate in
// memory, overwrite the whole collection; concurrent writers to the same key
// are last-writer-wins.
type Store struct {
	backend  Backend
	cache    Cache
	observer Observer
}

// NewStore wires a backend behind a read cache. A nil cache disables caching.
func NewStore(backend Backend, cache Cache, observer Observer) *Store {
	if cache == nil {
		cache = noCache{}
	}
	return &Store{backend: backend, cache: cache, observer: observer}
}

// Load returns found=false with a nil error when nothing is stored for key.
func (s *Store) Load(ctx context.Context, key Key) (*Collection, bool, error) {
	if c, ok := s.cache.Get(ctx, key); ok {
		s.observer.IncCacheHits()
		return c.Clone(), true, nil
	}
	s.observer.IncCacheMisses()

	c, found, err := s.backend.Read(ctx, key)
	if err != nil {
		s.observer.IncStorageErrors()
		return nil, false, &StorageError{Op: "load", Key: key, Err: err}
	}
	if !found {
		log.Debug("No stored collection", "key", key.ID())
		return nil, false, nil
	}
	c.Key = key
	s.cache.Set(ctx, c.Clone())
	return c, true, nil
}

// Append validates rec, appends it and persists the collection. On any error
// c is left unchanged.
func (s *Store) Append(ctx context.Context, c *Collection, rec MatchRecord) error {
	if err := Validate(rec); err != nil {
		s.observer.IncValidationFailures()
		return err
	}
	next := c.withAppended(normalize(rec))
	if err := s.persist(ctx, "append", next); err != nil {
		return err
	}
	*c = *next
	s.observer.IncRecordsAppended()
	log.Info("Appended match", "key", c.Key.ID(), "opponent", rec.Opponent, "matches", c.Len())
	return nil
}

// UpdateAt overwrites every field of the record at index.
func (s *Store) UpdateAt(ctx context.Context, c *Collection, index int, rec MatchRecord) error {
	if err := Validate(rec); err != nil {
		s.observer.IncValidationFailures()
		return err
	}
	if !c.inRange(index) {
		return ErrIndexOutOfRange
	}
	next := c.withReplaced(index, normalize(rec))
	if err := s.persist(ctx, "update", next); err != nil {
		return err
	}
	*c = *next
	s.observer.IncRecordsUpdated()
	log.Info("Updated match", "key", c.Key.ID(), "index", index)
	return nil
}

func (s *Store) DeleteAt(ctx context.Context, c *Collection, index int) error {
	if !c.inRange(index) {
		return ErrIndexOutOfRange
	}
	next := c.withDeleted(index)
	if err := s.persist(ctx, "delete", next); err != nil {
		return err
	}
	*c = *next
	s.observer.IncRecordsDeleted()
	log.Info("Deleted match", "key", c.Key.ID(), "index", index)
	return nil
}

// ListPlayers returns the keys of every stored collection for team ("" for
// single-team collections).
func (s *Store) ListPlayers(ctx context.Context, team string) ([]Key, error) {
	keys, err := s.backend.List(ctx, team)
	if err != nil {
		s.observer.IncStorageErrors()
		return nil, &StorageError{Op: "list", Key: Key{Team: team}, Err: err}
	}
	return keys, nil
}

// Invalidate drops key from the read cache so the next Load goes to storage.
func (s *Store) Invalidate(ctx context.Context, key Key) {
	s.cache.Invalidate(ctx, key)
}

func (s *Store) persist(ctx context.Context, op string, c *Collection) error {
	if err := s.backend.Write(ctx, c); err != nil {
		s.observer.IncStorageErrors()
		log.Error("Failed to persist collection", "op", op, "key", c.Key.ID(), "error", err)
		return &StorageError{Op: op, Key: c.Key, Err: err}
	}
	s.cache.Invalidate(ctx, c.Key)
	return nil
}
