package dashboard

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/academy-stats/internal/pubsub"
)

func (s *Service) Positions() []string {
	return s.catalog.Positions()
}

func (s *Service) Stats(position string) ([]string, error) {
	return s.catalog.Stats(position)
}

// AddPosition adds an empty position to the catalog.
func (s *Service) AddPosition(name string) error {
	return s.mutateCatalog("add-position", name, "", s.catalog.AddPosition(name))
}

// RemovePosition drops a position. Records stored under it stay readable and
// resolve to the first catalog position.
func (s *Service) RemovePosition(name string) error {
	return s.mutateCatalog("remove-position", name, "", s.catalog.RemovePosition(name))
}

func (s *Service) AddStat(position, stat string) error {
	return s.mutateCatalog("add-stat", position, stat, s.catalog.AddStat(position, stat))
}

func (s *Service) RemoveStat(position, stat string) error {
	return s.mutateCatalog("remove-stat", position, stat, s.catalog.RemoveStat(position, stat))
}

func (s *Service) mutateCatalog(action, position, stat string, err error) error {
	if err != nil {
		return err
	}
	s.metrics.IncCatalogMutations()
	event := CatalogEvent{Action: action, Position: position, Stat: stat, At: time.Now().UTC()}
	if err := s.pubsub.SendMessage(pubsub.EventCatalogChange, event); err != nil {
		log.Error("Failed to publish catalog event", "error", err, "action", action)
		return nil
	}
	s.metrics.IncEventsPublished()
	return nil
}
