package dashboard

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/academy-stats/internal/catalog"
	"github.com/mauv0809/academy-stats/internal/metrics"
	"github.com/mauv0809/academy-stats/internal/notifier"
	"github.com/mauv0809/academy-stats/internal/pubsub"
	"github.com/mauv0809/academy-stats/internal/records"
	"github.com/mauv0809/academy-stats/internal/summary"
)

// New creates a new Service.
func New(cat *catalog.Service, store *records.Store, teams records.Teams, metrics metrics.Metrics, notifier notifier.Notifier, pubsub pubsub.PubSubClient) *Service {
	return &Service{
		catalog:  cat,
		store:    store,
		teams:    teams,
		metrics:  metrics,
		notifier: notifier,
		pubsub:   pubsub,
	}
}

// Key validates a player name and optional team into a storage key.
func (s *Service) Key(player, team string) (records.Key, error) {
	return s.teams.Key(player, team)
}

func (s *Service) Teams() []string {
	return s.teams.Names()
}

// Catalog returns a read-only snapshot of the position catalog.
func (s *Service) Catalog() catalog.Catalog {
	return s.catalog.Snapshot()
}

// PlayerView loads the collection for key, or synthesizes an empty one
// seeded with the stats of the selected position. An empty position selects
// the position of the player's most recent record.
func (s *Service) PlayerView(ctx context.Context, key records.Key, position string, recent int) (*PlayerView, error) {
	cat := s.catalog.Snapshot()
	c, found, err := s.store.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	if position == "" && found {
		position = c.LastPosition()
	}
	resolved, stats := cat.Resolve(position)
	if !found {
		c = records.NewCollection(key, stats)
	}
	if position != "" && resolved != position {
		log.Debug("Unknown position, using fallback", "requested", position, "resolved", resolved)
	}

	return &PlayerView{
		Found:   found,
		Stats:   stats,
		Columns: c.Columns,
		Card:    summary.Summarize(c, cat, resolved, recent),
		Records: c.Records,
	}, nil
}

// Matches returns the stored collection for key, or an empty one.
func (s *Service) Matches(ctx context.Context, key records.Key) (*records.Collection, error) {
	c, found, err := s.store.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return records.NewCollection(key, nil), nil
	}
	return c, nil
}

// AddMatch appends rec to the player's collection. The record's position is
// resolved against the catalog, falling back to the first entry. With dryRun
// the record is only validated.
func (s *Service) AddMatch(ctx context.Context, key records.Key, rec records.MatchRecord, dryRun bool) (*records.Collection, error) {
	cat := s.catalog.Snapshot()
	position, stats := cat.Resolve(rec.Position)
	rec.Position = position

	c, found, err := s.store.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	if !found {
		c = records.NewCollection(key, stats)
	}

	if dryRun {
		if err := records.Validate(rec); err != nil {
			s.metrics.IncValidationFailures()
			return nil, err
		}
		log.Info("[Dry Run] Would append match", "key", key.ID(), "opponent", rec.Opponent)
		return c, nil
	}

	if err := s.store.Append(ctx, c, rec); err != nil {
		return nil, err
	}
	index := c.Len() - 1
	s.publish(pubsub.EventMatchRecorded, key, index, &c.Records[index])

	card := summary.Summarize(c, cat, position, summary.DefaultRecent)
	if err := s.notifier.SendMatchRecorded(card, c.Records[index], dryRun); err != nil {
		log.Error("Failed to notify coaches", "error", err, "key", key.ID())
	}
	return c, nil
}

// EditMatch overwrites the record at index. An empty position keeps the
// position already stored on the record.
func (s *Service) EditMatch(ctx context.Context, key records.Key, index int, rec records.MatchRecord, dryRun bool) (*records.Collection, error) {
	c, err := s.Matches(ctx, key)
	if err != nil {
		return nil, err
	}
	if rec.Position == "" && index >= 0 && index < c.Len() {
		rec.Position = c.Records[index].Position
	}
	rec.Position, _ = s.catalog.Resolve(rec.Position)

	if dryRun {
		if err := records.Validate(rec); err != nil {
			s.metrics.IncValidationFailures()
			return nil, err
		}
		if index < 0 || index >= c.Len() {
			return nil, records.ErrIndexOutOfRange
		}
		log.Info("[Dry Run] Would update match", "key", key.ID(), "index", index)
		return c, nil
	}

	if err := s.store.UpdateAt(ctx, c, index, rec); err != nil {
		return nil, err
	}
	s.publish(pubsub.EventMatchUpdated, key, index, &c.Records[index])
	return c, nil
}

// DeleteMatch removes the record at index.
func (s *Service) DeleteMatch(ctx context.Context, key records.Key, index int, dryRun bool) (*records.Collection, error) {
	c, err := s.Matches(ctx, key)
	if err != nil {
		return nil, err
	}
	if dryRun {
		if index < 0 || index >= c.Len() {
			return nil, records.ErrIndexOutOfRange
		}
		log.Info("[Dry Run] Would delete match", "key", key.ID(), "index", index)
		return c, nil
	}
	if err := s.store.DeleteAt(ctx, c, index); err != nil {
		return nil, err
	}
	s.publish(pubsub.EventMatchDeleted, key, index, nil)
	return c, nil
}

// Trend returns the chronological series of stat for the player.
func (s *Service) Trend(ctx context.Context, key records.Key, stat string) ([]summary.Point, error) {
	c, err := s.Matches(ctx, key)
	if err != nil {
		return nil, err
	}
	return summary.Trend(c, stat), nil
}

// Average returns the mean of stat over the records that carry it.
func (s *Service) Average(ctx context.Context, key records.Key, stat string) (float64, bool, error) {
	c, err := s.Matches(ctx, key)
	if err != nil {
		return 0, false, err
	}
	avg, ok := summary.Average(c, stat)
	return avg, ok, nil
}

// ListPlayers returns the display names of every stored player of team.
func (s *Service) ListPlayers(ctx context.Context, team string) ([]string, error) {
	team, err := s.teams.Canonical(team)
	if err != nil {
		return nil, err
	}
	keys, err := s.store.ListPlayers(ctx, team)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.Player
	}
	return names, nil
}

// CoachOverview builds a summary card per selected player. Players without
// stored records are reported with NoData instead of failing the overview.
func (s *Service) CoachOverview(ctx context.Context, players []string, team string, recent int) ([]OverviewEntry, error) {
	cat := s.catalog.Snapshot()
	entries := make([]OverviewEntry, 0, len(players))
	for _, player := range players {
		key, err := s.teams.Key(player, team)
		if errors.Is(err, records.ErrInvalidPlayer) {
			continue
		}
		if err != nil {
			return nil, err
		}
		c, found, err := s.store.Load(ctx, key)
		if err != nil {
			return nil, err
		}
		if !found {
			log.Debug("No data available", "player", key.Player, "team", key.Team)
			entries = append(entries, OverviewEntry{Player: key.Player, NoData: true})
			continue
		}
		card := summary.Summarize(c, cat, c.LastPosition(), recent)
		entries = append(entries, OverviewEntry{Player: key.Player, Card: &card})
	}
	return entries, nil
}

// PlayerSummary returns the card for key with the default number of recent
// matches, found=false when nothing is stored.
func (s *Service) PlayerSummary(ctx context.Context, key records.Key) (summary.Card, bool, error) {
	c, found, err := s.store.Load(ctx, key)
	if err != nil || !found {
		return summary.Card{}, false, err
	}
	return summary.Summarize(c, s.catalog.Snapshot(), c.LastPosition(), summary.DefaultRecent), true, nil
}

// ApplyRecordEvent handles a record event pushed by the broker, usually
// published by another instance, by dropping the cached collection it names.
func (s *Service) ApplyRecordEvent(ctx context.Context, data []byte) (RecordEvent, error) {
	var event RecordEvent
	if err := s.pubsub.ProcessMessage(data, &event); err != nil {
		return event, err
	}
	key, err := s.teams.Key(event.Player, event.Team)
	if err != nil {
		return event, err
	}
	s.store.Invalidate(ctx, key)
	log.Debug("Invalidated cached collection", "key", key.ID(), "index", event.Index)
	return event, nil
}

func (s *Service) publish(event pubsub.EventType, key records.Key, index int, rec *records.MatchRecord) {
	payload := RecordEvent{Player: key.Player, Team: key.Team, Index: index, Record: rec, At: time.Now().UTC()}
	if err := s.pubsub.SendMessage(event, payload); err != nil {
		log.Error("Failed to publish record event", "error", err, "event", event, "key", key.ID())
		return
	}
	s.metrics.IncEventsPublished()
}
