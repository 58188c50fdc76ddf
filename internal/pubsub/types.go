package pubsub

import "cloud.google.com/go/pubsub"

type client struct {
	client   *pubsub.Client
	teardown func()
}

// logOnly is used when no GCP project is configured.
type logOnly struct{}

// EventType represents the type of event/message sent via pubsub.
type EventType string

const (
	EventMatchRecorded EventType = "match-recorded"
	EventMatchUpdated  EventType = "match-updated"
	EventMatchDeleted  EventType = "match-deleted"
	EventCatalogChange EventType = "catalog-changed"
)
