package pubsub

import (
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/mauv0809/scorekeeper/internal/club"
)

type client struct {
	client   *pubsub.Client
	teardown func()
}

// EventType represents the type of event/message sent via pubsub.
// It doubles as the topic name.
type EventType string

const (
	EventUserRegistered  EventType = "user-registered"
	EventUserDeleted     EventType = "user-deleted"
	EventMatchRegistered EventType = "match-registered"
)

// UserEvent is published when a user is registered or deleted.
type UserEvent struct {
	EventID    string    `msgpack:"event_id"`
	OccurredAt time.Time `msgpack:"occurred_at"`
	User       club.User `msgpack:"user"`
}

// MatchRegisteredEvent carries a committed match and both players' records
// as they were after the commit.
type MatchRegisteredEvent struct {
	EventID    string     `msgpack:"event_id"`
	OccurredAt time.Time  `msgpack:"occurred_at"`
	Match      club.Match `msgpack:"match"`
	User1      club.User  `msgpack:"user1"`
	User2      club.User  `msgpack:"user2"`
}
