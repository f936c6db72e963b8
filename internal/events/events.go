// Package events carries match lifecycle events from the swipe path to the
// chat collaborator over a Redis stream.
//
// The swipe path only appends to the stream after its transaction commits.
// A Consumer in the server process reads the stream through a consumer group
// and applies each event at most once per match id.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Type string

const (
	TypeMatchCreated Type = "match_created"
	TypeMatchDeleted Type = "match_deleted"
)

// Event is the stream payload. UserA/UserB are set for TypeMatchCreated only.
type Event struct {
	Type    Type      `json:"type"`
	MatchID string    `json:"match_id"`
	UserA   string    `json:"user_a,omitempty"`
	UserB   string    `json:"user_b,omitempty"`
	At      time.Time `json:"at"`
}

func MatchCreated(matchID, userA, userB string) Event {
	return Event{Type: TypeMatchCreated, MatchID: matchID, UserA: userA, UserB: userB, At: time.Now().UTC()}
}

func MatchDeleted(matchID string) Event {
	return Event{Type: TypeMatchDeleted, MatchID: matchID, At: time.Now().UTC()}
}

// Publisher emits match events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// StreamPublisher appends events to a Redis stream.
type StreamPublisher struct {
	client redis.Cmdable
	stream string
}

func NewStreamPublisher(client redis.Cmdable, stream string) *StreamPublisher {
	return &StreamPublisher{client: client, stream: stream}
}

// Publish appends e as {type, payload} where payload is the JSON event.
func (p *StreamPublisher) Publish(ctx context.Context, e Event) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", e.Type, err)
	}
	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{"type": string(e.Type), "payload": string(raw)},
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", p.stream, err)
	}
	return nil
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
