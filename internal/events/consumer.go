package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oggyb/muzz-matching/internal/cache"
	"github.com/oggyb/muzz-matching/internal/chat"
	"github.com/oggyb/muzz-matching/internal/config"
)

// ClaimTTL bounds how long an applied event id is remembered for dedupe.
const ClaimTTL = 7 * 24 * time.Hour

const readBatch = 50

var errPoison = errors.New("undecodable event")

// Consumer applies match events to a chat.Transport.
//
// Behavior:
//   - Each event is guarded by a SETNX claim keyed on its type and match id,
//     so redelivered or duplicated events reach the transport once.
//   - A transport failure releases the claim and leaves the message pending;
//     Run retries pending messages on every tick.
//   - Undecodable messages are acknowledged and dropped.
type Consumer struct {
	client    *redis.Client
	claims    *cache.RedisCache
	transport chat.Transport
	log       *slog.Logger

	stream string
	group  string
	name   string
	poll   time.Duration
}

func NewConsumer(rc *cache.RedisCache, transport chat.Transport, cfg *config.Config, log *slog.Logger) *Consumer {
	poll := cfg.Events.PollInterval
	if poll <= 0 {
		poll = 2 * time.Second
	}
	return &Consumer{
		client:    rc.Client,
		claims:    rc,
		transport: transport,
		log:       log,
		stream:    cfg.Events.Stream,
		group:     cfg.Events.Group,
		name:      cfg.Events.Consumer,
		poll:      poll,
	}
}

// Setup creates the stream and consumer group if they do not exist yet.
func (c *Consumer) Setup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.stream, c.group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("create group %s on %s: %w", c.group, c.stream, err)
	}
	return nil
}

// Run polls the stream until ctx is done.
func (c *Consumer) Run(ctx context.Context) error {
	if err := c.Setup(ctx); err != nil {
		return err
	}
	c.log.Info("match event consumer started", "stream", c.stream, "group", c.group, "consumer", c.name)

	ticker := time.NewTicker(c.poll)
	defer ticker.Stop()
	for {
		if _, err := c.RetryPending(ctx); err != nil && ctx.Err() == nil {
			c.log.Warn("retry pending match events failed", "err", err)
		}
		if _, err := c.Drain(ctx); err != nil && ctx.Err() == nil {
			c.log.Warn("read match events failed", "err", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Drain applies every new message and returns how many were acknowledged.
func (c *Consumer) Drain(ctx context.Context) (int, error) {
	total := 0
	for {
		acked, read, err := c.readOnce(ctx, ">")
		total += acked
		if err != nil || read == 0 {
			return total, err
		}
	}
}

// RetryPending makes one pass over messages delivered to this consumer but
// not yet acknowledged.
func (c *Consumer) RetryPending(ctx context.Context) (int, error) {
	acked, _, err := c.readOnce(ctx, "0")
	return acked, err
}

func (c *Consumer) readOnce(ctx context.Context, from string) (acked, read int, err error) {
	res, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.group,
		Consumer: c.name,
		Streams:  []string{c.stream, from},
		Count:    readBatch,
		Block:    -1,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, err
	}

	for _, s := range res {
		for _, msg := range s.Messages {
			read++
			if err := c.handle(ctx, msg); err != nil {
				if !errors.Is(err, errPoison) {
					c.log.Warn("match event not applied", "id", msg.ID, "err", err)
					continue
				}
				c.log.Warn("dropping match event", "id", msg.ID, "err", err)
			}
			if err := c.client.XAck(ctx, c.stream, c.group, msg.ID).Err(); err != nil {
				return acked, read, err
			}
			acked++
		}
	}
	return acked, read, nil
}

func (c *Consumer) handle(ctx context.Context, msg redis.XMessage) error {
	raw, _ := msg.Values["payload"].(string)
	var e Event
	if err := json.Unmarshal([]byte(raw), &e); err != nil || e.MatchID == "" {
		return errPoison
	}

	var key string
	switch e.Type {
	case TypeMatchCreated:
		key = "chat:bootstrap:" + e.MatchID
	case TypeMatchDeleted:
		key = "chat:teardown:" + e.MatchID
	default:
		return fmt.Errorf("%w: type %q", errPoison, e.Type)
	}

	won, err := c.claims.ClaimOnce(ctx, key, ClaimTTL)
	if err != nil {
		return err
	}
	if !won {
		c.log.Debug("match event already applied", "type", e.Type, "match_id", e.MatchID)
		return nil
	}

	if e.Type == TypeMatchCreated {
		err = c.transport.OnMatchCreated(ctx, e.MatchID, e.UserA, e.UserB)
	} else {
		err = c.transport.OnMatchDeleted(ctx, e.MatchID)
	}
	if err != nil {
		_ = c.claims.Release(ctx, key)
		return err
	}
	return nil
}
