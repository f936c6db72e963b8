package events_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/muzz-matching/internal/config"
	"github.com/oggyb/muzz-matching/internal/events"
	"github.com/oggyb/muzz-matching/internal/logger"
	"github.com/oggyb/muzz-matching/internal/testutil"
)

type fakeTransport struct {
	mu       sync.Mutex
	created  []string
	deleted  []string
	failNext bool
}

func (f *fakeTransport) OnMatchCreated(_ context.Context, matchID, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext {
		f.failNext = false
		return errors.New("chat backend down")
	}
	f.created = append(f.created, matchID)
	return nil
}

func (f *fakeTransport) OnMatchDeleted(_ context.Context, matchID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, matchID)
	return nil
}

func setup(t *testing.T) (*events.StreamPublisher, *events.Consumer, *fakeTransport, *redis.Client) {
	t.Helper()
	rc, _ := testutil.Redis(t)

	cfg := config.New()
	cfg.Events.Stream = "match-events-test"
	cfg.Events.Group = "chat-sync"
	cfg.Events.Consumer = "c1"

	tr := &fakeTransport{}
	c := events.NewConsumer(rc, tr, cfg, logger.Discard())
	require.NoError(t, c.Setup(context.Background()))
	// idempotent
	require.NoError(t, c.Setup(context.Background()))

	return events.NewStreamPublisher(rc.Client, cfg.Events.Stream), c, tr, rc.Client
}

func TestConsumerAppliesEachMatchOnce(t *testing.T) {
	ctx := context.Background()
	pub, c, tr, _ := setup(t)

	require.NoError(t, pub.Publish(ctx, events.MatchCreated("m1", "a", "b")))
	require.NoError(t, pub.Publish(ctx, events.MatchCreated("m1", "a", "b")))
	require.NoError(t, pub.Publish(ctx, events.MatchCreated("m2", "c", "d")))
	require.NoError(t, pub.Publish(ctx, events.MatchDeleted("m1")))

	n, err := c.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []string{"m1", "m2"}, tr.created)
	assert.Equal(t, []string{"m1"}, tr.deleted)

	n, err = c.Drain(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestConsumerLeavesFailedEventUnacked(t *testing.T) {
	ctx := context.Background()
	pub, c, tr, _ := setup(t)
	tr.failNext = true

	require.NoError(t, pub.Publish(ctx, events.MatchCreated("m1", "a", "b")))
	n, err := c.Drain(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, tr.created)

	// claim was released, so a redelivery of the same match applies
	require.NoError(t, pub.Publish(ctx, events.MatchCreated("m1", "a", "b")))
	n, err = c.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"m1"}, tr.created)
}

func TestConsumerDropsUndecodablePayload(t *testing.T) {
	ctx := context.Background()
	_, c, tr, client := setup(t)

	require.NoError(t, client.XAdd(ctx, &redis.XAddArgs{
		Stream: "match-events-test",
		Values: map[string]any{"type": "match_created", "payload": "{not json"},
	}).Err())

	n, err := c.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Empty(t, tr.created)
}

func TestNopPublisher(t *testing.T) {
	var p events.Publisher = events.NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), events.MatchDeleted("m")))
}
