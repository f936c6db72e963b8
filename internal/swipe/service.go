// Package swipe records swipe decisions and drives the match lifecycle:
// reciprocal right swipes create a match, undo and unmatch remove it, and
// blocks tear it down.
//
// Correctness under concurrency rests on the store: swipes are unique per
// (from, to) and matches per canonical pair, and both are written with upserts
// inside one transaction. Chat side effects leave through events.Publisher
// after commit and never fail the call.
package swipe

import (
	"context"
	"errors"
	"log/slog"

	"github.com/oggyb/muzz-matching/internal/db"
	"github.com/oggyb/muzz-matching/internal/eligibility"
	svcErr "github.com/oggyb/muzz-matching/internal/errors"
	"github.com/oggyb/muzz-matching/internal/events"
	"github.com/oggyb/muzz-matching/internal/metrics"
	"github.com/oggyb/muzz-matching/internal/repository"
)

// CountCache caches admirer counts. *cache.RedisCache implements it.
type CountCache interface {
	GetAdmirerCount(ctx context.Context, userID string) (int64, bool, error)
	SetAdmirerCount(ctx context.Context, userID string, n int64) error
	InvalidateAdmirerCount(ctx context.Context, userIDs ...string) error
}

// Service is the swipe recorder and match state machine.
type Service struct {
	store     *repository.Store
	counts    CountCache
	publisher events.Publisher
	metrics   *metrics.Metrics
	log       *slog.Logger
}

func NewService(
	store *repository.Store,
	counts CountCache,
	publisher events.Publisher,
	m *metrics.Metrics,
	log *slog.Logger,
) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{store: store, counts: counts, publisher: publisher, metrics: m, log: log}
}

// publish emits e after a commit. Failures are logged and counted only.
func (s *Service) publish(ctx context.Context, e events.Event) {
	if err := s.publisher.Publish(context.WithoutCancel(ctx), e); err != nil {
		s.metrics.EventPublishFailuresTotal.WithLabelValues(string(e.Type)).Inc()
		s.log.Warn("publish match event failed", "type", e.Type, "match_id", e.MatchID, "err", err)
	}
}

// invalidate drops cached admirer counts. Failures only cost freshness.
func (s *Service) invalidate(ctx context.Context, userIDs ...string) {
	if s.counts == nil {
		return
	}
	if err := s.counts.InvalidateAdmirerCount(context.WithoutCancel(ctx), userIDs...); err != nil {
		s.log.Warn("invalidate admirer count failed", "users", userIDs, "err", err)
	}
}

// loadPair loads both users, failing with not_found when either is missing.
func (s *Service) loadPair(ctx context.Context, x, y string) (ux, uy db.User, err error) {
	users, err := s.store.Users.GetMany(ctx, []string{x, y})
	if err != nil {
		return ux, uy, svcErr.Classify(err)
	}
	ux, okX := users[x]
	uy, okY := users[y]
	switch {
	case !okX:
		return ux, uy, svcErr.NotFound("user " + x + " not found")
	case !okY:
		return ux, uy, svcErr.NotFound("user " + y + " not found")
	}
	return ux, uy, nil
}

// roleOf parses the stored role. A guardian without ward is an account
// defect; any other unrecognized role is the zero Role, eligible for nothing.
func roleOf(u db.User) (eligibility.Role, error) {
	r, err := eligibility.ParsePtr(u.Role, u.MotherFor)
	if errors.Is(err, eligibility.ErrMissingWard) {
		return r, svcErr.InvalidAccountState("user " + u.ID + " is a guardian without mother_for")
	}
	return r, nil
}

func requireIDs(ids ...string) error {
	for _, id := range ids {
		if id == "" {
			return svcErr.Validation("user ids are required")
		}
	}
	return nil
}
