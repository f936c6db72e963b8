package swipe

import (
	"context"

	"github.com/oggyb/muzz-matching/internal/db"
	svcErr "github.com/oggyb/muzz-matching/internal/errors"
	"github.com/oggyb/muzz-matching/internal/events"
	"github.com/oggyb/muzz-matching/internal/repository"
)

// Unmatch deletes a match on behalf of one of its members. Swipes are kept,
// so the pair stays out of each other's discovery.
func (s *Service) Unmatch(ctx context.Context, userID, matchID string) error {
	if userID == "" || matchID == "" {
		return svcErr.Validation("user id and match id are required")
	}

	var m *db.Match
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		m, err = tx.Matches.Get(ctx, matchID)
		if err != nil {
			return err
		}
		if m == nil {
			return svcErr.NotFound("match not found")
		}
		if !m.HasUser(userID) {
			return svcErr.Validation("user is not part of this match")
		}
		_, err = tx.Matches.Delete(ctx, m.UserAID, m.UserBID)
		return err
	})
	if err != nil {
		return svcErr.Classify(err)
	}

	s.metrics.MatchesDeletedTotal.WithLabelValues("unmatch").Inc()
	s.publish(ctx, events.MatchDeleted(m.ID))
	s.invalidate(ctx, m.UserAID, m.UserBID)
	return nil
}

// Block hides blockedID from blockerID and vice versa, and removes any match
// between them. Blocking twice is a no-op.
func (s *Service) Block(ctx context.Context, blockerID, blockedID string) error {
	if err := requireIDs(blockerID, blockedID); err != nil {
		return err
	}
	if blockerID == blockedID {
		return svcErr.Validation("cannot block yourself")
	}
	if _, _, err := s.loadPair(ctx, blockerID, blockedID); err != nil {
		return err
	}

	var removed *db.Match
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Blocks.Create(ctx, blockerID, blockedID); err != nil {
			return err
		}
		m, err := tx.Matches.GetByPair(ctx, blockerID, blockedID)
		if err != nil || m == nil {
			return err
		}
		if _, err := tx.Matches.Delete(ctx, m.UserAID, m.UserBID); err != nil {
			return err
		}
		removed = m
		return nil
	})
	if err != nil {
		return svcErr.Classify(err)
	}

	s.invalidate(ctx, blockerID, blockedID)
	if removed != nil {
		s.metrics.MatchesDeletedTotal.WithLabelValues("block").Inc()
		s.publish(ctx, events.MatchDeleted(removed.ID))
	}
	s.log.Info("user blocked", "blocker", blockerID, "blocked", blockedID, "match_removed", removed != nil)
	return nil
}
