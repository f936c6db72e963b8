package swipe

import (
	"context"

	"github.com/oggyb/muzz-matching/internal/db"
	svcErr "github.com/oggyb/muzz-matching/internal/errors"
	"github.com/oggyb/muzz-matching/internal/events"
	"github.com/oggyb/muzz-matching/internal/repository"
)

// UndoResult describes what Undo removed.
type UndoResult struct {
	Swipe        db.Swipe
	MatchDeleted bool
	MatchID      string
}

// Undo removes the most recent swipe made by userID.
//
// If that swipe was a right swipe and the pair is matched, the match is
// deleted first. The counterpart's own swipe is never touched.
func (s *Service) Undo(ctx context.Context, userID string) (*UndoResult, error) {
	if err := requireIDs(userID); err != nil {
		return nil, err
	}

	res := &UndoResult{}
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		last, err := tx.Swipes.LatestFrom(ctx, userID)
		if err != nil {
			return err
		}
		if last == nil {
			return svcErr.NothingToUndo("no swipe to undo")
		}
		res.Swipe = *last

		if last.Direction == db.DirectionRight {
			m, err := tx.Matches.GetByPair(ctx, last.FromUserID, last.ToUserID)
			if err != nil {
				return err
			}
			if m != nil {
				if _, err := tx.Matches.Delete(ctx, m.UserAID, m.UserBID); err != nil {
					return err
				}
				res.MatchDeleted, res.MatchID = true, m.ID
			}
		}
		return tx.Swipes.Delete(ctx, last.ID)
	})
	if err != nil {
		return nil, svcErr.Classify(err)
	}

	s.invalidate(ctx, userID, res.Swipe.ToUserID)
	if res.MatchDeleted {
		s.metrics.MatchesDeletedTotal.WithLabelValues("undo").Inc()
		s.publish(ctx, events.MatchDeleted(res.MatchID))
	}
	s.log.Debug("swipe undone", "user", userID, "to", res.Swipe.ToUserID, "match_deleted", res.MatchDeleted)
	return res, nil
}
