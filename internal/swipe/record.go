package swipe

import (
	"context"
	"strconv"
	"strings"

	"github.com/oggyb/muzz-matching/internal/db"
	"github.com/oggyb/muzz-matching/internal/eligibility"
	svcErr "github.com/oggyb/muzz-matching/internal/errors"
	"github.com/oggyb/muzz-matching/internal/events"
	"github.com/oggyb/muzz-matching/internal/repository"
)

// Outcome is the result of Record. Match is set when a right swipe finds a
// reciprocal one; MatchCreated tells whether this swipe inserted it.
type Outcome struct {
	Swipe        *db.Swipe
	Match        *db.Match
	MatchCreated bool
}

// Record stores from's decision on to and creates the match when the
// decision completes a pair of right swipes.
//
// Behavior:
//   - Re-swiping overwrites direction and super-like in place.
//   - A block in either direction rejects with blocked.
//   - to must be eligible for from, unless to already right-swiped from.
//   - Concurrent reciprocal swipes converge on one match row.
//   - MatchCreated is published only by the call that inserted the match.
//
// Example:
//
//	out, err := svc.Record(ctx, a, b, db.DirectionRight, false)
func (s *Service) Record(ctx context.Context, fromID, toID, direction string, superLike bool) (*Outcome, error) {
	out, err := s.record(ctx, fromID, toID, direction, superLike)
	if err != nil {
		s.metrics.SwipeRejectionsTotal.WithLabelValues(string(svcErr.KindOf(err))).Inc()
		s.log.Debug("swipe rejected", "from", fromID, "to", toID, "direction", direction, "err", err)
		return nil, err
	}

	s.metrics.SwipesTotal.WithLabelValues(out.Swipe.Direction, strconv.FormatBool(out.Swipe.IsSuperLike)).Inc()
	// to's admirer list changes on a right swipe; from's changes because to
	// is now swiped by from.
	s.invalidate(ctx, fromID, toID)

	if out.MatchCreated {
		s.metrics.MatchesCreatedTotal.Inc()
		s.log.Info("match created", "match_id", out.Match.ID, "user_a", out.Match.UserAID, "user_b", out.Match.UserBID)
		s.publish(ctx, events.MatchCreated(out.Match.ID, out.Match.UserAID, out.Match.UserBID))
	}
	return out, nil
}

func (s *Service) record(ctx context.Context, fromID, toID, direction string, superLike bool) (*Outcome, error) {
	if err := requireIDs(fromID, toID); err != nil {
		return nil, err
	}
	direction = strings.ToLower(strings.TrimSpace(direction))
	if direction != db.DirectionLeft && direction != db.DirectionRight {
		return nil, svcErr.Validation("direction must be left or right")
	}
	if fromID == toID {
		return nil, svcErr.Validation("cannot swipe on yourself")
	}

	from, to, err := s.loadPair(ctx, fromID, toID)
	if err != nil {
		return nil, err
	}

	blocked, err := s.store.Blocks.Between(ctx, fromID, toID)
	if err != nil {
		return nil, svcErr.Classify(err)
	}
	if blocked {
		return nil, svcErr.Blocked("users have blocked each other")
	}

	fromRole, err := roleOf(from)
	if err != nil {
		return nil, err
	}
	toRole, err := roleOf(to)
	if err != nil {
		return nil, err
	}

	likedBack, err := s.store.Swipes.HasLiked(ctx, toID, fromID)
	if err != nil {
		return nil, svcErr.Classify(err)
	}
	if !eligibility.Admits(fromRole, toRole) && !likedBack {
		return nil, svcErr.NotEligible(fromRole.String() + " cannot swipe on " + toRole.String())
	}

	out := &Outcome{}
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		// Serializes reciprocal swipes on the pair so the later one sees
		// the earlier one's row.
		if err := tx.Users.LockPair(ctx, fromID, toID); err != nil {
			return err
		}
		sw, err := tx.Swipes.Upsert(ctx, fromID, toID, direction, superLike)
		if err != nil {
			return err
		}
		out.Swipe = sw
		if direction != db.DirectionRight {
			return nil
		}

		reciprocal, err := tx.Swipes.HasLiked(ctx, toID, fromID)
		if err != nil || !reciprocal {
			return err
		}
		out.Match, out.MatchCreated, err = tx.Matches.Upsert(ctx, fromID, toID, fromRole.String(), toRole.String())
		return err
	})
	if err != nil {
		return nil, svcErr.Classify(err)
	}

	if direction == db.DirectionRight && out.Match == nil {
		if err := s.settleMatch(ctx, out, fromID, toID, fromRole, toRole); err != nil {
			return nil, svcErr.Classify(err)
		}
	}
	return out, nil
}

// settleMatch re-checks a right swipe that found no reciprocal inside its
// transaction. Reading after commit, at least one of two concurrent
// reciprocal swipes sees both rows; the match upsert keeps it to one row.
func (s *Service) settleMatch(ctx context.Context, out *Outcome, fromID, toID string, fromRole, toRole eligibility.Role) error {
	reciprocal, err := s.store.Swipes.HasLiked(ctx, toID, fromID)
	if err != nil || !reciprocal {
		return err
	}
	// a concurrent re-swipe may have turned ours left
	own, err := s.store.Swipes.HasLiked(ctx, fromID, toID)
	if err != nil || !own {
		return err
	}
	out.Match, out.MatchCreated, err = s.store.Matches.Upsert(ctx, fromID, toID, fromRole.String(), toRole.String())
	if err == nil && out.MatchCreated {
		s.log.Warn("match settled after commit", "from", fromID, "to", toID)
	}
	return err
}
