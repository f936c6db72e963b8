package swipe

import (
	"context"
	"sort"
	"time"

	"github.com/oggyb/muzz-matching/internal/db"
	"github.com/oggyb/muzz-matching/internal/eligibility"
	svcErr "github.com/oggyb/muzz-matching/internal/errors"
	"github.com/oggyb/muzz-matching/internal/utils/pagination"
)

// Admirer page sizes.
const (
	DefaultAdmirerLimit = 20
	MaxAdmirerLimit     = 100
)

// Admirer is a user who right-swiped the viewer.
type Admirer struct {
	User      db.User
	SwipedAt  time.Time
	SuperLike bool
}

type AdmirerPage struct {
	Admirers  []Admirer
	NextToken string
}

// Admirers lists users who right-swiped userID and are still actionable,
// newest first.
//
// Behavior:
//   - Excludes users already matched with userID, users userID has swiped
//     either way, and blocked pairs.
//   - An admirer is listed when either side's role table admits the other.
//   - token is the NextToken of the previous page; empty starts over.
func (s *Service) Admirers(ctx context.Context, userID, token string, limit int) (*AdmirerPage, error) {
	if err := requireIDs(userID); err != nil {
		return nil, err
	}
	cursor, err := pagination.Decode(token)
	if err != nil {
		return nil, svcErr.Validation("invalid pagination token")
	}
	limit = pagination.Clamp(0, limit, DefaultAdmirerLimit, MaxAdmirerLimit).Limit

	all, err := s.admirers(ctx, userID)
	if err != nil {
		return nil, err
	}

	page := &AdmirerPage{}
	for i, a := range all {
		if !cursor.After(a.SwipedAt, a.User.ID) {
			continue
		}
		if len(page.Admirers) == limit {
			last := page.Admirers[len(page.Admirers)-1]
			page.NextToken, err = pagination.Encode(pagination.CursorAt(last.SwipedAt, last.User.ID))
			if err != nil {
				return nil, svcErr.Wrap(svcErr.KindInternal, "encode pagination token", err)
			}
			break
		}
		page.Admirers = append(page.Admirers, all[i])
	}
	return page, nil
}

// CountAdmirers returns len(Admirers) without paging, cached per user.
// Cache failures fall back to the store.
func (s *Service) CountAdmirers(ctx context.Context, userID string) (int64, error) {
	if err := requireIDs(userID); err != nil {
		return 0, err
	}
	if s.counts != nil {
		n, ok, err := s.counts.GetAdmirerCount(ctx, userID)
		if err != nil {
			s.log.Warn("read admirer count cache failed", "user", userID, "err", err)
		} else if ok {
			return n, nil
		}
	}

	all, err := s.admirers(ctx, userID)
	if err != nil {
		return 0, err
	}
	n := int64(len(all))
	if s.counts != nil {
		if err := s.counts.SetAdmirerCount(ctx, userID, n); err != nil {
			s.log.Warn("write admirer count cache failed", "user", userID, "err", err)
		}
	}
	return n, nil
}

// admirers returns every listable admirer in (swiped_at DESC, id DESC) order.
func (s *Service) admirers(ctx context.Context, userID string) ([]Admirer, error) {
	viewer, err := s.store.Users.Get(ctx, userID)
	if err != nil {
		if svcErr.KindOf(err) == svcErr.KindNotFound {
			return nil, svcErr.NotFound("user not found")
		}
		return nil, svcErr.Classify(err)
	}
	viewerRole, err := roleOf(*viewer)
	if err != nil {
		return nil, err
	}

	likes, err := s.store.Swipes.LikersOf(ctx, userID)
	if err != nil {
		return nil, svcErr.Classify(err)
	}
	if len(likes) == 0 {
		return nil, nil
	}

	hidden := make(map[string]bool)
	partners, err := s.store.Matches.PartnersOf(ctx, userID)
	if err != nil {
		return nil, svcErr.Classify(err)
	}
	for _, id := range partners {
		hidden[id] = true
	}
	own, err := s.store.Swipes.From(ctx, userID)
	if err != nil {
		return nil, svcErr.Classify(err)
	}
	for _, sw := range own {
		hidden[sw.ToUserID] = true
	}
	blocks, err := s.store.Blocks.Involving(ctx, userID)
	if err != nil {
		return nil, svcErr.Classify(err)
	}
	for _, b := range blocks {
		hidden[b.Other(userID)] = true
	}

	ids := make([]string, 0, len(likes))
	for _, l := range likes {
		if !hidden[l.FromUserID] {
			ids = append(ids, l.FromUserID)
		}
	}
	users, err := s.store.Users.GetMany(ctx, ids)
	if err != nil {
		return nil, svcErr.Classify(err)
	}

	out := make([]Admirer, 0, len(ids))
	for _, l := range likes {
		u, ok := users[l.FromUserID]
		if !ok || hidden[l.FromUserID] {
			continue
		}
		role, err := eligibility.ParsePtr(u.Role, u.MotherFor)
		if err != nil || !eligibility.AdmitsEither(viewerRole, role) {
			continue
		}
		out = append(out, Admirer{User: u, SwipedAt: l.UpdatedAt, SuperLike: l.IsSuperLike})
	}
	// the store's collation and timestamp precision may differ from the cursor's
	sort.SliceStable(out, func(i, j int) bool {
		return pagination.Newer(out[i].SwipedAt, out[i].User.ID, out[j].SwipedAt, out[j].User.ID)
	})
	return out, nil
}
