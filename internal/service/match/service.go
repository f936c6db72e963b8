package match

import (
	"context"
	"time"

	"github.com/oggyb/muzz-matching/internal/api"
	"github.com/oggyb/muzz-matching/internal/app"
	"github.com/oggyb/muzz-matching/internal/discovery"
	svcErr "github.com/oggyb/muzz-matching/internal/errors"
)

// Service implements the MatchService gRPC API.
// Every method validates the request, calls into the domain services held by
// AppContext and maps domain errors onto gRPC statuses.
type Service struct {
	appCtx *app.AppContext
	now    func() time.Time
}

// NewMatchService creates a new MatchService backed by the AppContext services.
func NewMatchService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx: appCtx,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

var _ MatchServer = (*Service)(nil)

// fail logs err at a level matching its kind and converts it to a status.
func (s *Service) fail(method string, err error) error {
	kind := svcErr.KindOf(err)
	if kind == svcErr.KindInternal {
		s.appCtx.Logger.Error(method+" failed", "err", err)
	} else {
		s.appCtx.Logger.Debug(method+" rejected", "kind", kind, "msg", svcErr.MessageOf(err))
	}
	return svcErr.Map(err)
}

// Discover returns one ranked page of candidates for the viewer.
//
// Behavior:
//   - Candidates already swiped, seen, blocked or excluded are skipped.
//   - guardians_only narrows a guardian viewer to other guardians.
//   - Ranking and paging follow the discovery service.
func (s *Service) Discover(ctx context.Context, req *api.DiscoverRequest) (*api.DiscoverResponse, error) {
	s.appCtx.Logger.Debug("Discover called", "viewer", req.ViewerID, "page", req.Page, "limit", req.Limit)

	if err := api.Validate(req); err != nil {
		return nil, s.fail("Discover", err)
	}

	res, err := s.appCtx.Discovery.Discover(ctx, discovery.Request{
		ViewerID:      req.ViewerID,
		Page:          req.Page,
		Limit:         req.Limit,
		Exclude:       req.Exclude,
		GuardiansOnly: req.GuardiansOnly,
	})
	if err != nil {
		return nil, s.fail("Discover", err)
	}

	s.appCtx.Logger.Debug("Discover result", "viewer", req.ViewerID, "count", len(res.Candidates), "has_more", res.HasMore)
	return api.DiscoverResponseOf(res, s.now()), nil
}

// MarkSeen hides seen_user_id from the viewer's future discovery pages.
func (s *Service) MarkSeen(ctx context.Context, req *api.MarkSeenRequest) (*api.OKResponse, error) {
	if err := api.Validate(req); err != nil {
		return nil, s.fail("MarkSeen", err)
	}
	if err := s.appCtx.Discovery.MarkSeen(ctx, req.ViewerID, req.SeenUserID); err != nil {
		return nil, s.fail("MarkSeen", err)
	}
	return &api.OKResponse{OK: true}, nil
}

// Swipe records a left or right swipe. A right swipe that meets a reciprocal
// right swipe creates the match in the same transaction.
//
// Example:
//
//	svc.Swipe(ctx, &api.SwipeRequest{ViewerID: "a", ToUserID: "b", Direction: "right"})
func (s *Service) Swipe(ctx context.Context, req *api.SwipeRequest) (*api.SwipeResponse, error) {
	s.appCtx.Logger.Debug(
		"Swipe called",
		"from", req.ViewerID,
		"to", req.ToUserID,
		"direction", req.Direction,
		"super_like", req.IsSuperLike,
	)

	if err := api.Validate(req); err != nil {
		return nil, s.fail("Swipe", err)
	}

	out, err := s.appCtx.Swipes.Record(ctx, req.ViewerID, req.ToUserID, req.Direction, req.IsSuperLike)
	if err != nil {
		return nil, s.fail("Swipe", err)
	}
	return api.SwipeResponseOf(out), nil
}

// UndoSwipe removes the viewer's most recent swipe and any match it produced.
func (s *Service) UndoSwipe(ctx context.Context, req *api.UndoRequest) (*api.UndoResponse, error) {
	if err := api.Validate(req); err != nil {
		return nil, s.fail("UndoSwipe", err)
	}
	res, err := s.appCtx.Swipes.Undo(ctx, req.ViewerID)
	if err != nil {
		return nil, s.fail("UndoSwipe", err)
	}
	return api.UndoResponseOf(res), nil
}

// ListLikedMe returns users who swiped right on the viewer and are still
// actionable, newest first, with cursor pagination.
func (s *Service) ListLikedMe(ctx context.Context, req *api.LikedMeRequest) (*api.LikedMeResponse, error) {
	s.appCtx.Logger.Debug("ListLikedMe called", "viewer", req.ViewerID, "token", req.PaginationToken)

	if err := api.Validate(req); err != nil {
		return nil, s.fail("ListLikedMe", err)
	}
	page, err := s.appCtx.Swipes.Admirers(ctx, req.ViewerID, req.PaginationToken, req.Limit)
	if err != nil {
		return nil, s.fail("ListLikedMe", err)
	}
	return api.LikedMeResponseOf(page, s.now()), nil
}

// CountLikedMe returns the admirer count, cache-first.
func (s *Service) CountLikedMe(ctx context.Context, req *api.CountLikedMeRequest) (*api.CountLikedMeResponse, error) {
	if err := api.Validate(req); err != nil {
		return nil, s.fail("CountLikedMe", err)
	}
	n, err := s.appCtx.Swipes.CountAdmirers(ctx, req.ViewerID)
	if err != nil {
		return nil, s.fail("CountLikedMe", err)
	}
	return &api.CountLikedMeResponse{Count: n}, nil
}

func (s *Service) Unmatch(ctx context.Context, req *api.UnmatchRequest) (*api.OKResponse, error) {
	if err := api.Validate(req); err != nil {
		return nil, s.fail("Unmatch", err)
	}
	if err := s.appCtx.Swipes.Unmatch(ctx, req.ViewerID, req.MatchID); err != nil {
		return nil, s.fail("Unmatch", err)
	}
	return &api.OKResponse{OK: true}, nil
}

func (s *Service) Block(ctx context.Context, req *api.BlockRequest) (*api.OKResponse, error) {
	if err := api.Validate(req); err != nil {
		return nil, s.fail("Block", err)
	}
	if err := s.appCtx.Swipes.Block(ctx, req.ViewerID, req.UserID); err != nil {
		return nil, s.fail("Block", err)
	}
	return &api.OKResponse{OK: true}, nil
}

// AuthorizeMessage gates a message on a match. Matches involving a guardian
// are audited, or refused when guardian messaging is disabled.
func (s *Service) AuthorizeMessage(ctx context.Context, req *api.AuthorizeMessageRequest) (*api.AuthorizeMessageResponse, error) {
	if err := api.Validate(req); err != nil {
		return nil, s.fail("AuthorizeMessage", err)
	}
	d, err := s.appCtx.Guardian.AuthorizeMessage(ctx, req.MatchID, req.ViewerID, req.Action)
	if err != nil {
		return nil, s.fail("AuthorizeMessage", err)
	}
	return &api.AuthorizeMessageResponse{
		Allowed:          true,
		GuardianInvolved: d.GuardianInvolved,
		Audited:          d.Audited,
	}, nil
}

func (s *Service) UpdatePreferences(ctx context.Context, req *api.UpdatePreferencesRequest) (*api.PreferencesResponse, error) {
	if err := api.Validate(req); err != nil {
		return nil, s.fail("UpdatePreferences", err)
	}
	row, err := s.appCtx.Discovery.UpdatePreferences(ctx, req.ViewerID, req.Preferences.Filters())
	if err != nil {
		return nil, s.fail("UpdatePreferences", err)
	}
	return &api.PreferencesResponse{Preferences: api.PreferencesOf(row)}, nil
}
