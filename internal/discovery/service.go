// Package discovery builds the candidate deck shown to a viewer: it resolves
// eligible roles, filters the profile store, applies the distance bound,
// scores and paginates.
package discovery

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/oggyb/muzz-matching/internal/config"
	"github.com/oggyb/muzz-matching/internal/db"
	"github.com/oggyb/muzz-matching/internal/eligibility"
	svcErr "github.com/oggyb/muzz-matching/internal/errors"
	"github.com/oggyb/muzz-matching/internal/metrics"
	"github.com/oggyb/muzz-matching/internal/repository"
	"github.com/oggyb/muzz-matching/internal/utils/pagination"
)

// Request is one discovery page request.
type Request struct {
	ViewerID      string
	Page          int
	Limit         int
	Exclude       []string
	GuardiansOnly bool
}

// Result is one scored page. Total counts candidates after filtering,
// bounded by the pool cap.
type Result struct {
	Candidates []Candidate
	Page       int
	Limit      int
	HasMore    bool
	Total      int
}

// Service orchestrates candidate discovery.
type Service struct {
	store   *repository.Store
	metrics *metrics.Metrics
	log     *slog.Logger

	poolCap      int
	defaultLimit int
	maxLimit     int

	now func() time.Time
}

func NewService(store *repository.Store, cfg *config.Config, m *metrics.Metrics, log *slog.Logger) *Service {
	return &Service{
		store:        store,
		metrics:      m,
		log:          log,
		poolCap:      cfg.Discovery.PoolCap,
		defaultLimit: cfg.Discovery.DefaultLimit,
		maxLimit:     cfg.Discovery.MaxLimit,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// viewerState is loaded concurrently before the candidate query.
type viewerState struct {
	prefs    *db.Preference
	blocks   []db.Block
	swipes   []db.Swipe
	seen     []string
	admirers map[string]bool
}

// Discover returns one page of candidates for the viewer.
//
// Behavior:
//   - The candidate pool is capped at the most recently updated rows, so
//     results are best-effort, not exhaustive.
//   - Blocked, swiped, seen and session-excluded users never appear.
//   - A guardian without mother_for fails with invalid_account_state; any
//     other unrecognized role simply gets no candidates.
//   - Every returned candidate is marked seen for the viewer, so the next
//     request continues past it. Page selects a window of what remains.
//   - Failing to write seen markers is logged and does not fail the page.
func (s *Service) Discover(ctx context.Context, req Request) (*Result, error) {
	if req.ViewerID == "" {
		return nil, svcErr.Validation("viewer id is required")
	}
	page := pagination.Clamp(req.Page, req.Limit, s.defaultLimit, s.maxLimit)

	viewer, err := s.store.Users.Get(ctx, req.ViewerID)
	if err != nil {
		return nil, notFoundOr(err, "viewer not found")
	}

	role, err := eligibility.ParsePtr(viewer.Role, viewer.MotherFor)
	if errors.Is(err, eligibility.ErrMissingWard) {
		return nil, svcErr.InvalidAccountState("guardian account is missing mother_for")
	}
	if err != nil {
		s.log.Warn("viewer has unrecognized role", "viewer", viewer.ID, "role", viewer.Role)
	}

	mode := "all"
	if req.GuardiansOnly && role.IsGuardian() {
		mode = "guardians"
	}
	s.metrics.DiscoveryRequestsTotal.WithLabelValues(mode).Inc()

	st, err := s.loadViewerState(ctx, viewer.ID)
	if err != nil {
		return nil, svcErr.Classify(err)
	}

	now := s.now()
	q := Query{
		ViewerID:      viewer.ID,
		ViewerRole:    role,
		Filters:       st.prefs.Filters(),
		GuardiansOnly: req.GuardiansOnly,
		Exclude:       exclusions(viewer.ID, st, req.Exclude),
		Now:           now,
	}

	users, err := s.store.Users.FindCandidates(ctx, s.poolCap, q.Predicates()...)
	if err != nil {
		return nil, svcErr.Classify(err)
	}

	candidates := filterByDistance(viewer, q.Filters.MaxDistanceKm, users)

	ids := make([]string, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.User.ID)
	}
	photos, err := s.store.Users.PhotoCounts(ctx, ids)
	if err != nil {
		return nil, svcErr.Classify(err)
	}

	for i := range candidates {
		c := &candidates[i]
		c.PhotoCount = photos[c.User.ID]
		c.LikedViewer = st.admirers[c.User.ID]
		c.Score = Score(*c, now)
	}
	Rank(candidates)

	total := len(candidates)
	s.metrics.DiscoveryCandidates.Observe(float64(total))
	start, end, hasMore := page.Window(total)

	s.log.Debug("discovery page built",
		"viewer", viewer.ID, "role", role.String(), "pool", len(users),
		"total", total, "page", page.Page, "limit", page.Limit)

	shown := candidates[start:end]
	s.markShown(ctx, viewer.ID, shown)

	return &Result{
		Candidates: shown,
		Page:       page.Page,
		Limit:      page.Limit,
		HasMore:    hasMore,
		Total:      total,
	}, nil
}

func (s *Service) markShown(ctx context.Context, viewerID string, shown []Candidate) {
	ids := make([]string, 0, len(shown))
	for _, c := range shown {
		ids = append(ids, c.User.ID)
	}
	if err := s.store.Seen.UpsertMany(ctx, viewerID, ids); err != nil {
		s.log.Warn("failed to mark shown candidates seen", "viewer", viewerID, "count", len(ids), "err", err)
	}
}

func (s *Service) loadViewerState(ctx context.Context, viewerID string) (*viewerState, error) {
	st := &viewerState{}
	var likers []db.Swipe

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		st.prefs, err = s.store.Preferences.Get(gctx, viewerID)
		return err
	})
	g.Go(func() (err error) {
		st.blocks, err = s.store.Blocks.Involving(gctx, viewerID)
		return err
	})
	g.Go(func() (err error) {
		st.swipes, err = s.store.Swipes.From(gctx, viewerID)
		return err
	})
	g.Go(func() (err error) {
		st.seen, err = s.store.Seen.IDs(gctx, viewerID)
		return err
	})
	g.Go(func() (err error) {
		likers, err = s.store.Swipes.LikersOf(gctx, viewerID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	st.admirers = make(map[string]bool, len(likers))
	for _, l := range likers {
		st.admirers[l.FromUserID] = true
	}
	return st, nil
}

func exclusions(viewerID string, st *viewerState, session []string) []string {
	out := make([]string, 0, len(st.blocks)+len(st.swipes)+len(st.seen)+len(session))
	for _, b := range st.blocks {
		out = append(out, b.Other(viewerID))
	}
	for _, sw := range st.swipes {
		out = append(out, sw.ToUserID)
	}
	out = append(out, st.seen...)
	return append(out, session...)
}

// filterByDistance drops candidates farther than maxKm from the viewer.
// Without a viewer location or a distance preference nothing is dropped;
// candidates without a usable location always pass.
func filterByDistance(viewer *db.User, maxKm *float64, users []db.User) []Candidate {
	origin, hasOrigin := PointOf(viewer.Latitude, viewer.Longitude)
	out := make([]Candidate, 0, len(users))
	for _, u := range users {
		c := Candidate{User: u}
		if p, ok := PointOf(u.Latitude, u.Longitude); ok && hasOrigin {
			d := Haversine(origin, p)
			if maxKm != nil && d > *maxKm {
				continue
			}
			c.DistanceKm = &d
		}
		out = append(out, c)
	}
	return out
}

// MarkSeen records that viewer has seen seenID; later discovery requests
// exclude it until the marker is removed.
func (s *Service) MarkSeen(ctx context.Context, viewerID, seenID string) error {
	if viewerID == "" || seenID == "" {
		return svcErr.Validation("viewer id and seen user id are required")
	}
	if viewerID == seenID {
		return svcErr.Validation("cannot mark yourself as seen")
	}
	users, err := s.store.Users.GetMany(ctx, []string{viewerID, seenID})
	if err != nil {
		return svcErr.Classify(err)
	}
	if _, ok := users[viewerID]; !ok {
		return svcErr.NotFound("viewer not found")
	}
	if _, ok := users[seenID]; !ok {
		return svcErr.NotFound("seen user not found")
	}
	if err := s.store.Seen.Upsert(ctx, viewerID, seenID); err != nil {
		return svcErr.Classify(err)
	}
	return nil
}

// UpdatePreferences replaces the viewer's discovery preferences, creating
// the row on first use.
func (s *Service) UpdatePreferences(ctx context.Context, viewerID string, f db.Filters) (*db.Preference, error) {
	if viewerID == "" {
		return nil, svcErr.Validation("viewer id is required")
	}
	if err := validateFilters(f); err != nil {
		return nil, err
	}
	if _, err := s.store.Users.Get(ctx, viewerID); err != nil {
		return nil, notFoundOr(err, "viewer not found")
	}
	p, err := s.store.Preferences.Upsert(ctx, viewerID, f)
	if err != nil {
		return nil, svcErr.Classify(err)
	}
	return p, nil
}

func validateFilters(f db.Filters) error {
	switch {
	case f.AgeMin != nil && *f.AgeMin < MinAge:
		return svcErr.Validation("age_min must be at least 18")
	case f.AgeMin != nil && f.AgeMax != nil && *f.AgeMin > *f.AgeMax:
		return svcErr.Validation("age_min must not exceed age_max")
	case f.HeightMin != nil && f.HeightMax != nil && *f.HeightMin > *f.HeightMax:
		return svcErr.Validation("height_min must not exceed height_max")
	case f.MaxDistanceKm != nil && *f.MaxDistanceKm <= 0:
		return svcErr.Validation("max_distance_km must be positive")
	case f.MinReligiousness != nil && (*f.MinReligiousness < 1 || *f.MinReligiousness > 5):
		return svcErr.Validation("min_religiousness must be between 1 and 5")
	}
	return nil
}

func notFoundOr(err error, msg string) error {
	if svcErr.KindOf(err) == svcErr.KindNotFound {
		return svcErr.Wrap(svcErr.KindNotFound, msg, err)
	}
	return svcErr.Classify(err)
}
