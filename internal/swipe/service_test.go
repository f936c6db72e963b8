package swipe_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/oggyb/muzz-matching/internal/cache"
	"github.com/oggyb/muzz-matching/internal/db"
	svcErr "github.com/oggyb/muzz-matching/internal/errors"
	"github.com/oggyb/muzz-matching/internal/events"
	"github.com/oggyb/muzz-matching/internal/logger"
	"github.com/oggyb/muzz-matching/internal/metrics"
	"github.com/oggyb/muzz-matching/internal/repository"
	"github.com/oggyb/muzz-matching/internal/swipe"
	"github.com/oggyb/muzz-matching/internal/testutil"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) ofType(t events.Type) []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []events.Event
	for _, e := range p.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

type fixture struct {
	gdb     *gorm.DB
	store   *repository.Store
	rc      *cache.RedisCache
	mr      *miniredis.Miniredis
	pub     *recordingPublisher
	metrics *metrics.Metrics
	svc     *swipe.Service
}

func setup(t *testing.T) *fixture {
	t.Helper()
	gdb := testutil.DB(t)
	rc, mr := testutil.Redis(t)
	f := &fixture{
		gdb:     gdb,
		store:   repository.NewStore(gdb),
		rc:      rc,
		mr:      mr,
		pub:     &recordingPublisher{},
		metrics: metrics.NewNop(),
	}
	f.svc = swipe.NewService(f.store, rc, f.pub, f.metrics, logger.Discard())
	return f
}

func (f *fixture) user(t *testing.T, role string) db.User {
	t.Helper()
	u := testutil.NewUser(role)
	testutil.Insert(t, f.gdb, &u)
	return u
}

func (f *fixture) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.gdb.Model(model).Count(&n).Error)
	return n
}

func (f *fixture) backdate(t *testing.T, swipeID string, ago time.Duration) {
	t.Helper()
	require.NoError(t, f.gdb.Model(&db.Swipe{}).
		Where("id = ?", swipeID).
		UpdateColumn("updated_at", time.Now().UTC().Add(-ago)).Error)
}

func TestRecordOverwritesInPlace(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a, b := f.user(t, "male"), f.user(t, "female")

	first, err := f.svc.Record(ctx, a.ID, b.ID, "right", true)
	require.NoError(t, err)
	second, err := f.svc.Record(ctx, a.ID, b.ID, " LEFT ", false)
	require.NoError(t, err)

	assert.Equal(t, first.Swipe.ID, second.Swipe.ID)
	assert.Equal(t, db.DirectionLeft, second.Swipe.Direction)
	assert.False(t, second.Swipe.IsSuperLike)
	assert.Nil(t, second.Match)
	assert.Equal(t, int64(1), f.count(t, &db.Swipe{}))
}

func TestMutualMatchEitherOrder(t *testing.T) {
	for name, firstIsA := range map[string]bool{"a_first": true, "b_first": false} {
		t.Run(name, func(t *testing.T) {
			f := setup(t)
			ctx := context.Background()
			a, b := f.user(t, "male"), f.user(t, "female")
			x, y := a, b
			if !firstIsA {
				x, y = b, a
			}

			out, err := f.svc.Record(ctx, x.ID, y.ID, db.DirectionRight, false)
			require.NoError(t, err)
			assert.Nil(t, out.Match)

			out, err = f.svc.Record(ctx, y.ID, x.ID, db.DirectionRight, false)
			require.NoError(t, err)
			require.NotNil(t, out.Match)
			assert.True(t, out.MatchCreated)

			lo, hi := db.CanonicalPair(a.ID, b.ID)
			assert.Equal(t, lo, out.Match.UserAID)
			assert.Equal(t, hi, out.Match.UserBID)

			// confirming again returns the same match without a new event
			again, err := f.svc.Record(ctx, y.ID, x.ID, db.DirectionRight, true)
			require.NoError(t, err)
			require.NotNil(t, again.Match)
			assert.False(t, again.MatchCreated)
			assert.Equal(t, out.Match.ID, again.Match.ID)

			assert.Equal(t, int64(1), f.count(t, &db.Match{}))
			created := f.pub.ofType(events.TypeMatchCreated)
			require.Len(t, created, 1)
			assert.Equal(t, out.Match.ID, created[0].MatchID)
			assert.Equal(t, 1.0, promtest.ToFloat64(f.metrics.MatchesCreatedTotal))
		})
	}
}

func TestConcurrentMutualSwipesCreateOneMatch(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a, b := f.user(t, "female"), f.user(t, "male")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, pair := range [][2]string{{a.ID, b.ID}, {b.ID, a.ID}} {
		wg.Add(1)
		go func(i int, from, to string) {
			defer wg.Done()
			_, errs[i] = f.svc.Record(ctx, from, to, db.DirectionRight, false)
		}(i, pair[0], pair[1])
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, int64(1), f.count(t, &db.Match{}))
	assert.Equal(t, int64(2), f.count(t, &db.Swipe{}))
	assert.Len(t, f.pub.ofType(events.TypeMatchCreated), 1)
}

func TestLeftThenRightCreatesMatch(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a, b := f.user(t, "male"), f.user(t, "female")

	_, err := f.svc.Record(ctx, a.ID, b.ID, db.DirectionRight, false)
	require.NoError(t, err)

	out, err := f.svc.Record(ctx, b.ID, a.ID, db.DirectionLeft, false)
	require.NoError(t, err)
	assert.Nil(t, out.Match)
	assert.Zero(t, f.count(t, &db.Match{}))

	out, err = f.svc.Record(ctx, b.ID, a.ID, db.DirectionRight, false)
	require.NoError(t, err)
	require.NotNil(t, out.Match)
	assert.True(t, out.MatchCreated)
	assert.Equal(t, int64(1), f.count(t, &db.Match{}))
	assert.Equal(t, int64(2), f.count(t, &db.Swipe{}))
}

func TestUndoRemovesMatchAndOwnSwipeOnly(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a, b := f.user(t, "male"), f.user(t, "female")

	_, err := f.svc.Record(ctx, b.ID, a.ID, db.DirectionRight, false)
	require.NoError(t, err)
	out, err := f.svc.Record(ctx, a.ID, b.ID, db.DirectionRight, false)
	require.NoError(t, err)
	require.True(t, out.MatchCreated)

	res, err := f.svc.Undo(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, res.MatchDeleted)
	assert.Equal(t, out.Match.ID, res.MatchID)
	assert.Equal(t, b.ID, res.Swipe.ToUserID)

	assert.Zero(t, f.count(t, &db.Match{}))
	remaining, err := f.store.Swipes.From(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, a.ID, remaining[0].ToUserID)

	deleted := f.pub.ofType(events.TypeMatchDeleted)
	require.Len(t, deleted, 1)
	assert.Equal(t, out.Match.ID, deleted[0].MatchID)

	_, err = f.svc.Undo(ctx, a.ID)
	assert.ErrorIs(t, err, svcErr.ErrNothingToUndo)
}

func TestUndoWithoutMatchRemovesOnlySwipe(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a, b, c := f.user(t, "male"), f.user(t, "female"), f.user(t, "female")

	first, err := f.svc.Record(ctx, a.ID, b.ID, db.DirectionRight, false)
	require.NoError(t, err)
	f.backdate(t, first.Swipe.ID, time.Minute)
	_, err = f.svc.Record(ctx, a.ID, c.ID, db.DirectionLeft, false)
	require.NoError(t, err)

	res, err := f.svc.Undo(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, res.MatchDeleted)
	assert.Equal(t, c.ID, res.Swipe.ToUserID)

	res, err = f.svc.Undo(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, res.MatchDeleted)
	assert.Equal(t, b.ID, res.Swipe.ToUserID)

	assert.Zero(t, f.count(t, &db.Swipe{}))
	assert.Empty(t, f.pub.ofType(events.TypeMatchDeleted))
}

func TestRecordRejections(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	man, woman, otherMan := f.user(t, "male"), f.user(t, "female"), f.user(t, "male")

	_, err := f.svc.Record(ctx, man.ID, man.ID, db.DirectionRight, false)
	assert.ErrorIs(t, err, svcErr.ErrValidation)

	_, err = f.svc.Record(ctx, man.ID, woman.ID, "up", false)
	assert.ErrorIs(t, err, svcErr.ErrValidation)

	_, err = f.svc.Record(ctx, "", woman.ID, db.DirectionRight, false)
	assert.ErrorIs(t, err, svcErr.ErrValidation)

	_, err = f.svc.Record(ctx, man.ID, uuid.NewString(), db.DirectionRight, false)
	assert.ErrorIs(t, err, svcErr.ErrNotFound)

	_, err = f.svc.Record(ctx, man.ID, otherMan.ID, db.DirectionRight, false)
	assert.ErrorIs(t, err, svcErr.ErrNotEligible)

	require.NoError(t, f.store.Blocks.Create(ctx, woman.ID, man.ID))
	_, err = f.svc.Record(ctx, man.ID, woman.ID, db.DirectionRight, false)
	assert.ErrorIs(t, err, svcErr.ErrBlocked)
	_, err = f.svc.Record(ctx, woman.ID, man.ID, db.DirectionLeft, false)
	assert.ErrorIs(t, err, svcErr.ErrBlocked)

	assert.Zero(t, f.count(t, &db.Swipe{}))
	assert.Equal(t, 2.0, promtest.ToFloat64(f.metrics.SwipeRejectionsTotal.WithLabelValues("blocked")))
}

func TestRecordGuardianWithoutWard(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	woman := f.user(t, "female")
	broken := testutil.NewUser("mother")
	testutil.Insert(t, f.gdb, &broken)

	_, err := f.svc.Record(ctx, broken.ID, woman.ID, db.DirectionRight, false)
	assert.ErrorIs(t, err, svcErr.ErrInvalidAccountState)

	_, err = f.svc.Record(ctx, woman.ID, broken.ID, db.DirectionRight, false)
	assert.ErrorIs(t, err, svcErr.ErrInvalidAccountState)

	// a block wins over the broken account
	require.NoError(t, f.store.Blocks.Create(ctx, woman.ID, broken.ID))
	_, err = f.svc.Record(ctx, broken.ID, woman.ID, db.DirectionRight, false)
	assert.ErrorIs(t, err, svcErr.ErrBlocked)
	_, err = f.svc.Record(ctx, woman.ID, broken.ID, db.DirectionLeft, false)
	assert.ErrorIs(t, err, svcErr.ErrBlocked)
}

func TestSwipeBackException(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a, b := f.user(t, "male"), f.user(t, "male")

	// b reached a outside the role table, e.g. before a role change
	_, err := f.store.Swipes.Upsert(ctx, b.ID, a.ID, db.DirectionRight, false)
	require.NoError(t, err)

	out, err := f.svc.Record(ctx, a.ID, b.ID, db.DirectionRight, false)
	require.NoError(t, err)
	require.NotNil(t, out.Match)
	assert.Equal(t, "male", out.Match.RoleA)
}

func TestGuardianMatchSnapshotsRoles(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	son, daughter := f.user(t, "mother:son"), f.user(t, "mother:daughter")

	_, err := f.svc.Record(ctx, son.ID, daughter.ID, db.DirectionRight, false)
	require.NoError(t, err)
	out, err := f.svc.Record(ctx, daughter.ID, son.ID, db.DirectionRight, false)
	require.NoError(t, err)
	require.NotNil(t, out.Match)

	roles := map[string]string{out.Match.UserAID: out.Match.RoleA, out.Match.UserBID: out.Match.RoleB}
	assert.Equal(t, "mother:son", roles[son.ID])
	assert.Equal(t, "mother:daughter", roles[daughter.ID])

	same := f.user(t, "mother:son")
	_, err = f.svc.Record(ctx, son.ID, same.ID, db.DirectionRight, false)
	assert.ErrorIs(t, err, svcErr.ErrNotEligible)
}

func TestPublishFailureDoesNotFailSwipe(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.pub.err = errors.New("redis down")
	a, b := f.user(t, "male"), f.user(t, "female")

	_, err := f.svc.Record(ctx, a.ID, b.ID, db.DirectionRight, false)
	require.NoError(t, err)
	out, err := f.svc.Record(ctx, b.ID, a.ID, db.DirectionRight, false)
	require.NoError(t, err)
	assert.True(t, out.MatchCreated)
	assert.Equal(t, 1.0, promtest.ToFloat64(
		f.metrics.EventPublishFailuresTotal.WithLabelValues(string(events.TypeMatchCreated))))
}

func TestMatchCreatedReachesStream(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	svc := swipe.NewService(f.store, f.rc, events.NewStreamPublisher(f.rc.Client, "match-events"), f.metrics, logger.Discard())
	a, b := f.user(t, "male"), f.user(t, "female")

	_, err := svc.Record(ctx, a.ID, b.ID, db.DirectionRight, false)
	require.NoError(t, err)
	_, err = svc.Record(ctx, b.ID, a.ID, db.DirectionRight, false)
	require.NoError(t, err)

	n, err := f.rc.Client.XLen(ctx, "match-events").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestAdmirers(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	viewer := f.user(t, "female")

	listed := f.user(t, "male")
	passed := f.user(t, "male")
	matched := f.user(t, "male")
	blocked := f.user(t, "male")
	disliker := f.user(t, "male")
	guardianForSon := f.user(t, "mother:son")
	guardianForDaughter := f.user(t, "mother:daughter")

	right := func(from, to db.User) {
		_, err := f.store.Swipes.Upsert(ctx, from.ID, to.ID, db.DirectionRight, false)
		require.NoError(t, err)
	}
	right(listed, viewer)
	right(passed, viewer)
	right(matched, viewer)
	right(blocked, viewer)
	right(guardianForSon, viewer)
	right(guardianForDaughter, viewer)
	_, err := f.store.Swipes.Upsert(ctx, disliker.ID, viewer.ID, db.DirectionLeft, false)
	require.NoError(t, err)

	_, err = f.svc.Record(ctx, viewer.ID, passed.ID, db.DirectionLeft, false)
	require.NoError(t, err)
	_, err = f.svc.Record(ctx, viewer.ID, matched.ID, db.DirectionRight, false)
	require.NoError(t, err)
	require.NoError(t, f.svc.Block(ctx, viewer.ID, blocked.ID))

	page, err := f.svc.Admirers(ctx, viewer.ID, "", 0)
	require.NoError(t, err)
	var ids []string
	for _, a := range page.Admirers {
		ids = append(ids, a.User.ID)
	}
	assert.ElementsMatch(t, []string{listed.ID, guardianForSon.ID}, ids)
	assert.Empty(t, page.NextToken)

	n, err := f.svc.CountAdmirers(ctx, viewer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestAdmirersPagination(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	viewer := f.user(t, "male")

	var want []string
	for i := 0; i < 3; i++ {
		u := f.user(t, "female")
		sw, err := f.store.Swipes.Upsert(ctx, u.ID, viewer.ID, db.DirectionRight, false)
		require.NoError(t, err)
		// newest first: i=0 is the most recent
		f.backdate(t, sw.ID, time.Duration(i+1)*time.Minute)
		want = append(want, u.ID)
	}

	page, err := f.svc.Admirers(ctx, viewer.ID, "", 2)
	require.NoError(t, err)
	require.Len(t, page.Admirers, 2)
	assert.Equal(t, want[0], page.Admirers[0].User.ID)
	assert.Equal(t, want[1], page.Admirers[1].User.ID)
	require.NotEmpty(t, page.NextToken)

	page, err = f.svc.Admirers(ctx, viewer.ID, page.NextToken, 2)
	require.NoError(t, err)
	require.Len(t, page.Admirers, 1)
	assert.Equal(t, want[2], page.Admirers[0].User.ID)
	assert.Empty(t, page.NextToken)

	_, err = f.svc.Admirers(ctx, viewer.ID, "%%%", 2)
	assert.ErrorIs(t, err, svcErr.ErrValidation)
}

func TestAdmirersPaginationWithinOneMillisecond(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	viewer := f.user(t, "male")

	base := time.Now().UTC().Truncate(time.Second)
	want := make(map[string]bool)
	for i := 0; i < 6; i++ {
		u := f.user(t, "female")
		sw, err := f.store.Swipes.Upsert(ctx, u.ID, viewer.ID, db.DirectionRight, false)
		require.NoError(t, err)
		require.NoError(t, f.gdb.Model(&db.Swipe{}).
			Where("id = ?", sw.ID).
			UpdateColumn("updated_at", base.Add(time.Duration(i)*100*time.Microsecond)).Error)
		want[u.ID] = true
	}

	listed := make(map[string]bool)
	token := ""
	for pages := 0; pages < 10; pages++ {
		page, err := f.svc.Admirers(ctx, viewer.ID, token, 1)
		require.NoError(t, err)
		for _, a := range page.Admirers {
			assert.False(t, listed[a.User.ID], "listed twice: %s", a.User.ID)
			listed[a.User.ID] = true
		}
		if page.NextToken == "" {
			break
		}
		token = page.NextToken
	}
	assert.Equal(t, want, listed)
}

func TestCountAdmirersIsCachedAndInvalidated(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	viewer := f.user(t, "male")
	first, second := f.user(t, "female"), f.user(t, "female")

	_, err := f.svc.Record(ctx, first.ID, viewer.ID, db.DirectionRight, false)
	require.NoError(t, err)

	n, err := f.svc.CountAdmirers(ctx, viewer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.True(t, f.mr.Exists(f.rc.KeyForAdmirerCount(viewer.ID)))

	// a write that bypasses the service is not seen until invalidation
	_, err = f.store.Swipes.Upsert(ctx, second.ID, viewer.ID, db.DirectionRight, false)
	require.NoError(t, err)
	n, err = f.svc.CountAdmirers(ctx, viewer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = f.svc.Record(ctx, second.ID, viewer.ID, db.DirectionRight, true)
	require.NoError(t, err)
	n, err = f.svc.CountAdmirers(ctx, viewer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestUnmatch(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a, b, outsider := f.user(t, "male"), f.user(t, "female"), f.user(t, "female")

	_, err := f.svc.Record(ctx, a.ID, b.ID, db.DirectionRight, false)
	require.NoError(t, err)
	out, err := f.svc.Record(ctx, b.ID, a.ID, db.DirectionRight, false)
	require.NoError(t, err)

	err = f.svc.Unmatch(ctx, outsider.ID, out.Match.ID)
	assert.ErrorIs(t, err, svcErr.ErrValidation)

	require.NoError(t, f.svc.Unmatch(ctx, b.ID, out.Match.ID))
	assert.Zero(t, f.count(t, &db.Match{}))
	assert.Len(t, f.pub.ofType(events.TypeMatchDeleted), 1)

	err = f.svc.Unmatch(ctx, b.ID, out.Match.ID)
	assert.ErrorIs(t, err, svcErr.ErrNotFound)
}

func TestBlockRemovesMatch(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a, b := f.user(t, "male"), f.user(t, "female")

	_, err := f.svc.Record(ctx, a.ID, b.ID, db.DirectionRight, false)
	require.NoError(t, err)
	out, err := f.svc.Record(ctx, b.ID, a.ID, db.DirectionRight, false)
	require.NoError(t, err)

	require.NoError(t, f.svc.Block(ctx, a.ID, b.ID))
	require.NoError(t, f.svc.Block(ctx, a.ID, b.ID))

	assert.Zero(t, f.count(t, &db.Match{}))
	assert.Equal(t, int64(1), f.count(t, &db.Block{}))
	deleted := f.pub.ofType(events.TypeMatchDeleted)
	require.Len(t, deleted, 1)
	assert.Equal(t, out.Match.ID, deleted[0].MatchID)

	err = f.svc.Block(ctx, a.ID, a.ID)
	assert.ErrorIs(t, err, svcErr.ErrValidation)
}
