// Package testutil wires in-memory SQLite and miniredis for package tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
	"gorm.io/gorm/clause"

	"github.com/oggyb/muzz-matching/internal/cache"
	"github.com/oggyb/muzz-matching/internal/config"
	"github.com/oggyb/muzz-matching/internal/db"
)

// DB opens an isolated in-memory SQLite database with the full schema.
// A single open connection keeps the in-memory database alive. It also runs
// transactions one at a time, so concurrency tests here cannot show races
// that need MVCC snapshots.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(tb.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(tb, err)

	sqlDB, err := gdb.DB()
	require.NoError(tb, err)
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(tb, db.Migrate(gdb))
	return gdb
}

// Redis starts a miniredis and returns a cache bound to it.
func Redis(tb testing.TB) (*cache.RedisCache, *miniredis.Miniredis) {
	tb.Helper()

	mr, err := miniredis.Run()
	require.NoError(tb, err)
	tb.Cleanup(mr.Close)

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()
	cfg.Redis.Password = ""
	cfg.Redis.DB = 0

	rc := cache.NewRedisCache(cfg)
	tb.Cleanup(func() { _ = rc.Client.Close() })
	return rc, mr
}

// NewUser builds a discoverable, adult, onboarded user of the given role.
// Pass "mother:son" / "mother:daughter" for guardians.
func NewUser(role string, opts ...func(*db.User)) db.User {
	dob := time.Now().UTC().AddDate(-25, 0, 0)
	u := db.User{
		ID:                  uuid.NewString(),
		DisplayName:         role,
		DateOfBirth:         &dob,
		MuslimAffirmed:      true,
		OnboardingCompleted: true,
		Discoverable:        true,
	}
	r, ward, ok := strings.Cut(role, ":")
	u.Role = r
	if ok {
		u.MotherFor = &ward
	}
	for _, o := range opts {
		o(&u)
	}
	return u
}

// Insert writes rows without touching associations.
func Insert(tb testing.TB, gdb *gorm.DB, rows ...any) {
	tb.Helper()
	for _, row := range rows {
		require.NoError(tb, gdb.Omit(clause.Associations).Create(row).Error)
	}
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }
