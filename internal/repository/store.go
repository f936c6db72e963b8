package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store bundles the Profile Store repositories over one connection (or one
// transaction, inside Transaction).
type Store struct {
	db *gorm.DB

	Users       *UserRepository
	Preferences *PreferenceRepository
	Blocks      *BlockRepository
	Swipes      *SwipeRepository
	Matches     *MatchRepository
	Seen        *SeenRepository
	Audit       *AuditRepository
}

// NewStore creates a Store bound to the given DB connection.
func NewStore(database *gorm.DB) *Store {
	return &Store{
		db:          database,
		Users:       NewUserRepository(database),
		Preferences: NewPreferenceRepository(database),
		Blocks:      NewBlockRepository(database),
		Swipes:      NewSwipeRepository(database),
		Matches:     NewMatchRepository(database),
		Seen:        NewSeenRepository(database),
		Audit:       NewAuditRepository(database),
	}
}

// Transaction runs fn against a Store bound to a single transaction.
// Returning an error rolls everything back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
