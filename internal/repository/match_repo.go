package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/muzz-matching/internal/db"
)

// MatchRepository stores canonical (user_a_id < user_b_id) match rows.
type MatchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(database *gorm.DB) *MatchRepository {
	return &MatchRepository{db: database}
}

// Upsert creates the match for the pair unless it already exists, and returns
// the stored row plus whether this call created it.
//
// The pair is canonicalized here, so callers may pass ids in any order;
// roles follow the ids they were passed with. A concurrent duplicate insert
// is a no-op instead of a constraint violation.
func (r *MatchRepository) Upsert(ctx context.Context, x, y, roleX, roleY string) (*db.Match, bool, error) {
	a, b := db.CanonicalPair(x, y)
	roleA, roleB := roleX, roleY
	if a != x {
		roleA, roleB = roleY, roleX
	}

	m := db.Match{ID: uuid.NewString(), UserAID: a, UserBID: b, RoleA: roleA, RoleB: roleB}
	res := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_a_id"}, {Name: "user_b_id"}},
			DoNothing: true,
		}).
		Create(&m)
	if res.Error != nil {
		return nil, false, res.Error
	}

	stored, err := r.GetByPair(ctx, a, b)
	if err != nil {
		return nil, false, err
	}
	if stored == nil {
		return nil, false, gorm.ErrRecordNotFound
	}
	return stored, res.RowsAffected == 1, nil
}

// GetByPair returns the match between x and y (any order), nil if none.
func (r *MatchRepository) GetByPair(ctx context.Context, x, y string) (*db.Match, error) {
	a, b := db.CanonicalPair(x, y)
	return r.first(ctx, "user_a_id = ? AND user_b_id = ?", a, b)
}

// Get returns the match by id, nil if none.
func (r *MatchRepository) Get(ctx context.Context, id string) (*db.Match, error) {
	return r.first(ctx, "id = ?", id)
}

// PartnersOf returns the ids matched with userID.
func (r *MatchRepository) PartnersOf(ctx context.Context, userID string) ([]string, error) {
	var matches []db.Match
	err := r.db.WithContext(ctx).
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Find(&matches).Error
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Other(userID))
	}
	return out, nil
}

// Delete removes the match for the pair (any order). It reports whether a row
// was deleted.
func (r *MatchRepository) Delete(ctx context.Context, x, y string) (bool, error) {
	a, b := db.CanonicalPair(x, y)
	res := r.db.WithContext(ctx).
		Where("user_a_id = ? AND user_b_id = ?", a, b).
		Delete(&db.Match{})
	return res.RowsAffected > 0, res.Error
}

// TouchLastMessage sets last_message_at on the match.
func (r *MatchRepository) TouchLastMessage(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&db.Match{}).
		Where("id = ?", id).
		UpdateColumn("last_message_at", at).Error
}

func (r *MatchRepository) first(ctx context.Context, query string, args ...any) (*db.Match, error) {
	var m db.Match
	err := r.db.WithContext(ctx).Where(query, args...).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
