package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/muzz-matching/internal/db"
)

// SwipeRepository provides data access methods for the Swipe model.
// It encapsulates all queries related to left/right decisions between users.
type SwipeRepository struct {
	db *gorm.DB
}

// NewSwipeRepository creates a new repository bound to the given DB connection.
func NewSwipeRepository(database *gorm.DB) *SwipeRepository {
	return &SwipeRepository{db: database}
}

// Upsert inserts or updates the decision made by from -> to and returns the
// stored row.
//
// Behavior:
//   - If the (from_user_id, to_user_id) pair exists, direction, super-like and
//     updated_at are overwritten; the row id is kept.
//   - Otherwise a new row is inserted.
//   - The unique pair index makes concurrent upserts converge on one row.
//
// Example:
//
//	repo.Upsert(ctx, a, b, db.DirectionRight, false) // a liked b
func (r *SwipeRepository) Upsert(
	ctx context.Context,
	fromID, toID, direction string,
	superLike bool,
) (*db.Swipe, error) {
	swipe := db.Swipe{
		ID:          uuid.NewString(),
		FromUserID:  fromID,
		ToUserID:    toID,
		Direction:   direction,
		IsSuperLike: superLike,
	}
	err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "from_user_id"}, {Name: "to_user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"direction", "is_super_like", "updated_at"}),
		}).
		Create(&swipe).Error
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, fromID, toID)
}

// Get returns the swipe from -> to, or nil when there is none.
func (r *SwipeRepository) Get(ctx context.Context, fromID, toID string) (*db.Swipe, error) {
	var s db.Swipe
	err := r.db.WithContext(ctx).
		Where("from_user_id = ? AND to_user_id = ?", fromID, toID).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// HasLiked checks whether from has right-swiped to.
//
// Used for the reciprocal check when recording a swipe and for the
// swipe-back eligibility exception.
func (r *SwipeRepository) HasLiked(ctx context.Context, fromID, toID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Swipe{}).
		Where("from_user_id = ? AND to_user_id = ? AND direction = ?", fromID, toID, db.DirectionRight).
		Count(&count).Error
	return count > 0, err
}

// From returns every swipe authored by userID, in either direction.
func (r *SwipeRepository) From(ctx context.Context, userID string) ([]db.Swipe, error) {
	var swipes []db.Swipe
	err := r.db.WithContext(ctx).Where("from_user_id = ?", userID).Find(&swipes).Error
	return swipes, err
}

// LatestFrom returns the most recent swipe authored by userID, nil if none.
// A re-swipe counts as recent since it bumps updated_at.
func (r *SwipeRepository) LatestFrom(ctx context.Context, userID string) (*db.Swipe, error) {
	var s db.Swipe
	err := r.db.WithContext(ctx).
		Where("from_user_id = ?", userID).
		Order("updated_at DESC").
		Order("created_at DESC").
		Order("id DESC").
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// LikersOf returns right-swipes directed at userID, newest first.
func (r *SwipeRepository) LikersOf(ctx context.Context, userID string) ([]db.Swipe, error) {
	var swipes []db.Swipe
	err := r.db.WithContext(ctx).
		Where("to_user_id = ? AND direction = ?", userID, db.DirectionRight).
		Order("updated_at DESC").
		Order("from_user_id DESC").
		Find(&swipes).Error
	return swipes, err
}

// Delete removes one swipe by id.
func (r *SwipeRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&db.Swipe{}).Error
}
