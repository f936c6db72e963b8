package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/muzz-matching/internal/db"
)

// PreferenceRepository stores one Preference row per user.
type PreferenceRepository struct {
	db *gorm.DB
}

func NewPreferenceRepository(database *gorm.DB) *PreferenceRepository {
	return &PreferenceRepository{db: database}
}

// Get returns the user's preferences or nil when none were ever written.
func (r *PreferenceRepository) Get(ctx context.Context, userID string) (*db.Preference, error) {
	var p db.Preference
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Upsert creates the row on first write and replaces every field afterwards.
func (r *PreferenceRepository) Upsert(ctx context.Context, userID string, f db.Filters) (*db.Preference, error) {
	row := db.Preference{ID: uuid.NewString(), UserID: userID}
	row.Apply(f)

	err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"age_min", "age_max", "height_min", "height_max",
				"max_distance_km", "min_religiousness", "willing_to_relocate",
				"countries", "cities", "sects", "education", "marital_statuses",
				"smoking", "children_stances", "origins", "updated_at",
			}),
		}).
		Create(&row).Error
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, userID)
}
