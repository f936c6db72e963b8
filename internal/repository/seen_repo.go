package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/muzz-matching/internal/db"
)

// SeenRepository stores the durable per-viewer discovery exclusions.
type SeenRepository struct {
	db *gorm.DB
}

func NewSeenRepository(database *gorm.DB) *SeenRepository {
	return &SeenRepository{db: database}
}

// Upsert marks seenID as seen by viewerID, refreshing the timestamp if the
// pair already exists.
func (r *SeenRepository) Upsert(ctx context.Context, viewerID, seenID string) error {
	return r.UpsertMany(ctx, viewerID, []string{seenID})
}

// UpsertMany marks every id in seenIDs as seen by viewerID in one statement.
func (r *SeenRepository) UpsertMany(ctx context.Context, viewerID string, seenIDs []string) error {
	if len(seenIDs) == 0 {
		return nil
	}
	now := time.Now().UTC()
	rows := make([]db.DiscoverySeen, 0, len(seenIDs))
	for _, id := range seenIDs {
		rows = append(rows, db.DiscoverySeen{ViewerID: viewerID, SeenUserID: id, CreatedAt: now})
	}
	return r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "viewer_id"}, {Name: "seen_user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"created_at"}),
		}).
		Create(&rows).Error
}

// IDs returns every user id viewerID has marked seen.
func (r *SeenRepository) IDs(ctx context.Context, viewerID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&db.DiscoverySeen{}).
		Where("viewer_id = ?", viewerID).
		Pluck("seen_user_id", &ids).Error
	return ids, err
}
