package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oggyb/muzz-matching/internal/db"
)

// AuditRepository appends guardian audit entries. It has no read path;
// compliance exports read the table directly.
type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(database *gorm.DB) *AuditRepository {
	return &AuditRepository{db: database}
}

func (r *AuditRepository) Append(ctx context.Context, matchID, senderID, action string) error {
	return r.db.WithContext(ctx).Create(&db.GuardianAuditLog{
		ID:       uuid.NewString(),
		MatchID:  matchID,
		SenderID: senderID,
		Action:   action,
	}).Error
}
