package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/muzz-matching/internal/db"
	"github.com/oggyb/muzz-matching/internal/eligibility"
)

// Predicate narrows a users query. Discovery composes its constraints as
// predicates and hands them to FindCandidates in a single call.
type Predicate func(*gorm.DB) *gorm.DB

// UserRepository reads and writes profile rows.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

// Create inserts a user after normalizing its role through the eligibility
// parser, so stored role/mother_for values are always canonical.
// A guardian without mother_for is rejected.
func (r *UserRepository) Create(ctx context.Context, u *db.User) error {
	role, err := eligibility.ParsePtr(u.Role, u.MotherFor)
	if err != nil {
		return fmt.Errorf("user %q: %w", u.DisplayName, err)
	}
	u.Role = role.Column()
	u.MotherFor = role.WardColumn()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(u).Error
}

// Get loads one user; gorm.ErrRecordNotFound when missing.
func (r *UserRepository) Get(ctx context.Context, id string) (*db.User, error) {
	var u db.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// GetMany loads users by id; missing ids are simply absent from the map.
func (r *UserRepository) GetMany(ctx context.Context, ids []string) (map[string]db.User, error) {
	out := make(map[string]db.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []db.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

// LockPair takes row locks on both users in canonical id order. Run it inside
// a transaction; the locks are held until commit.
func (r *UserRepository) LockPair(ctx context.Context, x, y string) error {
	a, b := db.CanonicalPair(x, y)
	for _, id := range []string{a, b} {
		var u db.User
		err := forUpdate(r.db.WithContext(ctx)).Select("id").Where("id = ?", id).Take(&u).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// forUpdate adds a FOR UPDATE lock. SQLite has no row locks; its single
// writer lock already serializes the transaction.
func forUpdate(q *gorm.DB) *gorm.DB {
	if q.Dialector.Name() == "sqlite" {
		return q
	}
	return q.Clauses(clause.Locking{Strength: "UPDATE"})
}

// FindCandidates applies the predicates and returns at most limit users,
// most recently updated first.
//
// Behavior:
//   - The cap bounds the pool scored downstream; results are best-effort,
//     not exhaustive.
//   - id DESC breaks updated_at ties so the pool is stable between calls.
func (r *UserRepository) FindCandidates(ctx context.Context, limit int, preds ...Predicate) ([]db.User, error) {
	q := r.db.WithContext(ctx).Model(&db.User{})
	for _, p := range preds {
		q = q.Scopes(p)
	}
	var users []db.User
	err := q.Order("updated_at DESC").Order("id DESC").Limit(limit).Find(&users).Error
	return users, err
}

// PhotoCounts returns the number of photos per user id.
func (r *UserRepository) PhotoCounts(ctx context.Context, ids []string) (map[string]int, error) {
	out := make(map[string]int, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []struct {
		UserID string
		N      int
	}
	err := r.db.WithContext(ctx).
		Model(&db.Photo{}).
		Select("user_id, COUNT(*) AS n").
		Where("user_id IN ?", ids).
		Group("user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.UserID] = row.N
	}
	return out, nil
}
