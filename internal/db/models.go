package db

import (
	"time"

	"gorm.io/datatypes"
)

// User holds identity and profile attributes.
//
// Role is stored normalized ("male", "female", "mother"); MotherFor is set
// only for guardians. Origin is a free-form multi-value string.
type User struct {
	ID                  string  `gorm:"primaryKey;size:36"`
	DisplayName         string  `gorm:"size:128;not null"`
	Role                string  `gorm:"size:16;not null;index:idx_users_role_ward,priority:1"`
	MotherFor           *string `gorm:"size:16;index:idx_users_role_ward,priority:2"`
	DateOfBirth         *time.Time
	Religiousness       *int
	Sect                string `gorm:"size:64"`
	Education           string `gorm:"size:128"`
	Profession          string `gorm:"size:128"`
	MaritalStatus       string `gorm:"size:32"`
	Smoking             string `gorm:"size:32"`
	ChildrenStance      string `gorm:"size:32"`
	Origin              string `gorm:"size:255"`
	Country             string `gorm:"size:64"`
	City                string `gorm:"size:64"`
	HeightCm            *int
	WillingToRelocate   *bool
	Bio                 string `gorm:"type:text"`
	Latitude            *float64
	Longitude           *float64
	MuslimAffirmed      bool      `gorm:"not null"`
	OnboardingCompleted bool      `gorm:"not null"`
	Discoverable        bool      `gorm:"not null;index"`
	CreatedAt           time.Time `gorm:"autoCreateTime"`
	UpdatedAt           time.Time `gorm:"autoUpdateTime;index"`

	Photos []Photo `gorm:"constraint:OnDelete:CASCADE"`
}

// Preference is one-to-one with User and created lazily on first write.
//
// List columns hold JSON string arrays. They are read through Filters(), which
// treats malformed JSON as an unset field.
type Preference struct {
	ID                string `gorm:"primaryKey;size:36"`
	UserID            string `gorm:"size:36;not null;uniqueIndex"`
	AgeMin            *int
	AgeMax            *int
	HeightMin         *int
	HeightMax         *int
	MaxDistanceKm     *float64
	MinReligiousness  *int
	WillingToRelocate *bool
	Countries         datatypes.JSON
	Cities            datatypes.JSON
	Sects             datatypes.JSON
	Education         datatypes.JSON
	MaritalStatuses   datatypes.JSON
	Smoking           datatypes.JSON
	ChildrenStances   datatypes.JSON
	Origins           datatypes.JSON
	CreatedAt         time.Time `gorm:"autoCreateTime"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime"`

	User User `gorm:"constraint:OnDelete:CASCADE"`
}

// Swipe directions.
const (
	DirectionLeft  = "left"
	DirectionRight = "right"
)

// Swipe is a directional decision.
//
// Unique (from_user_id, to_user_id): re-swiping overwrites in place.
//
// Indexes:
//   - idx_swipes_to_direction(to_user_id, direction, updated_at): admirer listing.
//   - idx_swipes_from_updated(from_user_id, updated_at): undo and exclusion lookups.
type Swipe struct {
	ID          string    `gorm:"primaryKey;size:36"`
	FromUserID  string    `gorm:"size:36;not null;uniqueIndex:uq_swipes_pair,priority:1;index:idx_swipes_from_updated,priority:1"`
	ToUserID    string    `gorm:"size:36;not null;uniqueIndex:uq_swipes_pair,priority:2;index:idx_swipes_to_direction,priority:1"`
	Direction   string    `gorm:"size:8;not null;index:idx_swipes_to_direction,priority:2"`
	IsSuperLike bool      `gorm:"not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime;index:idx_swipes_to_direction,priority:3;index:idx_swipes_from_updated,priority:2"`

	From User `gorm:"foreignKey:FromUserID;constraint:OnDelete:CASCADE"`
	To   User `gorm:"foreignKey:ToUserID;constraint:OnDelete:CASCADE"`
}

// Match is an undirected pair stored canonically with UserAID < UserBID.
// RoleA/RoleB snapshot each side's role at creation time ("mother:son" form).
type Match struct {
	ID            string `gorm:"primaryKey;size:36"`
	UserAID       string `gorm:"size:36;not null;uniqueIndex:uq_matches_pair,priority:1"`
	UserBID       string `gorm:"size:36;not null;uniqueIndex:uq_matches_pair,priority:2;index"`
	RoleA         string `gorm:"size:24;not null"`
	RoleB         string `gorm:"size:24;not null"`
	LastMessageAt *time.Time
	CreatedAt     time.Time `gorm:"autoCreateTime"`

	UserA User `gorm:"foreignKey:UserAID;constraint:OnDelete:CASCADE"`
	UserB User `gorm:"foreignKey:UserBID;constraint:OnDelete:CASCADE"`
}

// HasUser reports whether id is one side of the match.
func (m Match) HasUser(id string) bool { return m.UserAID == id || m.UserBID == id }

// Other returns the counterpart of id.
func (m Match) Other(id string) string {
	if m.UserAID == id {
		return m.UserBID
	}
	return m.UserAID
}

// CanonicalPair orders two ids so the smaller one comes first.
func CanonicalPair(x, y string) (a, b string) {
	if x < y {
		return x, y
	}
	return y, x
}

// Block is stored directionally but hides both sides from each other.
type Block struct {
	BlockerID string    `gorm:"primaryKey;size:36"`
	BlockedID string    `gorm:"primaryKey;size:36;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	Blocker User `gorm:"foreignKey:BlockerID;constraint:OnDelete:CASCADE"`
	Blocked User `gorm:"foreignKey:BlockedID;constraint:OnDelete:CASCADE"`
}

// Other returns the counterpart of id.
func (b Block) Other(id string) string {
	if b.BlockerID == id {
		return b.BlockedID
	}
	return b.BlockerID
}

// DiscoverySeen excludes SeenUserID from ViewerID's discovery until refreshed.
// CreatedAt is bumped on every upsert.
type DiscoverySeen struct {
	ViewerID   string    `gorm:"primaryKey;size:36"`
	SeenUserID string    `gorm:"primaryKey;size:36"`
	CreatedAt  time.Time `gorm:"not null"`

	Viewer User `gorm:"foreignKey:ViewerID;constraint:OnDelete:CASCADE"`
}

// TableName pins the table name.
func (DiscoverySeen) TableName() string { return "discovery_seen" }

// Photo is an ordered image owned by a user. Only the count matters here.
type Photo struct {
	ID       string `gorm:"primaryKey;size:36"`
	UserID   string `gorm:"size:36;not null;index"`
	Position int    `gorm:"not null;default:0"`
	URL      string `gorm:"size:512;not null"`
}

// GuardianAuditLog is an append-only record of messages inside matches with a
// guardian on either side.
type GuardianAuditLog struct {
	ID        string    `gorm:"primaryKey;size:36"`
	MatchID   string    `gorm:"size:36;not null;index"`
	SenderID  string    `gorm:"size:36;not null"`
	Action    string    `gorm:"size:32;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// AllModels lists every table for AutoMigrate.
func AllModels() []any {
	return []any{
		&User{}, &Photo{}, &Preference{}, &Swipe{}, &Match{},
		&Block{}, &DiscoverySeen{}, &GuardianAuditLog{},
	}
}
