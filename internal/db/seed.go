package db

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedOptions controls SeedDemoData.
type SeedOptions struct {
	Users int
	// Seed makes the generated data reproducible; 0 uses the clock.
	Seed  int64
	Reset bool
}

var (
	seedCities   = []string{"London", "Manchester", "Birmingham", "Leeds"}
	seedSects    = []string{"sunni", "shia", "other"}
	seedOrigins  = []string{"pakistani", "bangladeshi", "somali", "arab", "turkish", "pakistani,arab"}
	seedJobs     = []string{"", "engineer", "doctor", "teacher", "accountant"}
	seedStudies  = []string{"", "bachelors", "masters", "phd"}
	seedMarital  = []string{"never_married", "divorced"}
	seedChildren = []string{"want", "open", "dont_want"}
	seedCoords   = [][2]float64{{51.5072, -0.1276}, {53.4808, -2.2426}, {52.4862, -1.8904}, {53.8008, -1.5491}}
)

// SeedDemoData populates the store with a mixed population of members and
// guardians, photos, preferences and swipes (every third right-swipe is made
// mutual and materialized as a match).
//
// Compatible with MySQL, Postgres and SQLite.
func SeedDemoData(db *gorm.DB, opts SeedOptions) error {
	if opts.Users <= 0 {
		opts.Users = 20
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	r := rand.New(rand.NewSource(opts.Seed))

	if opts.Reset {
		if err := ResetData(db); err != nil {
			return err
		}
	}

	users := make([]User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		u := demoUser(r, i)
		users = append(users, u)
	}
	if err := db.Omit(clause.Associations).Create(&users).Error; err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	for _, u := range users {
		n := r.Intn(5)
		for p := 0; p < n; p++ {
			photo := Photo{ID: uuid.NewString(), UserID: u.ID, Position: p, URL: fmt.Sprintf("https://cdn.example.com/%s/%d.jpg", u.ID, p)}
			if err := db.Create(&photo).Error; err != nil {
				return fmt.Errorf("failed to seed photo: %w", err)
			}
		}
	}

	counter := 0
	for _, from := range users {
		for j := 0; j < 6; j++ {
			to := users[r.Intn(len(users))]
			if to.ID == from.ID || to.Role == from.Role {
				continue
			}
			dir := DirectionLeft
			if r.Intn(100) < 70 {
				dir = DirectionRight
			}
			if err := seedSwipe(db, from.ID, to.ID, dir); err != nil {
				return err
			}
			if dir == DirectionRight && counter%3 == 0 {
				if err := seedSwipe(db, to.ID, from.ID, DirectionRight); err != nil {
					return err
				}
				a, b := CanonicalPair(from.ID, to.ID)
				roleOf := map[string]string{from.ID: snapshot(from), to.ID: snapshot(to)}
				m := Match{ID: uuid.NewString(), UserAID: a, UserBID: b, RoleA: roleOf[a], RoleB: roleOf[b]}
				if err := db.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(&m).Error; err != nil {
					return fmt.Errorf("failed to seed match: %w", err)
				}
			}
			counter++
		}
	}
	return nil
}

// ResetData clears every table, children first.
func ResetData(db *gorm.DB) error {
	for _, table := range []string{
		"guardian_audit_logs", "discovery_seen", "blocks", "matches",
		"swipes", "preferences", "photos", "users",
	} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

func demoUser(r *rand.Rand, i int) User {
	dob := time.Now().UTC().AddDate(-(20 + r.Intn(20)), -r.Intn(12), 0)
	relig := 1 + r.Intn(5)
	height := 150 + r.Intn(45)
	coords := seedCoords[r.Intn(len(seedCoords))]
	lat, lng := coords[0], coords[1]

	u := User{
		ID:                  uuid.NewString(),
		DisplayName:         fmt.Sprintf("user%d", i+1),
		DateOfBirth:         &dob,
		Religiousness:       &relig,
		Sect:                seedSects[r.Intn(len(seedSects))],
		Education:           seedStudies[r.Intn(len(seedStudies))],
		Profession:          seedJobs[r.Intn(len(seedJobs))],
		MaritalStatus:       seedMarital[r.Intn(len(seedMarital))],
		Smoking:             "no",
		ChildrenStance:      seedChildren[r.Intn(len(seedChildren))],
		Origin:              seedOrigins[r.Intn(len(seedOrigins))],
		Country:             "GB",
		City:                seedCities[r.Intn(len(seedCities))],
		HeightCm:            &height,
		Latitude:            &lat,
		Longitude:           &lng,
		MuslimAffirmed:      true,
		OnboardingCompleted: r.Intn(10) > 0,
		Discoverable:        true,
	}
	if r.Intn(3) > 0 {
		u.Bio = "Assalamu alaikum, looking for something serious."
	}

	switch i % 5 {
	case 0, 1:
		u.Role = "male"
	case 2, 3:
		u.Role = "female"
	default:
		u.Role = "mother"
		ward := "son"
		if r.Intn(2) == 0 {
			ward = "daughter"
		}
		u.MotherFor = &ward
	}
	return u
}

func seedSwipe(db *gorm.DB, from, to, dir string) error {
	s := Swipe{ID: uuid.NewString(), FromUserID: from, ToUserID: to, Direction: dir}
	err := db.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "from_user_id"}, {Name: "to_user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"direction", "updated_at"}),
	}).Create(&s).Error
	if err != nil {
		return fmt.Errorf("failed to seed swipe: %w", err)
	}
	return nil
}

func snapshot(u User) string {
	if u.MotherFor != nil {
		return u.Role + ":" + *u.MotherFor
	}
	return u.Role
}
