package discovery

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/oggyb/muzz-matching/internal/db"
)

// Score weights.
const (
	AdmirerBoost = 1000

	RecentDayBoost      = 50
	RecentThreeDayBoost = 30
	RecentWeekBoost     = 10

	PhotoBoost      = 25
	ManyPhotosBoost = 10
	ManyPhotos      = 3

	BioBoost        = 15
	ProfessionBoost = 10
	EducationBoost  = 10

	jitterBuckets = 5000
)

// Candidate is a scored discovery result.
type Candidate struct {
	User db.User

	Score float64
	// DistanceKm is set when both sides have a usable location.
	DistanceKm  *float64
	LikedViewer bool
	PhotoCount  int
}

// Score computes the ranking score of c at now. It is deterministic for a
// given candidate, signal set and clock.
func Score(c Candidate, now time.Time) float64 {
	var s float64
	if c.LikedViewer {
		s += AdmirerBoost
	}

	switch age := now.Sub(c.User.UpdatedAt); {
	case age < 24*time.Hour:
		s += RecentDayBoost
	case age < 3*24*time.Hour:
		s += RecentThreeDayBoost
	case age < 7*24*time.Hour:
		s += RecentWeekBoost
	}

	if c.PhotoCount >= 1 {
		s += PhotoBoost
	}
	if c.PhotoCount >= ManyPhotos {
		s += ManyPhotosBoost
	}

	if strings.TrimSpace(c.User.Bio) != "" {
		s += BioBoost
	}
	if strings.TrimSpace(c.User.Profession) != "" {
		s += ProfessionBoost
	}
	if strings.TrimSpace(c.User.Education) != "" {
		s += EducationBoost
	}

	return s + Jitter(c.User.ID)
}

// Jitter maps id to a stable value in [0, 5).
func Jitter(id string) float64 {
	return float64(xxhash.Sum64String(id)%jitterBuckets) / 1000
}

// Rank sorts by score descending; equal scores order by id.
func Rank(cs []Candidate) {
	slices.SortFunc(cs, func(a, b Candidate) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return strings.Compare(a.User.ID, b.User.ID)
	})
}
