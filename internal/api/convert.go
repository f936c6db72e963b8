package api

import (
	"time"

	"github.com/oggyb/muzz-matching/internal/db"
	"github.com/oggyb/muzz-matching/internal/discovery"
	"github.com/oggyb/muzz-matching/internal/swipe"
)

// AgeAt returns the age in whole years at now, nil when dob is unknown.
func AgeAt(dob *time.Time, now time.Time) *int {
	if dob == nil {
		return nil
	}
	years := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	return &years
}

func ProfileOf(u db.User, now time.Time) Profile {
	p := Profile{
		ID:            u.ID,
		DisplayName:   u.DisplayName,
		Role:          u.Role,
		Age:           AgeAt(u.DateOfBirth, now),
		Religiousness: u.Religiousness,
		Sect:          u.Sect,
		Education:     u.Education,
		Profession:    u.Profession,
		Country:       u.Country,
		City:          u.City,
		HeightCm:      u.HeightCm,
		Bio:           u.Bio,
	}
	if u.MotherFor != nil {
		p.MotherFor = *u.MotherFor
	}
	return p
}

func DiscoverResponseOf(res *discovery.Result, now time.Time) *DiscoverResponse {
	out := &DiscoverResponse{
		Users:   make([]Profile, 0, len(res.Candidates)),
		Page:    res.Page,
		HasMore: res.HasMore,
		Total:   res.Total,
	}
	for _, c := range res.Candidates {
		p := ProfileOf(c.User, now)
		p.PhotoCount = c.PhotoCount
		p.DistanceKm = c.DistanceKm
		p.Score = c.Score
		p.LikedYou = c.LikedViewer
		out.Users = append(out.Users, p)
	}
	return out
}

func SwipeOf(s *db.Swipe) *Swipe {
	if s == nil {
		return nil
	}
	return &Swipe{
		ID:          s.ID,
		FromUserID:  s.FromUserID,
		ToUserID:    s.ToUserID,
		Direction:   s.Direction,
		IsSuperLike: s.IsSuperLike,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func MatchOf(m *db.Match) *Match {
	if m == nil {
		return nil
	}
	return &Match{
		ID:            m.ID,
		UserAID:       m.UserAID,
		UserBID:       m.UserBID,
		RoleA:         m.RoleA,
		RoleB:         m.RoleB,
		LastMessageAt: m.LastMessageAt,
		CreatedAt:     m.CreatedAt,
	}
}

func SwipeResponseOf(out *swipe.Outcome) *SwipeResponse {
	return &SwipeResponse{
		Swipe:        SwipeOf(out.Swipe),
		Match:        MatchOf(out.Match),
		MatchCreated: out.MatchCreated,
	}
}

func UndoResponseOf(res *swipe.UndoResult) *UndoResponse {
	sw := res.Swipe
	return &UndoResponse{Undone: true, Swipe: SwipeOf(&sw), MatchDeleted: res.MatchDeleted}
}

func LikedMeResponseOf(page *swipe.AdmirerPage, now time.Time) *LikedMeResponse {
	out := &LikedMeResponse{
		Users:               make([]Admirer, 0, len(page.Admirers)),
		NextPaginationToken: page.NextToken,
	}
	for _, a := range page.Admirers {
		out.Users = append(out.Users, Admirer{
			Profile:     ProfileOf(a.User, now),
			LikedAt:     a.SwipedAt,
			IsSuperLike: a.SuperLike,
		})
	}
	return out
}

// Filters converts the request body into store filters.
func (p Preferences) Filters() db.Filters {
	return db.Filters{
		AgeMin:            p.AgeMin,
		AgeMax:            p.AgeMax,
		HeightMin:         p.HeightMin,
		HeightMax:         p.HeightMax,
		MaxDistanceKm:     p.MaxDistanceKm,
		MinReligiousness:  p.MinReligiousness,
		WillingToRelocate: p.WillingToRelocate,
		Countries:         p.Countries,
		Cities:            p.Cities,
		Sects:             p.Sects,
		Education:         p.Education,
		MaritalStatuses:   p.MaritalStatuses,
		Smoking:           p.Smoking,
		ChildrenStances:   p.ChildrenStances,
		Origins:           p.Origins,
	}
}

func PreferencesOf(row *db.Preference) Preferences {
	f := row.Filters()
	return Preferences{
		AgeMin:            f.AgeMin,
		AgeMax:            f.AgeMax,
		HeightMin:         f.HeightMin,
		HeightMax:         f.HeightMax,
		MaxDistanceKm:     f.MaxDistanceKm,
		MinReligiousness:  f.MinReligiousness,
		WillingToRelocate: f.WillingToRelocate,
		Countries:         f.Countries,
		Cities:            f.Cities,
		Sects:             f.Sects,
		Education:         f.Education,
		MaritalStatuses:   f.MaritalStatuses,
		Smoking:           f.Smoking,
		ChildrenStances:   f.ChildrenStances,
		Origins:           f.Origins,
	}
}
