package api

import "time"

// ViewerID is the authenticated caller. HTTP fills it from the X-User-ID
// header; gRPC callers send it in the body.

type DiscoverRequest struct {
	ViewerID      string   `json:"viewer_id" validate:"required"`
	Page          int      `json:"page" validate:"gte=0"`
	Limit         int      `json:"limit" validate:"gte=0,lte=100"`
	Exclude       []string `json:"exclude" validate:"max=500,dive,required"`
	GuardiansOnly bool     `json:"guardians_only"`
}

// DiscoverResponse is best-effort: Total counts the filtered candidate pool,
// which is capped server-side.
type DiscoverResponse struct {
	Users   []Profile `json:"users"`
	Page    int       `json:"page"`
	HasMore bool      `json:"hasMore"`
	Total   int       `json:"total"`
}

type Profile struct {
	ID            string   `json:"id"`
	DisplayName   string   `json:"display_name"`
	Role          string   `json:"role"`
	MotherFor     string   `json:"mother_for,omitempty"`
	Age           *int     `json:"age,omitempty"`
	Religiousness *int     `json:"religiousness,omitempty"`
	Sect          string   `json:"sect,omitempty"`
	Education     string   `json:"education,omitempty"`
	Profession    string   `json:"profession,omitempty"`
	Country       string   `json:"country,omitempty"`
	City          string   `json:"city,omitempty"`
	HeightCm      *int     `json:"height_cm,omitempty"`
	Bio           string   `json:"bio,omitempty"`
	PhotoCount    int      `json:"photo_count"`
	DistanceKm    *float64 `json:"distance_km,omitempty"`
	Score         float64  `json:"score,omitempty"`
	LikedYou      bool     `json:"liked_you,omitempty"`
}

type MarkSeenRequest struct {
	ViewerID   string `json:"viewer_id" validate:"required"`
	SeenUserID string `json:"seen_user_id" validate:"required,nefield=ViewerID"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}

type SwipeRequest struct {
	ViewerID    string `json:"viewer_id" validate:"required"`
	ToUserID    string `json:"to_user_id" validate:"required,nefield=ViewerID"`
	Direction   string `json:"direction" validate:"required,oneof=left right"`
	IsSuperLike bool   `json:"is_super_like"`
}

type Swipe struct {
	ID          string    `json:"id"`
	FromUserID  string    `json:"from_user_id"`
	ToUserID    string    `json:"to_user_id"`
	Direction   string    `json:"direction"`
	IsSuperLike bool      `json:"is_super_like"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Match struct {
	ID            string     `json:"id"`
	UserAID       string     `json:"user_a_id"`
	UserBID       string     `json:"user_b_id"`
	RoleA         string     `json:"role_a"`
	RoleB         string     `json:"role_b"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type SwipeResponse struct {
	Swipe        *Swipe `json:"swipe"`
	Match        *Match `json:"match"`
	MatchCreated bool   `json:"match_created"`
}

type UndoRequest struct {
	ViewerID string `json:"viewer_id" validate:"required"`
}

type UndoResponse struct {
	Undone       bool   `json:"undone"`
	Swipe        *Swipe `json:"swipe"`
	MatchDeleted bool   `json:"match_deleted"`
}

type LikedMeRequest struct {
	ViewerID        string `json:"viewer_id" validate:"required"`
	PaginationToken string `json:"pagination_token"`
	Limit           int    `json:"limit" validate:"gte=0,lte=100"`
}

type Admirer struct {
	Profile
	LikedAt     time.Time `json:"liked_at"`
	IsSuperLike bool      `json:"is_super_like"`
}

type LikedMeResponse struct {
	Users               []Admirer `json:"users"`
	NextPaginationToken string    `json:"next_pagination_token,omitempty"`
}

type CountLikedMeRequest struct {
	ViewerID string `json:"viewer_id" validate:"required"`
}

type CountLikedMeResponse struct {
	Count int64 `json:"count"`
}

type UnmatchRequest struct {
	ViewerID string `json:"viewer_id" validate:"required"`
	MatchID  string `json:"match_id" validate:"required"`
}

type BlockRequest struct {
	ViewerID string `json:"viewer_id" validate:"required"`
	UserID   string `json:"user_id" validate:"required,nefield=ViewerID"`
}

type AuthorizeMessageRequest struct {
	ViewerID string `json:"viewer_id" validate:"required"`
	MatchID  string `json:"match_id" validate:"required"`
	Action   string `json:"action" validate:"omitempty,max=32,alphanum"`
}

type AuthorizeMessageResponse struct {
	Allowed          bool `json:"allowed"`
	GuardianInvolved bool `json:"guardian_involved"`
	Audited          bool `json:"audited"`
}

// Preferences is both the update request body and the stored view.
// Nil and empty fields mean "no constraint".
type Preferences struct {
	AgeMin            *int     `json:"age_min,omitempty" validate:"omitempty,gte=18,lte=120"`
	AgeMax            *int     `json:"age_max,omitempty" validate:"omitempty,gte=18,lte=120"`
	HeightMin         *int     `json:"height_min,omitempty" validate:"omitempty,gte=50,lte=300"`
	HeightMax         *int     `json:"height_max,omitempty" validate:"omitempty,gte=50,lte=300"`
	MaxDistanceKm     *float64 `json:"max_distance_km,omitempty" validate:"omitempty,gt=0,lte=20000"`
	MinReligiousness  *int     `json:"min_religiousness,omitempty" validate:"omitempty,gte=1,lte=5"`
	WillingToRelocate *bool    `json:"willing_to_relocate,omitempty"`

	Countries       []string `json:"countries,omitempty" validate:"max=50,dive,required,max=64"`
	Cities          []string `json:"cities,omitempty" validate:"max=50,dive,required,max=64"`
	Sects           []string `json:"sects,omitempty" validate:"max=20,dive,required,max=64"`
	Education       []string `json:"education,omitempty" validate:"max=20,dive,required,max=128"`
	MaritalStatuses []string `json:"marital_statuses,omitempty" validate:"max=20,dive,required,max=32"`
	Smoking         []string `json:"smoking,omitempty" validate:"max=10,dive,required,max=32"`
	ChildrenStances []string `json:"children_stances,omitempty" validate:"max=10,dive,required,max=32"`
	Origins         []string `json:"origins,omitempty" validate:"max=20,dive,required,max=64"`
}

type UpdatePreferencesRequest struct {
	ViewerID    string      `json:"viewer_id" validate:"required"`
	Preferences Preferences `json:"preferences"`
}

type PreferencesResponse struct {
	Preferences Preferences `json:"preferences"`
}

// ErrorResponse is the HTTP error body.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}
