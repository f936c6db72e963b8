// Package eligibility models account roles as a closed set and decides which
// roles may discover, swipe on and match with each other.
package eligibility

import (
	"errors"
	"strings"
)

var (
	// ErrUnknownRole is returned for role strings outside male/female/mother.
	ErrUnknownRole = errors.New("unknown role")
	// ErrMissingWard is returned for a mother account without a valid mother_for.
	ErrMissingWard = errors.New("guardian account is missing mother_for")
)

type kind uint8

const (
	kindUnknown kind = iota
	kindMale
	kindFemale
	kindMother
)

// Ward is who a guardian searches on behalf of.
type Ward uint8

const (
	WardNone Ward = iota
	WardSon
	WardDaughter
)

func (w Ward) String() string {
	switch w {
	case WardSon:
		return "son"
	case WardDaughter:
		return "daughter"
	}
	return ""
}

// Complement returns the ward a guardian of w may be matched with.
func (w Ward) Complement() Ward {
	switch w {
	case WardSon:
		return WardDaughter
	case WardDaughter:
		return WardSon
	}
	return WardNone
}

// Role is one of Male, Female, Mother(Son) or Mother(Daughter). The zero value
// is the unknown role, which is eligible for nothing.
type Role struct {
	k    kind
	ward Ward
}

var (
	Male   = Role{k: kindMale}
	Female = Role{k: kindFemale}
)

// Mother builds the guardian role for the given ward.
func Mother(w Ward) Role { return Role{k: kindMother, ward: w} }

// Stored column values.
const (
	RoleMale   = "male"
	RoleFemale = "female"
	RoleMother = "mother"
)

// Parse validates raw (role, mother_for) columns. Matching is case- and
// whitespace-insensitive. mother_for is ignored for non-guardian roles.
func Parse(role, motherFor string) (Role, error) {
	switch normalize(role) {
	case RoleMale:
		return Male, nil
	case RoleFemale:
		return Female, nil
	case RoleMother:
		w, err := ParseWard(motherFor)
		if err != nil {
			return Role{}, err
		}
		return Mother(w), nil
	}
	return Role{}, ErrUnknownRole
}

// ParseWard validates a mother_for value.
func ParseWard(v string) (Ward, error) {
	switch normalize(v) {
	case "son":
		return WardSon, nil
	case "daughter":
		return WardDaughter, nil
	}
	return WardNone, ErrMissingWard
}

// ParsePtr is Parse for a nullable mother_for column.
func ParsePtr(role string, motherFor *string) (Role, error) {
	if motherFor == nil {
		return Parse(role, "")
	}
	return Parse(role, *motherFor)
}

func normalize(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func (r Role) IsKnown() bool    { return r.k != kindUnknown }
func (r Role) IsGuardian() bool { return r.k == kindMother }
func (r Role) Ward() Ward       { return r.ward }

// Column returns the stored role column value.
func (r Role) Column() string {
	switch r.k {
	case kindMale:
		return RoleMale
	case kindFemale:
		return RoleFemale
	case kindMother:
		return RoleMother
	}
	return ""
}

// WardColumn returns the stored mother_for value, nil for non-guardians.
func (r Role) WardColumn() *string {
	if r.k != kindMother {
		return nil
	}
	s := r.ward.String()
	return &s
}

// String renders the role as "male", "female", "mother:son" or "mother:daughter".
// It is also the snapshot format stored on matches.
func (r Role) String() string {
	if r.k == kindMother {
		return RoleMother + ":" + r.ward.String()
	}
	if r.k == kindUnknown {
		return "unknown"
	}
	return r.Column()
}

// ParseSnapshot reads back a value produced by String.
func ParseSnapshot(s string) (Role, error) {
	role, ward, _ := strings.Cut(s, ":")
	return Parse(role, ward)
}
