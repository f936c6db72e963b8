package eligibility

// Targets returns the roles a viewer may discover and swipe on.
//
//	Male             -> Female
//	Female           -> Male
//	Mother(Son)      -> Female, Mother(Daughter)
//	Mother(Daughter) -> Male, Mother(Son)
//
// The table is not symmetric: a guardian admits members of the opposite sex
// to its ward, but members only admit members. Guardians admit each other
// only across complementary wards.
func Targets(viewer Role) []Role {
	switch viewer.k {
	case kindMale:
		return []Role{Female}
	case kindFemale:
		return []Role{Male}
	case kindMother:
		switch viewer.ward {
		case WardSon:
			return []Role{Female, Mother(WardDaughter)}
		case WardDaughter:
			return []Role{Male, Mother(WardSon)}
		}
	}
	return nil
}

// Admits reports whether target is in Targets(viewer).
func Admits(viewer, target Role) bool {
	for _, r := range Targets(viewer) {
		if r == target {
			return true
		}
	}
	return false
}

// AdmitsEither reports whether either party's table admits the other.
func AdmitsEither(a, b Role) bool {
	return Admits(a, b) || Admits(b, a)
}

// GuardianTargets restricts Targets to other guardians, used by the
// "guardians only" discovery mode. Non-guardian viewers get nothing.
func GuardianTargets(viewer Role) []Role {
	if !viewer.IsGuardian() {
		return nil
	}
	var out []Role
	for _, r := range Targets(viewer) {
		if r.IsGuardian() {
			out = append(out, r)
		}
	}
	return out
}
