package discovery

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/oggyb/muzz-matching/internal/db"
	"github.com/oggyb/muzz-matching/internal/eligibility"
	"github.com/oggyb/muzz-matching/internal/repository"
)

// MinAge is the youngest age a candidate may have.
const MinAge = 18

// Query is everything needed to build one candidate lookup.
type Query struct {
	ViewerID      string
	ViewerRole    eligibility.Role
	Filters       db.Filters
	GuardiansOnly bool

	// Exclude is the union of blocked, swiped, seen and session ids.
	// The viewer is always excluded on top of it.
	Exclude []string

	Now time.Time
}

// Targets resolves the roles this query may return. Guardians-only mode
// applies to guardian viewers only; for anyone else the flag is ignored.
func (q Query) Targets() []eligibility.Role {
	if q.GuardiansOnly && q.ViewerRole.IsGuardian() {
		return eligibility.GuardianTargets(q.ViewerRole)
	}
	return eligibility.Targets(q.ViewerRole)
}

// Predicates renders the query as one conjunction of store predicates.
//
// Hard constraints always apply. Preference constraints apply only when the
// viewer set them; an unset religiousness passes the religiousness bound.
func (q Query) Predicates() []repository.Predicate {
	now := q.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	preds := []repository.Predicate{
		excludeIDs(q.ViewerID, q.Exclude),
		roleIn(q.Targets()),
		where("(muslim_affirmed = ? OR onboarding_completed = ?)", true, true),
		where("discoverable = ?", true),
		where("date_of_birth IS NOT NULL AND date_of_birth <= ?", now.AddDate(-MinAge, 0, 0)),
	}

	f := q.Filters
	if f.MinReligiousness != nil {
		preds = append(preds, where("(religiousness IS NULL OR religiousness >= ?)", *f.MinReligiousness))
	}
	if f.AgeMin != nil {
		preds = append(preds, where("date_of_birth <= ?", now.AddDate(-*f.AgeMin, 0, 0)))
	}
	if f.AgeMax != nil {
		// born after the day they would turn AgeMax+1
		preds = append(preds, where("date_of_birth > ?", now.AddDate(-(*f.AgeMax + 1), 0, 0)))
	}
	if f.HeightMin != nil {
		preds = append(preds, where("height_cm >= ?", *f.HeightMin))
	}
	if f.HeightMax != nil {
		preds = append(preds, where("height_cm <= ?", *f.HeightMax))
	}
	if f.WillingToRelocate != nil {
		preds = append(preds, where("willing_to_relocate = ?", *f.WillingToRelocate))
	}

	preds = appendIn(preds, "country", f.Countries)
	preds = appendIn(preds, "city", f.Cities)
	preds = appendIn(preds, "sect", f.Sects)
	preds = appendIn(preds, "education", f.Education)
	preds = appendIn(preds, "marital_status", f.MaritalStatuses)
	preds = appendIn(preds, "smoking", f.Smoking)
	preds = appendIn(preds, "children_stance", f.ChildrenStances)

	if len(f.Origins) > 0 {
		preds = append(preds, originContains(f.Origins))
	}
	return preds
}

func where(query string, args ...any) repository.Predicate {
	return func(tx *gorm.DB) *gorm.DB { return tx.Where(query, args...) }
}

func appendIn(preds []repository.Predicate, column string, vals []string) []repository.Predicate {
	if len(vals) == 0 {
		return preds
	}
	return append(preds, where(column+" IN ?", vals))
}

func excludeIDs(viewerID string, ids []string) repository.Predicate {
	seen := make(map[string]struct{}, len(ids)+1)
	out := make([]string, 0, len(ids)+1)
	for _, id := range append([]string{viewerID}, ids...) {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return where("id NOT IN ?", out)
}

// roleIn matches any of the target roles. No targets matches nothing.
func roleIn(targets []eligibility.Role) repository.Predicate {
	if len(targets) == 0 {
		return where("1 = 0")
	}
	clauses := make([]string, 0, len(targets))
	args := make([]any, 0, len(targets)*2)
	for _, r := range targets {
		if r.IsGuardian() {
			clauses = append(clauses, "(role = ? AND mother_for = ?)")
			args = append(args, r.Column(), r.Ward().String())
			continue
		}
		clauses = append(clauses, "role = ?")
		args = append(args, r.Column())
	}
	return where("("+strings.Join(clauses, " OR ")+")", args...)
}

// originContains matches when the stored multi-value origin contains any of
// the wanted values as a substring. LIKE wildcards in the values are escaped.
func originContains(vals []string) repository.Predicate {
	clauses := make([]string, 0, len(vals))
	args := make([]any, 0, len(vals))
	for _, v := range vals {
		clauses = append(clauses, "origin LIKE ? ESCAPE '!'")
		args = append(args, "%"+likeEscaper.Replace(v)+"%")
	}
	return where("("+strings.Join(clauses, " OR ")+")", args...)
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
