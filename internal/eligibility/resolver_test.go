package eligibility_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/muzz-matching/internal/eligibility"
)

var allRoles = []eligibility.Role{
	eligibility.Male,
	eligibility.Female,
	eligibility.Mother(eligibility.WardSon),
	eligibility.Mother(eligibility.WardDaughter),
}

func TestParse(t *testing.T) {
	cases := []struct {
		role, motherFor string
		want            eligibility.Role
		err             error
	}{
		{"male", "", eligibility.Male, nil},
		{"  Female ", "son", eligibility.Female, nil},
		{"MOTHER", " Son", eligibility.Mother(eligibility.WardSon), nil},
		{"mother", "daughter", eligibility.Mother(eligibility.WardDaughter), nil},
		{"mother", "", eligibility.Role{}, eligibility.ErrMissingWard},
		{"mother", "niece", eligibility.Role{}, eligibility.ErrMissingWard},
		{"other", "", eligibility.Role{}, eligibility.ErrUnknownRole},
		{"", "", eligibility.Role{}, eligibility.ErrUnknownRole},
	}
	for _, tc := range cases {
		got, err := eligibility.Parse(tc.role, tc.motherFor)
		if tc.err != nil {
			assert.ErrorIs(t, err, tc.err, "%q/%q", tc.role, tc.motherFor)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	for _, r := range allRoles {
		got, err := eligibility.ParseSnapshot(r.String())
		require.NoError(t, err)
		assert.Equal(t, r, got)
	}
}

func TestTargetsTable(t *testing.T) {
	assert.Equal(t, []eligibility.Role{eligibility.Female}, eligibility.Targets(eligibility.Male))
	assert.Equal(t, []eligibility.Role{eligibility.Male}, eligibility.Targets(eligibility.Female))
	assert.ElementsMatch(t,
		[]eligibility.Role{eligibility.Female, eligibility.Mother(eligibility.WardDaughter)},
		eligibility.Targets(eligibility.Mother(eligibility.WardSon)))
	assert.ElementsMatch(t,
		[]eligibility.Role{eligibility.Male, eligibility.Mother(eligibility.WardSon)},
		eligibility.Targets(eligibility.Mother(eligibility.WardDaughter)))
	assert.Empty(t, eligibility.Targets(eligibility.Role{}))
}

// Exhaustive over the role grid: admission is one-way only from a guardian
// to a member, and AdmitsEither closes that gap.
func TestAdmitsAsymmetryIsGuardianToMember(t *testing.T) {
	var oneWay []string
	for _, a := range allRoles {
		for _, b := range allRoles {
			assert.Equal(t, eligibility.AdmitsEither(a, b), eligibility.AdmitsEither(b, a), "%s vs %s", a, b)
			if eligibility.Admits(a, b) && !eligibility.Admits(b, a) {
				assert.True(t, a.IsGuardian(), "%s -> %s", a, b)
				assert.False(t, b.IsGuardian(), "%s -> %s", a, b)
				oneWay = append(oneWay, a.String()+"->"+b.String())
			}
		}
	}
	assert.ElementsMatch(t, []string{
		eligibility.Mother(eligibility.WardSon).String() + "->" + eligibility.Female.String(),
		eligibility.Mother(eligibility.WardDaughter).String() + "->" + eligibility.Male.String(),
	}, oneWay)
}

func TestGuardiansAdmitOnlyComplementaryWards(t *testing.T) {
	son, daughter := eligibility.Mother(eligibility.WardSon), eligibility.Mother(eligibility.WardDaughter)
	assert.True(t, eligibility.Admits(son, daughter))
	assert.True(t, eligibility.Admits(daughter, son))
	assert.False(t, eligibility.Admits(son, son))
	assert.False(t, eligibility.Admits(daughter, daughter))

	// members never admit guardians
	for _, g := range []eligibility.Role{son, daughter} {
		assert.False(t, eligibility.Admits(eligibility.Male, g))
		assert.False(t, eligibility.Admits(eligibility.Female, g))
	}
}

func TestNoRoleAdmitsItself(t *testing.T) {
	for _, r := range allRoles {
		assert.False(t, eligibility.Admits(r, r), r.String())
	}
}

func TestGuardianTargets(t *testing.T) {
	assert.Equal(t,
		[]eligibility.Role{eligibility.Mother(eligibility.WardDaughter)},
		eligibility.GuardianTargets(eligibility.Mother(eligibility.WardSon)))
	assert.Nil(t, eligibility.GuardianTargets(eligibility.Male))
}

func TestColumns(t *testing.T) {
	m := eligibility.Mother(eligibility.WardDaughter)
	assert.Equal(t, "mother", m.Column())
	require.NotNil(t, m.WardColumn())
	assert.Equal(t, "daughter", *m.WardColumn())
	assert.Nil(t, eligibility.Male.WardColumn())
	assert.Equal(t, eligibility.WardSon, eligibility.WardDaughter.Complement())
}
