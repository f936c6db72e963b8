package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func TestFilters_FailOpenOnMalformedJSON(t *testing.T) {
	p := &Preference{
		Countries: datatypes.JSON(`["GB", " ", "PK"]`),
		Cities:    datatypes.JSON(`not json`),
		Sects:     datatypes.JSON(`{"sunni": true}`),
		Origins:   datatypes.JSON(`[]`),
	}

	f := p.Filters()

	assert.Equal(t, []string{"GB", "PK"}, f.Countries)
	assert.Nil(t, f.Cities)
	assert.Nil(t, f.Sects)
	assert.Nil(t, f.Origins)
	assert.Nil(t, f.Education)
}

func TestFilters_NilPreference(t *testing.T) {
	var p *Preference
	assert.Equal(t, Filters{}, p.Filters())
}

func TestApplyThenFilters(t *testing.T) {
	min := 3
	p := &Preference{}
	p.Apply(Filters{MinReligiousness: &min, Sects: []string{"sunni"}})

	f := p.Filters()
	assert.Equal(t, &min, f.MinReligiousness)
	assert.Equal(t, []string{"sunni"}, f.Sects)
	assert.Nil(t, p.Cities)
}
