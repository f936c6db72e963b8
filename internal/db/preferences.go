package db

import (
	"encoding/json"
	"strings"

	"gorm.io/datatypes"
)

// Filters is the typed view of a Preference. Every field is optional; a nil
// pointer or empty list means "no constraint".
type Filters struct {
	AgeMin, AgeMax       *int
	HeightMin, HeightMax *int
	MaxDistanceKm        *float64
	MinReligiousness     *int
	WillingToRelocate    *bool

	Countries       []string
	Cities          []string
	Sects           []string
	Education       []string
	MaritalStatuses []string
	Smoking         []string
	ChildrenStances []string
	Origins         []string
}

// Filters decodes the preference row. A nil receiver yields empty Filters.
// List columns holding malformed or non-array JSON decode as absent.
func (p *Preference) Filters() Filters {
	if p == nil {
		return Filters{}
	}
	return Filters{
		AgeMin:            p.AgeMin,
		AgeMax:            p.AgeMax,
		HeightMin:         p.HeightMin,
		HeightMax:         p.HeightMax,
		MaxDistanceKm:     p.MaxDistanceKm,
		MinReligiousness:  p.MinReligiousness,
		WillingToRelocate: p.WillingToRelocate,
		Countries:         decodeList(p.Countries),
		Cities:            decodeList(p.Cities),
		Sects:             decodeList(p.Sects),
		Education:         decodeList(p.Education),
		MaritalStatuses:   decodeList(p.MaritalStatuses),
		Smoking:           decodeList(p.Smoking),
		ChildrenStances:   decodeList(p.ChildrenStances),
		Origins:           decodeList(p.Origins),
	}
}

// Apply copies f onto the row, encoding list fields as JSON arrays.
func (p *Preference) Apply(f Filters) {
	p.AgeMin, p.AgeMax = f.AgeMin, f.AgeMax
	p.HeightMin, p.HeightMax = f.HeightMin, f.HeightMax
	p.MaxDistanceKm = f.MaxDistanceKm
	p.MinReligiousness = f.MinReligiousness
	p.WillingToRelocate = f.WillingToRelocate
	p.Countries = encodeList(f.Countries)
	p.Cities = encodeList(f.Cities)
	p.Sects = encodeList(f.Sects)
	p.Education = encodeList(f.Education)
	p.MaritalStatuses = encodeList(f.MaritalStatuses)
	p.Smoking = encodeList(f.Smoking)
	p.ChildrenStances = encodeList(f.ChildrenStances)
	p.Origins = encodeList(f.Origins)
}

func decodeList(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var vals []string
	if err := json.Unmarshal(raw, &vals); err != nil {
		return nil
	}
	out := vals[:0]
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func encodeList(vals []string) datatypes.JSON {
	if len(vals) == 0 {
		return nil
	}
	b, err := json.Marshal(vals)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}
