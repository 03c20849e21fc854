package countries

import (
	"sort"

	"gopkg.in/yaml.v3"
)

// Division is a first-level administrative subunit (state, province,
// region), keyed by its short code inside its country's division dataset.
type Division struct {
	Code     string  `yaml:"-"`
	Name     string  `yaml:"name"`
	Centroid *LatLon `yaml:"centroid"` // nil when the dataset records none
}

// Divisions returns the administrative divisions of a country, keyed by
// division code. Division data is an optional side dataset joined by
// country code: a country without one yields an empty map, not an error.
func (s *Service) Divisions(countryCode string) (map[string]Division, error) {
	table, err := s.divisionTable(countryCode)
	if err != nil {
		return nil, err
	}
	out := make(map[string]Division, len(table))
	for code, d := range table {
		out[code] = d
	}
	return out, nil
}

func (s *Service) divisionTable(countryCode string) (map[string]Division, error) {
	cc, err := normalizeCode(countryCode)
	if err != nil {
		return nil, err
	}
	resource := resDivisions + "/" + cc + ".yaml"
	v, err := s.cache.Load("divisions:"+cc, func() (any, error) {
		raw, err := s.readResource(resource)
		if err != nil {
			s.log.Debug().Str("resource", resource).Msg("division table not available")
			return map[string]Division{}, nil
		}
		return hydrateDivisions(resource, raw)
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]Division), nil
}

func hydrateDivisions(resource string, raw []byte) (map[string]Division, error) {
	var table map[string]Division
	if err := yaml.Unmarshal(raw, &table); err != nil {
		return nil, &MalformedDataError{Resource: resource, Err: err}
	}
	for code, d := range table {
		if d.Name == "" {
			return nil, &MalformedDataError{
				Resource: resource,
				Err:      &ValidationError{Field: "name", Reason: "must be a non-empty string"},
			}
		}
		d.Code = code
		table[code] = d
	}
	return table, nil
}

// nearestDivision picks the division whose recorded centroid is closest to
// the point, with no maximum cutoff. Divisions without a centroid are
// skipped; ties break on division code for determinism.
func nearestDivision(table map[string]Division, point LatLon) (Division, bool) {
	codes := make([]string, 0, len(table))
	for code := range table {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	var best Division
	bestDist := -1.0
	for _, code := range codes {
		d := table[code]
		if d.Centroid == nil {
			continue
		}
		dist := haversineKm(point, *d.Centroid)
		if bestDist < 0 || dist < bestDist {
			best = d
			bestDist = dist
		}
	}
	return best, bestDist >= 0
}
