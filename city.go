package countries

import (
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/goccy/go-json"
)

// City is one entry of a per-country city table. Cities are joined to
// countries only by the shared country-code key of the table they live in,
// never by a structural reference.
type City struct {
	Name       string  `json:"name"`
	StateCode  string  `json:"state_code"`
	StateName  string  `json:"state_name"`
	County     string  `json:"county,omitempty"`
	Metro      string  `json:"metro,omitempty"`
	Population int32   `json:"population,omitempty"`
	Geo        CityGeo `json:"geo"`
}

// CityGeo holds a city's coordinates and optional timezone.
type CityGeo struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone,omitempty"`
}

// validate checks the mandatory city fields at hydration time.
func (c City) validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return &ValidationError{Field: "name", Reason: "must be a non-empty string"}
	}
	if c.StateCode == "" {
		return &ValidationError{Field: "state_code", Reason: "must be a non-empty string"}
	}
	if c.StateName == "" {
		return &ValidationError{Field: "state_name", Reason: "must be a non-empty string"}
	}
	if c.Geo.Latitude < -90 || c.Geo.Latitude > 90 {
		return &ValidationError{Field: "geo.latitude", Reason: "must be within [-90, 90]"}
	}
	if c.Geo.Longitude < -180 || c.Geo.Longitude > 180 {
		return &ValidationError{Field: "geo.longitude", Reason: "must be within [-180, 180]"}
	}
	return nil
}

// cityTable is a hydrated per-country city dataset with an inverted name
// index (lowercased name to city indices).
type cityTable struct {
	cities    []City
	nameIndex map[string][]int
}

// cityTable loads (and caches) the city table for a country code. A missing
// table is not an error: city data is an optional enrichment, so absence
// yields an empty table.
func (s *Service) cityTable(code string) (*cityTable, error) {
	cc, err := normalizeCode(code)
	if err != nil {
		return nil, err
	}
	resource := resCities + "/" + cc + ".json"
	v, err := s.cache.Load("cities:"+cc, func() (any, error) {
		raw, err := s.readResource(resource)
		if err != nil {
			s.log.Debug().Str("resource", resource).Msg("city table not available")
			return &cityTable{nameIndex: map[string][]int{}}, nil
		}
		return hydrateCityTable(resource, raw)
	})
	if err != nil {
		return nil, err
	}
	return v.(*cityTable), nil
}

func hydrateCityTable(resource string, raw []byte) (*cityTable, error) {
	var cities []City
	if err := json.Unmarshal(raw, &cities); err != nil {
		return nil, &MalformedDataError{Resource: resource, Err: err}
	}
	t := &cityTable{cities: cities, nameIndex: make(map[string][]int, len(cities))}
	for i, c := range cities {
		if err := c.validate(); err != nil {
			return nil, &MalformedDataError{Resource: resource, Err: err}
		}
		t.nameIndex[strings.ToLower(c.Name)] = append(t.nameIndex[strings.ToLower(c.Name)], i)
	}
	return t, nil
}

// maxFuzzyDistance caps CityQuery.FuzzyDistance so a generous caller cannot
// turn a lookup into an expensive full-table edit-distance scan.
const maxFuzzyDistance = 3

// CityQuery narrows a FindCity lookup.
type CityQuery struct {
	// StateCode restricts matches to one administrative division.
	StateCode string
	// FuzzyDistance enables typo tolerance: a city whose name is within
	// this Levenshtein distance of the query also matches. 0 disables
	// fuzzy matching; values above 3 are capped.
	FuzzyDistance int
}

// FindCity returns the city with the given name inside a country. Name
// matching is case-insensitive; among several matches the most populous
// wins, with the lexicographically smaller name as the deterministic
// tiebreak. A NotFoundError is returned when nothing matches.
func (s *Service) FindCity(name, countryCode string, opts ...CityQuery) (*City, error) {
	table, err := s.cityTable(countryCode)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, notFound("city", name)
	}
	var q CityQuery
	if len(opts) > 0 {
		q = opts[0]
	}
	if q.FuzzyDistance > maxFuzzyDistance {
		q.FuzzyDistance = maxFuzzyDistance
	}

	if best, ok := pickCity(table, table.nameIndex[strings.ToLower(name)], q.StateCode); ok {
		return best, nil
	}

	if q.FuzzyDistance > 0 {
		if best, ok := fuzzyCity(table, name, q); ok {
			return best, nil
		}
	}
	return nil, notFound("city", name)
}

// pickCity selects the best city among index candidates: population
// descending, then name ascending.
func pickCity(t *cityTable, candidates []int, stateCode string) (*City, bool) {
	var best *City
	for _, idx := range candidates {
		c := t.cities[idx]
		if stateCode != "" && !strings.EqualFold(c.StateCode, stateCode) {
			continue
		}
		if best == nil || c.Population > best.Population ||
			(c.Population == best.Population && c.Name < best.Name) {
			picked := c
			best = &picked
		}
	}
	return best, best != nil
}

// fuzzyCity scans the whole table for names within the allowed edit
// distance, preferring smaller distance, then population, then name.
func fuzzyCity(t *cityTable, name string, q CityQuery) (*City, bool) {
	lower := strings.ToLower(name)
	var best *City
	bestDist := q.FuzzyDistance + 1
	for i := range t.cities {
		c := t.cities[i]
		if q.StateCode != "" && !strings.EqualFold(c.StateCode, q.StateCode) {
			continue
		}
		dist := levenshtein.ComputeDistance(lower, strings.ToLower(c.Name))
		if dist > q.FuzzyDistance {
			continue
		}
		if best == nil || dist < bestDist ||
			(dist == bestDist && (c.Population > best.Population ||
				(c.Population == best.Population && c.Name < best.Name))) {
			picked := c
			best = &picked
			bestDist = dist
		}
	}
	return best, best != nil
}
