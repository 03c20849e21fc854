package countries

import (
	"fmt"
	"strings"
)

// validationPoint defines known coordinates for resolver validation.
type validationPoint struct {
	lat, lon    float64
	wantCountry string
	wantCity    string
}

// knownPoints are unambiguous city-center coordinates used to validate
// coordinate resolution end to end.
var knownPoints = []validationPoint{
	{38.9072, -77.0369, "US", "Washington"},
	{51.5074, -0.1278, "GB", "London"},
	{48.8566, 2.3522, "FR", "Paris"},
	{-33.8688, 151.2093, "AU", ""}, // no AU city table; country-only match
}

// ValidateData loads every dataset reachable from the candidate list and
// checks structural and referential integrity: all mandatory country
// records hydrate, city tables and division tables parse, and a set of
// known coordinates resolves to the expected countries. It is the
// maintenance entry point used after editing dataset files.
func (s *Service) ValidateData() error {
	codes, err := s.candidateCodes()
	if err != nil {
		return fmt.Errorf("loading candidate list: %w", err)
	}
	if len(codes) == 0 {
		return fmt.Errorf("candidate list is empty")
	}
	fmt.Printf("      Candidate countries: %d (OK)\n", len(codes))

	short, err := s.LoadCountries(false)
	if err != nil {
		return fmt.Errorf("hydrating shortlist: %w", err)
	}
	long, err := s.LoadCountries(true)
	if err != nil {
		return fmt.Errorf("hydrating longlist: %w", err)
	}
	if len(short) != len(long) {
		return fmt.Errorf("shortlist has %d records, longlist %d", len(short), len(long))
	}
	fmt.Printf("      Bulk datasets: %d records each (OK)\n", len(long))

	cityCount, divisionCount := 0, 0
	for _, cc := range codes {
		country, err := s.LoadCountry(cc)
		if err != nil {
			return fmt.Errorf("loading country %s: %w", cc, err)
		}
		if !strings.EqualFold(country.Alpha2(), cc) {
			return fmt.Errorf("country %s: alpha-2 mismatch %q", cc, country.Alpha2())
		}
		if _, ok := country.Bounds(); !ok {
			return fmt.Errorf("country %s: missing bounding box", cc)
		}

		table, err := s.cityTable(cc)
		if err != nil {
			return fmt.Errorf("loading city table %s: %w", cc, err)
		}
		divisions, err := s.divisionTable(cc)
		if err != nil {
			return fmt.Errorf("loading division table %s: %w", cc, err)
		}
		cityCount += len(table.cities)
		divisionCount += len(divisions)

		// Every city's state code must resolve against the division
		// table when the country has one.
		if len(divisions) > 0 {
			for _, city := range table.cities {
				if _, ok := divisions[city.StateCode]; !ok {
					return fmt.Errorf("country %s: city %q references unknown division %q",
						cc, city.Name, city.StateCode)
				}
			}
		}
	}
	fmt.Printf("      Cities: %d, divisions: %d (OK)\n", cityCount, divisionCount)

	fmt.Printf("      Coordinate resolution: ")
	for _, p := range knownPoints {
		loc, err := s.ResolveCoordinates(p.lat, p.lon, ResolveOptions{})
		if err != nil {
			return fmt.Errorf("resolve(%v, %v): %w", p.lat, p.lon, err)
		}
		if loc.CountryCode != p.wantCountry {
			return fmt.Errorf("resolve(%v, %v) = %q, want %q", p.lat, p.lon, loc.CountryCode, p.wantCountry)
		}
		if p.wantCity != "" && loc.City != p.wantCity {
			return fmt.Errorf("resolve(%v, %v) city = %q, want %q", p.lat, p.lon, loc.City, p.wantCity)
		}
	}
	fmt.Printf("%d points OK\n", len(knownPoints))
	return nil
}
