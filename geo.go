package countries

import (
	"fmt"
	"math"
	"sort"
	"strings"

	geohash "github.com/TomiHiltunen/geohash-golang"
	"github.com/golang/geo/s2"
)

// earthRadiusKm is the mean Earth radius used for great-circle distances.
const earthRadiusKm = 6371.0

// defaultMaxCityDistanceKm bounds how far ResolveCoordinates will accept a
// nearest-city match before falling back to division centroids.
const defaultMaxCityDistanceKm = 50.0

// geohashPrecision is the length of the geohash attached to resolved
// locations; 9 characters is roughly street-block granularity.
const geohashPrecision = 9

// haversineKm returns the great-circle distance between two points in
// kilometres (haversine over the unit sphere, scaled by the mean radius).
func haversineKm(from, to LatLon) float64 {
	p := s2.LatLngFromDegrees(from.Latitude, from.Longitude)
	q := s2.LatLngFromDegrees(to.Latitude, to.Longitude)
	return p.Distance(q).Radians() * earthRadiusKm
}

// validCoordinates rejects NaN, infinite and out-of-range inputs before
// they reach the spherical geometry.
func validCoordinates(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// CityMatch pairs a city with its distance from a query point.
type CityMatch struct {
	City       City
	DistanceKm float64
}

// Nearest returns the city of a country closest to the point. When
// maxDistanceKm is positive and even the closest city is farther than that,
// the result is a NotFoundError rather than a distant match.
func (s *Service) Nearest(countryCode string, lat, lon, maxDistanceKm float64) (*CityMatch, error) {
	if !validCoordinates(lat, lon) {
		return nil, notFound("coordinates", formatPoint(lat, lon))
	}
	table, err := s.cityTable(countryCode)
	if err != nil {
		return nil, err
	}

	point := LatLon{Latitude: lat, Longitude: lon}
	var best *CityMatch
	for i := range table.cities {
		c := table.cities[i]
		dist := haversineKm(point, LatLon{Latitude: c.Geo.Latitude, Longitude: c.Geo.Longitude})
		if best == nil || dist < best.DistanceKm ||
			(dist == best.DistanceKm && c.Name < best.City.Name) {
			best = &CityMatch{City: c, DistanceKm: dist}
		}
	}
	if best == nil || (maxDistanceKm > 0 && best.DistanceKm > maxDistanceKm) {
		return nil, notFound("city", formatPoint(lat, lon))
	}
	return best, nil
}

// WithinRadius returns every city of a country within radiusKm of the
// point, sorted ascending by distance (name as the deterministic tiebreak).
// An empty result is a valid answer, not an error.
func (s *Service) WithinRadius(countryCode string, lat, lon, radiusKm float64) ([]CityMatch, error) {
	if !validCoordinates(lat, lon) {
		return nil, notFound("coordinates", formatPoint(lat, lon))
	}
	table, err := s.cityTable(countryCode)
	if err != nil {
		return nil, err
	}

	point := LatLon{Latitude: lat, Longitude: lon}
	matches := make([]CityMatch, 0)
	for i := range table.cities {
		c := table.cities[i]
		dist := haversineKm(point, LatLon{Latitude: c.Geo.Latitude, Longitude: c.Geo.Longitude})
		if dist <= radiusKm {
			matches = append(matches, CityMatch{City: c, DistanceKm: dist})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].DistanceKm != matches[j].DistanceKm {
			return matches[i].DistanceKm < matches[j].DistanceKm
		}
		return matches[i].City.Name < matches[j].City.Name
	})
	return matches, nil
}

// ResolveOptions tunes ResolveCoordinates.
type ResolveOptions struct {
	// MaxCityDistanceKm caps the nearest-city search; 0 means the default
	// of 50 km.
	MaxCityDistanceKm float64
	// CountryCodeHint restricts resolution to this country first before
	// probing the candidate list.
	CountryCodeHint string
}

// GeoLocation is the derived, ephemeral result of a coordinate resolution.
type GeoLocation struct {
	CountryCode string
	CountryName string
	Region      string
	RegionCode  string
	City        string
	Metro       string
	Latitude    float64
	Longitude   float64
	Timezone    string
	Geohash     string
}

// ResolveCoordinates resolves a point to a country, and where possible a
// region and city.
//
// Candidate countries are probed in the deterministic order of the
// shortlist dataset (the hint country first when given). A candidate whose
// bounding box does not contain the point is rejected; the first candidate
// whose box does contain it wins, even when overlapping boxes would also
// have matched a later candidate and even when no city or division resolves
// inside it; the result then simply omits those fields. Within the
// matched country, the nearest city within MaxCityDistanceKm supplies the
// city and region; failing that, the nearest division centroid supplies a
// coarse region with no distance cutoff.
//
// A point outside every candidate's bounding box yields a NotFoundError,
// the recoverable no-match result.
func (s *Service) ResolveCoordinates(lat, lon float64, opts ResolveOptions) (*GeoLocation, error) {
	if !validCoordinates(lat, lon) {
		return nil, notFound("coordinates", formatPoint(lat, lon))
	}
	if opts.MaxCityDistanceKm <= 0 {
		opts.MaxCityDistanceKm = defaultMaxCityDistanceKm
	}

	codes, err := s.candidateCodes()
	if err != nil {
		return nil, err
	}
	if opts.CountryCodeHint != "" {
		if hint, err := normalizeCode(opts.CountryCodeHint); err == nil {
			ordered := make([]string, 0, len(codes)+1)
			ordered = append(ordered, hint)
			for _, cc := range codes {
				if cc != hint {
					ordered = append(ordered, cc)
				}
			}
			codes = ordered
		}
	}

	for _, cc := range codes {
		country, err := s.LoadCountry(cc)
		if err != nil {
			if _, missing := errAs[*NotFoundError](err); missing {
				continue
			}
			return nil, err
		}
		bounds, ok := country.Bounds()
		if !ok || !bounds.Contains(lat, lon) {
			continue
		}
		s.log.Debug().Str("country", cc).Float64("lat", lat).Float64("lon", lon).
			Msg("bounding box match")
		return s.locate(country, lat, lon, opts.MaxCityDistanceKm)
	}
	return nil, notFound("coordinates", formatPoint(lat, lon))
}

// locate fills in region and city details for a point already attributed to
// a country by its bounding box.
func (s *Service) locate(country *Country, lat, lon, maxCityKm float64) (*GeoLocation, error) {
	loc := &GeoLocation{
		CountryCode: country.Alpha2(),
		CountryName: country.Name(),
		Latitude:    lat,
		Longitude:   lon,
		Geohash:     geohash.EncodeWithPrecision(lat, lon, geohashPrecision),
	}

	cc := strings.ToLower(country.Alpha2())
	match, err := s.Nearest(cc, lat, lon, maxCityKm)
	if err == nil {
		loc.City = match.City.Name
		loc.Metro = match.City.Metro
		loc.Region = match.City.StateName
		loc.RegionCode = match.City.StateCode
		loc.Timezone = match.City.Geo.Timezone
		return loc, nil
	}
	if _, missing := errAs[*NotFoundError](err); !missing {
		return nil, err
	}

	divisions, err := s.divisionTable(cc)
	if err != nil {
		return nil, err
	}
	if d, ok := nearestDivision(divisions, LatLon{Latitude: lat, Longitude: lon}); ok {
		loc.Region = d.Name
		loc.RegionCode = d.Code
	}
	return loc, nil
}

// candidateCodes returns the deterministic probe order for country
// disambiguation: the document order of the shortlist dataset.
func (s *Service) candidateCodes() ([]string, error) {
	v, err := s.cache.Load("candidates", func() (any, error) {
		raw, err := s.readResource(resShortlist)
		if err != nil {
			return nil, &MalformedDataError{Resource: resShortlist, Err: err}
		}
		codes := objectKeyOrder(raw, "")
		if len(codes) == 0 {
			return nil, &MalformedDataError{Resource: resShortlist}
		}
		for i, code := range codes {
			codes[i] = strings.ToLower(code)
		}
		return codes, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}

func formatPoint(lat, lon float64) string {
	return fmt.Sprintf("%.5f,%.5f", lat, lon)
}
