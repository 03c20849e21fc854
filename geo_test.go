package countries

import (
	"errors"
	"math"
	"testing"
)

// ============================================================================
// GeoIndex / GeoResolver Tests
// ============================================================================

// ---------------------------------------------------------------------------
// Distance
// ---------------------------------------------------------------------------

func TestHaversineKm(t *testing.T) {
	washington := LatLon{Latitude: 38.9072, Longitude: -77.0369}
	newYork := LatLon{Latitude: 40.7128, Longitude: -74.006}

	dist := haversineKm(washington, newYork)
	if dist < 310 || dist > 345 {
		t.Fatalf("Washington-New York = %.1f km, want ~328", dist)
	}
	if d := haversineKm(washington, washington); d != 0 {
		t.Fatalf("zero distance = %v", d)
	}
}

// ---------------------------------------------------------------------------
// Nearest
// ---------------------------------------------------------------------------

func TestNearest_WithinMaxDistance(t *testing.T) {
	svc := New()

	match, err := svc.Nearest("us", 38.9, -77.0, 50)
	if err != nil {
		t.Fatal(err)
	}
	if match.City.Name != "Washington" {
		t.Errorf("nearest city = %q, want Washington", match.City.Name)
	}
	if match.DistanceKm > 50 {
		t.Errorf("distance %.1f exceeds the 50 km cap", match.DistanceKm)
	}
}

func TestNearest_MaxDistanceRejectsFarMatch(t *testing.T) {
	svc := New()

	// Middle of the mountain west: inside the US box, no city within 50 km.
	_, err := svc.Nearest("us", 45.0, -110.0, 50)
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}

	// Unbounded search still finds the closest city.
	match, err := svc.Nearest("us", 45.0, -110.0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if match.City.Name == "" || match.DistanceKm < 50 {
		t.Errorf("unbounded nearest = %+v", match)
	}
}

func TestNearest_EmptyTable(t *testing.T) {
	svc := New()
	_, err := svc.Nearest("au", -33.8688, 151.2093, 0)
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError for country without cities, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// WithinRadius
// ---------------------------------------------------------------------------

func TestWithinRadius_SortedAscending(t *testing.T) {
	svc := New()

	matches, err := svc.WithinRadius("us", 38.9, -77.0, 50)
	if err != nil {
		t.Fatal(err)
	}
	wantOrder := []string{"Washington", "Arlington", "Alexandria"}
	if len(matches) != len(wantOrder) {
		t.Fatalf("got %d matches, want %d", len(matches), len(wantOrder))
	}
	for i, want := range wantOrder {
		if matches[i].City.Name != want {
			t.Errorf("match[%d] = %q, want %q", i, matches[i].City.Name, want)
		}
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].DistanceKm < matches[i-1].DistanceKm {
			t.Fatal("matches not sorted ascending by distance")
		}
	}
}

func TestWithinRadius_GrowingRadiusNeverShrinksPool(t *testing.T) {
	svc := New()

	prev := -1
	for _, radius := range []float64{10, 50, 80, 300, 5000} {
		matches, err := svc.WithinRadius("us", 38.9, -77.0, radius)
		if err != nil {
			t.Fatal(err)
		}
		if len(matches) < prev {
			t.Fatalf("radius %.0f shrank the pool: %d < %d", radius, len(matches), prev)
		}
		prev = len(matches)
	}
	// Baltimore sits just beyond 50 km of the probe point.
	matches, _ := svc.WithinRadius("us", 38.9, -77.0, 80)
	found := false
	for _, m := range matches {
		found = found || m.City.Name == "Baltimore"
	}
	if !found {
		t.Error("Baltimore missing from the 80 km pool")
	}
}

// ---------------------------------------------------------------------------
// ResolveCoordinates
// ---------------------------------------------------------------------------

func TestResolveCoordinates_CityMatch(t *testing.T) {
	svc := New()

	loc, err := svc.ResolveCoordinates(38.9, -77.0, ResolveOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if loc.CountryCode != "US" || loc.CountryName != "United States" {
		t.Errorf("country = %s/%s", loc.CountryCode, loc.CountryName)
	}
	if loc.City != "Washington" || loc.RegionCode != "DC" {
		t.Errorf("city = %s, region code = %s", loc.City, loc.RegionCode)
	}
	if loc.Timezone != "America/New_York" {
		t.Errorf("timezone = %s", loc.Timezone)
	}
	if loc.Geohash == "" {
		t.Error("missing geohash")
	}
	if loc.Latitude != 38.9 || loc.Longitude != -77.0 {
		t.Error("input coordinates not carried through")
	}
}

func TestResolveCoordinates_DivisionFallback(t *testing.T) {
	svc := New()

	// Germany has no city table; the nearest division centroid supplies a
	// coarse region with no distance cutoff.
	loc, err := svc.ResolveCoordinates(52.52, 13.405, ResolveOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if loc.CountryCode != "DE" {
		t.Fatalf("country = %s, want DE", loc.CountryCode)
	}
	if loc.City != "" {
		t.Errorf("unexpected city %q", loc.City)
	}
	if loc.Region != "Berlin" || loc.RegionCode != "BE" {
		t.Errorf("region = %s/%s, want Berlin/BE", loc.Region, loc.RegionCode)
	}
}

func TestResolveCoordinates_CountryOnlyMatch(t *testing.T) {
	svc := New()

	// Australia has neither cities nor divisions; a bounding-box match
	// alone still wins, the result just omits those fields.
	loc, err := svc.ResolveCoordinates(-33.8688, 151.2093, ResolveOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if loc.CountryCode != "AU" || loc.City != "" || loc.Region != "" {
		t.Errorf("got %+v, want bare AU match", loc)
	}
}

func TestResolveCoordinates_OverlapFirstMatchWins(t *testing.T) {
	svc := New()

	// Seattle lies inside both the US and Canada bounding boxes. The
	// candidate list probes the US first; that deterministic order is the
	// documented tie-break for overlapping boxes.
	loc, err := svc.ResolveCoordinates(47.6062, -122.3321, ResolveOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if loc.CountryCode != "US" {
		t.Fatalf("country = %s, want US (candidate order)", loc.CountryCode)
	}

	// A country hint reorders the probe, so the same point attributes to
	// Canada when the caller asks for it.
	loc, err = svc.ResolveCoordinates(47.6062, -122.3321, ResolveOptions{CountryCodeHint: "CA"})
	if err != nil {
		t.Fatal(err)
	}
	if loc.CountryCode != "CA" {
		t.Fatalf("hinted country = %s, want CA", loc.CountryCode)
	}
}

func TestResolveCoordinates_HintOutsideBoxFallsBack(t *testing.T) {
	svc := New()

	loc, err := svc.ResolveCoordinates(38.9, -77.0, ResolveOptions{CountryCodeHint: "GB"})
	if err != nil {
		t.Fatal(err)
	}
	if loc.CountryCode != "US" {
		t.Fatalf("country = %s, want US after hint rejection", loc.CountryCode)
	}
}

func TestResolveCoordinates_NoMatch(t *testing.T) {
	svc := New()

	// Gulf of Guinea: outside every candidate's bounding box.
	_, err := svc.ResolveCoordinates(0, 0, ResolveOptions{})
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if nf.Kind != "coordinates" {
		t.Errorf("kind = %s", nf.Kind)
	}
}

func TestResolveCoordinates_RejectsInvalidInput(t *testing.T) {
	svc := New()

	for _, point := range [][2]float64{
		{math.NaN(), 0},
		{0, math.Inf(1)},
		{95, 0},
		{0, -181},
	} {
		_, err := svc.ResolveCoordinates(point[0], point[1], ResolveOptions{})
		var nf *NotFoundError
		if !errors.As(err, &nf) {
			t.Errorf("point %v: expected NotFoundError, got %v", point, err)
		}
	}
}
