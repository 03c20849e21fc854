// Package countries resolves static reference data about countries, their
// administrative divisions and cities.
//
// Country datasets are embedded in the library and loaded lazily through a
// process-wide cache. Records are generic attribute trees with typed
// accessors on top, so both well-known fields and custom extensions can be
// read (and rewritten copy-on-write) through dot paths:
//
//	us, err := countries.LoadCountry("us")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(us.Name(), us.Resolve("geo.region", ""))
//
// Collections can be filtered with typed comparison operators:
//
//	all, _ := countries.LoadCountries(true)
//	european := countries.Where(all, "geo.region", "Europe")
//
// Coordinates resolve to a country, region and city using bounding-box
// candidate selection and great-circle distance over the embedded city
// tables:
//
//	loc, err := countries.ResolveCoordinates(38.9, -77.0, countries.ResolveOptions{})
//
// The resolver is a best-effort approximation built on bounding boxes and
// nearest-city search. It is not authoritative reverse geocoding.
package countries
