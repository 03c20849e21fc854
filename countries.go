package countries

import (
	"errors"
	"io/fs"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// Config contains configuration for a Service.
type Config struct {
	// DataDir optionally overrides the embedded datasets: files found
	// under it shadow their embedded counterparts.
	DataDir string
	// Cache is the dataset cache the service populates. When nil, the
	// service owns a fresh one.
	Cache *DatasetCache
	// Logger receives debug events (dataset loads, resolve probes).
	// Defaults to a no-op logger so the library stays silent.
	Logger zerolog.Logger
}

// Option is a functional option for configuring a Service.
type Option func(*Config)

// WithDataDir sets the override directory for dataset files.
func WithDataDir(dir string) Option {
	return func(c *Config) { c.DataDir = dir }
}

// WithCache injects a dataset cache, letting tests and embedding
// applications reset or share cache state deterministically.
func WithCache(cache *DatasetCache) Option {
	return func(c *Config) { c.Cache = cache }
}

// WithLogger sets the structured logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Config) { c.Logger = logger }
}

// Service resolves reference data. All methods are safe for concurrent use;
// the only shared mutable state is the dataset cache.
type Service struct {
	cfg   *Config
	cache *DatasetCache
	log   zerolog.Logger
}

// New creates a Service.
func New(opts ...Option) *Service {
	cfg := &Config{Logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Cache == nil {
		cfg.Cache = NewDatasetCache()
	}
	return &Service{cfg: cfg, cache: cfg.Cache, log: cfg.Logger}
}

// Cache exposes the service's dataset cache for explicit invalidation.
func (s *Service) Cache() *DatasetCache { return s.cache }

// LoadCountry returns the hydrated country record for an alpha-2 code
// (case-insensitive). Repeat calls return the cached record until
// invalidation. Unresolvable codes yield a NotFoundError.
func (s *Service) LoadCountry(code string) (*Country, error) {
	cc, err := normalizeCode(code)
	if err != nil {
		return nil, err
	}
	resource := resCountries + "/" + cc + ".json"
	v, err := s.cache.Load("country:"+cc, func() (any, error) {
		raw, err := s.readResource(resource)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, notFound("country", cc)
			}
			return nil, err
		}
		s.log.Debug().Str("country", cc).Msg("hydrating country dataset")
		return hydrateCountry(resource, raw)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Country), nil
}

// LoadCountryRaw returns the parsed but unhydrated attribute tree for a
// country code. The raw variant is cached under its own identifier so its
// tree never aliases a hydrated record's tree.
func (s *Service) LoadCountryRaw(code string) (AttributeTree, error) {
	cc, err := normalizeCode(code)
	if err != nil {
		return nil, err
	}
	resource := resCountries + "/" + cc + ".json"
	v, err := s.cache.Load("country:"+cc+"#raw", func() (any, error) {
		raw, err := s.readResource(resource)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, notFound("country", cc)
			}
			return nil, err
		}
		return decodeTree(resource, raw)
	})
	if err != nil {
		return nil, err
	}
	return v.(AttributeTree), nil
}

// LoadCountries returns every country of the bulk dataset as hydrated
// records, in the document order of the list. longform selects the fully
// detailed dataset over the minimal one.
func (s *Service) LoadCountries(longform bool) ([]*Country, error) {
	resource, id := resShortlist, "shortlist"
	if longform {
		resource, id = resLonglist, "longlist"
	}
	v, err := s.cache.Load(id, func() (any, error) {
		raw, err := s.readResource(resource)
		if err != nil {
			return nil, &MalformedDataError{Resource: resource, Err: err}
		}
		return hydrateCountryList(resource, raw)
	})
	if err != nil {
		return nil, err
	}
	return v.([]*Country), nil
}

// LoadCountriesRaw returns the bulk dataset as raw attribute trees keyed by
// lowercased alpha-2 code.
func (s *Service) LoadCountriesRaw(longform bool) (map[string]AttributeTree, error) {
	resource, id := resShortlist, "shortlist#raw"
	if longform {
		resource, id = resLonglist, "longlist#raw"
	}
	v, err := s.cache.Load(id, func() (any, error) {
		raw, err := s.readResource(resource)
		if err != nil {
			return nil, &MalformedDataError{Resource: resource, Err: err}
		}
		var records map[string]AttributeTree
		if err := json.Unmarshal(raw, &records); err != nil {
			return nil, &MalformedDataError{Resource: resource, Err: err}
		}
		if len(records) == 0 {
			return nil, &MalformedDataError{Resource: resource}
		}
		out := make(map[string]AttributeTree, len(records))
		for code, tree := range records {
			out[strings.ToLower(code)] = tree
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]AttributeTree), nil
}

// hydrateCountryList parses a bulk dataset (object keyed by country code)
// into hydrated records preserving document order.
func hydrateCountryList(resource string, raw []byte) ([]*Country, error) {
	var records map[string]json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, &MalformedDataError{Resource: resource, Err: err}
	}
	if len(records) == 0 {
		return nil, &MalformedDataError{Resource: resource}
	}
	countries := make([]*Country, 0, len(records))
	for _, code := range objectKeyOrder(raw, "") {
		entry, ok := records[code]
		if !ok {
			continue
		}
		c, err := hydrateCountry(resource+"#"+code, entry)
		if err != nil {
			return nil, err
		}
		countries = append(countries, c)
	}
	return countries, nil
}

// Flag returns the flag resource for a country, or "" when the dataset has
// none: flags are an optional enrichment, absence is not an error.
func (s *Service) Flag(code string) (string, error) {
	cc, err := normalizeCode(code)
	if err != nil {
		return "", err
	}
	raw, err := s.readResource(resFlags + "/" + cc + ".txt")
	if err != nil {
		return "", nil
	}
	return strings.TrimSpace(string(raw)), nil
}

// Translations returns the translated country names keyed by language code,
// empty when the country has no translation dataset.
func (s *Service) Translations(code string) (map[string]string, error) {
	cc, err := normalizeCode(code)
	if err != nil {
		return nil, err
	}
	resource := resTranslations + "/" + cc + ".json"
	v, err := s.cache.Load("translations:"+cc, func() (any, error) {
		raw, err := s.readResource(resource)
		if err != nil {
			return map[string]string{}, nil
		}
		var translations map[string]string
		if err := json.Unmarshal(raw, &translations); err != nil {
			return nil, &MalformedDataError{Resource: resource, Err: err}
		}
		return translations, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]string), nil
}

// Shared default service backing the package-level convenience functions.
var (
	defaultService     *Service
	defaultServiceOnce sync.Once
)

// Default returns the shared Service, creating it on first call.
func Default() *Service {
	defaultServiceOnce.Do(func() {
		defaultService = New()
	})
	return defaultService
}

// LoadCountry is LoadCountry on the shared Service.
func LoadCountry(code string) (*Country, error) { return Default().LoadCountry(code) }

// LoadCountryRaw is LoadCountryRaw on the shared Service.
func LoadCountryRaw(code string) (AttributeTree, error) { return Default().LoadCountryRaw(code) }

// LoadCountries is LoadCountries on the shared Service.
func LoadCountries(longform bool) ([]*Country, error) { return Default().LoadCountries(longform) }

// FindCity is FindCity on the shared Service.
func FindCity(name, countryCode string, opts ...CityQuery) (*City, error) {
	return Default().FindCity(name, countryCode, opts...)
}

// ResolveCoordinates is ResolveCoordinates on the shared Service.
func ResolveCoordinates(lat, lon float64, opts ResolveOptions) (*GeoLocation, error) {
	return Default().ResolveCoordinates(lat, lon, opts)
}
