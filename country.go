package countries

import (
	"sort"
	"strconv"
)

// Mandatory country record paths checked at construction. Everything else
// in the tree is optional and resolves to zero values when absent.
const (
	pathNameCommon   = "name.common"
	pathNameOfficial = "name.official"
	pathNameNative   = "name.native"
	pathAlpha2       = "iso_3166_1_alpha2"
	pathAlpha3       = "iso_3166_1_alpha3"
	pathNumeric      = "iso_3166_1_numeric"
)

// Blocks whose "first available" fallback is defined by document key order.
var orderedBlocks = []string{pathNameNative, "currency", "languages"}

// Currency is one entry of a country's currency mapping.
type Currency struct {
	Code   string
	Name   string
	Symbol string
}

// LatLon is a coordinate pair in degrees.
type LatLon struct {
	Latitude  float64
	Longitude float64
}

// BoundingBox is a country's recorded [min,max] latitude/longitude box.
// Boxes of different countries can overlap; containment is necessary but
// not sufficient evidence that a point belongs to the country.
type BoundingBox struct {
	MinLatitude  float64
	MaxLatitude  float64
	MinLongitude float64
	MaxLongitude float64
}

// Contains reports whether the point lies inside the box, inclusive.
func (b BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.MinLatitude && lat <= b.MaxLatitude &&
		lon >= b.MinLongitude && lon <= b.MaxLongitude
}

// Country is a validated country record over an attribute tree. The tree is
// owned exclusively by the record: Set replaces it copy-on-write, so trees
// are never shared between records.
//
// Typed accessors are pure projections through Resolve with documented
// defaults. Unmodeled and custom fields stay reachable through Resolve/Set.
type Country struct {
	tree  AttributeTree
	order map[string][]string // document key order per ordered block
}

// NewCountry validates a parsed tree and wraps it as a Country. It fails
// with a ValidationError when a mandatory field is missing or empty, before
// any accessor is callable.
//
// When constructed from an already-parsed tree the original document key
// order is unknown; "first available" fallbacks then use lexicographic key
// order, which keeps them deterministic. Records hydrated from raw dataset
// bytes preserve true document order.
func NewCountry(tree AttributeTree) (*Country, error) {
	c := &Country{tree: tree}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// hydrateCountry parses raw country JSON, captures document key order for
// the order-sensitive blocks and validates the record.
func hydrateCountry(resource string, raw []byte) (*Country, error) {
	tree, err := decodeTree(resource, raw)
	if err != nil {
		return nil, err
	}
	c, err := NewCountry(tree)
	if err != nil {
		return nil, err
	}
	c.order = make(map[string][]string, len(orderedBlocks))
	for _, block := range orderedBlocks {
		if keys := objectKeyOrder(raw, block); len(keys) > 0 {
			c.order[block] = keys
		}
	}
	return c, nil
}

func (c *Country) validate() error {
	if asString(c.Resolve(pathNameCommon, nil)) == "" {
		return &ValidationError{Field: pathNameCommon, Reason: "must be a non-empty string"}
	}
	if asString(c.Resolve(pathNameOfficial, nil)) == "" {
		return &ValidationError{Field: pathNameOfficial, Reason: "must be a non-empty string"}
	}
	if len(asString(c.Resolve(pathAlpha2, nil))) != 2 {
		return &ValidationError{Field: pathAlpha2, Reason: "must be exactly 2 characters"}
	}
	if len(asString(c.Resolve(pathAlpha3, nil))) != 3 {
		return &ValidationError{Field: pathAlpha3, Reason: "must be exactly 3 characters"}
	}

	native, _ := c.Resolve(pathNameNative, nil).(AttributeTree)
	valid := false
	for _, entry := range native {
		if m, ok := entry.(AttributeTree); ok {
			if asString(m["common"]) != "" && asString(m["official"]) != "" {
				valid = true
				break
			}
		}
	}
	if !valid {
		return &ValidationError{Field: pathNameNative, Reason: "needs at least one common+official name pair"}
	}
	return nil
}

// Resolve reads a dot path from the record's tree, returning fallback when
// the path is absent.
func (c *Country) Resolve(path string, fallback any) any {
	return Resolve(c.tree, path, fallback)
}

// Set writes a dot path copy-on-write and swaps in the resulting tree. The
// previous tree is left untouched, so values read from it earlier stay valid.
func (c *Country) Set(path string, value any) {
	c.tree, _ = Set(c.tree, path, value).(AttributeTree)
}

// Name returns the common name.
func (c *Country) Name() string { return asString(c.Resolve(pathNameCommon, "")) }

// OfficialName returns the official name.
func (c *Country) OfficialName() string { return asString(c.Resolve(pathNameOfficial, "")) }

// Alpha2 returns the ISO 3166-1 alpha-2 code, fixed length 2.
func (c *Country) Alpha2() string { return asString(c.Resolve(pathAlpha2, "")) }

// Alpha3 returns the ISO 3166-1 alpha-3 code, fixed length 3.
func (c *Country) Alpha3() string { return asString(c.Resolve(pathAlpha3, "")) }

// Numeric returns the ISO 3166-1 numeric code as its zero-padded 3-digit
// string form, or "" when absent.
func (c *Country) Numeric() string { return asString(c.Resolve(pathNumeric, "")) }

// NativeName returns the native common name for the given language code.
// Without a code, or when the code is absent from the native block, it
// falls back to the first language in document order.
func (c *Country) NativeName(languageCode ...string) string {
	return c.nativeField("common", languageCode)
}

// NativeOfficialName is NativeName for the official native name.
func (c *Country) NativeOfficialName(languageCode ...string) string {
	return c.nativeField("official", languageCode)
}

func (c *Country) nativeField(field string, languageCode []string) string {
	native, _ := c.Resolve(pathNameNative, nil).(AttributeTree)
	if len(native) == 0 {
		return ""
	}
	if len(languageCode) > 0 {
		if entry, ok := native[languageCode[0]].(AttributeTree); ok {
			return asString(entry[field])
		}
	}
	first := c.firstKey(pathNameNative, native)
	if entry, ok := native[first].(AttributeTree); ok {
		return asString(entry[field])
	}
	return ""
}

// Region returns geo.region ("Americas", "Europe", ...).
func (c *Country) Region() string { return asString(c.Resolve("geo.region", "")) }

// Subregion returns geo.subregion.
func (c *Country) Subregion() string { return asString(c.Resolve("geo.subregion", "")) }

// Continents returns the continent list, empty when unrecorded.
func (c *Country) Continents() []string { return asStringSlice(c.Resolve("geo.continent", nil)) }

// Borders returns the alpha-3 codes of bordering countries.
func (c *Country) Borders() []string { return asStringSlice(c.Resolve("geo.borders", nil)) }

// Area returns the land area in square kilometres, 0 when unrecorded.
func (c *Country) Area() float64 {
	f, _ := asFloat(c.Resolve("geo.area", nil))
	return f
}

// Bounds returns the recorded bounding box. ok is false when any of the
// four coordinates is missing.
func (c *Country) Bounds() (BoundingBox, bool) {
	var b BoundingBox
	var ok [4]bool
	b.MinLatitude, ok[0] = asFloat(c.Resolve("geo.min_latitude", nil))
	b.MaxLatitude, ok[1] = asFloat(c.Resolve("geo.max_latitude", nil))
	b.MinLongitude, ok[2] = asFloat(c.Resolve("geo.min_longitude", nil))
	b.MaxLongitude, ok[3] = asFloat(c.Resolve("geo.max_longitude", nil))
	return b, ok[0] && ok[1] && ok[2] && ok[3]
}

// Centroid returns the recorded center point of the country, if present.
func (c *Country) Centroid() (LatLon, bool) {
	lat, okLat := asFloat(c.Resolve("geo.latitude", nil))
	lon, okLon := asFloat(c.Resolve("geo.longitude", nil))
	return LatLon{Latitude: lat, Longitude: lon}, okLat && okLon
}

// Currencies returns the full currency mapping keyed by currency code.
func (c *Country) Currencies() map[string]Currency {
	block, _ := c.Resolve("currency", nil).(AttributeTree)
	out := make(map[string]Currency, len(block))
	for code, entry := range block {
		m, _ := entry.(AttributeTree)
		out[code] = Currency{Code: code, Name: asString(m["name"]), Symbol: asString(m["symbol"])}
	}
	return out
}

// Currency returns one currency. Without a code argument, or when the code
// is not in the mapping, the first currency in document order is returned.
func (c *Country) Currency(code ...string) (Currency, bool) {
	block, _ := c.Resolve("currency", nil).(AttributeTree)
	if len(block) == 0 {
		return Currency{}, false
	}
	pick := ""
	if len(code) > 0 {
		if _, ok := block[code[0]]; ok {
			pick = code[0]
		}
	}
	if pick == "" {
		pick = c.firstKey("currency", block)
	}
	m, _ := block[pick].(AttributeTree)
	return Currency{Code: pick, Name: asString(m["name"]), Symbol: asString(m["symbol"])}, true
}

// Languages returns the language mapping (ISO 639-3 code to name).
func (c *Country) Languages() map[string]string {
	block, _ := c.Resolve("languages", nil).(AttributeTree)
	out := make(map[string]string, len(block))
	for code, name := range block {
		out[code] = asString(name)
	}
	return out
}

// Language returns one language name, falling back to the first language in
// document order like Currency.
func (c *Country) Language(code ...string) (string, bool) {
	block, _ := c.Resolve("languages", nil).(AttributeTree)
	if len(block) == 0 {
		return "", false
	}
	if len(code) > 0 {
		if name, ok := block[code[0]]; ok {
			return asString(name), true
		}
	}
	return asString(block[c.firstKey("languages", block)]), true
}

// CallingCodes returns the international dialling codes.
func (c *Country) CallingCodes() []string {
	return asStringSlice(c.Resolve("dialling.calling_code", nil))
}

// CallingCode returns the first dialling code, "" when unrecorded.
func (c *Country) CallingCode() string {
	if codes := c.CallingCodes(); len(codes) > 0 {
		return codes[0]
	}
	return ""
}

// firstKey returns the first key of an ordered block: document order when
// the record was hydrated from raw bytes, lexicographic otherwise.
func (c *Country) firstKey(block string, m AttributeTree) string {
	for _, k := range c.order[block] {
		if _, ok := m[k]; ok {
			return k
		}
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) == 0 {
		return ""
	}
	return keys[0]
}

// asString returns v when it is a string, "" otherwise.
func asString(v any) string {
	s, _ := v.(string)
	return s
}

// asFloat coerces JSON and YAML numeric shapes to float64.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

// asStringSlice converts a parsed []any of strings, skipping non-strings.
func asStringSlice(v any) []string {
	seq, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(seq))
	for _, el := range seq {
		if s, ok := el.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
