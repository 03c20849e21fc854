package countries

import (
	"bytes"
	"embed"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
)

//go:embed data
var datasetFS embed.FS

// Dataset resource layout, relative to the data root. Country and list
// datasets are mandatory for their codes; cities, divisions, flags and
// translations are optional enrichments.
const (
	resShortlist    = "shortlist.json"
	resLonglist     = "longlist.json"
	resCountries    = "countries"    // countries/<cc>.json
	resCities       = "cities"       // cities/<cc>.json
	resDivisions    = "divisions"    // divisions/<cc>.yaml
	resFlags        = "flags"        // flags/<cc>.txt
	resTranslations = "translations" // translations/<cc>.json
)

// readResource returns the raw bytes of a dataset resource. The configured
// data directory is consulted first so locally regenerated files shadow the
// embedded copies; the embedded filesystem is the normal runtime source.
func (s *Service) readResource(rel string) ([]byte, error) {
	if s.cfg.DataDir != "" {
		b, err := os.ReadFile(filepath.Join(s.cfg.DataDir, filepath.FromSlash(rel)))
		if err == nil {
			return b, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	f, err := datasetFS.Open("data/" + rel)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// resourceExists reports whether a dataset resource is available without
// reading it fully. Used by probes that treat absence as "not available".
func (s *Service) resourceExists(rel string) bool {
	if s.cfg.DataDir != "" {
		if _, err := os.Stat(filepath.Join(s.cfg.DataDir, filepath.FromSlash(rel))); err == nil {
			return true
		}
	}
	f, err := datasetFS.Open("data/" + rel)
	if err != nil {
		return false
	}
	f.Close()
	return true
}

// normalizeCode lowercases and validates a 2-letter country code used to
// address per-country resources.
func normalizeCode(code string) (string, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if len(code) != 2 {
		return "", notFound("country", code)
	}
	for _, r := range code {
		if r < 'a' || r > 'z' {
			return "", notFound("country", code)
		}
	}
	return code, nil
}

// decodeTree parses raw JSON into an attribute tree. A parse failure or a
// structurally empty document is a MalformedDataError: mandatory datasets
// never degrade to an empty record.
func decodeTree(resource string, raw []byte) (AttributeTree, error) {
	var tree AttributeTree
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, &MalformedDataError{Resource: resource, Err: err}
	}
	if len(tree) == 0 {
		return nil, &MalformedDataError{Resource: resource}
	}
	return tree, nil
}

// objectKeyOrder returns the keys of the JSON object at the given dot path
// in document order. Parsed trees are Go maps and forget insertion order,
// but the "first available" fallbacks (native name, currency, language) are
// defined by it, so hydration captures the order from the raw bytes.
//
// An empty path addresses the top-level object. A path that does not lead
// to an object yields nil.
func objectKeyOrder(raw []byte, path string) []string {
	var want []string
	if path != "" {
		want = strings.Split(path, ".")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	var out []string
	if err := captureKeys(dec, nil, want, &out); err != nil {
		return nil
	}
	return out
}

// captureKeys walks one JSON value from dec, appending the keys of the
// object located at the wanted path to out.
func captureKeys(dec *json.Decoder, path, want []string, out *[]string) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return nil // scalar, nothing beneath
	}
	switch delim {
	case '{':
		matched := equalPath(path, want)
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return err
			}
			key, _ := keyTok.(string)
			if matched {
				*out = append(*out, key)
			}
			child := append(append([]string(nil), path...), key)
			if err := captureKeys(dec, child, want, out); err != nil {
				return err
			}
		}
		_, err = dec.Token() // closing '}'
		return err
	case '[':
		for dec.More() {
			child := append(append([]string(nil), path...), "*")
			if err := captureKeys(dec, child, want, out); err != nil {
				return err
			}
		}
		_, err = dec.Token() // closing ']'
		return err
	}
	return nil
}

func equalPath(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
