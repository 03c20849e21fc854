package countries

import "strings"

// AttributeTree is the parsed shape of a dataset record: string keys over
// scalars, nested trees and ordered sequences ([]any). It is an alias, not a
// defined type, so values unmarshalled by encoding/json-compatible decoders
// traverse without conversion.
type AttributeTree = map[string]any

// Resolve reads the value at a dot-separated path inside root, which may be
// an AttributeTree or a sequence. If any segment is absent, or the current
// value cannot be traversed further, fallback is returned.
//
// A segment equal to "*" expands over the current sequence: the remaining
// path is applied to every element independently and the results are
// collected in order (elements where the path is absent are skipped). When
// the remaining path contains another "*", one level of sequence nesting is
// collapsed so the result stays a flat sequence.
//
// An empty path returns root unchanged. A first segment that resolves to a
// plain scalar short-circuits to that scalar even when more segments remain;
// datasets use scalar aliases (a "name" field holding a string rather than a
// structured block) and the alias wins over further descent.
func Resolve(root any, path string, fallback any) any {
	if path == "" {
		return root
	}
	segs := strings.Split(path, ".")
	if len(segs) > 1 {
		if m, ok := root.(AttributeTree); ok {
			if v, ok := m[segs[0]]; ok && !traversable(v) {
				return v
			}
		}
	}
	v, ok := resolveSegments(root, segs)
	if !ok {
		return fallback
	}
	return v
}

// Set writes value at a dot-separated path and returns the new root. The
// descent is copy-on-write: every mapping along the path is shallow-copied
// (intermediate mappings are created where missing) while unrelated branches
// keep pointing at the original nodes. The input root is never mutated.
//
// An empty path replaces the root with value.
func Set(root any, path string, value any) any {
	if path == "" {
		return value
	}
	return setSegments(root, strings.Split(path, "."), value)
}

func resolveSegments(node any, segs []string) (any, bool) {
	for i, seg := range segs {
		if seg == "*" {
			seq, ok := node.([]any)
			if !ok {
				return nil, false
			}
			rest := segs[i+1:]
			out := make([]any, 0, len(seq))
			for _, el := range seq {
				if len(rest) == 0 {
					out = append(out, el)
					continue
				}
				if v, ok := resolveSegments(el, rest); ok {
					out = append(out, v)
				}
			}
			if containsWildcard(rest) {
				out = collapse(out)
			}
			return out, true
		}

		m, ok := node.(AttributeTree)
		if !ok {
			return nil, false
		}
		v, ok := m[seg]
		if !ok {
			return nil, false
		}
		node = v
	}
	return node, true
}

func setSegments(node any, segs []string, value any) any {
	if len(segs) == 0 {
		return value
	}
	prev, _ := node.(AttributeTree)
	next := make(AttributeTree, len(prev)+1)
	for k, v := range prev {
		next[k] = v
	}
	next[segs[0]] = setSegments(next[segs[0]], segs[1:], value)
	return next
}

// traversable reports whether a value supports further path descent.
func traversable(v any) bool {
	switch v.(type) {
	case AttributeTree, []any:
		return true
	}
	return false
}

func containsWildcard(segs []string) bool {
	for _, s := range segs {
		if s == "*" {
			return true
		}
	}
	return false
}

// collapse flattens one level of sequence nesting, keeping scalars as-is.
func collapse(seq []any) []any {
	out := make([]any, 0, len(seq))
	for _, el := range seq {
		if inner, ok := el.([]any); ok {
			out = append(out, inner...)
			continue
		}
		out = append(out, el)
	}
	return out
}
