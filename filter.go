package countries

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Operator is a closed comparison variant for Where. Using a typed constant
// instead of a free-form string makes an invalid operator a compile-time
// error rather than a silent default to equality.
type Operator int

const (
	Eq Operator = iota // ==
	Ne                 // !=
	Lt                 // <
	Gt                 // >
	Le                 // <=
	Ge                 // >=
)

var operatorNames = map[Operator]string{
	Eq: "==", Ne: "!=", Lt: "<", Gt: ">", Le: "<=", Ge: ">=",
}

func (op Operator) String() string {
	if s, ok := operatorNames[op]; ok {
		return s
	}
	return fmt.Sprintf("Operator(%d)", int(op))
}

// ParseOperator converts an operator literal ("==", "<", ...) to its typed
// form, for callers that receive operators as configuration strings.
func ParseOperator(s string) (Operator, error) {
	for op, name := range operatorNames {
		if s == name {
			return op, nil
		}
	}
	return Eq, fmt.Errorf("unknown filter operator %q", s)
}

// Where filters records whose resolved path equals value. It is shorthand
// for WhereOp with Eq.
func Where(records []*Country, path string, value any) []*Country {
	return WhereOp(records, path, Eq, value)
}

// WhereOp returns the records whose value at path compares true against
// value under op. Records where the path is absent are excluded regardless
// of the operator. The input is never mutated and relative order of matches
// is preserved.
//
// Ordered comparisons (Lt, Gt, Le, Ge) compare the textual representation
// of both sides lexicographically, not numerically. Zero-padded fixed-width
// values such as ISO numeric codes ("826", "840") order correctly under
// this model; variable-width numbers do not ("9" sorts above "840"). This
// is long-standing documented behavior that callers depend on; do not
// replace it with numeric comparison.
func WhereOp(records []*Country, path string, op Operator, value any) []*Country {
	want := textual(value)
	return lo.Filter(records, func(c *Country, _ int) bool {
		got, ok := filterValue(c, path)
		if !ok {
			return false
		}
		return compareTextual(textual(got), op, want)
	})
}

// filterValue resolves a record value for filtering: raw tree lookup first,
// then the derived-field shortcuts for paths that are computed by accessors
// rather than stored verbatim in the tree.
func filterValue(c *Country, path string) (any, bool) {
	if v := c.Resolve(path, absentValue); v != absentValue {
		return v, true
	}
	if derive, ok := derivedPaths[path]; ok {
		return derive(c)
	}
	return nil, false
}

// absentValue marks "path did not resolve"; distinct from every dataset
// value including nil.
var absentValue any = &struct{ absent bool }{true}

// derivedPaths maps filterable paths to method-backed derived fields that
// have no single location in the raw tree.
var derivedPaths = map[string]func(*Country) (any, bool){
	"name.native.common": func(c *Country) (any, bool) {
		v := c.NativeName()
		return v, v != ""
	},
	"name.native.official": func(c *Country) (any, bool) {
		v := c.NativeOfficialName()
		return v, v != ""
	},
	"currency.code": func(c *Country) (any, bool) {
		cur, ok := c.Currency()
		return cur.Code, ok
	},
	"language": func(c *Country) (any, bool) {
		name, ok := c.Language()
		return name, ok
	},
	"calling_code": func(c *Country) (any, bool) {
		v := c.CallingCode()
		return v, v != ""
	},
}

func compareTextual(got string, op Operator, want string) bool {
	cmp := strings.Compare(got, want)
	switch op {
	case Eq:
		return cmp == 0
	case Ne:
		return cmp != 0
	case Lt:
		return cmp < 0
	case Gt:
		return cmp > 0
	case Le:
		return cmp <= 0
	case Ge:
		return cmp >= 0
	}
	return false
}

// textual renders a resolved value the way comparisons see it. Floats use
// the shortest round-trip form so integral values read naturally ("840",
// not "8.4e+02").
func textual(v any) string {
	switch n := v.(type) {
	case string:
		return n
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(n)
	default:
		return fmt.Sprintf("%v", v)
	}
}
