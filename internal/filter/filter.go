// Package filter evaluates query predicates against encoded documents for
// stores that cannot push them down to a server.
package filter

import (
	"bytes"
	"cmp"
	"reflect"
	"time"

	"github.com/aretw0/fireclass/pkg/core"
)

// Match reports whether data satisfies every predicate.
func Match(data map[string]any, preds []core.Predicate) bool {
	for _, p := range preds {
		if !matchOne(data, p) {
			return false
		}
	}
	return true
}

func matchOne(data map[string]any, p core.Predicate) bool {
	got, ok := data[p.Field]
	if !ok {
		return false
	}

	if p.Op == core.OpArrayContains {
		elems, ok := got.([]any)
		if !ok {
			return false
		}
		for _, e := range elems {
			if c, ok := Compare(e, p.Value); ok && c == 0 {
				return true
			}
		}
		return false
	}

	c, ok := Compare(got, p.Value)
	if !ok {
		return false
	}
	switch p.Op {
	case core.OpLess:
		return c < 0
	case core.OpLessEqual:
		return c <= 0
	case core.OpEqual:
		return c == 0
	case core.OpGreaterEqual:
		return c >= 0
	case core.OpGreater:
		return c > 0
	}
	return false
}

// Compare orders two wire values of the same family. Integers and floats
// compare numerically; values of unrelated families are not comparable and
// yield ok == false. Sequences and maps only support equality.
func Compare(a, b any) (c int, ok bool) {
	if a == nil || b == nil {
		if a == nil && b == nil {
			return 0, true
		}
		return 0, false
	}

	switch x := a.(type) {
	case bool:
		y, ok := b.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case x == y:
			return 0, true
		case !x:
			return -1, true
		default:
			return 1, true
		}
	case int64, float64:
		xf, xi, xIsInt := number(x)
		yf, yi, yIsInt, ok := numberOK(b)
		if !ok {
			return 0, false
		}
		if xIsInt && yIsInt {
			return cmp.Compare(xi, yi), true
		}
		return cmp.Compare(xf, yf), true
	case string:
		y, ok := b.(string)
		if !ok {
			return 0, false
		}
		return cmp.Compare(x, y), true
	case time.Time:
		y, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return x.Compare(y), true
	case []byte:
		y, ok := b.([]byte)
		if !ok {
			return 0, false
		}
		return bytes.Compare(x, y), true
	}

	if reflect.DeepEqual(a, b) {
		return 0, true
	}
	return 0, false
}

func number(v any) (f float64, i int64, isInt bool) {
	f, i, isInt, _ = numberOK(v)
	return f, i, isInt
}

func numberOK(v any) (f float64, i int64, isInt, ok bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), n, true, true
	case float64:
		return n, 0, false, true
	}
	return 0, 0, false, false
}

// Limit truncates docs to at most n entries. A negative n means no limit.
func Limit[S ~[]E, E any](docs S, n int) S {
	if n < 0 || len(docs) <= n {
		return docs
	}
	return docs[:n]
}
