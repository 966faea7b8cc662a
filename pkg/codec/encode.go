// Package codec converts between typed record fields and the loosely-typed
// values a document store transmits.
//
// The wire form of a value is built only from nil, bool, int64, float64,
// string, []byte, time.Time, []any and map[string]any. Encoding maps Go values
// onto that set; decoding goes the other way and is driven by the declared
// field descriptor, because the wire form cannot tell an integer-backed enum
// from a plain integer.
package codec

import (
	"fmt"
	"math"
	"reflect"
	"time"

	"github.com/aretw0/fireclass/pkg/core"
	"github.com/aretw0/fireclass/pkg/schema"
)

var timeType = reflect.TypeFor[time.Time]()

// Encode transforms v into its wire form.
//
//   - nil pointers become nil, other pointers are followed;
//   - maps with string keys become map[string]any, recursively;
//   - slices and arrays become []any, recursively ([]byte is kept as bytes);
//   - enum values become their underlying int64 or string;
//   - time.Time is kept as is but must carry an explicit zone;
//   - other scalars become int64, float64, bool or string.
//
// Everything else fails with core.ErrInvalidValue.
func Encode(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	return encodeValue(reflect.ValueOf(v))
}

func encodeValue(v reflect.Value) (any, error) {
	if !v.IsValid() {
		return nil, nil
	}
	t := v.Type()

	if t == timeType {
		ts := v.Interface().(time.Time)
		if err := checkZone(ts); err != nil {
			return nil, err
		}
		return ts, nil
	}

	if schema.IsEnum(t) {
		if e, ok := enumOf(v); ok && !e.Valid() {
			return nil, fmt.Errorf("%w: %v is not a member of %s", core.ErrInvalidValue, v.Interface(), t)
		}
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return nil, nil
		}
		return encodeValue(v.Elem())

	case reflect.Bool:
		return v.Bool(), nil

	case reflect.String:
		return v.String(), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := v.Uint()
		if u > math.MaxInt64 {
			return nil, fmt.Errorf("%w: %d overflows a 64-bit signed integer", core.ErrInvalidValue, u)
		}
		return int64(u), nil

	case reflect.Float32, reflect.Float64:
		return v.Float(), nil

	case reflect.Slice:
		if v.IsNil() {
			return nil, nil
		}
		if t.Elem().Kind() == reflect.Uint8 {
			b := make([]byte, v.Len())
			copy(b, v.Bytes())
			return b, nil
		}
		return encodeSequence(v)

	case reflect.Array:
		return encodeSequence(v)

	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return nil, fmt.Errorf("%w: map key must be a string, got %s", core.ErrInvalidValue, t.Key())
		}
		if v.IsNil() {
			return nil, nil
		}
		out := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			enc, err := encodeValue(iter.Value())
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", iter.Key().String(), err)
			}
			out[iter.Key().String()] = enc
		}
		return out, nil
	}

	return nil, fmt.Errorf("%w: cannot encode %s", core.ErrInvalidValue, t)
}

func encodeSequence(v reflect.Value) ([]any, error) {
	out := make([]any, v.Len())
	for i := range out {
		enc, err := encodeValue(v.Index(i))
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", i, err)
		}
		out[i] = enc
	}
	return out, nil
}

// checkZone rejects times without an explicit zone. time.Local stands for
// "whatever the host is set to", which is the naive case.
func checkZone(ts time.Time) error {
	if ts.Location() == time.Local {
		return fmt.Errorf("%w: timestamp %s has no explicit time zone (use UTC or a fixed zone)",
			core.ErrInvalidValue, ts.Format(time.RFC3339Nano))
	}
	return nil
}

func enumOf(v reflect.Value) (schema.Enum, bool) {
	if e, ok := v.Interface().(schema.Enum); ok {
		return e, true
	}
	if v.CanAddr() {
		e, ok := v.Addr().Interface().(schema.Enum)
		return e, ok
	}
	p := reflect.New(v.Type())
	p.Elem().Set(v)
	e, ok := p.Interface().(schema.Enum)
	return e, ok
}

// EncodeRecord encodes every field of the struct v (or *v) described by s.
func EncodeRecord(s *schema.Schema, v reflect.Value) (map[string]any, error) {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, fmt.Errorf("%w: nil %s", core.ErrInvalidValue, s.Name)
		}
		v = v.Elem()
	}
	if v.Type() != s.Type {
		return nil, fmt.Errorf("%w: %s does not match schema %s", core.ErrTypeMismatch, v.Type(), s.Name)
	}

	out := make(map[string]any, len(s.Fields))
	for _, f := range s.Fields {
		enc, err := encodeValue(v.Field(f.Index))
		if err != nil {
			return nil, core.NewFieldError(s.Name, f.Name, err, "")
		}
		out[f.Name] = enc
	}
	return out, nil
}
