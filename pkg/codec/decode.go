package codec

import (
	"fmt"
	"math"
	"reflect"
	"slices"
	"time"

	"github.com/aretw0/fireclass/pkg/core"
	"github.com/aretw0/fireclass/pkg/schema"
)

// Decode converts the wire value raw into a value of f.Type.
//
// A nil raw value decodes to nil for optional, map, slice and bytes fields and
// fails with core.ErrTypeMismatch for any other field.
func Decode(raw any, f *schema.Field) (reflect.Value, error) {
	if raw == nil {
		switch {
		case f.Optional, f.Kind == schema.KindMap, f.Kind == schema.KindSlice, f.Kind == schema.KindBytes:
			return reflect.Zero(f.Type), nil
		}
		return reflect.Value{}, fmt.Errorf("%w: null value for non-optional %s field", core.ErrTypeMismatch, f.Kind)
	}

	inner := f.Inner()
	v, err := decodeInner(raw, f, inner)
	if err != nil {
		return reflect.Value{}, err
	}
	if f.Optional {
		p := reflect.New(inner)
		p.Elem().Set(v)
		return p, nil
	}
	return v, nil
}

func decodeInner(raw any, f *schema.Field, t reflect.Type) (reflect.Value, error) {
	out := reflect.New(t).Elem()

	switch f.Kind {
	case schema.KindBool:
		b, ok := raw.(bool)
		if !ok {
			return out, mismatch(raw, f)
		}
		out.SetBool(b)

	case schema.KindString:
		s, ok := raw.(string)
		if !ok {
			return out, mismatch(raw, f)
		}
		out.SetString(s)

	case schema.KindInt:
		n, ok := asInt64(raw)
		if !ok {
			return out, mismatch(raw, f)
		}
		if err := setInt(out, n); err != nil {
			return out, err
		}

	case schema.KindFloat:
		var x float64
		switch n := raw.(type) {
		case float64:
			x = n
		case float32:
			x = float64(n)
		default:
			i, ok := asInt64(raw)
			if !ok {
				return out, mismatch(raw, f)
			}
			x = float64(i)
		}
		if out.OverflowFloat(x) {
			return out, fmt.Errorf("%w: %v overflows %s", core.ErrInvalidValue, x, t)
		}
		out.SetFloat(x)

	case schema.KindTimestamp:
		ts, ok := raw.(time.Time)
		if !ok {
			return out, mismatch(raw, f)
		}
		out.Set(reflect.ValueOf(explicitZone(ts)))

	case schema.KindBytes:
		b, ok := raw.([]byte)
		if !ok {
			return out, mismatch(raw, f)
		}
		out.SetBytes(slices.Clone(b))

	case schema.KindEnum:
		switch f.Enum {
		case schema.EnumInt:
			n, ok := asInt64(raw)
			if !ok {
				return out, mismatch(raw, f)
			}
			if err := setInt(out, n); err != nil {
				return out, err
			}
		case schema.EnumString:
			s, ok := raw.(string)
			if !ok {
				return out, mismatch(raw, f)
			}
			out.SetString(s)
		default:
			return out, fmt.Errorf("%w: enum %s has no representation", core.ErrUnsupportedType, t)
		}
		if e, ok := enumOf(out); !ok || !e.Valid() {
			return out, fmt.Errorf("%w: %v is not a member of %s", core.ErrInvalidValue, raw, t)
		}

	case schema.KindSlice:
		rv := reflect.ValueOf(raw)
		if rv.Kind() != reflect.Slice || rv.Type().Elem().Kind() == reflect.Uint8 {
			return out, mismatch(raw, f)
		}
		out = reflect.MakeSlice(t, rv.Len(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			ev, err := Decode(rv.Index(i).Interface(), f.Elem)
			if err != nil {
				return out, fmt.Errorf("index %d: %w", i, err)
			}
			out.Index(i).Set(ev)
		}

	case schema.KindMap:
		rv := reflect.ValueOf(raw)
		if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
			return out, mismatch(raw, f)
		}
		out = reflect.MakeMapWithSize(t, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			key := iter.Key().String()
			ev, err := Decode(iter.Value().Interface(), f.Elem)
			if err != nil {
				return out, fmt.Errorf("key %q: %w", key, err)
			}
			out.SetMapIndex(reflect.ValueOf(key).Convert(t.Key()), ev)
		}

	case schema.KindInvalid:
		return out, fmt.Errorf("%w: %s", core.ErrUnsupportedType, t)
	}

	return out, nil
}

// explicitZone pins a stored instant that arrived in time.Local to the fixed
// offset it had, so that it can be encoded again.
func explicitZone(ts time.Time) time.Time {
	if ts.Location() != time.Local {
		return ts
	}
	name, offset := ts.Zone()
	return ts.In(time.FixedZone(name, offset))
}

func mismatch(raw any, f *schema.Field) error {
	return fmt.Errorf("%w: received %v (%T) for %s field", core.ErrTypeMismatch, raw, raw, f)
}

// asInt64 accepts any Go integer.
func asInt64(raw any) (int64, bool) {
	switch n := raw.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return uintToInt64(uint64(n))
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return uintToInt64(n)
	}
	return 0, false
}

func uintToInt64(u uint64) (int64, bool) {
	if u > math.MaxInt64 {
		return 0, false
	}
	return int64(u), true
}

func setInt(out reflect.Value, n int64) error {
	switch out.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if out.OverflowInt(n) {
			return fmt.Errorf("%w: %d overflows %s", core.ErrInvalidValue, n, out.Type())
		}
		out.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if n < 0 || out.OverflowUint(uint64(n)) {
			return fmt.Errorf("%w: %d overflows %s", core.ErrInvalidValue, n, out.Type())
		}
		out.SetUint(uint64(n))
	default:
		return fmt.Errorf("%w: %s is not an integer type", core.ErrUnsupportedType, out.Type())
	}
	return nil
}

// DecodeRecord decodes data into the struct pointed to by dst. Keys that s
// does not declare fail with core.ErrUnknownField; declared fields missing
// from data are decoded as nil.
func DecodeRecord(s *schema.Schema, data map[string]any, dst reflect.Value) error {
	if dst.Kind() != reflect.Pointer || dst.IsNil() || dst.Elem().Type() != s.Type {
		return fmt.Errorf("%w: decode target must be a non-nil *%s", core.ErrInvalidValue, s.Name)
	}
	v := dst.Elem()

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if _, err := s.Resolve(k); err != nil {
			return err
		}
	}

	for _, f := range s.Fields {
		fv, err := Decode(data[f.Name], f)
		if err != nil {
			return core.NewFieldError(s.Name, f.Name, err, "")
		}
		v.Field(f.Index).Set(fv)
	}
	return nil
}
