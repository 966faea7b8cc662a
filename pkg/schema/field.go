package schema

import (
	"fmt"
	"reflect"
)

// Field describes one declared field of a record type.
type Field struct {
	Name     string       // stored name
	GoName   string       // Go struct field name
	Index    int          // position in the Go struct
	Type     reflect.Type // declared Go type, e.g. *string for optional<string>
	Kind     Kind         // kind of the unwrapped type
	Optional bool
	Enum     EnumRepr
	Elem     *Field // element descriptor for KindMap and KindSlice
}

// Inner returns the declared type with optionality removed.
func (f *Field) Inner() reflect.Type {
	inner, _ := UnwrapOptional(f.Type)
	return inner
}

func (f *Field) String() string {
	s := f.Kind.String()
	if f.Elem != nil {
		s = fmt.Sprintf("%s<%s>", s, f.Elem)
	}
	if f.Optional {
		s = "optional<" + s + ">"
	}
	return s
}

// UnwrapOptional strips the optional wrapper (a pointer) from t.
func UnwrapOptional(t reflect.Type) (inner reflect.Type, optional bool) {
	if t.Kind() == reflect.Pointer {
		return t.Elem(), true
	}
	return t, false
}

// describe builds the descriptor of a value of type t. name is carried into
// element descriptors so that errors point at the enclosing field.
func describe(name string, t reflect.Type) (*Field, error) {
	f := &Field{Name: name, Type: t}

	inner, optional := UnwrapOptional(t)
	if optional && inner.Kind() == reflect.Pointer {
		return nil, fmt.Errorf("nested pointer %s", t)
	}
	f.Optional = optional

	if inner == timeType {
		f.Kind = KindTimestamp
		return f, nil
	}
	if repr := enumRepr(inner); repr != EnumNone {
		f.Kind = KindEnum
		f.Enum = repr
		return f, nil
	}

	switch inner.Kind() {
	case reflect.String:
		f.Kind = KindString
	case reflect.Bool:
		f.Kind = KindBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		f.Kind = KindInt
	case reflect.Float32, reflect.Float64:
		f.Kind = KindFloat
	case reflect.Slice:
		if inner.Elem().Kind() == reflect.Uint8 {
			f.Kind = KindBytes
			return f, nil
		}
		elem, err := describe(name, inner.Elem())
		if err != nil {
			return nil, err
		}
		f.Kind = KindSlice
		f.Elem = elem
	case reflect.Map:
		if inner.Key().Kind() != reflect.String {
			return nil, fmt.Errorf("map key must be a string, got %s", inner.Key())
		}
		elem, err := describe(name, inner.Elem())
		if err != nil {
			return nil, err
		}
		f.Kind = KindMap
		f.Elem = elem
	default:
		return nil, fmt.Errorf("%s", t)
	}
	return f, nil
}
