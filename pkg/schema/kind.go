package schema

import (
	"reflect"
	"time"
)

// Kind is the semantic type tag of a field. It is a closed set: every
// switch over Kind in this module is exhaustive.
type Kind int

const (
	KindInvalid Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindTimestamp
	KindBytes
	KindEnum
	KindMap
	KindSlice
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindBool:
		return "boolean"
	case KindTimestamp:
		return "timestamp"
	case KindBytes:
		return "bytes"
	case KindEnum:
		return "enum"
	case KindMap:
		return "map"
	case KindSlice:
		return "slice"
	default:
		return "invalid"
	}
}

// EnumRepr is the wire representation of an enum type.
type EnumRepr int

const (
	EnumNone EnumRepr = iota
	EnumInt
	EnumString
)

// Enum is implemented by named integer or string types that model a closed
// set of members, such as
//
//	type Membership int
//
//	const (
//		MembershipNone Membership = iota + 1
//		MembershipIntermediate
//		MembershipFull
//	)
//
//	func (m Membership) Valid() bool { return m >= MembershipNone && m <= MembershipFull }
//
// Enum values are stored as their underlying scalar. Valid reports whether
// the receiver is one of the declared members; decoding a stored scalar that
// is not a member fails.
type Enum interface {
	Valid() bool
}

var (
	timeType = reflect.TypeFor[time.Time]()
	enumType = reflect.TypeFor[Enum]()
)

// IsEnum reports whether t (or *t) implements Enum and has an integer or
// string underlying type.
func IsEnum(t reflect.Type) bool {
	return enumRepr(t) != EnumNone
}

func enumRepr(t reflect.Type) EnumRepr {
	if t.Kind() == reflect.Pointer {
		return EnumNone
	}
	if !t.Implements(enumType) && !reflect.PointerTo(t).Implements(enumType) {
		return EnumNone
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return EnumInt
	case reflect.String:
		return EnumString
	}
	return EnumNone
}
