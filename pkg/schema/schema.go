// Package schema resolves the declared fields of record types.
//
// A Schema is built once per Go struct type by reflection and cached; field
// lookups by stored name are constant time afterwards.
//
// Field names default to the Go field name and can be overridden with the
// `fireclass` struct tag:
//
//	type User struct {
//		record.Base
//		Email  string  `fireclass:"email_address"`
//		Nick   *string `fireclass:"nick"` // optional<string>
//		Secret string  `fireclass:"-"`    // not stored
//	}
//
// Embedded (anonymous) fields and unexported fields are never stored.
package schema

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/aretw0/fireclass/pkg/core"
)

// TagName is the struct tag consulted for stored field names.
const TagName = "fireclass"

// Schema is the ordered set of fields declared by a record type.
type Schema struct {
	Name   string
	Type   reflect.Type
	Fields []*Field
	byName map[string]*Field
}

var registry sync.Map // reflect.Type -> *Schema

// For returns the schema of T.
func For[T any]() (*Schema, error) {
	return Of(reflect.TypeFor[T]())
}

// Of returns the schema of the struct type t (or *t).
func Of(t reflect.Type) (*Schema, error) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if cached, ok := registry.Load(t); ok {
		return cached.(*Schema), nil
	}
	s, err := build(t)
	if err != nil {
		return nil, err
	}
	actual, _ := registry.LoadOrStore(t, s)
	return actual.(*Schema), nil
}

func build(t reflect.Type) (*Schema, error) {
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s is not a struct", core.ErrUnsupportedType, t)
	}

	s := &Schema{
		Name:   t.Name(),
		Type:   t,
		byName: make(map[string]*Field, t.NumField()),
	}

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Anonymous || !sf.IsExported() {
			continue
		}
		name := sf.Name
		if tag, ok := sf.Tag.Lookup(TagName); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}

		f, err := describe(name, sf.Type)
		if err != nil {
			return nil, core.NewFieldError(s.Name, sf.Name, core.ErrUnsupportedType, "%v", err)
		}
		f.GoName = sf.Name
		f.Index = i

		s.Fields = append(s.Fields, f)
		// First declaration wins when two fields share a stored name.
		if _, dup := s.byName[name]; !dup {
			s.byName[name] = f
		}
	}
	return s, nil
}

// Resolve returns the field stored under name, or a *core.FieldError
// wrapping core.ErrUnknownField.
func (s *Schema) Resolve(name string) (*Field, error) {
	if f, ok := s.byName[name]; ok {
		return f, nil
	}
	return nil, core.NewFieldError(s.Name, name, core.ErrUnknownField,
		"the supplied field path %q does not exist on %q", name, s.Name)
}

// Names returns the stored field names in declaration order.
func (s *Schema) Names() []string {
	names := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		names = append(names, f.Name)
	}
	return names
}
