package binding

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// tagName is the struct tag consulted when reading fields by name.
const tagName = "bind"

// keyed is implemented by contexts that can enumerate their properties.
type keyed interface {
	Keys() []string
}

// Lookup reads a named value from ctx regardless of its shape. The second
// result is false when ctx is nil, the shape is unsupported, or the name is
// absent.
func Lookup(ctx any, name string) (any, bool) {
	switch c := ctx.(type) {
	case nil:
		return nil, false
	case *Observable:
		if !c.Has(name) {
			return nil, false
		}
		return c.Get(name), true
	case Context:
		v := c.Get(name)
		return v, v != nil
	case map[string]any:
		v, ok := c[name]
		return v, ok
	}

	rv := reflect.ValueOf(ctx)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		v := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if !v.IsValid() {
			return nil, false
		}
		return v.Interface(), true
	case reflect.Struct:
		f, ok := field(rv, name)
		if !ok {
			return nil, false
		}
		return f.Interface(), true
	}
	return nil, false
}

// Assign writes a named value into ctx. Contexts with a Set method are
// written through it so change notification fires; plain maps are mutated
// directly; addressable structs have the matching exported field set.
func Assign(ctx any, name string, value any) error {
	switch c := ctx.(type) {
	case nil:
		return fmt.Errorf("binding: cannot assign %q on a nil context", name)
	case Context:
		c.Set(name, value)
		return nil
	case map[string]any:
		if c == nil {
			return fmt.Errorf("binding: cannot assign %q on a nil map", name)
		}
		c[name] = value
		return nil
	}

	rv := reflect.ValueOf(ctx)
	switch {
	case rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String:
		if rv.IsNil() {
			return fmt.Errorf("binding: cannot assign %q on a nil map", name)
		}
		val, err := convert(value, rv.Type().Elem())
		if err != nil {
			return fmt.Errorf("binding: assign %q: %w", name, err)
		}
		rv.SetMapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()), val)
		return nil
	case rv.Kind() == reflect.Pointer && !rv.IsNil() && rv.Elem().Kind() == reflect.Struct:
		f, ok := field(rv.Elem(), name)
		if !ok || !f.CanSet() {
			return fmt.Errorf("binding: %T has no settable field %q", ctx, name)
		}
		val, err := convert(value, f.Type())
		if err != nil {
			return fmt.Errorf("binding: assign %q: %w", name, err)
		}
		f.Set(val)
		return nil
	}
	return fmt.Errorf("binding: unsupported context type %T", ctx)
}

// Fields returns the enumerable properties of src: the entries of a map, the
// keys of a keyed Context, or the exported fields of a struct. Anything else
// yields nil.
func Fields(src any) map[string]any {
	switch s := src.(type) {
	case nil:
		return nil
	case map[string]any:
		out := make(map[string]any, len(s))
		for k, v := range s {
			out[k] = v
		}
		return out
	case Context:
		k, ok := s.(keyed)
		if !ok {
			return nil
		}
		out := make(map[string]any)
		for _, name := range k.Keys() {
			out[name] = s.Get(name)
		}
		return out
	}

	rv := reflect.ValueOf(src)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = iter.Value().Interface()
		}
		return out
	case reflect.Struct:
		out := make(map[string]any)
		t := rv.Type()
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			if !sf.IsExported() {
				continue
			}
			name := sf.Name
			if tag, ok := sf.Tag.Lookup(tagName); ok {
				if tag == "-" {
					continue
				}
				if tag != "" {
					name = tag
				}
			}
			out[name] = rv.Field(i).Interface()
		}
		return out
	}
	return nil
}

// SortedKeys returns the keys of m in lexical order.
func SortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Same reports whether a and b are the same context by identity. Pointers,
// maps, and other reference types compare by address; other values compare
// with ==.
func Same(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.Type() != rb.Type() {
		return false
	}
	switch ra.Kind() {
	case reflect.Map, reflect.Pointer, reflect.Chan, reflect.Func, reflect.UnsafePointer, reflect.Slice:
		return ra.Pointer() == rb.Pointer()
	}
	if !ra.Type().Comparable() {
		return false
	}
	return a == b
}

// IsEmpty reports whether v carries no value: nil, a nil reference, or the
// empty string.
func IsEmpty(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return s == ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

func field(rv reflect.Value, name string) (reflect.Value, bool) {
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		if tag, ok := sf.Tag.Lookup(tagName); ok && tag != "" {
			if tag == name {
				return rv.Field(i), true
			}
			continue
		}
		if strings.EqualFold(sf.Name, name) {
			return rv.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func convert(value any, to reflect.Type) (reflect.Value, error) {
	if value == nil {
		return reflect.Zero(to), nil
	}
	v := reflect.ValueOf(value)
	if v.Type().AssignableTo(to) {
		return v, nil
	}
	if v.Type().ConvertibleTo(to) {
		return v.Convert(to), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %T as %s", value, to)
}
