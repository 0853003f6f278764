// Package numeric converts arbitrary-precision decimal values into native
// float64 values before data leaves the process.
package numeric

import (
	"encoding"
	"encoding/json"
	"reflect"
	"strings"

	"github.com/shopspring/decimal"
)

// Numeric is implemented by values that can report themselves as a float64.
// decimal.Decimal and *decimal.Decimal both satisfy it.
type Numeric interface {
	InexactFloat64() float64
}

var (
	numericType       = reflect.TypeOf((*Numeric)(nil)).Elem()
	jsonMarshalerType = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	nullDecimalType   = reflect.TypeOf(decimal.NullDecimal{})
)

// Normalize returns a copy of v in which every Numeric leaf is replaced by its
// float64 value. Maps become map[string]any, slices and arrays become []any
// and structs become map[string]any keyed by their JSON field names. nil is
// preserved and every other value is passed through unchanged. The input is
// never modified.
func Normalize(v any) any {
	if v == nil {
		return nil
	}
	w := walker{seen: make(map[uintptr]bool)}
	return w.walk(reflect.ValueOf(v))
}

// Float64 converts a single value to float64. It accepts Numeric values and
// native numeric kinds and reports false for anything else.
func Float64(v any) (float64, bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case Numeric:
		if rv := reflect.ValueOf(x); rv.Kind() == reflect.Ptr && rv.IsNil() {
			return 0, false
		}
		return x.InexactFloat64(), true
	case decimal.NullDecimal:
		if !x.Valid {
			return 0, false
		}
		return x.Decimal.InexactFloat64(), true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	}
	return 0, false
}

type walker struct {
	seen map[uintptr]bool
}

func (w walker) walk(rv reflect.Value) any {
	if !rv.IsValid() {
		return nil
	}

	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice:
		if rv.IsNil() {
			return nil
		}
	}

	if rv.Type() == nullDecimalType {
		nd := rv.Interface().(decimal.NullDecimal)
		if !nd.Valid {
			return nil
		}
		return nd.Decimal.InexactFloat64()
	}

	if rv.CanInterface() && rv.Type().Implements(numericType) {
		return rv.Interface().(Numeric).InexactFloat64()
	}

	switch rv.Kind() {
	case reflect.Interface:
		return w.walk(rv.Elem())

	case reflect.Ptr:
		addr := rv.Pointer()
		if w.seen[addr] {
			return nil
		}
		w.seen[addr] = true
		defer delete(w.seen, addr)
		return w.walk(rv.Elem())

	case reflect.Map:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[mapKey(iter.Key())] = w.walk(iter.Value())
		}
		return out

	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return rv.Interface()
		}
		fallthrough
	case reflect.Array:
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = w.walk(rv.Index(i))
		}
		return out

	case reflect.Struct:
		if passesThrough(rv.Type()) {
			return rv.Interface()
		}
		out := make(map[string]any)
		w.fields(rv, out)
		return out
	}

	if rv.CanInterface() {
		return rv.Interface()
	}
	return nil
}

func (w walker) fields(rv reflect.Value, out map[string]any) {
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() && !(field.Anonymous && isStructType(field.Type)) {
			continue
		}

		name, omitEmpty, skip := jsonName(field)
		if skip {
			continue
		}

		fv := rv.Field(i)
		if field.Anonymous && name == "" {
			inner := fv
			if inner.Kind() == reflect.Ptr {
				if inner.IsNil() {
					continue
				}
				inner = inner.Elem()
			}
			if inner.Kind() == reflect.Struct && !passesThrough(inner.Type()) {
				w.fields(inner, out)
				continue
			}
		}

		if name == "" {
			name = field.Name
		}
		if omitEmpty && fv.IsZero() {
			continue
		}
		out[name] = w.walk(fv)
	}
}

func isStructType(t reflect.Type) bool {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}

// passesThrough reports whether a struct type owns its own encoding and must
// not be flattened (time.Time, gorm.DeletedAt and similar).
func passesThrough(t reflect.Type) bool {
	if t.Implements(jsonMarshalerType) || t.Implements(textMarshalerType) {
		return true
	}
	pt := reflect.PointerTo(t)
	return pt.Implements(jsonMarshalerType) || pt.Implements(textMarshalerType)
}

func jsonName(field reflect.StructField) (name string, omitEmpty, skip bool) {
	tag, ok := field.Tag.Lookup("json")
	if !ok {
		return "", false, false
	}
	if tag == "-" {
		return "", false, true
	}
	parts := strings.Split(tag, ",")
	for _, opt := range parts[1:] {
		if opt == "omitempty" {
			omitEmpty = true
		}
	}
	return parts[0], omitEmpty, false
}

func mapKey(k reflect.Value) string {
	if k.Kind() == reflect.String {
		return k.String()
	}
	if k.CanInterface() {
		if tm, ok := k.Interface().(encoding.TextMarshaler); ok {
			if b, err := tm.MarshalText(); err == nil {
				return string(b)
			}
		}
	}
	b, err := json.Marshal(k.Interface())
	if err != nil {
		return ""
	}
	return strings.Trim(string(b), `"`)
}
