package cache

import (
	"encoding"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

var (
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	jsonMarshalerType = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
)

// StableKey serializes arguments deterministically for use in cache keys
// Map entries are sorted by key and struct fields are walked in declaration
// order, so structurally equal arguments always produce the same key.
// Strings are quoted and numbers carry their kind, so "1" and 1 differ and
// separators inside strings cannot merge two entries.
func StableKey(args ...interface{}) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = serializeValue(reflect.ValueOf(arg))
	}
	return strings.Join(parts, ":")
}

func serializeValue(rv reflect.Value) string {
	if !rv.IsValid() {
		return "nil"
	}
	if (rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface) && rv.IsNil() {
		return "nil"
	}
	if s, ok := marshaled(rv); ok {
		return s
	}

	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		return serializeValue(rv.Elem())
	case reflect.Map:
		if rv.IsNil() {
			return "{}"
		}
		return serializeMap(rv)
	case reflect.Slice:
		if rv.IsNil() {
			return "[]"
		}
		return serializeList(rv)
	case reflect.Array:
		return serializeList(rv)
	case reflect.Struct:
		return serializeStruct(rv)
	case reflect.String:
		return strconv.Quote(rv.String())
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Kind().String() + "(" + strconv.FormatInt(rv.Int(), 10) + ")"
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Kind().String() + "(" + strconv.FormatUint(rv.Uint(), 10) + ")"
	case reflect.Float32, reflect.Float64:
		return rv.Kind().String() + "(" + strconv.FormatFloat(rv.Float(), 'g', -1, 64) + ")"
	case reflect.Func, reflect.Chan:
		return fmt.Sprintf("%s:%p", rv.Kind(), rv.Interface())
	}

	return jsonFallback(rv)
}

// marshaled uses the value's own text or JSON form when it has one
// time.Time and similar types keep their state in unexported fields
func marshaled(rv reflect.Value) (string, bool) {
	if rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface || !rv.CanInterface() {
		return "", false
	}
	name := rv.Type().String()

	// Pointer receivers are reachable when the value came from a dereferenced pointer
	v := rv
	if rv.CanAddr() {
		v = rv.Addr()
	}
	t := v.Type()

	switch {
	case t.Implements(textMarshalerType):
		text, err := v.Interface().(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return "", false
		}
		return name + "(" + strconv.Quote(string(text)) + ")", true
	case t.Implements(jsonMarshalerType):
		data, err := v.Interface().(json.Marshaler).MarshalJSON()
		if err != nil {
			return "", false
		}
		return name + "(" + string(data) + ")", true
	}
	return "", false
}

func serializeMap(rv reflect.Value) string {
	type entry struct{ key, value string }

	entries := make([]entry, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		entries = append(entries, entry{
			key:   serializeValue(iter.Key()),
			value: serializeValue(iter.Value()),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })

	pairs := make([]string, len(entries))
	for i, e := range entries {
		pairs[i] = e.key + "=" + e.value
	}
	return "{" + strings.Join(pairs, ",") + "}"
}

func serializeList(rv reflect.Value) string {
	parts := make([]string, rv.Len())
	for i := range parts {
		parts[i] = serializeValue(rv.Index(i))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// serializeStruct walks exported fields; a struct with only unexported state
// uses its String method, then its Go syntax representation
func serializeStruct(rv reflect.Value) string {
	rt := rv.Type()
	parts := make([]string, 0, rv.NumField())
	for i := 0; i < rv.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		parts = append(parts, field.Name+"="+serializeValue(rv.Field(i)))
	}
	if len(parts) == 0 && rv.NumField() > 0 && rv.CanInterface() {
		if str, ok := rv.Interface().(fmt.Stringer); ok {
			return rt.String() + "(" + strconv.Quote(str.String()) + ")"
		}
		return fmt.Sprintf("%#v", rv.Interface())
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func jsonFallback(rv reflect.Value) string {
	if !rv.CanInterface() {
		return rv.Type().String()
	}
	data, err := json.Marshal(rv.Interface())
	if err != nil {
		return fmt.Sprintf("%#v", rv.Interface())
	}
	return string(data)
}
