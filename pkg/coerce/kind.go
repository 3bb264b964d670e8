package coerce

import (
	"encoding/json"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Kind enumerates the value shapes the form tree distinguishes.
type Kind string

const (
	KindArrayOfObjects Kind = "array_of_objects"
	KindArray          Kind = "array"
	KindObject         Kind = "object"
	KindBoolean        Kind = "boolean"
	KindDate           Kind = "date"
	KindNumber         Kind = "number"
	KindNull           Kind = "null"
	KindUndefined      Kind = "undefined"
	KindString         Kind = "string"
)

type undefined struct{}

func (undefined) String() string { return "undefined" }

// MarshalJSON renders undefined as null so projections stay valid JSON.
func (undefined) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

// Undefined marks a value that was never supplied, as opposed to an explicit
// nil.
var Undefined any = undefined{}

// IsUndefined reports whether value is the Undefined marker.
func IsUndefined(value any) bool {
	_, ok := value.(undefined)
	return ok
}

// Classify returns the kind of value. Probes run in priority order: sequences
// first, then the object probe (which overrides a sequence verdict when it
// matches), then boolean, date and numeric text, then null and undefined.
// Anything left over is a string.
func Classify(value any) Kind {
	kind := KindString
	switch {
	case IsArrayOfObjects(value):
		kind = KindArrayOfObjects
	case IsArray(value):
		kind = KindArray
	}
	if IsObject(value) {
		kind = KindObject
	}
	if kind != KindString {
		return kind
	}

	switch {
	case IsBooleanLike(value):
		return KindBoolean
	case IsDateLike(value):
		return KindDate
	case IsNumericLike(value):
		return KindNumber
	case value == nil:
		return KindNull
	case IsUndefined(value):
		return KindUndefined
	}
	return KindString
}

var timeType = reflect.TypeOf(time.Time{})

// IsObject reports whether value is a keyed record: a string-keyed map or a
// struct other than time.Time.
func IsObject(value any) bool {
	rv := indirect(reflect.ValueOf(value))
	if !rv.IsValid() {
		return false
	}
	switch rv.Kind() {
	case reflect.Map:
		return rv.Type().Key().Kind() == reflect.String
	case reflect.Struct:
		return rv.Type() != timeType && rv.Type() != reflect.TypeOf(undefined{})
	default:
		return false
	}
}

// IsArray reports whether value is a slice or array. Byte slices are text.
func IsArray(value any) bool {
	if _, ok := value.([]byte); ok {
		return false
	}
	rv := indirect(reflect.ValueOf(value))
	if !rv.IsValid() {
		return false
	}
	return rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array
}

// IsArrayOfObjects reports whether value is a non-empty sequence whose
// elements are all keyed records.
func IsArrayOfObjects(value any) bool {
	if !IsArray(value) {
		return false
	}
	rv := indirect(reflect.ValueOf(value))
	if rv.Len() == 0 {
		return false
	}
	for i := 0; i < rv.Len(); i++ {
		if !IsObject(rv.Index(i).Interface()) {
			return false
		}
	}
	return true
}

// IsBooleanLike reports whether value is a bool or the text "true"/"false".
func IsBooleanLike(value any) bool {
	switch v := value.(type) {
	case bool:
		return true
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "false":
			return true
		}
	}
	return false
}

// IsNumericLike reports whether value is a Go number or text holding a finite
// number.
func IsNumericLike(value any) bool {
	switch v := value.(type) {
	case string:
		return isNumericText(v)
	case json.Number:
		return isNumericText(string(v))
	}
	_, ok := numberValue(value)
	return ok
}

// IsDateLike reports whether value is a time, a record with a date-like text
// field, or text matching one of the known date formats.
func IsDateLike(value any) bool {
	switch v := value.(type) {
	case time.Time, *time.Time:
		return true
	case string:
		_, ok := parseStrict(v, "")
		return ok
	}
	record, ok := AsRecord(value)
	if !ok {
		return false
	}
	text, ok := record["text"].(string)
	if !ok {
		return false
	}
	_, ok = parseStrict(text, "")
	return ok
}

// ToBool converts boolean-like values.
func ToBool(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return false, false
}

// ToFloat converts numeric-like values.
func ToFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case string:
		if !isNumericText(v) {
			return 0, false
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return numberValue(value)
}

func isNumericText(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return false
	}
	switch strings.ToLower(strings.TrimLeft(trimmed, "+-")) {
	case "inf", "infinity", "nan":
		return false
	}
	_, err := strconv.ParseFloat(trimmed, 64)
	return err == nil
}

func numberValue(value any) (float64, bool) {
	rv := reflect.ValueOf(value)
	if !rv.IsValid() {
		return 0, false
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}

func indirect(rv reflect.Value) reflect.Value {
	for rv.IsValid() && (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) {
		if rv.IsNil() {
			return reflect.Value{}
		}
		rv = rv.Elem()
	}
	return rv
}
