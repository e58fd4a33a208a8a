package sheets

import (
	"fmt"
	"reflect"
	"sort"
	"time"

	"cloud.google.com/go/civil"

	"iolib/internal/domain"
)

const (
	dateTimeLayout      = "2006-01-02 15:04:05"
	dateTimeMicroLayout = "2006-01-02 15:04:05.000000"
	dateLayout          = "2006-01-02"
)

// FormatCellValue converts v into a value the values API serializes as
// intended:
//
//   - missing values (nil, NaN, typed nulls) become nil
//   - sets (maps to struct{} or bool) become sorted slices of their members
//   - arrays and slices become []any
//   - date-times become "2006-01-02 15:04:05", with ".000000" microseconds
//     only when they are nonzero
//   - dates become "2006-01-02"
//
// Anything else is returned unchanged.
func FormatCellValue(v any) any {
	v = domain.NormalizeMissing(v)
	switch x := v.(type) {
	case nil:
		return nil
	case time.Time:
		return formatDateTime(x)
	case *time.Time:
		return formatDateTime(*x)
	case civil.DateTime:
		return formatDateTime(x.In(time.UTC))
	case civil.Date:
		return x.In(time.UTC).Format(dateLayout)
	case civil.Time:
		return x.String()
	case string:
		return x
	case []byte:
		return string(x)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if members, ok := setMembers(rv); ok {
			return members
		}
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = FormatCellValue(rv.Index(i).Interface())
		}
		return out
	}
	return v
}

func formatDateTime(t time.Time) string {
	if t.Nanosecond()/int(time.Microsecond) != 0 {
		return t.Format(dateTimeMicroLayout)
	}
	return t.Format(dateTimeLayout)
}

// setMembers returns the sorted members of a set-shaped map: map[K]struct{}
// or map[K]bool, where only true entries are members.
func setMembers(rv reflect.Value) ([]any, bool) {
	elem := rv.Type().Elem()
	isBool := elem.Kind() == reflect.Bool
	if !isBool && !(elem.Kind() == reflect.Struct && elem.NumField() == 0) {
		return nil, false
	}
	keys := make([]reflect.Value, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		if isBool && !iter.Value().Bool() {
			continue
		}
		keys = append(keys, iter.Key())
	}
	sort.Slice(keys, func(i, j int) bool { return lessValue(keys[i], keys[j]) })
	out := make([]any, len(keys))
	for i, k := range keys {
		out[i] = k.Interface()
	}
	return out, true
}

func lessValue(a, b reflect.Value) bool {
	switch a.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return a.Int() < b.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return a.Uint() < b.Uint()
	case reflect.Float32, reflect.Float64:
		return a.Float() < b.Float()
	case reflect.String:
		return a.String() < b.String()
	}
	return fmt.Sprint(a.Interface()) < fmt.Sprint(b.Interface())
}
