package finder

import (
	"database/sql/driver"
	"fmt"
	"reflect"
	"time"
)

// Param coerces value into the primitive form bound as a query parameter.
// Valuers are unwrapped, named scalar types are reduced to their underlying
// kind, Stringers are rendered, and anything else is formatted with fmt.
func Param(value any) any {
	if value == nil {
		return nil
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
	}

	switch v := value.(type) {
	case string, bool, []byte, time.Time,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return v
	case driver.Valuer:
		out, err := v.Value()
		if err != nil {
			return fmt.Sprint(v)
		}
		return out
	case fmt.Stringer:
		return v.String()
	}

	switch rv.Kind() {
	case reflect.Pointer:
		return Param(rv.Elem().Interface())
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint()
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	}
	return fmt.Sprint(value)
}
