package command

import (
	"fmt"
	"reflect"
)

// FormatResult renders an Execute result as display lines: nothing for nil,
// one line per element for slices and arrays, a single line otherwise. Byte
// slices are printed as text.
func FormatResult(result any) []string {
	if result == nil {
		return nil
	}
	if raw, isBytes := result.([]byte); isBytes {
		return []string{string(raw)}
	}
	value := reflect.ValueOf(result)
	switch value.Kind() {
	case reflect.Slice, reflect.Array:
		if value.Type().Elem().Kind() == reflect.Uint8 {
			return []string{fmt.Sprint(result)}
		}
		lines := make([]string, 0, value.Len())
		for index := 0; index < value.Len(); index++ {
			lines = append(lines, fmt.Sprint(value.Index(index).Interface()))
		}
		return lines
	default:
		return []string{fmt.Sprint(result)}
	}
}
