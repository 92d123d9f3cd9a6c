// Package convert normalizes loosely typed attribute values.
package convert

import (
	"fmt"
	"reflect"
	"sort"
)

var errNotMap = fmt.Errorf("input data is not a map")
var errNotStringValue = fmt.Errorf("map value is not a string")
var errNotSlice = fmt.Errorf("input data is not a slice")

// ToStringMap converts map[string]any or map[string]string to map[string]string.
// Returns nil map if input is nil.
func ToStringMap(data any) (map[string]string, error) {
	if data == nil {
		return nil, nil
	}
	switch m := data.(type) {
	case map[string]string:
		return m, nil
	case map[string]any:
		result := make(map[string]string, len(m))
		for k, v := range m {
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("key '%s': %w (type %T)", k, errNotStringValue, v)
			}
			result[k] = s
		}
		return result, nil
	}
	return nil, fmt.Errorf("%w: input type %T", errNotMap, data)
}

// ToSliceOfString converts []string and []any to []string. Elements that are
// not strings are formatted with %v.
func ToSliceOfString(data any) ([]string, error) {
	if data == nil {
		return []string{}, nil
	}
	if slice, ok := data.([]string); ok {
		return slice, nil
	}

	val := reflect.ValueOf(data)
	if val.Kind() != reflect.Slice {
		return nil, fmt.Errorf("%w: input type %T", errNotSlice, data)
	}
	result := make([]string, 0, val.Len())
	for i := 0; i < val.Len(); i++ {
		result = append(result, fmt.Sprintf("%v", val.Index(i).Interface()))
	}
	return result, nil
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
