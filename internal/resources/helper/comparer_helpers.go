package helper

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	jsoniter "github.com/json-iterator/go"

	"github.com/olusolaa/webstack/internal/core/domain"
	"github.com/olusolaa/webstack/internal/errors"
	"github.com/olusolaa/webstack/pkg/convert"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// AttributeComparerFunc defines the signature for specific attribute comparison functions.
type AttributeComparerFunc func(ctx context.Context, desired, actual any, dExists, aExists bool) (isEqual bool, details string, err error)

// Rule says how one attribute is compared and whether a difference can be
// applied in place.
type Rule struct {
	Key           string
	Compare       AttributeComparerFunc
	ForcesReplace bool
}

// CompareAttributes applies rules in order and returns one diff per differing
// attribute. replace is true when any diff comes from a ForcesReplace rule.
func CompareAttributes(ctx context.Context, desired, actual map[string]any, rules []Rule) ([]domain.AttributeDiff, bool, error) {
	diffs := make([]domain.AttributeDiff, 0)
	replace := false

	for _, rule := range rules {
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}
		desiredVal, dExists := desired[rule.Key]
		actualVal, aExists := actual[rule.Key]

		var (
			isEqual bool
			details string
			err     error
		)
		if IsUnknown(desiredVal) {
			isEqual, details = false, domain.UnknownValue
		} else {
			compare := rule.Compare
			if compare == nil {
				compare = DefaultAttributeCompare
			}
			isEqual, details, err = compare(ctx, desiredVal, actualVal, dExists, aExists)
			if err != nil {
				return nil, false, errors.Wrap(err, errors.CodeComparisonError,
					fmt.Sprintf("failed to compare attribute %q", rule.Key))
			}
		}
		if isEqual {
			continue
		}

		diffs = append(diffs, domain.AttributeDiff{
			AttributeName: rule.Key,
			ExpectedValue: desiredVal,
			ActualValue:   actualVal,
			Details:       details,
			ForcesReplace: rule.ForcesReplace,
		})
		replace = replace || rule.ForcesReplace
	}
	return diffs, replace, nil
}

// IsUnknown reports whether v is, or contains, a value that only exists after
// apply.
func IsUnknown(v any) bool {
	switch t := v.(type) {
	case string:
		return t == domain.UnknownValue
	case []string:
		for _, s := range t {
			if s == domain.UnknownValue {
				return true
			}
		}
	}
	return false
}

// DefaultAttributeCompare treats a missing value as equal to an empty one.
func DefaultAttributeCompare(_ context.Context, desired, actual any, dExists, aExists bool) (bool, string, error) {
	if !dExists && !aExists {
		return true, "", nil
	}
	if !dExists {
		if isEmpty(actual) {
			return true, "", nil
		}
		return false, "Not set in desired state", nil
	}
	if !aExists {
		if isEmpty(desired) {
			return true, "", nil
		}
		return false, "Missing in actual state", nil
	}
	if cmp.Equal(desired, actual, cmpopts.EquateEmpty()) {
		return true, "", nil
	}
	return false, "Values differ", nil
}

// CompareTags compares tag maps, skipping keys that start with ignorePrefix.
func CompareTags(ctx context.Context, desired, actual any, dExists, aExists bool, ignorePrefix string) (bool, string, error) {
	if !dExists && !aExists {
		return true, "", nil
	}
	dMap, err := convert.ToStringMap(desired)
	if err != nil {
		return false, "Invalid type for desired tags", errors.Wrap(err, errors.CodeComparisonError, "desired tags not map[string]string")
	}
	aMap, err := convert.ToStringMap(actual)
	if err != nil {
		return false, "Invalid type for actual tags", errors.Wrap(err, errors.CodeComparisonError, "actual tags not map[string]string")
	}

	filter := func(m map[string]string) map[string]string {
		out := make(map[string]string, len(m))
		for k, v := range m {
			if ignorePrefix == "" || !strings.HasPrefix(strings.ToLower(k), ignorePrefix) {
				out[k] = v
			}
		}
		return out
	}
	dMap, aMap = filter(dMap), filter(aMap)
	if ctx.Err() != nil {
		return false, "", ctx.Err()
	}

	var parts []string
	for _, k := range convert.SortedKeys(dMap) {
		av, ok := aMap[k]
		switch {
		case !ok:
			parts = append(parts, fmt.Sprintf("missing tag '%s'", k))
		case av != dMap[k]:
			parts = append(parts, fmt.Sprintf("tag '%s': expected '%s', got '%s'", k, dMap[k], av))
		}
	}
	for _, k := range convert.SortedKeys(aMap) {
		if _, ok := dMap[k]; !ok {
			parts = append(parts, fmt.Sprintf("unexpected tag '%s'", k))
		}
	}
	return len(parts) == 0, strings.Join(parts, "; "), nil
}

// CompareTagsIgnoringAWS is CompareTags with the reserved aws: prefix ignored.
func CompareTagsIgnoringAWS(ctx context.Context, desired, actual any, dExists, aExists bool) (bool, string, error) {
	return CompareTags(ctx, desired, actual, dExists, aExists, "aws:")
}

// CompareStringSlicesUnordered compares two string slices as sets.
func CompareStringSlicesUnordered(ctx context.Context, desired, actual any, dExists, aExists bool) (bool, string, error) {
	if !dExists && !aExists {
		return true, "", nil
	}
	dSlice, err := convert.ToSliceOfString(desired)
	if err != nil {
		return false, fmt.Sprintf("Cannot convert desired to string slice: %v", err), err
	}
	aSlice, err := convert.ToSliceOfString(actual)
	if err != nil {
		return false, fmt.Sprintf("Cannot convert actual to string slice: %v", err), err
	}
	if ctx.Err() != nil {
		return false, "", ctx.Err()
	}

	less := func(a, b string) bool { return a < b }
	if cmp.Equal(dSlice, aSlice, cmpopts.SortSlices(less), cmpopts.EquateEmpty()) {
		return true, "", nil
	}

	missing := setDifference(dSlice, aSlice)
	extra := setDifference(aSlice, dSlice)
	var parts []string
	if len(missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing %v", missing))
	}
	if len(extra) > 0 {
		parts = append(parts, fmt.Sprintf("unexpected %v", extra))
	}
	if len(parts) == 0 {
		parts = append(parts, "duplicate items differ")
	}
	return false, strings.Join(parts, "; "), nil
}

// CompareJSONStrings compares two JSON documents structurally. Strings that do
// not parse are compared verbatim.
func CompareJSONStrings(ctx context.Context, desired, actual any, dExists, aExists bool) (bool, string, error) {
	ds, dOk := desired.(string)
	as, aOk := actual.(string)
	if !dOk || !aOk || ds == "" || as == "" {
		return DefaultAttributeCompare(ctx, desired, actual, dExists, aExists)
	}

	var dDoc, aDoc any
	if err := json.Unmarshal([]byte(ds), &dDoc); err != nil {
		return ds == as, "Desired document is not valid JSON", nil
	}
	if err := json.Unmarshal([]byte(as), &aDoc); err != nil {
		return ds == as, "Actual document is not valid JSON", nil
	}
	if cmp.Equal(dDoc, aDoc) {
		return true, "", nil
	}
	return false, "Documents differ", nil
}

func setDifference(a, b []string) []string {
	inB := make(map[string]struct{}, len(b))
	for _, s := range b {
		inB[s] = struct{}{}
	}
	var out []string
	for _, s := range a {
		if _, ok := inB[s]; !ok {
			out = append(out, s)
		}
	}
	return out
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.String, reflect.Array:
		return rv.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return rv.IsNil()
	}
	return rv.IsZero()
}

// CheckInputs verifies that desired and live belong to kind.
func CheckInputs(kind domain.ResourceKind, desired domain.ResourceSpec, live *domain.LiveResource) error {
	if desired == nil || live == nil {
		return errors.New(errors.CodeInternal, "compare called with nil desired or live resource")
	}
	if desired.Kind() != kind || live.Kind != kind {
		return errors.New(errors.CodeTypeAssertionError,
			fmt.Sprintf("%s comparer got %s desired and %s live resource", kind, desired.Kind(), live.Kind))
	}
	return nil
}
