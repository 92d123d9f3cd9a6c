package shared

import (
	"sort"
	"strings"

	"github.com/olusolaa/webstack/internal/core/domain"
)

const ProviderTypeAWS = "aws"

// ManagedTags returns the tags to put on a new object: the declared tags
// plus the address tag.
func ManagedTags(address string, declared domain.Tags) map[string]string {
	out := make(map[string]string, len(declared)+1)
	for k, v := range declared {
		out[k] = v
	}
	out[domain.AddressTagKey] = address
	return out
}

// VisibleTags drops AWS reserved tags and the address tag so live tags
// compare against declared ones.
func VisibleTags(live map[string]string) map[string]string {
	out := make(map[string]string, len(live))
	for k, v := range live {
		if k == domain.AddressTagKey || strings.HasPrefix(k, "aws:") {
			continue
		}
		out[k] = v
	}
	return out
}

// TagDelta returns the tags to set and the keys to remove to turn live into
// desired. Both results are sorted.
func TagDelta(desired, live map[string]string) (set map[string]string, remove []string) {
	set = map[string]string{}
	for k, v := range desired {
		if cur, ok := live[k]; !ok || cur != v {
			set[k] = v
		}
	}
	for k := range live {
		if _, ok := desired[k]; !ok {
			remove = append(remove, k)
		}
	}
	sort.Strings(remove)
	return set, remove
}

// SortedKeys returns the keys of m in order.
func SortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
