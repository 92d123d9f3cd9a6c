package ec2

import (
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/olusolaa/webstack/internal/core/domain"
)

const (
	awsTagFilterPrefix   = "tag:"
	instanceStateFilter  = "instance-state-name"
	instanceGroupIDField = "instance.group-id"
)

var instanceFilterNameMap = map[string]string{
	domain.KeyName:                  "tag:Name",
	domain.KeyID:                    "instance-id",
	domain.ComputeImageIDKey:        "image-id",
	domain.ComputeInstanceTypeKey:   "instance-type",
	domain.ComputeKeyNameKey:        "key-name",
	domain.ComputeSecurityGroupsKey: instanceGroupIDField,
}

var securityGroupFilterNameMap = map[string]string{
	domain.KeyName:               "group-name",
	domain.KeyID:                 "group-id",
	domain.SecurityGroupVPCIDKey: "vpc-id",
}

var multiValueFilters = map[string]struct{}{
	"instance-id":        {},
	"image-id":           {},
	"instance-type":      {},
	instanceGroupIDField: {},
	instanceStateFilter:  {},
	"group-id":           {},
	"tag-key":            {},
}

// liveInstanceStates excludes terminated instances from lookups.
var liveInstanceStates = []string{"pending", "running", "stopping", "stopped"}

// BuildInstanceFilters turns generic attribute filters into DescribeInstances
// filters. Unless a state filter is given, terminated and terminating
// instances are excluded.
func BuildInstanceFilters(genericFilters map[string]string) []types.Filter {
	filters := buildFilters(genericFilters, instanceFilterNameMap)
	for _, f := range filters {
		if aws.ToString(f.Name) == instanceStateFilter {
			return filters
		}
	}
	return append(filters, types.Filter{
		Name:   aws.String(instanceStateFilter),
		Values: append([]string(nil), liveInstanceStates...),
	})
}

// BuildSecurityGroupFilters turns generic attribute filters into
// DescribeSecurityGroups filters.
func BuildSecurityGroupFilters(genericFilters map[string]string) []types.Filter {
	return buildFilters(genericFilters, securityGroupFilterNameMap)
}

func buildFilters(genericFilters map[string]string, names map[string]string) []types.Filter {
	keys := make([]string, 0, len(genericFilters))
	for k := range genericFilters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	filters := make([]types.Filter, 0, len(keys)+1)
	for _, key := range keys {
		value := genericFilters[key]
		var filterName string
		switch {
		case strings.HasPrefix(key, domain.TagPrefix):
			filterName = awsTagFilterPrefix + strings.TrimPrefix(key, domain.TagPrefix)
		case key == instanceStateFilter:
			filterName = key
		default:
			mapped, ok := names[key]
			if !ok {
				continue
			}
			filterName = mapped
		}

		values := []string{value}
		if _, multi := multiValueFilters[filterName]; multi {
			values = SplitFilterValue(value)
		}
		if len(values) == 0 {
			continue
		}
		filters = append(filters, types.Filter{Name: aws.String(filterName), Values: values})
	}
	return filters
}

func SplitFilterValue(value string) []string {
	if !strings.Contains(value, ",") {
		return []string{value}
	}
	parts := strings.Split(value, ",")
	trimmedParts := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			trimmedParts = append(trimmedParts, trimmed)
		}
	}
	return trimmedParts
}
