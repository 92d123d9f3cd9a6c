package compute

import (
	"context"

	"github.com/olusolaa/webstack/internal/core/domain"
	"github.com/olusolaa/webstack/internal/resources/helper"
)

// AMI, type, key pair and user data are launch parameters; changing any of
// them replaces the instance.
var instanceRules = []helper.Rule{
	{Key: domain.ComputeImageIDKey, ForcesReplace: true},
	{Key: domain.ComputeInstanceTypeKey, ForcesReplace: true},
	{Key: domain.ComputeKeyNameKey, ForcesReplace: true},
	{Key: domain.ComputeUserDataKey, ForcesReplace: true},
	{Key: domain.ComputeSecurityGroupsKey, Compare: helper.CompareStringSlicesUnordered},
	{Key: domain.KeyTags, Compare: helper.CompareTagsIgnoringAWS},
}

type InstanceComparer struct{}

func NewInstanceComparer() *InstanceComparer {
	return &InstanceComparer{}
}

func (c *InstanceComparer) Kind() domain.ResourceKind { return domain.KindComputeInstance }

func (c *InstanceComparer) Compare(ctx context.Context, desired domain.ResourceSpec, live *domain.LiveResource) ([]domain.AttributeDiff, bool, error) {
	if err := helper.CheckInputs(c.Kind(), desired, live); err != nil {
		return nil, false, err
	}
	return helper.CompareAttributes(ctx, desired.Attributes(), live.Attributes, instanceRules)
}
