package compute

import (
	"context"

	"github.com/olusolaa/webstack/internal/core/domain"
	"github.com/olusolaa/webstack/internal/resources/helper"
)

var securityGroupRules = []helper.Rule{
	{Key: domain.KeyName, ForcesReplace: true},
	{Key: domain.SecurityGroupDescriptionKey, ForcesReplace: true},
	{Key: domain.SecurityGroupVPCIDKey, ForcesReplace: true},
	{Key: domain.SecurityGroupIngressKey, Compare: helper.CompareStringSlicesUnordered},
	{Key: domain.SecurityGroupEgressKey, Compare: helper.CompareStringSlicesUnordered},
	{Key: domain.KeyTags, Compare: helper.CompareTagsIgnoringAWS},
}

// SecurityGroupComparer compares rule sets in their canonical one-CIDR-per-
// entry form, so AWS regrouping permissions is not drift.
type SecurityGroupComparer struct{}

func NewSecurityGroupComparer() *SecurityGroupComparer {
	return &SecurityGroupComparer{}
}

func (c *SecurityGroupComparer) Kind() domain.ResourceKind { return domain.KindSecurityGroup }

func (c *SecurityGroupComparer) Compare(ctx context.Context, desired domain.ResourceSpec, live *domain.LiveResource) ([]domain.AttributeDiff, bool, error) {
	if err := helper.CheckInputs(c.Kind(), desired, live); err != nil {
		return nil, false, err
	}
	return helper.CompareAttributes(ctx, desired.Attributes(), live.Attributes, securityGroupRules)
}
