// Package cdn compares CloudFront distributions. Every managed field can be
// changed with UpdateDistribution, so no difference forces a replacement.
package cdn

import (
	"context"

	"github.com/olusolaa/webstack/internal/core/domain"
	"github.com/olusolaa/webstack/internal/resources/helper"
)

var distributionRules = []helper.Rule{
	{Key: domain.DistributionOriginDomainKey},
	{Key: domain.DistributionOriginIDKey},
	{Key: domain.DistributionEnabledKey},
	{Key: domain.DistributionIPv6Key},
	{Key: domain.DistributionDefaultRootObjectKey},
	{Key: domain.DistributionCommentKey},
	{Key: domain.DistributionPriceClassKey},
	{Key: domain.DistributionAllowedMethodsKey, Compare: helper.CompareStringSlicesUnordered},
	{Key: domain.DistributionCachedMethodsKey, Compare: helper.CompareStringSlicesUnordered},
	{Key: domain.DistributionViewerProtocolKey},
	{Key: domain.DistributionMinTTLKey},
	{Key: domain.DistributionDefaultTTLKey},
	{Key: domain.DistributionMaxTTLKey},
	{Key: domain.DistributionForwardQueryStringKey},
	{Key: domain.DistributionForwardCookiesKey},
	{Key: domain.DistributionGeoRestrictionKey},
	{Key: domain.DistributionDefaultCertificateKey},
	{Key: domain.KeyTags, Compare: helper.CompareTagsIgnoringAWS},
}

type DistributionComparer struct{}

func NewDistributionComparer() *DistributionComparer {
	return &DistributionComparer{}
}

func (c *DistributionComparer) Kind() domain.ResourceKind { return domain.KindDistribution }

func (c *DistributionComparer) Compare(ctx context.Context, desired domain.ResourceSpec, live *domain.LiveResource) ([]domain.AttributeDiff, bool, error) {
	if err := helper.CheckInputs(c.Kind(), desired, live); err != nil {
		return nil, false, err
	}
	return helper.CompareAttributes(ctx, desired.Attributes(), live.Attributes, distributionRules)
}
