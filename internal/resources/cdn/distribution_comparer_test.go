package cdn

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olusolaa/webstack/internal/core/domain"
)

func desiredDistribution() domain.DistributionSpec {
	return domain.DistributionSpec{
		ResourceAddress:   "aws_cloudfront_distribution.site",
		OriginRef:         domain.Ref{Address: "aws_s3_bucket.site", Attribute: domain.OutputRegionalDomainName},
		OriginDomainName:  "my-site.s3.us-east-1.amazonaws.com",
		OriginID:          "S3-my-site",
		Enabled:           true,
		IPv6Enabled:       true,
		DefaultRootObject: "index.html",
		PriceClass:        "PriceClass_All",
		CacheBehavior: domain.CacheBehavior{
			AllowedMethods:       []string{"GET", "HEAD"},
			CachedMethods:        []string{"GET", "HEAD"},
			ViewerProtocolPolicy: "redirect-to-https",
			DefaultTTL:           3600,
			MaxTTL:               86400,
			ForwardCookies:       "none",
		},
		GeoRestriction:     "none",
		DefaultCertificate: true,
	}
}

func TestDistributionComparer(t *testing.T) {
	c := NewDistributionComparer()
	desired := desiredDistribution()

	live := &domain.LiveResource{Kind: domain.KindDistribution, ID: "E1", Attributes: desired.Attributes()}
	live.Attributes[domain.DistributionAllowedMethodsKey] = []string{"HEAD", "GET"}
	live.Attributes[domain.KeyTags] = map[string]string{}

	diffs, replace, err := c.Compare(context.Background(), desired, live)
	require.NoError(t, err)
	assert.Empty(t, diffs)
	assert.False(t, replace)

	live.Attributes[domain.DistributionDefaultTTLKey] = int64(60)
	live.Attributes[domain.DistributionEnabledKey] = false
	diffs, replace, err = c.Compare(context.Background(), desired, live)
	require.NoError(t, err)
	assert.Len(t, diffs, 2)
	assert.False(t, replace)
}

func TestDistributionComparer_UnknownOrigin(t *testing.T) {
	c := NewDistributionComparer()
	bound := desiredDistribution()
	live := &domain.LiveResource{Kind: domain.KindDistribution, ID: "E1", Attributes: bound.Attributes()}

	unbound := desiredDistribution()
	unbound.OriginDomainName = ""
	diffs, replace, err := c.Compare(context.Background(), unbound, live)
	require.NoError(t, err)
	require.Len(t, diffs, 1)
	assert.Equal(t, domain.DistributionOriginDomainKey, diffs[0].AttributeName)
	assert.False(t, replace)
}
