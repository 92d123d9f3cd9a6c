package cloudfront

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	cftypes "github.com/aws/aws-sdk-go-v2/service/cloudfront/types"

	"github.com/olusolaa/webstack/internal/core/domain"
	"github.com/olusolaa/webstack/internal/resources/cdn"
	"github.com/olusolaa/webstack/internal/stack"
)

func (s *CloudFrontHandlerTestSuite) stackDistribution() domain.DistributionSpec {
	in := stack.DefaultInputs()
	in.VPCID = "vpc-0a1b2c"
	in.AMIID = "ami-0123456789abcdef0"
	in.KeyName = "deploy"

	plan, err := stack.Build(in, "us-east-1", nil)
	s.Require().NoError(err)
	for _, r := range plan.Resources() {
		if ds, ok := r.(domain.DistributionSpec); ok {
			origin := in.BucketName + ".s3.us-east-1.amazonaws.com"
			return ds.Bind(map[domain.Ref]string{ds.OriginRef: origin}).(domain.DistributionSpec)
		}
	}
	s.FailNow("distribution not in plan")
	return domain.DistributionSpec{}
}

func (s *CloudFrontHandlerTestSuite) TestRoundTrip_NoDiffs() {
	ds := s.stackDistribution()
	s.Require().NotEmpty(ds.OriginDomainName)

	dist := liveDistribution(ds)
	// CloudFront reports methods in its own order and fills in settings the
	// plan leaves alone.
	cb := dist.DistributionConfig.DefaultCacheBehavior
	cb.AllowedMethods.Items = []cftypes.Method{cftypes.MethodHead, cftypes.MethodGet}
	cb.AllowedMethods.CachedMethods.Items = []cftypes.Method{cftypes.MethodHead, cftypes.MethodGet}
	cb.Compress = aws.Bool(false)
	dist.DistributionConfig.Aliases = &cftypes.Aliases{Quantity: aws.Int32(0)}
	dist.DistributionConfig.HttpVersion = cftypes.HttpVersionHttp2

	s.expectRead(dist, map[string]string{domain.AddressTagKey: ds.Address()})

	live, err := s.handler.Read(s.ctx, testID)
	s.Require().NoError(err)

	diffs, replace, err := cdn.NewDistributionComparer().Compare(s.ctx, ds, live)
	s.Require().NoError(err)
	s.Empty(diffs)
	s.False(replace)
}
