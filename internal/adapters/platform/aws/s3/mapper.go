package s3

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/olusolaa/webstack/internal/adapters/platform/aws/shared"
	"github.com/olusolaa/webstack/internal/core/domain"
)

const defaultRegion = "us-east-1"

// Regions whose website endpoints use "s3-website-<region>" rather than
// "s3-website.<region>".
var dashWebsiteRegions = map[string]struct{}{
	"us-east-1":      {},
	"us-west-1":      {},
	"us-west-2":      {},
	"ap-southeast-1": {},
	"ap-southeast-2": {},
	"ap-northeast-1": {},
	"eu-west-1":      {},
	"sa-east-1":      {},
	"us-gov-west-1":  {},
}

func WebsiteEndpoint(bucket, region string) string {
	if region == "" {
		region = defaultRegion
	}
	if _, dash := dashWebsiteRegions[region]; dash {
		return fmt.Sprintf("%s.s3-website-%s.amazonaws.com", bucket, region)
	}
	return fmt.Sprintf("%s.s3-website.%s.amazonaws.com", bucket, region)
}

func RegionalDomainName(bucket, region string) string {
	if region == "" {
		region = defaultRegion
	}
	return fmt.Sprintf("%s.s3.%s.amazonaws.com", bucket, region)
}

func BucketARN(bucket string) string {
	return "arn:aws:s3:::" + bucket
}

// regionFromLocation maps a location constraint to a region name. The empty
// constraint means us-east-1 and "EU" is the legacy name of eu-west-1.
func regionFromLocation(loc s3types.BucketLocationConstraint) string {
	switch loc {
	case "":
		return defaultRegion
	case s3types.BucketLocationConstraintEu:
		return "eu-west-1"
	default:
		return string(loc)
	}
}

func toS3Tags(tags map[string]string) []s3types.Tag {
	out := make([]s3types.Tag, 0, len(tags))
	for _, k := range shared.SortedKeys(tags) {
		out = append(out, s3types.Tag{Key: aws.String(k), Value: aws.String(tags[k])})
	}
	return out
}

func fromS3Tags(tags []s3types.Tag) map[string]string {
	out := make(map[string]string, len(tags))
	for _, t := range tags {
		if t.Key != nil {
			out[*t.Key] = aws.ToString(t.Value)
		}
	}
	return out
}

// bucketState is what a bucket read collects before mapping.
type bucketState struct {
	name              string
	region            string
	indexDocument     string
	errorDocument     string
	objectOwnership   string
	publicAccessBlock domain.PublicAccessBlock
	policy            string
	tags              map[string]string
}

func (b *bucketState) toLive() *domain.LiveResource {
	return &domain.LiveResource{
		Kind: domain.KindStorageBucket,
		ID:   b.name,
		Attributes: map[string]any{
			domain.KeyName:                      b.name,
			domain.StorageBucketRegionKey:       b.region,
			domain.StorageBucketWebsiteIndexKey: b.indexDocument,
			domain.StorageBucketWebsiteErrorKey: b.errorDocument,
			domain.StorageBucketOwnershipKey:    b.objectOwnership,
			domain.StorageBucketPublicAccessKey: b.publicAccessBlock.AsMap(),
			domain.StorageBucketPolicyKey:       domain.NormalizePolicy(b.policy),
			domain.KeyTags:                      shared.VisibleTags(b.tags),
		},
		Outputs: map[string]string{
			domain.OutputID:                 b.name,
			domain.OutputARN:                BucketARN(b.name),
			domain.OutputRegionalDomainName: RegionalDomainName(b.name, b.region),
			domain.OutputWebsiteEndpoint:    WebsiteEndpoint(b.name, b.region),
		},
	}
}

// normalizeETag strips the quotes S3 puts around ETags.
func normalizeETag(etag string) string {
	return strings.Trim(etag, `"`)
}
