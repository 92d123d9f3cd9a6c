package storage

import (
	"context"

	"github.com/olusolaa/webstack/internal/core/domain"
	"github.com/olusolaa/webstack/internal/resources/helper"
)

var bucketRules = []helper.Rule{
	{Key: domain.KeyName, ForcesReplace: true},
	{Key: domain.StorageBucketRegionKey, ForcesReplace: true},
	{Key: domain.StorageBucketOwnershipKey},
	{Key: domain.StorageBucketPublicAccessKey},
	{Key: domain.StorageBucketPolicyKey, Compare: helper.CompareJSONStrings},
	{Key: domain.StorageBucketWebsiteIndexKey},
	{Key: domain.StorageBucketWebsiteErrorKey},
	{Key: domain.KeyTags, Compare: helper.CompareTagsIgnoringAWS},
}

type BucketComparer struct{}

func NewBucketComparer() *BucketComparer {
	return &BucketComparer{}
}

func (c *BucketComparer) Kind() domain.ResourceKind { return domain.KindStorageBucket }

func (c *BucketComparer) Compare(ctx context.Context, desired domain.ResourceSpec, live *domain.LiveResource) ([]domain.AttributeDiff, bool, error) {
	if err := helper.CheckInputs(c.Kind(), desired, live); err != nil {
		return nil, false, err
	}
	return helper.CompareAttributes(ctx, desired.Attributes(), live.Attributes, bucketRules)
}
