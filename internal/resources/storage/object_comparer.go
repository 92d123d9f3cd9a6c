package storage

import (
	"context"

	"github.com/olusolaa/webstack/internal/core/domain"
	"github.com/olusolaa/webstack/internal/resources/helper"
)

// Content changes show up as a different ETag; both fields are fixed by
// uploading the object again.
var objectRules = []helper.Rule{
	{Key: domain.BucketObjectBucketKey, ForcesReplace: true},
	{Key: domain.BucketObjectKeyKey, ForcesReplace: true},
	{Key: domain.BucketObjectETagKey},
	{Key: domain.BucketObjectContentTypeKey},
}

type ObjectComparer struct{}

func NewObjectComparer() *ObjectComparer {
	return &ObjectComparer{}
}

func (c *ObjectComparer) Kind() domain.ResourceKind { return domain.KindBucketObject }

func (c *ObjectComparer) Compare(ctx context.Context, desired domain.ResourceSpec, live *domain.LiveResource) ([]domain.AttributeDiff, bool, error) {
	if err := helper.CheckInputs(c.Kind(), desired, live); err != nil {
		return nil, false, err
	}
	return helper.CompareAttributes(ctx, desired.Attributes(), live.Attributes, objectRules)
}
