package cloudfront

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	cftypes "github.com/aws/aws-sdk-go-v2/service/cloudfront/types"
	"github.com/google/uuid"

	aws_errors "github.com/olusolaa/webstack/internal/adapters/platform/aws/errors"
	"github.com/olusolaa/webstack/internal/adapters/platform/aws/shared"
	"github.com/olusolaa/webstack/internal/core/domain"
	apperrors "github.com/olusolaa/webstack/internal/errors"
)

const listPageSize = 100

type DistributionHandler struct {
	base
}

func NewDistributionHandler(cfg aws.Config, opts ...HandlerOption) *DistributionHandler {
	return &DistributionHandler{base: newBase(cfg, opts...)}
}

func (h *DistributionHandler) Kind() domain.ResourceKind { return domain.KindDistribution }

func asDistributionSpec(spec domain.ResourceSpec) (domain.DistributionSpec, error) {
	ds, ok := spec.(domain.DistributionSpec)
	if !ok {
		return ds, apperrors.New(apperrors.CodeTypeAssertionError, fmt.Sprintf("expected DistributionSpec, got %T", spec))
	}
	return ds, nil
}

// Discover walks the account's distributions, narrowing by origin id before
// looking at tags, and returns the one carrying the address tag of the desired resource.
func (h *DistributionHandler) Discover(ctx context.Context, spec domain.ResourceSpec) (*domain.LiveResource, error) {
	ds, err := asDistributionSpec(spec)
	if err != nil {
		return nil, err
	}
	logger := h.logger.WithFields(map[string]any{"address": ds.Address()})

	var marker *string
	for {
		if err := h.wait(ctx); err != nil {
			return nil, err
		}
		out, err := h.client.ListDistributions(ctx, &cloudfront.ListDistributionsInput{
			Marker:   marker,
			MaxItems: aws.Int32(listPageSize),
		})
		if err != nil {
			return nil, h.errorHandler.Handle("CloudFront", "ListDistributions", err, ctx)
		}
		list := out.DistributionList
		if list == nil {
			return nil, nil
		}
		for _, summary := range list.Items {
			if !hasOrigin(summary.Origins, ds.OriginID) {
				continue
			}
			tags, err := h.tags(ctx, aws.ToString(summary.ARN))
			if err != nil {
				return nil, err
			}
			if tags[domain.AddressTagKey] == ds.Address() {
				logger.Debugf(ctx, "Found distribution %s by address tag", aws.ToString(summary.Id))
				return h.Read(ctx, aws.ToString(summary.Id))
			}
		}
		if !aws.ToBool(list.IsTruncated) || list.NextMarker == nil {
			return nil, nil
		}
		marker = list.NextMarker
	}
}

func hasOrigin(origins *cftypes.Origins, originID string) bool {
	if origins == nil {
		return false
	}
	for _, o := range origins.Items {
		if aws.ToString(o.Id) == originID {
			return true
		}
	}
	return false
}

func (h *DistributionHandler) tags(ctx context.Context, arn string) (map[string]string, error) {
	if err := h.wait(ctx); err != nil {
		return nil, err
	}
	out, err := h.client.ListTagsForResource(ctx, &cloudfront.ListTagsForResourceInput{Resource: aws.String(arn)})
	if err != nil {
		return nil, h.errorHandler.Handle("CloudFront", "ListTagsForResource", err, ctx)
	}
	return fromCFTags(out.Tags), nil
}

func (h *DistributionHandler) get(ctx context.Context, id string) (*cftypes.Distribution, string, error) {
	if err := h.wait(ctx); err != nil {
		return nil, "", err
	}
	out, err := h.client.GetDistribution(ctx, &cloudfront.GetDistributionInput{Id: aws.String(id)})
	if err != nil {
		return nil, "", h.errorHandler.Handle("CloudFront", "GetDistribution", err, ctx)
	}
	if out.Distribution == nil {
		return nil, "", apperrors.New(apperrors.CodeResourceNotFound, fmt.Sprintf("distribution %s not found", id))
	}
	return out.Distribution, aws.ToString(out.ETag), nil
}

func (h *DistributionHandler) Read(ctx context.Context, id string) (*domain.LiveResource, error) {
	dist, _, err := h.get(ctx, id)
	if err != nil {
		return nil, err
	}
	tags, err := h.tags(ctx, aws.ToString(dist.ARN))
	if err != nil {
		return nil, err
	}
	return distributionToLive(dist, tags), nil
}

func (h *DistributionHandler) Create(ctx context.Context, spec domain.ResourceSpec) (*domain.LiveResource, error) {
	ds, err := asDistributionSpec(spec)
	if err != nil {
		return nil, err
	}
	if ds.OriginDomainName == "" || ds.OriginDomainName == domain.UnknownValue {
		return nil, apperrors.New(apperrors.CodeUnresolvedRef,
			fmt.Sprintf("%s: origin reference %s is not resolved", ds.Address(), ds.OriginRef))
	}
	logger := h.logger.WithFields(map[string]any{"address": ds.Address()})

	cfg := &cftypes.DistributionConfig{CallerReference: aws.String(uuid.NewString())}
	applySpec(cfg, ds)

	if err := h.wait(ctx); err != nil {
		return nil, err
	}
	out, err := h.client.CreateDistributionWithTags(ctx, &cloudfront.CreateDistributionWithTagsInput{
		DistributionConfigWithTags: &cftypes.DistributionConfigWithTags{
			DistributionConfig: cfg,
			Tags:               toCFTags(shared.ManagedTags(ds.Address(), ds.Tags)),
		},
	})
	if err != nil {
		return nil, h.errorHandler.Handle("CloudFront", "CreateDistributionWithTags", err, ctx)
	}
	id := aws.ToString(out.Distribution.Id)
	logger.Infof(ctx, "Created distribution %s (%s)", id, aws.ToString(out.Distribution.DomainName))

	if h.waitOnChange {
		if err := h.awaitDeployed(ctx, id); err != nil {
			return nil, err
		}
	}
	return h.Read(ctx, id)
}

// Update rewrites the managed part of the distribution config under the
// current ETag, then syncs tags.
func (h *DistributionHandler) Update(ctx context.Context, id string, spec domain.ResourceSpec, diffs []domain.AttributeDiff) (*domain.LiveResource, error) {
	ds, err := asDistributionSpec(spec)
	if err != nil {
		return nil, err
	}

	configChanged, tagsChanged := false, false
	for _, d := range diffs {
		if d.AttributeName == domain.KeyTags {
			tagsChanged = true
		} else {
			configChanged = true
		}
	}

	if configChanged {
		cfg, etag, err := h.config(ctx, id)
		if err != nil {
			return nil, err
		}
		applySpec(cfg, ds)
		if _, err := h.update(ctx, id, cfg, etag); err != nil {
			return nil, err
		}
		h.logger.Infof(ctx, "Updated distribution %s", id)
		if h.waitOnChange {
			if err := h.awaitDeployed(ctx, id); err != nil {
				return nil, err
			}
		}
	}

	if tagsChanged {
		dist, _, err := h.get(ctx, id)
		if err != nil {
			return nil, err
		}
		arn := aws.ToString(dist.ARN)
		live, err := h.tags(ctx, arn)
		if err != nil {
			return nil, err
		}
		if err := h.syncTags(ctx, arn, ds.Tags, shared.VisibleTags(live)); err != nil {
			return nil, err
		}
	}
	return h.Read(ctx, id)
}

func (h *DistributionHandler) syncTags(ctx context.Context, arn string, desired, live map[string]string) error {
	set, remove := shared.TagDelta(desired, live)
	if len(set) > 0 {
		if err := h.wait(ctx); err != nil {
			return err
		}
		if _, err := h.client.TagResource(ctx, &cloudfront.TagResourceInput{Resource: aws.String(arn), Tags: toCFTags(set)}); err != nil {
			return h.errorHandler.Handle("CloudFront", "TagResource", err, ctx)
		}
	}
	if len(remove) > 0 {
		if err := h.wait(ctx); err != nil {
			return err
		}
		_, err := h.client.UntagResource(ctx, &cloudfront.UntagResourceInput{
			Resource: aws.String(arn),
			TagKeys:  &cftypes.TagKeys{Items: remove},
		})
		if err != nil {
			return h.errorHandler.Handle("CloudFront", "UntagResource", err, ctx)
		}
	}
	return nil
}

func (h *DistributionHandler) config(ctx context.Context, id string) (*cftypes.DistributionConfig, string, error) {
	if err := h.wait(ctx); err != nil {
		return nil, "", err
	}
	out, err := h.client.GetDistributionConfig(ctx, &cloudfront.GetDistributionConfigInput{Id: aws.String(id)})
	if err != nil {
		return nil, "", h.errorHandler.Handle("CloudFront", "GetDistributionConfig", err, ctx)
	}
	if out.DistributionConfig == nil {
		return nil, "", apperrors.New(apperrors.CodeResourceNotFound, fmt.Sprintf("distribution %s has no config", id))
	}
	return out.DistributionConfig, aws.ToString(out.ETag), nil
}

// update returns the new ETag.
func (h *DistributionHandler) update(ctx context.Context, id string, cfg *cftypes.DistributionConfig, etag string) (string, error) {
	if err := h.wait(ctx); err != nil {
		return "", err
	}
	out, err := h.client.UpdateDistribution(ctx, &cloudfront.UpdateDistributionInput{
		Id:                 aws.String(id),
		IfMatch:            aws.String(etag),
		DistributionConfig: cfg,
	})
	if err != nil {
		return "", h.errorHandler.Handle("CloudFront", "UpdateDistribution", err, ctx)
	}
	return aws.ToString(out.ETag), nil
}

func (h *DistributionHandler) awaitDeployed(ctx context.Context, id string) error {
	h.logger.Infof(ctx, "Waiting for distribution %s to deploy", id)
	if err := h.waitDeployed(ctx, h.client, id, h.deployTimeout); err != nil {
		return apperrors.Wrap(err, apperrors.CodeTimeout, fmt.Sprintf("distribution %s did not finish deploying", id))
	}
	return nil
}

// Delete disables the distribution, waits for the change to deploy and
// deletes it with the resulting ETag.
func (h *DistributionHandler) Delete(ctx context.Context, id string) error {
	cfg, etag, err := h.config(ctx, id)
	if err != nil {
		if aws_errors.IsNotFound(err) {
			h.logger.Debugf(ctx, "Distribution %s already deleted", id)
			return nil
		}
		return err
	}

	if aws.ToBool(cfg.Enabled) {
		cfg.Enabled = aws.Bool(false)
		if _, err := h.update(ctx, id, cfg, etag); err != nil {
			return err
		}
		h.logger.Infof(ctx, "Disabled distribution %s", id)
	}
	if err := h.awaitDeployed(ctx, id); err != nil {
		return err
	}

	_, etag, err = h.get(ctx, id)
	if err != nil {
		return err
	}
	if err := h.wait(ctx); err != nil {
		return err
	}
	if _, err := h.client.DeleteDistribution(ctx, &cloudfront.DeleteDistributionInput{Id: aws.String(id), IfMatch: aws.String(etag)}); err != nil {
		if aws_errors.IsNotFound(err) {
			return nil
		}
		return h.errorHandler.Handle("CloudFront", "DeleteDistribution", err, ctx)
	}
	h.logger.Infof(ctx, "Deleted distribution %s", id)
	return nil
}
