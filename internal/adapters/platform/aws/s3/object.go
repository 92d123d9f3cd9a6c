package s3

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	aws_errors "github.com/olusolaa/webstack/internal/adapters/platform/aws/errors"
	"github.com/olusolaa/webstack/internal/core/domain"
	apperrors "github.com/olusolaa/webstack/internal/errors"
)

// ObjectHandler uploads site files. Object ids have the form "bucket/key".
type ObjectHandler struct {
	base
}

func NewObjectHandler(cfg aws.Config, opts ...HandlerOption) *ObjectHandler {
	return &ObjectHandler{base: newBase(cfg, opts...)}
}

func (h *ObjectHandler) Kind() domain.ResourceKind { return domain.KindBucketObject }

func asObjectSpec(spec domain.ResourceSpec) (domain.ObjectSpec, error) {
	obj, ok := spec.(domain.ObjectSpec)
	if !ok {
		return obj, apperrors.New(apperrors.CodeTypeAssertionError, fmt.Sprintf("expected ObjectSpec, got %T", spec))
	}
	return obj, nil
}

func (h *ObjectHandler) Discover(ctx context.Context, spec domain.ResourceSpec) (*domain.LiveResource, error) {
	obj, err := asObjectSpec(spec)
	if err != nil {
		return nil, err
	}
	live, err := h.Read(ctx, domain.ObjectID(obj.Bucket, obj.Key))
	if apperrors.Is(err, apperrors.CodeResourceNotFound) {
		return nil, nil
	}
	return live, err
}

func (h *ObjectHandler) Read(ctx context.Context, id string) (*domain.LiveResource, error) {
	bucket, key, ok := domain.SplitObjectID(id)
	if !ok {
		return nil, apperrors.New(apperrors.CodeInputValidation, fmt.Sprintf("malformed object id %q", id))
	}
	if err := h.wait(ctx); err != nil {
		return nil, err
	}
	out, err := h.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
	if err != nil {
		return nil, h.errorHandler.Handle("S3", "HeadObject "+id, err, ctx)
	}
	return objectLive(bucket, key, aws.ToString(out.ContentType), aws.ToString(out.ETag)), nil
}

func objectLive(bucket, key, contentType, etag string) *domain.LiveResource {
	id := domain.ObjectID(bucket, key)
	etag = normalizeETag(etag)
	return &domain.LiveResource{
		Kind: domain.KindBucketObject,
		ID:   id,
		Attributes: map[string]any{
			domain.BucketObjectBucketKey:      bucket,
			domain.BucketObjectKeyKey:         key,
			domain.BucketObjectContentTypeKey: contentType,
			domain.BucketObjectETagKey:        etag,
		},
		Outputs: map[string]string{
			domain.OutputID:   id,
			domain.OutputETag: etag,
		},
	}
}

func (h *ObjectHandler) Create(ctx context.Context, spec domain.ResourceSpec) (*domain.LiveResource, error) {
	obj, err := asObjectSpec(spec)
	if err != nil {
		return nil, err
	}
	return h.put(ctx, obj)
}

// Update uploads the file again; content and metadata are replaced together.
func (h *ObjectHandler) Update(ctx context.Context, id string, spec domain.ResourceSpec, diffs []domain.AttributeDiff) (*domain.LiveResource, error) {
	obj, err := asObjectSpec(spec)
	if err != nil {
		return nil, err
	}
	return h.put(ctx, obj)
}

func (h *ObjectHandler) put(ctx context.Context, obj domain.ObjectSpec) (*domain.LiveResource, error) {
	f, err := os.Open(obj.Source)
	if err != nil {
		return nil, apperrors.WrapUserFacing(err, apperrors.CodeAssetReadError,
			fmt.Sprintf("cannot read %s for %s", obj.Source, obj.Address()),
			"Check that the site directory has not changed since the plan was made.")
	}
	defer f.Close()

	if err := h.wait(ctx); err != nil {
		return nil, err
	}
	out, err := h.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(obj.Bucket),
		Key:           aws.String(obj.Key),
		Body:          f,
		ContentType:   aws.String(obj.ContentType),
		ContentLength: aws.Int64(obj.Size),
	})
	if err != nil {
		return nil, h.errorHandler.Handle("S3", "PutObject "+obj.Key, err, ctx)
	}
	h.logger.Debugf(ctx, "Uploaded %s to s3://%s/%s", obj.Source, obj.Bucket, obj.Key)

	etag := aws.ToString(out.ETag)
	if etag == "" {
		etag = obj.ETag
	}
	return objectLive(obj.Bucket, obj.Key, obj.ContentType, etag), nil
}

func (h *ObjectHandler) Delete(ctx context.Context, id string) error {
	bucket, key, ok := domain.SplitObjectID(id)
	if !ok {
		return apperrors.New(apperrors.CodeInputValidation, fmt.Sprintf("malformed object id %q", id))
	}
	if err := h.wait(ctx); err != nil {
		return err
	}
	if _, err := h.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)}); err != nil {
		if aws_errors.IsNotFound(err) {
			return nil
		}
		return h.errorHandler.Handle("S3", "DeleteObject "+id, err, ctx)
	}
	return nil
}
