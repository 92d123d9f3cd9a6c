package s3

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"golang.org/x/sync/errgroup"

	aws_errors "github.com/olusolaa/webstack/internal/adapters/platform/aws/errors"
	"github.com/olusolaa/webstack/internal/adapters/platform/aws/shared"
	"github.com/olusolaa/webstack/internal/core/domain"
	apperrors "github.com/olusolaa/webstack/internal/errors"
)

// deleteBatchSize is the DeleteObjects limit.
const deleteBatchSize = 1000

type BucketHandler struct {
	base
}

func NewBucketHandler(cfg aws.Config, opts ...HandlerOption) *BucketHandler {
	return &BucketHandler{base: newBase(cfg, opts...)}
}

func (h *BucketHandler) Kind() domain.ResourceKind { return domain.KindStorageBucket }

func asBucketSpec(spec domain.ResourceSpec) (domain.BucketSpec, error) {
	bs, ok := spec.(domain.BucketSpec)
	if !ok {
		return bs, apperrors.New(apperrors.CodeTypeAssertionError, fmt.Sprintf("expected BucketSpec, got %T", spec))
	}
	return bs, nil
}

// Discover reads the bucket by name; bucket names are global so the name is
// the identity.
func (h *BucketHandler) Discover(ctx context.Context, spec domain.ResourceSpec) (*domain.LiveResource, error) {
	bs, err := asBucketSpec(spec)
	if err != nil {
		return nil, err
	}
	live, err := h.Read(ctx, bs.Name)
	if apperrors.Is(err, apperrors.CodeResourceNotFound) {
		return nil, nil
	}
	return live, err
}

func (h *BucketHandler) Read(ctx context.Context, name string) (*domain.LiveResource, error) {
	logger := h.logger.WithFields(map[string]any{"bucket_name": name})

	if err := h.wait(ctx); err != nil {
		return nil, err
	}
	if _, err := h.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(name)}); err != nil {
		if aws_errors.HTTPStatus(err) == http.StatusForbidden {
			return nil, apperrors.WrapUserFacing(err, apperrors.CodeResourceConflict,
				fmt.Sprintf("bucket %s exists but is not accessible with the current credentials", name),
				"Bucket names are global. Choose another bucket name or use credentials of the owning account.")
		}
		return nil, h.errorHandler.Handle("S3", "HeadBucket", err, ctx)
	}

	state := &bucketState{name: name}
	g, childCtx := errgroup.WithContext(ctx)
	var mu sync.Mutex

	// run executes one Get* call; codes listed in absent mean the setting is
	// not configured and leave the zero value in place.
	run := func(operation string, absent []string, call func(context.Context) error) {
		g.Go(func() error {
			if err := h.wait(childCtx); err != nil {
				return err
			}
			err := call(childCtx)
			if err == nil {
				return nil
			}
			if len(absent) > 0 && aws_errors.HasCode(err, absent...) {
				logger.Debugf(childCtx, "%s: not configured", operation)
				return nil
			}
			return h.errorHandler.Handle("S3", operation, err, childCtx)
		})
	}

	run("GetBucketLocation", nil, func(c context.Context) error {
		out, err := h.client.GetBucketLocation(c, &s3.GetBucketLocationInput{Bucket: aws.String(name)})
		if err == nil {
			mu.Lock()
			state.region = regionFromLocation(out.LocationConstraint)
			mu.Unlock()
		}
		return err
	})

	run("GetBucketWebsite", []string{"NoSuchWebsiteConfiguration"}, func(c context.Context) error {
		out, err := h.client.GetBucketWebsite(c, &s3.GetBucketWebsiteInput{Bucket: aws.String(name)})
		if err == nil {
			mu.Lock()
			if out.IndexDocument != nil {
				state.indexDocument = aws.ToString(out.IndexDocument.Suffix)
			}
			if out.ErrorDocument != nil {
				state.errorDocument = aws.ToString(out.ErrorDocument.Key)
			}
			mu.Unlock()
		}
		return err
	})

	run("GetBucketOwnershipControls", []string{"OwnershipControlsNotFoundError"}, func(c context.Context) error {
		out, err := h.client.GetBucketOwnershipControls(c, &s3.GetBucketOwnershipControlsInput{Bucket: aws.String(name)})
		if err == nil && out.OwnershipControls != nil && len(out.OwnershipControls.Rules) > 0 {
			mu.Lock()
			state.objectOwnership = string(out.OwnershipControls.Rules[0].ObjectOwnership)
			mu.Unlock()
		}
		return err
	})

	run("GetPublicAccessBlock", []string{"NoSuchPublicAccessBlockConfiguration"}, func(c context.Context) error {
		out, err := h.client.GetPublicAccessBlock(c, &s3.GetPublicAccessBlockInput{Bucket: aws.String(name)})
		if err == nil && out.PublicAccessBlockConfiguration != nil {
			cfg := out.PublicAccessBlockConfiguration
			mu.Lock()
			state.publicAccessBlock = domain.PublicAccessBlock{
				BlockPublicAcls:       aws.ToBool(cfg.BlockPublicAcls),
				BlockPublicPolicy:     aws.ToBool(cfg.BlockPublicPolicy),
				IgnorePublicAcls:      aws.ToBool(cfg.IgnorePublicAcls),
				RestrictPublicBuckets: aws.ToBool(cfg.RestrictPublicBuckets),
			}
			mu.Unlock()
		}
		return err
	})

	run("GetBucketPolicy", []string{"NoSuchBucketPolicy"}, func(c context.Context) error {
		out, err := h.client.GetBucketPolicy(c, &s3.GetBucketPolicyInput{Bucket: aws.String(name)})
		if err == nil {
			mu.Lock()
			state.policy = aws.ToString(out.Policy)
			mu.Unlock()
		}
		return err
	})

	run("GetBucketTagging", []string{"NoSuchTagSet"}, func(c context.Context) error {
		out, err := h.client.GetBucketTagging(c, &s3.GetBucketTaggingInput{Bucket: aws.String(name)})
		if err == nil {
			mu.Lock()
			state.tags = fromS3Tags(out.TagSet)
			mu.Unlock()
		}
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return state.toLive(), nil
}

func (h *BucketHandler) Create(ctx context.Context, spec domain.ResourceSpec) (*domain.LiveResource, error) {
	bs, err := asBucketSpec(spec)
	if err != nil {
		return nil, err
	}
	logger := h.logger.WithFields(map[string]any{"address": bs.Address(), "bucket_name": bs.Name})

	input := &s3.CreateBucketInput{Bucket: aws.String(bs.Name)}
	region := bs.Region
	if region == "" {
		region = h.region
	}
	if region != "" && region != defaultRegion {
		input.CreateBucketConfiguration = &s3types.CreateBucketConfiguration{
			LocationConstraint: s3types.BucketLocationConstraint(region),
		}
	}

	if err := h.wait(ctx); err != nil {
		return nil, err
	}
	if _, err := h.client.CreateBucket(ctx, input); err != nil {
		return nil, h.errorHandler.Handle("S3", "CreateBucket", err, ctx)
	}
	logger.Infof(ctx, "Created bucket %s in %s", bs.Name, region)

	// Public access block must be relaxed before a public policy is accepted.
	steps := []func(context.Context, domain.BucketSpec) error{
		h.putOwnership,
		h.putPublicAccessBlock,
		h.putPolicy,
		h.putWebsite,
		h.putTags,
	}
	for _, step := range steps {
		if err := step(ctx, bs); err != nil {
			return nil, err
		}
	}
	return h.Read(ctx, bs.Name)
}

// Update re-applies only the settings named by diffs.
func (h *BucketHandler) Update(ctx context.Context, name string, spec domain.ResourceSpec, diffs []domain.AttributeDiff) (*domain.LiveResource, error) {
	bs, err := asBucketSpec(spec)
	if err != nil {
		return nil, err
	}
	changed := make(map[string]bool, len(diffs))
	for _, d := range diffs {
		changed[d.AttributeName] = true
	}

	type step struct {
		keys []string
		fn   func(context.Context, domain.BucketSpec) error
	}
	steps := []step{
		{[]string{domain.StorageBucketOwnershipKey}, h.putOwnership},
		{[]string{domain.StorageBucketPublicAccessKey}, h.putPublicAccessBlock},
		{[]string{domain.StorageBucketPolicyKey}, h.putPolicy},
		{[]string{domain.StorageBucketWebsiteIndexKey, domain.StorageBucketWebsiteErrorKey}, h.putWebsite},
		{[]string{domain.KeyTags}, h.putTags},
	}
	for _, st := range steps {
		for _, k := range st.keys {
			if changed[k] {
				if err := st.fn(ctx, bs); err != nil {
					return nil, err
				}
				break
			}
		}
	}
	return h.Read(ctx, name)
}

func (h *BucketHandler) putOwnership(ctx context.Context, bs domain.BucketSpec) error {
	if bs.ObjectOwnership == "" {
		return nil
	}
	if err := h.wait(ctx); err != nil {
		return err
	}
	_, err := h.client.PutBucketOwnershipControls(ctx, &s3.PutBucketOwnershipControlsInput{
		Bucket: aws.String(bs.Name),
		OwnershipControls: &s3types.OwnershipControls{
			Rules: []s3types.OwnershipControlsRule{{ObjectOwnership: s3types.ObjectOwnership(bs.ObjectOwnership)}},
		},
	})
	if err != nil {
		return h.errorHandler.Handle("S3", "PutBucketOwnershipControls", err, ctx)
	}
	return nil
}

func (h *BucketHandler) putPublicAccessBlock(ctx context.Context, bs domain.BucketSpec) error {
	if err := h.wait(ctx); err != nil {
		return err
	}
	pab := bs.PublicAccessBlock
	_, err := h.client.PutPublicAccessBlock(ctx, &s3.PutPublicAccessBlockInput{
		Bucket: aws.String(bs.Name),
		PublicAccessBlockConfiguration: &s3types.PublicAccessBlockConfiguration{
			BlockPublicAcls:       aws.Bool(pab.BlockPublicAcls),
			BlockPublicPolicy:     aws.Bool(pab.BlockPublicPolicy),
			IgnorePublicAcls:      aws.Bool(pab.IgnorePublicAcls),
			RestrictPublicBuckets: aws.Bool(pab.RestrictPublicBuckets),
		},
	})
	if err != nil {
		return h.errorHandler.Handle("S3", "PutPublicAccessBlock", err, ctx)
	}
	return nil
}

func (h *BucketHandler) putPolicy(ctx context.Context, bs domain.BucketSpec) error {
	policy, err := bs.Policy.JSON()
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to render bucket policy")
	}
	if err := h.wait(ctx); err != nil {
		return err
	}
	if policy == "" {
		if _, err := h.client.DeleteBucketPolicy(ctx, &s3.DeleteBucketPolicyInput{Bucket: aws.String(bs.Name)}); err != nil {
			return h.errorHandler.Handle("S3", "DeleteBucketPolicy", err, ctx)
		}
		return nil
	}
	if _, err := h.client.PutBucketPolicy(ctx, &s3.PutBucketPolicyInput{Bucket: aws.String(bs.Name), Policy: aws.String(policy)}); err != nil {
		return h.errorHandler.Handle("S3", "PutBucketPolicy", err, ctx)
	}
	return nil
}

func (h *BucketHandler) putWebsite(ctx context.Context, bs domain.BucketSpec) error {
	if bs.Website.IndexDocument == "" {
		return nil
	}
	cfg := &s3types.WebsiteConfiguration{
		IndexDocument: &s3types.IndexDocument{Suffix: aws.String(bs.Website.IndexDocument)},
	}
	if bs.Website.ErrorDocument != "" {
		cfg.ErrorDocument = &s3types.ErrorDocument{Key: aws.String(bs.Website.ErrorDocument)}
	}
	if err := h.wait(ctx); err != nil {
		return err
	}
	if _, err := h.client.PutBucketWebsite(ctx, &s3.PutBucketWebsiteInput{Bucket: aws.String(bs.Name), WebsiteConfiguration: cfg}); err != nil {
		return h.errorHandler.Handle("S3", "PutBucketWebsite", err, ctx)
	}
	return nil
}

func (h *BucketHandler) putTags(ctx context.Context, bs domain.BucketSpec) error {
	if err := h.wait(ctx); err != nil {
		return err
	}
	_, err := h.client.PutBucketTagging(ctx, &s3.PutBucketTaggingInput{
		Bucket:  aws.String(bs.Name),
		Tagging: &s3types.Tagging{TagSet: toS3Tags(shared.ManagedTags(bs.Address(), bs.Tags))},
	})
	if err != nil {
		return h.errorHandler.Handle("S3", "PutBucketTagging", err, ctx)
	}
	return nil
}

// Delete empties the bucket and removes it.
func (h *BucketHandler) Delete(ctx context.Context, name string) error {
	if err := h.empty(ctx, name); err != nil {
		if aws_errors.IsNotFound(err) {
			h.logger.Debugf(ctx, "Bucket %s already deleted", name)
			return nil
		}
		return err
	}
	if err := h.wait(ctx); err != nil {
		return err
	}
	if _, err := h.client.DeleteBucket(ctx, &s3.DeleteBucketInput{Bucket: aws.String(name)}); err != nil {
		if aws_errors.IsNotFound(err) {
			return nil
		}
		return h.errorHandler.Handle("S3", "DeleteBucket", err, ctx)
	}
	h.logger.Infof(ctx, "Deleted bucket %s", name)
	return nil
}

func (h *BucketHandler) empty(ctx context.Context, name string) error {
	paginator := s3.NewListObjectsV2Paginator(h.client, &s3.ListObjectsV2Input{Bucket: aws.String(name)})
	removed := 0
	for paginator.HasMorePages() {
		if err := h.wait(ctx); err != nil {
			return err
		}
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return h.errorHandler.Handle("S3", "ListObjectsV2", err, ctx)
		}
		for start := 0; start < len(page.Contents); start += deleteBatchSize {
			end := start + deleteBatchSize
			if end > len(page.Contents) {
				end = len(page.Contents)
			}
			ids := make([]s3types.ObjectIdentifier, 0, end-start)
			for _, obj := range page.Contents[start:end] {
				ids = append(ids, s3types.ObjectIdentifier{Key: obj.Key})
			}
			if err := h.wait(ctx); err != nil {
				return err
			}
			out, err := h.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
				Bucket: aws.String(name),
				Delete: &s3types.Delete{Objects: ids, Quiet: aws.Bool(true)},
			})
			if err != nil {
				return h.errorHandler.Handle("S3", "DeleteObjects", err, ctx)
			}
			if len(out.Errors) > 0 {
				first := out.Errors[0]
				return apperrors.New(apperrors.CodePlatformAPIError,
					fmt.Sprintf("failed to delete %d objects from %s, first: %s (%s)", len(out.Errors), name, aws.ToString(first.Key), aws.ToString(first.Code)))
			}
			removed += len(ids)
		}
	}
	if removed > 0 {
		h.logger.Infof(ctx, "Removed %d objects from bucket %s", removed, name)
	}
	return nil
}
