package s3

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	s3mocks "github.com/olusolaa/webstack/internal/adapters/platform/aws/s3/mocks"
	sharedmocks "github.com/olusolaa/webstack/internal/adapters/platform/aws/shared/mocks"
	"github.com/olusolaa/webstack/internal/core/domain"
	portsmocks "github.com/olusolaa/webstack/internal/core/ports/mocks"
	apperrors "github.com/olusolaa/webstack/internal/errors"
)

type S3HandlerTestSuite struct {
	suite.Suite
	mockS3        *s3mocks.S3ClientInterface
	mockLimiter   *sharedmocks.RateLimiter
	mockLogger    *portsmocks.Logger
	bucketHandler *BucketHandler
	objectHandler *ObjectHandler
	ctx           context.Context
	cancel        context.CancelFunc

	mu    sync.Mutex
	calls []string
}

func (s *S3HandlerTestSuite) SetupTest() {
	s.mockS3 = new(s3mocks.S3ClientInterface)
	s.mockLimiter = new(sharedmocks.RateLimiter)
	s.mockLogger = portsmocks.NewQuietLogger()
	s.calls = nil
	s.ctx, s.cancel = context.WithTimeout(context.Background(), 5*time.Second)

	s.mockLimiter.On("Wait", mock.Anything, mock.Anything).Maybe().Return(nil)

	cfg := aws.Config{Region: "eu-central-1"}
	opts := []HandlerOption{WithS3Client(s.mockS3), WithRateLimiter(s.mockLimiter), WithLogger(s.mockLogger)}
	s.bucketHandler = NewBucketHandler(cfg, opts...)
	s.objectHandler = NewObjectHandler(cfg, opts...)
}

func (s *S3HandlerTestSuite) TearDownTest() {
	s.cancel()
}

func TestS3HandlerTestSuite(t *testing.T) {
	suite.Run(t, new(S3HandlerTestSuite))
}

func (s *S3HandlerTestSuite) record(name string) func(mock.Arguments) {
	return func(mock.Arguments) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.calls = append(s.calls, name)
	}
}

func apiErr(code string) error {
	return &smithy.GenericAPIError{Code: code, Message: code}
}

func statusErr(status int) error {
	return &awshttp.ResponseError{
		ResponseError: &smithyhttp.ResponseError{
			Response: &smithyhttp.Response{Response: &http.Response{StatusCode: status}},
			Err:      apiErr(http.StatusText(status)),
		},
	}
}

func siteBucket() domain.BucketSpec {
	return domain.BucketSpec{
		ResourceAddress:   "aws_s3_bucket.site",
		Name:              "my-site",
		Region:            "eu-central-1",
		Website:           domain.WebsiteConfig{IndexDocument: "index.html", ErrorDocument: "error.html"},
		ObjectOwnership:   "BucketOwnerPreferred",
		PublicAccessBlock: domain.PublicAccessBlock{},
		Policy:            domain.PublicReadPolicy("my-site"),
	}
}

// expectBucketRead wires every Get* call of a fully configured bucket.
func (s *S3HandlerTestSuite) expectBucketRead(name string) {
	policy, _ := domain.PublicReadPolicy(name).JSON()
	s.mockS3.On("HeadBucket", mock.Anything, mock.Anything).Return(&s3.HeadBucketOutput{}, nil)
	s.mockS3.On("GetBucketLocation", mock.Anything, mock.Anything).
		Return(&s3.GetBucketLocationOutput{LocationConstraint: s3types.BucketLocationConstraintEuCentral1}, nil)
	s.mockS3.On("GetBucketWebsite", mock.Anything, mock.Anything).Return(&s3.GetBucketWebsiteOutput{
		IndexDocument: &s3types.IndexDocument{Suffix: aws.String("index.html")},
		ErrorDocument: &s3types.ErrorDocument{Key: aws.String("error.html")},
	}, nil)
	s.mockS3.On("GetBucketOwnershipControls", mock.Anything, mock.Anything).Return(&s3.GetBucketOwnershipControlsOutput{
		OwnershipControls: &s3types.OwnershipControls{Rules: []s3types.OwnershipControlsRule{{ObjectOwnership: s3types.ObjectOwnershipBucketOwnerPreferred}}},
	}, nil)
	s.mockS3.On("GetPublicAccessBlock", mock.Anything, mock.Anything).Return(nil, apiErr("NoSuchPublicAccessBlockConfiguration"))
	s.mockS3.On("GetBucketPolicy", mock.Anything, mock.Anything).Return(&s3.GetBucketPolicyOutput{Policy: aws.String(policy)}, nil)
	s.mockS3.On("GetBucketTagging", mock.Anything, mock.Anything).Return(&s3.GetBucketTaggingOutput{
		TagSet: []s3types.Tag{{Key: aws.String(domain.AddressTagKey), Value: aws.String("aws_s3_bucket.site")}},
	}, nil)
}

func (s *S3HandlerTestSuite) TestKinds() {
	s.Equal(domain.KindStorageBucket, s.bucketHandler.Kind())
	s.Equal(domain.KindBucketObject, s.objectHandler.Kind())
}

func (s *S3HandlerTestSuite) TestBucketRead_MapsConfiguration() {
	s.expectBucketRead("my-site")

	live, err := s.bucketHandler.Read(s.ctx, "my-site")

	s.Require().NoError(err)
	desired := siteBucket().Attributes()
	for _, key := range []string{
		domain.KeyName,
		domain.StorageBucketRegionKey,
		domain.StorageBucketWebsiteIndexKey,
		domain.StorageBucketWebsiteErrorKey,
		domain.StorageBucketOwnershipKey,
		domain.StorageBucketPublicAccessKey,
		domain.StorageBucketPolicyKey,
	} {
		s.Equal(desired[key], live.Attributes[key], key)
	}
	s.Equal(map[string]string{}, live.Attributes[domain.KeyTags])
	s.Equal("my-site.s3.eu-central-1.amazonaws.com", live.Outputs[domain.OutputRegionalDomainName])
	s.Equal("my-site.s3-website.eu-central-1.amazonaws.com", live.Outputs[domain.OutputWebsiteEndpoint])
}

func (s *S3HandlerTestSuite) TestBucketRead_ForbiddenIsConflict() {
	s.mockS3.On("HeadBucket", mock.Anything, mock.Anything).Return(nil, statusErr(http.StatusForbidden)).Once()

	_, err := s.bucketHandler.Read(s.ctx, "someone-elses")

	s.True(apperrors.Is(err, apperrors.CodeResourceConflict))
	msg, _, ok := apperrors.GetUserFacingMessage(err)
	s.True(ok)
	s.Contains(msg, "someone-elses")
}

func (s *S3HandlerTestSuite) TestBucketDiscover_Missing() {
	s.mockS3.On("HeadBucket", mock.Anything, mock.Anything).Return(nil, statusErr(http.StatusNotFound)).Once()

	live, err := s.bucketHandler.Discover(s.ctx, siteBucket())

	s.NoError(err)
	s.Nil(live)
}

func (s *S3HandlerTestSuite) TestBucketCreate_OrderAndRegion() {
	s.mockS3.On("CreateBucket", mock.Anything, mock.MatchedBy(func(in *s3.CreateBucketInput) bool {
		return in.CreateBucketConfiguration != nil &&
			in.CreateBucketConfiguration.LocationConstraint == s3types.BucketLocationConstraintEuCentral1
	})).Run(s.record("CreateBucket")).Return(&s3.CreateBucketOutput{}, nil).Once()
	s.mockS3.On("PutBucketOwnershipControls", mock.Anything, mock.Anything).Run(s.record("Ownership")).Return(&s3.PutBucketOwnershipControlsOutput{}, nil).Once()
	s.mockS3.On("PutPublicAccessBlock", mock.Anything, mock.MatchedBy(func(in *s3.PutPublicAccessBlockInput) bool {
		c := in.PublicAccessBlockConfiguration
		return !aws.ToBool(c.BlockPublicAcls) && !aws.ToBool(c.BlockPublicPolicy) && !aws.ToBool(c.IgnorePublicAcls) && !aws.ToBool(c.RestrictPublicBuckets)
	})).Run(s.record("PublicAccessBlock")).Return(&s3.PutPublicAccessBlockOutput{}, nil).Once()
	s.mockS3.On("PutBucketPolicy", mock.Anything, mock.MatchedBy(func(in *s3.PutBucketPolicyInput) bool {
		doc, err := domain.ParsePolicy(aws.ToString(in.Policy))
		return err == nil && doc.Statement[0].Resource[0] == "arn:aws:s3:::my-site/*"
	})).Run(s.record("Policy")).Return(&s3.PutBucketPolicyOutput{}, nil).Once()
	s.mockS3.On("PutBucketWebsite", mock.Anything, mock.Anything).Run(s.record("Website")).Return(&s3.PutBucketWebsiteOutput{}, nil).Once()
	s.mockS3.On("PutBucketTagging", mock.Anything, mock.MatchedBy(func(in *s3.PutBucketTaggingInput) bool {
		return fromS3Tags(in.Tagging.TagSet)[domain.AddressTagKey] == "aws_s3_bucket.site"
	})).Run(s.record("Tagging")).Return(&s3.PutBucketTaggingOutput{}, nil).Once()
	s.expectBucketRead("my-site")

	live, err := s.bucketHandler.Create(s.ctx, siteBucket())

	s.Require().NoError(err)
	s.Equal("my-site", live.ID)
	s.Equal([]string{"CreateBucket", "Ownership", "PublicAccessBlock", "Policy", "Website", "Tagging"}, s.calls)
}

func (s *S3HandlerTestSuite) TestBucketCreate_NameTaken() {
	s.mockS3.On("CreateBucket", mock.Anything, mock.Anything).Return(nil, apiErr("BucketAlreadyExists")).Once()

	_, err := s.bucketHandler.Create(s.ctx, siteBucket())

	s.True(apperrors.Is(err, apperrors.CodeResourceConflict))
	s.mockS3.AssertNotCalled(s.T(), "PutBucketPolicy", mock.Anything, mock.Anything)
}

func (s *S3HandlerTestSuite) TestBucketUpdate_OnlyChangedSettings() {
	s.mockS3.On("PutBucketWebsite", mock.Anything, mock.Anything).Return(&s3.PutBucketWebsiteOutput{}, nil).Once()
	s.expectBucketRead("my-site")

	_, err := s.bucketHandler.Update(s.ctx, "my-site", siteBucket(), []domain.AttributeDiff{
		{AttributeName: domain.StorageBucketWebsiteIndexKey},
		{AttributeName: domain.StorageBucketWebsiteErrorKey},
	})

	s.Require().NoError(err)
	s.mockS3.AssertNumberOfCalls(s.T(), "PutBucketWebsite", 1)
	s.mockS3.AssertNotCalled(s.T(), "PutBucketPolicy", mock.Anything, mock.Anything)
	s.mockS3.AssertNotCalled(s.T(), "PutBucketTagging", mock.Anything, mock.Anything)
}

func (s *S3HandlerTestSuite) TestBucketDelete_EmptiesFirst() {
	s.mockS3.On("ListObjectsV2", mock.Anything, mock.Anything).Return(&s3.ListObjectsV2Output{
		Contents: []s3types.Object{{Key: aws.String("index.html")}, {Key: aws.String("css/site.css")}},
	}, nil).Once()
	s.mockS3.On("DeleteObjects", mock.Anything, mock.MatchedBy(func(in *s3.DeleteObjectsInput) bool {
		return len(in.Delete.Objects) == 2
	})).Run(s.record("DeleteObjects")).Return(&s3.DeleteObjectsOutput{}, nil).Once()
	s.mockS3.On("DeleteBucket", mock.Anything, mock.Anything).Run(s.record("DeleteBucket")).Return(&s3.DeleteBucketOutput{}, nil).Once()

	s.Require().NoError(s.bucketHandler.Delete(s.ctx, "my-site"))
	s.Equal([]string{"DeleteObjects", "DeleteBucket"}, s.calls)
}

func (s *S3HandlerTestSuite) TestBucketDelete_AlreadyGone() {
	s.mockS3.On("ListObjectsV2", mock.Anything, mock.Anything).Return(nil, apiErr("NoSuchBucket")).Once()

	s.NoError(s.bucketHandler.Delete(s.ctx, "my-site"))
	s.mockS3.AssertNotCalled(s.T(), "DeleteBucket", mock.Anything, mock.Anything)
}

func (s *S3HandlerTestSuite) TestObjectRead() {
	s.mockS3.On("HeadObject", mock.Anything, mock.MatchedBy(func(in *s3.HeadObjectInput) bool {
		return aws.ToString(in.Bucket) == "my-site" && aws.ToString(in.Key) == "css/site.css"
	})).Return(&s3.HeadObjectOutput{ETag: aws.String(`"abc123"`), ContentType: aws.String("text/css")}, nil).Once()

	live, err := s.objectHandler.Read(s.ctx, "my-site/css/site.css")

	s.Require().NoError(err)
	s.Equal("abc123", live.Attributes[domain.BucketObjectETagKey])
	s.Equal("text/css", live.Attributes[domain.BucketObjectContentTypeKey])
	s.Equal("css/site.css", live.Attributes[domain.BucketObjectKeyKey])
}

func (s *S3HandlerTestSuite) TestObjectRead_MalformedID() {
	_, err := s.objectHandler.Read(s.ctx, "no-slash")
	s.True(apperrors.Is(err, apperrors.CodeInputValidation))
}

func (s *S3HandlerTestSuite) TestObjectDiscover_Missing() {
	s.mockS3.On("HeadObject", mock.Anything, mock.Anything).Return(nil, apiErr("NotFound")).Once()

	live, err := s.objectHandler.Discover(s.ctx, domain.ObjectSpec{Bucket: "my-site", Key: "index.html"})

	s.NoError(err)
	s.Nil(live)
}

func (s *S3HandlerTestSuite) TestObjectCreate_UploadsWithContentType() {
	dir := s.T().TempDir()
	src := filepath.Join(dir, "index.html")
	s.Require().NoError(os.WriteFile(src, []byte("<h1>hi</h1>"), 0o644))

	spec := domain.ObjectSpec{
		ResourceAddress: `aws_s3_object.site["index.html"]`,
		Bucket:          "my-site",
		Key:             "index.html",
		Source:          src,
		ContentType:     "text/html",
		ETag:            "deadbeef",
		Size:            11,
	}
	s.mockS3.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return aws.ToString(in.ContentType) == "text/html" && aws.ToInt64(in.ContentLength) == 11 && in.Body != nil
	})).Return(&s3.PutObjectOutput{ETag: aws.String(`"deadbeef"`)}, nil).Once()

	live, err := s.objectHandler.Create(s.ctx, spec)

	s.Require().NoError(err)
	s.Equal("my-site/index.html", live.ID)
	s.Equal("deadbeef", live.Outputs[domain.OutputETag])
}

func (s *S3HandlerTestSuite) TestObjectCreate_MissingSource() {
	_, err := s.objectHandler.Create(s.ctx, domain.ObjectSpec{Bucket: "b", Key: "k", Source: "/does/not/exist"})

	s.True(apperrors.Is(err, apperrors.CodeAssetReadError))
	s.mockS3.AssertNotCalled(s.T(), "PutObject", mock.Anything, mock.Anything)
}

func (s *S3HandlerTestSuite) TestObjectDelete_AlreadyGone() {
	s.mockS3.On("DeleteObject", mock.Anything, mock.Anything).Return(nil, apiErr("NoSuchKey")).Once()

	s.NoError(s.objectHandler.Delete(s.ctx, "my-site/index.html"))
}

func TestWebsiteEndpoint(t *testing.T) {
	tests := []struct {
		name, bucket, region, want string
	}{
		{"default region", "b", "", "b.s3-website-us-east-1.amazonaws.com"},
		{"dash region", "b", "eu-west-1", "b.s3-website-eu-west-1.amazonaws.com"},
		{"dot region", "b", "eu-central-1", "b.s3-website.eu-central-1.amazonaws.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WebsiteEndpoint(tt.bucket, tt.region))
		})
	}
}

func TestRegionFromLocation(t *testing.T) {
	assert.Equal(t, "us-east-1", regionFromLocation(""))
	assert.Equal(t, "eu-west-1", regionFromLocation(s3types.BucketLocationConstraintEu))
	assert.Equal(t, "ap-south-1", regionFromLocation(s3types.BucketLocationConstraintApSouth1))
}
