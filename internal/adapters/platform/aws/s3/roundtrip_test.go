package s3

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/mock"

	"github.com/olusolaa/webstack/internal/core/domain"
	"github.com/olusolaa/webstack/internal/resources/storage"
	"github.com/olusolaa/webstack/internal/site"
	"github.com/olusolaa/webstack/internal/stack"
)

const indexMD5 = "5d41402abc4b2a76b9719d911017c592"

// stackResource builds the full stack in eu-central-1 and returns the
// resource at address.
func (s *S3HandlerTestSuite) stackResource(address string) domain.ResourceSpec {
	in := stack.DefaultInputs()
	in.VPCID = "vpc-0a1b2c"
	in.AMIID = "ami-0123456789abcdef0"
	in.KeyName = "deploy"
	assets := []site.Asset{{Key: "index.html", Source: "site/index.html", Size: 5, MD5: indexMD5, ContentType: "text/html; charset=utf-8"}}

	plan, err := stack.Build(in, "eu-central-1", assets)
	s.Require().NoError(err)
	for _, r := range plan.Resources() {
		if r.Address() == address {
			return r
		}
	}
	s.FailNow("resource not in plan", address)
	return nil
}

func (s *S3HandlerTestSuite) TestBucketRoundTrip_NoDiffs() {
	bucket := s.stackResource(stack.BucketAddress).(domain.BucketSpec)

	// S3 hands the policy back reformatted with a single Action string and
	// the {"AWS":"*"} principal.
	awsPolicy := `{
  "Version" : "2012-10-17",
  "Statement" : [ {
    "Sid" : "PublicReadGetObject",
    "Effect" : "Allow",
    "Principal" : { "AWS" : "*" },
    "Action" : "s3:GetObject",
    "Resource" : "arn:aws:s3:::` + bucket.Name + `/*"
  } ]
}`
	s.mockS3.On("HeadBucket", mock.Anything, mock.Anything).Return(&s3.HeadBucketOutput{}, nil)
	s.mockS3.On("GetBucketLocation", mock.Anything, mock.Anything).
		Return(&s3.GetBucketLocationOutput{LocationConstraint: s3types.BucketLocationConstraintEuCentral1}, nil)
	s.mockS3.On("GetBucketWebsite", mock.Anything, mock.Anything).Return(&s3.GetBucketWebsiteOutput{
		IndexDocument: &s3types.IndexDocument{Suffix: aws.String(bucket.Website.IndexDocument)},
		ErrorDocument: &s3types.ErrorDocument{Key: aws.String(bucket.Website.ErrorDocument)},
	}, nil)
	s.mockS3.On("GetBucketOwnershipControls", mock.Anything, mock.Anything).Return(&s3.GetBucketOwnershipControlsOutput{
		OwnershipControls: &s3types.OwnershipControls{Rules: []s3types.OwnershipControlsRule{{ObjectOwnership: s3types.ObjectOwnership(bucket.ObjectOwnership)}}},
	}, nil)
	s.mockS3.On("GetPublicAccessBlock", mock.Anything, mock.Anything).Return(&s3.GetPublicAccessBlockOutput{
		PublicAccessBlockConfiguration: &s3types.PublicAccessBlockConfiguration{
			BlockPublicAcls:       aws.Bool(false),
			BlockPublicPolicy:     aws.Bool(false),
			IgnorePublicAcls:      aws.Bool(false),
			RestrictPublicBuckets: aws.Bool(false),
		},
	}, nil)
	s.mockS3.On("GetBucketPolicy", mock.Anything, mock.Anything).Return(&s3.GetBucketPolicyOutput{Policy: aws.String(awsPolicy)}, nil)
	s.mockS3.On("GetBucketTagging", mock.Anything, mock.Anything).Return(&s3.GetBucketTaggingOutput{
		TagSet: toS3Tags(map[string]string{
			domain.AddressTagKey:          bucket.Address(),
			"aws:cloudformation:stack-id": "unrelated",
		}),
	}, nil)

	live, err := s.bucketHandler.Read(s.ctx, bucket.Name)
	s.Require().NoError(err)

	diffs, replace, err := storage.NewBucketComparer().Compare(s.ctx, bucket, live)
	s.Require().NoError(err)
	s.Empty(diffs)
	s.False(replace)
}

func (s *S3HandlerTestSuite) TestObjectRoundTrip_NoDiffs() {
	obj := s.stackResource(stack.ObjectAddress("index.html")).(domain.ObjectSpec)
	s.mockS3.On("HeadObject", mock.Anything, mock.MatchedBy(func(in *s3.HeadObjectInput) bool {
		return aws.ToString(in.Bucket) == obj.Bucket && aws.ToString(in.Key) == obj.Key
	})).Return(&s3.HeadObjectOutput{
		ETag:          aws.String(`"` + indexMD5 + `"`),
		ContentType:   aws.String(obj.ContentType),
		ContentLength: aws.Int64(obj.Size),
	}, nil).Once()

	live, err := s.objectHandler.Read(s.ctx, domain.ObjectID(obj.Bucket, obj.Key))
	s.Require().NoError(err)

	diffs, replace, err := storage.NewObjectComparer().Compare(s.ctx, obj, live)
	s.Require().NoError(err)
	s.Empty(diffs)
	s.False(replace)
}
