package mocks

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	"github.com/stretchr/testify/mock"
)

// CloudFrontClientInterface is a mock type for the CloudFrontClientInterface type
type CloudFrontClientInterface struct {
	mock.Mock
}

func (m *CloudFrontClientInterface) CreateDistributionWithTags(ctx context.Context, params *cloudfront.CreateDistributionWithTagsInput, optFns ...func(*cloudfront.Options)) (*cloudfront.CreateDistributionWithTagsOutput, error) {
	ret := m.Called(ctx, params)
	if ret.Get(0) == nil {
		return nil, ret.Error(1)
	}
	return ret.Get(0).(*cloudfront.CreateDistributionWithTagsOutput), ret.Error(1)
}

func (m *CloudFrontClientInterface) GetDistribution(ctx context.Context, params *cloudfront.GetDistributionInput, optFns ...func(*cloudfront.Options)) (*cloudfront.GetDistributionOutput, error) {
	ret := m.Called(ctx, params)
	if ret.Get(0) == nil {
		return nil, ret.Error(1)
	}
	return ret.Get(0).(*cloudfront.GetDistributionOutput), ret.Error(1)
}

func (m *CloudFrontClientInterface) GetDistributionConfig(ctx context.Context, params *cloudfront.GetDistributionConfigInput, optFns ...func(*cloudfront.Options)) (*cloudfront.GetDistributionConfigOutput, error) {
	ret := m.Called(ctx, params)
	if ret.Get(0) == nil {
		return nil, ret.Error(1)
	}
	return ret.Get(0).(*cloudfront.GetDistributionConfigOutput), ret.Error(1)
}

func (m *CloudFrontClientInterface) UpdateDistribution(ctx context.Context, params *cloudfront.UpdateDistributionInput, optFns ...func(*cloudfront.Options)) (*cloudfront.UpdateDistributionOutput, error) {
	ret := m.Called(ctx, params)
	if ret.Get(0) == nil {
		return nil, ret.Error(1)
	}
	return ret.Get(0).(*cloudfront.UpdateDistributionOutput), ret.Error(1)
}

func (m *CloudFrontClientInterface) DeleteDistribution(ctx context.Context, params *cloudfront.DeleteDistributionInput, optFns ...func(*cloudfront.Options)) (*cloudfront.DeleteDistributionOutput, error) {
	ret := m.Called(ctx, params)
	if ret.Get(0) == nil {
		return nil, ret.Error(1)
	}
	return ret.Get(0).(*cloudfront.DeleteDistributionOutput), ret.Error(1)
}

func (m *CloudFrontClientInterface) ListDistributions(ctx context.Context, params *cloudfront.ListDistributionsInput, optFns ...func(*cloudfront.Options)) (*cloudfront.ListDistributionsOutput, error) {
	ret := m.Called(ctx, params)
	if ret.Get(0) == nil {
		return nil, ret.Error(1)
	}
	return ret.Get(0).(*cloudfront.ListDistributionsOutput), ret.Error(1)
}

func (m *CloudFrontClientInterface) ListTagsForResource(ctx context.Context, params *cloudfront.ListTagsForResourceInput, optFns ...func(*cloudfront.Options)) (*cloudfront.ListTagsForResourceOutput, error) {
	ret := m.Called(ctx, params)
	if ret.Get(0) == nil {
		return nil, ret.Error(1)
	}
	return ret.Get(0).(*cloudfront.ListTagsForResourceOutput), ret.Error(1)
}

func (m *CloudFrontClientInterface) TagResource(ctx context.Context, params *cloudfront.TagResourceInput, optFns ...func(*cloudfront.Options)) (*cloudfront.TagResourceOutput, error) {
	ret := m.Called(ctx, params)
	if ret.Get(0) == nil {
		return nil, ret.Error(1)
	}
	return ret.Get(0).(*cloudfront.TagResourceOutput), ret.Error(1)
}

func (m *CloudFrontClientInterface) UntagResource(ctx context.Context, params *cloudfront.UntagResourceInput, optFns ...func(*cloudfront.Options)) (*cloudfront.UntagResourceOutput, error) {
	ret := m.Called(ctx, params)
	if ret.Get(0) == nil {
		return nil, ret.Error(1)
	}
	return ret.Get(0).(*cloudfront.UntagResourceOutput), ret.Error(1)
}
