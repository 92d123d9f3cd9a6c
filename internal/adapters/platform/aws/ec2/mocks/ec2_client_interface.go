package mocks

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/stretchr/testify/mock"
)

// EC2ClientInterface is a mock type for the EC2ClientInterface type
type EC2ClientInterface struct {
	mock.Mock
}

func (m *EC2ClientInterface) DescribeSecurityGroups(ctx context.Context, params *ec2.DescribeSecurityGroupsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupsOutput, error) {
	ret := m.Called(ctx, params)
	if ret.Get(0) == nil {
		return nil, ret.Error(1)
	}
	return ret.Get(0).(*ec2.DescribeSecurityGroupsOutput), ret.Error(1)
}

func (m *EC2ClientInterface) CreateSecurityGroup(ctx context.Context, params *ec2.CreateSecurityGroupInput, optFns ...func(*ec2.Options)) (*ec2.CreateSecurityGroupOutput, error) {
	ret := m.Called(ctx, params)
	if ret.Get(0) == nil {
		return nil, ret.Error(1)
	}
	return ret.Get(0).(*ec2.CreateSecurityGroupOutput), ret.Error(1)
}

func (m *EC2ClientInterface) DeleteSecurityGroup(ctx context.Context, params *ec2.DeleteSecurityGroupInput, optFns ...func(*ec2.Options)) (*ec2.DeleteSecurityGroupOutput, error) {
	ret := m.Called(ctx, params)
	if ret.Get(0) == nil {
		return nil, ret.Error(1)
	}
	return ret.Get(0).(*ec2.DeleteSecurityGroupOutput), ret.Error(1)
}

func (m *EC2ClientInterface) AuthorizeSecurityGroupIngress(ctx context.Context, params *ec2.AuthorizeSecurityGroupIngressInput, optFns ...func(*ec2.Options)) (*ec2.AuthorizeSecurityGroupIngressOutput, error) {
	ret := m.Called(ctx, params)
	if ret.Get(0) == nil {
		return nil, ret.Error(1)
	}
	return ret.Get(0).(*ec2.AuthorizeSecurityGroupIngressOutput), ret.Error(1)
}

func (m *EC2ClientInterface) AuthorizeSecurityGroupEgress(ctx context.Context, params *ec2.AuthorizeSecurityGroupEgressInput, optFns ...func(*ec2.Options)) (*ec2.AuthorizeSecurityGroupEgressOutput, error) {
	ret := m.Called(ctx, params)
	if ret.Get(0) == nil {
		return nil, ret.Error(1)
	}
	return ret.Get(0).(*ec2.AuthorizeSecurityGroupEgressOutput), ret.Error(1)
}

func (m *EC2ClientInterface) RevokeSecurityGroupIngress(ctx context.Context, params *ec2.RevokeSecurityGroupIngressInput, optFns ...func(*ec2.Options)) (*ec2.RevokeSecurityGroupIngressOutput, error) {
	ret := m.Called(ctx, params)
	if ret.Get(0) == nil {
		return nil, ret.Error(1)
	}
	return ret.Get(0).(*ec2.RevokeSecurityGroupIngressOutput), ret.Error(1)
}

func (m *EC2ClientInterface) RevokeSecurityGroupEgress(ctx context.Context, params *ec2.RevokeSecurityGroupEgressInput, optFns ...func(*ec2.Options)) (*ec2.RevokeSecurityGroupEgressOutput, error) {
	ret := m.Called(ctx, params)
	if ret.Get(0) == nil {
		return nil, ret.Error(1)
	}
	return ret.Get(0).(*ec2.RevokeSecurityGroupEgressOutput), ret.Error(1)
}

func (m *EC2ClientInterface) CreateTags(ctx context.Context, params *ec2.CreateTagsInput, optFns ...func(*ec2.Options)) (*ec2.CreateTagsOutput, error) {
	ret := m.Called(ctx, params)
	if ret.Get(0) == nil {
		return nil, ret.Error(1)
	}
	return ret.Get(0).(*ec2.CreateTagsOutput), ret.Error(1)
}

func (m *EC2ClientInterface) DeleteTags(ctx context.Context, params *ec2.DeleteTagsInput, optFns ...func(*ec2.Options)) (*ec2.DeleteTagsOutput, error) {
	ret := m.Called(ctx, params)
	if ret.Get(0) == nil {
		return nil, ret.Error(1)
	}
	return ret.Get(0).(*ec2.DeleteTagsOutput), ret.Error(1)
}

func (m *EC2ClientInterface) DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
	ret := m.Called(ctx, params)
	if ret.Get(0) == nil {
		return nil, ret.Error(1)
	}
	return ret.Get(0).(*ec2.DescribeInstancesOutput), ret.Error(1)
}

func (m *EC2ClientInterface) DescribeInstanceAttribute(ctx context.Context, params *ec2.DescribeInstanceAttributeInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstanceAttributeOutput, error) {
	ret := m.Called(ctx, params)
	if ret.Get(0) == nil {
		return nil, ret.Error(1)
	}
	return ret.Get(0).(*ec2.DescribeInstanceAttributeOutput), ret.Error(1)
}

func (m *EC2ClientInterface) RunInstances(ctx context.Context, params *ec2.RunInstancesInput, optFns ...func(*ec2.Options)) (*ec2.RunInstancesOutput, error) {
	ret := m.Called(ctx, params)
	if ret.Get(0) == nil {
		return nil, ret.Error(1)
	}
	return ret.Get(0).(*ec2.RunInstancesOutput), ret.Error(1)
}

func (m *EC2ClientInterface) ModifyInstanceAttribute(ctx context.Context, params *ec2.ModifyInstanceAttributeInput, optFns ...func(*ec2.Options)) (*ec2.ModifyInstanceAttributeOutput, error) {
	ret := m.Called(ctx, params)
	if ret.Get(0) == nil {
		return nil, ret.Error(1)
	}
	return ret.Get(0).(*ec2.ModifyInstanceAttributeOutput), ret.Error(1)
}

func (m *EC2ClientInterface) TerminateInstances(ctx context.Context, params *ec2.TerminateInstancesInput, optFns ...func(*ec2.Options)) (*ec2.TerminateInstancesOutput, error) {
	ret := m.Called(ctx, params)
	if ret.Get(0) == nil {
		return nil, ret.Error(1)
	}
	return ret.Get(0).(*ec2.TerminateInstancesOutput), ret.Error(1)
}
