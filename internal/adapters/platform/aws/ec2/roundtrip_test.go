package ec2

import (
	"encoding/base64"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/stretchr/testify/mock"

	"github.com/olusolaa/webstack/internal/adapters/platform/aws/shared"
	"github.com/olusolaa/webstack/internal/core/domain"
	"github.com/olusolaa/webstack/internal/resources/compute"
	"github.com/olusolaa/webstack/internal/site"
	"github.com/olusolaa/webstack/internal/stack"
)

// stackResource builds the full stack and returns the resource at address.
func (s *EC2HandlerTestSuite) stackResource(address string) domain.ResourceSpec {
	in := stack.DefaultInputs()
	in.VPCID = "vpc-0a1b2c"
	in.AMIID = "ami-0123456789abcdef0"
	in.KeyName = "deploy"
	assets := []site.Asset{{Key: "index.html", Source: "site/index.html", Size: 12, MD5: "5d41402abc4b2a76b9719d911017c592", ContentType: "text/html"}}

	plan, err := stack.Build(in, "us-east-1", assets)
	s.Require().NoError(err)
	for _, r := range plan.Resources() {
		if r.Address() == address {
			return r
		}
	}
	s.FailNow("resource not in plan", address)
	return nil
}

// groupAsCreated is the group AWS reports after Create authorized every
// rule of sg.
func (s *EC2HandlerTestSuite) groupAsCreated(id string, sg domain.SecurityGroupSpec) types.SecurityGroup {
	toPerms := func(rules []domain.SecurityGroupRule) []types.IpPermission {
		perms, err := permissions(domain.CanonicalRules(rules), ruleDescriptions(rules))
		s.Require().NoError(err)
		return perms
	}
	tags := toEC2Tags(shared.ManagedTags(sg.Address(), sg.Tags))
	tags = append(tags, types.Tag{Key: aws.String("aws:cloudformation:stack-name"), Value: aws.String("unrelated")})
	return types.SecurityGroup{
		GroupId:             aws.String(id),
		GroupName:           aws.String(sg.Name),
		Description:         aws.String(sg.Description),
		VpcId:               aws.String(sg.VPCID),
		SecurityGroupArn:    aws.String("arn:aws:ec2:us-east-1:111122223333:security-group/" + id),
		IpPermissions:       toPerms(sg.Ingress),
		IpPermissionsEgress: toPerms(sg.Egress),
		Tags:                tags,
	}
}

func (s *EC2HandlerTestSuite) TestSecurityGroupRoundTrip_NoDiffs() {
	sg := s.stackResource(stack.SecurityGroupAddress).(domain.SecurityGroupSpec)
	s.mockEC2.On("DescribeSecurityGroups", mock.Anything, byGroupID("sg-0f00")).Return(&ec2.DescribeSecurityGroupsOutput{
		SecurityGroups: []types.SecurityGroup{s.groupAsCreated("sg-0f00", sg)},
	}, nil)

	live, err := s.sgHandler.Read(s.ctx, "sg-0f00")
	s.Require().NoError(err)

	diffs, replace, err := compute.NewSecurityGroupComparer().Compare(s.ctx, sg, live)
	s.Require().NoError(err)
	s.Empty(diffs)
	s.False(replace)
}

func (s *EC2HandlerTestSuite) TestSecurityGroupRoundTrip_IPv6Rules() {
	sg := s.stackResource(stack.SecurityGroupAddress).(domain.SecurityGroupSpec)
	sg.Ingress = append(sg.Ingress, domain.SecurityGroupRule{Protocol: "tcp", FromPort: 80, ToPort: 80, CIDRBlocks: []string{"::/0"}, Description: "HTTP v6"})
	sg.Egress = append(sg.Egress, domain.SecurityGroupRule{Protocol: "-1", CIDRBlocks: []string{"::/0"}})
	s.mockEC2.On("DescribeSecurityGroups", mock.Anything, byGroupID("sg-0f00")).Return(&ec2.DescribeSecurityGroupsOutput{
		SecurityGroups: []types.SecurityGroup{s.groupAsCreated("sg-0f00", sg)},
	}, nil)

	live, err := s.sgHandler.Read(s.ctx, "sg-0f00")
	s.Require().NoError(err)

	diffs, replace, err := compute.NewSecurityGroupComparer().Compare(s.ctx, sg, live)
	s.Require().NoError(err)
	s.Empty(diffs)
	s.False(replace)
}

func (s *EC2HandlerTestSuite) TestInstanceRoundTrip_NoDiffs() {
	unbound := s.stackResource(stack.InstanceAddress).(domain.InstanceSpec)
	spec := unbound.Bind(map[domain.Ref]string{unbound.SecurityGroupRef: "sg-0f00"}).(domain.InstanceSpec)
	s.Require().NotEmpty(spec.UserData)

	inst := types.Instance{
		InstanceId:      aws.String("i-0abc"),
		ImageId:         aws.String(spec.ImageID),
		InstanceType:    types.InstanceType(spec.InstanceType),
		KeyName:         aws.String(spec.KeyName),
		State:           &types.InstanceState{Name: types.InstanceStateNameRunning},
		PublicIpAddress: aws.String("203.0.113.10"),
		SecurityGroups:  []types.GroupIdentifier{{GroupId: aws.String("sg-0f00"), GroupName: aws.String("web_sg")}},
		Tags:            toEC2Tags(shared.ManagedTags(spec.Address(), spec.Tags)),
	}
	s.mockEC2.On("DescribeInstances", mock.Anything, mock.Anything).Return(&ec2.DescribeInstancesOutput{
		Reservations: []types.Reservation{{OwnerId: aws.String("111122223333"), Instances: []types.Instance{inst}}},
	}, nil)
	s.mockEC2.On("DescribeInstanceAttribute", mock.Anything, mock.Anything).Return(&ec2.DescribeInstanceAttributeOutput{
		UserData: &types.AttributeValue{Value: aws.String(base64.StdEncoding.EncodeToString([]byte(spec.UserData)))},
	}, nil)

	live, err := s.vmHandler.Read(s.ctx, "i-0abc")
	s.Require().NoError(err)

	diffs, replace, err := compute.NewInstanceComparer().Compare(s.ctx, spec, live)
	s.Require().NoError(err)
	s.Empty(diffs)
	s.False(replace)
}
