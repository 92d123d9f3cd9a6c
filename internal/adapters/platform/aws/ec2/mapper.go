package ec2

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/olusolaa/webstack/internal/adapters/platform/aws/shared"
	"github.com/olusolaa/webstack/internal/core/domain"
	"github.com/olusolaa/webstack/internal/errors"
)

func toEC2Tags(tags map[string]string) []types.Tag {
	out := make([]types.Tag, 0, len(tags))
	for _, k := range shared.SortedKeys(tags) {
		out = append(out, types.Tag{Key: aws.String(k), Value: aws.String(tags[k])})
	}
	return out
}

func fromEC2Tags(tags []types.Tag) map[string]string {
	out := make(map[string]string, len(tags))
	for _, t := range tags {
		if t.Key != nil {
			out[*t.Key] = aws.ToString(t.Value)
		}
	}
	return out
}

func tagSpecification(resourceType types.ResourceType, tags map[string]string) []types.TagSpecification {
	return []types.TagSpecification{{ResourceType: resourceType, Tags: toEC2Tags(tags)}}
}

// permissionsToRules flattens AWS permissions into rules. IPv4 and IPv6
// ranges share CIDRBlocks; permissions that only reference groups or prefix
// lists are skipped.
func permissionsToRules(perms []types.IpPermission) []domain.SecurityGroupRule {
	rules := make([]domain.SecurityGroupRule, 0, len(perms))
	for _, p := range perms {
		cidrs := make([]string, 0, len(p.IpRanges)+len(p.Ipv6Ranges))
		for _, r := range p.IpRanges {
			if r.CidrIp != nil {
				cidrs = append(cidrs, *r.CidrIp)
			}
		}
		for _, r := range p.Ipv6Ranges {
			if r.CidrIpv6 != nil {
				cidrs = append(cidrs, *r.CidrIpv6)
			}
		}
		if len(cidrs) == 0 {
			continue
		}
		rules = append(rules, domain.SecurityGroupRule{
			Protocol:   aws.ToString(p.IpProtocol),
			FromPort:   aws.ToInt32(p.FromPort),
			ToPort:     aws.ToInt32(p.ToPort),
			CIDRBlocks: cidrs,
		})
	}
	return rules
}

// ruleToPermission builds the permission for a single canonical rule.
// description is attached to the IP range when set.
func ruleToPermission(canonical, description string) (types.IpPermission, error) {
	rule, err := domain.ParseCanonicalRule(canonical)
	if err != nil {
		return types.IpPermission{}, errors.Wrap(err, errors.CodeInternal, "invalid security group rule")
	}
	perm := types.IpPermission{IpProtocol: aws.String(rule.Protocol)}
	var desc *string
	if description != "" {
		desc = aws.String(description)
	}
	if cidr := rule.CIDRBlocks[0]; isIPv6CIDR(cidr) {
		perm.Ipv6Ranges = []types.Ipv6Range{{CidrIpv6: aws.String(cidr), Description: desc}}
	} else {
		perm.IpRanges = []types.IpRange{{CidrIp: aws.String(cidr), Description: desc}}
	}
	if rule.Protocol != "-1" {
		perm.FromPort = aws.Int32(rule.FromPort)
		perm.ToPort = aws.Int32(rule.ToPort)
	}
	return perm, nil
}

func isIPv6CIDR(cidr string) bool {
	return strings.Contains(cidr, ":")
}

// ruleDescriptions indexes rule descriptions by canonical form.
func ruleDescriptions(rules []domain.SecurityGroupRule) map[string]string {
	out := map[string]string{}
	for _, r := range rules {
		for _, c := range r.Canonical() {
			out[c] = r.Description
		}
	}
	return out
}

func securityGroupToLive(sg types.SecurityGroup) (*domain.LiveResource, error) {
	if sg.GroupId == nil {
		return nil, errors.New(errors.CodeInternal, "received security group with nil GroupId")
	}
	id := *sg.GroupId
	tags := fromEC2Tags(sg.Tags)
	arn := aws.ToString(sg.SecurityGroupArn)

	return &domain.LiveResource{
		Kind: domain.KindSecurityGroup,
		ID:   id,
		Attributes: map[string]any{
			domain.KeyName:                     aws.ToString(sg.GroupName),
			domain.SecurityGroupDescriptionKey: aws.ToString(sg.Description),
			domain.SecurityGroupVPCIDKey:       aws.ToString(sg.VpcId),
			domain.SecurityGroupIngressKey:     domain.CanonicalRules(permissionsToRules(sg.IpPermissions)),
			domain.SecurityGroupEgressKey:      domain.CanonicalRules(permissionsToRules(sg.IpPermissionsEgress)),
			domain.KeyTags:                     shared.VisibleTags(tags),
		},
		Outputs: map[string]string{
			domain.OutputID:  id,
			domain.OutputARN: arn,
		},
	}, nil
}

func instanceARN(region, ownerID, instanceID string) string {
	if region == "" || ownerID == "" {
		return ""
	}
	return fmt.Sprintf("arn:aws:ec2:%s:%s:instance/%s", region, ownerID, instanceID)
}

func instanceToLive(instance types.Instance, ownerID, region, userData string) (*domain.LiveResource, error) {
	if instance.InstanceId == nil {
		return nil, errors.New(errors.CodeInternal, "received EC2 instance with nil InstanceId")
	}
	id := *instance.InstanceId

	groups := make([]string, 0, len(instance.SecurityGroups))
	for _, g := range instance.SecurityGroups {
		if g.GroupId != nil {
			groups = append(groups, *g.GroupId)
		}
	}
	sort.Strings(groups)

	return &domain.LiveResource{
		Kind: domain.KindComputeInstance,
		ID:   id,
		Attributes: map[string]any{
			domain.ComputeImageIDKey:        aws.ToString(instance.ImageId),
			domain.ComputeInstanceTypeKey:   string(instance.InstanceType),
			domain.ComputeKeyNameKey:        aws.ToString(instance.KeyName),
			domain.ComputeSecurityGroupsKey: groups,
			domain.ComputeUserDataKey:       userData,
			domain.KeyTags:                  shared.VisibleTags(fromEC2Tags(instance.Tags)),
		},
		Outputs: map[string]string{
			domain.OutputID:        id,
			domain.OutputARN:       instanceARN(region, ownerID, id),
			domain.OutputPublicIP:  aws.ToString(instance.PublicIpAddress),
			domain.OutputPublicDNS: aws.ToString(instance.PublicDnsName),
		},
	}, nil
}

func isGone(instance types.Instance) bool {
	if instance.State == nil {
		return false
	}
	return instance.State.Name == types.InstanceStateNameTerminated || instance.State.Name == types.InstanceStateNameShuttingDown
}
