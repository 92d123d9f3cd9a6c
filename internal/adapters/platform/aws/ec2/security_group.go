package ec2

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"

	aws_errors "github.com/olusolaa/webstack/internal/adapters/platform/aws/errors"
	"github.com/olusolaa/webstack/internal/adapters/platform/aws/shared"
	"github.com/olusolaa/webstack/internal/core/domain"
	apperrors "github.com/olusolaa/webstack/internal/errors"
)

type SecurityGroupHandler struct {
	base
}

func NewSecurityGroupHandler(cfg aws.Config, opts ...HandlerOption) *SecurityGroupHandler {
	return &SecurityGroupHandler{base: newBase(cfg, opts...)}
}

func (h *SecurityGroupHandler) Kind() domain.ResourceKind { return domain.KindSecurityGroup }

func asSecurityGroupSpec(spec domain.ResourceSpec) (domain.SecurityGroupSpec, error) {
	sg, ok := spec.(domain.SecurityGroupSpec)
	if !ok {
		return sg, apperrors.New(apperrors.CodeTypeAssertionError, fmt.Sprintf("expected SecurityGroupSpec, got %T", spec))
	}
	return sg, nil
}

// Discover finds the group by address tag, then by name within the VPC.
func (h *SecurityGroupHandler) Discover(ctx context.Context, spec domain.ResourceSpec) (*domain.LiveResource, error) {
	sg, err := asSecurityGroupSpec(spec)
	if err != nil {
		return nil, err
	}

	byName := map[string]string{domain.KeyName: sg.Name}
	if sg.VPCID != "" {
		byName[domain.SecurityGroupVPCIDKey] = sg.VPCID
	}
	lookups := []map[string]string{
		{domain.TagPrefix + domain.AddressTagKey: sg.Address()},
		byName,
	}
	for _, filters := range lookups {
		groups, err := h.describe(ctx, &ec2.DescribeSecurityGroupsInput{Filters: BuildSecurityGroupFilters(filters)})
		if err != nil {
			return nil, err
		}
		if len(groups) > 1 {
			h.logger.Warnf(ctx, "Found %d security groups for %s, using %s", len(groups), sg.Address(), aws.ToString(groups[0].GroupId))
		}
		if len(groups) > 0 {
			return securityGroupToLive(groups[0])
		}
	}
	return nil, nil
}

func (h *SecurityGroupHandler) Read(ctx context.Context, id string) (*domain.LiveResource, error) {
	groups, err := h.describe(ctx, &ec2.DescribeSecurityGroupsInput{GroupIds: []string{id}})
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, apperrors.New(apperrors.CodeResourceNotFound, fmt.Sprintf("security group '%s' not found", id))
	}
	return securityGroupToLive(groups[0])
}

func (h *SecurityGroupHandler) describe(ctx context.Context, input *ec2.DescribeSecurityGroupsInput) ([]types.SecurityGroup, error) {
	if err := h.wait(ctx); err != nil {
		return nil, err
	}
	out, err := h.client.DescribeSecurityGroups(ctx, input)
	if err != nil {
		return nil, h.errorHandler.Handle("EC2", "DescribeSecurityGroups", err, ctx)
	}
	return out.SecurityGroups, nil
}

func (h *SecurityGroupHandler) Create(ctx context.Context, spec domain.ResourceSpec) (*domain.LiveResource, error) {
	sg, err := asSecurityGroupSpec(spec)
	if err != nil {
		return nil, err
	}
	logger := h.logger.WithFields(map[string]any{"address": sg.Address()})

	if err := h.wait(ctx); err != nil {
		return nil, err
	}
	input := &ec2.CreateSecurityGroupInput{
		GroupName:         aws.String(sg.Name),
		Description:       aws.String(sg.Description),
		TagSpecifications: tagSpecification(types.ResourceTypeSecurityGroup, shared.ManagedTags(sg.Address(), sg.Tags)),
	}
	if sg.VPCID != "" {
		input.VpcId = aws.String(sg.VPCID)
	}
	out, err := h.client.CreateSecurityGroup(ctx, input)
	if err != nil {
		return nil, h.errorHandler.Handle("EC2", "CreateSecurityGroup", err, ctx)
	}
	id := aws.ToString(out.GroupId)
	logger.Infof(ctx, "Created security group %s", id)

	live, err := h.Read(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := h.reconcileRules(ctx, id, sg, live); err != nil {
		return nil, err
	}
	return h.Read(ctx, id)
}

func (h *SecurityGroupHandler) Update(ctx context.Context, id string, spec domain.ResourceSpec, diffs []domain.AttributeDiff) (*domain.LiveResource, error) {
	sg, err := asSecurityGroupSpec(spec)
	if err != nil {
		return nil, err
	}
	live, err := h.Read(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := h.reconcileRules(ctx, id, sg, live); err != nil {
		return nil, err
	}
	liveTags, _ := live.Attributes[domain.KeyTags].(map[string]string)
	if err := h.syncTags(ctx, id, map[string]string(sg.Tags), liveTags); err != nil {
		return nil, err
	}
	return h.Read(ctx, id)
}

func (h *SecurityGroupHandler) Delete(ctx context.Context, id string) error {
	if err := h.wait(ctx); err != nil {
		return err
	}
	_, err := h.client.DeleteSecurityGroup(ctx, &ec2.DeleteSecurityGroupInput{GroupId: aws.String(id)})
	if err != nil {
		if aws_errors.IsNotFound(err) {
			h.logger.Debugf(ctx, "Security group %s already deleted", id)
			return nil
		}
		return h.errorHandler.Handle("EC2", "DeleteSecurityGroup", err, ctx)
	}
	h.logger.Infof(ctx, "Deleted security group %s", id)
	return nil
}

// reconcileRules authorizes missing rules before revoking extra ones, so the
// group never passes through an empty egress set.
func (h *SecurityGroupHandler) reconcileRules(ctx context.Context, id string, sg domain.SecurityGroupSpec, live *domain.LiveResource) error {
	liveIngress, _ := live.Attributes[domain.SecurityGroupIngressKey].([]string)
	liveEgress, _ := live.Attributes[domain.SecurityGroupEgressKey].([]string)

	addIn, removeIn := ruleDelta(domain.CanonicalRules(sg.Ingress), liveIngress)
	addOut, removeOut := ruleDelta(domain.CanonicalRules(sg.Egress), liveEgress)
	inDesc, outDesc := ruleDescriptions(sg.Ingress), ruleDescriptions(sg.Egress)

	if perms, err := permissions(addIn, inDesc); err != nil {
		return err
	} else if len(perms) > 0 {
		if err := h.wait(ctx); err != nil {
			return err
		}
		if _, err := h.client.AuthorizeSecurityGroupIngress(ctx, &ec2.AuthorizeSecurityGroupIngressInput{GroupId: aws.String(id), IpPermissions: perms}); err != nil {
			return h.errorHandler.Handle("EC2", "AuthorizeSecurityGroupIngress", err, ctx)
		}
	}
	if perms, err := permissions(addOut, outDesc); err != nil {
		return err
	} else if len(perms) > 0 {
		if err := h.wait(ctx); err != nil {
			return err
		}
		if _, err := h.client.AuthorizeSecurityGroupEgress(ctx, &ec2.AuthorizeSecurityGroupEgressInput{GroupId: aws.String(id), IpPermissions: perms}); err != nil {
			return h.errorHandler.Handle("EC2", "AuthorizeSecurityGroupEgress", err, ctx)
		}
	}
	if perms, err := permissions(removeIn, nil); err != nil {
		return err
	} else if len(perms) > 0 {
		if err := h.wait(ctx); err != nil {
			return err
		}
		if _, err := h.client.RevokeSecurityGroupIngress(ctx, &ec2.RevokeSecurityGroupIngressInput{GroupId: aws.String(id), IpPermissions: perms}); err != nil {
			return h.errorHandler.Handle("EC2", "RevokeSecurityGroupIngress", err, ctx)
		}
	}
	if perms, err := permissions(removeOut, nil); err != nil {
		return err
	} else if len(perms) > 0 {
		if err := h.wait(ctx); err != nil {
			return err
		}
		if _, err := h.client.RevokeSecurityGroupEgress(ctx, &ec2.RevokeSecurityGroupEgressInput{GroupId: aws.String(id), IpPermissions: perms}); err != nil {
			return h.errorHandler.Handle("EC2", "RevokeSecurityGroupEgress", err, ctx)
		}
	}
	return nil
}

func permissions(canonical []string, descriptions map[string]string) ([]types.IpPermission, error) {
	perms := make([]types.IpPermission, 0, len(canonical))
	for _, c := range canonical {
		p, err := ruleToPermission(c, descriptions[c])
		if err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, nil
}

// ruleDelta returns the canonical rules to add and to remove, sorted.
func ruleDelta(desired, live []string) (add, remove []string) {
	want := make(map[string]struct{}, len(desired))
	for _, r := range desired {
		want[r] = struct{}{}
	}
	have := make(map[string]struct{}, len(live))
	for _, r := range live {
		have[r] = struct{}{}
		if _, ok := want[r]; !ok {
			remove = append(remove, r)
		}
	}
	for r := range want {
		if _, ok := have[r]; !ok {
			add = append(add, r)
		}
	}
	sort.Strings(add)
	sort.Strings(remove)
	return add, remove
}
