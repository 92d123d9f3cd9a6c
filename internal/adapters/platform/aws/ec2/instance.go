package ec2

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"

	aws_errors "github.com/olusolaa/webstack/internal/adapters/platform/aws/errors"
	"github.com/olusolaa/webstack/internal/adapters/platform/aws/shared"
	"github.com/olusolaa/webstack/internal/core/domain"
	apperrors "github.com/olusolaa/webstack/internal/errors"
)

type InstanceHandler struct {
	base
}

func NewInstanceHandler(cfg aws.Config, opts ...HandlerOption) *InstanceHandler {
	return &InstanceHandler{base: newBase(cfg, opts...)}
}

func (h *InstanceHandler) Kind() domain.ResourceKind { return domain.KindComputeInstance }

func asInstanceSpec(spec domain.ResourceSpec) (domain.InstanceSpec, error) {
	is, ok := spec.(domain.InstanceSpec)
	if !ok {
		return is, apperrors.New(apperrors.CodeTypeAssertionError, fmt.Sprintf("expected InstanceSpec, got %T", spec))
	}
	return is, nil
}

func (h *InstanceHandler) Discover(ctx context.Context, spec domain.ResourceSpec) (*domain.LiveResource, error) {
	is, err := asInstanceSpec(spec)
	if err != nil {
		return nil, err
	}
	filters := BuildInstanceFilters(map[string]string{domain.TagPrefix + domain.AddressTagKey: is.Address()})
	found, err := h.describe(ctx, &ec2.DescribeInstancesInput{Filters: filters})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, nil
	}
	if len(found) > 1 {
		h.logger.Warnf(ctx, "Found %d instances tagged for %s, using %s", len(found), is.Address(), aws.ToString(found[0].instance.InstanceId))
	}
	return h.toLive(ctx, found[0])
}

func (h *InstanceHandler) Read(ctx context.Context, id string) (*domain.LiveResource, error) {
	found, err := h.describe(ctx, &ec2.DescribeInstancesInput{InstanceIds: []string{id}})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 || isGone(found[0].instance) {
		return nil, apperrors.New(apperrors.CodeResourceNotFound, fmt.Sprintf("EC2 instance '%s' not found or terminated", id))
	}
	return h.toLive(ctx, found[0])
}

type ownedInstance struct {
	instance types.Instance
	ownerID  string
}

func (h *InstanceHandler) describe(ctx context.Context, input *ec2.DescribeInstancesInput) ([]ownedInstance, error) {
	var found []ownedInstance
	paginator := ec2.NewDescribeInstancesPaginator(h.client, input)
	for paginator.HasMorePages() {
		if err := h.wait(ctx); err != nil {
			return nil, err
		}
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, h.errorHandler.Handle("EC2", "DescribeInstances", err, ctx)
		}
		for _, r := range page.Reservations {
			for _, inst := range r.Instances {
				found = append(found, ownedInstance{instance: inst, ownerID: aws.ToString(r.OwnerId)})
			}
		}
	}
	return found, nil
}

func (h *InstanceHandler) toLive(ctx context.Context, oi ownedInstance) (*domain.LiveResource, error) {
	id := aws.ToString(oi.instance.InstanceId)
	userData, err := h.userData(ctx, id)
	if err != nil {
		return nil, err
	}
	return instanceToLive(oi.instance, oi.ownerID, h.region, userData)
}

func (h *InstanceHandler) userData(ctx context.Context, id string) (string, error) {
	if err := h.wait(ctx); err != nil {
		return "", err
	}
	out, err := h.client.DescribeInstanceAttribute(ctx, &ec2.DescribeInstanceAttributeInput{
		Attribute:  types.InstanceAttributeNameUserData,
		InstanceId: aws.String(id),
	})
	if err != nil {
		return "", h.errorHandler.Handle("EC2", "DescribeInstanceAttribute", err, ctx)
	}
	if out.UserData == nil || out.UserData.Value == nil {
		return "", nil
	}
	encoded := *out.UserData.Value
	decoded, decodeErr := base64.StdEncoding.DecodeString(encoded)
	if decodeErr != nil {
		return encoded, nil
	}
	return string(decoded), nil
}

func (h *InstanceHandler) Create(ctx context.Context, spec domain.ResourceSpec) (*domain.LiveResource, error) {
	is, err := asInstanceSpec(spec)
	if err != nil {
		return nil, err
	}
	if is.SecurityGroupID == "" && !is.SecurityGroupRef.IsZero() {
		return nil, apperrors.New(apperrors.CodeUnresolvedRef, fmt.Sprintf("%s: reference %s is not bound", is.Address(), is.SecurityGroupRef))
	}
	logger := h.logger.WithFields(map[string]any{"address": is.Address()})

	input := &ec2.RunInstancesInput{
		ImageId:           aws.String(is.ImageID),
		InstanceType:      types.InstanceType(is.InstanceType),
		MinCount:          aws.Int32(1),
		MaxCount:          aws.Int32(1),
		TagSpecifications: tagSpecification(types.ResourceTypeInstance, shared.ManagedTags(is.Address(), is.Tags)),
	}
	if is.KeyName != "" {
		input.KeyName = aws.String(is.KeyName)
	}
	if is.SecurityGroupID != "" {
		input.SecurityGroupIds = []string{is.SecurityGroupID}
	}
	if is.UserData != "" {
		input.UserData = aws.String(base64.StdEncoding.EncodeToString([]byte(is.UserData)))
	}

	if err := h.wait(ctx); err != nil {
		return nil, err
	}
	out, err := h.client.RunInstances(ctx, input)
	if err != nil {
		return nil, h.errorHandler.Handle("EC2", "RunInstances", err, ctx)
	}
	if len(out.Instances) == 0 || out.Instances[0].InstanceId == nil {
		return nil, apperrors.New(apperrors.CodePlatformAPIError, "RunInstances returned no instance")
	}
	id := *out.Instances[0].InstanceId
	logger.Infof(ctx, "Launched instance %s, waiting for it to run", id)

	if err := h.waitForState(ctx, h.client, id, types.InstanceStateNameRunning, h.waitTimeout); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeTimeout, fmt.Sprintf("instance %s did not reach running state", id))
	}
	return h.Read(ctx, id)
}

// Update handles in-place changes: security groups and tags. Everything else
// is replaced by the engine.
func (h *InstanceHandler) Update(ctx context.Context, id string, spec domain.ResourceSpec, diffs []domain.AttributeDiff) (*domain.LiveResource, error) {
	is, err := asInstanceSpec(spec)
	if err != nil {
		return nil, err
	}
	live, err := h.Read(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, d := range diffs {
		switch d.AttributeName {
		case domain.ComputeSecurityGroupsKey:
			if is.SecurityGroupID == "" {
				continue
			}
			if err := h.wait(ctx); err != nil {
				return nil, err
			}
			_, err := h.client.ModifyInstanceAttribute(ctx, &ec2.ModifyInstanceAttributeInput{
				InstanceId: aws.String(id),
				Groups:     []string{is.SecurityGroupID},
			})
			if err != nil {
				return nil, h.errorHandler.Handle("EC2", "ModifyInstanceAttribute", err, ctx)
			}
		case domain.KeyTags:
			liveTags, _ := live.Attributes[domain.KeyTags].(map[string]string)
			if err := h.syncTags(ctx, id, map[string]string(is.Tags), liveTags); err != nil {
				return nil, err
			}
		}
	}
	return h.Read(ctx, id)
}

func (h *InstanceHandler) Delete(ctx context.Context, id string) error {
	if err := h.wait(ctx); err != nil {
		return err
	}
	_, err := h.client.TerminateInstances(ctx, &ec2.TerminateInstancesInput{InstanceIds: []string{id}})
	if err != nil {
		if aws_errors.IsNotFound(err) {
			h.logger.Debugf(ctx, "Instance %s already gone", id)
			return nil
		}
		return h.errorHandler.Handle("EC2", "TerminateInstances", err, ctx)
	}
	h.logger.Infof(ctx, "Terminating instance %s", id)
	if err := h.waitForState(ctx, h.client, id, types.InstanceStateNameTerminated, h.waitTimeout); err != nil {
		return apperrors.Wrap(err, apperrors.CodeTimeout, fmt.Sprintf("instance %s did not terminate", id))
	}
	return nil
}
