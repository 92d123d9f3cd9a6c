package ec2

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"

	aws_errors "github.com/olusolaa/webstack/internal/adapters/platform/aws/errors"
	aws_limiter "github.com/olusolaa/webstack/internal/adapters/platform/aws/limiter"
	"github.com/olusolaa/webstack/internal/adapters/platform/aws/shared"
	"github.com/olusolaa/webstack/internal/core/ports"
	"github.com/olusolaa/webstack/internal/log"
)

const defaultWaitTimeout = 10 * time.Minute

// InstanceStateWaiter blocks until the instance reaches state.
type InstanceStateWaiter func(ctx context.Context, client EC2ClientInterface, instanceID string, state types.InstanceStateName, timeout time.Duration) error

type base struct {
	client       EC2ClientInterface
	limiter      shared.RateLimiter
	errorHandler shared.ErrorHandler
	logger       ports.Logger
	region       string
	waitTimeout  time.Duration
	waitForState InstanceStateWaiter
}

// HandlerOption configures the EC2 handlers.
type HandlerOption func(*base)

func WithEC2Client(client EC2ClientInterface) HandlerOption {
	return func(b *base) {
		if client != nil {
			b.client = client
		}
	}
}

func WithRateLimiter(limiter shared.RateLimiter) HandlerOption {
	return func(b *base) {
		if limiter != nil {
			b.limiter = limiter
		}
	}
}

func WithErrorHandler(handler shared.ErrorHandler) HandlerOption {
	return func(b *base) {
		if handler != nil {
			b.errorHandler = handler
		}
	}
}

func WithLogger(logger ports.Logger) HandlerOption {
	return func(b *base) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithWaitTimeout bounds how long create and delete wait for state changes.
func WithWaitTimeout(d time.Duration) HandlerOption {
	return func(b *base) {
		if d > 0 {
			b.waitTimeout = d
		}
	}
}

func WithInstanceStateWaiter(w InstanceStateWaiter) HandlerOption {
	return func(b *base) {
		if w != nil {
			b.waitForState = w
		}
	}
}

func newBase(cfg aws.Config, opts ...HandlerOption) base {
	b := base{
		region:       cfg.Region,
		errorHandler: &aws_errors.DefaultErrorHandler{},
		logger:       log.NewNop(),
		waitTimeout:  defaultWaitTimeout,
		waitForState: sdkInstanceStateWaiter,
	}
	for _, opt := range opts {
		opt(&b)
	}
	if b.client == nil {
		b.client = ec2.NewFromConfig(cfg)
	}
	if b.limiter == nil {
		b.limiter = aws_limiter.New(aws_limiter.DefaultRPS, b.logger)
	}
	return b
}

func (b *base) wait(ctx context.Context) error {
	return b.limiter.Wait(ctx, b.logger)
}

func (b *base) createTags(ctx context.Context, id string, tags map[string]string) error {
	if len(tags) == 0 {
		return nil
	}
	if err := b.wait(ctx); err != nil {
		return err
	}
	_, err := b.client.CreateTags(ctx, &ec2.CreateTagsInput{Resources: []string{id}, Tags: toEC2Tags(tags)})
	if err != nil {
		return b.errorHandler.Handle("EC2", "CreateTags", err, ctx)
	}
	return nil
}

func (b *base) deleteTags(ctx context.Context, id string, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := b.wait(ctx); err != nil {
		return err
	}
	tags := make([]types.Tag, 0, len(keys))
	for _, k := range keys {
		tags = append(tags, types.Tag{Key: aws.String(k)})
	}
	_, err := b.client.DeleteTags(ctx, &ec2.DeleteTagsInput{Resources: []string{id}, Tags: tags})
	if err != nil {
		return b.errorHandler.Handle("EC2", "DeleteTags", err, ctx)
	}
	return nil
}

// syncTags makes the visible tags of id equal desired.
func (b *base) syncTags(ctx context.Context, id string, desired, live map[string]string) error {
	set, remove := shared.TagDelta(desired, live)
	if err := b.createTags(ctx, id, set); err != nil {
		return err
	}
	return b.deleteTags(ctx, id, remove)
}

func sdkInstanceStateWaiter(ctx context.Context, client EC2ClientInterface, instanceID string, state types.InstanceStateName, timeout time.Duration) error {
	input := &ec2.DescribeInstancesInput{InstanceIds: []string{instanceID}}
	switch state {
	case types.InstanceStateNameRunning:
		return ec2.NewInstanceRunningWaiter(client).Wait(ctx, input, timeout)
	case types.InstanceStateNameTerminated:
		return ec2.NewInstanceTerminatedWaiter(client).Wait(ctx, input, timeout)
	default:
		return nil
	}
}
