package cloudfront

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"

	aws_errors "github.com/olusolaa/webstack/internal/adapters/platform/aws/errors"
	aws_limiter "github.com/olusolaa/webstack/internal/adapters/platform/aws/limiter"
	"github.com/olusolaa/webstack/internal/adapters/platform/aws/shared"
	"github.com/olusolaa/webstack/internal/core/ports"
	"github.com/olusolaa/webstack/internal/log"
)

// Distributions commonly take 5 to 20 minutes to deploy.
const defaultDeployTimeout = 30 * time.Minute

// DeploymentWaiter blocks until the distribution status is Deployed.
type DeploymentWaiter func(ctx context.Context, client CloudFrontClientInterface, id string, timeout time.Duration) error

type base struct {
	client        CloudFrontClientInterface
	limiter       shared.RateLimiter
	errorHandler  shared.ErrorHandler
	logger        ports.Logger
	deployTimeout time.Duration
	waitDeployed  DeploymentWaiter
	// waitOnChange makes create and update block until deployment finishes.
	waitOnChange bool
}

// HandlerOption configures the distribution handler.
type HandlerOption func(*base)

func WithCloudFrontClient(client CloudFrontClientInterface) HandlerOption {
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

func WithDeployTimeout(d time.Duration) HandlerOption {
	return func(b *base) {
		if d > 0 {
			b.deployTimeout = d
		}
	}
}

func WithDeploymentWaiter(w DeploymentWaiter) HandlerOption {
	return func(b *base) {
		if w != nil {
			b.waitDeployed = w
		}
	}
}

// WithWaitForDeployment controls whether create and update wait for the
// distribution to deploy. Delete always waits.
func WithWaitForDeployment(wait bool) HandlerOption {
	return func(b *base) {
		b.waitOnChange = wait
	}
}

func newBase(cfg aws.Config, opts ...HandlerOption) base {
	b := base{
		errorHandler:  &aws_errors.DefaultErrorHandler{},
		logger:        log.NewNop(),
		deployTimeout: defaultDeployTimeout,
		waitDeployed:  sdkDeploymentWaiter,
		waitOnChange:  true,
	}
	for _, opt := range opts {
		opt(&b)
	}
	if b.client == nil {
		b.client = cloudfront.NewFromConfig(cfg)
	}
	if b.limiter == nil {
		b.limiter = aws_limiter.New(aws_limiter.DefaultRPS, b.logger)
	}
	return b
}

func (b *base) wait(ctx context.Context) error {
	return b.limiter.Wait(ctx, b.logger)
}

func sdkDeploymentWaiter(ctx context.Context, client CloudFrontClientInterface, id string, timeout time.Duration) error {
	return cloudfront.NewDistributionDeployedWaiter(client).Wait(ctx, &cloudfront.GetDistributionInput{Id: aws.String(id)}, timeout)
}
