package s3

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	aws_errors "github.com/olusolaa/webstack/internal/adapters/platform/aws/errors"
	aws_limiter "github.com/olusolaa/webstack/internal/adapters/platform/aws/limiter"
	"github.com/olusolaa/webstack/internal/adapters/platform/aws/shared"
	"github.com/olusolaa/webstack/internal/core/ports"
	"github.com/olusolaa/webstack/internal/log"
)

type base struct {
	client       S3ClientInterface
	limiter      shared.RateLimiter
	errorHandler shared.ErrorHandler
	logger       ports.Logger
	region       string
}

// HandlerOption defines a function signature for configuring the S3 handlers.
type HandlerOption func(*base)

// WithS3Client provides an option to set a custom S3 client.
func WithS3Client(client S3ClientInterface) HandlerOption {
	return func(b *base) {
		if client != nil {
			b.client = client
		}
	}
}

// WithRateLimiter provides an option to set a custom rate limiter.
func WithRateLimiter(limiter shared.RateLimiter) HandlerOption {
	return func(b *base) {
		if limiter != nil {
			b.limiter = limiter
		}
	}
}

// WithErrorHandler provides an option to set a custom error handler.
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

func newBase(cfg aws.Config, opts ...HandlerOption) base {
	b := base{
		region:       cfg.Region,
		errorHandler: &aws_errors.DefaultErrorHandler{},
		logger:       log.NewNop(),
	}
	for _, opt := range opts {
		opt(&b)
	}
	if b.client == nil {
		b.client = s3.NewFromConfig(cfg)
	}
	if b.limiter == nil {
		b.limiter = aws_limiter.New(aws_limiter.DefaultRPS, b.logger)
	}
	return b
}

func (b *base) wait(ctx context.Context) error {
	return b.limiter.Wait(ctx, b.logger)
}
