package aws

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	aws_cloudfront "github.com/olusolaa/webstack/internal/adapters/platform/aws/cloudfront"
	aws_ec2 "github.com/olusolaa/webstack/internal/adapters/platform/aws/ec2"
	aws_errors "github.com/olusolaa/webstack/internal/adapters/platform/aws/errors"
	aws_limiter "github.com/olusolaa/webstack/internal/adapters/platform/aws/limiter"
	aws_s3 "github.com/olusolaa/webstack/internal/adapters/platform/aws/s3"
	"github.com/olusolaa/webstack/internal/adapters/platform/aws/shared"
	"github.com/olusolaa/webstack/internal/config"
	"github.com/olusolaa/webstack/internal/core/domain"
	"github.com/olusolaa/webstack/internal/core/ports"
	"github.com/olusolaa/webstack/internal/errors"
)

// Provider exposes one handler per resource kind over a shared AWS config
// and rate limiter. It also answers caller identity queries.
type Provider struct {
	awsConfig    aws.Config
	handlers     map[domain.ResourceKind]ports.ResourceHandler
	sts          shared.STSClientInterface
	limiter      shared.RateLimiter
	errorHandler shared.ErrorHandler
	logger       ports.Logger
}

type ProviderOption func(*Provider)

// WithHandlers replaces the SDK-backed handlers.
func WithHandlers(handlers ...ports.ResourceHandler) ProviderOption {
	return func(p *Provider) {
		for _, h := range handlers {
			p.registerHandler(h)
		}
	}
}

func WithSTSClient(client shared.STSClientInterface) ProviderOption {
	return func(p *Provider) {
		if client != nil {
			p.sts = client
		}
	}
}

func NewProvider(ctx context.Context, cfg *config.Config, logger ports.Logger, opts ...ProviderOption) (*Provider, error) {
	if logger == nil {
		return nil, errors.New(errors.CodeConfigValidation, "logger cannot be nil for AWS Provider")
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	awsCfg := cfg.Platform.AWS

	var loadOpts []func(*awsconfig.LoadOptions) error
	if awsCfg.Region != "" {
		logger.Debugf(ctx, "AWS config: using region %s", awsCfg.Region)
		loadOpts = append(loadOpts, awsconfig.WithRegion(awsCfg.Region))
	}
	if awsCfg.Profile != "" {
		logger.Debugf(ctx, "AWS config: using profile %s", awsCfg.Profile)
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(awsCfg.Profile))
	}

	sdkCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errors.WrapUserFacing(err, errors.CodePlatformAuthError,
			"Failed to load AWS configuration/credentials",
			"Check AWS_PROFILE, AWS_REGION and your shared config files.")
	}
	if sdkCfg.Region == "" {
		return nil, errors.NewUserFacing(errors.CodeConfigValidation, "no AWS region configured",
			"Set platform.aws.region in the config file or export AWS_REGION.")
	}

	p := &Provider{
		awsConfig:    sdkCfg,
		handlers:     make(map[domain.ResourceKind]ports.ResourceHandler),
		errorHandler: &aws_errors.DefaultErrorHandler{},
		logger:       logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.limiter = aws_limiter.New(awsCfg.APIRequestsPerSecond, logger)
	if p.sts == nil {
		p.sts = sts.NewFromConfig(sdkCfg)
	}

	if len(p.handlers) == 0 {
		p.registerDefaultHandlers(cfg)
	}
	logger.Infof(ctx, "AWS provider ready (region %s, %d handlers)", sdkCfg.Region, len(p.handlers))
	return p, nil
}

func (p *Provider) registerDefaultHandlers(cfg *config.Config) {
	p.registerHandler(aws_ec2.NewSecurityGroupHandler(p.awsConfig,
		aws_ec2.WithRateLimiter(p.limiter), aws_ec2.WithLogger(p.handlerLogger(domain.KindSecurityGroup))))
	p.registerHandler(aws_ec2.NewInstanceHandler(p.awsConfig,
		aws_ec2.WithRateLimiter(p.limiter), aws_ec2.WithLogger(p.handlerLogger(domain.KindComputeInstance))))
	p.registerHandler(aws_s3.NewBucketHandler(p.awsConfig,
		aws_s3.WithRateLimiter(p.limiter), aws_s3.WithLogger(p.handlerLogger(domain.KindStorageBucket))))
	p.registerHandler(aws_s3.NewObjectHandler(p.awsConfig,
		aws_s3.WithRateLimiter(p.limiter), aws_s3.WithLogger(p.handlerLogger(domain.KindBucketObject))))
	p.registerHandler(aws_cloudfront.NewDistributionHandler(p.awsConfig,
		aws_cloudfront.WithRateLimiter(p.limiter),
		aws_cloudfront.WithLogger(p.handlerLogger(domain.KindDistribution)),
		aws_cloudfront.WithWaitForDeployment(cfg.Settings.WaitForDeployment)))
}

func (p *Provider) handlerLogger(kind domain.ResourceKind) ports.Logger {
	return p.logger.WithFields(map[string]any{"resource_kind": kind})
}

func (p *Provider) registerHandler(handler ports.ResourceHandler) {
	if handler != nil {
		p.handlers[handler.Kind()] = handler
	}
}

func (p *Provider) Type() string {
	return shared.ProviderTypeAWS
}

func (p *Provider) Region() string {
	return p.awsConfig.Region
}

func (p *Provider) Handler(kind domain.ResourceKind) (ports.ResourceHandler, error) {
	handler, found := p.handlers[kind]
	if !found {
		return nil, errors.New(errors.CodeNotImplemented, fmt.Sprintf("resource kind '%s' not supported by AWS provider", kind))
	}
	return handler, nil
}

// Handlers returns the registered handlers ordered by kind.
func (p *Provider) Handlers() []ports.ResourceHandler {
	out := make([]ports.ResourceHandler, 0, len(p.handlers))
	for _, h := range p.handlers {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind() < out[j].Kind() })
	return out
}

// CallerIdentity reports who the configured credentials belong to.
func (p *Provider) CallerIdentity(ctx context.Context) (ports.Identity, error) {
	if err := p.limiter.Wait(ctx, p.logger); err != nil {
		return ports.Identity{}, err
	}
	out, err := p.sts.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return ports.Identity{}, p.errorHandler.Handle("STS", "GetCallerIdentity", err, ctx)
	}
	return ports.Identity{
		Account: aws.ToString(out.Account),
		ARN:     aws.ToString(out.Arn),
		UserID:  aws.ToString(out.UserId),
		Region:  p.awsConfig.Region,
	}, nil
}
