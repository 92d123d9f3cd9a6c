package errors

import (
	"context"
	stderrs "errors"
	"fmt"
	"net/http"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/smithy-go"
	"github.com/olusolaa/webstack/internal/errors"
)

var authErrorCodes = map[string]struct{}{
	"AuthFailure":                 {},
	"UnauthorizedOperation":       {},
	"AccessDenied":                {},
	"AccessDeniedException":       {},
	"InvalidClientTokenId":        {},
	"ExpiredToken":                {},
	"SignatureDoesNotMatch":       {},
	"InvalidAccessKeyId":          {},
	"UnrecognizedClientException": {},
}

var notFoundErrorCodes = map[string]struct{}{
	"InvalidInstanceID.NotFound":  {},
	"InvalidInstanceID.Malformed": {},
	"InvalidGroup.NotFound":       {},
	"InvalidGroupId.Malformed":    {},
	"NoSuchBucket":                {},
	"NoSuchKey":                   {},
	"NotFound":                    {},
	"NoSuchDistribution":          {},
	"NoSuchResource":              {},
	"ResourceNotFoundException":   {},
	"EntityNotFoundException":     {},
	"NotFoundException":           {},
	"InvalidPermission.NotFound":  {},
}

// inputErrorCodes name the plan variable behind a reference AWS could not
// resolve while creating an object.
var inputErrorCodes = map[string]string{
	"InvalidVpcID.NotFound":    "vpc_id",
	"InvalidVpcID.Malformed":   "vpc_id",
	"InvalidAMIID.NotFound":    "ami_id",
	"InvalidAMIID.Malformed":   "ami_id",
	"InvalidAMIID.Unavailable": "ami_id",
	"InvalidKeyPair.NotFound":  "key_name",
}

var conflictErrorCodes = map[string]struct{}{
	"BucketAlreadyExists":         {},
	"BucketAlreadyOwnedByYou":     {},
	"InvalidGroup.Duplicate":      {},
	"InvalidPermission.Duplicate": {},
	"DistributionAlreadyExists":   {},
	"CNAMEAlreadyExists":          {},
	"DistributionNotDisabled":     {},
	"DependencyViolation":         {},
	"BucketNotEmpty":              {},
	"PreconditionFailed":          {},
	"InvalidIfMatchVersion":       {},
}

// HandleAWSError maps an AWS SDK error to an application error code.
// resourceType names the service or object kind, resourceID the object or
// operation involved.
func HandleAWSError(resourceType string, resourceID string, err error, ctx context.Context) error {
	if err == nil {
		return errors.New(errors.CodeInternal, fmt.Sprintf("unexpected nil error in AWS error handler for %s", resourceType))
	}

	if stderrs.Is(err, context.DeadlineExceeded) || (ctx != nil && stderrs.Is(ctx.Err(), context.DeadlineExceeded)) {
		return errors.Wrap(err, errors.CodeTimeout,
			fmt.Sprintf("timed out during AWS %s call %s", resourceType, resourceID))
	}
	if stderrs.Is(err, context.Canceled) || (ctx != nil && ctx.Err() != nil) {
		return errors.Wrap(err, errors.CodeAborted,
			fmt.Sprintf("context canceled during AWS %s call %s", resourceType, resourceID))
	}

	code := ErrorCode(err)
	if _, ok := authErrorCodes[code]; ok {
		return errors.WrapUserFacing(err, errors.CodePlatformAuthError,
			fmt.Sprintf("AWS denied access to %s %s", resourceType, resourceID),
			"Check the configured AWS credentials, profile and IAM permissions.")
	}
	if variable, ok := inputErrorCodes[code]; ok {
		return errors.WrapUserFacing(err, errors.CodeInputValidation,
			fmt.Sprintf("AWS rejected the value of %s in %s %s (%s)", variable, resourceType, resourceID, code),
			fmt.Sprintf("Check that %s names an existing object in the target account and region.", variable))
	}
	if IsNotFound(err) {
		return errors.Wrap(err, errors.CodeResourceNotFound,
			fmt.Sprintf("%s '%s' not found", resourceType, resourceID))
	}
	if _, ok := conflictErrorCodes[code]; ok {
		return errors.WrapUserFacing(err, errors.CodeResourceConflict,
			fmt.Sprintf("%s '%s' conflicts with an existing object (%s)", resourceType, resourceID, code),
			"Choose a different name or remove the conflicting object.")
	}

	return errors.Wrap(err, errors.CodePlatformAPIError,
		fmt.Sprintf("AWS %s call %s failed", resourceType, resourceID))
}

// ErrorCode extracts the service error code, or "" when err is not an API
// error.
func ErrorCode(err error) string {
	var apiErr smithy.APIError
	if stderrs.As(err, &apiErr) && apiErr != nil {
		return apiErr.ErrorCode()
	}
	var coded interface{ ErrorCode() string }
	if stderrs.As(err, &coded) && coded != nil {
		return coded.ErrorCode()
	}
	return ""
}

// IsNotFound reports whether err means the object does not exist, either by
// service code or by a bare HTTP 404 (HeadBucket, HeadObject).
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	if _, ok := notFoundErrorCodes[ErrorCode(err)]; ok {
		return true
	}
	var respErr *awshttp.ResponseError
	if stderrs.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound {
		return true
	}
	return errors.Is(err, errors.CodeResourceNotFound)
}

// HasCode reports whether err carries one of the given service codes.
func HasCode(err error, codes ...string) bool {
	c := ErrorCode(err)
	if c == "" {
		return false
	}
	for _, want := range codes {
		if c == want {
			return true
		}
	}
	return false
}

// DefaultErrorHandler implements shared.ErrorHandler with HandleAWSError.
type DefaultErrorHandler struct{}

func (d *DefaultErrorHandler) Handle(service, operation string, err error, ctx context.Context) error {
	return HandleAWSError(service, operation, err, ctx)
}

// HTTPStatus returns the HTTP status code of a failed call, or 0.
func HTTPStatus(err error) int {
	var respErr *awshttp.ResponseError
	if stderrs.As(err, &respErr) {
		return respErr.HTTPStatusCode()
	}
	return 0
}
