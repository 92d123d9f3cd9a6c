package errors

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/olusolaa/webstack/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Mock implementation of smithy.APIError for testing
type mockAPIError struct {
	errorCode string
	errorMsg  string
}

func (m *mockAPIError) Error() string                 { return m.errorMsg }
func (m *mockAPIError) ErrorCode() string             { return m.errorCode }
func (m *mockAPIError) ErrorMessage() string          { return m.errorMsg }
func (m *mockAPIError) ErrorFault() smithy.ErrorFault { return smithy.FaultUnknown }

// MockErrorWithCode implements the interface{ ErrorCode() string } for testing
type MockErrorWithCode struct {
	Code    string
	Message string
}

func (m *MockErrorWithCode) Error() string     { return m.Message }
func (m *MockErrorWithCode) ErrorCode() string { return m.Code }

func apiErr(code string) error {
	return &mockAPIError{errorCode: code, errorMsg: code + ": message"}
}

func httpStatusErr(status int) error {
	return &awshttp.ResponseError{
		ResponseError: &smithyhttp.ResponseError{
			Response: &smithyhttp.Response{Response: &http.Response{StatusCode: status}},
			Err:      fmt.Errorf("http %d", status),
		},
	}
}

func TestHandleAWSError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		ctx          context.Context
		expectedCode errors.Code
		userFacing   bool
	}{
		{name: "nil error", err: nil, ctx: context.Background(), expectedCode: errors.CodeInternal},
		{name: "context canceled", err: fmt.Errorf("some error"), ctx: canceledContext(), expectedCode: errors.CodeAborted},
		{name: "direct context canceled", err: context.Canceled, ctx: context.Background(), expectedCode: errors.CodeAborted},
		{name: "direct context deadline exceeded", err: context.DeadlineExceeded, ctx: context.Background(), expectedCode: errors.CodeTimeout},
		{name: "auth failure", err: apiErr("AuthFailure"), ctx: context.Background(), expectedCode: errors.CodePlatformAuthError, userFacing: true},
		{name: "expired token", err: apiErr("ExpiredToken"), ctx: context.Background(), expectedCode: errors.CodePlatformAuthError, userFacing: true},
		{name: "security group not found", err: apiErr("InvalidGroup.NotFound"), ctx: context.Background(), expectedCode: errors.CodeResourceNotFound},
		{name: "distribution not found", err: apiErr("NoSuchDistribution"), ctx: context.Background(), expectedCode: errors.CodeResourceNotFound},
		{name: "bare 404", err: httpStatusErr(404), ctx: context.Background(), expectedCode: errors.CodeResourceNotFound},
		{name: "bucket name taken", err: apiErr("BucketAlreadyExists"), ctx: context.Background(), expectedCode: errors.CodeResourceConflict, userFacing: true},
		{name: "duplicate group", err: apiErr("InvalidGroup.Duplicate"), ctx: context.Background(), expectedCode: errors.CodeResourceConflict, userFacing: true},
		{name: "coded error without smithy", err: &MockErrorWithCode{Code: "NoSuchKey", Message: "gone"}, ctx: context.Background(), expectedCode: errors.CodeResourceNotFound},
		{name: "unknown ami", err: apiErr("InvalidAMIID.NotFound"), ctx: context.Background(), expectedCode: errors.CodeInputValidation, userFacing: true},
		{name: "unknown key pair", err: apiErr("InvalidKeyPair.NotFound"), ctx: context.Background(), expectedCode: errors.CodeInputValidation, userFacing: true},
		{name: "unknown vpc", err: apiErr("InvalidVpcID.NotFound"), ctx: context.Background(), expectedCode: errors.CodeInputValidation, userFacing: true},
		{name: "throttling", err: apiErr("Throttling"), ctx: context.Background(), expectedCode: errors.CodePlatformAPIError},
		{name: "generic error", err: fmt.Errorf("some other error"), ctx: context.Background(), expectedCode: errors.CodePlatformAPIError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := HandleAWSError("test-resource", "test-id", tt.err, tt.ctx)

			appErr, ok := result.(*errors.AppError)
			require.True(t, ok, "Expected an *errors.AppError")
			assert.Equal(t, tt.expectedCode, appErr.Code)
			assert.Equal(t, tt.userFacing, appErr.IsUserFacing)
		})
	}
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil", nil, false},
		{"NoSuchBucket", apiErr("NoSuchBucket"), true},
		{"HeadObject NotFound", apiErr("NotFound"), true},
		{"wrapped", fmt.Errorf("describe: %w", apiErr("InvalidInstanceID.NotFound")), true},
		{"http 404", httpStatusErr(404), true},
		{"http 403", httpStatusErr(403), false},
		{"app not found", errors.New(errors.CodeResourceNotFound, "gone"), true},
		{"message only", fmt.Errorf("resource not found"), false},
		{"other code", apiErr("SomeRandomError"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsNotFound(tt.err))
		})
	}
}

func TestHandleAWSError_NamesBadInput(t *testing.T) {
	err := HandleAWSError("EC2", "RunInstances", apiErr("InvalidKeyPair.NotFound"), context.Background())

	msg, suggestion, ok := errors.GetUserFacingMessage(err)
	require.True(t, ok)
	assert.Contains(t, msg, "key_name")
	assert.Contains(t, suggestion, "key_name")
	assert.False(t, IsNotFound(apiErr("InvalidAMIID.NotFound")))
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", apiErr("NoSuchWebsiteConfiguration"))
	assert.True(t, HasCode(err, "NoSuchTagSet", "NoSuchWebsiteConfiguration"))
	assert.False(t, HasCode(err, "NoSuchTagSet"))
	assert.False(t, HasCode(fmt.Errorf("plain"), ""))
}

func TestDefaultErrorHandler_Handle(t *testing.T) {
	handler := &DefaultErrorHandler{}
	err := handler.Handle("TestService", "TestOperation", fmt.Errorf("test error"), context.Background())

	require.Error(t, err)
	appErr, ok := err.(*errors.AppError)
	require.True(t, ok, "Expected an *errors.AppError")
	assert.Equal(t, errors.CodePlatformAPIError, appErr.Code)
}

// Helper function to create a canceled context
func canceledContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}
