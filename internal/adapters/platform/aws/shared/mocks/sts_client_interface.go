package mocks

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/stretchr/testify/mock"
)

// STSClientInterface is a mock type for the STSClientInterface type
type STSClientInterface struct {
	mock.Mock
}

func (m *STSClientInterface) GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	ret := m.Called(ctx, params)
	if ret.Get(0) == nil {
		return nil, ret.Error(1)
	}
	return ret.Get(0).(*sts.GetCallerIdentityOutput), ret.Error(1)
}
