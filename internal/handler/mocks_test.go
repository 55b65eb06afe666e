package handler

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/stretchr/testify/mock"

	"github.com/PRX/cloudwatch-toolkit/internal/directory"
	"github.com/PRX/cloudwatch-toolkit/internal/render"
)

// ClientBrokerMock is a mock implementation of the scan.ClientBroker interface.
type ClientBrokerMock struct {
	mock.Mock
}

func (m *ClientBrokerMock) ScopedCloudWatch(ctx context.Context, accountID, region string) (directory.CloudWatchAPI, error) {
	args := m.Called(ctx, accountID, region)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(directory.CloudWatchAPI), args.Error(1)
}

// SenderMock is a mock implementation of the relay.Sender interface.
type SenderMock struct {
	mock.Mock
}

func (m *SenderMock) Send(ctx context.Context, msg *render.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// CloudWatchAPIMock is a mock implementation of directory.CloudWatchAPI.
type CloudWatchAPIMock struct {
	mock.Mock
}

func (m *CloudWatchAPIMock) DescribeAlarms(ctx context.Context, params *cloudwatch.DescribeAlarmsInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.DescribeAlarmsOutput, error) {
	args := m.Called(ctx, params, optFns)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cloudwatch.DescribeAlarmsOutput), args.Error(1)
}

func (m *CloudWatchAPIMock) DescribeAlarmHistory(ctx context.Context, params *cloudwatch.DescribeAlarmHistoryInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.DescribeAlarmHistoryOutput, error) {
	args := m.Called(ctx, params, optFns)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cloudwatch.DescribeAlarmHistoryOutput), args.Error(1)
}

func (m *CloudWatchAPIMock) ListTagsForResource(ctx context.Context, params *cloudwatch.ListTagsForResourceInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.ListTagsForResourceOutput, error) {
	args := m.Called(ctx, params, optFns)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cloudwatch.ListTagsForResourceOutput), args.Error(1)
}
