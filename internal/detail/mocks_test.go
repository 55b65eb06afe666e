package detail

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/stretchr/testify/mock"
)

// HistoryFetcherMock is a mock implementation of the HistoryFetcher interface.
type HistoryFetcherMock struct {
	mock.Mock
}

func (m *HistoryFetcherMock) History(ctx context.Context, alarmName string, start, end time.Time) ([]types.AlarmHistoryItem, error) {
	args := m.Called(ctx, alarmName, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.AlarmHistoryItem), args.Error(1)
}
