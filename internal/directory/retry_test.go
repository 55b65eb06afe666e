package directory

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTransient(t *testing.T) {
	assert.True(t, isTransient(&smithy.GenericAPIError{Code: "Throttling"}))
	assert.True(t, isTransient(&smithy.GenericAPIError{Code: "ThrottlingException"}))
	assert.True(t, isTransient(&smithy.GenericAPIError{
		Code:  "InternalServiceError",
		Fault: smithy.FaultServer,
	}))

	assert.False(t, isTransient(&smithy.GenericAPIError{
		Code:  "ResourceNotFound",
		Fault: smithy.FaultClient,
	}))
	assert.False(t, isTransient(errors.New("plain error")))
	assert.False(t, isTransient(nil))
}

func TestWithRetry_NonTransientFailsFast(t *testing.T) {
	calls := 0
	expectedErr := &smithy.GenericAPIError{Code: "AccessDenied", Fault: smithy.FaultClient}

	_, err := withRetry(context.Background(), func() (int, error) {
		calls++
		return 0, expectedErr
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_TransientRetriedUntilSuccess(t *testing.T) {
	calls := 0

	result, err := withRetry(context.Background(), func() (int, error) {
		calls++
		if calls < 2 {
			return 0, &smithy.GenericAPIError{Code: "Throttling"}
		}
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, 2, calls)
}

func TestWithRetry_TransientExhaustsRetryBudget(t *testing.T) {
	calls := 0

	_, err := withRetry(context.Background(), func() (int, error) {
		calls++
		return 0, &smithy.GenericAPIError{Code: "Throttling"}
	})

	require.Error(t, err)
	assert.Equal(t, maxRetries+1, calls)
}
