package directory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/smithy-go"
	"github.com/cenkalti/backoff/v4"
)

// maxRetries bounds the retry count for a single backend call. Only
// throttling and server faults are retried; everything else fails fast.
const maxRetries = 4

// BackendError is a terminal alarm-backend failure. It aborts the
// enclosing (account, region) unit of work; the scan itself continues.
type BackendError struct {
	Op        string
	AlarmName string
	Err       error
}

func (e *BackendError) Error() string {
	if e.AlarmName != "" {
		return fmt.Sprintf("cloudwatch %s for alarm %q: %v", e.Op, e.AlarmName, e.Err)
	}
	return fmt.Sprintf("cloudwatch %s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

func newBackOff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxInterval = 5 * time.Second
	return bo
}

func withRetry[T any](ctx context.Context, call func() (T, error)) (T, error) {
	var result T

	operation := func() error {
		out, err := call()
		if err != nil {
			if !isTransient(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		result = out
		return nil
	}

	err := backoff.Retry(operation,
		backoff.WithContext(backoff.WithMaxRetries(newBackOff(), maxRetries), ctx))
	return result, err
}

// throttleCodes are the CloudWatch/API Gateway style throttling responses
// worth retrying.
var throttleCodes = map[string]struct{}{
	"Throttling":               {},
	"ThrottlingException":      {},
	"TooManyRequestsException": {},
	"RequestLimitExceeded":     {},
	"LimitExceededFault":       {},
}

func isTransient(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}

	if _, ok := throttleCodes[apiErr.ErrorCode()]; ok {
		return true
	}
	return apiErr.ErrorFault() == smithy.FaultServer
}
