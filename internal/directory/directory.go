// Package directory lists and describes CloudWatch alarms for one scoped
// account/region client, with exhaustive pagination and bounded retries.
package directory

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("github.com/PRX/cloudwatch-toolkit/internal/directory")

// CloudWatchAPI defines the CloudWatch operations required by the directory.
type CloudWatchAPI interface {
	DescribeAlarms(
		ctx context.Context,
		input *cloudwatch.DescribeAlarmsInput,
		optFns ...func(*cloudwatch.Options)) (*cloudwatch.DescribeAlarmsOutput, error)

	DescribeAlarmHistory(
		ctx context.Context,
		input *cloudwatch.DescribeAlarmHistoryInput,
		optFns ...func(*cloudwatch.Options)) (*cloudwatch.DescribeAlarmHistoryOutput, error)

	ListTagsForResource(
		ctx context.Context,
		input *cloudwatch.ListTagsForResourceInput,
		optFns ...func(*cloudwatch.Options)) (*cloudwatch.ListTagsForResourceOutput, error)
}

// ListScope selects which alarm states a listing covers.
type ListScope int

const (
	// ScopeActive lists only alarms currently in the ALARM state,
	// filtered server-side.
	ScopeActive ListScope = iota
	// ScopeAll lists alarms in any state.
	ScopeAll
)

// ScanResult accumulates composite and metric alarms separately, in the
// order the backend returned them.
type ScanResult struct {
	Composite []types.CompositeAlarm
	Metric    []types.MetricAlarm
}

// Merge appends another result's alarms onto this one.
func (r *ScanResult) Merge(other *ScanResult) {
	r.Composite = append(r.Composite, other.Composite...)
	r.Metric = append(r.Metric, other.Metric...)
}

// Empty reports whether the result holds no alarms at all.
func (r *ScanResult) Empty() bool {
	return len(r.Composite) == 0 && len(r.Metric) == 0
}

// Len returns the total number of alarms in the result.
func (r *ScanResult) Len() int {
	return len(r.Composite) + len(r.Metric)
}

// AlarmDescription is the full configuration of one alarm plus its
// resource tags. Exactly one of Metric or Composite is set.
type AlarmDescription struct {
	Metric    *types.MetricAlarm
	Composite *types.CompositeAlarm
	Tags      map[string]string
}

// ARN returns the alarm's ARN regardless of kind.
func (d *AlarmDescription) ARN() string {
	if d.Metric != nil {
		return aws.ToString(d.Metric.AlarmArn)
	}
	return aws.ToString(d.Composite.AlarmArn)
}

// Directory is the alarm directory client for one (account, region) pair.
type Directory struct {
	cw     CloudWatchAPI
	logger *slog.Logger
}

func New(cw CloudWatchAPI, logger *slog.Logger) *Directory {
	return &Directory{
		cw:     cw,
		logger: logger,
	}
}

var allAlarmTypes = []types.AlarmType{
	types.AlarmTypeCompositeAlarm,
	types.AlarmTypeMetricAlarm,
}

// ListAlarms follows the continuation token until exhausted and returns
// every alarm in scope. The result is never partial: any page failure
// surfaces as an error and the caller gets nothing for this pair.
func (d *Directory) ListAlarms(ctx context.Context, scope ListScope) (*ScanResult, error) {
	ctx, span := tracer.Start(ctx, "directory.listAlarms")
	defer span.End()

	input := &cloudwatch.DescribeAlarmsInput{
		AlarmTypes: allAlarmTypes,
	}
	if scope == ScopeActive {
		input.StateValue = types.StateValueAlarm
	}

	result := &ScanResult{}
	pages := 0

	for {
		out, err := withRetry(ctx, func() (*cloudwatch.DescribeAlarmsOutput, error) {
			return d.cw.DescribeAlarms(ctx, input)
		})
		if err != nil {
			return nil, &BackendError{Op: "DescribeAlarms", Err: err}
		}

		result.Composite = append(result.Composite, out.CompositeAlarms...)
		result.Metric = append(result.Metric, out.MetricAlarms...)
		pages++

		if out.NextToken == nil {
			break
		}
		input.NextToken = out.NextToken
	}

	span.SetAttributes(
		attribute.Int("alarms.count", result.Len()),
		attribute.Int("alarms.pages", pages),
	)

	return result, nil
}

// DescribeAlarm looks up one alarm's complete configuration and its
// resource tags.
func (d *Directory) DescribeAlarm(ctx context.Context, alarmName string) (*AlarmDescription, error) {
	ctx, span := tracer.Start(ctx, "directory.describeAlarm")
	defer span.End()
	span.SetAttributes(attribute.String("alarm.name", alarmName))

	out, err := withRetry(ctx, func() (*cloudwatch.DescribeAlarmsOutput, error) {
		return d.cw.DescribeAlarms(ctx, &cloudwatch.DescribeAlarmsInput{
			AlarmNames: []string{alarmName},
			AlarmTypes: allAlarmTypes,
			MaxRecords: aws.Int32(1),
		})
	})
	if err != nil {
		return nil, &BackendError{Op: "DescribeAlarms", AlarmName: alarmName, Err: err}
	}

	desc := &AlarmDescription{}
	switch {
	case len(out.MetricAlarms) > 0:
		desc.Metric = &out.MetricAlarms[0]
	case len(out.CompositeAlarms) > 0:
		desc.Composite = &out.CompositeAlarms[0]
	default:
		return nil, fmt.Errorf("alarm %q not found", alarmName)
	}

	tags, err := d.resourceTags(ctx, desc.ARN())
	if err != nil {
		// Tags only enrich detail lines; a lookup failure should not
		// lose the notification.
		d.logger.WarnContext(ctx, "cannot list alarm tags",
			slog.String("alarmName", alarmName),
			slog.String("error", err.Error()))
		tags = map[string]string{}
	}
	desc.Tags = tags

	return desc, nil
}

func (d *Directory) resourceTags(ctx context.Context, arn string) (map[string]string, error) {
	out, err := withRetry(ctx, func() (*cloudwatch.ListTagsForResourceOutput, error) {
		return d.cw.ListTagsForResource(ctx, &cloudwatch.ListTagsForResourceInput{
			ResourceARN: aws.String(arn),
		})
	})
	if err != nil {
		return nil, &BackendError{Op: "ListTagsForResource", Err: err}
	}

	tags := make(map[string]string, len(out.Tags))
	for _, t := range out.Tags {
		tags[aws.ToString(t.Key)] = aws.ToString(t.Value)
	}
	return tags, nil
}

// History returns the alarm's state-transition history within the
// [start, end) window, flattened across pages in backend order.
func (d *Directory) History(ctx context.Context, alarmName string, start, end time.Time) ([]types.AlarmHistoryItem, error) {
	ctx, span := tracer.Start(ctx, "directory.history")
	defer span.End()
	span.SetAttributes(attribute.String("alarm.name", alarmName))

	input := &cloudwatch.DescribeAlarmHistoryInput{
		AlarmName:       aws.String(alarmName),
		AlarmTypes:      allAlarmTypes,
		HistoryItemType: types.HistoryItemTypeStateUpdate,
		StartDate:       aws.Time(start),
		EndDate:         aws.Time(end),
	}

	var items []types.AlarmHistoryItem
	for {
		out, err := withRetry(ctx, func() (*cloudwatch.DescribeAlarmHistoryOutput, error) {
			return d.cw.DescribeAlarmHistory(ctx, input)
		})
		if err != nil {
			return nil, &BackendError{Op: "DescribeAlarmHistory", AlarmName: alarmName, Err: err}
		}

		items = append(items, out.AlarmHistoryItems...)

		if out.NextToken == nil {
			break
		}
		input.NextToken = out.NextToken
	}

	return items, nil
}
