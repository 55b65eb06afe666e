// Package report assembles the scheduled-path digests (long-running alarm
// reminder, full-estate report) from a merged scan result.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/PRX/cloudwatch-toolkit/internal/classify"
	"github.com/PRX/cloudwatch-toolkit/internal/directory"
	"github.com/PRX/cloudwatch-toolkit/internal/render"
)

func metricReasonData(a types.MetricAlarm) string {
	return aws.ToString(a.StateReasonData)
}

func compositeReasonData(a types.CompositeAlarm) string {
	return aws.ToString(a.StateReasonData)
}

// arnLocation extracts "region · account" from an alarm ARN
// (arn:aws:cloudwatch:region:account:alarm:name) for display.
func arnLocation(arn string) string {
	parts := strings.SplitN(arn, ":", 6)
	if len(parts) < 5 {
		return ""
	}
	return render.RegionLabel(parts[3]) + " · " + parts[4]
}

func alarmLine(name, arn, reasonData string, now time.Time) string {
	line := "• *" + render.CleanName(name) + "*"
	if loc := arnLocation(arn); loc != "" {
		line += " — " + loc
	}
	if d, ok := classify.StateDuration(now, reasonData); ok {
		line += " — active for " + classify.FormatDuration(d)
	}
	return line
}

// Reminder builds the long-running alarm digest: alarms active longer than
// the threshold (fail-open on unknown duration), longest-running first,
// alarms with unknown duration ahead of all others. Returns nil when
// nothing qualifies, meaning no dispatch.
func Reminder(result *directory.ScanResult, now time.Time, channel string) *render.Message {
	composite := classify.LongRunning(result.Composite, now, compositeReasonData)
	metric := classify.LongRunning(result.Metric, now, metricReasonData)

	if len(composite) == 0 && len(metric) == 0 {
		return nil
	}

	classify.SortByDuration(composite, now, compositeReasonData)
	classify.SortByDuration(metric, now, metricReasonData)

	lines := make([]string, 0, len(composite)+len(metric))
	for _, a := range composite {
		lines = append(lines, alarmLine(aws.ToString(a.AlarmName), aws.ToString(a.AlarmArn),
			aws.ToString(a.StateReasonData), now))
	}
	for _, a := range metric {
		lines = append(lines, alarmLine(aws.ToString(a.AlarmName), aws.ToString(a.AlarmArn),
			aws.ToString(a.StateReasonData), now))
	}

	title := "Long-running alarms"
	return &render.Message{
		Channel:  channel,
		Fallback: title,
		Color:    render.ColorAlarm,
		Blocks: []render.Block{
			render.Header(title),
			render.Section(render.EnforceBudget(strings.Join(lines, "\n"))),
		},
	}
}

// Estate builds the full-estate report: per-state counts followed by a
// listing grouped composite-first. Returns nil for an empty scan.
func Estate(result *directory.ScanResult, channel string) *render.Message {
	if result.Empty() {
		return nil
	}

	counts := map[types.StateValue]int{}
	for _, a := range result.Composite {
		counts[a.StateValue]++
	}
	for _, a := range result.Metric {
		counts[a.StateValue]++
	}

	summary := fmt.Sprintf("*%d alarms* — %d in ALARM, %d OK, %d INSUFFICIENT_DATA",
		result.Len(),
		counts[types.StateValueAlarm],
		counts[types.StateValueOk],
		counts[types.StateValueInsufficientData])

	lines := make([]string, 0, result.Len())
	for _, a := range result.Composite {
		lines = append(lines, estateLine(aws.ToString(a.AlarmName), aws.ToString(a.AlarmArn), a.StateValue))
	}
	for _, a := range result.Metric {
		lines = append(lines, estateLine(aws.ToString(a.AlarmName), aws.ToString(a.AlarmArn), a.StateValue))
	}

	title := "CloudWatch alarm report"
	return &render.Message{
		Channel:  channel,
		Fallback: title,
		Color:    render.ColorOK,
		Blocks: []render.Block{
			render.Header(title),
			render.Section(summary),
			render.Section(render.EnforceBudget(strings.Join(lines, "\n"))),
		},
	}
}

func estateLine(name, arn string, state types.StateValue) string {
	line := fmt.Sprintf("• `%s` %s", state, render.CleanName(name))
	if loc := arnLocation(arn); loc != "" {
		line += " — " + loc
	}
	return line
}
