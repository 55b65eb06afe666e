// Package detail builds the human-readable detail lines for a single
// alarm notification, keyed on the alarm's new state and shape.
package detail

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/PRX/cloudwatch-toolkit/internal/classify"
	"github.com/PRX/cloudwatch-toolkit/internal/directory"
)

const (
	insufficientDataLine = "Detailed cause information is not available for alarms in the INSUFFICIENT_DATA state."
	multiMetricAlarmLine = "Cause details are not supported for multi-metric alarms."
	multiMetricOKLine    = "Recovered. Cause details are not supported for multi-metric alarms."

	// historyWindow bounds the recent-transition summary.
	historyWindow = 24 * time.Hour

	// annotationTagPrefix marks alarm tags surfaced as an annotations
	// subsection at the tail of the detail text.
	annotationTagPrefix = "prx:ops:annotation:"
)

// alarmShape tags the supported rendering variants. The unsupported
// multi-metric case is an explicit branch, not a fallthrough.
type alarmShape int

const (
	shapeSingleMetric alarmShape = iota
	shapeMultiMetric
	shapeComposite
)

func shapeOf(desc *directory.AlarmDescription) alarmShape {
	if desc.Composite != nil {
		return shapeComposite
	}

	a := desc.Metric
	if a.MetricName != nil {
		return shapeSingleMetric
	}
	if len(a.Metrics) == 1 && a.Metrics[0].MetricStat != nil {
		return shapeSingleMetric
	}
	return shapeMultiMetric
}

// Event carries the state transition being notified.
type Event struct {
	AlarmName  string
	State      string
	Reason     string
	ReasonData string
	Region     string
	At         time.Time
}

// HistoryFetcher provides the alarm's recent state-transition history.
type HistoryFetcher interface {
	History(ctx context.Context, alarmName string, start, end time.Time) ([]types.AlarmHistoryItem, error)
}

// Builder renders detail lines for a described alarm.
type Builder struct {
	history HistoryFetcher
	logger  *slog.Logger
	now     func() time.Time
}

func NewBuilder(history HistoryFetcher, logger *slog.Logger) *Builder {
	return &Builder{
		history: history,
		logger:  logger,
		now:     time.Now,
	}
}

// Lines dispatches on (state × shape) and returns the detail lines for
// the notification body.
func (b *Builder) Lines(ctx context.Context, desc *directory.AlarmDescription, ev Event) []string {
	switch ev.State {
	case "INSUFFICIENT_DATA":
		return []string{insufficientDataLine}

	case "ALARM":
		switch shapeOf(desc) {
		case shapeComposite:
			return b.compositeLines(ev)
		case shapeMultiMetric:
			return []string{multiMetricAlarmLine}
		default:
			return b.alarmLines(ctx, desc, ev)
		}

	case "OK":
		switch shapeOf(desc) {
		case shapeComposite:
			return b.compositeLines(ev)
		case shapeMultiMetric:
			return []string{multiMetricOKLine}
		default:
			return b.okLines(ctx, desc, ev)
		}

	default:
		return []string{fmt.Sprintf("No details available for state %s.", ev.State)}
	}
}

func (b *Builder) compositeLines(ev Event) []string {
	// Per-metric detail has no meaning for composite alarms; the state
	// reason names the member alarms that flipped.
	return []string{"*Cause:* " + ev.Reason}
}

// metricConfig normalizes the single-metric configuration across classic
// and metrics-list alarms.
type metricConfig struct {
	namespace   string
	metricName  string
	dimensions  []types.Dimension
	statistic   string
	period      int32
	evalPeriods int32
	threshold   float64
	comparison  types.ComparisonOperator
}

func configOf(a *types.MetricAlarm) metricConfig {
	cfg := metricConfig{
		namespace:   aws.ToString(a.Namespace),
		metricName:  aws.ToString(a.MetricName),
		dimensions:  a.Dimensions,
		statistic:   string(a.Statistic),
		period:      aws.ToInt32(a.Period),
		evalPeriods: aws.ToInt32(a.EvaluationPeriods),
		threshold:   aws.ToFloat64(a.Threshold),
		comparison:  a.ComparisonOperator,
	}

	if cfg.statistic == "" {
		cfg.statistic = aws.ToString(a.ExtendedStatistic)
	}

	if a.MetricName == nil && len(a.Metrics) == 1 && a.Metrics[0].MetricStat != nil {
		stat := a.Metrics[0].MetricStat
		if stat.Metric != nil {
			cfg.namespace = aws.ToString(stat.Metric.Namespace)
			cfg.metricName = aws.ToString(stat.Metric.MetricName)
			cfg.dimensions = stat.Metric.Dimensions
		}
		cfg.statistic = aws.ToString(stat.Stat)
		cfg.period = aws.ToInt32(stat.Period)
	}

	return cfg
}

func comparisonSymbol(op types.ComparisonOperator) string {
	switch op {
	case types.ComparisonOperatorGreaterThanThreshold:
		return ">"
	case types.ComparisonOperatorGreaterThanOrEqualToThreshold:
		return ">="
	case types.ComparisonOperatorLessThanThreshold:
		return "<"
	case types.ComparisonOperatorLessThanOrEqualToThreshold:
		return "<="
	default:
		return string(op)
	}
}

func (c metricConfig) metricLine() string {
	line := fmt.Sprintf("*Metric:* %s › %s", c.namespace, c.metricName)
	if len(c.dimensions) > 0 {
		pairs := make([]string, 0, len(c.dimensions))
		for _, d := range c.dimensions {
			pairs = append(pairs, aws.ToString(d.Name)+"="+aws.ToString(d.Value))
		}
		line += " (" + strings.Join(pairs, ", ") + ")"
	}
	return line
}

func (c metricConfig) thresholdLine() string {
	return fmt.Sprintf("*Threshold:* %s %s %g over %ds × %d",
		c.statistic, comparisonSymbol(c.comparison), c.threshold, c.period, c.evalPeriods)
}

func (b *Builder) alarmLines(ctx context.Context, desc *directory.AlarmDescription, ev Event) []string {
	cfg := configOf(desc.Metric)

	lines := []string{
		"*Cause:* " + ev.Reason,
		cfg.metricLine(),
		cfg.thresholdLine(),
	}

	if d, ok := classify.StateDuration(b.now(), ev.ReasonData); ok {
		lines = append(lines, "*Active for:* "+classify.FormatDuration(d))
	}

	if line := b.historyLine(ctx, ev); line != "" {
		lines = append(lines, line)
	}

	if lg := ResolveLogGroup(cfg.namespace, cfg.dimensions, desc.Tags); lg != "" {
		lines = append(lines, fmt.Sprintf("*Logs:* <%s|%s>", logGroupURL(ev.Region, lg), lg))
	}

	lines = append(lines, annotationLines(desc.Tags)...)

	return lines
}

func (b *Builder) okLines(ctx context.Context, desc *directory.AlarmDescription, ev Event) []string {
	cfg := configOf(desc.Metric)

	lines := []string{
		"*Recovered:* " + ev.Reason,
		cfg.metricLine(),
	}

	if line := b.historyLine(ctx, ev); line != "" {
		lines = append(lines, line)
	}

	if lg := ResolveLogGroup(cfg.namespace, cfg.dimensions, desc.Tags); lg != "" {
		lines = append(lines, fmt.Sprintf("*Logs:* <%s|%s>", logGroupURL(ev.Region, lg), lg))
	}

	return lines
}

// historyLine summarizes how often the alarm fired in the last 24 hours.
// History is an enrichment; failures are logged and the line is skipped.
func (b *Builder) historyLine(ctx context.Context, ev Event) string {
	end := ev.At
	if end.IsZero() {
		end = b.now()
	}

	items, err := b.history.History(ctx, ev.AlarmName, end.Add(-historyWindow), end)
	if err != nil {
		b.logger.WarnContext(ctx, "cannot fetch alarm history",
			slog.String("alarmName", ev.AlarmName),
			slog.String("error", err.Error()))
		return ""
	}

	count := 0
	for _, item := range items {
		if strings.Contains(aws.ToString(item.HistorySummary), "to ALARM") {
			count++
		}
	}
	if count == 0 {
		return ""
	}
	return fmt.Sprintf("*Last 24 hours:* %d transitions to ALARM", count)
}

func annotationLines(tags map[string]string) []string {
	names := make([]string, 0)
	for k := range tags {
		if strings.HasPrefix(k, annotationTagPrefix) {
			names = append(names, k)
		}
	}
	if len(names) == 0 {
		return nil
	}
	sort.Strings(names)

	lines := []string{"", "*Annotations*"}
	for _, k := range names {
		lines = append(lines, fmt.Sprintf("• %s: %s", strings.TrimPrefix(k, annotationTagPrefix), tags[k]))
	}
	return lines
}

func logGroupURL(region, logGroup string) string {
	return fmt.Sprintf(
		"https://console.aws.amazon.com/cloudwatch/home?region=%s#logsV2:log-groups/log-group/%s",
		region, url.PathEscape(url.PathEscape(logGroup)))
}
