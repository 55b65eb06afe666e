// Package scan drives the account × region fan-out for the scheduled
// reminder and report paths.
package scan

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/PRX/cloudwatch-toolkit/internal/classify"
	"github.com/PRX/cloudwatch-toolkit/internal/directory"
)

var tracer = otel.Tracer("github.com/PRX/cloudwatch-toolkit/internal/scan")

// defaultWorkers bounds the concurrent (account, region) tasks.
const defaultWorkers = 4

// ClientBroker exchanges an account and region for a scoped alarm-backend
// client.
type ClientBroker interface {
	ScopedCloudWatch(ctx context.Context, accountID, region string) (directory.CloudWatchAPI, error)
}

// Target is one (account, region) pair of the scan cross product.
type Target struct {
	AccountID string
	Region    string
}

// Targets expands accounts × regions in configured order.
func Targets(accounts, regions []string) []Target {
	targets := make([]Target, 0, len(accounts)*len(regions))
	for _, a := range accounts {
		for _, r := range regions {
			targets = append(targets, Target{AccountID: a, Region: r})
		}
	}
	return targets
}

// Orchestrator fans a listing out over every target and merges the
// partial results. A failing target is logged and skipped; it never
// aborts the rest of the scan.
type Orchestrator struct {
	broker   ClientBroker
	denylist []string
	workers  int
	logger   *slog.Logger
}

func NewOrchestrator(broker ClientBroker, denylist []string, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		broker:   broker,
		denylist: denylist,
		workers:  defaultWorkers,
		logger:   logger,
	}
}

// Scan processes every target through a bounded worker pool and returns
// the merged result. An empty result is a valid outcome, not an error.
func (o *Orchestrator) Scan(ctx context.Context, targets []Target, scope directory.ListScope) *directory.ScanResult {
	ctx, span := tracer.Start(ctx, "scan.run")
	defer span.End()
	span.SetAttributes(attribute.Int("scan.targets", len(targets)))

	merged := &directory.ScanResult{}
	if len(targets) == 0 {
		return merged
	}

	workers := o.workers
	if workers > len(targets) {
		workers = len(targets)
	}

	tasks := make(chan Target)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range tasks {
				result, err := o.scanTarget(ctx, t, scope)
				if err != nil {
					o.logger.ErrorContext(ctx, "scan target failed",
						slog.String("accountId", t.AccountID),
						slog.String("region", t.Region),
						slog.String("error", err.Error()))
					continue
				}

				mu.Lock()
				merged.Merge(result)
				mu.Unlock()
			}
		}()
	}

	// Feed in configured order; workers pull independently.
	for _, t := range targets {
		tasks <- t
	}
	close(tasks)
	wg.Wait()

	span.SetAttributes(attribute.Int("scan.alarms", merged.Len()))

	return merged
}

func (o *Orchestrator) scanTarget(ctx context.Context, t Target, scope directory.ListScope) (*directory.ScanResult, error) {
	cw, err := o.broker.ScopedCloudWatch(ctx, t.AccountID, t.Region)
	if err != nil {
		return nil, err
	}

	result, err := directory.New(cw, o.logger).ListAlarms(ctx, scope)
	if err != nil {
		return nil, err
	}

	return o.filter(result), nil
}

// filter drops denylisted alarms so nothing downstream ever sees them.
func (o *Orchestrator) filter(result *directory.ScanResult) *directory.ScanResult {
	filtered := &directory.ScanResult{
		Composite: make([]types.CompositeAlarm, 0, len(result.Composite)),
		Metric:    make([]types.MetricAlarm, 0, len(result.Metric)),
	}

	for _, a := range result.Composite {
		if !classify.Excluded(aws.ToString(a.AlarmName), o.denylist) {
			filtered.Composite = append(filtered.Composite, a)
		}
	}
	for _, a := range result.Metric {
		if !classify.Excluded(aws.ToString(a.AlarmName), o.denylist) {
			filtered.Metric = append(filtered.Metric, a)
		}
	}

	return filtered
}
