// The reminder Lambda scans every configured account and region for
// long-running alarms and posts a periodic digest.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-lambda-go/otellambda"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-sdk-go-v2/otelaws"

	"github.com/PRX/cloudwatch-toolkit/internal/broker"
	"github.com/PRX/cloudwatch-toolkit/internal/config"
	"github.com/PRX/cloudwatch-toolkit/internal/directory"
	"github.com/PRX/cloudwatch-toolkit/internal/relay"
	"github.com/PRX/cloudwatch-toolkit/internal/report"
	"github.com/PRX/cloudwatch-toolkit/internal/scan"
	"github.com/PRX/cloudwatch-toolkit/internal/telemetry"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("cannot load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if len(cfg.SearchAccounts) == 0 || len(cfg.SearchRegions) == 0 {
		logger.Error("cannot start reminder",
			slog.String("error", errors.New("SEARCH_ACCOUNTS and SEARCH_REGIONS are required").Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		logger.Error("cannot load aws config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	otelaws.AppendMiddlewares(&awsCfg.APIOptions)

	sender, err := relay.NewSender(awsCfg, cfg)
	if err != nil {
		logger.Error("cannot create relay sender", slog.String("error", err.Error()))
		os.Exit(1)
	}

	credBroker := broker.New(sts.NewFromConfig(awsCfg), awsCfg, cfg.RoleName, logger)
	orchestrator := scan.NewOrchestrator(credBroker, cfg.Denylist, logger)

	tp, err := telemetry.NewTracerProvider(ctx)
	if err != nil {
		logger.Error("cannot initialize tracer provider", slog.String("error", err.Error()))
		os.Exit(1)
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Error("cannot shutdown tracer provider", slog.String("error", err.Error()))
		}
	}()

	logger.Info("started reminder",
		slog.Int("accounts", len(cfg.SearchAccounts)),
		slog.Int("regions", len(cfg.SearchRegions)))

	handler := func(ctx context.Context) error {
		return handleRequest(ctx, orchestrator, sender, cfg, logger)
	}

	lambda.Start(
		otellambda.InstrumentHandler(
			handler,
			otellambda.WithTracerProvider(tp),
			otellambda.WithFlusher(tp)),
	)
}

func handleRequest(
	ctx context.Context,
	orchestrator *scan.Orchestrator,
	sender relay.Sender,
	cfg *config.Config,
	logger *slog.Logger,
) error {
	targets := scan.Targets(cfg.SearchAccounts, cfg.SearchRegions)
	result := orchestrator.Scan(ctx, targets, directory.ScopeActive)

	msg := report.Reminder(result, time.Now(), cfg.Channels.Default)
	if msg == nil {
		logger.InfoContext(ctx, "no long-running alarms; nothing to dispatch")
		return nil
	}

	if err := sender.Send(ctx, msg); err != nil {
		logger.ErrorContext(ctx, "cannot send reminder", slog.String("error", err.Error()))
		return err
	}

	logger.InfoContext(ctx, "reminder sent", slog.Int("alarms", result.Len()))
	return nil
}
