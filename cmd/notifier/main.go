// The notifier Lambda renders one chat notification per CloudWatch alarm
// state-change event.
package main

import (
	"context"
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
	"github.com/PRX/cloudwatch-toolkit/internal/handler"
	"github.com/PRX/cloudwatch-toolkit/internal/relay"
	"github.com/PRX/cloudwatch-toolkit/internal/telemetry"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("cannot load config", slog.String("error", err.Error()))
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

	logger.Info("started notifier", slog.String("relayTarget", string(cfg.RelayTarget)))

	h := handler.NewEventHandler(credBroker, sender, cfg, logger)
	lambda.Start(
		otellambda.InstrumentHandler(
			h.HandleRequest,
			otellambda.WithTracerProvider(tp),
			otellambda.WithFlusher(tp)),
	)
}
