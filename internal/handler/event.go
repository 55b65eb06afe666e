// Package handler drives the event-driven notification path: one
// CloudWatch alarm state-change event in, one rendered message out.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"github.com/PRX/cloudwatch-toolkit/internal/classify"
	"github.com/PRX/cloudwatch-toolkit/internal/config"
	"github.com/PRX/cloudwatch-toolkit/internal/detail"
	"github.com/PRX/cloudwatch-toolkit/internal/directory"
	"github.com/PRX/cloudwatch-toolkit/internal/relay"
	"github.com/PRX/cloudwatch-toolkit/internal/render"
	"github.com/PRX/cloudwatch-toolkit/internal/scan"
)

// stateChangeDetail is the EventBridge "CloudWatch Alarm State Change"
// event detail.
type stateChangeDetail struct {
	AlarmName string `json:"alarmName"`
	State     struct {
		Value      string `json:"value"`
		Reason     string `json:"reason"`
		ReasonData string `json:"reasonData"`
		Timestamp  string `json:"timestamp"`
	} `json:"state"`
	Configuration struct {
		Description string `json:"description"`
	} `json:"configuration"`
}

// CloudWatch alarm state-change timestamps use a fixed-offset layout.
const stateTimestampLayout = "2006-01-02T15:04:05.000-0700"

type EventHandler struct {
	broker scan.ClientBroker
	sender relay.Sender
	cfg    *config.Config
	logger *slog.Logger
}

func NewEventHandler(broker scan.ClientBroker, sender relay.Sender, cfg *config.Config, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		broker: broker,
		sender: sender,
		cfg:    cfg,
		logger: logger,
	}
}

func (h *EventHandler) HandleRequest(ctx context.Context, event events.CloudWatchEvent) error {
	var d stateChangeDetail
	if err := json.Unmarshal(event.Detail, &d); err != nil {
		h.logger.ErrorContext(ctx, "cannot parse event detail", slog.String("error", err.Error()))
		return err
	}

	if d.AlarmName == "" {
		err := errors.New("alarm name is empty")
		h.logger.ErrorContext(ctx, "invalid event", slog.String("error", err.Error()))
		return err
	}

	if classify.Excluded(d.AlarmName, h.cfg.Denylist) {
		h.logger.InfoContext(ctx, "alarm excluded by denylist",
			slog.String("alarmName", d.AlarmName))
		return nil
	}

	cw, err := h.broker.ScopedCloudWatch(ctx, event.AccountID, event.Region)
	if err != nil {
		h.logger.ErrorContext(ctx, "cannot obtain scoped client",
			slog.String("accountId", event.AccountID),
			slog.String("region", event.Region),
			slog.String("error", err.Error()))
		return err
	}

	dir := directory.New(cw, h.logger)

	desc, err := dir.DescribeAlarm(ctx, d.AlarmName)
	if err != nil {
		h.logger.ErrorContext(ctx, "cannot describe alarm",
			slog.String("alarmName", d.AlarmName),
			slog.String("error", err.Error()))
		return err
	}

	stateAt, _ := time.Parse(stateTimestampLayout, d.State.Timestamp)

	lines := detail.NewBuilder(dir, h.logger).Lines(ctx, desc, detail.Event{
		AlarmName:  d.AlarmName,
		State:      d.State.Value,
		Reason:     d.State.Reason,
		ReasonData: d.State.ReasonData,
		Region:     event.Region,
		At:         stateAt,
	})

	channel := h.cfg.ChannelFor(classify.SeverityOf(d.AlarmName))
	msg := render.AlarmMessage(channel, d.State.Value, event.Region, d.AlarmName,
		lines, d.Configuration.Description)

	if err := h.sender.Send(ctx, msg); err != nil {
		h.logger.ErrorContext(ctx, "cannot send notification",
			slog.String("alarmName", d.AlarmName),
			slog.String("error", err.Error()))
		return err
	}

	h.logger.InfoContext(ctx, "notification sent",
		slog.String("alarmName", d.AlarmName),
		slog.String("state", d.State.Value),
		slog.String("channel", channel))

	return nil
}
