// Package relay hands rendered messages to the external Message Relay.
// Publishing is fire-and-forget: no delivery acknowledgment is awaited.
package relay

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"go.opentelemetry.io/otel"

	"github.com/PRX/cloudwatch-toolkit/internal/config"
	"github.com/PRX/cloudwatch-toolkit/internal/render"
)

var tracer = otel.Tracer("github.com/PRX/cloudwatch-toolkit/internal/relay")

const (
	relayUsername  = "Amazon CloudWatch Alarms"
	relayIconEmoji = ":ops-cloudwatch-alarm:"
)

// Payload is the Message Relay contract: one outbound event per dispatch.
type Payload struct {
	Channel     string       `json:"channel"`
	Username    string       `json:"username"`
	IconEmoji   string       `json:"icon_emoji"`
	Attachments []Attachment `json:"attachments"`
}

type Attachment struct {
	Color    string         `json:"color"`
	Fallback string         `json:"fallback"`
	Blocks   []render.Block `json:"blocks"`
}

func payloadFor(msg *render.Message) Payload {
	return Payload{
		Channel:   msg.Channel,
		Username:  relayUsername,
		IconEmoji: relayIconEmoji,
		Attachments: []Attachment{{
			Color:    msg.Color,
			Fallback: msg.Fallback,
			Blocks:   msg.Blocks,
		}},
	}
}

// Sender dispatches a rendered message to the configured relay transport.
type Sender interface {
	Send(ctx context.Context, msg *render.Message) error
}

// NewSender creates a Sender for the configured relay target.
// Supported targets: sns, eventbridge.
func NewSender(awsCfg aws.Config, cfg *config.Config) (Sender, error) {
	switch cfg.RelayTarget {
	case config.TargetSNS:
		return NewSNSSender(sns.NewFromConfig(awsCfg), cfg.RelayTopicARN), nil

	case config.TargetEventBridge:
		return NewEventBridgeSender(eventbridge.NewFromConfig(awsCfg), cfg.RelayEventBusARN), nil

	default:
		return nil, fmt.Errorf("unknown relay target: %s", cfg.RelayTarget)
	}
}

// SNSAPI defines the SNS operations required for relaying.
type SNSAPI interface {
	Publish(
		ctx context.Context,
		input *sns.PublishInput,
		optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSSender publishes relay payloads to the Message Relay SNS topic.
type SNSSender struct {
	client   SNSAPI
	topicARN string
}

func NewSNSSender(client SNSAPI, topicARN string) *SNSSender {
	return &SNSSender{
		client:   client,
		topicARN: topicARN,
	}
}

func (s *SNSSender) Send(ctx context.Context, msg *render.Message) error {
	ctx, span := tracer.Start(ctx, "relay.send")
	defer span.End()

	body, err := json.Marshal(payloadFor(msg))
	if err != nil {
		return fmt.Errorf("cannot marshal relay payload: %w", err)
	}

	_, err = s.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(s.topicARN),
		Message:  aws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("cannot publish to %q: %w", s.topicARN, err)
	}

	return nil
}
