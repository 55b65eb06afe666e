package relay

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"

	"github.com/PRX/cloudwatch-toolkit/internal/render"
)

// EventBridgeAPI defines the EventBridge operations required for relaying.
type EventBridgeAPI interface {
	PutEvents(
		ctx context.Context,
		params *eventbridge.PutEventsInput,
		optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error)
}

// EventBridgeSender puts relay payloads on a Message Relay event bus.
type EventBridgeSender struct {
	client EventBridgeAPI
	busARN string
}

func NewEventBridgeSender(client EventBridgeAPI, busARN string) *EventBridgeSender {
	return &EventBridgeSender{
		client: client,
		busARN: busARN,
	}
}

func (s *EventBridgeSender) Send(ctx context.Context, msg *render.Message) error {
	ctx, span := tracer.Start(ctx, "relay.send")
	defer span.End()

	body, err := json.Marshal(payloadFor(msg))
	if err != nil {
		return fmt.Errorf("cannot marshal relay payload: %w", err)
	}

	params := &eventbridge.PutEventsInput{
		Entries: []types.PutEventsRequestEntry{{
			Detail:       aws.String(string(body)),
			DetailType:   aws.String("Slack Message Relay Message"),
			EventBusName: aws.String(s.busARN),
			Source:       aws.String("org.prx.cloudwatch-toolkit"),
		}},
	}

	out, err := s.client.PutEvents(ctx, params)
	if err != nil {
		return fmt.Errorf("cannot put event to %q: %w", s.busARN, err)
	}

	if out.FailedEntryCount > 0 {
		entry := out.Entries[0]
		return fmt.Errorf("cannot put event to %q: %s - %s",
			s.busARN, aws.ToString(entry.ErrorCode), aws.ToString(entry.ErrorMessage))
	}

	return nil
}
