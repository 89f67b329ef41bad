package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/rs/zerolog"
)

// SQSAPI is the subset of the SQS client used by the publisher.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

type sqsPublisher struct {
	client   SQSAPI
	queueURL string
	logger   zerolog.Logger
}

// NewSQSPublisher creates a Publisher that sends events to an SQS queue using
// the default AWS credential chain.
func NewSQSPublisher(ctx context.Context, queueURL, region string, logger zerolog.Logger) (Publisher, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	logger.Info().
		Str("queue_url", queueURL).
		Str("region", region).
		Msg("SQS publisher initialised")

	return NewSQSPublisherWithClient(sqs.NewFromConfig(cfg), queueURL, logger), nil
}

// NewSQSPublisherWithClient wraps an existing SQS client.
func NewSQSPublisherWithClient(client SQSAPI, queueURL string, logger zerolog.Logger) Publisher {
	return &sqsPublisher{
		client:   client,
		queueURL: queueURL,
		logger:   logger.With().Str("component", "sqs-publisher").Logger(),
	}
}

// Publish sends the event as a JSON message with its type as a message attribute.
func (p *sqsPublisher) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]sqstypes.MessageAttributeValue{
			"event_type": {
				DataType:    aws.String("String"),
				StringValue: aws.String(string(event.Type)),
			},
			"order_number": {
				DataType:    aws.String("String"),
				StringValue: aws.String(event.OrderNumber),
			},
		},
	}

	out, err := p.client.SendMessage(ctx, input)
	if err != nil {
		p.logger.Error().
			Err(err).
			Str("event_type", string(event.Type)).
			Str("order_id", event.OrderID.String()).
			Msg("failed to send order event")
		return fmt.Errorf("send message: %w", err)
	}

	p.logger.Debug().
		Str("event_type", string(event.Type)).
		Str("message_id", aws.ToString(out.MessageId)).
		Msg("order event sent")

	return nil
}
