package events

import (
	"context"

	"github.com/rs/zerolog"
)

type logPublisher struct {
	logger zerolog.Logger
}

// NewLogPublisher returns a Publisher that writes events to the log. It is
// used when no queue is configured.
func NewLogPublisher(logger zerolog.Logger) Publisher {
	return &logPublisher{
		logger: logger.With().Str("component", "event-log").Logger(),
	}
}

func (p *logPublisher) Publish(_ context.Context, event Event) error {
	p.logger.Info().
		Str("event_id", event.ID.String()).
		Str("event_type", string(event.Type)).
		Str("order_id", event.OrderID.String()).
		Str("order_number", event.OrderNumber).
		Int64("user_id", event.UserID).
		Str("status", string(event.Status)).
		Str("total", event.Total.StringFixed(2)).
		Msg("order event")
	return nil
}
