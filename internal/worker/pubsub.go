package worker

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"
)

// PubSubHandler receives status updates from a Pub/Sub subscription.
type PubSubHandler struct {
	client     *pubsub.Client
	subscriber *pubsub.Subscriber
	config     IngestConfig
	processor  *Processor
	logger     zerolog.Logger
}

// PubSubConfig holds configuration for the Pub/Sub handler.
type PubSubConfig struct {
	Ingest    IngestConfig
	Processor *Processor
	Logger    zerolog.Logger
}

// NewPubSubHandler creates a new Pub/Sub handler.
func NewPubSubHandler(ctx context.Context, cfg PubSubConfig) (*PubSubHandler, error) {
	ingest := cfg.Ingest.withDefaults()
	if ingest.ProjectID == "" {
		return nil, fmt.Errorf("pubsub project id is required")
	}

	client, err := pubsub.NewClient(ctx, ingest.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	subscriber := client.Subscriber(ingest.SubscriptionName)
	subscriber.ReceiveSettings.MaxOutstandingMessages = ingest.MaxOutstandingMessages
	subscriber.ReceiveSettings.MaxExtension = ingest.MaxExtension

	return &PubSubHandler{
		client:     client,
		subscriber: subscriber,
		config:     ingest,
		processor:  cfg.Processor,
		logger:     cfg.Logger,
	}, nil
}

// Start receives messages until ctx is cancelled.
func (h *PubSubHandler) Start(ctx context.Context) error {
	h.logger.Info().
		Str("subscription", h.config.SubscriptionName).
		Int("max_outstanding", h.config.MaxOutstandingMessages).
		Msg("starting status ingest")

	return h.subscriber.Receive(ctx, h.handleMessage)
}

// Close closes the Pub/Sub client.
func (h *PubSubHandler) Close() error {
	return h.client.Close()
}

func (h *PubSubHandler) handleMessage(ctx context.Context, msg *pubsub.Message) {
	start := time.Now()

	logger := h.logger.With().
		Str("message_id", msg.ID).
		Str("publish_time", msg.PublishTime.Format(time.RFC3339)).
		Logger()

	ctx, cancel := context.WithTimeout(ctx, h.config.HandleTimeout)
	defer cancel()

	err := h.processor.Process(ctx, msg.Data)
	if Decide(err) == Nack {
		logger.Error().Err(err).Msg("status update failed, requesting redelivery")
		msg.Nack()
		return
	}

	if err != nil {
		logger.Warn().Err(err).Msg("discarding status update")
	} else {
		logger.Debug().Dur("duration", time.Since(start)).Msg("status update applied")
	}
	msg.Ack()
}
