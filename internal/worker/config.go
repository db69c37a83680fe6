// Package worker consumes train status updates from Pub/Sub and applies them
// to the train store.
package worker

import (
	"os"
	"strconv"
	"time"
)

// IngestConfig holds configuration for the status ingest worker.
type IngestConfig struct {
	// ProjectID is the Google Cloud project that owns the subscription.
	ProjectID string

	// SubscriptionName is the Pub/Sub subscription carrying status updates.
	SubscriptionName string

	// MaxOutstandingMessages bounds the number of unacknowledged messages.
	// Default: 10
	MaxOutstandingMessages int

	// MaxExtension is how long a message's ack deadline may be extended.
	// Default: 2 minutes
	MaxExtension time.Duration

	// HandleTimeout bounds the processing of a single message.
	// Default: 10 seconds
	HandleTimeout time.Duration
}

// DefaultIngestConfig returns the default ingest configuration.
func DefaultIngestConfig() IngestConfig {
	return IngestConfig{
		SubscriptionName:       "train-status-updates",
		MaxOutstandingMessages: 10,
		MaxExtension:           2 * time.Minute,
		HandleTimeout:          10 * time.Second,
	}
}

// ConfigFromEnv reads PUBSUB_PROJECT_ID, PUBSUB_SUBSCRIPTION,
// PUBSUB_MAX_OUTSTANDING and PUBSUB_HANDLE_TIMEOUT over the defaults.
func ConfigFromEnv() IngestConfig {
	cfg := DefaultIngestConfig()
	cfg.ProjectID = os.Getenv("PUBSUB_PROJECT_ID")
	if v := os.Getenv("PUBSUB_SUBSCRIPTION"); v != "" {
		cfg.SubscriptionName = v
	}
	if n, err := strconv.Atoi(os.Getenv("PUBSUB_MAX_OUTSTANDING")); err == nil && n > 0 {
		cfg.MaxOutstandingMessages = n
	}
	if d, err := time.ParseDuration(os.Getenv("PUBSUB_HANDLE_TIMEOUT")); err == nil && d > 0 {
		cfg.HandleTimeout = d
	}
	return cfg
}

func (c IngestConfig) withDefaults() IngestConfig {
	def := DefaultIngestConfig()
	if c.SubscriptionName == "" {
		c.SubscriptionName = def.SubscriptionName
	}
	if c.MaxOutstandingMessages <= 0 {
		c.MaxOutstandingMessages = def.MaxOutstandingMessages
	}
	if c.MaxExtension <= 0 {
		c.MaxExtension = def.MaxExtension
	}
	if c.HandleTimeout <= 0 {
		c.HandleTimeout = def.HandleTimeout
	}
	return c
}
