package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/trainreroute/trainreroute/internal/train"
)

// ErrInvalidMessage marks a message that can never be applied.
var ErrInvalidMessage = errors.New("invalid status message")

// StatusApplier applies a status update to the train store.
type StatusApplier interface {
	ApplyStatusUpdate(ctx context.Context, update train.StatusUpdate) error
}

// Decision is what to do with a processed message.
type Decision int

const (
	// Ack removes the message from the subscription.
	Ack Decision = iota
	// Nack asks Pub/Sub to redeliver the message.
	Nack
)

// Decide maps a processing error to a Decision. Messages that will fail the
// same way again are acknowledged; store failures are redelivered.
func Decide(err error) Decision {
	switch {
	case err == nil,
		errors.Is(err, ErrInvalidMessage),
		errors.Is(err, train.ErrValidation),
		errors.Is(err, train.ErrTrainNotFound):
		return Ack
	default:
		return Nack
	}
}

// Stats is a snapshot of ingest counters.
type Stats struct {
	Received      int64     `json:"received"`
	Applied       int64     `json:"applied"`
	Rejected      int64     `json:"rejected"`
	Failed        int64     `json:"failed"`
	LastAppliedAt time.Time `json:"lastAppliedAt"`
}

// Processor decodes status messages and applies them.
type Processor struct {
	applier StatusApplier
	logger  zerolog.Logger

	received    atomic.Int64
	applied     atomic.Int64
	rejected    atomic.Int64
	failed      atomic.Int64
	lastApplied atomic.Int64
}

// NewProcessor creates a new Processor.
func NewProcessor(applier StatusApplier, logger zerolog.Logger) *Processor {
	return &Processor{applier: applier, logger: logger}
}

// Process decodes one message body and applies it. Malformed JSON returns an
// error matching ErrInvalidMessage.
func (p *Processor) Process(ctx context.Context, data []byte) error {
	p.received.Add(1)

	var update train.StatusUpdate
	if err := json.Unmarshal(data, &update); err != nil {
		p.rejected.Add(1)
		return fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}

	err := p.applier.ApplyStatusUpdate(ctx, update)
	switch {
	case err == nil:
		p.applied.Add(1)
		p.lastApplied.Store(time.Now().UnixNano())
	case Decide(err) == Ack:
		p.rejected.Add(1)
	default:
		p.failed.Add(1)
	}
	return err
}

// Stats returns the current counters.
func (p *Processor) Stats() Stats {
	s := Stats{
		Received: p.received.Load(),
		Applied:  p.applied.Load(),
		Rejected: p.rejected.Load(),
		Failed:   p.failed.Load(),
	}
	if ns := p.lastApplied.Load(); ns != 0 {
		s.LastAppliedAt = time.Unix(0, ns).UTC()
	}
	return s
}
