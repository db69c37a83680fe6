package worker_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trainreroute/trainreroute/internal/train"
	"github.com/trainreroute/trainreroute/internal/worker"
)

func newProcessor(t *testing.T) (*worker.Processor, *train.InMemoryRepository) {
	t.Helper()
	repo := train.NewInMemoryRepository(&train.Train{
		ID: "T1", TrainNumber: "101", TrainName: "Coastal", Status: train.StatusOnTime,
		DepartureTime: "10:00", Destination: "Z", StationName: "A",
	})
	return worker.NewProcessor(train.NewService(repo, zerolog.Nop()), zerolog.Nop()), repo
}

type failingApplier struct{ err error }

func (f failingApplier) ApplyStatusUpdate(context.Context, train.StatusUpdate) error { return f.err }

func TestProcessor_AppliesUpdate(t *testing.T) {
	p, repo := newProcessor(t)

	err := p.Process(context.Background(), []byte(`{"trainId":"T1","status":"delayed","delayMinutes":25}`))
	require.NoError(t, err)

	got, err := repo.FindByID(context.Background(), "T1")
	require.NoError(t, err)
	assert.Equal(t, train.StatusDelayed, got.Status)
	assert.Equal(t, 25, got.DelayMinutes)

	stats := p.Stats()
	assert.EqualValues(t, 1, stats.Received)
	assert.EqualValues(t, 1, stats.Applied)
	assert.False(t, stats.LastAppliedAt.IsZero())
}

func TestProcessor_RejectsUnusableMessages(t *testing.T) {
	tests := []struct {
		name  string
		data  string
		match error
	}{
		{"not json", `{"trainId":`, worker.ErrInvalidMessage},
		{"unknown status", `{"trainId":"T1","status":"late"}`, train.ErrValidation},
		{"negative delay", `{"trainId":"T1","status":"delayed","delayMinutes":-5}`, train.ErrValidation},
		{"missing id", `{"status":"delayed","delayMinutes":5}`, train.ErrValidation},
		{"unknown train", `{"trainId":"T9","status":"delayed","delayMinutes":5}`, train.ErrTrainNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newProcessor(t)

			err := p.Process(context.Background(), []byte(tt.data))

			require.ErrorIs(t, err, tt.match)
			assert.Equal(t, worker.Ack, worker.Decide(err))
			assert.EqualValues(t, 1, p.Stats().Rejected)
			assert.Zero(t, p.Stats().Applied)
		})
	}
}

func TestProcessor_StoreFailureIsRedelivered(t *testing.T) {
	p := worker.NewProcessor(failingApplier{err: errors.New("connection reset")}, zerolog.Nop())

	err := p.Process(context.Background(), []byte(`{"trainId":"T1","status":"cancelled"}`))

	require.Error(t, err)
	assert.Equal(t, worker.Nack, worker.Decide(err))
	assert.EqualValues(t, 1, p.Stats().Failed)
}

func TestDecide(t *testing.T) {
	assert.Equal(t, worker.Ack, worker.Decide(nil))
	assert.Equal(t, worker.Nack, worker.Decide(context.DeadlineExceeded))
}
