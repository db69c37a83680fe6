package train_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trainreroute/trainreroute/internal/train"
)

const validSeed = `
trains:
  - id: T1
    trainNumber: "101"
    trainName: Coastal
    status: delayed
    delayMinutes: 20
    departureTime: "10:00"
    destination: Z
    stationName: A
  - id: T2
    trainNumber: "102"
    trainName: Express
    status: on_time
    departureTime: "2026-01-01T10:05:00Z"
    destination: Z
    stationName: B
`

func TestParseSeed(t *testing.T) {
	trains, err := train.ParseSeed([]byte(validSeed))
	require.NoError(t, err)
	require.Len(t, trains, 2)

	assert.Equal(t, "T1", trains[0].ID)
	assert.Equal(t, train.StatusDelayed, trains[0].Status)
	assert.Equal(t, 20, trains[0].DelayMinutes)
	assert.Equal(t, "2026-01-01T10:05:00Z", trains[1].DepartureTime)
}

func TestParseSeed_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "bad status",
			yaml: `
trains:
  - {id: T1, trainNumber: "1", trainName: A, status: late, departureTime: "10:00", destination: Z, stationName: A}
`,
		},
		{
			name: "missing destination",
			yaml: `
trains:
  - {id: T1, trainNumber: "1", trainName: A, status: on_time, departureTime: "10:00", stationName: A}
`,
		},
		{
			name: "negative delay",
			yaml: `
trains:
  - {id: T1, trainNumber: "1", trainName: A, status: delayed, delayMinutes: -5, departureTime: "10:00", destination: Z, stationName: A}
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := train.ParseSeed([]byte(tt.yaml))
			assert.ErrorIs(t, err, train.ErrValidation)
		})
	}
}

func TestParseSeed_DuplicateID(t *testing.T) {
	_, err := train.ParseSeed([]byte(`
trains:
  - {id: T1, trainNumber: "1", trainName: A, status: on_time, departureTime: "10:00", destination: Z, stationName: A}
  - {id: T1, trainNumber: "2", trainName: B, status: on_time, departureTime: "10:05", destination: Z, stationName: A}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate id")
}

func TestParseSeed_MalformedYAML(t *testing.T) {
	_, err := train.ParseSeed([]byte("trains: [\n"))
	assert.Error(t, err)
}

func TestLoadSeedFileAndSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trains.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validSeed), 0o600))

	trains, err := train.LoadSeedFile(path)
	require.NoError(t, err)

	repo := train.NewInMemoryRepository()
	require.NoError(t, train.Seed(context.Background(), repo, trains))
	assert.Equal(t, 2, repo.Len())

	_, err = train.LoadSeedFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
