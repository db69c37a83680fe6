package reroute_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trainreroute/trainreroute/internal/reroute"
	"github.com/trainreroute/trainreroute/internal/train"
)

// delayedOriginal leaves station A for Z at 10:00 with a 20 minute delay,
// so it actually departs at 10:20.
func delayedOriginal() *train.Train {
	return &train.Train{
		ID:            "ORIG",
		TrainNumber:   "100",
		TrainName:     "Original",
		Status:        train.StatusDelayed,
		DelayMinutes:  20,
		DepartureTime: "10:00",
		Destination:   "Z",
		StationName:   "A",
	}
}

func candidate(id, station, departure string, status train.Status, delay int) *train.Train {
	return &train.Train{
		ID:            id,
		TrainNumber:   "n-" + id,
		TrainName:     "Train " + id,
		Status:        status,
		DelayMinutes:  delay,
		DepartureTime: departure,
		Destination:   "Z",
		StationName:   station,
	}
}

func ids(candidates []*reroute.Candidate) []string {
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.Train.ID)
	}
	return out
}

func TestFindAlternatives_FeasibilityFilter(t *testing.T) {
	pool := []*train.Train{
		candidate("ok", "A", "10:05", train.StatusOnTime, 0),
		candidate("departed", "A", "09:20", train.StatusOnTime, 0),
		candidate("too-late", "A", "10:50", train.StatusOnTime, 0),
		candidate("just-inside", "A", "10:49", train.StatusOnTime, 0),
		candidate("minor-delay", "A", "10:00", train.StatusDelayed, 14),
		candidate("heavy-delay", "A", "10:00", train.StatusDelayed, 15),
		candidate("cancelled", "A", "10:10", train.StatusCancelled, 0),
		candidate("stale-on-time", "A", "10:15", train.StatusOnTime, 90),
	}
	other := candidate("elsewhere", "A", "10:10", train.StatusOnTime, 0)
	other.Destination = "Y"
	pool = append(pool, other, delayedOriginal())

	policy := reroute.DefaultPolicy()
	policy.SameStationLimit = 10

	got, err := reroute.FindAlternatives(delayedOriginal(), pool, at(9, 30), policy)
	require.NoError(t, err)

	// window ends at 10:20 + 30m = 10:50, exclusive
	assert.Equal(t, []string{"minor-delay", "ok", "stale-on-time", "just-inside"}, ids(got.SameStation))
	assert.Empty(t, got.Nearby)
	assert.Empty(t, got.SuggestedStations)
	assert.NotNil(t, got.SuggestedStations)
}

func TestFindAlternatives_NearbyWindow(t *testing.T) {
	pool := []*train.Train{
		candidate("b-1", "B", "10:30", train.StatusOnTime, 0),
		candidate("b-2", "B", "11:04", train.StatusOnTime, 0),
		candidate("b-3", "B", "11:05", train.StatusOnTime, 0),
	}

	got, err := reroute.FindAlternatives(delayedOriginal(), pool, at(9, 30), reroute.DefaultPolicy())
	require.NoError(t, err)

	// window ends at 10:20 + 45m = 11:05, exclusive
	assert.Equal(t, []string{"b-1", "b-2"}, ids(got.Nearby))
	assert.Empty(t, got.SameStation)
}

func TestFindAlternatives_SortedByTimetableNotDelay(t *testing.T) {
	pool := []*train.Train{
		candidate("late-slot", "A", "10:10", train.StatusOnTime, 0),
		candidate("early-slot-delayed", "A", "10:05", train.StatusDelayed, 10),
		candidate("tie-b", "A", "10:08", train.StatusOnTime, 0),
		candidate("tie-a", "A", "10:08", train.StatusOnTime, 0),
	}

	got, err := reroute.FindAlternatives(delayedOriginal(), pool, at(9, 30), reroute.DefaultPolicy())
	require.NoError(t, err)

	// early-slot-delayed actually leaves at 10:15 but is listed by its 10:05 slot
	assert.Equal(t, []string{"early-slot-delayed", "tie-a", "tie-b"}, ids(got.SameStation))
}

func TestFindAlternatives_Limits(t *testing.T) {
	var pool []*train.Train
	for i := 0; i < 8; i++ {
		departure := fmt.Sprintf("10:%02d", i)
		pool = append(pool,
			candidate(fmt.Sprintf("a-%d", i), "A", departure, train.StatusOnTime, 0),
			candidate(fmt.Sprintf("n-%d", i), fmt.Sprintf("S%d", i%3), departure, train.StatusOnTime, 0),
		)
	}

	got, err := reroute.FindAlternatives(delayedOriginal(), pool, at(9, 30), reroute.DefaultPolicy())
	require.NoError(t, err)

	assert.Equal(t, []string{"a-0", "a-1", "a-2"}, ids(got.SameStation))
	assert.Equal(t, []string{"n-0", "n-1", "n-2", "n-3", "n-4"}, ids(got.Nearby))
	assert.Equal(t, []string{"S0", "S1", "S2"}, got.SuggestedStations)
}

func TestFindAlternatives_SuggestedStationsDistinct(t *testing.T) {
	pool := []*train.Train{
		candidate("c-1", "C", "10:10", train.StatusOnTime, 0),
		candidate("b-1", "B", "10:05", train.StatusOnTime, 0),
		candidate("c-2", "C", "10:15", train.StatusOnTime, 0),
	}

	got, err := reroute.FindAlternatives(delayedOriginal(), pool, at(9, 30), reroute.DefaultPolicy())
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C"}, got.SuggestedStations)
}

func TestFindAlternatives_SkipsMalformedCandidates(t *testing.T) {
	pool := []*train.Train{
		candidate("bad", "A", "soon", train.StatusOnTime, 0),
		candidate("good", "A", "10:05", train.StatusOnTime, 0),
	}

	got, err := reroute.FindAlternatives(delayedOriginal(), pool, at(9, 30), reroute.DefaultPolicy())
	require.NoError(t, err)
	assert.Equal(t, []string{"good"}, ids(got.SameStation))
	require.Len(t, got.Skipped, 1)
	assert.Equal(t, "bad", got.Skipped[0].TrainID)
}

func TestFindAlternatives_MalformedOriginal(t *testing.T) {
	original := delayedOriginal()
	original.DepartureTime = "whenever"

	_, err := reroute.FindAlternatives(original, nil, at(9, 30), reroute.DefaultPolicy())
	assert.ErrorIs(t, err, reroute.ErrMalformedSchedule)
}

func TestFindAlternatives_EmptyPool(t *testing.T) {
	got, err := reroute.FindAlternatives(delayedOriginal(), nil, at(9, 30), reroute.DefaultPolicy())
	require.NoError(t, err)
	assert.True(t, got.Empty())
}
