package reroute

import (
	"errors"
	"sort"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/trainreroute/trainreroute/internal/train"
)

// Candidate is a feasible alternative with its resolved departures.
type Candidate struct {
	Train     *train.Train
	Scheduled time.Time
	Actual    time.Time
}

// Alternatives is the outcome of a candidate search.
type Alternatives struct {
	SameStation []*Candidate
	Nearby      []*Candidate

	// SuggestedStations lists the distinct stations of Nearby in order.
	SuggestedStations []string

	// Skipped holds candidates dropped for an unreadable schedule.
	Skipped []*MalformedScheduleError
}

// Empty reports whether no alternative was found anywhere.
func (a Alternatives) Empty() bool {
	return len(a.SameStation) == 0 && len(a.Nearby) == 0
}

type searchPass struct {
	window time.Duration
	limit  int
}

// FindAlternatives selects feasible alternatives to original from pool.
//
// The pool is filtered again here: entries heading elsewhere, cancelled
// entries and the original itself are ignored. Same-station and other-station
// candidates are searched concurrently.
func FindAlternatives(original *train.Train, pool []*train.Train, now time.Time, policy Policy) (Alternatives, error) {
	policy = policy.withDefaults()

	_, originalActual, err := departures(original, now)
	if err != nil {
		return Alternatives{}, err
	}

	var sameStation, otherStation []*train.Train
	for _, t := range pool {
		if t == nil || t.ID == original.ID || t.Destination != original.Destination || t.IsCancelled() {
			continue
		}
		if t.StationName == original.StationName {
			sameStation = append(sameStation, t)
		} else {
			otherStation = append(otherStation, t)
		}
	}

	var (
		result                     Alternatives
		sameSkipped, nearbySkipped []*MalformedScheduleError
		wg                         conc.WaitGroup
	)
	wg.Go(func() {
		result.SameStation, sameSkipped = runPass(sameStation, originalActual, now, policy,
			searchPass{window: policy.SameStationWindow, limit: policy.SameStationLimit})
	})
	wg.Go(func() {
		result.Nearby, nearbySkipped = runPass(otherStation, originalActual, now, policy,
			searchPass{window: policy.NearbyWindow, limit: policy.NearbyLimit})
	})
	wg.Wait()

	result.Skipped = append(sameSkipped, nearbySkipped...)
	result.SuggestedStations = distinctStations(result.Nearby)
	return result, nil
}

func runPass(pool []*train.Train, originalActual, now time.Time, policy Policy, pass searchPass) ([]*Candidate, []*MalformedScheduleError) {
	deadline := originalActual.Add(pass.window)
	maxDelay := policy.significantDelayMinutes()

	var (
		survivors []*Candidate
		skipped   []*MalformedScheduleError
	)
	for _, t := range pool {
		scheduled, actual, err := departures(t, now)
		if err != nil {
			var malformed *MalformedScheduleError
			if errors.As(err, &malformed) {
				skipped = append(skipped, malformed)
			}
			continue
		}

		notDeparted := actual.After(now)
		acceptableDelay := t.Status == train.StatusOnTime || t.EffectiveDelay() < maxDelay
		departsBefore := actual.Before(deadline)
		if notDeparted && acceptableDelay && departsBefore {
			survivors = append(survivors, &Candidate{Train: t, Scheduled: scheduled, Actual: actual})
		}
	}

	// Presentation follows the timetable, not the current delays.
	sort.SliceStable(survivors, func(i, j int) bool {
		a, b := survivors[i], survivors[j]
		if !a.Scheduled.Equal(b.Scheduled) {
			return a.Scheduled.Before(b.Scheduled)
		}
		return a.Train.ID < b.Train.ID
	})

	if len(survivors) > pass.limit {
		survivors = survivors[:pass.limit]
	}
	return survivors, skipped
}

func distinctStations(candidates []*Candidate) []string {
	stations := make([]string, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		if _, ok := seen[c.Train.StationName]; ok {
			continue
		}
		seen[c.Train.StationName] = struct{}{}
		stations = append(stations, c.Train.StationName)
	}
	return stations
}
