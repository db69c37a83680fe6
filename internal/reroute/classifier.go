package reroute

import (
	"time"

	"github.com/trainreroute/trainreroute/internal/train"
)

// Necessity is the classifier's verdict for a single train.
type Necessity struct {
	// Required is true when a reroute search should run.
	Required bool

	// AlreadyDeparted is true when now is past the actual departure.
	AlreadyDeparted bool

	Cancelled        bool
	SignificantDelay bool

	// Scheduled and Actual are the resolved departure instants.
	Scheduled time.Time
	Actual    time.Time
}

// Classify decides whether t needs a reroute at now.
//
// Delays are read through train.EffectiveDelay, so an on-time row with a
// stale delayMinutes counts as zero delay both for significance and for the
// actual departure.
//
// A cancelled train whose schedule has passed is reported as departed and
// therefore not rerouted.
func Classify(t *train.Train, now time.Time, policy Policy) (Necessity, error) {
	policy = policy.withDefaults()

	scheduled, actual, err := departures(t, now)
	if err != nil {
		return Necessity{}, err
	}

	n := Necessity{
		Cancelled:        t.IsCancelled(),
		SignificantDelay: t.EffectiveDelay() >= policy.significantDelayMinutes(),
		AlreadyDeparted:  now.After(actual),
		Scheduled:        scheduled,
		Actual:           actual,
	}
	n.Required = (n.Cancelled || n.SignificantDelay) && !n.AlreadyDeparted
	return n, nil
}

// departures resolves the scheduled and actual departure of t.
func departures(t *train.Train, now time.Time) (scheduled, actual time.Time, err error) {
	scheduled, err = ScheduledDeparture(t.DepartureTime, now)
	if err != nil {
		return time.Time{}, time.Time{}, &MalformedScheduleError{TrainID: t.ID, Value: t.DepartureTime}
	}
	actual = scheduled.Add(time.Duration(t.EffectiveDelay()) * time.Minute)
	return scheduled, actual, nil
}
