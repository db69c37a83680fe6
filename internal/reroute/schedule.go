package reroute

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// ErrMalformedSchedule is matched by every MalformedScheduleError.
var ErrMalformedSchedule = errors.New("malformed schedule")

// MalformedScheduleError reports a departure time that cannot be parsed.
type MalformedScheduleError struct {
	TrainID string
	Value   string
}

func (e *MalformedScheduleError) Error() string {
	if e.TrainID == "" {
		return fmt.Sprintf("malformed schedule %q", e.Value)
	}
	return fmt.Sprintf("train %s: malformed schedule %q", e.TrainID, e.Value)
}

// Is reports whether target is ErrMalformedSchedule.
func (e *MalformedScheduleError) Is(target error) bool {
	return target == ErrMalformedSchedule
}

// clockPattern matches a bare "HH:MM" clock value.
var clockPattern = regexp.MustCompile(`^(\d{2}):(\d{2})$`)

const (
	// staleAfter is how far in the past a bare clock value may fall before
	// it rolls to tomorrow.
	staleAfter = 12 * time.Hour
	// lateEveningAhead is how far ahead a bare clock value must fall before
	// it is read as yesterday's. Only a late-evening time read in the small
	// hours gets there.
	lateEveningAhead = 18 * time.Hour
)

// zonedLayouts carry their own offset.
var zonedLayouts = []string{
	time.RFC3339Nano,
}

// localLayouts are interpreted in the reference time's location.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ScheduledDeparture resolves a stored schedule value to an instant.
//
// A bare "HH:MM" value is a daily wall-clock time on now's calendar day in
// now's location. It rolls to tomorrow when it lies more than 12 h in the
// past, and to yesterday only when it lies more than 18 h ahead: "00:10"
// read at 23:50 is tomorrow's, "23:50" read at 00:10 is yesterday's and
// "22:00" read at 09:30 stays today. Other values must be ISO-8601
// date-times; zone-less ones use now's location.
func ScheduledDeparture(value string, now time.Time) (time.Time, error) {
	if m := clockPattern.FindStringSubmatch(value); m != nil {
		return resolveClock(value, m[1], m[2], now)
	}

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, now.Location()); err == nil {
			return t, nil
		}
	}

	return time.Time{}, &MalformedScheduleError{Value: value}
}

// ActualDeparture is the scheduled departure shifted by delayMinutes.
func ActualDeparture(value string, delayMinutes int, now time.Time) (time.Time, error) {
	scheduled, err := ScheduledDeparture(value, now)
	if err != nil {
		return time.Time{}, err
	}
	return scheduled.Add(time.Duration(delayMinutes) * time.Minute), nil
}

func resolveClock(value, hh, mm string, now time.Time) (time.Time, error) {
	hour, _ := strconv.Atoi(hh)   //nolint:errcheck // pattern guarantees digits
	minute, _ := strconv.Atoi(mm) //nolint:errcheck // pattern guarantees digits
	if hour > 23 || minute > 59 {
		return time.Time{}, &MalformedScheduleError{Value: value}
	}

	t := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	switch {
	case t.Sub(now) > lateEveningAhead:
		t = t.AddDate(0, 0, -1)
	case now.Sub(t) > staleAfter:
		t = t.AddDate(0, 0, 1)
	}
	return t, nil
}
