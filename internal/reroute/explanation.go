package reroute

import (
	"fmt"
	"strings"
	"time"

	"github.com/trainreroute/trainreroute/internal/train"
)

// Kind selects an explanation template.
type Kind int

// Explanation kinds.
const (
	KindNoReroute Kind = iota
	KindAlreadyDeparted
	KindCancelled
	KindSameStation
	KindNearbyStation
	KindNoSameStationButNearby
	KindNoAlternatives
	KindRerouteSuggested
)

var kindNames = map[Kind]string{
	KindNoReroute:              "no_reroute",
	KindAlreadyDeparted:        "already_departed",
	KindCancelled:              "cancelled",
	KindSameStation:            "same_station",
	KindNearbyStation:          "nearby_station",
	KindNoSameStationButNearby: "no_same_station_but_nearby",
	KindNoAlternatives:         "no_alternatives",
	KindRerouteSuggested:       "reroute_suggested",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Fixed template text.
const (
	msgNoReroute        = "No reroute needed"
	msgAlreadyDeparted  = "Train has already departed"
	msgCancelled        = "Train Cancellation"
	msgNoSameStation    = "No alternatives at current station"
	msgNoAlternatives   = "No alternatives available"
	msgRerouteSuggested = "Reroute Suggested"

	reasonCancelled          = "Your train has been cancelled"
	reasonBestAvailable      = "The alternatives below are the best available options"
	reasonNoneAvailable      = "No alternatives are currently available"
	reasonNoSuitable         = "No suitable alternative trains were found"
	reasonOthersDisrupted    = "Other trains on this route are likely cancelled or heavily delayed"
	reasonNoneAtStation      = "No suitable trains are available at this station"
	reasonCheckNearby        = "Alternatives were found at nearby stations"
	reasonNoneAtYourStation  = "No suitable trains available at your station"
	reasonCommonRoute        = "Commonly used alternative route"
	reasonSameStation        = "Available at the same station"
	reasonCandidateOnTime    = "Train is currently on time"
	reasonDepartsEarlier     = "Departs earlier than your delayed train"
	reasonDepartsSameTime    = "Departs at the same time as your train"
	reasonNextAvailable      = "Next available option"
	reasonSameStationGeneric = "Alternative from the same station"
	reasonRunningOnTime      = "Your train is currently running on time"
	reasonMinorDelay         = "The delay is minor and you can still board your train"

	adviceProceed          = "Proceed to your assigned platform as scheduled"
	adviceChooseBelow      = "Choose one of the alternative trains listed below"
	adviceCheckLater       = "Check again later or follow station announcements for updates"
	adviceAnnouncements    = "Follow station announcements for updates"
	adviceReviewBelow      = "Review the alternatives below"
	adviceDepartureBoard   = "Check the departure board for the next service"
	adviceBoardSameStation = "Board this train from your current station"
)

// Situation carries everything a template may need.
type Situation struct {
	Kind Kind

	// Train is the passenger's original train.
	Train *train.Train

	// Departure is the original train's resolved departure.
	Departure Necessity

	// Candidate is set for KindSameStation and KindNearbyStation.
	Candidate *Candidate

	// Alternatives is the finder's result, when a search ran.
	Alternatives Alternatives

	// Reason is the computed reroute reason.
	Reason string

	Now           time.Time
	UrgencyWindow time.Duration
}

// OverallKind picks the explanation for the whole result.
func OverallKind(cancelled bool, alternatives Alternatives) Kind {
	switch {
	case cancelled:
		return KindCancelled
	case alternatives.Empty():
		return KindNoAlternatives
	case len(alternatives.SameStation) == 0:
		return KindNoSameStationButNearby
	default:
		return KindRerouteSuggested
	}
}

// Explain renders the explanation for s.
func Explain(s Situation) Explanation {
	switch s.Kind {
	case KindNoReroute:
		return explainNoReroute(s)
	case KindAlreadyDeparted:
		return Explanation{
			MainMessage: msgAlreadyDeparted,
			Reasons: []string{
				fmt.Sprintf("Departure at %s has passed", s.Departure.Actual.Format("15:04")),
			},
			ActionAdvice: adviceDepartureBoard,
		}
	case KindCancelled:
		return explainCancelled(s)
	case KindSameStation:
		return explainSameStation(s)
	case KindNearbyStation:
		return explainNearbyStation(s)
	case KindNoSameStationButNearby:
		return explainNoSameStation(s)
	case KindNoAlternatives:
		return Explanation{
			MainMessage:  msgNoAlternatives,
			Reasons:      []string{reasonNoSuitable, reasonOthersDisrupted},
			ActionAdvice: adviceCheckLater,
		}
	case KindRerouteSuggested:
		return Explanation{
			MainMessage:  msgRerouteSuggested,
			Reasons:      []string{s.Reason},
			ActionAdvice: adviceReviewBelow,
		}
	default:
		return Explanation{MainMessage: s.Kind.String(), Reasons: []string{}}
	}
}

func explainNoReroute(s Situation) Explanation {
	reasons := []string{reasonRunningOnTime}
	if delay := s.Train.EffectiveDelay(); delay > 0 {
		reasons = []string{
			fmt.Sprintf("Your train is delayed by %d minutes", delay),
			reasonMinorDelay,
		}
	}
	return Explanation{
		MainMessage:  msgNoReroute,
		Reasons:      reasons,
		ActionAdvice: adviceProceed,
	}
}

func explainCancelled(s Situation) Explanation {
	if s.Alternatives.Empty() {
		return Explanation{
			MainMessage:  msgCancelled,
			Reasons:      []string{reasonCancelled, reasonNoneAvailable, reasonNoSuitable, reasonOthersDisrupted},
			ActionAdvice: adviceCheckLater,
		}
	}
	return Explanation{
		MainMessage:  msgCancelled,
		Reasons:      []string{reasonCancelled, reasonBestAvailable},
		ActionAdvice: adviceChooseBelow,
	}
}

func explainSameStation(s Situation) Explanation {
	c := s.Candidate
	var reasons []string

	switch c.Train.Status {
	case train.StatusOnTime:
		reasons = append(reasons, reasonCandidateOnTime)
		switch {
		case c.Scheduled.Before(s.Departure.Scheduled):
			reasons = append(reasons, reasonDepartsEarlier)
		case c.Scheduled.Equal(s.Departure.Scheduled):
			reasons = append(reasons, reasonDepartsSameTime)
		}
	default:
		original, candidate := s.Train.EffectiveDelay(), c.Train.EffectiveDelay()
		if original-candidate > 0 {
			reasons = append(reasons,
				fmt.Sprintf("Less delayed than your train (%d mins vs %d mins)", candidate, original),
				reasonNextAvailable,
			)
		} else {
			reasons = append(reasons, reasonSameStationGeneric)
		}
	}
	reasons = append(reasons, reasonSameStation)

	e := Explanation{
		MainMessage:  fmt.Sprintf("%s (%s) at %s", c.Train.TrainName, c.Train.TrainNumber, c.Train.DepartureTime),
		Reasons:      reasons,
		ActionAdvice: adviceBoardSameStation,
	}
	if minutes, ok := s.imminent(c); ok {
		e.UrgencyMessage = fmt.Sprintf("Departs in %d minutes. Check the platform immediately", minutes)
	}
	return e
}

func explainNearbyStation(s Situation) Explanation {
	c := s.Candidate

	status := "Running on time from a nearby interchange station"
	if c.Train.Status != train.StatusOnTime {
		status = fmt.Sprintf("Minimal delay of %d minutes at a nearby interchange station", c.Train.EffectiveDelay())
	}

	e := Explanation{
		MainMessage:  fmt.Sprintf("%s (%s) from %s", c.Train.TrainName, c.Train.TrainNumber, c.Train.StationName),
		Reasons:      []string{reasonNoneAtYourStation, status, reasonCommonRoute},
		ActionAdvice: fmt.Sprintf("Travel to %s station", c.Train.StationName),
	}
	if minutes, ok := s.imminent(c); ok {
		e.UrgencyMessage = fmt.Sprintf("Departs in %d minutes. Allow time to travel to %s station", minutes, c.Train.StationName)
	}
	return e
}

func explainNoSameStation(s Situation) Explanation {
	stations := s.Alternatives.SuggestedStations

	reasons := []string{reasonNoneAtStation}
	advice := adviceAnnouncements
	if len(stations) > 0 {
		reasons = append(reasons, reasonCheckNearby)
		advice = "Consider travelling to " + strings.Join(stations, ", ")
	}

	return Explanation{
		MainMessage:  msgNoSameStation,
		Reasons:      reasons,
		ActionAdvice: advice,
	}
}

// imminent reports the whole minutes until c's timetabled departure when
// that falls inside the urgency window.
func (s Situation) imminent(c *Candidate) (int, bool) {
	window := s.UrgencyWindow
	if window <= 0 {
		window = DefaultPolicy().UrgencyWindow
	}

	until := c.Scheduled.Sub(s.Now)
	if until < 0 || until >= window {
		return 0, false
	}
	return int(until / time.Minute), true
}
