// Package reroute decides whether a disrupted train needs a reroute and, if it
// does, which alternative trains a passenger could take instead.
package reroute

import (
	"time"

	"github.com/trainreroute/trainreroute/internal/train"
)

// Policy holds the thresholds and windows used by the reroute engine.
type Policy struct {
	// SignificantDelay is the delay from which a reroute is required.
	// Candidates delayed by this much or more are not offered.
	// Default: 15 minutes
	SignificantDelay time.Duration

	// SameStationWindow bounds how much later than the original train a
	// same-station candidate may actually depart.
	// Default: 30 minutes
	SameStationWindow time.Duration

	// NearbyWindow is the same bound for candidates at other stations.
	// Default: 45 minutes
	NearbyWindow time.Duration

	// UrgencyWindow marks candidates whose scheduled departure is imminent.
	// Default: 30 minutes
	UrgencyWindow time.Duration

	// SameStationLimit caps the number of same-station alternatives.
	// Default: 3
	SameStationLimit int

	// NearbyLimit caps the number of nearby-station alternatives.
	// Default: 5
	NearbyLimit int
}

// DefaultPolicy returns the standard reroute policy.
func DefaultPolicy() Policy {
	return Policy{
		SignificantDelay:  15 * time.Minute,
		SameStationWindow: 30 * time.Minute,
		NearbyWindow:      45 * time.Minute,
		UrgencyWindow:     30 * time.Minute,
		SameStationLimit:  3,
		NearbyLimit:       5,
	}
}

func (p Policy) withDefaults() Policy {
	d := DefaultPolicy()
	if p.SignificantDelay <= 0 {
		p.SignificantDelay = d.SignificantDelay
	}
	if p.SameStationWindow <= 0 {
		p.SameStationWindow = d.SameStationWindow
	}
	if p.NearbyWindow <= 0 {
		p.NearbyWindow = d.NearbyWindow
	}
	if p.UrgencyWindow <= 0 {
		p.UrgencyWindow = d.UrgencyWindow
	}
	if p.SameStationLimit <= 0 {
		p.SameStationLimit = d.SameStationLimit
	}
	if p.NearbyLimit <= 0 {
		p.NearbyLimit = d.NearbyLimit
	}
	return p
}

func (p Policy) significantDelayMinutes() int {
	return int(p.SignificantDelay / time.Minute)
}

// Explanation is a human-readable account of a reroute decision.
type Explanation struct {
	MainMessage    string   `json:"mainMessage"`
	Reasons        []string `json:"reasons"`
	UrgencyMessage string   `json:"urgencyMessage,omitempty"`
	ActionAdvice   string   `json:"actionAdvice,omitempty"`
}

// TrainSnapshot is the identifying projection of a train row.
type TrainSnapshot struct {
	ID            string       `json:"id"`
	TrainNumber   string       `json:"trainNumber"`
	TrainName     string       `json:"trainName"`
	Status        train.Status `json:"status"`
	DelayMinutes  int          `json:"delayMinutes"`
	DepartureTime string       `json:"departureTime"`
	ArrivalTime   string       `json:"arrivalTime"`
	Source        string       `json:"source"`
	Destination   string       `json:"destination"`
	StationName   string       `json:"stationName"`
}

// NewTrainSnapshot projects t.
func NewTrainSnapshot(t *train.Train) TrainSnapshot {
	return TrainSnapshot{
		ID:            t.ID,
		TrainNumber:   t.TrainNumber,
		TrainName:     t.TrainName,
		Status:        t.Status,
		DelayMinutes:  t.DelayMinutes,
		DepartureTime: t.DepartureTime,
		ArrivalTime:   t.ArrivalTime,
		Source:        t.Source,
		Destination:   t.Destination,
		StationName:   t.StationName,
	}
}

// AlternativeTrain is a candidate train with its own explanation.
type AlternativeTrain struct {
	TrainSnapshot
	Explanation Explanation `json:"explanation"`
}

// Result is the outcome of a reroute computation.
type Result struct {
	RerouteRequired           bool               `json:"rerouteRequired"`
	Reason                    *string            `json:"reason"`
	Explanation               Explanation        `json:"explanation"`
	Train                     TrainSnapshot      `json:"train"`
	SameStationAlternatives   []AlternativeTrain `json:"sameStationAlternatives"`
	SameStationCount          int                `json:"sameStationCount"`
	NearbyStationAlternatives []AlternativeTrain `json:"nearbyStationAlternatives"`
	NearbyStationCount        int                `json:"nearbyStationCount"`
	SuggestedStations         []string           `json:"suggestedStations"`
	Message                   string             `json:"message"`
}
