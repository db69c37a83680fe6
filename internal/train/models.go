// Package train provides access to the train schedule rows the reroute engine reads.
package train

import (
	"errors"
	"time"
)

// Repository errors.
var (
	ErrTrainNotFound = errors.New("train not found")
)

// Status represents the operational status of a train at a station.
type Status string

const (
	StatusOnTime    Status = "on_time"
	StatusDelayed   Status = "delayed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusOnTime, StatusDelayed, StatusCancelled:
		return true
	}
	return false
}

// Train is the schedule of one train at one station. A train that stops at
// several stations has one row per station.
type Train struct {
	ID           string `yaml:"id" validate:"required"`
	TrainNumber  string `yaml:"trainNumber" validate:"required"`
	TrainName    string `yaml:"trainName" validate:"required"`
	Status       Status `yaml:"status" validate:"required,oneof=on_time delayed cancelled"`
	DelayMinutes int    `yaml:"delayMinutes" validate:"gte=0"`

	// DepartureTime and ArrivalTime are either bare "HH:MM" clock values or
	// full ISO-8601 date-times.
	DepartureTime string `yaml:"departureTime" validate:"required"`
	ArrivalTime   string `yaml:"arrivalTime"`

	Source      string `yaml:"source"`
	Destination string `yaml:"destination" validate:"required"`
	StationName string `yaml:"stationName" validate:"required"`

	UpdatedAt time.Time `yaml:"-"`
}

// EffectiveDelay returns the delay that should be applied to the schedule.
// Rows marked on time may still carry a stale delay value; those read as zero.
func (t *Train) EffectiveDelay() int {
	if t.Status == StatusOnTime || t.DelayMinutes < 0 {
		return 0
	}
	return t.DelayMinutes
}

// IsCancelled reports whether the train has been cancelled.
func (t *Train) IsCancelled() bool {
	return t.Status == StatusCancelled
}

// StatusUpdate is a change in a train's operational status.
type StatusUpdate struct {
	TrainID      string `json:"trainId" validate:"required"`
	Status       Status `json:"status" validate:"required,oneof=on_time delayed cancelled"`
	DelayMinutes int    `json:"delayMinutes" validate:"gte=0,lte=1440"`
}
