package models

// Train is the API view of a stored train row.
type Train struct {
	ID            string    `json:"id"`
	TrainNumber   string    `json:"trainNumber"`
	TrainName     string    `json:"trainName"`
	Status        string    `json:"status"`
	DelayMinutes  int       `json:"delayMinutes"`
	DepartureTime string    `json:"departureTime"`
	ArrivalTime   string    `json:"arrivalTime"`
	Source        string    `json:"source"`
	Destination   string    `json:"destination"`
	StationName   string    `json:"stationName"`
	UpdatedAt     Timestamp `json:"updatedAt"`
}
