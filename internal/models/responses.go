package models

import "time"

// IngestResponse is returned by the write endpoints.
// ID is numeric for sensor readings and a string for accident events.
type IngestResponse struct {
	Status string      `json:"status"`
	ID     interface{} `json:"id"`
}

// Stats is returned by GET /api/stats.
type Stats struct {
	TotalAccidents     int     `json:"total_accidents"`
	MaxAlcohol         float64 `json:"max_alcohol"`
	AvgAlcohol         float64 `json:"avg_alcohol"`
	MaxImpact          float64 `json:"max_impact"`
	SeatbeltViolations int     `json:"seatbelt_violations"`
	TotalSensorPoints  int64   `json:"total_sensor_points"`
}

// MapPoint is the projection of a positioned accident served to the map view.
type MapPoint struct {
	ID        string    `json:"id"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Timestamp time.Time `json:"timestamp"`
}

// CarPosition is the last known vehicle location.
type CarPosition struct {
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Speed float64 `json:"speed"`
}
