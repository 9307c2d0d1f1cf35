package models

import "time"

// Payload is the device-supplied part of a sensor reading or accident event.
// Lat, Lng and LCDDisplay are optional and stay nil when the device omits them.
type Payload struct {
	Alcohol    float64  `json:"alcohol"`
	Vibration  float64  `json:"vibration"`
	Distance   float64  `json:"distance"`
	Seatbelt   bool     `json:"seatbelt"`
	Impact     float64  `json:"impact"`
	Lat        *float64 `json:"lat"`
	Lng        *float64 `json:"lng"`
	LCDDisplay *string  `json:"lcd_display"`
}

// TelemetryRequest is the JSON body a device posts for either record kind.
// Required fields are pointers so that false and 0 count as present.
type TelemetryRequest struct {
	Alcohol    *float64 `json:"alcohol" binding:"required"`
	Vibration  *float64 `json:"vibration" binding:"required"`
	Distance   *float64 `json:"distance" binding:"required"`
	Seatbelt   *bool    `json:"seatbelt" binding:"required"`
	Impact     *float64 `json:"impact" binding:"required"`
	Lat        *float64 `json:"lat"`
	Lng        *float64 `json:"lng"`
	LCDDisplay *string  `json:"lcd_display"`
}

// Payload copies a validated request into its stored form. It must not be
// called before the required fields have been checked.
func (r TelemetryRequest) Payload() Payload {
	return Payload{
		Alcohol:    *r.Alcohol,
		Vibration:  *r.Vibration,
		Distance:   *r.Distance,
		Seatbelt:   *r.Seatbelt,
		Impact:     *r.Impact,
		Lat:        r.Lat,
		Lng:        r.Lng,
		LCDDisplay: r.LCDDisplay,
	}
}

// HasPosition reports whether both GPS coordinates are present.
func (p Payload) HasPosition() bool {
	return p.Lat != nil && p.Lng != nil
}

// SensorReading is one telemetry sample. ID is assigned by the store.
type SensorReading struct {
	ID int64 `json:"id"`
	Payload
	// HeartRate is only set on the placeholder reading served without a store.
	HeartRate *float64  `json:"heart_rate,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	CreatedAt time.Time `json:"created_at"`
}

// AccidentEvent is a discrete safety incident. ID is assigned at ingestion,
// before the record reaches the store.
type AccidentEvent struct {
	ID string `json:"id"`
	Payload
	Timestamp time.Time `json:"timestamp"`
	CreatedAt time.Time `json:"created_at"`
}
