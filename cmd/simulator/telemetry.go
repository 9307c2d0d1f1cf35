package main

import (
	"fmt"
	"math/rand"
)

// reading mirrors the JSON body a vehicle unit posts.
type reading struct {
	Alcohol    float64 `json:"alcohol"`
	Vibration  float64 `json:"vibration"`
	Distance   float64 `json:"distance"`
	Seatbelt   bool    `json:"seatbelt"`
	Impact     float64 `json:"impact"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	LCDDisplay string  `json:"lcd_display"`
}

type vehicle struct {
	rng      *rand.Rand
	lat, lng float64
}

func newVehicle(seed int64, lat, lng float64) *vehicle {
	return &vehicle{rng: rand.New(rand.NewSource(seed)), lat: lat, lng: lng}
}

// next drifts the vehicle a few metres and samples its sensors.
func (v *vehicle) next() reading {
	v.lat += (v.rng.Float64() - 0.5) * 0.0004
	v.lng += (v.rng.Float64() - 0.5) * 0.0004

	r := reading{
		Alcohol:   round(v.rng.Float64()*0.1, 3),
		Vibration: round(v.rng.Float64()*0.3, 2),
		Distance:  round(50+v.rng.Float64()*250, 1),
		Seatbelt:  v.rng.Intn(10) > 0,
		Impact:    round(v.rng.Float64()*0.2, 2),
		Lat:       v.lat,
		Lng:       v.lng,
	}
	r.LCDDisplay = fmt.Sprintf("D%.0f A%.3f", r.Distance, r.Alcohol)
	return r
}

// crash returns a reading with accident-level impact and vibration.
func (v *vehicle) crash() reading {
	r := v.next()
	r.Impact = round(0.7+v.rng.Float64()*0.3, 2)
	r.Vibration = round(0.6+v.rng.Float64()*0.4, 2)
	r.Distance = round(v.rng.Float64()*30, 1)
	r.LCDDisplay = "ACCIDENT DETECTED"
	return r
}

func round(v float64, places int) float64 {
	p := 1.0
	for i := 0; i < places; i++ {
		p *= 10
	}
	return float64(int64(v*p+0.5)) / p
}
