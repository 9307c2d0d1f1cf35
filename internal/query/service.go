// Package query implements the dashboard read path. Each operation declares
// what happens when the store fails: most degrade to a canned response,
// detail and history lookups surface the error.
package query

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/PratikDhanave/safedrive-service/internal/models"
	"github.com/PratikDhanave/safedrive-service/internal/store"
)

// MaxHistory caps SensorHistory.
const MaxHistory = 1000

// ErrNotFound is returned by AccidentByID when no accident has the id.
var ErrNotFound = store.ErrNotFound

// Store is the subset of store.Store the read path needs.
type Store interface {
	LatestSensorReading(ctx context.Context, withPosition bool) (*models.SensorReading, error)
	ListSensorReadings(ctx context.Context, limit int) ([]models.SensorReading, error)
	CountSensorReadings(ctx context.Context) (int64, error)
	ListAccidentEvents(ctx context.Context, withPosition bool) ([]models.AccidentEvent, error)
	GetAccidentEvent(ctx context.Context, id string) (*models.AccidentEvent, error)
}

// Recovery is an operation's policy for store failures.
type Recovery int

const (
	// ReturnFallback logs the failure and serves the canned response.
	ReturnFallback Recovery = iota
	// Propagate returns the failure to the caller.
	Propagate
)

type Service struct {
	store   Store
	log     log.FieldLogger
	timeout time.Duration
	now     func() time.Time
}

type Option func(*Service)

// WithTimeout bounds each store read.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(st Store, logger log.FieldLogger, opts ...Option) *Service {
	s := &Service{
		store:   st,
		log:     logger,
		timeout: 3 * time.Second,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// read runs fetch under the store timeout and applies policy on failure.
// With ReturnFallback the returned error is always nil.
func read[T any](ctx context.Context, s *Service, op string, policy Recovery,
	fetch func(ctx context.Context) (T, error), fallback func() T) (T, error) {

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	v, err := fetch(ctx)
	if err == nil {
		return v, nil
	}

	entry := s.log.WithError(err).WithField("op", op)
	switch policy {
	case ReturnFallback:
		entry.Warn("store read failed, serving fallback")
		return fallback(), nil
	default:
		if !errors.Is(err, store.ErrNotFound) {
			entry.Error("store read failed")
		}
		var zero T
		return zero, err
	}
}

// LatestSensor returns the most recently created reading. An empty store is
// treated like an unreachable one.
func (s *Service) LatestSensor(ctx context.Context) models.SensorReading {
	v, _ := read(ctx, s, "latest_sensor", ReturnFallback,
		func(ctx context.Context) (models.SensorReading, error) {
			r, err := s.store.LatestSensorReading(ctx, false)
			if err != nil {
				return models.SensorReading{}, err
			}
			return *r, nil
		},
		func() models.SensorReading { return FallbackSensorReading(s.now()) },
	)
	return v
}

// Stats aggregates accident records and counts sensor readings.
func (s *Service) Stats(ctx context.Context) models.Stats {
	v, _ := read(ctx, s, "stats", ReturnFallback,
		func(ctx context.Context) (models.Stats, error) {
			accidents, err := s.store.ListAccidentEvents(ctx, false)
			if err != nil {
				return models.Stats{}, err
			}
			points, err := s.store.CountSensorReadings(ctx)
			if err != nil {
				return models.Stats{}, err
			}
			return ComputeStats(accidents, points), nil
		},
		FallbackStats,
	)
	return v
}

// MapPoints projects every accident that has both coordinates.
func (s *Service) MapPoints(ctx context.Context) []models.MapPoint {
	v, _ := read(ctx, s, "map_points", ReturnFallback,
		func(ctx context.Context) ([]models.MapPoint, error) {
			accidents, err := s.store.ListAccidentEvents(ctx, true)
			if err != nil {
				return nil, err
			}
			points := make([]models.MapPoint, 0, len(accidents))
			for _, a := range accidents {
				if !a.HasPosition() {
					continue
				}
				points = append(points, models.MapPoint{ID: a.ID, Lat: *a.Lat, Lng: *a.Lng, Timestamp: a.Timestamp})
			}
			return points, nil
		},
		func() []models.MapPoint { return FallbackMapPoints(s.now()) },
	)
	return v
}

// Accidents returns all accidents, newest first.
func (s *Service) Accidents(ctx context.Context) []models.AccidentEvent {
	v, _ := read(ctx, s, "accidents", ReturnFallback,
		func(ctx context.Context) ([]models.AccidentEvent, error) {
			return s.store.ListAccidentEvents(ctx, false)
		},
		func() []models.AccidentEvent { return FallbackAccidents(s.now()) },
	)
	return v
}

// CarPosition returns the newest positioned reading with a placeholder speed.
func (s *Service) CarPosition(ctx context.Context) models.CarPosition {
	v, _ := read(ctx, s, "car_position", ReturnFallback,
		func(ctx context.Context) (models.CarPosition, error) {
			r, err := s.store.LatestSensorReading(ctx, true)
			if err != nil {
				return models.CarPosition{}, err
			}
			if !r.HasPosition() {
				return models.CarPosition{}, store.ErrNotFound
			}
			return models.CarPosition{Lat: *r.Lat, Lng: *r.Lng, Speed: placeholderSpeed}, nil
		},
		FallbackCarPosition,
	)
	return v
}

// AccidentByID surfaces ErrNotFound and store failures; a detail view must
// not show a fabricated accident.
func (s *Service) AccidentByID(ctx context.Context, id string) (models.AccidentEvent, error) {
	return read(ctx, s, "accident_by_id", Propagate,
		func(ctx context.Context) (models.AccidentEvent, error) {
			e, err := s.store.GetAccidentEvent(ctx, id)
			if err != nil {
				return models.AccidentEvent{}, err
			}
			return *e, nil
		},
		nil,
	)
}

// SensorHistory returns up to limit readings, newest event time first.
// Non-positive or oversized limits use MaxHistory; store failures are surfaced.
func (s *Service) SensorHistory(ctx context.Context, limit int) ([]models.SensorReading, error) {
	if limit <= 0 || limit > MaxHistory {
		limit = MaxHistory
	}
	return read(ctx, s, "sensor_history", Propagate,
		func(ctx context.Context) ([]models.SensorReading, error) {
			return s.store.ListSensorReadings(ctx, limit)
		},
		nil,
	)
}
