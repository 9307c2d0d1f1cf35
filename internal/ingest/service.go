// Package ingest implements the write path: validate, stamp, assign ids and
// persist device payloads.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/PratikDhanave/safedrive-service/internal/models"
	"github.com/PratikDhanave/safedrive-service/internal/validate"
)

// Store is the subset of store.Store the write path needs.
type Store interface {
	InsertSensorReading(ctx context.Context, r *models.SensorReading) (int64, error)
	InsertAccidentEvent(ctx context.Context, e *models.AccidentEvent) error
}

// Publisher receives every record after it has been persisted.
type Publisher interface {
	PublishSensorReading(ctx context.Context, r models.SensorReading) error
	PublishAccidentEvent(ctx context.Context, e models.AccidentEvent) error
}

// Service runs the ingestion pipeline. It keeps no state between calls.
type Service struct {
	store     Store
	publisher Publisher
	log       log.FieldLogger
	timeout   time.Duration
	now       func() time.Time
	newID     func() (string, error)
}

type Option func(*Service)

// WithPublisher fans persisted records out to p.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithTimeout bounds each store write.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIDGenerator(gen func() (string, error)) Option {
	return func(s *Service) { s.newID = gen }
}

func NewService(st Store, logger log.FieldLogger, opts ...Option) *Service {
	s := &Service{
		store:   st,
		log:     logger,
		timeout: 3 * time.Second,
		now:     time.Now,
		newID:   NewAccidentID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewAccidentID returns a UUIDv7: a millisecond timestamp prefix followed by
// random bits, so ids sort by creation time and never collide.
func NewAccidentID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Ingest routes req to the write path for kind and returns the new record's
// id: an int64 for readings, a string for accidents.
func (s *Service) Ingest(ctx context.Context, kind validate.Kind, req models.TelemetryRequest) (interface{}, error) {
	switch kind {
	case validate.Sensor:
		return s.IngestSensor(ctx, req)
	case validate.Accident:
		return s.IngestAccident(ctx, req)
	default:
		return nil, &ValidationError{Kind: kind, Reason: fmt.Sprintf("unknown record kind %s", kind)}
	}
}

// IngestSensor validates req as a sensor reading, stamps it and persists it.
// It returns the store-assigned id.
func (s *Service) IngestSensor(ctx context.Context, req models.TelemetryRequest) (int64, error) {
	payload, err := check(req, validate.Sensor)
	if err != nil {
		return 0, err
	}

	reading := models.SensorReading{
		Payload:   payload,
		Timestamp: s.now().UTC(),
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	id, err := s.store.InsertSensorReading(ctx, &reading)
	if err != nil {
		s.log.WithError(err).Error("sensor reading insert failed")
		return 0, &PersistenceError{Kind: validate.Sensor, Err: err}
	}
	reading.ID = id

	s.log.WithField("id", id).Debug("sensor reading ingested")

	if s.publisher != nil {
		if err := s.publisher.PublishSensorReading(ctx, reading); err != nil {
			s.log.WithError(err).WithField("id", id).Warn("sensor reading publish failed")
		}
	}
	return id, nil
}

// IngestAccident validates req as an accident event, assigns its id and
// persists it. The id is fixed before the insert.
func (s *Service) IngestAccident(ctx context.Context, req models.TelemetryRequest) (string, error) {
	payload, err := check(req, validate.Accident)
	if err != nil {
		return "", err
	}

	id, err := s.newID()
	if err != nil {
		return "", &PersistenceError{Kind: validate.Accident, Err: err}
	}

	event := models.AccidentEvent{
		ID:        id,
		Payload:   payload,
		Timestamp: s.now().UTC(),
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.store.InsertAccidentEvent(ctx, &event); err != nil {
		s.log.WithError(err).WithField("id", id).Error("accident event insert failed")
		return "", &PersistenceError{Kind: validate.Accident, Err: err}
	}

	s.log.WithFields(log.Fields{"id": id, "impact": event.Impact}).Info("accident event ingested")

	if s.publisher != nil {
		if err := s.publisher.PublishAccidentEvent(ctx, event); err != nil {
			s.log.WithError(err).WithField("id", id).Warn("accident event publish failed")
		}
	}
	return id, nil
}

// check applies the same binding rules the HTTP layer runs, so callers that
// skip gin get identical validation.
func check(req models.TelemetryRequest, kind validate.Kind) (models.Payload, error) {
	res := validate.Check(req, kind)
	if !res.Valid() {
		return models.Payload{}, &ValidationError{Kind: kind, Field: res.Field, Reason: res.Reason}
	}
	return res.Payload, nil
}
