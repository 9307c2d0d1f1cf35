package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PratikDhanave/safedrive-service/internal/models"
	"github.com/PratikDhanave/safedrive-service/internal/validate"
)

type fakeStore struct {
	readings  []models.SensorReading
	accidents []models.AccidentEvent
	err       error
}

func (f *fakeStore) InsertSensorReading(_ context.Context, r *models.SensorReading) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.readings = append(f.readings, *r)
	return int64(len(f.readings)), nil
}

func (f *fakeStore) InsertAccidentEvent(_ context.Context, e *models.AccidentEvent) error {
	if f.err != nil {
		return f.err
	}
	f.accidents = append(f.accidents, *e)
	return nil
}

type fakePublisher struct {
	readings  []models.SensorReading
	accidents []models.AccidentEvent
	err       error
}

func (f *fakePublisher) PublishSensorReading(_ context.Context, r models.SensorReading) error {
	f.readings = append(f.readings, r)
	return f.err
}

func (f *fakePublisher) PublishAccidentEvent(_ context.Context, e models.AccidentEvent) error {
	f.accidents = append(f.accidents, e)
	return f.err
}

func f64(v float64) *float64 { return &v }

func payload() models.TelemetryRequest {
	seatbelt := false
	lcd := "ACCIDENT DETECTED"
	return models.TelemetryRequest{
		Alcohol:    f64(0.3),
		Vibration:  f64(0.8),
		Distance:   f64(20),
		Seatbelt:   &seatbelt,
		Impact:     f64(0.9),
		Lat:        f64(5.6545),
		Lng:        f64(-0.1869),
		LCDDisplay: &lcd,
	}
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestService(st Store, opts ...Option) *Service {
	logger, _ := test.NewNullLogger()
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewService(st, logger, opts...)
}

func TestIngestSensor_Persists(t *testing.T) {
	st := &fakeStore{}
	pub := &fakePublisher{}
	svc := newTestService(st, WithPublisher(pub))

	id, err := svc.IngestSensor(context.Background(), payload())
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	require.Len(t, st.readings, 1)
	got := st.readings[0]
	assert.Equal(t, fixedNow, got.Timestamp)
	assert.Equal(t, 0.3, got.Alcohol)
	assert.False(t, got.Seatbelt)
	assert.Equal(t, "ACCIDENT DETECTED", *got.LCDDisplay)

	require.Len(t, pub.readings, 1)
	assert.Equal(t, int64(1), pub.readings[0].ID)
}

func TestIngestSensor_ValidationFailsBeforeStore(t *testing.T) {
	st := &fakeStore{}
	svc := newTestService(st)

	p := payload()
	p.Seatbelt = nil

	_, err := svc.IngestSensor(context.Background(), p)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "seatbelt", verr.Field)
	assert.Equal(t, validate.Sensor, verr.Kind)
	assert.Empty(t, st.readings)
}

func TestIngestSensor_PersistenceErrorSurfaces(t *testing.T) {
	storeErr := errors.New("connection refused")
	pub := &fakePublisher{}
	svc := newTestService(&fakeStore{err: storeErr}, WithPublisher(pub))

	_, err := svc.IngestSensor(context.Background(), payload())

	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.ErrorIs(t, err, storeErr)
	assert.Equal(t, "connection refused", perr.Err.Error())
	assert.Empty(t, pub.readings)
}

func TestIngestSensor_PublishFailureDoesNotFailWrite(t *testing.T) {
	st := &fakeStore{}
	svc := newTestService(st, WithPublisher(&fakePublisher{err: errors.New("redis down")}))

	id, err := svc.IngestSensor(context.Background(), payload())
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	assert.Len(t, st.readings, 1)
}

func TestIngestAccident_AssignsIDBeforeInsert(t *testing.T) {
	st := &fakeStore{}
	pub := &fakePublisher{}
	svc := newTestService(st, WithPublisher(pub))

	id1, err := svc.IngestAccident(context.Background(), payload())
	require.NoError(t, err)
	id2, err := svc.IngestAccident(context.Background(), payload())
	require.NoError(t, err)

	assert.NotEmpty(t, id1)
	assert.NotEqual(t, id1, id2)

	require.Len(t, st.accidents, 2)
	assert.Equal(t, id1, st.accidents[0].ID)
	assert.Equal(t, id2, st.accidents[1].ID)
	assert.Equal(t, fixedNow, st.accidents[0].Timestamp)
	assert.Len(t, pub.accidents, 2)
}

func TestIngestAccident_Errors(t *testing.T) {
	t.Run("validation", func(t *testing.T) {
		st := &fakeStore{}
		p := payload()
		p.Impact = nil

		_, err := newTestService(st).IngestAccident(context.Background(), p)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, validate.Accident, verr.Kind)
		assert.Empty(t, st.accidents)
	})

	t.Run("store", func(t *testing.T) {
		_, err := newTestService(&fakeStore{err: errors.New("disk full")}).IngestAccident(context.Background(), payload())

		var perr *PersistenceError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "disk full", perr.Err.Error())
	})

	t.Run("id generator", func(t *testing.T) {
		st := &fakeStore{}
		gen := WithIDGenerator(func() (string, error) { return "", errors.New("entropy exhausted") })

		_, err := newTestService(st, gen).IngestAccident(context.Background(), payload())

		var perr *PersistenceError
		require.ErrorAs(t, err, &perr)
		assert.Empty(t, st.accidents)
	})
}

func TestIngest_RoutesByKind(t *testing.T) {
	st := &fakeStore{}
	svc := newTestService(st)

	id, err := svc.Ingest(context.Background(), validate.Sensor, payload())
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	id, err = svc.Ingest(context.Background(), validate.Accident, payload())
	require.NoError(t, err)
	assert.IsType(t, "", id)

	_, err = svc.Ingest(context.Background(), validate.Kind(7), payload())
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	assert.Len(t, st.readings, 1)
	assert.Len(t, st.accidents, 1)
}

func TestNewAccidentID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id, err := NewAccidentID()
		require.NoError(t, err)
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}
