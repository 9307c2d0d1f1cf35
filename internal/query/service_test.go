package query

import (
	"context"
	"errors"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PratikDhanave/safedrive-service/internal/models"
	"github.com/PratikDhanave/safedrive-service/internal/store"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// failingStore answers every read with err.
type failingStore struct{ err error }

func (f failingStore) LatestSensorReading(context.Context, bool) (*models.SensorReading, error) {
	return nil, f.err
}
func (f failingStore) ListSensorReadings(context.Context, int) ([]models.SensorReading, error) {
	return nil, f.err
}
func (f failingStore) CountSensorReadings(context.Context) (int64, error) { return 0, f.err }
func (f failingStore) ListAccidentEvents(context.Context, bool) ([]models.AccidentEvent, error) {
	return nil, f.err
}
func (f failingStore) GetAccidentEvent(context.Context, string) (*models.AccidentEvent, error) {
	return nil, f.err
}

func newService(t *testing.T, st Store) (*Service, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	return NewService(st, logger, WithClock(func() time.Time { return fixedNow })), hook
}

func newSQLite(t *testing.T) *store.SQLiteStore {
	t.Helper()
	st, err := store.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(st.Close)
	require.NoError(t, st.EnsureSchema(context.Background()))
	return st
}

func fp(v float64) *float64 { return &v }

func accident(id string, alcohol, impact float64, seatbelt bool, positioned bool) *models.AccidentEvent {
	e := &models.AccidentEvent{
		ID: id,
		Payload: models.Payload{
			Alcohol:   alcohol,
			Vibration: 0.5,
			Distance:  10,
			Seatbelt:  seatbelt,
			Impact:    impact,
		},
		Timestamp: fixedNow,
	}
	if positioned {
		e.Lat, e.Lng = fp(5.65), fp(-0.18)
	}
	return e
}

func TestComputeStats(t *testing.T) {
	accidents := []models.AccidentEvent{
		*accident("a", 0.1, 0.2, false, false),
		*accident("b", 0.3, 0.4, true, false),
		*accident("c", 0.5, 0.9, false, false),
	}

	stats := ComputeStats(accidents, 42)
	assert.Equal(t, 3, stats.TotalAccidents)
	assert.Equal(t, 0.5, stats.MaxAlcohol)
	assert.InDelta(t, 0.3, stats.AvgAlcohol, 1e-9)
	assert.Equal(t, 0.9, stats.MaxImpact)
	assert.Equal(t, 2, stats.SeatbeltViolations)
	assert.Equal(t, int64(42), stats.TotalSensorPoints)
}

func TestComputeStats_NoAccidents(t *testing.T) {
	stats := ComputeStats(nil, 7)
	assert.Equal(t, models.Stats{TotalSensorPoints: 7}, stats)
}

func TestStats_FromStore(t *testing.T) {
	ctx := context.Background()
	st := newSQLite(t)
	for _, e := range []*models.AccidentEvent{
		accident("a", 0.1, 0.2, false, true),
		accident("b", 0.3, 0.4, true, false),
		accident("c", 0.5, 0.9, false, true),
	} {
		require.NoError(t, st.InsertAccidentEvent(ctx, e))
	}
	_, err := st.InsertSensorReading(ctx, &models.SensorReading{Timestamp: fixedNow})
	require.NoError(t, err)

	svc, _ := newService(t, st)
	stats := svc.Stats(ctx)
	assert.Equal(t, 3, stats.TotalAccidents)
	assert.Equal(t, 0.5, stats.MaxAlcohol)
	assert.InDelta(t, 0.3, stats.AvgAlcohol, 1e-9)
	assert.Equal(t, 0.9, stats.MaxImpact)
	assert.Equal(t, 2, stats.SeatbeltViolations)
	assert.Equal(t, int64(1), stats.TotalSensorPoints)
}

func TestReads_FallBackWhenStoreFails(t *testing.T) {
	ctx := context.Background()
	svc, hook := newService(t, failingStore{err: errors.New("connection refused")})

	assert.Equal(t, FallbackSensorReading(fixedNow), svc.LatestSensor(ctx))
	assert.Equal(t, FallbackStats(), svc.Stats(ctx))
	assert.Equal(t, FallbackAccidents(fixedNow), svc.Accidents(ctx))
	assert.Equal(t, FallbackCarPosition(), svc.CarPosition(ctx))

	for i := 0; i < 3; i++ {
		points := svc.MapPoints(ctx)
		require.Len(t, points, 3)
		assert.Equal(t, "abc123", points[0].ID)
		assert.Equal(t, "def456", points[1].ID)
		assert.Equal(t, "ghi789", points[2].ID)
	}

	require.NotEmpty(t, hook.AllEntries())
	assert.Equal(t, log.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "map_points", hook.LastEntry().Data["op"])
}

func TestReads_PropagateWhenStoreFails(t *testing.T) {
	ctx := context.Background()
	storeErr := errors.New("connection refused")
	svc, hook := newService(t, failingStore{err: storeErr})

	_, err := svc.SensorHistory(ctx, 10)
	assert.ErrorIs(t, err, storeErr)

	_, err = svc.AccidentByID(ctx, "abc123")
	assert.ErrorIs(t, err, storeErr)
	assert.NotErrorIs(t, err, ErrNotFound)

	assert.Equal(t, log.ErrorLevel, hook.LastEntry().Level)
}

func TestAccidentByID_NotFound(t *testing.T) {
	st := newSQLite(t)
	svc, hook := newService(t, st)

	_, err := svc.AccidentByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, hook.AllEntries())
}

func TestLatestSensor_EmptyStoreFallsBack(t *testing.T) {
	svc, _ := newService(t, newSQLite(t))
	assert.Equal(t, FallbackSensorReading(fixedNow), svc.LatestSensor(context.Background()))
}

func TestCarPosition(t *testing.T) {
	ctx := context.Background()
	st := newSQLite(t)
	svc, _ := newService(t, st)

	_, err := st.InsertSensorReading(ctx, &models.SensorReading{
		Payload:   models.Payload{Lat: fp(6.1), Lng: fp(-0.2)},
		Timestamp: fixedNow,
	})
	require.NoError(t, err)
	_, err = st.InsertSensorReading(ctx, &models.SensorReading{Timestamp: fixedNow})
	require.NoError(t, err)

	assert.Equal(t, models.CarPosition{Lat: 6.1, Lng: -0.2, Speed: 42}, svc.CarPosition(ctx))
}

func TestMapPoints_OnlyPositioned(t *testing.T) {
	ctx := context.Background()
	st := newSQLite(t)
	require.NoError(t, st.InsertAccidentEvent(ctx, accident("with", 0.1, 0.1, true, true)))
	require.NoError(t, st.InsertAccidentEvent(ctx, accident("without", 0.1, 0.1, true, false)))

	svc, _ := newService(t, st)
	points := svc.MapPoints(ctx)
	require.Len(t, points, 1)
	assert.Equal(t, models.MapPoint{ID: "with", Lat: 5.65, Lng: -0.18, Timestamp: fixedNow}, points[0])
}

func TestAccidents_EmptyIsNotFallback(t *testing.T) {
	svc, _ := newService(t, newSQLite(t))

	accidents := svc.Accidents(context.Background())
	assert.NotNil(t, accidents)
	assert.Empty(t, accidents)
}

type limitRecorder struct {
	failingStore
	limit int
}

func (l *limitRecorder) ListSensorReadings(_ context.Context, limit int) ([]models.SensorReading, error) {
	l.limit = limit
	return []models.SensorReading{}, nil
}

func TestSensorHistory_ClampsLimit(t *testing.T) {
	tests := map[int]int{0: MaxHistory, -5: MaxHistory, 5000: MaxHistory, 25: 25}
	for in, want := range tests {
		rec := &limitRecorder{}
		svc, _ := newService(t, rec)

		_, err := svc.SensorHistory(context.Background(), in)
		require.NoError(t, err)
		assert.Equal(t, want, rec.limit, "limit %d", in)
	}
}

func TestReads_TimeoutTakesFallback(t *testing.T) {
	logger, _ := test.NewNullLogger()
	svc := NewService(blockingStore{}, logger, WithTimeout(10*time.Millisecond), WithClock(func() time.Time { return fixedNow }))

	assert.Equal(t, FallbackStats(), svc.Stats(context.Background()))
}

// blockingStore waits for the context to expire on every call.
type blockingStore struct{ failingStore }

func (blockingStore) ListAccidentEvents(ctx context.Context, _ bool) ([]models.AccidentEvent, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}
