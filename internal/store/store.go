package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PratikDhanave/safedrive-service/internal/models"
)

// DefaultListLimit caps ListSensorReadings when the caller passes no limit.
const DefaultListLimit = 1000

// ErrNotFound is returned by single-record lookups that match nothing.
var ErrNotFound = errors.New("record not found")

// Store persists sensor readings and accident events in two independent
// collections. Implementations must be safe for concurrent use.
type Store interface {
	EnsureSchema(ctx context.Context) error
	Ping(ctx context.Context) error
	Close()

	// InsertSensorReading stores r and returns the store-assigned id.
	InsertSensorReading(ctx context.Context, r *models.SensorReading) (int64, error)
	// LatestSensorReading returns the most recently created reading,
	// restricted to readings carrying both coordinates when withPosition is set.
	LatestSensorReading(ctx context.Context, withPosition bool) (*models.SensorReading, error)
	// ListSensorReadings returns readings ordered by timestamp, newest first.
	ListSensorReadings(ctx context.Context, limit int) ([]models.SensorReading, error)
	CountSensorReadings(ctx context.Context) (int64, error)

	// InsertAccidentEvent stores e under its pre-assigned id.
	InsertAccidentEvent(ctx context.Context, e *models.AccidentEvent) error
	// ListAccidentEvents returns accidents newest first, restricted to
	// positioned ones when withPosition is set.
	ListAccidentEvents(ctx context.Context, withPosition bool) ([]models.AccidentEvent, error)
	GetAccidentEvent(ctx context.Context, id string) (*models.AccidentEvent, error)
}

// Open picks the backend from the DSN scheme: postgres:// and postgresql://
// use Postgres, sqlite:// and :memory: use the embedded SQLite driver.
func Open(ctx context.Context, dsn string) (Store, error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return NewPostgresStore(ctx, dsn)
	case strings.HasPrefix(dsn, "sqlite://"):
		return OpenSQLite(strings.TrimPrefix(dsn, "sqlite://"))
	case dsn == ":memory:":
		return OpenSQLite(dsn)
	default:
		return nil, fmt.Errorf("unsupported database url %q", dsn)
	}
}
