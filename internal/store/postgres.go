package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/PratikDhanave/safedrive-service/internal/models"
)

// schemaSQL is embedded so the service can self-bootstrap its database schema.
//
//go:embed schema.sql
var schemaSQL string

// recordColumns is the select list shared by both collections.
const recordColumns = `id, alcohol, vibration, distance, seatbelt, impact, lat, lng, lcd_display, recorded_at, created_at`

// PostgresStore is the production persistence layer.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a connection pool. Connections are dialed on
// first use, so an unreachable database surfaces on reads and writes rather
// than here; only a malformed URL fails.
func NewPostgresStore(ctx context.Context, dbURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("create db pool: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// EnsureSchema applies schema.sql. Safe to run multiple times; never drops data.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Ping is used by readiness endpoint to validate DB connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close shuts down the connection pool.
func (p *PostgresStore) Close() {
	p.pool.Close()
}

func (p *PostgresStore) InsertSensorReading(ctx context.Context, r *models.SensorReading) (int64, error) {
	var id int64
	err := p.pool.QueryRow(ctx, `
		INSERT INTO sensor_readings
			(alcohol, vibration, distance, seatbelt, impact, lat, lng, lcd_display, recorded_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id
	`, r.Alcohol, r.Vibration, r.Distance, r.Seatbelt, r.Impact, r.Lat, r.Lng, r.LCDDisplay, r.Timestamp).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert sensor reading: %w", err)
	}
	return id, nil
}

func (p *PostgresStore) LatestSensorReading(ctx context.Context, withPosition bool) (*models.SensorReading, error) {
	query := `SELECT ` + recordColumns + ` FROM sensor_readings`
	if withPosition {
		query += ` WHERE lat IS NOT NULL AND lng IS NOT NULL`
	}
	query += ` ORDER BY id DESC LIMIT 1`

	r, err := scanPgSensor(p.pool.QueryRow(ctx, query))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("latest sensor reading: %w", err)
	}
	return &r, nil
}

func (p *PostgresStore) ListSensorReadings(ctx context.Context, limit int) ([]models.SensorReading, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := p.pool.Query(ctx, `
		SELECT `+recordColumns+`
		FROM sensor_readings
		ORDER BY recorded_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query sensor readings: %w", err)
	}
	defer rows.Close()

	readings := make([]models.SensorReading, 0, limit)
	for rows.Next() {
		r, err := scanPgSensor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sensor reading: %w", err)
		}
		readings = append(readings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sensor readings: %w", err)
	}
	return readings, nil
}

func (p *PostgresStore) CountSensorReadings(ctx context.Context) (int64, error) {
	var count int64
	if err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sensor_readings`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count sensor readings: %w", err)
	}
	return count, nil
}

func (p *PostgresStore) InsertAccidentEvent(ctx context.Context, e *models.AccidentEvent) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO accident_events
			(id, alcohol, vibration, distance, seatbelt, impact, lat, lng, lcd_display, recorded_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, e.ID, e.Alcohol, e.Vibration, e.Distance, e.Seatbelt, e.Impact, e.Lat, e.Lng, e.LCDDisplay, e.Timestamp)
	if err != nil {
		return fmt.Errorf("insert accident event: %w", err)
	}
	return nil
}

func (p *PostgresStore) ListAccidentEvents(ctx context.Context, withPosition bool) ([]models.AccidentEvent, error) {
	query := `SELECT ` + recordColumns + ` FROM accident_events`
	if withPosition {
		query += ` WHERE lat IS NOT NULL AND lng IS NOT NULL`
	}
	query += ` ORDER BY seq DESC`

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query accident events: %w", err)
	}
	defer rows.Close()

	events := make([]models.AccidentEvent, 0)
	for rows.Next() {
		e, err := scanPgAccident(rows)
		if err != nil {
			return nil, fmt.Errorf("scan accident event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accident events: %w", err)
	}
	return events, nil
}

func (p *PostgresStore) GetAccidentEvent(ctx context.Context, id string) (*models.AccidentEvent, error) {
	e, err := scanPgAccident(p.pool.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM accident_events WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get accident event: %w", err)
	}
	return &e, nil
}

func scanPgSensor(row pgx.Row) (models.SensorReading, error) {
	var r models.SensorReading
	err := row.Scan(&r.ID, &r.Alcohol, &r.Vibration, &r.Distance, &r.Seatbelt, &r.Impact,
		&r.Lat, &r.Lng, &r.LCDDisplay, &r.Timestamp, &r.CreatedAt)
	r.Timestamp = r.Timestamp.UTC()
	r.CreatedAt = r.CreatedAt.UTC()
	return r, err
}

func scanPgAccident(row pgx.Row) (models.AccidentEvent, error) {
	var e models.AccidentEvent
	err := row.Scan(&e.ID, &e.Alcohol, &e.Vibration, &e.Distance, &e.Seatbelt, &e.Impact,
		&e.Lat, &e.Lng, &e.LCDDisplay, &e.Timestamp, &e.CreatedAt)
	e.Timestamp = e.Timestamp.UTC()
	e.CreatedAt = e.CreatedAt.UTC()
	return e, err
}
