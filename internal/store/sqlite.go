package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/PratikDhanave/safedrive-service/internal/models"

	_ "modernc.org/sqlite"
)

// sqliteTime is fixed width so lexical order on the text column matches
// chronological order.
const sqliteTime = "2006-01-02T15:04:05.000000000Z"

// SQLiteStore is the embedded persistence layer used for local development
// and tests.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens the database file at path, creating directories as needed.
// ":memory:" opens a private in-memory database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	dsn := ":memory:"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// A single connection serializes writers and keeps an in-memory
	// database alive for the lifetime of the store.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	return &SQLiteStore{db: db}, nil
}

// EnsureSchema creates both collections if they do not exist yet.
func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sensor_readings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			alcohol REAL NOT NULL,
			vibration REAL NOT NULL,
			distance REAL NOT NULL,
			seatbelt INTEGER NOT NULL,
			impact REAL NOT NULL,
			lat REAL,
			lng REAL,
			lcd_display TEXT,
			recorded_at TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sensor_readings_recorded_at ON sensor_readings(recorded_at);`,
		`CREATE TABLE IF NOT EXISTS accident_events (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			alcohol REAL NOT NULL,
			vibration REAL NOT NULL,
			distance REAL NOT NULL,
			seatbelt INTEGER NOT NULL,
			impact REAL NOT NULL,
			lat REAL,
			lng REAL,
			lcd_display TEXT,
			recorded_at TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() {
	_ = s.db.Close()
}

func (s *SQLiteStore) InsertSensorReading(ctx context.Context, r *models.SensorReading) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO sensor_readings (alcohol, vibration, distance, seatbelt, impact, lat, lng, lcd_display, recorded_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		r.Alcohol, r.Vibration, r.Distance, r.Seatbelt, r.Impact,
		nullFloat(r.Lat), nullFloat(r.Lng), nullString(r.LCDDisplay),
		formatTime(r.Timestamp), formatTime(time.Now()),
	)
	if err != nil {
		return 0, fmt.Errorf("insert sensor reading: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert sensor reading: %w", err)
	}
	return id, nil
}

func (s *SQLiteStore) LatestSensorReading(ctx context.Context, withPosition bool) (*models.SensorReading, error) {
	query := `SELECT ` + recordColumns + ` FROM sensor_readings`
	if withPosition {
		query += ` WHERE lat IS NOT NULL AND lng IS NOT NULL`
	}
	query += ` ORDER BY id DESC LIMIT 1;`

	r, err := scanSQLiteSensor(s.db.QueryRowContext(ctx, query))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("latest sensor reading: %w", err)
	}
	return &r, nil
}

func (s *SQLiteStore) ListSensorReadings(ctx context.Context, limit int) ([]models.SensorReading, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM sensor_readings ORDER BY recorded_at DESC, id DESC LIMIT ?;`, limit)
	if err != nil {
		return nil, fmt.Errorf("query sensor readings: %w", err)
	}
	defer rows.Close()

	readings := make([]models.SensorReading, 0)
	for rows.Next() {
		r, err := scanSQLiteSensor(rows)
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

func (s *SQLiteStore) CountSensorReadings(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sensor_readings;`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count sensor readings: %w", err)
	}
	return count, nil
}

func (s *SQLiteStore) InsertAccidentEvent(ctx context.Context, e *models.AccidentEvent) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO accident_events (id, alcohol, vibration, distance, seatbelt, impact, lat, lng, lcd_display, recorded_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		e.ID, e.Alcohol, e.Vibration, e.Distance, e.Seatbelt, e.Impact,
		nullFloat(e.Lat), nullFloat(e.Lng), nullString(e.LCDDisplay),
		formatTime(e.Timestamp), formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("insert accident event: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListAccidentEvents(ctx context.Context, withPosition bool) ([]models.AccidentEvent, error) {
	query := `SELECT ` + recordColumns + ` FROM accident_events`
	if withPosition {
		query += ` WHERE lat IS NOT NULL AND lng IS NOT NULL`
	}
	query += ` ORDER BY seq DESC;`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query accident events: %w", err)
	}
	defer rows.Close()

	events := make([]models.AccidentEvent, 0)
	for rows.Next() {
		e, err := scanSQLiteAccident(rows)
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

func (s *SQLiteStore) GetAccidentEvent(ctx context.Context, id string) (*models.AccidentEvent, error) {
	e, err := scanSQLiteAccident(s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM accident_events WHERE id = ?;`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get accident event: %w", err)
	}
	return &e, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// sqliteRecord holds the nullable and text-encoded columns of either table.
type sqliteRecord struct {
	payload    models.Payload
	lat, lng   sql.NullFloat64
	lcd        sql.NullString
	recordedAt string
	createdAt  string
}

func (rec *sqliteRecord) dest(id interface{}) []interface{} {
	return []interface{}{
		id, &rec.payload.Alcohol, &rec.payload.Vibration, &rec.payload.Distance,
		&rec.payload.Seatbelt, &rec.payload.Impact, &rec.lat, &rec.lng, &rec.lcd,
		&rec.recordedAt, &rec.createdAt,
	}
}

func (rec *sqliteRecord) decode() (models.Payload, time.Time, time.Time, error) {
	p := rec.payload
	if rec.lat.Valid {
		v := rec.lat.Float64
		p.Lat = &v
	}
	if rec.lng.Valid {
		v := rec.lng.Float64
		p.Lng = &v
	}
	if rec.lcd.Valid {
		v := rec.lcd.String
		p.LCDDisplay = &v
	}

	recordedAt, err := parseTime(rec.recordedAt)
	if err != nil {
		return p, time.Time{}, time.Time{}, fmt.Errorf("parse recorded_at: %w", err)
	}
	createdAt, err := parseTime(rec.createdAt)
	if err != nil {
		return p, time.Time{}, time.Time{}, fmt.Errorf("parse created_at: %w", err)
	}
	return p, recordedAt, createdAt, nil
}

func scanSQLiteSensor(row rowScanner) (models.SensorReading, error) {
	var (
		r   models.SensorReading
		rec sqliteRecord
	)
	if err := row.Scan(rec.dest(&r.ID)...); err != nil {
		return r, err
	}

	p, recordedAt, createdAt, err := rec.decode()
	if err != nil {
		return r, err
	}
	r.Payload, r.Timestamp, r.CreatedAt = p, recordedAt, createdAt
	return r, nil
}

func scanSQLiteAccident(row rowScanner) (models.AccidentEvent, error) {
	var (
		e   models.AccidentEvent
		rec sqliteRecord
	)
	if err := row.Scan(rec.dest(&e.ID)...); err != nil {
		return e, err
	}

	p, recordedAt, createdAt, err := rec.decode()
	if err != nil {
		return e, err
	}
	e.Payload, e.Timestamp, e.CreatedAt = p, recordedAt, createdAt
	return e, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(sqliteTime)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(sqliteTime, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339Nano, s)
	}
	return t.UTC(), err
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}
