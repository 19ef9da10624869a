package database

import (
	"database/sql"
	"fmt"
	"log"
	"sort"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations are compiled in so the binary carries its own schema
var migrations = []Migration{
	{
		Version: 1,
		Name:    "001_loads_and_stops",
		SQL: `
		CREATE TABLE IF NOT EXISTS loads (
			id TEXT PRIMARY KEY,
			status TEXT NOT NULL DEFAULT 'pending',
			origin_city TEXT NOT NULL DEFAULT '',
			origin_state TEXT NOT NULL DEFAULT '',
			dest_city TEXT NOT NULL DEFAULT '',
			dest_state TEXT NOT NULL DEFAULT '',
			delivered_at INTEGER,
			created_at INTEGER NOT NULL DEFAULT (strftime('%s','now'))
		);
		CREATE TABLE IF NOT EXISTS stops (
			id TEXT PRIMARY KEY,
			load_id TEXT NOT NULL REFERENCES loads(id),
			sequence INTEGER NOT NULL,
			type TEXT NOT NULL CHECK (type IN ('pickup','dropoff')),
			city TEXT NOT NULL DEFAULT '',
			state TEXT NOT NULL DEFAULT '',
			lat REAL,
			lng REAL,
			geofence_radius_m REAL NOT NULL DEFAULT 300,
			window_from INTEGER,
			window_to INTEGER,
			arrived_at INTEGER,
			departed_at INTEGER,
			manual_override INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_stops_load_seq ON stops(load_id, sequence);
		`,
	},
	{
		Version: 2,
		Name:    "002_location_reports",
		SQL: `
		CREATE TABLE IF NOT EXISTS location_reports (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			load_id TEXT NOT NULL REFERENCES loads(id),
			driver_id TEXT NOT NULL,
			lat REAL NOT NULL,
			lng REAL NOT NULL,
			accuracy_m REAL,
			speed_mph REAL,
			heading REAL,
			source TEXT NOT NULL DEFAULT 'driver_app'
				CHECK (source IN ('driver_app','manual','eld')),
			recorded_at INTEGER NOT NULL,
			received_at INTEGER NOT NULL,
			plausible INTEGER NOT NULL DEFAULT 1
		);
		CREATE INDEX IF NOT EXISTS idx_reports_load_recorded
			ON location_reports(load_id, recorded_at DESC);
		CREATE INDEX IF NOT EXISTS idx_reports_driver_accepted
			ON location_reports(driver_id, plausible, recorded_at DESC);
		`,
	},
	{
		Version: 3,
		Name:    "003_geofence_states",
		SQL: `
		CREATE TABLE IF NOT EXISTS geofence_states (
			stop_id TEXT NOT NULL REFERENCES stops(id),
			driver_id TEXT NOT NULL,
			last_classification TEXT NOT NULL DEFAULT 'unknown'
				CHECK (last_classification IN ('inside','outside','unknown')),
			inside_streak INTEGER NOT NULL DEFAULT 0,
			outside_streak INTEGER NOT NULL DEFAULT 0,
			last_arrive_attempt_at INTEGER,
			last_depart_attempt_at INTEGER,
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (stop_id, driver_id)
		);
		`,
	},
	{
		Version: 4,
		Name:    "004_tracking_links",
		SQL: `
		CREATE TABLE IF NOT EXISTS tracking_links (
			digest TEXT PRIMARY KEY,
			token TEXT NOT NULL,
			load_id TEXT NOT NULL REFERENCES loads(id),
			role TEXT NOT NULL CHECK (role IN ('public','driver')),
			created_at INTEGER NOT NULL DEFAULT (strftime('%s','now'))
		);
		CREATE INDEX IF NOT EXISTS idx_links_load ON tracking_links(load_id);
		`,
	},
	{
		Version: 5,
		Name:    "005_activity_events",
		SQL: `
		CREATE TABLE IF NOT EXISTS activity_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			load_id TEXT NOT NULL REFERENCES loads(id),
			stop_id TEXT,
			driver_id TEXT,
			kind TEXT NOT NULL,
			detail TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL DEFAULT (strftime('%s','now'))
		);
		CREATE INDEX IF NOT EXISTS idx_activity_load ON activity_events(load_id, created_at DESC);
		`,
	},
}

// MigrationManager manages database migrations
type MigrationManager struct {
	db *sql.DB
}

// NewMigrationManager creates a new migration manager
func NewMigrationManager(db *sql.DB) *MigrationManager {
	return &MigrationManager{db: db}
}

// InitMigrationsTable creates the migrations tracking table
func (m *MigrationManager) InitMigrationsTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	_, err := m.db.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

// GetAppliedMigrations returns a list of applied migration versions
func (m *MigrationManager) GetAppliedMigrations() (map[int]bool, error) {
	rows, err := m.db.Query("SELECT version FROM migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = true
	}

	return applied, nil
}

// ApplyMigration applies a single migration
func (m *MigrationManager) ApplyMigration(migration Migration) error {
	tx, err := m.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	// Execute migration SQL
	_, err = tx.Exec(migration.SQL)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to execute migration %d: %w", migration.Version, err)
	}

	// Record migration
	_, err = tx.Exec("INSERT INTO migrations (version, name) VALUES (?, ?)", migration.Version, migration.Name)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
	}

	log.Printf("Applied migration %d: %s", migration.Version, migration.Name)
	return nil
}

// RunMigrations runs all pending migrations
func (m *MigrationManager) RunMigrations() error {
	// Initialize migrations table
	if err := m.InitMigrationsTable(); err != nil {
		return err
	}

	// Get applied migrations
	applied, err := m.GetAppliedMigrations()
	if err != nil {
		return err
	}

	pending := make([]Migration, 0, len(migrations))
	for _, mig := range migrations {
		if !applied[mig.Version] {
			pending = append(pending, mig)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].Version < pending[j].Version
	})

	for _, mig := range pending {
		if err := m.ApplyMigration(mig); err != nil {
			return err
		}
	}

	return nil
}
