package database

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/herry-chi/dashboard-operation-lifex/src/logger"
)

var DB *sql.DB

// InitDB opens the SQLite database and ensures the schema exists.
func InitDB(dataSourceName string) error {
	var err error
	DB, err = sql.Open("sqlite", dataSourceName)
	if err != nil {
		return fmt.Errorf("failed to open database at %s: %w", dataSourceName, err)
	}

	if err = DB.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// A single writer suits SQLite and this app's single-user shape.
	DB.SetMaxOpenConns(1)

	if err = createTables(); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	logger.L.Info("Database initialized successfully", "path", dataSourceName)
	return nil
}

func createTables() error {
	snapshotsTable := `
	CREATE TABLE IF NOT EXISTS dataset_snapshots (
		session_key TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		row_count INTEGER NOT NULL,
		source_filename TEXT NOT NULL DEFAULT '',
		uploaded_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`

	commentsTable := `
	CREATE TABLE IF NOT EXISTS chart_comments (
		chart_id TEXT PRIMARY KEY,
		content TEXT NOT NULL,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`

	if _, err := DB.Exec(snapshotsTable); err != nil {
		return fmt.Errorf("creating dataset_snapshots table: %w", err)
	}
	if _, err := DB.Exec(commentsTable); err != nil {
		return fmt.Errorf("creating chart_comments table: %w", err)
	}

	if err := migrateSnapshotsTable(); err != nil {
		return err
	}

	logger.L.Info("Database tables checked/created successfully.")
	return nil
}

// migrateSnapshotsTable adds columns introduced after the first release.
// SQLite has no ADD COLUMN IF NOT EXISTS, so existing columns are read
// from table_info first.
func migrateSnapshotsTable() error {
	rows, err := DB.Query(`PRAGMA table_info(dataset_snapshots)`)
	if err != nil {
		return fmt.Errorf("reading dataset_snapshots schema: %w", err)
	}
	defer rows.Close()

	existing := make(map[string]bool)
	for rows.Next() {
		var cid int
		var name, colType string
		var notNull, pk int
		var dfltValue sql.NullString
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return fmt.Errorf("scanning dataset_snapshots schema: %w", err)
		}
		existing[name] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating dataset_snapshots schema: %w", err)
	}

	if !existing["source_filename"] {
		logger.L.Info("Migrating dataset_snapshots: adding source_filename column")
		if _, err := DB.Exec(`ALTER TABLE dataset_snapshots ADD COLUMN source_filename TEXT NOT NULL DEFAULT ''`); err != nil {
			return fmt.Errorf("adding source_filename column: %w", err)
		}
	}
	return nil
}
