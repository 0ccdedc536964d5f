package storage

import (
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"seolens/models"
)

// SQLiteStore holds operational data that never leaves the host: the command
// queue the scheduler polls and a local mirror of scan log lines.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS commands (
		id INTEGER PRIMARY KEY,
		command TEXT NOT NULL,
		params JSON,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		processed_at DATETIME
	);

	CREATE TABLE IF NOT EXISTS scan_logs (
		id INTEGER PRIMARY KEY,
		run_id INTEGER,
		timestamp DATETIME,
		level TEXT,
		message TEXT,
		source TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_commands_pending ON commands(processed_at) WHERE processed_at IS NULL;
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// Commands
// =============================================================================

func (s *SQLiteStore) EnqueueCommand(cmd models.CommandType, params *models.CommandParams) error {
	var raw []byte
	if params != nil {
		var err error
		raw, err = json.Marshal(params)
		if err != nil {
			return err
		}
	}

	_, err := s.db.Exec(
		`INSERT INTO commands (command, params, created_at) VALUES (?, ?, ?)`,
		string(cmd), raw, time.Now(),
	)
	return err
}

func (s *SQLiteStore) GetPendingCommands() ([]models.Command, error) {
	rows, err := s.db.Query(`
		SELECT id, command, params, created_at
		FROM commands
		WHERE processed_at IS NULL
		ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cmds []models.Command
	for rows.Next() {
		var cmd models.Command
		var params sql.NullString
		if err := rows.Scan(&cmd.ID, &cmd.Command, &params, &cmd.CreatedAt); err != nil {
			return nil, err
		}
		if params.Valid {
			cmd.Params = json.RawMessage(params.String)
		}
		cmds = append(cmds, cmd)
	}
	return cmds, rows.Err()
}

func (s *SQLiteStore) MarkCommandProcessed(id int64) error {
	_, err := s.db.Exec(`UPDATE commands SET processed_at = ? WHERE id = ?`, time.Now(), id)
	return err
}

// =============================================================================
// Scan logs
// =============================================================================

func (s *SQLiteStore) CreateScanLog(entry *models.ScanLog) error {
	_, err := s.db.Exec(
		`INSERT INTO scan_logs (run_id, timestamp, level, message, source) VALUES (?, ?, ?, ?, ?)`,
		entry.RunID, entry.Timestamp, string(entry.Level), entry.Message, entry.Source,
	)
	return err
}

// GetRecentScanLogs returns the newest log lines, most recent first
func (s *SQLiteStore) GetRecentScanLogs(limit int) ([]models.ScanLog, error) {
	rows, err := s.db.Query(`
		SELECT id, run_id, timestamp, level, message, source
		FROM scan_logs
		ORDER BY timestamp DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.ScanLog
	for rows.Next() {
		var entry models.ScanLog
		if err := rows.Scan(&entry.ID, &entry.RunID, &entry.Timestamp, &entry.Level, &entry.Message, &entry.Source); err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}
