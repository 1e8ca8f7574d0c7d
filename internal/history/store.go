package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/johan-st/toolbox/internal/namegen"
	_ "modernc.org/sqlite"
)

// Store manages the history database.
type Store struct {
	db *sql.DB

	namesMu sync.Mutex
	names   *namegen.Generator
}

// NewStore creates a new history store. A nil generator uses the built-in vocabulary.
func NewStore(dataDir string, names *namegen.Generator) (*Store, error) {
	// Ensure data directory exists
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "history.db")
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if names == nil {
		names = namegen.NewDefault()
	}

	store := &Store{
		db:    db,
		names: names,
	}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate history database: %w", err)
	}

	return store, nil
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		user_name TEXT,
		public_key_fingerprint TEXT,
		anonymous_name TEXT,
		remote_addr TEXT,
		mode TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		last_active_at DATETIME,
		is_active INTEGER DEFAULT 1
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_user_name ON sessions(user_name);
	CREATE INDEX IF NOT EXISTS idx_sessions_is_active ON sessions(is_active);

	CREATE TABLE IF NOT EXISTS activity (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT REFERENCES sessions(id),
		applet_path TEXT,
		params TEXT,
		result_count INTEGER,
		input_bytes INTEGER,
		error TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_activity_session_id ON activity(session_id);
	CREATE INDEX IF NOT EXISTS idx_activity_applet_path ON activity(applet_path);

	CREATE TABLE IF NOT EXISTS audit_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT REFERENCES sessions(id),
		action TEXT,
		applet_path TEXT,
		details TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_audit_log_session_id ON audit_log(session_id);
	CREATE INDEX IF NOT EXISTS idx_audit_log_action ON audit_log(action);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the store.
func (s *Store) Close() error {
	return s.db.Close()
}

// GenerateAnonymousName generates a new anonymous name.
func (s *Store) GenerateAnonymousName() string {
	s.namesMu.Lock()
	defer s.namesMu.Unlock()
	return s.names.Name()
}

// CreateSession creates a new session record.
func (s *Store) CreateSession(session *Session) error {
	_, err := s.db.Exec(`
		INSERT INTO sessions (id, user_name, public_key_fingerprint, anonymous_name, remote_addr, mode, created_at, last_active_at, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, session.ID, nullString(session.UserName), nullString(session.PublicKeyFingerprint),
		nullString(session.AnonymousName), session.RemoteAddr, session.Mode,
		session.CreatedAt, session.LastActiveAt, session.IsActive)

	return err
}

// UpdateSessionActivity updates the last active time for a session.
func (s *Store) UpdateSessionActivity(sessionID string) error {
	_, err := s.db.Exec(`
		UPDATE sessions SET last_active_at = ? WHERE id = ?
	`, now(), sessionID)
	return err
}

// EndSession marks a session as inactive.
func (s *Store) EndSession(sessionID string) error {
	_, err := s.db.Exec(`
		UPDATE sessions SET is_active = 0, last_active_at = ? WHERE id = ?
	`, now(), sessionID)
	return err
}

const sessionColumns = "id, user_name, public_key_fingerprint, anonymous_name, remote_addr, mode, created_at, last_active_at, is_active"

// GetSession retrieves a session by ID.
func (s *Store) GetSession(sessionID string) (*Session, error) {
	row := s.db.QueryRow("SELECT "+sessionColumns+" FROM sessions WHERE id = ?", sessionID)
	return scanSession(row)
}

// ListSessions lists sessions, most recently active first.
func (s *Store) ListSessions(activeOnly bool, limit int) ([]*Session, error) {
	query := "SELECT " + sessionColumns + " FROM sessions"
	args := make([]any, 0)

	if activeOnly {
		query += " WHERE is_active = 1"
	}

	query += " ORDER BY last_active_at DESC"

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}

	return sessions, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*Session, error) {
	var session Session
	var userName, pkFP, anonName, mode sql.NullString
	var isActive int

	err := row.Scan(&session.ID, &userName, &pkFP, &anonName, &session.RemoteAddr, &mode,
		&session.CreatedAt, &session.LastActiveAt, &isActive)
	if err != nil {
		return nil, err
	}

	session.UserName = userName.String
	session.PublicKeyFingerprint = pkFP.String
	session.AnonymousName = anonName.String
	session.Mode = mode.String
	session.IsActive = isActive == 1

	return &session, nil
}

// RecordActivity records an applet run.
func (s *Store) RecordActivity(record *Activity) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now()
	}
	res, err := s.db.Exec(`
		INSERT INTO activity (session_id, applet_path, params, result_count, input_bytes, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, record.SessionID, record.AppletPath, nullString(record.Params), record.ResultCount,
		record.InputBytes, nullString(record.Error), record.CreatedAt)
	if err != nil {
		return err
	}
	record.ID, _ = res.LastInsertId()
	return nil
}

// RecordRun is a convenience wrapper around RecordActivity.
// params is marshalled to JSON; runErr is stored as its message.
func (s *Store) RecordRun(sessionID, appletPath string, params any, resultCount int, inputBytes int64, runErr error) error {
	record := &Activity{
		SessionID:   sessionID,
		AppletPath:  appletPath,
		ResultCount: resultCount,
		InputBytes:  inputBytes,
	}
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("failed to encode params: %w", err)
		}
		record.Params = string(data)
	}
	if runErr != nil {
		record.Error = runErr.Error()
	}
	return s.RecordActivity(record)
}

// ListActivity lists applet runs with optional filters, newest first.
func (s *Store) ListActivity(sessionID, appletPath string, since time.Time, limit int) ([]*Activity, error) {
	query := "SELECT id, session_id, applet_path, params, result_count, input_bytes, error, created_at FROM activity WHERE 1=1"
	args := make([]any, 0)

	if sessionID != "" {
		query += " AND session_id = ?"
		args = append(args, sessionID)
	}

	if appletPath != "" {
		query += " AND applet_path = ?"
		args = append(args, appletPath)
	}

	if !since.IsZero() {
		query += " AND created_at >= ?"
		args = append(args, since.UTC())
	}

	query += " ORDER BY id DESC"

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	return s.queryActivity(query, args...)
}

// ListActivityForUser lists applet runs across all sessions of a user.
func (s *Store) ListActivityForUser(userName string, limit int) ([]*Activity, error) {
	query := `
		SELECT a.id, a.session_id, a.applet_path, a.params, a.result_count, a.input_bytes, a.error, a.created_at
		FROM activity a
		JOIN sessions s ON a.session_id = s.id
		WHERE s.user_name = ? OR s.anonymous_name = ?
		ORDER BY a.id DESC
	`
	args := []any{userName, userName}

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	return s.queryActivity(query, args...)
}

func (s *Store) queryActivity(query string, args ...any) ([]*Activity, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*Activity
	for rows.Next() {
		var record Activity
		var params, errStr sql.NullString

		err := rows.Scan(&record.ID, &record.SessionID, &record.AppletPath, &params,
			&record.ResultCount, &record.InputBytes, &errStr, &record.CreatedAt)
		if err != nil {
			return nil, err
		}

		record.Params = params.String
		record.Error = errStr.String
		records = append(records, &record)
	}

	return records, rows.Err()
}

// RecordAudit records an audit log entry.
func (s *Store) RecordAudit(record *AuditRecord) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now()
	}
	_, err := s.db.Exec(`
		INSERT INTO audit_log (session_id, action, applet_path, details, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, record.SessionID, record.Action, nullString(record.AppletPath),
		nullString(record.Details), record.CreatedAt)

	return err
}

// RecordAuditSimple is a convenience method for recording audit entries.
func (s *Store) RecordAuditSimple(sessionID, action, appletPath string, details map[string]any) error {
	var detailsJSON string
	if details != nil {
		data, err := json.Marshal(details)
		if err == nil {
			detailsJSON = string(data)
		}
	}

	return s.RecordAudit(&AuditRecord{
		SessionID:  sessionID,
		Action:     action,
		AppletPath: appletPath,
		Details:    detailsJSON,
	})
}

// ListAuditLog lists audit log entries with optional filters, newest first.
func (s *Store) ListAuditLog(sessionID, action string, since time.Time, limit int) ([]*AuditRecord, error) {
	query := "SELECT id, session_id, action, applet_path, details, created_at FROM audit_log WHERE 1=1"
	args := make([]any, 0)

	if sessionID != "" {
		query += " AND session_id = ?"
		args = append(args, sessionID)
	}

	if action != "" {
		query += " AND action = ?"
		args = append(args, action)
	}

	if !since.IsZero() {
		query += " AND created_at >= ?"
		args = append(args, since.UTC())
	}

	query += " ORDER BY id DESC"

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*AuditRecord
	for rows.Next() {
		var record AuditRecord
		var appletPath, details sql.NullString

		err := rows.Scan(&record.ID, &record.SessionID, &record.Action, &appletPath,
			&details, &record.CreatedAt)
		if err != nil {
			return nil, err
		}

		record.AppletPath = appletPath.String
		record.Details = details.String
		records = append(records, &record)
	}

	return records, rows.Err()
}

// nullString converts an empty string to sql.NullString.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
