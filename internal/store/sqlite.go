package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/inneratlas/backend/internal/model/journal"
	"github.com/inneratlas/backend/internal/model/lesson"
	"github.com/inneratlas/backend/internal/model/part"
	"github.com/inneratlas/backend/internal/model/session"
	"github.com/inneratlas/backend/internal/model/user"
	"github.com/inneratlas/backend/internal/model/wellness"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (or creates) a SQLite-backed repository at dbPath.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	// WAL mode for better concurrency between the REST surface and the
	// realtime message path.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

// NewSQLiteMemory opens an in-memory repository, used by tests.
func NewSQLiteMemory() (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// A memory database vanishes when its last connection closes.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		role TEXT NOT NULL,
		bio TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS parts (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		category TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		emotions_json TEXT NOT NULL DEFAULT '[]',
		needs_json TEXT NOT NULL DEFAULT '[]',
		notes TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_parts_user ON parts(user_id);

	CREATE TABLE IF NOT EXISTS journal_entries (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		mood TEXT NOT NULL DEFAULT '',
		tags_json TEXT NOT NULL DEFAULT '[]',
		part_ids_json TEXT NOT NULL DEFAULT '[]',
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_journal_user ON journal_entries(user_id);

	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		therapist_id TEXT NOT NULL,
		client_id TEXT NOT NULL,
		title TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_therapist ON sessions(therapist_id);
	CREATE INDEX IF NOT EXISTS idx_sessions_client ON sessions(client_id);

	CREATE TABLE IF NOT EXISTS session_messages (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		sender_id TEXT NOT NULL,
		sender_role TEXT NOT NULL,
		message_type TEXT NOT NULL,
		content TEXT NOT NULL,
		read_by_json TEXT NOT NULL DEFAULT '[]',
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_messages_session ON session_messages(session_id, created_at);

	CREATE TABLE IF NOT EXISTS lessons (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		summary TEXT NOT NULL,
		body TEXT NOT NULL,
		ordering INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS lesson_progress (
		user_id TEXT NOT NULL,
		lesson_id TEXT NOT NULL,
		completed INTEGER NOT NULL DEFAULT 0,
		completed_at INTEGER,
		PRIMARY KEY (user_id, lesson_id)
	);

	CREATE TABLE IF NOT EXISTS activities (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		occurred_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_activities_user ON activities(user_id);

	CREATE TABLE IF NOT EXISTS grounding_progress (
		user_id TEXT NOT NULL,
		technique TEXT NOT NULL,
		step INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (user_id, technique)
	);

	CREATE TABLE IF NOT EXISTS checkins (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		level INTEGER NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_checkins_user ON checkins(user_id);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

func marshalStrings(values []string) string {
	if len(values) == 0 {
		return "[]"
	}
	b, err := json.Marshal(values)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func unmarshalStrings(raw string) []string {
	if raw == "" || raw == "[]" {
		return nil
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil
	}
	return values
}

// UpsertUser creates or updates a user profile.
func (s *SQLiteStore) UpsertUser(ctx context.Context, u *user.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	query := `
	INSERT INTO users (id, name, email, role, bio, created_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		name = excluded.name,
		email = excluded.email,
		role = excluded.role,
		bio = excluded.bio`

	_, err := s.db.ExecContext(ctx, query,
		u.ID, u.Name, u.Email, u.Role, u.Bio, u.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by id.
func (s *SQLiteStore) GetUser(ctx context.Context, id string) (*user.User, error) {
	query := `SELECT id, name, email, role, bio, created_at FROM users WHERE id = ?`
	row := s.db.QueryRowContext(ctx, query, id)

	var u user.User
	var createdAt int64
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Bio, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user row: %w", err)
	}

	u.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &u, nil
}

// CreatePart stores a new part, filling in id and timestamps.
func (s *SQLiteStore) CreatePart(ctx context.Context, p *part.Part) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	query := `
	INSERT INTO parts (id, user_id, name, category, description, emotions_json, needs_json, notes, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		p.ID, p.UserID, p.Name, p.Category, p.Description,
		marshalStrings(p.Emotions), marshalStrings(p.Needs), p.Notes,
		p.CreatedAt.Unix(), p.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("insert part: %w", err)
	}
	return nil
}

func scanPart(scanner interface{ Scan(...any) error }) (part.Part, error) {
	var p part.Part
	var emotions, needs string
	var createdAt, updatedAt int64

	err := scanner.Scan(&p.ID, &p.UserID, &p.Name, &p.Category, &p.Description,
		&emotions, &needs, &p.Notes, &createdAt, &updatedAt)
	if err != nil {
		return part.Part{}, err
	}

	p.Emotions = unmarshalStrings(emotions)
	p.Needs = unmarshalStrings(needs)
	p.CreatedAt = time.Unix(createdAt, 0).UTC()
	p.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return p, nil
}

const partColumns = `id, user_id, name, category, description, emotions_json, needs_json, notes, created_at, updated_at`

// GetPart retrieves a part by id.
func (s *SQLiteStore) GetPart(ctx context.Context, id string) (*part.Part, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+partColumns+` FROM parts WHERE id = ?`, id)
	p, err := scanPart(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan part row: %w", err)
	}
	return &p, nil
}

// ListParts returns all parts owned by a user, newest first.
func (s *SQLiteStore) ListParts(ctx context.Context, userID string) ([]part.Part, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+partColumns+` FROM parts WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query parts: %w", err)
	}
	defer rows.Close()

	var parts []part.Part
	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return nil, fmt.Errorf("scan part row: %w", err)
		}
		parts = append(parts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate parts: %w", err)
	}
	return parts, nil
}

// UpdatePart replaces the mutable fields of an existing part.
func (s *SQLiteStore) UpdatePart(ctx context.Context, p *part.Part) error {
	p.UpdatedAt = time.Now().UTC()

	query := `
	UPDATE parts SET name = ?, category = ?, description = ?, emotions_json = ?,
		needs_json = ?, notes = ?, updated_at = ?
	WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query,
		p.Name, p.Category, p.Description, marshalStrings(p.Emotions),
		marshalStrings(p.Needs), p.Notes, p.UpdatedAt.Unix(), p.ID)
	if err != nil {
		return fmt.Errorf("update part: %w", err)
	}
	return checkAffected(result)
}

// DeletePart removes a part by id.
func (s *SQLiteStore) DeletePart(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM parts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete part: %w", err)
	}
	return checkAffected(result)
}

// CreateEntry stores a new journal entry, filling in id and timestamp.
func (s *SQLiteStore) CreateEntry(ctx context.Context, e *journal.Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	query := `
	INSERT INTO journal_entries (id, user_id, title, content, mood, tags_json, part_ids_json, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		e.ID, e.UserID, e.Title, e.Content, e.Mood,
		marshalStrings(e.Tags), marshalStrings(e.PartIDs), e.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}
	return nil
}

const entryColumns = `id, user_id, title, content, mood, tags_json, part_ids_json, created_at`

func scanEntry(scanner interface{ Scan(...any) error }) (journal.Entry, error) {
	var e journal.Entry
	var tags, partIDs string
	var createdAt int64

	err := scanner.Scan(&e.ID, &e.UserID, &e.Title, &e.Content, &e.Mood, &tags, &partIDs, &createdAt)
	if err != nil {
		return journal.Entry{}, err
	}

	e.Tags = unmarshalStrings(tags)
	e.PartIDs = unmarshalStrings(partIDs)
	e.CreatedAt = time.Unix(createdAt, 0).UTC()
	return e, nil
}

// GetEntry retrieves a journal entry by id.
func (s *SQLiteStore) GetEntry(ctx context.Context, id string) (*journal.Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE id = ?`, id)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan journal row: %w", err)
	}
	return &e, nil
}

// ListEntries returns a user's journal entries, newest first.
func (s *SQLiteStore) ListEntries(ctx context.Context, userID string) ([]journal.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM journal_entries WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query journal entries: %w", err)
	}
	defer rows.Close()

	var entries []journal.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan journal row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal entries: %w", err)
	}
	return entries, nil
}

// UpdateEntry replaces the mutable fields of an existing entry.
func (s *SQLiteStore) UpdateEntry(ctx context.Context, e *journal.Entry) error {
	query := `
	UPDATE journal_entries SET title = ?, content = ?, mood = ?, tags_json = ?, part_ids_json = ?
	WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query,
		e.Title, e.Content, e.Mood, marshalStrings(e.Tags), marshalStrings(e.PartIDs), e.ID)
	if err != nil {
		return fmt.Errorf("update journal entry: %w", err)
	}
	return checkAffected(result)
}

// DeleteEntry removes a journal entry by id.
func (s *SQLiteStore) DeleteEntry(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM journal_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete journal entry: %w", err)
	}
	return checkAffected(result)
}

// CreateSession stores a new therapy session record.
func (s *SQLiteStore) CreateSession(ctx context.Context, sess *session.Session) error {
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	if sess.Status == "" {
		sess.Status = session.StatusScheduled
	}
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now().UTC()
	}

	query := `
	INSERT INTO sessions (id, therapist_id, client_id, title, status, created_at)
	VALUES (?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		sess.ID, sess.TherapistID, sess.ClientID, sess.Title, sess.Status, sess.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by id.
func (s *SQLiteStore) GetSession(ctx context.Context, id string) (*session.Session, error) {
	query := `SELECT id, therapist_id, client_id, title, status, created_at FROM sessions WHERE id = ?`
	row := s.db.QueryRowContext(ctx, query, id)

	var sess session.Session
	var createdAt int64
	err := row.Scan(&sess.ID, &sess.TherapistID, &sess.ClientID, &sess.Title, &sess.Status, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan session row: %w", err)
	}

	sess.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &sess, nil
}

// ListSessionsForUser returns sessions where the user participates, newest first.
func (s *SQLiteStore) ListSessionsForUser(ctx context.Context, userID string) ([]session.Session, error) {
	query := `
	SELECT id, therapist_id, client_id, title, status, created_at
	FROM sessions WHERE therapist_id = ? OR client_id = ?
	ORDER BY created_at DESC, rowid DESC`

	rows, err := s.db.QueryContext(ctx, query, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []session.Session
	for rows.Next() {
		var sess session.Session
		var createdAt int64
		if err := rows.Scan(&sess.ID, &sess.TherapistID, &sess.ClientID, &sess.Title, &sess.Status, &createdAt); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		sess.CreatedAt = time.Unix(createdAt, 0).UTC()
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// UpdateSessionStatus transitions a session to a new status.
func (s *SQLiteStore) UpdateSessionStatus(ctx context.Context, id, status string) error {
	result, err := s.db.ExecContext(ctx, `UPDATE sessions SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("update session status: %w", err)
	}
	return checkAffected(result)
}

// CreateMessage persists a chat message and returns it with generated id and
// timestamp. Nanosecond timestamps keep history ordering stable across
// messages created within the same second.
func (s *SQLiteStore) CreateMessage(ctx context.Context, sessionID, senderID string, senderRole session.Role, messageType, content string) (session.ChatMessage, error) {
	if messageType == "" {
		messageType = session.MessageChat
	}

	msg := session.ChatMessage{
		ID:          uuid.NewString(),
		SessionID:   sessionID,
		SenderID:    senderID,
		SenderRole:  senderRole,
		MessageType: messageType,
		Content:     content,
		CreatedAt:   time.Now().UTC(),
	}

	query := `
	INSERT INTO session_messages (id, session_id, sender_id, sender_role, message_type, content, read_by_json, created_at)
	VALUES (?, ?, ?, ?, ?, ?, '[]', ?)`

	_, err := s.db.ExecContext(ctx, query,
		msg.ID, msg.SessionID, msg.SenderID, string(msg.SenderRole),
		msg.MessageType, msg.Content, msg.CreatedAt.UnixNano())
	if err != nil {
		return session.ChatMessage{}, fmt.Errorf("insert message: %w", err)
	}
	return msg, nil
}

// ListMessages returns a session's chat history ordered by creation time ascending.
func (s *SQLiteStore) ListMessages(ctx context.Context, sessionID string) ([]session.ChatMessage, error) {
	query := `
	SELECT id, session_id, sender_id, sender_role, message_type, content, read_by_json, created_at
	FROM session_messages WHERE session_id = ?
	ORDER BY created_at ASC, rowid ASC`

	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var messages []session.ChatMessage
	for rows.Next() {
		var msg session.ChatMessage
		var role, readBy string
		var createdAt int64
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.SenderID, &role, &msg.MessageType, &msg.Content, &readBy, &createdAt); err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		msg.SenderRole = session.Role(role)
		msg.ReadBy = unmarshalStrings(readBy)
		msg.CreatedAt = time.Unix(0, createdAt).UTC()
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return messages, nil
}

// SeedLessons inserts lessons that are not already present.
func (s *SQLiteStore) SeedLessons(ctx context.Context, lessons []lesson.Lesson) error {
	query := `
	INSERT INTO lessons (id, title, summary, body, ordering)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(id) DO NOTHING`

	for _, l := range lessons {
		if _, err := s.db.ExecContext(ctx, query, l.ID, l.Title, l.Summary, l.Body, l.Ordering); err != nil {
			return fmt.Errorf("seed lesson %s: %w", l.ID, err)
		}
	}
	return nil
}

// ListLessons returns all lessons in presentation order.
func (s *SQLiteStore) ListLessons(ctx context.Context) ([]lesson.Lesson, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, summary, body, ordering FROM lessons ORDER BY ordering ASC`)
	if err != nil {
		return nil, fmt.Errorf("query lessons: %w", err)
	}
	defer rows.Close()

	var lessons []lesson.Lesson
	for rows.Next() {
		var l lesson.Lesson
		if err := rows.Scan(&l.ID, &l.Title, &l.Summary, &l.Body, &l.Ordering); err != nil {
			return nil, fmt.Errorf("scan lesson row: %w", err)
		}
		lessons = append(lessons, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lessons: %w", err)
	}
	return lessons, nil
}

// GetLesson retrieves a lesson by id.
func (s *SQLiteStore) GetLesson(ctx context.Context, id string) (*lesson.Lesson, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, summary, body, ordering FROM lessons WHERE id = ?`, id)

	var l lesson.Lesson
	err := row.Scan(&l.ID, &l.Title, &l.Summary, &l.Body, &l.Ordering)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan lesson row: %w", err)
	}
	return &l, nil
}

// UpsertLessonProgress records a user's completion state for a lesson.
func (s *SQLiteStore) UpsertLessonProgress(ctx context.Context, p *lesson.Progress) error {
	var completedAt any
	if p.CompletedAt != nil {
		completedAt = p.CompletedAt.Unix()
	}

	query := `
	INSERT INTO lesson_progress (user_id, lesson_id, completed, completed_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(user_id, lesson_id) DO UPDATE SET
		completed = excluded.completed,
		completed_at = excluded.completed_at`

	_, err := s.db.ExecContext(ctx, query, p.UserID, p.LessonID, p.Completed, completedAt)
	if err != nil {
		return fmt.Errorf("upsert lesson progress: %w", err)
	}
	return nil
}

// ListLessonProgress returns a user's progress across all lessons.
func (s *SQLiteStore) ListLessonProgress(ctx context.Context, userID string) ([]lesson.Progress, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, lesson_id, completed, completed_at FROM lesson_progress WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("query lesson progress: %w", err)
	}
	defer rows.Close()

	var progress []lesson.Progress
	for rows.Next() {
		var p lesson.Progress
		var completedAt sql.NullInt64
		if err := rows.Scan(&p.UserID, &p.LessonID, &p.Completed, &completedAt); err != nil {
			return nil, fmt.Errorf("scan lesson progress row: %w", err)
		}
		if completedAt.Valid {
			ts := time.Unix(completedAt.Int64, 0).UTC()
			p.CompletedAt = &ts
		}
		progress = append(progress, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lesson progress: %w", err)
	}
	return progress, nil
}

// CreateActivity logs a self-care activity.
func (s *SQLiteStore) CreateActivity(ctx context.Context, a *wellness.Activity) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.OccurredAt.IsZero() {
		a.OccurredAt = time.Now().UTC()
	}

	query := `INSERT INTO activities (id, user_id, kind, notes, occurred_at) VALUES (?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query, a.ID, a.UserID, a.Kind, a.Notes, a.OccurredAt.Unix())
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// ListActivities returns a user's activities, newest first.
func (s *SQLiteStore) ListActivities(ctx context.Context, userID string) ([]wellness.Activity, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, kind, notes, occurred_at FROM activities WHERE user_id = ? ORDER BY occurred_at DESC, rowid DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query activities: %w", err)
	}
	defer rows.Close()

	var activities []wellness.Activity
	for rows.Next() {
		var a wellness.Activity
		var occurredAt int64
		if err := rows.Scan(&a.ID, &a.UserID, &a.Kind, &a.Notes, &occurredAt); err != nil {
			return nil, fmt.Errorf("scan activity row: %w", err)
		}
		a.OccurredAt = time.Unix(occurredAt, 0).UTC()
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activities: %w", err)
	}
	return activities, nil
}

// UpsertGrounding records grounding-technique progress.
func (s *SQLiteStore) UpsertGrounding(ctx context.Context, g *wellness.GroundingProgress) error {
	g.UpdatedAt = time.Now().UTC()

	query := `
	INSERT INTO grounding_progress (user_id, technique, step, updated_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(user_id, technique) DO UPDATE SET
		step = excluded.step,
		updated_at = excluded.updated_at`

	_, err := s.db.ExecContext(ctx, query, g.UserID, g.Technique, g.Step, g.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("upsert grounding progress: %w", err)
	}
	return nil
}

// ListGrounding returns a user's grounding progress rows.
func (s *SQLiteStore) ListGrounding(ctx context.Context, userID string) ([]wellness.GroundingProgress, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, technique, step, updated_at FROM grounding_progress WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("query grounding progress: %w", err)
	}
	defer rows.Close()

	var progress []wellness.GroundingProgress
	for rows.Next() {
		var g wellness.GroundingProgress
		var updatedAt int64
		if err := rows.Scan(&g.UserID, &g.Technique, &g.Step, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan grounding row: %w", err)
		}
		g.UpdatedAt = time.Unix(updatedAt, 0).UTC()
		progress = append(progress, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate grounding progress: %w", err)
	}
	return progress, nil
}

// CreateCheckIn logs an anxiety check-in.
func (s *SQLiteStore) CreateCheckIn(ctx context.Context, c *wellness.CheckIn) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO checkins (id, user_id, level, note, created_at) VALUES (?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query, c.ID, c.UserID, c.Level, c.Note, c.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("insert checkin: %w", err)
	}
	return nil
}

// ListCheckIns returns a user's check-ins, newest first.
func (s *SQLiteStore) ListCheckIns(ctx context.Context, userID string) ([]wellness.CheckIn, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, level, note, created_at FROM checkins WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query checkins: %w", err)
	}
	defer rows.Close()

	var checkins []wellness.CheckIn
	for rows.Next() {
		var c wellness.CheckIn
		var createdAt int64
		if err := rows.Scan(&c.ID, &c.UserID, &c.Level, &c.Note, &createdAt); err != nil {
			return nil, fmt.Errorf("scan checkin row: %w", err)
		}
		c.CreatedAt = time.Unix(createdAt, 0).UTC()
		checkins = append(checkins, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate checkins: %w", err)
	}
	return checkins, nil
}

func checkAffected(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
