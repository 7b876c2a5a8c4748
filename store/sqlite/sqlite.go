/*
Package sqlite provides a SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  A local single-file store for development runs and the serve command.
  Production jobs talk to the Postgres-backed REST store instead; the
  schema here mirrors that store's tables so a dev run exercises the same
  upsert semantics.

INTERFACES IMPLEMENTED:
  store.RosterStore, store.ModelStore, store.HoursStore,
  store.MetricsStore, store.CoachingStore, store.ScoreStore,
  store.SettingsStore, store.RunStore, store.NotificationSink

KEY TABLES:
  chatters:            Canonical roster; unique directory_id and unique
                       tracker_user_id (one tracker account per chatter)
  chatter_hours:       Reconciled hours, unique (chatter_id, date)
  chatter_daily_stats: Performance metrics consumed by the coach job
  coaching_tasks:      Generated tasks, unique (chatter_id, date)
  coaching_logs:       Coaching history read by the rule engine
  app_settings:        Key/value rows (rotated refresh token)
  sync_runs:           Run summaries served by the operator API

WAL MODE:
  Opened with WAL so the serve command and a dev sync run can share the
  same file without readers blocking the writer.

SEE ALSO:
  - store/store.go: Interface definitions
  - store/supabase/supabase.go: The production REST implementation
  - store/memory/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/agencyops/chattersync/coaching"
	"github.com/agencyops/chattersync/hours"
	"github.com/agencyops/chattersync/match"
	"github.com/agencyops/chattersync/report"
	"github.com/agencyops/chattersync/roster"
	"github.com/agencyops/chattersync/store"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS chatters (
		id TEXT PRIMARY KEY,
		directory_id TEXT UNIQUE,
		full_name TEXT NOT NULL,
		status TEXT NOT NULL,
		role TEXT,
		team_name TEXT,
		tracker_user_id INTEGER,
		synced_at TEXT NOT NULL
	);

	-- At most one chatter per tracker account.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_chatters_tracker_user
		ON chatters(tracker_user_id) WHERE tracker_user_id IS NOT NULL;

	CREATE TABLE IF NOT EXISTS models (
		directory_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		status TEXT NOT NULL,
		page_type TEXT,
		niche_json TEXT,
		traffic_json TEXT,
		client_name TEXT,
		teams_json TEXT,
		chatbot_active INTEGER NOT NULL DEFAULT 0,
		scripts_url TEXT,
		synced_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS chatter_hours (
		chatter_id TEXT NOT NULL,
		date TEXT NOT NULL,
		hours_worked TEXT NOT NULL,
		match_strategy TEXT,
		synced_at TEXT NOT NULL,
		PRIMARY KEY (chatter_id, date)
	);

	CREATE TABLE IF NOT EXISTS chatter_daily_stats (
		employee_name TEXT NOT NULL,
		date TEXT NOT NULL,
		sales REAL NOT NULL DEFAULT 0,
		sales_per_hour REAL NOT NULL DEFAULT 0,
		golden_ratio REAL NOT NULL DEFAULT 0,
		fan_cvr REAL NOT NULL DEFAULT 0,
		unlock_rate REAL NOT NULL DEFAULT 0,
		fans_chatted INTEGER NOT NULL DEFAULT 0,
		clocked_hours REAL NOT NULL DEFAULT 0,
		PRIMARY KEY (employee_name, date)
	);

	CREATE TABLE IF NOT EXISTS coaching_tasks (
		id TEXT NOT NULL,
		chatter_id TEXT NOT NULL,
		chatter_name TEXT NOT NULL,
		date TEXT NOT NULL,
		team_lead TEXT,
		priority INTEGER NOT NULL,
		perf_score REAL,
		days_since_coaching INTEGER,
		red_flags_json TEXT NOT NULL,
		talking_points_json TEXT NOT NULL,
		kpis_json TEXT NOT NULL,
		source TEXT,
		status TEXT NOT NULL,
		PRIMARY KEY (chatter_id, date)
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_date_priority
		ON coaching_tasks(date, priority DESC);

	CREATE TABLE IF NOT EXISTS coaching_logs (
		chatter_id TEXT NOT NULL,
		date TEXT NOT NULL,
		PRIMARY KEY (chatter_id, date)
	);

	CREATE TABLE IF NOT EXISTS score_event_types (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		points REAL NOT NULL DEFAULT 0,
		category TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS score_events (
		id TEXT PRIMARY KEY,
		chatter_id TEXT NOT NULL,
		date TEXT NOT NULL,
		event_type_id TEXT NOT NULL,
		points INTEGER NOT NULL,
		notes TEXT,
		week TEXT
	);

	CREATE TABLE IF NOT EXISTS app_settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sync_runs (
		id TEXT PRIMARY KEY,
		job TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		processed INTEGER NOT NULL,
		written INTEGER NOT NULL,
		skipped INTEGER NOT NULL,
		unmatched INTEGER NOT NULL,
		detail TEXT
	);

	CREATE TABLE IF NOT EXISTS notifications (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		type TEXT NOT NULL,
		title TEXT NOT NULL,
		message TEXT NOT NULL,
		action_url TEXT,
		read INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func now() string { return time.Now().UTC().Format(time.RFC3339) }

// =============================================================================
// ROSTER
// =============================================================================

func (s *Store) ListChatters(ctx context.Context, filter store.ChatterFilter) ([]roster.Chatter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, COALESCE(directory_id,''), full_name, status, COALESCE(role,''),
		COALESCE(team_name,''), COALESCE(tracker_user_id,0) FROM chatters`
	var conds []string
	var args []any
	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Role != "" {
		conds = append(conds, "role = ?")
		args = append(args, filter.Role)
	}
	if filter.TeamName != "" {
		conds = append(conds, "team_name = ?")
		args = append(args, filter.TeamName)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	// rowid order = insertion order; the matcher's tie-breaks depend on a
	// stable fetch order.
	query += " ORDER BY rowid"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list chatters: %w", err)
	}
	defer rows.Close()

	var out []roster.Chatter
	for rows.Next() {
		var c roster.Chatter
		var trackerID int64
		if err := rows.Scan(&c.ID, &c.DirectoryID, &c.FullName, &c.Status, &c.Role, &c.TeamName, &trackerID); err != nil {
			return nil, err
		}
		c.TrackerUserID = roster.TrackerUserID(trackerID)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) UpsertChatters(ctx context.Context, chatters []roster.Chatter) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	// tracker_user_id is deliberately absent from the update set: the
	// roster sync never owns the key mapping.
	stmt := `INSERT INTO chatters (id, directory_id, full_name, status, role, team_name, synced_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(directory_id) DO UPDATE SET
			full_name = excluded.full_name,
			status = excluded.status,
			role = excluded.role,
			team_name = excluded.team_name,
			synced_at = excluded.synced_at`
	written := 0
	for _, c := range chatters {
		id := string(c.ID)
		if id == "" {
			id = uuid.NewString()
		}
		if _, err := tx.ExecContext(ctx, stmt, id, c.DirectoryID, c.FullName, string(c.Status), c.Role, c.TeamName, now()); err != nil {
			return written, fmt.Errorf("upsert chatter %q: %w", c.FullName, err)
		}
		written++
	}
	return written, tx.Commit()
}

func (s *Store) SetTrackerUserID(ctx context.Context, id roster.ChatterID, key roster.TrackerUserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE chatters SET tracker_user_id = ? WHERE id = ?`, int64(key), string(id))
	if err != nil {
		return fmt.Errorf("set tracker user id: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// =============================================================================
// MODELS
// =============================================================================

func (s *Store) UpsertModels(ctx context.Context, models []store.Model) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt := `INSERT INTO models (directory_id, name, status, page_type, niche_json,
			traffic_json, client_name, teams_json, chatbot_active, scripts_url, synced_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(directory_id) DO UPDATE SET
			name = excluded.name,
			status = excluded.status,
			page_type = excluded.page_type,
			niche_json = excluded.niche_json,
			traffic_json = excluded.traffic_json,
			client_name = excluded.client_name,
			teams_json = excluded.teams_json,
			chatbot_active = excluded.chatbot_active,
			scripts_url = excluded.scripts_url,
			synced_at = excluded.synced_at`
	written := 0
	for _, m := range models {
		niche, _ := json.Marshal(m.Niche)
		traffic, _ := json.Marshal(m.TrafficSources)
		teams, _ := json.Marshal(m.TeamNames)
		active := 0
		if m.ChatbotActive {
			active = 1
		}
		if _, err := tx.ExecContext(ctx, stmt, m.DirectoryID, m.Name, m.Status, m.PageType,
			string(niche), string(traffic), m.ClientName, string(teams), active, m.ScriptsURL, now()); err != nil {
			return written, fmt.Errorf("upsert model %q: %w", m.Name, err)
		}
		written++
	}
	return written, tx.Commit()
}

// =============================================================================
// HOURS
// =============================================================================

func (s *Store) UpsertHours(ctx context.Context, records []hours.Record) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt := `INSERT INTO chatter_hours (chatter_id, date, hours_worked, match_strategy, synced_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(chatter_id, date) DO UPDATE SET
			hours_worked = excluded.hours_worked,
			match_strategy = excluded.match_strategy,
			synced_at = excluded.synced_at`
	written := 0
	for _, rec := range records {
		if _, err := tx.ExecContext(ctx, stmt, string(rec.ChatterID), rec.Day.String(),
			rec.Hours.StringFixed(2), string(rec.Strategy), now()); err != nil {
			return written, fmt.Errorf("upsert hours %s/%s: %w", rec.ChatterID, rec.Day, err)
		}
		written++
	}
	return written, tx.Commit()
}

// HoursFor reads back one reconciled record; used by the operator API.
func (s *Store) HoursFor(ctx context.Context, id roster.ChatterID, day roster.Day) (hours.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rec hours.Record
	var dayStr, hrs, strategy string
	err := s.db.QueryRowContext(ctx,
		`SELECT chatter_id, date, hours_worked, COALESCE(match_strategy,'') FROM chatter_hours
		 WHERE chatter_id = ? AND date = ?`, string(id), day.String()).
		Scan(&rec.ChatterID, &dayStr, &hrs, &strategy)
	if errors.Is(err, sql.ErrNoRows) {
		return rec, store.ErrNotFound
	}
	if err != nil {
		return rec, err
	}
	rec.Day, _ = roster.ParseDay(dayStr)
	rec.Hours, err = decimal.NewFromString(hrs)
	if err != nil {
		return rec, fmt.Errorf("corrupt hours value %q: %w", hrs, err)
	}
	rec.Strategy = match.Strategy(strategy)
	return rec, nil
}

// =============================================================================
// METRICS + COACHING
// =============================================================================

func (s *Store) DailyMetrics(ctx context.Context, day roster.Day) ([]coaching.Metric, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT employee_name, date, sales, sales_per_hour, golden_ratio, fan_cvr,
			unlock_rate, fans_chatted, clocked_hours
		 FROM chatter_daily_stats WHERE date = ? ORDER BY sales DESC`, day.String())
	if err != nil {
		return nil, fmt.Errorf("daily metrics: %w", err)
	}
	defer rows.Close()

	var out []coaching.Metric
	for rows.Next() {
		var m coaching.Metric
		var dayStr string
		if err := rows.Scan(&m.EmployeeName, &dayStr, &m.Sales, &m.SalesPerHour,
			&m.GoldenRatio, &m.FanCVR, &m.UnlockRate, &m.FansChatted, &m.ClockedHours); err != nil {
			return nil, err
		}
		m.Day, _ = roster.ParseDay(dayStr)
		out = append(out, m)
	}
	return out, rows.Err()
}

// UpsertDailyStats loads metric fixtures; used by dev seeding.
func (s *Store) UpsertDailyStats(ctx context.Context, metrics []coaching.Metric) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stmt := `INSERT INTO chatter_daily_stats (employee_name, date, sales, sales_per_hour,
			golden_ratio, fan_cvr, unlock_rate, fans_chatted, clocked_hours)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_name, date) DO UPDATE SET
			sales = excluded.sales,
			sales_per_hour = excluded.sales_per_hour,
			golden_ratio = excluded.golden_ratio,
			fan_cvr = excluded.fan_cvr,
			unlock_rate = excluded.unlock_rate,
			fans_chatted = excluded.fans_chatted,
			clocked_hours = excluded.clocked_hours`
	for _, m := range metrics {
		if _, err := s.db.ExecContext(ctx, stmt, m.EmployeeName, m.Day.String(), m.Sales,
			m.SalesPerHour, m.GoldenRatio, m.FanCVR, m.UnlockRate, m.FansChatted, m.ClockedHours); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) LatestCoachingDate(ctx context.Context, id roster.ChatterID) (roster.Day, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var dayStr string
	err := s.db.QueryRowContext(ctx,
		`SELECT date FROM coaching_logs WHERE chatter_id = ? ORDER BY date DESC LIMIT 1`,
		string(id)).Scan(&dayStr)
	if errors.Is(err, sql.ErrNoRows) {
		return roster.Day{}, false, nil
	}
	if err != nil {
		return roster.Day{}, false, err
	}
	day, err := roster.ParseDay(dayStr)
	if err != nil {
		return roster.Day{}, false, err
	}
	return day, true, nil
}

// AddCoachingLog records a completed coaching session.
func (s *Store) AddCoachingLog(ctx context.Context, id roster.ChatterID, day roster.Day) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO coaching_logs (chatter_id, date) VALUES (?, ?)`,
		string(id), day.String())
	return err
}

func (s *Store) CreateTask(ctx context.Context, task coaching.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	flags, _ := json.Marshal(task.Flags)
	points, _ := json.Marshal(task.TalkingPoints)
	kpis, _ := json.Marshal(task.KPIs)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO coaching_tasks (id, chatter_id, chatter_name, date, team_lead, priority,
			perf_score, days_since_coaching, red_flags_json, talking_points_json, kpis_json, source, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(chatter_id, date) DO UPDATE SET
			team_lead = excluded.team_lead,
			priority = excluded.priority,
			perf_score = excluded.perf_score,
			days_since_coaching = excluded.days_since_coaching,
			red_flags_json = excluded.red_flags_json,
			talking_points_json = excluded.talking_points_json,
			kpis_json = excluded.kpis_json,
			source = excluded.source`,
		task.ID, string(task.ChatterID), task.ChatterName, task.Day.String(), task.TeamLead,
		task.Priority, task.PerfScore, task.DaysSinceCoaching, string(flags), string(points),
		string(kpis), task.Source, string(task.Status))
	if err != nil {
		return fmt.Errorf("create task for %q: %w", task.ChatterName, err)
	}
	return nil
}

func (s *Store) TasksForDay(ctx context.Context, day roster.Day) ([]coaching.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, chatter_id, chatter_name, date, COALESCE(team_lead,''), priority,
			COALESCE(perf_score,0), COALESCE(days_since_coaching,0), red_flags_json,
			talking_points_json, kpis_json, COALESCE(source,''), status
		 FROM coaching_tasks WHERE date = ? ORDER BY priority DESC, chatter_name`, day.String())
	if err != nil {
		return nil, fmt.Errorf("tasks for day: %w", err)
	}
	defer rows.Close()

	var out []coaching.Task
	for rows.Next() {
		var t coaching.Task
		var dayStr, flags, points, kpis string
		if err := rows.Scan(&t.ID, &t.ChatterID, &t.ChatterName, &dayStr, &t.TeamLead,
			&t.Priority, &t.PerfScore, &t.DaysSinceCoaching, &flags, &points, &kpis,
			&t.Source, &t.Status); err != nil {
			return nil, err
		}
		t.Day, _ = roster.ParseDay(dayStr)
		_ = json.Unmarshal([]byte(flags), &t.Flags)
		_ = json.Unmarshal([]byte(points), &t.TalkingPoints)
		_ = json.Unmarshal([]byte(kpis), &t.KPIs)
		out = append(out, t)
	}
	return out, rows.Err()
}

// =============================================================================
// SCORE EVENTS
// =============================================================================

func (s *Store) ListScoreEventTypes(ctx context.Context) ([]store.ScoreEventType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, points, category FROM score_event_types ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.ScoreEventType
	for rows.Next() {
		var t store.ScoreEventType
		if err := rows.Scan(&t.ID, &t.Name, &t.Points, &t.Category); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) CreateScoreEvent(ctx context.Context, ev store.ScoreEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO score_events (id, chatter_id, date, event_type_id, points, notes, week)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), string(ev.ChatterID), ev.Day.String(), ev.EventTypeID,
		ev.Points, ev.Notes, ev.Week)
	return err
}

// =============================================================================
// SETTINGS
// =============================================================================

func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM app_settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", store.ErrNotFound
	}
	return value, err
}

func (s *Store) PutSetting(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO app_settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

// =============================================================================
// RUNS + NOTIFICATIONS
// =============================================================================

func (s *Store) RecordRun(ctx context.Context, summary report.RunSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sync_runs (id, job, started_at, finished_at, processed, written, skipped, unmatched, detail)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		summary.ID, summary.Job, summary.StartedAt.UTC().Format(time.RFC3339),
		summary.FinishedAt.UTC().Format(time.RFC3339), summary.Processed, summary.Written,
		summary.Skipped, summary.Unmatched, summary.Detail)
	return err
}

func (s *Store) ListRuns(ctx context.Context, limit int) ([]report.RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, job, started_at, finished_at, processed, written, skipped, unmatched, COALESCE(detail,'')
		 FROM sync_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []report.RunSummary
	for rows.Next() {
		var r report.RunSummary
		var started, finished string
		if err := rows.Scan(&r.ID, &r.Job, &started, &finished, &r.Processed, &r.Written,
			&r.Skipped, &r.Unmatched, &r.Detail); err != nil {
			return nil, err
		}
		r.StartedAt, _ = time.Parse(time.RFC3339, started)
		r.FinishedAt, _ = time.Parse(time.RFC3339, finished)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) Notify(ctx context.Context, n store.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notifications (id, user_id, type, title, message, action_url, read, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, 0, ?)`,
		uuid.NewString(), n.UserID, n.Type, n.Title, n.Message, n.ActionURL, now())
	return err
}
