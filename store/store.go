/*
Package store defines the persistence interfaces between the sync jobs
and the roster/metrics store.

PURPOSE:
  The jobs never talk to a database or a REST endpoint directly; they
  depend on the narrow interfaces here. Three implementations exist:

  store/supabase: The production Postgres-backed REST store
  store/sqlite:   Local single-file store for dev runs and the serve command
  store/memory:   In-memory fakes for tests

UPSERT SEMANTICS:
  Hour records upsert on (chatter_id, date); chatters upsert on the
  directory record id; tasks upsert on (chatter_id, date). The store owns
  conflict resolution - the jobs do not deduplicate across runs.

SEE ALSO:
  - jobs/: The consumers
  - store/supabase/supabase.go, store/sqlite/sqlite.go, store/memory/memory.go
*/
package store

import (
	"context"

	"github.com/agencyops/chattersync/coaching"
	"github.com/agencyops/chattersync/hours"
	"github.com/agencyops/chattersync/report"
	"github.com/agencyops/chattersync/roster"
)

// =============================================================================
// ROSTER - Canonical identity records (authoritative, read-mostly)
// =============================================================================

// ChatterFilter narrows ListChatters. Zero values mean "any".
type ChatterFilter struct {
	Status   roster.Status
	Role     string
	TeamName string
}

type RosterStore interface {
	// ListChatters returns roster members in stable store order.
	// Fetch order matters: the matcher's tie-breaks depend on it.
	ListChatters(ctx context.Context, filter ChatterFilter) ([]roster.Chatter, error)

	// UpsertChatters writes directory records, conflict key DirectoryID.
	// Returns the number of rows written.
	UpsertChatters(ctx context.Context, chatters []roster.Chatter) (int, error)

	// SetTrackerUserID persists a key mapping discovered by the mapping
	// job. The only chatter field the sync jobs ever write individually.
	SetTrackerUserID(ctx context.Context, id roster.ChatterID, key roster.TrackerUserID) error
}

// =============================================================================
// MODELS - Secondary directory table carried by the roster sync
// =============================================================================

type Model struct {
	DirectoryID    string
	Name           string
	Status         string
	PageType       string
	Niche          []string
	TrafficSources []string
	ClientName     string
	TeamNames      []string
	ChatbotActive  bool
	ScriptsURL     string
}

type ModelStore interface {
	UpsertModels(ctx context.Context, models []Model) (int, error)
}

// =============================================================================
// HOURS - Reconciled time records
// =============================================================================

type HoursStore interface {
	// UpsertHours writes reconciled records, conflict key (chatter_id, date).
	UpsertHours(ctx context.Context, records []hours.Record) (int, error)
}

// =============================================================================
// COACHING - Metrics in, tasks out
// =============================================================================

type MetricsStore interface {
	// DailyMetrics returns every performance row recorded for one day.
	DailyMetrics(ctx context.Context, day roster.Day) ([]coaching.Metric, error)
}

type CoachingStore interface {
	// LatestCoachingDate returns the most recent coaching log date for a
	// chatter; ok is false when no record exists.
	LatestCoachingDate(ctx context.Context, id roster.ChatterID) (roster.Day, bool, error)

	// CreateTask writes a coaching task, conflict key (chatter_id, date).
	CreateTask(ctx context.Context, task coaching.Task) error

	// TasksForDay returns tasks created for a day, highest priority first.
	TasksForDay(ctx context.Context, day roster.Day) ([]coaching.Task, error)
}

// =============================================================================
// SCORE EVENTS - Historical migration target
// =============================================================================

type ScoreEventType struct {
	ID       string
	Name     string
	Points   float64
	Category string
}

type ScoreEvent struct {
	ChatterID   roster.ChatterID
	Day         roster.Day
	EventTypeID string
	Points      int
	Notes       string
	Week        string // ISO week key, e.g. "2024-W02"
}

type ScoreStore interface {
	ListScoreEventTypes(ctx context.Context) ([]ScoreEventType, error)
	CreateScoreEvent(ctx context.Context, ev ScoreEvent) error
}

// =============================================================================
// SETTINGS - Key/value row used for refresh-token rotation
// =============================================================================

// SettingTrackerRefreshToken is where the rotated tracker token lives
// between runs.
const SettingTrackerRefreshToken = "tracker_refresh_token"

type SettingsStore interface {
	// GetSetting returns ErrNotFound when the key has never been written.
	GetSetting(ctx context.Context, key string) (string, error)
	PutSetting(ctx context.Context, key, value string) error
}

// =============================================================================
// RUNS - Run summaries for the operator API
// =============================================================================

type RunStore interface {
	RecordRun(ctx context.Context, summary report.RunSummary) error
	ListRuns(ctx context.Context, limit int) ([]report.RunSummary, error)
}

// =============================================================================
// NOTIFICATIONS - Delivery to team leads; failures never block tasks
// =============================================================================

type Notification struct {
	UserID    string
	Type      string
	Title     string
	Message   string
	ActionURL string
}

type NotificationSink interface {
	Notify(ctx context.Context, n Notification) error
}
