/*
Package supabase implements the storage interfaces against the
Postgres-backed REST store.

PURPOSE:
  The production store exposes its tables over a PostgREST-style API.
  Every write is an upsert: POST with "Prefer: resolution=merge-duplicates"
  and an on_conflict parameter naming the table's natural key, so re-running
  a sync over the same window is safe.

BATCHING:
  Upserts go out in batches of 100 rows. A failed batch aborts the
  remaining batches and reports how many rows were written before it.

ERROR MAPPING:
  Transport failures wrap store.ErrUnavailable; 401/403 responses unwrap
  to store.ErrAuthFailed via store.StatusError. Both are boundary
  failures: the jobs abort the run rather than writing partial garbage.

SEE ALSO:
  - store/store.go: Interface definitions
  - store/errors.go: The sentinel errors and StatusError
*/
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/agencyops/chattersync/coaching"
	"github.com/agencyops/chattersync/hours"
	"github.com/agencyops/chattersync/report"
	"github.com/agencyops/chattersync/roster"
	"github.com/agencyops/chattersync/store"
)

// upsertBatchSize caps rows per request; the REST store rejects oversized
// payloads well before this limit becomes a server problem.
const upsertBatchSize = 100

// Client talks to the REST store. Safe for concurrent use.
type Client struct {
	baseURL string
	key     string
	http    *http.Client
}

// New creates a client for the store at baseURL (the REST root, without a
// trailing slash) authenticated by the service key.
func New(baseURL, key string) *Client {
	return &Client{
		baseURL: baseURL,
		key:     key,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// =============================================================================
// HTTP PLUMBING
// =============================================================================

func (c *Client) do(ctx context.Context, method, table string, query url.Values, body, out any, prefer string) error {
	var payload io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s %s: encode: %w", method, table, err)
		}
		payload = bytes.NewReader(buf)
	}

	u := c.baseURL + "/" + table
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, payload)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.key)
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Content-Type", "application/json")
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %w", method, table, store.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &store.StatusError{Op: method + " " + table, Status: resp.StatusCode, Body: string(snippet)}
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%s %s: decode: %w", method, table, err)
		}
	}
	return nil
}

// upsert posts rows in batches with merge-duplicates semantics on the
// given conflict key. Returns the number of rows written.
func upsert[T any](ctx context.Context, c *Client, table, conflict string, rows []T) (int, error) {
	prefer := "resolution=merge-duplicates"
	q := url.Values{}
	if conflict != "" {
		q.Set("on_conflict", conflict)
	}
	written := 0
	for start := 0; start < len(rows); start += upsertBatchSize {
		end := start + upsertBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := c.do(ctx, http.MethodPost, table, q, rows[start:end], nil, prefer); err != nil {
			return written, err
		}
		written += end - start
	}
	return written, nil
}

// =============================================================================
// ROSTER
// =============================================================================

type chatterRow struct {
	ID            string `json:"id,omitempty"`
	DirectoryID   string `json:"airtable_record_id"`
	FullName      string `json:"full_name"`
	Status        string `json:"status"`
	Role          string `json:"role,omitempty"`
	TeamName      string `json:"team_name,omitempty"`
	TrackerUserID *int64 `json:"hubstaff_user_id,omitempty"`
}

func (c *Client) ListChatters(ctx context.Context, filter store.ChatterFilter) ([]roster.Chatter, error) {
	q := url.Values{}
	q.Set("select", "id,airtable_record_id,full_name,status,role,team_name,hubstaff_user_id")
	// created_at order keeps the matcher's tie-breaks stable across runs.
	q.Set("order", "created_at.asc")
	if filter.Status != "" {
		q.Set("status", "eq."+string(filter.Status))
	}
	if filter.Role != "" {
		q.Set("role", "eq."+filter.Role)
	}
	if filter.TeamName != "" {
		q.Set("team_name", "eq."+filter.TeamName)
	}

	var rows []chatterRow
	if err := c.do(ctx, http.MethodGet, "chatters", q, nil, &rows, ""); err != nil {
		return nil, err
	}
	out := make([]roster.Chatter, 0, len(rows))
	for _, r := range rows {
		ch := roster.Chatter{
			ID:          roster.ChatterID(r.ID),
			DirectoryID: r.DirectoryID,
			FullName:    r.FullName,
			Status:      roster.Status(r.Status),
			Role:        r.Role,
			TeamName:    r.TeamName,
		}
		if r.TrackerUserID != nil {
			ch.TrackerUserID = roster.TrackerUserID(*r.TrackerUserID)
		}
		out = append(out, ch)
	}
	return out, nil
}

func (c *Client) UpsertChatters(ctx context.Context, chatters []roster.Chatter) (int, error) {
	rows := make([]chatterRow, 0, len(chatters))
	for _, ch := range chatters {
		// tracker id omitted on purpose: the roster sync never owns it.
		rows = append(rows, chatterRow{
			DirectoryID: ch.DirectoryID,
			FullName:    ch.FullName,
			Status:      string(ch.Status),
			Role:        ch.Role,
			TeamName:    ch.TeamName,
		})
	}
	return upsert(ctx, c, "chatters", "airtable_record_id", rows)
}

func (c *Client) SetTrackerUserID(ctx context.Context, id roster.ChatterID, key roster.TrackerUserID) error {
	q := url.Values{}
	q.Set("id", "eq."+string(id))
	body := map[string]int64{"hubstaff_user_id": int64(key)}
	return c.do(ctx, http.MethodPatch, "chatters", q, body, nil, "")
}

// =============================================================================
// MODELS
// =============================================================================

type modelRow struct {
	DirectoryID    string   `json:"airtable_record_id"`
	Name           string   `json:"name"`
	Status         string   `json:"status"`
	PageType       string   `json:"page_type,omitempty"`
	Niche          []string `json:"niche,omitempty"`
	TrafficSources []string `json:"traffic_sources,omitempty"`
	ClientName     string   `json:"client_name,omitempty"`
	TeamNames      []string `json:"team_names,omitempty"`
	ChatbotActive  bool     `json:"chatbot_active"`
	ScriptsURL     string   `json:"scripts_url,omitempty"`
}

func (c *Client) UpsertModels(ctx context.Context, models []store.Model) (int, error) {
	rows := make([]modelRow, 0, len(models))
	for _, m := range models {
		rows = append(rows, modelRow{
			DirectoryID:    m.DirectoryID,
			Name:           m.Name,
			Status:         m.Status,
			PageType:       m.PageType,
			Niche:          m.Niche,
			TrafficSources: m.TrafficSources,
			ClientName:     m.ClientName,
			TeamNames:      m.TeamNames,
			ChatbotActive:  m.ChatbotActive,
			ScriptsURL:     m.ScriptsURL,
		})
	}
	return upsert(ctx, c, "models", "airtable_record_id", rows)
}

// =============================================================================
// HOURS
// =============================================================================

type hoursRow struct {
	ChatterID string `json:"chatter_id"`
	Date      string `json:"date"`
	// Postgres numeric accepts the text representation; sending the fixed
	// 2-decimal string avoids any float round trip.
	HoursWorked   string `json:"hours_worked"`
	MatchStrategy string `json:"match_strategy,omitempty"`
}

func (c *Client) UpsertHours(ctx context.Context, records []hours.Record) (int, error) {
	rows := make([]hoursRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, hoursRow{
			ChatterID:     string(rec.ChatterID),
			Date:          rec.Day.String(),
			HoursWorked:   rec.Hours.StringFixed(2),
			MatchStrategy: string(rec.Strategy),
		})
	}
	return upsert(ctx, c, "chatter_hours", "chatter_id,date", rows)
}

// =============================================================================
// METRICS + COACHING
// =============================================================================

type statsRow struct {
	EmployeeName string  `json:"employee_name"`
	Date         string  `json:"date"`
	Sales        float64 `json:"sales"`
	SalesPerHour float64 `json:"sales_per_hour"`
	GoldenRatio  float64 `json:"golden_ratio"`
	FanCVR       float64 `json:"fan_cvr"`
	UnlockRate   float64 `json:"unlock_rate"`
	FansChatted  int     `json:"fans_chatted"`
	ClockedHours float64 `json:"clocked_hours"`
}

func (c *Client) DailyMetrics(ctx context.Context, day roster.Day) ([]coaching.Metric, error) {
	q := url.Values{}
	q.Set("date", "eq."+day.String())

	var rows []statsRow
	if err := c.do(ctx, http.MethodGet, "chatter_daily_stats", q, nil, &rows, ""); err != nil {
		return nil, err
	}
	out := make([]coaching.Metric, 0, len(rows))
	for _, r := range rows {
		d, err := roster.ParseDay(r.Date)
		if err != nil {
			return nil, fmt.Errorf("chatter_daily_stats: bad date %q: %w", r.Date, err)
		}
		out = append(out, coaching.Metric{
			EmployeeName: r.EmployeeName,
			Day:          d,
			Sales:        r.Sales,
			SalesPerHour: r.SalesPerHour,
			GoldenRatio:  r.GoldenRatio,
			FanCVR:       r.FanCVR,
			UnlockRate:   r.UnlockRate,
			FansChatted:  r.FansChatted,
			ClockedHours: r.ClockedHours,
		})
	}
	return out, nil
}

func (c *Client) LatestCoachingDate(ctx context.Context, id roster.ChatterID) (roster.Day, bool, error) {
	q := url.Values{}
	q.Set("chatter_id", "eq."+string(id))
	q.Set("select", "date")
	q.Set("order", "date.desc")
	q.Set("limit", "1")

	var rows []struct {
		Date string `json:"date"`
	}
	if err := c.do(ctx, http.MethodGet, "coaching_logs", q, nil, &rows, ""); err != nil {
		return roster.Day{}, false, err
	}
	if len(rows) == 0 {
		return roster.Day{}, false, nil
	}
	day, err := roster.ParseDay(rows[0].Date)
	if err != nil {
		return roster.Day{}, false, err
	}
	return day, true, nil
}

type taskRow struct {
	ID                string                  `json:"id"`
	ChatterID         string                  `json:"chatter_id"`
	ChatterName       string                  `json:"chatter_name"`
	Date              string                  `json:"date"`
	TeamLead          string                  `json:"team_lead,omitempty"`
	Priority          int                     `json:"priority"`
	PerfScore         float64                 `json:"perf_score"`
	DaysSinceCoaching int                     `json:"days_since_coaching"`
	RedFlags          []coaching.Flag         `json:"red_flags"`
	TalkingPoints     []coaching.TalkingPoint `json:"talking_points"`
	KPIs              coaching.Snapshot       `json:"kpis"`
	Source            string                  `json:"source,omitempty"`
	Status            string                  `json:"status"`
}

func (c *Client) CreateTask(ctx context.Context, task coaching.Task) error {
	row := taskRow{
		ID:                task.ID,
		ChatterID:         string(task.ChatterID),
		ChatterName:       task.ChatterName,
		Date:              task.Day.String(),
		TeamLead:          task.TeamLead,
		Priority:          task.Priority,
		PerfScore:         task.PerfScore,
		DaysSinceCoaching: task.DaysSinceCoaching,
		RedFlags:          task.Flags,
		TalkingPoints:     task.TalkingPoints,
		KPIs:              task.KPIs,
		Source:            task.Source,
		Status:            string(task.Status),
	}
	_, err := upsert(ctx, c, "coaching_tasks", "chatter_id,date", []taskRow{row})
	return err
}

func (c *Client) TasksForDay(ctx context.Context, day roster.Day) ([]coaching.Task, error) {
	q := url.Values{}
	q.Set("date", "eq."+day.String())
	q.Set("order", "priority.desc,chatter_name.asc")

	var rows []taskRow
	if err := c.do(ctx, http.MethodGet, "coaching_tasks", q, nil, &rows, ""); err != nil {
		return nil, err
	}
	out := make([]coaching.Task, 0, len(rows))
	for _, r := range rows {
		d, _ := roster.ParseDay(r.Date)
		out = append(out, coaching.Task{
			ID:                r.ID,
			Day:               d,
			ChatterID:         roster.ChatterID(r.ChatterID),
			ChatterName:       r.ChatterName,
			TeamLead:          r.TeamLead,
			Priority:          r.Priority,
			PerfScore:         r.PerfScore,
			DaysSinceCoaching: r.DaysSinceCoaching,
			Flags:             r.RedFlags,
			TalkingPoints:     r.TalkingPoints,
			KPIs:              r.KPIs,
			Source:            r.Source,
			Status:            coaching.TaskStatus(r.Status),
		})
	}
	return out, nil
}

// =============================================================================
// SCORE EVENTS
// =============================================================================

func (c *Client) ListScoreEventTypes(ctx context.Context) ([]store.ScoreEventType, error) {
	var rows []struct {
		ID       string  `json:"id"`
		Name     string  `json:"name"`
		Points   float64 `json:"points"`
		Category string  `json:"category"`
	}
	if err := c.do(ctx, http.MethodGet, "score_event_types", nil, nil, &rows, ""); err != nil {
		return nil, err
	}
	out := make([]store.ScoreEventType, 0, len(rows))
	for _, r := range rows {
		out = append(out, store.ScoreEventType{ID: r.ID, Name: r.Name, Points: r.Points, Category: r.Category})
	}
	return out, nil
}

func (c *Client) CreateScoreEvent(ctx context.Context, ev store.ScoreEvent) error {
	body := map[string]any{
		"chatter_id":    string(ev.ChatterID),
		"date":          ev.Day.String(),
		"event_type_id": ev.EventTypeID,
		"points":        ev.Points,
		"notes":         ev.Notes,
		"week":          ev.Week,
	}
	return c.do(ctx, http.MethodPost, "score_events", nil, []map[string]any{body}, nil, "")
}

// =============================================================================
// SETTINGS
// =============================================================================

func (c *Client) GetSetting(ctx context.Context, key string) (string, error) {
	q := url.Values{}
	q.Set("key", "eq."+key)
	q.Set("select", "value")

	var rows []struct {
		Value string `json:"value"`
	}
	if err := c.do(ctx, http.MethodGet, "app_settings", q, nil, &rows, ""); err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", store.ErrNotFound
	}
	return rows[0].Value, nil
}

func (c *Client) PutSetting(ctx context.Context, key, value string) error {
	row := map[string]string{"key": key, "value": value}
	_, err := upsert(ctx, c, "app_settings", "key", []map[string]string{row})
	return err
}

// =============================================================================
// RUNS + NOTIFICATIONS
// =============================================================================

type runRow struct {
	ID         string `json:"id"`
	Job        string `json:"job"`
	StartedAt  string `json:"started_at"`
	FinishedAt string `json:"finished_at"`
	Processed  int    `json:"processed"`
	Written    int    `json:"written"`
	Skipped    int    `json:"skipped"`
	Unmatched  int    `json:"unmatched"`
	Detail     string `json:"detail,omitempty"`
}

func (c *Client) RecordRun(ctx context.Context, summary report.RunSummary) error {
	row := runRow{
		ID:         summary.ID,
		Job:        summary.Job,
		StartedAt:  summary.StartedAt.UTC().Format(time.RFC3339),
		FinishedAt: summary.FinishedAt.UTC().Format(time.RFC3339),
		Processed:  summary.Processed,
		Written:    summary.Written,
		Skipped:    summary.Skipped,
		Unmatched:  summary.Unmatched,
		Detail:     summary.Detail,
	}
	return c.do(ctx, http.MethodPost, "sync_runs", nil, []runRow{row}, nil, "")
}

func (c *Client) ListRuns(ctx context.Context, limit int) ([]report.RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	q := url.Values{}
	q.Set("order", "started_at.desc")
	q.Set("limit", fmt.Sprint(limit))

	var rows []runRow
	if err := c.do(ctx, http.MethodGet, "sync_runs", q, nil, &rows, ""); err != nil {
		return nil, err
	}
	out := make([]report.RunSummary, 0, len(rows))
	for _, r := range rows {
		started, _ := time.Parse(time.RFC3339, r.StartedAt)
		finished, _ := time.Parse(time.RFC3339, r.FinishedAt)
		out = append(out, report.RunSummary{
			ID:         r.ID,
			Job:        r.Job,
			StartedAt:  started,
			FinishedAt: finished,
			Processed:  r.Processed,
			Written:    r.Written,
			Skipped:    r.Skipped,
			Unmatched:  r.Unmatched,
			Detail:     r.Detail,
		})
	}
	return out, nil
}

func (c *Client) Notify(ctx context.Context, n store.Notification) error {
	body := map[string]string{
		"id":         uuid.NewString(),
		"user_id":    n.UserID,
		"type":       n.Type,
		"title":      n.Title,
		"message":    n.Message,
		"action_url": n.ActionURL,
	}
	return c.do(ctx, http.MethodPost, "notifications", nil, []map[string]string{body}, nil, "")
}
