// Package memory provides an in-memory store implementation for tests
// and dry runs.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/agencyops/chattersync/coaching"
	"github.com/agencyops/chattersync/hours"
	"github.com/agencyops/chattersync/report"
	"github.com/agencyops/chattersync/roster"
	"github.com/agencyops/chattersync/store"
)

// =============================================================================
// MEMORY STORE - Implements every store interface in maps
// =============================================================================

type Memory struct {
	mu       sync.RWMutex
	chatters []roster.Chatter
	models   map[string]store.Model
	hours    map[hoursKey]hours.Record
	tasks    map[taskKey]coaching.Task
	logs     map[roster.ChatterID]roster.Day // latest coaching date
	metrics  map[string][]coaching.Metric    // day -> rows
	types    []store.ScoreEventType
	events   []store.ScoreEvent
	settings map[string]string
	runs     []report.RunSummary
	notices  []store.Notification
}

type hoursKey struct {
	ID  roster.ChatterID
	Day string
}

type taskKey struct {
	ID  roster.ChatterID
	Day string
}

func New() *Memory {
	return &Memory{
		models:   make(map[string]store.Model),
		hours:    make(map[hoursKey]hours.Record),
		tasks:    make(map[taskKey]coaching.Task),
		logs:     make(map[roster.ChatterID]roster.Day),
		metrics:  make(map[string][]coaching.Metric),
		settings: make(map[string]string),
	}
}

// =============================================================================
// ROSTER
// =============================================================================

func (m *Memory) ListChatters(_ context.Context, filter store.ChatterFilter) ([]roster.Chatter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []roster.Chatter
	for _, c := range m.chatters {
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.Role != "" && c.Role != filter.Role {
			continue
		}
		if filter.TeamName != "" && c.TeamName != filter.TeamName {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (m *Memory) UpsertChatters(_ context.Context, chatters []roster.Chatter) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range chatters {
		replaced := false
		for i, existing := range m.chatters {
			if existing.DirectoryID != "" && existing.DirectoryID == c.DirectoryID {
				// Preserve the tracker mapping: the roster sync never owns it.
				c.TrackerUserID = existing.TrackerUserID
				if c.ID == "" {
					c.ID = existing.ID
				}
				m.chatters[i] = c
				replaced = true
				break
			}
		}
		if !replaced {
			m.chatters = append(m.chatters, c)
		}
	}
	return len(chatters), nil
}

func (m *Memory) SetTrackerUserID(_ context.Context, id roster.ChatterID, key roster.TrackerUserID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.chatters {
		if m.chatters[i].ID == id {
			m.chatters[i].TrackerUserID = key
			return nil
		}
	}
	return store.ErrNotFound
}

// SeedChatters loads roster fixtures without upsert semantics.
func (m *Memory) SeedChatters(chatters ...roster.Chatter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chatters = append(m.chatters, chatters...)
}

// =============================================================================
// MODELS
// =============================================================================

func (m *Memory) UpsertModels(_ context.Context, models []store.Model) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, mod := range models {
		m.models[mod.DirectoryID] = mod
	}
	return len(models), nil
}

// =============================================================================
// HOURS
// =============================================================================

func (m *Memory) UpsertHours(_ context.Context, records []hours.Record) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range records {
		m.hours[hoursKey{ID: rec.ChatterID, Day: rec.Day.String()}] = rec
	}
	return len(records), nil
}

// HourRecords returns all stored records sorted by (chatter, day).
func (m *Memory) HourRecords() []hours.Record {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]hours.Record, 0, len(m.hours))
	for _, rec := range m.hours {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ChatterID != out[j].ChatterID {
			return out[i].ChatterID < out[j].ChatterID
		}
		return out[i].Day.Before(out[j].Day)
	})
	return out
}

// =============================================================================
// METRICS + COACHING
// =============================================================================

func (m *Memory) SeedMetrics(day roster.Day, rows ...coaching.Metric) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics[day.String()] = append(m.metrics[day.String()], rows...)
}

func (m *Memory) DailyMetrics(_ context.Context, day roster.Day) ([]coaching.Metric, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]coaching.Metric{}, m.metrics[day.String()]...), nil
}

func (m *Memory) SeedCoachingLog(id roster.ChatterID, day roster.Day) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs[id] = day
}

func (m *Memory) LatestCoachingDate(_ context.Context, id roster.ChatterID) (roster.Day, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	day, ok := m.logs[id]
	return day, ok, nil
}

func (m *Memory) CreateTask(_ context.Context, task coaching.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[taskKey{ID: task.ChatterID, Day: task.Day.String()}] = task
	return nil
}

func (m *Memory) TasksForDay(_ context.Context, day roster.Day) ([]coaching.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []coaching.Task
	for k, t := range m.tasks {
		if k.Day == day.String() {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].ChatterName < out[j].ChatterName
	})
	return out, nil
}

// =============================================================================
// SCORE EVENTS
// =============================================================================

func (m *Memory) SeedScoreEventTypes(types ...store.ScoreEventType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.types = append(m.types, types...)
}

func (m *Memory) ListScoreEventTypes(_ context.Context) ([]store.ScoreEventType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]store.ScoreEventType{}, m.types...), nil
}

func (m *Memory) CreateScoreEvent(_ context.Context, ev store.ScoreEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return nil
}

func (m *Memory) ScoreEvents() []store.ScoreEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]store.ScoreEvent{}, m.events...)
}

// =============================================================================
// SETTINGS
// =============================================================================

func (m *Memory) GetSetting(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.settings[key]
	if !ok {
		return "", store.ErrNotFound
	}
	return v, nil
}

func (m *Memory) PutSetting(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[key] = value
	return nil
}

// =============================================================================
// RUNS + NOTIFICATIONS
// =============================================================================

func (m *Memory) RecordRun(_ context.Context, summary report.RunSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, summary)
	return nil
}

func (m *Memory) ListRuns(_ context.Context, limit int) ([]report.RunSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := append([]report.RunSummary{}, m.runs...)
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) Notify(_ context.Context, n store.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notices = append(m.notices, n)
	return nil
}

func (m *Memory) Notifications() []store.Notification {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]store.Notification{}, m.notices...)
}
