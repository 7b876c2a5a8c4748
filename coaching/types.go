/*
Package coaching turns yesterday's performance metrics into prioritized
coaching tasks for team leads.

PURPOSE:
  Evaluates threshold rules against per-chatter daily KPIs, producing red
  flags, canned talking points, and an additive priority score. Rules are
  data (a Rules struct handed to the engine at construction), not code,
  so thresholds can change in configuration without redeploying.

KEY CONCEPTS IN THIS FILE (types.go):
  - Metric: One chatter's KPIs for one day (missing values are zero)
  - Flag: A KPI below its threshold, with the observed value
  - TalkingPoint: Fixed coaching template for one flagged KPI
  - Task: The created coaching item, with a frozen KPI snapshot

SNAPSHOT SEMANTICS:
  A Task denormalizes the KPI values that produced its flags. Later edits
  to the upstream metric row never retroactively change task content.

SEE ALSO:
  - rules.go: The rule table and talking-point templates
  - engine.go: Evaluation and priority scoring
*/
package coaching

import (
	"github.com/agencyops/chattersync/roster"
)

// =============================================================================
// METRIC - One chatter-day of KPIs
// =============================================================================

// Metric carries the raw performance numbers for one chatter on one day.
// Zero values stand in for missing upstream KPIs; a chatter with no
// recorded metric therefore flags on everything. That is a deliberate
// product decision carried over from the original pipeline, not a bug.
type Metric struct {
	EmployeeName string
	Day          roster.Day
	Sales        float64
	SalesPerHour float64
	GoldenRatio  float64
	FanCVR       float64
	UnlockRate   float64
	FansChatted  int
	ClockedHours float64
}

// value returns the metric field a threshold rule refers to.
func (m Metric) value(kpi KPI) float64 {
	switch kpi {
	case KPIGoldenRatio:
		return m.GoldenRatio
	case KPIFanCVR:
		return m.FanCVR
	case KPISalesPerHour:
		return m.SalesPerHour
	case KPIUnlockRate:
		return m.UnlockRate
	default:
		return 0
	}
}

// =============================================================================
// EVALUATION OUTPUT
// =============================================================================

// Flag records one KPI below threshold for a given day.
type Flag struct {
	KPI       string  `json:"kpi"`
	Value     float64 `json:"value"`
	Threshold float64 `json:"threshold"`
}

// TalkingPoint is the fixed coaching template attached to a flag:
// the target value plus three canned action items. Pure lookup.
type TalkingPoint struct {
	KPI     string   `json:"kpi"`
	Target  string   `json:"target"`
	Actions []string `json:"actions"`
}

// Evaluation is the rule engine's verdict for one metric row.
type Evaluation struct {
	Flags         []Flag
	TalkingPoints []TalkingPoint
	Priority      int
}

// =============================================================================
// TASK - The coaching item handed to a team lead
// =============================================================================

type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskDone       TaskStatus = "done"
)

// Snapshot freezes the KPI values at evaluation time.
type Snapshot struct {
	Sales        float64 `json:"sales"`
	SalesPerHour float64 `json:"sales_per_hour"`
	GoldenRatio  float64 `json:"golden_ratio"`
	FanCVR       float64 `json:"fan_cvr"`
	UnlockRate   float64 `json:"unlock_rate"`
	FansChatted  int     `json:"fans_chatted"`
	ClockedHours float64 `json:"clocked_hours"`
}

// Task is immutable once created except for status transitions, which are
// performed by downstream consumers, never by the sync jobs.
type Task struct {
	ID                string
	Day               roster.Day
	ChatterID         roster.ChatterID
	ChatterName       string
	TeamLead          string
	Priority          int
	PerfScore         float64 // sales per hour at evaluation time
	DaysSinceCoaching int
	Flags             []Flag
	TalkingPoints     []TalkingPoint
	KPIs              Snapshot
	Source            string
	Status            TaskStatus
}
