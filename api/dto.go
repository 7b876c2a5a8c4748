/*
dto.go - Response data structures for the operator API

PURPOSE:
  JSON shapes returned to operators. Kept separate from the domain types
  so the wire format can stay stable while internals move.

SEE ALSO:
  - handlers.go: Handler implementations
*/
package api

import (
	"time"

	"github.com/agencyops/chattersync/coaching"
	"github.com/agencyops/chattersync/report"
	"github.com/agencyops/chattersync/roster"
)

// =============================================================================
// RESPONSE DTOs
// =============================================================================

type ChatterResponse struct {
	ID            string `json:"id"`
	FullName      string `json:"full_name"`
	Status        string `json:"status"`
	Role          string `json:"role,omitempty"`
	TeamName      string `json:"team_name,omitempty"`
	TrackerUserID int64  `json:"tracker_user_id,omitempty"`
	Mapped        bool   `json:"mapped"`
}

func toChatterResponse(c roster.Chatter) ChatterResponse {
	return ChatterResponse{
		ID:            string(c.ID),
		FullName:      c.FullName,
		Status:        string(c.Status),
		Role:          c.Role,
		TeamName:      c.TeamName,
		TrackerUserID: int64(c.TrackerUserID),
		Mapped:        c.IsMapped(),
	}
}

type TaskResponse struct {
	ID                string                  `json:"id"`
	Date              string                  `json:"date"`
	ChatterID         string                  `json:"chatter_id"`
	ChatterName       string                  `json:"chatter_name"`
	TeamLead          string                  `json:"team_lead,omitempty"`
	Priority          int                     `json:"priority"`
	PerfScore         float64                 `json:"perf_score"`
	DaysSinceCoaching int                     `json:"days_since_coaching"`
	RedFlags          []coaching.Flag         `json:"red_flags"`
	TalkingPoints     []coaching.TalkingPoint `json:"talking_points"`
	KPIs              coaching.Snapshot       `json:"kpis"`
	Status            string                  `json:"status"`
}

func toTaskResponse(t coaching.Task) TaskResponse {
	return TaskResponse{
		ID:                t.ID,
		Date:              t.Day.String(),
		ChatterID:         string(t.ChatterID),
		ChatterName:       t.ChatterName,
		TeamLead:          t.TeamLead,
		Priority:          t.Priority,
		PerfScore:         t.PerfScore,
		DaysSinceCoaching: t.DaysSinceCoaching,
		RedFlags:          t.Flags,
		TalkingPoints:     t.TalkingPoints,
		KPIs:              t.KPIs,
		Status:            string(t.Status),
	}
}

type QueueResponse struct {
	Date  string         `json:"date"`
	Tasks []TaskResponse `json:"tasks"`
}

type RunResponse struct {
	ID         string    `json:"id"`
	Job        string    `json:"job"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	DurationMS int64     `json:"duration_ms"`
	Processed  int       `json:"processed"`
	Written    int       `json:"written"`
	Skipped    int       `json:"skipped"`
	Unmatched  int       `json:"unmatched"`
	Detail     string    `json:"detail,omitempty"`
}

func toRunResponse(s report.RunSummary) RunResponse {
	return RunResponse{
		ID:         s.ID,
		Job:        s.Job,
		StartedAt:  s.StartedAt,
		FinishedAt: s.FinishedAt,
		DurationMS: s.Duration().Milliseconds(),
		Processed:  s.Processed,
		Written:    s.Written,
		Skipped:    s.Skipped,
		Unmatched:  s.Unmatched,
		Detail:     s.Detail,
	}
}

type ErrorResponse struct {
	Error string `json:"error"`
}
