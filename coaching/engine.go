package coaching

import (
	"github.com/google/uuid"

	"github.com/agencyops/chattersync/roster"
)

// =============================================================================
// ENGINE - Threshold evaluation and priority scoring
// =============================================================================

// Engine evaluates metric rows against a fixed rule table. It is pure:
// no I/O, no clock, no mutation of its inputs.
type Engine struct {
	rules Rules
}

func NewEngine(rules Rules) *Engine {
	return &Engine{rules: rules}
}

// Eligible is the minimum-engagement gate. Rows below the clocked-hours
// floor are silently excluded - not an error, not a flag. The roster half
// of eligibility (active chatter-role member of the team) is the caller's
// job, since the engine never sees the roster.
func (e *Engine) Eligible(m Metric) bool {
	return m.ClockedHours >= e.rules.MinClockedHours
}

// Evaluate applies the threshold rules and scores priority:
//
//	+2 if daysSinceCoaching >= OverdueDays (never coached counts as 999)
//	+2 if two or more flags, else +1 for exactly one flag
//
// Priority is therefore always in {0,1,2,3,4}. Priority 0 is the
// suppression rule: recently coached with at most one flag - do not
// re-queue them.
func (e *Engine) Evaluate(m Metric, daysSinceCoaching int) Evaluation {
	var ev Evaluation

	for _, th := range e.rules.Thresholds {
		v := m.value(th.KPI)
		if v < th.Min {
			ev.Flags = append(ev.Flags, Flag{KPI: th.Label, Value: v, Threshold: th.Min})
			if tp, ok := TalkingPointFor(th.Label); ok {
				ev.TalkingPoints = append(ev.TalkingPoints, tp)
			}
		}
	}

	if daysSinceCoaching >= e.rules.OverdueDays {
		ev.Priority += 2
	}
	switch {
	case len(ev.Flags) >= 2:
		ev.Priority += 2
	case len(ev.Flags) == 1:
		ev.Priority++
	}

	return ev
}

// BuildTask materializes a Task from an evaluation. Returns nil when the
// evaluation's priority is 0 - no task is created for suppressed rows.
func (e *Engine) BuildTask(chatter roster.Chatter, m Metric, daysSinceCoaching int, ev Evaluation, forDay roster.Day, teamLead, source string) *Task {
	if ev.Priority == 0 {
		return nil
	}
	return &Task{
		ID:                uuid.NewString(),
		Day:               forDay,
		ChatterID:         chatter.ID,
		ChatterName:       chatter.FullName,
		TeamLead:          teamLead,
		Priority:          ev.Priority,
		PerfScore:         m.SalesPerHour,
		DaysSinceCoaching: daysSinceCoaching,
		Flags:             ev.Flags,
		TalkingPoints:     ev.TalkingPoints,
		KPIs: Snapshot{
			Sales:        m.Sales,
			SalesPerHour: m.SalesPerHour,
			GoldenRatio:  m.GoldenRatio,
			FanCVR:       m.FanCVR,
			UnlockRate:   m.UnlockRate,
			FansChatted:  m.FansChatted,
			ClockedHours: m.ClockedHours,
		},
		Source: source,
		Status: TaskPending,
	}
}
