package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/agencyops/chattersync/coaching"
	"github.com/agencyops/chattersync/config"
	"github.com/agencyops/chattersync/match"
	"github.com/agencyops/chattersync/roster"
	"github.com/agencyops/chattersync/store"
)

// =============================================================================
// COACH - Yesterday's metrics -> prioritized coaching tasks
// =============================================================================

// Coach evaluates yesterday's performance metrics for the teams whose
// shift is starting and creates one coaching task per flagged chatter.
// Notification failures never block task creation.
type Coach struct {
	Log     *slog.Logger
	Cfg     *config.Config
	Roster  store.RosterStore
	Metrics store.MetricsStore
	Store   store.CoachingStore
	Notify  store.NotificationSink
	Runs    store.RunStore
}

// CoachResult summarizes one run for the CLI.
type CoachResult struct {
	Day       roster.Day
	Teams     []string
	Evaluated int
	Tasks     []coaching.Task
	Skipped   int // below the clocked-hours floor or no metric row
}

// Run evaluates the day before `now`. With allTeams set, every team is
// evaluated regardless of shift windows (the manual catch-up mode).
func (j *Coach) Run(ctx context.Context, now time.Time, allTeams bool) (CoachResult, error) {
	started := time.Now().UTC()
	day := roster.DayOf(now).AddDays(-1)
	result := CoachResult{Day: day}

	shifts := j.Cfg.ShiftTable()
	leadByTeam := make(map[string]roster.Shift, len(shifts))
	for _, s := range shifts {
		leadByTeam[s.TeamName] = s
	}

	var teams map[string]bool
	if !allTeams {
		teams = make(map[string]bool)
		hour := now.UTC().Hour()
		for _, s := range shifts {
			if s.StartsNear(hour) {
				teams[s.TeamName] = true
				result.Teams = append(result.Teams, s.TeamName)
			}
		}
		if len(teams) == 0 {
			j.Log.Info("no shift starting, nothing to coach", "hour_utc", hour)
			return result, nil
		}
	}

	chatters, err := j.Roster.ListChatters(ctx, store.ChatterFilter{
		Status: roster.StatusActive,
		Role:   roster.RoleChatter,
	})
	if err != nil {
		return result, fmt.Errorf("load roster: %w", err)
	}

	metrics, err := j.Metrics.DailyMetrics(ctx, day)
	if err != nil {
		return result, fmt.Errorf("load metrics for %s: %w", day, err)
	}
	// The metrics table spells names its own way; normalize both sides.
	byName := make(map[string]coaching.Metric, len(metrics))
	for _, m := range metrics {
		byName[match.Normalize(m.EmployeeName)] = m
	}

	engine := coaching.NewEngine(j.Cfg.Rules())
	for _, c := range chatters {
		if teams != nil && !teams[c.TeamName] {
			continue
		}

		metric, ok := byName[match.Normalize(c.FullName)]
		if !ok || !engine.Eligible(metric) {
			// No metric row means no tracked work that day; below the
			// floor means not enough of it to judge.
			result.Skipped++
			continue
		}
		result.Evaluated++

		daysSince := coaching.DaysSinceNever
		if last, coached, err := j.Store.LatestCoachingDate(ctx, c.ID); err != nil {
			return result, fmt.Errorf("coaching history for %s: %w", c.ID, err)
		} else if coached {
			daysSince = roster.DaysBetween(last, day)
		}

		ev := engine.Evaluate(metric, daysSince)
		shift := leadByTeam[c.TeamName]
		task := engine.BuildTask(c, metric, daysSince, ev, day, shift.LeadName, "daily_sync")
		if task == nil {
			continue
		}
		if err := j.Store.CreateTask(ctx, *task); err != nil {
			return result, fmt.Errorf("create task for %s: %w", c.FullName, err)
		}
		result.Tasks = append(result.Tasks, *task)
		j.notifyLead(ctx, shift, *task)
	}

	j.Log.Info("coaching run finished",
		"day", day,
		"teams", result.Teams,
		"all_teams", allTeams,
		"evaluated", result.Evaluated,
		"tasks", len(result.Tasks),
		"skipped", result.Skipped)
	recordRun(ctx, j.Log, j.Runs, "coach", started,
		result.Evaluated, len(result.Tasks), result.Skipped, 0,
		fmt.Sprintf("day=%s tasks=%d", day, len(result.Tasks)))
	return result, nil
}

// notifyLead pushes the task to the team lead. Failures are logged and
// dropped: the task already exists and the queue view will show it.
func (j *Coach) notifyLead(ctx context.Context, shift roster.Shift, task coaching.Task) {
	if j.Notify == nil || shift.LeadID == "" {
		return
	}
	err := j.Notify.Notify(ctx, store.Notification{
		UserID: shift.LeadID,
		Type:   "coaching_task",
		Title:  fmt.Sprintf("Coaching: %s (P%d)", task.ChatterName, task.Priority),
		Message: fmt.Sprintf("%s flagged on %d KPI(s) for %s",
			task.ChatterName, len(task.Flags), task.Day),
		ActionURL: "/coaching/" + task.ID,
	})
	if err != nil {
		j.Log.Warn("notification failed", "lead", shift.LeadName, "task", task.ID, "error", err)
	}
}
