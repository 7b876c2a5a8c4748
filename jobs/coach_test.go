package jobs_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agencyops/chattersync/coaching"
	"github.com/agencyops/chattersync/config"
	"github.com/agencyops/chattersync/jobs"
	"github.com/agencyops/chattersync/roster"
	"github.com/agencyops/chattersync/store/memory"
)

// =============================================================================
// COACHING RUN TESTS
// =============================================================================

// shiftsAt14 covers Team A with a lead starting at 14:00 UTC.
func coachFixture() (*memory.Memory, *config.Config) {
	cfg := config.New()
	cfg.Shifts = []config.ShiftEntry{
		{LeadID: "lead-1", LeadName: "Lena Lead", TeamName: "Team A", StartHour: 14, EndHour: 22},
		{LeadID: "lead-2", LeadName: "Boris Lead", TeamName: "Team B", StartHour: 6, EndHour: 14},
	}

	mem := memory.New()
	mem.SeedChatters(
		roster.Chatter{ID: "c-jose", FullName: "Jose Perez", Status: roster.StatusActive, Role: roster.RoleChatter, TeamName: "Team A"},
		roster.Chatter{ID: "c-bob", FullName: "Bob Brown", Status: roster.StatusActive, Role: roster.RoleChatter, TeamName: "Team B"},
		roster.Chatter{ID: "c-short", FullName: "Sal Short", Status: roster.StatusActive, Role: roster.RoleChatter, TeamName: "Team A"},
		roster.Chatter{ID: "c-lead", FullName: "Lena Lead", Status: roster.StatusActive, Role: "Team Lead", TeamName: "Team A"},
	)

	day := roster.NewDay(2026, time.August, 30)
	mem.SeedMetrics(day,
		// Jose: two failing KPIs, never coached -> priority 4.
		coaching.Metric{EmployeeName: "jose perez", Day: day, SalesPerHour: 20, GoldenRatio: 10, FanCVR: 9, UnlockRate: 25, ClockedHours: 8},
		// Bob (Team B): failing, but his shift is not starting.
		coaching.Metric{EmployeeName: "Bob Brown", Day: day, SalesPerHour: 5, GoldenRatio: 5, FanCVR: 1, UnlockRate: 1, ClockedHours: 8},
		// Sal: under the clocked-hours floor, never evaluated.
		coaching.Metric{EmployeeName: "Sal Short", Day: day, SalesPerHour: 0, GoldenRatio: 0, FanCVR: 0, UnlockRate: 0, ClockedHours: 2},
	)
	return mem, cfg
}

func newCoach(mem *memory.Memory, cfg *config.Config) *jobs.Coach {
	return &jobs.Coach{
		Log:     testLogger(),
		Cfg:     cfg,
		Roster:  mem,
		Metrics: mem,
		Store:   mem,
		Notify:  mem,
		Runs:    mem,
	}
}

func TestCoach_ShiftWindowSelectsTeams(t *testing.T) {
	// GIVEN: Team A's shift starting at 14:00 UTC
	// WHEN: Running at 14:00
	// THEN: Only Team A is evaluated; the failing Team B chatter waits for
	//       his own shift

	mem, cfg := coachFixture()
	at := time.Date(2026, time.August, 31, 14, 0, 0, 0, time.UTC)

	result, err := newCoach(mem, cfg).Run(context.Background(), at, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"Team A"}, result.Teams)
	assert.Equal(t, "2026-08-30", result.Day.String())

	require.Len(t, result.Tasks, 1)
	task := result.Tasks[0]
	assert.Equal(t, "Jose Perez", task.ChatterName)
	assert.Equal(t, 4, task.Priority)
	assert.Equal(t, coaching.DaysSinceNever, task.DaysSinceCoaching)
	assert.Equal(t, "Lena Lead", task.TeamLead)
	assert.Len(t, task.Flags, 2) // golden_ratio and sales_per_hour below their minimums

	// Sal is below the floor, Bob off-shift, the lead is not a chatter.
	assert.Equal(t, 1, result.Evaluated)
	assert.Equal(t, 1, result.Skipped)
}

func TestCoach_NotifiesLeadWithoutBlocking(t *testing.T) {
	mem, cfg := coachFixture()
	at := time.Date(2026, time.August, 31, 14, 0, 0, 0, time.UTC)

	_, err := newCoach(mem, cfg).Run(context.Background(), at, false)
	require.NoError(t, err)

	notices := mem.Notifications()
	require.Len(t, notices, 1)
	assert.Equal(t, "lead-1", notices[0].UserID)
	assert.Equal(t, "coaching_task", notices[0].Type)
}

func TestCoach_AllTeamsIgnoresShiftWindows(t *testing.T) {
	// GIVEN: The catch-up flag
	// WHEN: Running at an hour when no shift starts
	// THEN: Every team is evaluated

	mem, cfg := coachFixture()
	at := time.Date(2026, time.August, 31, 3, 0, 0, 0, time.UTC)

	result, err := newCoach(mem, cfg).Run(context.Background(), at, true)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Evaluated)
	assert.Len(t, result.Tasks, 2)
}

func TestCoach_NoShiftStartingDoesNothing(t *testing.T) {
	mem, cfg := coachFixture()
	at := time.Date(2026, time.August, 31, 3, 0, 0, 0, time.UTC)

	result, err := newCoach(mem, cfg).Run(context.Background(), at, false)
	require.NoError(t, err)
	assert.Empty(t, result.Tasks)
	assert.Zero(t, result.Evaluated)
}

func TestCoach_RecentCoachingSuppressesHealthyRow(t *testing.T) {
	// GIVEN: A chatter coached yesterday whose KPIs are all healthy
	// WHEN: Running
	// THEN: No task - priority 0 rows never reach the queue

	cfg := config.New()
	cfg.Shifts = []config.ShiftEntry{
		{LeadID: "lead-1", LeadName: "Lena Lead", TeamName: "Team A", StartHour: 14, EndHour: 22},
	}
	mem := memory.New()
	mem.SeedChatters(roster.Chatter{ID: "c1", FullName: "Jose Perez", Status: roster.StatusActive, Role: roster.RoleChatter, TeamName: "Team A"})

	day := roster.NewDay(2026, time.August, 30)
	mem.SeedMetrics(day, coaching.Metric{
		EmployeeName: "Jose Perez", Day: day,
		SalesPerHour: 50, GoldenRatio: 40, FanCVR: 10, UnlockRate: 30, ClockedHours: 8,
	})
	mem.SeedCoachingLog("c1", day.AddDays(-1))

	at := time.Date(2026, time.August, 31, 14, 0, 0, 0, time.UTC)
	result, err := newCoach(mem, cfg).Run(context.Background(), at, false)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Evaluated)
	assert.Empty(t, result.Tasks)

	tasks, err := mem.TasksForDay(context.Background(), day)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}
