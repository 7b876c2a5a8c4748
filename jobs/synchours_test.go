package jobs_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agencyops/chattersync/config"
	"github.com/agencyops/chattersync/jobs"
	"github.com/agencyops/chattersync/roster"
	"github.com/agencyops/chattersync/store"
	"github.com/agencyops/chattersync/store/memory"
	"github.com/agencyops/chattersync/upstream/hubstaff"
)

// =============================================================================
// HOURS SYNC TESTS
// =============================================================================

func newHoursSync(mem *memory.Memory, tracker *fakeTracker, cfg *config.Config) *jobs.HoursSync {
	return &jobs.HoursSync{
		Log:      testLogger(),
		Cfg:      cfg,
		Tracker:  tracker,
		Roster:   mem,
		Hours:    mem,
		Settings: mem,
		Runs:     mem,
	}
}

func TestHoursSync_EndToEnd(t *testing.T) {
	// GIVEN: A mapped chatter tracked in two orgs on the same day, an
	//        unmapped chatter resolvable by name, an unknown account, and
	//        an excluded legacy org
	// WHEN: Running the sync
	// THEN: Hours merge per (chatter, day), the name fallback applies, the
	//       unknown account is reported, and the legacy org never counts

	cfg := config.New()
	cfg.TrackerRefreshToken = "bootstrap"
	cfg.SkipOrgIDs = []int64{999}

	mem := memory.New()
	mem.SeedChatters(
		roster.Chatter{ID: "c-jose", FullName: "José Pérez", Status: roster.StatusActive, TrackerUserID: 42},
		roster.Chatter{ID: "c-maria", FullName: "Maria Garcia", Status: roster.StatusActive},
	)

	tracker := newFakeTracker()
	tracker.orgs = []hubstaff.Organization{{ID: 1, Name: "Main"}, {ID: 2, Name: "Second"}, {ID: 999, Name: "Legacy"}}
	tracker.names[77] = "maria garcia"
	tracker.names[88] = "Ghost Worker"
	tracker.activities[1] = []hubstaff.Activity{
		{UserID: 42, Date: "2026-08-30", Tracked: 12600}, // 3.5h
		{UserID: 77, Date: "2026-08-30", Tracked: 3600},
		{UserID: 88, Date: "2026-08-30", Tracked: 3600},
	}
	tracker.activities[2] = []hubstaff.Activity{
		{UserID: 42, Date: "2026-08-30", Tracked: 8100}, // 2.25h
	}
	tracker.activities[999] = []hubstaff.Activity{
		{UserID: 42, Date: "2026-08-30", Tracked: 36000}, // must never count
	}

	rep, err := newHoursSync(mem, tracker, cfg).Run(context.Background(), 0)
	require.NoError(t, err)

	records := mem.HourRecords()
	require.Len(t, records, 2)
	assert.Equal(t, roster.ChatterID("c-jose"), records[0].ChatterID)
	assert.True(t, records[0].Hours.Equal(decimal.RequireFromString("5.75")), "got %s", records[0].Hours)
	assert.Equal(t, roster.ChatterID("c-maria"), records[1].ChatterID)
	assert.True(t, records[1].Hours.Equal(decimal.RequireFromString("1")))

	require.Len(t, rep.Unmatched, 1)
	assert.Equal(t, "Ghost Worker", rep.Unmatched[0].Name)
	assert.Equal(t, 2, rep.MatchedByKey)
	assert.Equal(t, 1, rep.MatchedByName)

	runs, err := mem.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "sync-hours", runs[0].Job)
	assert.Equal(t, 1, runs[0].Unmatched)
}

func TestHoursSync_RotatedTokenPersistedBeforeFetch(t *testing.T) {
	// GIVEN: A first run bootstrapped from config
	// WHEN: The sync authenticates
	// THEN: The rotated refresh token lands in settings for the next run

	cfg := config.New()
	cfg.TrackerRefreshToken = "bootstrap"

	mem := memory.New()
	tracker := newFakeTracker()
	tracker.rotated = "rotated-1"

	_, err := newHoursSync(mem, tracker, cfg).Run(context.Background(), 0)
	require.NoError(t, err)

	stored, err := mem.GetSetting(context.Background(), store.SettingTrackerRefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "rotated-1", stored)
	assert.Equal(t, []string{"bootstrap"}, tracker.refreshCalls)
}

func TestHoursSync_StaleStoredTokenFallsBackToBootstrap(t *testing.T) {
	// GIVEN: A stored refresh token the tracker no longer accepts
	// WHEN: Authenticating
	// THEN: One retry with the bootstrap token succeeds and the new
	//       rotation is persisted

	cfg := config.New()
	cfg.TrackerRefreshToken = "bootstrap"

	mem := memory.New()
	require.NoError(t, mem.PutSetting(context.Background(), store.SettingTrackerRefreshToken, "stale"))

	tracker := newFakeTracker()
	tracker.rejectTokens["stale"] = true
	tracker.rotated = "rotated-2"

	_, err := newHoursSync(mem, tracker, cfg).Run(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"stale", "bootstrap"}, tracker.refreshCalls)

	stored, err := mem.GetSetting(context.Background(), store.SettingTrackerRefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "rotated-2", stored)
}

func TestHoursSync_AuthFailureAbortsRun(t *testing.T) {
	// GIVEN: Every refresh token rejected
	// WHEN: Running
	// THEN: The run aborts with an auth failure and writes nothing

	cfg := config.New()
	cfg.TrackerRefreshToken = "bootstrap"

	mem := memory.New()
	tracker := newFakeTracker()
	tracker.rejectTokens["bootstrap"] = true

	_, err := newHoursSync(mem, tracker, cfg).Run(context.Background(), 0)
	require.Error(t, err)
	assert.True(t, store.IsBoundaryFailure(err))
	assert.Empty(t, mem.HourRecords())
}

func TestHoursSync_RerunIsIdempotent(t *testing.T) {
	// GIVEN: A completed sync
	// WHEN: Running again over the same upstream data
	// THEN: The stored records are unchanged

	cfg := config.New()
	cfg.TrackerRefreshToken = "bootstrap"

	mem := memory.New()
	mem.SeedChatters(roster.Chatter{ID: "c1", FullName: "Jose Perez", Status: roster.StatusActive, TrackerUserID: 42})

	tracker := newFakeTracker()
	tracker.orgs = []hubstaff.Organization{{ID: 1, Name: "Main"}}
	tracker.activities[1] = []hubstaff.Activity{{UserID: 42, Date: "2026-08-30", Tracked: 12600}}

	job := newHoursSync(mem, tracker, cfg)
	_, err := job.Run(context.Background(), 0)
	require.NoError(t, err)
	first := mem.HourRecords()

	_, err = job.Run(context.Background(), 0)
	require.NoError(t, err)
	second := mem.HourRecords()

	require.Len(t, second, len(first))
	for i := range first {
		assert.True(t, first[i].Hours.Equal(second[i].Hours))
	}
}
