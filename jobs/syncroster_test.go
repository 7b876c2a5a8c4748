package jobs_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agencyops/chattersync/config"
	"github.com/agencyops/chattersync/jobs"
	"github.com/agencyops/chattersync/roster"
	"github.com/agencyops/chattersync/store"
	"github.com/agencyops/chattersync/store/memory"
	"github.com/agencyops/chattersync/upstream/airtable"
)

// =============================================================================
// ROSTER SYNC TESTS
// =============================================================================

func rosterFixture() (*memory.Memory, *fakeDirectory, *config.Config) {
	cfg := config.New()
	cfg.ChattersTableID = "tblChatters"
	cfg.ModelsTableID = "tblModels"

	dir := &fakeDirectory{tables: map[string][]airtable.Record{
		"tblChatters": {
			{ID: "rec1", Fields: map[string]any{
				"Full Name": "José Pérez", "Status": "Active",
				"Role": "Chatter", "Team Name": "Team A",
			}},
			{ID: "rec2", Fields: map[string]any{
				"Full Name": "Maria Garcia",
				"Role":      "Chatter",
			}},
			{ID: "rec3", Fields: map[string]any{"Status": "Active"}}, // nameless
		},
		"tblModels": {
			{ID: "m1", Fields: map[string]any{
				"Name": "Bella", "Status": "Active", "Page Type": "VIP",
				"Teams": []any{"Team A", "Team B"}, "Chatbot Active": true,
			}},
		},
	}}
	return memory.New(), dir, cfg
}

func TestRosterSync_MapsFieldsAndSkipsNameless(t *testing.T) {
	// GIVEN: Directory rows including one without a name and one without a
	//        status
	// WHEN: Syncing the roster
	// THEN: Named rows land with the directory id as identity, a missing
	//       status defaults to inactive, and the nameless row is skipped

	mem, dir, cfg := rosterFixture()
	job := &jobs.RosterSync{
		Log:       testLogger(),
		Cfg:       cfg,
		Directory: dir,
		Roster:    mem,
		Models:    mem,
		Runs:      mem,
	}

	require.NoError(t, job.Run(context.Background()))

	chatters, err := mem.ListChatters(context.Background(), store.ChatterFilter{})
	require.NoError(t, err)
	require.Len(t, chatters, 2)

	byDir := map[string]roster.Chatter{}
	for _, c := range chatters {
		byDir[c.DirectoryID] = c
	}
	assert.Equal(t, "José Pérez", byDir["rec1"].FullName)
	assert.Equal(t, "Team A", byDir["rec1"].TeamName)
	assert.Equal(t, roster.StatusInactive, byDir["rec2"].Status, "missing status defaults to inactive")

	runs, err := mem.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "sync-roster", runs[0].Job)
	assert.Equal(t, 1, runs[0].Skipped)
}

func TestRosterSync_PreservesTrackerMapping(t *testing.T) {
	// A chatter mapped before the sync keeps the mapping after a re-sync.

	mem, dir, cfg := rosterFixture()
	mem.SeedChatters(roster.Chatter{
		ID: "c1", DirectoryID: "rec1", FullName: "José Pérez",
		Status: roster.StatusActive, TrackerUserID: 42,
	})

	job := &jobs.RosterSync{Log: testLogger(), Cfg: cfg, Directory: dir, Roster: mem, Models: mem, Runs: mem}
	require.NoError(t, job.Run(context.Background()))

	chatters, err := mem.ListChatters(context.Background(), store.ChatterFilter{})
	require.NoError(t, err)
	for _, c := range chatters {
		if c.DirectoryID == "rec1" {
			assert.Equal(t, roster.TrackerUserID(42), c.TrackerUserID)
		}
	}
}
