package jobs_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agencyops/chattersync/config"
	"github.com/agencyops/chattersync/jobs"
	"github.com/agencyops/chattersync/match"
	"github.com/agencyops/chattersync/roster"
	"github.com/agencyops/chattersync/store"
	"github.com/agencyops/chattersync/store/memory"
	"github.com/agencyops/chattersync/upstream/airtable"
)

// =============================================================================
// SCORE MIGRATION TESTS
// =============================================================================

func scoreRecord(name, date, reason string, points float64) airtable.Record {
	return airtable.Record{
		ID: "rec-" + name,
		Fields: map[string]any{
			"Chatter": name,
			"Date":    date,
			"Reason":  reason,
			"Points":  points,
		},
	}
}

func migrationFixture() (*memory.Memory, *fakeDirectory, *config.Config) {
	cfg := config.New()
	cfg.ScoresTableID = "tblScores"

	mem := memory.New()
	mem.SeedChatters(
		roster.Chatter{ID: "c-jose", FullName: "Jose Perez", Status: roster.StatusActive},
		roster.Chatter{ID: "c-maria", FullName: "Maria Garcia", Status: roster.StatusActive},
	)
	mem.SeedScoreEventTypes(
		store.ScoreEventType{ID: "t-quality", Name: "Quality Bonus", Points: 5, Category: "bonus"},
		store.ScoreEventType{ID: "t-custom", Name: "Custom", Points: 0, Category: "custom"},
	)

	dir := &fakeDirectory{tables: map[string][]airtable.Record{
		"tblScores": {
			scoreRecord("Jose Peres", "2024-01-10", "Quality Bonus", 5), // typo -> fuzzy
			scoreRecord("Maria Garcia", "2024-01-11", "Helped onboarding", 3),
			scoreRecord("Unknown Person Entirely", "2024-01-12", "Quality Bonus", 2),
			scoreRecord("", "2024-01-13", "Quality Bonus", 1),
		},
	}}
	return mem, dir, cfg
}

func newMigrate(mem *memory.Memory, dir *fakeDirectory, cfg *config.Config) *jobs.MigrateScores {
	return &jobs.MigrateScores{
		Log:       testLogger(),
		Cfg:       cfg,
		Directory: dir,
		Roster:    mem,
		Scores:    mem,
		Runs:      mem,
	}
}

func TestMigrateScores_FuzzyMatchAndFallbackType(t *testing.T) {
	// GIVEN: Legacy rows with a typo'd name, an unmappable reason, an
	//        unknown person, and a blank name
	// WHEN: Importing for real
	// THEN: The typo matches fuzzily, the odd reason falls back to the
	//       Custom type, and the rest are reported or skipped

	mem, dir, cfg := migrationFixture()

	result, err := newMigrate(mem, dir, cfg).Run(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Processed)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Unmatched, 1)
	assert.Equal(t, "Unknown Person Entirely", result.Unmatched[0])
	assert.Equal(t, 1, result.ByStrategy[match.StrategyFuzzy])
	assert.Equal(t, 1, result.ByStrategy[match.StrategyExactName])

	events := mem.ScoreEvents()
	require.Len(t, events, 2)
	assert.Equal(t, roster.ChatterID("c-jose"), events[0].ChatterID)
	assert.Equal(t, "t-quality", events[0].EventTypeID)
	assert.Equal(t, 5, events[0].Points)
	assert.Equal(t, "2024-W02", events[0].Week)

	assert.Equal(t, roster.ChatterID("c-maria"), events[1].ChatterID)
	assert.Equal(t, "t-custom", events[1].EventTypeID)
	assert.Equal(t, "Helped onboarding", events[1].Notes)
}

func TestMigrateScores_DryRunWritesNothing(t *testing.T) {
	mem, dir, cfg := migrationFixture()

	result, err := newMigrate(mem, dir, cfg).Run(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Empty(t, mem.ScoreEvents())

	runs, err := mem.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
