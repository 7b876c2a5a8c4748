package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/agencyops/chattersync/config"
	"github.com/agencyops/chattersync/match"
	"github.com/agencyops/chattersync/roster"
	"github.com/agencyops/chattersync/store"
)

// =============================================================================
// MIGRATE SCORES - Legacy directory score rows -> score events
// =============================================================================

// fallbackEventType is used when a legacy reason matches no configured
// event type by name. It must exist in the store for those rows to carry
// over; otherwise they are skipped and counted.
const fallbackEventType = "Custom"

// MigrateScores is the one-off backfill of the legacy score table from
// the directory into typed score events. This is the only job allowed to
// match names fuzzily: the legacy rows are hand-typed and the alternative
// is losing the history entirely. Everything it matches is reviewed via
// the dry run before a real import.
type MigrateScores struct {
	Log       *slog.Logger
	Cfg       *config.Config
	Directory DirectoryAPI
	Roster    store.RosterStore
	Scores    store.ScoreStore
	Runs      store.RunStore
}

// MigrationResult summarizes one import.
type MigrationResult struct {
	Processed  int
	Imported   int
	Unmatched  []string // legacy names that resolved to no chatter
	Skipped    int      // malformed rows or unmappable reasons
	ByStrategy map[match.Strategy]int
}

func (j *MigrateScores) Run(ctx context.Context, dryRun bool) (MigrationResult, error) {
	started := time.Now().UTC()
	result := MigrationResult{ByStrategy: make(map[match.Strategy]int)}

	records, err := j.Directory.ListRecords(ctx, j.Cfg.ScoresTableID)
	if err != nil {
		return result, fmt.Errorf("list legacy scores: %w", err)
	}

	chatters, err := j.Roster.ListChatters(ctx, store.ChatterFilter{})
	if err != nil {
		return result, fmt.Errorf("load roster: %w", err)
	}
	dir := match.NewDirectory(chatters)

	types, err := j.Scores.ListScoreEventTypes(ctx)
	if err != nil {
		return result, fmt.Errorf("list score event types: %w", err)
	}
	typeByName := make(map[string]store.ScoreEventType, len(types))
	for _, t := range types {
		typeByName[match.Normalize(t.Name)] = t
	}
	fallback, hasFallback := typeByName[match.Normalize(fallbackEventType)]

	seenUnmatched := make(map[string]bool)
	for _, rec := range records {
		result.Processed++

		name := rec.String("Chatter")
		day, dayErr := roster.ParseDay(rec.String("Date"))
		if name == "" || dayErr != nil {
			result.Skipped++
			continue
		}

		res := dir.ResolveFuzzy(name, j.Cfg.FuzzyThreshold)
		if !res.Matched() {
			if !seenUnmatched[name] {
				seenUnmatched[name] = true
				result.Unmatched = append(result.Unmatched, name)
			}
			continue
		}
		result.ByStrategy[res.Strategy]++
		if res.Strategy == match.StrategyFuzzy {
			j.Log.Info("fuzzy match", "legacy_name", name, "chatter", res.Chatter.FullName)
		}

		reason := rec.String("Reason")
		eventType, ok := typeByName[match.Normalize(reason)]
		if !ok {
			if !hasFallback {
				j.Log.Warn("no event type for reason and no fallback", "reason", reason)
				result.Skipped++
				continue
			}
			eventType = fallback
		}

		ev := store.ScoreEvent{
			ChatterID:   res.Chatter.ID,
			Day:         day,
			EventTypeID: eventType.ID,
			Points:      int(math.Round(rec.Float("Points"))),
			Notes:       reason,
			Week:        weekKey(day),
		}
		if !dryRun {
			if err := j.Scores.CreateScoreEvent(ctx, ev); err != nil {
				return result, fmt.Errorf("create score event for %s: %w", res.Chatter.FullName, err)
			}
		}
		result.Imported++
	}

	j.Log.Info("score migration finished",
		"processed", result.Processed,
		"imported", result.Imported,
		"unmatched", len(result.Unmatched),
		"skipped", result.Skipped,
		"dry_run", dryRun)
	if !dryRun {
		recordRun(ctx, j.Log, j.Runs, "migrate-scores", started,
			result.Processed, result.Imported, result.Skipped, len(result.Unmatched),
			fmt.Sprintf("imported=%d unmatched=%d skipped=%d",
				result.Imported, len(result.Unmatched), result.Skipped))
	}
	return result, nil
}
