package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/agencyops/chattersync/config"
	"github.com/agencyops/chattersync/match"
	"github.com/agencyops/chattersync/roster"
	"github.com/agencyops/chattersync/store"
)

// =============================================================================
// MAP USERS - Tracker accounts -> chatter key mappings
// =============================================================================

// MapUsers discovers tracker accounts that are not yet linked to a chatter
// and claims the matching roster record by name. Each claimed chatter is
// excluded from further matching within the run, so one tracker account
// can never map onto two chatters (or the reverse).
type MapUsers struct {
	Log      *slog.Logger
	Cfg      *config.Config
	Tracker  TrackerAPI
	Roster   store.RosterStore
	Settings store.SettingsStore
	Runs     store.RunStore
}

// MappingResult is what a dry run prints and a real run persists.
type MappingResult struct {
	Mapped    map[roster.TrackerUserID]roster.Chatter
	Unmatched map[roster.TrackerUserID]string // tracker id -> raw name
	Unclaimed []roster.Chatter                // still unmapped after the run
}

// Run maps unlinked tracker accounts. With dryRun set, nothing is written;
// the result reports what would have been.
func (j *MapUsers) Run(ctx context.Context, dryRun bool) (MappingResult, error) {
	started := time.Now().UTC()
	result := MappingResult{
		Mapped:    make(map[roster.TrackerUserID]roster.Chatter),
		Unmatched: make(map[roster.TrackerUserID]string),
	}

	if err := authenticateTracker(ctx, j.Log, j.Tracker, j.Settings, j.Cfg.TrackerRefreshToken); err != nil {
		return result, err
	}

	chatters, err := j.Roster.ListChatters(ctx, store.ChatterFilter{})
	if err != nil {
		return result, fmt.Errorf("load roster: %w", err)
	}
	dir := match.NewDirectory(chatters)

	mapped := make(map[roster.TrackerUserID]bool, len(chatters))
	for _, c := range chatters {
		if c.IsMapped() {
			mapped[c.TrackerUserID] = true
		}
	}

	userIDs, err := j.collectUserIDs(ctx, mapped)
	if err != nil {
		return result, err
	}

	processed := 0
	for _, id := range userIDs {
		processed++
		name, err := j.Tracker.UserName(ctx, id)
		if err != nil {
			j.Log.Warn("user name lookup failed", "tracker_user_id", id, "error", err)
			result.Unmatched[id] = ""
			continue
		}

		res := dir.Resolve(name, 0)
		if !res.Matched() {
			result.Unmatched[id] = name
			continue
		}

		if !dryRun {
			if err := j.Roster.SetTrackerUserID(ctx, res.Chatter.ID, id); err != nil {
				return result, fmt.Errorf("persist mapping %s -> %d: %w", res.Chatter.ID, id, err)
			}
		}
		// Claimed either way: a dry run must report the same pairings a
		// real run would produce.
		dir.Exclude(res.Chatter.ID)
		result.Mapped[id] = *res.Chatter
		j.Log.Info("mapped tracker user",
			"tracker_user_id", id,
			"chatter", res.Chatter.FullName,
			"strategy", res.Strategy,
			"dry_run", dryRun)
	}
	result.Unclaimed = dir.Unclaimed()

	j.Log.Info("user mapping finished",
		"candidates", processed,
		"mapped", len(result.Mapped),
		"unmatched", len(result.Unmatched),
		"unclaimed", len(result.Unclaimed),
		"dry_run", dryRun)
	if !dryRun {
		recordRun(ctx, j.Log, j.Runs, "map-users", started,
			processed, len(result.Mapped), 0, len(result.Unmatched),
			fmt.Sprintf("mapped=%d unmatched=%d unclaimed=%d",
				len(result.Mapped), len(result.Unmatched), len(result.Unclaimed)))
	}
	return result, nil
}

// collectUserIDs gathers every tracker user id across non-excluded
// organizations that is not already mapped, deduplicated in first-seen
// order.
func (j *MapUsers) collectUserIDs(ctx context.Context, mapped map[roster.TrackerUserID]bool) ([]roster.TrackerUserID, error) {
	orgs, err := j.Tracker.Organizations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}

	seen := make(map[roster.TrackerUserID]bool)
	var out []roster.TrackerUserID
	for _, org := range orgs {
		if j.Cfg.SkipOrg(org.ID) {
			continue
		}
		members, err := j.Tracker.Members(ctx, org.ID)
		if err != nil {
			return nil, fmt.Errorf("members for org %d: %w", org.ID, err)
		}
		for _, m := range members {
			if m.UserID == 0 || mapped[m.UserID] || seen[m.UserID] {
				continue
			}
			seen[m.UserID] = true
			out = append(out, m.UserID)
		}
	}
	return out, nil
}
