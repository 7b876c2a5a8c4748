package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/agencyops/chattersync/config"
	"github.com/agencyops/chattersync/hours"
	"github.com/agencyops/chattersync/match"
	"github.com/agencyops/chattersync/report"
	"github.com/agencyops/chattersync/roster"
	"github.com/agencyops/chattersync/store"
)

// =============================================================================
// HOURS SYNC - Tracker daily activities -> reconciled hour records
// =============================================================================

// HoursSync pulls daily activity totals from every non-excluded tracker
// organization over the lookback window, reconciles them against the
// roster, and upserts one record per (chatter, day).
type HoursSync struct {
	Log      *slog.Logger
	Cfg      *config.Config
	Tracker  TrackerAPI
	Roster   store.RosterStore
	Hours    store.HoursStore
	Settings store.SettingsStore
	Runs     store.RunStore
}

// Run executes one sync. backfillDays overrides the configured lookback
// when positive; it is capped at the configured maximum.
func (j *HoursSync) Run(ctx context.Context, backfillDays int) (report.Reconciliation, error) {
	started := time.Now().UTC()

	days := j.Cfg.LookbackDays
	if backfillDays > 0 {
		days = backfillDays
		if days > j.Cfg.MaxBackfillDays {
			j.Log.Warn("backfill capped", "requested", backfillDays, "cap", j.Cfg.MaxBackfillDays)
			days = j.Cfg.MaxBackfillDays
		}
	}
	stop := roster.Today()
	start := stop.AddDays(-days)
	j.Log.Info("hours sync starting", "start", start, "stop", stop)

	if err := j.authenticate(ctx); err != nil {
		return report.Reconciliation{}, err
	}

	chatters, err := j.Roster.ListChatters(ctx, store.ChatterFilter{})
	if err != nil {
		return report.Reconciliation{}, fmt.Errorf("load roster: %w", err)
	}
	dir := match.NewDirectory(chatters)

	mapped := make(map[roster.TrackerUserID]bool, len(chatters))
	for _, c := range chatters {
		if c.IsMapped() {
			mapped[c.TrackerUserID] = true
		}
	}

	observations, err := j.fetchObservations(ctx, start, stop, mapped)
	if err != nil {
		return report.Reconciliation{}, err
	}

	outcome := hours.Reconcile(observations, dir)
	written, err := j.Hours.UpsertHours(ctx, outcome.Records)
	if err != nil {
		return report.FromOutcome(outcome), fmt.Errorf("upsert hours: %w", err)
	}

	rep := report.FromOutcome(outcome)
	j.Log.Info("hours sync finished",
		"observations", len(observations),
		"records", rep.Records,
		"written", written,
		"matched_by_key", rep.MatchedByKey,
		"matched_by_name", rep.MatchedByName,
		"unmatched", len(rep.Unmatched),
		"skipped", rep.Skipped)
	recordRun(ctx, j.Log, j.Runs, "sync-hours", started,
		len(observations), written, rep.Skipped, len(rep.Unmatched), rep.Render())
	return rep, nil
}

func (j *HoursSync) authenticate(ctx context.Context) error {
	return authenticateTracker(ctx, j.Log, j.Tracker, j.Settings, j.Cfg.TrackerRefreshToken)
}

// fetchObservations pulls daily activities from every organization not in
// the skip list. Names are looked up only for tracker users without a key
// mapping; everyone else resolves by key and never needs one.
func (j *HoursSync) fetchObservations(ctx context.Context, start, stop roster.Day, mapped map[roster.TrackerUserID]bool) ([]hours.Observation, error) {
	orgs, err := j.Tracker.Organizations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}

	names := make(map[roster.TrackerUserID]string)
	var observations []hours.Observation
	for _, org := range orgs {
		if j.Cfg.SkipOrg(org.ID) {
			j.Log.Debug("skipping organization", "org", org.Name, "id", org.ID)
			continue
		}
		activities, err := j.Tracker.DailyActivities(ctx, org.ID, start, stop)
		if err != nil {
			return nil, fmt.Errorf("activities for org %d: %w", org.ID, err)
		}
		for _, act := range activities {
			day, err := roster.ParseDay(act.Date)
			if err != nil {
				// Leave the day zero; the reconciler counts it as skipped.
				day = roster.Day{}
			}
			obs := hours.Observation{
				TrackerUserID:  act.UserID,
				Day:            day,
				TrackedSeconds: act.Tracked,
				OrgID:          org.ID,
			}
			if !mapped[act.UserID] {
				obs.RawName = j.lookupName(ctx, names, act.UserID)
			}
			observations = append(observations, obs)
		}
	}
	return observations, nil
}

// lookupName resolves a tracker user's display name, caching per run.
// A failed lookup yields an empty name; the observation then reconciles
// as unmatched instead of aborting the whole run.
func (j *HoursSync) lookupName(ctx context.Context, cache map[roster.TrackerUserID]string, id roster.TrackerUserID) string {
	if name, ok := cache[id]; ok {
		return name
	}
	name, err := j.Tracker.UserName(ctx, id)
	if err != nil {
		j.Log.Warn("user name lookup failed", "tracker_user_id", id, "error", err)
		name = ""
	}
	cache[id] = name
	return name
}
