/*
Package jobs contains the scheduled sync orchestrators.

PURPOSE:
  Each job wires upstream clients, the matcher, and the store together
  for one scheduled run: fetch, resolve, write, summarize. Jobs hold no
  long-lived state; the CLI constructs one, calls Run once, and exits.

JOBS:
  HoursSync:     Tracker daily activities -> reconciled hour records
  RosterSync:    Directory tables -> chatters and models
  MapUsers:      Tracker accounts -> chatter key mappings
  Coach:         Yesterday's metrics -> prioritized coaching tasks
  MigrateScores: Legacy directory score rows -> score events

ERROR POLICY:
  Boundary failures (unreachable or unauthenticated backends) abort the
  run with an error. Record-level problems - unmatched names, malformed
  rows - are tallied into the run summary and never abort anything.

SEE ALSO:
  - report/: The run summaries every job records
  - cli/: The cobra commands that invoke these jobs
*/
package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/agencyops/chattersync/report"
	"github.com/agencyops/chattersync/roster"
	"github.com/agencyops/chattersync/store"
	"github.com/agencyops/chattersync/upstream/airtable"
	"github.com/agencyops/chattersync/upstream/hubstaff"
)

// =============================================================================
// UPSTREAM INTERFACES - Satisfied by the real clients, faked in tests
// =============================================================================

// TrackerAPI is the slice of the time-tracker client the jobs consume.
type TrackerAPI interface {
	RefreshAccessToken(ctx context.Context, refreshToken string) (newRefresh string, err error)
	Organizations(ctx context.Context) ([]hubstaff.Organization, error)
	Members(ctx context.Context, orgID int64) ([]hubstaff.Member, error)
	UserName(ctx context.Context, userID roster.TrackerUserID) (string, error)
	DailyActivities(ctx context.Context, orgID int64, start, stop roster.Day) ([]hubstaff.Activity, error)
}

// DirectoryAPI is the slice of the directory client the jobs consume.
type DirectoryAPI interface {
	ListRecords(ctx context.Context, tableID string) ([]airtable.Record, error)
}

// =============================================================================
// TRACKER AUTH - Refresh token rotation
// =============================================================================

// authenticateTracker refreshes the tracker access token using the rotated
// token from the settings table, falling back to the bootstrap token from
// config when no rotated token exists yet or the stored one has gone
// stale. The new refresh token is persisted before any data call; a failed
// persist is fatal because the old token is already dead.
func authenticateTracker(ctx context.Context, log *slog.Logger, tracker TrackerAPI, settings store.SettingsStore, bootstrap string) error {
	token, err := settings.GetSetting(ctx, store.SettingTrackerRefreshToken)
	usedStored := err == nil
	if errors.Is(err, store.ErrNotFound) {
		token = bootstrap
	} else if err != nil {
		return fmt.Errorf("load refresh token: %w", err)
	}

	rotated, err := tracker.RefreshAccessToken(ctx, token)
	if err != nil && usedStored && errors.Is(err, store.ErrAuthFailed) && bootstrap != "" {
		// Stored token went stale (for example a manual re-auth elsewhere).
		// One retry with the bootstrap token.
		log.Warn("stored refresh token rejected, retrying with bootstrap token")
		rotated, err = tracker.RefreshAccessToken(ctx, bootstrap)
	}
	if err != nil {
		return fmt.Errorf("tracker auth: %w", err)
	}

	if err := settings.PutSetting(ctx, store.SettingTrackerRefreshToken, rotated); err != nil {
		return fmt.Errorf("persist rotated refresh token: %w", err)
	}
	return nil
}

// =============================================================================
// RUN RECORDING
// =============================================================================

// recordRun persists a run summary. A failed summary write is logged and
// swallowed: the sync itself already succeeded and must report success.
func recordRun(ctx context.Context, log *slog.Logger, runs store.RunStore, job string, started time.Time, processed, written, skipped, unmatched int, detail string) {
	if runs == nil {
		return
	}
	summary := report.RunSummary{
		ID:         uuid.NewString(),
		Job:        job,
		StartedAt:  started,
		FinishedAt: time.Now().UTC(),
		Processed:  processed,
		Written:    written,
		Skipped:    skipped,
		Unmatched:  unmatched,
		Detail:     detail,
	}
	if err := runs.RecordRun(ctx, summary); err != nil {
		log.Warn("failed to record run summary", "job", job, "error", err)
	}
}

// weekKey renders the ISO week a day falls in, e.g. "2024-W02".
func weekKey(day roster.Day) string {
	year, week := day.Time().ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}
