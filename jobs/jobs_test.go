package jobs_test

import (
	"context"
	"io"
	"log/slog"

	"github.com/agencyops/chattersync/roster"
	"github.com/agencyops/chattersync/store"
	"github.com/agencyops/chattersync/upstream/airtable"
	"github.com/agencyops/chattersync/upstream/hubstaff"
)

// =============================================================================
// TEST FAKES - Upstream APIs
// =============================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeTracker scripts the tracker API for one run.
type fakeTracker struct {
	// rejectTokens refuse a refresh with an auth failure.
	rejectTokens map[string]bool
	rotated      string // returned as the new refresh token
	refreshCalls []string

	orgs       []hubstaff.Organization
	members    map[int64][]hubstaff.Member
	names      map[roster.TrackerUserID]string
	activities map[int64][]hubstaff.Activity
}

func newFakeTracker() *fakeTracker {
	return &fakeTracker{
		rejectTokens: make(map[string]bool),
		rotated:      "rotated-token",
		members:      make(map[int64][]hubstaff.Member),
		names:        make(map[roster.TrackerUserID]string),
		activities:   make(map[int64][]hubstaff.Activity),
	}
}

func (f *fakeTracker) RefreshAccessToken(_ context.Context, refreshToken string) (string, error) {
	f.refreshCalls = append(f.refreshCalls, refreshToken)
	if f.rejectTokens[refreshToken] {
		return "", &store.StatusError{Op: "token refresh", Status: 401, Body: "invalid_grant"}
	}
	return f.rotated, nil
}

func (f *fakeTracker) Organizations(context.Context) ([]hubstaff.Organization, error) {
	return f.orgs, nil
}

func (f *fakeTracker) Members(_ context.Context, orgID int64) ([]hubstaff.Member, error) {
	return f.members[orgID], nil
}

func (f *fakeTracker) UserName(_ context.Context, userID roster.TrackerUserID) (string, error) {
	name, ok := f.names[userID]
	if !ok {
		return "", store.ErrNotFound
	}
	return name, nil
}

func (f *fakeTracker) DailyActivities(_ context.Context, orgID int64, _, _ roster.Day) ([]hubstaff.Activity, error) {
	return f.activities[orgID], nil
}

// fakeDirectory serves canned records per table.
type fakeDirectory struct {
	tables map[string][]airtable.Record
}

func (f *fakeDirectory) ListRecords(_ context.Context, tableID string) ([]airtable.Record, error) {
	return f.tables[tableID], nil
}
