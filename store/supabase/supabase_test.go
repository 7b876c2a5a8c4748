package supabase_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agencyops/chattersync/hours"
	"github.com/agencyops/chattersync/match"
	"github.com/agencyops/chattersync/roster"
	"github.com/agencyops/chattersync/store"
	"github.com/agencyops/chattersync/store/supabase"
)

// =============================================================================
// UPSERT TESTS
// =============================================================================

func TestUpsertHours_MergeDuplicatesAndBatching(t *testing.T) {
	// GIVEN: 150 reconciled hour records
	// WHEN: Upserting
	// THEN: Two batches go out with merge-duplicates semantics on the
	//       (chatter_id, date) key, and hours arrive as fixed 2-dp text

	type call struct {
		prefer   string
		conflict string
		rows     []map[string]any
	}
	var calls []call
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/chatter_hours", r.URL.Path)
		var rows []map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&rows))
		calls = append(calls, call{
			prefer:   r.Header.Get("Prefer"),
			conflict: r.URL.Query().Get("on_conflict"),
			rows:     rows,
		})
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	day := roster.NewDay(2026, time.August, 30)
	records := make([]hours.Record, 150)
	for i := range records {
		records[i] = hours.Record{
			ChatterID: roster.ChatterID(fmt.Sprintf("c-%03d", i)),
			Day:       day,
			Hours:     decimal.RequireFromString("3.5"),
			Strategy:  match.StrategyKey,
		}
	}

	c := supabase.New(srv.URL, "service-key")
	written, err := c.UpsertHours(context.Background(), records)
	require.NoError(t, err)
	assert.Equal(t, 150, written)

	require.Len(t, calls, 2)
	assert.Len(t, calls[0].rows, 100)
	assert.Len(t, calls[1].rows, 50)
	for _, call := range calls {
		assert.Equal(t, "resolution=merge-duplicates", call.prefer)
		assert.Equal(t, "chatter_id,date", call.conflict)
	}
	assert.Equal(t, "3.50", calls[0].rows[0]["hours_worked"], "fixed 2-dp text, no float round trip")
	assert.Equal(t, "2026-08-30", calls[0].rows[0]["date"])
}

func TestUpsertChatters_NeverSendsTrackerKey(t *testing.T) {
	// The roster sync must not be able to clobber a mapping made by the
	// mapping job, so the column never appears in the payload at all.

	var rows []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&rows))
		assert.Equal(t, "airtable_record_id", r.URL.Query().Get("on_conflict"))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := supabase.New(srv.URL, "service-key")
	_, err := c.UpsertChatters(context.Background(), []roster.Chatter{
		{DirectoryID: "rec1", FullName: "Jose Perez", Status: roster.StatusActive, TrackerUserID: 42},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.NotContains(t, rows[0], "hubstaff_user_id")
}

// =============================================================================
// READ AND ERROR MAPPING TESTS
// =============================================================================

func TestGetSetting_EmptyResultIsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "eq.tracker_refresh_token", r.URL.Query().Get("key"))
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	c := supabase.New(srv.URL, "service-key")
	_, err := c.GetSetting(context.Background(), "tracker_refresh_token")
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestListChatters_FiltersAndKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "eq.Active", r.URL.Query().Get("status"))
		assert.Equal(t, "created_at.asc", r.URL.Query().Get("order"))
		assert.Equal(t, "service-key", r.Header.Get("apikey"))
		fmt.Fprint(w, `[
			{"id":"c1","airtable_record_id":"rec1","full_name":"Jose Perez","status":"Active","hubstaff_user_id":42},
			{"id":"c2","airtable_record_id":"rec2","full_name":"Ana Silva","status":"Active","hubstaff_user_id":null}
		]`)
	}))
	defer srv.Close()

	c := supabase.New(srv.URL, "service-key")
	chatters, err := c.ListChatters(context.Background(), store.ChatterFilter{Status: roster.StatusActive})
	require.NoError(t, err)
	require.Len(t, chatters, 2)
	assert.Equal(t, roster.TrackerUserID(42), chatters[0].TrackerUserID)
	assert.True(t, chatters[0].IsMapped())
	assert.False(t, chatters[1].IsMapped(), "null tracker key reads back as unmapped")
}

func TestDo_AuthFailureIsBoundary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"JWT expired"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := supabase.New(srv.URL, "stale-key")
	_, err := c.ListChatters(context.Background(), store.ChatterFilter{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrAuthFailed))
	assert.True(t, store.IsBoundaryFailure(err))
}
