/*
handlers.go - HTTP handlers for the operator API

PURPOSE:
  A read-only view over what the sync jobs produced: the coaching queue,
  the roster with its key mappings, and recent run summaries. Operators
  use it to decide whether manual roster correction is needed; nothing
  here mutates state.

ENDPOINTS:
  GET /api/health                   Liveness probe
  GET /api/chatters                 Roster with mapping state
  GET /api/coaching/queue?date=     Task queue, highest priority first
  GET /api/runs?limit=              Recent run summaries

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Bad query parameters
  - 500: Store failures

SEE ALSO:
  - dto.go: Response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/agencyops/chattersync/roster"
	"github.com/agencyops/chattersync/store"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds the store interfaces the API reads from.
type Handler struct {
	Log      *slog.Logger
	Roster   store.RosterStore
	Coaching store.CoachingStore
	Runs     store.RunStore
}

func NewHandler(log *slog.Logger, rosterStore store.RosterStore, coachingStore store.CoachingStore, runStore store.RunStore) *Handler {
	return &Handler{
		Log:      log,
		Roster:   rosterStore,
		Coaching: coachingStore,
		Runs:     runStore,
	}
}

// =============================================================================
// HANDLERS
// =============================================================================

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListChatters returns the roster. Optional filters: ?status=, ?team=.
func (h *Handler) ListChatters(w http.ResponseWriter, r *http.Request) {
	filter := store.ChatterFilter{
		Status:   roster.Status(r.URL.Query().Get("status")),
		TeamName: r.URL.Query().Get("team"),
	}
	chatters, err := h.Roster.ListChatters(r.Context(), filter)
	if err != nil {
		h.fail(w, "list chatters", err)
		return
	}
	out := make([]ChatterResponse, 0, len(chatters))
	for _, c := range chatters {
		out = append(out, toChatterResponse(c))
	}
	h.respond(w, http.StatusOK, out)
}

// CoachingQueue returns the task queue for one day, highest priority
// first. Defaults to yesterday, the day the scheduled run evaluates.
func (h *Handler) CoachingQueue(w http.ResponseWriter, r *http.Request) {
	day := roster.Today().AddDays(-1)
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := roster.ParseDay(raw)
		if err != nil {
			h.respond(w, http.StatusBadRequest, ErrorResponse{Error: "invalid date, want YYYY-MM-DD"})
			return
		}
		day = parsed
	}

	tasks, err := h.Coaching.TasksForDay(r.Context(), day)
	if err != nil {
		h.fail(w, "coaching queue", err)
		return
	}
	resp := QueueResponse{Date: day.String(), Tasks: make([]TaskResponse, 0, len(tasks))}
	for _, t := range tasks {
		resp.Tasks = append(resp.Tasks, toTaskResponse(t))
	}
	h.respond(w, http.StatusOK, resp)
}

// ListRuns returns recent run summaries, newest first. ?limit= caps the
// count (default 50).
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.respond(w, http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
			return
		}
		limit = parsed
	}

	runs, err := h.Runs.ListRuns(r.Context(), limit)
	if err != nil {
		h.fail(w, "list runs", err)
		return
	}
	out := make([]RunResponse, 0, len(runs))
	for _, s := range runs {
		out = append(out, toRunResponse(s))
	}
	h.respond(w, http.StatusOK, out)
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func (h *Handler) respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.Log.Warn("response encoding failed", "error", err)
	}
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	h.Log.Error("handler error", "op", op, "error", err)
	h.respond(w, http.StatusInternalServerError, ErrorResponse{Error: op + " failed"})
}
