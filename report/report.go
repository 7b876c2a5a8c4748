/*
Package report aggregates match outcomes and run results for operators.

PURPOSE:
  Every sync run ends with a summary: how many observations resolved, by
  which strategy, and which raw names could not be matched at all. The
  report is purely informational - it is never fed back into the matching
  logic of the same run. Re-matching only happens on the next scheduled
  run, after the roster mapping has been corrected.

SEE ALSO:
  - hours/: Produces the Outcome this package summarizes
  - store/: RunSummary rows are persisted for the operator API
*/
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/agencyops/chattersync/hours"
	"github.com/agencyops/chattersync/match"
	"github.com/agencyops/chattersync/roster"
)

// maxUnmatchedListed caps the rendered unmatched list; the full count is
// always shown.
const maxUnmatchedListed = 20

// =============================================================================
// RECONCILIATION REPORT - Match/no-match tallies for one run
// =============================================================================

// UnmatchedName is a raw upstream name that resolved to no chatter,
// with the tracker id it came with (zero if none).
type UnmatchedName struct {
	Name          string
	TrackerUserID roster.TrackerUserID
}

type Reconciliation struct {
	MatchedByKey  int
	MatchedByName int
	Records       int
	Skipped       int
	Unmatched     []UnmatchedName
}

// FromOutcome converts a reconciler outcome into an operator report.
// Unmatched names are sorted for stable output.
func FromOutcome(o hours.Outcome) Reconciliation {
	r := Reconciliation{
		MatchedByKey:  o.MatchedByKey,
		MatchedByName: o.MatchedByName,
		Records:       len(o.Records),
		Skipped:       o.Skipped,
	}
	for name, id := range o.Unmatched {
		r.Unmatched = append(r.Unmatched, UnmatchedName{Name: name, TrackerUserID: id})
	}
	sort.Slice(r.Unmatched, func(i, j int) bool { return r.Unmatched[i].Name < r.Unmatched[j].Name })
	return r
}

// Summarize tallies standalone match results (used by the mapping and
// migration jobs, which match names without producing hour records).
func Summarize(results []match.Result, names []string) Reconciliation {
	var r Reconciliation
	for i, res := range results {
		switch res.Strategy {
		case match.StrategyKey:
			r.MatchedByKey++
		case match.StrategyNone:
			name := ""
			if i < len(names) {
				name = names[i]
			}
			r.Unmatched = append(r.Unmatched, UnmatchedName{Name: name})
		default:
			r.MatchedByName++
		}
	}
	sort.Slice(r.Unmatched, func(i, j int) bool { return r.Unmatched[i].Name < r.Unmatched[j].Name })
	return r
}

// Render formats the report for logs and the run summary.
func (r Reconciliation) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "records=%d matched_by_key=%d matched_by_name=%d skipped=%d unmatched=%d",
		r.Records, r.MatchedByKey, r.MatchedByName, r.Skipped, len(r.Unmatched))
	if len(r.Unmatched) > 0 {
		b.WriteString("\nunmatched:")
		for i, u := range r.Unmatched {
			if i == maxUnmatchedListed {
				fmt.Fprintf(&b, "\n  ... and %d more", len(r.Unmatched)-maxUnmatchedListed)
				break
			}
			if u.TrackerUserID != 0 {
				fmt.Fprintf(&b, "\n  - %s (tracker_user_id=%d)", u.Name, u.TrackerUserID)
			} else {
				fmt.Fprintf(&b, "\n  - %s", u.Name)
			}
		}
	}
	return b.String()
}

// =============================================================================
// RUN SUMMARY - End-of-run record, enough to decide if manual roster
// correction is needed
// =============================================================================

type RunSummary struct {
	ID         string
	Job        string
	StartedAt  time.Time
	FinishedAt time.Time
	Processed  int
	Written    int
	Skipped    int
	Unmatched  int
	Detail     string
}

func (s RunSummary) Duration() time.Duration { return s.FinishedAt.Sub(s.StartedAt) }
