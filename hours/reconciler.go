/*
Package hours reconciles raw time-tracking observations into one record
per (chatter, day).

PURPOSE:
  The time tracker reports daily activity per organization. The same
  person can appear in more than one organization on the same day, and
  several script generations used to handle that differently. This is the
  single consolidated reconciler: resolve each observation to a chatter,
  convert tracked seconds to hours, and MERGE duplicates with a sum.

MERGE, NOT LAST-WRITE-WINS:
  Organizations are non-overlapping slices of the same person's time, so
  totals must add. Overwriting would silently lose hours.

IDEMPOTENCE:
  Accumulation is a commutative, associative sum over 2-decimal values,
  and the output is sorted by (chatter, day), so re-running over the same
  observation set - in any order - produces identical output.

SEE ALSO:
  - match/: Resolution strategies (key first, name fallback, no fuzzy here)
  - jobs/synchours.go: Fetch, reconcile, upsert orchestration
*/
package hours

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/agencyops/chattersync/match"
	"github.com/agencyops/chattersync/roster"
)

// =============================================================================
// OBSERVATION - One raw fact from the time tracker
// =============================================================================

// Observation is a single upstream activity row: some person, some day,
// some tracked seconds, from one source organization. Ephemeral; lives
// only for the duration of one sync run.
type Observation struct {
	RawName        string
	TrackerUserID  roster.TrackerUserID // zero if the upstream row had none
	Day            roster.Day
	TrackedSeconds int64
	OrgID          int64
}

// =============================================================================
// RECORD - Reconciled output, unique per (chatter, day)
// =============================================================================

type Record struct {
	ChatterID roster.ChatterID
	Day       roster.Day
	// Hours is the summed tracked time, rounded to 2 decimal places.
	Hours decimal.Decimal
	// Strategy records which match strategy resolved this chatter.
	Strategy match.Strategy
}

// Outcome bundles the reconciled records with everything the operator
// report needs. Unmatched is keyed by raw name (last tracker id seen wins,
// which is stable because a name maps to one tracker account upstream).
type Outcome struct {
	Records       []Record
	Unmatched     map[string]roster.TrackerUserID
	MatchedByKey  int
	MatchedByName int
	Skipped       int // malformed: missing date or non-positive hours
}

var secondsPerHour = decimal.NewFromInt(3600)

// HoursFromSeconds converts tracked seconds to hours rounded to 2 decimal
// places. Rounding happens per observation, before accumulation, so sums
// of rounded values stay exact in decimal arithmetic.
func HoursFromSeconds(seconds int64) decimal.Decimal {
	return decimal.NewFromInt(seconds).Div(secondsPerHour).Round(2)
}

// Reconcile resolves every observation against the directory and merges
// duplicates. Unmatched and malformed observations never abort the run.
func Reconcile(observations []Observation, dir *match.Directory) Outcome {
	out := Outcome{Unmatched: make(map[string]roster.TrackerUserID)}

	type key struct {
		id  roster.ChatterID
		day string
	}
	acc := make(map[key]*Record)

	for _, obs := range observations {
		hrs := HoursFromSeconds(obs.TrackedSeconds)
		if obs.Day.IsZero() || !hrs.IsPositive() {
			out.Skipped++
			continue
		}

		res := dir.Resolve(obs.RawName, obs.TrackerUserID)
		if !res.Matched() {
			if obs.RawName != "" {
				out.Unmatched[obs.RawName] = obs.TrackerUserID
			}
			continue
		}
		switch res.Strategy {
		case match.StrategyKey:
			out.MatchedByKey++
		default:
			out.MatchedByName++
		}

		k := key{id: res.Chatter.ID, day: obs.Day.String()}
		if existing, ok := acc[k]; ok {
			existing.Hours = existing.Hours.Add(hrs)
			continue
		}
		acc[k] = &Record{
			ChatterID: res.Chatter.ID,
			Day:       obs.Day,
			Hours:     hrs,
			Strategy:  res.Strategy,
		}
	}

	for _, rec := range acc {
		out.Records = append(out.Records, *rec)
	}
	// Deterministic output order regardless of observation order.
	sort.Slice(out.Records, func(i, j int) bool {
		if out.Records[i].ChatterID != out.Records[j].ChatterID {
			return out.Records[i].ChatterID < out.Records[j].ChatterID
		}
		return out.Records[i].Day.Before(out.Records[j].Day)
	})

	return out
}
