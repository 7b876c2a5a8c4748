package match

import (
	"github.com/agnivade/levenshtein"

	"github.com/agencyops/chattersync/roster"
)

// =============================================================================
// STRATEGY - How a match was made (recorded as provenance downstream)
// =============================================================================

type Strategy string

const (
	StrategyNone      Strategy = ""
	StrategyKey       Strategy = "by_key"
	StrategyExactName Strategy = "by_exact_name"
	StrategyFirstLast Strategy = "by_first_last"
	StrategyFuzzy     Strategy = "by_fuzzy"
)

// DefaultFuzzyThreshold is the minimum similarity ratio the fuzzy stage
// accepts. Chosen to match the historical migration behavior exactly.
const DefaultFuzzyThreshold = 0.75

// Result is the outcome of one resolution attempt. A nil Chatter with
// StrategyNone means unmatched - never an error; callers record it and
// keep going.
type Result struct {
	Chatter  *roster.Chatter
	Strategy Strategy
}

func (r Result) Matched() bool { return r.Chatter != nil }

// =============================================================================
// DIRECTORY - Indexed view of the roster for one sync run
// =============================================================================

// candidate is one unmapped chatter eligible for name-based matching.
type candidate struct {
	chatter  roster.Chatter
	norm     string
	reduced  string
	excluded bool
}

// Directory indexes a roster snapshot for resolution. Chatters that
// already carry a tracker key are reachable only through that key; the
// name indexes cover unmapped chatters only, which is what guarantees a
// key-matched identity can never also be claimed by name in the same run.
//
// Directory is not safe for concurrent use; each run builds its own.
type Directory struct {
	byKey      map[roster.TrackerUserID]roster.Chatter
	candidates []*candidate // first-seen order (fuzzy tie-break depends on it)
	byNorm     map[string][]*candidate
	byReduced  map[string][]*candidate
}

// NewDirectory indexes chatters in the order given. Fetch order matters:
// fuzzy ties resolve to the earliest candidate.
func NewDirectory(chatters []roster.Chatter) *Directory {
	d := &Directory{
		byKey:     make(map[roster.TrackerUserID]roster.Chatter),
		byNorm:    make(map[string][]*candidate),
		byReduced: make(map[string][]*candidate),
	}
	for _, c := range chatters {
		if c.IsMapped() {
			d.byKey[c.TrackerUserID] = c
			continue
		}
		cand := &candidate{
			chatter: c,
			norm:    Normalize(c.FullName),
			reduced: reduceFirstLast(Normalize(c.FullName)),
		}
		d.candidates = append(d.candidates, cand)
		d.byNorm[cand.norm] = append(d.byNorm[cand.norm], cand)
		d.byReduced[cand.reduced] = append(d.byReduced[cand.reduced], cand)
	}
	return d
}

// Resolve maps an external observation to at most one chatter using the
// non-fuzzy strategies: key, exact normalized name, then first/last token.
// A zero key means the upstream record carried no key.
func (d *Directory) Resolve(rawName string, key roster.TrackerUserID) Result {
	if key != 0 {
		if c, ok := d.byKey[key]; ok {
			return Result{Chatter: &c, Strategy: StrategyKey}
		}
	}

	normalized := Normalize(rawName)
	if normalized == "" {
		return Result{}
	}

	// Exact-name: must be unique among remaining candidates.
	if c, ok := unique(d.byNorm[normalized]); ok {
		return Result{Chatter: c, Strategy: StrategyExactName}
	}

	// First/last token: "maria f. garcia" vs "maria garcia".
	if c, ok := unique(d.byReduced[reduceFirstLast(normalized)]); ok {
		return Result{Chatter: c, Strategy: StrategyFirstLast}
	}

	return Result{}
}

// ResolveFuzzy runs Resolve and then, if nothing matched, scans every
// remaining candidate for the best similarity ratio at or above threshold.
// Used only by the historical migration - never on the hot hours path,
// where a false positive would silently credit hours to the wrong person.
// Ties keep the first-seen candidate (strictly-greater comparison).
func (d *Directory) ResolveFuzzy(rawName string, threshold float64) Result {
	if r := d.Resolve(rawName, 0); r.Matched() {
		return r
	}

	normalized := Normalize(rawName)
	if normalized == "" {
		return Result{}
	}

	var best *candidate
	bestRatio := 0.0
	for _, cand := range d.candidates {
		if cand.excluded {
			continue
		}
		if ratio := Ratio(normalized, cand.norm); ratio > bestRatio {
			bestRatio = ratio
			best = cand
		}
	}
	if best != nil && bestRatio >= threshold {
		return Result{Chatter: &best.chatter, Strategy: StrategyFuzzy}
	}
	return Result{}
}

// Exclude removes a chatter from the name-based candidate pool. The
// mapping job calls this after claiming a candidate so one tracker user
// cannot be matched onto two chatters (and vice versa).
func (d *Directory) Exclude(id roster.ChatterID) {
	for _, cand := range d.candidates {
		if cand.chatter.ID == id {
			cand.excluded = true
		}
	}
}

// Unclaimed returns the chatters still eligible for name matching, in
// first-seen order. The mapping job reports these for manual review.
func (d *Directory) Unclaimed() []roster.Chatter {
	var out []roster.Chatter
	for _, cand := range d.candidates {
		if !cand.excluded {
			out = append(out, cand.chatter)
		}
	}
	return out
}

// unique returns the single non-excluded candidate in the bucket, if there
// is exactly one. Ambiguity means no match at this stage.
func unique(bucket []*candidate) (*roster.Chatter, bool) {
	var found *candidate
	for _, cand := range bucket {
		if cand.excluded {
			continue
		}
		if found != nil {
			return nil, false
		}
		found = cand
	}
	if found == nil {
		return nil, false
	}
	return &found.chatter, true
}

// =============================================================================
// SIMILARITY - Normalized edit-distance ratio in [0,1]
// =============================================================================

// Ratio computes 1 - levenshtein(a,b)/max(len(a),len(b)) over runes.
// Identical strings score 1; two empty strings score 1.
func Ratio(a, b string) float64 {
	if a == b {
		return 1
	}
	la, lb := len([]rune(a)), len([]rune(b))
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}
