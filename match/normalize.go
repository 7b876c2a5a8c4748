/*
Package match resolves external person names onto canonical roster chatters.

PURPOSE:
  Three upstream systems spell the same person three different ways
  ("José  Pérez", "jose perez", "Jose Perez CW"). This package owns the
  two pieces of real decision logic in the sync pipeline: canonicalizing
  free-text names into comparable keys, and resolving an incoming name or
  tracker key to at most one chatter.

RESOLUTION ORDER (first hit wins - earlier strategies are less error-prone):
  1. by_key        tracker user id equals a stored mapping
  2. by_exact_name normalized name equals exactly one unmapped chatter
  3. by_first_last first+last token key equals exactly one candidate
  4. by_fuzzy      levenshtein ratio >= threshold (migration path only)

KEY PROPERTIES:
  - Normalize is pure, total, deterministic, and idempotent
  - The matcher never mutates the roster; callers persist discovered
    key mappings themselves
  - A chatter that already carries a tracker key can only match by key,
    so one key match can never be shadowed by a later name match

SEE ALSO:
  - matcher.go: Directory and resolution strategies
  - hours/: The consumer on the hot sync path (no fuzzy there)
  - jobs/mapusers.go: The mapping job that persists discovered keys
*/
package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to NFD and drops combining marks, turning
// "José" into "Jose". Lossy and one-directional.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))

// Normalize canonicalizes a free-text person name into a comparable key:
// accent-stripped, lower-cased, trimmed, with whitespace runs collapsed to
// a single space. Never fails; malformed UTF-8 passes through unstripped.
func Normalize(raw string) string {
	stripped, _, err := transform.String(stripMarks, raw)
	if err != nil {
		stripped = raw
	}
	return strings.Join(strings.Fields(strings.ToLower(stripped)), " ")
}

// reduceFirstLast collapses a normalized name to "first last". Names with
// fewer than two tokens reduce to themselves, so "cher" still matches "cher".
func reduceFirstLast(normalized string) string {
	parts := strings.Fields(normalized)
	if len(parts) < 2 {
		return normalized
	}
	return parts[0] + " " + parts[len(parts)-1]
}
