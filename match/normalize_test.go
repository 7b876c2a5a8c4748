package match_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/agencyops/chattersync/match"
)

// =============================================================================
// NORMALIZATION TESTS
// =============================================================================

func TestNormalize_StripsAccentsCaseAndWhitespace(t *testing.T) {
	// GIVEN: Display names as the three upstream systems spell them
	// WHEN: Normalizing
	// THEN: Accents, case, and whitespace differences all collapse

	cases := map[string]string{
		"José Pérez":        "jose perez",
		"JOSE PEREZ":        "jose perez",
		"  jose   perez  ":  "jose perez",
		"José\tPérez":       "jose perez",
		"Ñoño García":       "nono garcia",
		"Zoë Müller":        "zoe muller",
		"maria f. garcia":   "maria f. garcia",
		"":                  "",
		"   ":               "",
	}
	for input, want := range cases {
		assert.Equal(t, want, match.Normalize(input), "input %q", input)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	// GIVEN: Any unicode string
	// WHEN: Normalizing twice
	// THEN: The second pass changes nothing

	rapid.Check(t, func(t *rapid.T) {
		s := rapid.String().Draw(t, "s")
		once := match.Normalize(s)
		assert.Equal(t, once, match.Normalize(once))
	})
}

// =============================================================================
// SIMILARITY RATIO TESTS
// =============================================================================

func TestRatio_Bounds(t *testing.T) {
	// GIVEN: Arbitrary string pairs
	// WHEN: Computing the similarity ratio
	// THEN: It stays within [0,1], and identical strings score exactly 1

	assert.Equal(t, 1.0, match.Ratio("jose perez", "jose perez"))
	assert.Equal(t, 1.0, match.Ratio("", ""))
	assert.Equal(t, 0.0, match.Ratio("abc", "xyz"))

	rapid.Check(t, func(t *rapid.T) {
		a := rapid.String().Draw(t, "a")
		b := rapid.String().Draw(t, "b")
		r := match.Ratio(a, b)
		assert.GreaterOrEqual(t, r, 0.0)
		assert.LessOrEqual(t, r, 1.0)
	})
}

func TestRatio_CloseNamesScoreHigh(t *testing.T) {
	// GIVEN: A legacy hand-typed name and its roster spelling
	// WHEN: Scoring similarity
	// THEN: Typos stay above the migration threshold, unrelated names below

	assert.GreaterOrEqual(t, match.Ratio("jose perez", "jose peres"), 0.75)
	assert.Less(t, match.Ratio("jose perez", "maria garcia"), 0.75)
}
