package roster_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agencyops/chattersync/roster"
)

// =============================================================================
// DAY TESTS
// =============================================================================

func TestParseDay_TruncatesTimestamps(t *testing.T) {
	// GIVEN: Upstream date strings, some carrying a full timestamp
	// WHEN: Parsing
	// THEN: Only the date part matters

	plain, err := roster.ParseDay("2026-08-30")
	require.NoError(t, err)

	stamped, err := roster.ParseDay("2026-08-30T14:22:01Z")
	require.NoError(t, err)
	assert.True(t, plain.Equal(stamped))

	_, err = roster.ParseDay("not-a-date")
	assert.Error(t, err)

	_, err = roster.ParseDay("")
	assert.Error(t, err)
}

func TestDayOf_NormalizesToUTC(t *testing.T) {
	// GIVEN: A timestamp in a non-UTC zone late in the local day
	// WHEN: Truncating to a Day
	// THEN: The UTC date wins, not the local one

	loc := time.FixedZone("UTC-8", -8*3600)
	local := time.Date(2026, 8, 30, 22, 0, 0, 0, loc) // 06:00 UTC on the 31st
	assert.Equal(t, "2026-08-31", roster.DayOf(local).String())
}

func TestDaysBetween(t *testing.T) {
	a := roster.NewDay(2026, time.August, 10)
	b := roster.NewDay(2026, time.August, 12)
	assert.Equal(t, 2, roster.DaysBetween(a, b))
	assert.Equal(t, -2, roster.DaysBetween(b, a))
	assert.Equal(t, 0, roster.DaysBetween(a, a))
}

func TestDay_TextRoundTrip(t *testing.T) {
	day := roster.NewDay(2026, time.January, 5)
	text, err := day.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "2026-01-05", string(text))

	var back roster.Day
	require.NoError(t, back.UnmarshalText(text))
	assert.True(t, day.Equal(back))
}

// =============================================================================
// SHIFT TESTS
// =============================================================================

func TestShift_StartsNear(t *testing.T) {
	// GIVEN: A shift starting at 14:00 UTC
	// WHEN: Checking hours around the start
	// THEN: The start hour and the hour before match; nothing else does

	s := roster.Shift{StartHour: 14, EndHour: 22}
	assert.True(t, s.StartsNear(14))
	assert.True(t, s.StartsNear(13))
	assert.False(t, s.StartsNear(15))
	assert.False(t, s.StartsNear(12))
}

func TestShift_MidnightStartMatchesHour23(t *testing.T) {
	// GIVEN: A shift starting at midnight UTC
	// WHEN: The scheduler fires at 23:00 the day before
	// THEN: The shift still counts as starting

	s := roster.Shift{StartHour: 0, EndHour: 8}
	assert.True(t, s.StartsNear(0))
	assert.True(t, s.StartsNear(23))
	assert.False(t, s.StartsNear(1))
}

func TestChatter_Eligibility(t *testing.T) {
	c := roster.Chatter{Status: roster.StatusActive, Role: roster.RoleChatter}
	assert.True(t, c.IsActiveChatter())

	c.Status = roster.StatusProbation
	assert.False(t, c.IsActiveChatter())

	c.Status = roster.StatusActive
	c.Role = "Team Lead"
	assert.False(t, c.IsActiveChatter())

	assert.False(t, roster.Chatter{}.IsMapped())
	assert.True(t, roster.Chatter{TrackerUserID: 9}.IsMapped())
}
