package roster

import (
	"fmt"
	"time"
)

// =============================================================================
// DAY - Date-only time point (reconciliation keys are always whole days)
// =============================================================================

// Day is a calendar date in UTC. Upstream systems report hours and metrics
// per day; (ChatterID, Day) is the unique key everywhere downstream.
type Day struct {
	t time.Time
}

const dayLayout = "2006-01-02"

func NewDay(year int, month time.Month, day int) Day {
	return Day{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DayOf truncates a timestamp to its UTC date.
func DayOf(t time.Time) Day {
	u := t.UTC()
	return NewDay(u.Year(), u.Month(), u.Day())
}

func Today() Day { return DayOf(time.Now()) }

// ParseDay parses "YYYY-MM-DD". Upstream payloads sometimes carry a full
// timestamp; only the first 10 bytes are considered.
func ParseDay(s string) (Day, error) {
	if len(s) > len(dayLayout) {
		s = s[:len(dayLayout)]
	}
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return Day{}, fmt.Errorf("invalid day %q: %w", s, err)
	}
	return Day{t: t}, nil
}

// Comparison
func (d Day) Before(other Day) bool { return d.t.Before(other.t) }
func (d Day) After(other Day) bool  { return d.t.After(other.t) }
func (d Day) Equal(other Day) bool  { return d.t.Equal(other.t) }
func (d Day) IsZero() bool          { return d.t.IsZero() }

// Arithmetic
func (d Day) AddDays(n int) Day { return Day{t: d.t.AddDate(0, 0, n)} }

// DaysBetween returns to - from in whole days.
func DaysBetween(from, to Day) int {
	return int(to.t.Sub(from.t).Hours() / 24)
}

func (d Day) Time() time.Time { return d.t }

func (d Day) String() string { return d.t.Format(dayLayout) }

// MarshalText / UnmarshalText make Day usable in JSON payloads directly.
func (d Day) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Day) UnmarshalText(b []byte) error {
	parsed, err := ParseDay(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
