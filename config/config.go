/*
Package config defines job configuration and layered loading.

PURPOSE:
  Everything that used to be a global constant in the sync scripts -
  thresholds, excluded org ids, lookback windows, shift tables - is
  configuration data here, loaded once at startup and passed into the
  engines at construction time. Rules are data, not code.

PRECEDENCE (low -> high):
  1. defaults (New())
  2. YAML file if CSYNC_CONFIG is set
  3. environment variables (prefix CSYNC_)

SEE ALSO:
  - loader.go: koanf wiring
  - coaching/rules.go: The Rules struct this config materializes
*/
package config

import (
	"github.com/agencyops/chattersync/coaching"
	"github.com/agencyops/chattersync/match"
	"github.com/agencyops/chattersync/roster"
)

// ShiftEntry is one team lead's coverage window (UTC hours).
type ShiftEntry struct {
	LeadID    string `koanf:"lead_id"`
	LeadName  string `koanf:"lead_name"`
	TeamName  string `koanf:"team_name"`
	StartHour int    `koanf:"start_hour"`
	EndHour   int    `koanf:"end_hour"`
}

// Config contains process configuration for every job.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr is the operator API listen address for the serve command.
	Addr string `koanf:"addr"`

	// SQLitePath is the local store path; ":memory:" works for dev runs.
	SQLitePath string `koanf:"sqlite_path"`

	// Store is the REST roster/metrics store (Postgres-backed).
	StoreURL string `koanf:"store_url"`
	StoreKey string `koanf:"store_key"`

	// Time tracker API. The refresh token is only the bootstrap value;
	// rotated tokens live in the store's settings table.
	TrackerAPIURL       string `koanf:"tracker_api_url"`
	TrackerTokenURL     string `koanf:"tracker_token_url"`
	TrackerRefreshToken string `koanf:"tracker_refresh_token"`

	// Directory (Airtable-style) API.
	DirectoryURL     string `koanf:"directory_url"`
	DirectoryToken   string `koanf:"directory_token"`
	DirectoryBaseID  string `koanf:"directory_base_id"`
	ChattersTableID  string `koanf:"chatters_table_id"`
	ModelsTableID    string `koanf:"models_table_id"`
	ScoresTableID    string `koanf:"scores_table_id"`

	// SkipOrgIDs excludes legacy tracker organizations from every sync.
	SkipOrgIDs []int64 `koanf:"skip_org_ids"`

	// Hours sync lookback window.
	LookbackDays    int `koanf:"lookback_days"`
	MaxBackfillDays int `koanf:"max_backfill_days"`

	// Rule engine knobs. Thresholds maps KPI name to its minimum.
	MinClockedHours float64            `koanf:"min_clocked_hours"`
	OverdueDays     int                `koanf:"overdue_days"`
	Thresholds      map[string]float64 `koanf:"thresholds"`

	// FuzzyThreshold is the migration matcher's acceptance ratio.
	FuzzyThreshold float64 `koanf:"fuzzy_threshold"`

	// Shifts is the typed shift table keyed by lead, replacing free-text
	// matching against profile names.
	Shifts []ShiftEntry `koanf:"shifts"`
}

// New returns the default configuration.
func New() *Config {
	defaults := coaching.DefaultRules()
	thresholds := make(map[string]float64, len(defaults.Thresholds))
	for _, th := range defaults.Thresholds {
		thresholds[string(th.KPI)] = th.Min
	}
	return &Config{
		LogLevel:        "info",
		Addr:            ":8080",
		SQLitePath:      "chattersync.db",
		TrackerAPIURL:   "https://api.hubstaff.com/v2",
		TrackerTokenURL: "https://account.hubstaff.com/access_tokens",
		DirectoryURL:    "https://api.airtable.com/v0",
		LookbackDays:    14,
		MaxBackfillDays: 90,
		MinClockedHours: defaults.MinClockedHours,
		OverdueDays:     defaults.OverdueDays,
		Thresholds:      thresholds,
		FuzzyThreshold:  match.DefaultFuzzyThreshold,
	}
}

// Rules materializes the coaching rule table from this config. Threshold
// order (and therefore flag order) is fixed; labels are product copy and
// not configurable.
func (c *Config) Rules() coaching.Rules {
	rules := coaching.DefaultRules()
	rules.MinClockedHours = c.MinClockedHours
	rules.OverdueDays = c.OverdueDays
	for i, th := range rules.Thresholds {
		if min, ok := c.Thresholds[string(th.KPI)]; ok {
			rules.Thresholds[i].Min = min
		}
	}
	return rules
}

// ShiftTable converts the configured shift entries to roster shifts.
func (c *Config) ShiftTable() []roster.Shift {
	out := make([]roster.Shift, 0, len(c.Shifts))
	for _, s := range c.Shifts {
		out = append(out, roster.Shift{
			LeadID:    s.LeadID,
			LeadName:  s.LeadName,
			TeamName:  s.TeamName,
			StartHour: s.StartHour,
			EndHour:   s.EndHour,
		})
	}
	return out
}

// SkipOrg reports whether a tracker organization is excluded.
func (c *Config) SkipOrg(orgID int64) bool {
	for _, id := range c.SkipOrgIDs {
		if id == orgID {
			return true
		}
	}
	return false
}
