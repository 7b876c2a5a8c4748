/*
Package roster defines the canonical identity model shared by every sync job.

PURPOSE:
  A Chatter is one person in the canonical roster. Three upstream systems
  each maintain their own naming for the same people (directory display
  names, time-tracker account names, store roster names); everything in
  this repository ultimately resolves back to a Chatter.

KEY CONCEPTS IN THIS FILE (types.go):
  - Chatter: The canonical roster record (authoritative, read-mostly)
  - ChatterID: Opaque, system-assigned identifier
  - TrackerUserID: The one external-system key a Chatter may carry
  - Status: Roster lifecycle (active/inactive/probation)

INVARIANTS:
  1. At most one Chatter per TrackerUserID
  2. Display names are NOT unique - matching must tolerate collisions
  3. Sync jobs only ever write back a resolved TrackerUserID mapping;
     everything else on a Chatter belongs to the roster sync

SEE ALSO:
  - day.go: Date-only time points used as reconciliation keys
  - match/: Resolution of external names onto Chatters
*/
package roster

// =============================================================================
// IDENTIFIERS
// =============================================================================

// ChatterID is the opaque store-assigned identifier for a roster member.
type ChatterID string

// TrackerUserID is the numeric account id assigned by the time-tracking
// provider. Zero means "not mapped yet".
type TrackerUserID int64

// =============================================================================
// CHATTER - Canonical roster record
// =============================================================================

type Status string

const (
	StatusActive    Status = "Active"
	StatusInactive  Status = "Inactive"
	StatusProbation Status = "Probation"
)

// RoleChatter is the roster role eligible for coaching evaluation.
const RoleChatter = "Chatter"

type Chatter struct {
	ID       ChatterID
	FullName string
	Status   Status
	Role     string
	// TeamName is nullable upstream; empty string means no affiliation.
	TeamName string
	// TrackerUserID is zero until the mapping job resolves it.
	TrackerUserID TrackerUserID
	// DirectoryID is the upstream directory record id (upsert conflict key).
	DirectoryID string
}

// IsMapped reports whether this chatter already carries a tracker key.
func (c Chatter) IsMapped() bool { return c.TrackerUserID != 0 }

// IsActiveChatter reports whether this chatter is eligible for coaching
// evaluation: active status and chatter role.
func (c Chatter) IsActiveChatter() bool {
	return c.Status == StatusActive && c.Role == RoleChatter
}

// =============================================================================
// TEAM SHIFTS - Typed shift windows per team lead
// =============================================================================

// Shift describes one team lead's coverage window in UTC hours.
// Replaces free-text name sniffing against profile names: shifts are
// configuration records, loaded at startup.
type Shift struct {
	LeadID    string
	LeadName  string
	TeamName  string
	StartHour int // inclusive, 0-23 UTC
	EndHour   int // exclusive
}

// StartsNear reports whether the shift starts at the given UTC hour or the
// hour before it. A midnight shift also matches hour 23 of the prior day.
func (s Shift) StartsNear(hourUTC int) bool {
	if s.StartHour == 0 && hourUTC == 23 {
		return true
	}
	return hourUTC == s.StartHour || hourUTC == s.StartHour-1
}
