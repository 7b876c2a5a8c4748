package coaching

// =============================================================================
// RULES - The rule table is data, not code
// =============================================================================

// KPI identifies a metric field a threshold rule can refer to.
type KPI string

const (
	KPIGoldenRatio  KPI = "golden_ratio"
	KPIFanCVR       KPI = "fan_cvr"
	KPISalesPerHour KPI = "sales_per_hour"
	KPIUnlockRate   KPI = "unlock_rate"
)

// Threshold flags a KPI when its observed value is strictly below Min.
type Threshold struct {
	KPI   KPI
	Min   float64
	Label string
}

// Rules is the complete configuration of the rule engine. Constructed
// from config at startup and passed to NewEngine, so every number here
// is independently testable.
type Rules struct {
	// MinClockedHours is the minimum-engagement gate: rows with fewer
	// clocked hours are skipped, not flagged.
	MinClockedHours float64

	// OverdueDays: a chatter last coached this many days ago (or more)
	// earns the overdue priority bump.
	OverdueDays int

	Thresholds []Threshold
}

// DaysSinceNever stands in for "no prior coaching record". Large enough
// to guarantee the overdue branch fires for any sane OverdueDays.
const DaysSinceNever = 999

// DefaultRules returns the production rule table.
func DefaultRules() Rules {
	return Rules{
		MinClockedHours: 4,
		OverdueDays:     2,
		Thresholds: []Threshold{
			{KPI: KPIGoldenRatio, Min: 30, Label: "Golden Ratio"},
			{KPI: KPIFanCVR, Min: 8, Label: "Fan CVR"},
			{KPI: KPISalesPerHour, Min: 40, Label: "$/hr"},
			{KPI: KPIUnlockRate, Min: 20, Label: "Unlock Rate"},
		},
	}
}

// =============================================================================
// TALKING POINTS - Fixed template per flag label
// =============================================================================

var talkingPointTemplates = map[string]TalkingPoint{
	"Golden Ratio": {
		KPI:    "Golden Ratio",
		Target: "≥30%",
		Actions: []string{
			"Review PPV sending frequency",
			"Check message quality",
			"Analyze top performer scripts",
		},
	},
	"Fan CVR": {
		KPI:    "Fan CVR",
		Target: "≥8%",
		Actions: []string{
			"Review fan engagement approach",
			"Check first-message strategy",
			"Analyze conversion funnel",
		},
	},
	"$/hr": {
		KPI:    "$/hr",
		Target: "≥$40",
		Actions: []string{
			"Review time management",
			"Check high-value fan prioritization",
			"Analyze sales techniques",
		},
	},
	"Unlock Rate": {
		KPI:    "Unlock Rate",
		Target: "≥20%",
		Actions: []string{
			"Review PPV pricing strategy",
			"Check content quality",
			"Analyze successful unlocks",
		},
	},
}

// TalkingPointFor returns the canned template for a flag label.
func TalkingPointFor(label string) (TalkingPoint, bool) {
	tp, ok := talkingPointTemplates[label]
	return tp, ok
}
