package models

// Severity levels shared by findings, conflicts, and alerts. Critical is
// reserved for conflict-of-interest findings.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Finding kinds, one per detection rule.
const (
	FindingNearThreshold     = "near_threshold_value"
	FindingSplitting         = "contract_splitting"
	FindingRepeatedPair      = "repeated_counterparty"
	FindingTemporalCluster   = "temporal_concentration"
	FindingEngineeredValue   = "engineered_value"
	FindingProcedureMismatch = "procedure_mismatch"
	FindingSuspiciousTiming  = "suspicious_timing"
)

// Finding is the output of one detection rule firing on one contract or group
// of contracts. Findings are recomputed on every analysis run and never
// persisted. Rules fire independently: the same contract may appear in
// several findings.
type Finding struct {
	Kind        string   `json:"kind"`
	Severity    string   `json:"severity"`
	Description string   `json:"description"`
	ContractIDs []string `json:"contract_ids,omitempty"`

	// Counterparty context, set by the grouping rules.
	Awarder string `json:"awarder,omitempty"`
	Awardee string `json:"awardee,omitempty"`

	// Rule-specific numeric fields. Zero when not applicable.
	Value         float64 `json:"value,omitempty"`
	Ceiling       float64 `json:"ceiling,omitempty"`
	Distance      float64 `json:"distance,omitempty"`
	PercentBelow  float64 `json:"percent_below,omitempty"`
	ContractCount int     `json:"contract_count,omitempty"`
	TotalValue    float64 `json:"total_value,omitempty"`
	WindowDays    int     `json:"window_days,omitempty"`
	Date          string  `json:"date,omitempty"`
}
