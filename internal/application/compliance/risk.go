package compliance

import (
	"time"

	"github.com/agroledger/eudr-engine/internal/domain/statement"
)

// finding is one triggered risk rule: the floor it raises the level to and
// the mitigation that would clear it.
type finding struct {
	level      statement.RiskLevel
	mitigation string
}

// Assessor classifies a batch's compliance risk from the geolocation
// validation report and the externally supplied facts. Assessment is a pure
// monotonic fold: each triggered rule can only raise the level, never lower
// it, so rule evaluation order does not affect the outcome.
type Assessor struct {
	now func() time.Time
}

// NewAssessor constructs an Assessor using wall-clock time.
func NewAssessor() *Assessor {
	return &Assessor{now: time.Now}
}

// Assess evaluates every risk rule and folds the findings into a single
// assessment. With no findings the batch is negligible risk and carries no
// mitigations.
func (a *Assessor) Assess(report *Report, facts statement.ComplianceFacts) statement.RiskAssessment {
	level := statement.RiskNegligible
	mitigations := []string{}

	for _, f := range riskFindings(report, facts) {
		level = level.Escalate(f.level)
		mitigations = append(mitigations, f.mitigation)
	}

	return statement.RiskAssessment{
		Level:       level,
		Mitigations: mitigations,
		AssessedAt:  a.now().UTC(),
	}
}

// riskFindings evaluates the rule set. Rules are independent; every
// triggered rule contributes its own finding.
func riskFindings(report *Report, facts statement.ComplianceFacts) []finding {
	var findings []finding

	geolocationUsable := report != nil && report.Valid && len(report.Features) > 0
	if !geolocationUsable {
		findings = append(findings, finding{
			level:      statement.RiskNonNegligible,
			mitigation: "provide valid plot-level geolocation",
		})
	}

	if facts.Deforestation == nil || !facts.Deforestation.Status {
		findings = append(findings, finding{
			level:      statement.RiskNonNegligible,
			mitigation: "verify deforestation-free status",
		})
	}

	if len(facts.LegalityDocuments) == 0 {
		findings = append(findings, finding{
			level:      statement.RiskNonNegligible,
			mitigation: "attach legality documents",
		})
	}

	if geolocationUsable && missingPlotIDs(report) {
		findings = append(findings, finding{
			level:      statement.RiskLow,
			mitigation: "assign plot_id to all features",
		})
	}

	if facts.QuantityKg <= 0 {
		findings = append(findings, finding{
			level:      statement.RiskLow,
			mitigation: "specify net mass quantity",
		})
	}

	return findings
}

func missingPlotIDs(report *Report) bool {
	for _, fr := range report.Features {
		if fr.PlotID == "" {
			return true
		}
	}
	return false
}
