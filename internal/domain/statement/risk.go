package statement

import (
	"fmt"
	"time"
)

// RiskLevel is the ordered compliance-risk classification assigned per batch.
// The numeric ordering is part of the contract: assessment only ever moves
// toward the more severe level.
type RiskLevel uint8

const (
	RiskNegligible    RiskLevel = 0
	RiskLow           RiskLevel = 1
	RiskStandard      RiskLevel = 2
	RiskNonNegligible RiskLevel = 3
)

func (l RiskLevel) String() string {
	switch l {
	case RiskNegligible:
		return "negligible"
	case RiskLow:
		return "low"
	case RiskStandard:
		return "standard"
	case RiskNonNegligible:
		return "non-negligible"
	default:
		return "unknown"
	}
}

func (l RiskLevel) IsValid() bool {
	return l <= RiskNonNegligible
}

// Escalate returns the more severe of the receiver and to. It never returns
// a less severe level, which is what makes risk assessment monotonic.
func (l RiskLevel) Escalate(to RiskLevel) RiskLevel {
	if to > l {
		return to
	}
	return l
}

// ParseRiskLevel converts the wire form back into a RiskLevel.
func ParseRiskLevel(s string) (RiskLevel, error) {
	switch s {
	case "negligible":
		return RiskNegligible, nil
	case "low":
		return RiskLow, nil
	case "standard":
		return RiskStandard, nil
	case "non-negligible":
		return RiskNonNegligible, nil
	default:
		return RiskNegligible, fmt.Errorf("unknown risk level %q", s)
	}
}

// MarshalJSON serializes the level as its string form.
func (l RiskLevel) MarshalJSON() ([]byte, error) {
	return []byte(`"` + l.String() + `"`), nil
}

// UnmarshalJSON parses the string form.
func (l *RiskLevel) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("risk level must be a JSON string, got %s", data)
	}
	parsed, err := ParseRiskLevel(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// RiskAssessment is the outcome of the policy-driven risk scoring procedure:
// the assigned tier plus the mitigations required to lower it.
type RiskAssessment struct {
	Level       RiskLevel `json:"level"`
	Mitigations []string  `json:"mitigations"`
	AssessedAt  time.Time `json:"assessed_at"`
}
