package model

import "strings"

// Severity is the display tier attached to a classification.
type Severity string

const (
	SeverityOK      Severity = "ok"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
	SeverityNone    Severity = "none"
)

// Interpretation carries everything the display layer needs for a classification.
type Interpretation struct {
	Severity  Severity
	AdviceKey string
}

// Interpret maps a raw classification string to its display tier and advice
// text key. Matching is case-insensitive and total: anything unrecognized
// gets the neutral tier rather than an error.
func Interpret(classification string) Interpretation {
	switch strings.ToLower(strings.TrimSpace(classification)) {
	case "normal":
		return Interpretation{Severity: SeverityOK, AdviceKey: "advice.normal"}
	case "mild":
		return Interpretation{Severity: SeverityWarning, AdviceKey: "advice.consult_recommended"}
	case "high-risk":
		return Interpretation{Severity: SeverityDanger, AdviceKey: "advice.consult_urgent"}
	case "inconclusive":
		return Interpretation{Severity: SeverityNone, AdviceKey: "advice.retake_photo"}
	default:
		return Interpretation{Severity: SeverityNone, AdviceKey: "advice.check_results"}
	}
}
