package model

import (
	"fmt"
	"strings"
)

type Classification string

const (
	ClassificationNormal       Classification = "Normal"
	ClassificationMild         Classification = "Mild"
	ClassificationHighRisk     Classification = "High-Risk"
	ClassificationInconclusive Classification = "Inconclusive"
)

// InconclusiveAngle is the sentinel the model returns when the photo can't be measured.
const InconclusiveAngle = -1

func ParseClassification(s string) (Classification, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "normal":
		return ClassificationNormal, nil
	case "mild":
		return ClassificationMild, nil
	case "high-risk":
		return ClassificationHighRisk, nil
	case "inconclusive":
		return ClassificationInconclusive, nil
	default:
		return "", fmt.Errorf("unknown classification: %s", s)
	}
}

type AnalysisResult struct {
	CobbAngleDegrees float64        `json:"cobbAngle"`
	Classification   Classification `json:"classification"`
	CapturedAt       string         `json:"capturedAt"`
}

// FormatAngle renders the Cobb angle to one decimal place. The Inconclusive
// sentinel must never show up as a degree value.
func (r AnalysisResult) FormatAngle() string {
	if r.Classification == ClassificationInconclusive || r.CobbAngleDegrees < 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.1f", r.CobbAngleDegrees)
}
