package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseClassification(t *testing.T) {
	t.Run("accepts all four classifications regardless of case", func(t *testing.T) {
		for raw, want := range map[string]Classification{
			"Normal":       ClassificationNormal,
			"mild":         ClassificationMild,
			"HIGH-RISK":    ClassificationHighRisk,
			"Inconclusive": ClassificationInconclusive,
		} {
			got, err := ParseClassification(raw)
			assert.NoError(t, err)
			assert.Equal(t, want, got)
		}
	})

	t.Run("rejects unknown values", func(t *testing.T) {
		_, err := ParseClassification("severe")
		assert.Error(t, err)
	})
}

func TestFormatAngle(t *testing.T) {
	t.Run("formats to one decimal place", func(t *testing.T) {
		r := AnalysisResult{CobbAngleDegrees: 14.25, Classification: ClassificationMild}
		assert.Equal(t, "14.2", r.FormatAngle())
	})

	t.Run("inconclusive renders as a placeholder, never a degree value", func(t *testing.T) {
		r := AnalysisResult{CobbAngleDegrees: InconclusiveAngle, Classification: ClassificationInconclusive}
		assert.Equal(t, "N/A", r.FormatAngle())
	})

	t.Run("negative angles never render numerically", func(t *testing.T) {
		r := AnalysisResult{CobbAngleDegrees: -3, Classification: ClassificationNormal}
		assert.Equal(t, "N/A", r.FormatAngle())
	})
}
