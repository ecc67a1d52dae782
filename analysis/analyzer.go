// Package analysis asks the vision model for a Cobb angle estimate and turns
// the structured answer into a typed result.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/paul5577/AI-analysis-of-scoliosis/gemini"
	"github.com/paul5577/AI-analysis-of-scoliosis/imageprep"
	"github.com/paul5577/AI-analysis-of-scoliosis/model"
)

const instructionPrompt = `You are a clinical assistant estimating spinal curvature from a photograph of a person's back.

First judge the image itself. If it is not a clear, well-lit, unobstructed view of a human back, do not guess: return a cobbAngle of -1 and the classification "Inconclusive".

Otherwise, locate the upper and lower end vertebrae of the most pronounced spinal curve, estimate the angle between the tangent lines of their end plates (the Cobb angle, in degrees), and classify the severity:
- "Normal" for an angle below 10 degrees
- "Mild" for an angle from 10 up to but not including 25 degrees
- "High-Risk" for an angle of 25 degrees or more

Respond with the angle and the classification only.`

// responseSchema constrains the model to exactly the two fields we parse.
var responseSchema = &gemini.Schema{
	Type: "object",
	Properties: map[string]*gemini.Schema{
		"cobbAngle":      {Type: "number"},
		"classification": {Type: "string", Enum: []string{"Normal", "Mild", "High-Risk", "Inconclusive"}},
	},
	Required: []string{"cobbAngle", "classification"},
}

// SchemaViolationError means the model's payload didn't parse into the
// required two-field shape, or broke the sentinel invariant.
type SchemaViolationError struct {
	Payload string
	Err     error
}

func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf("model response violates schema: %v", e.Err)
}

func (e *SchemaViolationError) Unwrap() error { return e.Err }

// ContentGenerator is the slice of the API client the analyzer needs.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, apiKey string, req gemini.GenerateContentRequest) (*gemini.GenerateContentResponse, error)
}

type Analyzer struct {
	client ContentGenerator
}

func NewAnalyzer(client ContentGenerator) *Analyzer {
	return &Analyzer{client: client}
}

// Analyze submits one prepared image and returns the parsed result. Transport
// and auth errors from the underlying call propagate untouched; callers
// classify them with gemini.Classify.
func (a *Analyzer) Analyze(ctx context.Context, payload imageprep.Payload, apiKey string) (model.AnalysisResult, error) {
	req := gemini.GenerateContentRequest{
		Contents: []gemini.Content{{
			Role: "user",
			Parts: []gemini.Part{
				{InlineData: &gemini.InlineData{MimeType: payload.MimeType, Data: payload.Data}},
				{Text: instructionPrompt},
			},
		}},
		GenerationConfig: &gemini.GenerationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   responseSchema,
		},
	}

	resp, err := a.client.GenerateContent(ctx, apiKey, req)
	if err != nil {
		return model.AnalysisResult{}, err
	}

	text := resp.Text()
	if text == "" {
		return model.AnalysisResult{}, gemini.ErrEmptyResponse
	}

	return parseResult(text)
}

func parseResult(text string) (model.AnalysisResult, error) {
	var record struct {
		CobbAngle      *float64 `json:"cobbAngle"`
		Classification string   `json:"classification"`
	}
	if err := json.Unmarshal([]byte(text), &record); err != nil {
		return model.AnalysisResult{}, &SchemaViolationError{Payload: text, Err: err}
	}
	if record.CobbAngle == nil || record.Classification == "" {
		return model.AnalysisResult{}, &SchemaViolationError{Payload: text, Err: fmt.Errorf("missing required fields")}
	}

	classification, err := model.ParseClassification(record.Classification)
	if err != nil {
		return model.AnalysisResult{}, &SchemaViolationError{Payload: text, Err: err}
	}

	angle := *record.CobbAngle
	if classification == model.ClassificationInconclusive {
		// The sentinel pairs only with Inconclusive.
		angle = model.InconclusiveAngle
	} else if angle < 0 {
		return model.AnalysisResult{}, &SchemaViolationError{Payload: text, Err: fmt.Errorf("negative angle %v for classification %s", angle, classification)}
	}

	log.WithField("cobbAngle", angle).WithField("classification", classification).Debug("parsed analysis result")

	return model.AnalysisResult{
		CobbAngleDegrees: angle,
		Classification:   classification,
		CapturedAt:       time.Now().Format("2006-01-02"),
	}, nil
}
