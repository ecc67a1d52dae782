package contact

import "github.com/paul5577/AI-analysis-of-scoliosis/model"

// Setting keys for the on-device fallback email configuration.
const (
	SettingPublicKey  = "emailjs_public_key"
	SettingServiceID  = "emailjs_service_id"
	SettingTemplateID = "emailjs_template_id"
)

// BuildTemplateParams merges the consultation form with the latest analysis.
// The template expects the six form fields plus the angle (one decimal, or
// the placeholder for Inconclusive) and the classification.
func BuildTemplateParams(form model.ContactRequest, last model.AnalysisResult) map[string]string {
	return map[string]string{
		"name":           form.Name,
		"age":            form.Age,
		"gender":         string(form.Gender),
		"phone":          form.Phone,
		"email":          form.Email,
		"message":        form.Message,
		"cobb_angle":     last.FormatAngle(),
		"classification": string(last.Classification),
	}
}
