package server

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/paul5577/AI-analysis-of-scoliosis/analysis"
	"github.com/paul5577/AI-analysis-of-scoliosis/contact"
	"github.com/paul5577/AI-analysis-of-scoliosis/credential"
	"github.com/paul5577/AI-analysis-of-scoliosis/gemini"
	"github.com/paul5577/AI-analysis-of-scoliosis/imageprep"
	"github.com/paul5577/AI-analysis-of-scoliosis/service"
)

// badRequestError marks caller mistakes that never reached a downstream call.
type badRequestError struct{ err error }

func (e badRequestError) Error() string { return e.err.Error() }
func (e badRequestError) Unwrap() error { return e.err }

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	// OpenSettings tells the front-end to open the settings panel so the
	// user can supply their own key.
	OpenSettings bool `json:"openSettings,omitempty"`
}

// writeError maps the error taxonomy onto HTTP. Rate limits and auth
// failures additionally signal the settings panel.
func writeError(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: err.Error(), Code: "transport_error"}
	status := http.StatusBadGateway

	var badReq badRequestError
	var decodeErr *imageprep.DecodeError
	var encodeErr *imageprep.EncodeError
	var readErr *imageprep.ReadError
	var schemaErr *analysis.SchemaViolationError
	var submissionErr *contact.SubmissionError

	switch {
	case errors.As(err, &badReq):
		status, resp.Code = http.StatusBadRequest, "bad_request"
	case errors.Is(err, service.ErrBusy):
		status, resp.Code = http.StatusConflict, "busy"
	case errors.Is(err, credential.ErrNoCredential):
		status, resp.Code = http.StatusUnauthorized, "credentials_missing"
		resp.OpenSettings = true
	case errors.Is(err, credential.ErrInvalidCredential):
		status, resp.Code = http.StatusBadRequest, "invalid_credential"
	case errors.As(err, &decodeErr):
		status, resp.Code = http.StatusBadRequest, "decode_failure"
	case errors.As(err, &encodeErr):
		status, resp.Code = http.StatusInternalServerError, "encode_failure"
	case errors.As(err, &readErr):
		status, resp.Code = http.StatusBadRequest, "file_read_failure"
	case errors.Is(err, gemini.ErrEmptyResponse):
		status, resp.Code = http.StatusBadGateway, "empty_response"
	case errors.As(err, &schemaErr):
		status, resp.Code = http.StatusBadGateway, "schema_violation"
	case errors.Is(err, contact.ErrServiceUnavailable):
		status, resp.Code = http.StatusServiceUnavailable, "email_service_unavailable"
	case errors.As(err, &submissionErr):
		status, resp.Code = http.StatusBadGateway, "submission_error"
	default:
		switch gemini.Classify(err) {
		case gemini.KindRateLimited:
			status, resp.Code = http.StatusTooManyRequests, "rate_limited"
			resp.OpenSettings = true
		case gemini.KindAuthFailure:
			status, resp.Code = http.StatusUnauthorized, "auth_failure"
			resp.OpenSettings = true
		case gemini.KindBadInput:
			status, resp.Code = http.StatusBadRequest, "bad_input"
		case gemini.KindContentPolicyBlock:
			status, resp.Code = http.StatusUnprocessableEntity, "content_policy_block"
		}
	}

	log.WithField("code", resp.Code).WithField("status", status).Debugf("request failed: %v", err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}
