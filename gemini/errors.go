package gemini

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind is the four-way-plus-generic taxonomy callers branch on. It's UX
// guidance for the surface layer, not a promise about the provider's wire
// contract.
type ErrorKind string

const (
	KindRateLimited        ErrorKind = "rate_limited"
	KindAuthFailure        ErrorKind = "auth_failure"
	KindBadInput           ErrorKind = "bad_input"
	KindContentPolicyBlock ErrorKind = "content_policy_block"
	KindTransport          ErrorKind = "transport"
)

// ErrEmptyResponse means the call succeeded but returned no payload text.
var ErrEmptyResponse = errors.New("model returned an empty response")

// APIError is a non-2xx answer from the API, classified by status code.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Status, e.Message)
}

func (e *APIError) Kind() ErrorKind {
	switch e.StatusCode {
	case 429:
		return KindRateLimited
	case 401, 403:
		return KindAuthFailure
	case 400:
		return KindBadInput
	}
	switch e.Status {
	case "RESOURCE_EXHAUSTED":
		return KindRateLimited
	case "UNAUTHENTICATED", "PERMISSION_DENIED":
		return KindAuthFailure
	case "INVALID_ARGUMENT":
		return KindBadInput
	}
	return KindTransport
}

// BlockedError is raised when the safety filter refuses the prompt or stops
// the candidate.
type BlockedError struct {
	Reason string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("content blocked by safety filter: %s", e.Reason)
}

// Classify resolves any error from this package into the taxonomy. Structured
// errors are matched first; lowercased substring sniffing remains only as a
// best-effort fallback for raw transport errors.
func Classify(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind()
	}
	var blocked *BlockedError
	if errors.As(err, &blocked) {
		return KindContentPolicyBlock
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "429"), strings.Contains(msg, "quota"), strings.Contains(msg, "rate limit"):
		return KindRateLimited
	case strings.Contains(msg, "401"), strings.Contains(msg, "403"), strings.Contains(msg, "api key"), strings.Contains(msg, "permission"):
		return KindAuthFailure
	case strings.Contains(msg, "safety"), strings.Contains(msg, "blocked"):
		return KindContentPolicyBlock
	case strings.Contains(msg, "400"), strings.Contains(msg, "invalid argument"):
		return KindBadInput
	default:
		return KindTransport
	}
}
