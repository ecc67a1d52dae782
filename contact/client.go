// Package contact forwards consultation requests to the transactional-email
// service, merged with the latest analysis result.
package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/maps"
)

const DefaultBaseURL = "https://api.emailjs.com/api/v1.0"

// ErrServiceUnavailable means the email service was never configured; the
// form can't be submitted at all.
var ErrServiceUnavailable = errors.New("email service is not configured")

// SubmissionError is a transport-level rejection of a send. The caller keeps
// the form open with the entered data intact and may try again later; there
// is no automatic retry.
type SubmissionError struct {
	StatusCode int
	Body       string
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("email submission rejected with status %d: %s", e.StatusCode, e.Body)
}

type SendRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	TemplateParams map[string]string `json:"template_params"`
}

type Client struct {
	baseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		HTTPClient: http.DefaultClient,
	}
}

func (c Client) Send(ctx context.Context, sr SendRequest) error {
	reqBody, err := json.Marshal(sr)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/email/send", c.baseURL), bytes.NewReader(reqBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	// Field names only; the values are the user's contact details.
	log.WithField("template", sr.TemplateID).WithField("fields", maps.Keys(sr.TemplateParams)).Debug("sending consultation email")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return &SubmissionError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return nil
}
