package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

type Client struct {
	baseURL    string
	model      string
	HTTPClient *http.Client
}

func NewClient(model string, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		model:      model,
		HTTPClient: http.DefaultClient,
	}
}

// GenerateContent performs a single generateContent call. The API key is
// passed per call because it can change between calls within a session (the
// user may save their own key after an auth failure). No retries, no local
// timeout beyond whatever HTTPClient enforces.
func (c Client) GenerateContent(ctx context.Context, apiKey string, gcr GenerateContentRequest) (*GenerateContentResponse, error) {
	reqBody, err := json.Marshal(gcr)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", apiKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apiErrorFromBody(resp.StatusCode, respBody)
	}

	var gcResp GenerateContentResponse
	if err = json.Unmarshal(respBody, &gcResp); err != nil {
		return nil, err
	}

	if gcResp.PromptFeedback != nil && gcResp.PromptFeedback.BlockReason != "" {
		return nil, &BlockedError{Reason: gcResp.PromptFeedback.BlockReason}
	}
	for _, candidate := range gcResp.Candidates {
		if candidate.FinishReason == "SAFETY" {
			return nil, &BlockedError{Reason: candidate.FinishReason}
		}
	}

	return &gcResp, nil
}

func apiErrorFromBody(statusCode int, body []byte) *APIError {
	var wrapper struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &wrapper); err != nil || wrapper.Error.Message == "" {
		// Not the documented error envelope; keep whatever the server said.
		return &APIError{StatusCode: statusCode, Message: string(body)}
	}
	return &APIError{
		StatusCode: statusCode,
		Status:     wrapper.Error.Status,
		Message:    wrapper.Error.Message,
	}
}
