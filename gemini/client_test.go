package gemini

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewClient("test-model", server.URL)
	client.HTTPClient = server.Client()
	return client
}

func minimalRequest() GenerateContentRequest {
	return GenerateContentRequest{
		Contents: []Content{{Parts: []Part{{Text: "hello"}}}},
	}
}

func TestGenerateContent(t *testing.T) {
	t.Run("returns the candidate text on success", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/models/test-model:generateContent", r.URL.Path)
			assert.Equal(t, "secret-key", r.Header.Get("x-goog-api-key"))
			w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"cobbAngle\":14.3}"}]}}]}`))
		})

		resp, err := client.GenerateContent(context.Background(), "secret-key", minimalRequest())
		require.NoError(t, err)
		assert.Equal(t, `{"cobbAngle":14.3}`, resp.Text())
	})

	t.Run("classifies HTTP statuses into the error taxonomy", func(t *testing.T) {
		testCases := []struct {
			description string
			statusCode  int
			body        string
			wantKind    ErrorKind
		}{
			{"429 is rate limited", 429, `{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`, KindRateLimited},
			{"401 is an auth failure", 401, `{"error":{"code":401,"message":"API key not valid","status":"UNAUTHENTICATED"}}`, KindAuthFailure},
			{"403 is an auth failure", 403, `{"error":{"code":403,"message":"permission denied","status":"PERMISSION_DENIED"}}`, KindAuthFailure},
			{"400 is bad input", 400, `{"error":{"code":400,"message":"image too large","status":"INVALID_ARGUMENT"}}`, KindBadInput},
			{"500 is a generic transport error", 500, `{"error":{"code":500,"message":"internal","status":"INTERNAL"}}`, KindTransport},
			{"non-envelope bodies still classify by status code", 429, `too many requests`, KindRateLimited},
		}
		for _, testCase := range testCases {
			t.Run(testCase.description, func(t *testing.T) {
				client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(testCase.statusCode)
					w.Write([]byte(testCase.body))
				})

				_, err := client.GenerateContent(context.Background(), "secret-key", minimalRequest())
				require.Error(t, err)
				var apiErr *APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, testCase.statusCode, apiErr.StatusCode)
				assert.Equal(t, testCase.wantKind, Classify(err))
			})
		}
	})

	t.Run("safety-blocked prompts fail with a content policy error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"promptFeedback":{"blockReason":"SAFETY"}}`))
		})

		_, err := client.GenerateContent(context.Background(), "secret-key", minimalRequest())
		require.Error(t, err)
		assert.Equal(t, KindContentPolicyBlock, Classify(err))
	})

	t.Run("safety-stopped candidates fail with a content policy error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"candidates":[{"content":{"parts":[]},"finishReason":"SAFETY"}]}`))
		})

		_, err := client.GenerateContent(context.Background(), "secret-key", minimalRequest())
		require.Error(t, err)
		assert.Equal(t, KindContentPolicyBlock, Classify(err))
	})
}

func TestClassifyFallback(t *testing.T) {
	testCases := []struct {
		description string
		err         error
		wantKind    ErrorKind
	}{
		{"quota text falls back to rate limited", errors.New("Quota exceeded for model"), KindRateLimited},
		{"api key text falls back to auth failure", errors.New("the API key is rejected"), KindAuthFailure},
		{"safety text falls back to content policy", errors.New("request blocked"), KindContentPolicyBlock},
		{"invalid argument text falls back to bad input", errors.New("invalid argument: bad image"), KindBadInput},
		{"anything else is transport", errors.New("connection reset by peer"), KindTransport},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			assert.Equal(t, testCase.wantKind, Classify(testCase.err))
		})
	}
}
