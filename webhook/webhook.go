// Package webhook posts the pipeline's completion envelope to a
// caller-supplied callback URL. Grounded on
// clients.NewPeriodicCallbackClient's retryablehttp client
// construction, collapsed to a single POST-and-log call per
// spec.md §4.15: render artifacts are already persisted, so a failed
// or non-2xx callback is logged but never fails the pipeline.
package webhook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/videoedit/ai-edit-api/config"
	"github.com/videoedit/ai-edit-api/log"
)

// Envelope is the outbound webhook body spec.md §6 names.
type Envelope struct {
	StorageURL   string      `json:"storage_url"`
	CallbackData interface{} `json:"callback_data"`
}

// Caller posts Envelope to a callback URL.
type Caller struct {
	httpClient *http.Client
}

func New() *Caller {
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 1 * time.Second
	client.Logger = log.NewRetryableHTTPLogger()
	client.HTTPClient = &http.Client{Timeout: config.WebhookTimeout}

	return &Caller{httpClient: client.StandardClient()}
}

// Call posts the envelope to callbackURL. A transport error or
// non-2xx response is logged and returned as an error for the
// orchestrator to log, but callers must treat it as non-fatal per
// spec.md §4.15 — the pipeline has already completed by this point.
func (c *Caller) Call(requestID, callbackURL string, env Envelope) error {
	if callbackURL == "" {
		return nil
	}

	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("webhook: marshaling envelope: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, callbackURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.LogError(requestID, "webhook call failed", err, "url", callbackURL)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Log(requestID, "webhook call returned non-2xx", "url", callbackURL, "status", resp.StatusCode)
		return fmt.Errorf("webhook: non-2xx status %d", resp.StatusCode)
	}
	return nil
}
