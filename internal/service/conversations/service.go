// Package conversations is the HTTP client for the REST collaborators
// the engine consumes: conversation fetching, customer creation, and
// the close/reopen/priority/assign calls whose outcome drives the
// lifecycle tracker. The endpoints themselves are implemented elsewhere;
// this client only moves data.
package conversations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"chatsync/internal/config"
	"chatsync/internal/lib/sl"
)

// Service talks to the support backend REST API.
type Service struct {
	BaseURL string
	Token   string
	Log     *slog.Logger

	client *http.Client
}

// NewService creates a conversations client from config.
func NewService(conf *config.Config, log *slog.Logger) *Service {
	return &Service{
		BaseURL: conf.API.BaseURL,
		Token:   conf.API.Token,
		Log:     log.With(sl.Module("service.conversations")),
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// dataEnvelope is the backend's response wrapper.
type dataEnvelope struct {
	Data json.RawMessage `json:"data"`
}

// do sends a request and decodes the "data" envelope into out (out may
// be nil when the body does not matter).
func (s *Service) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewBuffer(encoded)
	}

	url := s.BaseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}

	if s.Token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.Token))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %v", err)
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		s.Log.With(
			slog.String("method", method),
			slog.String("url", url),
			slog.Int("status", resp.StatusCode),
		).Error("invalid response code")
		return fmt.Errorf("request failed with status: %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %v", err)
	}

	var envelope dataEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("failed to parse response: %v", err)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("failed to parse response data: %v", err)
	}
	return nil
}
