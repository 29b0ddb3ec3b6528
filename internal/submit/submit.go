// Package submit is the caller side of the relay: it validates input, keeps
// at most one request in flight and normalizes whatever comes back.
package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/tidwall/gjson"

	"github.com/spacesedan/sentilens/internal/clients"
	"github.com/spacesedan/sentilens/internal/models"
	"github.com/spacesedan/sentilens/internal/normalize"
)

var (
	ErrEmptyText = errors.New("text is empty")
	ErrBusy      = errors.New("a submission is already in flight")
)

// RelayError is a non-2xx reply from the relay. Message is the relay's
// generic error string, never upstream detail.
type RelayError struct {
	StatusCode int
	Message    string
}

func (e *RelayError) Error() string {
	return fmt.Sprintf("relay responded with status %d: %s", e.StatusCode, e.Message)
}

type Submitter struct {
	client   *http.Client
	endpoint string
	busy     atomic.Bool
}

// NewSubmitter targets {relayURL}/api/predict.
func NewSubmitter(relayURL string, timeout time.Duration) *Submitter {
	return &Submitter{
		client:   &http.Client{Timeout: timeout},
		endpoint: strings.TrimRight(relayURL, "/") + "/api/predict",
	}
}

func (s *Submitter) Busy() bool {
	return s.busy.Load()
}

// Submit sends text to the relay. Whitespace-only text is rejected before any
// network call, and so is a call made while another one is still running.
func (s *Submitter) Submit(ctx context.Context, text string) (models.AnalysisResult, error) {
	if strings.TrimSpace(text) == "" {
		return models.AnalysisResult{}, ErrEmptyText
	}
	if !s.busy.CompareAndSwap(false, true) {
		return models.AnalysisResult{}, ErrBusy
	}
	defer s.busy.Store(false)

	payload, err := json.Marshal(models.AnalysisRequest{Text: text})
	if err != nil {
		return models.AnalysisResult{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return models.AnalysisResult{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", clients.USER_AGENT)

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return models.AnalysisResult{}, fmt.Errorf("relay request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := clients.ReadLimited(resp.Body)
	if err != nil {
		return models.AnalysisResult{}, fmt.Errorf("failed to read relay response: %w", err)
	}

	slog.Debug("[Submitter] Relay responded",
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return models.AnalysisResult{}, relayError(resp.StatusCode, body)
	}

	return normalize.Normalize(body), nil
}

func relayError(status int, body []byte) *RelayError {
	msg := gjson.GetBytes(body, "error").String()
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &RelayError{StatusCode: status, Message: msg}
}
