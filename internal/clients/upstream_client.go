package clients

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
)

// UpstreamClient talks to the external sentiment service. It never retries.
type UpstreamClient struct {
	Client     *http.Client
	predictURL string
	healthURL  string
	timeout    time.Duration
}

func NewUpstreamClient(predictURL, healthURL string, timeout time.Duration) *UpstreamClient {
	slog.Info("[UpstreamClient] Initializing Client",
		slog.String("predict_url", predictURL),
		slog.Duration("timeout", timeout))

	return &UpstreamClient{
		Client: &http.Client{
			Timeout: timeout,
		},
		predictURL: predictURL,
		healthURL:  healthURL,
		timeout:    timeout,
	}
}

// UpstreamResponse is a successful upstream reply: a 2xx status and a body
// that is valid JSON.
type UpstreamResponse struct {
	StatusCode int
	Body       []byte
}

// Predict posts body as-is to the predict endpoint. It returns
// *UpstreamRejectedError for non-2xx replies and *TransportError for every
// other failure, including a reply that is not JSON.
func (u *UpstreamClient) Predict(ctx context.Context, body []byte) (UpstreamResponse, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.predictURL, bytes.NewReader(body))
	if err != nil {
		return UpstreamResponse{}, &TransportError{Op: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", USER_AGENT)

	resp, err := u.Client.Do(req)
	if err != nil {
		return UpstreamResponse{}, &TransportError{Op: "send request", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, MAX_BODY_BYTES))
		slog.Warn("[UpstreamClient] Upstream rejected request",
			slog.Int("status", resp.StatusCode),
			slog.Duration("elapsed", time.Since(start)))
		return UpstreamResponse{}, &UpstreamRejectedError{StatusCode: resp.StatusCode}
	}

	respBody, err := ReadLimited(resp.Body)
	if err != nil {
		return UpstreamResponse{}, &TransportError{Op: "read response", Err: err}
	}

	if !gjson.ValidBytes(respBody) {
		slog.Error("[UpstreamClient] Upstream returned invalid JSON",
			getPreview(respBody),
			slog.Int("raw_response_length", len(respBody)))
		return UpstreamResponse{}, &TransportError{Op: "parse response", Err: errors.New("response body is not valid JSON")}
	}

	slog.Debug("[UpstreamClient] Predict request successful",
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)))

	return UpstreamResponse{StatusCode: resp.StatusCode, Body: respBody}, nil
}

// HealthCheck reports whether the upstream health endpoint answers 200.
func (u *UpstreamClient) HealthCheck(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.healthURL, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", USER_AGENT)

	resp, err := u.Client.Do(req)
	if err != nil {
		slog.Debug("[UpstreamClient] Health check failed",
			slog.String("error", err.Error()))
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, MAX_BODY_BYTES))

	return resp.StatusCode == http.StatusOK
}

// Close drops idle keep-alive connections to the upstream.
func (u *UpstreamClient) Close() {
	u.Client.CloseIdleConnections()
}

// ReadLimited reads at most MAX_BODY_BYTES and fails, rather than truncating,
// when r holds more.
func ReadLimited(r io.Reader) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, MAX_BODY_BYTES+1))
	if err != nil {
		return nil, err
	}
	if len(body) > MAX_BODY_BYTES {
		return nil, fmt.Errorf("response body exceeds %d bytes", MAX_BODY_BYTES)
	}
	return body, nil
}

func getPreview(respBody []byte) slog.Attr {
	raw := string(respBody)
	if len(raw) > 50 {
		raw = raw[:50]
	}
	return slog.String("raw_response", raw)
}
