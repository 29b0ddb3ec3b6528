// Package relay implements the same-origin proxy in front of the sentiment
// service. Upstream error detail never reaches the caller: a rejected request
// keeps its status code, everything else becomes a 500.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/spacesedan/sentilens/internal/clients"
	"github.com/spacesedan/sentilens/internal/logging"
	"github.com/spacesedan/sentilens/internal/models"
)

type Predictor interface {
	Predict(ctx context.Context, body []byte) (clients.UpstreamResponse, error)
}

type Relay struct {
	upstream Predictor
}

func NewRelay(upstream Predictor) *Relay {
	return &Relay{upstream: upstream}
}

// Reply is the status and JSON body owed to the caller.
type Reply struct {
	StatusCode int
	Body       []byte
}

func (r Reply) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode <= 299
}

// Forward sends body upstream and maps the outcome onto a Reply. It never
// returns an error; failures are already translated.
func (r *Relay) Forward(ctx context.Context, body []byte) Reply {
	logger := logging.FromContext(ctx)

	if !gjson.ValidBytes(body) {
		logger.Warn("[Relay] Inbound body is not valid JSON",
			slog.Int("body_length", len(body)))
		return errorReply(http.StatusInternalServerError, models.ERROR_BACKEND_CONNECT)
	}

	resp, err := r.upstream.Predict(ctx, body)
	if err == nil {
		return Reply{StatusCode: resp.StatusCode, Body: resp.Body}
	}

	var rejected *clients.UpstreamRejectedError
	if errors.As(err, &rejected) {
		status := rejected.StatusCode
		// a 304 or 1xx cannot carry the error body
		if !bodyAllowed(status) {
			status = http.StatusBadGateway
		}
		logger.Warn("[Relay] Upstream rejected request",
			slog.Int("upstream_status", rejected.StatusCode),
			slog.Int("status", status))
		return errorReply(status, models.ERROR_BACKEND)
	}

	logger.Error("[Relay] Proxy error",
		slog.String("error", err.Error()))
	return errorReply(http.StatusInternalServerError, models.ERROR_BACKEND_CONNECT)
}

// HandlePredict serves POST /api/predict.
func (r *Relay) HandlePredict(w http.ResponseWriter, req *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, req.Body, clients.MAX_BODY_BYTES))
	if err != nil {
		logging.FromContext(req.Context()).Error("[Relay] Failed to read request body",
			slog.String("error", err.Error()))
		writeReply(w, req, errorReply(http.StatusInternalServerError, models.ERROR_BACKEND_CONNECT))
		return
	}

	writeReply(w, req, r.Forward(req.Context(), body))
}

func errorReply(status int, message string) Reply {
	body, _ := json.Marshal(models.ErrorResponse{Error: message})
	return Reply{StatusCode: status, Body: body}
}

func bodyAllowed(status int) bool {
	switch {
	case status >= 100 && status <= 199:
		return false
	case status == http.StatusNoContent, status == http.StatusNotModified:
		return false
	}
	return true
}

func writeReply(w http.ResponseWriter, req *http.Request, reply Reply) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(reply.StatusCode)
	if _, err := w.Write(reply.Body); err != nil {
		logging.FromContext(req.Context()).Warn("[Relay] Failed to write response",
			slog.Int("status", reply.StatusCode),
			slog.String("error", err.Error()))
	}
}
