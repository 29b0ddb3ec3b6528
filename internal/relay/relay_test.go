package relay

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/spacesedan/sentilens/internal/clients"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"))
}

type MockPredictor struct {
	mock.Mock
}

func (m *MockPredictor) Predict(ctx context.Context, body []byte) (clients.UpstreamResponse, error) {
	args := m.Called(ctx, body)
	return args.Get(0).(clients.UpstreamResponse), args.Error(1)
}

func postPredict(t *testing.T, r *Relay, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.HandlePredict(rec, req)
	return rec
}

func TestHandlePredict_Outcomes(t *testing.T) {
	tests := []struct {
		name       string
		resp       clients.UpstreamResponse
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "success passes body through",
			resp:       clients.UpstreamResponse{StatusCode: http.StatusOK, Body: []byte(`{"label":"negative","confidence":92,"extra":{"a":1}}`)},
			wantStatus: http.StatusOK,
			wantBody:   `{"label":"negative","confidence":92,"extra":{"a":1}}`,
		},
		{
			name:       "success status mirrored",
			resp:       clients.UpstreamResponse{StatusCode: http.StatusCreated, Body: []byte(`{"sentiment":"pos"}`)},
			wantStatus: http.StatusCreated,
			wantBody:   `{"sentiment":"pos"}`,
		},
		{
			name:       "rejected keeps status",
			err:        &clients.UpstreamRejectedError{StatusCode: http.StatusServiceUnavailable},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `{"error":"Backend error"}`,
		},
		{
			name:       "rejected 422",
			err:        &clients.UpstreamRejectedError{StatusCode: http.StatusUnprocessableEntity},
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   `{"error":"Backend error"}`,
		},
		{
			name:       "rejected 304 cannot carry a body",
			err:        &clients.UpstreamRejectedError{StatusCode: http.StatusNotModified},
			wantStatus: http.StatusBadGateway,
			wantBody:   `{"error":"Backend error"}`,
		},
		{
			name:       "transport failure",
			err:        &clients.TransportError{Op: "send request", Err: errors.New("connection refused")},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"Failed to connect to backend"}`,
		},
		{
			name:       "unclassified failure",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"Failed to connect to backend"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			predictor := new(MockPredictor)
			predictor.On("Predict", mock.Anything, []byte(`{"text":"hello"}`)).Return(tt.resp, tt.err)

			rec := postPredict(t, NewRelay(predictor), `{"text":"hello"}`)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
			predictor.AssertExpectations(t)
		})
	}
}

func TestHandlePredict_InvalidInboundBody(t *testing.T) {
	predictor := new(MockPredictor)

	rec := postPredict(t, NewRelay(predictor), `{"text":`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to connect to backend"}`, rec.Body.String())
	predictor.AssertNotCalled(t, "Predict", mock.Anything, mock.Anything)
}

func TestHandlePredict_OversizedInboundBody(t *testing.T) {
	predictor := new(MockPredictor)
	body := `{"text":"` + strings.Repeat("a", clients.MAX_BODY_BYTES) + `"}`

	rec := postPredict(t, NewRelay(predictor), body)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	predictor.AssertNotCalled(t, "Predict", mock.Anything, mock.Anything)
}

func newUpstreamRelay(srv *httptest.Server, timeout time.Duration) *Relay {
	return NewRelay(clients.NewUpstreamClient(srv.URL+"/api/predict", srv.URL+"/api/health", timeout))
}

func TestRelay_EndToEnd(t *testing.T) {
	t.Run("scenario a", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var buf bytes.Buffer
			_, _ = buf.ReadFrom(r.Body)
			assert.JSONEq(t, `{"text":"I loved it"}`, buf.String())
			_, _ = w.Write([]byte(`{"sentiment":"positive","score":0.87}`))
		}))
		defer srv.Close()

		rec := postPredict(t, newUpstreamRelay(srv, time.Second), `{"text":"I loved it"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"sentiment":"positive","score":0.87}`, rec.Body.String())
	})

	t.Run("scenario c upstream 503", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		rec := postPredict(t, newUpstreamRelay(srv, time.Second), `{"text":"x"}`)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.JSONEq(t, `{"error":"Backend error"}`, rec.Body.String())
	})

	t.Run("upstream 304", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotModified)
		}))
		defer srv.Close()

		rec := postPredict(t, newUpstreamRelay(srv, time.Second), `{"text":"x"}`)
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.JSONEq(t, `{"error":"Backend error"}`, rec.Body.String())
	})

	t.Run("scenario d connection refused", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		relay := newUpstreamRelay(srv, time.Second)
		srv.Close()

		rec := postPredict(t, relay, `{"text":"x"}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"Failed to connect to backend"}`, rec.Body.String())
	})

	t.Run("upstream hangs past deadline", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer srv.Close()

		rec := postPredict(t, newUpstreamRelay(srv, 50*time.Millisecond), `{"text":"x"}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"Failed to connect to backend"}`, rec.Body.String())
	})

	t.Run("upstream body not json", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("Internal Server Error"))
		}))
		defer srv.Close()

		rec := postPredict(t, newUpstreamRelay(srv, time.Second), `{"text":"x"}`)
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"Failed to connect to backend"}`, rec.Body.String())
	})
}
