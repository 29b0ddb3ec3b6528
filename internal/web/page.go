// Package web serves the single-page form in front of the relay.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/spacesedan/sentilens/internal/logging"
	"github.com/spacesedan/sentilens/internal/models"
	"github.com/spacesedan/sentilens/internal/normalize"
	"github.com/spacesedan/sentilens/internal/relay"
)

//go:embed templates/index.html
var templateFS embed.FS

type Forwarder interface {
	Forward(ctx context.Context, body []byte) relay.Reply
}

type Page struct {
	relay Forwarder
	tmpl  *template.Template
}

type pageView struct {
	Text      string
	Error     string
	Result    *normalize.Display
	CanSubmit bool
}

func NewPage(forwarder Forwarder) *Page {
	return &Page{
		relay: forwarder,
		tmpl:  template.Must(template.ParseFS(templateFS, "templates/index.html")),
	}
}

// HandleIndex serves GET /.
func (p *Page) HandleIndex(w http.ResponseWriter, r *http.Request) {
	p.render(w, r, http.StatusOK, pageView{})
}

// HandleSubmit serves POST / with a form-encoded text field. Blank text is
// sent back untouched without contacting the relay.
func (p *Page) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := r.ParseForm(); err != nil {
		p.render(w, r, http.StatusBadRequest, pageView{Error: "Could not read the submitted form."})
		return
	}

	text := r.PostFormValue("text")
	if strings.TrimSpace(text) == "" {
		p.render(w, r, http.StatusOK, pageView{Text: text})
		return
	}

	body, err := json.Marshal(models.AnalysisRequest{Text: text})
	if err != nil {
		p.render(w, r, http.StatusInternalServerError, pageView{Text: text, Error: models.ERROR_BACKEND_CONNECT})
		return
	}

	reply := p.relay.Forward(r.Context(), body)
	if !reply.OK() {
		msg := gjson.GetBytes(reply.Body, "error").String()
		if msg == "" {
			msg = models.ERROR_BACKEND_CONNECT
		}
		p.render(w, r, reply.StatusCode, pageView{Text: text, Error: msg})
		return
	}

	display := normalize.ToDisplay(normalize.Normalize(reply.Body))
	p.render(w, r, http.StatusOK, pageView{Text: text, Result: &display})
}

// render also decides the initial button state; the inline script keeps it
// in sync and blocks resubmission while a request is outstanding.
func (p *Page) render(w http.ResponseWriter, r *http.Request, status int, view pageView) {
	view.CanSubmit = strings.TrimSpace(view.Text) != ""

	var buf strings.Builder
	if err := p.tmpl.Execute(&buf, view); err != nil {
		logging.FromContext(r.Context()).Error("[Page] Failed to render template",
			slog.String("error", err.Error()))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(buf.String()))
}
