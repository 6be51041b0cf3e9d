package http

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"go.uber.org/zap"

	"pricetrack/internal/domain/item"
	"pricetrack/internal/shared/middleware"
	"pricetrack/internal/web"
)

// HandleHealth returns a simple health check response.
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// Pages renders the server-side HTML pages.
type Pages struct {
	items     *item.Service
	templates *template.Template
	log       *zap.Logger
}

func NewPages(items *item.Service, log *zap.Logger) (*Pages, error) {
	tmpl, err := template.New("pages").Funcs(template.FuncMap{
		"day": func(t time.Time) string { return t.UTC().Format(time.DateOnly) },
	}).ParseFS(web.FS, "*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page templates: %w", err)
	}

	return &Pages{items: items, templates: tmpl, log: log.Named("pages")}, nil
}

type homePage struct {
	Username string
}

type dashboardPage struct {
	Username string
	Items    []*item.Item
}

// HandleHome serves the welcome page with the GitHub login link.
func (p *Pages) HandleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	p.render(w, "home.html", homePage{Username: middleware.Username(r.Context())})
}

// HandleDashboard lists the session user's items.
func (p *Pages) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "You are not logged in", http.StatusUnauthorized)
		return
	}

	items, err := p.items.ListForUser(r.Context(), userID)
	if err != nil {
		p.log.Error("Failed to load dashboard", zap.String("user_id", userID), zap.Error(err))
		http.Error(w, "Error retrieving items", http.StatusInternalServerError)
		return
	}

	p.render(w, "dashboard.html", dashboardPage{
		Username: middleware.Username(r.Context()),
		Items:    items,
	})
}

func (p *Pages) HandleSubmitURL(w http.ResponseWriter, r *http.Request) {
	p.renderForm(w, r, "submit_url.html")
}

func (p *Pages) HandleSubmitDescription(w http.ResponseWriter, r *http.Request) {
	p.renderForm(w, r, "submit_description.html")
}

func (p *Pages) HandleSubmitItem(w http.ResponseWriter, r *http.Request) {
	p.renderForm(w, r, "submit_item.html")
}

func (p *Pages) renderForm(w http.ResponseWriter, r *http.Request, name string) {
	if _, ok := middleware.UserID(r.Context()); !ok {
		http.Error(w, "You are not logged in", http.StatusUnauthorized)
		return
	}
	p.render(w, name, nil)
}

// render executes into a buffer first so a template error still yields a
// clean 500.
func (p *Pages) render(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := p.templates.ExecuteTemplate(&buf, name, data); err != nil {
		p.log.Error("Failed to render page", zap.String("template", name), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}
