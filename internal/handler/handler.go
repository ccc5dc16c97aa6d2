package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/pavelanni/enade/internal/bank"
	"github.com/pavelanni/enade/internal/builder"
	"github.com/pavelanni/enade/internal/handler/views"
	appI18n "github.com/pavelanni/enade/internal/i18n"
	"github.com/pavelanni/enade/internal/model"
	"github.com/pavelanni/enade/internal/responses"
	"github.com/pavelanni/enade/internal/store"
)

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	bank      *bank.Bank
	builders  *builder.Registry
	store     *store.Store
	responses *responses.Client
	validate  *validator.Validate
	config    model.AppConfig
}

// New creates a new Handler.
func New(b *bank.Bank, s *store.Store, rc *responses.Client, cfg model.AppConfig) (*Handler, error) {
	if b == nil || s == nil || rc == nil {
		return nil, errors.New("handler: bank, store and responses client are required")
	}
	return &Handler{
		bank:      b,
		builders:  builder.NewRegistry(b),
		store:     s,
		responses: rc,
		validate:  validator.New(),
		config:    cfg,
	}, nil
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/questions", h.handleAPIQuestions)
		r.Get("/questionnaires", h.handleAPIQuestionnaires)
		r.Get("/questionnaires/{id}", h.handleAPIQuestionnaire)
		r.Get("/status", h.handleAPIStatus)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.sessionMiddleware)
		r.Use(h.csrfMiddleware)

		r.Get("/", h.handleBank)

		r.Get("/builder", h.handleBuilderPage)
		r.Post("/builder/start", h.handleStart)
		r.Post("/builder/add/{questionID}", h.handleAdd)
		r.Post("/builder/remove/{index}", h.handleRemove)
		r.Post("/builder/preset/{preset}", h.handlePreset)
		r.Post("/builder/cancel", h.handleCancel)
		r.Post("/builder/save", h.handleSave)

		r.Get("/questionnaires", h.handleQuestionnaires)
		r.Get("/questionnaires/{id}", h.handleQuestionnaire)
		r.Post("/questionnaires/{id}/delete", h.handleDelete)
		r.Get("/questionnaires/{id}/export.html", h.handleExportHTML)
		r.Get("/questionnaires/{id}/export.pdf", h.handleExportPDF)

		r.Get("/responses", h.handleResponses)
		r.Get("/responses/detail", h.handleResponseDetail)
		r.Get("/responses/export", h.handleResponseExport)
	})
}

// BasePathMiddleware exposes the configured base path to views.
func (h *Handler) BasePathMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := model.ContextWithBasePath(r.Context(), h.config.BasePath)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) path(p string) string {
	return h.config.BasePath + p
}

func (h *Handler) cookiePath() string {
	if h.config.BasePath != "" {
		return h.config.BasePath + "/"
	}
	return "/"
}

// flashKeys are the message ids that may be passed back through a redirect.
var flashKeys = map[string]bool{
	"QuestionnaireSaved":   true,
	"QuestionnaireDeleted": true,
	"DraftCancelled":       true,
	"DraftReplaced":        true,
}

// redirect sends the browser to p after a POST, carrying an optional notice.
func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, p, msg string) {
	target := h.path(p)
	if msg != "" {
		target += "?" + url.Values{"msg": {msg}}.Encode()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *Handler) flash(r *http.Request) views.Flash {
	msg := r.URL.Query().Get("msg")
	if !flashKeys[msg] {
		return views.Flash{}
	}
	return views.Flash{Message: appI18n.T(r.Context(), msg)}
}

func render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		slog.Error("render error", "path", r.URL.Path, "error", err)
	}
}

func (h *Handler) handleBank(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := bank.Filter{
		Text:     q.Get("q"),
		Category: q.Get("category"),
		Type:     model.QuestionType(q.Get("type")),
	}
	questions := h.bank.Filter(f)
	render(w, r, http.StatusOK, views.BankPage(views.BankData{
		Flash:      h.flash(r),
		Questions:  questions,
		Total:      len(questions),
		Categories: h.bank.Categories(),
		Filter:     f,
	}))
}
