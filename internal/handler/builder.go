package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pavelanni/enade/internal/builder"
	"github.com/pavelanni/enade/internal/handler/views"
	appI18n "github.com/pavelanni/enade/internal/i18n"
	"github.com/pavelanni/enade/internal/store"
)

type startForm struct {
	Title       string `validate:"required,max=200"`
	Description string `validate:"max=2000"`
}

// builderData snapshots the session for rendering outside the registry lock.
func builderData(s *builder.Session) views.BuilderData {
	data := views.BuilderData{Available: s.Available()}
	if d, err := s.Draft(); err == nil {
		dc := *d
		data.Draft = &dc
		data.Selected = s.Selected()
	}
	return data
}

func (h *Handler) handleBuilderPage(w http.ResponseWriter, r *http.Request) {
	var data views.BuilderData
	_ = h.builders.View(sessionIDFromContext(r.Context()), func(s *builder.Session) error {
		data = builderData(s)
		return nil
	})
	data.Flash = h.flash(r)
	render(w, r, http.StatusOK, views.BuilderPage(data))
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	form := startForm{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Description: strings.TrimSpace(r.FormValue("description")),
	}
	id := sessionIDFromContext(r.Context())

	if err := h.validate.Struct(form); err != nil {
		var data views.BuilderData
		_ = h.builders.View(id, func(s *builder.Session) error {
			data = builderData(s)
			return nil
		})
		data.Title, data.Description = form.Title, form.Description
		data.Error = appI18n.T(r.Context(), "TitleRequired")
		render(w, r, http.StatusBadRequest, views.BuilderPage(data))
		return
	}

	var replaced bool
	_ = h.builders.With(id, func(s *builder.Session) error {
		_, replaced = s.Start(form.Title, form.Description)
		return nil
	})
	slog.Info("draft started", "session", id, "title", form.Title, "replaced", replaced)

	msg := ""
	if replaced {
		msg = "DraftReplaced"
	}
	h.redirect(w, r, "/builder", msg)
}

// mutate runs a builder operation and returns to the builder page. Operations
// without a draft fall through to the "no draft" page. Only Start registers
// a session, so these never grow the registry.
func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, op func(*builder.Session) error) {
	err := h.builders.View(sessionIDFromContext(r.Context()), op)
	if err != nil && !errors.Is(err, builder.ErrNoDraft) {
		slog.Error("builder operation failed", "path", r.URL.Path, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.redirect(w, r, "/builder", "")
}

func (h *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	questionID, err := strconv.Atoi(chi.URLParam(r, "questionID"))
	if err != nil {
		http.Error(w, "invalid question ID", http.StatusBadRequest)
		return
	}
	h.mutate(w, r, func(s *builder.Session) error {
		_, err := s.AddQuestion(questionID)
		return err
	})
}

func (h *Handler) handleRemove(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		http.Error(w, "invalid index", http.StatusBadRequest)
		return
	}
	h.mutate(w, r, func(s *builder.Session) error {
		_, err := s.RemoveQuestion(index)
		return err
	})
}

func (h *Handler) handlePreset(w http.ResponseWriter, r *http.Request) {
	preset, ok := builder.ParsePreset(chi.URLParam(r, "preset"))
	if !ok {
		http.Error(w, "unknown preset", http.StatusBadRequest)
		return
	}
	h.mutate(w, r, func(s *builder.Session) error {
		return s.SelectPreset(preset)
	})
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	// A session without a draft holds nothing worth keeping.
	h.builders.Drop(sessionIDFromContext(r.Context()))
	h.redirect(w, r, "/builder", "DraftCancelled")
}

func (h *Handler) handleSave(w http.ResponseWriter, r *http.Request) {
	id := sessionIDFromContext(r.Context())
	var data views.BuilderData
	err := h.builders.View(id, func(s *builder.Session) error {
		d, err := s.Draft()
		if err != nil {
			return err
		}
		if _, err := h.store.SaveQuestionnaire(*d); err != nil {
			data = builderData(s)
			return err
		}
		s.Cancel()
		return nil
	})

	switch {
	case err == nil:
		h.builders.Drop(id)
		h.redirect(w, r, "/questionnaires", "QuestionnaireSaved")
	case errors.Is(err, builder.ErrNoDraft):
		h.redirect(w, r, "/builder", "")
	case errors.Is(err, store.ErrEmptyQuestionnaire):
		data.Error = appI18n.T(r.Context(), "EmptyQuestionnaire")
		render(w, r, http.StatusBadRequest, views.BuilderPage(data))
	default:
		slog.Error("failed to save questionnaire", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
