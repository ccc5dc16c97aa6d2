package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/pavelanni/enade/internal/handler/views"
	appI18n "github.com/pavelanni/enade/internal/i18n"
	"github.com/pavelanni/enade/internal/model"
	"github.com/pavelanni/enade/internal/responses"
)

// savedTitles lists the distinct titles of saved questionnaires, in save order.
func (h *Handler) savedTitles() []string {
	qs, err := h.store.ListQuestionnaires()
	if err != nil {
		slog.Error("failed to list questionnaires", "error", err)
		return nil
	}
	seen := make(map[string]bool, len(qs))
	var titles []string
	for _, q := range qs {
		if !seen[q.Title] {
			seen[q.Title] = true
			titles = append(titles, q.Title)
		}
	}
	return titles
}

func (h *Handler) handleResponses(w http.ResponseWriter, r *http.Request) {
	f := responses.Filter{
		QuestionnaireTitle: r.URL.Query().Get("questionnaire"),
		StudentQuery:       r.URL.Query().Get("student"),
	}
	subs, err := h.responses.List(r.Context(), f)
	render(w, r, http.StatusOK, views.ResponsesPage(views.ResponsesData{
		Flash:       h.flash(r),
		Titles:      h.savedTitles(),
		Filter:      f,
		Responses:   subs,
		Unavailable: err != nil,
	}))
}

// findResponse resolves the student/questionnaire/date query, writing the error response
// itself when it returns false.
func (h *Handler) findResponse(w http.ResponseWriter, r *http.Request) (model.Submission, bool) {
	student := r.URL.Query().Get("student")
	date, err := time.Parse(time.RFC3339Nano, r.URL.Query().Get("date"))
	if student == "" || err != nil {
		http.Error(w, "student and date are required", http.StatusBadRequest)
		return model.Submission{}, false
	}

	sub, err := h.responses.Find(r.Context(), student, r.URL.Query().Get("questionnaire"), date)
	switch {
	case err == nil:
		return sub, true
	case errors.Is(err, responses.ErrNotFound):
		http.Error(w, appI18n.T(r.Context(), "ResponseNotFound"), http.StatusNotFound)
	default:
		slog.Error("failed to load response", "student", student, "error", err)
		http.Error(w, appI18n.T(r.Context(), "ResponsesUnavailable"), http.StatusBadGateway)
	}
	return model.Submission{}, false
}

func (h *Handler) handleResponseDetail(w http.ResponseWriter, r *http.Request) {
	sub, ok := h.findResponse(w, r)
	if !ok {
		return
	}
	render(w, r, http.StatusOK, views.ResponsePage(views.ResponseData{Submission: sub}))
}

func (h *Handler) handleResponseExport(w http.ResponseWriter, r *http.Request) {
	sub, ok := h.findResponse(w, r)
	if !ok {
		return
	}
	res, err := responses.ExportOne(sub)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeDownload(w, res)
}
