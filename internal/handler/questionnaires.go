package handler

import (
	"log/slog"
	"mime"
	"net/http"
	"slices"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pavelanni/enade/internal/export"
	"github.com/pavelanni/enade/internal/handler/views"
	appI18n "github.com/pavelanni/enade/internal/i18n"
	"github.com/pavelanni/enade/internal/model"
)

func (h *Handler) handleQuestionnaires(w http.ResponseWriter, r *http.Request) {
	qs, err := h.store.ListQuestionnaires()
	if err != nil {
		slog.Error("failed to list questionnaires", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	render(w, r, http.StatusOK, views.QuestionnairesPage(views.QuestionnairesData{
		Flash:          h.flash(r),
		Questionnaires: qs,
	}))
}

// loadQuestionnaire resolves the {id} URL parameter, writing the error
// response itself when it returns false.
func (h *Handler) loadQuestionnaire(w http.ResponseWriter, r *http.Request) (model.Questionnaire, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid questionnaire ID", http.StatusBadRequest)
		return model.Questionnaire{}, false
	}
	q, ok, err := h.store.GetQuestionnaire(id)
	if err != nil {
		slog.Error("failed to load questionnaire", "id", id, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return model.Questionnaire{}, false
	}
	if !ok {
		http.Error(w, appI18n.T(r.Context(), "QuestionnaireNotFound"), http.StatusNotFound)
		return model.Questionnaire{}, false
	}
	return q, true
}

func (h *Handler) handleQuestionnaire(w http.ResponseWriter, r *http.Request) {
	q, ok := h.loadQuestionnaire(w, r)
	if !ok {
		return
	}
	render(w, r, http.StatusOK, views.QuestionnairePage(views.QuestionnaireData{
		Flash:         h.flash(r),
		Questionnaire: q,
	}))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid questionnaire ID", http.StatusBadRequest)
		return
	}
	if err := h.store.DeleteQuestionnaire(id); err != nil {
		slog.Error("failed to delete questionnaire", "id", id, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.redirect(w, r, "/questionnaires", "QuestionnaireDeleted")
}

// documentLang is the language of an exported document: the ?lang override
// when it names a loaded locale, else the server language.
func (h *Handler) documentLang(r *http.Request) string {
	if l := r.URL.Query().Get("lang"); l != "" && slices.Contains(appI18n.Languages(), l) {
		return l
	}
	return h.config.Lang
}

func (h *Handler) handleExportHTML(w http.ResponseWriter, r *http.Request) {
	q, ok := h.loadQuestionnaire(w, r)
	if !ok {
		return
	}
	res, err := export.Document(r.Context(), q, export.Options{
		ResponsesURL: h.config.ResponsesURL,
		Lang:         h.documentLang(r),
	})
	if err != nil {
		slog.Error("failed to export questionnaire", "id", q.ID, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	slog.Info("exported questionnaire", "id", q.ID, "file", res.Filename, "bytes", len(res.Data))
	writeDownload(w, res)
}

func (h *Handler) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	q, ok := h.loadQuestionnaire(w, r)
	if !ok {
		return
	}
	render(w, r, http.StatusOK, views.PDFPage(views.PDFData{
		Questionnaire: q,
		Instruction:   export.PDFInstruction(r.Context()),
	}))
}

func writeDownload(w http.ResponseWriter, res model.ExportResult) {
	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": res.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
	if _, err := w.Write(res.Data); err != nil {
		slog.Error("write download", "file", res.Filename, "error", err)
	}
}
