package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/pavelanni/enade/internal/bank"
	"github.com/pavelanni/enade/internal/model"
)

type statusResponse struct {
	Version        string `json:"version"`
	Questions      int    `json:"questions"`
	Questionnaires int    `json:"questionnaires"`
	ResponsesURL   string `json:"responsesUrl"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode JSON response", "error", err)
	}
}

func (h *Handler) handleAPIQuestions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	questions := h.bank.Filter(bank.Filter{
		Text:     q.Get("q"),
		Category: q.Get("category"),
		Type:     model.QuestionType(q.Get("type")),
	})
	if questions == nil {
		questions = []model.Question{}
	}
	writeJSON(w, http.StatusOK, questions)
}

func (h *Handler) handleAPIQuestionnaires(w http.ResponseWriter, r *http.Request) {
	qs, err := h.store.ListQuestionnaires()
	if err != nil {
		slog.Error("failed to list questionnaires", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, qs)
}

func (h *Handler) handleAPIQuestionnaire(w http.ResponseWriter, r *http.Request) {
	q, ok := h.loadQuestionnaire(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *Handler) handleAPIStatus(w http.ResponseWriter, r *http.Request) {
	count, err := h.store.QuestionnaireCount()
	if err != nil {
		slog.Error("failed to count questionnaires", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{
		Version:        h.config.Version,
		Questions:      h.bank.Len(),
		Questionnaires: count,
		ResponsesURL:   h.config.ResponsesURL,
	})
}
