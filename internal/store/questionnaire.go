package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pavelanni/enade/internal/model"
)

// SlotQuestionnaires is the storage key holding every saved questionnaire
// as one JSON array.
const SlotQuestionnaires = "savedQuestionnaires"

// ErrEmptyQuestionnaire is returned when saving a draft without questions.
var ErrEmptyQuestionnaire = errors.New("questionnaire has no questions")

func (s *Store) loadQuestionnaires() ([]model.Questionnaire, error) {
	raw, err := s.GetSlot(SlotQuestionnaires)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", SlotQuestionnaires, err)
	}
	if raw == "" {
		return []model.Questionnaire{}, nil
	}
	var qs []model.Questionnaire
	if err := json.Unmarshal([]byte(raw), &qs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", SlotQuestionnaires, err)
	}
	return qs, nil
}

func (s *Store) storeQuestionnaires(qs []model.Questionnaire) error {
	data, err := json.Marshal(qs)
	if err != nil {
		return fmt.Errorf("encode %s: %w", SlotQuestionnaires, err)
	}
	return s.SetSlot(SlotQuestionnaires, string(data))
}

// SaveQuestionnaire assigns the next id to the draft, stamps it and persists
// the whole set. Empty drafts are rejected before storage is touched.
func (s *Store) SaveQuestionnaire(d model.Draft) (model.Questionnaire, error) {
	if len(d.Questions) == 0 {
		return model.Questionnaire{}, ErrEmptyQuestionnaire
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	qs, err := s.loadQuestionnaires()
	if err != nil {
		return model.Questionnaire{}, err
	}

	id := 1
	for _, q := range qs {
		if q.ID >= id {
			id = q.ID + 1
		}
	}

	questions := make([]model.Question, len(d.Questions))
	copy(questions, d.Questions)
	saved := model.Questionnaire{
		ID:          id,
		Title:       d.Title,
		Description: d.Description,
		Questions:   questions,
		CreatedAt:   s.now().UTC(),
	}

	if err := s.storeQuestionnaires(append(qs, saved)); err != nil {
		slog.Error("failed to save questionnaire", "title", d.Title, "error", err)
		return model.Questionnaire{}, err
	}
	slog.Info("saved questionnaire", "id", saved.ID, "title", saved.Title, "questions", len(saved.Questions))
	return saved, nil
}

// ListQuestionnaires returns saved questionnaires in insertion order.
func (s *Store) ListQuestionnaires() ([]model.Questionnaire, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadQuestionnaires()
}

// GetQuestionnaire returns the questionnaire with the given id.
func (s *Store) GetQuestionnaire(id int) (model.Questionnaire, bool, error) {
	qs, err := s.ListQuestionnaires()
	if err != nil {
		return model.Questionnaire{}, false, err
	}
	for _, q := range qs {
		if q.ID == id {
			return q, true, nil
		}
	}
	return model.Questionnaire{}, false, nil
}

// DeleteQuestionnaire removes the questionnaire with the given id and
// persists the remaining set. Unknown ids are a no-op.
func (s *Store) DeleteQuestionnaire(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	qs, err := s.loadQuestionnaires()
	if err != nil {
		return err
	}
	kept := qs[:0]
	for _, q := range qs {
		if q.ID != id {
			kept = append(kept, q)
		}
	}
	if len(kept) == len(qs) {
		return nil
	}
	if err := s.storeQuestionnaires(kept); err != nil {
		return err
	}
	slog.Info("deleted questionnaire", "id", id)
	return nil
}

// QuestionnaireCount returns the number of saved questionnaires.
func (s *Store) QuestionnaireCount() (int, error) {
	qs, err := s.ListQuestionnaires()
	return len(qs), err
}
