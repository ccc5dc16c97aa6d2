// Package builder assembles questionnaire drafts from the question bank.
//
// A Session is owned by its caller and holds at most one draft. Every
// mutation keeps Available and Selected a partition of the bank.
package builder

import (
	"errors"
	"strings"

	"github.com/pavelanni/enade/internal/bank"
	"github.com/pavelanni/enade/internal/model"
)

// ErrNoDraft is returned by draft operations when no draft is in progress.
var ErrNoDraft = errors.New("no draft in progress")

// Preset is a predefined bulk-selection rule.
type Preset string

const (
	// PresetAll selects every bank question.
	PresetAll Preset = "all"
	// PresetRange1To44 selects questions numbered 1 through 44.
	PresetRange1To44 Preset = "range-1-to-44"
)

// ParsePreset validates a preset name.
func ParsePreset(s string) (Preset, bool) {
	switch p := Preset(s); p {
	case PresetAll, PresetRange1To44:
		return p, true
	}
	return "", false
}

func (p Preset) match(q model.Question) bool {
	switch p {
	case PresetAll:
		return true
	case PresetRange1To44:
		return q.Number >= 1 && q.Number <= 44
	}
	return false
}

// Session holds the builder state of one administrator.
type Session struct {
	bank  *bank.Bank
	draft *model.Draft
}

// NewSession returns a session with no draft in progress.
func NewSession(b *bank.Bank) *Session {
	return &Session{bank: b}
}

// Draft returns the draft in progress, or ErrNoDraft.
func (s *Session) Draft() (*model.Draft, error) {
	if s.draft == nil {
		return nil, ErrNoDraft
	}
	return s.draft, nil
}

// InProgress reports whether a draft exists.
func (s *Session) InProgress() bool {
	return s.draft != nil
}

// Start begins a new empty draft. Any draft already in progress is discarded;
// replaced reports whether that happened.
func (s *Session) Start(title, description string) (d *model.Draft, replaced bool) {
	replaced = s.draft != nil
	s.draft = &model.Draft{
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Questions:   []model.Question{},
	}
	return s.draft, replaced
}

// AddQuestion appends a bank question to the draft. Unknown or already
// selected ids leave the draft unchanged and return false.
func (s *Session) AddQuestion(questionID int) (bool, error) {
	if s.draft == nil {
		return false, ErrNoDraft
	}
	if s.draft.Has(questionID) {
		return false, nil
	}
	q, ok := s.bank.Get(questionID)
	if !ok {
		return false, nil
	}
	s.draft.Questions = append(s.draft.Questions, q)
	return true, nil
}

// RemoveQuestion removes the question at index. Out-of-range indices are a no-op.
func (s *Session) RemoveQuestion(index int) (bool, error) {
	if s.draft == nil {
		return false, ErrNoDraft
	}
	if index < 0 || index >= len(s.draft.Questions) {
		return false, nil
	}
	s.draft.Questions = append(s.draft.Questions[:index], s.draft.Questions[index+1:]...)
	return true, nil
}

// SelectPreset replaces the selection with every bank question matching p, in bank order.
func (s *Session) SelectPreset(p Preset) error {
	if s.draft == nil {
		return ErrNoDraft
	}
	selected := []model.Question{}
	for _, q := range s.bank.All() {
		if p.match(q) && !containsID(selected, q.ID) {
			selected = append(selected, q)
		}
	}
	s.draft.Questions = selected
	return nil
}

// Cancel discards the draft in progress, if any.
func (s *Session) Cancel() {
	s.draft = nil
}

// Selected returns the draft's questions, or nil with no draft.
func (s *Session) Selected() []model.Question {
	if s.draft == nil {
		return nil
	}
	out := make([]model.Question, len(s.draft.Questions))
	copy(out, s.draft.Questions)
	return out
}

// Available returns the bank questions not in the draft, in bank order.
func (s *Session) Available() []model.Question {
	var out []model.Question
	for _, q := range s.bank.All() {
		if s.draft != nil && s.draft.Has(q.ID) {
			continue
		}
		out = append(out, q)
	}
	return out
}

func containsID(qs []model.Question, id int) bool {
	for _, q := range qs {
		if q.ID == id {
			return true
		}
	}
	return false
}
