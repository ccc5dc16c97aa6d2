package bank

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/pavelanni/enade/internal/model"
)

var validate = validator.New()

// Bank is the read-only set of questions available to the builder.
type Bank struct {
	questions []model.Question
	byID      map[int]int
}

// New builds a bank from questions in the given order.
func New(questions []model.Question) *Bank {
	b := &Bank{
		questions: make([]model.Question, len(questions)),
		byID:      make(map[int]int, len(questions)),
	}
	copy(b.questions, questions)
	for i, q := range b.questions {
		b.byID[q.ID] = i
	}
	return b
}

// Load fetches the bank once from a file path or an http(s) URL.
// Any failure is logged and yields an empty bank.
func Load(ctx context.Context, source string) *Bank {
	questions, err := fetch(ctx, source)
	if err != nil {
		slog.Error("failed to load question bank", "source", source, "error", err)
		return New(nil)
	}
	slog.Info("loaded question bank", "source", source, "count", len(questions))
	return New(questions)
}

func fetch(ctx context.Context, source string) ([]model.Question, error) {
	var data []byte
	var err error
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		data, err = fetchURL(ctx, source)
	} else {
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func fetchURL(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get %s: unexpected status %s", url, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// Parse decodes and validates a JSON array of questions.
func Parse(data []byte) ([]model.Question, error) {
	var questions []model.Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("parse questions: %w", err)
	}
	seen := make(map[int]bool, len(questions))
	for i, q := range questions {
		if err := validate.Struct(q); err != nil {
			return nil, fmt.Errorf("question %d: %w", i, err)
		}
		if seen[q.ID] {
			return nil, fmt.Errorf("question %d: duplicate id %d", i, q.ID)
		}
		seen[q.ID] = true
	}
	return questions, nil
}

// All returns a copy of the bank in bank order.
func (b *Bank) All() []model.Question {
	out := make([]model.Question, len(b.questions))
	copy(out, b.questions)
	return out
}

// Get returns the question with the given id.
func (b *Bank) Get(id int) (model.Question, bool) {
	i, ok := b.byID[id]
	if !ok {
		return model.Question{}, false
	}
	return b.questions[i], true
}

// Len returns the number of questions in the bank.
func (b *Bank) Len() int {
	return len(b.questions)
}

// Categories returns the distinct categories in bank order.
func (b *Bank) Categories() []string {
	var cats []string
	seen := make(map[string]bool)
	for _, q := range b.questions {
		if q.Category == "" || seen[q.Category] {
			continue
		}
		seen[q.Category] = true
		cats = append(cats, q.Category)
	}
	return cats
}

// Filter narrows the bank listing. Empty fields match everything.
type Filter struct {
	Text     string
	Category string
	Type     model.QuestionType
}

// Filter returns the questions matching f, in bank order.
func (b *Bank) Filter(f Filter) []model.Question {
	text := strings.ToLower(strings.TrimSpace(f.Text))
	var out []model.Question
	for _, q := range b.questions {
		if text != "" && !strings.Contains(strings.ToLower(q.Text), text) {
			continue
		}
		if f.Category != "" && q.Category != f.Category {
			continue
		}
		if f.Type != "" && q.Type != f.Type {
			continue
		}
		out = append(out, q)
	}
	return out
}
