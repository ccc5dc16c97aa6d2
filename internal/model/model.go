package model

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// QuestionType distinguishes how a question is answered.
type QuestionType string

const (
	// TypeMultipleChoice is answered by picking one of the question's options.
	TypeMultipleChoice QuestionType = "multiple-choice"
	// TypeLikert is answered on a fixed 1-6 agreement scale plus two escape options.
	TypeLikert QuestionType = "likert"
)

// Likert escape option labels.
const (
	LikertCannotAnswer  = "N"
	LikertNotApplicable = "NA"
)

// Option is one labelled choice of a multiple-choice question.
type Option struct {
	Label string `json:"label" validate:"required"`
	Text  string `json:"text"`
}

// Question is an immutable record of the question bank.
type Question struct {
	ID       int          `json:"id" validate:"gt=0"`
	Number   int          `json:"number" validate:"gt=0"`
	Category string       `json:"category"`
	Type     QuestionType `json:"type" validate:"oneof=multiple-choice likert"`
	Text     string       `json:"text" validate:"required"`
	Options  []Option     `json:"options,omitempty" validate:"dive"`
}

// Draft is an in-progress, unsaved questionnaire.
type Draft struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Questions   []Question `json:"questions"`
}

// Has reports whether the draft already holds the question with the given id.
func (d *Draft) Has(questionID int) bool {
	for _, q := range d.Questions {
		if q.ID == questionID {
			return true
		}
	}
	return false
}

// Questionnaire is a saved draft.
type Questionnaire struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Questions   []Question `json:"questions"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Answer is one question/answer pair of a submission.
type Answer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Submission is a student's completed questionnaire as posted by an exported document.
type Submission struct {
	StudentName    string    `json:"studentName" validate:"required"`
	StudentID      string    `json:"studentId" validate:"required"`
	StudentEmail   string    `json:"studentEmail,omitempty" validate:"omitempty,email"`
	Questionnaire  string    `json:"questionnaire"`
	SubmissionDate time.Time `json:"submissionDate"`
	Responses      []Answer  `json:"responses"`
}

// submissionDateLayouts are tried in order. Timestamps without a zone are
// taken as UTC.
var submissionDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseSubmissionDate accepts RFC 3339 as well as zone-less ISO 8601 timestamps.
func ParseSubmissionDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range submissionDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized submission date %q", s)
}

// UnmarshalJSON decodes a submission, accepting any date format
// ParseSubmissionDate does. A missing or empty date leaves the zero time.
func (s *Submission) UnmarshalJSON(data []byte) error {
	type plain Submission
	aux := struct {
		*plain
		SubmissionDate string `json:"submissionDate"`
	}{plain: (*plain)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.SubmissionDate == "" {
		s.SubmissionDate = time.Time{}
		return nil
	}
	t, err := ParseSubmissionDate(aux.SubmissionDate)
	if err != nil {
		return err
	}
	s.SubmissionDate = t
	return nil
}

// AppConfig holds runtime parameters set via CLI flags.
type AppConfig struct {
	BasePath      string // URL prefix for sub-path deployments
	ResponsesURL  string // canonical absolute URL of the responses endpoint
	Lang          string // UI and exported document language
	SecureCookies bool   // Set Secure flag on the session cookie
	Version       string
}

type basePathCtxKey struct{}

// ContextWithBasePath stores the base path prefix in context.
func ContextWithBasePath(ctx context.Context, basePath string) context.Context {
	return context.WithValue(ctx, basePathCtxKey{}, basePath)
}

// BasePathFromContext retrieves the base path from context (empty string if not set).
func BasePathFromContext(ctx context.Context) string {
	bp, _ := ctx.Value(basePathCtxKey{}).(string)
	return bp
}

type csrfCtxKey struct{}

// ContextWithCSRFToken stores the CSRF token for forms rendered in this request.
func ContextWithCSRFToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, csrfCtxKey{}, token)
}

// CSRFTokenFromContext retrieves the CSRF token (empty string if not set).
func CSRFTokenFromContext(ctx context.Context) string {
	t, _ := ctx.Value(csrfCtxKey{}).(string)
	return t
}
