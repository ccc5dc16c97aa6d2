// Package responses reads student submissions back from the external
// responses endpoint that exported documents post to.
package responses

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pavelanni/enade/internal/model"
)

// ErrNotFound is returned by Find when no submission matches.
var ErrNotFound = errors.New("response not found")

// Client talks to the responses endpoint.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New creates a client for the endpoint at baseURL.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Filter narrows a submission list. Empty fields match everything.
type Filter struct {
	QuestionnaireTitle string
	StudentQuery       string
}

// Match reports whether s passes the filter: exact questionnaire title, and a
// case-insensitive substring of the student's name or id.
func (f Filter) Match(s model.Submission) bool {
	if f.QuestionnaireTitle != "" && s.Questionnaire != f.QuestionnaireTitle {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.StudentQuery))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s.StudentName), q) ||
		strings.Contains(strings.ToLower(s.StudentID), q)
}

// Apply returns the submissions matching f, in input order.
func (f Filter) Apply(subs []model.Submission) []model.Submission {
	out := make([]model.Submission, 0, len(subs))
	for _, s := range subs {
		if f.Match(s) {
			out = append(out, s)
		}
	}
	return out
}

// Fetch retrieves every submission. Nothing is cached between calls.
func (c *Client) Fetch(ctx context.Context) ([]model.Submission, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch responses: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch responses: unexpected status %s", resp.Status)
	}

	var records []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode responses: %w", err)
	}

	// One malformed record must not hide the others.
	subs := make([]model.Submission, 0, len(records))
	for i, raw := range records {
		var s model.Submission
		if err := json.Unmarshal(raw, &s); err != nil {
			slog.Warn("skipping malformed response", "index", i, "error", err)
			continue
		}
		subs = append(subs, s)
	}
	return subs, nil
}

// List fetches submissions and applies f. On failure the error is logged and
// an empty list is returned alongside it.
func (c *Client) List(ctx context.Context, f Filter) ([]model.Submission, error) {
	subs, err := c.Fetch(ctx)
	if err != nil {
		slog.Error("loading responses", "url", c.BaseURL, "error", err)
		return []model.Submission{}, err
	}
	return f.Apply(subs), nil
}

// Find returns the submission of studentID to the questionnaire titled
// questionnaire, sent at submissionDate. If a student sent the same
// questionnaire twice at the same instant, the first one is returned.
func (c *Client) Find(ctx context.Context, studentID, questionnaire string, submissionDate time.Time) (model.Submission, error) {
	subs, err := c.Fetch(ctx)
	if err != nil {
		return model.Submission{}, err
	}
	for _, s := range subs {
		if s.StudentID == studentID && s.Questionnaire == questionnaire && s.SubmissionDate.Equal(submissionDate) {
			return s, nil
		}
	}
	return model.Submission{}, ErrNotFound
}

// ExportOne serializes a single submission as an indented JSON download.
func ExportOne(s model.Submission) (model.ExportResult, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return model.ExportResult{}, fmt.Errorf("encode response: %w", err)
	}
	return model.ExportResult{
		Filename:    Filename(s),
		ContentType: "application/json",
		Data:        data,
	}, nil
}

// Filename is the download name of an exported submission.
func Filename(s model.Submission) string {
	return fmt.Sprintf("resposta_%s_%s.json", s.StudentID, model.FileSafe(s.Questionnaire))
}
