// Package export renders saved questionnaires into standalone documents.
//
// The HTML document is self-contained: styles, submit logic and the question
// list (as JSON) are inlined, so it keeps working after it is downloaded.
package export

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"strconv"
	"sync"

	appI18n "github.com/pavelanni/enade/internal/i18n"
	"github.com/pavelanni/enade/internal/model"
)

//go:embed templates/document.html
var templateFS embed.FS

var (
	loadOnce sync.Once
	loadErr  error
	docTmpl  *template.Template
)

func loadTemplate() (*template.Template, error) {
	loadOnce.Do(func() {
		docTmpl, loadErr = template.New("document.html").
			Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).
			ParseFS(templateFS, "templates/document.html")
	})
	return docTmpl, loadErr
}

// DataElementID is the id of the script element carrying the embedded questionnaire.
const DataElementID = "questionnaire-data"

// Embedded is the machine-readable copy of the questionnaire inside a document.
type Embedded struct {
	ID        int              `json:"id"`
	Title     string           `json:"title"`
	Questions []model.Question `json:"questions"`
}

// Options configures document rendering.
type Options struct {
	// ResponsesURL is the absolute endpoint the document posts submissions to.
	ResponsesURL string
	// Lang is the value of the document's lang attribute.
	Lang string
}

type likertChoice struct {
	Value string
	Label string
}

type documentData struct {
	Lang         string
	Title        string
	Description  string
	Intro        []string
	Questions    []model.Question
	Likert       []likertChoice
	Text         map[string]string
	Script       map[string]string
	Data         template.JS
	ResponsesURL string
}

var introMessages = []string{"IntroGreeting", "IntroP1", "IntroP2", "IntroP3", "IntroP4", "IntroThanks"}

var textMessages = []string{"LikertScale", "StudentInfo", "StudentName", "StudentID", "StudentEmail", "SubmitAnswers"}

// ToDocument renders q as a standalone interactive HTML document, using the
// localizer in ctx for all fixed text.
func ToDocument(ctx context.Context, q model.Questionnaire, opts Options) ([]byte, error) {
	tmpl, err := loadTemplate()
	if err != nil {
		return nil, fmt.Errorf("load document template: %w", err)
	}

	embedded, err := json.Marshal(Embedded{ID: q.ID, Title: q.Title, Questions: q.Questions})
	if err != nil {
		return nil, fmt.Errorf("encode questionnaire: %w", err)
	}

	data := documentData{
		Lang:         opts.Lang,
		Title:        q.Title,
		Description:  q.Description,
		Questions:    q.Questions,
		Text:         make(map[string]string, len(textMessages)),
		Data:         template.JS(embedded),
		ResponsesURL: opts.ResponsesURL,
		Script: map[string]string{
			"missingStudent": appI18n.T(ctx, "MissingStudentFields"),
			"unanswered":     appI18n.T(ctx, "UnansweredQuestions"),
			"sending":        appI18n.T(ctx, "Sending"),
			"success":        appI18n.T(ctx, "SubmitSuccess"),
			"thanks":         appI18n.T(ctx, "SubmitThanks"),
			"error":          appI18n.T(ctx, "SubmitError"),
		},
	}
	if data.Lang == "" {
		data.Lang = "pt"
	}
	for _, id := range introMessages {
		data.Intro = append(data.Intro, appI18n.T(ctx, id))
	}
	for _, id := range textMessages {
		data.Text[id] = appI18n.T(ctx, id)
	}
	for i := 1; i <= 6; i++ {
		v := strconv.Itoa(i)
		data.Likert = append(data.Likert, likertChoice{Value: v, Label: v})
	}
	data.Likert = append(data.Likert,
		likertChoice{Value: model.LikertCannotAnswer, Label: appI18n.T(ctx, "CannotAnswer")},
		likertChoice{Value: model.LikertNotApplicable, Label: appI18n.T(ctx, "NotApplicable")},
	)

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render document: %w", err)
	}
	return buf.Bytes(), nil
}

// Document renders q as a downloadable HTML artifact.
func Document(ctx context.Context, q model.Questionnaire, opts Options) (model.ExportResult, error) {
	b, err := ToDocument(ctx, q, opts)
	if err != nil {
		return model.ExportResult{}, err
	}
	return model.ExportResult{
		Filename:    Filename(q.Title),
		ContentType: "text/html; charset=utf-8",
		Data:        b,
	}, nil
}

// Filename is the download name of an exported questionnaire.
func Filename(title string) string {
	return model.FileSafe(title) + ".html"
}

// PDFInstruction explains how to obtain a PDF from the HTML export.
func PDFInstruction(ctx context.Context) string {
	return appI18n.T(ctx, "PDFInstruction")
}
