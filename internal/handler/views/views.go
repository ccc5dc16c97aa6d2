// Package views renders the web UI pages as templ components.
package views

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/a-h/templ"

	"github.com/pavelanni/enade/internal/bank"
	appI18n "github.com/pavelanni/enade/internal/i18n"
	"github.com/pavelanni/enade/internal/model"
	"github.com/pavelanni/enade/internal/responses"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = map[string]*template.Template{}

func init() {
	names := []string{
		"bank.html", "builder.html", "questionnaires.html", "questionnaire.html",
		"pdf.html", "responses.html", "response.html",
	}
	base := template.Must(template.New("layout.html").Funcs(funcs(context.Background())).
		ParseFS(templateFS, "templates/layout.html"))
	for _, name := range names {
		pages[name] = template.Must(template.Must(base.Clone()).ParseFS(templateFS, "templates/"+name))
	}
}

// funcs binds the template helpers to the request context.
func funcs(ctx context.Context) template.FuncMap {
	return template.FuncMap{
		"t":  func(id string) string { return appI18n.T(ctx, id) },
		"tp": func(id string, n int) string { return appI18n.Tp(ctx, id, n) },
		"questionN": func(n int) string {
			return appI18n.Td(ctx, "QuestionN", map[string]any{"N": n})
		},
		"path": func(p string) string { return model.BasePathFromContext(ctx) + p },
		"csrf": func() string { return model.CSRFTokenFromContext(ctx) },
		"inc":  func(i int) int { return i + 1 },
		"typeLabel": func(t model.QuestionType) string {
			if t == model.TypeLikert {
				return appI18n.T(ctx, "TypeLikert")
			}
			return appI18n.T(ctx, "TypeMultipleChoice")
		},
		"date":  func(t time.Time) string { return t.Local().Format("02/01/2006 15:04") },
		"stamp": func(t time.Time) string { return t.Format(time.RFC3339Nano) },
		"notice": func(f Flash) (template.HTML, error) {
			return templ.ToGoHTML(ctx, FlashNotice(f))
		},
	}
}

// page renders a named template inside the shared layout.
func page(name string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		t, ok := pages[name]
		if !ok {
			return fmt.Errorf("unknown page %q", name)
		}
		// Templates are never executed directly, so they can always be cloned.
		t, err := t.Clone()
		if err != nil {
			return fmt.Errorf("clone %s: %w", name, err)
		}
		t.Funcs(funcs(ctx))
		return templ.FromGoHTML(t.Lookup("layout"), data).Render(ctx, w)
	})
}

// Flash carries the one-shot notice shown at the top of a page.
type Flash struct {
	Message string
	Error   string
}

// BankData is the question bank browser.
type BankData struct {
	Flash
	Questions  []model.Question
	Total      int
	Categories []string
	Filter     bank.Filter
}

// BuilderData is the questionnaire builder. Draft is nil when nothing is in progress.
type BuilderData struct {
	Flash
	Draft       *model.Draft
	Available   []model.Question
	Selected    []model.Question
	Title       string
	Description string
}

// QuestionnairesData lists saved questionnaires.
type QuestionnairesData struct {
	Flash
	Questionnaires []model.Questionnaire
}

// QuestionnaireData shows one saved questionnaire.
type QuestionnaireData struct {
	Flash
	Questionnaire model.Questionnaire
}

// PDFData explains the PDF export.
type PDFData struct {
	Flash
	Questionnaire model.Questionnaire
	Instruction   string
}

// ResponsesData is the response browser.
type ResponsesData struct {
	Flash
	Titles      []string
	Filter      responses.Filter
	Responses   []model.Submission
	Unavailable bool
}

// ResponseData shows one submission.
type ResponseData struct {
	Flash
	Submission model.Submission
}

func BankPage(d BankData) templ.Component { return page("bank.html", d) }

func BuilderPage(d BuilderData) templ.Component { return page("builder.html", d) }

func QuestionnairesPage(d QuestionnairesData) templ.Component {
	return page("questionnaires.html", d)
}

func QuestionnairePage(d QuestionnaireData) templ.Component {
	return page("questionnaire.html", d)
}

func PDFPage(d PDFData) templ.Component { return page("pdf.html", d) }

func ResponsesPage(d ResponsesData) templ.Component { return page("responses.html", d) }

func ResponsePage(d ResponseData) templ.Component { return page("response.html", d) }
