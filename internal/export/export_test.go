package export

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	appI18n "github.com/pavelanni/enade/internal/i18n"
	"github.com/pavelanni/enade/internal/model"
)

func testContext(t *testing.T, lang string) context.Context {
	t.Helper()
	if err := appI18n.Init(lang); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return appI18n.WithLang(context.Background(), lang)
}

func testQuestionnaire() model.Questionnaire {
	return model.Questionnaire{
		ID:          7,
		Title:       "Questionário  Licenciatura",
		Description: "Turma 2025",
		CreatedAt:   time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Questions: []model.Question{
			{
				ID: 1, Number: 1, Category: "dados-pessoais", Type: model.TypeMultipleChoice,
				Text: "Qual o seu estado civil?",
				Options: []model.Option{
					{Label: "A", Text: "Solteiro(a)"},
					{Label: "B", Text: "Casado(a)"},
					{Label: "C", Text: "Separado(a)"},
					{Label: "D", Text: "Viúvo(a)"},
				},
			},
			{
				ID: 50, Number: 50, Category: "licenciatura", Type: model.TypeLikert,
				Text: "Competência 1: <aplicar> conhecimentos & práticas",
			},
		},
	}
}

func TestToDocumentStructure(t *testing.T) {
	ctx := testContext(t, "pt")
	doc, err := ToDocument(ctx, testQuestionnaire(), Options{ResponsesURL: "http://localhost:8000/api/responses", Lang: "pt"})
	if err != nil {
		t.Fatalf("ToDocument: %v", err)
	}
	s := string(doc)

	checks := []struct {
		name string
		want string
	}{
		{"doctype", "<!DOCTYPE html>"},
		{"title", "<h1>Questionário  Licenciatura</h1>"},
		{"description", "Turma 2025"},
		{"intro greeting", "Caro(a) estudante,"},
		{"intro thanks", "Agradecemos a sua colaboração!"},
		{"numbered question", "1. Qual o seu estado civil?"},
		{"option label", "A) Solteiro(a)"},
		{"likert hint", "Escala: 1 (Discordo totalmente) a 6 (Concordo totalmente)"},
		{"cannot answer", "Não sei responder"},
		{"not applicable", "Não se aplica"},
		{"escaped text", "&lt;aplicar&gt; conhecimentos &amp; práticas"},
		{"student name", `id="student-name"`},
		{"student id", `id="student-id"`},
		{"student email", `id="student-email"`},
		{"submit", `id="submit-btn"`},
		{"endpoint", "localhost:8000"},
		{"inline style", "<style>"},
		{"missing fields message", "preencha o nome e a matr"},
	}
	for _, c := range checks {
		t.Run(c.name, func(t *testing.T) {
			if !strings.Contains(s, c.want) {
				t.Errorf("document missing %q", c.want)
			}
		})
	}

	if strings.Contains(s, "<aplicar>") {
		t.Error("question text must be HTML-escaped")
	}
	if n := strings.Count(s, `name="q0"`); n != 4 {
		t.Errorf("multiple-choice question: expected 4 radios, got %d", n)
	}
	if n := strings.Count(s, `name="q1"`); n != 8 {
		t.Errorf("likert question: expected 8 radios (1-6, N, NA), got %d", n)
	}
	if strings.Contains(s, `<link `) || strings.Contains(s, `<script src=`) {
		t.Error("document must not reference external resources")
	}
}

func TestToDocumentEnglish(t *testing.T) {
	ctx := testContext(t, "en")
	doc, err := ToDocument(ctx, testQuestionnaire(), Options{ResponsesURL: "http://example.test/api/responses", Lang: "en"})
	if err != nil {
		t.Fatalf("ToDocument: %v", err)
	}
	for _, want := range []string{`lang="en"`, "Dear student,", "Cannot answer", "Submit answers"} {
		if !bytes.Contains(doc, []byte(want)) {
			t.Errorf("document missing %q", want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	ctx := testContext(t, "pt")
	q := testQuestionnaire()

	doc, err := ToDocument(ctx, q, Options{ResponsesURL: "http://localhost:8000/api/responses"})
	if err != nil {
		t.Fatalf("ToDocument: %v", err)
	}
	got, err := ParseDocument(bytes.NewReader(doc))
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}

	if got.ID != q.ID || got.Title != q.Title {
		t.Errorf("expected id %d title %q, got %d %q", q.ID, q.Title, got.ID, got.Title)
	}
	if len(got.Questions) != len(q.Questions) {
		t.Fatalf("expected %d questions, got %d", len(q.Questions), len(got.Questions))
	}
	for i, want := range q.Questions {
		g := got.Questions[i]
		if g.Text != want.Text || g.Type != want.Type || g.ID != want.ID {
			t.Errorf("question %d: expected %+v, got %+v", i, want, g)
		}
		if len(g.Options) != len(want.Options) {
			t.Fatalf("question %d: expected %d options, got %d", i, len(want.Options), len(g.Options))
		}
		for j := range want.Options {
			if g.Options[j] != want.Options[j] {
				t.Errorf("question %d option %d: expected %+v, got %+v", i, j, want.Options[j], g.Options[j])
			}
		}
	}
}

func TestParseDocumentWithoutData(t *testing.T) {
	_, err := ParseDocument(strings.NewReader("<html><body><p>hi</p></body></html>"))
	if !errors.Is(err, ErrNoEmbeddedData) {
		t.Errorf("expected ErrNoEmbeddedData, got %v", err)
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Licenciatura", "Licenciatura.html"},
		{"Outros  Cursos 2025", "Outros_Cursos_2025.html"},
		{"tab\tand\nnewline", "tab_and_newline.html"},
	}
	for _, tt := range tests {
		if got := Filename(tt.title); got != tt.want {
			t.Errorf("Filename(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestDocumentResult(t *testing.T) {
	ctx := testContext(t, "pt")
	res, err := Document(ctx, testQuestionnaire(), Options{})
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if res.Filename != "Questionário_Licenciatura.html" {
		t.Errorf("unexpected filename %q", res.Filename)
	}
	if !strings.HasPrefix(res.ContentType, "text/html") {
		t.Errorf("unexpected content type %q", res.ContentType)
	}
	if len(res.Data) == 0 {
		t.Error("expected document bytes")
	}
}

func TestPDFInstruction(t *testing.T) {
	ctx := testContext(t, "pt")
	if got := PDFInstruction(ctx); !strings.Contains(got, "Salvar como PDF") {
		t.Errorf("unexpected instruction %q", got)
	}
}
