package store

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/pavelanni/enade/internal/model"
)

var fixedNow = time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("newTestStore: %v", err)
	}
	s.SetClock(func() time.Time { return fixedNow })
	t.Cleanup(func() { s.Close() })
	return s
}

func testDraft(title string, questionIDs ...int) model.Draft {
	d := model.Draft{Title: title, Questions: []model.Question{}}
	for _, id := range questionIDs {
		d.Questions = append(d.Questions, model.Question{
			ID:     id,
			Number: id,
			Type:   model.TypeLikert,
			Text:   "question",
		})
	}
	return d
}

func saveTest(t *testing.T, s *Store, title string, questionIDs ...int) model.Questionnaire {
	t.Helper()
	q, err := s.SaveQuestionnaire(testDraft(title, questionIDs...))
	if err != nil {
		t.Fatalf("SaveQuestionnaire(%q): %v", title, err)
	}
	return q
}

func listIDs(t *testing.T, s *Store) []int {
	t.Helper()
	qs, err := s.ListQuestionnaires()
	if err != nil {
		t.Fatalf("ListQuestionnaires: %v", err)
	}
	out := make([]int, len(qs))
	for i, q := range qs {
		out[i] = q.ID
	}
	return out
}

func TestSlot(t *testing.T) {
	s := newTestStore(t)

	v, err := s.GetSlot("missing")
	if err != nil {
		t.Fatalf("GetSlot: %v", err)
	}
	if v != "" {
		t.Errorf("expected empty value, got %q", v)
	}

	if err := s.SetSlot("k", "one"); err != nil {
		t.Fatalf("SetSlot: %v", err)
	}
	if err := s.SetSlot("k", "two"); err != nil {
		t.Fatalf("SetSlot overwrite: %v", err)
	}
	v, err = s.GetSlot("k")
	if err != nil {
		t.Fatalf("GetSlot: %v", err)
	}
	if v != "two" {
		t.Errorf("expected 'two', got %q", v)
	}
}

func TestSaveRejectsEmptyDraft(t *testing.T) {
	s := newTestStore(t)
	saveTest(t, s, "existing", 1)

	before, err := s.GetSlot(SlotQuestionnaires)
	if err != nil {
		t.Fatalf("GetSlot: %v", err)
	}

	_, err = s.SaveQuestionnaire(testDraft("empty"))
	if !errors.Is(err, ErrEmptyQuestionnaire) {
		t.Fatalf("expected ErrEmptyQuestionnaire, got %v", err)
	}

	after, err := s.GetSlot(SlotQuestionnaires)
	if err != nil {
		t.Fatalf("GetSlot: %v", err)
	}
	if before != after {
		t.Error("rejected save must not alter the store")
	}
}

func TestSaveAssignsIDs(t *testing.T) {
	s := newTestStore(t)

	first := saveTest(t, s, "A", 1)
	if first.ID != 1 {
		t.Errorf("expected id 1 on empty store, got %d", first.ID)
	}
	if !first.CreatedAt.Equal(fixedNow) {
		t.Errorf("expected createdAt %v, got %v", fixedNow, first.CreatedAt)
	}
	saveTest(t, s, "B", 1)
	third := saveTest(t, s, "C", 2)
	if third.ID != 3 {
		t.Errorf("expected id 3 on contiguous 1..2, got %d", third.ID)
	}

	// Ids {1,3} -> next is 4, not 2.
	if err := s.DeleteQuestionnaire(2); err != nil {
		t.Fatalf("DeleteQuestionnaire: %v", err)
	}
	next := saveTest(t, s, "D", 3)
	if next.ID != 4 {
		t.Errorf("expected id 4 after gap, got %d", next.ID)
	}
}

func TestSaveCopiesQuestions(t *testing.T) {
	s := newTestStore(t)
	d := testDraft("T", 1, 2)
	saved, err := s.SaveQuestionnaire(d)
	if err != nil {
		t.Fatalf("SaveQuestionnaire: %v", err)
	}
	d.Questions[0].Text = "changed after save"
	if saved.Questions[0].Text == "changed after save" {
		t.Error("saved questionnaire must not share the draft's question slice")
	}
}

func TestListInsertionOrder(t *testing.T) {
	s := newTestStore(t)

	// Seed the slot directly so insertion order differs from id order.
	seed := []model.Questionnaire{
		{ID: 5, Title: "five", Questions: testDraft("", 1).Questions},
		{ID: 2, Title: "two", Questions: testDraft("", 1).Questions},
	}
	data, _ := json.Marshal(seed)
	if err := s.SetSlot(SlotQuestionnaires, string(data)); err != nil {
		t.Fatalf("SetSlot: %v", err)
	}
	saveTest(t, s, "six", 1)

	got := listIDs(t, s)
	want := []int{5, 2, 6}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	saveTest(t, s, "A", 1)
	saveTest(t, s, "B", 2)

	if err := s.DeleteQuestionnaire(1); err != nil {
		t.Fatalf("DeleteQuestionnaire: %v", err)
	}
	for _, id := range listIDs(t, s) {
		if id == 1 {
			t.Fatal("deleted id still listed")
		}
	}

	// Deleting an absent id is a no-op.
	if err := s.DeleteQuestionnaire(42); err != nil {
		t.Fatalf("DeleteQuestionnaire(42): %v", err)
	}
	count, err := s.QuestionnaireCount()
	if err != nil {
		t.Fatalf("QuestionnaireCount: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 questionnaire, got %d", count)
	}
}

func TestGetQuestionnaire(t *testing.T) {
	s := newTestStore(t)
	saved := saveTest(t, s, "Licenciatura", 3, 1)

	q, ok, err := s.GetQuestionnaire(saved.ID)
	if err != nil {
		t.Fatalf("GetQuestionnaire: %v", err)
	}
	if !ok {
		t.Fatal("expected questionnaire to be found")
	}
	if q.Title != "Licenciatura" || len(q.Questions) != 2 || q.Questions[0].ID != 3 {
		t.Errorf("unexpected questionnaire %+v", q)
	}

	_, ok, err = s.GetQuestionnaire(999)
	if err != nil {
		t.Fatalf("GetQuestionnaire(999): %v", err)
	}
	if ok {
		t.Error("expected absent questionnaire")
	}
}

func TestPersistenceAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "enade.db")

	s, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := s.SaveQuestionnaire(testDraft("kept", 1, 2)); err != nil {
		t.Fatalf("SaveQuestionnaire: %v", err)
	}
	s.Close()

	s, err = New(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	qs, err := s.ListQuestionnaires()
	if err != nil {
		t.Fatalf("ListQuestionnaires: %v", err)
	}
	if len(qs) != 1 || qs[0].Title != "kept" || len(qs[0].Questions) != 2 {
		t.Errorf("unexpected persisted state %+v", qs)
	}
}

func TestEndToEndScenario(t *testing.T) {
	s := newTestStore(t)

	saved := saveTest(t, s, "T", 1, 3)
	if saved.ID != 1 || len(saved.Questions) != 2 {
		t.Fatalf("unexpected saved questionnaire %+v", saved)
	}
	if err := s.DeleteQuestionnaire(1); err != nil {
		t.Fatalf("DeleteQuestionnaire: %v", err)
	}
	if ids := listIDs(t, s); len(ids) != 0 {
		t.Errorf("expected empty store, got %v", ids)
	}
}
