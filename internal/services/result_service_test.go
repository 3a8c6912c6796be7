package services

import (
	"testing"
	"time"

	"github.com/liAmirali/UIFP-final-project/internal/models"
)

// seedTaken stores the scenario exam as taken by stu and by ann.
func seedTaken(store *memStore) {
	seedScenario(store)
	store.users = []models.User{
		{FirstName: "Sam", LastName: "Stu", Username: "stu", Role: models.RoleStudent},
		{FirstName: "Ann", LastName: "Other", Username: "ann", Role: models.RoleStudent},
	}
	store.answers["e1"] = []models.Answer{
		{ExamID: "e1", Username: "stu", Ordinal: 1, MultipleChoice: true, Chosen: models.ChoiceB},
		{ExamID: "e1", Username: "ann", Ordinal: 1, MultipleChoice: true, Chosen: models.ChoiceBlank},
		{ExamID: "e1", Username: "stu", Ordinal: 2, Essay: "hello"},
		{ExamID: "e1", Username: "ann", Ordinal: 2, Essay: "hi"},
	}
	end := t0.Add(time.Hour)
	store.results["e1"] = []models.Result{
		{Username: "stu", ExamID: "e1", ExamName: "Go basics", Correct: 1, MultipleChoiceTotal: 1, Score: 100, VisibleAt: end},
		{Username: "ann", ExamID: "e1", ExamName: "Go basics", MultipleChoiceTotal: 1, Score: 0, VisibleAt: end},
	}
	store.ledgers["stu"] = []string{"e1"}
	store.ledgers["ann"] = []string{"e1"}
}

func newResults(store *memStore, c *clock) *ResultService {
	svc := NewResultService(store)
	svc.now = c.now
	return svc
}

func TestResultsForCreatorAfterEnd(t *testing.T) {
	store := newMemStore()
	seedTaken(store)
	svc := newResults(store, &clock{t: t0.Add(time.Hour)})
	view, err := svc.ResultsFor(professor, "e1")
	if err != nil {
		t.Fatalf("ResultsFor: %v", err)
	}
	if len(view.Results) != 2 || view.Results[0].Result.Username != "stu" || view.Results[1].Result.Username != "ann" {
		t.Fatalf("results out of file order: %+v", view.Results)
	}
	first := view.Results[0]
	if first.StudentName != "Sam Stu" || len(first.Essays) != 1 || first.Essays[0].Essay != "hello" {
		t.Fatalf("first = %+v", first)
	}
}

func TestResultsForDenials(t *testing.T) {
	store := newMemStore()
	seedTaken(store)
	c := &clock{t: t0.Add(2 * time.Hour)}
	svc := newResults(store, c)
	otherProf := Identity{Username: "prof2", Role: models.RoleProfessor}
	if _, err := svc.ResultsFor(otherProf, "e1"); !IsKind(err, ErrorForbidden) {
		t.Fatalf("other professor: err = %v, want forbidden", err)
	}
	if _, err := svc.ResultsFor(student, "e1"); !IsKind(err, ErrorForbidden) {
		t.Fatalf("student: err = %v, want forbidden", err)
	}
	if _, err := svc.ResultsFor(professor, "nope"); !IsKind(err, ErrorNotFound) {
		t.Fatalf("missing exam: err = %v", err)
	}
	c.set(t0.Add(30 * time.Minute))
	_, err := svc.ResultsFor(professor, "e1")
	if se, ok := AsServiceError(err); !ok || se.Code != ErrorTiming || !se.At.Equal(t0.Add(time.Hour)) {
		t.Fatalf("before end: err = %v, want timing at end", err)
	}
}

func TestResultForStudent(t *testing.T) {
	store := newMemStore()
	seedTaken(store)
	c := &clock{t: t0.Add(time.Hour - time.Second)}
	svc := newResults(store, c)
	if _, err := svc.ResultFor(student, "e1"); !IsKind(err, ErrorTiming) {
		t.Fatalf("before visibility: err = %v", err)
	}
	c.set(t0.Add(time.Hour))
	got, err := svc.ResultFor(student, "e1")
	if err != nil {
		t.Fatalf("ResultFor: %v", err)
	}
	if got.Result != store.results["e1"][0] || len(got.Essays) != 1 {
		t.Fatalf("ResultFor = %+v", got)
	}

	stranger := Identity{Username: "zed", Role: models.RoleStudent}
	if _, err := svc.ResultFor(stranger, "e1"); !IsKind(err, ErrorForbidden) {
		t.Fatalf("not taken: err = %v", err)
	}
	if _, err := svc.ResultFor(professor, "e1"); !IsKind(err, ErrorForbidden) {
		t.Fatalf("professor: err = %v", err)
	}
	// Ledger entry without a result.
	store.ledgers["zed"] = []string{"e1"}
	if _, err := svc.ResultFor(stranger, "e1"); !IsKind(err, ErrorNotFound) {
		t.Fatalf("missing result: err = %v", err)
	}
}

func TestAnswersFor(t *testing.T) {
	store := newMemStore()
	seedTaken(store)
	c := &clock{t: t0.Add(time.Hour)}
	svc := newResults(store, c)

	sheet, err := svc.AnswersFor(professor, "e1")
	if err != nil {
		t.Fatalf("professor: %v", err)
	}
	if len(sheet.Questions) != 2 || len(sheet.Answers) != 4 {
		t.Fatalf("professor sheet = %d questions, %d answers", len(sheet.Questions), len(sheet.Answers))
	}

	mine, err := svc.AnswersFor(student, "e1")
	if err != nil {
		t.Fatalf("student: %v", err)
	}
	if len(mine.Answers) != 2 {
		t.Fatalf("student sees %d answers, want 2", len(mine.Answers))
	}
	for _, a := range mine.Answers {
		if a.Answer.Username != "stu" || a.StudentName != "Sam Stu" {
			t.Fatalf("student sees %+v", a)
		}
	}

	all, err := svc.AnswersFor(manager, "e1")
	if err != nil || len(all.Answers) != 4 {
		t.Fatalf("manager: %v, %v", all, err)
	}

	if _, err := svc.AnswersFor(Identity{Username: "prof2", Role: models.RoleProfessor}, "e1"); !IsKind(err, ErrorForbidden) {
		t.Fatalf("other professor: err = %v", err)
	}
	if _, err := svc.AnswersFor(Identity{Username: "zed", Role: models.RoleStudent}, "e1"); !IsKind(err, ErrorForbidden) {
		t.Fatalf("stranger: err = %v", err)
	}
	c.set(t0.Add(time.Minute))
	for _, who := range []Identity{professor, student, manager} {
		if _, err := svc.AnswersFor(who, "e1"); !IsKind(err, ErrorTiming) {
			t.Fatalf("%s before end: err = %v", who.Username, err)
		}
	}
}

func TestAnswersForUnknownStudentName(t *testing.T) {
	store := newMemStore()
	seedTaken(store)
	store.users = nil
	sheet, err := newResults(store, &clock{t: t0.Add(time.Hour)}).AnswersFor(professor, "e1")
	if err != nil {
		t.Fatalf("AnswersFor: %v", err)
	}
	if sheet.Answers[0].StudentName != "Undefined" {
		t.Fatalf("name = %q", sheet.Answers[0].StudentName)
	}
}
