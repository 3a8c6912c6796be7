package console

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/liAmirali/UIFP-final-project/internal/auth"
	"github.com/liAmirali/UIFP-final-project/internal/db"
	"github.com/liAmirali/UIFP-final-project/internal/models"
	"github.com/liAmirali/UIFP-final-project/internal/services"
)

func newDeps(t *testing.T, ttl time.Duration) (*db.FileStore, Deps) {
	t.Helper()
	dir := t.TempDir()
	store, err := db.OpenFileStore(filepath.Join(dir, "data"))
	if err != nil {
		t.Fatalf("OpenFileStore: %v", err)
	}
	signer := auth.NewSigner("test-secret")
	return store, Deps{
		Users:     services.NewUserService(store, signer.Sign, ttl),
		Catalog:   services.NewCatalogService(store),
		Sessions:  services.NewSessionService(store),
		Results:   services.NewResultService(store),
		Tokens:    signer,
		ExportDir: dir,
	}
}

func seedExam(t *testing.T, store *db.FileStore, id string, start, end time.Time) {
	t.Helper()
	exam := &models.Exam{ID: id, Name: "Go basics", Creator: "prof", QuestionCount: 2, Start: start.Truncate(time.Second), End: end.Truncate(time.Second)}
	if err := store.AddExam(exam); err != nil {
		t.Fatalf("AddExam: %v", err)
	}
	if err := store.CreateExamFiles(id); err != nil {
		t.Fatalf("CreateExamFiles: %v", err)
	}
	qs := []models.Question{
		{Ordinal: 1, Text: "Which keyword starts a goroutine?", MultipleChoice: true, Options: [4]string{"func", "go", "chan", "defer"}, Correct: models.ChoiceB},
		{Ordinal: 2, Text: "Describe a channel."},
	}
	for i := range qs {
		if err := store.AddQuestion(id, &qs[i]); err != nil {
			t.Fatalf("AddQuestion: %v", err)
		}
	}
}

func run(t *testing.T, deps Deps, script ...string) string {
	t.Helper()
	out := &bytes.Buffer{}
	c := New(deps, strings.NewReader(strings.Join(script, "\n")+"\n"), out)
	if err := c.Run(); err != nil {
		t.Fatalf("Run: %v\noutput:\n%s", err, out.String())
	}
	return out.String()
}

func mustContain(t *testing.T, out string, wants ...string) {
	t.Helper()
	for _, w := range wants {
		if !strings.Contains(out, w) {
			t.Fatalf("output missing %q\noutput:\n%s", w, out)
		}
	}
}

func TestConsoleSetupRegisterAndTakeExam(t *testing.T) {
	store, deps := newDeps(t, time.Hour)
	now := time.Now()
	seedExam(t, store, "e1", now.Add(-time.Minute), now.Add(time.Hour))

	out := run(t, deps,
		// first run: the manager
		"Mia", "Manager", "boss", "password1", "password1",
		"boss", "password1",
		"4", "P", "Pat", "Prof", "prof", "profpass1", "profpass1",
		"4", "S", "Sam", "Stu", "stu", "studpass1", "wrongpass", "studpass1", "studpass1",
		"1",
		"5",
		// the student takes the exam
		"stu", "studpass1",
		"2", "e1", "y", "z", "b", "hello",
		"3", "e1",
		"2", "e1", "y",
		"9",
		"5",
	)

	mustContain(t, out,
		"Mia Manager has been registered as the manager.",
		"You've logged in as Mia Manager (Manager).",
		"Pat Prof has been registered as a professor.",
		"Passwords do not match.",
		"(1) Sam Stu (stu)",
		"You've logged in as Sam Stu (Student).",
		"Is \"Go basics\" the right exam?",
		"invalid input, choices are a, b, c or d or x for blank",
		"You answered 2 questions.",
		"you cannot see the results right now",
		"you have already taken this exam",
		"Undefined menu code",
		"Exiting EMS...",
	)

	res, err := store.FindResult("e1", "stu")
	if err != nil || res == nil {
		t.Fatalf("FindResult = %v, %v", res, err)
	}
	if res.Correct != 1 || res.Wrong != 0 || res.MultipleChoiceTotal != 1 || res.Score != 100 {
		t.Fatalf("result = %+v", *res)
	}
	answers, err := store.ListAnswers("e1")
	if err != nil || len(answers) != 2 || answers[1].Essay != "hello" {
		t.Fatalf("answers = %+v, %v", answers, err)
	}
}

func TestConsoleProfessorViewsAndExports(t *testing.T) {
	store, deps := newDeps(t, time.Hour)
	boss, err := deps.Users.Setup(services.RegisterRequest{FirstName: "mia", LastName: "manager", Username: "boss", Password: "password1"})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	manager := services.Identity{Username: boss.Username, Role: boss.Role}
	for _, req := range []services.RegisterRequest{
		{FirstName: "pat", LastName: "prof", Username: "prof", Password: "profpass1", Role: "P"},
		{FirstName: "sam", LastName: "stu", Username: "stu", Password: "studpass1", Role: "S"},
	} {
		if _, err := deps.Users.Register(manager, req); err != nil {
			t.Fatalf("Register %s: %v", req.Username, err)
		}
	}
	now := time.Now()
	seedExam(t, store, "e0", now.Add(-2*time.Hour), now.Add(-time.Hour))
	if err := store.AddAnswer(&models.Answer{ExamID: "e0", Username: "stu", Ordinal: 1, MultipleChoice: true, Chosen: models.ChoiceB}); err != nil {
		t.Fatalf("AddAnswer: %v", err)
	}
	if err := store.AddAnswer(&models.Answer{ExamID: "e0", Username: "stu", Ordinal: 2, Essay: "a typed conduit"}); err != nil {
		t.Fatalf("AddAnswer: %v", err)
	}
	if err := store.AddResult(&models.Result{Username: "stu", ExamID: "e0", ExamName: "Go basics", Correct: 1, MultipleChoiceTotal: 1, Score: 100, VisibleAt: now.Add(-time.Hour).Truncate(time.Second)}); err != nil {
		t.Fatalf("AddResult: %v", err)
	}

	out := run(t, deps,
		"prof", "nope",
		"prof", "profpass1",
		"2",
		"3", "e0",
		"4", "e0",
		"6", "e0",
		"3", "missing",
		"7",
	)
	mustContain(t, out,
		"the username or password you entered is incorrect",
		"e0: \"Go basics\" by prof",
		"[yours]",
		"Sam Stu (stu)",
		"Score: 100.00%",
		"Essay #2: a typed conduit",
		"Sam Stu, #1: b (correct)",
		"Results written to",
		"no exam found with this id",
	)

	data, err := os.ReadFile(filepath.Join(deps.ExportDir, "results_e0.csv"))
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.Contains(string(data), "e0,Go basics,stu,Sam Stu,1,0,1,100.00,1") {
		t.Fatalf("export = %q", data)
	}
}

func TestConsoleExpiredLoginReturnsToLogin(t *testing.T) {
	_, deps := newDeps(t, -time.Minute)
	out := run(t, deps, "Mia", "Manager", "boss", "password1", "password1", "boss", "password1")
	mustContain(t, out, "Your login has expired", "##### Login #####", "Exiting EMS...")
	if strings.Contains(out, "Enter menu option code") {
		t.Fatalf("menu shown with an expired login:\n%s", out)
	}
}

func TestFormatDuration(t *testing.T) {
	if got := formatDuration(90*time.Minute + 5*time.Second + 300*time.Millisecond); got != "01:30:05" {
		t.Fatalf("formatDuration = %q", got)
	}
}
