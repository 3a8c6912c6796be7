package services

import (
	"errors"
	"time"

	"github.com/liAmirali/UIFP-final-project/internal/models"
)

// memStore is an in-memory stand-in for the flat-file store.
type memStore struct {
	users     []models.User
	exams     []models.Exam
	questions map[string][]models.Question
	answers   map[string][]models.Answer
	results   map[string][]models.Result
	ledgers   map[string][]string

	failAppend error // returned by every append when set
	failResult error
	failLedger error
}

func newMemStore() *memStore {
	return &memStore{
		questions: map[string][]models.Question{},
		answers:   map[string][]models.Answer{},
		results:   map[string][]models.Result{},
		ledgers:   map[string][]string{},
	}
}

func (s *memStore) HasUsers() (bool, error) { return len(s.users) > 0, nil }

func (s *memStore) FindUser(username string) (*models.User, error) {
	for _, u := range s.users {
		if u.Username == username {
			copy := u
			return &copy, nil
		}
	}
	return nil, nil
}

func (s *memStore) AddUser(u *models.User) error {
	if s.failAppend != nil {
		return s.failAppend
	}
	s.users = append(s.users, *u)
	return nil
}

func (s *memStore) ListUsers() ([]models.User, error) {
	return append([]models.User(nil), s.users...), nil
}

func (s *memStore) CreateLedger(username string) error {
	s.ledgers[username] = nil
	return nil
}

func (s *memStore) AddExam(e *models.Exam) error {
	if s.failAppend != nil {
		return s.failAppend
	}
	s.exams = append(s.exams, *e)
	return nil
}

func (s *memStore) GetExam(id string) (*models.Exam, error) {
	for _, e := range s.exams {
		if e.ID == id {
			copy := e
			return &copy, nil
		}
	}
	return nil, nil
}

func (s *memStore) ListExams() ([]models.Exam, error) {
	return append([]models.Exam(nil), s.exams...), nil
}

func (s *memStore) CreateExamFiles(examID string) error {
	s.questions[examID] = nil
	s.answers[examID] = nil
	s.results[examID] = nil
	return nil
}

func (s *memStore) AddQuestion(examID string, q *models.Question) error {
	if s.failAppend != nil {
		return s.failAppend
	}
	s.questions[examID] = append(s.questions[examID], *q)
	return nil
}

func (s *memStore) Questions(examID string) (QuestionSequence, error) {
	return &sliceSeq{items: append([]models.Question(nil), s.questions[examID]...)}, nil
}

func (s *memStore) ListQuestions(examID string) ([]models.Question, error) {
	return append([]models.Question(nil), s.questions[examID]...), nil
}

func (s *memStore) AddAnswer(a *models.Answer) error {
	if s.failAppend != nil {
		return s.failAppend
	}
	s.answers[a.ExamID] = append(s.answers[a.ExamID], *a)
	return nil
}

func (s *memStore) ListAnswers(examID string) ([]models.Answer, error) {
	return append([]models.Answer(nil), s.answers[examID]...), nil
}

func (s *memStore) AddResult(r *models.Result) error {
	if s.failResult != nil {
		return s.failResult
	}
	s.results[r.ExamID] = append(s.results[r.ExamID], *r)
	return nil
}

func (s *memStore) ListResults(examID string) ([]models.Result, error) {
	return append([]models.Result(nil), s.results[examID]...), nil
}

func (s *memStore) FindResult(examID, username string) (*models.Result, error) {
	for _, r := range s.results[examID] {
		if r.Username == username {
			copy := r
			return &copy, nil
		}
	}
	return nil, nil
}

func (s *memStore) HasCompletion(username, examID string) (bool, error) {
	for _, id := range s.ledgers[username] {
		if id == examID {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) AddCompletion(username, examID string) error {
	if s.failLedger != nil {
		return s.failLedger
	}
	s.ledgers[username] = append(s.ledgers[username], examID)
	return nil
}

type sliceSeq struct {
	items  []models.Question
	pos    int
	cur    models.Question
	err    error
	closed bool
}

func (q *sliceSeq) Next() bool {
	if q.closed || q.err != nil || q.pos >= len(q.items) {
		return false
	}
	q.cur = q.items[q.pos]
	q.pos++
	return true
}

func (q *sliceSeq) Value() models.Question { return q.cur }
func (q *sliceSeq) Err() error             { return q.err }

func (q *sliceSeq) Close() error {
	q.closed = true
	return nil
}

var errDiskFull = errors.New("no space left on device")

// clock is a settable time source for services under test.
type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) set(t time.Time)         { c.t = t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

var t0 = time.Date(2030, 1, 2, 9, 0, 0, 0, time.UTC)

var (
	professor = Identity{Username: "prof", Role: models.RoleProfessor}
	student   = Identity{Username: "stu", Role: models.RoleStudent}
	manager   = Identity{Username: "boss", Role: models.RoleManager}
)
