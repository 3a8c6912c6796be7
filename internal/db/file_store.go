package db

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/liAmirali/UIFP-final-project/internal/models"
	"github.com/liAmirali/UIFP-final-project/internal/records"
	"github.com/liAmirali/UIFP-final-project/internal/services"
)

// FileStore keeps every entity in append-only flat files under one data
// directory:
//
//	users.dat                  users
//	exams.dat                  exam catalog
//	exam_<id>_questions.dat    question bank of one exam
//	exam_<id>_answers.dat      answer log of one exam
//	exam_<id>_results.dat      result log of one exam
//	map_<username>.dat         completion ledger of one student
//
// Lookups are linear scans. Access from more than one process at a time is
// not guarded.
type FileStore struct {
	dir   string
	users *records.File[models.User]
	exams *records.File[models.Exam]
}

// OpenFileStore creates the data directory and the two global stores when
// missing.
func OpenFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("data directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	s := &FileStore{
		dir:   dir,
		users: records.Open(filepath.Join(dir, "users.dat"), models.UserCodec),
		exams: records.Open(filepath.Join(dir, "exams.dat"), models.ExamCodec),
	}
	for _, touch := range []func() error{s.users.Touch, s.exams.Touch} {
		if err := touch(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) logErr(prefix string, err error) {
	if err != nil {
		log.Printf("file store: %s: %v", prefix, err)
	}
}

// safeName rejects keys that would escape the data directory.
func safeName(key string) error {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) || strings.ContainsRune(key, 0) {
		return fmt.Errorf("invalid file key %q", key)
	}
	return nil
}

func (s *FileStore) questions(examID string) (*records.File[models.Question], error) {
	if err := safeName(examID); err != nil {
		return nil, err
	}
	return records.Open(filepath.Join(s.dir, "exam_"+examID+"_questions.dat"), models.QuestionCodec), nil
}

func (s *FileStore) answers(examID string) (*records.File[models.Answer], error) {
	if err := safeName(examID); err != nil {
		return nil, err
	}
	return records.Open(filepath.Join(s.dir, "exam_"+examID+"_answers.dat"), models.AnswerCodec), nil
}

func (s *FileStore) results(examID string) (*records.File[models.Result], error) {
	if err := safeName(examID); err != nil {
		return nil, err
	}
	return records.Open(filepath.Join(s.dir, "exam_"+examID+"_results.dat"), models.ResultCodec), nil
}

func (s *FileStore) ledger(username string) (*records.File[string], error) {
	if err := safeName(username); err != nil {
		return nil, err
	}
	return records.Open(filepath.Join(s.dir, "map_"+username+".dat"), models.CompletionCodec), nil
}

// users

func (s *FileStore) HasUsers() (bool, error) {
	empty, err := s.users.Empty()
	return !empty, err
}

func (s *FileStore) AddUser(u *models.User) error {
	err := s.users.Append(*u)
	s.logErr("add user", err)
	return err
}

// FindUser compares against the stored, field-bounded form of username.
func (s *FileStore) FindUser(username string) (*models.User, error) {
	username = records.Bound(username, models.TextWidth)
	u, ok, err := s.users.Find(func(u models.User) bool { return u.Username == username })
	if err != nil || !ok {
		return nil, err
	}
	return &u, nil
}

func (s *FileStore) ListUsers() ([]models.User, error) { return s.users.All(nil) }

// exams

func (s *FileStore) AddExam(e *models.Exam) error {
	err := s.exams.Append(*e)
	s.logErr("add exam", err)
	return err
}

func (s *FileStore) GetExam(id string) (*models.Exam, error) {
	e, ok, err := s.exams.Find(func(e models.Exam) bool { return e.ID == id })
	if err != nil || !ok {
		return nil, err
	}
	return &e, nil
}

func (s *FileStore) ListExams() ([]models.Exam, error) { return s.exams.All(nil) }

// CreateExamFiles creates the empty result log, answer log and question bank.
func (s *FileStore) CreateExamFiles(examID string) error {
	rs, err := s.results(examID)
	if err != nil {
		return err
	}
	as, err := s.answers(examID)
	if err != nil {
		return err
	}
	qs, err := s.questions(examID)
	if err != nil {
		return err
	}
	for _, create := range []func() error{rs.Create, as.Create, qs.Create} {
		if err := create(); err != nil {
			s.logErr("create exam files", err)
			return err
		}
	}
	return nil
}

// questions

func (s *FileStore) AddQuestion(examID string, q *models.Question) error {
	f, err := s.questions(examID)
	if err != nil {
		return err
	}
	err = f.Append(*q)
	s.logErr("add question", err)
	return err
}

func (s *FileStore) Questions(examID string) (services.QuestionSequence, error) {
	f, err := s.questions(examID)
	if err != nil {
		return nil, err
	}
	cur, err := f.Scan()
	if err != nil {
		return nil, err
	}
	return cur, nil
}

func (s *FileStore) ListQuestions(examID string) ([]models.Question, error) {
	f, err := s.questions(examID)
	if err != nil {
		return nil, err
	}
	return f.All(nil)
}

// answers

func (s *FileStore) AddAnswer(a *models.Answer) error {
	f, err := s.answers(a.ExamID)
	if err != nil {
		return err
	}
	err = f.Append(*a)
	s.logErr("add answer", err)
	return err
}

func (s *FileStore) ListAnswers(examID string) ([]models.Answer, error) {
	f, err := s.answers(examID)
	if err != nil {
		return nil, err
	}
	return f.All(nil)
}

// results

func (s *FileStore) AddResult(r *models.Result) error {
	f, err := s.results(r.ExamID)
	if err != nil {
		return err
	}
	err = f.Append(*r)
	s.logErr("add result", err)
	return err
}

func (s *FileStore) ListResults(examID string) ([]models.Result, error) {
	f, err := s.results(examID)
	if err != nil {
		return nil, err
	}
	return f.All(nil)
}

func (s *FileStore) FindResult(examID, username string) (*models.Result, error) {
	f, err := s.results(examID)
	if err != nil {
		return nil, err
	}
	r, ok, err := f.Find(func(r models.Result) bool { return r.Username == username })
	if err != nil || !ok {
		return nil, err
	}
	return &r, nil
}

// completion ledgers

func (s *FileStore) CreateLedger(username string) error {
	f, err := s.ledger(username)
	if err != nil {
		return err
	}
	return f.Create()
}

func (s *FileStore) HasCompletion(username, examID string) (bool, error) {
	f, err := s.ledger(username)
	if err != nil {
		return false, err
	}
	_, ok, err := f.Find(func(id string) bool { return id == examID })
	return ok, err
}

func (s *FileStore) AddCompletion(username, examID string) error {
	f, err := s.ledger(username)
	if err != nil {
		return err
	}
	err = f.Append(examID)
	s.logErr("add completion", err)
	return err
}

func (s *FileStore) ListCompletions(username string) ([]string, error) {
	f, err := s.ledger(username)
	if err != nil {
		return nil, err
	}
	return f.All(nil)
}

var (
	_ services.UserStore    = (*FileStore)(nil)
	_ services.CatalogStore = (*FileStore)(nil)
	_ services.SessionStore = (*FileStore)(nil)
	_ services.ResultStore  = (*FileStore)(nil)
	_ services.LedgerStore  = (*FileStore)(nil)
)
