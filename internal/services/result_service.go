package services

import (
	"strings"
	"time"

	"github.com/liAmirali/UIFP-final-project/internal/models"
)

// ResultStore abstracts the read side of results and answers.
type ResultStore interface {
	LedgerStore
	GetExam(id string) (*models.Exam, error)
	FindUser(username string) (*models.User, error)
	ListQuestions(examID string) ([]models.Question, error)
	ListAnswers(examID string) ([]models.Answer, error)
	ListResults(examID string) ([]models.Result, error)
	FindResult(examID, username string) (*models.Result, error)
}

type ResultService struct {
	store  ResultStore
	ledger *Ledger
	now    func() time.Time
}

func NewResultService(store ResultStore) *ResultService {
	return &ResultService{store: store, ledger: NewLedger(store), now: defaultNow}
}

// StudentResult is one result with the student's essay answers.
type StudentResult struct {
	Result      models.Result
	StudentName string
	Essays      []models.Answer
}

// ExamResults is the professor view of an exam.
type ExamResults struct {
	Exam    models.Exam
	Results []StudentResult
}

// AnswerView is one stored answer with its author's full name.
type AnswerView struct {
	Answer      models.Answer
	StudentName string
}

// AnswerSheet is the answers view of an ended exam.
type AnswerSheet struct {
	Exam      models.Exam
	Questions []models.Question
	Answers   []AnswerView
}

func (s *ResultService) lookupExam(id string) (*models.Exam, error) {
	exam, err := s.store.GetExam(strings.TrimSpace(id))
	if err != nil {
		return nil, NewStorageError("could not read exam catalog", err)
	}
	if exam == nil {
		return nil, NewNotFoundError("no exam found with this id")
	}
	return exam, nil
}

func (s *ResultService) fullName(username string) (string, error) {
	u, err := s.store.FindUser(username)
	if err != nil {
		return "", NewStorageError("could not read users", err)
	}
	if u == nil {
		return "Undefined", nil
	}
	return u.FullName(), nil
}

func essaysBy(answers []models.Answer, username string) []models.Answer {
	var out []models.Answer
	for _, a := range answers {
		if a.Username == username && !a.MultipleChoice {
			out = append(out, a)
		}
	}
	return out
}

// ResultsFor is the professor view: every result of an ended exam, in file
// order, each with the student's essay answers. Only the creator may ask.
func (s *ResultService) ResultsFor(who Identity, examID string) (*ExamResults, error) {
	exam, err := s.lookupExam(examID)
	if err != nil {
		return nil, err
	}
	if who.Role != models.RoleProfessor || exam.Creator != who.Username {
		return nil, NewForbiddenError("you cannot see the results of this exam, because you're not the creator of it")
	}
	if s.now().Before(exam.End) {
		return nil, NewTimingError("the exam is not over yet, wait until", exam.End)
	}
	results, err := s.store.ListResults(exam.ID)
	if err != nil {
		return nil, NewStorageError("could not read result log", err)
	}
	answers, err := s.store.ListAnswers(exam.ID)
	if err != nil {
		return nil, NewStorageError("could not read answer log", err)
	}
	out := &ExamResults{Exam: *exam, Results: make([]StudentResult, 0, len(results))}
	for _, r := range results {
		name, err := s.fullName(r.Username)
		if err != nil {
			return nil, err
		}
		out.Results = append(out.Results, StudentResult{Result: r, StudentName: name, Essays: essaysBy(answers, r.Username)})
	}
	return out, nil
}

// ResultFor is the student view of their own result, visible once the
// result's visibility instant has passed.
func (s *ResultService) ResultFor(who Identity, examID string) (*StudentResult, error) {
	examID = strings.TrimSpace(examID)
	if who.Role != models.RoleStudent {
		return nil, NewForbiddenError("only students have personal results")
	}
	taken, err := s.ledger.HasTaken(who.Username, examID)
	if err != nil {
		return nil, err
	}
	if !taken {
		return nil, NewForbiddenError("you have not taken any exam with this id")
	}
	res, err := s.store.FindResult(examID, who.Username)
	if err != nil {
		return nil, NewStorageError("could not read result log", err)
	}
	if res == nil {
		return nil, NewNotFoundError("no result recorded for this exam")
	}
	if s.now().Before(res.VisibleAt) {
		return nil, NewTimingError("you cannot see the results right now, they will be available on", res.VisibleAt)
	}
	answers, err := s.store.ListAnswers(examID)
	if err != nil {
		return nil, NewStorageError("could not read answer log", err)
	}
	name, err := s.fullName(who.Username)
	if err != nil {
		return nil, err
	}
	return &StudentResult{Result: *res, StudentName: name, Essays: essaysBy(answers, who.Username)}, nil
}

// AnswersFor returns the question bank and the stored answers of an ended
// exam. Professors see exams they created; students see only their own
// answers to exams they took; managers see everything.
func (s *ResultService) AnswersFor(who Identity, examID string) (*AnswerSheet, error) {
	exam, err := s.lookupExam(examID)
	if err != nil {
		return nil, err
	}
	switch who.Role {
	case models.RoleProfessor:
		if exam.Creator != who.Username {
			return nil, NewForbiddenError("you can only see the answers of an exam that you created yourself")
		}
	case models.RoleStudent:
		taken, err := s.ledger.HasTaken(who.Username, exam.ID)
		if err != nil {
			return nil, err
		}
		if !taken {
			return nil, NewForbiddenError("you have not taken any exam with this id")
		}
	case models.RoleManager:
	default:
		return nil, NewForbiddenError("undefined role")
	}
	if s.now().Before(exam.End) {
		return nil, NewTimingError("the exam is not over yet, wait until", exam.End)
	}
	questions, err := s.store.ListQuestions(exam.ID)
	if err != nil {
		return nil, NewStorageError("could not read question bank", err)
	}
	answers, err := s.store.ListAnswers(exam.ID)
	if err != nil {
		return nil, NewStorageError("could not read answer log", err)
	}
	sheet := &AnswerSheet{Exam: *exam, Questions: questions}
	names := map[string]string{}
	for _, a := range answers {
		if who.Role == models.RoleStudent && a.Username != who.Username {
			continue
		}
		name, ok := names[a.Username]
		if !ok {
			if name, err = s.fullName(a.Username); err != nil {
				return nil, err
			}
			names[a.Username] = name
		}
		sheet.Answers = append(sheet.Answers, AnswerView{Answer: a, StudentName: name})
	}
	return sheet, nil
}
