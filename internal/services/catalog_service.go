package services

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/liAmirali/UIFP-final-project/internal/models"
	"github.com/liAmirali/UIFP-final-project/internal/records"
)

// CatalogStore abstracts the exam catalog and per-exam question banks.
type CatalogStore interface {
	AddExam(e *models.Exam) error
	GetExam(id string) (*models.Exam, error)
	ListExams() ([]models.Exam, error)
	CreateExamFiles(examID string) error
	AddQuestion(examID string, q *models.Question) error
	Questions(examID string) (QuestionSequence, error)
	ListQuestions(examID string) ([]models.Question, error)
}

type CatalogService struct {
	store CatalogStore
	now   func() time.Time
	idGen func() string
}

func NewCatalogService(store CatalogStore) *CatalogService {
	return &CatalogService{
		store: store,
		now:   defaultNow,
		idGen: func() string { return shortID(8) },
	}
}

func shortID(n int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}

// maxIDAttempts bounds the collision retry loop.
const maxIDAttempts = 1000

type CreateExamRequest struct {
	Name          string    `validate:"required" label:"exam name"`
	QuestionCount int       `validate:"min=1,max=65535" label:"number of questions"`
	Start         time.Time `label:"start time"`
	End           time.Time `validate:"gtfield=Start" label:"end time"`
}

type QuestionInput struct {
	Ordinal        int      `label:"question number"`
	Text           string   `validate:"required" label:"question text"`
	MultipleChoice bool     `label:"multiple choice"`
	Options        []string `label:"options"`
	Correct        string   `validate:"omitempty,oneof=a b c d" label:"correct option"`
}

// ExamListing is one row of the exam list.
type ExamListing struct {
	Exam  models.Exam
	State ExamState
	Mine  bool
}

func (s *CatalogService) validateExam(who Identity, req CreateExamRequest) error {
	if who.Role != models.RoleProfessor {
		return NewForbiddenError("only professors can create exams")
	}
	if req.Start.IsZero() || req.End.IsZero() {
		return NewInvalidError("start and end time are required")
	}
	if err := checkStruct(req); err != nil {
		return err
	}
	if req.Start.Before(s.now().Truncate(time.Second)) {
		return NewInvalidError("exam start time cannot be earlier than this moment")
	}
	return nil
}

// CreateExam writes the exam record with a fresh unique id and creates its
// empty question bank, answer log and result log.
func (s *CatalogService) CreateExam(who Identity, req CreateExamRequest) (*models.Exam, error) {
	if err := s.validateExam(who, req); err != nil {
		return nil, err
	}
	return s.createExam(who, req)
}

func (s *CatalogService) createExam(who Identity, req CreateExamRequest) (*models.Exam, error) {
	id, err := s.uniqueID()
	if err != nil {
		return nil, err
	}
	exam := &models.Exam{
		ID:            id,
		Name:          records.Bound(strings.TrimSpace(req.Name), models.TextWidth),
		Creator:       who.Username,
		QuestionCount: req.QuestionCount,
		Start:         req.Start.Truncate(time.Second),
		End:           req.End.Truncate(time.Second),
	}
	if err := s.store.AddExam(exam); err != nil {
		return nil, NewStorageError("could not save exam data", err)
	}
	if err := s.store.CreateExamFiles(exam.ID); err != nil {
		return nil, NewStorageError("could not create exam files", err)
	}
	log.Printf("catalog: exam %s (%q) created by %s with %d questions", exam.ID, exam.Name, exam.Creator, exam.QuestionCount)
	return exam, nil
}

func (s *CatalogService) uniqueID() (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id := s.idGen()
		existing, err := s.store.GetExam(id)
		if err != nil {
			return "", NewStorageError("could not read exam catalog", err)
		}
		if existing == nil {
			return id, nil
		}
	}
	return "", NewStorageError("could not generate a unique exam id", fmt.Errorf("%d collisions", maxIDAttempts))
}

func buildQuestion(in QuestionInput) (*models.Question, error) {
	if err := checkStruct(in); err != nil {
		return nil, err
	}
	q := &models.Question{
		Ordinal:        in.Ordinal,
		Text:           records.Bound(strings.TrimSpace(in.Text), models.TextWidth),
		MultipleChoice: in.MultipleChoice,
	}
	if !in.MultipleChoice {
		if len(in.Options) > 0 || in.Correct != "" {
			return nil, NewInvalidError("essay questions carry no options")
		}
		return q, nil
	}
	if len(in.Options) != len(q.Options) {
		return nil, NewInvalidError("multiple choice questions need exactly 4 options")
	}
	for i, opt := range in.Options {
		q.Options[i] = records.Bound(opt, models.TextWidth)
	}
	correct, ok := models.ParseChoice(in.Correct)
	if !ok || !correct.IsOption() {
		return nil, NewInvalidError("invalid option, please enter a, b, c or d")
	}
	q.Correct = correct
	return q, nil
}

// AddQuestion appends the next question to an exam's bank. The ordinal must
// be exactly one past the current bank size and within the question count.
func (s *CatalogService) AddQuestion(examID string, in QuestionInput) (*models.Question, error) {
	exam, err := s.LookupExam(examID)
	if err != nil {
		return nil, err
	}
	q, err := buildQuestion(in)
	if err != nil {
		return nil, err
	}
	existing, err := s.store.ListQuestions(exam.ID)
	if err != nil {
		return nil, NewStorageError("could not read question bank", err)
	}
	if want := len(existing) + 1; q.Ordinal != want {
		return nil, NewInvalidError(fmt.Sprintf("next question number is %d, got %d", want, q.Ordinal))
	}
	if q.Ordinal > exam.QuestionCount {
		return nil, NewInvalidError(fmt.Sprintf("exam %s has only %d questions", exam.ID, exam.QuestionCount))
	}
	if err := s.store.AddQuestion(exam.ID, q); err != nil {
		return nil, NewStorageError("failed to save the question", err)
	}
	return q, nil
}

// AuthorExam validates the exam and all of its questions before writing
// anything, then creates the exam and its full question bank.
func (s *CatalogService) AuthorExam(who Identity, req CreateExamRequest, questions []QuestionInput) (*models.Exam, error) {
	if err := s.validateExam(who, req); err != nil {
		return nil, err
	}
	if len(questions) != req.QuestionCount {
		return nil, NewInvalidError(fmt.Sprintf("exam declares %d questions but %d were given", req.QuestionCount, len(questions)))
	}
	built := make([]*models.Question, 0, len(questions))
	for i, in := range questions {
		in.Ordinal = i + 1
		q, err := buildQuestion(in)
		if err != nil {
			return nil, fmt.Errorf("question #%d: %w", i+1, err)
		}
		built = append(built, q)
	}
	exam, err := s.createExam(who, req)
	if err != nil {
		return nil, err
	}
	for _, q := range built {
		if err := s.store.AddQuestion(exam.ID, q); err != nil {
			return nil, NewStorageError(fmt.Sprintf("failed to save question #%d", q.Ordinal), err)
		}
	}
	return exam, nil
}

// LookupExam returns the exam or a NotFoundError.
func (s *CatalogService) LookupExam(id string) (*models.Exam, error) {
	exam, err := s.store.GetExam(strings.TrimSpace(id))
	if err != nil {
		return nil, NewStorageError("could not read exam catalog", err)
	}
	if exam == nil {
		return nil, NewNotFoundError("no exam found with this id")
	}
	return exam, nil
}

// QuestionsOf returns a lazy pass over the exam's questions in ordinal order.
func (s *CatalogService) QuestionsOf(examID string) (QuestionSequence, error) {
	seq, err := s.store.Questions(examID)
	if err != nil {
		return nil, NewStorageError("could not open question bank", err)
	}
	return seq, nil
}

// ListExams returns every exam sorted by start time.
func (s *CatalogService) ListExams(who Identity) ([]ExamListing, error) {
	exams, err := s.store.ListExams()
	if err != nil {
		return nil, NewStorageError("could not read exam catalog", err)
	}
	sort.SliceStable(exams, func(i, j int) bool { return exams[i].Start.Before(exams[j].Start) })
	now := s.now()
	out := make([]ExamListing, 0, len(exams))
	for i := range exams {
		out = append(out, ExamListing{
			Exam:  exams[i],
			State: examState(&exams[i], now),
			Mine:  who.Role == models.RoleProfessor && exams[i].Creator == who.Username,
		})
	}
	return out, nil
}
