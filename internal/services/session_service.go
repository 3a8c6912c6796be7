package services

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/liAmirali/UIFP-final-project/internal/models"
	"github.com/liAmirali/UIFP-final-project/internal/records"
)

// SessionStore abstracts the persistence an exam session touches.
type SessionStore interface {
	LedgerStore
	GetExam(id string) (*models.Exam, error)
	Questions(examID string) (QuestionSequence, error)
	AddAnswer(a *models.Answer) error
	AddResult(r *models.Result) error
	FindResult(examID, username string) (*models.Result, error)
}

// SessionState is a step of the exam-taking state machine.
type SessionState int

const (
	StateConfirming SessionState = iota + 1
	StateInProgress
	StateCompleted      // every question was served
	StateCompletedEarly // the deadline passed mid-session
	StateCommitted
	StateAborted
)

func (s SessionState) String() string {
	switch s {
	case StateConfirming:
		return "confirming"
	case StateInProgress:
		return "in_progress"
	case StateCompleted:
		return "completed"
	case StateCompletedEarly:
		return "completed_early"
	case StateCommitted:
		return "committed"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

type SessionService struct {
	store  SessionStore
	ledger *Ledger
	now    func() time.Time
}

func NewSessionService(store SessionStore) *SessionService {
	return &SessionService{store: store, ledger: NewLedger(store), now: defaultNow}
}

// AnswerInput is one captured answer: Choice for multiple-choice questions
// (a-d or blank), Essay for essay questions.
type AnswerInput struct {
	Choice models.Choice
	Essay  string
}

// Session is one student's pass through one exam. It is not safe for
// concurrent use; a process runs one session at a time.
type Session struct {
	svc     *SessionService
	who     Identity
	exam    models.Exam
	state   SessionState
	seq     QuestionSequence
	pending *models.Question
	served  int
	tally   Tally
	result  *models.Result
}

// Open looks the exam up and returns a session awaiting confirmation.
func (s *SessionService) Open(who Identity, examID string) (*Session, error) {
	if who.Role != models.RoleStudent {
		return nil, NewForbiddenError("only students can take exams")
	}
	exam, err := s.store.GetExam(strings.TrimSpace(examID))
	if err != nil {
		return nil, NewStorageError("could not read exam catalog", err)
	}
	if exam == nil {
		return nil, NewNotFoundError("no exam found with this id")
	}
	return &Session{svc: s, who: who, exam: *exam, state: StateConfirming}, nil
}

func (ss *Session) Exam() models.Exam   { return ss.exam }
func (ss *Session) State() SessionState { return ss.state }
func (ss *Session) Tally() Tally        { return ss.tally }

// Remaining is the time left before the exam ends, never negative.
func (ss *Session) Remaining() time.Duration {
	left := ss.exam.End.Sub(ss.svc.now())
	if left < 0 {
		return 0
	}
	return left.Truncate(time.Second)
}

// Decline abandons the session before it starts. Nothing is written.
func (ss *Session) Decline() {
	if ss.state == StateConfirming {
		ss.state = StateAborted
	}
}

// Confirm runs the eligibility checks and, when they pass, starts the exam.
// Any failure aborts the session before a question is served.
func (ss *Session) Confirm() error {
	if ss.state != StateConfirming {
		return NewInvalidError(fmt.Sprintf("session is %s, not awaiting confirmation", ss.state))
	}
	if err := ss.checkEligible(); err != nil {
		ss.state = StateAborted
		return err
	}
	seq, err := ss.svc.store.Questions(ss.exam.ID)
	if err != nil {
		ss.state = StateAborted
		return NewStorageError("could not open question bank", err)
	}
	ss.seq = seq
	ss.state = StateInProgress
	log.Printf("session: %s started exam %s", ss.who.Username, ss.exam.ID)
	return nil
}

func (ss *Session) checkEligible() error {
	taken, err := ss.svc.ledger.HasTaken(ss.who.Username, ss.exam.ID)
	if err != nil {
		return err
	}
	if taken {
		return NewDuplicateError("you have already taken this exam")
	}
	prior, err := ss.svc.store.FindResult(ss.exam.ID, ss.who.Username)
	if err != nil {
		return NewStorageError("could not read result log", err)
	}
	if prior != nil {
		// Result committed but ledger append lost: re-derive the entry.
		log.Printf("session: repairing ledger of %s for exam %s", ss.who.Username, ss.exam.ID)
		if err := ss.svc.ledger.MarkTaken(ss.who.Username, ss.exam.ID); err != nil {
			return err
		}
		return NewDuplicateError("you have already taken this exam")
	}
	now := ss.svc.now()
	if now.Before(ss.exam.Start) {
		return NewTimingError("the exam has not started yet, it starts on", ss.exam.Start)
	}
	if !now.Before(ss.exam.End) {
		return NewTimingError("the exam has been ended, it ended on", ss.exam.End)
	}
	return nil
}

// Next returns the question awaiting an answer. ok is false once the bank
// is exhausted or the deadline has passed; the session is then ready for
// Finish. A question is served again until an answer for it is accepted.
func (ss *Session) Next() (q *models.Question, ok bool, err error) {
	if ss.state != StateInProgress {
		return nil, false, nil
	}
	if ss.svc.now().After(ss.exam.End) {
		ss.pending = nil
		ss.state = StateCompletedEarly
		return nil, false, nil
	}
	if ss.pending != nil {
		return ss.pending, true, nil
	}
	if ss.served >= ss.exam.QuestionCount || !ss.seq.Next() {
		if err := ss.seq.Err(); err != nil {
			ss.state = StateAborted
			return nil, false, NewStorageError("could not read question bank", err)
		}
		ss.state = StateCompleted
		return nil, false, nil
	}
	next := ss.seq.Value()
	ss.served++
	if next.Ordinal != ss.served {
		ss.state = StateAborted
		return nil, false, NewStorageError("question bank is out of order",
			fmt.Errorf("expected question %d, found %d", ss.served, next.Ordinal))
	}
	ss.pending = &next
	return ss.pending, true, nil
}

// Submit persists the answer to the pending question immediately and counts
// it. If the deadline passed while the answer was being given, the answer is
// still kept but no further questions are served.
func (ss *Session) Submit(in AnswerInput) error {
	if ss.state != StateInProgress || ss.pending == nil {
		return NewInvalidError("no question is awaiting an answer")
	}
	q := ss.pending
	ans := &models.Answer{
		ExamID:         ss.exam.ID,
		Username:       ss.who.Username,
		Ordinal:        q.Ordinal,
		MultipleChoice: q.MultipleChoice,
	}
	if q.MultipleChoice {
		if !in.Choice.ValidAnswer() {
			return NewInvalidError("invalid input, choices are a, b, c or d or x for blank")
		}
		ans.Chosen = in.Choice
	} else {
		ans.Essay = records.Bound(in.Essay, models.EssayWidth)
	}
	if err := ss.svc.store.AddAnswer(ans); err != nil {
		ss.abort()
		return NewStorageError("could not save answer", err)
	}
	if q.MultipleChoice {
		ss.tally.Record(ans.Chosen, q.Correct)
	}
	ss.pending = nil
	if ss.svc.now().After(ss.exam.End) {
		ss.state = StateCompletedEarly
	}
	return nil
}

// Finish scores the session and commits the result and the ledger entry.
func (ss *Session) Finish() (*models.Result, error) {
	switch ss.state {
	case StateCommitted:
		return ss.result, nil
	case StateCompleted, StateCompletedEarly:
	default:
		return nil, NewInvalidError(fmt.Sprintf("session is %s, cannot be finished", ss.state))
	}
	ss.closeSeq()
	res := &models.Result{
		Username:            ss.who.Username,
		ExamID:              ss.exam.ID,
		ExamName:            ss.exam.Name,
		Correct:             ss.tally.Correct,
		Wrong:               ss.tally.Wrong,
		MultipleChoiceTotal: ss.tally.Total,
		Score:               ss.tally.Percent(),
		VisibleAt:           ss.exam.End,
	}
	if err := ss.svc.store.AddResult(res); err != nil {
		ss.state = StateAborted
		return nil, NewStorageError("could not save result", err)
	}
	if err := ss.svc.ledger.MarkTaken(ss.who.Username, ss.exam.ID); err != nil {
		ss.state = StateAborted
		return nil, err
	}
	ss.state = StateCommitted
	ss.result = res
	log.Printf("session: %s committed exam %s: correct=%d wrong=%d total=%d score=%.2f",
		res.Username, res.ExamID, res.Correct, res.Wrong, res.MultipleChoiceTotal, res.Score)
	return res, nil
}

// Close releases the question bank of an abandoned session.
func (ss *Session) Close() {
	if ss.state == StateInProgress {
		ss.abort()
	}
	ss.closeSeq()
}

func (ss *Session) abort() {
	ss.state = StateAborted
	ss.pending = nil
	ss.closeSeq()
}

func (ss *Session) closeSeq() {
	if ss.seq == nil {
		return
	}
	if err := ss.seq.Close(); err != nil {
		log.Printf("session: close question bank of %s: %v", ss.exam.ID, err)
	}
	ss.seq = nil
}

// Prompter is the interactive side of a session: it confirms the exam and
// captures one answer per question.
type Prompter interface {
	ConfirmExam(exam models.Exam) (bool, error)
	AskQuestion(q models.Question, remaining time.Duration) (AnswerInput, error)
	// Rejected reports a submitted answer that was not accepted.
	Rejected(q models.Question, err error)
}

// SessionSummary is what Run reports for a committed session.
type SessionSummary struct {
	Result   models.Result
	Answered int
	Early    bool
}

// Run drives a whole session: confirmation, eligibility, every question in
// order under the deadline, scoring and commit.
func (s *SessionService) Run(who Identity, examID string, p Prompter) (*SessionSummary, error) {
	ss, err := s.Open(who, examID)
	if err != nil {
		return nil, err
	}
	defer ss.Close()

	ok, err := p.ConfirmExam(ss.Exam())
	if err != nil {
		return nil, err
	}
	if !ok {
		ss.Decline()
		return nil, ErrSessionDeclined
	}
	if err := ss.Confirm(); err != nil {
		return nil, err
	}

	answered := 0
	for {
		q, ok, err := ss.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		in, err := p.AskQuestion(*q, ss.Remaining())
		if err != nil {
			return nil, err
		}
		if err := ss.Submit(in); err != nil {
			if IsKind(err, ErrorInvalid) {
				p.Rejected(*q, err)
				continue
			}
			return nil, err
		}
		answered++
	}

	early := ss.State() == StateCompletedEarly
	res, err := ss.Finish()
	if err != nil {
		return nil, err
	}
	return &SessionSummary{Result: *res, Answered: answered, Early: early}, nil
}
