package services

import (
	"time"

	"github.com/liAmirali/UIFP-final-project/internal/models"
	"github.com/liAmirali/UIFP-final-project/internal/records"
)

// Identity is the authenticated caller, passed explicitly to every operation.
type Identity struct {
	Username string
	Role     models.Role
}

// QuestionSequence yields an exam's question bank in ordinal order.
type QuestionSequence = records.Sequence[models.Question]

// ExamState is an exam's position relative to its time window.
type ExamState string

const (
	ExamNotStarted ExamState = "not_started"
	ExamOngoing    ExamState = "ongoing"
	ExamEnded      ExamState = "ended"
)

func examState(e *models.Exam, now time.Time) ExamState {
	switch {
	case now.Before(e.Start):
		return ExamNotStarted
	case now.Before(e.End):
		return ExamOngoing
	default:
		return ExamEnded
	}
}

func defaultNow() time.Time { return time.Now() }
