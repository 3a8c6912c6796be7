package models

import (
	"strings"
	"time"
)

// Field widths in bytes. Text longer than a width is truncated by
// records.Bound to width-1 bytes on write.
const (
	TextWidth  = 128 // names, usernames, password hash, exam fields, question text, options
	EssayWidth = 512 // essay answers
)

// Role tags a user account.
type Role byte

const (
	RoleManager   Role = 'M'
	RoleProfessor Role = 'P'
	RoleStudent   Role = 'S'
)

func (r Role) Valid() bool {
	return r == RoleManager || r == RoleProfessor || r == RoleStudent
}

func (r Role) String() string {
	switch r {
	case RoleManager:
		return "Manager"
	case RoleProfessor:
		return "Professor"
	case RoleStudent:
		return "Student"
	default:
		return "Undefined"
	}
}

// ParseRole accepts the single-letter tag or the full name, in any case.
func ParseRole(s string) (Role, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "M", "MANAGER":
		return RoleManager, true
	case "P", "PROFESSOR":
		return RoleProfessor, true
	case "S", "STUDENT":
		return RoleStudent, true
	}
	return 0, false
}

// Choice is a multiple-choice option tag.
type Choice byte

const (
	ChoiceA     Choice = 'a'
	ChoiceB     Choice = 'b'
	ChoiceC     Choice = 'c'
	ChoiceD     Choice = 'd'
	ChoiceBlank Choice = 'x'
	ChoiceNone  Choice = 0 // essay questions and essay answers
)

// IsOption reports whether c names one of the four options.
func (c Choice) IsOption() bool { return c >= ChoiceA && c <= ChoiceD }

// ValidAnswer reports whether c may be submitted for a multiple-choice question.
func (c Choice) ValidAnswer() bool { return c.IsOption() || c == ChoiceBlank }

// Index maps a..d to 0..3.
func (c Choice) Index() int { return int(c - ChoiceA) }

func (c Choice) String() string {
	switch {
	case c.IsOption():
		return string(rune(c))
	case c == ChoiceBlank:
		return "blank"
	default:
		return ""
	}
}

// ParseChoice accepts a-d, x, or "blank".
func ParseChoice(s string) (Choice, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "blank" || s == "x" {
		return ChoiceBlank, true
	}
	if len(s) == 1 && Choice(s[0]).IsOption() {
		return Choice(s[0]), true
	}
	return ChoiceNone, false
}

type User struct {
	FirstName    string
	LastName     string
	Username     string
	PasswordHash string
	Role         Role
}

func (u User) FullName() string { return u.FirstName + " " + u.LastName }

// Exam is immutable once written. End is always after Start.
type Exam struct {
	ID            string
	Name          string
	Creator       string
	QuestionCount int
	Start         time.Time
	End           time.Time
}

// Question ordinals run 1..Exam.QuestionCount in file order. Essay
// questions leave Options empty and Correct as ChoiceNone.
type Question struct {
	Ordinal        int
	Text           string
	MultipleChoice bool
	Options        [4]string
	Correct        Choice
}

type Answer struct {
	ExamID         string
	Username       string
	Ordinal        int
	MultipleChoice bool
	Chosen         Choice
	Essay          string
}

// Result is written once per (exam, student). VisibleAt equals the exam end.
type Result struct {
	Username            string
	ExamID              string
	ExamName            string
	Correct             int
	Wrong               int
	MultipleChoiceTotal int
	Score               float64
	VisibleAt           time.Time
}
