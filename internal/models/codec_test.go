package models

import (
	"strings"
	"testing"
	"time"
)

func TestAnswerCodecTruncatesEssay(t *testing.T) {
	long := strings.Repeat("e", EssayWidth+40)
	buf := make([]byte, AnswerCodec.Size)
	AnswerCodec.Encode(Answer{ExamID: "ex1", Username: "sara", Ordinal: 2, Essay: long}, buf)
	got, err := AnswerCodec.Decode(buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got.Essay) != EssayWidth-1 {
		t.Fatalf("essay length = %d, want %d", len(got.Essay), EssayWidth-1)
	}
	if got.Ordinal != 2 || got.Username != "sara" {
		t.Fatalf("decoded answer = %+v", got)
	}
}

func TestExamCodecKeepsEpochSeconds(t *testing.T) {
	start := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)
	buf := make([]byte, ExamCodec.Size)
	ExamCodec.Encode(Exam{ID: "e1", QuestionCount: 3, Start: start, End: start.Add(time.Hour)}, buf)
	got, err := ExamCodec.Decode(buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !got.Start.Equal(start) || got.End.Sub(got.Start) != time.Hour || got.QuestionCount != 3 {
		t.Fatalf("decoded exam = %+v", got)
	}
}

func TestUserCodecRejectsUnknownRole(t *testing.T) {
	buf := make([]byte, UserCodec.Size)
	UserCodec.Encode(User{Username: "ghost", Role: 'Q'}, buf)
	if _, err := UserCodec.Decode(buf); err == nil {
		t.Fatalf("expected error for unknown role tag")
	}
}

func TestParseChoice(t *testing.T) {
	cases := []struct {
		in   string
		want Choice
		ok   bool
	}{
		{"a", ChoiceA, true},
		{" D ", ChoiceD, true},
		{"x", ChoiceBlank, true},
		{"blank", ChoiceBlank, true},
		{"e", ChoiceNone, false},
		{"ab", ChoiceNone, false},
	}
	for _, c := range cases {
		got, ok := ParseChoice(c.in)
		if got != c.want || ok != c.ok {
			t.Fatalf("ParseChoice(%q) = (%q, %v), want (%q, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}
