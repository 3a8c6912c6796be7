package models

import (
	"fmt"
	"time"

	"github.com/liAmirali/UIFP-final-project/internal/records"
)

var UserCodec = records.Codec[User]{
	Size: 4*TextWidth + 1,
	Encode: func(u User, buf []byte) {
		w := records.NewWriter(buf)
		w.Text(u.FirstName, TextWidth)
		w.Text(u.LastName, TextWidth)
		w.Text(u.Username, TextWidth)
		w.Text(u.PasswordHash, TextWidth)
		w.Byte(byte(u.Role))
	},
	Decode: func(buf []byte) (User, error) {
		r := records.NewReader(buf)
		u := User{
			FirstName:    r.Text(TextWidth),
			LastName:     r.Text(TextWidth),
			Username:     r.Text(TextWidth),
			PasswordHash: r.Text(TextWidth),
			Role:         Role(r.Byte()),
		}
		if !u.Role.Valid() {
			return User{}, fmt.Errorf("user %q: unknown role tag %q", u.Username, byte(u.Role))
		}
		return u, nil
	},
}

var ExamCodec = records.Codec[Exam]{
	Size: 3*TextWidth + 4 + 8 + 8,
	Encode: func(e Exam, buf []byte) {
		w := records.NewWriter(buf)
		w.Text(e.ID, TextWidth)
		w.Text(e.Name, TextWidth)
		w.Text(e.Creator, TextWidth)
		w.Uint32(uint32(e.QuestionCount))
		w.Int64(e.Start.Unix())
		w.Int64(e.End.Unix())
	},
	Decode: func(buf []byte) (Exam, error) {
		r := records.NewReader(buf)
		return Exam{
			ID:            r.Text(TextWidth),
			Name:          r.Text(TextWidth),
			Creator:       r.Text(TextWidth),
			QuestionCount: int(r.Uint32()),
			Start:         time.Unix(r.Int64(), 0),
			End:           time.Unix(r.Int64(), 0),
		}, nil
	},
}

var QuestionCodec = records.Codec[Question]{
	Size: 1 + 4 + 5*TextWidth + 1,
	Encode: func(q Question, buf []byte) {
		w := records.NewWriter(buf)
		w.Bool(q.MultipleChoice)
		w.Uint32(uint32(q.Ordinal))
		w.Text(q.Text, TextWidth)
		for _, opt := range q.Options {
			w.Text(opt, TextWidth)
		}
		w.Byte(byte(q.Correct))
	},
	Decode: func(buf []byte) (Question, error) {
		r := records.NewReader(buf)
		q := Question{MultipleChoice: r.Bool(), Ordinal: int(r.Uint32()), Text: r.Text(TextWidth)}
		for i := range q.Options {
			q.Options[i] = r.Text(TextWidth)
		}
		q.Correct = Choice(r.Byte())
		if q.MultipleChoice && !q.Correct.IsOption() {
			return Question{}, fmt.Errorf("question %d: invalid correct option %q", q.Ordinal, byte(q.Correct))
		}
		return q, nil
	},
}

var AnswerCodec = records.Codec[Answer]{
	Size: 2*TextWidth + 4 + 1 + 1 + EssayWidth,
	Encode: func(a Answer, buf []byte) {
		w := records.NewWriter(buf)
		w.Text(a.ExamID, TextWidth)
		w.Text(a.Username, TextWidth)
		w.Uint32(uint32(a.Ordinal))
		w.Bool(a.MultipleChoice)
		w.Byte(byte(a.Chosen))
		w.Text(a.Essay, EssayWidth)
	},
	Decode: func(buf []byte) (Answer, error) {
		r := records.NewReader(buf)
		return Answer{
			ExamID:         r.Text(TextWidth),
			Username:       r.Text(TextWidth),
			Ordinal:        int(r.Uint32()),
			MultipleChoice: r.Bool(),
			Chosen:         Choice(r.Byte()),
			Essay:          r.Text(EssayWidth),
		}, nil
	},
}

var ResultCodec = records.Codec[Result]{
	Size: 3*TextWidth + 3*4 + 8 + 8,
	Encode: func(res Result, buf []byte) {
		w := records.NewWriter(buf)
		w.Text(res.Username, TextWidth)
		w.Text(res.ExamID, TextWidth)
		w.Text(res.ExamName, TextWidth)
		w.Int32(int32(res.Correct))
		w.Int32(int32(res.Wrong))
		w.Int32(int32(res.MultipleChoiceTotal))
		w.Float64(res.Score)
		w.Int64(res.VisibleAt.Unix())
	},
	Decode: func(buf []byte) (Result, error) {
		r := records.NewReader(buf)
		return Result{
			Username:            r.Text(TextWidth),
			ExamID:              r.Text(TextWidth),
			ExamName:            r.Text(TextWidth),
			Correct:             int(r.Int32()),
			Wrong:               int(r.Int32()),
			MultipleChoiceTotal: int(r.Int32()),
			Score:               r.Float64(),
			VisibleAt:           time.Unix(r.Int64(), 0),
		}, nil
	},
}

// CompletionCodec encodes one completion ledger entry: the exam id.
var CompletionCodec = records.Codec[string]{
	Size:   TextWidth,
	Encode: func(examID string, buf []byte) { records.NewWriter(buf).Text(examID, TextWidth) },
	Decode: func(buf []byte) (string, error) { return records.NewReader(buf).Text(TextWidth), nil },
}
