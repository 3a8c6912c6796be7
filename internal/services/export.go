package services

import (
	"bytes"
	"encoding/csv"
	"strconv"
)

// ExportResultsCSV renders the professor view of an exam as CSV, one row per
// student result. Access rules are those of ResultsFor.
func (s *ResultService) ExportResultsCSV(who Identity, examID string) ([]byte, error) {
	view, err := s.ResultsFor(who, examID)
	if err != nil {
		return nil, err
	}
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	_ = w.Write([]string{"exam_id", "exam_name", "username", "full_name", "correct", "wrong", "multiple_choice_total", "score", "essays"})
	for _, r := range view.Results {
		rec := []string{
			r.Result.ExamID,
			r.Result.ExamName,
			r.Result.Username,
			r.StudentName,
			strconv.Itoa(r.Result.Correct),
			strconv.Itoa(r.Result.Wrong),
			strconv.Itoa(r.Result.MultipleChoiceTotal),
			strconv.FormatFloat(r.Result.Score, 'f', 2, 64),
			strconv.Itoa(len(r.Essays)),
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
