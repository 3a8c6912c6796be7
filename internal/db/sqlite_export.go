package db

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/liAmirali/UIFP-final-project/internal/models"
)

// ExportCounts reports how many rows each table received.
type ExportCounts struct {
	Users       int
	Exams       int
	Questions   int
	Answers     int
	Results     int
	Completions int
}

// ExportSQLite replaces the contents of the export tables with a snapshot of
// the flat-file store. Password hashes are not exported. The schema must
// already be in place (see RunMigrations).
func ExportSQLite(src *FileStore, conn *sql.DB) (ExportCounts, error) {
	var counts ExportCounts
	users, err := src.ListUsers()
	if err != nil {
		return counts, fmt.Errorf("list users: %w", err)
	}
	exams, err := src.ListExams()
	if err != nil {
		return counts, fmt.Errorf("list exams: %w", err)
	}

	tx, err := conn.Begin()
	if err != nil {
		return counts, fmt.Errorf("begin export: %w", err)
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				log.Printf("sqlite export: rollback: %v", rerr)
			}
		}
	}()

	for _, table := range []string{"completions", "results", "answers", "questions", "exams", "users"} {
		if _, err = tx.Exec("DELETE FROM " + table); err != nil {
			return counts, fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, u := range users {
		if _, err = tx.Exec(`INSERT INTO users (username, first_name, last_name, role) VALUES (?, ?, ?, ?)`,
			u.Username, u.FirstName, u.LastName, string(rune(u.Role))); err != nil {
			return counts, fmt.Errorf("insert user %s: %w", u.Username, err)
		}
		counts.Users++
		if u.Role != models.RoleStudent {
			continue
		}
		var ids []string
		if ids, err = src.ListCompletions(u.Username); err != nil {
			return counts, fmt.Errorf("list completions of %s: %w", u.Username, err)
		}
		for _, id := range ids {
			if _, err = tx.Exec(`INSERT INTO completions (username, exam_id) VALUES (?, ?)`, u.Username, id); err != nil {
				return counts, fmt.Errorf("insert completion: %w", err)
			}
			counts.Completions++
		}
	}

	for _, e := range exams {
		if err = exportExam(tx, src, e, &counts); err != nil {
			return counts, err
		}
	}

	if err = tx.Commit(); err != nil {
		return counts, fmt.Errorf("commit export: %w", err)
	}
	return counts, nil
}

func exportExam(tx *sql.Tx, src *FileStore, e models.Exam, counts *ExportCounts) error {
	if _, err := tx.Exec(`INSERT INTO exams (id, name, creator, question_count, start_time, end_time) VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Name, e.Creator, e.QuestionCount, e.Start.Unix(), e.End.Unix()); err != nil {
		return fmt.Errorf("insert exam %s: %w", e.ID, err)
	}
	counts.Exams++

	questions, err := src.ListQuestions(e.ID)
	if err != nil {
		return fmt.Errorf("list questions of %s: %w", e.ID, err)
	}
	for _, q := range questions {
		var correct any
		if q.MultipleChoice {
			correct = q.Correct.String()
		}
		if _, err := tx.Exec(`INSERT INTO questions (exam_id, ordinal, text, multiple_choice, option_a, option_b, option_c, option_d, correct) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, q.Ordinal, q.Text, q.MultipleChoice, q.Options[0], q.Options[1], q.Options[2], q.Options[3], correct); err != nil {
			return fmt.Errorf("insert question %s/%d: %w", e.ID, q.Ordinal, err)
		}
		counts.Questions++
	}

	answers, err := src.ListAnswers(e.ID)
	if err != nil {
		return fmt.Errorf("list answers of %s: %w", e.ID, err)
	}
	for _, a := range answers {
		var chosen, essay any
		if a.MultipleChoice {
			chosen = a.Chosen.String()
		} else {
			essay = a.Essay
		}
		if _, err := tx.Exec(`INSERT INTO answers (exam_id, username, ordinal, multiple_choice, chosen, essay) VALUES (?, ?, ?, ?, ?, ?)`,
			a.ExamID, a.Username, a.Ordinal, a.MultipleChoice, chosen, essay); err != nil {
			return fmt.Errorf("insert answer %s/%s/%d: %w", a.ExamID, a.Username, a.Ordinal, err)
		}
		counts.Answers++
	}

	results, err := src.ListResults(e.ID)
	if err != nil {
		return fmt.Errorf("list results of %s: %w", e.ID, err)
	}
	for _, r := range results {
		if _, err := tx.Exec(`INSERT INTO results (exam_id, username, exam_name, correct, wrong, multiple_choice_total, score, visible_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ExamID, r.Username, r.ExamName, r.Correct, r.Wrong, r.MultipleChoiceTotal, r.Score, r.VisibleAt.Unix()); err != nil {
			return fmt.Errorf("insert result %s/%s: %w", r.ExamID, r.Username, err)
		}
		counts.Results++
	}
	return nil
}
