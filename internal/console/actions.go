package console

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/liAmirali/UIFP-final-project/internal/models"
	"github.com/liAmirali/UIFP-final-project/internal/services"
)

func (c *Console) listUsersAction(role models.Role) func(services.Identity) error {
	return func(services.Identity) error {
		users, err := c.deps.Users.ListUsers(role)
		if err != nil {
			return err
		}
		if len(users) == 0 {
			c.printf("\tNo %s is registered yet.\n", strings.ToLower(role.String()))
			return nil
		}
		for i, u := range users {
			c.printf("\t(%d) %s (%s)\n", i+1, u.FullName(), u.Username)
		}
		return nil
	}
}

func (c *Console) listExams(who services.Identity) error {
	exams, err := c.deps.Catalog.ListExams(who)
	if err != nil {
		return err
	}
	if len(exams) == 0 {
		c.printf("\tNo exam has been added yet.\n")
		return nil
	}
	for i, l := range exams {
		mine := ""
		if l.Mine {
			mine = " [yours]"
		}
		c.printf("\t(%d) %s: %q by %s, %d questions, %s to %s, %s%s\n", i+1,
			l.Exam.ID, l.Exam.Name, l.Exam.Creator, l.Exam.QuestionCount,
			c.formatTime(l.Exam.Start), c.formatTime(l.Exam.End), strings.ReplaceAll(string(l.State), "_", " "), mine)
	}
	return nil
}

func (c *Console) addUser(who services.Identity) error {
	c.printf("Registering new user\n")
	var req services.RegisterRequest
	for {
		s, err := c.ask("Enter the role of the user [(S)tudent|(P)rofessor]: ")
		if err != nil {
			return err
		}
		role, ok := models.ParseRole(s)
		if ok && role != models.RoleManager {
			req.Role = string(role)
			break
		}
		c.printf("\t*** Error: The entered role was undefined, please enter either S or P ***\n")
	}
	person, err := c.askPerson()
	if err != nil {
		return err
	}
	person.Role = req.Role
	for {
		u, err := c.deps.Users.Register(who, person)
		if err == nil {
			c.printf("\t%s has been registered as a %s.\n", u.FullName(), strings.ToLower(u.Role.String()))
			return nil
		}
		if !services.IsKind(err, services.ErrorDuplicate) {
			return err
		}
		c.printError(err)
		if person.Username, err = c.askRequired("Username: "); err != nil {
			return err
		}
	}
}

func (c *Console) addExam(who services.Identity) error {
	var req services.CreateExamRequest
	var err error
	if req.Name, err = c.askRequired("Enter the name of the exam: "); err != nil {
		return err
	}
	for {
		req.QuestionCount, err = c.askInt("How many questions does the exam have? ")
		if err != nil && !errors.Is(err, errNotNumber) {
			return err
		}
		if err == nil && req.QuestionCount >= 1 {
			break
		}
		c.printf("\t*** Error: The number of questions cannot be less than 1 ***\n")
	}
	for {
		if req.Start, err = c.askTime("When does the exam start?"); err != nil {
			return err
		}
		if !req.Start.Before(c.now().Truncate(time.Second)) {
			break
		}
		c.printf("\t*** Error: Exam start time cannot be earlier than this moment. ***\n")
	}
	for {
		if req.End, err = c.askTime("When does the exam end?"); err != nil {
			return err
		}
		if req.End.After(req.Start) {
			break
		}
		c.printf("\t*** Error: The end time must be later than the start time! ***\n")
	}

	c.printf("\tAdding the questions:\n")
	questions := make([]services.QuestionInput, 0, req.QuestionCount)
	for n := 1; n <= req.QuestionCount; n++ {
		c.printf("------------------------------------------\n")
		in, err := c.askQuestion(n)
		if err != nil {
			return err
		}
		questions = append(questions, in)
	}
	exam, err := c.deps.Catalog.AuthorExam(who, req, questions)
	if err != nil {
		return err
	}
	c.printf("\tNew exam has been successfully added! Its id is %s\n", exam.ID)
	return nil
}

func (c *Console) askQuestion(n int) (services.QuestionInput, error) {
	in := services.QuestionInput{Ordinal: n}
	var err error
	if in.Text, err = c.askRequired(fmt.Sprintf("Enter the question #%d: ", n)); err != nil {
		return in, err
	}
	if in.MultipleChoice, err = c.askYesNo("Is this question a multiple choice question? (y/n) "); err != nil {
		return in, err
	}
	if !in.MultipleChoice {
		return in, nil
	}
	c.printf("\tEnter the options:\n")
	for _, tag := range []string{"a", "b", "c", "d"} {
		opt, err := c.askRequired(tag + ") ")
		if err != nil {
			return in, err
		}
		in.Options = append(in.Options, opt)
	}
	for {
		s, err := c.ask("Which option is the correct answer? (a-d) ")
		if err != nil {
			return in, err
		}
		if ch, ok := models.ParseChoice(s); ok && ch.IsOption() {
			in.Correct = ch.String()
			return in, nil
		}
		c.printf("\t*** Error: Invalid option, please enter a, b, c or d ***\n")
	}
}

func (c *Console) examResults(who services.Identity) error {
	id, err := c.askRequired("Enter the exam id: ")
	if err != nil {
		return err
	}
	view, err := c.deps.Results.ResultsFor(who, id)
	if err != nil {
		return err
	}
	c.printf("\tResults of %q (%s):\n", view.Exam.Name, view.Exam.ID)
	if len(view.Results) == 0 {
		c.printf("\tNobody has taken this exam.\n")
	}
	for _, r := range view.Results {
		c.printStudentResult(r)
	}
	return nil
}

func (c *Console) myResult(who services.Identity) error {
	id, err := c.askRequired("Enter the exam id: ")
	if err != nil {
		return err
	}
	r, err := c.deps.Results.ResultFor(who, id)
	if err != nil {
		return err
	}
	c.printf("\tResult of %q (%s):\n", r.Result.ExamName, r.Result.ExamID)
	c.printStudentResult(*r)
	return nil
}

func (c *Console) printStudentResult(r services.StudentResult) {
	res := r.Result
	c.printf("------------------------------------------\n")
	c.printf("\t%s (%s)\n", r.StudentName, res.Username)
	c.printf("\tCorrect: %d  Wrong: %d  Blank: %d  Multiple choice questions: %d\n",
		res.Correct, res.Wrong, res.MultipleChoiceTotal-res.Correct-res.Wrong, res.MultipleChoiceTotal)
	c.printf("\tScore: %.2f%%\n", res.Score)
	for _, e := range r.Essays {
		c.printf("\tEssay #%d: %s\n", e.Ordinal, e.Essay)
	}
}

func (c *Console) examAnswers(who services.Identity) error {
	id, err := c.askRequired("Enter the exam id: ")
	if err != nil {
		return err
	}
	sheet, err := c.deps.Results.AnswersFor(who, id)
	if err != nil {
		return err
	}
	byOrdinal := make(map[int]models.Question, len(sheet.Questions))
	c.printf("\tQuestions of %q (%s):\n", sheet.Exam.Name, sheet.Exam.ID)
	for _, q := range sheet.Questions {
		byOrdinal[q.Ordinal] = q
		c.printf("\t(%d) %s\n", q.Ordinal, q.Text)
		if q.MultipleChoice {
			for i, opt := range q.Options {
				c.printf("\t    %c) %s\n", 'a'+i, opt)
			}
			c.printf("\t    correct: %s\n", q.Correct)
		}
	}
	if len(sheet.Answers) == 0 {
		c.printf("\tNo answers were recorded.\n")
		return nil
	}
	c.printf("\tAnswers:\n")
	for _, a := range sheet.Answers {
		if a.Answer.MultipleChoice {
			mark := "wrong"
			switch q := byOrdinal[a.Answer.Ordinal]; {
			case a.Answer.Chosen == models.ChoiceBlank:
				mark = "blank"
			case a.Answer.Chosen == q.Correct:
				mark = "correct"
			}
			c.printf("\t%s, #%d: %s (%s)\n", a.StudentName, a.Answer.Ordinal, a.Answer.Chosen, mark)
			continue
		}
		c.printf("\t%s, #%d: %s\n", a.StudentName, a.Answer.Ordinal, a.Answer.Essay)
	}
	return nil
}

func (c *Console) exportResults(who services.Identity) error {
	id, err := c.askRequired("Enter the exam id: ")
	if err != nil {
		return err
	}
	data, err := c.deps.Results.ExportResultsCSV(who, id)
	if err != nil {
		return err
	}
	dir := c.deps.ExportDir
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, "results_"+strings.TrimSpace(id)+".csv")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return services.NewStorageError("could not write export file", err)
	}
	log.Printf("console: exported results of %s to %s", id, path)
	c.printf("\tResults written to %s\n", path)
	return nil
}
