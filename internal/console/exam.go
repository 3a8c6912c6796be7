package console

import (
	"errors"
	"time"

	"github.com/liAmirali/UIFP-final-project/internal/models"
	"github.com/liAmirali/UIFP-final-project/internal/services"
)

// examPrompter answers session prompts from the console input.
type examPrompter struct {
	c *Console
}

func (p examPrompter) ConfirmExam(exam models.Exam) (bool, error) {
	p.c.printf("\tExam found.\n")
	return p.c.askYesNo("Is \"" + exam.Name + "\" the right exam? (y/n) ")
}

func (p examPrompter) AskQuestion(q models.Question, remaining time.Duration) (services.AnswerInput, error) {
	c := p.c
	c.printf("-------------------------------------------------\n")
	c.printf("Remaining Time: %s\n", formatDuration(remaining))
	c.printf("(%d) %s\n", q.Ordinal, q.Text)
	if !q.MultipleChoice {
		essay, err := c.askRaw("Your answer: ")
		return services.AnswerInput{Essay: essay}, err
	}
	for i, opt := range q.Options {
		c.printf("%c) %s\n", 'a'+i, opt)
	}
	s, err := c.ask("Your answer (a-d, x to leave it blank): ")
	if err != nil {
		return services.AnswerInput{}, err
	}
	// Unparseable input is submitted as ChoiceNone and rejected by the session.
	ch, _ := models.ParseChoice(s)
	return services.AnswerInput{Choice: ch}, nil
}

func (p examPrompter) Rejected(_ models.Question, err error) {
	p.c.printError(err)
}

func (c *Console) takeExam(who services.Identity) error {
	id, err := c.askRequired("Enter the exam id you want to take: ")
	if err != nil {
		return err
	}
	sum, err := c.deps.Sessions.Run(who, id, examPrompter{c: c})
	if errors.Is(err, services.ErrSessionDeclined) {
		c.printf("\tThe exam was not started.\n")
		return nil
	}
	if err != nil {
		return err
	}
	c.printf("-------------------------------------------------\n")
	if sum.Early {
		c.printf("\tThe exam time is over, the remaining questions were skipped.\n")
	}
	c.printf("\tYou answered %d questions. Your result will be available on %s\n",
		sum.Answered, c.formatTime(sum.Result.VisibleAt))
	return nil
}
