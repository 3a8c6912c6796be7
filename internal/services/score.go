package services

import "github.com/liAmirali/UIFP-final-project/internal/models"

// Score maps a multiple-choice tally to a percentage. A correct answer is
// worth 3, a wrong one costs 1 and a blank costs nothing, over a maximum of
// 3 per question. The result is not clamped, so it may be negative. With no
// multiple-choice questions the score is 100.
func Score(correct, wrong, total int) float64 {
	if total == 0 {
		return 100
	}
	return float64(3*correct-wrong) / float64(3*total) * 100
}

// Tally accumulates multiple-choice outcomes during a session.
type Tally struct {
	Correct int
	Wrong   int
	Total   int
}

// Record counts one multiple-choice answer against the correct option.
func (t *Tally) Record(chosen, correct models.Choice) {
	t.Total++
	switch {
	case chosen == models.ChoiceBlank:
	case chosen == correct:
		t.Correct++
	default:
		t.Wrong++
	}
}

func (t Tally) Percent() float64 { return Score(t.Correct, t.Wrong, t.Total) }
