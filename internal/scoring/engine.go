// Package scoring computes marks for a submission against a quiz
// definition. It is pure: no I/O, no clock, no stored state. Everything a
// caller persists as a score must come out of this package.
package scoring

import (
	"errors"
	"sort"
	"strings"

	"examforge/internal/model"
)

// ErrInvalidQuiz is returned when the quiz itself is structurally unusable
// for scoring, e.g. it has no subjects at all.
var ErrInvalidQuiz = errors.New("quiz has no subjects")

const (
	defaultCorrectMarks = 1
	defaultWrongMarks   = 0
)

// Result is the authoritative outcome of scoring one submission
type Result struct {
	Total         float64
	SubjectScores map[string]float64

	// QuestionMarks holds the mark awarded per (subject, question index),
	// so callers can annotate stored answers without re-deriving anything.
	QuestionMarks map[string]map[int]float64
}

// Score walks every subject and question of the quiz definition, in quiz
// order, and accumulates per-question marks into subject subtotals and a
// grand total. Iterating the quiz rather than the response set means
// unanswered questions still receive the wrong/penalty mark, and responses
// pointing at indices the quiz no longer has are silently skipped.
//
// Per-question anomalies (missing answers, malformed responses) never fail
// the computation; they take the incorrect path. Only a structurally
// invalid quiz is an error.
func Score(quiz *model.Quiz, responses model.ResponseSet) (*Result, error) {
	if quiz == nil || len(quiz.Subjects) == 0 {
		return nil, ErrInvalidQuiz
	}

	result := &Result{
		SubjectScores: make(map[string]float64, len(quiz.Subjects)),
		QuestionMarks: make(map[string]map[int]float64, len(quiz.Subjects)),
	}

	// Subjects are summed in sorted name order so the float accumulation
	// of Total is bit-identical across runs.
	subjects := make([]string, 0, len(quiz.Subjects))
	for subject := range quiz.Subjects {
		subjects = append(subjects, subject)
	}
	sort.Strings(subjects)

	for _, subject := range subjects {
		questions := quiz.Subjects[subject]
		subtotal := 0.0
		marksByIndex := make(map[int]float64, len(questions))

		for i := range questions {
			question := &questions[i]
			marks := scoreQuestion(quiz, question, responses[subject][i])
			marksByIndex[i] = marks
			subtotal += marks
		}

		result.SubjectScores[subject] = subtotal
		result.QuestionMarks[subject] = marksByIndex
		result.Total += subtotal
	}

	return result, nil
}

func scoreQuestion(quiz *model.Quiz, question *model.Question, resp *model.Response) float64 {
	correct, wrong := resolveMarks(quiz, question)

	switch question.Type {
	case model.QuestionSubjective:
		// Ungraded subjective answers contribute zero until a teacher
		// assigns marks; they never block scoring of the rest.
		if resp != nil && resp.Marks != nil {
			return *resp.Marks
		}
		return 0

	case model.QuestionMultipleChoice:
		if resp != nil && resp.SelectedIndex != nil && resp.ShuffledCorrectIndex != nil &&
			*resp.SelectedIndex == *resp.ShuffledCorrectIndex {
			return correct
		}
		return wrong

	case model.QuestionFillBlank:
		if resp != nil && matchesAnswerKey(question.AnswerKey, resp.Text) {
			return correct
		}
		return wrong

	default:
		// Unknown question type: nothing to award
		return 0
	}
}

// resolveMarks picks the mark pair for a question: in custom mode the
// question's own values win, the quiz-level values are the fallback, and
// correct=1/wrong=0 applies when neither is set.
func resolveMarks(quiz *model.Quiz, question *model.Question) (correct, wrong float64) {
	correct, wrong = defaultCorrectMarks, defaultWrongMarks

	if quiz.CorrectMarks != nil {
		correct = *quiz.CorrectMarks
	}
	if quiz.WrongMarks != nil {
		wrong = *quiz.WrongMarks
	}

	if quiz.MarksMode == model.MarksModeCustom {
		if question.CorrectMarks != nil {
			correct = *question.CorrectMarks
		}
		if question.WrongMarks != nil {
			wrong = *question.WrongMarks
		}
	}

	return correct, wrong
}

// matchesAnswerKey checks a fill-in-the-blank answer against the
// "|"-delimited set of acceptable answers, case-insensitively and with
// surrounding whitespace ignored.
func matchesAnswerKey(answerKey, answer string) bool {
	given := strings.ToLower(strings.TrimSpace(answer))
	if given == "" {
		return false
	}
	for _, accepted := range strings.Split(answerKey, "|") {
		if given == strings.ToLower(strings.TrimSpace(accepted)) {
			return true
		}
	}
	return false
}
