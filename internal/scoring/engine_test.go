package scoring

import (
	"testing"

	"examforge/internal/model"
)

func TestScoreUniformMarks(t *testing.T) {
	quiz := &model.Quiz{
		ID:           "quiz-1",
		MarksMode:    model.MarksModeUniform,
		CorrectMarks: fptr(4),
		WrongMarks:   fptr(-1),
		Subjects: map[string][]model.Question{
			"Physics": {
				mcq(2),
				mcq(0),
				mcq(1),
			},
		},
	}

	tests := []struct {
		name      string
		responses model.ResponseSet
		total     float64
	}{
		{
			name: "all correct",
			responses: model.ResponseSet{
				"Physics": {
					0: mcqResponse(3, 3),
					1: mcqResponse(1, 1),
					2: mcqResponse(0, 0),
				},
			},
			total: 12,
		},
		{
			name: "one wrong two correct",
			responses: model.ResponseSet{
				"Physics": {
					0: mcqResponse(3, 3),
					1: mcqResponse(2, 1),
					2: mcqResponse(0, 0),
				},
			},
			total: 4 + -1 + 4,
		},
		{
			name:      "all unanswered score the wrong mark",
			responses: model.ResponseSet{},
			total:     -3,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := Score(quiz, tc.responses)
			if err != nil {
				t.Fatalf("score failed: %v", err)
			}
			if result.Total != tc.total {
				t.Fatalf("expected total %v, got %v", tc.total, result.Total)
			}
			if result.SubjectScores["Physics"] != tc.total {
				t.Fatalf("expected subject subtotal %v, got %v", tc.total, result.SubjectScores["Physics"])
			}
		})
	}
}

func TestScoreCustomMarksFallback(t *testing.T) {
	quiz := &model.Quiz{
		ID:           "quiz-1",
		MarksMode:    model.MarksModeCustom,
		CorrectMarks: fptr(2),
		WrongMarks:   fptr(0),
		Subjects: map[string][]model.Question{
			"Chemistry": {
				// Q0 carries its own override, Q1 falls back to quiz defaults
				withMarks(mcq(1), 5, -2),
				mcq(1),
			},
		},
	}

	responses := model.ResponseSet{
		"Chemistry": {
			0: mcqResponse(2, 2),
			1: mcqResponse(0, 2),
		},
	}

	result, err := Score(quiz, responses)
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	if got := result.SubjectScores["Chemistry"]; got != 5 {
		t.Fatalf("expected override correct 5 plus fallback wrong 0, got %v", got)
	}
	if result.QuestionMarks["Chemistry"][0] != 5 || result.QuestionMarks["Chemistry"][1] != 0 {
		t.Fatalf("unexpected per-question marks: %v", result.QuestionMarks["Chemistry"])
	}
}

func TestScoreUniformModeIgnoresQuestionOverrides(t *testing.T) {
	quiz := &model.Quiz{
		ID:           "quiz-1",
		MarksMode:    model.MarksModeUniform,
		CorrectMarks: fptr(1),
		Subjects: map[string][]model.Question{
			"Maths": {withMarks(mcq(0), 10, -10)},
		},
	}

	result, err := Score(quiz, model.ResponseSet{
		"Maths": {0: mcqResponse(0, 0)},
	})
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	if result.Total != 1 {
		t.Fatalf("uniform mode must use quiz-level marks, got %v", result.Total)
	}
}

func TestScoreDefaultMarksWhenNoneConfigured(t *testing.T) {
	quiz := &model.Quiz{
		ID:        "quiz-1",
		MarksMode: model.MarksModeUniform,
		Subjects: map[string][]model.Question{
			"Maths": {mcq(0), mcq(1)},
		},
	}

	result, err := Score(quiz, model.ResponseSet{
		"Maths": {0: mcqResponse(0, 0), 1: mcqResponse(0, 1)},
	})
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	if result.Total != 1 {
		t.Fatalf("expected default correct=1 wrong=0, got %v", result.Total)
	}
}

func TestScoreFillBlankNormalization(t *testing.T) {
	quiz := &model.Quiz{
		ID:           "quiz-1",
		MarksMode:    model.MarksModeUniform,
		CorrectMarks: fptr(1),
		Subjects: map[string][]model.Question{
			"Geography": {
				{Type: model.QuestionFillBlank, Text: "Capital of France?", AnswerKey: "Paris"},
			},
		},
	}

	tests := []struct {
		answer string
		want   float64
	}{
		{"Paris ", 1},
		{"paris", 1},
		{"PARIS", 1},
		{"  pArIs  ", 1},
		{"London", 0},
		{"", 0},
	}

	for _, tc := range tests {
		t.Run("answer "+tc.answer, func(t *testing.T) {
			result, err := Score(quiz, model.ResponseSet{
				"Geography": {0: {Text: tc.answer}},
			})
			if err != nil {
				t.Fatalf("score failed: %v", err)
			}
			if result.Total != tc.want {
				t.Fatalf("answer %q: expected %v, got %v", tc.answer, tc.want, result.Total)
			}
		})
	}
}

func TestScoreFillBlankMultipleAcceptedAnswers(t *testing.T) {
	quiz := &model.Quiz{
		ID:           "quiz-1",
		MarksMode:    model.MarksModeUniform,
		CorrectMarks: fptr(4),
		Subjects: map[string][]model.Question{
			"Maths": {
				{Type: model.QuestionFillBlank, Text: "Answer to everything?", AnswerKey: "42|forty two"},
			},
		},
	}

	result, err := Score(quiz, model.ResponseSet{
		"Maths": {0: {Text: "Forty Two"}},
	})
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	if result.Total != 4 {
		t.Fatalf("expected alternate key to match, got %v", result.Total)
	}
}

func TestScoreSubjectivePendingAndGraded(t *testing.T) {
	quiz := &model.Quiz{
		ID:        "quiz-1",
		MarksMode: model.MarksModeCustom,
		Subjects: map[string][]model.Question{
			"English": {
				withMarks(model.Question{Type: model.QuestionSubjective, Text: "Essay"}, 4, 0),
			},
		},
	}

	pending, err := Score(quiz, model.ResponseSet{
		"English": {0: {Text: "my essay"}},
	})
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	if pending.Total != 0 {
		t.Fatalf("ungraded subjective must contribute zero, got %v", pending.Total)
	}

	graded, err := Score(quiz, model.ResponseSet{
		"English": {0: {Text: "my essay", Marks: fptr(3)}},
	})
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	if graded.Total != 3 {
		t.Fatalf("graded subjective must use teacher marks, got %v", graded.Total)
	}
}

// The §8 walk-through: Q0 MCQ (correct 4 / wrong -1), Q1 fill-blank
// (correct 4 / wrong 0, key "42|forty two").
func TestScoreMixedScenario(t *testing.T) {
	quiz := &model.Quiz{
		ID:        "quiz-1",
		MarksMode: model.MarksModeCustom,
		Subjects: map[string][]model.Question{
			"Math": {
				withMarks(mcq(2), 4, -1),
				withMarks(model.Question{Type: model.QuestionFillBlank, Text: "?", AnswerKey: "42|forty two"}, 4, 0),
			},
		},
	}

	correctQ0Blank, err := Score(quiz, model.ResponseSet{
		"Math": {0: mcqResponse(1, 1)},
	})
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	if correctQ0Blank.SubjectScores["Math"] != 4 || correctQ0Blank.Total != 4 {
		t.Fatalf("expected 4+0=4, got %+v", correctQ0Blank)
	}

	wrongQ0CorrectQ1, err := Score(quiz, model.ResponseSet{
		"Math": {
			0: mcqResponse(0, 1),
			1: {Text: "Forty Two"},
		},
	})
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	if wrongQ0CorrectQ1.SubjectScores["Math"] != 3 {
		t.Fatalf("expected -1+4=3, got %v", wrongQ0CorrectQ1.SubjectScores["Math"])
	}
}

func TestScoreSkipsOrphanedResponses(t *testing.T) {
	quiz := &model.Quiz{
		ID:           "quiz-1",
		MarksMode:    model.MarksModeUniform,
		CorrectMarks: fptr(1),
		Subjects: map[string][]model.Question{
			"Maths": {mcq(0)},
		},
	}

	// Index 5 and subject "History" no longer exist in the quiz definition
	result, err := Score(quiz, model.ResponseSet{
		"Maths":   {0: mcqResponse(0, 0), 5: mcqResponse(0, 0)},
		"History": {0: mcqResponse(0, 0)},
	})
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	if result.Total != 1 {
		t.Fatalf("stale responses must be ignored, got %v", result.Total)
	}
	if _, ok := result.SubjectScores["History"]; ok {
		t.Fatalf("subjects absent from the quiz must not be invented")
	}
}

func TestScoreMalformedResponsesTakeWrongPath(t *testing.T) {
	quiz := &model.Quiz{
		ID:           "quiz-1",
		MarksMode:    model.MarksModeUniform,
		CorrectMarks: fptr(4),
		WrongMarks:   fptr(-1),
		Subjects: map[string][]model.Question{
			"Physics": {mcq(1), mcq(1)},
		},
	}

	// Q0 is missing its shuffled-correct capture, Q1 has no selection
	result, err := Score(quiz, model.ResponseSet{
		"Physics": {
			0: {SelectedIndex: iptr(1)},
			1: {ShuffledCorrectIndex: iptr(1)},
		},
	})
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	if result.Total != -2 {
		t.Fatalf("malformed responses must score as incorrect, got %v", result.Total)
	}
}

func TestScoreInvalidQuiz(t *testing.T) {
	if _, err := Score(nil, nil); err != ErrInvalidQuiz {
		t.Fatalf("expected ErrInvalidQuiz for nil quiz, got %v", err)
	}
	if _, err := Score(&model.Quiz{ID: "quiz-1"}, nil); err != ErrInvalidQuiz {
		t.Fatalf("expected ErrInvalidQuiz for missing subjects, got %v", err)
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	quiz := &model.Quiz{
		ID:           "quiz-1",
		MarksMode:    model.MarksModeUniform,
		CorrectMarks: fptr(2.5),
		WrongMarks:   fptr(-0.5),
		Subjects: map[string][]model.Question{
			"A": {mcq(0), mcq(1), mcq(2)},
			"B": {{Type: model.QuestionFillBlank, AnswerKey: "x|y"}},
		},
	}
	responses := model.ResponseSet{
		"A": {0: mcqResponse(0, 0), 1: mcqResponse(1, 0)},
		"B": {0: {Text: " Y "}},
	}

	first, err := Score(quiz, responses)
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	second, err := Score(quiz, responses)
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	if first.Total != second.Total {
		t.Fatalf("scoring must be deterministic: %v vs %v", first.Total, second.Total)
	}
	if first.Total != 2.5+-0.5+-0.5+2.5 {
		t.Fatalf("unexpected total %v", first.Total)
	}
}

func TestScoreTotalBitStableWithFractionalMarks(t *testing.T) {
	// Fractional marks make float addition order-sensitive in the last ulp;
	// the total must come out bit-identical on every run regardless of map
	// iteration order.
	subjects := map[string][]model.Question{
		"Biology":   {withMarks(mcq(0), 0.1, -0.3), withMarks(mcq(1), 0.7, -0.1)},
		"Chemistry": {withMarks(mcq(2), 0.2, -0.7)},
		"English":   {withMarks(mcq(3), 1.3, -0.9)},
		"Maths":     {withMarks(mcq(0), 0.3, -0.2), withMarks(mcq(1), 0.1, -0.1)},
		"Physics":   {withMarks(mcq(2), 0.9, -0.4)},
	}
	quiz := &model.Quiz{
		ID:        "quiz-1",
		MarksMode: model.MarksModeCustom,
		Subjects:  subjects,
	}
	responses := model.ResponseSet{
		"Biology":   {0: mcqResponse(0, 0), 1: mcqResponse(1, 2)},
		"Chemistry": {0: mcqResponse(3, 3)},
		"Maths":     {0: mcqResponse(2, 2), 1: mcqResponse(0, 1)},
		"Physics":   {0: mcqResponse(1, 1)},
	}

	first, err := Score(quiz, responses)
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}

	for run := 0; run < 100; run++ {
		again, err := Score(quiz, responses)
		if err != nil {
			t.Fatalf("score failed on run %d: %v", run, err)
		}
		if again.Total != first.Total {
			t.Fatalf("total drifted on run %d: %v vs %v", run, again.Total, first.Total)
		}
	}

	// The total must equal the subject subtotals summed in sorted name order
	expected := 0.0
	for _, subject := range []string{"Biology", "Chemistry", "English", "Maths", "Physics"} {
		expected += first.SubjectScores[subject]
	}
	if first.Total != expected {
		t.Fatalf("total %v does not match ordered subtotal sum %v", first.Total, expected)
	}
}

// helpers

func mcq(correct int) model.Question {
	return model.Question{
		Type:          model.QuestionMultipleChoice,
		Text:          "pick one",
		Options:       []string{"a", "b", "c", "d"},
		CorrectAnswer: correct,
	}
}

func withMarks(q model.Question, correct, wrong float64) model.Question {
	q.CorrectMarks = &correct
	q.WrongMarks = &wrong
	return q
}

func mcqResponse(selected, shuffledCorrect int) *model.Response {
	return &model.Response{
		SelectedIndex:        &selected,
		ShuffledCorrectIndex: &shuffledCorrect,
	}
}

func fptr(f float64) *float64 { return &f }
func iptr(i int) *int         { return &i }
