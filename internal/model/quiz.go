package model

// MarksMode selects how mark values are resolved for a quiz
type MarksMode string

const (
	// MarksModeUniform applies the quiz-level mark values to every question
	MarksModeUniform MarksMode = "uniform"
	// MarksModeCustom lets each question carry its own mark values
	MarksModeCustom MarksMode = "custom"
)

// QuestionType defines the type of question
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple-choice"
	QuestionFillBlank      QuestionType = "fill-in-the-blank"
	QuestionSubjective     QuestionType = "subjective"
)

// Question is a single question within a subject's ordered list.
// Its index in that list is the stable identifier submissions refer to.
type Question struct {
	Type QuestionType `json:"type" bson:"type"`
	Text string       `json:"text" bson:"text"`

	// Multiple-choice: four options and the canonical index of the correct one
	Options       []string `json:"options,omitempty" bson:"options,omitempty"`
	CorrectAnswer int      `json:"correctAnswer" bson:"correctAnswer"`

	// Fill-in-the-blank: "|"-delimited set of acceptable answers
	AnswerKey string `json:"answerKey,omitempty" bson:"answerKey,omitempty"`

	// Per-question mark overrides, honored only when the quiz uses custom marks
	CorrectMarks *float64 `json:"correctMarks,omitempty" bson:"correctMarks,omitempty"`
	WrongMarks   *float64 `json:"wrongMarks,omitempty" bson:"wrongMarks,omitempty"`
}

// Quiz is a named collection of subjects, each an ordered question list
type Quiz struct {
	ID        string    `json:"id" bson:"id"`
	Title     string    `json:"title" bson:"title"`
	MarksMode MarksMode `json:"marksMode" bson:"marksMode"`

	// Quiz-level defaults, used in uniform mode or as custom-mode fallback
	CorrectMarks *float64 `json:"correctMarks,omitempty" bson:"correctMarks,omitempty"`
	WrongMarks   *float64 `json:"wrongMarks,omitempty" bson:"wrongMarks,omitempty"`

	Subjects map[string][]Question `json:"subjects" bson:"subjects"`
}

// QuestionAt returns the question at the given subject and index, or nil
// when the subject or index does not exist in the current definition.
func (q *Quiz) QuestionAt(subject string, index int) *Question {
	questions, ok := q.Subjects[subject]
	if !ok {
		return nil
	}
	if index < 0 || index >= len(questions) {
		return nil
	}
	return &questions[index]
}
