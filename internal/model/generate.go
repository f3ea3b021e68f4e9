package model

// GeneratedQuestion is the structured shape the AI generator must return.
// It is validated against the Question contract before anything is accepted
// into a quiz; malformed output is rejected, never persisted.
type GeneratedQuestion struct {
	Subject       string   `json:"subject,omitempty"`
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
}

// ToQuestion converts a validated generated question into a quiz question
func (g *GeneratedQuestion) ToQuestion() Question {
	return Question{
		Type:          QuestionMultipleChoice,
		Text:          g.Text,
		Options:       g.Options,
		CorrectAnswer: g.CorrectAnswer,
	}
}

// AnalysisReport is the AI-written performance summary for one student
type AnalysisReport struct {
	Report string `json:"report"`
}
