package model

// Difficulty buckets used by the recommender
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// BankQuestion is a reference question the recommender is trained on.
// CorrectPercent is the historical share of students answering correctly,
// used to estimate difficulty when none is labeled.
type BankQuestion struct {
	Subject        string     `json:"subject"`
	Text           string     `json:"text"`
	Difficulty     Difficulty `json:"difficulty,omitempty"`
	CorrectPercent float64    `json:"correctPercent,omitempty"`
}

// SubjectPerformance summarizes one student's answered/correct counts
// for a subject, the input to personalized recommendations.
type SubjectPerformance struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}
