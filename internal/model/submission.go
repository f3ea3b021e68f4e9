package model

import "time"

// Response is one student's answer to one question. Which fields are set
// depends on the question type.
type Response struct {
	// SelectedIndex is the chosen option index within the shuffled order
	// the student was shown (multiple-choice only).
	SelectedIndex *int `json:"selectedIndex,omitempty" bson:"selectedIndex,omitempty"`

	// ShuffledCorrectIndex is the index of the correct option within that
	// same shuffled order, captured at submission time so the answer can be
	// checked later without re-deriving the shuffle.
	ShuffledCorrectIndex *int `json:"shuffledCorrectIndex,omitempty" bson:"shuffledCorrectIndex,omitempty"`

	// Text carries fill-in-the-blank and subjective answers.
	Text string `json:"text,omitempty" bson:"text,omitempty"`

	// Marks is the awarded mark for this question. Nil means pending: a
	// subjective answer not yet graded by a teacher.
	Marks *float64 `json:"marks,omitempty" bson:"marks,omitempty"`
}

// Answered reports whether the response carries any answer at all
func (r *Response) Answered() bool {
	return r.SelectedIndex != nil || r.Text != ""
}

// AnswerEntry ties a response to its question by subject name and the
// question's index within that subject's ordered list.
type AnswerEntry struct {
	Subject       string `json:"subject" bson:"subject"`
	QuestionIndex int    `json:"qIndex" bson:"qIndex"`
	Response      `bson:",inline"`
}

// ResponseSet is the nested view the scoring engine works on:
// subject name -> question index -> response. Indices may be stale when a
// quiz was edited after submission; the engine skips those.
type ResponseSet map[string]map[int]*Response

// SubmissionRecord is the persisted result of one attempt. TotalScore and
// SubjectScores are always server-computed from Answers and the current
// quiz definition, never taken from a client payload.
type SubmissionRecord struct {
	ID          string `json:"id" bson:"_id"`
	StudentID   string `json:"studentId" bson:"studentId"`
	StudentName string `json:"studentName" bson:"studentName"`
	QuizID      string `json:"quizId" bson:"quizId"`

	// StudentKey is a deterministic digest of the cleartext student identity,
	// backing the unique (studentKey, quizId) index even when StudentID is
	// stored encrypted.
	StudentKey string `json:"-" bson:"studentKey"`

	Answers       []AnswerEntry      `json:"answers" bson:"answers"`
	TotalScore    float64            `json:"totalScore" bson:"totalScore"`
	SubjectScores map[string]float64 `json:"subjectScores" bson:"subjectScores"`
	SubmittedAt   time.Time          `json:"submittedAt" bson:"submittedAt"`
}

// ResponseSet builds the nested subject/index view over Answers. Later
// entries for the same (subject, index) win, mirroring update-in-place.
func (s *SubmissionRecord) ResponseSet() ResponseSet {
	set := make(ResponseSet)
	for i := range s.Answers {
		entry := &s.Answers[i]
		if set[entry.Subject] == nil {
			set[entry.Subject] = make(map[int]*Response)
		}
		set[entry.Subject][entry.QuestionIndex] = &entry.Response
	}
	return set
}

// ScoreUpdate is broadcast to live-result watchers whenever a submission
// is created or regraded.
type ScoreUpdate struct {
	Event         string             `json:"event"` // "submitted" or "regraded"
	QuizID        string             `json:"quizId"`
	ResultID      string             `json:"resultId"`
	StudentName   string             `json:"studentName"`
	TotalScore    float64            `json:"totalScore"`
	SubjectScores map[string]float64 `json:"subjectScores"`
	At            time.Time          `json:"at"`
}
