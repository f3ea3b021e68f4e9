package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"examforge/internal/cache"
	"examforge/internal/model"
	"examforge/internal/repository"
	"examforge/internal/scoring"
)

var (
	ErrInvalidSubmission = errors.New("invalid submission")
	ErrAnswerNotFound    = errors.New("answer not found")
)

// Broadcaster pushes live score updates to connected watchers
type Broadcaster interface {
	BroadcastScore(quizID string, update *model.ScoreUpdate)
}

// SubmitRequest is the raw attempt a student sends in. Any score-bearing
// fields a client might include are ignored; scores are always recomputed
// server-side.
type SubmitRequest struct {
	StudentID   string              `json:"studentId"`
	StudentName string              `json:"studentName"`
	QuizID      string              `json:"quizId"`
	Answers     []model.AnswerEntry `json:"answers"`
}

// GradedMark carries one teacher-assigned mark for a subjective question
type GradedMark struct {
	Subject       string  `json:"subject"`
	QuestionIndex int     `json:"qIndex"`
	Marks         float64 `json:"marks"`
}

// GradingService owns the grading workflow: attempt intake, the attempt
// guard, teacher overrides, and rescoring. It is the only writer of
// totalScore and subjectScores.
type GradingService struct {
	quizRepo    repository.QuizRepo
	resultRepo  repository.ResultRepo
	scores      cache.ScoreCache
	broadcaster Broadcaster
}

// NewGradingService creates a new grading service
func NewGradingService(quizRepo repository.QuizRepo, resultRepo repository.ResultRepo, scores cache.ScoreCache) *GradingService {
	return &GradingService{
		quizRepo:   quizRepo,
		resultRepo: resultRepo,
		scores:     scores,
	}
}

// SetBroadcaster injects the live-results broadcaster (the WS hub)
func (s *GradingService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SubmitAttempt accepts a raw submission, scores the auto-gradable
// questions, and persists exactly one record per (student, quiz). A second
// attempt for the same pair fails with ErrAlreadyAttempted; the unique
// index in the result store guarantees this even for concurrent submits.
func (s *GradingService) SubmitAttempt(ctx context.Context, req *SubmitRequest) (*model.SubmissionRecord, error) {
	if req == nil || req.StudentID == "" || req.QuizID == "" {
		return nil, fmt.Errorf("%w: missing student or quiz identity", ErrInvalidSubmission)
	}

	quiz, err := s.quizRepo.GetByID(ctx, req.QuizID)
	if err != nil {
		return nil, fmt.Errorf("failed to load quiz: %w", err)
	}
	if quiz == nil {
		return nil, repository.ErrQuizNotFound
	}

	// Early rejection for the common case; the insert below is the
	// authoritative check.
	existing, err := s.resultRepo.FindByStudentAndQuiz(ctx, req.StudentID, req.QuizID)
	if err != nil {
		return nil, fmt.Errorf("attempt check failed: %w", err)
	}
	if existing != nil {
		return nil, repository.ErrAlreadyAttempted
	}

	record := &model.SubmissionRecord{
		ID:          uuid.New().String(),
		StudentID:   req.StudentID,
		StudentName: req.StudentName,
		QuizID:      req.QuizID,
		Answers:     sanitizeAnswers(req.Answers),
		SubmittedAt: time.Now(),
	}

	if err := s.rescore(quiz, record); err != nil {
		return nil, err
	}

	if err := s.resultRepo.Create(ctx, record); err != nil {
		if errors.Is(err, repository.ErrAlreadyAttempted) {
			return nil, repository.ErrAlreadyAttempted
		}
		return nil, fmt.Errorf("failed to save result: %w", err)
	}

	s.publish("submitted", record)
	return record, nil
}

// CheckAttempt reports whether a student may still attempt a quiz
func (s *GradingService) CheckAttempt(ctx context.Context, studentID, quizID string) (bool, error) {
	if studentID == "" || quizID == "" {
		return false, fmt.Errorf("%w: missing student or quiz identity", ErrInvalidSubmission)
	}
	existing, err := s.resultRepo.FindByStudentAndQuiz(ctx, studentID, quizID)
	if err != nil {
		return false, err
	}
	return existing == nil, nil
}

// Regrade merges teacher-assigned marks for subjective questions into the
// stored record and recomputes the full score against the current quiz
// definition. The stored record is the source of truth for every answer
// field; only the numeric marks are taken from the caller, so a grader's
// payload can never alter what a student actually answered. Applying the
// same marks twice yields the same total.
func (s *GradingService) Regrade(ctx context.Context, resultID string, grades []GradedMark) (*model.SubmissionRecord, error) {
	record, err := s.resultRepo.GetByID(ctx, resultID)
	if err != nil {
		return nil, fmt.Errorf("failed to load result: %w", err)
	}
	if record == nil {
		return nil, repository.ErrResultNotFound
	}

	quiz, err := s.quizRepo.GetByID(ctx, record.QuizID)
	if err != nil {
		return nil, fmt.Errorf("failed to load quiz: %w", err)
	}
	if quiz == nil {
		return nil, repository.ErrQuizNotFound
	}

	for _, grade := range grades {
		if err := applyGrade(quiz, record, grade); err != nil {
			return nil, err
		}
	}

	if err := s.rescore(quiz, record); err != nil {
		return nil, err
	}

	if err := s.resultRepo.UpdateGrades(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save grades: %w", err)
	}

	s.publish("regraded", record)
	return record, nil
}

// applyGrade sets the marks on one stored subjective answer
func applyGrade(quiz *model.Quiz, record *model.SubmissionRecord, grade GradedMark) error {
	question := quiz.QuestionAt(grade.Subject, grade.QuestionIndex)
	if question == nil {
		return repository.ErrQuestionNotFound
	}
	if question.Type != model.QuestionSubjective {
		return fmt.Errorf("%w: %s[%d] is not subjective", ErrInvalidSubmission, grade.Subject, grade.QuestionIndex)
	}

	for i := range record.Answers {
		entry := &record.Answers[i]
		if entry.Subject == grade.Subject && entry.QuestionIndex == grade.QuestionIndex {
			marks := grade.Marks
			entry.Marks = &marks
			return nil
		}
	}
	return ErrAnswerNotFound
}

// rescore runs the scoring engine over the record's full response set and
// writes the authoritative totals and per-question marks back onto it.
func (s *GradingService) rescore(quiz *model.Quiz, record *model.SubmissionRecord) error {
	result, err := scoring.Score(quiz, record.ResponseSet())
	if err != nil {
		return fmt.Errorf("scoring failed: %w", err)
	}

	record.TotalScore = result.Total
	record.SubjectScores = result.SubjectScores

	// Annotate stored answers with their awarded marks. Subjective answers
	// keep their pending state until a teacher grades them.
	for i := range record.Answers {
		entry := &record.Answers[i]
		question := quiz.QuestionAt(entry.Subject, entry.QuestionIndex)
		if question == nil || question.Type == model.QuestionSubjective {
			continue
		}
		if byIndex, ok := result.QuestionMarks[entry.Subject]; ok {
			if marks, ok := byIndex[entry.QuestionIndex]; ok {
				m := marks
				entry.Marks = &m
			}
		}
	}
	return nil
}

// sanitizeAnswers keeps only the fields a client is allowed to supply.
// Marks never come from a submission payload.
func sanitizeAnswers(answers []model.AnswerEntry) []model.AnswerEntry {
	sanitized := make([]model.AnswerEntry, 0, len(answers))
	for _, entry := range answers {
		sanitized = append(sanitized, model.AnswerEntry{
			Subject:       entry.Subject,
			QuestionIndex: entry.QuestionIndex,
			Response: model.Response{
				SelectedIndex:        entry.SelectedIndex,
				ShuffledCorrectIndex: entry.ShuffledCorrectIndex,
				Text:                 entry.Text,
			},
		})
	}
	return sanitized
}

func (s *GradingService) publish(event string, record *model.SubmissionRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.scores.UpdateScore(ctx, record.QuizID, record.ID, record.TotalScore); err != nil {
		log.Printf("score cache update failed for result %s: %v", record.ID, err)
	}

	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastScore(record.QuizID, &model.ScoreUpdate{
		Event:         event,
		QuizID:        record.QuizID,
		ResultID:      record.ID,
		StudentName:   record.StudentName,
		TotalScore:    record.TotalScore,
		SubjectScores: record.SubjectScores,
		At:            time.Now(),
	})
}
