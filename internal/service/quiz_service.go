package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"examforge/internal/cache"
	"examforge/internal/model"
	"examforge/internal/repository"
)

// ErrInvalidQuiz flags a quiz payload that fails shape validation; nothing
// from such a payload is persisted.
var ErrInvalidQuiz = errors.New("invalid quiz")

const optionsPerQuestion = 4

// QuizService handles quiz reads and administrative writes
type QuizService struct {
	quizRepo repository.QuizRepo
	cache    cache.QuizCache
}

// NewQuizService creates a new quiz service
func NewQuizService(quizRepo repository.QuizRepo, quizCache cache.QuizCache) *QuizService {
	return &QuizService{
		quizRepo: quizRepo,
		cache:    quizCache,
	}
}

// List returns all quizzes, served from Redis when the cache is warm
func (s *QuizService) List(ctx context.Context) ([]*model.Quiz, error) {
	cached, err := s.cache.Get(ctx)
	if err != nil {
		// A cache failure must not take down reads; fall through to Mongo
		log.Printf("quiz cache read failed: %v", err)
	}
	if cached != nil {
		return cached, nil
	}

	quizzes, err := s.quizRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load quizzes: %w", err)
	}
	if err := s.cache.Set(ctx, quizzes); err != nil {
		log.Printf("quiz cache write failed: %v", err)
	}
	return quizzes, nil
}

// Get returns one quiz by id, or nil when it does not exist
func (s *QuizService) Get(ctx context.Context, id string) (*model.Quiz, error) {
	return s.quizRepo.GetByID(ctx, id)
}

// ReplaceAll validates and atomically swaps the entire quiz set
func (s *QuizService) ReplaceAll(ctx context.Context, quizzes []*model.Quiz) error {
	for _, quiz := range quizzes {
		if err := ValidateQuiz(quiz); err != nil {
			return err
		}
	}
	if err := s.quizRepo.ReplaceAll(ctx, quizzes); err != nil {
		return fmt.Errorf("failed to replace quizzes: %w", err)
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		log.Printf("quiz cache invalidate failed: %v", err)
	}
	return nil
}

// UpdateQuestionMarks sets the per-question mark override for one question
func (s *QuizService) UpdateQuestionMarks(ctx context.Context, quizID, subject string, questionIndex int, correctMarks, wrongMarks float64) error {
	if err := s.quizRepo.UpdateQuestionMarks(ctx, quizID, subject, questionIndex, correctMarks, wrongMarks); err != nil {
		return err
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		log.Printf("quiz cache invalidate failed: %v", err)
	}
	return nil
}

// ValidateQuiz checks the structural contract a quiz must satisfy before
// it may be persisted.
func ValidateQuiz(quiz *model.Quiz) error {
	if quiz == nil {
		return fmt.Errorf("%w: missing quiz", ErrInvalidQuiz)
	}
	if quiz.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidQuiz)
	}
	if quiz.Title == "" {
		return fmt.Errorf("%w: %s: missing title", ErrInvalidQuiz, quiz.ID)
	}
	if quiz.MarksMode != model.MarksModeUniform && quiz.MarksMode != model.MarksModeCustom {
		return fmt.Errorf("%w: %s: unknown marks mode %q", ErrInvalidQuiz, quiz.ID, quiz.MarksMode)
	}
	if len(quiz.Subjects) == 0 {
		return fmt.Errorf("%w: %s: missing subjects", ErrInvalidQuiz, quiz.ID)
	}

	for subject, questions := range quiz.Subjects {
		if len(questions) == 0 {
			return fmt.Errorf("%w: %s: subject %q has no questions", ErrInvalidQuiz, quiz.ID, subject)
		}
		for i, question := range questions {
			if err := validateQuestion(&question); err != nil {
				return fmt.Errorf("%w: %s: %s[%d]: %v", ErrInvalidQuiz, quiz.ID, subject, i, err)
			}
		}
	}
	return nil
}

func validateQuestion(q *model.Question) error {
	if q.Text == "" {
		return errors.New("missing text")
	}
	switch q.Type {
	case model.QuestionMultipleChoice:
		if len(q.Options) != optionsPerQuestion {
			return fmt.Errorf("expected %d options, got %d", optionsPerQuestion, len(q.Options))
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
			return fmt.Errorf("correct answer index %d out of range", q.CorrectAnswer)
		}
	case model.QuestionFillBlank:
		if q.AnswerKey == "" {
			return errors.New("missing answer key")
		}
	case model.QuestionSubjective:
		// No automatic correctness; nothing more to check
	default:
		return fmt.Errorf("unknown question type %q", q.Type)
	}
	return nil
}
