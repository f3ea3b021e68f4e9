package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"examforge/internal/model"
)

// QuizRepo handles MongoDB operations for quizzes
type QuizRepo interface {
	GetAll(ctx context.Context) ([]*model.Quiz, error)
	GetByID(ctx context.Context, id string) (*model.Quiz, error)
	// ReplaceAll swaps the entire quiz set atomically: readers never observe
	// the empty state between the delete and the insert.
	ReplaceAll(ctx context.Context, quizzes []*model.Quiz) error
	UpdateQuestionMarks(ctx context.Context, quizID, subject string, questionIndex int, correctMarks, wrongMarks float64) error
}

type quizRepo struct {
	collection *mongo.Collection
}

// NewQuizRepo creates a new quiz repository
func NewQuizRepo(db *mongo.Database) QuizRepo {
	return &quizRepo{
		collection: db.Collection("quizzes"),
	}
}

func (r *quizRepo) GetAll(ctx context.Context) ([]*model.Quiz, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var quizzes []*model.Quiz
	if err := cursor.All(ctx, &quizzes); err != nil {
		return nil, err
	}
	return quizzes, nil
}

func (r *quizRepo) GetByID(ctx context.Context, id string) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.collection.FindOne(ctx, bson.M{"id": id}).Decode(&quiz)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (r *quizRepo) ReplaceAll(ctx context.Context, quizzes []*model.Quiz) error {
	session, err := r.collection.Database().Client().StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := r.collection.DeleteMany(sc, bson.M{}); err != nil {
			return nil, err
		}
		if len(quizzes) == 0 {
			return nil, nil
		}
		docs := make([]interface{}, len(quizzes))
		for i, quiz := range quizzes {
			docs[i] = quiz
		}
		if _, err := r.collection.InsertMany(sc, docs); err != nil {
			return nil, err
		}
		return nil, nil
	})
	return err
}

func (r *quizRepo) UpdateQuestionMarks(ctx context.Context, quizID, subject string, questionIndex int, correctMarks, wrongMarks float64) error {
	quiz, err := r.GetByID(ctx, quizID)
	if err != nil {
		return err
	}
	if quiz == nil {
		return ErrQuizNotFound
	}
	if quiz.QuestionAt(subject, questionIndex) == nil {
		return ErrQuestionNotFound
	}

	prefix := fmt.Sprintf("subjects.%s.%d", subject, questionIndex)
	update := bson.M{"$set": bson.M{
		prefix + ".correctMarks": correctMarks,
		prefix + ".wrongMarks":   wrongMarks,
	}}
	_, err = r.collection.UpdateOne(ctx, bson.M{"id": quizID}, update)
	return err
}
