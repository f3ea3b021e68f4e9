package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"examforge/internal/crypto"
	"examforge/internal/model"
)

var (
	// ErrAlreadyAttempted is reported when the unique (studentKey, quizId)
	// index rejects a second submission for the same pair.
	ErrAlreadyAttempted = errors.New("student has already attempted this quiz")

	ErrQuizNotFound     = errors.New("quiz not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrResultNotFound   = errors.New("result not found")
)

// ResultRepo handles MongoDB operations for submission records
type ResultRepo interface {
	EnsureIndexes(ctx context.Context) error
	// Create inserts a new record, encrypting the student identity when a
	// cipher is configured. A colliding attempt fails with ErrAlreadyAttempted.
	Create(ctx context.Context, record *model.SubmissionRecord) error
	GetByID(ctx context.Context, id string) (*model.SubmissionRecord, error)
	// FindByStudentAndQuiz locates a record whether the stored identity is
	// cleartext or encrypted at rest.
	FindByStudentAndQuiz(ctx context.Context, studentID, quizID string) (*model.SubmissionRecord, error)
	UpdateGrades(ctx context.Context, record *model.SubmissionRecord) error
	ListByQuiz(ctx context.Context, quizID string) ([]*model.SubmissionRecord, error)
	ListAll(ctx context.Context) ([]*model.SubmissionRecord, error)
	DeleteAll(ctx context.Context) error
}

type resultRepo struct {
	collection *mongo.Collection
	cipher     crypto.FieldCipher
}

// NewResultRepo creates a new result repository
func NewResultRepo(db *mongo.Database, cipher crypto.FieldCipher) ResultRepo {
	return &resultRepo{
		collection: db.Collection("results"),
		cipher:     cipher,
	}
}

// EnsureIndexes creates the unique compound index that backs the attempt
// guard. The check-then-insert sequence in the grading workflow is racy on
// its own; this index is the authoritative barrier.
func (r *resultRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "studentKey", Value: 1},
			{Key: "quizId", Value: 1},
		},
		Options: options.Index().SetUnique(true).SetName("uniq_student_quiz"),
	})
	return err
}

func (r *resultRepo) Create(ctx context.Context, record *model.SubmissionRecord) error {
	if record.SubmittedAt.IsZero() {
		record.SubmittedAt = time.Now()
	}
	record.StudentKey = crypto.HashKey(record.StudentID)

	stored := *record
	encrypted, err := r.cipher.Encrypt(record.StudentID)
	if err != nil {
		return err
	}
	stored.StudentID = encrypted

	if _, err := r.collection.InsertOne(ctx, &stored); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrAlreadyAttempted
		}
		return err
	}
	return nil
}

func (r *resultRepo) GetByID(ctx context.Context, id string) (*model.SubmissionRecord, error) {
	var record model.SubmissionRecord
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&record)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.reveal(&record)
}

func (r *resultRepo) FindByStudentAndQuiz(ctx context.Context, studentID, quizID string) (*model.SubmissionRecord, error) {
	// Fast path: the deterministic digest index covers both representations
	var record model.SubmissionRecord
	err := r.collection.FindOne(ctx, bson.M{
		"studentKey": crypto.HashKey(studentID),
		"quizId":     quizID,
	}).Decode(&record)
	if err == nil {
		return r.reveal(&record)
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	// Legacy records predate the studentKey field. Fall back to scanning the
	// quiz's results and comparing decrypted identities.
	cursor, err := r.collection.Find(ctx, bson.M{"quizId": quizID, "studentKey": bson.M{"$exists": false}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var candidate model.SubmissionRecord
		if err := cursor.Decode(&candidate); err != nil {
			return nil, err
		}
		plain, err := r.cipher.Decrypt(candidate.StudentID)
		if err != nil {
			continue
		}
		if plain == studentID {
			candidate.StudentID = plain
			return &candidate, nil
		}
	}
	return nil, cursor.Err()
}

func (r *resultRepo) UpdateGrades(ctx context.Context, record *model.SubmissionRecord) error {
	update := bson.M{"$set": bson.M{
		"answers":       record.Answers,
		"totalScore":    record.TotalScore,
		"subjectScores": record.SubjectScores,
	}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": record.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrResultNotFound
	}
	return nil
}

func (r *resultRepo) ListByQuiz(ctx context.Context, quizID string) ([]*model.SubmissionRecord, error) {
	return r.list(ctx, bson.M{"quizId": quizID})
}

func (r *resultRepo) ListAll(ctx context.Context) ([]*model.SubmissionRecord, error) {
	return r.list(ctx, bson.M{})
}

func (r *resultRepo) list(ctx context.Context, filter bson.M) ([]*model.SubmissionRecord, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []*model.SubmissionRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	for _, record := range records {
		if _, err := r.reveal(record); err != nil {
			return nil, err
		}
	}
	return records, nil
}

func (r *resultRepo) DeleteAll(ctx context.Context) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{})
	return err
}

// reveal decrypts the identity field in place for callers
func (r *resultRepo) reveal(record *model.SubmissionRecord) (*model.SubmissionRecord, error) {
	plain, err := r.cipher.Decrypt(record.StudentID)
	if err != nil {
		return nil, err
	}
	record.StudentID = plain
	return record, nil
}
