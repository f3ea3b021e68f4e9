package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"examforge/internal/model"
)

func main() {
	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	db := client.Database("examforge")
	quizColl := db.Collection("quizzes")

	four := 4.0
	minusOne := -1.0

	quiz := model.Quiz{
		ID:           "sample-mock-test-1",
		Title:        "Mock Test 1",
		MarksMode:    model.MarksModeCustom,
		CorrectMarks: &four,
		WrongMarks:   &minusOne,
		Subjects: map[string][]model.Question{
			"Physics": {
				{
					Type:          model.QuestionMultipleChoice,
					Text:          "A body moving with uniform velocity has zero:",
					Options:       []string{"Speed", "Acceleration", "Momentum", "Displacement"},
					CorrectAnswer: 1,
				},
				{
					Type:      model.QuestionFillBlank,
					Text:      "The SI unit of electric charge is the ______.",
					AnswerKey: "coulomb|C",
				},
			},
			"Chemistry": {
				{
					Type:          model.QuestionMultipleChoice,
					Text:          "Which of the following is an alkali metal?",
					Options:       []string{"Calcium", "Sodium", "Aluminium", "Zinc"},
					CorrectAnswer: 1,
				},
			},
			"Maths": {
				{
					Type: model.QuestionSubjective,
					Text: "Prove that the sum of the first n odd numbers equals n squared.",
				},
			},
		},
	}

	filter := bson.M{"id": quiz.ID}
	update := bson.M{"$set": quiz}
	opts := options.Update().SetUpsert(true)

	result, err := quizColl.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		log.Fatalf("Failed to seed quiz: %v", err)
	}

	if result.UpsertedCount > 0 {
		fmt.Printf("Seeded quiz %q\n", quiz.ID)
	} else {
		fmt.Printf("Updated quiz %q\n", quiz.ID)
	}
}
