package service

import (
	"testing"

	"examforge/internal/model"
)

func TestRecommenderRequiresTraining(t *testing.T) {
	svc := NewRecommenderService()
	if _, err := svc.Similar("anything", 3); err != ErrNotTrained {
		t.Fatalf("expected ErrNotTrained, got %v", err)
	}
	if _, err := svc.Personalized(nil, 3); err != ErrNotTrained {
		t.Fatalf("expected ErrNotTrained, got %v", err)
	}
	if svc.Snapshot() != nil {
		t.Fatalf("untrained service must have no snapshot")
	}
}

func TestTrainVersionsSnapshots(t *testing.T) {
	svc := NewRecommenderService()

	first, err := svc.Train(sampleBank())
	if err != nil {
		t.Fatalf("train failed: %v", err)
	}
	if first.Version != 1 {
		t.Fatalf("expected version 1, got %d", first.Version)
	}

	second, err := svc.Train(sampleBank())
	if err != nil {
		t.Fatalf("retrain failed: %v", err)
	}
	if second.Version != 2 {
		t.Fatalf("retraining must bump the version, got %d", second.Version)
	}
	if info := svc.Snapshot(); info == nil || info.Version != 2 {
		t.Fatalf("snapshot must reflect the latest training, got %+v", info)
	}
}

func TestSimilarRanksByContent(t *testing.T) {
	svc := NewRecommenderService()
	if _, err := svc.Train(sampleBank()); err != nil {
		t.Fatalf("train failed: %v", err)
	}

	results, err := svc.Similar("calculate the velocity of the moving train", 2)
	if err != nil {
		t.Fatalf("similar failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Subject != "Physics" {
		t.Fatalf("expected the velocity question first, got %+v", results[0])
	}
}

func TestEstimateDifficulty(t *testing.T) {
	tests := []struct {
		name string
		q    model.BankQuestion
		want model.Difficulty
	}{
		{"high correct rate", model.BankQuestion{Text: "q", CorrectPercent: 85}, model.DifficultyEasy},
		{"middling correct rate", model.BankQuestion{Text: "q", CorrectPercent: 55}, model.DifficultyMedium},
		{"low correct rate", model.BankQuestion{Text: "q", CorrectPercent: 20}, model.DifficultyHard},
		{"no history short text", model.BankQuestion{Text: "What is two plus two?"}, model.DifficultyEasy},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := estimateDifficulty(tc.q); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestPersonalizedTargetsWeakSubjects(t *testing.T) {
	svc := NewRecommenderService()
	if _, err := svc.Train(sampleBank()); err != nil {
		t.Fatalf("train failed: %v", err)
	}

	// Weak in Chemistry (1/10), strong in Physics (9/10)
	picks, err := svc.Personalized(map[string]model.SubjectPerformance{
		"Physics":   {Correct: 9, Total: 10},
		"Chemistry": {Correct: 1, Total: 10},
	}, 2)
	if err != nil {
		t.Fatalf("personalized failed: %v", err)
	}
	if len(picks) == 0 {
		t.Fatalf("expected recommendations")
	}
	if picks[0].Subject != "Chemistry" {
		t.Fatalf("weak subject must come first, got %+v", picks[0])
	}
	if picks[0].Difficulty != model.DifficultyEasy {
		t.Fatalf("low proficiency should get easy questions, got %s", picks[0].Difficulty)
	}
}

func sampleBank() []model.BankQuestion {
	return []model.BankQuestion{
		{Subject: "Physics", Text: "A train moving at constant velocity covers 120 km in 2 hours. Calculate its velocity.", Difficulty: model.DifficultyMedium},
		{Subject: "Physics", Text: "State Newton's first law of motion.", Difficulty: model.DifficultyEasy},
		{Subject: "Chemistry", Text: "Balance the combustion equation for methane.", Difficulty: model.DifficultyEasy},
		{Subject: "Chemistry", Text: "Explain the hybridization of carbon in benzene.", Difficulty: model.DifficultyHard},
		{Subject: "Maths", Text: "Differentiate x squared with respect to x.", CorrectPercent: 80},
	}
}
