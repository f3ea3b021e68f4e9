package service

import (
	"context"
	"errors"
	"testing"

	"examforge/internal/model"
)

func TestValidateGeneratedQuestions(t *testing.T) {
	valid := model.GeneratedQuestion{
		Subject:       "Physics",
		Text:          "What is the SI unit of force?",
		Options:       []string{"Newton", "Joule", "Watt", "Pascal"},
		CorrectAnswer: 0,
	}

	tests := []struct {
		name           string
		questions      []model.GeneratedQuestion
		requireSubject bool
		wantErr        bool
	}{
		{name: "valid", questions: []model.GeneratedQuestion{valid}},
		{name: "empty set", questions: nil, wantErr: true},
		{
			name: "missing text",
			questions: []model.GeneratedQuestion{{
				Options:       valid.Options,
				CorrectAnswer: 0,
			}},
			wantErr: true,
		},
		{
			name: "three options",
			questions: []model.GeneratedQuestion{{
				Text:          valid.Text,
				Options:       []string{"a", "b", "c"},
				CorrectAnswer: 0,
			}},
			wantErr: true,
		},
		{
			name: "blank option",
			questions: []model.GeneratedQuestion{{
				Text:          valid.Text,
				Options:       []string{"a", "b", " ", "d"},
				CorrectAnswer: 0,
			}},
			wantErr: true,
		},
		{
			name: "correct index out of range",
			questions: []model.GeneratedQuestion{{
				Text:          valid.Text,
				Options:       valid.Options,
				CorrectAnswer: 4,
			}},
			wantErr: true,
		},
		{
			name: "negative correct index",
			questions: []model.GeneratedQuestion{{
				Text:          valid.Text,
				Options:       valid.Options,
				CorrectAnswer: -1,
			}},
			wantErr: true,
		},
		{
			name: "subject required and missing",
			questions: []model.GeneratedQuestion{{
				Text:          valid.Text,
				Options:       valid.Options,
				CorrectAnswer: 1,
			}},
			requireSubject: true,
			wantErr:        true,
		},
		{
			name:           "subject required and present",
			questions:      []model.GeneratedQuestion{valid},
			requireSubject: true,
		},
		{
			name:      "one bad apple rejects the batch",
			questions: []model.GeneratedQuestion{valid, {Text: "incomplete"}},
			wantErr:   true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := validateGeneratedQuestions(tc.questions, tc.requireSubject)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidGeneratedOutput) {
					t.Fatalf("expected ErrInvalidGeneratedOutput, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
		})
	}
}

func TestStripCodeFences(t *testing.T) {
	raw := "```json\n[{\"text\":\"q\"}]\n```"
	if got := stripCodeFences(raw); got != `[{"text":"q"}]` {
		t.Fatalf("unexpected cleaned output: %q", got)
	}
	if got := stripCodeFences("  plain  "); got != "plain" {
		t.Fatalf("plain text must only be trimmed, got %q", got)
	}
}

func TestGeneratedQuestionToQuestion(t *testing.T) {
	generated := model.GeneratedQuestion{
		Text:          "2+2?",
		Options:       []string{"3", "4", "5", "6"},
		CorrectAnswer: 1,
	}
	q := generated.ToQuestion()
	if q.Type != model.QuestionMultipleChoice {
		t.Fatalf("expected multiple-choice, got %s", q.Type)
	}
	if q.CorrectAnswer != 1 || len(q.Options) != 4 {
		t.Fatalf("conversion dropped fields: %+v", q)
	}
}

func TestGenerateDisabledWithoutKey(t *testing.T) {
	svc := NewGeneratorService()
	svc.config.APIKey = ""

	ctx := context.Background()
	if _, err := svc.GenerateFromTopic(ctx, "kinematics", 5); !errors.Is(err, ErrGenerationDisabled) {
		t.Fatalf("expected ErrGenerationDisabled, got %v", err)
	}
	if _, err := svc.GenerateFromText(ctx, "some paper"); !errors.Is(err, ErrGenerationDisabled) {
		t.Fatalf("expected ErrGenerationDisabled, got %v", err)
	}
}
