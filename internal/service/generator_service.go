package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"examforge/internal/config"
	"examforge/internal/model"
)

var (
	// ErrGenerationDisabled is returned when no Gemini API key is configured
	ErrGenerationDisabled = errors.New("question generation is not configured")

	// ErrInvalidGeneratedOutput flags AI output that does not conform to the
	// question contract. It is surfaced as retryable and never persisted.
	ErrInvalidGeneratedOutput = errors.New("generated output is invalid")
)

// GeneratorService produces candidate questions and performance analyses
// via the Gemini API. Everything coming back is validated against the
// Question shape before a caller sees it.
type GeneratorService struct {
	config *config.AIConfig
	client *http.Client
}

// NewGeneratorService creates a new generator service
func NewGeneratorService() *GeneratorService {
	cfg := config.DefaultAIConfig()
	return &GeneratorService{
		config: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		},
	}
}

// GenerateFromTopic produces multiple-choice questions for a topic
func (s *GeneratorService) GenerateFromTopic(ctx context.Context, topic string, numQuestions int) ([]model.GeneratedQuestion, error) {
	if !s.config.IsEnabled() {
		return nil, ErrGenerationDisabled
	}
	if topic == "" || numQuestions <= 0 {
		return nil, fmt.Errorf("%w: topic and question count required", ErrInvalidGeneratedOutput)
	}

	prompt := fmt.Sprintf(`Generate %d multiple-choice questions for a JEE Mains level exam on the topic of %q. Provide the question text, four options, and the 0-based index of the correct answer. Format the response as a single, valid JSON array of objects. Each object must have keys: "text", "options", and "correctAnswer". Output only the raw JSON array.`,
		numQuestions, topic)

	return s.generateQuestions(ctx, s.config.Models.TopicGen, prompt, false)
}

// GenerateFromText extracts structured questions from pasted paper text
func (s *GeneratorService) GenerateFromText(ctx context.Context, text string) ([]model.GeneratedQuestion, error) {
	if !s.config.IsEnabled() {
		return nil, ErrGenerationDisabled
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty source text", ErrInvalidGeneratedOutput)
	}

	prompt := fmt.Sprintf(`Analyze the following text from a question paper and convert it into a valid JSON array of objects. Each object must have keys: "subject", "text", "options", and "correctAnswer" (0-based index). Extract all questions. Output only the raw JSON array. Text to analyze: %q`, text)

	return s.generateQuestions(ctx, s.config.Models.TextExtract, prompt, true)
}

// AnalyzePerformance writes a short encouraging report for one student
func (s *GeneratorService) AnalyzePerformance(ctx context.Context, studentName string, subjectScores map[string]float64) (*model.AnalysisReport, error) {
	if !s.config.IsEnabled() {
		return nil, ErrGenerationDisabled
	}

	scoresJSON, err := json.Marshal(subjectScores)
	if err != nil {
		return nil, err
	}
	prompt := fmt.Sprintf(`Analyze the performance of a student named %s based on their subject scores from a mock test. Provide a brief, encouraging analysis (around 50-70 words) that identifies one area of strength and one area for improvement. Format the response as a single valid JSON object with one key: "report". The student's scores are: %s`,
		studentName, scoresJSON)

	raw, err := s.callGemini(ctx, s.config.Models.Analysis, prompt)
	if err != nil {
		return nil, err
	}

	var report model.AnalysisReport
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &report); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGeneratedOutput, err)
	}
	if report.Report == "" {
		return nil, fmt.Errorf("%w: empty report", ErrInvalidGeneratedOutput)
	}
	return &report, nil
}

func (s *GeneratorService) generateQuestions(ctx context.Context, modelName, prompt string, requireSubject bool) ([]model.GeneratedQuestion, error) {
	raw, err := s.callGemini(ctx, modelName, prompt)
	if err != nil {
		return nil, err
	}

	var questions []model.GeneratedQuestion
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &questions); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGeneratedOutput, err)
	}
	if err := validateGeneratedQuestions(questions, requireSubject); err != nil {
		return nil, err
	}
	return questions, nil
}

// validateGeneratedQuestions enforces the Question contract on AI output
func validateGeneratedQuestions(questions []model.GeneratedQuestion, requireSubject bool) error {
	if len(questions) == 0 {
		return fmt.Errorf("%w: no questions returned", ErrInvalidGeneratedOutput)
	}
	for i, q := range questions {
		if strings.TrimSpace(q.Text) == "" {
			return fmt.Errorf("%w: question %d has no text", ErrInvalidGeneratedOutput, i)
		}
		if len(q.Options) != optionsPerQuestion {
			return fmt.Errorf("%w: question %d has %d options", ErrInvalidGeneratedOutput, i, len(q.Options))
		}
		for j, option := range q.Options {
			if strings.TrimSpace(option) == "" {
				return fmt.Errorf("%w: question %d option %d is empty", ErrInvalidGeneratedOutput, i, j)
			}
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
			return fmt.Errorf("%w: question %d correct index %d out of range", ErrInvalidGeneratedOutput, i, q.CorrectAnswer)
		}
		if requireSubject && strings.TrimSpace(q.Subject) == "" {
			return fmt.Errorf("%w: question %d has no subject", ErrInvalidGeneratedOutput, i)
		}
	}
	return nil
}

// stripCodeFences removes markdown fencing models sometimes wrap JSON in
func stripCodeFences(raw string) string {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	return strings.TrimSpace(cleaned)
}

// callGemini makes a request to the Gemini API
func (s *GeneratorService) callGemini(ctx context.Context, modelName, prompt string) (string, error) {
	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]string{
					{"text": prompt},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"responseMimeType": "application/json",
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s?key=%s", s.config.ModelEndpoint(modelName), s.config.APIKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini API error %d: %s", resp.StatusCode, string(body))
	}

	// Parse Gemini response structure
	var geminiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}

	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return "", err
	}

	if len(geminiResp.Candidates) > 0 && len(geminiResp.Candidates[0].Content.Parts) > 0 {
		return geminiResp.Candidates[0].Content.Parts[0].Text, nil
	}

	return "", fmt.Errorf("empty response from Gemini")
}
