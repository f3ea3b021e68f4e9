package service

import (
	"errors"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"examforge/internal/model"
)

// ErrNotTrained is returned when a recommendation is requested before any
// model snapshot has been trained.
var ErrNotTrained = errors.New("recommender has not been trained")

// RecommenderService suggests similar and personalized questions using a
// TF-IDF content model. Training builds an immutable snapshot under a new
// version; readers always see a complete, consistent model rather than a
// half-updated global.
type RecommenderService struct {
	mu       sync.RWMutex
	snapshot *recommenderSnapshot
}

type recommenderSnapshot struct {
	version   int64
	trainedAt time.Time
	questions []model.BankQuestion
	vectors   [][]float64
	vocab     map[string]int
	idf       map[string]float64
}

// SnapshotInfo describes the currently active trained model
type SnapshotInfo struct {
	Version   int64     `json:"version"`
	TrainedAt time.Time `json:"trainedAt"`
	Questions int       `json:"questions"`
}

// NewRecommenderService creates a new recommender service
func NewRecommenderService() *RecommenderService {
	return &RecommenderService{}
}

// Train builds a fresh model snapshot from the question bank and swaps it
// in atomically. Questions without a labeled difficulty are bucketed from
// their historical correct-answer rate.
func (s *RecommenderService) Train(questions []model.BankQuestion) (*SnapshotInfo, error) {
	if len(questions) == 0 {
		return nil, errors.New("no questions to train on")
	}

	bank := make([]model.BankQuestion, len(questions))
	copy(bank, questions)
	for i := range bank {
		if bank[i].Difficulty == "" {
			bank[i].Difficulty = estimateDifficulty(bank[i])
		}
	}

	texts := make([]string, len(bank))
	for i, q := range bank {
		texts[i] = q.Text
	}
	vocab, idf := fitVectorizer(texts)

	snapshot := &recommenderSnapshot{
		trainedAt: time.Now(),
		questions: bank,
		vocab:     vocab,
		idf:       idf,
	}
	snapshot.vectors = make([][]float64, len(texts))
	for i, text := range texts {
		snapshot.vectors[i] = vectorize(text, vocab, idf)
	}

	s.mu.Lock()
	if s.snapshot != nil {
		snapshot.version = s.snapshot.version + 1
	} else {
		snapshot.version = 1
	}
	s.snapshot = snapshot
	s.mu.Unlock()

	return &SnapshotInfo{
		Version:   snapshot.version,
		TrainedAt: snapshot.trainedAt,
		Questions: len(bank),
	}, nil
}

// Snapshot returns metadata for the active model, or nil when untrained
func (s *RecommenderService) Snapshot() *SnapshotInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return nil
	}
	return &SnapshotInfo{
		Version:   s.snapshot.version,
		TrainedAt: s.snapshot.trainedAt,
		Questions: len(s.snapshot.questions),
	}
}

// Similar returns up to count questions ranked by cosine similarity to the
// given text.
func (s *RecommenderService) Similar(text string, count int) ([]model.BankQuestion, error) {
	s.mu.RLock()
	snapshot := s.snapshot
	s.mu.RUnlock()
	if snapshot == nil {
		return nil, ErrNotTrained
	}
	if count <= 0 {
		count = 5
	}

	query := vectorize(text, snapshot.vocab, snapshot.idf)

	type ranked struct {
		index      int
		similarity float64
	}
	scored := make([]ranked, len(snapshot.vectors))
	for i, vector := range snapshot.vectors {
		scored[i] = ranked{index: i, similarity: cosineSimilarity(query, vector)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].similarity > scored[j].similarity
	})

	if count > len(scored) {
		count = len(scored)
	}
	results := make([]model.BankQuestion, count)
	for i := 0; i < count; i++ {
		results[i] = snapshot.questions[scored[i].index]
	}
	return results, nil
}

// Personalized picks questions from the student's weakest subjects at a
// difficulty matching their proficiency, topping up from the rest of the
// bank when too few match.
func (s *RecommenderService) Personalized(performance map[string]model.SubjectPerformance, count int) ([]model.BankQuestion, error) {
	s.mu.RLock()
	snapshot := s.snapshot
	s.mu.RUnlock()
	if snapshot == nil {
		return nil, ErrNotTrained
	}
	if count <= 0 {
		count = 5
	}

	proficiency := make(map[string]float64, len(performance))
	totalAnswered, totalCorrect := 0, 0
	for subject, perf := range performance {
		if perf.Total > 0 {
			proficiency[subject] = float64(perf.Correct) / float64(perf.Total)
		} else {
			proficiency[subject] = 0.5
		}
		totalAnswered += perf.Total
		totalCorrect += perf.Correct
	}
	overall := 0.5
	if totalAnswered > 0 {
		overall = float64(totalCorrect) / float64(totalAnswered)
	}

	weak := make(map[string]bool)
	for subject, score := range proficiency {
		if score < overall {
			weak[subject] = true
		}
	}
	if len(weak) == 0 {
		for subject := range proficiency {
			weak[subject] = true
		}
	}

	var picks []model.BankQuestion
	for _, question := range snapshot.questions {
		if !weak[question.Subject] {
			continue
		}
		if question.Difficulty == targetDifficulty(proficiency[question.Subject]) {
			picks = append(picks, question)
		}
	}

	// Top up with any remaining bank questions
	if len(picks) < count {
		for _, question := range snapshot.questions {
			if len(picks) >= count {
				break
			}
			if !containsQuestion(picks, question) {
				picks = append(picks, question)
			}
		}
	}
	if len(picks) > count {
		picks = picks[:count]
	}
	return picks, nil
}

// targetDifficulty maps a subject proficiency score to the difficulty
// bucket worth practicing next.
func targetDifficulty(proficiency float64) model.Difficulty {
	switch {
	case proficiency < 0.4:
		return model.DifficultyEasy
	case proficiency < 0.7:
		return model.DifficultyMedium
	default:
		return model.DifficultyHard
	}
}

// estimateDifficulty buckets an unlabeled question from its historical
// correct-answer rate, falling back to a length heuristic when no history
// exists.
func estimateDifficulty(q model.BankQuestion) model.Difficulty {
	if q.CorrectPercent > 0 {
		switch {
		case q.CorrectPercent >= 70:
			return model.DifficultyEasy
		case q.CorrectPercent >= 40:
			return model.DifficultyMedium
		default:
			return model.DifficultyHard
		}
	}
	words := len(strings.Fields(q.Text))
	switch {
	case words <= 12:
		return model.DifficultyEasy
	case words <= 30:
		return model.DifficultyMedium
	default:
		return model.DifficultyHard
	}
}

// TF-IDF plumbing

func tokenize(text string) []string {
	var tokens []string
	for _, field := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	}) {
		if len(field) > 2 {
			tokens = append(tokens, field)
		}
	}
	return tokens
}

func fitVectorizer(texts []string) (map[string]int, map[string]float64) {
	vocab := make(map[string]int)
	docFrequency := make(map[string]int)

	for _, text := range texts {
		seen := make(map[string]bool)
		for _, token := range tokenize(text) {
			if _, ok := vocab[token]; !ok {
				vocab[token] = len(vocab)
			}
			if !seen[token] {
				docFrequency[token]++
				seen[token] = true
			}
		}
	}

	idf := make(map[string]float64, len(docFrequency))
	for term, df := range docFrequency {
		idf[term] = math.Log(float64(len(texts))/float64(df+1)) + 1
	}
	return vocab, idf
}

func vectorize(text string, vocab map[string]int, idf map[string]float64) []float64 {
	vector := make([]float64, len(vocab))
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return vector
	}

	termFreq := make(map[string]int)
	for _, token := range tokens {
		termFreq[token]++
	}
	for term, count := range termFreq {
		index, ok := vocab[term]
		if !ok {
			continue
		}
		weight := idf[term]
		if weight == 0 {
			weight = 1
		}
		vector[index] = float64(count) / float64(len(tokens)) * weight
	}
	return vector
}

func cosineSimilarity(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func containsQuestion(list []model.BankQuestion, q model.BankQuestion) bool {
	for _, existing := range list {
		if existing.Text == q.Text && existing.Subject == q.Subject {
			return true
		}
	}
	return false
}
