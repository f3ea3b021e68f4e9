package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"examforge/internal/service"
)

// GenerateHandler handles AI question generation endpoints
type GenerateHandler struct {
	generatorSvc *service.GeneratorService
}

// NewGenerateHandler creates a new generate handler
func NewGenerateHandler(generatorSvc *service.GeneratorService) *GenerateHandler {
	return &GenerateHandler{generatorSvc: generatorSvc}
}

// TopicRequest is the request body for topic-based generation
type TopicRequest struct {
	Topic        string `json:"topic"`
	NumQuestions int    `json:"numQuestions"`
}

// TextRequest is the request body for extracting questions from pasted text
type TextRequest struct {
	Text string `json:"text"`
}

// AnalysisRequest is the request body for a performance analysis report
type AnalysisRequest struct {
	StudentName   string             `json:"studentName"`
	SubjectScores map[string]float64 `json:"subjectScores"`
}

// FromTopic handles POST /v1/generate/topic
func (h *GenerateHandler) FromTopic(w http.ResponseWriter, r *http.Request) {
	var req TopicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Topic == "" {
		writeError(w, http.StatusBadRequest, "missing topic")
		return
	}

	questions, err := h.generatorSvc.GenerateFromTopic(r.Context(), req.Topic, req.NumQuestions)
	if err != nil {
		writeGenerationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"questions": questions})
}

// FromText handles POST /v1/generate/text
func (h *GenerateHandler) FromText(w http.ResponseWriter, r *http.Request) {
	var req TextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "missing text")
		return
	}

	questions, err := h.generatorSvc.GenerateFromText(r.Context(), req.Text)
	if err != nil {
		writeGenerationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"questions": questions})
}

// Analysis handles POST /v1/analysis
func (h *GenerateHandler) Analysis(w http.ResponseWriter, r *http.Request) {
	var req AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.SubjectScores) == 0 {
		writeError(w, http.StatusBadRequest, "missing subject scores")
		return
	}

	report, err := h.generatorSvc.AnalyzePerformance(r.Context(), req.StudentName, req.SubjectScores)
	if err != nil {
		writeGenerationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func writeGenerationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrGenerationDisabled):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, service.ErrInvalidGeneratedOutput):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
