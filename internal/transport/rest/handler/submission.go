package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"examforge/internal/repository"
	"examforge/internal/service"
)

// SubmissionHandler handles attempt intake endpoints
type SubmissionHandler struct {
	gradingSvc *service.GradingService
}

// NewSubmissionHandler creates a new submission handler
func NewSubmissionHandler(gradingSvc *service.GradingService) *SubmissionHandler {
	return &SubmissionHandler{gradingSvc: gradingSvc}
}

// CheckAttemptRequest is the request body for an attempt pre-check
type CheckAttemptRequest struct {
	StudentID string `json:"studentId"`
	QuizID    string `json:"quizId"`
}

// Submit handles POST /v1/submissions
func (h *SubmissionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req service.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := h.gradingSvc.SubmitAttempt(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidSubmission):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, repository.ErrQuizNotFound):
			writeError(w, http.StatusNotFound, "quiz not found")
		case errors.Is(err, repository.ErrAlreadyAttempted):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusCreated, record)
}

// CheckAttempt handles POST /v1/attempts/check
func (h *SubmissionHandler) CheckAttempt(w http.ResponseWriter, r *http.Request) {
	var req CheckAttemptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	allowed, err := h.gradingSvc.CheckAttempt(r.Context(), req.StudentID, req.QuizID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidSubmission) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"canAttempt": allowed})
}
