package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"examforge/internal/cache"
	"examforge/internal/model"
	"examforge/internal/repository"
	"examforge/internal/service"
)

const defaultStandingsLimit = 50

// ResultHandler handles result and grading endpoints
type ResultHandler struct {
	gradingSvc *service.GradingService
	resultRepo repository.ResultRepo
	scores     cache.ScoreCache
}

// NewResultHandler creates a new result handler
func NewResultHandler(gradingSvc *service.GradingService, resultRepo repository.ResultRepo, scores cache.ScoreCache) *ResultHandler {
	return &ResultHandler{
		gradingSvc: gradingSvc,
		resultRepo: resultRepo,
		scores:     scores,
	}
}

// GradeRequest is the request body for grading subjective answers
type GradeRequest struct {
	Grades []service.GradedMark `json:"grades"`
}

// Grade handles POST /v1/results/{resultId}/grade
func (h *ResultHandler) Grade(w http.ResponseWriter, r *http.Request) {
	resultID := mux.Vars(r)["resultId"]

	var req GradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Grades) == 0 {
		writeError(w, http.StatusBadRequest, "no grades supplied")
		return
	}

	record, err := h.gradingSvc.Regrade(r.Context(), resultID, req.Grades)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrResultNotFound):
			writeError(w, http.StatusNotFound, "result not found")
		case errors.Is(err, repository.ErrQuizNotFound):
			writeError(w, http.StatusNotFound, "quiz not found")
		case errors.Is(err, repository.ErrQuestionNotFound):
			writeError(w, http.StatusNotFound, "question not found")
		case errors.Is(err, service.ErrAnswerNotFound):
			writeError(w, http.StatusNotFound, "answer not found")
		case errors.Is(err, service.ErrInvalidSubmission):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// List handles GET /v1/results, optionally filtered by ?quizId=
func (h *ResultHandler) List(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")

	var records []*model.SubmissionRecord
	var err error
	if quizID != "" {
		records, err = h.resultRepo.ListByQuiz(r.Context(), quizID)
	} else {
		records, err = h.resultRepo.ListAll(r.Context())
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		records = []*model.SubmissionRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"results": records})
}

// Live handles GET /v1/results/live/{quizId}
func (h *ResultHandler) Live(w http.ResponseWriter, r *http.Request) {
	quizID := mux.Vars(r)["quizId"]

	limit := defaultStandingsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	standings, err := h.scores.GetTop(r.Context(), quizID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"standings": standings})
}

// DeleteAll handles DELETE /v1/results
func (h *ResultHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	if err := h.resultRepo.DeleteAll(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Drop every quiz's live standings alongside the records, so standings
	// for quizzes removed from the quiz collection cannot linger either
	if err := h.scores.ClearAll(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
