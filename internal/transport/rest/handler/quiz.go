package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"examforge/internal/model"
	"examforge/internal/repository"
	"examforge/internal/service"
)

// QuizHandler handles quiz endpoints
type QuizHandler struct {
	quizSvc *service.QuizService
}

// NewQuizHandler creates a new quiz handler
func NewQuizHandler(quizSvc *service.QuizService) *QuizHandler {
	return &QuizHandler{quizSvc: quizSvc}
}

// ReplaceQuizzesRequest is the request body for replacing the quiz set
type ReplaceQuizzesRequest struct {
	Quizzes []*model.Quiz `json:"quizzes"`
}

// UpdateMarksRequest is the request body for a per-question marks override
type UpdateMarksRequest struct {
	Subject       string  `json:"subject"`
	QuestionIndex int     `json:"qIndex"`
	CorrectMarks  float64 `json:"correctMarks"`
	WrongMarks    float64 `json:"wrongMarks"`
}

// List handles GET /v1/quizzes
func (h *QuizHandler) List(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.quizSvc.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if quizzes == nil {
		quizzes = []*model.Quiz{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"quizzes": quizzes})
}

// Get handles GET /v1/quizzes/{quizId}
func (h *QuizHandler) Get(w http.ResponseWriter, r *http.Request) {
	quizID := mux.Vars(r)["quizId"]

	quiz, err := h.quizSvc.Get(r.Context(), quizID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if quiz == nil {
		writeError(w, http.StatusNotFound, "quiz not found")
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

// ReplaceAll handles PUT /v1/quizzes
func (h *QuizHandler) ReplaceAll(w http.ResponseWriter, r *http.Request) {
	var req ReplaceQuizzesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.quizSvc.ReplaceAll(r.Context(), req.Quizzes); err != nil {
		if errors.Is(err, service.ErrInvalidQuiz) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"saved": len(req.Quizzes)})
}

// UpdateQuestionMarks handles POST /v1/quizzes/{quizId}/questions/marks
func (h *QuizHandler) UpdateQuestionMarks(w http.ResponseWriter, r *http.Request) {
	quizID := mux.Vars(r)["quizId"]

	var req UpdateMarksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Subject == "" {
		writeError(w, http.StatusBadRequest, "missing subject")
		return
	}

	err := h.quizSvc.UpdateQuestionMarks(r.Context(), quizID, req.Subject, req.QuestionIndex, req.CorrectMarks, req.WrongMarks)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrQuizNotFound):
			writeError(w, http.StatusNotFound, "quiz not found")
		case errors.Is(err, repository.ErrQuestionNotFound):
			writeError(w, http.StatusNotFound, "question not found")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}
