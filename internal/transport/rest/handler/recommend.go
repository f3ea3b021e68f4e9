package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"examforge/internal/model"
	"examforge/internal/service"
)

// RecommendHandler handles question recommendation endpoints
type RecommendHandler struct {
	recommenderSvc *service.RecommenderService
}

// NewRecommendHandler creates a new recommend handler
func NewRecommendHandler(recommenderSvc *service.RecommenderService) *RecommendHandler {
	return &RecommendHandler{recommenderSvc: recommenderSvc}
}

// TrainRequest is the request body for training the recommender
type TrainRequest struct {
	Questions []model.BankQuestion `json:"questions"`
}

// SimilarRequest is the request body for content-similarity lookup
type SimilarRequest struct {
	Text  string `json:"text"`
	Count int    `json:"count"`
}

// PersonalizedRequest is the request body for personalized recommendations
type PersonalizedRequest struct {
	Performance map[string]model.SubjectPerformance `json:"performance"`
	Count       int                                 `json:"count"`
}

// Train handles POST /v1/recommend/train
func (h *RecommendHandler) Train(w http.ResponseWriter, r *http.Request) {
	var req TrainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	info, err := h.recommenderSvc.Train(req.Questions)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// Similar handles POST /v1/recommend/similar
func (h *RecommendHandler) Similar(w http.ResponseWriter, r *http.Request) {
	var req SimilarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "missing text")
		return
	}

	questions, err := h.recommenderSvc.Similar(req.Text, req.Count)
	if err != nil {
		writeRecommendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"questions": questions})
}

// Personalized handles POST /v1/recommend/personalized
func (h *RecommendHandler) Personalized(w http.ResponseWriter, r *http.Request) {
	var req PersonalizedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	questions, err := h.recommenderSvc.Personalized(req.Performance, req.Count)
	if err != nil {
		writeRecommendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"questions": questions})
}

func writeRecommendError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrNotTrained) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}
