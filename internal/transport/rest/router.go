package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"examforge/internal/cache"
	"examforge/internal/repository"
	"examforge/internal/service"
	"examforge/internal/transport/rest/handler"
	"examforge/internal/transport/rest/middleware"
	"examforge/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService        *service.AuthService
	QuizService        *service.QuizService
	GradingService     *service.GradingService
	GeneratorService   *service.GeneratorService
	RecommenderService *service.RecommenderService
	ResultRepo         repository.ResultRepo
	Scores             cache.ScoreCache
	WSHub              *ws.Hub
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	quizHandler := handler.NewQuizHandler(c.QuizService)
	submissionHandler := handler.NewSubmissionHandler(c.GradingService)
	resultHandler := handler.NewResultHandler(c.GradingService, c.ResultRepo, c.Scores)
	generateHandler := handler.NewGenerateHandler(c.GeneratorService)
	recommendHandler := handler.NewRecommendHandler(c.RecommenderService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	v1.HandleFunc("/quizzes", quizHandler.List).Methods("GET", "OPTIONS")
	v1.HandleFunc("/quizzes/{quizId}", quizHandler.Get).Methods("GET", "OPTIONS")
	v1.HandleFunc("/attempts/check", submissionHandler.CheckAttempt).Methods("POST", "OPTIONS")
	v1.HandleFunc("/submissions", submissionHandler.Submit).Methods("POST", "OPTIONS")

	// WebSocket routes (admin token in query param)
	v1.HandleFunc("/ws/results/{quizId}", wsHandler.ResultsWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Admin routes (require admin auth)
	adminRoutes := v1.NewRoute().Subrouter()
	adminRoutes.Use(authMW.RequireAdmin)

	adminRoutes.HandleFunc("/quizzes", quizHandler.ReplaceAll).Methods("PUT", "OPTIONS")
	adminRoutes.HandleFunc("/quizzes/{quizId}/questions/marks", quizHandler.UpdateQuestionMarks).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/results", resultHandler.List).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/results", resultHandler.DeleteAll).Methods("DELETE", "OPTIONS")
	adminRoutes.HandleFunc("/results/live/{quizId}", resultHandler.Live).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/results/{resultId}/grade", resultHandler.Grade).Methods("POST", "OPTIONS")

	// AI routes (admin only)
	adminRoutes.HandleFunc("/generate/topic", generateHandler.FromTopic).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/generate/text", generateHandler.FromText).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/analysis", generateHandler.Analysis).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/recommend/train", recommendHandler.Train).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/recommend/similar", recommendHandler.Similar).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/recommend/personalized", recommendHandler.Personalized).Methods("POST", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
