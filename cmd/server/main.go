package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"examforge/internal/cache"
	"examforge/internal/config"
	"examforge/internal/crypto"
	"examforge/internal/repository"
	"examforge/internal/service"
	"examforge/internal/transport/rest"
	"examforge/internal/transport/ws"
)

func main() {
	log.Println("started")
	ctx := context.Background()

	cfg := config.Load()

	// Load AI config and log model settings
	aiConfig := config.DefaultAIConfig()
	log.Printf("AI Config:")
	log.Printf("  Topic Gen:    %s", aiConfig.Models.TopicGen)
	log.Printf("  Text Extract: %s", aiConfig.Models.TextExtract)
	log.Printf("  Analysis:     %s", aiConfig.Models.Analysis)
	if aiConfig.IsEnabled() {
		log.Println("  API Key:      configured ✓")
	} else {
		log.Println("  API Key:      NOT SET (generation endpoints disabled)")
	}

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	// Ping MongoDB
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDatabase)

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	defer rdb.Close()

	// Ping Redis
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Field encryption for stored student identities
	var cipher crypto.FieldCipher
	if cfg.FieldKey != "" {
		cipher, err = crypto.NewAESFieldCipher(cfg.FieldKey)
		if err != nil {
			log.Fatal("Failed to initialize field encryption:", err)
		}
		log.Println("Field encryption: enabled")
	} else {
		cipher = crypto.NewNoopCipher()
		log.Println("Field encryption: DISABLED (FIELD_ENCRYPTION_KEY not set)")
	}

	// Initialize WebSocket hub
	wsHub := ws.NewHub()
	log.Println("WebSocket hub started")

	// Initialize repositories
	quizRepo := repository.NewQuizRepo(db)
	resultRepo := repository.NewResultRepo(db, cipher)

	// The unique (studentKey, quizId) index backs the attempt guard
	indexCtx, indexCancel := context.WithTimeout(ctx, 10*time.Second)
	defer indexCancel()
	if err := resultRepo.EnsureIndexes(indexCtx); err != nil {
		log.Fatal("Failed to create result indexes:", err)
	}

	// Initialize caches
	quizCache := cache.NewQuizCache(rdb)
	scoreCache := cache.NewScoreCache(rdb)

	// Initialize services
	authSvc, err := service.NewAuthService(cfg.AdminPassword, cfg.JWTSecret)
	if err != nil {
		log.Fatal("Failed to initialize auth service:", err)
	}
	quizSvc := service.NewQuizService(quizRepo, quizCache)
	gradingSvc := service.NewGradingService(quizRepo, resultRepo, scoreCache)
	generatorSvc := service.NewGeneratorService()
	recommenderSvc := service.NewRecommenderService()

	// Inject broadcaster (wsHub implements service.Broadcaster)
	gradingSvc.SetBroadcaster(wsHub)

	// Create router with container
	container := &rest.Container{
		AuthService:        authSvc,
		QuizService:        quizSvc,
		GradingService:     gradingSvc,
		GeneratorService:   generatorSvc,
		RecommenderService: recommenderSvc,
		ResultRepo:         resultRepo,
		Scores:             scoreCache,
		WSHub:              wsHub,
	}

	router := rest.NewRouter(container)

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		log.Println("Endpoints:")
		log.Println("  POST /v1/auth/login")
		log.Println("  GET  /v1/quizzes")
		log.Println("  PUT  /v1/quizzes")
		log.Println("  POST /v1/attempts/check")
		log.Println("  POST /v1/submissions")
		log.Println("  POST /v1/results/{resultId}/grade")
		log.Println("  GET  /v1/results")
		log.Println("  WS   /v1/ws/results/{quizId}")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
