package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tigerengage-backend/internal/config"
	"tigerengage-backend/internal/database"
	"tigerengage-backend/internal/handlers"
	"tigerengage-backend/internal/middleware"
	"tigerengage-backend/internal/repository"
	"tigerengage-backend/internal/router"
	"tigerengage-backend/internal/services"
	"tigerengage-backend/internal/websocket"
	"tigerengage-backend/internal/worker"
)

func main() {
	log.Println("🚀 Starting TigerEngage Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClients.Close()
	log.Println("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(pool, "migrations"); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Initialize Repositories ────
	userRepo := repository.NewUserRepo(pool)
	classRepo := repository.NewClassRepo(pool)
	enrollmentRepo := repository.NewEnrollmentRepo(pool)
	sessionRepo := repository.NewSessionRepo(pool)
	attendanceRepo := repository.NewAttendanceRepo(pool)
	questionRepo := repository.NewQuestionRepo(pool)
	answerRepo := repository.NewAnswerRepo(pool)
	summaryRepo := repository.NewSummaryRepo(pool)
	chatRepo := repository.NewChatRepo(pool)

	// ──── Step 5: Initialize Gemini Client ────
	feedbackService, err := services.NewFeedbackService(cfg.GeminiAPIKey, cfg.GeminiConcurrentReqs)
	if err != nil {
		log.Fatalf("✗ Gemini client initialization failed: %v", err)
	}
	defer feedbackService.Close()
	log.Println("✓ Gemini Flash client initialized")

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	authService := services.NewAuthService(userRepo, redisClients.Queue, jwtAuth)
	classService := services.NewClassService(classRepo, enrollmentRepo)
	sessionService := services.NewSessionService(pool, classRepo, enrollmentRepo, sessionRepo, questionRepo)
	attendanceService := services.NewAttendanceService(pool, classRepo, enrollmentRepo, sessionRepo, attendanceRepo)
	questionService := services.NewQuestionService(pool, classRepo, enrollmentRepo, sessionRepo, questionRepo, redisClients.Queue)
	answerService := services.NewAnswerService(pool, classRepo, enrollmentRepo, questionRepo, answerRepo, summaryRepo)
	chatService := services.NewChatService(classRepo, enrollmentRepo, sessionRepo, chatRepo, redisClients.PubSub)

	// ──── Initialize Handlers ────
	authHandler := handlers.NewAuthHandler(authService)
	classHandler := handlers.NewClassHandler(classService)
	sessionHandler := handlers.NewSessionHandler(sessionService, attendanceService)
	questionHandler := handlers.NewQuestionHandler(questionService)
	answerHandler := handlers.NewAnswerHandler(answerService)
	chatHandler := handlers.NewChatHandler(chatService)

	// ──── Step 6: Start Feedback Worker Pool ────
	workerPool := worker.NewPool(
		redisClients.Queue,
		feedbackService,
		questionRepo,
		answerRepo,
		summaryRepo,
		cfg.FeedbackWorkers,
	)
	workerPool.Start()
	log.Printf("✓ Feedback worker pool started (%d goroutines)", cfg.FeedbackWorkers)

	// ──── Step 7: Start WebSocket Hub ────
	wsHub := websocket.NewHub(redisClients.PubSub, jwtAuth, sessionRepo, chatService)
	log.Println("✓ WebSocket hub started")

	// ──── Step 8: Start HTTP Server ────
	r := router.New(
		jwtAuth,
		authHandler,
		classHandler,
		sessionHandler,
		questionHandler,
		answerHandler,
		chatHandler,
		wsHub,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		workerPool.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ TigerEngage Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
