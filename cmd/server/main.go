package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"quiz-player/internal/config"
	"quiz-player/internal/quiz"
	"quiz-player/internal/trivia"
	"quiz-player/pkg/cache"
	"quiz-player/pkg/database"
	"quiz-player/pkg/websocket"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	store, closeStore, err := openStore(ctx, &cfg.Store)
	if err != nil {
		log.Fatalf("Failed to open progress store: %v", err)
	}
	defer closeStore()

	provider, err := openProvider(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to set up question provider: %v", err)
	}
	cancel()

	wsHub := websocket.NewHub()
	go wsHub.Run()

	source := quiz.NewSource(provider, store, cfg.Source.Amount)
	session := quiz.NewSession(source, store, quiz.WithNotifier(wsHub))
	defer session.Close()
	wsHub.SetSession(session)

	// A failed start leaves the session idle; the player retries with a reset.
	initCtx, initCancel := context.WithTimeout(context.Background(), cfg.Source.Timeout+5*time.Second)
	if err := session.Initialize(initCtx); err != nil {
		log.Printf("Quiz not started: %v", err)
	}
	initCancel()

	quizHandler := quiz.NewHandler(session)

	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}).Methods("GET")
	quizHandler.Register(router.PathPrefix("/api").Subrouter())
	router.HandleFunc("/ws", wsHub.HandleWebSocket)

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.HTTPPort,
		Handler:      corsMiddleware.Handler(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Source.Timeout + 15*time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Server.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown setup
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server shutdown gracefully")
}

func openStore(ctx context.Context, cfg *config.StoreConfig) (quiz.Store, func() error, error) {
	switch cfg.Driver {
	case "redis":
		redisCache := cache.NewRedisCache(cache.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.Prefix,
			TTL:      cfg.TTL,
		})
		if err := redisCache.Ping(ctx); err != nil {
			redisCache.Close()
			return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		log.Printf("Connected to Redis at %s", cfg.RedisAddr)
		return redisCache, redisCache.Close, nil
	case "sqlite":
		sqliteStore, err := cache.NewSQLiteStore(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return sqliteStore, sqliteStore.Close, nil
	case "memory":
		log.Printf("Warning: progress is kept in memory and lost on restart")
		return cache.NewMemoryStore(), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

func openProvider(ctx context.Context, cfg *config.Config) (quiz.Provider, error) {
	switch cfg.Source.Provider {
	case "opentdb":
		return trivia.NewOpenTDBClient(trivia.OpenTDBOptions{
			BaseURL:    cfg.Source.OpenTDBURL,
			Category:   cfg.Source.Category,
			Difficulty: cfg.Source.Difficulty,
			Timeout:    cfg.Source.Timeout,
		}), nil
	case "bank":
		db, err := database.NewPostgresDB(&database.Config{
			Host:     cfg.DB.Host,
			Port:     cfg.DB.Port,
			User:     cfg.DB.User,
			Password: cfg.DB.Password,
			DBName:   cfg.DB.DBName,
			SSLMode:  cfg.DB.SSLMode,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		repo := trivia.NewRepository(db)
		if err := repo.Migrate(); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		if cfg.Source.File != "" {
			if err := repo.SeedFromCatalog(ctx, cfg.Source.File); err != nil {
				log.Printf("Error seeding question bank: %v", err)
			}
		}
		return trivia.NewBankProvider(repo), nil
	case "file":
		if cfg.Source.File == "" {
			return nil, fmt.Errorf("QUESTION_FILE is required for the file provider")
		}
		return trivia.NewFileProvider(cfg.Source.File), nil
	case "generated":
		return trivia.NewGeneratedProvider(), nil
	default:
		return nil, fmt.Errorf("unknown question provider %q", cfg.Source.Provider)
	}
}
