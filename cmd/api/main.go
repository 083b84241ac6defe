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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/bryanwahyu/uxinsight-gateway/internal/application"
	appanalysis "github.com/bryanwahyu/uxinsight-gateway/internal/application/analysis"
	appquestions "github.com/bryanwahyu/uxinsight-gateway/internal/application/questions"
	appvision "github.com/bryanwahyu/uxinsight-gateway/internal/application/vision"
	"github.com/bryanwahyu/uxinsight-gateway/internal/config"
	domanalysis "github.com/bryanwahyu/uxinsight-gateway/internal/domain/analysis"
	domllm "github.com/bryanwahyu/uxinsight-gateway/internal/domain/llm"
	domquestions "github.com/bryanwahyu/uxinsight-gateway/internal/domain/questions"
	mysqlp "github.com/bryanwahyu/uxinsight-gateway/internal/infra/db/mysql"
	postgresp "github.com/bryanwahyu/uxinsight-gateway/internal/infra/db/postgres"
	"github.com/bryanwahyu/uxinsight-gateway/internal/infra/executor/crawler"
	"github.com/bryanwahyu/uxinsight-gateway/internal/infra/httpserver"
	llmopenai "github.com/bryanwahyu/uxinsight-gateway/internal/infra/llm/openai"
	llmservice "github.com/bryanwahyu/uxinsight-gateway/internal/infra/llm/service"
	minioStore "github.com/bryanwahyu/uxinsight-gateway/internal/infra/storage"
	visionclient "github.com/bryanwahyu/uxinsight-gateway/internal/infra/vision"
	"github.com/bryanwahyu/uxinsight-gateway/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()

	// connect DB sesuai driver
	var (
		questionRepo   domquestions.Repository
		attachmentRepo domquestions.AttachmentRepository
		analysisRepo   domanalysis.Repository
		dbChecker      middleware.HealthChecker
	)
	switch cfg.Database.Driver {
	case "postgres":
		db, err := postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			log.Fatalf("postgres connect error: %v", err)
		}
		defer db.Close()
		questionRepo = postgresp.NewQuestionRepository(db)
		attachmentRepo = postgresp.NewAttachmentRepository(db)
		analysisRepo = postgresp.NewAnalysisRepository(db)
		dbChecker = &middleware.DatabaseHealthChecker{DB: db}
	default:
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			log.Fatalf("mysql connect error: %v", err)
		}
		defer db.Close()
		questionRepo = mysqlp.NewQuestionRepository(db)
		attachmentRepo = mysqlp.NewAttachmentRepository(db)
		analysisRepo = mysqlp.NewAnalysisRepository(db)
		dbChecker = &middleware.DatabaseHealthChecker{DB: db}
	}

	checkers := map[string]middleware.HealthChecker{
		"database": dbChecker,
	}

	// init minio (optional, untuk artefak hasil analysis)
	var artifacts domanalysis.ArtifactStore
	if cfg.Minio.Enabled {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			log.Fatalf("minio init error: %v", err)
		}
		artifacts = store
		checkers["storage"] = middleware.CheckerFunc(store.Ping)
	}

	// init LLM client sesuai provider
	var llmClient domllm.Client
	switch cfg.Services.LLM.Provider {
	case "openai":
		llmClient = llmopenai.NewClient(cfg.Services.LLM.OpenAI.APIKey, cfg.Services.LLM.OpenAI.Model)
	default:
		llmClient = llmservice.New(cfg.Services.LLM.BaseURL, cfg.LLMTimeout())
	}

	// init services
	clock := application.SystemClock{}
	questionsSvc := &appquestions.Service{
		Repo:        questionRepo,
		Attachments: attachmentRepo,
		LLM:         llmClient,
		Clock:       clock,
	}
	visionSvc := &appvision.Service{
		Client: visionclient.New(cfg.Services.Vision.BaseURL, cfg.VisionTimeout()),
	}
	analysisSvc := &appanalysis.Service{
		Repo:      analysisRepo,
		Questions: questionRepo,
		Runner:    crawler.NewRunner(cfg.Crawler.Image),
		Artifacts: artifacts,
		Clock:     clock,
	}

	// init router
	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(middleware.RateLimitMiddleware(cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate))

	mux.Get("/health", middleware.HealthHandler(checkers))
	mux.Get("/ready", middleware.ReadinessHandler)
	mux.Get("/live", middleware.LivenessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Mount("/", httpserver.NewRouter(questionsSvc, visionSvc, analysisSvc))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
