package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/prepview/backend/internal/config"
	"github.com/prepview/backend/internal/handler"
	interviewModel "github.com/prepview/backend/internal/model/interview"
	"github.com/prepview/backend/internal/service/ai"
	"github.com/prepview/backend/internal/service/analysis"
	interviewService "github.com/prepview/backend/internal/service/interview"
	"github.com/prepview/backend/internal/store/postgres"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Pick the session/report store backend.
	var (
		sessionStore interviewModel.Store
		reportStore  interviewModel.ReportStore
	)
	if cfg.Database.Enabled() {
		db, err := postgres.Open(ctx, cfg.Database.URL)
		if err != nil {
			log.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			log.Fatalf("failed to prepare database schema: %v", err)
		}
		sessionStore = postgres.NewSessionStore(db)
		reportStore = postgres.NewReportStore(db)
		log.Println("PostgreSQL session store initialized")
	} else {
		sessionStore = interviewModel.NewMemoryStore()
		reportStore = interviewModel.NewMemoryReportStore()
		log.Println("DATABASE_URL not set, using in-memory session store")
	}

	// Initialize the AI capability and the interview orchestrator.
	var orchestrator *interviewService.Orchestrator
	if cfg.AI.Enabled() {
		aiService, err := ai.NewService(ctx, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize AI service: %v", err)
			log.Println("continuing without interview functionality - check the Ark model environment variables")
		} else {
			scheduler := analysis.NewScheduler(aiService, reportStore,
				cfg.Analysis.QueueSize, time.Duration(cfg.Analysis.TimeoutSeconds)*time.Second)
			scheduler.Start(ctx)
			defer scheduler.Wait()

			orchestrator = interviewService.NewOrchestrator(sessionStore, reportStore, aiService, scheduler)
			log.Println("AI interview service initialized successfully")
		}
	} else {
		log.Println("Ark credentials not configured, interview endpoints disabled")
	}

	router := handler.NewRouter(orchestrator)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("PrepView backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
