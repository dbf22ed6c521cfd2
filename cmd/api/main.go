package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"example.com/fitclass/internal/api"
	"example.com/fitclass/internal/auth"
	"example.com/fitclass/internal/config"
	"example.com/fitclass/internal/domain"
	persistence "example.com/fitclass/internal/persistence/postgres"
	httptransport "example.com/fitclass/internal/transport/http"
)

// publicPaths are reachable without a session.
var publicPaths = map[string]bool{
	"/":           true,
	"/contactus1": true,
	"/contactus2": true,
	"/login":      true,
	"/signup":     true,
	"/healthz":    true,
	"/metrics":    true,
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	if err := persistence.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("failed to ensure schema: %v", err)
	}

	repo := persistence.NewRepository(pool)
	service := domain.NewService(repo, cfg.BcryptCost)
	sessions := auth.NewManager(auth.Config{
		Secret: cfg.SessionSecret,
		Issuer: cfg.SessionIssuer,
		TTL:    cfg.SessionTTL,
	})

	handler := api.NewHandler(service, sessions, cfg.IsAdmin)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	sessionMiddleware := auth.NewMiddleware(sessions, func(r *http.Request) bool {
		return publicPaths[r.URL.Path]
	})

	logger := log.New(os.Stdout, "", log.LstdFlags)
	chain := httptransport.Recover(logger)(
		httptransport.RequestLog(logger)(
			sessionMiddleware.Wrap(mux),
		),
	)

	server := httptransport.NewServer(httptransport.ServerConfig{
		Address:      cfg.HTTPAddress,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}, chain)

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("fitclass listening on %s", cfg.HTTPAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-shutdownCh
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
