package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/casekart/casekart/internal/config"
	"github.com/casekart/casekart/internal/es"
	"github.com/casekart/casekart/internal/handlers"
	"github.com/casekart/casekart/internal/logging"
	authmw "github.com/casekart/casekart/internal/middleware/auth"
	loggingmw "github.com/casekart/casekart/internal/middleware/logging"
	"github.com/casekart/casekart/internal/mykafka"
	"github.com/casekart/casekart/internal/otp"
	httpserver "github.com/casekart/casekart/internal/transport/http"
	"github.com/casekart/casekart/pkg/db"
)

func main() {
	cfg := config.Load()
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET")

	logger := logging.New(cfg.LogLevel)

	ctx := context.Background()
	gdb, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("migration error: %v", err)
	}

	prod := mykafka.NewProducer(cfg.KafkaBrokers)

	codes := otp.NewStore(cfg.OTPTTL)
	defer codes.Close()

	guard := &authmw.Guard{DB: gdb, JWTSecret: cfg.JWTSecret}

	deps := &httpserver.Deps{
		Guard:    guard,
		Auth:     &handlers.AuthHandler{DB: gdb, JWTSecret: cfg.JWTSecret, AdminEmail: cfg.AdminEmail, Producer: prod},
		Password: &handlers.PasswordHandler{DB: gdb, Codes: codes, Mailer: &otp.LogMailer{L: logger}},
		Product:  &handlers.ProductHandler{DB: gdb, Producer: prod},
		Cart:     &handlers.CartHandler{DB: gdb, Producer: prod},
		Order:    &handlers.OrderHandler{DB: gdb, Producer: prod},
	}

	if cfg.ESURL != "" {
		esClient, err := es.NewClient(cfg)
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
		deps.Product.ES = esClient
		deps.Search = &handlers.SearchHandler{ES: esClient}
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	httpserver.Register(e, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()
	logger.Info("server started", "port", cfg.ServerPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := gdb.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	logger.Info("shutdown complete")
}
