// @title TripLink Backend API
// @version 1.0
// @description TripLink Backend API for finding travel companions
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	_ "github.com/sahil06012005/globe-trotter-match/docs" // swagger docs
	"github.com/sahil06012005/globe-trotter-match/internal/config"
	"github.com/sahil06012005/globe-trotter-match/internal/handlers"
	"github.com/sahil06012005/globe-trotter-match/internal/middleware"
	"github.com/sahil06012005/globe-trotter-match/internal/realtime"
	"github.com/sahil06012005/globe-trotter-match/internal/routes"
	"github.com/sahil06012005/globe-trotter-match/internal/store"
	"github.com/sahil06012005/globe-trotter-match/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// pgxpool + simple protocol (needed behind PgBouncer)
	poolCfg, err := pgxpool.ParseConfig(cfg.GetDSN())
	if err != nil {
		log.Fatalf("parse dsn: %v", err)
	}
	poolCfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	poolCfg.ConnConfig.RuntimeParams["application_name"] = "triplink-backend"
	poolCfg.ConnConfig.RuntimeParams["statement_timeout"] = strconv.FormatInt(cfg.Database.QueryTimeout.Milliseconds(), 10)
	poolCfg.MaxConns = cfg.Database.MaxConns
	poolCfg.MinConns = cfg.Database.MinConns
	poolCfg.MaxConnLifetime = cfg.Database.MaxLifetime

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	{
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Database.ConnTimeout)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			log.Fatalf("ping: %v", err)
		}
	}

	// Optional Redis client for realtime fan-out across instances
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
	}

	hubCtx, hubCancel := context.WithCancel(context.Background())
	defer hubCancel()
	hub := realtime.NewHub(rdb, cfg.Redis.Channel)
	go hub.Run(hubCtx)

	db := store.NewPostgres(pool)
	emailService := utils.NewEmailService(&cfg.Email)
	notificationsHandler := handlers.NewNotificationsHandler(pool)
	notifications := notificationsHandler.Service()

	h := routes.Handlers{
		Auth:           handlers.NewAuthHandler(db, cfg),
		GoogleAuth:     handlers.NewGoogleAuthHandler(db, cfg),
		ForgotPassword: handlers.NewForgotPasswordHandler(pool, emailService, cfg),
		Trips:          handlers.NewTripsHandler(db, cfg),
		Requests:       handlers.NewRequestsHandler(db, notifications, hub, cfg),
		Messages:       handlers.NewMessagesHandler(db, notifications, hub),
		Profiles:       handlers.NewProfileHandler(db),
		Notifications:  notificationsHandler,
		Uploads:        handlers.NewUploadsHandler(db, cfg),
		Health:         handlers.NewHealthHandler(pool, rdb),
		Websocket:      handlers.NewWebsocketHandler(hub, cfg),
	}

	// 5 req/s with small bursts on the auth endpoints
	limiter := middleware.NewRateLimiter(5, 10)

	routes.SetupRoutes(h, cfg, limiter)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
	})
	handler := c.Handler(http.DefaultServeMux)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	go func() {
		log.Printf("HTTP server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	hubCancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped.")
}
