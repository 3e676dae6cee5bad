package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/applyfast/cold-dm-tracker/internal/auth"
	"github.com/applyfast/cold-dm-tracker/internal/config"
	"github.com/applyfast/cold-dm-tracker/internal/database"
	"github.com/applyfast/cold-dm-tracker/internal/dms"
	"github.com/applyfast/cold-dm-tracker/internal/health"
	"github.com/applyfast/cold-dm-tracker/internal/mailer"
	"github.com/applyfast/cold-dm-tracker/internal/middleware"
	"github.com/applyfast/cold-dm-tracker/internal/reminders"
	"github.com/applyfast/cold-dm-tracker/internal/users"
	"github.com/applyfast/cold-dm-tracker/internal/waitlist"
	"github.com/applyfast/cold-dm-tracker/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := worker.NewLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	// database
	db, err := database.Init(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Error("db close failed", "error", err)
		}
	}()

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("migrations: %v", err)
	}
	if !cfg.IsProduction() {
		if err := database.SeedDevData(db); err != nil {
			logger.Warn("seed failed", "error", err)
		}
	}

	auth.InitProviders(cfg)

	var sender mailer.Sender
	if cfg.ResendAPIKey != "" {
		sender = mailer.NewResend(cfg.ResendAPIKey)
	} else {
		logger.Warn("RESEND_API_KEY not set, emails will be logged instead of sent")
		sender = &mailer.Stub{Logger: logger}
	}

	var markers reminders.Marker
	if opt, err := redis.ParseURL(cfg.RedisURL); err != nil {
		logger.Warn("invalid REDIS_URL, reminder dedup markers disabled", "error", err)
	} else {
		markers = reminders.NewRedisMarker(redis.NewClient(opt))
	}

	engine := reminders.NewEngine(db, sender, markers, logger, reminders.Config{
		BaseURL:           cfg.BaseURL,
		From:              cfg.EmailFrom,
		SendHour:          cfg.SendHour,
		SendTimeout:       cfg.SendTimeout,
		UnsubscribeSecret: cfg.UnsubscribeSecret,
	})

	var stops []func()

	if cfg.Mode == "worker" || cfg.Mode == "all" {
		stop, err := worker.Start(cfg, engine, logger)
		if err != nil {
			log.Fatalf("worker: %v", err)
		}
		stops = append(stops, stop)
	}
	if cfg.Mode == "scheduler" || cfg.Mode == "all" {
		stop, err := worker.StartScheduler(cfg, logger)
		if err != nil {
			log.Fatalf("scheduler: %v", err)
		}
		stops = append(stops, stop)
	}

	var httpSrv *http.Server
	if cfg.Mode == "server" || cfg.Mode == "all" {
		publicRL := middleware.NewRateLimiter(5, 10)
		stops = append(stops, publicRL.Stop)
		httpSrv = &http.Server{
			Addr:    ":" + cfg.Port,
			Handler: newRouter(cfg, db, engine, sender, publicRL, logger),
		}
		go func() {
			logger.Info("http server listening", "port", cfg.Port, "env", cfg.Env)
			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("http server failed", "error", err)
			}
		}()
	}

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch
	logger.Info("shutting down")

	if httpSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(ctx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}
	for _, stop := range stops {
		stop()
	}
}

func newRouter(cfg *config.Config, db *gorm.DB, engine *reminders.Engine, sender mailer.Sender, publicRL *middleware.RateLimiter, logger *slog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(sessions.Sessions("coldm_session", store))

	r.GET("/health", health.Handler)

	r.GET("/auth/login", auth.HandleLogin)
	r.GET("/auth/callback", auth.HandleCallback(db))
	r.GET("/auth/logout", auth.HandleLogout)

	r.GET("/unsubscribe", users.UnsubscribeHandler(db, cfg.UnsubscribeSecret, logger))

	r.POST("/api/waitlist", publicRL.Middleware(), waitlist.JoinHandler(db, sender, cfg.EmailFrom, logger))
	r.GET("/api/cron/reminders", publicRL.Middleware(), reminders.TriggerHandler(cfg.CronSecret, engine))

	svc := dms.NewService(db)

	api := r.Group("/api", auth.RequireAuth())
	{
		api.GET("/me", users.MeHandler(db))
		api.PATCH("/me/settings", users.UpdateSettingsHandler(db))
		api.POST("/me/timezone", users.ConfirmTimezoneHandler(db))

		api.GET("/dms", dms.ListHandler(svc, db))
		api.POST("/dms", dms.CreateHandler(svc, db))
		api.GET("/dms/export", dms.ExportHandler(svc, db))
		api.GET("/dms/:id", dms.GetHandler(svc, db))
		api.PUT("/dms/:id", dms.UpdateHandler(svc, db))
		api.POST("/dms/:id/status", dms.UpdateStatusHandler(svc, db))
		api.DELETE("/dms/:id", dms.DeleteHandler(svc, db))
	}

	return r
}
