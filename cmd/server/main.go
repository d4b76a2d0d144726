package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	gorillaSessions "github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"
	"github.com/rs/zerolog"
	"github.com/yukikurage/ndt-worklog/internal/config"
	"github.com/yukikurage/ndt-worklog/internal/database"
	"github.com/yukikurage/ndt-worklog/internal/handlers"
	"github.com/yukikurage/ndt-worklog/internal/hours"
	"github.com/yukikurage/ndt-worklog/internal/logger"
	"github.com/yukikurage/ndt-worklog/internal/metrics"
	"github.com/yukikurage/ndt-worklog/internal/repository"
	"github.com/yukikurage/ndt-worklog/internal/services"
	"github.com/yukikurage/ndt-worklog/internal/storage"
	"github.com/yukikurage/ndt-worklog/internal/worker"
)

const sessionMaxAge = 86400 * 7

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		l := logger.New("info", "console")
		l.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database and run migrations
	if err := database.Connect(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	if err := database.MigrateDatabase(log); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}
	db := database.GetDB()

	holidays, err := hours.NewItalianHolidays(cfg.ExtraHolidays...)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid EXTRA_HOLIDAYS")
	}
	files, err := storage.NewFileStore(cfg.UploadDir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.UploadDir).Msg("Failed to prepare upload directory")
	}
	m := metrics.NewDefault(cfg.Port)

	// Initialize AI service
	var aiService *services.AIService
	if cfg.OpenAIAPIKey != "" {
		aiService = services.NewAIService(cfg.OpenAIAPIKey)
	}

	userRepo := repository.NewUserRepository(db)
	hoursRepo := repository.NewWorkHourRepository(db)
	jobOrderRepo := repository.NewJobOrderRepository(db)
	equipmentRepo := repository.NewEquipmentRepository(db)
	qualificationRepo := repository.NewQualificationRepository(db)

	settings := services.NewSettingsService(repository.NewSettingsRepository(db), cfg.Timezone, cfg.StandardHours, holidays)
	authService := services.NewAuthService(userRepo, log)

	password, err := authService.EnsureAdmin(cfg.BootstrapAdmin)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bootstrap admin")
	}
	if password != "" {
		log.Warn().
			Str("username", cfg.BootstrapAdmin).
			Str("password", password).
			Msg("Created bootstrap admin account, change this password")
	}

	store, err := newSessionStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.SessionStore).Msg("Failed to create session store")
	}
	initProviders(cfg, log)

	router := handlers.NewRouter(handlers.RouterDeps{
		DB:             db,
		SessionStore:   store,
		Logger:         log,
		Metrics:        m,
		Files:          files,
		UserRepo:       userRepo,
		Auth:           authService,
		Users:          services.NewUserService(userRepo),
		WorkHours:      services.NewWorkHoursService(hoursRepo, userRepo, jobOrderRepo, settings, aiService, m),
		JobOrders:      services.NewJobOrderService(jobOrderRepo),
		Equipment:      services.NewEquipmentService(equipmentRepo, userRepo, files, m, log),
		Procedures:     services.NewProcedureService(repository.NewProcedureRepository(db), files, m, log),
		Qualifications: services.NewQualificationService(qualificationRepo, userRepo, files, m, log),
		Settings:       settings,
	})

	scheduler := worker.NewScheduler(worker.Deps{
		Users:          userRepo,
		WorkHours:      hoursRepo,
		Equipment:      equipmentRepo,
		Qualifications: qualificationRepo,
		Settings:       settings,
		Metrics:        m,
	}, log)
	if err := scheduler.Register(cfg.ReminderSchedule, cfg.ExpiryScanSchedule, cfg.WeeklyReportSchedule); err != nil {
		log.Fatal().Err(err).Msg("Failed to register scheduled jobs")
	}
	scheduler.Start()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}
	scheduler.Stop()
}

// newSessionStore returns the Redis store, or a cookie store when
// SESSION_STORE=cookie.
func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	var store sessions.Store
	switch cfg.SessionStore {
	case "cookie":
		store = cookie.NewStore([]byte(cfg.SessionSecret))
	default:
		redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
		s, err := redisStore.NewStore(
			10,        // Redis pool size
			"tcp",     // network type
			redisAddr, // Redis address from config
			"",        // username (empty for default user)
			"",        // password (empty = no password)
			[]byte(cfg.SessionSecret),
		)
		if err != nil {
			return nil, err
		}
		store = s
	}

	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}

// initProviders configures gothic's own cookie store and registers Google
// when credentials are present.
func initProviders(cfg *config.Config, log zerolog.Logger) {
	gothStore := gorillaSessions.NewCookieStore([]byte(cfg.SessionSecret))
	gothStore.Options = &gorillaSessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	}
	gothic.Store = gothStore

	if cfg.GoogleClientID == "" {
		log.Info().Msg("GOOGLE_CLIENT_ID not set, external login disabled")
		return
	}

	goth.UseProviders(
		google.New(
			cfg.GoogleClientID,
			cfg.GoogleClientSecret,
			cfg.GoogleCallbackURL,
			"email",
			"profile",
		),
	)
	log.Info().Str("provider", "google").Msg("External identity provider registered")
}
