package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/sponsor-deliverables-api/internal/clock"
	"github.com/yukikurage/sponsor-deliverables-api/internal/config"
	"github.com/yukikurage/sponsor-deliverables-api/internal/constants"
	"github.com/yukikurage/sponsor-deliverables-api/internal/database"
	"github.com/yukikurage/sponsor-deliverables-api/internal/handlers"
	"github.com/yukikurage/sponsor-deliverables-api/internal/logger"
	"github.com/yukikurage/sponsor-deliverables-api/internal/mailer"
	"github.com/yukikurage/sponsor-deliverables-api/internal/middleware"
	"github.com/yukikurage/sponsor-deliverables-api/internal/reminder"
	"github.com/yukikurage/sponsor-deliverables-api/internal/repository"
	"github.com/yukikurage/sponsor-deliverables-api/internal/services"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.Must(cfg.LogLevel, cfg.LogEncoding)
	defer log.Sync()

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal("Invalid reminder timezone", zap.Error(err))
	}

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg, log); err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Run migrations
	if err := database.Migrate(log); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret),
	)
	if err != nil {
		log.Fatal("Failed to create Redis store", zap.Error(err), zap.String("addr", redisAddr))
	}
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   cfg.GinMode == gin.ReleaseMode,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	db := database.GetDB()
	clk := clock.In(clock.NewSystem(), loc)

	// Repositories
	profileRepo := repository.NewProfileRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	eventRepo := repository.NewEventRepository(db)
	sponsorRepo := repository.NewSponsorRepository(db)
	deliverableRepo := repository.NewDeliverableRepository(db)

	// Initialize AI service
	var aiService *services.AIService
	if cfg.OpenAIAPIKey != "" {
		aiService = services.NewAIService(cfg.OpenAIAPIKey)
	}

	// Services
	authService := services.NewAuthService(profileRepo, orgRepo)
	orgService := services.NewOrganizationService(orgRepo, profileRepo)
	eventService := services.NewEventService(eventRepo)
	sponsorService := services.NewSponsorService(sponsorRepo, eventService, clk)
	deliverableService := services.NewDeliverableService(deliverableRepo, profileRepo, sponsorService, aiService, clk)

	dispatcher := reminder.NewDispatcher(deliverableRepo, profileRepo, mailer.FromConfig(cfg, log), reminder.Options{
		Location:      loc,
		LookaheadDays: cfg.ReminderLookaheadDays,
		Concurrency:   cfg.ReminderConcurrency,
		AppURL:        cfg.AppURL,
	}, log)

	if cfg.CronSecret == "" {
		log.Warn("CRON_SECRET not set, /api/reminders/send will reject every request")
	}

	handlers.Routes{
		Auth:         handlers.NewAuthHandler(authService),
		Organization: handlers.NewOrganizationHandler(orgService),
		Event:        handlers.NewEventHandler(eventService),
		Sponsor:      handlers.NewSponsorHandler(sponsorService, clk),
		Deliverable:  handlers.NewDeliverableHandler(deliverableService),
		Reminder:     handlers.NewReminderHandler(dispatcher, clk, log),
		Profiles:     profileRepo,
		Deliverables: deliverableService,
		CronSecret:   cfg.CronSecret,
	}.Register(r)

	// Start server
	log.Info("Server starting", zap.String("addr", cfg.ListenAddr), zap.String("timezone", loc.String()))
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
