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

	"neuron_backoffice/internal/auth"
	"neuron_backoffice/internal/authz"
	"neuron_backoffice/internal/config"
	"neuron_backoffice/internal/database"
	"neuron_backoffice/internal/events"
	"neuron_backoffice/internal/handlers"
	"neuron_backoffice/internal/jobs"
	"neuron_backoffice/internal/lock"
	"neuron_backoffice/internal/logger"
	"neuron_backoffice/internal/middleware"
	"neuron_backoffice/internal/migrations"
	"neuron_backoffice/internal/redis"
	"neuron_backoffice/internal/repository"
	"neuron_backoffice/internal/services"
	"neuron_backoffice/pkg/llm"
	"neuron_backoffice/pkg/whatsapp"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	lockRetry       = 50 * time.Millisecond
	shutdownTimeout = 15 * time.Second
)

func main() {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	zlog, err := logger.New(cfg.Environment)
	if err != nil {
		log.Fatal("Failed to build logger: ", err)
	}
	defer zlog.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL, zlog, !cfg.IsProduction())
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := migrations.RunMigrations(db, zlog); err != nil {
		zlog.Fatal("failed to migrate database", zap.Error(err))
	}

	// Initialize Redis
	redisClient, err := redis.Initialize(cfg.RedisURL)
	if err != nil {
		zlog.Fatal("failed to connect to redis", zap.Error(err))
	}
	var locker lock.Locker = redis.NewLocker(redisClient, cfg.ConversationLockTTL(), lockRetry, zlog)
	if cfg.LockBackend == "local" {
		zlog.Info("using in-process conversation locks")
		locker = lock.NewLocal()
	}

	// Messaging channel
	whatsappClient := whatsapp.NewClient(cfg.WhatsAppAPIURL, cfg.WhatsAppUsername, cfg.WhatsAppPassword, cfg.WhatsAppPath)
	whatsappService := services.NewWhatsAppService(whatsappClient, redisClient, zlog)
	probeCtx, cancelProbe := context.WithTimeout(context.Background(), 10*time.Second)
	if err := whatsappService.Probe(probeCtx); err != nil {
		zlog.Warn("whatsapp channel not ready at startup", zap.Error(err))
	}
	cancelProbe()

	// Generation backend
	provider, err := llm.NewProvider(cfg.AIProvider, cfg.AIAPIKey())
	if err != nil {
		zlog.Fatal("failed to configure AI provider", zap.Error(err))
	}
	persona := services.Persona{BotName: cfg.BotName, CompanyName: cfg.CompanyName}
	aiProcessor := services.NewAIProcessor(provider, cfg.AIModel, persona, cfg.AITimeout, zlog)

	// Initialize repositories
	permissionRepo := repository.NewPermissionRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	userRepo := repository.NewUserRepository(db)
	contactRepo := repository.NewContactRepository(db)
	ticketRepo := repository.NewTicketRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	// Conversation engine
	notificationService := services.NewNotificationService(whatsappService, cfg.AdminPhoneNumber, zlog)
	conversationService := services.NewConversationService(
		conversationRepo,
		messageRepo,
		whatsappService,
		aiProcessor,
		notificationService,
		locker,
		services.ConversationConfig{
			Expiry:          cfg.ConversationExpiry,
			FallbackEnabled: cfg.AIFallbackMessageEnabled,
			Persona:         persona,
		},
		zlog,
	)

	dispatcher := events.NewDispatcher(cfg.EventWorkers, cfg.EventQueueSize, zlog)
	dispatcher.Start(context.Background())
	conversationEvents := services.NewConversationEvents(dispatcher, conversationService, zlog)

	// Initialize services
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiresIn)
	var captcha services.CaptchaVerifier
	if cfg.TurnstileSecretKey != "" {
		captcha = services.NewTurnstileVerifier(cfg.TurnstileSecretKey)
	} else {
		zlog.Warn("TURNSTILE_SECRET_KEY not set, login captcha disabled")
	}
	authService := services.NewAuthService(userRepo, tokens, captcha, zlog)
	contactService := services.NewContactService(contactRepo, conversationEvents)
	userService := services.NewUserService(userRepo, roleRepo)
	roleService := services.NewRoleService(roleRepo, permissionRepo)
	permissionService := services.NewPermissionService(permissionRepo)
	ticketService := services.NewTicketService(ticketRepo)
	menuService := services.NewMenuService()

	// Background jobs
	scheduler := jobs.NewScheduler(zlog)
	if err := scheduler.AddExpirySweep(cfg.ExpirySweepSchedule, conversationService); err != nil {
		zlog.Fatal("invalid EXPIRY_SWEEP_SCHEDULE", zap.Error(err))
	}
	if err := scheduler.AddChannelProbe(cfg.WhatsAppProbeSchedule, whatsappService); err != nil {
		zlog.Fatal("invalid WHATSAPP_PROBE_SCHEDULE", zap.Error(err))
	}
	scheduler.Start()

	// Initialize handlers
	sqlDB, err := db.DB()
	if err != nil {
		zlog.Fatal("failed to get database handle", zap.Error(err))
	}
	h := handlers.Handlers{
		Auth:        handlers.NewAuthHandler(authService),
		Contacts:    handlers.NewContactHandler(contactService),
		Users:       handlers.NewUserHandler(userService),
		Roles:       handlers.NewRoleHandler(roleService),
		Permissions: handlers.NewPermissionHandler(permissionService),
		Tickets:     handlers.NewTicketHandler(ticketService),
		Menu:        handlers.NewMenuHandler(menuService),
		WhatsApp: handlers.NewWhatsAppHandler(
			whatsappService,
			conversationService,
			conversationEvents,
			redisClient,
			handlers.WhatsAppHandlerConfig{
				WebhookSecret: cfg.WhatsappWebhookSecret,
				BotNumber:     cfg.WhatsAppBotNumber,
			},
			zlog,
		),
		Health: handlers.NewHealthHandler(map[string]handlers.HealthCheck{
			"database": sqlDB.PingContext,
			"redis":    redisClient.Ping,
		}),
	}

	engine := authz.NewEngine(tokens, cfg.AuthzAllowUndeclared)
	router, routes := handlers.NewRouter(h, engine, handlers.RouterConfig{
		CORSOrigin:   cfg.CORSOrigin,
		LoginLimiter: middleware.NewIPRateLimiter(cfg.LoginRatePerMinute, cfg.LoginRateBurst),
	}, zlog)
	zlog.Info("routes registered", zap.Int("count", len(routes.Routes())))

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zlog.Info("server starting", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		zlog.Error("server shutdown", zap.Error(err))
	}
	if err := scheduler.Stop(ctx); err != nil {
		zlog.Error("scheduler shutdown", zap.Error(err))
	}
	if err := dispatcher.Stop(ctx); err != nil {
		zlog.Error("event dispatcher shutdown", zap.Error(err))
	}
	if err := redisClient.Close(); err != nil {
		zlog.Error("redis close", zap.Error(err))
	}
	if err := sqlDB.Close(); err != nil {
		zlog.Error("database close", zap.Error(err))
	}
}
