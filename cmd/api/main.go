package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anjiri1684/educonnect/assistant"
	config "github.com/anjiri1684/educonnect/configs"
	"github.com/anjiri1684/educonnect/courses"
	"github.com/anjiri1684/educonnect/database"
	"github.com/anjiri1684/educonnect/enrollment"
	"github.com/anjiri1684/educonnect/handlers"
	"github.com/anjiri1684/educonnect/jobs"
	applog "github.com/anjiri1684/educonnect/logger"
	"github.com/anjiri1684/educonnect/media"
	"github.com/anjiri1684/educonnect/metrics"
	"github.com/anjiri1684/educonnect/notifications"
	"github.com/anjiri1684/educonnect/payments"
	"github.com/anjiri1684/educonnect/routes"
	ws "github.com/anjiri1684/educonnect/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := applog.Init(cfg.LogFile, cfg.IsDevelopment())
	defer func() { _ = log.Sync() }()

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal("🔥 database connection failed", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("🔥 database migration failed", zap.Error(err))
	}
	stores := database.NewStores(db)
	metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := ws.NewHub(log)
	go hub.Run(ctx)

	mailer := notifications.NewMailer(cfg.EmailProvider, cfg.BrevoAPIKey, cfg.SendGridAPIKey, cfg.EmailSender, cfg.EmailSenderName, log)
	notifier := notifications.NewNotifier(stores.Notifications, stores.Users, hub, mailer, log)

	fingerprintKey := []byte(cfg.CardFingerprintKey)
	provider := payments.NewStripeProvider(cfg.PaymentAPIBaseURL, cfg.PaymentSecretKey, cfg.Currency, fingerprintKey)

	store, err := media.New(media.Config{
		StorageType:    cfg.StorageType,
		CloudinaryURL:  cfg.CloudinaryURL,
		MinioEndpoint:  cfg.MinioEndpoint,
		MinioAccessKey: cfg.MinioAccessKey,
		MinioSecretKey: cfg.MinioSecretKey,
		MinioBucket:    cfg.MinioBucket,
		MinioUseSSL:    cfg.MinioUseSSL,
	})
	if err != nil {
		log.Warn("⚠️ thumbnail storage disabled", zap.Error(err))
		store = nil
	}

	courseService := courses.NewService(stores.Courses, cfg.PlatformFeeRate, log)
	coordinator := enrollment.NewCoordinator(stores, provider, notifier, enrollment.Options{
		FingerprintKey:        fingerprintKey,
		Currency:              cfg.Currency,
		DefaultScheduleMonths: cfg.DefaultScheduleMonths,
		SessionConcurrency:    cfg.SessionWriteConcurrency,
		Thumbnails:            store,
	}, log)

	chat := assistant.NewService(
		assistant.NewClient(cfg.AIBaseURL, cfg.AIAPIKey, cfg.AIModel),
		assistant.NewConversationStore(0),
		log,
	)

	scheduler, err := jobs.Schedule(jobs.Deps{
		Payments:  stores.Payments,
		Provider:  provider,
		Reminders: jobs.NewSessionReminders(stores.Sessions, notifier, time.UTC, log),
		Repairer:  coordinator,
	}, log)
	if err != nil {
		log.Fatal("🔥 failed to schedule jobs", zap.Error(err))
	}
	scheduler.Start()
	log.Info("✅ Background jobs scheduled successfully.")

	app := fiber.New(fiber.Config{
		AppName:       "EduConnect",
		CaseSensitive: true,
		StrictRouting: true,
		ReadTimeout:   15 * time.Second,
		WriteTimeout:  15 * time.Second,
		IdleTimeout:   60 * time.Second,
		ErrorHandler:  handlers.ErrorHandler(log),
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Authorization",
		MaxAge:        86400,
	}))
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(metrics.Middleware())

	h := handlers.New(handlers.Handler{
		Courses:    courseService,
		Enrollment: coordinator,
		Notifier:   notifier,
		Hub:        hub,
		Media:      store,
		Assistant:  chat,
		Log:        log,
	})
	routes.Setup(app, h, routes.Options{
		JWTSecret:             cfg.JWTSecret,
		CheckoutRatePerMinute: cfg.CheckoutRatePerMinute,
	})

	// Listen returns as soon as the listener closes; main waits here for in-flight requests
	shutdown := make(chan struct{})
	go func() {
		defer close(shutdown)
		<-ctx.Done()
		log.Info("shutting down")
		<-scheduler.Stop().Done()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error("shutdown failed", zap.Error(err))
		}
	}()

	log.Info("✅ Server is running", zap.String("port", cfg.Port))
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal("🔥 Server failed to start", zap.Error(err))
	}
	<-shutdown

	// queued e-mails finish before the process exits
	notifier.Wait()
	log.Info("server stopped")
}
