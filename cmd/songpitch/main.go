package main

import (
	"fmt"
	"os"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ManuelReschke/SongPitch/app/repository"
	"github.com/ManuelReschke/SongPitch/internal/pkg/cache"
	"github.com/ManuelReschke/SongPitch/internal/pkg/catalog"
	"github.com/ManuelReschke/SongPitch/internal/pkg/database"
	"github.com/ManuelReschke/SongPitch/internal/pkg/env"
	"github.com/ManuelReschke/SongPitch/internal/pkg/flutterwave"
	"github.com/ManuelReschke/SongPitch/internal/pkg/hcaptcha"
	"github.com/ManuelReschke/SongPitch/internal/pkg/intake"
	"github.com/ManuelReschke/SongPitch/internal/pkg/jobqueue"
	applog "github.com/ManuelReschke/SongPitch/internal/pkg/logger"
	"github.com/ManuelReschke/SongPitch/internal/pkg/mail"
	"github.com/ManuelReschke/SongPitch/internal/pkg/metadata"
	"github.com/ManuelReschke/SongPitch/internal/pkg/middleware"
	"github.com/ManuelReschke/SongPitch/internal/pkg/moderation"
	"github.com/ManuelReschke/SongPitch/internal/pkg/notify"
	"github.com/ManuelReschke/SongPitch/internal/pkg/payment"
	"github.com/ManuelReschke/SongPitch/internal/pkg/router"
	"github.com/ManuelReschke/SongPitch/internal/pkg/session"
	"github.com/ManuelReschke/SongPitch/internal/pkg/statistics"
)

func main() {
	app, deps := NewApplication()
	defer func() { _ = zap.L().Sync() }()

	if deps.Queue != nil {
		deps.Queue.Start()
		defer deps.Queue.Stop()
	}

	addr := fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000"))
	zap.L().Info("starting server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		zap.L().Error("server stopped", zap.Error(err))
	}
}

func NewApplication() (*fiber.App, *router.Dependencies) {
	env.SetupEnvFile()

	log, err := applog.New(applog.ConfigFromEnv())
	if err != nil {
		panic(err)
	}

	database.SetupDatabase()
	cache.SetupCache()
	session.NewSessionStore()

	// Define possible base paths
	basePaths := []string{
		"./",        // Current directory
		"../../",    // From cmd/songpitch to project root
		"../../../", // Fallback
	}

	// Find the correct base path
	basePath := ""
	for _, path := range basePaths {
		if _, err := os.Stat(path + "public/docs/v1/openapi.yml"); err == nil {
			basePath = path
			break
		}
	}

	if basePath == "" {
		panic("Could not find project root directory")
	}

	// init fiber app
	app := fiber.New(fiber.Config{
		AppName:      "SongPitch",
		BodyLimit:    4 * 1024 * 1024,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	// recovery, request ids and logging
	app.Use(recover.New(recover.Config{EnableStackTrace: env.IsDev()}))
	app.Use(requestid.New(requestid.Config{
		Generator:  uuid.NewString,
		ContextKey: applog.RequestIDLocalsKey,
	}))
	app.Use(applog.FiberMiddleware())
	if env.IsDev() {
		app.Use(logger.New())
	}

	// fiber metrics
	app.Get("/metrics", middleware.MetricsAuth(), monitor.New())

	// SWAGGER / OPENAPI
	openAPICfg := swagger.Config{
		BasePath: "/docs/api/",
		FilePath: basePath + "public/docs/v1/openapi.yml",
		Path:     "v1",
		Title:    "SongPitch API",
	}
	app.Use(swagger.New(openAPICfg))

	// ROUTER
	deps := newDependencies(log)
	router.InstallRouter(app, deps)

	return app, deps
}

func newDependencies(log *zap.Logger) *router.Dependencies {
	repository.InitializeFactory(database.GetDB())
	repos := repository.GetGlobalRepositories()

	store := cache.NewStore(cache.GetClient(), "songpitch:")
	lookup := metadata.NewLookup(
		metadata.NewSpotifyClient(metadata.SpotifyConfigFromEnv(), store),
		metadata.NewYouTubeClient(metadata.YouTubeConfigFromEnv()),
	)
	captcha := hcaptcha.NewVerifierFromEnv()

	fwConfig := flutterwave.ConfigFromEnv()
	if fwConfig.SecretKey == "" {
		log.Warn("FLUTTERWAVE_SECRET_KEY is not set, payment verification will fail")
	}

	payments := payment.NewService(repos, flutterwave.NewClient(fwConfig), payment.ConfigFromEnv())
	moderations := moderation.NewService(repos)

	// submitter emails
	var queue *jobqueue.Queue
	mailer := mail.NewMailer(mail.ConfigFromEnv())
	if mailer.Enabled() {
		queue = jobqueue.NewQueue(cache.GetClient(), env.GetEnvInt("NOTIFY_WORKERS", 2))
		notifier := notify.NewNotifier(queue, mailer, payment.DefaultCurrency)
		notifier.Register(queue)
		payments.SetNotifier(notifier)
		moderations.SetNotifier(notifier)
	} else {
		log.Info("SMTP_HOST is not set, submitter notifications are disabled")
	}

	return &router.Dependencies{
		Intake:     intake.NewService(repos, lookup, captcha, captcha.SiteKey),
		Lookup:     lookup,
		Payments:   payments,
		Moderation: moderations,
		Catalog:    catalog.NewService(repos),
		Statistics: statistics.NewService(repos, store),
		Queue:      queue,
		Staff:      middleware.StaffConfigFromEnv(),
	}
}
