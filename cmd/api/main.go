package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ArowuTest/outline-analytics-backend/api/routes"
	"github.com/ArowuTest/outline-analytics-backend/internal/browsing"
	"github.com/ArowuTest/outline-analytics-backend/internal/config"
	"github.com/ArowuTest/outline-analytics-backend/internal/handlers"
	"github.com/ArowuTest/outline-analytics-backend/internal/logging"
	mongorepo "github.com/ArowuTest/outline-analytics-backend/internal/repositories/mongodb"
	"github.com/ArowuTest/outline-analytics-backend/internal/services"
	"github.com/ArowuTest/outline-analytics-backend/internal/supervisor"
	"github.com/ArowuTest/outline-analytics-backend/pkg/geodb"
	"github.com/ArowuTest/outline-analytics-backend/pkg/jwt"
	"github.com/ArowuTest/outline-analytics-backend/pkg/mailer"
	"github.com/ArowuTest/outline-analytics-backend/pkg/mongodb"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to MongoDB
	mongoClient, err := mongodb.NewClient(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			log.Error().Err(err).Msg("error disconnecting from MongoDB")
		}
	}()
	db := mongoClient.Database(cfg.MongoDB.Database)
	if err := mongorepo.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("failed to create indexes")
	}

	tokens, err := jwt.LoadTokenService(cfg.JWT.PrivateKeyPath, cfg.JWT.PublicKeyPath, cfg.JWT.Issuer, cfg.JWT.ExpiresIn)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load signing keys")
	}

	locator, err := browsing.OpenMaxMind(cfg.GeoIP.DBPath)
	if err != nil {
		if !browsing.IsMissingDatabase(err) {
			log.Fatal().Err(err).Msg("failed to open geo database")
		}
		log.Warn().Str("path", cfg.GeoIP.DBPath).Msg("geo database missing, lookups disabled until refreshed")
	}
	defer locator.Close()

	var mail mailer.Mailer
	if cfg.Mailer.Mock {
		mail = mailer.NewLogMailer()
	} else {
		mail = mailer.NewSMTPMailer(mailer.SMTPConfig{
			Host:       cfg.Mailer.Host,
			Port:       cfg.Mailer.Port,
			Username:   cfg.Mailer.Username,
			Password:   cfg.Mailer.Password,
			From:       cfg.Mailer.From,
			SenderName: cfg.Mailer.SenderName,
		})
	}

	// Initialize Repositories
	userRepo := mongorepo.NewUserRepository(db)
	appRepo := mongorepo.NewAppRepository(db)
	eventRepo := mongorepo.NewTrackingEventRepository(db)

	// Initialize Services
	userService := services.NewUserService(userRepo, mail, services.UserPolicy{
		OTPLength:      cfg.OTP.Length,
		OTPExpiry:      cfg.OTP.Expiry,
		MaxOTPAttempts: cfg.OTP.MaxAttempts,
		TrialDuration:  cfg.Trial.Duration,
		TrialEvents:    cfg.Trial.TotalEvents,
	})
	appService := services.NewAppService(appRepo, cfg.Apps.MaxPerUser)
	trackingService := services.NewTrackingService(eventRepo, browsing.NewEnricher(locator), cfg.Tracking.MaxPageSize)

	// Initialize Handlers
	router, err := routes.SetupRouter(cfg, routes.Deps{
		Auth:     handlers.NewAuthHandler(userService, tokens, handlers.CookieConfig{Name: cfg.JWT.CookieName, Secure: cfg.JWT.CookieSecure}),
		User:     handlers.NewUserHandler(userService),
		App:      handlers.NewAppHandler(appService),
		Admin:    handlers.NewAdminHandler(appService),
		Tracking: handlers.NewTrackingHandler(trackingService, appService),
		System:   handlers.NewSystemHandler(mongoClient),
		Tokens:   tokens,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up router")
	}

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	tree := supervisor.NewTree("outline-analytics", supervisor.Config{ShutdownTimeout: cfg.Server.ShutdownTimeout})
	tree.AddAPIService(supervisor.NewHTTPService(server, cfg.Server.ShutdownTimeout))
	if cfg.GeoIP.DownloadURL != "" {
		tree.AddBackgroundService(geodb.NewRefresher(&geodb.Downloader{
			URL:        cfg.GeoIP.DownloadURL,
			LicenseKey: cfg.GeoIP.LicenseKey,
			Path:       cfg.GeoIP.DBPath,
			Reloader:   locator,
		}, cfg.GeoIP.RefreshInterval))
	}

	log.Info().Str("addr", server.Addr).Msg("server starting")
	if err := tree.Serve(ctx); err != nil && ctx.Err() == nil {
		log.Error().Err(err).Msg("supervisor stopped")
	}
	log.Info().Msg("server exited")
}
