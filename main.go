package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/casualfootball/cffa-backend/config"
	"github.com/casualfootball/cffa-backend/handlers"
	"github.com/casualfootball/cffa-backend/middleware"
	"github.com/casualfootball/cffa-backend/repository"
	"github.com/casualfootball/cffa-backend/repository/memory"
	"github.com/casualfootball/cffa-backend/routes"
	"github.com/casualfootball/cffa-backend/services"
)

// stores bundles everything the services need from storage
type stores interface {
	services.TeamStore
	services.PlayerStore
	services.GameStore
	services.PaymentStore
	services.UserStore
	services.ImportStore
}

// postgresStore combines the PostgreSQL repositories
type postgresStore struct {
	*repository.TeamRepository
	*repository.PlayerRepository
	*repository.GameRepository
	*repository.PaymentRepository
	*repository.UserRepository
	*repository.ImportRepository
}

func setupLogging(cfg config.LogConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func openStore(ctx context.Context, cfg config.DatabaseConfig) (stores, func(), error) {
	if cfg.Driver == config.DriverMemory {
		log.Warn().Msg("using in-memory storage, data is lost on restart")
		return memory.NewStore(), func() {}, nil
	}

	db, err := repository.Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := repository.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, nil, err
	}

	store := postgresStore{
		TeamRepository:    repository.NewTeamRepository(db),
		PlayerRepository:  repository.NewPlayerRepository(db),
		GameRepository:    repository.NewGameRepository(db),
		PaymentRepository: repository.NewPaymentRepository(db),
		UserRepository:    repository.NewUserRepository(db),
		ImportRepository:  repository.NewImportRepository(db),
	}
	return store, func() { db.Close() }, nil
}

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	setupLogging(cfg.Log)

	tokens := middleware.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)

	// `cffa-backend token <auth-id> <name>` prints a bearer token for local use
	if len(os.Args) == 4 && os.Args[1] == "token" {
		token, err := tokens.Generate(os.Args[2], os.Args[3])
		if err != nil {
			log.Fatal().Err(err).Msg("failed to generate token")
		}
		fmt.Println(token)
		return
	}

	// Initialize New Relic
	app, err := newrelic.NewApplication(
		newrelic.ConfigAppName(cfg.NewRelic.AppName),
		newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
		newrelic.ConfigDistributedTracerEnabled(true),
		newrelic.ConfigEnabled(cfg.NewRelic.LicenseKey != ""),
	)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize New Relic")
	}

	// Initialize storage
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	store, closeStore, err := openStore(ctx, cfg.Database)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize storage")
	}
	defer closeStore()

	// Initialize services
	ledgerService := services.NewLedgerService(store, store, store, cfg.Ledger)
	userService := services.NewUserService(store)
	h := &routes.Handlers{
		Team:    handlers.NewTeamHandler(services.NewTeamService(store)),
		Player:  handlers.NewPlayerHandler(services.NewPlayerService(store)),
		Game:    handlers.NewGameHandler(services.NewGameService(store, store), ledgerService),
		Payment: handlers.NewPaymentHandler(services.NewPaymentService(store, store, store), ledgerService),
		Summary: handlers.NewSummaryHandler(ledgerService),
		User:    handlers.NewUserHandler(userService),
		Export: handlers.NewExportHandler(services.NewExcelService(store, ledgerService, store),
			services.NewArchiveService(store, store, ledgerService)),
	}

	// Set up Gin router
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(middleware.RequestLogger(), gin.Recovery())

	// Add New Relic middleware
	if app != nil {
		router.Use(nrgin.Middleware(app))
	}

	// Configure CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.SetupRoutes(router, h, tokens, userService)

	log.Info().Str("port", cfg.Server.Port).Str("driver", cfg.Database.Driver).Msg("server starting")
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}
