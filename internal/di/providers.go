package di

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/wire"
	"github.com/lmittmann/tint"
	"github.com/redis/go-redis/v9"

	"github.com/Isaac-1-lang/Ecommerce/internal/config"
	"github.com/Isaac-1-lang/Ecommerce/internal/database"
	"github.com/Isaac-1-lang/Ecommerce/internal/domain"
	"github.com/Isaac-1-lang/Ecommerce/internal/events"
	"github.com/Isaac-1-lang/Ecommerce/internal/handler"
	"github.com/Isaac-1-lang/Ecommerce/internal/middleware"
	"github.com/Isaac-1-lang/Ecommerce/internal/password"
	"github.com/Isaac-1-lang/Ecommerce/internal/repository"
	"github.com/Isaac-1-lang/Ecommerce/internal/server"
	"github.com/Isaac-1-lang/Ecommerce/internal/service"
	"github.com/Isaac-1-lang/Ecommerce/internal/token"
)

var LoggerSet = wire.NewSet(
	ProvideLogger,
)

var DatabaseSet = wire.NewSet(
	ProvideDatabase,
	ProvideRedis,
)

var RepositorySet = wire.NewSet(
	ProvideUserRepository,
	ProvideSessionRepository,
	ProvideAuditLogRepository,
)

var ServiceSet = wire.NewSet(
	ProvideIssuer,
	ProvideHasher,
	events.NewHub,
	wire.Bind(new(service.SessionEventPublisher), new(*events.Hub)),
	service.NewAuditService,
	service.NewCredentialVerifier,
	ProvideSessionService,
	service.NewProfileService,
	ProvideSessionSweeper,
)

var HandlerSet = wire.NewSet(
	ProvideHealthHandler,
	ProvideAuthHandler,
	ProvideAdminHandler,
	handler.NewProfileHandler,
	ProvideSessionEventsHandler,
	handler.NewSwaggerHandler,
	ProvideAuthMiddleware,
)

var ServerSet = wire.NewSet(
	ProvideServerConfig,
	server.New,
)

var AppSet = wire.NewSet(
	LoggerSet,
	DatabaseSet,
	RepositorySet,
	ServiceSet,
	HandlerSet,
	ServerSet,
	wire.Struct(new(Application), "*"),
)

const Version = "0.1.0"

func ProvideLogger(cfg *config.Config) *slog.Logger {
	var logLevel slog.Level
	switch cfg.Server.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	if cfg.IsDevelopment() {
		return slog.New(tint.NewHandler(os.Stdout, &tint.Options{
			Level:      logLevel,
			TimeFormat: time.Kitchen,
		}))
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
}

// ProvideDatabase returns a nil handle when accounts live in memory.
func ProvideDatabase(cfg *config.Config) (*sql.DB, func(), error) {
	if cfg.Database.Driver != config.StorageDriverPostgres {
		return nil, func() {}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.OpenPostgres(ctx, cfg.Database.URL)
	if err != nil {
		return nil, nil, err
	}

	return db, func() { db.Close() }, nil
}

// ProvideRedis only dials when sessions are stored in Redis.
func ProvideRedis(cfg *config.Config) (*redis.Client, func(), error) {
	if cfg.Auth.SessionStore != config.SessionStoreRedis {
		return nil, func() {}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := database.OpenRedis(ctx, database.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, nil, err
	}

	return client, func() { client.Close() }, nil
}

func ProvideUserRepository(cfg *config.Config, db *sql.DB) domain.UserRepository {
	if cfg.Database.Driver == config.StorageDriverPostgres {
		return repository.NewPostgresUserRepository(db)
	}
	return repository.NewMemoryUserRepository()
}

func ProvideAuditLogRepository(cfg *config.Config, db *sql.DB) domain.AuditLogRepository {
	if cfg.Database.Driver == config.StorageDriverPostgres {
		return repository.NewPostgresAuditLogRepository(db)
	}
	return repository.NewMemoryAuditLogRepository()
}

func ProvideSessionRepository(cfg *config.Config, db *sql.DB, rdb *redis.Client) (domain.SessionRepository, error) {
	switch cfg.Auth.SessionStore {
	case config.SessionStorePostgres:
		if db == nil {
			return nil, fmt.Errorf("session store %q needs a database connection", cfg.Auth.SessionStore)
		}
		return repository.NewPostgresSessionRepository(db), nil
	case config.SessionStoreRedis:
		return repository.NewRedisSessionRepository(rdb), nil
	default:
		return repository.NewMemorySessionRepository(), nil
	}
}

func ProvideIssuer(cfg *config.Config) (*token.Issuer, error) {
	issuer, err := token.NewIssuer(token.Config{
		Secret: cfg.Auth.JWTSecret,
		TTL:    cfg.Auth.SessionTTL,
		Issuer: cfg.Auth.TokenIssuer,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create token issuer: %w", err)
	}
	return issuer, nil
}

func ProvideHasher(cfg *config.Config) *password.Hasher {
	return password.NewHasher(cfg.Auth.BcryptCost)
}

func ProvideSessionService(
	cfg *config.Config,
	users domain.UserRepository,
	sessions domain.SessionRepository,
	verifier *service.CredentialVerifier,
	issuer *token.Issuer,
	hasher *password.Hasher,
	audit *service.AuditService,
	publisher service.SessionEventPublisher,
	logger *slog.Logger,
) *service.SessionService {
	return service.NewSessionService(service.SessionServiceConfig{
		Users:            users,
		Sessions:         sessions,
		Verifier:         verifier,
		Issuer:           issuer,
		Hasher:           hasher,
		Audit:            audit,
		Events:           publisher,
		RefreshThreshold: cfg.Auth.RefreshThreshold,
		Logger:           logger,
	})
}

func ProvideSessionSweeper(cfg *config.Config, sessions domain.SessionRepository, logger *slog.Logger) *service.SessionSweeper {
	return service.NewSessionSweeper(sessions, cfg.Auth.SweepInterval, logger)
}

func ProvideHealthHandler(db *sql.DB, rdb *redis.Client) *handler.HealthHandler {
	checks := make(map[string]handler.Pinger)
	if db != nil {
		checks["postgres"] = db
	}
	if rdb != nil {
		checks["redis"] = handler.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}
	return handler.NewHealthHandler(Version, checks)
}

func ProvideAuthHandler(sessions *service.SessionService, logger *slog.Logger) *handler.AuthHandler {
	return handler.NewAuthHandler(handler.AuthHandlerConfig{
		Sessions: sessions,
		Logger:   logger,
	})
}

func ProvideAdminHandler(audit *service.AuditService, sessions *service.SessionService, logger *slog.Logger) *handler.AdminHandler {
	return handler.NewAdminHandler(handler.AdminHandlerConfig{
		Audit:    audit,
		Sessions: sessions,
		Logger:   logger,
	})
}

func ProvideSessionEventsHandler(sessions *service.SessionService, hub *events.Hub, logger *slog.Logger) *handler.SessionEventsHandler {
	return handler.NewSessionEventsHandler(handler.SessionEventsHandlerConfig{
		Sessions: sessions,
		Hub:      hub,
		Logger:   logger,
	})
}

func ProvideAuthMiddleware(sessions *service.SessionService, logger *slog.Logger) *middleware.AuthMiddleware {
	return middleware.NewAuthMiddleware(middleware.AuthMiddlewareConfig{
		Authenticator: sessions,
		Logger:        logger,
	})
}

func ProvideServerConfig(cfg *config.Config) server.Config {
	return server.Config{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
		CorsOrigins:  cfg.Server.CorsOrigins,
	}
}

type Application struct {
	Config               *config.Config
	Logger               *slog.Logger
	DB                   *sql.DB
	Server               *server.Server
	Sweeper              *service.SessionSweeper
	AuthMiddleware       *middleware.AuthMiddleware
	HealthHandler        *handler.HealthHandler
	AuthHandler          *handler.AuthHandler
	AdminHandler         *handler.AdminHandler
	ProfileHandler       *handler.ProfileHandler
	SessionEventsHandler *handler.SessionEventsHandler
	SwaggerHandler       *handler.SwaggerHandler
}

// RegisterRoutes mounts every handler under the API prefix.
func (a *Application) RegisterRoutes() {
	app := a.Server.App()
	api := app.Group(handler.APIPrefix)
	requireAuth := a.AuthMiddleware.Require()
	requireAdmin := middleware.RequireRole(domain.RoleAdmin)

	a.HealthHandler.Register(app)
	a.SwaggerHandler.Register(app)
	a.AuthHandler.Register(api, server.AuthRateLimiter(), requireAuth)
	a.SessionEventsHandler.Register(api)
	a.ProfileHandler.Register(api, requireAuth)
	a.AdminHandler.Register(api, requireAuth, requireAdmin)
}
