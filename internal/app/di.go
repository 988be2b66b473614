// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/google/uuid"

	authHTTP "github.com/allisson/notehub/internal/auth/http"
	authUsecase "github.com/allisson/notehub/internal/auth/usecase"
	"github.com/allisson/notehub/internal/config"
	"github.com/allisson/notehub/internal/database"
	"github.com/allisson/notehub/internal/http"
	identityHTTP "github.com/allisson/notehub/internal/identity/http"
	identityRepository "github.com/allisson/notehub/internal/identity/repository"
	identityService "github.com/allisson/notehub/internal/identity/service"
	identityUsecase "github.com/allisson/notehub/internal/identity/usecase"
	"github.com/allisson/notehub/internal/metrics"
	noteHTTP "github.com/allisson/notehub/internal/note/http"
	noteRepository "github.com/allisson/notehub/internal/note/repository"
	noteUsecase "github.com/allisson/notehub/internal/note/usecase"
	sessionRepository "github.com/allisson/notehub/internal/session/repository"
	sessionUsecase "github.com/allisson/notehub/internal/session/usecase"
	taskHTTP "github.com/allisson/notehub/internal/task/http"
	taskRepository "github.com/allisson/notehub/internal/task/repository"
	taskUsecase "github.com/allisson/notehub/internal/task/usecase"
	tokenRepository "github.com/allisson/notehub/internal/token/repository"
	tokenService "github.com/allisson/notehub/internal/token/service"
	tokenUsecase "github.com/allisson/notehub/internal/token/usecase"
)

// noteRepo extends the note use case repository with the counters the
// profile stats aggregation needs.
type noteRepo interface {
	noteUsecase.NoteRepository
	CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
	CountGrantsForGrantee(ctx context.Context, granteeID uuid.UUID) (int64, error)
}

// taskRepo extends the task use case repository with the owner counter.
type taskRepo interface {
	taskUsecase.TaskRepository
	CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
}

// statsRepository aggregates per-identity counters from the note and task
// repositories.
type statsRepository struct {
	notes noteRepo
	tasks taskRepo
}

func (s *statsRepository) CountNotesByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	return s.notes.CountByOwner(ctx, ownerID)
}

func (s *statsRepository) CountTasksByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	return s.tasks.CountByOwner(ctx, ownerID)
}

func (s *statsRepository) CountGrantsForGrantee(ctx context.Context, granteeID uuid.UUID) (int64, error) {
	return s.notes.CountGrantsForGrantee(ctx, granteeID)
}

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger *slog.Logger
	db     *sql.DB

	// Managers
	txManager database.TxManager

	// Repositories
	identityRepo identityUsecase.IdentityRepository
	sessionRepo  sessionUsecase.SessionRepository
	tokenRepo    tokenUsecase.TokenRepository
	noteRepo     noteRepo
	taskRepo     taskRepo

	// Services
	credentialSvc identityService.CredentialService
	totpSvc       identityService.TotpService
	tokenSvc      tokenService.TokenService

	// Use Cases
	identityUseCase identityUsecase.UseCase
	sessionUseCase  sessionUsecase.UseCase
	tokenUseCase    tokenUsecase.UseCase
	noteUseCase     noteUsecase.UseCase
	taskUseCase     taskUsecase.UseCase
	authUseCase     authUsecase.UseCase

	// Observability
	metricsProvider *metrics.Provider

	// Servers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                  sync.Mutex
	loggerInit          sync.Once
	dbInit              sync.Once
	txManagerInit       sync.Once
	identityRepoInit    sync.Once
	sessionRepoInit     sync.Once
	tokenRepoInit       sync.Once
	noteRepoInit        sync.Once
	taskRepoInit        sync.Once
	identityUseCaseInit sync.Once
	sessionUseCaseInit  sync.Once
	tokenUseCaseInit    sync.Once
	noteUseCaseInit     sync.Once
	taskUseCaseInit     sync.Once
	authUseCaseInit     sync.Once
	metricsProviderInit sync.Once
	httpServerInit      sync.Once
	metricsServerInit   sync.Once
	initErrors          map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:        cfg,
		credentialSvc: identityService.NewCredentialService(),
		totpSvc:       identityService.NewTotpService(cfg.TotpIssuer),
		tokenSvc:      tokenService.NewTokenService(),
		initErrors:    make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection.
// It creates and configures the database connection on first access.
func (c *Container) DB() (*sql.DB, error) {
	c.dbInit.Do(func() {
		db, err := c.initDB()
		if err != nil {
			c.initErrors["db"] = err
			return
		}
		c.db = db
	})
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// TxManager returns the transaction manager.
// It requires a database connection to be initialized first.
func (c *Container) TxManager() (database.TxManager, error) {
	c.txManagerInit.Do(func() {
		txManager, err := c.initTxManager()
		if err != nil {
			c.initErrors["txManager"] = err
			return
		}
		c.txManager = txManager
	})
	if storedErr, exists := c.initErrors["txManager"]; exists {
		return nil, storedErr
	}
	return c.txManager, nil
}

// IdentityRepository returns the identity repository instance.
func (c *Container) IdentityRepository() (identityUsecase.IdentityRepository, error) {
	c.identityRepoInit.Do(func() {
		repo, err := c.initIdentityRepository()
		if err != nil {
			c.initErrors["identityRepo"] = err
			return
		}
		c.identityRepo = repo
	})
	if storedErr, exists := c.initErrors["identityRepo"]; exists {
		return nil, storedErr
	}
	return c.identityRepo, nil
}

// SessionRepository returns the session repository instance.
func (c *Container) SessionRepository() (sessionUsecase.SessionRepository, error) {
	c.sessionRepoInit.Do(func() {
		repo, err := c.initSessionRepository()
		if err != nil {
			c.initErrors["sessionRepo"] = err
			return
		}
		c.sessionRepo = repo
	})
	if storedErr, exists := c.initErrors["sessionRepo"]; exists {
		return nil, storedErr
	}
	return c.sessionRepo, nil
}

// TokenRepository returns the verification token repository instance.
func (c *Container) TokenRepository() (tokenUsecase.TokenRepository, error) {
	c.tokenRepoInit.Do(func() {
		repo, err := c.initTokenRepository()
		if err != nil {
			c.initErrors["tokenRepo"] = err
			return
		}
		c.tokenRepo = repo
	})
	if storedErr, exists := c.initErrors["tokenRepo"]; exists {
		return nil, storedErr
	}
	return c.tokenRepo, nil
}

// NoteRepository returns the note repository instance.
func (c *Container) NoteRepository() (noteRepo, error) {
	c.noteRepoInit.Do(func() {
		repo, err := c.initNoteRepository()
		if err != nil {
			c.initErrors["noteRepo"] = err
			return
		}
		c.noteRepo = repo
	})
	if storedErr, exists := c.initErrors["noteRepo"]; exists {
		return nil, storedErr
	}
	return c.noteRepo, nil
}

// TaskRepository returns the task repository instance.
func (c *Container) TaskRepository() (taskRepo, error) {
	c.taskRepoInit.Do(func() {
		repo, err := c.initTaskRepository()
		if err != nil {
			c.initErrors["taskRepo"] = err
			return
		}
		c.taskRepo = repo
	})
	if storedErr, exists := c.initErrors["taskRepo"]; exists {
		return nil, storedErr
	}
	return c.taskRepo, nil
}

// IdentityUseCase returns the identity use case instance.
func (c *Container) IdentityUseCase() (identityUsecase.UseCase, error) {
	c.identityUseCaseInit.Do(func() {
		useCase, err := c.initIdentityUseCase()
		if err != nil {
			c.initErrors["identityUseCase"] = err
			return
		}
		c.identityUseCase = useCase
	})
	if storedErr, exists := c.initErrors["identityUseCase"]; exists {
		return nil, storedErr
	}
	return c.identityUseCase, nil
}

// SessionUseCase returns the session use case instance.
func (c *Container) SessionUseCase() (sessionUsecase.UseCase, error) {
	c.sessionUseCaseInit.Do(func() {
		useCase, err := c.initSessionUseCase()
		if err != nil {
			c.initErrors["sessionUseCase"] = err
			return
		}
		c.sessionUseCase = useCase
	})
	if storedErr, exists := c.initErrors["sessionUseCase"]; exists {
		return nil, storedErr
	}
	return c.sessionUseCase, nil
}

// TokenUseCase returns the verification token use case instance.
func (c *Container) TokenUseCase() (tokenUsecase.UseCase, error) {
	c.tokenUseCaseInit.Do(func() {
		useCase, err := c.initTokenUseCase()
		if err != nil {
			c.initErrors["tokenUseCase"] = err
			return
		}
		c.tokenUseCase = useCase
	})
	if storedErr, exists := c.initErrors["tokenUseCase"]; exists {
		return nil, storedErr
	}
	return c.tokenUseCase, nil
}

// NoteUseCase returns the note use case instance.
func (c *Container) NoteUseCase() (noteUsecase.UseCase, error) {
	c.noteUseCaseInit.Do(func() {
		useCase, err := c.initNoteUseCase()
		if err != nil {
			c.initErrors["noteUseCase"] = err
			return
		}
		c.noteUseCase = useCase
	})
	if storedErr, exists := c.initErrors["noteUseCase"]; exists {
		return nil, storedErr
	}
	return c.noteUseCase, nil
}

// TaskUseCase returns the task use case instance.
func (c *Container) TaskUseCase() (taskUsecase.UseCase, error) {
	c.taskUseCaseInit.Do(func() {
		useCase, err := c.initTaskUseCase()
		if err != nil {
			c.initErrors["taskUseCase"] = err
			return
		}
		c.taskUseCase = useCase
	})
	if storedErr, exists := c.initErrors["taskUseCase"]; exists {
		return nil, storedErr
	}
	return c.taskUseCase, nil
}

// AuthUseCase returns the authentication use case instance.
func (c *Container) AuthUseCase() (authUsecase.UseCase, error) {
	c.authUseCaseInit.Do(func() {
		useCase, err := c.initAuthUseCase()
		if err != nil {
			c.initErrors["authUseCase"] = err
			return
		}
		c.authUseCase = useCase
	})
	if storedErr, exists := c.initErrors["authUseCase"]; exists {
		return nil, storedErr
	}
	return c.authUseCase, nil
}

// MetricsProvider returns the metrics provider instance. It is nil when
// metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	c.metricsProviderInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}
		provider, err := metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metricsProvider"] = err
			return
		}
		c.metricsProvider = provider
	})
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// HTTPServer returns the HTTP server instance.
func (c *Container) HTTPServer() (*http.Server, error) {
	c.httpServerInit.Do(func() {
		server, err := c.initHTTPServer()
		if err != nil {
			c.initErrors["httpServer"] = err
			return
		}
		c.httpServer = server
	})
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the metrics server instance. It is nil when metrics
// are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	c.metricsServerInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}
		provider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["metricsServer"] = err
			return
		}
		c.metricsServer = http.NewMetricsServer(
			c.config.ServerHost,
			c.config.MetricsPort,
			c.Logger(),
			provider,
		)
	})
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initDB creates and configures the database connection.
func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// initTxManager creates the transaction manager using the database connection.
func (c *Container) initTxManager() (database.TxManager, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
	}
	return database.NewTxManager(db), nil
}

// initIdentityRepository creates the identity repository instance.
func (c *Container) initIdentityRepository() (identityUsecase.IdentityRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for identity repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return identityRepository.NewMySQLIdentityRepository(db), nil
	case "postgres":
		return identityRepository.NewPostgreSQLIdentityRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initSessionRepository creates the session repository instance.
func (c *Container) initSessionRepository() (sessionUsecase.SessionRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for session repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return sessionRepository.NewMySQLSessionRepository(db), nil
	case "postgres":
		return sessionRepository.NewPostgreSQLSessionRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initTokenRepository creates the verification token repository instance.
func (c *Container) initTokenRepository() (tokenUsecase.TokenRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for token repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return tokenRepository.NewMySQLTokenRepository(db), nil
	case "postgres":
		return tokenRepository.NewPostgreSQLTokenRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initNoteRepository creates the note repository instance.
func (c *Container) initNoteRepository() (noteRepo, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for note repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return noteRepository.NewMySQLNoteRepository(db), nil
	case "postgres":
		return noteRepository.NewPostgreSQLNoteRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initTaskRepository creates the task repository instance.
func (c *Container) initTaskRepository() (taskRepo, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for task repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return taskRepository.NewMySQLTaskRepository(db), nil
	case "postgres":
		return taskRepository.NewPostgreSQLTaskRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initIdentityUseCase creates the identity use case with all its dependencies.
func (c *Container) initIdentityUseCase() (identityUsecase.UseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for identity use case: %w", err)
	}

	identityRepo, err := c.IdentityRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get identity repository for identity use case: %w", err)
	}

	noteRepo, err := c.NoteRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get note repository for identity use case: %w", err)
	}

	taskRepo, err := c.TaskRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get task repository for identity use case: %w", err)
	}

	statsRepo := &statsRepository{notes: noteRepo, tasks: taskRepo}

	return identityUsecase.NewIdentityUseCase(
		txManager,
		identityRepo,
		statsRepo,
		c.credentialSvc,
		c.totpSvc,
	), nil
}

// initSessionUseCase creates the session use case with all its dependencies.
func (c *Container) initSessionUseCase() (sessionUsecase.UseCase, error) {
	sessionRepo, err := c.SessionRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get session repository for session use case: %w", err)
	}

	return sessionUsecase.NewSessionUseCase(
		sessionRepo,
		c.tokenSvc,
		c.config.SessionLifetime,
	), nil
}

// initTokenUseCase creates the verification token use case with all its dependencies.
func (c *Container) initTokenUseCase() (tokenUsecase.UseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for token use case: %w", err)
	}

	tokenRepo, err := c.TokenRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get token repository for token use case: %w", err)
	}

	return tokenUsecase.NewTokenUseCase(
		txManager,
		tokenRepo,
		c.tokenSvc,
		c.config.ResetTokenLifetime,
		c.config.InviteTokenLifetime,
	), nil
}

// initNoteUseCase creates the note use case with all its dependencies.
func (c *Container) initNoteUseCase() (noteUsecase.UseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for note use case: %w", err)
	}

	noteRepo, err := c.NoteRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get note repository for note use case: %w", err)
	}

	identityRepo, err := c.IdentityRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get identity repository for note use case: %w", err)
	}

	return noteUsecase.NewNoteUseCase(txManager, noteRepo, identityRepo), nil
}

// initTaskUseCase creates the task use case with all its dependencies.
func (c *Container) initTaskUseCase() (taskUsecase.UseCase, error) {
	taskRepo, err := c.TaskRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get task repository for task use case: %w", err)
	}

	return taskUsecase.NewTaskUseCase(taskRepo), nil
}

// initAuthUseCase creates the authentication use case with all its dependencies.
func (c *Container) initAuthUseCase() (authUsecase.UseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for auth use case: %w", err)
	}

	identityUC, err := c.IdentityUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get identity use case for auth use case: %w", err)
	}

	sessionUC, err := c.SessionUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get session use case for auth use case: %w", err)
	}

	tokenUC, err := c.TokenUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get token use case for auth use case: %w", err)
	}

	useCase := authUsecase.NewAuthUseCase(
		txManager,
		identityUC,
		sessionUC,
		tokenUC,
		c.credentialSvc,
		c.totpSvc,
	)

	businessMetrics := metrics.NewNoOpBusinessMetrics()
	if c.config.MetricsEnabled {
		provider, err := c.MetricsProvider()
		if err != nil {
			return nil, fmt.Errorf("failed to get metrics provider for auth use case: %w", err)
		}
		businessMetrics, err = metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
		if err != nil {
			return nil, fmt.Errorf("failed to create business metrics for auth use case: %w", err)
		}
	}

	return authUsecase.NewAuthUseCaseWithMetrics(useCase, businessMetrics), nil
}

// initHTTPServer creates the HTTP server with all its dependencies.
func (c *Container) initHTTPServer() (*http.Server, error) {
	logger := c.Logger()

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for http server: %w", err)
	}

	authUC, err := c.AuthUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get auth use case for http server: %w", err)
	}

	identityUC, err := c.IdentityUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get identity use case for http server: %w", err)
	}

	sessionUC, err := c.SessionUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get session use case for http server: %w", err)
	}

	noteUC, err := c.NoteUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get note use case for http server: %w", err)
	}

	taskUC, err := c.TaskUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get task use case for http server: %w", err)
	}

	routerConfig := http.RouterConfig{
		AuthHandler:       authHTTP.NewAuthHandler(authUC, logger),
		ProfileHandler:    identityHTTP.NewProfileHandler(identityUC, logger),
		NoteHandler:       noteHTTP.NewNoteHandler(noteUC, logger),
		TaskHandler:       taskHTTP.NewTaskHandler(taskUC, logger),
		SessionMiddleware: authHTTP.SessionMiddleware(sessionUC, identityUC, logger),
		CORSEnabled:       c.config.CORSEnabled,
		CORSAllowOrigins:  c.config.CORSAllowOrigins,
	}

	if c.config.RateLimitEnabled {
		routerConfig.RateLimiter = authHTTP.IPRateLimitMiddleware(
			c.config.RateLimitRequestsPerSec,
			c.config.RateLimitBurst,
			logger,
		)
	}

	if c.config.MetricsEnabled {
		provider, err := c.MetricsProvider()
		if err != nil {
			return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
		}
		routerConfig.MeterProvider = provider.MeterProvider()
		routerConfig.MetricsNamespace = c.config.MetricsNamespace
	}

	server := http.NewServer(db, c.config.ServerHost, c.config.ServerPort, logger)
	server.SetupRouter(routerConfig)

	return server, nil
}
