package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/todoplanner/apigateway/internal/config"
	"github.com/todoplanner/apigateway/internal/database"
	"github.com/todoplanner/apigateway/internal/domain"
	"github.com/todoplanner/apigateway/internal/handler"
	"github.com/todoplanner/apigateway/internal/logger"
	"github.com/todoplanner/apigateway/internal/reminder"
	"github.com/todoplanner/apigateway/internal/repository"
	"github.com/todoplanner/apigateway/internal/search"
	"github.com/todoplanner/apigateway/internal/service"
	"github.com/todoplanner/apigateway/pkg/googlecloud"
)

type App struct {
	Echo *echo.Echo

	DB        *sql.DB                // set when STORAGE_DRIVER=postgres
	Datastore *googlecloud.TodoStore // set when STORAGE_DRIVER=datastore

	engine     *reminder.Engine
	dispatcher *reminder.Dispatcher
}

func NewApp() *App {
	return &App{
		Echo: echo.New(),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	if err := config.LoadEnvConfig(); err != nil {
		return fmt.Errorf("failed to load env config: %w", err)
	}

	logger.InitLogging(config.DefaultEnvConfig.LOG_FILE_PATH)
	logger.InfoLog(ctx, "Environment variables loaded successfully")

	repo, err := a.initStorage(ctx)
	if err != nil {
		return err
	}

	// Search is optional: without an Elastic URL the search endpoint reports
	// it as not configured and everything else keeps working.
	var indexer service.SearchIndexer
	if url := config.DefaultEnvConfig.ELASTIC_URL; url != "" {
		es, err := search.NewElasticIndexer(ctx, url, config.DefaultEnvConfig.ELASTIC_INDEX)
		if err != nil {
			logger.WarnLog(ctx, "elasticsearch unavailable, search disabled: %v", err)
		} else {
			indexer = es
		}
	}

	svc := service.NewTodoService(repo, indexer)

	a.dispatcher = reminder.NewDispatcher()
	a.engine = reminder.NewEngine(repo, config.DefaultEnvConfig.REMINDER_POLL_INTERVAL)
	a.engine.SetNotifier(a.dispatcher.Notify)

	todoHandler := handler.NewTodoHandler(svc)
	reminderHandler := handler.NewReminderHandler(a.engine, a.dispatcher.History())
	exportHandler := handler.NewExportHandler(svc, config.DefaultEnvConfig.EXPORT_CONFIG_PATH)

	a.RegisterMiddlewares()
	a.RegisterRoutes(todoHandler, reminderHandler, exportHandler)

	return nil
}

// initStorage picks the record store from STORAGE_DRIVER. The memory driver
// exists for local development and tests.
func (a *App) initStorage(ctx context.Context) (domain.TodoRepository, error) {
	driver := config.DefaultEnvConfig.STORAGE_DRIVER
	switch driver {
	case "postgres":
		db, err := database.NewPostgresDB(ctx, database.Config{
			Host:            config.DefaultEnvConfig.DB_HOST,
			Port:            config.DefaultEnvConfig.DB_PORT,
			User:            config.DefaultEnvConfig.DB_USER,
			Password:        config.DefaultEnvConfig.DB_PASSWORD,
			DBName:          config.DefaultEnvConfig.DB_NAME,
			SSLMode:         config.DefaultEnvConfig.DB_SSL_MODE,
			MaxOpenConns:    config.DefaultEnvConfig.DB_MAX_OPEN_CONNS,
			MaxIdleConns:    config.DefaultEnvConfig.DB_MAX_IDLE_CONNS,
			ConnMaxLifetime: config.DefaultEnvConfig.DB_CONN_MAX_LIFETIME,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		a.DB = db

		repo := repository.NewPostgresTodoRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("failed to ensure schema: %w", err)
		}
		return repo, nil

	case "datastore":
		store, err := googlecloud.NewTodoStore(ctx, config.DefaultEnvConfig.GCP_PROJECT_ID)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize datastore: %w", err)
		}
		a.Datastore = store
		return store, nil

	case "memory":
		logger.WarnLog(ctx, "using in-memory storage, records are lost on restart")
		return repository.NewMemoryTodoRepository(), nil

	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", driver)
	}
}

func (a *App) RegisterMiddlewares() {
	a.Echo.Use(middleware.Logger())
	a.Echo.Use(middleware.Recover())
	a.Echo.Use(middleware.CORS())
}

func (a *App) RegisterRoutes(todoHandler *handler.TodoHandler, reminderHandler *handler.ReminderHandler, exportHandler *handler.ExportHandler) {
	a.Echo.POST("/todos", todoHandler.CreateHandler)
	a.Echo.GET("/todos", todoHandler.ListHandler)
	a.Echo.GET("/todos/search", todoHandler.SearchHandler)
	a.Echo.GET("/todos/:id", todoHandler.GetHandler)
	a.Echo.DELETE("/todos/:id", todoHandler.DeleteHandler)
	a.Echo.PATCH("/todos/:id/done", todoHandler.UpdateDoneHandler)
	a.Echo.PATCH("/todos/:id/status", todoHandler.UpdateStatusHandler)
	a.Echo.PATCH("/todos/:id/start-time", todoHandler.UpdateStartTimeHandler)
	a.Echo.PATCH("/todos/:id/end-time", todoHandler.UpdateEndTimeHandler)

	reminderGroup := a.Echo.Group("/reminders")
	reminderGroup.GET("/pending", reminderHandler.PendingHandler)
	reminderGroup.POST("/resolve", reminderHandler.ResolveHandler)
	reminderGroup.POST("/close", reminderHandler.CloseHandler)
	reminderGroup.GET("/history", reminderHandler.HistoryHandler)

	exportGroup := a.Echo.Group("/export")
	exportGroup.GET("/todos", exportHandler.ExportTodosHandler)
}

// Run starts the reminder poller and the HTTP server, then blocks until
// SIGINT/SIGTERM and shuts both down in order.
func (a *App) Run(ctx context.Context) error {
	engineCtx, stopEngine := context.WithCancel(ctx)
	defer stopEngine()
	go a.engine.Run(engineCtx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Echo.Start(":" + config.DefaultEnvConfig.APP_PORT)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		a.shutdown(ctx)
		return err
	case sig := <-sigCh:
		logger.InfoLog(ctx, "received %s, shutting down", sig)
	}

	stopEngine()

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := a.Echo.Shutdown(shutdownCtx); err != nil {
		logger.ErrorLog(ctx, "http shutdown failed: %v", err)
	}

	a.shutdown(ctx)
	return nil
}

func (a *App) shutdown(ctx context.Context) {
	if a.dispatcher != nil {
		a.dispatcher.Shutdown()
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			logger.ErrorLog(ctx, "closing database failed: %v", err)
		}
	}
	if a.Datastore != nil {
		if err := a.Datastore.Close(); err != nil {
			logger.ErrorLog(ctx, "closing datastore failed: %v", err)
		}
	}
}
