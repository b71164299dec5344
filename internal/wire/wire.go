// Package wire provides dependency injection for permitdesk.
// It creates singleton services with lazy initialization.
package wire

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"sync"

	cliadapter "github.com/example/permitdesk/internal/adapters/cli"
	redisadapter "github.com/example/permitdesk/internal/adapters/redis"
	"github.com/example/permitdesk/internal/adapters/sqlite"
	"github.com/example/permitdesk/internal/app"
	"github.com/example/permitdesk/internal/config"
	"github.com/example/permitdesk/internal/core/ticket"
	"github.com/example/permitdesk/internal/db"
	"github.com/example/permitdesk/internal/logging"
	"github.com/example/permitdesk/internal/metrics"
	"github.com/example/permitdesk/internal/ports/primary"
	"github.com/example/permitdesk/internal/ports/secondary"
)

var (
	cfg         *config.Config
	database    *sql.DB
	logger      *slog.Logger
	instruments *metrics.Metrics
	executor    *app.DefaultEffectExecutor
	redisClient *redisadapter.Client

	ticketService    primary.TicketService
	templateService  primary.TemplateService
	permitService    primary.PermitService
	checklistService primary.ChecklistService
	personService    primary.PersonService
	taskService      primary.TaskService
	resolver         primary.TicketResolver
	registries       map[ticket.Kind]primary.RegistryService

	once     sync.Once
	shutdown sync.Once
)

// Config returns the loaded configuration for the working directory.
func Config() *config.Config {
	once.Do(initServices)
	return cfg
}

// DB returns the shared database handle.
func DB() *sql.DB {
	once.Do(initServices)
	return database
}

// Logger returns the process logger.
func Logger() *slog.Logger {
	once.Do(initServices)
	return logger
}

// TicketService returns the singleton TicketService instance.
func TicketService() primary.TicketService {
	once.Do(initServices)
	return ticketService
}

// TemplateService returns the singleton TemplateService instance.
func TemplateService() primary.TemplateService {
	once.Do(initServices)
	return templateService
}

// PermitService returns the singleton PermitService instance.
func PermitService() primary.PermitService {
	once.Do(initServices)
	return permitService
}

// ChecklistService returns the singleton ChecklistService instance.
func ChecklistService() primary.ChecklistService {
	once.Do(initServices)
	return checklistService
}

// PersonService returns the singleton PersonService instance.
func PersonService() primary.PersonService {
	once.Do(initServices)
	return personService
}

// TaskService returns the singleton TaskService instance.
func TaskService() primary.TaskService {
	once.Do(initServices)
	return taskService
}

// TicketResolver returns the singleton TicketResolver instance.
func TicketResolver() primary.TicketResolver {
	once.Do(initServices)
	return resolver
}

// RegistryService returns the service for one registry kind.
func RegistryService(kind ticket.Kind) primary.RegistryService {
	once.Do(initServices)
	return registries[kind]
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	if err := build(); err != nil {
		log.Fatalf("failed to initialize permitdesk: %v", err)
	}
}

func build() error {
	dir, err := os.Getwd()
	if err != nil {
		return err
	}
	cfg, err = config.LoadConfig(dir)
	if err != nil {
		return err
	}

	logger = logging.New(os.Stderr, cfg.Log)
	instruments = metrics.New()

	database, err = db.Open(cfg.Database.Path, cfg.Database.BusyTimeout.Duration)
	if err != nil {
		return err
	}

	var invalidator secondary.CacheInvalidator = redisadapter.NoopInvalidator{}
	redisClient, err = redisadapter.New(context.Background(), cfg.Redis)
	switch {
	case err != nil:
		logger.Warn("redis unavailable, cache invalidation disabled", "error", err)
	case redisClient != nil:
		invalidator = redisadapter.NewInvalidator(redisClient, cfg.Redis.Channel)
	}
	executor = app.NewEffectExecutor(invalidator, logger)

	tx := sqlite.NewTransactor(database,
		sqlite.WithTxTimeout(cfg.Database.TxTimeout.Duration),
		sqlite.WithTxMetrics(instruments))

	opts := []app.Option{
		app.WithLogger(logger),
		app.WithMetrics(instruments),
		app.WithEffectExecutor(executor),
		app.WithRetry(cfg.Tickets.MaxRetries, cfg.Tickets.RetryBackoff.Duration),
		app.WithApprovalPolicy(cfg.Approval.RequireCompletedChecklist),
	}

	// Create repository adapters (secondary ports) - sqlite adapters with injected DB
	personRepo := sqlite.NewPersonRepository(database)
	templateRepo := sqlite.NewTemplateRepository(database)
	permitRepo := sqlite.NewPermitRepository(database)
	itemRepo := sqlite.NewChecklistItemRepository(database)
	historyRepo := sqlite.NewHistoryRepository(database)
	taskRepo := sqlite.NewTaskRepository(database)
	registryRepos := []secondary.RegistryRepository{
		sqlite.NewVehicleRepository(database),
		sqlite.NewImportPermitRepository(database),
		sqlite.NewCompanyRegistrationRepository(database),
	}

	// Create services (primary ports implementation)
	tickets := app.NewTicketAllocator(sqlite.NewSequenceRepository(database), opts...)
	ticketService = tickets
	templateService = app.NewTemplateService(tx, templateRepo, opts...)
	permitService = app.NewPermitService(tx, personRepo, templateRepo, permitRepo, itemRepo, historyRepo, tickets, opts...)
	checklistService = app.NewChecklistService(tx, permitRepo, itemRepo, opts...)
	personService = app.NewPersonService(tx, personRepo, permitRepo, taskRepo, tickets, opts...)
	taskService = app.NewTaskService(tx, taskRepo, personRepo, permitRepo, opts...)

	registries = make(map[ticket.Kind]primary.RegistryService, len(registryRepos))
	for _, repo := range registryRepos {
		svc, err := app.NewRegistryService(tx, repo, personRepo, tickets, opts...)
		if err != nil {
			return err
		}
		registries[repo.Kind()] = svc
	}

	resolver, err = app.NewTicketResolver(personRepo, permitRepo, itemRepo, historyRepo, registryRepos, opts...)
	return err
}

// Shutdown waits for in-flight invalidations, writes the metrics textfile and
// closes connections. It is a no-op when nothing was initialized.
func Shutdown() error {
	var errs []error
	shutdown.Do(func() {
		if database == nil {
			return
		}
		executor.Wait()
		if err := instruments.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			errs = append(errs, err)
		}
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close redis: %w", err))
			}
		}
		if err := database.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	})
	return errors.Join(errs...)
}

// PermitAdapter returns a new PermitAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func PermitAdapter() *cliadapter.PermitAdapter {
	return PermitAdapterWithOutput(os.Stdout)
}

// PermitAdapterWithOutput returns a new PermitAdapter writing to the given output.
func PermitAdapterWithOutput(out io.Writer) *cliadapter.PermitAdapter {
	once.Do(initServices)
	return cliadapter.NewPermitAdapter(permitService, checklistService, out)
}

// TicketAdapter returns a new TicketAdapter writing to stdout.
func TicketAdapter() *cliadapter.TicketAdapter {
	return TicketAdapterWithOutput(os.Stdout)
}

// TicketAdapterWithOutput returns a new TicketAdapter writing to the given output.
func TicketAdapterWithOutput(out io.Writer) *cliadapter.TicketAdapter {
	once.Do(initServices)
	return cliadapter.NewTicketAdapter(resolver, ticketService, out)
}
