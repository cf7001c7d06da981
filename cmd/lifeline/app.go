package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/lifeline-api/internal/api"
	"github.com/phrazzld/lifeline-api/internal/config"
	"github.com/phrazzld/lifeline-api/internal/domain/scoring"
	"github.com/phrazzld/lifeline-api/internal/events"
	"github.com/phrazzld/lifeline-api/internal/platform/filestore"
	"github.com/phrazzld/lifeline-api/internal/platform/metrics"
	"github.com/phrazzld/lifeline-api/internal/platform/postgres"
	"github.com/phrazzld/lifeline-api/internal/redact"
	"github.com/phrazzld/lifeline-api/internal/service/donor"
	"github.com/phrazzld/lifeline-api/internal/service/forecast"
	"github.com/phrazzld/lifeline-api/internal/service/matching"
	"github.com/phrazzld/lifeline-api/internal/service/supply"
	"github.com/phrazzld/lifeline-api/internal/store"
	"github.com/phrazzld/lifeline-api/internal/task"
)

// application holds the shared dependencies of every command.
type application struct {
	config  *config.Config
	logger  *slog.Logger
	db      *sql.DB
	metrics *metrics.Registry

	inventory store.InventoryStore
	donors    store.DonorStore
	requests  store.RequestStore

	forecaster forecast.Forecaster
	trainable  *forecast.TrainableForecaster
	facade     *matching.Facade

	emitter    *events.InMemoryEventEmitter
	taskRunner *task.TaskRunner
}

// newApplication wires stores, the matching core and the task pipeline.
// The task runner is created but not started.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config:    cfg,
		logger:    logger,
		db:        db,
		metrics:   metrics.New(),
		inventory: postgres.NewPostgresInventoryStore(db, logger),
		donors:    postgres.NewPostgresDonorStore(db, logger),
		requests:  postgres.NewPostgresRequestStore(db, logger),
	}

	if err := app.setupForecaster(ctx); err != nil {
		return nil, err
	}
	if err := app.setupFacade(); err != nil {
		return nil, err
	}
	if err := app.setupTasks(ctx); err != nil {
		return nil, err
	}

	if app.trainable != nil && cfg.Forecast.RetrainOnStart {
		app.retrainOnStart(ctx)
	}
	return app, nil
}

// scoringParams applies the matching section of the config to the default
// scoring parameters.
func scoringParams(cfg config.MatchingConfig) *scoring.Params {
	return scoring.NewDefaultParams().
		WithSupplyPool(cfg.SupplyPoolSize).
		WithDonorSelection(cfg.DonorThreshold, cfg.DonorResultLimit)
}

// newModelStore selects where trained forecast models are persisted.
func newModelStore(cfg config.ForecastConfig, db *sql.DB, logger *slog.Logger) (store.ModelStore, error) {
	switch cfg.ModelStore {
	case "postgres":
		return postgres.NewPostgresModelStore(db, logger), nil
	case "file":
		return filestore.NewModelStore(cfg.ModelDir, logger), nil
	default:
		return nil, fmt.Errorf("unknown model store %q", cfg.ModelStore)
	}
}

// newTaskStore selects where task records are kept. Tasks a previous
// process left unfinished in postgres are marked failed.
func newTaskStore(ctx context.Context, cfg config.TaskConfig, db *sql.DB, logger *slog.Logger) (task.TaskStore, error) {
	switch cfg.Store {
	case "memory":
		return task.NewMemoryStore(0, nil), nil
	case "postgres":
		s := postgres.NewPostgresTaskStore(db, logger)
		if _, err := s.FailInterrupted(ctx); err != nil {
			return nil, fmt.Errorf("failed to recover interrupted tasks: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown task store %q", cfg.Store)
	}
}

func (app *application) setupForecaster(ctx context.Context) error {
	cfg := app.config.Forecast

	if cfg.Strategy == forecast.StrategyHeuristic {
		h, err := forecast.NewHeuristicForecaster(app.requests, forecast.HeuristicOptions{
			WindowDays: cfg.HistoryWindowDays,
			MinSamples: cfg.MinSamples,
		}, app.logger)
		if err != nil {
			return fmt.Errorf("failed to create heuristic forecaster: %w", err)
		}
		app.forecaster = h
		return nil
	}

	models, err := newModelStore(cfg, app.db, app.logger)
	if err != nil {
		return err
	}
	tf := forecast.NewTrainableForecaster(app.requests, models, forecast.TrainableOptions{
		ModelName: cfg.ModelName,
		Lambda:    cfg.RidgeLambda,
	}, app.logger)

	loaded, err := tf.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load forecast model: %w", err)
	}
	if loaded {
		m := tf.Model()
		app.metrics.SetModelVersion(m.Name, m.Version)
		app.logger.Info("forecast model loaded",
			slog.String("model_name", m.Name),
			slog.Int("version", m.Version))
	}

	app.forecaster = tf
	app.trainable = tf
	return nil
}

func (app *application) setupFacade() error {
	params := scoringParams(app.config.Matching)
	workers := app.config.Matching.DistanceWorkers

	searcher, err := supply.NewSearcher(app.inventory, params, app.logger, supply.WithWorkers(workers))
	if err != nil {
		return fmt.Errorf("failed to create supply searcher: %w", err)
	}
	matcher, err := donor.NewMatcher(app.donors, params, app.logger, donor.WithWorkers(workers))
	if err != nil {
		return fmt.Errorf("failed to create donor matcher: %w", err)
	}

	deps := matching.Deps{
		Supply:     searcher,
		Donors:     matcher,
		Forecaster: app.forecaster,
		Inventory:  app.inventory,
	}
	if app.trainable != nil {
		deps.Trainer = app.trainable
	}

	app.facade, err = matching.NewFacade(deps, app.logger,
		matching.WithHistoryDays(app.config.Forecast.HistoryWindowDays),
		matching.WithRecorder(app.metrics))
	if err != nil {
		return fmt.Errorf("failed to create matching facade: %w", err)
	}
	return nil
}

func (app *application) setupTasks(ctx context.Context) error {
	taskStore, err := newTaskStore(ctx, app.config.Tasks, app.db, app.logger)
	if err != nil {
		return err
	}

	app.taskRunner = task.NewTaskRunner(taskStore, task.TaskRunnerConfig{
		WorkerCount: app.config.Tasks.WorkerCount,
		QueueSize:   app.config.Tasks.QueueSize,
		TaskTimeout: app.config.Tasks.Timeout,
	}, app.logger, task.WithRecorder(app.metrics))

	factory := task.NewForecastRetrainTaskFactory(app.facade, app.logger)
	app.emitter = events.NewInMemoryEventEmitter(app.logger)
	app.emitter.RegisterHandler(
		task.NewTaskFactoryEventHandler(factory, app.taskRunner, app.logger),
		events.TypeForecastRetrain,
	)
	return nil
}

// retrainOnStart fits the forecaster before serving. Failure leaves the
// previously loaded model, if any, in place.
func (app *application) retrainOnStart(ctx context.Context) {
	resp := app.facade.RetrainForecaster(ctx)
	if resp.Error != nil {
		app.logger.Warn("retrain on start failed",
			slog.String("failure_kind", string(resp.Error.Kind)),
			slog.String("error", redact.Error(resp.Error)))
		return
	}
	app.logger.Info("retrained forecaster on start",
		slog.Int("version", resp.Data.Version),
		slog.Int("training_rows", resp.Data.TrainingRows))
}

func (app *application) router() http.Handler {
	return api.NewRouter(api.RouterDeps{
		Matching:       app.facade,
		Forecast:       app.facade,
		Emitter:        app.emitter,
		Tasks:          app.taskRunner,
		Metrics:        app.metrics,
		MetricsHandler: app.metrics.Handler(),
		DB:             app.db,
		Logger:         app.logger,
	})
}

func (app *application) start() {
	app.taskRunner.Start()
}

// stop drains the task runner.
func (app *application) stop(ctx context.Context) error {
	return app.taskRunner.Stop(ctx)
}
