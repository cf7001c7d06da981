package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Matching MatchingConfig `mapstructure:"matching" validate:"required"`
	Forecast ForecastConfig `mapstructure:"forecast" validate:"required"`
	Tasks    TaskConfig     `mapstructure:"tasks" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL          string `mapstructure:"url" validate:"required,url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"gte=0"`
	AutoMigrate  bool   `mapstructure:"auto_migrate"`
}

// MatchingConfig tunes supply search and donor matching.
type MatchingConfig struct {
	SupplyPoolSize   int     `mapstructure:"supply_pool_size" validate:"gt=0,lte=50"`
	DonorResultLimit int     `mapstructure:"donor_result_limit" validate:"gt=0,lte=100"`
	DonorThreshold   float64 `mapstructure:"donor_threshold" validate:"gte=0,lt=1"`
	DistanceWorkers  int     `mapstructure:"distance_workers" validate:"gt=0"`
}

// ForecastConfig selects and tunes the demand forecaster.
type ForecastConfig struct {
	// Strategy is either "heuristic" or "trained".
	Strategy          string  `mapstructure:"strategy" validate:"required,oneof=heuristic trained"`
	ModelName         string  `mapstructure:"model_name" validate:"required"`
	ModelStore        string  `mapstructure:"model_store" validate:"required,oneof=postgres file"`
	ModelDir          string  `mapstructure:"model_dir" validate:"required_if=ModelStore file"`
	HistoryWindowDays int     `mapstructure:"history_window_days" validate:"gt=0"`
	MinSamples        int     `mapstructure:"min_samples" validate:"gt=0"`
	RidgeLambda       float64 `mapstructure:"ridge_lambda" validate:"gte=0"`
	RetrainOnStart    bool    `mapstructure:"retrain_on_start"`
}

// TaskConfig sizes the background task queue and worker pool and selects
// where task records are kept.
type TaskConfig struct {
	WorkerCount int           `mapstructure:"worker_count" validate:"gt=0"`
	QueueSize   int           `mapstructure:"queue_size" validate:"gt=0"`
	Timeout     time.Duration `mapstructure:"timeout" validate:"gt=0"`
	Store       string        `mapstructure:"store" validate:"required,oneof=memory postgres"`
}
