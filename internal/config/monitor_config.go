package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type MonitorConfig struct {
	PollInterval         time.Duration `mapstructure:"poll_interval"`
	SearchLocation       string        `mapstructure:"search_location"`
	PageSize             int           `mapstructure:"page_size"`
	SortMode             string        `mapstructure:"sort_mode"`
	MaxRequestsPerSecond float32       `mapstructure:"max_requests_per_second"`
	SavedJobsRetention   time.Duration `mapstructure:"saved_jobs_retention"`
}

func (config MonitorConfig) validate() error {
	var errs []error

	if config.PollInterval < time.Second {
		errs = append(errs, fmt.Errorf("poll_interval must be at least 1s"))
	}
	if config.SearchLocation == "" {
		errs = append(errs, fmt.Errorf("missing variable: search_location"))
	}
	if config.PageSize < 1 || config.PageSize > 100 {
		errs = append(errs, fmt.Errorf("page_size must be between 1 and 100"))
	}
	if config.MaxRequestsPerSecond <= 0 {
		errs = append(errs, fmt.Errorf("max_requests_per_second must be positive"))
	}
	if config.SavedJobsRetention < 24*time.Hour {
		errs = append(errs, fmt.Errorf("saved_jobs_retention must be at least 24h"))
	}

	return errors.Join(errs...)
}

func (config MonitorConfig) bindEnvironmentVariables(v *viper.Viper) error {
	return bindAll(v, map[string]string{
		"monitor.poll_interval":   "POLL_INTERVAL",
		"monitor.search_location": "SEARCH_LOCATION",
	})
}

type FilterConfig struct {
	SalaryMin         float64  `mapstructure:"salary_min"`
	ExcludedCompanies []string `mapstructure:"excluded_companies"`
	RequiredKeywords  []string `mapstructure:"required_keywords"`
	ExcludedKeywords  []string `mapstructure:"excluded_keywords"`
}

func (config FilterConfig) validate() error {
	if config.SalaryMin < 0 {
		return fmt.Errorf("salary_min must not be negative")
	}
	return nil
}

func (config FilterConfig) bindEnvironmentVariables(v *viper.Viper) error {
	return bindAll(v, map[string]string{
		"filter.salary_min":         "SALARY_MIN",
		"filter.excluded_companies": "EXCLUDED_COMPANIES",
		"filter.required_keywords":  "REQUIRED_KEYWORDS",
		"filter.excluded_keywords":  "EXCLUDED_KEYWORDS",
	})
}

type DeliveryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	BaseDelay   time.Duration `mapstructure:"base_delay"`
}

func (config DeliveryConfig) validate() error {
	var errs []error
	if config.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("max_attempts must be at least 1"))
	}
	if config.BaseDelay <= 0 {
		errs = append(errs, fmt.Errorf("base_delay must be positive"))
	}
	return errors.Join(errs...)
}

func (config DeliveryConfig) bindEnvironmentVariables(_ *viper.Viper) error {
	return nil
}

type DispatcherConfig struct {
	FlushSize     int           `mapstructure:"flush_size"`
	FlushInterval time.Duration `mapstructure:"flush_interval"`
	ChunkSize     int           `mapstructure:"chunk_size"`
	QueueSize     int           `mapstructure:"queue_size"`
	CoalesceDelay time.Duration `mapstructure:"coalesce_delay"`
}

func (config DispatcherConfig) validate() error {
	var errs []error
	if config.FlushSize < 1 {
		errs = append(errs, fmt.Errorf("flush_size must be positive"))
	}
	if config.FlushInterval <= 0 {
		errs = append(errs, fmt.Errorf("flush_interval must be positive"))
	}
	if config.ChunkSize < 1 {
		errs = append(errs, fmt.Errorf("chunk_size must be positive"))
	}
	if config.QueueSize < 1 {
		errs = append(errs, fmt.Errorf("queue_size must be positive"))
	}
	return errors.Join(errs...)
}

func (config DispatcherConfig) bindEnvironmentVariables(_ *viper.Viper) error {
	return nil
}
