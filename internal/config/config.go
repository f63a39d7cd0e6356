package config

import (
	"errors"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	Port       int              `mapstructure:"port"`
	Logger     LoggerConfig     `mapstructure:"logger"`
	Bot        BotConfig        `mapstructure:"bot"`
	DB         DBConfig         `mapstructure:"db"`
	Monitor    MonitorConfig    `mapstructure:"monitor"`
	Filter     FilterConfig     `mapstructure:"filter"`
	Delivery   DeliveryConfig   `mapstructure:"delivery"`
	Dispatcher DispatcherConfig `mapstructure:"dispatcher"`
}

const defaultConfigFile = "./configs/config.yaml"

type section interface {
	validate() error
	bindEnvironmentVariables(v *viper.Viper) error
}

func Get() *Config {

	configFile := defaultConfigFile
	if value, ok := os.LookupEnv("CONFIG_PATH"); ok && value != "" {
		configFile = value
	}

	config, err := loadConfig(configFile)
	if err != nil {
		log.Fatal(err)
	}

	return config
}

func loadConfig(file string) (*Config, error) {

	v := viper.New()
	v.SetConfigFile(file)

	v.SetDefault("port", 8080)
	setDefaults(v)

	if err := bindEnvironmentVariables(v); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	config := Config{}
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.log_level", LevelInfo)
	v.SetDefault("logger.app_name", "seekret-bot")
	v.SetDefault("logger.output_file", "./logs/bot.log")
	v.SetDefault("bot.send_requests_per_second", 1)
	v.SetDefault("monitor.poll_interval", "5m")
	v.SetDefault("monitor.search_location", "Hobart TAS 7000")
	v.SetDefault("monitor.page_size", 22)
	v.SetDefault("monitor.sort_mode", "ListedDate")
	v.SetDefault("monitor.max_requests_per_second", 1)
	v.SetDefault("monitor.saved_jobs_retention", "2160h")
	v.SetDefault("delivery.max_attempts", 3)
	v.SetDefault("delivery.base_delay", "1s")
	v.SetDefault("dispatcher.flush_size", 1500)
	v.SetDefault("dispatcher.flush_interval", "5s")
	v.SetDefault("dispatcher.chunk_size", 3500)
	v.SetDefault("dispatcher.queue_size", 4096)
	v.SetDefault("dispatcher.coalesce_delay", "100ms")
}

func (config *Config) sections() map[string]section {
	return map[string]section{
		"LoggerConfig":     config.Logger,
		"BotConfig":        config.Bot,
		"DBConfig":         config.DB,
		"MonitorConfig":    config.Monitor,
		"FilterConfig":     config.Filter,
		"DeliveryConfig":   config.Delivery,
		"DispatcherConfig": config.Dispatcher,
	}
}

func bindEnvironmentVariables(v *viper.Viper) error {
	var errs []error

	if err := v.BindEnv("port", "PORT"); err != nil {
		errs = append(errs, err)
	}

	for name, s := range (&Config{}).sections() {
		if err := s.bindEnvironmentVariables(v); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}

func (config Config) validate() error {
	var errs []error

	if config.Port <= 0 {
		errs = append(errs, fmt.Errorf("invalid port: %d", config.Port))
	}

	for name, s := range config.sections() {
		if err := s.validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}
