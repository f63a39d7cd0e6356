package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type BotConfig struct {
	Token                 string  `mapstructure:"token"`
	JobsChatID            int64   `mapstructure:"jobs_chat_id"`
	SavedJobsChatID       int64   `mapstructure:"saved_jobs_chat_id"`
	LogsChatID            int64   `mapstructure:"logs_chat_id"`
	SendRequestsPerSecond float32 `mapstructure:"send_requests_per_second"`
}

func (config BotConfig) validate() error {

	var missingFields []string

	if config.Token == "" {
		missingFields = append(missingFields, "token")
	}

	if config.JobsChatID == 0 {
		missingFields = append(missingFields, "jobs_chat_id")
	}

	if config.SavedJobsChatID == 0 {
		missingFields = append(missingFields, "saved_jobs_chat_id")
	}

	if len(missingFields) > 0 {
		return fmt.Errorf("missing required variables: %s", strings.Join(missingFields, ", "))
	}

	if config.SendRequestsPerSecond <= 0 {
		return fmt.Errorf("send_requests_per_second must be positive")
	}

	return nil
}

func (config BotConfig) bindEnvironmentVariables(v *viper.Viper) error {
	return bindAll(v, map[string]string{
		"bot.token":              "TOKEN",
		"bot.jobs_chat_id":       "JOBS_CHAT_ID",
		"bot.saved_jobs_chat_id": "SAVED_JOBS_CHAT_ID",
		"bot.logs_chat_id":       "LOGS_CHAT_ID",
	})
}
