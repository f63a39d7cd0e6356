package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigFile = "testdata/config.yaml"

func Test_Config_WhenOnlyFile_ShouldApplyDefaults(t *testing.T) {

	assert := assert.New(t)

	cfg, err := loadConfig(testConfigFile)
	require.NoError(t, err)

	assert.Equal(9090, cfg.Port)
	assert.Equal(LevelDebug, cfg.Logger.LogLevel)
	assert.Equal("seekret-bot", cfg.Logger.AppName)
	assert.Equal("file-token", cfg.Bot.Token)
	assert.Equal(int64(-1001), cfg.Bot.JobsChatID)
	assert.Equal(int64(0), cfg.Bot.LogsChatID)
	assert.Equal(2*time.Minute, cfg.Monitor.PollInterval)
	assert.Equal("Hobart TAS 7000", cfg.Monitor.SearchLocation)
	assert.Equal(22, cfg.Monitor.PageSize)
	assert.Equal("ListedDate", cfg.Monitor.SortMode)
	assert.Equal(90*24*time.Hour, cfg.Monitor.SavedJobsRetention)
	assert.Equal(40.0, cfg.Filter.SalaryMin)
	assert.Equal([]string{"Bad Corp"}, cfg.Filter.ExcludedCompanies)
	assert.Equal(3, cfg.Delivery.MaxAttempts)
	assert.Equal(time.Second, cfg.Delivery.BaseDelay)
	assert.Equal(1500, cfg.Dispatcher.FlushSize)
	assert.Equal(3*time.Second, cfg.Dispatcher.FlushInterval)
	assert.Equal(100*time.Millisecond, cfg.Dispatcher.CoalesceDelay)
}

func Test_Config_EnvironmentOverrideWorksCorrect(t *testing.T) {

	assert := assert.New(t)

	t.Setenv("TOKEN", "overrideToken")
	t.Setenv("JOBS_CHAT_ID", "-42")
	t.Setenv("LOGS_CHAT_ID", "-43")
	t.Setenv("DB_CONNECTION_STRING", "newConnectionString")
	t.Setenv("LOG_LEVEL", "WARNING")
	t.Setenv("POLL_INTERVAL", "90s")
	t.Setenv("SEARCH_LOCATION", "Launceston TAS 7250")
	t.Setenv("SALARY_MIN", "55.5")
	t.Setenv("EXCLUDED_COMPANIES", "Acme,Globex")
	t.Setenv("REQUIRED_KEYWORDS", "golang")

	cfg, err := loadConfig(testConfigFile)
	require.NoError(t, err)

	assert.Equal("overrideToken", cfg.Bot.Token)
	assert.Equal(int64(-42), cfg.Bot.JobsChatID)
	assert.Equal(int64(-43), cfg.Bot.LogsChatID)
	assert.Equal("newConnectionString", cfg.DB.ConnectionString)
	assert.Equal(LevelWarning, cfg.Logger.LogLevel)
	assert.Equal(90*time.Second, cfg.Monitor.PollInterval)
	assert.Equal("Launceston TAS 7250", cfg.Monitor.SearchLocation)
	assert.Equal(55.5, cfg.Filter.SalaryMin)
	assert.Equal([]string{"Acme", "Globex"}, cfg.Filter.ExcludedCompanies)
	assert.Equal([]string{"golang"}, cfg.Filter.RequiredKeywords)
}

func Test_Config_WhenInvalid_ShouldReportEverySection(t *testing.T) {

	assert := assert.New(t)

	t.Setenv("JOBS_CHAT_ID", "0")
	t.Setenv("POLL_INTERVAL", "10ms")
	t.Setenv("LOG_LEVEL", "LOUD")

	_, err := loadConfig(testConfigFile)
	require.Error(t, err)

	assert.Contains(err.Error(), "BotConfig")
	assert.Contains(err.Error(), "jobs_chat_id")
	assert.Contains(err.Error(), "MonitorConfig")
	assert.Contains(err.Error(), "unknown log_level")
}
