package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/maxaizer/seekret-bot/internal/config"
	log "github.com/sirupsen/logrus"
)

const ErrorTypeField = "error_type"

const (
	ErrorTypeDb         = "db"
	ErrorTypeSourceApi  = "source_api"
	ErrorTypeTgApi      = "tg_api"
	ErrorTypeDispatcher = "dispatcher"
)

var logFile *os.File

func Setup(cfg config.LoggerConfig) {

	if err := os.MkdirAll(filepath.Dir(cfg.OutputFile), 0755); err != nil {
		log.Fatalf("Failed to create log directory: %v", err)
	}

	var err error
	logFile, err = os.OpenFile(cfg.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, logFile)
	log.SetOutput(multiWriter)

	log.SetFormatter(newFormatter())
	log.SetLevel(Level(cfg.LogLevel))
	addPrometheusHook()
}

// Level maps the configured level name onto logrus, defaulting to info.
func Level(level config.LogLevel) log.Level {
	switch level {
	case config.LevelDebug:
		return log.DebugLevel
	case config.LevelWarning:
		return log.WarnLevel
	case config.LevelError:
		return log.ErrorLevel
	case config.LevelFatal:
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

func newFormatter() *log.TextFormatter {
	return &log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02T15:04:05.000 -0700",
	}
}

func Cleanup() {
	if logFile != nil {
		_ = logFile.Close()
	}
}
