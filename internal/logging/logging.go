// Package logging configures the process logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rifflock/lfshook"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/PratikDhanave/safedrive-service/internal/config"
)

// New returns a logger writing colored text to stdout and, when cfg.LogFile is
// set, plain text to a rotating file.
func New(cfg config.Config) (*log.Logger, error) {
	return newLogger(cfg, os.Stdout)
}

func newLogger(cfg config.Config, console io.Writer) (*log.Logger, error) {
	logger := log.New()
	logger.SetLevel(cfg.GetLogLevel())
	logger.SetFormatter(&log.TextFormatter{ForceColors: true, FullTimestamp: false})
	logger.SetOutput(console)

	if cfg.LogFile == "" {
		return logger, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    100,
		MaxBackups: 30,
		MaxAge:     cfg.LogMaxAgeDays,
		Compress:   true,
	}

	fileFmt := &log.TextFormatter{DisableColors: true, FullTimestamp: true}
	logger.AddHook(lfshook.NewHook(lfshook.WriterMap{
		log.PanicLevel: rotator,
		log.FatalLevel: rotator,
		log.ErrorLevel: rotator,
		log.WarnLevel:  rotator,
		log.InfoLevel:  rotator,
		log.DebugLevel: rotator,
		log.TraceLevel: rotator,
	}, fileFmt))

	return logger, nil
}
