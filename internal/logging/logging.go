package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rifflock/lfshook"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"nmea-movie/internal/config"
)

// ParseLevel maps the config level names onto logrus levels. Unknown names
// fall back to info.
func ParseLevel(s string) log.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// Configure sets up the standard logger. Diagnostics always go to console
// (stderr in production), never to stdout, which the simulator uses for data.
// When cfg.File is set every level is also written to a rotated log file.
func Configure(cfg config.LogConfig, console io.Writer) error {
	if console == nil {
		console = os.Stderr
	}
	log.SetLevel(ParseLevel(cfg.Level))
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetOutput(console)
	log.StandardLogger().ReplaceHooks(make(log.LevelHooks))

	if cfg.File == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	rotated := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    100,
		MaxBackups: 10,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}
	fileFmt := &log.TextFormatter{DisableColors: true, FullTimestamp: true}
	log.AddHook(lfshook.NewHook(lfshook.WriterMap{
		log.PanicLevel: rotated,
		log.FatalLevel: rotated,
		log.ErrorLevel: rotated,
		log.WarnLevel:  rotated,
		log.InfoLevel:  rotated,
		log.DebugLevel: rotated,
		log.TraceLevel: rotated,
	}, fileFmt))
	return nil
}
