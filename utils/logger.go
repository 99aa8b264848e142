package utils

import (
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

const (
	ServiceName = "auction-marketplace"

	isoTimestamp = "2006-01-02T15:04:05Z07:00"
)

// every entry carries the service name so logs of several processes can share a sink
var base = log.WithField("service", ServiceName)

func init() {
	log.SetFormatter(&log.JSONFormatter{TimestampFormat: isoTimestamp})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.InfoLevel)
}

// SetLevel changes the global log level, e.g. "debug" or "warn"
func SetLevel(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	log.SetLevel(lvl)
	return nil
}

// SetFormat switches between JSON lines (the default) and human readable text
func SetFormat(format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		log.SetFormatter(&log.JSONFormatter{TimestampFormat: isoTimestamp})
	case "text":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true, TimestampFormat: isoTimestamp})
	default:
		return fmt.Errorf("unknown log format %q", format)
	}
	return nil
}

func entry(fields map[string]any) *log.Entry {
	if len(fields) == 0 {
		return base
	}
	return base.WithFields(fields)
}

func Debug(message string, fields map[string]any) {
	entry(fields).Debug(message)
}

// Info logs a message at info level with optional fields
func Info(message string, fields map[string]any) {
	entry(fields).Info(message)
}

func Warn(message string, fields map[string]any) {
	entry(fields).Warn(message)
}

func Error(message string, fields map[string]any) {
	entry(fields).Error(message)
}

// Fatal logs a message at fatal level and exits the application
func Fatal(message string, fields map[string]any) {
	entry(fields).Fatal(message)
}
