package common

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var once sync.Once

type logger struct {
	*log.Logger
}

var singleton *logger

func getLogger() *logger {
	once.Do(func() {
		l := log.NewWithOptions(os.Stderr, log.Options{
			ReportCaller:    true,
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
			Prefix:          "oxy-pose",
		})
		l.SetLevel(log.InfoLevel)
		singleton = &logger{l}
	})
	return singleton
}

// SetLogLevel parses a level name ("debug", "info", "warn", "error") and applies it
// to the shared logger.
//
// Parameters:
//   - level: the level name
//
// Returns:
//   - error: an error if the level name is not recognized
func SetLogLevel(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	getLogger().SetLevel(lvl)
	return nil
}

// SetLogOutput redirects the shared logger, mostly so tests can silence or capture it.
func SetLogOutput(w io.Writer) {
	getLogger().SetOutput(w)
}

func LogDebug(msg string, args ...any) {
	l := getLogger()
	l.Helper()
	l.Debugf(msg, args...)
}

func LogInfo(msg string, args ...any) {
	l := getLogger()
	l.Helper()
	l.Infof(msg, args...)
}

func LogWarn(msg string, args ...any) {
	l := getLogger()
	l.Helper()
	l.Warnf(msg, args...)
}

func LogError(msg string, args ...any) {
	l := getLogger()
	l.Helper()
	l.Errorf(msg, args...)
}
