package infrastructures

import (
	"os"

	"github.com/sirupsen/logrus"
)

// The package-level logrus logger is used throughout the service; configure
// it once here so every component logs structured JSON.
func init() {
	logrus.SetFormatter(&logrus.JSONFormatter{})

	if level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logrus.SetLevel(level)
	}
}
