package logger

import (
	"os"

	"github.com/rs/zerolog"
)

// New builds the process-wide logger. Every line carries the service name
// so the engine's output is attributable next to the remote complaint
// service's. Development trades JSON for the console writer.
func New(env, service string) zerolog.Logger {
	log := zerolog.New(os.Stderr).With().
		Timestamp().
		Str("service", service).
		Logger()

	if env == "development" {
		log = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	return log
}
