package bootstrap

import (
	"fmt"

	coreconfig "github.com/leadana/crmbot/core/config"
	"github.com/leadana/crmbot/core/logger"
)

// Options control the generic bootstrap pipeline shared between bots.
// Build wires application services (backend client, notifier, handlers)
// once logging is available.
type Options[T any] struct {
	Config *coreconfig.Config

	LoggerInit func(*coreconfig.Config) error
	Build      func(*coreconfig.Config) (T, error)
}

// Run initializes the logger and then builds the application services.
func Run[T any](opts Options[T]) (T, error) {
	var zero T
	if opts.Config == nil {
		return zero, fmt.Errorf("bootstrap: nil config provided")
	}
	if opts.Build == nil {
		return zero, fmt.Errorf("bootstrap: Build is required")
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(opts.Config); err != nil {
		return zero, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	app, err := opts.Build(opts.Config)
	if err != nil {
		return zero, fmt.Errorf("bootstrap: service initialization failed: %w", err)
	}
	return app, nil
}
