package observability

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/propline/internal/config"
	"github.com/riskibarqy/propline/internal/platform/logging"
)

// Setup starts tracing and profiling and returns one shutdown func for both.
func Setup(cfg config.Config, logger *logging.Logger) (func(context.Context) error, error) {
	shutdownTracing, err := InitUptrace(cfg, logger)
	if err != nil {
		return nil, errors.Wrap(err, "init uptrace")
	}

	stopProfiling, err := InitPyroscope(cfg, logger)
	if err != nil {
		_ = shutdownTracing(context.Background())
		return nil, errors.Wrap(err, "init pyroscope")
	}

	return func(ctx context.Context) error {
		return errors.CombineErrors(stopProfiling(), shutdownTracing(ctx))
	}, nil
}
