package commands

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/Sumatoshi-tech/gitpulse/pkg/config"
	"github.com/Sumatoshi-tech/gitpulse/pkg/observability"
	"github.com/Sumatoshi-tech/gitpulse/pkg/version"
)

// telemetryFlags are the logging and metrics overrides shared by commands.
type telemetryFlags struct {
	debug       bool
	logJSON     bool
	metricsFile string
}

// observabilityConfig merges cfg, OTEL_* environment and flags. OTLP
// environment variables win over the config file, matching the exporter
// conventions.
func observabilityConfig(
	cfg *config.Config, flags telemetryFlags, mode observability.AppMode, logOut io.Writer,
) (observability.Config, error) {
	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.Mode = mode
	obsCfg.LogOutput = logOut
	obsCfg.MetricsFile = flags.metricsFile
	obsCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obsCfg.OTLPInsecure = cfg.Telemetry.OTLPInsecure

	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); endpoint != "" {
		obsCfg.OTLPEndpoint = endpoint
	}

	if os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true" {
		obsCfg.OTLPInsecure = true
	}

	level, err := cfg.Logging.SlogLevel()
	if err != nil {
		return obsCfg, err
	}

	obsCfg.LogLevel = level
	obsCfg.LogJSON = cfg.Logging.JSON() || flags.logJSON

	if flags.debug {
		obsCfg.LogLevel = slog.LevelDebug
	}

	return obsCfg, nil
}

func shutdownObservability(providers observability.Providers) {
	err := providers.Shutdown(context.Background())
	if err != nil {
		providers.Logger.Warn("observability shutdown failed", "error", err)
	}
}
