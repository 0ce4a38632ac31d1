// Package logger wires zerolog and the optional New Relic agent.
//
// New builds the application's structured logger from config, forwarding
// log lines to New Relic when an agent is configured. LoggerService owns
// the agent instance itself; a zero LoggerService means APM is disabled
// and every consumer must treat GetApplication() == nil as "no agent".
package logger

import (
	"io"
	"os"
	"time"

	"github.com/hollmark/staffd/internal/config"

	"github.com/newrelic/go-agent/v3/integrations/logcontext-v2/zerologWriter"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// LoggerService holds the New Relic application instance, when one is
// configured.
type LoggerService struct {
	app *newrelic.Application
}

// NewLoggerService starts the New Relic agent if a license key is
// configured. Without a key it returns an empty, usable service.
func NewLoggerService(cfg *config.Config) (*LoggerService, error) {
	obs := cfg.Observability
	if obs == nil || obs.NewRelic.LicenseKey == "" {
		return &LoggerService{}, nil
	}

	opts := []newrelic.ConfigOption{
		newrelic.ConfigAppName(obs.ServiceName),
		newrelic.ConfigLicense(obs.NewRelic.LicenseKey),
		newrelic.ConfigAppLogForwardingEnabled(obs.NewRelic.AppLogForwardingEnabled),
		newrelic.ConfigDistributedTracerEnabled(obs.NewRelic.DistributedTracingEnabled),
	}
	if obs.NewRelic.DebugLogging {
		opts = append(opts, newrelic.ConfigDebugLogger(os.Stdout))
	}

	app, err := newrelic.NewApplication(opts...)
	if err != nil {
		return nil, err
	}

	return &LoggerService{app: app}, nil
}

// GetApplication returns the agent instance, or nil when APM is
// disabled.
func (s *LoggerService) GetApplication() *newrelic.Application {
	if s == nil {
		return nil
	}

	return s.app
}

// Shutdown flushes agent data, waiting at most timeout.
func (s *LoggerService) Shutdown(timeout time.Duration) {
	if s == nil || s.app == nil {
		return
	}

	s.app.Shutdown(timeout)
}

// New builds the application logger. Format and level come from the
// observability config; when an agent is present, output is routed
// through the New Relic writer so log lines carry linking metadata.
func New(cfg *config.Config, loggerService *LoggerService) zerolog.Logger {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	obs := cfg.Observability

	level, err := zerolog.ParseLevel(obs.GetLogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}

	var out io.Writer = os.Stdout
	if obs.Logging.Format == "console" {
		out = zerolog.ConsoleWriter{Out: os.Stderr}
	}

	if app := loggerService.GetApplication(); app != nil && obs.NewRelic.AppLogForwardingEnabled {
		w := zerologWriter.New(out, app)
		out = &w
	}

	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("service", obs.ServiceName).
		Str("env", obs.Environment).
		Logger()
}

// WithTraceContext attaches the transaction's trace and span ids so log
// lines correlate with distributed traces.
func WithTraceContext(log zerolog.Logger, txn *newrelic.Transaction) zerolog.Logger {
	if txn == nil {
		return log
	}

	md := txn.GetTraceMetadata()

	logCtx := log.With()
	if md.TraceID != "" {
		logCtx = logCtx.Str("trace.id", md.TraceID)
	}
	if md.SpanID != "" {
		logCtx = logCtx.Str("span.id", md.SpanID)
	}

	return logCtx.Logger()
}
