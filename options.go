package validy

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const tracerName = "github.com/skosovsky/validy"

type options struct {
	logger        *slog.Logger
	preprocessors *Preprocessors
	timeout       time.Duration
	recoverPanics bool
	metrics       *Metrics
	tracer        trace.Tracer
	middlewares   []ValidatorMiddleware
}

func defaultOptions() options {
	return options{
		logger:        slog.New(slog.DiscardHandler),
		recoverPanics: true,
		tracer:        noop.NewTracerProvider().Tracer(tracerName),
	}
}

// Option configures an Engine.
type Option func(*options)

// WithLogger sets the logger used for dispatch decisions, rejected validators and schema errors.
// By default nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithPreprocessors sets the registry consulted for preprocessors referenced by name.
// Without it each engine gets its own DefaultPreprocessors.
func WithPreprocessors(p *Preprocessors) Option {
	return func(o *options) {
		o.preprocessors = p
	}
}

// WithTimeout bounds every Validate call. Zero (the default) means no timeout. Preprocessors and
// custom validators see the bounded context but are always waited for, so one that ignores ctx
// still stalls its call.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithRecoverPanics controls whether panics in validators and preprocessors are recovered and
// reported as errors (default true).
func WithRecoverPanics(enable bool) Option {
	return func(o *options) {
		o.recoverPanics = enable
	}
}

// WithMetrics records validation outcomes in m (see NewMetrics).
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithTracerProvider starts a span per Validate call using tp. The default is a no-op provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		if tp != nil {
			o.tracer = tp.Tracer(tracerName)
		}
	}
}

// WithValidatorMiddleware wraps every custom validator run by the engine. The first middleware is
// the outermost.
func WithValidatorMiddleware(mws ...ValidatorMiddleware) Option {
	return func(o *options) {
		o.middlewares = append(o.middlewares, mws...)
	}
}
