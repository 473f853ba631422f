package modscope

import (
	"github.com/viant/afs/storage"
	"github.com/viant/x"

	"github.com/modscope/modscope/model/types"
	"github.com/modscope/modscope/service/event"
	"github.com/modscope/modscope/service/meta"
	"github.com/modscope/modscope/tracing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option customises the runtime service.
type Option func(s *Service)

// WithConfig applies a declarative configuration; explicit options win over
// config values.
func WithConfig(config *Config) Option {
	return func(s *Service) {
		if config != nil {
			s.config = config
		}
	}
}

// WithExtensionTypes sets the Go types manifests can bind exports to.
func WithExtensionTypes(types ...*x.Type) Option {
	return func(s *Service) {
		s.extensionTypes = types
	}
}

// WithEventService sets the event service used to publish module and
// session lifecycle events.
func WithEventService(service *event.Service) Option {
	return func(s *Service) {
		s.eventService = service
	}
}

// WithMetaService sets the meta service
func WithMetaService(service *meta.Service) Option {
	return func(s *Service) {
		s.metaService = service
	}
}

// WithHostServices registers additional builtin host services. Their names
// join the protected set.
func WithHostServices(services ...types.Service) Option {
	return func(s *Service) {
		s.hostServices = services
	}
}

// WithSearchPath sets the initial manifest search path.
func WithSearchPath(paths ...string) Option {
	return func(s *Service) {
		s.searchPath = paths
	}
}

// WithEnv seeds the runtime environment table.
func WithEnv(env map[string]string) Option {
	return func(s *Service) {
		s.env = env
	}
}

// WithProtectedNames adds extra names to the protected set beyond the
// builtin host modules and the entry module.
func WithProtectedNames(names ...string) Option {
	return func(s *Service) {
		s.protectedExtras = append(s.protectedExtras, names...)
	}
}

// WithMetaBaseURL sets the meta base URL
func WithMetaBaseURL(url string) Option {
	return func(s *Service) {
		s.metaBaseURL = url
	}
}

// WithMetaFsOptions with meta file system options
func WithMetaFsOptions(options ...storage.Option) Option {
	return func(s *Service) {
		s.metaFsOptions = options
	}
}

// WithTracing configures OpenTelemetry tracing for the service. If outputFile is empty the
// stdout exporter is used; otherwise traces are written to the supplied file path. The function is
// safe to call multiple times – the first successful initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		_ = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom SpanExporter. This enables
// integrations with exporters other than the built-in stdout exporter, for example OTLP, Jaeger or
// Zipkin. The function is safe to call multiple times – the first successful initialisation wins.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		_ = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}
