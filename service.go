package modscope

import (
	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/structology/conv"
	"github.com/viant/x"

	"github.com/modscope/modscope/extension"
	"github.com/modscope/modscope/internal/idgen"
	"github.com/modscope/modscope/model"
	"github.com/modscope/modscope/model/types"
	"github.com/modscope/modscope/service/builtin/exec"
	"github.com/modscope/modscope/service/builtin/patch"
	"github.com/modscope/modscope/service/builtin/secret"
	bstorage "github.com/modscope/modscope/service/builtin/storage"
	"github.com/modscope/modscope/service/builtin/sys"
	"github.com/modscope/modscope/service/dao/manifest"
	"github.com/modscope/modscope/service/environ"
	"github.com/modscope/modscope/service/event"
	"github.com/modscope/modscope/service/meta"
	"github.com/modscope/modscope/service/registry"
	"github.com/modscope/modscope/service/resolver"
	"github.com/modscope/modscope/session"
)

// EntryModuleName is the name the runtime's own entry module is registered
// under. Like builtin host modules it is always protected from isolation.
const EntryModuleName = "main"

type Service struct {
	runtime         *Runtime
	metaService     *meta.Service
	hosts           *extension.Hosts
	extensionTypes  []*x.Type
	hostServices    []types.Service
	eventService    *event.Service
	metaBaseURL     string
	metaFsOptions   []storage.Option
	searchPath      []string
	env             map[string]string
	protectedExtras []string
	config          *Config
}

func (s *Service) init(options []Option) {
	if s.config == nil {
		s.config = DefaultConfig()
	}
	for _, option := range options {
		option(s)
	}
	s.applyConfig()

	s.runtime.id = idgen.New()
	s.runtime.environ = environ.New(environ.Table(s.env))
	s.ensureBaseSetup()

	s.hosts = extension.NewHosts(s.extensionTypes...)
	s.hosts.Register(exec.New())
	s.hosts.Register(bstorage.New())
	s.hosts.Register(secret.New())
	s.hosts.Register(patch.New())
	s.hosts.Register(sys.New(s.runtime))
	for _, service := range s.hostServices {
		s.hosts.Register(service)
	}
	s.runtime.hosts = s.hosts

	protected := registry.NewProtected(append(append(s.hosts.Names(), EntryModuleName), s.protectedExtras...)...)
	s.runtime.registry = registry.New(protected)
	s.runtime.manifests = manifest.New(
		manifest.WithMetaService(s.metaService),
		manifest.WithSearchPath(s.searchPath...))
	s.runtime.converter = conv.NewConverter(conv.DefaultOptions())
	s.runtime.sessions = session.NewManager()
	s.runtime.events = s.eventService
	s.runtime.resolvers = resolver.NewChain(resolver.Func(s.runtime.resolve))
	s.runtime.sessionDefaults = s.config.Session.options()

	s.runtime.registry.Store(&model.Module{Name: EntryModuleName})
}

// applyConfig folds the declarative configuration into the option-settable
// fields; explicit options win over config values.
func (s *Service) applyConfig() {
	if len(s.searchPath) == 0 {
		s.searchPath = s.config.SearchPath
	}
	if s.env == nil {
		s.env = s.config.Env
	}
	s.protectedExtras = append(s.protectedExtras, s.config.Protected...)
}

func (s *Service) ensureBaseSetup() {
	if s.metaService == nil {
		s.metaService = meta.New(afs.New(), s.metaBaseURL, s.metaFsOptions...)
	}
}

// RegisterExtensionTypes registers Go types manifests can bind exports to.
func (s *Service) RegisterExtensionTypes(types ...*x.Type) {
	for i := range types {
		s.hosts.Types().Register(types[i])
	}
}

// RegisterHostServices registers additional builtin host services. Services
// registered after construction are not part of the protected name set.
func (s *Service) RegisterHostServices(services ...types.Service) {
	for i := range services {
		s.hosts.Register(services[i])
	}
}

func (s *Service) Runtime() *Runtime {
	return s.runtime
}

func New(options ...Option) *Service {
	ret := &Service{runtime: &Runtime{}}
	ret.init(options)
	return ret
}
