package modscope

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/viant/structology/conv"

	"github.com/modscope/modscope/extension"
	"github.com/modscope/modscope/internal/clock"
	"github.com/modscope/modscope/model"
	"github.com/modscope/modscope/model/exports"
	"github.com/modscope/modscope/model/types"
	"github.com/modscope/modscope/policy"
	"github.com/modscope/modscope/progress"
	"github.com/modscope/modscope/service/dao"
	"github.com/modscope/modscope/service/dao/manifest"
	"github.com/modscope/modscope/service/environ"
	"github.com/modscope/modscope/service/event"
	"github.com/modscope/modscope/service/registry"
	"github.com/modscope/modscope/service/resolver"
	"github.com/modscope/modscope/session"
	"github.com/modscope/modscope/tracing"
)

// Runtime owns the three pieces of mutable state isolation sessions
// interpose on: the module registry, the manifest search path and the
// environment table. Module resolution runs through a resolver chain whose
// head an active session occupies.
type Runtime struct {
	id              string
	registry        *registry.Service
	environ         *environ.Service
	manifests       *manifest.Service
	resolvers       *resolver.Chain
	hosts           *extension.Hosts
	converter       *conv.Converter
	sessions        *session.Manager
	events          *event.Service
	sessionDefaults []session.Option
}

// ID returns the runtime identifier.
func (r *Runtime) ID() string {
	return r.id
}

// Registry returns the module registry.
func (r *Runtime) Registry() *registry.Service {
	return r.registry
}

// Environ returns the environment table service.
func (r *Runtime) Environ() *environ.Service {
	return r.environ
}

// Resolvers returns the module resolver chain.
func (r *Runtime) Resolvers() *resolver.Chain {
	return r.resolvers
}

// Sessions returns the session manager.
func (r *Runtime) Sessions() *session.Manager {
	return r.sessions
}

// SearchPath returns the current manifest search path.
func (r *Runtime) SearchPath() []string {
	return r.manifests.SearchPath()
}

// SwapSearchPath replaces the manifest search path and returns the previous
// one; sessions use it for the search-path overlay.
func (r *Runtime) SwapSearchPath(paths []string) []string {
	return r.manifests.SwapSearchPath(paths)
}

// ModuleNames returns the sorted names of all registered modules.
func (r *Runtime) ModuleNames() []string {
	return r.registry.Names()
}

// ProtectedNames returns the sorted protected module names.
func (r *Runtime) ProtectedNames() []string {
	return r.registry.Protected().Names()
}

// EnvironKeys returns the sorted keys of the current environment table.
func (r *Runtime) EnvironKeys() []string {
	return r.environ.Current().Keys()
}

// EnvironLookup returns the value for key from the current environment
// table.
func (r *Runtime) EnvironLookup(key string) (string, bool) {
	return r.environ.Lookup(key)
}

// SessionDepth returns the number of currently active sessions.
func (r *Runtime) SessionDepth() int {
	return r.sessions.ActiveDepth()
}

// NewSession constructs an inactive isolation session bound to this
// runtime and registers it with the session manager. The manager holds a
// strong reference until Sessions().Release(id) is called.
func (r *Runtime) NewSession(opts ...session.Option) *session.Session {
	effective := make([]session.Option, 0, len(r.sessionDefaults)+len(opts)+1)
	effective = append(effective, session.WithObserver(&sessionObserver{runtime: r}))
	effective = append(effective, r.sessionDefaults...)
	effective = append(effective, opts...)
	ret := session.New(r, effective...)
	r.sessions.Add(ret)
	return ret
}

// Module returns the module registered under name or nil.
func (r *Runtime) Module(name string) *model.Module {
	return r.registry.Lookup(name)
}

// Import resolves name through the resolver chain: an active session's
// interceptor sees the resolution, the terminal resolver consults the
// registry, then builtin host services, then the manifest search path.
func (r *Runtime) Import(ctx context.Context, name string) (*model.Module, error) {
	ctx, span := tracing.StartSpan(ctx, "runtime.import", "INTERNAL")
	span.WithAttributes(map[string]string{"module": name})
	module, err := r.resolvers.Resolve(ctx, name)
	tracing.EndSpan(span, err)
	return module, err
}

// resolve is the terminal resolver of the chain.
func (r *Runtime) resolve(ctx context.Context, name string) (*model.Module, error) {
	if name == "" {
		return nil, dao.ErrInvalidName
	}
	if module := r.registry.Lookup(name); module != nil {
		progress.FromContext(ctx).OnCacheHit()
		return module, nil
	}
	if svc := r.hosts.Lookup(name); svc != nil {
		module := newBuiltinModule(svc)
		module.InitCount++
		module.InitializedAt = clock.Now()
		r.registry.Store(module)
		return module, nil
	}
	if err := r.checkPolicy(ctx, name); err != nil {
		return nil, err
	}
	definition, err := r.manifests.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	module := &model.Module{
		Name:     definition.Name,
		Source:   definition.Source,
		Manifest: definition,
	}
	// registered before initialization so dependency cycles terminate
	r.registry.Store(module)
	if err = r.initialize(ctx, module); err != nil {
		r.registry.Delete(module.Name)
		return nil, err
	}
	progress.FromContext(ctx).OnImport()
	r.publish(ctx, "module.loaded", module.Name, event.ModuleLoaded{
		Module:   module.Name,
		Location: module.Source.URL,
	})
	return module, nil
}

// Reinitialize re-runs the standard initialization of the supplied module
// object: the manifest is re-read from its location and imports and exports
// are rebuilt in place. The module pointer stays the same; InitCount
// increments.
func (r *Runtime) Reinitialize(ctx context.Context, module *model.Module) error {
	if module == nil {
		return fmt.Errorf("module is nil")
	}
	if module.Builtin {
		return fmt.Errorf("module %q is builtin and cannot be reinitialized", module.Name)
	}
	if module.Manifest != nil && module.Manifest.Source != nil && module.Manifest.Source.URL != "" {
		location := module.Manifest.Source.URL
		r.manifests.Refresh(location)
		definition, err := r.manifests.Load(ctx, location)
		if err != nil {
			return err
		}
		module.Manifest = definition
	}
	if err := r.initialize(ctx, module); err != nil {
		return err
	}
	r.publish(ctx, "module.reloaded", module.Name, event.ModuleReloaded{Module: module.Name})
	return nil
}

// initialize resolves the module's imports through the resolver chain,
// expands its exports against the current environment table and converts
// them to the manifest's typeName when one is registered.
func (r *Runtime) initialize(ctx context.Context, module *model.Module) error {
	definition := module.Manifest
	if definition == nil {
		module.InitCount++
		module.InitializedAt = clock.Now()
		return nil
	}
	module.Imports = make(map[string]*model.Module, len(definition.Imports))
	for _, imp := range definition.Imports {
		dep, err := r.resolvers.Resolve(ctx, imp.Module)
		if err != nil {
			return fmt.Errorf("module %q: failed to import %q as %q: %w", module.Name, imp.Module, imp.Alias, err)
		}
		module.Imports[imp.Alias] = dep
	}
	expanded, err := r.expandExports(module)
	if err != nil {
		return err
	}
	module.Exports = expanded
	if definition.TypeName != "" {
		if err = r.convertValue(module); err != nil {
			return err
		}
	}
	module.InitCount++
	module.InitializedAt = clock.Now()
	return nil
}

// expandExports builds the module's export table: literal values with
// ${env.KEY} and ${import.alias.name} expansion, then typed declarations
// bound by kind (value, env, import).
func (r *Runtime) expandExports(module *model.Module) (map[string]interface{}, error) {
	definition := module.Manifest
	ret := make(map[string]interface{}, len(definition.Exports))
	for name, value := range definition.Exports {
		ret[name] = r.expandValue(value, module)
	}
	for _, declaration := range definition.Declarations {
		value, err := r.bindDeclaration(declaration, module)
		if err != nil {
			return nil, fmt.Errorf("module %q: export %q: %w", module.Name, declaration.Name, err)
		}
		ret[declaration.Name] = value
	}
	return ret, nil
}

func (r *Runtime) expandValue(value interface{}, module *model.Module) interface{} {
	text, ok := value.(string)
	if !ok {
		return value
	}
	text = r.environ.Expand(text)
	return expandImportRefs(text, module)
}

func (r *Runtime) bindDeclaration(declaration *exports.Declaration, module *model.Module) (interface{}, error) {
	var value interface{}
	switch declaration.Kind() {
	case exports.KindEnv:
		v, ok := r.environ.Lookup(declaration.In())
		if !ok && declaration.Value == nil {
			return nil, fmt.Errorf("environment variable %q is not set", declaration.In())
		}
		if ok {
			value = v
		} else {
			value = declaration.Value
		}
	case exports.KindImport:
		alias, exportName, ok := strings.Cut(declaration.In(), ".")
		if !ok {
			return nil, fmt.Errorf("invalid import binding %q, expected alias.export", declaration.In())
		}
		dep := module.Import(alias)
		if dep == nil {
			return nil, fmt.Errorf("unknown import alias %q", alias)
		}
		v, ok := dep.Export(exportName)
		if !ok {
			return nil, fmt.Errorf("module %q exports no %q", dep.Name, exportName)
		}
		value = v
	default:
		value = r.expandValue(declaration.Value, module)
	}
	if declaration.DataType == "" {
		return value, nil
	}
	xType := r.hosts.Types().Lookup(declaration.DataType)
	if xType == nil {
		return nil, fmt.Errorf("unknown data type %q", declaration.DataType)
	}
	typed, err := r.typedValue(xType.Type, value)
	if err != nil {
		return nil, fmt.Errorf("failed to convert to %q: %w", declaration.DataType, err)
	}
	return typed, nil
}

// convertValue converts the expanded export table to the manifest's
// typeName and stores the result on the module.
func (r *Runtime) convertValue(module *model.Module) error {
	xType := r.hosts.Types().Lookup(module.Manifest.TypeName)
	if xType == nil {
		return fmt.Errorf("module %q: unknown typeName %q", module.Name, module.Manifest.TypeName)
	}
	value, err := r.typedValue(xType.Type, module.Exports)
	if err != nil {
		return fmt.Errorf("module %q: failed to convert exports to %q: %w", module.Name, module.Manifest.TypeName, err)
	}
	module.Value = value
	return nil
}

func (r *Runtime) checkPolicy(ctx context.Context, name string) error {
	aPolicy := policy.FromContext(ctx)
	if aPolicy == nil {
		return nil
	}
	if !aPolicy.IsAllowed(name) {
		return fmt.Errorf("module %q: blocked by policy", name)
	}
	switch strings.ToLower(aPolicy.Mode) {
	case policy.ModeDeny:
		return fmt.Errorf("module %q: loading denied by policy", name)
	case policy.ModeAsk:
		if aPolicy.Ask != nil && !aPolicy.Ask(ctx, name, aPolicy) {
			return fmt.Errorf("module %q: load not approved", name)
		}
	}
	return nil
}

func (r *Runtime) publish(ctx context.Context, eventType, moduleName string, data interface{}) {
	if r.events == nil {
		return
	}
	eventContext := &event.Context{
		RuntimeID: r.id,
		EventType: eventType,
		Module:    moduleName,
	}
	switch payload := data.(type) {
	case event.ModuleLoaded:
		if publisher, err := event.PublisherOf[event.ModuleLoaded](r.events); err == nil {
			_ = publisher.Publish(ctx, event.NewEvent(eventContext, payload))
		}
	case event.ModuleReloaded:
		if publisher, err := event.PublisherOf[event.ModuleReloaded](r.events); err == nil {
			_ = publisher.Publish(ctx, event.NewEvent(eventContext, payload))
		}
	}
}

// typedValue converts value to an instance of aType using the runtime
// converter. Struct and pointer types come back as pointers; scalars,
// slices and maps are dereferenced to plain values.
func (r *Runtime) typedValue(aType reflect.Type, value interface{}) (interface{}, error) {
	instance := newInstancePtr(aType)
	if err := r.converter.Convert(value, instance); err != nil {
		return nil, err
	}
	if aType.Kind() != reflect.Ptr && aType.Kind() != reflect.Struct {
		instance = reflect.ValueOf(instance).Elem().Interface()
	}
	return instance, nil
}

// newInstancePtr creates a new instance pointer of the given type
func newInstancePtr(t reflect.Type) interface{} {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return reflect.New(t).Interface()
}

// ---------------------------------------------------------------------------
// Manifest hot-swap helpers
// ---------------------------------------------------------------------------

// LoadManifest loads a manifest by bare name (resolved against the search
// path) or explicit location.
func (r *Runtime) LoadManifest(ctx context.Context, name string) (*model.Manifest, error) {
	return r.manifests.Load(ctx, name)
}

// DecodeYAMLManifest decodes a manifest from YAML bytes.
func (r *Runtime) DecodeYAMLManifest(data []byte) (*model.Manifest, error) {
	return r.manifests.DecodeYAML(data)
}

// RefreshManifest discards any cached copy of the manifest at the given
// location. The next load reloads the file via the configured meta service
// (i.e. one extra disk/cloud round-trip).
func (r *Runtime) RefreshManifest(location string) error {
	if r == nil || r.manifests == nil {
		return fmt.Errorf("runtime not fully initialised – manifest service missing")
	}
	r.manifests.Refresh(location)
	return nil
}

// UpsertManifest parses the supplied YAML bytes and stores the resulting
// manifest in the cache under the specified location. When data is nil the
// call falls back to RefreshManifest, causing a lazy reload on next use.
func (r *Runtime) UpsertManifest(location string, data []byte) error {
	if r == nil || r.manifests == nil {
		return fmt.Errorf("runtime not fully initialised – manifest service missing")
	}
	if data == nil {
		return r.RefreshManifest(location)
	}
	definition, err := r.manifests.DecodeYAML(data)
	if err != nil {
		return fmt.Errorf("failed to decode manifest YAML: %w", err)
	}
	return r.manifests.Upsert(location, definition)
}

// PatchManifest applies a unified diff to the manifest text cached at the
// location and re-decodes it.
func (r *Runtime) PatchManifest(ctx context.Context, location, patch string) (*model.Manifest, error) {
	if r == nil || r.manifests == nil {
		return nil, fmt.Errorf("runtime not fully initialised – manifest service missing")
	}
	return r.manifests.Patch(ctx, location, patch)
}

// ---------------------------------------------------------------------------

// sessionObserver publishes session lifecycle events.
type sessionObserver struct {
	runtime *Runtime
}

func (o *sessionObserver) SessionEntered(s *session.Session) {
	o.runtime.publishSession("session.entered", s.ID(), event.SessionEntered{
		Session:    s.ID(),
		KeepGlobal: s.KeepGlobal(),
	})
}

func (o *sessionObserver) SessionExited(s *session.Session) {
	o.runtime.publishSession("session.exited", s.ID(), event.SessionExited{Session: s.ID()})
}

func (r *Runtime) publishSession(eventType, sessionID string, data interface{}) {
	if r.events == nil {
		return
	}
	eventContext := &event.Context{RuntimeID: r.id, SessionID: sessionID, EventType: eventType}
	switch payload := data.(type) {
	case event.SessionEntered:
		if publisher, err := event.PublisherOf[event.SessionEntered](r.events); err == nil {
			_ = publisher.Publish(context.Background(), event.NewEvent(eventContext, payload))
		}
	case event.SessionExited:
		if publisher, err := event.PublisherOf[event.SessionExited](r.events); err == nil {
			_ = publisher.Publish(context.Background(), event.NewEvent(eventContext, payload))
		}
	}
}

// newBuiltinModule wraps a host service as a protected registry module; its
// exports hold the service's method signatures and Value carries the
// service itself for embedders.
func newBuiltinModule(svc types.Service) *model.Module {
	methods := svc.Methods()
	exported := make(map[string]interface{}, len(methods))
	for i := range methods {
		exported[methods[i].Name] = &methods[i]
	}
	return &model.Module{
		Name:    svc.Name(),
		Builtin: true,
		Exports: exported,
		Value:   svc,
	}
}

// expandImportRefs replaces ${import.alias.export} references in text with
// the referenced import's export value. References that cannot be resolved
// are left as-is.
func expandImportRefs(text string, module *model.Module) interface{} {
	const prefix = "${import."
	idx := strings.Index(text, prefix)
	if idx < 0 {
		return text
	}
	end := strings.IndexByte(text[idx:], '}')
	if end < 0 {
		return text
	}
	ref := text[idx+len(prefix) : idx+end]
	alias, exportName, ok := strings.Cut(ref, ".")
	if !ok {
		return text
	}
	dep := module.Import(alias)
	if dep == nil {
		return text
	}
	value, ok := dep.Export(exportName)
	if !ok {
		return text
	}
	// a reference spanning the whole text preserves the value's type
	if idx == 0 && idx+end+1 == len(text) {
		return value
	}
	replaced := text[:idx] + fmt.Sprintf("%v", value) + text[idx+end+1:]
	result := expandImportRefs(replaced, module)
	return result
}
