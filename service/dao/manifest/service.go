package manifest

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"

	"github.com/modscope/modscope/internal/yml"
	"github.com/modscope/modscope/model"
	"github.com/modscope/modscope/service/dao"
	"github.com/modscope/modscope/service/dao/manifest/exports"
	"github.com/modscope/modscope/service/meta"
)

// Service is the location-addressed manifest loader. Bare module names are
// resolved against the ordered search path of base URLs (first hit wins);
// decoded manifests are cached by their resolved location. The search path
// is the overlay point for isolation sessions: name resolution consults the
// path as it stands at call time, while the cache only short-circuits the
// download/parse of a location that has already been decided on.
type Service struct {
	metaService *meta.Service
	mux         sync.RWMutex
	searchPath  []string
	cache       map[string]*entry
}

type entry struct {
	manifest *model.Manifest
	source   []byte
}

// SearchPath returns a copy of the current search path.
func (s *Service) SearchPath() []string {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return append([]string(nil), s.searchPath...)
}

// SwapSearchPath replaces the search path and returns the previous one so
// the caller can restore it by reference.
func (s *Service) SwapSearchPath(paths []string) []string {
	s.mux.Lock()
	defer s.mux.Unlock()
	prev := s.searchPath
	s.searchPath = paths
	return prev
}

// Locate resolves a bare module name to a manifest location by probing the
// search path in order. Explicit locations (with a scheme or extension) are
// returned as given.
func (s *Service) Locate(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", dao.ErrInvalidName
	}
	if strings.Contains(name, "://") || path.Ext(name) != "" {
		return name, nil
	}
	for _, base := range s.SearchPath() {
		location := strings.TrimRight(base, "/") + "/" + name + ".yaml"
		ok, err := s.metaService.Exists(ctx, location)
		if err != nil {
			return "", fmt.Errorf("failed to probe %s: %w", location, err)
		}
		if ok {
			return location, nil
		}
	}
	return "", fmt.Errorf("module %q: %w", name, dao.ErrNotFound)
}

// Load resolves name to a location and returns its decoded manifest, using
// the cache when the location was loaded before.
func (s *Service) Load(ctx context.Context, name string) (*model.Manifest, error) {
	location, err := s.Locate(ctx, name)
	if err != nil {
		return nil, err
	}

	s.mux.RLock()
	cached, ok := s.cache[location]
	s.mux.RUnlock()
	if ok {
		return cached.manifest, nil
	}

	var node yaml.Node
	if err = s.metaService.Load(ctx, location, &node); err != nil {
		return nil, fmt.Errorf("failed to load manifest from %s: %w", location, err)
	}
	manifest, err := s.ParseManifest(location, &node)
	if err != nil {
		return nil, err
	}
	data, _ := s.metaService.Download(ctx, location)

	s.mux.Lock()
	s.cache[location] = &entry{manifest: manifest, source: data}
	s.mux.Unlock()
	return manifest, nil
}

// DecodeYAML decodes a manifest from YAML
func (s *Service) DecodeYAML(encoded []byte) (*model.Manifest, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(encoded, &node); err != nil {
		return nil, err
	}
	return s.ParseManifest("", &node)
}

// Refresh discards any cached copy for the supplied location; the next
// Load performs one extra round-trip to the backing store.
func (s *Service) Refresh(location string) {
	s.mux.Lock()
	defer s.mux.Unlock()
	delete(s.cache, location)
}

// Upsert stores the manifest in the cache under the specified location for
// immediate availability, bypassing the backing store.
func (s *Service) Upsert(location string, manifest *model.Manifest) error {
	if manifest == nil {
		return dao.ErrNilManifest
	}
	if manifest.Source == nil {
		manifest.Source = &model.Source{URL: location}
	} else {
		manifest.Source.URL = location
	}
	source, err := yaml.Marshal(manifest)
	if err != nil {
		return err
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	s.cache[location] = &entry{manifest: manifest, source: source}
	return nil
}

// Source returns the raw manifest text cached for the location; used by
// Patch to apply textual diffs.
func (s *Service) Source(ctx context.Context, location string) ([]byte, error) {
	s.mux.RLock()
	cached, ok := s.cache[location]
	s.mux.RUnlock()
	if ok && len(cached.source) > 0 {
		return cached.source, nil
	}
	return s.metaService.Download(ctx, location)
}

// ParseManifest converts a YAML node into the manifest model.
func (s *Service) ParseManifest(location string, node *yaml.Node) (*model.Manifest, error) {
	manifest := &model.Manifest{
		Source: &model.Source{URL: location},
		Name:   nameFromLocation(location),
	}
	if err := s.parseManifest((*yml.Node)(node), manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest from %s: %w", location, err)
	}
	if manifest.Name == "" {
		manifest.Name = generateAnonymousName()
	}
	if issues := manifest.Validate(); len(issues) > 0 {
		return nil, issues[0]
	}
	return manifest, nil
}

// parseManifest converts YAML node to the manifest model
func (s *Service) parseManifest(node *yml.Node, manifest *model.Manifest) error {
	rootNode := node
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		rootNode = (*yml.Node)(node.Content[0])
	}
	return rootNode.Pairs(func(key string, valueNode *yml.Node) error {
		switch strings.ToLower(key) {
		case "name":
			if valueNode.Kind == yaml.ScalarNode {
				manifest.Name = valueNode.Value
			}
		case "description":
			if valueNode.Kind == yaml.ScalarNode {
				manifest.Description = valueNode.Value
			}
		case "typename":
			if valueNode.Kind == yaml.ScalarNode {
				manifest.TypeName = valueNode.Value
			}
		case "version":
			if valueNode.Kind == yaml.ScalarNode {
				manifest.Version = valueNode.Value
			}
		case "import", "imports":
			if valueNode.Kind != yaml.MappingNode {
				return fmt.Errorf("import should be a mapping of alias to module name")
			}
			if err := valueNode.Pairs(func(alias string, moduleNode *yml.Node) error {
				manifest.Imports = append(manifest.Imports, &model.Import{
					Alias:  alias,
					Module: moduleNode.Value,
				})
				return nil
			}); err != nil {
				return fmt.Errorf("failed to parse import: %w", err)
			}
		case "export", "exports":
			if valueNode.Kind != yaml.MappingNode {
				return fmt.Errorf("exports should be a mapping")
			}
			manifest.Exports = map[string]interface{}{}
			if err := valueNode.Pairs(func(exportKey string, exportNode *yml.Node) error {
				if exports.IsDeclaration(exportKey) {
					declaration, err := exports.Parse([]byte(exportKey))
					if err != nil {
						return fmt.Errorf("failed to parse export declaration %q: %w", exportKey, err)
					}
					declaration.Value = exportNode.Interface()
					manifest.Declarations = append(manifest.Declarations, declaration)
					manifest.Exports[declaration.Name] = declaration.Value
					return nil
				}
				manifest.Exports[exportKey] = exportNode.Interface()
				return nil
			}); err != nil {
				return fmt.Errorf("failed to parse exports: %w", err)
			}
		}
		return nil
	})
}

// nameFromLocation extracts the module name from a location (file name
// without extension).
func nameFromLocation(location string) string {
	if location == "" {
		return ""
	}
	base := path.Base(location)
	return strings.TrimSuffix(base, path.Ext(base))
}

// New creates a new manifest service instance
func New(opts ...Option) *Service {
	ret := &Service{
		metaService: meta.New(afs.New(), ""),
		cache:       make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}
