// Package meta provides location-addressed access to module definitions via
// the abstract file system, so that search-path entries can point at local
// directories, in-memory fixtures (mem://) or embedded assets (embed://)
// interchangeably.
package meta

import (
	"context"
	"fmt"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"
	"gopkg.in/yaml.v3"
)

// Service loads and stores assets relative to an optional base URL.
// Downloaded documents are decoded as-is; expression expansion is the
// caller's concern so that a cached document never bakes in the state it
// was first loaded under.
type Service struct {
	fs      afs.Service
	baseURL string
	options []storage.Option
}

// New creates a meta service. When baseURL is empty, locations are used as
// given.
func New(fs afs.Service, baseURL string, options ...storage.Option) *Service {
	return &Service{fs: fs, baseURL: baseURL, options: options}
}

// URL resolves a possibly relative location against the base URL.
func (s *Service) URL(location string) string {
	if s.baseURL == "" || strings.Contains(location, "://") {
		return location
	}
	return url.Join(s.baseURL, location)
}

// Exists reports whether the asset at the supplied location exists.
func (s *Service) Exists(ctx context.Context, location string) (bool, error) {
	return s.fs.Exists(ctx, s.URL(location), s.options...)
}

// Download fetches the raw asset bytes.
func (s *Service) Download(ctx context.Context, location string) ([]byte, error) {
	data, err := s.fs.DownloadWithURL(ctx, s.URL(location), s.options...)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", s.URL(location), err)
	}
	return data, nil
}

// Load downloads the asset and decodes the YAML document into target.
func (s *Service) Load(ctx context.Context, location string, target interface{}) error {
	data, err := s.Download(ctx, location)
	if err != nil {
		return err
	}
	if err = yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to decode %s: %w", s.URL(location), err)
	}
	return nil
}

// Upload stores the supplied payload at the location.
func (s *Service) Upload(ctx context.Context, location string, data []byte) error {
	return s.fs.Upload(ctx, s.URL(location), 0644, strings.NewReader(string(data)))
}
