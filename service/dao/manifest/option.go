package manifest

import "github.com/modscope/modscope/service/meta"

type Option func(*Service)

// WithMetaService sets the meta service
func WithMetaService(meta *meta.Service) Option {
	return func(s *Service) {
		s.metaService = meta
	}
}

// WithSearchPath sets the initial search path of base URLs
func WithSearchPath(paths ...string) Option {
	return func(s *Service) {
		s.searchPath = paths
	}
}
