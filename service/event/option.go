package event

import (
	"github.com/modscope/modscope/service/messaging/fs"
	"github.com/modscope/modscope/service/messaging/memory"
)

type Option func(s *Service)

// WithNewFsQueueConfig sets the factory producing filesystem queue
// configurations, one per payload type name.
func WithNewFsQueueConfig(newConfig func(name string) fs.Config) Option {
	return func(s *Service) {
		s.newFsConfig = newConfig
	}
}

// WithNewMemoryQueueConfig sets the factory producing memory queue
// configurations, one per payload type name.
func WithNewMemoryQueueConfig(newConfig func(name string) memory.Config) Option {
	return func(s *Service) {
		s.newMemoryConfig = newConfig
	}
}
