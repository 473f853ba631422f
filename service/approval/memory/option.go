package memory

import (
	"github.com/modscope/modscope/service/approval"
	"github.com/modscope/modscope/service/messaging"
)

type Option func(*service)

// WithQueue replaces the default in-memory event queue, e.g. with an
// fs-backed one so approval traffic survives restarts.
func WithQueue(queue messaging.Queue[approval.Event]) Option {
	return func(s *service) { s.events = queue }
}
