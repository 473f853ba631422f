package event

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/viant/afs"

	"github.com/modscope/modscope/service/messaging"
	"github.com/modscope/modscope/service/messaging/fs"
	"github.com/modscope/modscope/service/messaging/memory"
)

// Supported queue vendors.
const (
	VendorMemory messaging.Vendor = "memory"
	VendorFS     messaging.Vendor = "fs"
)

// Service fans runtime events out over per-type queues. Every typed publish
// is mirrored onto an untyped "any" queue so a single listener can observe
// all traffic.
type Service struct {
	vendor    messaging.Vendor
	publisher *Publisher[any]
	listener  *Listener[any]

	mu              sync.RWMutex
	typedPublishers map[reflect.Type]any
	typedListeners  map[reflect.Type]any

	newFsConfig     func(name string) fs.Config
	newMemoryConfig func(name string) memory.Config
}

// New creates an event service backed by the supplied queue vendor.
func New(vendor messaging.Vendor, opts ...Option) (*Service, error) {
	ret := &Service{
		vendor:          vendor,
		typedPublishers: make(map[reflect.Type]any),
		typedListeners:  make(map[reflect.Type]any),
	}
	for _, opt := range opts {
		opt(ret)
	}

	switch vendor {
	case VendorFS:
		if ret.newFsConfig == nil {
			return nil, fmt.Errorf("fs queue vendor requires a queue config factory")
		}
	case VendorMemory:
		if ret.newMemoryConfig == nil {
			return nil, fmt.Errorf("memory queue vendor requires a queue config factory")
		}
	default:
		return nil, fmt.Errorf("unsupported queue vendor: %s", vendor)
	}

	queue, err := QueueOf[Event[any]](ret, "any")
	if err != nil {
		return nil, err
	}
	ret.publisher = NewPublisher[any](queue)
	return ret, nil
}

// SetListener installs the handler observing every event regardless of its
// payload type, replacing any previous one.
func (s *Service) SetListener(handler func(*Event[any])) {
	if s.listener != nil {
		s.listener.Stop()
	}
	s.listener = NewListener[any](s.publisher, handler)
	s.listener.Start()
}

// QueueOf builds a vendor queue for the supplied payload type.
func QueueOf[T any](s *Service, name string) (messaging.Queue[T], error) {
	switch s.vendor {
	case VendorFS:
		return fs.NewQueue[T](afs.New(), s.newFsConfig(name))
	case VendorMemory:
		return memory.NewQueue[T](s.newMemoryConfig(name)), nil
	}
	return nil, fmt.Errorf("unsupported queue vendor: %s", s.vendor)
}

func keyOf[T any]() reflect.Type {
	var t T
	rType := reflect.TypeOf(t)
	if rType.Kind() == reflect.Ptr {
		rType = rType.Elem()
	}
	return rType
}

// PublisherOf returns the publisher for the supplied payload type, creating
// and caching it on first use.
func PublisherOf[T any](s *Service) (*Publisher[T], error) {
	key := keyOf[T]()
	s.mu.RLock()
	existing, ok := s.typedPublishers[key]
	s.mu.RUnlock()
	if ok {
		return existing.(*Publisher[T]), nil
	}

	queue, err := QueueOf[Event[T]](s, key.String())
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.typedPublishers[key]; ok {
		return existing.(*Publisher[T]), nil
	}
	publisher := NewPublisher[T](queue)
	publisher.anyQueue = s.publisher.queue
	s.typedPublishers[key] = publisher
	return publisher, nil
}

// SetListenerOf installs a handler for events of a single payload type,
// replacing any previous one.
func SetListenerOf[T any](s *Service, handler func(*Event[T])) error {
	key := keyOf[T]()
	s.mu.RLock()
	existing, ok := s.typedListeners[key]
	s.mu.RUnlock()
	if ok {
		existing.(*Listener[T]).Stop()
	}

	publisher, err := PublisherOf[T](s)
	if err != nil {
		return err
	}
	listener := NewListener[T](publisher, handler)
	s.mu.Lock()
	s.typedListeners[key] = listener
	s.mu.Unlock()
	listener.Start()
	return nil
}
