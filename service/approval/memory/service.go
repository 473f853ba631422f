// Package memory provides the in-process approval service used by default;
// requests, decisions and waiters all live in maps guarded by one mutex.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/modscope/modscope/internal/clock"
	"github.com/modscope/modscope/internal/idgen"
	"github.com/modscope/modscope/service/approval"
	"github.com/modscope/modscope/service/messaging"
	qmem "github.com/modscope/modscope/service/messaging/memory"
)

type service struct {
	mu        sync.Mutex
	requests  map[string]*approval.Request
	decisions map[string]*approval.Decision
	waiters   map[string][]chan *approval.Decision

	// fan-out queue
	events messaging.Queue[approval.Event]
}

// New creates an in-memory approval service.
func New(options ...Option) approval.Service {
	ret := &service{
		requests:  map[string]*approval.Request{},
		decisions: map[string]*approval.Decision{},
		waiters:   map[string][]chan *approval.Decision{},
		events:    qmem.NewQueue[approval.Event](qmem.DefaultConfig()),
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

func (s *service) RequestApproval(ctx context.Context, r *approval.Request) error {
	if r == nil {
		return errors.New("invalid request")
	}
	if r.ID == "" {
		r.ID = idgen.New()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = clock.Now()
	}

	s.mu.Lock()
	// idempotent save so re-submissions do not error
	s.requests[r.ID] = r
	s.mu.Unlock()

	_ = s.events.Publish(ctx, &approval.Event{Topic: approval.TopicRequestCreated, Data: r})
	return nil
}

func (s *service) ListPending(ctx context.Context) ([]*approval.Request, error) {
	now := clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	pending := make([]*approval.Request, 0, len(s.requests))
	for id, r := range s.requests {
		if s.decisions[id] != nil || r.Expired(now) {
			continue
		}
		pending = append(pending, r)
	}
	return pending, nil
}

func (s *service) Decide(ctx context.Context, id string, approved bool, reason string) (*approval.Decision, error) {
	if id == "" {
		return nil, errors.New("empty id")
	}

	s.mu.Lock()
	request := s.requests[id]
	if request == nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("request %s not found", id)
	}
	if s.decisions[id] != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("request %s already decided", id)
	}
	d := &approval.Decision{
		ID:        id,
		Approved:  approved,
		Reason:    reason,
		DecidedAt: time.Now(),
	}
	s.decisions[id] = d
	waiters := s.waiters[id]
	delete(s.waiters, id)
	s.mu.Unlock()

	for _, waiter := range waiters {
		waiter <- d
	}
	_ = s.events.Publish(ctx, &approval.Event{Topic: approval.TopicDecisionCreated, Data: d})
	return d, nil
}

func (s *service) Wait(ctx context.Context, id string) (*approval.Decision, error) {
	s.mu.Lock()
	if d := s.decisions[id]; d != nil {
		s.mu.Unlock()
		return d, nil
	}
	if s.requests[id] == nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("request %s not found", id)
	}
	waiter := make(chan *approval.Decision, 1)
	s.waiters[id] = append(s.waiters[id], waiter)
	s.mu.Unlock()

	select {
	case d := <-waiter:
		return d, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *service) Queue() messaging.Queue[approval.Event] { return s.events }

var _ approval.Service = (*service)(nil)
