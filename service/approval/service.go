package approval

import (
	"context"

	"github.com/modscope/modscope/service/messaging"
)

// Service defines the approval service interface.
type Service interface {
	// RequestApproval registers a pending request and publishes it.
	RequestApproval(ctx context.Context, r *Request) error

	// ListPending returns undecided, unexpired requests.
	ListPending(ctx context.Context) ([]*Request, error)

	// Decide records the outcome for a pending request.
	Decide(ctx context.Context, id string, approved bool, reason string) (*Decision, error)

	// Wait blocks until the request has been decided or ctx is cancelled.
	Wait(ctx context.Context, id string) (*Decision, error)

	// Queue exposes the event fan-out so embedders can surface requests in
	// their own UI or tooling.
	Queue() messaging.Queue[Event]
}
