package auth

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DecisionEvent describes the outcome of an application review. It is the
// payload handed to notification collaborators.
type DecisionEvent struct {
	ApplicationID primitive.ObjectID
	Username      string
	Email         string
	Role          Role
	Approved      bool
	Reason        string
	OccurredAt    time.Time
}

// DecisionSink consumes review outcomes, e.g. to email applicants. Sinks
// run best-effort after persistence; errors are logged and never fail the
// review itself.
type DecisionSink interface {
	AccountDecided(ctx context.Context, event DecisionEvent) error
}

// DecisionSinkFunc adapts a function to the DecisionSink interface.
type DecisionSinkFunc func(ctx context.Context, event DecisionEvent) error

// AccountDecided implements DecisionSink.
func (f DecisionSinkFunc) AccountDecided(ctx context.Context, event DecisionEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

type noopDecisionSink struct{}

func (noopDecisionSink) AccountDecided(context.Context, DecisionEvent) error {
	return nil
}

func normalizeDecisionSink(s DecisionSink) DecisionSink {
	if s == nil {
		return noopDecisionSink{}
	}
	return s
}
