package queue

import (
	"context"

	"github.com/northpoint-auto/dealdesk-backend/internal/models"
)

// Client defines the interface for the dispatch-notification queue
type Client interface {
	// Publish enqueues a dispatch job
	Publish(ctx context.Context, job *models.DispatchJob) error

	// Consume receives jobs from the queue and processes them with the
	// handler; concurrency controls how many jobs run simultaneously
	Consume(ctx context.Context, handler DispatchHandler, concurrency int) error

	// Close closes the queue connection
	Close() error

	// Health checks if the queue is healthy
	Health(ctx context.Context) error
}

// DispatchHandler is a function that processes one dispatch job
type DispatchHandler func(ctx context.Context, job *models.DispatchJob) error
