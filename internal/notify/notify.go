// Package notify tells club admins about incoming applications.
package notify

import (
	"context"

	"altiora-api/internal/models"
)

// Kind says what happened to an application.
type Kind string

const (
	KindCreated Kind = "created"
	KindUpdated Kind = "updated"
)

// Event describes one persisted intake.
type Event struct {
	Kind          Kind
	Record        models.ApplicationRecord
	ChangedFields []string
}

// Notifier delivers intake events. Delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Notify(context.Context, Event) error { return nil }
