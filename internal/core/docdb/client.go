package docdb

import (
	"context"
)

// GuardEventsCollection is the collection holding guard audit events.
const GuardEventsCollection = "guard_events"

// Client defines the interface for a document database client.
type Client interface {
	// GuardEvents returns the guard audit events collection.
	GuardEvents() Collection

	// Ping verifies the database connection.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close(ctx context.Context) error
}
