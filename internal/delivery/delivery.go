// Package delivery groups the inbound adapters that expose the use cases.
package delivery

import "context"

// Delivery is a long-running inbound adapter started by the fx graph.
type Delivery interface {
	// Serve blocks until the adapter stops; a clean shutdown returns nil.
	Serve(ctx context.Context) error
}
