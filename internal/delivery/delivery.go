// Package delivery defines the contract every transport entrypoint satisfies.
package delivery

import "context"

// Delivery is a long-running transport (HTTP server, push worker) managed by
// the application lifecycle.
type Delivery interface {
	Serve(ctx context.Context) error
}
