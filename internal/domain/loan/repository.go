package loan

import "context"

// Store persists loan requests. Each method is atomic: a call either fully
// persists or has no effect.
type Store interface {
	Get(ctx context.Context, requestID string) (Request, bool, error)
	Put(ctx context.Context, r Request) error
	// List returns every request in insertion order.
	List(ctx context.Context) ([]Request, error)
	// CompareAndSwap replaces the stored request with updated only if its
	// current status equals expected. ok is false when the status differs or
	// the request does not exist.
	CompareAndSwap(ctx context.Context, requestID string, expected Status, updated Request) (ok bool, err error)
}
