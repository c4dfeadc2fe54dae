package cce

import "context"

// Transport performs the authenticated exchanges with the remote queue. Each
// call returns the reply body as a namespace-stripped Node.
type Transport interface {
	// Submit sends a lookup request for req.Key tagged with req.CorrelationID
	Submit(ctx context.Context, req SubmittedRequest) (Node, error)
	// QueryQueue lists queue records
	QueryQueue(ctx context.Context, query QueueQuery) (Node, error)
	// FetchByFileID retrieves, and thereby consumes, one file
	FetchByFileID(ctx context.Context, id FileID) (Node, error)
}
