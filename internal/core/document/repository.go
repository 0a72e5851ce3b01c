package document

import "context"

// Repository loads the document records of a client.
type Repository interface {
	// ListByClient returns every record of the client. An unknown client yields an empty slice.
	ListByClient(ctx context.Context, clientID string) ([]Record, error)
}
