package holding

import "context"

// Repository loads the holding-formation cases of a client.
type Repository interface {
	// ListByClient returns every case of the client. An unknown client yields an empty slice.
	ListByClient(ctx context.Context, clientID string) ([]Case, error)
}
