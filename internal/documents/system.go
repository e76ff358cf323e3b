package documents

import "context"

// System is the only mutation and query surface over the document library.
// After any method returns, List reflects the durable store exactly.
type System interface {
	// Load populates the mirror from the store. Called once at startup.
	Load(ctx context.Context) error

	// List returns a snapshot of the mirror ordered by id.
	List() Library

	// Find returns mirror metadata for id without touching the store.
	Find(id int64) (*Document, bool)

	Create(ctx context.Context, cmd CreateCommand) (*Document, error)
	GetByID(ctx context.Context, id int64) (*Document, error)
	Update(ctx context.Context, id int64, cmd UpdateCommand) (*Document, error)
	Delete(ctx context.Context, id int64) error
}
