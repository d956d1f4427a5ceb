package transport

import "context"

// Repository defines the persistence contract for transport records.
type Repository interface {
	// List returns every record ordered by id descending.
	List(ctx context.Context) ([]*Record, error)

	// FindByID retrieves a record, or a not-found error.
	FindByID(ctx context.Context, id int64) (*Record, error)

	// Save inserts a new record and assigns its id.
	Save(ctx context.Context, record *Record) error

	// Update replaces every field of an existing record.
	Update(ctx context.Context, record *Record) error

	// Delete removes a record, or returns a not-found error.
	Delete(ctx context.Context, id int64) error
}
