package video

import "context"

// Repository defines the persistence operations for Video records.
//
// Implementations report errx.NotFound when no row matches the id and
// errx.Conflict when an insert collides with an existing id.
type Repository interface {
	GetByID(ctx context.Context, id int64) (Video, error)
	Create(ctx context.Context, v Video) (Video, error)
	Update(ctx context.Context, v Video) (Video, error)
	Delete(ctx context.Context, id int64) error
}
