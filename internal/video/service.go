package video

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/sundayezeilo/videorecords/internal/errx"
)

var (
	errVideoExists = errors.New("video already exists")
	errNegativeID  = errors.New("video id cannot be negative")
)

// CreateVideoRequest holds the fields of a new record. All three are required.
type CreateVideoRequest struct {
	Name  string
	Views int64
	Likes int64
}

// UpdateVideoRequest holds a partial update. A nil field was not supplied.
//
// A supplied field is only applied when it is truthy: a non-empty name or a
// non-zero count. Supplying "" or 0 therefore leaves the stored value as is.
type UpdateVideoRequest struct {
	Name  *string
	Views *int64
	Likes *int64
}

// Service defines the operations on video records.
type Service interface {
	Get(ctx context.Context, id int64) (Video, error)
	Create(ctx context.Context, id int64, req CreateVideoRequest) (Video, error)
	Update(ctx context.Context, id int64, req UpdateVideoRequest) (Video, error)
	Delete(ctx context.Context, id int64) error
}

type service struct {
	repo Repository
}

// NewService creates a Service over repo. The service keeps no state of its own.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Get(ctx context.Context, id int64) (Video, error) {
	const op = "video.service.Get"

	if id < 0 {
		return Video{}, errx.E(op, errx.Invalid, errNegativeID)
	}

	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Video{}, errx.E(op, errx.KindOf(err), err)
	}
	return v, nil
}

// Create inserts a record under id unless one already exists. A concurrent
// insert that wins the race surfaces from the repository as Conflict too.
func (s *service) Create(ctx context.Context, id int64, req CreateVideoRequest) (Video, error) {
	const op = "video.service.Create"

	if id < 0 {
		return Video{}, errx.E(op, errx.Invalid, errNegativeID)
	}

	var fe errx.FieldErrors
	validateName(&fe, req.Name, true)
	if err := fe.Err(); err != nil {
		return Video{}, errx.E(op, errx.Invalid, err)
	}

	_, err := s.repo.GetByID(ctx, id)
	switch {
	case err == nil:
		return Video{}, errx.E(op, errx.Conflict, fmt.Errorf("%w: id %d", errVideoExists, id))
	case errx.KindOf(err) != errx.NotFound:
		return Video{}, errx.E(op, errx.KindOf(err), err)
	}

	created, err := s.repo.Create(ctx, Video{
		ID:    id,
		Name:  req.Name,
		Views: req.Views,
		Likes: req.Likes,
	})
	if err != nil {
		return Video{}, errx.E(op, errx.KindOf(err), err)
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, id int64, req UpdateVideoRequest) (Video, error) {
	const op = "video.service.Update"

	if id < 0 {
		return Video{}, errx.E(op, errx.Invalid, errNegativeID)
	}

	// A missing record wins over a bad name.
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Video{}, errx.E(op, errx.KindOf(err), err)
	}

	if req.Name != nil {
		var fe errx.FieldErrors
		validateName(&fe, *req.Name, false)
		if err := fe.Err(); err != nil {
			return Video{}, errx.E(op, errx.Invalid, err)
		}
	}

	updated, err := s.repo.Update(ctx, applyUpdate(current, req))
	if err != nil {
		return Video{}, errx.E(op, errx.KindOf(err), err)
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	const op = "video.service.Delete"

	if id < 0 {
		return errx.E(op, errx.Invalid, errNegativeID)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return errx.E(op, errx.KindOf(err), err)
	}
	return nil
}

// applyUpdate overwrites the fields of v that req supplies with a truthy value.
func applyUpdate(v Video, req UpdateVideoRequest) Video {
	if req.Name != nil && *req.Name != "" {
		v.Name = *req.Name
	}
	if req.Views != nil && *req.Views != 0 {
		v.Views = *req.Views
	}
	if req.Likes != nil && *req.Likes != 0 {
		v.Likes = *req.Likes
	}
	return v
}

func validateName(fe *errx.FieldErrors, name string, required bool) {
	if name == "" {
		if required {
			fe.Add("name", "name cannot be empty")
		}
		return
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		fe.Add("name", fmt.Sprintf("name too long (maximum %d characters)", MaxNameLength))
	}
}
