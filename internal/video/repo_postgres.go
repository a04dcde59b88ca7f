package video

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// querier is the subset of *pgxpool.Pool the repository needs.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	pgSelectVideo = `SELECT id, name, views, likes FROM videos WHERE id = $1`
	pgInsertVideo = `INSERT INTO videos (id, name, views, likes) VALUES ($1, $2, $3, $4)
RETURNING id, name, views, likes`
	pgUpdateVideo = `UPDATE videos SET name = $2, views = $3, likes = $4 WHERE id = $1
RETURNING id, name, views, likes`
	pgDeleteVideo = `DELETE FROM videos WHERE id = $1`
)

type postgresRepo struct {
	q querier
}

// NewPostgresRepository returns a Repository backed by a pgx pool.
func NewPostgresRepository(q querier) Repository {
	return &postgresRepo{q: q}
}

func scanVideo(row pgx.Row) (Video, error) {
	var v Video
	err := row.Scan(&v.ID, &v.Name, &v.Views, &v.Likes)
	return v, err
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (Video, error) {
	const op = "video.repo.GetByID"

	v, err := scanVideo(r.q.QueryRow(ctx, pgSelectVideo, id))
	if err != nil {
		return Video{}, mapRepoError(op, err)
	}
	return v, nil
}

func (r *postgresRepo) Create(ctx context.Context, v Video) (Video, error) {
	const op = "video.repo.Create"

	created, err := scanVideo(r.q.QueryRow(ctx, pgInsertVideo, v.ID, v.Name, v.Views, v.Likes))
	if err != nil {
		return Video{}, mapRepoError(op, err)
	}
	return created, nil
}

func (r *postgresRepo) Update(ctx context.Context, v Video) (Video, error) {
	const op = "video.repo.Update"

	updated, err := scanVideo(r.q.QueryRow(ctx, pgUpdateVideo, v.ID, v.Name, v.Views, v.Likes))
	if err != nil {
		return Video{}, mapRepoError(op, err)
	}
	return updated, nil
}

func (r *postgresRepo) Delete(ctx context.Context, id int64) error {
	const op = "video.repo.Delete"

	tag, err := r.q.Exec(ctx, pgDeleteVideo, id)
	if err != nil {
		return mapRepoError(op, err)
	}
	if tag.RowsAffected() == 0 {
		return mapRepoError(op, errNoVideo)
	}
	return nil
}
