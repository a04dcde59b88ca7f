package video

import (
	"context"
	"database/sql"
)

const (
	liteSelectVideo = `SELECT id, name, views, likes FROM videos WHERE id = ?`
	liteInsertVideo = `INSERT INTO videos (id, name, views, likes) VALUES (?, ?, ?, ?)
RETURNING id, name, views, likes`
	liteUpdateVideo = `UPDATE videos SET name = ?, views = ?, likes = ? WHERE id = ?
RETURNING id, name, views, likes`
	liteDeleteVideo = `DELETE FROM videos WHERE id = ?`
)

type sqliteRepo struct {
	db *sql.DB
}

// NewSQLiteRepository returns a Repository backed by a sqlite database handle.
func NewSQLiteRepository(db *sql.DB) Repository {
	return &sqliteRepo{db: db}
}

func scanLiteVideo(row *sql.Row) (Video, error) {
	var v Video
	err := row.Scan(&v.ID, &v.Name, &v.Views, &v.Likes)
	return v, err
}

func (r *sqliteRepo) GetByID(ctx context.Context, id int64) (Video, error) {
	const op = "video.repo.GetByID"

	v, err := scanLiteVideo(r.db.QueryRowContext(ctx, liteSelectVideo, id))
	if err != nil {
		return Video{}, mapRepoError(op, err)
	}
	return v, nil
}

func (r *sqliteRepo) Create(ctx context.Context, v Video) (Video, error) {
	const op = "video.repo.Create"

	created, err := scanLiteVideo(r.db.QueryRowContext(ctx, liteInsertVideo, v.ID, v.Name, v.Views, v.Likes))
	if err != nil {
		return Video{}, mapRepoError(op, err)
	}
	return created, nil
}

func (r *sqliteRepo) Update(ctx context.Context, v Video) (Video, error) {
	const op = "video.repo.Update"

	updated, err := scanLiteVideo(r.db.QueryRowContext(ctx, liteUpdateVideo, v.Name, v.Views, v.Likes, v.ID))
	if err != nil {
		return Video{}, mapRepoError(op, err)
	}
	return updated, nil
}

func (r *sqliteRepo) Delete(ctx context.Context, id int64) error {
	const op = "video.repo.Delete"

	res, err := r.db.ExecContext(ctx, liteDeleteVideo, id)
	if err != nil {
		return mapRepoError(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return mapRepoError(op, err)
	}
	if n == 0 {
		return mapRepoError(op, errNoVideo)
	}
	return nil
}
