package media

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// Repository persists Descriptor rows. Media is never deleted —
// Archive() is the only path out of the active set.
type Repository interface {
	Create(d *Descriptor) error
	Get(mediaID string) (*Descriptor, error)
	Update(d *Descriptor) error
	Archive(mediaID string) error
}

// SQLRepository backs Repository with a Postgres "media" table,
// mirroring the raw database/sql + lib/pq access pattern used for
// pipeline completion metrics.
type SQLRepository struct {
	DB *sql.DB
}

func NewSQLRepository(db *sql.DB) *SQLRepository {
	return &SQLRepository{DB: db}
}

func (r *SQLRepository) Create(d *Descriptor) error {
	const stmt = `insert into "media" (
		"media_id", "url", "local_path", "kind", "status",
		"created_at", "updated_at"
	) values ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.DB.Exec(stmt,
		d.MediaID, d.URL, d.LocalPath, string(d.Kind), string(d.Status),
		d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting media row: %w", err)
	}
	return nil
}

func (r *SQLRepository) Get(mediaID string) (*Descriptor, error) {
	const stmt = `select
		"media_id", "url", "local_path", "kind",
		"duration_seconds", "frame_rate", "width", "height",
		"video_codec", "audio_codec", "has_audio", "md5", "status",
		"created_at", "updated_at"
		from "media" where "media_id" = $1`
	row := r.DB.QueryRow(stmt, mediaID)

	var d Descriptor
	var kind, status string
	if err := row.Scan(
		&d.MediaID, &d.URL, &d.LocalPath, &kind,
		&d.DurationSec, &d.FrameRate, &d.Width, &d.Height,
		&d.VideoCodec, &d.AudioCodec, &d.HasAudio, &d.MD5, &status,
		&d.CreatedAt, &d.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("querying media row %s: %w", mediaID, err)
	}
	d.Kind = Kind(kind)
	d.Status = Status(status)
	return &d, nil
}

func (r *SQLRepository) Update(d *Descriptor) error {
	const stmt = `update "media" set
		"local_path" = $2, "duration_seconds" = $3, "frame_rate" = $4,
		"width" = $5, "height" = $6, "video_codec" = $7, "audio_codec" = $8,
		"has_audio" = $9, "md5" = $10, "status" = $11, "updated_at" = $12
		where "media_id" = $1`
	_, err := r.DB.Exec(stmt,
		d.MediaID, d.LocalPath, d.DurationSec, d.FrameRate,
		d.Width, d.Height, d.VideoCodec, d.AudioCodec,
		d.HasAudio, d.MD5, string(d.Status), d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("updating media row %s: %w", d.MediaID, err)
	}
	return nil
}

func (r *SQLRepository) Archive(mediaID string) error {
	const stmt = `update "media" set "status" = $2 where "media_id" = $1`
	_, err := r.DB.Exec(stmt, mediaID, string(StatusArchived))
	if err != nil {
		return fmt.Errorf("archiving media row %s: %w", mediaID, err)
	}
	return nil
}
