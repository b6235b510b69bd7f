// Package caption samples frames from a source video at a fixed time
// granularity and captions each one concurrently via the vision
// capability.
package caption

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

type FrameStatus string

const (
	FrameStatusPending   FrameStatus = "pending"
	FrameStatusCompleted FrameStatus = "completed"
	FrameStatusFailed    FrameStatus = "failed"
)

// Frame is one sampled-and-captioned instant of a media, unique on
// (MediaID, FrameNumber).
type Frame struct {
	MediaID          string
	FrameNumber      int
	TimestampSeconds float64
	Caption          string
	Status           FrameStatus
	Error            string
}

// Repository persists Frame rows and lets the sampler resume after a
// restart by skipping frames it has already recorded.
type Repository interface {
	Create(f *Frame) error
	Exists(mediaID string, frameNumber int) (bool, error)
	ListByMedia(mediaID string) ([]Frame, error)
}

type SQLRepository struct {
	DB *sql.DB
}

func NewSQLRepository(db *sql.DB) *SQLRepository {
	return &SQLRepository{DB: db}
}

func (r *SQLRepository) Create(f *Frame) error {
	const stmt = `insert into "frame" (
		"media_id", "frame_number", "timestamp_seconds", "caption", "status", "error"
	) values ($1, $2, $3, $4, $5, $6)
	on conflict ("media_id", "frame_number") do update set
		"caption" = excluded.caption, "status" = excluded.status, "error" = excluded.error`
	_, err := r.DB.Exec(stmt, f.MediaID, f.FrameNumber, f.TimestampSeconds, f.Caption, string(f.Status), f.Error)
	if err != nil {
		return fmt.Errorf("inserting frame row %s/%d: %w", f.MediaID, f.FrameNumber, err)
	}
	return nil
}

func (r *SQLRepository) Exists(mediaID string, frameNumber int) (bool, error) {
	const stmt = `select count(*) from "frame" where "media_id" = $1 and "frame_number" = $2`
	var count int
	if err := r.DB.QueryRow(stmt, mediaID, frameNumber).Scan(&count); err != nil {
		return false, fmt.Errorf("checking frame existence %s/%d: %w", mediaID, frameNumber, err)
	}
	return count > 0, nil
}

func (r *SQLRepository) ListByMedia(mediaID string) ([]Frame, error) {
	const stmt = `select "media_id", "frame_number", "timestamp_seconds", "caption", "status", "error"
		from "frame" where "media_id" = $1 order by "frame_number"`
	rows, err := r.DB.Query(stmt, mediaID)
	if err != nil {
		return nil, fmt.Errorf("listing frames for %s: %w", mediaID, err)
	}
	defer rows.Close()

	var out []Frame
	for rows.Next() {
		var f Frame
		var status string
		if err := rows.Scan(&f.MediaID, &f.FrameNumber, &f.TimestampSeconds, &f.Caption, &status, &f.Error); err != nil {
			return nil, fmt.Errorf("scanning frame row: %w", err)
		}
		f.Status = FrameStatus(status)
		out = append(out, f)
	}
	return out, rows.Err()
}
