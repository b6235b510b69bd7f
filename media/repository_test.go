package media

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestSQLRepositoryCreate(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Unix(1700000000, 0).UTC()
	d := &Descriptor{
		MediaID:   "media-1",
		URL:       "https://example.com/src.mp4",
		Kind:      KindVideo,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	dbMock.ExpectExec(`insert into "media"`).
		WithArgs(d.MediaID, d.URL, d.LocalPath, string(d.Kind), string(d.Status), d.CreatedAt, d.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := NewSQLRepository(db)
	require.NoError(t, repo.Create(d))
	require.NoError(t, dbMock.ExpectationsWereMet())
}

func TestSQLRepositoryArchive(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	dbMock.ExpectExec(`update "media" set "status"`).
		WithArgs("media-1", string(StatusArchived)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewSQLRepository(db)
	require.NoError(t, repo.Archive("media-1"))
	require.NoError(t, dbMock.ExpectationsWereMet())
}

func TestDescriptorApplyProbe(t *testing.T) {
	d := &Descriptor{MediaID: "media-1", Status: StatusUploading}
	iv := InputVideo{
		Duration: 12.5,
		Tracks: []InputTrack{
			{Type: TrackTypeVideo, Codec: "h264", VideoTrack: VideoTrack{Width: 1920, Height: 1080, FPS: 30}},
			{Type: TrackTypeAudio, Codec: "aac"},
		},
	}

	d.ApplyProbe(iv)

	require.Equal(t, StatusProcessing, d.Status)
	require.Equal(t, 12.5, d.DurationSec)
	require.Equal(t, int64(1920), d.Width)
	require.Equal(t, int64(1080), d.Height)
	require.Equal(t, "h264", d.VideoCodec)
	require.True(t, d.HasAudio)
	require.Equal(t, "aac", d.AudioCodec)
}
