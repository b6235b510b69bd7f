// Package media holds the media descriptor — the immutable identity,
// location, and derived technical facts for one source video, image,
// or audio file — plus the repository that persists it.
package media

import "time"

// Kind identifies the broad category of a source file.
type Kind string

const (
	KindVideo Kind = "video"
	KindImage Kind = "image"
	KindAudio Kind = "audio"
)

// Status is the lifecycle state of a Descriptor. Transitions are
// monotone: pending -> uploading -> processing -> {ready, failed},
// with archived reachable from any terminal state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusUploading  Status = "uploading"
	StatusProcessing Status = "processing"
	StatusReady      Status = "ready"
	StatusFailed     Status = "failed"
	StatusArchived   Status = "archived"
)

// Descriptor is the MediaID row: identity and location are set once at
// creation and never change; the technical facts and Status are filled
// in by the analysis pipeline as probing completes.
type Descriptor struct {
	MediaID   string `json:"media_id"`
	URL       string `json:"url"`
	LocalPath string `json:"local_path,omitempty"`

	Kind Kind `json:"kind"`

	DurationSec float64 `json:"duration_seconds,omitempty"`
	FrameRate   float64 `json:"frame_rate,omitempty"`
	Width       int64   `json:"width,omitempty"`
	Height      int64   `json:"height,omitempty"`
	VideoCodec  string  `json:"video_codec,omitempty"`
	AudioCodec  string  `json:"audio_codec,omitempty"`
	HasAudio    bool    `json:"has_audio"`
	MD5         string  `json:"md5,omitempty"`

	Status Status `json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ApplyProbe copies the technical facts learned from an InputVideo
// probe onto the descriptor and advances it to processing, leaving
// MediaID/URL/LocalPath/Kind untouched.
func (d *Descriptor) ApplyProbe(iv InputVideo) {
	d.DurationSec = iv.Duration
	d.Status = StatusProcessing

	if vt, err := iv.GetTrack(TrackTypeVideo); err == nil {
		d.FrameRate = vt.FPS
		d.Width = vt.Width
		d.Height = vt.Height
		d.VideoCodec = vt.Codec
	}
	if at, err := iv.GetTrack(TrackTypeAudio); err == nil {
		d.HasAudio = true
		d.AudioCodec = at.Codec
	}
}
