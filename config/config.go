// Package config holds process-wide configuration: compile-time
// defaults, the Cli flag struct, and small injectable globals (clock,
// id generation) that tests override.
package config

import (
	"time"
)

var Version string

// Clock lets tests generate fixed timestamps instead of time.Now().
var Clock TimestampGenerator = RealTimestampGenerator{}

// Directory under which downloaded/cached media and render working
// files live, per spec §6 "Persistent storage layout".
var TempDir = "storage/temp"
var UploadsDir = "storage/uploads"
var ProcessedDir = "storage/processed"

// Frame sampling granularity in seconds (spec §4.3 "every g seconds").
const DefaultFrameGranularitySecs = 2

// Default shot-detection threshold for the scene segmenter (spec §4.4).
const DefaultSceneDetectThreshold = 20

// Default representative frames per detected shot (spec §4.4).
const DefaultRepresentativeFramesPerShot = 5

// Data compressor defaults (spec §4.6).
const (
	DefaultMaxFrames              = 50
	DefaultMaxScenes              = 20
	DefaultMaxTranscriptSegments  = 100
)

// Story-intent duration constants (spec §3, §4.7).
const (
	MinimumTargetDurationSecs   = 20.0
	ShortFallbackDurationFactor = 0.6
	MaxRenderedDurationSecs     = 40.0
)

// LLM client policy (spec §4.8).
const (
	DefaultLLMTemperature = 0.3
	DefaultLLMMaxTokens   = 6000
	LLMMaxRetries         = 3
)

// Blob fetcher policy (spec §4.1).
const (
	DownloadChunkBytes         = 8 * 1024
	DownloadProgressLogBytes   = 10 * 1024 * 1024
)

// Job runner policy (spec §4.12).
const (
	DefaultJobMaxRetries   = 3
	DefaultJobRetryDelay   = 60 * time.Second
	JobErrorTruncateLength = 500
)

// Timeouts (spec §5).
const (
	DownloadTimeout = 600 * time.Second
	LLMCallTimeout  = 120 * time.Second
	UploadTimeout   = 600 * time.Second
	WebhookTimeout  = 30 * time.Second
)

// Renderer codec profile (spec §4.11 / §6).
const (
	RenderPreset       = "medium"
	RenderCRF          = 23
	RenderAudioCodec   = "aac"
	LoudnormI          = "-16"
	LoudnormTP         = "-1.5"
	LoudnormLRA        = "11"
	CaptionFontSize    = 24
	CaptionOutlineSize = 2
)

// Maximum number of frames of one media the frame sampler captions concurrently (spec §4.3).
var FrameCaptionConcurrency = 8
