package orchestrator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/videoedit/ai-edit-api/agent"
	"github.com/videoedit/ai-edit-api/capability"
	"github.com/videoedit/ai-edit-api/caption"
	"github.com/videoedit/ai-edit-api/media"
	"github.com/videoedit/ai-edit-api/render"
	"github.com/videoedit/ai-edit-api/scene"
	"github.com/videoedit/ai-edit-api/story"
	"github.com/videoedit/ai-edit-api/transcript"
	"github.com/videoedit/ai-edit-api/webhook"
)

type fakeFetcher struct{}

func (fakeFetcher) Fetch(requestID, url, mediaID, filename string) (string, error) {
	return "/tmp/" + mediaID + ".mp4", nil
}

type fakeProber struct{}

func (fakeProber) ProbeFile(requestID, url string, opts ...string) (media.InputVideo, error) {
	return media.InputVideo{
		Duration: 100,
		Tracks: []media.InputTrack{
			{Type: media.TrackTypeVideo, VideoTrack: media.VideoTrack{Width: 1920, Height: 1080}},
			{Type: media.TrackTypeAudio},
		},
	}, nil
}

type fakeFrameRepo struct {
	mu     sync.Mutex
	frames map[string][]caption.Frame
}

func newFakeFrameRepo() *fakeFrameRepo { return &fakeFrameRepo{frames: map[string][]caption.Frame{}} }

func (f *fakeFrameRepo) Create(fr *caption.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames[fr.MediaID] = append(f.frames[fr.MediaID], *fr)
	return nil
}
func (f *fakeFrameRepo) Exists(mediaID string, frameNumber int) (bool, error) { return false, nil }
func (f *fakeFrameRepo) ListByMedia(mediaID string) ([]caption.Frame, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frames[mediaID], nil
}

type fakeCaptioner struct{}

func (fakeCaptioner) Caption(ctx context.Context, imageURLOrDataURL, prompt string) (string, string, capability.Usage, error) {
	return "a caption", "fake-model", capability.Usage{}, nil
}

type fakeSceneExtractor struct{}

func (fakeSceneExtractor) Extract(ctx context.Context, videoHandle, extractionType, prompt string, cfg map[string]interface{}) ([]capability.SceneSegment, error) {
	return nil, errors.New("no scene detector configured")
}

type fakeTranscriber struct{}

func (fakeTranscriber) Transcribe(ctx context.Context, audioPath, language string) ([]capability.TranscriptSegment, string, error) {
	return []capability.TranscriptSegment{{Start: 0, End: 2, Text: "hello"}}, "en", nil
}

type fakeChat struct{}

func (fakeChat) ChatJSON(ctx context.Context, messages []capability.ChatMessage, temperature float32, maxTokens int) (string, capability.Usage, error) {
	return `{"edl":[{"start":0,"end":10,"type":"keep","video_id":"v1"}],"story_analysis":{"hook_timestamp":0,"climax_timestamp":5}}`, capability.Usage{}, nil
}

// newTestPipeline wires a Pipeline entirely out of fakes. The
// transcript stage still shells out to ffmpeg to extract audio before
// calling the (fake) transcription capability, so the caller must
// pre-seed a cached audio.wav for every video_id used, mirroring
// transcript_test.go's own cache-seeding helper.
func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	frameRepo := newFakeFrameRepo()
	sampler := caption.NewSampler(frameRepo, fakeCaptioner{})
	segmenter := scene.NewSegmenter(fakeSceneExtractor{}, fakeCaptioner{}, nil)
	segmenter.PollMaxElapsed = 10 * time.Millisecond
	tr := transcript.New(fakeTranscriber{})
	tr.TempDir = t.TempDir()

	return &Pipeline{
		Fetcher:       fakeFetcher{},
		Prober:        fakeProber{},
		Captioner:     sampler,
		Segmenter:     segmenter,
		Transcriber:   tr,
		Agent:         agent.New(fakeChat{}),
		CaptionPrompt: "describe this frame",
	}
}

func seedCachedAudio(t *testing.T, tempDir, mediaID string) {
	t.Helper()
	dir := filepath.Join(tempDir, mediaID)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "audio.wav"), []byte("RIFF"), 0o644))
}

func TestPipelineGenerateProducesValidatedPlan(t *testing.T) {
	p := newTestPipeline(t)
	seedCachedAudio(t, p.Transcriber.TempDir, "v1")
	req := GenerateRequest{
		Videos:  []VideoInput{{VideoID: "v1", URL: "https://example.com/v1.mp4"}},
		Summary: "a short clip",
		Intent:  story.Intent{DesiredLength: "short"},
	}

	gen, validation, err := p.Generate(context.Background(), "req-1", "job-1", req)
	require.NoError(t, err)
	require.True(t, validation.IsValid)
	require.Len(t, gen.Plan.EDL, 1)
	require.Equal(t, "/tmp/v1.mp4", gen.LocalPaths["v1"])
	require.Equal(t, 100.0, gen.SourceDurations["v1"])
	require.True(t, gen.HasAudio["v1"])
}

type fakeRenderer struct {
	calls []render.AspectRatio
}

func (f *fakeRenderer) Render(ctx context.Context, requestID, jobID string, sources []render.Source, aspect render.AspectRatio, captions []transcript.Segment) (render.Result, error) {
	f.calls = append(f.calls, aspect)
	return render.Result{Aspect: aspect, Path: "/tmp/out_" + string(aspect) + ".mp4", HasAudio: true}, nil
}

func TestPipelineApplyRendersEveryRequestedAspect(t *testing.T) {
	p := newTestPipeline(t)
	gen := GenerateResult{
		Plan: agent.Plan{EDL: []agent.Segment{{Start: 0, End: 10, Type: "keep", VideoID: "v1"}}},
		LocalPaths: map[string]string{"v1": "/tmp/v1.mp4"},
		Dimensions: map[string][2]int{"v1": {1920, 1080}},
		HasAudio:   map[string]bool{"v1": true},
	}
	renderer := &fakeRenderer{}

	result, err := p.Apply(context.Background(), "req-1", "job-1", gen, []render.AspectRatio{render.AspectLandscape, render.AspectPortrait}, nil, renderer)
	require.NoError(t, err)
	require.Len(t, result.Renders, 2)
	require.Len(t, renderer.calls, 2)
}

type fakeUploader struct{ calls int }

func (f *fakeUploader) Upload(ctx context.Context, localPath, bucket, folder, filename string) (string, error) {
	f.calls++
	return "https://storage.example.com/" + filename, nil
}

type fakeWebhookCaller struct {
	called bool
	env    webhook.Envelope
}

func (f *fakeWebhookCaller) Call(requestID, callbackURL string, env webhook.Envelope) error {
	f.called = true
	f.env = env
	return nil
}

func TestRunnerRunAllSkipsApplyWhenAutoApplyFalse(t *testing.T) {
	p := newTestPipeline(t)
	seedCachedAudio(t, p.Transcriber.TempDir, "v1")
	uploader := &fakeUploader{}
	caller := &fakeWebhookCaller{}
	runner := &Runner{Pipeline: p, Renderer: &fakeRenderer{}, Storage: uploader, Webhook: caller, Bucket: "edits"}

	req := GenerateRequest{
		Videos:    []VideoInput{{VideoID: "v1", URL: "https://example.com/v1.mp4"}},
		AutoApply: false,
	}
	outcome, err := runner.RunAll(context.Background(), "req-1", "job-1", req, nil)
	require.NoError(t, err)
	require.Empty(t, outcome.PublicURLs)
	require.Equal(t, 0, uploader.calls)
	require.False(t, caller.called)
}

func TestRunnerRunAllUploadsAndCallsWebhookWhenAutoApply(t *testing.T) {
	p := newTestPipeline(t)
	seedCachedAudio(t, p.Transcriber.TempDir, "v1")
	uploader := &fakeUploader{}
	caller := &fakeWebhookCaller{}
	runner := &Runner{Pipeline: p, Renderer: &fakeRenderer{}, Storage: uploader, Webhook: caller, Bucket: "edits"}

	req := GenerateRequest{
		Videos:       []VideoInput{{VideoID: "v1", URL: "https://example.com/v1.mp4"}},
		AutoApply:    true,
		AspectRatios: []render.AspectRatio{render.AspectLandscape},
		CallbackURL:  "https://callback.example.com/hook",
		CallbackData: map[string]interface{}{"ok": true},
	}
	outcome, err := runner.RunAll(context.Background(), "req-1", "job-1", req, nil)
	require.NoError(t, err)
	require.Len(t, outcome.PublicURLs, 1)
	require.Equal(t, 1, uploader.calls)
	require.True(t, caller.called)
	require.Equal(t, outcome.PublicURLs[0], caller.env.StorageURL)
}
