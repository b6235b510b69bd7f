package orchestrator

import (
	"context"
	"fmt"

	"github.com/videoedit/ai-edit-api/agent"
	"github.com/videoedit/ai-edit-api/caption"
	"github.com/videoedit/ai-edit-api/compress"
	"github.com/videoedit/ai-edit-api/config"
	"github.com/videoedit/ai-edit-api/edl"
	"github.com/videoedit/ai-edit-api/media"
	"github.com/videoedit/ai-edit-api/scene"
	"github.com/videoedit/ai-edit-api/story"
	"github.com/videoedit/ai-edit-api/transcript"
)

// Pipeline wires together every analysis and generation stage. Each
// field is an interface or small struct so tests can substitute fakes
// without hitting real external capabilities, mirroring the way
// caption.Sampler, scene.Segmenter, and transcript.Transcriber are
// themselves built around narrow capability interfaces.
type Pipeline struct {
	Fetcher     Fetcher
	Prober      media.Prober
	Captioner   *caption.Sampler
	Segmenter   *scene.Segmenter
	Transcriber *transcript.Transcriber
	Agent       *agent.Client

	FrameGranularitySecs float64
	SceneIntervalSecs    float64
	CaptionPrompt        string
}

// Fetcher is the subset of fetch.Fetcher the generate stage needs;
// narrowed to an interface so tests don't need a real temp dir and
// HTTP round trip.
type Fetcher interface {
	Fetch(requestID, url, mediaID, filename string) (string, error)
}

// Generate runs the full generate_edit_plan stage: fetch each source
// video, probe it, sample frames, segment scenes, transcribe audio,
// compress each modality, build the prompt, and call the agent for a
// validated Plan. Per spec.md §4.13 this stage runs to completion (or
// fails) before apply ever starts — GenerateResult carries everything
// apply needs so it never re-touches the network.
func (p *Pipeline) Generate(ctx context.Context, requestID, jobID string, req GenerateRequest) (GenerateResult, edl.ValidationResult, error) {
	result := GenerateResult{
		SourceDurations: make(map[string]float64),
		LocalPaths:      make(map[string]string),
		Dimensions:      make(map[string][2]int),
		HasAudio:        make(map[string]bool),
	}

	var videoContexts []story.VideoContext
	var allFrames []caption.Frame
	var allScenes []scene.Scene
	var allTranscript []transcript.Segment

	for _, v := range req.Videos {
		localPath, err := p.Fetcher.Fetch(requestID, v.URL, v.VideoID, v.VideoID+".mp4")
		if err != nil {
			return result, edl.ValidationResult{}, fmt.Errorf("fetching video %s: %w", v.VideoID, err)
		}
		result.LocalPaths[v.VideoID] = localPath

		probed, err := p.Prober.ProbeFile(requestID, localPath)
		if err != nil {
			return result, edl.ValidationResult{}, fmt.Errorf("probing video %s: %w", v.VideoID, err)
		}
		videoTrack, err := probed.GetTrack(media.TrackTypeVideo)
		if err != nil {
			return result, edl.ValidationResult{}, fmt.Errorf("video %s has no video track: %w", v.VideoID, err)
		}
		result.SourceDurations[v.VideoID] = probed.Duration
		result.Dimensions[v.VideoID] = [2]int{int(videoTrack.Width), int(videoTrack.Height)}
		if _, audioErr := probed.GetTrack(media.TrackTypeAudio); audioErr == nil {
			result.HasAudio[v.VideoID] = true
		}

		frameAgg, err := p.Captioner.Sample(ctx, requestID, v.VideoID, localPath, probed.Duration, p.granularity(), p.CaptionPrompt)
		if err != nil {
			return result, edl.ValidationResult{}, fmt.Errorf("sampling frames for %s: %w", v.VideoID, err)
		}
		frames, err := p.Captioner.Repo.ListByMedia(v.VideoID)
		if err != nil {
			return result, edl.ValidationResult{}, fmt.Errorf("listing frames for %s: %w", v.VideoID, err)
		}
		allFrames = append(allFrames, frames...)

		scenes, err := p.Segmenter.ShotBased(ctx, requestID, v.VideoID, localPath, probed.Duration)
		if err != nil {
			scenes = scene.TimeBased(v.VideoID, probed.Duration, p.sceneInterval())
		}
		allScenes = append(allScenes, scenes...)

		tr, err := p.Transcriber.Transcribe(ctx, requestID, v.VideoID, localPath, "")
		if err != nil {
			return result, edl.ValidationResult{}, fmt.Errorf("transcribing %s: %w", v.VideoID, err)
		}
		allTranscript = append(allTranscript, tr.Segments...)

		videoContexts = append(videoContexts, story.VideoContext{
			VideoID:     v.VideoID,
			DurationSec: probed.Duration,
			FrameCount:  frameAgg.Completed,
			SceneCount:  len(scenes),
		})
	}

	compressedFrames, _ := compress.Frames(allFrames, config.DefaultMaxFrames, "temporal")
	compressedScenes, _ := compress.Scenes(allScenes, config.DefaultMaxScenes)
	compressedTranscript, _ := compress.Transcript(allTranscript, config.DefaultMaxTranscriptSegments, "uniform")

	messages := story.Build(story.BuildRequest{
		Videos:     videoContexts,
		Summary:    req.Summary,
		Intent:     req.Intent,
		Frames:     compressedFrames,
		Scenes:     compressedScenes,
		Transcript: compressedTranscript,
	})

	plan, _, err := p.Agent.GenerateStructured(ctx, messages)
	if err != nil {
		return result, edl.ValidationResult{}, fmt.Errorf("generating edit plan: %w", err)
	}
	result.Plan = plan

	totalDuration := totalSourceDuration(result.SourceDurations)
	validation := edl.Validate(plan, totalDuration)
	// Persist the sanitized EDL, not the agent's raw output, so every
	// segment in the stored plan satisfies the timestamp/overlap
	// invariants the validator just checked (spec.md §8 property 2).
	result.Plan.EDL = validation.SanitizedEDL
	return result, validation, nil
}

func (p *Pipeline) granularity() float64 {
	if p.FrameGranularitySecs > 0 {
		return p.FrameGranularitySecs
	}
	return config.DefaultFrameGranularitySecs
}

func (p *Pipeline) sceneInterval() float64 {
	if p.SceneIntervalSecs > 0 {
		return p.SceneIntervalSecs
	}
	return config.DefaultFrameGranularitySecs * 5
}

func totalSourceDuration(durations map[string]float64) float64 {
	var total float64
	for _, d := range durations {
		total += d
	}
	return total
}
