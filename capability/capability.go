// Package capability wraps the external AI services the pipeline
// depends on: vision captioning, LLM chat completion, audio
// transcription, and scene extraction. Each client accepts a base URL
// and key so the same go-openai-compatible wire protocol can point at
// different providers per environment.
package capability

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/videoedit/ai-edit-api/apierrors"
	"github.com/videoedit/ai-edit-api/metrics"
)

// Usage mirrors the token accounting every capability call reports.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// Captioner is implemented by VisionClient; callers depend on the
// interface so tests can substitute a fake.
type Captioner interface {
	Caption(ctx context.Context, imageURLOrDataURL, prompt string) (text, model string, usage Usage, err error)
}

// ChatCompleter is implemented by LLMClient.
type ChatCompleter interface {
	ChatJSON(ctx context.Context, messages []ChatMessage, temperature float32, maxTokens int) (content string, usage Usage, err error)
}

// Transcriber is implemented by TranscriptionClient.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, language string) (segments []TranscriptSegment, detectedLanguage string, err error)
}

// SceneExtractor is implemented by SceneExtractionClient.
type SceneExtractor interface {
	Extract(ctx context.Context, videoHandle, extractionType, prompt string, extractionConfig map[string]interface{}) ([]SceneSegment, error)
}

func newClient(baseURL, apiKey string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(cfg)
}

// VisionClient captions still frames. Images may be supplied either
// as an http(s) URL or as a base64 data URL; the capability must
// accept both indistinguishably.
type VisionClient struct {
	client *openai.Client
	model  string
}

func NewVisionClient(baseURL, apiKey, model string) *VisionClient {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &VisionClient{client: newClient(baseURL, apiKey), model: model}
}

// CaptionDataURL builds a base64 data URL from raw JPEG/PNG bytes for
// use with Caption.
func CaptionDataURL(mimeType string, imageBytes []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(imageBytes))
}

func (v *VisionClient) Caption(ctx context.Context, imageURLOrDataURL, prompt string) (text, model string, usage Usage, err error) {
	resp, err := v.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: v.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: prompt},
					{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: imageURLOrDataURL}},
				},
			},
		},
	})
	if err != nil {
		return "", "", Usage{}, apierrors.NewDependencyUnavailable("vision captioning request failed", err)
	}
	if len(resp.Choices) == 0 {
		return "", "", Usage{}, apierrors.NewDependencyFailure("vision captioning returned no choices", nil)
	}
	return resp.Choices[0].Message.Content, resp.Model, Usage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}

// LLMClient drives chat completion, forcing a JSON object response
// so the agent package can parse a structured edit plan.
type LLMClient struct {
	client *openai.Client
	model  string
}

func NewLLMClient(baseURL, apiKey, model string) *LLMClient {
	if model == "" {
		model = "gpt-4o"
	}
	return &LLMClient{client: newClient(baseURL, apiKey), model: model}
}

type ChatMessage struct {
	Role    string
	Content string
}

// ChatJSON sends messages and asks the endpoint for a raw JSON object
// response. temperature and maxTokens are policy knobs the caller
// derives from config; retries are the caller's responsibility.
func (l *LLMClient) ChatJSON(ctx context.Context, messages []ChatMessage, temperature float32, maxTokens int) (content string, usage Usage, err error) {
	oaMessages := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		oaMessages[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}

	resp, err := l.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    l.model,
		Messages: oaMessages,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", Usage{}, apierrors.NewDependencyUnavailable("llm chat completion request failed", err)
	}
	if len(resp.Choices) == 0 {
		return "", Usage{}, apierrors.NewDependencyFailure("llm chat completion returned no choices", nil)
	}
	return resp.Choices[0].Message.Content, Usage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}

// TranscriptSegment is one ordered span of a transcription result.
type TranscriptSegment struct {
	Start       float64
	End         float64
	Text        string
	Speaker     string
	AvgLogprob  float64
	HasSpeaker  bool
	HasLogprob  bool
}

// TranscriptionClient wraps Whisper-compatible audio transcription.
type TranscriptionClient struct {
	client *openai.Client
}

func NewTranscriptionClient(baseURL, apiKey string) *TranscriptionClient {
	return &TranscriptionClient{client: newClient(baseURL, apiKey)}
}

func (t *TranscriptionClient) Transcribe(ctx context.Context, audioPath, language string) (segments []TranscriptSegment, detectedLanguage string, err error) {
	req := openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
		Language: language,
	}
	resp, err := t.client.CreateTranscription(ctx, req)
	if err != nil {
		return nil, "", apierrors.NewDependencyUnavailable("transcription request failed", err)
	}

	segments = make([]TranscriptSegment, len(resp.Segments))
	for i, s := range resp.Segments {
		segments[i] = TranscriptSegment{
			Start:      s.Start,
			End:        s.End,
			Text:       strings.TrimSpace(s.Text),
			AvgLogprob: s.AvgLogprob,
			HasLogprob: true,
		}
	}
	return segments, resp.Language, nil
}

// SceneSegment is one externally-detected scene boundary.
type SceneSegment struct {
	Start       float64
	End         float64
	Description string
	Metadata    map[string]interface{}
}

// SceneExtractionClient calls a scene-extraction capability that, per
// the shared wire contract, accepts a video handle plus an extraction
// type/config and a prompt, and is reached over plain HTTP+JSON rather
// than the chat-completion protocol the other capabilities share.
type SceneExtractionClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewSceneExtractionClient(baseURL, apiKey string) *SceneExtractionClient {
	return &SceneExtractionClient{httpClient: http.DefaultClient, baseURL: baseURL, apiKey: apiKey}
}

type sceneExtractionRequest struct {
	VideoHandle     string                 `json:"video_handle"`
	ExtractionType  string                 `json:"extraction_type"`
	ExtractionConfig map[string]interface{} `json:"extraction_config,omitempty"`
	Prompt          string                 `json:"prompt"`
}

type sceneExtractionResponse struct {
	Scenes []struct {
		Start       float64                `json:"start"`
		End         float64                `json:"end"`
		Description string                 `json:"description"`
		Metadata    map[string]interface{} `json:"metadata,omitempty"`
	} `json:"scenes"`
}

func (s *SceneExtractionClient) Extract(ctx context.Context, videoHandle, extractionType, prompt string, extractionConfig map[string]interface{}) ([]SceneSegment, error) {
	payload := sceneExtractionRequest{
		VideoHandle:      videoHandle,
		ExtractionType:   extractionType,
		ExtractionConfig: extractionConfig,
		Prompt:           prompt,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, apierrors.NewInvalidInput("marshaling scene extraction request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/scenes", bytes.NewReader(body))
	if err != nil {
		return nil, apierrors.NewInvalidInput("building scene extraction request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := metrics.MonitorRequest(metrics.Metrics.SceneExtraction, s.httpClient, req)
	if err != nil {
		return nil, apierrors.NewDependencyUnavailable("scene extraction request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apierrors.NewDependencyFailure(fmt.Sprintf("scene extraction returned status %d", resp.StatusCode), nil)
	}

	var parsed sceneExtractionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, apierrors.NewDependencyFailure("decoding scene extraction response", err)
	}

	out := make([]SceneSegment, len(parsed.Scenes))
	for i, sc := range parsed.Scenes {
		out[i] = SceneSegment{Start: sc.Start, End: sc.End, Description: sc.Description, Metadata: sc.Metadata}
	}
	return out, nil
}
