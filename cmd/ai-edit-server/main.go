// Command ai-edit-server starts the HTTP API: it wires the capability
// clients, the analysis/generation pipeline, the job runner, object
// storage, and the webhook caller together, then serves the four
// spec.md §6 endpoints until a termination signal arrives.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/peterbourgon/ff/v3"
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"github.com/videoedit/ai-edit-api/agent"
	"github.com/videoedit/ai-edit-api/api"
	"github.com/videoedit/ai-edit-api/capability"
	"github.com/videoedit/ai-edit-api/caption"
	"github.com/videoedit/ai-edit-api/config"
	"github.com/videoedit/ai-edit-api/fetch"
	"github.com/videoedit/ai-edit-api/jobs"
	"github.com/videoedit/ai-edit-api/log"
	"github.com/videoedit/ai-edit-api/media"
	"github.com/videoedit/ai-edit-api/orchestrator"
	"github.com/videoedit/ai-edit-api/pprof"
	"github.com/videoedit/ai-edit-api/render"
	"github.com/videoedit/ai-edit-api/scene"
	"github.com/videoedit/ai-edit-api/storage"
	"github.com/videoedit/ai-edit-api/transcript"
	"github.com/videoedit/ai-edit-api/webhook"
)

func main() {
	cli, pprofPort, err := parseCli()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	go func() {
		log.LogNoRequestID("pprof listener stopped", "err", pprof.ListenAndServe(pprofPort))
	}()

	db, err := sql.Open("postgres", cli.DBConnectionString)
	if err != nil {
		log.LogNoRequestID("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	uploader, err := storage.New(context.Background(), storage.Config{
		BaseURL:   cli.StorageBaseURL,
		Region:    cli.StorageRegion,
		AccessKey: cli.StorageAccessKey,
		SecretKey: cli.StorageSecretKey,
	})
	if err != nil {
		log.LogNoRequestID("failed to construct object storage uploader", "err", err)
		os.Exit(1)
	}

	orchestratorRunner := buildRunner(db, uploader, cli)
	store := jobs.NewSQLStore(db)
	jobRunner := jobs.NewRunner(store).WithConcurrency(cli.MaxJobsInFlight)

	group, ctx := errgroup.WithContext(context.Background())
	group.Go(func() error {
		return api.ListenAndServe(ctx, cli, jobRunner, store, orchestratorRunner)
	})
	group.Go(func() error {
		return handleSignals(ctx)
	})

	if err := group.Wait(); err != nil {
		log.LogNoRequestID("shutting down", "err", err)
	}
}

// parseCli builds config.Cli from flags, an optional config file, and
// AI_EDIT_API-prefixed environment variables, matching the
// flag.NewFlagSet + ff.Parse idiom the rest of the ambient stack uses
// for process configuration.
func parseCli() (config.Cli, int, error) {
	cli := config.Cli{}
	fs := flag.NewFlagSet("ai-edit-server", flag.ExitOnError)

	fs.StringVar(&cli.HTTPAddress, "http-addr", "0.0.0.0:8080", "Address to bind the HTTP API to")
	pprofPort := fs.Int("pprof-port", 6061, "pprof debug listen port")

	fs.StringVar(&cli.VisionAPIBase, "vision-api-base", "", "Base URL for the vision captioning capability")
	fs.StringVar(&cli.VisionAPIKey, "vision-api-key", "", "API key for the vision captioning capability")
	fs.StringVar(&cli.LLMAPIBase, "llm-api-base", "", "Base URL for the plan-generation LLM capability")
	fs.StringVar(&cli.LLMAPIKey, "llm-api-key", "", "API key for the plan-generation LLM capability")
	fs.StringVar(&cli.TranscriptionAPIBase, "transcription-api-base", "", "Base URL for the speech transcription capability")
	fs.StringVar(&cli.TranscriptionAPIKey, "transcription-api-key", "", "API key for the speech transcription capability")
	fs.StringVar(&cli.SceneExtractionAPIKey, "scene-extraction-api-key", "", "API key for the scene-detection capability")

	fs.StringVar(&cli.StorageBucket, "storage-bucket", "", "Object storage bucket for rendered output")
	fs.StringVar(&cli.StorageBaseURL, "storage-base-url", "", "Object storage endpoint / public URL root")
	fs.StringVar(&cli.StorageAccessKey, "storage-access-key", "", "Object storage access key")
	fs.StringVar(&cli.StorageSecretKey, "storage-secret-key", "", "Object storage secret key")
	fs.StringVar(&cli.StorageRegion, "storage-region", "us-east-1", "Object storage region")

	fs.StringVar(&cli.DBConnectionString, "db-connection-string", "", "Postgres connection string for the job/media store")
	fs.IntVar(&cli.MaxJobsInFlight, "max-jobs-in-flight", 4, "Maximum number of generate/apply jobs the runner processes concurrently")

	_ = fs.String("config", "", "config file (optional)")

	err := ff.Parse(fs, os.Args[1:],
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.PlainParser),
		ff.WithEnvVarPrefix("AI_EDIT_API"),
	)
	if err != nil {
		return cli, 0, fmt.Errorf("parsing cli: %w", err)
	}
	if cli.DBConnectionString == "" {
		return cli, 0, fmt.Errorf("db-connection-string is required")
	}
	if cli.StorageBaseURL == "" {
		return cli, 0, fmt.Errorf("storage-base-url is required")
	}
	return cli, *pprofPort, nil
}

// buildRunner wires every capability client, the analysis pipeline,
// and the renderer into one orchestrator.Runner, mirroring the way
// the teacher's main assembles its pipeline.Coordinator from smaller,
// independently constructed pieces before handing it to the router.
func buildRunner(db *sql.DB, uploader *storage.Uploader, cli config.Cli) *orchestrator.Runner {
	prober := media.Probe{IgnoreErrMessages: []string{"moov atom not found"}}

	visionClient := capability.NewVisionClient(cli.VisionAPIBase, cli.VisionAPIKey, "gpt-4o-mini")
	llmClient := capability.NewLLMClient(cli.LLMAPIBase, cli.LLMAPIKey, "gpt-4o")
	transcriptionClient := capability.NewTranscriptionClient(cli.TranscriptionAPIBase, cli.TranscriptionAPIKey)
	sceneClient := capability.NewSceneExtractionClient(cli.VisionAPIBase, cli.SceneExtractionAPIKey)

	captionSampler := caption.NewSampler(caption.NewSQLRepository(db), visionClient)
	segmenter := scene.NewSegmenter(sceneClient, visionClient, func(localPath string, start, end float64, k int) ([][]byte, error) {
		return caption.ExtractRepresentativeFrames(config.TempDir, localPath, start, end, k)
	})
	transcriber := transcript.New(transcriptionClient)
	planAgent := agent.New(llmClient)

	pipeline := &orchestrator.Pipeline{
		Fetcher:              fetch.New(),
		Prober:               prober,
		Captioner:            captionSampler,
		Segmenter:            segmenter,
		Transcriber:          transcriber,
		Agent:                planAgent,
		FrameGranularitySecs: config.DefaultFrameGranularitySecs,
		SceneIntervalSecs:    config.DefaultSceneDetectThreshold,
		CaptionPrompt:        "Describe what is happening in this video frame in one concise sentence.",
	}

	renderer := render.New(prober, config.TempDir)

	return &orchestrator.Runner{
		Pipeline: pipeline,
		Renderer: renderer,
		Storage:  uploader,
		Webhook:  webhook.New(),
		Bucket:   cli.StorageBucket,
	}
}

func handleSignals(ctx context.Context) error {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGINT)
	select {
	case s := <-c:
		return fmt.Errorf("caught signal=%v, attempting clean shutdown", s)
	case <-ctx.Done():
		return nil
	}
}
