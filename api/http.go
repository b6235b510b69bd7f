// Package api wires the HTTP router: the four ingress endpoints
// spec.md §6 names, a healthcheck, and the Prometheus scrape
// endpoint, behind the same logging/CORS middleware chain the
// teacher's router uses.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/videoedit/ai-edit-api/config"
	"github.com/videoedit/ai-edit-api/handlers"
	"github.com/videoedit/ai-edit-api/jobs"
	"github.com/videoedit/ai-edit-api/log"
	"github.com/videoedit/ai-edit-api/middleware"
	"github.com/videoedit/ai-edit-api/orchestrator"
)

func ListenAndServe(ctx context.Context, cli config.Cli, jobRunner *jobs.Runner, store jobs.Store, orchestratorRunner *orchestrator.Runner) error {
	router := NewAIEditAPIRouter(cli, jobRunner, store, orchestratorRunner)
	server := http.Server{Addr: cli.HTTPAddress, Handler: router}
	ctx, cancel := context.WithCancel(ctx)

	log.LogNoRequestID(
		"Starting AI Edit API!",
		"version", config.Version,
		"host", cli.HTTPAddress,
	)

	var err error
	go func() {
		err = server.ListenAndServe()
		cancel()
	}()

	<-ctx.Done()
	if err != nil {
		return err
	}

	ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}

func NewAIEditAPIRouter(cli config.Cli, jobRunner *jobs.Runner, store jobs.Store, orchestratorRunner *orchestrator.Runner) *httprouter.Router {
	router := httprouter.New()
	withLogging := middleware.LogRequest()
	withCORS := middleware.AllowCORS()

	aiEditHandlers := handlers.NewAIEditHandlersCollection(jobRunner, store, orchestratorRunner)

	router.GET("/ok", withLogging(aiEditHandlers.Ok()))
	router.GET("/healthcheck", withLogging(aiEditHandlers.Healthcheck()))
	metricsHandler := promhttp.Handler()
	router.GET("/metrics", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		metricsHandler.ServeHTTP(w, r)
	})

	router.POST("/ai-edit/generate", withLogging(withCORS(aiEditHandlers.Generate())))
	router.GET("/ai-edit/plan/:job_id", withLogging(withCORS(aiEditHandlers.Plan())))
	router.POST("/ai-edit/apply/:job_id", withLogging(withCORS(aiEditHandlers.Apply())))
	router.GET("/edit/:edit_job_id", withLogging(withCORS(aiEditHandlers.Edit())))

	return router
}
