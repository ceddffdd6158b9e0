package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/scopify/benchmark-agent/internal/archive"
	"github.com/scopify/benchmark-agent/internal/broadcast"
	"github.com/scopify/benchmark-agent/internal/jobstore"
	"github.com/scopify/benchmark-agent/internal/pipeline"
	"github.com/scopify/benchmark-agent/pkg/anthropic"
	"github.com/scopify/benchmark-agent/pkg/tavily"
)

// pipelineEnv bundles the wired pipeline with its shared collaborators.
type pipelineEnv struct {
	Pipeline *pipeline.Pipeline
	Jobs     *jobstore.Store
	Events   *broadcast.Broadcaster
	Archive  *archive.Archive
}

// initPipeline constructs the API clients, job store, broadcaster, and
// optional archive, and wires the pipeline.
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	searchClient := tavily.NewClient(cfg.Tavily.Key,
		tavily.WithBaseURL(cfg.Tavily.BaseURL),
		tavily.WithRateLimit(cfg.Tavily.RatePerSecond, cfg.Tavily.RateBurst),
	)
	genClient := anthropic.NewClient(cfg.Anthropic.Key)

	jobs := jobstore.New(cfg.Jobs.MaxJobs)
	events := broadcast.New()

	var arch *archive.Archive
	if cfg.Archive.Path != "" {
		a, err := archive.New(cfg.Archive.Path)
		if err != nil {
			return nil, eris.Wrap(err, "init archive")
		}
		if err := a.Migrate(ctx); err != nil {
			a.Close()
			return nil, eris.Wrap(err, "migrate archive")
		}
		arch = a
		zap.L().Info("report archive enabled", zap.String("path", cfg.Archive.Path))
	}

	var archiver pipeline.Archiver
	if arch != nil {
		archiver = arch
	}
	p := pipeline.New(cfg, searchClient, genClient, jobs, events, archiver)

	return &pipelineEnv{
		Pipeline: p,
		Jobs:     jobs,
		Events:   events,
		Archive:  arch,
	}, nil
}

func (e *pipelineEnv) Close() {
	if e.Archive != nil {
		_ = e.Archive.Close()
	}
}
