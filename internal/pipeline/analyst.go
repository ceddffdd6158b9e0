package pipeline

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/scopify/benchmark-agent/internal/config"
	"github.com/scopify/benchmark-agent/internal/model"
	"github.com/scopify/benchmark-agent/pkg/tavily"
)

// queryBuilder derives a topic's search queries from the job input. Builders
// for market-wide topics must not include the company name in any query; the
// point of those vectors is the market around the company, not the company.
type queryBuilder func(in model.InputContext) []string

// analyst is the shared implementation behind every research vector. It fans
// its queries out concurrently, merges results by URL, and tolerates partial
// query failure.
type analyst struct {
	name         string
	topic        model.Topic
	search       tavily.Client
	cfg          config.TavilyConfig
	buildQueries queryBuilder
}

func (a *analyst) Name() string { return a.name }

func (a *analyst) Run(ctx context.Context, jobID string, st *model.ResearchState) error {
	log := zap.L().With(zap.String("job_id", jobID), zap.String("stage", a.name))

	queries := a.buildQueries(st.Input)
	if len(queries) == 0 {
		return eris.Errorf("%s: no queries derived", a.name)
	}
	log.Info("analyst: issuing queries", zap.Int("count", len(queries)))

	var (
		mu        sync.Mutex
		collected []model.Document
		succeeded int
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, query := range queries {
		g.Go(func() error {
			resp, err := a.search.Search(gctx, tavily.SearchRequest{
				Query:             query,
				SearchDepth:       tavily.SearchDepthBasic,
				MaxResults:        a.cfg.MaxResults,
				IncludeRawContent: a.cfg.IncludeRawText,
			})
			if err != nil {
				// A single failed query is dropped, not fatal.
				log.Warn("analyst: query failed", zap.String("query", query), zap.Error(err))
				return nil
			}

			docs := make([]model.Document, 0, len(resp.Results))
			for _, r := range resp.Results {
				content := r.Content
				if r.RawContent != "" {
					content = r.RawContent
				}
				docs = append(docs, model.Document{
					URL:     r.URL,
					Title:   r.Title,
					Content: content,
					Score:   r.Score,
				})
			}

			mu.Lock()
			collected = append(collected, docs...)
			succeeded++
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if succeeded == 0 {
		return eris.Errorf("%s: all %d queries failed", a.name, len(queries))
	}

	set := make(model.DocumentSet)
	set.Merge(collected)
	log.Info("analyst: collected documents",
		zap.Int("documents", len(set)),
		zap.Int("queries_succeeded", succeeded),
	)
	return st.SetRawDocs(a.topic, set)
}
