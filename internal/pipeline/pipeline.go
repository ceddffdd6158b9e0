package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/scopify/benchmark-agent/internal/broadcast"
	"github.com/scopify/benchmark-agent/internal/config"
	"github.com/scopify/benchmark-agent/internal/jobstore"
	"github.com/scopify/benchmark-agent/internal/model"
	"github.com/scopify/benchmark-agent/pkg/anthropic"
	"github.com/scopify/benchmark-agent/pkg/tavily"
)

// Archiver persists terminal jobs. Nil disables archiving.
type Archiver interface {
	Save(ctx context.Context, job *model.Job) error
}

// Pipeline executes the benchmark research sequence for submitted jobs. One
// Run call owns one job end to end; the caller launches it on its own
// goroutine and observes it through the job store and the broadcaster.
type Pipeline struct {
	cfg     *config.Config
	search  tavily.Client
	gen     anthropic.Client
	jobs    *jobstore.Store
	events  broadcast.Publisher
	archive Archiver
}

// New wires the pipeline with its collaborators. archive may be nil.
func New(
	cfg *config.Config,
	search tavily.Client,
	gen anthropic.Client,
	jobs *jobstore.Store,
	events broadcast.Publisher,
	archive Archiver,
) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		search:  search,
		gen:     gen,
		jobs:    jobs,
		events:  events,
		archive: archive,
	}
}

// stages builds the fixed sequence. The shape is author-time: the order
// matches StageSequence and never depends on job data.
func (p *Pipeline) stages() []Stage {
	return []Stage{
		newCollector(),
		newCompaniesProductsAnalyst(p.search, p.cfg.Tavily),
		newConsumerBrandsAnalyst(p.search, p.cfg.Tavily),
		newCountriesRegionsAnalyst(p.search, p.cfg.Tavily),
		newDigitalTrendsAnalyst(p.search, p.cfg.Tavily),
		newIndustriesMarketsAnalyst(p.search, p.cfg.Tavily),
		newPoliticsSocietyAnalyst(p.search, p.cfg.Tavily),
		newCurator(p.cfg.Pipeline),
		newEnricher(),
		newBriefingGenerator(p.gen, p.cfg.Anthropic, p.cfg.Pipeline, p.events),
		newEditor(p.gen, p.cfg.Anthropic, p.events),
	}
}

// TotalSteps is the number of stages a job reports against.
func TotalSteps() int { return len(StageSequence) }

// Run executes every stage in order for one job. A stage error marks the job
// failed and stops; there is no retry. On success the job carries the final
// report and the references the curator retained.
func (p *Pipeline) Run(ctx context.Context, jobID string, input model.InputContext) error {
	log := zap.L().With(zap.String("job_id", jobID), zap.String("company", input.Company))
	log.Info("pipeline: starting benchmark analysis")
	start := time.Now()

	st := model.NewResearchState(input)
	for _, stage := range p.stages() {
		if err := stage.Run(ctx, jobID, st); err != nil {
			log.Error("pipeline: stage failed",
				zap.String("stage", stage.Name()),
				zap.Error(err),
			)
			p.jobs.Fail(jobID, err.Error())
			p.events.Publish(broadcast.Event{
				JobID:   jobID,
				Status:  broadcast.StatusFailed,
				Message: err.Error(),
				Result: map[string]any{
					"step":  stage.Name(),
					"error": err.Error(),
				},
			})
			p.archiveJob(jobID)
			return err
		}

		percent := checkpoints[stage.Name()]
		p.jobs.SetProcessing(jobID, stage.Name(), percent)
		p.events.Publish(broadcast.Event{
			JobID:   jobID,
			Status:  broadcast.StatusProcessing,
			Message: stageMessages[stage.Name()],
			Result: map[string]any{
				"step":     stage.Name(),
				"progress": percent,
			},
		})
	}

	p.jobs.Complete(jobID, st.Report, st.References, st.ReferenceInfo)
	p.events.Publish(broadcast.Event{
		JobID:   jobID,
		Status:  broadcast.StatusCompleted,
		Message: "Benchmark analysis completed successfully",
		Result: map[string]any{
			"report":       st.Report,
			"company":      input.Company,
			"progress":     100,
			"current_step": StepCompleted,
		},
	})
	p.archiveJob(jobID)

	log.Info("pipeline: completed",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("report_chars", len(st.Report)),
		zap.Int("references", len(st.References)),
	)
	return nil
}

// archiveJob persists the terminal job record. Archive failures are logged
// only; the in-memory record remains authoritative.
func (p *Pipeline) archiveJob(jobID string) {
	if p.archive == nil {
		return
	}
	job, ok := p.jobs.Get(jobID)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := p.archive.Save(ctx, job); err != nil {
		zap.L().Warn("pipeline: archive write failed",
			zap.String("job_id", jobID),
			zap.Error(err),
		)
	}
}
