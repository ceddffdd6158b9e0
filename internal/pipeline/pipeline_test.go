package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scopify/benchmark-agent/internal/broadcast"
	"github.com/scopify/benchmark-agent/internal/jobstore"
	"github.com/scopify/benchmark-agent/internal/model"
)

const testReport = `# Acme Benchmark Analysis Report

## Competitive Landscape
* Market context bullet.

## Market Intelligence
* Market context bullet.

## Consumer Insights
* Market context bullet.

## Technology Trends
* Market context bullet.

## Regional Analysis
* Market context bullet.

## Political & Social Context
* Market context bullet.

## References

1. [Example](https://example.com/a)
`

func TestRun_FullFlow(t *testing.T) {
	search := &fakeSearch{docsPerQuery: 3}
	gen := &fakeGenerator{
		briefText:  "* Market insight bullet.",
		compileTxt: testReport,
		streamText: testReport,
	}
	jobs := jobstore.New(16)
	events := &recordingPublisher{}

	p := New(testConfig(), search, gen, jobs, events, nil)
	jobs.Create("job-1", "Acme", TotalSteps())

	err := p.Run(context.Background(), "job-1", testInput())
	require.NoError(t, err)

	job, ok := jobs.Get("job-1")
	require.True(t, ok)
	assert.Equal(t, model.JobStatusCompleted, job.Status)
	assert.Equal(t, 100, job.Progress)
	assert.Equal(t, StepCompleted, job.CurrentStep)

	// Every stage reported, in declared order.
	assert.Equal(t, StageSequence, job.StepsCompleted)

	// The report carries all six top-level sections.
	require.NotEmpty(t, job.Report)
	for _, section := range reportSections {
		assert.Contains(t, job.Report, "## "+section)
	}
	assert.Contains(t, job.Report, "## References")
	assert.NotEmpty(t, job.References)

	// One final completed event with the full report.
	completed := events.byStatus(broadcast.StatusCompleted)
	require.Len(t, completed, 1)
	assert.Equal(t, job.Report, completed[0].Result["report"])
}

func TestRun_AllSearchesFail(t *testing.T) {
	search := &fakeSearch{err: errors.New("search unavailable")}
	gen := &fakeGenerator{}
	jobs := jobstore.New(16)
	events := &recordingPublisher{}

	p := New(testConfig(), search, gen, jobs, events, nil)
	jobs.Create("job-2", "Acme", TotalSteps())

	err := p.Run(context.Background(), "job-2", testInput())
	require.Error(t, err)

	job, ok := jobs.Get("job-2")
	require.True(t, ok)
	assert.Equal(t, model.JobStatusFailed, job.Status)
	assert.Contains(t, job.Error, "all")
	assert.Contains(t, job.Error, "queries failed")
	assert.Empty(t, job.Report)

	// The first analyst aborts the sequence; only the collector completed.
	assert.Equal(t, []string{StageCollector}, job.StepsCompleted)

	failed := events.byStatus(broadcast.StatusFailed)
	require.Len(t, failed, 1)
}

func TestRun_StreamFailureFallsBackToDraft(t *testing.T) {
	search := &fakeSearch{docsPerQuery: 3}
	gen := &fakeGenerator{
		briefText:  "* Market insight bullet.",
		compileTxt: testReport,
		streamErr:  errors.New("stream interrupted"),
	}
	jobs := jobstore.New(16)
	events := &recordingPublisher{}

	p := New(testConfig(), search, gen, jobs, events, nil)
	jobs.Create("job-3", "Acme", TotalSteps())

	err := p.Run(context.Background(), "job-3", testInput())
	require.NoError(t, err)

	job, ok := jobs.Get("job-3")
	require.True(t, ok)
	assert.Equal(t, model.JobStatusCompleted, job.Status)

	// The draft survives, references included.
	assert.True(t, strings.HasPrefix(job.Report, "# Acme Benchmark Analysis Report"))
	assert.Contains(t, job.Report, "## References")

	// No chunks were streamed.
	assert.Empty(t, events.byStatus(broadcast.StatusReportChunk))
}

func TestRun_ProgressCheckpointsMonotonic(t *testing.T) {
	search := &fakeSearch{docsPerQuery: 2}
	gen := &fakeGenerator{
		briefText:  "* Bullet.",
		compileTxt: testReport,
		streamText: testReport,
	}
	jobs := jobstore.New(16)
	events := &recordingPublisher{}

	p := New(testConfig(), search, gen, jobs, events, nil)
	jobs.Create("job-4", "Acme", TotalSteps())
	require.NoError(t, p.Run(context.Background(), "job-4", testInput()))

	last := -1
	for _, ev := range events.byStatus(broadcast.StatusProcessing) {
		progress, ok := ev.Result["progress"].(int)
		require.True(t, ok)
		assert.Greater(t, progress, last)
		last = progress
	}
	assert.Equal(t, checkpoints[StageEditor], last)
}

func TestRun_ReportChunksPublishedDuringSweep(t *testing.T) {
	search := &fakeSearch{docsPerQuery: 2}
	gen := &fakeGenerator{
		briefText:  "* Bullet.",
		compileTxt: testReport,
		streamText: testReport,
	}
	jobs := jobstore.New(16)
	events := &recordingPublisher{}

	p := New(testConfig(), search, gen, jobs, events, nil)
	jobs.Create("job-5", "Acme", TotalSteps())
	require.NoError(t, p.Run(context.Background(), "job-5", testInput()))

	chunks := events.byStatus(broadcast.StatusReportChunk)
	require.NotEmpty(t, chunks)

	var rebuilt strings.Builder
	for _, ev := range chunks {
		chunk, ok := ev.Result["chunk"].(string)
		require.True(t, ok)
		rebuilt.WriteString(chunk)
	}
	assert.Equal(t, strings.TrimSpace(testReport), strings.TrimSpace(rebuilt.String()))
}

func TestStageSequenceMatchesCheckpoints(t *testing.T) {
	require.Len(t, StageSequence, 11)
	last := 0
	for _, name := range StageSequence {
		percent, ok := checkpoints[name]
		require.True(t, ok, "stage %s has no checkpoint", name)
		assert.Greater(t, percent, last)
		last = percent
		assert.NotEmpty(t, stageMessages[name])
	}
}
