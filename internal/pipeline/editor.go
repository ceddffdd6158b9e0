package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/scopify/benchmark-agent/internal/broadcast"
	"github.com/scopify/benchmark-agent/internal/config"
	"github.com/scopify/benchmark-agent/internal/model"
	"github.com/scopify/benchmark-agent/pkg/anthropic"
)

// reportSections is the fixed top-level outline of the final report.
var reportSections = []string{
	"Competitive Landscape",
	"Market Intelligence",
	"Consumer Insights",
	"Technology Trends",
	"Regional Analysis",
	"Political & Social Context",
}

// benchmarkBriefingOrder fixes which briefings the editor compiles and in
// what order they are fed to the compile pass.
var benchmarkBriefingOrder = []model.Topic{
	model.TopicCompaniesProducts,
	model.TopicConsumerBrands,
	model.TopicCountriesRegions,
	model.TopicDigitalTrends,
	model.TopicIndustriesMarkets,
	model.TopicPoliticsSociety,
}

// editor compiles the topic briefings into the final report in three passes
// over one accumulating text. Pass 1 merges the briefings into a draft and
// appends the references section as literal text. Pass 2 re-runs the draft
// through the model in streaming mode to strip redundancy, emitting each
// buffered chunk as a progress event. Pass 3 writes the accumulated text
// into the state. An empty pass 1 fails the job; a failed pass 2 falls back
// to the pass 1 draft.
type editor struct {
	gen    anthropic.Client
	ai     config.AnthropicConfig
	events broadcast.Publisher
}

func newEditor(gen anthropic.Client, ai config.AnthropicConfig, events broadcast.Publisher) *editor {
	return &editor{gen: gen, ai: ai, events: events}
}

func (e *editor) Name() string { return StageEditor }

// streamFlushMin is the smallest chunk the streaming pass will emit. Chunks
// flush on the first sentence or line boundary past this size.
const streamFlushMin = 10

func (e *editor) Run(ctx context.Context, jobID string, st *model.ResearchState) error {
	log := zap.L().With(zap.String("job_id", jobID), zap.String("stage", StageEditor))

	var briefings []string
	for _, topic := range benchmarkBriefingOrder {
		if text := st.Briefing(topic); text != "" {
			briefings = append(briefings, text)
		}
	}
	if len(briefings) == 0 {
		return eris.New("editor: no briefings available to compile")
	}
	log.Info("editor: compiling report", zap.Int("briefings", len(briefings)))

	draft := e.compile(ctx, briefings, st)
	if strings.TrimSpace(draft) == "" {
		return eris.New("editor: compilation produced no content")
	}

	final := e.sweep(ctx, jobID, draft, st.Input)
	if strings.TrimSpace(final) == "" {
		// Degraded success. A rough draft beats no report.
		log.Warn("editor: sweep produced no content, keeping draft")
		final = draft
	}

	return st.SetReport(strings.TrimSpace(final))
}

// compile merges the briefings into one draft under the fixed outline, then
// appends the rendered references. On a generation failure the concatenated
// briefings stand in as the draft.
func (e *editor) compile(ctx context.Context, briefings []string, st *model.ResearchState) string {
	in := st.Input
	combined := strings.Join(briefings, "\n\n")

	prompt := fmt.Sprintf(`Compile benchmark analysis for %s (%s, %s).

Source briefings:
%s

Output structure:
# %s Benchmark Analysis Report

## Competitive Landscape
### Market Leaders
### Direct Competitors
### Product Benchmarking

## Market Intelligence
### Industry Overview
### Market Dynamics
### Performance Metrics

## Consumer Insights
### Consumer Sentiment
### Usage Patterns
### Market Preferences

## Technology Trends
### Technology Adoption
### Digital Transformation
### Emerging Technologies

## Regional Analysis
### Economic Indicators
### Market Opportunities
### Regulatory Environment

## Political & Social Context
### Political Environment
### Social Trends
### ESG Factors

Rules: Clean markdown, no meta-commentary, bullet points only.`,
		in.Company, in.Industry, in.HQLocation, combined, in.Company)

	temperature := 0.0
	resp, err := e.gen.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       e.ai.Model,
		MaxTokens:   e.ai.MaxOutputTokens,
		System:      "You are an expert report editor that compiles research briefings into comprehensive company reports.",
		Prompt:      prompt,
		Temperature: &temperature,
	})

	var draft string
	if err != nil {
		zap.L().Warn("editor: compile call failed, using raw briefings", zap.Error(err))
		draft = strings.TrimSpace(combined)
	} else {
		draft = strings.TrimSpace(resp.Text)
		resp.Usage.LogCost(e.ai.Model, "editor_compile")
	}
	if draft == "" {
		return ""
	}

	if refText := formatReferencesSection(st.References, st.ReferenceInfo); refText != "" {
		draft = draft + "\n\n" + refText
	}
	return draft
}

// sweep streams a cleanup pass over the draft, publishing report_chunk
// events at sentence and line boundaries. Returns "" on failure.
func (e *editor) sweep(ctx context.Context, jobID, draft string, in model.InputContext) string {
	prompt := fmt.Sprintf(`Clean and format benchmark report for %s (%s, %s).

Input:
%s

Tasks:
1. Remove redundancy and repetition
2. Remove empty sections
3. Remove meta-commentary
4. Keep substantive market insights only

Required structure:
# %s Benchmark Analysis Report
## Competitive Landscape
## Market Intelligence
## Consumer Insights
## Technology Trends
## Regional Analysis
## Political & Social Context
## References

Format: Clean markdown, ### subsections, * bullets, preserve the References section byte-for-byte.`,
		in.Company, in.Industry, in.HQLocation, draft, in.Company)

	var buffer strings.Builder
	flush := func() {
		if buffer.Len() == 0 {
			return
		}
		e.events.Publish(broadcast.Event{
			JobID:   jobID,
			Status:  broadcast.StatusReportChunk,
			Message: "Formatting final report",
			Result: map[string]any{
				"chunk": buffer.String(),
				"step":  "Editor",
			},
		})
		buffer.Reset()
	}

	temperature := 0.0
	final, err := e.gen.StreamMessage(ctx, anthropic.MessageRequest{
		Model:       e.ai.Model,
		MaxTokens:   e.ai.MaxOutputTokens,
		System:      "You are an expert markdown formatter that ensures consistent document structure.",
		Prompt:      prompt,
		Temperature: &temperature,
	}, func(text string) error {
		buffer.WriteString(text)
		if buffer.Len() > streamFlushMin && strings.ContainsAny(buffer.String(), ".!?\n") {
			flush()
		}
		return nil
	})
	if err != nil {
		zap.L().Warn("editor: sweep stream failed", zap.Error(err))
		return ""
	}
	flush()
	return strings.TrimSpace(final)
}
