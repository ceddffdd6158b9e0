package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/scopify/benchmark-agent/internal/broadcast"
	"github.com/scopify/benchmark-agent/internal/config"
	"github.com/scopify/benchmark-agent/internal/model"
	"github.com/scopify/benchmark-agent/pkg/anthropic"
)

// briefingGenerator turns each topic's curated documents into a bullet-only
// prose briefing. Topics run in parallel under a fixed concurrency gate so
// the generation API never sees more than cfg.BriefingConcurrency in-flight
// calls from one job. A topic that fails to brief yields an empty string and
// the job continues.
type briefingGenerator struct {
	gen    anthropic.Client
	ai     config.AnthropicConfig
	cfg    config.PipelineConfig
	events broadcast.Publisher
}

func newBriefingGenerator(gen anthropic.Client, ai config.AnthropicConfig, cfg config.PipelineConfig, events broadcast.Publisher) *briefingGenerator {
	return &briefingGenerator{gen: gen, ai: ai, cfg: cfg, events: events}
}

func (b *briefingGenerator) Name() string { return StageBriefing }

func (b *briefingGenerator) Run(ctx context.Context, jobID string, st *model.ResearchState) error {
	log := zap.L().With(zap.String("job_id", jobID), zap.String("stage", StageBriefing))

	var pending []model.Topic
	for _, topic := range model.AllTopics {
		if len(st.CuratedDocs(topic)) == 0 {
			if err := st.SetBriefing(topic, ""); err != nil {
				return err
			}
			continue
		}
		pending = append(pending, topic)
	}
	log.Info("briefing: generating", zap.Int("topics", len(pending)))

	g := new(errgroup.Group)
	g.SetLimit(b.cfg.BriefingConcurrency)
	for _, topic := range pending {
		g.Go(func() error {
			text := b.briefTopic(ctx, jobID, topic, st)
			// Empty on failure; each worker owns a distinct topic field.
			return st.SetBriefing(topic, text)
		})
	}
	return g.Wait()
}

// briefTopic builds the topic prompt and performs one generation call.
// Failures are absorbed here and reported as an empty briefing.
func (b *briefingGenerator) briefTopic(ctx context.Context, jobID string, topic model.Topic, st *model.ResearchState) string {
	log := zap.L().With(zap.String("job_id", jobID), zap.String("topic", string(topic)))
	docs := st.CuratedDocs(topic)

	b.events.Publish(broadcast.Event{
		JobID:   jobID,
		Status:  broadcast.StatusBriefingStart,
		Message: fmt.Sprintf("Generating %s briefing", topic.DisplayName()),
		Result: map[string]any{
			"step":       "Briefing",
			"category":   string(topic),
			"total_docs": len(docs),
		},
	})

	prompt := briefingPrompt(topic, st.Input) + "\n\nAnalyze the following documents and extract key information. Provide only the briefing, no explanations or commentary:\n\n" + b.documentContext(docs)

	resp, err := b.gen.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     b.ai.Model,
		MaxTokens: b.ai.MaxOutputTokens,
		Prompt:    prompt,
	})
	if err != nil {
		log.Warn("briefing: generation failed", zap.Error(err))
		return ""
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		log.Warn("briefing: empty generation result")
		return ""
	}
	resp.Usage.LogCost(b.ai.Model, "briefing")

	b.events.Publish(broadcast.Event{
		JobID:   jobID,
		Status:  broadcast.StatusBriefingComplete,
		Message: fmt.Sprintf("Completed %s briefing", topic.DisplayName()),
		Result: map[string]any{
			"step":     "Briefing",
			"category": string(topic),
		},
	})
	return text
}

// documentContext concatenates ranked documents, truncating each to
// MaxDocLength and stopping at the overall prompt budget.
func (b *briefingGenerator) documentContext(docs model.DocumentSet) string {
	ordered := make([]model.Document, 0, len(docs))
	for _, doc := range docs {
		ordered = append(ordered, doc)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Score != ordered[j].Score {
			return ordered[i].Score > ordered[j].Score
		}
		return ordered[i].URL < ordered[j].URL
	})

	separator := "\n" + strings.Repeat("-", 40) + "\n"
	var (
		entries []string
		total   int
	)
	for _, doc := range ordered {
		content := doc.Content
		if len(content) > b.cfg.MaxDocLength {
			content = content[:b.cfg.MaxDocLength] + "... [content truncated]"
		}
		entry := fmt.Sprintf("Title: %s\n\nContent: %s", doc.Title, content)
		if total+len(entry) >= b.cfg.PromptCharBudget {
			break
		}
		entries = append(entries, entry)
		total += len(entry)
	}
	return separator + strings.Join(entries, separator) + separator
}

// briefingPrompt returns the fixed structural template for a topic. Every
// template pins its section headers, demands bullet-only output, and forbids
// the model from reporting missing data.
func briefingPrompt(topic model.Topic, in model.InputContext) string {
	header := fmt.Sprintf("Create a %s briefing for %s, a %s company based in %s.\nKey requirements:\n1. Structure using these exact headers and bullet points:\n",
		topic.DisplayName(), in.Company, in.Industry, in.HQLocation)

	var sections string
	switch topic {
	case model.TopicCompaniesProducts:
		sections = `
### Market Leaders
* Top companies in the industry with revenue and valuation
* Market share percentages where available

### Direct Competitors
* Companies competing in the same segment
* Key product offerings and company sizes

### Product Benchmarking
* Feature sets, capabilities, and pricing models
* Customer bases and target markets

### Performance Metrics
* Revenue comparisons and growth rates
* Employee counts and valuations
`
	case model.TopicConsumerBrands:
		sections = `
### Consumer Sentiment
* Brand perception and satisfaction metrics
* Social sentiment signals

### Usage Patterns
* Adoption rates and user engagement
* Demographics and regional behaviors

### Market Preferences
* Consumer trends affecting the industry
* Brand loyalty patterns

### Customer Insights
* Survey and market research findings
* Purchase decision factors
`
	case model.TopicCountriesRegions:
		sections = `
### Economic Indicators
* GDP growth rates for relevant regions
* Market size by country or region

### Market Opportunities
* Regional penetration rates and growth potential
* Market entry barriers

### Regulatory Environment
* Key regulations affecting the industry
* Government policies and trade environment

### Regional Competition
* Major players and local market leaders by region
`
	case model.TopicDigitalTrends:
		sections = `
### Technology Adoption
* Digital transformation trends in the industry
* Adoption rates and innovation cycles

### Industry Digitalization
* Automation and AI implementation
* Cloud and cybersecurity trends

### Emerging Technologies
* Impact of new technologies on the sector
* Machine learning and AI use cases

### Digital Competitive Landscape
* Technology leaders and investment trends
`
	case model.TopicIndustriesMarkets:
		sections = `
### Industry Overview
* Total market size and revenue
* Growth rates and key segments

### Market Dynamics
* Supply and demand patterns
* Pricing trends and consolidation activity

### Industry Performance
* Revenue trends and profitability
* Employment and investment flows

### Market Forecasts
* Growth projections and market outlook
* Emerging opportunities and threats
`
	case model.TopicPoliticsSociety:
		sections = `
### Political Environment
* Government stability and business climate
* Policy changes and regulatory shifts

### Social Trends
* Demographic changes affecting the market
* Workforce development

### ESG Factors
* Environmental regulations
* Social responsibility and governance standards

### Societal Impact
* Employment and economic contribution
* Community and social innovation
`
	case model.TopicFinancial:
		sections = `
### Funding & Investment
* Total funding amount with dates
* Funding rounds and named investors

### Revenue Model
* Product and service pricing where applicable
`
	case model.TopicNews:
		sections = `
### Major Announcements
* Product and service launches
* New initiatives

### Partnerships
* Integrations and collaborations

### Recognition
* Awards and press coverage
`
	case model.TopicIndustry:
		sections = `
### Market Overview
* Exact market segment and size with year
* Growth rate with year range

### Direct Competition
* Named direct competitors and competing products

### Competitive Advantages
* Unique technical features and proven advantages

### Market Challenges
* Specific verified challenges
`
	case model.TopicCompany:
		sections = `
### Core Product/Service
* Distinct products and verified capabilities

### Leadership Team
* Key members with roles and expertise

### Target Market
* Specific audiences, use cases, and confirmed customers

### Key Differentiators
* Unique features and proven advantages

### Business Model
* Pricing and distribution channels
`
	}

	return header + sections + `
2. Each bullet must be a single, complete fact
3. No paragraphs, only bullet points
4. Never mention "no information found" or "no data available"
5. Provide only the briefing. No explanations or commentary.`
}
