package pipeline

import (
	"github.com/scopify/benchmark-agent/internal/config"
	"github.com/scopify/benchmark-agent/internal/model"
)

func testConfig() *config.Config {
	return &config.Config{
		Anthropic: config.AnthropicConfig{
			Model:           "claude-haiku-4-5-20251001",
			MaxOutputTokens: 4096,
		},
		Tavily: config.TavilyConfig{
			MaxResults: 5,
		},
		Pipeline: config.PipelineConfig{
			MinContentLength:    200,
			MaxDocsPerTopic:     10,
			MaxDocLength:        8000,
			PromptCharBudget:    120000,
			BriefingConcurrency: 2,
		},
		Jobs: config.JobsConfig{MaxJobs: 256},
	}
}

func testInput() model.InputContext {
	return model.InputContext{
		Company:    "Acme",
		Industry:   "Fintech",
		HQLocation: "Berlin, Germany",
	}
}

func docSet(docs ...model.Document) model.DocumentSet {
	set := make(model.DocumentSet, len(docs))
	for _, d := range docs {
		set[d.URL] = d
	}
	return set
}
