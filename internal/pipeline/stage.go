// Package pipeline runs the fixed benchmark research sequence for one job:
// collector, six market analysts, curator, enricher, briefing generator,
// editor. Stages run strictly in order; each stage writes its own slice of
// the shared research state exactly once.
package pipeline

import (
	"context"

	"github.com/scopify/benchmark-agent/internal/model"
)

// Stage is one step of the research sequence.
type Stage interface {
	Name() string
	Run(ctx context.Context, jobID string, st *model.ResearchState) error
}

// Stage identifiers as reported through the job store and progress events.
const (
	StageCollector         = "collector"
	StageCompaniesProducts = "companies_products_analyst"
	StageConsumerBrands    = "consumer_brands_analyst"
	StageCountriesRegions  = "countries_regions_analyst"
	StageDigitalTrends     = "digital_trends_analyst"
	StageIndustriesMarkets = "industries_markets_analyst"
	StagePoliticsSociety   = "politics_society_analyst"
	StageCurator           = "curator"
	StageEnricher          = "enricher"
	StageBriefing          = "briefing"
	StageEditor            = "editor"

	// StepCompleted is the pseudo-step recorded when a job finishes.
	StepCompleted = "completed"
)

// StageSequence lists the stage identifiers in execution order.
var StageSequence = []string{
	StageCollector,
	StageCompaniesProducts,
	StageConsumerBrands,
	StageCountriesRegions,
	StageDigitalTrends,
	StageIndustriesMarkets,
	StagePoliticsSociety,
	StageCurator,
	StageEnricher,
	StageBriefing,
	StageEditor,
}

// checkpoints maps each completed stage to its fixed progress percent. The
// values are checkpoints, not a function of stage count, so inserting a stage
// later does not silently reshuffle reported progress.
var checkpoints = map[string]int{
	StageCollector:         15,
	StageCompaniesProducts: 25,
	StageConsumerBrands:    35,
	StageCountriesRegions:  45,
	StageDigitalTrends:     55,
	StageIndustriesMarkets: 65,
	StagePoliticsSociety:   75,
	StageCurator:           80,
	StageEnricher:          85,
	StageBriefing:          90,
	StageEditor:            95,
}

// stageMessages holds the human-readable progress line per stage.
var stageMessages = map[string]string{
	StageCollector:         "Collecting initial data",
	StageCompaniesProducts: "Analyzing competitive landscape",
	StageConsumerBrands:    "Analyzing consumer behavior",
	StageCountriesRegions:  "Analyzing regional markets",
	StageDigitalTrends:     "Analyzing technology trends",
	StageIndustriesMarkets: "Analyzing market dynamics",
	StagePoliticsSociety:   "Analyzing political context",
	StageCurator:           "Curating research data",
	StageEnricher:          "Enriching analysis",
	StageBriefing:          "Creating briefings",
	StageEditor:            "Compiling final report",
}
