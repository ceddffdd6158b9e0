package model

import (
	"sync"

	"github.com/rotisserie/eris"
)

// InputContext is the read-only job input threaded through every stage.
type InputContext struct {
	Company     string         `json:"company"`
	CompanyURL  string         `json:"company_url,omitempty"`
	Industry    string         `json:"industry"`
	HQLocation  string         `json:"hq_location"`
	StartupData map[string]any `json:"startup_data,omitempty"`
}

// ResearchState is the single accumulating record for one job. Every topic
// owns three named fields (raw documents, curated documents, briefing); each
// field is written by exactly one stage. Writes go through the Set* methods,
// which reject a second write to the same field, so stage ordering bugs fail
// loudly instead of silently clobbering earlier output.
type ResearchState struct {
	Input InputContext

	mu      sync.Mutex
	written map[string]bool

	// Raw per-topic document collections, filled by the analysts.
	FinancialData         DocumentSet
	NewsData              DocumentSet
	IndustryData          DocumentSet
	CompanyData           DocumentSet
	CompaniesProductsData DocumentSet
	ConsumerBrandsData    DocumentSet
	CountriesRegionsData  DocumentSet
	DigitalTrendsData     DocumentSet
	IndustriesMarketsData DocumentSet
	PoliticsSocietyData   DocumentSet

	// Curated subsets, filled by the curator (or, for topics the curator
	// left empty, by the enricher's placeholder backfill).
	CuratedFinancialData         DocumentSet
	CuratedNewsData              DocumentSet
	CuratedIndustryData          DocumentSet
	CuratedCompanyData           DocumentSet
	CuratedCompaniesProductsData DocumentSet
	CuratedConsumerBrandsData    DocumentSet
	CuratedCountriesRegionsData  DocumentSet
	CuratedDigitalTrendsData     DocumentSet
	CuratedIndustriesMarketsData DocumentSet
	CuratedPoliticsSocietyData   DocumentSet

	// Per-topic briefings, filled by the briefing generator.
	FinancialBriefing         string
	NewsBriefing              string
	IndustryBriefing          string
	CompanyBriefing           string
	CompaniesProductsBriefing string
	ConsumerBrandsBriefing    string
	CountriesRegionsBriefing  string
	DigitalTrendsBriefing     string
	IndustriesMarketsBriefing string
	PoliticsSocietyBriefing   string

	References    []string
	ReferenceInfo map[string]Reference
	Report        string
}

// NewResearchState creates a state for the given input.
func NewResearchState(input InputContext) *ResearchState {
	return &ResearchState{
		Input:   input,
		written: make(map[string]bool),
	}
}

func (s *ResearchState) rawField(t Topic) *DocumentSet {
	switch t {
	case TopicFinancial:
		return &s.FinancialData
	case TopicNews:
		return &s.NewsData
	case TopicIndustry:
		return &s.IndustryData
	case TopicCompany:
		return &s.CompanyData
	case TopicCompaniesProducts:
		return &s.CompaniesProductsData
	case TopicConsumerBrands:
		return &s.ConsumerBrandsData
	case TopicCountriesRegions:
		return &s.CountriesRegionsData
	case TopicDigitalTrends:
		return &s.DigitalTrendsData
	case TopicIndustriesMarkets:
		return &s.IndustriesMarketsData
	case TopicPoliticsSociety:
		return &s.PoliticsSocietyData
	}
	return nil
}

func (s *ResearchState) curatedField(t Topic) *DocumentSet {
	switch t {
	case TopicFinancial:
		return &s.CuratedFinancialData
	case TopicNews:
		return &s.CuratedNewsData
	case TopicIndustry:
		return &s.CuratedIndustryData
	case TopicCompany:
		return &s.CuratedCompanyData
	case TopicCompaniesProducts:
		return &s.CuratedCompaniesProductsData
	case TopicConsumerBrands:
		return &s.CuratedConsumerBrandsData
	case TopicCountriesRegions:
		return &s.CuratedCountriesRegionsData
	case TopicDigitalTrends:
		return &s.CuratedDigitalTrendsData
	case TopicIndustriesMarkets:
		return &s.CuratedIndustriesMarketsData
	case TopicPoliticsSociety:
		return &s.CuratedPoliticsSocietyData
	}
	return nil
}

func (s *ResearchState) briefingField(t Topic) *string {
	switch t {
	case TopicFinancial:
		return &s.FinancialBriefing
	case TopicNews:
		return &s.NewsBriefing
	case TopicIndustry:
		return &s.IndustryBriefing
	case TopicCompany:
		return &s.CompanyBriefing
	case TopicCompaniesProducts:
		return &s.CompaniesProductsBriefing
	case TopicConsumerBrands:
		return &s.ConsumerBrandsBriefing
	case TopicCountriesRegions:
		return &s.CountriesRegionsBriefing
	case TopicDigitalTrends:
		return &s.DigitalTrendsBriefing
	case TopicIndustriesMarkets:
		return &s.IndustriesMarketsBriefing
	case TopicPoliticsSociety:
		return &s.PoliticsSocietyBriefing
	}
	return nil
}

func (s *ResearchState) setOnce(key string, apply func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.written[key] {
		return eris.Errorf("state: field %q already written", key)
	}
	s.written[key] = true
	apply()
	return nil
}

// SetRawDocs stores a topic's raw document collection. One write per topic.
func (s *ResearchState) SetRawDocs(t Topic, docs DocumentSet) error {
	field := s.rawField(t)
	if field == nil {
		return eris.Errorf("state: unknown topic %q", t)
	}
	return s.setOnce(string(t)+"_data", func() { *field = docs })
}

// SetCuratedDocs stores a topic's curated collection. One write per topic.
func (s *ResearchState) SetCuratedDocs(t Topic, docs DocumentSet) error {
	field := s.curatedField(t)
	if field == nil {
		return eris.Errorf("state: unknown topic %q", t)
	}
	return s.setOnce("curated_"+string(t)+"_data", func() { *field = docs })
}

// SetBriefing stores a topic's briefing text. One write per topic; safe to
// call from concurrent briefing workers since every worker owns a distinct
// topic.
func (s *ResearchState) SetBriefing(t Topic, text string) error {
	field := s.briefingField(t)
	if field == nil {
		return eris.Errorf("state: unknown topic %q", t)
	}
	return s.setOnce(string(t)+"_briefing", func() { *field = text })
}

// SetReferences stores the global reference list and metadata map.
func (s *ResearchState) SetReferences(urls []string, info map[string]Reference) error {
	return s.setOnce("references", func() {
		s.References = urls
		s.ReferenceInfo = info
	})
}

// SetReport stores the final report text.
func (s *ResearchState) SetReport(report string) error {
	return s.setOnce("report", func() { s.Report = report })
}

// RawDocs returns a topic's raw collection (nil when the analyst has not run
// or found nothing).
func (s *ResearchState) RawDocs(t Topic) DocumentSet {
	if field := s.rawField(t); field != nil {
		return *field
	}
	return nil
}

// CuratedDocs returns a topic's curated collection.
func (s *ResearchState) CuratedDocs(t Topic) DocumentSet {
	if field := s.curatedField(t); field != nil {
		return *field
	}
	return nil
}

// CuratedWritten reports whether the curated field for a topic has been
// written, regardless of content. The enricher uses this to backfill only
// fields the curator left untouched.
func (s *ResearchState) CuratedWritten(t Topic) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.written["curated_"+string(t)+"_data"]
}

// Briefing returns a topic's briefing text.
func (s *ResearchState) Briefing(t Topic) string {
	if field := s.briefingField(t); field != nil {
		return *field
	}
	return ""
}
