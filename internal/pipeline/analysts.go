package pipeline

import (
	"fmt"

	"github.com/scopify/benchmark-agent/internal/config"
	"github.com/scopify/benchmark-agent/internal/model"
	"github.com/scopify/benchmark-agent/pkg/tavily"
)

// The six benchmark analysts research the market around the company, so
// their queries name only the industry and region. The four company-scoped
// analysts (financial, news, industry, company) predate the benchmark flow
// and keep the company name in their queries.

func newCompaniesProductsAnalyst(search tavily.Client, cfg config.TavilyConfig) *analyst {
	return &analyst{
		name:   StageCompaniesProducts,
		topic:  model.TopicCompaniesProducts,
		search: search,
		cfg:    cfg,
		buildQueries: func(in model.InputContext) []string {
			return []string{
				fmt.Sprintf("top performing companies in %s industry rankings revenue", in.Industry),
				fmt.Sprintf("%s market leaders financial performance valuations funding", in.Industry),
				fmt.Sprintf("%s industry competitive landscape market share analysis", in.Industry),
				fmt.Sprintf("%s companies stock performance unicorns IPO", in.Industry),
				fmt.Sprintf("global %s market size growth rate competition trends", in.Industry),
			}
		},
	}
}

func newConsumerBrandsAnalyst(search tavily.Client, cfg config.TavilyConfig) *analyst {
	return &analyst{
		name:   StageConsumerBrands,
		topic:  model.TopicConsumerBrands,
		search: search,
		cfg:    cfg,
		buildQueries: func(in model.InputContext) []string {
			return []string{
				fmt.Sprintf("%s industry consumer behavior trends market research", in.Industry),
				fmt.Sprintf("%s customer satisfaction benchmarks surveys %s", in.Industry, in.HQLocation),
				fmt.Sprintf("%s market brand loyalty patterns adoption rates global", in.Industry),
				fmt.Sprintf("%s customer demographics preferences market analysis", in.Industry),
			}
		},
	}
}

func newCountriesRegionsAnalyst(search tavily.Client, cfg config.TavilyConfig) *analyst {
	return &analyst{
		name:   StageCountriesRegions,
		topic:  model.TopicCountriesRegions,
		search: search,
		cfg:    cfg,
		buildQueries: func(in model.InputContext) []string {
			return []string{
				fmt.Sprintf("economic indicators GDP growth rates %s", in.HQLocation),
				fmt.Sprintf("%s industry development regulations by region", in.Industry),
				fmt.Sprintf("%s market size opportunity assessment %s", in.Industry, in.HQLocation),
				fmt.Sprintf("trade policies business environment %s", in.HQLocation),
				fmt.Sprintf("%s regional competitive landscape major players", in.Industry),
			}
		},
	}
}

func newDigitalTrendsAnalyst(search tavily.Client, cfg config.TavilyConfig) *analyst {
	return &analyst{
		name:   StageDigitalTrends,
		topic:  model.TopicDigitalTrends,
		search: search,
		cfg:    cfg,
		buildQueries: func(in model.InputContext) []string {
			return []string{
				fmt.Sprintf("%s industry digital transformation trends global market", in.Industry),
				fmt.Sprintf("%s AI machine learning adoption enterprise analysis %s", in.Industry, in.HQLocation),
				fmt.Sprintf("%s cybersecurity cloud computing market trends", in.Industry),
				fmt.Sprintf("%s automation innovation market impact", in.Industry),
			}
		},
	}
}

func newIndustriesMarketsAnalyst(search tavily.Client, cfg config.TavilyConfig) *analyst {
	return &analyst{
		name:   StageIndustriesMarkets,
		topic:  model.TopicIndustriesMarkets,
		search: search,
		cfg:    cfg,
		buildQueries: func(in model.InputContext) []string {
			return []string{
				fmt.Sprintf("%s industry market size revenue trends global analysis", in.Industry),
				fmt.Sprintf("%s market growth forecasts projections industry reports", in.Industry),
				fmt.Sprintf("%s industry employment workforce statistics trends", in.Industry),
				fmt.Sprintf("%s market consolidation M&A activity venture funding", in.Industry),
				fmt.Sprintf("global %s market dynamics regulatory environment standards", in.Industry),
			}
		},
	}
}

func newPoliticsSocietyAnalyst(search tavily.Client, cfg config.TavilyConfig) *analyst {
	return &analyst{
		name:   StagePoliticsSociety,
		topic:  model.TopicPoliticsSociety,
		search: search,
		cfg:    cfg,
		buildQueries: func(in model.InputContext) []string {
			return []string{
				fmt.Sprintf("political stability business environment %s", in.HQLocation),
				fmt.Sprintf("regulatory landscape policy changes %s industry", in.Industry),
				fmt.Sprintf("social trends demographics %s market", in.Industry),
				fmt.Sprintf("workforce development education %s", in.HQLocation),
				fmt.Sprintf("ESG regulations social responsibility %s industry", in.Industry),
				fmt.Sprintf("election outcomes policy implications %s business", in.HQLocation),
			}
		},
	}
}

func newFinancialAnalyst(search tavily.Client, cfg config.TavilyConfig) *analyst {
	return &analyst{
		name:   "financial_analyst",
		topic:  model.TopicFinancial,
		search: search,
		cfg:    cfg,
		buildQueries: func(in model.InputContext) []string {
			return []string{
				fmt.Sprintf("%s funding rounds investors valuation", in.Company),
				fmt.Sprintf("%s revenue financial performance", in.Company),
				fmt.Sprintf("%s %s pricing business model", in.Company, in.Industry),
				fmt.Sprintf("%s acquisition IPO financial news", in.Company),
			}
		},
	}
}

func newNewsScanner(search tavily.Client, cfg config.TavilyConfig) *analyst {
	return &analyst{
		name:   "news_scanner",
		topic:  model.TopicNews,
		search: search,
		cfg:    cfg,
		buildQueries: func(in model.InputContext) []string {
			return []string{
				fmt.Sprintf("%s announcements product launches", in.Company),
				fmt.Sprintf("%s partnerships integrations collaborations", in.Company),
				fmt.Sprintf("%s awards press coverage recognition", in.Company),
				fmt.Sprintf("%s latest news %s", in.Company, in.Industry),
			}
		},
	}
}

func newIndustryAnalyzer(search tavily.Client, cfg config.TavilyConfig) *analyst {
	return &analyst{
		name:   "industry_analyst",
		topic:  model.TopicIndustry,
		search: search,
		cfg:    cfg,
		buildQueries: func(in model.InputContext) []string {
			return []string{
				fmt.Sprintf("%s market segment competitors", in.Company),
				fmt.Sprintf("%s industry market size growth rate", in.Industry),
				fmt.Sprintf("%s competitive advantages %s", in.Company, in.Industry),
				fmt.Sprintf("%s industry challenges %s", in.Industry, in.HQLocation),
			}
		},
	}
}

func newCompanyAnalyzer(search tavily.Client, cfg config.TavilyConfig) *analyst {
	return &analyst{
		name:   "company_analyst",
		topic:  model.TopicCompany,
		search: search,
		cfg:    cfg,
		buildQueries: func(in model.InputContext) []string {
			return []string{
				fmt.Sprintf("%s products services features", in.Company),
				fmt.Sprintf("%s leadership team founders executives", in.Company),
				fmt.Sprintf("%s customers target market use cases", in.Company),
				fmt.Sprintf("%s %s company profile", in.Company, in.HQLocation),
			}
		},
	}
}
