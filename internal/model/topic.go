package model

// Topic identifies one research vector. Each topic owns a raw document
// collection, a curated collection, and a briefing in the ResearchState.
type Topic string

const (
	TopicFinancial         Topic = "financial"
	TopicNews              Topic = "news"
	TopicIndustry          Topic = "industry"
	TopicCompany           Topic = "company"
	TopicCompaniesProducts Topic = "companies_products"
	TopicConsumerBrands    Topic = "consumer_brands"
	TopicCountriesRegions  Topic = "countries_regions"
	TopicDigitalTrends     Topic = "digital_trends"
	TopicIndustriesMarkets Topic = "industries_markets"
	TopicPoliticsSociety   Topic = "politics_society"
)

// AllTopics lists every research vector in declared order.
var AllTopics = []Topic{
	TopicFinancial,
	TopicNews,
	TopicIndustry,
	TopicCompany,
	TopicCompaniesProducts,
	TopicConsumerBrands,
	TopicCountriesRegions,
	TopicDigitalTrends,
	TopicIndustriesMarkets,
	TopicPoliticsSociety,
}

// BenchmarkTopics lists the six vectors wired into the pipeline sequence.
// The four legacy vectors (financial, news, industry, company) keep their
// state fields and analysts but are not part of the benchmark flow.
var BenchmarkTopics = []Topic{
	TopicCompaniesProducts,
	TopicConsumerBrands,
	TopicCountriesRegions,
	TopicDigitalTrends,
	TopicIndustriesMarkets,
	TopicPoliticsSociety,
}

// DisplayName returns a human-readable label for progress messages.
func (t Topic) DisplayName() string {
	switch t {
	case TopicFinancial:
		return "Financial"
	case TopicNews:
		return "News"
	case TopicIndustry:
		return "Industry"
	case TopicCompany:
		return "Company"
	case TopicCompaniesProducts:
		return "Companies & Products"
	case TopicConsumerBrands:
		return "Consumer & Brands"
	case TopicCountriesRegions:
		return "Countries & Regions"
	case TopicDigitalTrends:
		return "Digital & Trends"
	case TopicIndustriesMarkets:
		return "Industries & Markets"
	case TopicPoliticsSociety:
		return "Politics & Society"
	}
	return string(t)
}
