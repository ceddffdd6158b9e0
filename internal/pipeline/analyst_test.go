package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/scopify/benchmark-agent/internal/model"
	"github.com/scopify/benchmark-agent/pkg/tavily"
)

func TestAnalyst_MergesResultsByURL(t *testing.T) {
	search := &fakeSearch{docsPerQuery: 3, sharedURL: "https://example.com/shared"}
	a := newCompaniesProductsAnalyst(search, testConfig().Tavily)
	st := model.NewResearchState(testInput())

	require.NoError(t, a.Run(context.Background(), "job-1", st))

	docs := st.RawDocs(model.TopicCompaniesProducts)
	require.NotEmpty(t, docs)
	// 5 queries x 3 docs, but the shared URL collapses to one entry.
	assert.Len(t, docs, 5*3-4)
	_, ok := docs["https://example.com/shared"]
	assert.True(t, ok)
}

func TestAnalyst_PartialQueryFailureTolerated(t *testing.T) {
	search := new(mockSearchClient)
	// First query fails, the rest succeed.
	search.On("Search", mock.Anything, mock.Anything).Return(nil, errors.New("timeout")).Once()
	search.On("Search", mock.Anything, mock.Anything).Return(&tavily.SearchResponse{
		Results: []tavily.SearchResult{
			{URL: "https://example.com/doc", Title: "Doc", Content: "content", Score: 0.9},
		},
	}, nil)

	a := newConsumerBrandsAnalyst(search, testConfig().Tavily)
	st := model.NewResearchState(testInput())

	require.NoError(t, a.Run(context.Background(), "job-1", st))
	assert.Len(t, st.RawDocs(model.TopicConsumerBrands), 1)
}

func TestAnalyst_AllQueriesFailedIsFatal(t *testing.T) {
	search := &fakeSearch{err: errors.New("unavailable")}
	a := newDigitalTrendsAnalyst(search, testConfig().Tavily)
	st := model.NewResearchState(testInput())

	err := a.Run(context.Background(), "job-1", st)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 4 queries failed")
	assert.Nil(t, st.RawDocs(model.TopicDigitalTrends))
}

func TestAnalyst_RawContentPreferred(t *testing.T) {
	search := new(mockSearchClient)
	search.On("Search", mock.Anything, mock.Anything).Return(&tavily.SearchResponse{
		Results: []tavily.SearchResult{
			{URL: "https://example.com/doc", Title: "Doc", Content: "short", RawContent: "full text", Score: 0.9},
		},
	}, nil)

	a := newIndustriesMarketsAnalyst(search, testConfig().Tavily)
	st := model.NewResearchState(testInput())
	require.NoError(t, a.Run(context.Background(), "job-1", st))

	doc := st.RawDocs(model.TopicIndustriesMarkets)["https://example.com/doc"]
	assert.Equal(t, "full text", doc.Content)
}

func TestMarketAnalystQueriesExcludeCompanyName(t *testing.T) {
	cfg := testConfig().Tavily
	in := testInput()
	marketAnalysts := []*analyst{
		newCompaniesProductsAnalyst(nil, cfg),
		newConsumerBrandsAnalyst(nil, cfg),
		newCountriesRegionsAnalyst(nil, cfg),
		newDigitalTrendsAnalyst(nil, cfg),
		newIndustriesMarketsAnalyst(nil, cfg),
		newPoliticsSocietyAnalyst(nil, cfg),
	}
	for _, a := range marketAnalysts {
		queries := a.buildQueries(in)
		require.NotEmpty(t, queries, a.name)
		assert.GreaterOrEqual(t, len(queries), 4, a.name)
		assert.LessOrEqual(t, len(queries), 6, a.name)
		for _, q := range queries {
			assert.NotContains(t, q, in.Company, "%s query leaks company name: %q", a.name, q)
		}
	}
}

func TestCompanyAnalystQueriesIncludeCompanyName(t *testing.T) {
	cfg := testConfig().Tavily
	in := testInput()
	companyAnalysts := []*analyst{
		newFinancialAnalyst(nil, cfg),
		newNewsScanner(nil, cfg),
		newIndustryAnalyzer(nil, cfg),
		newCompanyAnalyzer(nil, cfg),
	}
	for _, a := range companyAnalysts {
		queries := a.buildQueries(in)
		require.NotEmpty(t, queries, a.name)
		found := false
		for _, q := range queries {
			if strings.Contains(q, in.Company) {
				found = true
				break
			}
		}
		assert.True(t, found, "%s queries never mention the company", a.name)
	}
}
