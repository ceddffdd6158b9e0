package pipeline

import (
	"context"
	"net/url"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/scopify/benchmark-agent/internal/config"
	"github.com/scopify/benchmark-agent/internal/model"
)

// curator filters each topic's raw documents down to the subset worth
// briefing: ranked by relevance, stripped of thin content, capped per topic
// so downstream prompt budgets hold. It also builds the global reference
// list from everything it retained.
type curator struct {
	cfg config.PipelineConfig
}

func newCurator(cfg config.PipelineConfig) *curator {
	return &curator{cfg: cfg}
}

func (c *curator) Name() string { return StageCurator }

func (c *curator) Run(ctx context.Context, jobID string, st *model.ResearchState) error {
	log := zap.L().With(zap.String("job_id", jobID), zap.String("stage", StageCurator))

	var (
		refs    []string
		refInfo = make(map[string]model.Reference)
	)

	for _, topic := range model.AllTopics {
		raw := st.RawDocs(topic)
		if len(raw) == 0 {
			// Leave the curated field unwritten so the enricher can backfill.
			continue
		}

		kept := c.curateTopic(raw)
		log.Info("curator: curated topic",
			zap.String("topic", string(topic)),
			zap.Int("raw", len(raw)),
			zap.Int("kept", len(kept)),
		)
		if len(kept) == 0 {
			continue
		}

		set := make(model.DocumentSet, len(kept))
		for _, doc := range kept {
			set[doc.URL] = doc
			// First topic to retain a URL owns its reference entry.
			if _, seen := refInfo[doc.URL]; !seen {
				refs = append(refs, doc.URL)
				refInfo[doc.URL] = model.Reference{
					Title:      referenceTitle(doc),
					SourceType: sourceTypeFor(doc.URL),
				}
			}
		}
		if err := st.SetCuratedDocs(topic, set); err != nil {
			return err
		}
	}

	log.Info("curator: built reference list", zap.Int("references", len(refs)))
	return st.SetReferences(refs, refInfo)
}

// curateTopic ranks by score descending, drops thin documents, and caps the
// survivor count.
func (c *curator) curateTopic(raw model.DocumentSet) []model.Document {
	docs := make([]model.Document, 0, len(raw))
	for _, doc := range raw {
		if len(doc.Content) < c.cfg.MinContentLength {
			continue
		}
		docs = append(docs, doc)
	}
	sort.SliceStable(docs, func(i, j int) bool {
		if docs[i].Score != docs[j].Score {
			return docs[i].Score > docs[j].Score
		}
		return docs[i].URL < docs[j].URL
	})
	if len(docs) > c.cfg.MaxDocsPerTopic {
		docs = docs[:c.cfg.MaxDocsPerTopic]
	}
	return docs
}

var titleCaser = cases.Title(language.English)

// referenceTitle prefers the document's own title and falls back to a label
// derived from the host name.
func referenceTitle(doc model.Document) string {
	if title := strings.TrimSpace(doc.Title); title != "" {
		return title
	}
	host := hostOf(doc.URL)
	if host == "" {
		return doc.URL
	}
	base := strings.TrimPrefix(host, "www.")
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	return titleCaser.String(strings.ReplaceAll(base, "-", " "))
}

var newsHosts = map[string]bool{
	"reuters.com":         true,
	"bloomberg.com":       true,
	"forbes.com":          true,
	"techcrunch.com":      true,
	"wsj.com":             true,
	"ft.com":              true,
	"cnbc.com":            true,
	"businessinsider.com": true,
	"theguardian.com":     true,
	"nytimes.com":         true,
}

// sourceTypeFor infers a coarse source category from the URL's host.
func sourceTypeFor(rawURL string) string {
	host := hostOf(rawURL)
	if host == "" {
		return "web"
	}
	host = strings.TrimPrefix(host, "www.")
	switch {
	case strings.HasSuffix(host, ".gov"), strings.Contains(host, ".gov."):
		return "government"
	case strings.HasSuffix(host, ".edu"), strings.Contains(host, ".edu."):
		return "academic"
	case newsHosts[host]:
		return "news"
	case strings.Contains(host, "blog") || strings.Contains(rawURL, "/blog"):
		return "blog"
	default:
		return "web"
	}
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.ToLower(u.Host)
}
