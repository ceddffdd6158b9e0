package model

// Document is a single search result. Immutable once fetched; identity is the
// URL (a synthetic id is substituted upstream when a result has none).
type Document struct {
	URL     string  `json:"url"`
	Title   string  `json:"title"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// DocumentSet maps URL to document for one topic.
type DocumentSet map[string]Document

// Merge copies docs into the set, silently dropping URLs already present.
func (s DocumentSet) Merge(docs []Document) {
	for _, d := range docs {
		if _, ok := s[d.URL]; ok {
			continue
		}
		s[d.URL] = d
	}
}

// Clone returns an independent copy of the set.
func (s DocumentSet) Clone() DocumentSet {
	if s == nil {
		return nil
	}
	out := make(DocumentSet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Reference is the display metadata for a cited URL.
type Reference struct {
	Title      string `json:"title"`
	SourceType string `json:"source_type"`
}
