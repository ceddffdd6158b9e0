package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/scopify/benchmark-agent/internal/model"
)

// enricher backfills topics the curator left empty. When the submission
// carried structured startup data there is always some context to brief on,
// so an empty topic gets a single synthetic document built from that context
// rather than nothing. The enricher never touches curated output and never
// fails the job.
type enricher struct{}

func newEnricher() *enricher { return &enricher{} }

func (e *enricher) Name() string { return StageEnricher }

func (e *enricher) Run(ctx context.Context, jobID string, st *model.ResearchState) error {
	log := zap.L().With(zap.String("job_id", jobID), zap.String("stage", StageEnricher))

	if len(st.Input.StartupData) == 0 {
		log.Info("enricher: no structured context, nothing to backfill")
		return nil
	}

	for _, topic := range model.AllTopics {
		if st.CuratedWritten(topic) {
			continue
		}
		doc := placeholderDoc(topic, st.Input)
		set := model.DocumentSet{doc.URL: doc}
		if err := st.SetCuratedDocs(topic, set); err != nil {
			// Best effort only. A backfill conflict must not abort the job.
			log.Warn("enricher: backfill skipped",
				zap.String("topic", string(topic)),
				zap.Error(err),
			)
			continue
		}
		log.Info("enricher: backfilled topic with contextual placeholder",
			zap.String("topic", string(topic)),
		)
	}
	return nil
}

// placeholderDoc synthesizes a minimal document from the input context so the
// briefing generator has something to anchor on.
func placeholderDoc(topic model.Topic, in model.InputContext) model.Document {
	content := fmt.Sprintf(
		"%s is a %s company based in %s. Analyze the %s dimension of the %s market in %s "+
			"using general industry knowledge for this segment.",
		in.Company, in.Industry, in.HQLocation, topic.DisplayName(), in.Industry, in.HQLocation,
	)
	return model.Document{
		URL:     fmt.Sprintf("internal://context/%s", topic),
		Title:   fmt.Sprintf("%s context for %s", topic.DisplayName(), in.Company),
		Content: content,
		Score:   0,
	}
}
