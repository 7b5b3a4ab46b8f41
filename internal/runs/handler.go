package runs

import (
	"context"
	"fmt"

	"github.com/dvloznov/finance-insights/internal/detect"
	"github.com/dvloznov/finance-insights/internal/logger"
	"github.com/dvloznov/finance-insights/internal/summarize"
)

// DetectionHandler adapts the synchronous engine into a run Handler: the
// job's transaction window goes through detection and summarization, and
// the results land on the job record.
func DetectionHandler(detector *detect.Detector, aggregator *summarize.Aggregator) Handler {
	return func(ctx context.Context, job *DetectionJob) error {
		log := logger.FromContext(ctx)
		log.Info().Str("job_id", job.JobID).Str("user_id", job.UserID).
			Int("transactions", len(job.Transactions)).Msg("starting detection run")

		patterns, err := detector.Detect(ctx, job.Transactions)
		if err != nil {
			return fmt.Errorf("detection run %s: %w", job.JobID, err)
		}

		summary := aggregator.Summarize(patterns)
		job.Patterns = patterns
		job.Summary = &summary
		return nil
	}
}
