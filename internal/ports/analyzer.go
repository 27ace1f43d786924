package ports

import (
	"context"

	"malim/internal/domain"
)

// AnalyzeRequest carries everything one analysis job needs. Credentials and
// concurrency come from the current Settings at dispatch time; OldSentences
// lets the service reuse prior annotations instead of recomputing them.
type AnalyzeRequest struct {
	ID             string
	Text           string
	Language       string
	APIKey         string
	APIURL         string
	ModelName      string
	Concurrency    int
	PreCacheAudio  bool
	TTSConcurrency int
	OldSentences   []domain.Sentence
}

// Analyzer annotates raw text into ordered sentences. Progress is reported
// out-of-band through a ProgressPublisher, keyed by the request ID.
type Analyzer interface {
	Analyze(ctx context.Context, req AnalyzeRequest) ([]domain.Sentence, error)
}

// ProgressEvent is a percent-complete notification for an in-flight job.
type ProgressEvent struct {
	ID      string `json:"id"`
	Current int    `json:"current"`
	Total   int    `json:"total"`
	Percent int    `json:"percent"`
}

type ProgressPublisher interface {
	Publish(ev ProgressEvent)
}
