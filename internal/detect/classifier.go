package detect

import (
	"context"
	"log/slog"
)

// Classifier is an external recogniser (for example a named-entity sidecar)
// that reports hits for a line. Implementations must be safe for concurrent
// use and should return hits with byte spans into text.
type Classifier interface {
	Classify(ctx context.Context, text string) ([]Hit, error)
}

// Scanner runs the built-in detectors plus any configured classifiers.
// It holds only immutable configuration and is safe for concurrent use.
type Scanner struct {
	terms       []string
	classifiers []Classifier
	logger      *slog.Logger
}

// NewScanner creates a Scanner for the given custom terms. A nil logger
// means slog.Default().
func NewScanner(terms []string, logger *slog.Logger, classifiers ...Classifier) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{
		terms:       NormalizeTerms(terms),
		classifiers: classifiers,
		logger:      logger,
	}
}

// Terms returns the normalised custom terms.
func (s *Scanner) Terms() []string {
	return s.terms
}

// Scan returns the deduplicated hits for line, sorted by span start.
// Classifier failures are logged and contribute no hits.
func (s *Scanner) Scan(ctx context.Context, line string) []Hit {
	hits := All(line, s.terms)
	for _, c := range s.classifiers {
		extra, err := c.Classify(ctx, line)
		if err != nil {
			s.logger.Warn("detect: classifier error", "err", err)
			continue
		}
		hits = append(hits, validHits(line, extra)...)
	}
	return Dedupe(hits)
}
