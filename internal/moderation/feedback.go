package moderation

import (
	"context"
	"fmt"
)

// feedbackBySymbol maps moderator reaction symbols to feedback
// categories. Anything not listed maps to UNKNOWN.
var feedbackBySymbol = map[string]Feedback{
	"✅":  FeedbackCorrect,
	"❌":  FeedbackIncorrect,
	"⚠️": FeedbackComplex,
	"🔄": FeedbackReanalyze,
}

// FeedbackForSymbol maps a reaction symbol to its feedback category.
// Unrecognized symbols are UNKNOWN, not an error.
func FeedbackForSymbol(symbol string) Feedback {
	if fb, ok := feedbackBySymbol[symbol]; ok {
		return fb
	}
	return FeedbackUnknown
}

// RecordFeedback attaches a moderator's reaction to an existing
// decision record. Re-ingestion overwrites the previous feedback. If no
// record with the given message id exists the store's
// ErrDecisionNotFound is returned and nothing is written.
func (s *Service) RecordFeedback(ctx context.Context, messageID, symbol string) (Feedback, error) {
	feedback := FeedbackForSymbol(symbol)

	if err := s.store.SetDecisionFeedback(ctx, messageID, string(feedback)); err != nil {
		return feedback, fmt.Errorf("failed to record feedback: %w", err)
	}

	s.logger.InfoContext(ctx, "Feedback recorded",
		"message_id", messageID, "symbol", symbol, "feedback", feedback)
	return feedback, nil
}
