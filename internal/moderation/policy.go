package moderation

// Decide maps a verdict to its enforcement action. It is a pure
// function: the stored action column is always exactly its output for
// the stored classification and confidence.
//
// A clear violation is deleted outright only when the classifier is
// confident beyond 0.8; anything ambiguous goes to human review.
func Decide(classification Classification, confidence float64) Action {
	switch {
	case classification == ClassificationClearViolation && confidence > 0.8:
		return ActionDeleteMessage
	case classification == ClassificationClearViolation || classification == ClassificationContextDependent:
		return ActionFlagForReview
	default:
		return ActionApprove
	}
}
